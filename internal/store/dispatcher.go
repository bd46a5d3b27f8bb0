package store

import (
	"context"
	"log/slog"
	"sync"
)

// Transition computes the next state and the effects to run afterwards.
// It must not block or touch anything outside its argument.
type Transition func(State) (State, []Effect)

// Effect performs remote work. The transition it returns, if any, is
// dispatched when it completes.
type Effect func(ctx context.Context) Transition

// Listener is called with every published state.
type Listener func(State)

// Dispatcher is the single writer of a State.
type Dispatcher struct {
	logger *slog.Logger

	mu    sync.Mutex
	state State

	// notifyMu keeps listener calls in dispatch order.
	notifyMu  sync.Mutex
	listeners map[int]Listener
	nextID    int

	effects sync.WaitGroup
}

// NewDispatcher creates a Dispatcher starting from initial.
func NewDispatcher(initial State, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		logger:    logger,
		state:     initial,
		listeners: make(map[int]Listener),
	}
}

// Dispatch applies t, notifies listeners and starts t's effects. It returns
// the state t produced. Effects outlive ctx's cancellation: once
// dispatched, remote work always runs to completion.
//
// Listeners must not call Dispatch.
func (d *Dispatcher) Dispatch(ctx context.Context, t Transition) State {
	d.mu.Lock()
	next, effects := t(d.state)
	d.state = next
	d.notifyMu.Lock()
	d.mu.Unlock()

	for _, l := range d.snapshotListeners() {
		d.call(l, next)
	}
	d.notifyMu.Unlock()

	if len(effects) > 0 {
		ctx = context.WithoutCancel(ctx)
		for _, eff := range effects {
			d.run(ctx, eff)
		}
	}
	return next
}

func (d *Dispatcher) run(ctx context.Context, eff Effect) {
	d.effects.Add(1)
	go func() {
		defer d.effects.Done()
		if t := eff(ctx); t != nil {
			d.Dispatch(ctx, t)
		}
	}()
}

func (d *Dispatcher) call(l Listener, s State) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("state listener panicked", "panic", r)
		}
	}()
	l(s)
}

// snapshotListeners is called with notifyMu held.
func (d *Dispatcher) snapshotListeners() []Listener {
	out := make([]Listener, 0, len(d.listeners))
	for _, l := range d.listeners {
		out = append(out, l)
	}
	return out
}

// Snapshot returns the current state.
func (d *Dispatcher) Snapshot() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Subscribe registers l and returns a function that removes it.
func (d *Dispatcher) Subscribe(l Listener) (cancel func()) {
	d.notifyMu.Lock()
	id := d.nextID
	d.nextID++
	d.listeners[id] = l
	d.notifyMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			d.notifyMu.Lock()
			delete(d.listeners, id)
			d.notifyMu.Unlock()
		})
	}
}

// Wait blocks until every started effect, including effects started by
// their completions, has finished.
func (d *Dispatcher) Wait() {
	d.effects.Wait()
}
