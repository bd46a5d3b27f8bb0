package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// strategy is one way of performing a remote operation.
type strategy[T any] struct {
	name string
	run  func(ctx context.Context) (T, error)
}

// firstSuccess tries strategies in order and returns the first result that
// does not fail. When all of them fail the errors are joined in order.
func firstSuccess[T any](ctx context.Context, logger *slog.Logger, strategies ...strategy[T]) (T, error) {
	var zero T
	if len(strategies) == 0 {
		return zero, errors.New("no strategies")
	}
	errs := make([]error, 0, len(strategies))
	for _, s := range strategies {
		v, err := s.run(ctx)
		if err == nil {
			return v, nil
		}
		logger.Debug("strategy failed", "strategy", s.name, "error", err)
		errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
	}
	return zero, errors.Join(errs...)
}
