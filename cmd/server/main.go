// Command server runs the in-memory development backend on one port for
// both the auth and the data API. Point FLICK_AUTH_URL and FLICK_API_URL at
// it to try the client without a real deployment.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/skriptik666-dev/flick-messenger/internal/apitest"
)

func main() {
	var port string
	var seed bool
	flag.StringVar(&port, "port", "", "Server port (overrides env PORT)")
	flag.BoolVar(&seed, "seed", true, "Create the alice@example.com and bob@example.com accounts (password: password)")
	flag.Parse()

	if port == "" {
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = "8083"
	}
	if port[0] != ':' {
		port = ":" + port
	}

	storage := apitest.NewStorage()
	if seed {
		storage.AddUser(apitest.User{Email: "alice@example.com", Username: "alice", Password: "password", FriendCode: "10001"})
		storage.AddUser(apitest.User{Email: "bob@example.com", Username: "bob", Password: "password", FriendCode: "10002"})
		slog.Info("Seeded accounts", "friend_codes", []string{"10001", "10002"})
	}

	srv := &http.Server{Addr: port, Handler: apitest.NewHandler(storage)}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("Server starting", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
