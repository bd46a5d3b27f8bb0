package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/skriptik666-dev/flick-messenger/internal/api"
	"github.com/skriptik666-dev/flick-messenger/internal/config"
	"github.com/skriptik666-dev/flick-messenger/internal/logging"
	"github.com/skriptik666-dev/flick-messenger/internal/storage"
	"github.com/skriptik666-dev/flick-messenger/internal/store"
)

var (
	cfgFile string
	cfg     *Config
	env     = config.Default()
	logger  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "flick",
	Short: "Flick messenger from the command line",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/flick-messenger/config.json)")
}

func initConfig() {
	var err error
	env, err = config.Load()
	if err != nil {
		fmt.Println("Error loading environment:", err)
		os.Exit(1)
	}
	logger = logging.NewLogger(env.Log)

	path := cfgFile
	if path == "" {
		path, err = GetConfigPath()
		if err != nil {
			fmt.Println("Error getting config path:", err)
			os.Exit(1)
		}
	}

	cfg, err = LoadConfig(path)
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}
}

func GetRootCmd() *cobra.Command {
	return rootCmd
}

func GetConfig() *Config {
	return cfg
}

func SaveConfigGlobal() error {
	path := cfgFile
	if path == "" {
		var err error
		path, err = GetConfigPath()
		if err != nil {
			return err
		}
	}
	return SaveConfig(path, cfg)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func currentLogger() *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// storageConfig is the environment's storage settings with the saved
// override applied.
func storageConfig() config.StorageConfig {
	return env.Storage.Merge(cfg.Storage)
}

// newClient builds the remote access layer. Uploads go to object storage
// only when it is configured.
func newClient(ctx context.Context) *api.Client {
	opts := []api.Option{api.WithLogger(currentLogger())}
	objects, err := storage.NewS3Store(ctx, storageConfig())
	switch {
	case err == nil:
		opts = append(opts, api.WithObjectStore(objects))
	case !errors.Is(err, storage.ErrNotConfigured):
		currentLogger().Warn("object storage unavailable", "error", err)
	}
	return api.New(env, prefsTokens{}, opts...)
}

func newStore(ctx context.Context) *store.Store {
	return store.New(newClient(ctx), currentLogger())
}

// restore opens the saved session.
func restore(ctx context.Context) (*store.Store, error) {
	s := newStore(ctx)
	if err := s.Restore(ctx); err != nil {
		if errors.Is(err, api.ErrNoToken) {
			return nil, fmt.Errorf("not logged in, use 'login' or 'signup' first")
		}
		return nil, err
	}
	return s, nil
}
