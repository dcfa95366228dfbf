package cli

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/cowsbulls/internal/config"
	"github.com/robalobadob/cowsbulls/internal/httpserver"
	"github.com/robalobadob/cowsbulls/internal/store"
)

// SetupLogging applies the configured level and output format to the global logger.
func SetupLogging(cfg *config.Config) {
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if cfg.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	var port, storeKind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the JSON HTTP API",
		Long: `Serve hot-seat Cows & Bulls games over HTTP.

Each POST /game/new creates a session; the returned token (also set as a
cookie) drives both players of that game.

Settings come from the environment (and .env): PORT, STORE, DB_PATH,
SESSION_SECRET, SESSION_TTL_HOURS, CLIENT_ORIGIN, LOG_LEVEL, LOG_FORMAT.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if port != "" {
				cfg.Port = port
			}
			if storeKind != "" {
				cfg.Store = storeKind
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			SetupLogging(cfg)

			st, closeStore, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			log.Info().Str("port", cfg.Port).Str("store", cfg.Store).Msg("starting cowsbulls server")
			err = httpserver.New(st, cfg).Start(ctx, ":"+cfg.Port)
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server exited: %w", err)
			}
			log.Info().Msg("server stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "Listen port (overrides PORT)")
	cmd.Flags().StringVar(&storeKind, "store", "", "Session store: memory or sqlite (overrides STORE)")

	return cmd
}

// openStore builds the configured session store and its cleanup func.
func openStore(cfg *config.Config) (store.Store, func(), error) {
	switch cfg.Store {
	case config.StoreSQLite:
		s, err := store.OpenSQLite(cfg.DBPath, cfg.SessionSecret)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return s, func() { _ = s.Close() }, nil
	default:
		return store.NewMemoryStore(), func() {}, nil
	}
}
