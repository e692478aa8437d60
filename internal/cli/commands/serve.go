package commands

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/labbench/testbench/internal/api"
	"github.com/labbench/testbench/internal/events"
	"github.com/labbench/testbench/internal/orm/migrate"
	"github.com/labbench/testbench/internal/store"
	"github.com/labbench/testbench/internal/web/cache"
	"github.com/labbench/testbench/internal/web/middleware"
	"github.com/labbench/testbench/internal/web/server"
)

func newServeCommand(a *app) *cobra.Command {
	var autoMigrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve the records API until SIGINT or SIGTERM.

In-flight requests are drained before the cache, the event publisher and
the database pool are closed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			cmd.SetContext(ctx)

			db, err := a.openDatabase(cmd)
			if err != nil {
				return err
			}
			srv, err := a.buildServer(ctx, db, autoMigrate)
			if err != nil {
				db.Close()
				return err
			}
			return srv.Run(ctx)
		},
	}

	cmd.Flags().BoolVar(&autoMigrate, "migrate", false, "apply pending migrations before serving")

	return cmd
}

// buildServer assembles the HTTP server around db. On success the server
// owns db and closes it after shutdown, after the cache and the publisher.
func (a *app) buildServer(ctx context.Context, db *sql.DB, autoMigrate bool) (*server.Server, error) {
	if autoMigrate {
		migrations, err := migrate.Embedded()
		if err != nil {
			return nil, err
		}
		if _, err := migrate.NewRunner(db, a.logger).MigrateUp(ctx, migrations); err != nil {
			return nil, err
		}
	}

	c, err := cache.New(ctx, a.cfg.CacheOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}

	var publisher events.Publisher = events.Nop{}
	if url := a.cfg.Events.NATSURL; url != "" {
		p, err := events.Connect(url, a.cfg.Events.SubjectPrefix, a.logger)
		if err != nil {
			c.Close()
			return nil, err
		}
		publisher = p
	}

	handler := api.NewRouter(api.Config{
		Prefix:    a.cfg.Server.APIPrefix,
		Store:     store.New(db, a.logger),
		Logger:    a.logger,
		Cache:     c,
		CacheTTL:  a.cfg.Cache.TTL,
		Publisher: publisher,
		Metrics:   middleware.NewMetrics(),
	})

	srvCfg := server.DefaultConfig(handler)
	srvCfg.Address = a.cfg.Address()
	srvCfg.ReadTimeout = a.cfg.Server.ReadTimeout
	srvCfg.WriteTimeout = a.cfg.Server.WriteTimeout

	srv, err := server.New(srvCfg, a.logger)
	if err != nil {
		publisher.Close()
		c.Close()
		return nil, err
	}

	srv.RegisterHook(func(context.Context) error { return db.Close() })
	srv.RegisterHook(func(context.Context) error { return publisher.Close() })
	srv.RegisterHook(func(context.Context) error { return c.Close() })

	a.logger.Info("server configured",
		zap.String("addr", srvCfg.Address),
		zap.String("api_prefix", a.cfg.Server.APIPrefix),
		zap.String("cache", a.cfg.Cache.Backend),
		zap.Bool("events", a.cfg.Events.NATSURL != ""))
	return srv, nil
}
