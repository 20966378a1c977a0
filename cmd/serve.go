package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/downbeats/internal/server"
	"github.com/desertthunder/downbeats/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve runs the reference API until the context is canceled.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	cfg := *r.config
	if cmd.IsSet("host") {
		cfg.Server.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.Server.Port = cmd.Int("port")
	}
	if cmd.IsSet("database") {
		cfg.Database.Path = cmd.String("database")
	}
	if cmd.IsSet("media-dir") {
		cfg.Server.MediaDir = cmd.String("media-dir")
	}

	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("%w: --port must be between 0 and 65535, got %d", shared.ErrInvalidFlag, cfg.Server.Port)
	}

	db, err := shared.NewDatabase(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if cfg.Database.Path != ":memory:" {
		shared.ConfigureDatabase(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
	}

	if err := shared.RunMigrations(db); err != nil {
		return err
	}

	srv := server.New(&cfg, db, shared.WithLogger(r.logger, "component", "server"))
	r.logger.Info("serving", "addr", srv.Addr(), "prefix", server.ResourcePrefix(cfg.APIPrefix()), "media", cfg.Server.MediaDir)
	return srv.ListenAndServe(ctx)
}
