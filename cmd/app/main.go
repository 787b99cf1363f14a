package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/seywald/marque/internal"
	"github.com/seywald/marque/internal/datastore"
	"github.com/seywald/marque/internal/history"
	"github.com/seywald/marque/internal/linkservice"
	"github.com/seywald/marque/internal/mcpserver"
	"github.com/seywald/marque/internal/pagecache"
	"github.com/seywald/marque/internal/store"
	pkgconfig "github.com/seywald/marque/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.Load(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

// serveMCP exposes the collection over MCP stdio. It runs against the
// same datastore as the HTTP server, without the HTTP surface.
func serveMCP(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))

	ds, err := datastore.NewFile(cfg.Resource.Datastore)
	if err != nil {
		return fmt.Errorf("init datastore: %w", err)
	}
	links, err := store.New(ds, store.Options{
		IsOwner: true,
		Cache:   pagecache.Noop{},
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}

	hist, err := history.Open(cfg.History.Path, cfg.History.Retention())
	if err != nil {
		return fmt.Errorf("init history: %w", err)
	}
	defer hist.Close()

	svc := linkservice.NewService(links, hist, nil, logger)
	return mcpserver.New(svc).ServeStdio()
}

func main() {
	configFlag := &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file",
		DefaultText: "config/config.yaml",
		Value:       "config/config.yaml",
		Sources:     cli.EnvVars("APP_CONFIG_FILE"),
	}

	cmd := &cli.Command{
		Name:   "marque",
		Usage:  "Self-hosted bookmark store with full-text and tag search, daily digests, and a change history",
		Action: serve,
		Flags:  []cli.Flag{configFlag},
		Commands: []*cli.Command{
			{
				Name:   "mcp",
				Usage:  "Serve the bookmark collection over MCP stdio",
				Action: serveMCP,
				Flags:  []cli.Flag{configFlag},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
