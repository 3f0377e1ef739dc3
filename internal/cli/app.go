package cli

import (
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/text/message"

	"github.com/n0roo/todo-mcp/internal/config"
	"github.com/n0roo/todo-mcp/internal/i18n"
	"github.com/n0roo/todo-mcp/internal/logging"
	"github.com/n0roo/todo-mcp/internal/mcp"
	"github.com/n0roo/todo-mcp/internal/task"
)

// app holds the objects built once per command run
type app struct {
	cfg        *config.Config
	logger     *slog.Logger
	store      task.Store
	dispatcher *mcp.Dispatcher
}

// newCatalog validates cfg and builds the printer and registry
func newCatalog(cfg *config.Config) (*message.Printer, *mcp.Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}
	tag, err := i18n.Resolve(cfg.Language)
	if err != nil {
		return nil, nil, err
	}
	bundle, err := i18n.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load catalogs: %w", err)
	}
	printer := bundle.Printer(tag)
	registry, err := mcp.NewRegistry(printer)
	if err != nil {
		return nil, nil, err
	}
	return printer, registry, nil
}

// newApp wires config, logger, store and dispatcher. Logs go to logOut.
func newApp(cfg *config.Config, logOut io.Writer) (*app, error) {
	printer, registry, err := newCatalog(cfg)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(logOut, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}

	backend, err := cfg.Backend()
	if err != nil {
		return nil, err
	}
	opts, err := cfg.StoreOptions()
	if err != nil {
		return nil, err
	}
	store, err := task.Open(backend, opts...)
	if err != nil {
		return nil, err
	}
	if cfg.Store.Seed {
		if err := task.Seed(store, demoSeeds(printer)); err != nil {
			store.Close()
			return nil, err
		}
	}

	logger.Debug("store_opened",
		slog.String("backend", string(backend)),
		slog.String("id_policy", cfg.Store.IDPolicy),
		slog.Bool("seed", cfg.Store.Seed),
		slog.String("language", cfg.Language))

	return &app{
		cfg:        cfg,
		logger:     logger,
		store:      store,
		dispatcher: mcp.NewDispatcher(store, registry, printer, logger),
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

// demoSeeds are the two starter tasks: one pending, one done
func demoSeeds(p *message.Printer) []task.SeedTask {
	return []task.SeedTask{
		{
			Title:       p.Sprintf("seed.learn.title"),
			Description: p.Sprintf("seed.learn.description"),
		},
		{
			Title:       p.Sprintf("seed.build.title"),
			Description: p.Sprintf("seed.build.description"),
			Completed:   true,
		},
	}
}
