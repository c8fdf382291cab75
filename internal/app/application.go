package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/raysh454/promptlab/internal/catalog"
	"github.com/raysh454/promptlab/internal/loader"
	"github.com/raysh454/promptlab/internal/logging"
	"github.com/raysh454/promptlab/internal/server"
	"github.com/raysh454/promptlab/internal/webclient"
)

// Application is the global runtime state container. It holds the config and
// the shared logger, and builds the components each command needs.
type Application struct {
	Config *Config
	Logger logging.Logger
}

// NewApplication constructs an Application from an already-loaded config.
// A nil logger writes JSON lines to logOut at the configured level.
func NewApplication(cfg *Config, logger logging.Logger, logOut io.Writer) (*Application, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if logger == nil {
		logger = logging.NewLogger("promptlab", logOut, logging.ParseLevel(cfg.LogLevel))
	}
	return &Application{Config: cfg, Logger: logger}, nil
}

// NewLoader builds the configured web client and a Loader over it. Close
// the returned client when done.
func (a *Application) NewLoader(modes loader.ModeSource, out loader.Display) (*loader.Loader, webclient.WebClient, error) {
	wc, err := webclient.NewWebClient(a.Config.WebClient, a.Logger)
	if err != nil {
		return nil, nil, err
	}
	l, err := loader.New(a.Config.Loader, wc, modes, out, a.Logger)
	if err != nil {
		wc.Close()
		return nil, nil, fmt.Errorf("create loader: %w", err)
	}
	return l, wc, nil
}

// NewServer opens the catalog store and builds the API server over it. Close
// the returned store after the server stops.
func (a *Application) NewServer(ctx context.Context) (*server.Server, catalog.Store, error) {
	store, err := catalog.NewStore(ctx, a.Config.Catalog, a.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("open catalog: %w", err)
	}
	srvCfg := a.Config.Server
	if len(srvCfg.Modes) == 0 {
		srvCfg.Modes = a.Config.Modes
	}
	srv, err := server.NewServer(srvCfg, store, a.Logger)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return srv, store, nil
}
