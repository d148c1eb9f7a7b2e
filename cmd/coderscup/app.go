package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/taaha-0548/Coders-Cup-Problems/internal/admin"
	"github.com/taaha-0548/Coders-Cup-Problems/internal/api"
	"github.com/taaha-0548/Coders-Cup-Problems/internal/broadcast"
	"github.com/taaha-0548/Coders-Cup-Problems/internal/config"
	"github.com/taaha-0548/Coders-Cup-Problems/internal/localstore"
	"github.com/taaha-0548/Coders-Cup-Problems/internal/page"
	"github.com/taaha-0548/Coders-Cup-Problems/internal/problems"
)

// app bundles the components one invocation (one "tab") runs on.
type app struct {
	cfg      config.Config
	source   string
	sessions localstore.Store
	shared   *localstore.FileStore

	bus      broadcast.Bus
	runBus   func(ctx context.Context)
	closeBus func()

	client   *api.Client
	dir      *problems.DirStore
	problems problems.Source
	cache    *problems.CachedSource
	backend  admin.Backend
	checker  page.PasswordChecker
}

func buildApp(cfg config.Config) (*app, error) {
	shared, err := localstore.NewFileStore(cfg.StateDir)
	if err != nil {
		return nil, err
	}
	a := &app{
		cfg:      cfg,
		source:   broadcast.NewSource(),
		sessions: localstore.NewMemStore(),
		shared:   shared,
	}

	if cfg.NATSURL != "" {
		nb, err := broadcast.ConnectNATSBus(broadcast.NATSBusConfig{URL: cfg.NATSURL, Subject: cfg.Subject}, a.source)
		if err != nil {
			return nil, err
		}
		a.bus = nb
		a.closeBus = nb.Close
	} else {
		sb := broadcast.NewStorageBus(shared, a.source, broadcast.StorageBusConfig{})
		a.bus = sb
		a.runBus = func(ctx context.Context) {
			if err := sb.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Warn().Err(err).Msg("Broadcast bus stopped")
			}
		}
	}

	switch cfg.Mode {
	case config.ModeAPI:
		a.client = api.NewClient(cfg.BaseURL)
		a.cache = problems.NewCachedSource(a.client, shared, problems.DefaultCacheTTL)
		a.problems = a.cache
		a.backend = admin.NewAPIBackend(a.client)
		a.checker = a.client
	case config.ModeStatic:
		dir, err := problems.NewDirStore(cfg.ProblemsDir)
		if err != nil {
			return nil, err
		}
		a.dir = dir
		a.problems = dir
		a.backend = admin.NewStaticBackend(dir, cfg.AdminPasswordHash)
		a.checker = page.NewHashChecker(cfg.GatePasswordHash)
	default:
		return nil, fmt.Errorf("unknown mode %q", cfg.Mode)
	}
	return a, nil
}

// controller wires the admin controller for this tab. The problem cache is
// shared through the state directory, so an invalidation here is seen by
// every other invocation pointed at it.
func (a *app) controller() *admin.Controller {
	c := admin.NewController(a.backend, a.sessions, a.bus, a.source)
	if a.cache != nil {
		c = c.WithCache(a.cache)
	}
	return c
}

// Close releases the transports.
func (a *app) Close() {
	if a.closeBus != nil {
		a.closeBus()
	}
}
