// Package app assembles the rotation enforcer: configuration in,
// transports, schedule resolution and the reconciliation loop out.
package app

import (
	"context"
	"fmt"

	brcfg "hllrotate/internal/config"
	"hllrotate/internal/enforcer"
	"hllrotate/internal/gateway"
	"hllrotate/internal/gateway/command"
	"hllrotate/internal/gateway/crcon"
	"hllrotate/internal/gateway/rconv2"
	"hllrotate/internal/logger"
	"hllrotate/internal/maps"
	"hllrotate/internal/schedule"
	statushttp "hllrotate/internal/transport/http/status"

	"golang.org/x/sync/errgroup"
)

// App carries the wired components; construction does not start anything.
type App struct {
	cfg        *brcfg.Config
	enforcer   *enforcer.Enforcer
	statusHTTP *statushttp.Server
}

// NewApp builds the application object from configuration.
func NewApp(cfg *brcfg.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)

	loc, err := cfg.App.Location()
	if err != nil {
		return nil, err
	}

	classifier := command.NewClassifier(
		cfg.Rotation.Rejection.NotApplicablePatterns,
		cfg.Rotation.Rejection.InvalidNamePatterns,
	)

	var structured *crcon.Client
	if cfg.Crcon.Enabled {
		structured, err = crcon.NewClient(cfg.Crcon, classifier)
		if err != nil {
			return nil, fmt.Errorf("building crcon client failed: %w", err)
		}
	}
	var raw *rconv2.Client
	if cfg.Rcon.Enabled {
		raw, err = rconv2.NewClient(cfg.Rcon, classifier)
		if err != nil {
			return nil, fmt.Errorf("building rconv2 client failed: %w", err)
		}
	}
	commander, err := gateway.NewCommander(structured, raw)
	if err != nil {
		return nil, err
	}

	registry, err := schedule.NewRegistry(cfg.Rotation.SchedulePath)
	if err != nil {
		return nil, err
	}
	resolver, err := schedule.NewResolver(schedule.ResolverParams{
		Source:           registry,
		Location:         loc,
		RotationOverride: cfg.Rotation.NameOverride,
		AnchorOverride:   cfg.Rotation.CycleAnchor,
	})
	if err != nil {
		return nil, err
	}

	canon := maps.NewCanonicalizer(commander)
	mutator := maps.NewMutator(commander, canon)
	enf := enforcer.New(enforcer.Params{
		Commander: commander,
		Resolver:  resolver,
		Mutator:   mutator,
	})

	statusSrv, err := statushttp.NewServer(cfg.App.HTTPAddr, enf)
	if err != nil {
		return nil, fmt.Errorf("building status server failed: %w", err)
	}

	return &App{cfg: cfg, enforcer: enf, statusHTTP: statusSrv}, nil
}

// Run starts the status server and the enforcement loop and blocks until
// either fails or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.enforcer == nil {
		return fmt.Errorf("app not initialized")
	}
	group, ctx := errgroup.WithContext(ctx)

	if a.statusHTTP != nil {
		group.Go(func() error {
			logger.Infof("status server listening on %s", a.statusHTTP.Addr())
			if err := a.statusHTTP.Start(ctx); err != nil {
				return fmt.Errorf("status server error: %w", err)
			}
			return nil
		})
	}
	group.Go(func() error {
		return a.enforcer.Run(ctx)
	})

	return group.Wait()
}
