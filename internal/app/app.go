// Package app builds the collaborators shared by the edenpdf commands from
// a loaded configuration.
package app

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/edentir/edenpdf/artifact"
	"github.com/edentir/edenpdf/config"
	"github.com/edentir/edenpdf/render"
	"github.com/edentir/edenpdf/source"
	"github.com/edentir/edenpdf/templates"
)

// App is the wired process state.
type App struct {
	Config    *config.Config
	Renderer  *render.Renderer
	Templates templates.Store
	Invoices  source.Invoices // nil without an sql section
	Sink      artifact.Sink   // nil without output_dir
	Cache     artifact.Cache  // nil without a redis section

	closers []func() error
}

// New connects everything cfg asks for. On failure the parts already
// opened are closed.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}
	if err := a.open(ctx); err != nil {
		if cerr := a.Close(); cerr != nil {
			log.Printf("[WARN] closing after failed start: %v", cerr)
		}
		return nil, err
	}
	return a, nil
}

func (a *App) open(ctx context.Context) error {
	cfg := a.Config
	rc, err := cfg.RenderConfig()
	if err != nil {
		return err
	}
	if a.Renderer, err = render.New(rc); err != nil {
		return err
	}
	a.Templates = &templates.Cached{Store: templates.Dir{Root: cfg.Path(cfg.TemplatesDir)}}

	if cfg.SQL != nil {
		inv, err := source.Open(ctx, cfg.SQL.Type, cfg.SQL.ConnString(), cfg.SQL.Table)
		if err != nil {
			return err
		}
		a.Invoices = inv
		a.closers = append(a.closers, inv.Close)
	} else {
		log.Println("[WARN] no sql section: invoice lookup disabled")
	}

	if cfg.Redis != nil {
		r, err := artifact.NewRedis(ctx, cfg.Redis.Addr(), cfg.Redis.PW, cfg.Redis.DB, time.Duration(cfg.Redis.TTL))
		if err != nil {
			return err
		}
		a.Cache = r
		a.closers = append(a.closers, r.Close)
	}
	if cfg.OutputDir != "" {
		a.Sink = artifact.Dir{Root: cfg.Path(cfg.OutputDir)}
	}
	return nil
}

// Close releases connections in reverse opening order.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
