// Package render lays out dossier cover sheets and invoices on a single A4
// page and serializes them.
//
// A Renderer holds immutable configuration and collaborators that are safe
// for concurrent use, so one Renderer can serve many goroutines. Each call
// builds its own surface.Surface.
package render

import (
	"fmt"

	"github.com/edentir/edenpdf"
	"github.com/edentir/edenpdf/layout"
	"github.com/edentir/edenpdf/pageops"
	"github.com/edentir/edenpdf/surface"
	"github.com/edentir/edenpdf/textfit"
)

// Document kinds.
const (
	KindDossier = "dossier"
	KindInvoice = "facture"
)

// Artifact is a finished document.
type Artifact struct {
	Kind     string
	Filename string // download name hint
	Data     []byte
	Record   any // the record it was rendered from
}

// Renderer renders records into PDF documents.
type Renderer struct {
	cfg      edenpdf.Config
	measurer textfit.Measurer
	writer   *pageops.Writer
	merger   *pageops.Merger
	tables   map[string]layout.Table
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithMeasurer replaces the core-font measurer used for wrapping.
func WithMeasurer(m textfit.Measurer) Option {
	return func(r *Renderer) {
		r.measurer = m
	}
}

// WithTable replaces fields of the built-in table with the same name.
// Unknown table names are rejected by New.
func WithTable(t layout.Table) Option {
	return func(r *Renderer) {
		base, ok := r.tables[t.Name]
		if !ok {
			r.tables[t.Name] = layout.Table{Name: t.Name}
			return
		}
		r.tables[t.Name] = base.Override(t)
	}
}

// New returns a renderer for cfg. The configuration must select a wrap
// policy.
func New(cfg edenpdf.Config, opts ...Option) (*Renderer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, edenpdf.NewError("New", err)
	}
	r := &Renderer{
		cfg:      cfg,
		measurer: textfit.NewCoreMeasurer(),
		writer:   pageops.NewWriter(cfg),
		merger:   pageops.NewMerger(cfg),
		tables:   defaultTables(),
	}
	for _, opt := range opts {
		opt(r)
	}
	for name, t := range r.tables {
		if len(t.Fields) == 0 {
			return nil, edenpdf.NewError("New", fmt.Errorf("%w: unknown table %q", edenpdf.ErrInvalidParam, name))
		}
		if err := t.Validate(); err != nil {
			return nil, edenpdf.NewError("New", err)
		}
	}
	return r, nil
}

// Config returns the renderer configuration.
func (r *Renderer) Config() edenpdf.Config { return r.cfg }

// Table returns the placement table with the given name.
func (r *Renderer) Table(name string) (layout.Table, bool) {
	t, ok := r.tables[name]
	return t, ok
}

func (r *Renderer) finalize(s *surface.Surface, title string) ([]byte, error) {
	return s.Finalize(r.writer.WithTitle(title))
}
