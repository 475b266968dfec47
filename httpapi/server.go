// Package httpapi exposes document rendering over HTTP.
//
//	POST /generate-pdf         dossier JSON body -> Dossier_<n>.pdf
//	POST /generate-pdf/bundle  {"dossiers": [...], "factures": [ids]} -> one PDF
//	GET  /facture/{id}         stored invoice on the letterhead -> Facture_<n>.pdf
//	GET  /healthz              liveness
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/edentir/edenpdf"
	"github.com/edentir/edenpdf/artifact"
	"github.com/edentir/edenpdf/record"
	"github.com/edentir/edenpdf/render"
	"github.com/edentir/edenpdf/source"
	"github.com/edentir/edenpdf/templates"
)

// DefaultMaxBody bounds request bodies when Server.MaxBody is zero.
const DefaultMaxBody = 1 << 20

// Server holds the collaborators of the HTTP handlers. Renderer and
// Templates are required; the rest is optional.
type Server struct {
	Renderer   *render.Renderer
	Templates  templates.Store
	Letterhead string          // template name of the invoice background
	Invoices   source.Invoices // nil disables GET /facture/{id}
	Sink       artifact.Sink   // receives every rendered document
	Cache      artifact.Cache  // serves repeated invoice downloads
	Origins    []string        // CORS allow-list
	Secret     []byte          // HS256 key; empty disables auth
	MaxBody    int64
	Workers    int // bundle rendering concurrency
}

// Handler returns the routed handler with its middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.healthz)
	mux.HandleFunc("POST /generate-pdf", s.generateDossier)
	mux.HandleFunc("POST /generate-pdf/bundle", s.generateBundle)
	mux.HandleFunc("GET /facture/{id}", s.invoice)

	var h http.Handler = mux
	if len(s.Secret) > 0 {
		h = Auth(s.Secret, []string{"/healthz"}, h)
	}
	h = CORS(s.Origins, h)
	return Recover(h)
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, Message{Type: "ok", Message: "healthy"})
}

func (s *Server) body(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	limit := s.MaxBody
	if limit <= 0 {
		limit = DefaultMaxBody
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", edenpdf.ErrInvalidParam, err)
	}
	if len(data) == 0 || string(data) == "null" {
		return nil, fmt.Errorf("%w: no data provided", edenpdf.ErrMalformedRecord)
	}
	return data, nil
}

func (s *Server) generateDossier(w http.ResponseWriter, r *http.Request) {
	data, err := s.body(w, r)
	if err != nil {
		fail(w, r, err)
		return
	}
	d, err := record.DecodeDossier(data)
	if err != nil {
		fail(w, r, err)
		return
	}
	a, err := s.Renderer.Dossier(d)
	if err != nil {
		fail(w, r, err)
		return
	}
	s.store(r.Context(), a)
	writePDF(w, a.Filename, a.Data)
}

func (s *Server) invoice(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid invoice id")
		return
	}
	if s.Invoices == nil {
		writeError(w, http.StatusServiceUnavailable, "no invoice source configured")
		return
	}
	inv, err := s.Invoices.Invoice(r.Context(), id)
	if err != nil {
		if errors.Is(err, source.ErrNotFound) {
			log.Printf("[WARN] invoice %d: %v", id, err)
			writeError(w, http.StatusNotFound, "Facture introuvable")
			return
		}
		fail(w, r, err)
		return
	}

	if s.Cache != nil {
		key, err := artifact.Key(render.KindInvoice, inv)
		if err == nil {
			data, err := s.Cache.Get(r.Context(), key)
			switch {
			case err == nil:
				writePDF(w, inv.Filename(), data)
				return
			case !errors.Is(err, artifact.ErrMiss):
				log.Printf("[WARN] invoice %d: %v", id, err)
			}
		}
	}

	a, err := s.renderInvoice(inv)
	if err != nil {
		fail(w, r, err)
		return
	}
	s.store(r.Context(), a)
	if s.Cache != nil {
		if _, err := s.Cache.Put(r.Context(), a); err != nil {
			log.Printf("[WARN] invoice %d: %v", id, err)
		}
	}
	writePDF(w, a.Filename, a.Data)
}

// renderInvoice paints inv on the letterhead.
func (s *Server) renderInvoice(inv *record.Invoice) (*render.Artifact, error) {
	bg, err := s.letterhead()
	if err != nil {
		return nil, err
	}
	return s.Renderer.Invoice(inv, bg)
}

// letterhead loads the configured background. Any failure is reported as
// edenpdf.ErrTemplateMissing, a server fault whatever the store says.
func (s *Server) letterhead() ([]byte, error) {
	bg, err := s.Templates.Open(s.Letterhead)
	if err == nil {
		return bg, nil
	}
	if !errors.Is(err, edenpdf.ErrTemplateMissing) {
		err = fmt.Errorf("%w: %w", edenpdf.ErrTemplateMissing, err)
	}
	return nil, fmt.Errorf("httpapi: letterhead %q: %w", s.Letterhead, err)
}

type bundleRequest struct {
	Dossiers []json.RawMessage `json:"dossiers"`
	Invoices []int64           `json:"factures"`
}

func (s *Server) generateBundle(w http.ResponseWriter, r *http.Request) {
	data, err := s.body(w, r)
	if err != nil {
		fail(w, r, err)
		return
	}
	var req bundleRequest
	if err := json.Unmarshal(data, &req); err != nil {
		fail(w, r, fmt.Errorf("%w: bundle: %v", edenpdf.ErrMalformedRecord, err))
		return
	}
	if len(req.Dossiers)+len(req.Invoices) == 0 {
		fail(w, r, fmt.Errorf("%w: empty bundle", edenpdf.ErrInvalidParam))
		return
	}
	if len(req.Invoices) > 0 && s.Invoices == nil {
		writeError(w, http.StatusServiceUnavailable, "no invoice source configured")
		return
	}

	jobs := make([]render.Job, 0, len(req.Dossiers)+len(req.Invoices))
	for i, raw := range req.Dossiers {
		d, err := record.DecodeDossier(raw)
		if err != nil {
			fail(w, r, fmt.Errorf("dossier %d: %w", i, err))
			return
		}
		jobs = append(jobs, render.Job{Dossier: d})
	}
	if len(req.Invoices) > 0 {
		bg, err := s.letterhead()
		if err != nil {
			fail(w, r, err)
			return
		}
		for _, id := range req.Invoices {
			inv, err := s.Invoices.Invoice(r.Context(), id)
			if err != nil {
				fail(w, r, err)
				return
			}
			jobs = append(jobs, render.Job{Invoice: inv, Background: bg})
		}
	}

	artifacts, err := s.Renderer.Batch(r.Context(), jobs, s.Workers)
	if err != nil {
		fail(w, r, err)
		return
	}
	for _, a := range artifacts {
		s.store(r.Context(), a)
	}
	doc, err := s.Renderer.Bundle(artifacts)
	if err != nil {
		fail(w, r, err)
		return
	}
	writePDF(w, "Documents.pdf", doc)
}

// store hands a to the sink. A sink failure is logged and does not fail
// the request.
func (s *Server) store(ctx context.Context, a *render.Artifact) {
	if s.Sink == nil {
		return
	}
	loc, err := s.Sink.Put(ctx, a)
	if err != nil {
		log.Printf("[WARN] storing %s: %v", a.Filename, err)
		return
	}
	if loc != "" {
		log.Printf("[INFO] stored %s at %s", a.Filename, loc)
	}
}
