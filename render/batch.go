package render

import (
	"context"
	"fmt"
	"runtime"

	"github.com/edentir/edenpdf"
	"github.com/edentir/edenpdf/record"
	"golang.org/x/sync/errgroup"
)

// Job is one document of a batch: a dossier, or an invoice with its
// letterhead.
type Job struct {
	Dossier    *record.Dossier
	Invoice    *record.Invoice
	Background []byte
}

// Render renders the job's document.
func (r *Renderer) Render(j Job) (*Artifact, error) {
	switch {
	case j.Dossier != nil && j.Invoice == nil:
		return r.Dossier(j.Dossier)
	case j.Invoice != nil && j.Dossier == nil:
		return r.Invoice(j.Invoice, j.Background)
	default:
		return nil, edenpdf.NewError("Render", fmt.Errorf("%w: a job holds exactly one record", edenpdf.ErrInvalidParam))
	}
}

// Batch renders jobs with at most workers goroutines and returns the
// artifacts in job order. The first failure cancels the jobs not yet
// started. workers <= 0 uses GOMAXPROCS.
func (r *Renderer) Batch(ctx context.Context, jobs []Job, workers int) ([]*Artifact, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	out := make([]*Artifact, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, j := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			a, err := r.Render(j)
			if err != nil {
				return fmt.Errorf("render: job %d: %w", i, err)
			}
			out[i] = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Bundle joins the documents of artifacts into one PDF, in order.
func (r *Renderer) Bundle(artifacts []*Artifact) ([]byte, error) {
	docs := make([][]byte, 0, len(artifacts))
	for _, a := range artifacts {
		if a != nil {
			docs = append(docs, a.Data)
		}
	}
	return r.merger.Concat(docs...)
}
