package pageops

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/edentir/edenpdf"
	"github.com/jung-kurt/gofpdf"
	"github.com/jung-kurt/gofpdf/contrib/gofpdi"
)

// Merger composes finished documents. The zero value compresses nothing and
// stamps the current time; use NewMerger for reproducible output.
type Merger struct {
	Compress     bool
	CreationDate time.Time
}

// NewMerger returns a merger configured from cfg.
func NewMerger(cfg edenpdf.Config) *Merger {
	return &Merger{Compress: cfg.Compress, CreationDate: cfg.CreationDate}
}

// Merge paints page 1 of content over page 1 of background with the default
// merger.
func Merge(content, background []byte) ([]byte, error) {
	return (&Merger{Compress: true}).Merge(content, background)
}

// MergeFile is Merge with the background read from path. A missing or
// unreadable file yields edenpdf.ErrTemplateMissing.
func MergeFile(content []byte, path string) ([]byte, error) {
	return (&Merger{Compress: true}).MergeFile(content, path)
}

// MergeFile reads the background from path and merges content over it.
func (m *Merger) MergeFile(content []byte, path string) ([]byte, error) {
	bg, err := os.ReadFile(path)
	if err != nil {
		return nil, edenpdf.NewError("Merge", fmt.Errorf("%w: %v", edenpdf.ErrTemplateMissing, err))
	}
	return m.Merge(content, bg)
}

// Merge returns a one-page document whose page has the size of the
// background's first page, with the background drawn first and the first
// page of content scaled onto it. Further pages of either input are ignored.
func (m *Merger) Merge(content, background []byte) ([]byte, error) {
	if len(background) == 0 {
		return nil, edenpdf.NewError("Merge", edenpdf.ErrTemplateMissing)
	}
	box, _, err := pageBox("background", background)
	if err != nil {
		return nil, edenpdf.NewError("Merge", err)
	}
	if _, _, err := pageBox("content", content); err != nil {
		return nil, edenpdf.NewError("Merge", err)
	}

	paths, cleanup, err := spool(background, content)
	if err != nil {
		return nil, edenpdf.NewError("Merge", err)
	}
	defer cleanup()

	w, h := box.Width(), box.Height()
	pdf := m.document(w, h)
	err = importing(func() error {
		imp := gofpdi.NewImporter()
		bgID := imp.ImportPage(pdf, paths[0], 1, "/MediaBox")
		fgID := imp.ImportPage(pdf, paths[1], 1, "/MediaBox")
		pdf.AddPage()
		imp.UseImportedTemplate(pdf, bgID, 0, 0, w, h)
		imp.UseImportedTemplate(pdf, fgID, 0, 0, w, h)
		return pdf.Error()
	})
	if err != nil {
		return nil, edenpdf.NewError("Merge", err)
	}
	return output(pdf)
}

// Concat joins every page of docs, in order, into one document. Each page
// keeps its own size.
func (m *Merger) Concat(docs ...[]byte) ([]byte, error) {
	if len(docs) == 0 {
		return nil, edenpdf.NewError("Concat", fmt.Errorf("%w: no documents", edenpdf.ErrInvalidParam))
	}
	counts := make([]int, len(docs))
	for i, doc := range docs {
		_, n, err := pageBox(fmt.Sprintf("document %d", i+1), doc)
		if err != nil {
			return nil, edenpdf.NewError("Concat", err)
		}
		counts[i] = n
	}
	paths, cleanup, err := spool(docs...)
	if err != nil {
		return nil, edenpdf.NewError("Concat", err)
	}
	defer cleanup()

	pdf := m.document(0, 0)
	imp := gofpdi.NewImporter()
	for i, path := range paths {
		n := counts[i]
		err := importing(func() error {
			for p := 1; p <= n; p++ {
				id := imp.ImportPage(pdf, path, p, "/MediaBox")
				pw, ph := pageSize(imp, p)
				pdf.AddPageFormat("P", gofpdf.SizeType{Wd: pw, Ht: ph})
				imp.UseImportedTemplate(pdf, id, 0, 0, pw, ph)
			}
			return pdf.Error()
		})
		if err != nil {
			return nil, edenpdf.NewError("Concat", err)
		}
	}
	return output(pdf)
}

// document returns an empty point-based document. A zero size keeps A4.
func (m *Merger) document(w, h float64) *gofpdf.Fpdf {
	init := &gofpdf.InitType{OrientationStr: "P", UnitStr: "pt", SizeStr: "A4"}
	if w > 0 && h > 0 {
		init.SizeStr = ""
		init.Size = gofpdf.SizeType{Wd: w, Ht: h}
	}
	pdf := gofpdf.NewCustom(init)
	pdf.SetCompression(m.Compress)
	pdf.SetCatalogSort(true)
	if !m.CreationDate.IsZero() {
		pdf.SetCreationDate(m.CreationDate)
	}
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	return pdf
}

// spool writes each input to its own file in a fresh directory. The
// importer names imported objects after their source path and every stream
// source shares the empty one, so two streams in one document overwrite
// each other's objects.
func spool(docs ...[]byte) (paths []string, cleanup func(), err error) {
	dir, err := os.MkdirTemp("", "edenpdf-merge-")
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", edenpdf.ErrMergeFailure, err)
	}
	cleanup = func() { os.RemoveAll(dir) }
	for i, doc := range docs {
		path := filepath.Join(dir, fmt.Sprintf("%d.pdf", i+1))
		if err := os.WriteFile(path, doc, 0o600); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("%w: %v", edenpdf.ErrMergeFailure, err)
		}
		paths = append(paths, path)
	}
	return paths, cleanup, nil
}

// pageSize returns the MediaBox of the most recently imported source page,
// falling back to A4.
func pageSize(imp *gofpdi.Importer, page int) (w, h float64) {
	if dims, ok := imp.GetPageSizes()[page]; ok {
		if mb, ok := dims["/MediaBox"]; ok {
			w, h = mb["w"], mb["h"]
		}
	}
	if w == 0 || h == 0 {
		w, h = 595.28, 841.89
	}
	return w, h
}

// importing runs fn and turns a panic inside the importer into
// edenpdf.ErrMergeFailure.
func importing(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: importer: %v", edenpdf.ErrMergeFailure, r)
		}
	}()
	if err := fn(); err != nil {
		if errors.Is(err, edenpdf.ErrMergeFailure) {
			return err
		}
		return fmt.Errorf("%w: %v", edenpdf.ErrMergeFailure, err)
	}
	return nil
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, edenpdf.NewError("Merge", fmt.Errorf("%w: %v", edenpdf.ErrMergeFailure, err))
	}
	return buf.Bytes(), nil
}
