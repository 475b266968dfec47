// Package pageops writes and composes finished PDF pages.
//
// Writer turns the primitives of a surface.Surface into a single-page
// document with gofpdf. Merge paints such a page on top of a letterhead by
// importing both pages as form XObjects with the gofpdi contrib package, and
// Concat joins finished documents. Inputs are checked with the reader
// package before they reach the importer.
package pageops

import (
	"fmt"

	"github.com/edentir/edenpdf"
	"github.com/edentir/edenpdf/reader"
)

// pageBox returns the MediaBox of page 1 of data, in points.
func pageBox(what string, data []byte) (reader.Rect, int, error) {
	doc, err := reader.Parse(data)
	if err != nil {
		return reader.Rect{}, 0, fmt.Errorf("%w: %s: %v", edenpdf.ErrMergeFailure, what, err)
	}
	if doc.NumPages() == 0 {
		return reader.Rect{}, 0, fmt.Errorf("%w: %s has no pages", edenpdf.ErrMergeFailure, what)
	}
	p, err := doc.Page(1)
	if err != nil {
		return reader.Rect{}, 0, fmt.Errorf("%w: %s: %v", edenpdf.ErrMergeFailure, what, err)
	}
	box := p.MediaBox
	if box.Width() <= 0 || box.Height() <= 0 {
		return reader.Rect{}, 0, fmt.Errorf("%w: %s has an empty page", edenpdf.ErrMergeFailure, what)
	}
	return box, doc.NumPages(), nil
}
