package layout

import (
	"github.com/edentir/edenpdf"
	"github.com/edentir/edenpdf/record"
	"github.com/edentir/edenpdf/surface"
)

// Cursor is the baseline, in mm from the page bottom, where the next block
// starts. It only moves down the page.
type Cursor float64

// SectionStyle describes the geometry of a line-item section.
type SectionStyle struct {
	X         float64      // left edge of the title and the item labels
	AmountX   float64      // right edge of the amounts
	Underline float64      // length of the rule under the title
	TitleFont edenpdf.Font // section title
	ItemFont  edenpdf.Font // labels and amounts
	FirstItem float64      // title baseline to first item baseline
	Pitch     float64      // distance between item baselines
	Gap       float64      // space added after the last item
	Bottom    float64      // lowest baseline an item may use
}

// InvoiceSectionStyle returns the section geometry of the invoice page with
// the given bottom boundary.
func InvoiceSectionStyle(bottom float64) SectionStyle {
	return SectionStyle{
		X:         25,
		AmountX:   185,
		Underline: 20,
		TitleFont: edenpdf.HelveticaBold(9.5),
		ItemFont:  edenpdf.Helvetica(9),
		FirstItem: 6,
		Pitch:     4.5,
		Gap:       3,
		Bottom:    bottom,
	}
}

// Capacity returns how many items fit in a section whose title sits at cur.
func (st SectionStyle) Capacity(cur Cursor) int {
	first := float64(cur) - st.FirstItem
	if first < st.Bottom || st.Pitch <= 0 {
		return 0
	}
	// A small epsilon keeps items that land exactly on the boundary.
	return int((first-st.Bottom)/st.Pitch+1e-9) + 1
}

// RenderSection draws a titled list of items starting at cur and returns
// the cursor after the section and the number of items drawn.
//
// An empty list draws nothing and returns cur. Items whose baseline would
// fall under st.Bottom are dropped; when not even the first one fits the
// whole section, title included, is skipped and cur is returned. The
// returned cursor never goes under st.Bottom.
func RenderSection(s *surface.Surface, cur Cursor, title string, items []record.LineItem, st SectionStyle) (Cursor, int) {
	if len(items) == 0 {
		return cur, 0
	}
	n := min(st.Capacity(cur), len(items))
	if n == 0 {
		return cur, 0
	}

	top := float64(cur)
	s.Draw(
		surface.Text{Tag: title + ".title", X: st.X, Y: top, Str: title, Font: st.TitleFont},
		surface.Line{Tag: title + ".rule", X1: st.X, Y1: top - 1, X2: st.X + st.Underline, Y2: top - 1},
	)

	y := top - st.FirstItem
	for _, it := range items[:n] {
		s.Draw(
			surface.Text{Tag: title + ".label", X: st.X, Y: y, Str: it.Label, Font: st.ItemFont},
			surface.Text{Tag: title + ".amount", X: st.AmountX, Y: y, Str: it.Amount.Fixed3(), Font: st.ItemFont, Align: surface.AlignRight},
		)
		y -= st.Pitch
	}
	next := y - st.Gap
	if next < st.Bottom {
		next = st.Bottom
	}
	return Cursor(next), n
}

// SectionStats records what happened to one section.
type SectionStats struct {
	Title    string
	Top      Cursor
	Next     Cursor
	Rendered int
	Dropped  int
}

// Accumulator threads a cursor through consecutive sections.
type Accumulator struct {
	Surface *surface.Surface
	Style   SectionStyle
	Cursor  Cursor
	Stats   []SectionStats
}

// NewAccumulator starts a run of sections at top.
func NewAccumulator(s *surface.Surface, st SectionStyle, top Cursor) *Accumulator {
	return &Accumulator{Surface: s, Style: st, Cursor: top}
}

// Section renders one section at the current cursor and advances it.
func (a *Accumulator) Section(title string, items []record.LineItem) Cursor {
	top := a.Cursor
	next, n := RenderSection(a.Surface, top, title, items, a.Style)
	a.Cursor = next
	a.Stats = append(a.Stats, SectionStats{
		Title:    title,
		Top:      top,
		Next:     next,
		Rendered: n,
		Dropped:  len(items) - n,
	})
	return next
}

// Dropped returns the total number of items left out across all sections.
func (a *Accumulator) Dropped() int {
	total := 0
	for _, st := range a.Stats {
		total += st.Dropped
	}
	return total
}
