package layout

import (
	"fmt"

	"github.com/edentir/edenpdf"
	"github.com/edentir/edenpdf/surface"
	"github.com/edentir/edenpdf/textfit"
)

// cellInset is the distance between a column's left edge and its text, and
// the amount removed from the column width before wrapping.
const cellInset = 2.0

// Column is one cell of a boxed text table.
type Column struct {
	Name    string  `json:"name"`
	Heading string  `json:"heading"`
	X       float64 `json:"x"`
	Width   float64 `json:"width"`
}

// ColumnTable is a boxed row of titled columns holding wrapped free text,
// like the shipper / consignee / goods table of a dossier.
type ColumnTable struct {
	Left, Right  float64
	Top          float64
	Height       float64
	HeaderHeight float64 // distance from Top to the rule under the headings
	HeadingDrop  float64 // distance from Top to the heading baseline
	HeadingFont  edenpdf.Font
	RuleWidth    float64 // points
	Columns      []Column
}

// RenderColumnTable draws the box, the column rules, the centred headings
// and the wrapped text of every column. values is keyed by column name.
// It returns the largest number of lines used by any column.
func RenderColumnTable(s *surface.Surface, m textfit.Measurer, t ColumnTable, values map[string]any, policy edenpdf.WrapPolicy) (int, error) {
	if len(t.Columns) == 0 {
		return 0, fmt.Errorf("%w: column table without columns", edenpdf.ErrInvalidParam)
	}
	s.Draw(surface.Rect{Tag: "table.box", X: t.Left, Y: t.Top - t.Height, W: t.Right - t.Left, H: t.Height, Width: t.RuleWidth})
	for _, c := range t.Columns[1:] {
		s.Draw(surface.Line{Tag: "table.rule." + c.Name, X1: c.X, Y1: t.Top, X2: c.X, Y2: t.Top - t.Height, Width: t.RuleWidth})
	}
	s.Draw(surface.Line{Tag: "table.header", X1: t.Left, Y1: t.Top - t.HeaderHeight, X2: t.Right, Y2: t.Top - t.HeaderHeight, Width: t.RuleWidth})

	most := 0
	for _, c := range t.Columns {
		s.Draw(surface.Text{
			Tag:   c.Name + ".heading",
			X:     c.X + c.Width/2,
			Y:     t.Top - t.HeadingDrop,
			Str:   c.Heading,
			Font:  t.HeadingFont,
			Align: surface.AlignCenter,
		})
		n, err := RenderWrapped(s, m, c.Name, c.X, t.Top, c.Width, values[c.Name], policy)
		if err != nil {
			return 0, err
		}
		most = max(most, n)
	}
	return most, nil
}

// RenderWrapped wraps value into a column of the given width whose top edge
// is at top, following policy, and draws the kept lines. It returns the
// number of lines drawn.
func RenderWrapped(s *surface.Surface, m textfit.Measurer, tag string, x, top, width float64, value any, policy edenpdf.WrapPolicy) (int, error) {
	font := edenpdf.Helvetica(policy.FontSize)
	lines, err := textfit.WrapValue(m, value, width-2*cellInset, policy.MaxLines, font, policy.Margin)
	if err != nil {
		return 0, fmt.Errorf("layout: wrap %s: %w", tag, err)
	}
	for i, line := range lines {
		s.Draw(surface.Text{
			Tag:  tag + ".text",
			X:    x + cellInset,
			Y:    top - policy.FirstLine - float64(i)*policy.LineHeight,
			Str:  line,
			Font: font,
		})
	}
	return len(lines), nil
}
