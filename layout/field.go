// Package layout places labeled fields, checkboxes, wrapped text columns and
// line-item sections on a surface.
//
// Coordinates are millimetres from the bottom-left corner of the page; a
// baseline lower on the page has a smaller Y.
package layout

import (
	"github.com/edentir/edenpdf"
	"github.com/edentir/edenpdf/surface"
)

// Offsets of the dotted leader and the value relative to the label baseline.
var (
	leaderDrop = edenpdf.Pt(2)
	valueInset = edenpdf.Pt(2)
	valueRise  = edenpdf.Pt(1)
	leaderDash = []float64{1, 2}
)

// Default fonts of a dotted-leader field.
var (
	DefaultLabelFont = edenpdf.Helvetica(12)
	DefaultValueFont = edenpdf.Helvetica(11)
)

// FieldSpec places one labeled field: the label at (X, Y), a dotted leader
// of BoxWidth starting LabelWidth to the right of X, and the value written
// on the leader.
type FieldSpec struct {
	Name       string        `json:"name"`
	Label      string        `json:"label"`
	X          float64       `json:"x"`
	Y          float64       `json:"y"`
	BoxWidth   float64       `json:"boxWidth"`
	LabelWidth float64       `json:"labelWidth"`
	LabelFont  *edenpdf.Font `json:"labelFont,omitempty"`
	ValueFont  *edenpdf.Font `json:"valueFont,omitempty"`
}

func (f FieldSpec) labelFont() edenpdf.Font {
	if f.LabelFont != nil {
		return *f.LabelFont
	}
	return DefaultLabelFont
}

func (f FieldSpec) valueFont() edenpdf.Font {
	if f.ValueFont != nil {
		return *f.ValueFont
	}
	return DefaultValueFont
}

// LeaderStart returns the x coordinate where the dotted leader begins.
func (f FieldSpec) LeaderStart() float64 { return f.X + f.LabelWidth }

// RenderField draws the label, the dotted leader and, when value stringifies
// to a non-empty string, the value. Nothing is clipped: a long value runs
// past the leader.
func RenderField(s *surface.Surface, spec FieldSpec, value any) {
	start := spec.LeaderStart()
	s.Draw(
		surface.Text{Tag: spec.Name + ".label", X: spec.X, Y: spec.Y, Str: spec.Label, Font: spec.labelFont()},
		surface.Line{
			Tag: spec.Name + ".leader",
			X1:  start, Y1: spec.Y - leaderDrop,
			X2: start + spec.BoxWidth, Y2: spec.Y - leaderDrop,
			Dash: leaderDash,
		},
	)
	if v := edenpdf.Stringify(value); v != "" {
		s.Draw(surface.Text{
			Tag:  spec.Name + ".value",
			X:    start + valueInset,
			Y:    spec.Y + valueRise,
			Str:  v,
			Font: spec.valueFont(),
		})
	}
}
