package layout

import (
	"strings"

	"github.com/edentir/edenpdf"
	"github.com/edentir/edenpdf/surface"
)

// boxDrop is how far the bottom of a checkbox sits under the caption baseline.
const boxDrop = 1.0

// DefaultMark is the font of the X drawn in a checked box.
var DefaultMark = edenpdf.HelveticaBold(12)

// RenderCheckbox draws a square of the given size whose bottom edge is 1 mm
// under the baseline at pos, marked with an X when checked.
func RenderCheckbox(s *surface.Surface, pos edenpdf.Point, size float64, checked bool, tag string) {
	renderCheckbox(s, pos, size, checked, DefaultMark, tag)
}

func renderCheckbox(s *surface.Surface, pos edenpdf.Point, size float64, checked bool, mark edenpdf.Font, tag string) {
	s.Draw(surface.Checkbox{
		Tag:     tag,
		X:       pos.X,
		Y:       pos.Y - boxDrop,
		Size:    size,
		Checked: checked,
		Mark:    mark,
	})
}

// Choice is one option of a ChoiceGroup.
type Choice struct {
	Value    string  `json:"value"` // compared case-insensitively with the selection
	Caption  string  `json:"caption"`
	BoxX     float64 `json:"boxX"`
	CaptionX float64 `json:"captionX"`
}

// ChoiceGroup is a row of mutually exclusive checkboxes sharing a baseline.
type ChoiceGroup struct {
	Name    string       `json:"name"`
	Y       float64      `json:"y"`
	Size    float64      `json:"size"`
	Caption edenpdf.Font `json:"caption"`
	Mark    edenpdf.Font `json:"mark"`
	Options []Choice     `json:"options"`
}

// At returns a copy of g moved to baseline y.
func (g ChoiceGroup) At(y float64) ChoiceGroup {
	g.Y = y
	return g
}

// RenderChoice draws every option of g and checks the one matching
// selected. An unknown selection leaves every box empty.
func RenderChoice(s *surface.Surface, g ChoiceGroup, selected string) {
	mark := g.Mark
	if mark.Family == "" {
		mark = DefaultMark
	}
	selected = strings.TrimSpace(selected)
	for _, o := range g.Options {
		checked := selected != "" && strings.EqualFold(o.Value, selected)
		renderCheckbox(s, edenpdf.Point{X: o.BoxX, Y: g.Y}, g.Size, checked, mark, g.Name+"."+o.Value)
		s.Draw(surface.Text{
			Tag:  g.Name + "." + o.Value + ".caption",
			X:    o.CaptionX,
			Y:    g.Y,
			Str:  o.Caption,
			Font: g.Caption,
		})
	}
}
