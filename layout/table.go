package layout

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/edentir/edenpdf"
	"github.com/edentir/edenpdf/surface"
)

// Table is a declarative set of field placements keyed by logical name.
// Positions may be relative: Shift moves a whole table to its anchor.
//
// A table can be written as JSON:
//
//	{
//	  "name": "transport",
//	  "fields": [
//	    {"name": "navire", "label": "Navire :", "x": 10, "y": -40, "boxWidth": 50, "labelWidth": 20},
//	    {"name": "escale", "label": "Escale :", "x": 85, "y": -40, "boxWidth": 45, "labelWidth": 20,
//	     "valueFont": {"family": "Helvetica", "size": 10}}
//	  ]
//	}
type Table struct {
	Name   string      `json:"name"`
	Fields []FieldSpec `json:"fields"`
}

// LoadTable decodes a JSON table and validates it.
func LoadTable(r io.Reader) (Table, error) {
	var t Table
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&t); err != nil {
		return Table{}, fmt.Errorf("layout: parsing table: %w", err)
	}
	if err := t.Validate(); err != nil {
		return Table{}, err
	}
	return t, nil
}

// Validate checks that every field has a unique non-empty name, a known
// font and non-negative widths.
func (t Table) Validate() error {
	seen := make(map[string]bool, len(t.Fields))
	for i, f := range t.Fields {
		if f.Name == "" {
			return fmt.Errorf("%w: table %q field %d has no name", edenpdf.ErrInvalidParam, t.Name, i)
		}
		if seen[f.Name] {
			return fmt.Errorf("%w: table %q field %q defined twice", edenpdf.ErrInvalidParam, t.Name, f.Name)
		}
		seen[f.Name] = true
		if f.BoxWidth < 0 || f.LabelWidth < 0 {
			return fmt.Errorf("%w: table %q field %q has a negative width", edenpdf.ErrInvalidParam, t.Name, f.Name)
		}
		for _, font := range []*edenpdf.Font{f.LabelFont, f.ValueFont} {
			if font != nil && (font.Family == "" || font.Size <= 0) {
				return fmt.Errorf("%w: table %q field %q font %+v", edenpdf.ErrUnknownFont, t.Name, f.Name, *font)
			}
		}
	}
	return nil
}

// Lookup returns the field with the given name.
func (t Table) Lookup(name string) (FieldSpec, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// Shift returns a copy of t with every field moved by (dx, dy).
func (t Table) Shift(dx, dy float64) Table {
	out := Table{Name: t.Name, Fields: make([]FieldSpec, len(t.Fields))}
	for i, f := range t.Fields {
		f.X += dx
		f.Y += dy
		out.Fields[i] = f
	}
	return out
}

// Override returns a copy of t where fields of o replace the fields of the
// same name. Fields of o unknown to t are appended.
func (t Table) Override(o Table) Table {
	out := Table{Name: t.Name, Fields: append([]FieldSpec(nil), t.Fields...)}
	index := make(map[string]int, len(out.Fields))
	for i, f := range out.Fields {
		index[f.Name] = i
	}
	for _, f := range o.Fields {
		if i, ok := index[f.Name]; ok {
			out.Fields[i] = f
			continue
		}
		index[f.Name] = len(out.Fields)
		out.Fields = append(out.Fields, f)
	}
	return out
}

// RenderTable draws every field of t in order with its value from values.
// Missing values draw an empty leader.
func RenderTable(s *surface.Surface, t Table, values map[string]any) {
	for _, f := range t.Fields {
		RenderField(s, f, values[f.Name])
	}
}
