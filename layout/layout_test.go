package layout

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/edentir/edenpdf"
	"github.com/edentir/edenpdf/record"
	"github.com/edentir/edenpdf/surface"
	"github.com/edentir/edenpdf/textfit"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func items(n int) []record.LineItem {
	out := make([]record.LineItem, n)
	for i := range out {
		out[i] = record.LineItem{Label: fmt.Sprintf("Item %d", i+1), Amount: record.MustAmount(fmt.Sprint(i + 1))}
	}
	return out
}

func TestRenderField(t *testing.T) {
	s := surface.New(edenpdf.A4)
	spec := FieldSpec{Name: "navire", Label: "Navire :", X: 10, Y: 100, BoxWidth: 50, LabelWidth: 20}
	RenderField(s, spec, "CARTHAGE")

	pt := edenpdf.Pt(1)
	want := []surface.Primitive{
		surface.Text{Tag: "navire.label", X: 10, Y: 100, Str: "Navire :", Font: edenpdf.Helvetica(12)},
		surface.Line{Tag: "navire.leader", X1: 30, Y1: 100 - 2*pt, X2: 80, Y2: 100 - 2*pt, Dash: []float64{1, 2}},
		surface.Text{Tag: "navire.value", X: 30 + 2*pt, Y: 100 + pt, Str: "CARTHAGE", Font: edenpdf.Helvetica(11)},
	}
	if diff := cmp.Diff(want, s.Ops(), approx); diff != "" {
		t.Errorf("primitives (-want +got):\n%s", diff)
	}
}

func TestRenderFieldEmptyValue(t *testing.T) {
	for _, v := range []any{nil, "", record.Text("  ")} {
		s := surface.New(edenpdf.A4)
		RenderField(s, FieldSpec{Name: "dg", Label: "DG :"}, v)
		if s.Len() != 2 {
			t.Errorf("value %#v: %d primitives, want label and leader only", v, s.Len())
		}
	}
}

func TestRenderFieldStringifies(t *testing.T) {
	s := surface.New(edenpdf.A4)
	RenderField(s, FieldSpec{Name: "pb"}, 1520.5)
	ops := s.Ops()
	if got := ops[len(ops)-1].(surface.Text).Str; got != "1520.5" {
		t.Errorf("value = %q", got)
	}
}

func checked(ops []surface.Primitive) []string {
	var out []string
	for _, op := range ops {
		if c, ok := op.(surface.Checkbox); ok && c.Checked {
			out = append(out, c.Tag)
		}
	}
	return out
}

func TestRenderChoice(t *testing.T) {
	mode := ChoiceGroup{
		Name: "mode", Y: 257, Size: 6,
		Caption: edenpdf.HelveticaBold(16), Mark: edenpdf.HelveticaBold(16),
		Options: []Choice{
			{Value: "import", Caption: "import", BoxX: 55, CaptionX: 65},
			{Value: "export", Caption: "export", BoxX: 125, CaptionX: 135},
		},
	}
	tests := []struct {
		selected string
		want     []string
	}{
		{"import", []string{"mode.import"}},
		{"EXPORT", []string{"mode.export"}},
		{" Import ", []string{"mode.import"}},
		{"transit", nil},
		{"", nil},
	}
	for _, tt := range tests {
		s := surface.New(edenpdf.A4)
		RenderChoice(s, mode, tt.selected)
		if diff := cmp.Diff(tt.want, checked(s.Ops())); diff != "" {
			t.Errorf("selected %q (-want +got):\n%s", tt.selected, diff)
		}
	}
}

func TestRenderCheckboxGeometry(t *testing.T) {
	s := surface.New(edenpdf.A4)
	RenderCheckbox(s, edenpdf.Point{X: 65, Y: 200}, 5, true, "nature.complet")
	want := []surface.Primitive{surface.Checkbox{
		Tag: "nature.complet", X: 65, Y: 199, Size: 5, Checked: true, Mark: DefaultMark,
	}}
	if diff := cmp.Diff(want, s.Ops(), approx); diff != "" {
		t.Errorf("checkbox (-want +got):\n%s", diff)
	}
}

func TestRenderSectionEmpty(t *testing.T) {
	st := InvoiceSectionStyle(20)
	empty := surface.New(edenpdf.A4)
	cur, n := RenderSection(empty, 182, "DEBOURS", nil, st)
	if cur != 182 || n != 0 {
		t.Errorf("empty section = (%v, %d), want (182, 0)", cur, n)
	}

	one := surface.New(edenpdf.A4)
	RenderSection(one, 182, "DEBOURS", items(1), st)

	// The only difference between the two surfaces is the one-item section.
	diff := cmp.Diff(empty.Ops(), one.Ops(), approx)
	if diff == "" {
		t.Fatal("one-item section drew nothing")
	}
	if len(empty.Ops()) != 0 {
		t.Errorf("empty section drew %v", empty.Ops())
	}
	if !strings.Contains(diff, "DEBOURS") {
		t.Errorf("diff does not mention the title:\n%s", diff)
	}
}

func TestRenderSectionTransitScenario(t *testing.T) {
	s := surface.New(edenpdf.A4)
	acc := NewAccumulator(s, InvoiceSectionStyle(20), 182)
	acc.Section("DEBOURS", nil)
	acc.Section("TRANSIT", []record.LineItem{{Label: "Frais X", Amount: record.MustAmount("12.5")}})

	want := []surface.Primitive{
		surface.Text{Tag: "TRANSIT.title", X: 25, Y: 182, Str: "TRANSIT", Font: edenpdf.HelveticaBold(9.5)},
		surface.Line{Tag: "TRANSIT.rule", X1: 25, Y1: 181, X2: 45, Y2: 181},
		surface.Text{Tag: "TRANSIT.label", X: 25, Y: 176, Str: "Frais X", Font: edenpdf.Helvetica(9)},
		surface.Text{Tag: "TRANSIT.amount", X: 185, Y: 176, Str: "12.500", Font: edenpdf.Helvetica(9), Align: surface.AlignRight},
	}
	if diff := cmp.Diff(want, s.Ops(), approx); diff != "" {
		t.Errorf("primitives (-want +got):\n%s", diff)
	}
	if acc.Cursor != Cursor(176-4.5-3) {
		t.Errorf("cursor = %v, want %v", acc.Cursor, 176-4.5-3)
	}
	if acc.Stats[0].Rendered != 0 || acc.Stats[1].Rendered != 1 {
		t.Errorf("stats = %+v", acc.Stats)
	}
}

func TestRenderSectionOverflow(t *testing.T) {
	st := InvoiceSectionStyle(45.5)
	s := surface.New(edenpdf.A4)
	cur, n := RenderSection(s, 182, "TRANSPORT", items(50), st)
	if n != 30 {
		t.Errorf("rendered %d items, want 30", n)
	}
	if cur != 45.5 {
		t.Errorf("cursor = %v, want clamped to 45.5", cur)
	}
	var last float64 = 1e9
	for _, op := range s.Ops() {
		if txt, ok := op.(surface.Text); ok && txt.Tag == "TRANSPORT.label" {
			if txt.Y < st.Bottom-1e-9 {
				t.Errorf("item %q at %v below bottom", txt.Str, txt.Y)
			}
			last = txt.Y
		}
	}
	if last != 45.5 {
		t.Errorf("last item at %v, want on the boundary", last)
	}
}

func TestRenderSectionElided(t *testing.T) {
	st := InvoiceSectionStyle(45.5)
	s := surface.New(edenpdf.A4)
	cur, n := RenderSection(s, 50, "TRANSPORT", items(3), st)
	if n != 0 || cur != 50 {
		t.Errorf("got (%v, %d), want (50, 0)", cur, n)
	}
	if s.Len() != 0 {
		t.Errorf("elided section drew %d primitives", s.Len())
	}
}

func TestRenderSectionCursorProperty(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		bottom := 10 + r.Float64()*60
		st := InvoiceSectionStyle(bottom)
		start := Cursor(bottom + r.Float64()*200)
		s := surface.New(edenpdf.A4)
		acc := NewAccumulator(s, st, start)
		prev := start
		for j := 0; j < 4; j++ {
			list := items(r.Intn(12))
			next := acc.Section("S", list)
			if next > prev {
				t.Fatalf("case %d: cursor went up from %v to %v", i, prev, next)
			}
			if len(list) > 0 && acc.Stats[j].Rendered > 0 && next >= prev {
				t.Fatalf("case %d: non-empty section did not advance the cursor", i)
			}
			if next < Cursor(bottom) && next != prev {
				t.Fatalf("case %d: cursor %v crossed bottom %v", i, next, bottom)
			}
			prev = next
		}
		for _, op := range s.Ops() {
			if txt, ok := op.(surface.Text); ok && txt.Tag == "S.label" && txt.Y < bottom-1e-6 {
				t.Fatalf("case %d: item below bottom", i)
			}
		}
	}
}

func TestRenderColumnTable(t *testing.T) {
	tbl := ColumnTable{
		Left: 10, Right: 200, Top: 220, Height: 30, HeaderHeight: 10, HeadingDrop: 7,
		HeadingFont: edenpdf.HelveticaBold(12), RuleWidth: 0.7,
		Columns: []Column{
			{Name: "expediteur", Heading: "Expéditeur", X: 10, Width: 65},
			{Name: "destinataire", Heading: "Destinataire", X: 75, Width: 65},
			{Name: "marchandise", Heading: "Marchandise", X: 140, Width: 65},
		},
	}
	// Each glyph is 5 mm wide, so a 61 mm column keeps 57 mm of text.
	m := textfit.Monospace(5)
	values := map[string]any{
		"expediteur":   "aaaa bbbb cccc dddd eeee ffff",
		"destinataire": "",
		"marchandise":  42,
	}
	s := surface.New(edenpdf.A4)
	lines, err := RenderColumnTable(s, m, tbl, values, edenpdf.WrapAdaptive)
	if err != nil {
		t.Fatal(err)
	}
	if lines != 3 {
		t.Errorf("tallest column = %d lines, want 3", lines)
	}
	var got []string
	for _, op := range s.Ops() {
		if txt, ok := op.(surface.Text); ok && strings.HasSuffix(txt.Tag, ".text") {
			got = append(got, fmt.Sprintf("%s@%.1f,%.1f", txt.Str, txt.X, txt.Y))
		}
	}
	want := []string{
		"aaaa bbbb@12.0,200.0",
		"cccc dddd@12.0,196.5",
		"eeee ffff@12.0,193.0",
		"42@142.0,200.0",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("wrapped text (-want +got):\n%s", diff)
	}
}

func TestLoadTable(t *testing.T) {
	src := `{"name": "douane", "fields": [
		{"name": "dg", "label": "DG :", "x": 10, "y": -10, "boxWidth": 65, "labelWidth": 15},
		{"name": "banque", "label": "Banque :", "x": 115, "y": -30, "boxWidth": 50, "labelWidth": 45,
		 "valueFont": {"family": "Helvetica", "style": "B", "size": 10}}
	]}`
	tbl, err := LoadTable(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	moved := tbl.Shift(0, 100)
	f, ok := moved.Lookup("banque")
	if !ok || f.Y != 70 || f.valueFont() != (edenpdf.Font{Family: "Helvetica", Style: "B", Size: 10}) {
		t.Errorf("banque = %+v, %v", f, ok)
	}
	if orig, _ := tbl.Lookup("banque"); orig.Y != -30 {
		t.Errorf("Shift modified the original table")
	}

	s := surface.New(edenpdf.A4)
	RenderTable(s, moved, map[string]any{"dg": "oui"})
	if s.Len() != 5 {
		t.Errorf("RenderTable drew %d primitives, want 5", s.Len())
	}
}

func TestLoadTableInvalid(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{"duplicate", `{"fields": [{"name": "a"}, {"name": "a"}]}`, edenpdf.ErrInvalidParam},
		{"unnamed", `{"fields": [{"label": "x"}]}`, edenpdf.ErrInvalidParam},
		{"negative", `{"fields": [{"name": "a", "boxWidth": -1}]}`, edenpdf.ErrInvalidParam},
		{"font", `{"fields": [{"name": "a", "labelFont": {"size": 0}}]}`, edenpdf.ErrUnknownFont},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadTable(strings.NewReader(tt.src)); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
	if _, err := LoadTable(strings.NewReader(`{"fields": [], "extra": 1}`)); err == nil {
		t.Error("unknown key accepted")
	}
}

func TestTableOverride(t *testing.T) {
	base := Table{Name: "t", Fields: []FieldSpec{{Name: "a", X: 1}, {Name: "b", X: 2}}}
	got := base.Override(Table{Fields: []FieldSpec{{Name: "b", X: 20}, {Name: "c", X: 3}}})
	want := Table{Name: "t", Fields: []FieldSpec{{Name: "a", X: 1}, {Name: "b", X: 20}, {Name: "c", X: 3}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("override (-want +got):\n%s", diff)
	}
	if base.Fields[1].X != 2 {
		t.Error("Override modified the base table")
	}
}
