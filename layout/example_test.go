package layout_test

import (
	"fmt"

	"github.com/edentir/edenpdf"
	"github.com/edentir/edenpdf/layout"
	"github.com/edentir/edenpdf/record"
	"github.com/edentir/edenpdf/surface"
)

// ExampleRenderSection draws a debours section that runs into the page
// bottom: the fourth item would sit under the boundary and is dropped.
func ExampleRenderSection() {
	s := surface.New(edenpdf.A4)
	st := layout.InvoiceSectionStyle(85)
	items := []record.LineItem{
		{Label: "Frais de port", Amount: record.MustAmount("120.5")},
		{Label: "Magasinage", Amount: record.MustAmount("45")},
		{Label: "Surestaries", Amount: record.MustAmount("310.25")},
		{Label: "Pesage", Amount: record.MustAmount("12")},
	}

	next, n := layout.RenderSection(s, 100, "DEBOURS", items, st)
	fmt.Printf("drawn %d of %d, next cursor %v\n", n, len(items), float64(next))
	for _, op := range s.Ops() {
		if t, ok := op.(surface.Text); ok {
			fmt.Printf("%.1f %s\n", t.Y, t.Str)
		}
	}
	// Output:
	// drawn 3 of 4, next cursor 85
	// 100.0 DEBOURS
	// 94.0 Frais de port
	// 94.0 120.500
	// 89.5 Magasinage
	// 89.5 45.000
	// 85.0 Surestaries
	// 85.0 310.250
}

// ExampleAccumulator threads the cursor through consecutive invoice
// sections.
func ExampleAccumulator() {
	s := surface.New(edenpdf.A4)
	acc := layout.NewAccumulator(s, layout.InvoiceSectionStyle(20), 180)
	acc.Section("DEBOURS", []record.LineItem{
		{Label: "Frais de port", Amount: record.MustAmount("120.5")},
	})
	acc.Section("TRANSIT", nil)
	acc.Section("HONORAIRES", []record.LineItem{
		{Label: "Commission", Amount: record.MustAmount("80")},
		{Label: "Dossier", Amount: record.MustAmount("15")},
	})
	for _, st := range acc.Stats {
		fmt.Printf("%s: top %.1f next %.1f items %d\n", st.Title, float64(st.Top), float64(st.Next), st.Rendered)
	}
	// Output:
	// DEBOURS: top 180.0 next 166.5 items 1
	// TRANSIT: top 166.5 next 166.5 items 0
	// HONORAIRES: top 166.5 next 148.5 items 2
}
