package render

import (
	"github.com/edentir/edenpdf"
	"github.com/edentir/edenpdf/layout"
	"github.com/edentir/edenpdf/record"
	"github.com/edentir/edenpdf/surface"
)

// Banner geometry: two double rules 15 mm apart around a centred title.
const (
	bannerRuleGap = 1.0
	bannerTitle   = 11.0
	bannerHeight  = 15.0
	bannerWidth   = 1.5 // points
)

var bannerFont = edenpdf.HelveticaBold(26)

// DossierLayout reports where the variable parts of a dossier landed.
type DossierLayout struct {
	PartyLines int     // lines used by the tallest party column
	Transport  float64 // top rule of the TRANSPORT banner
	Customs    float64 // top rule of the DOUANE banner
}

// Dossier renders a dossier cover sheet.
func (r *Renderer) Dossier(d *record.Dossier) (*Artifact, error) {
	s, _, err := r.LayoutDossier(d)
	if err != nil {
		return nil, edenpdf.NewError("RenderDossier", err)
	}
	data, err := r.finalize(s, "Dossier "+d.Number.String())
	if err != nil {
		return nil, edenpdf.NewError("RenderDossier", err)
	}
	return &Artifact{Kind: KindDossier, Filename: d.Filename(), Data: data, Record: d}, nil
}

// LayoutDossier draws a dossier on a new surface without serializing it.
func (r *Renderer) LayoutDossier(d *record.Dossier) (*surface.Surface, DossierLayout, error) {
	var out DossierLayout
	if d == nil {
		return nil, out, edenpdf.ErrMalformedRecord
	}
	s := surface.New(r.cfg.Page)

	if len(r.cfg.Logo) > 0 {
		s.Draw(surface.Image{Tag: "logo", X: marginLeft, Y: marginTop - 10, W: 50, Data: r.cfg.Logo})
	}
	r.heading(s, d.Number.String())
	layout.RenderChoice(s, modeChoice, d.Mode.String())

	lines, err := layout.RenderColumnTable(s, r.measurer, partyTable, map[string]any{
		"expediteur":   d.Shipper.String(),
		"destinataire": d.Consignee.String(),
		"marchandise":  d.Goods.String(),
	}, r.cfg.Wrap)
	if err != nil {
		return nil, out, err
	}
	out.PartyLines = lines

	y := partyTable.Top - r.cfg.Wrap.Advance(partyTable.Height, lines)
	out.Transport = y
	y = r.banner(s, "TRANSPORT", y)

	y -= rowPitch
	s.Draw(surface.Text{Tag: "nature.label", X: marginLeft, Y: y, Str: "Nature de chargement :", Font: edenpdf.Helvetica(12)})
	layout.RenderChoice(s, loadingChoice.At(y), d.Loading.String())

	values := d.Values()
	transport := r.tables[TableTransport]
	layout.RenderTable(s, transport.Shift(0, y), values)

	y += row(6) - 2*rowPitch
	out.Customs = y
	y = r.banner(s, "DOUANE", y)
	layout.RenderTable(s, r.tables[TableCustoms].Shift(0, y), values)

	if r.cfg.Codes && d.Number.String() != "" {
		s.Draw(surface.Barcode{
			Tag:  "code",
			Kind: surface.PDF417,
			X:    marginRight - 60, Y: 8, W: 60, H: 12,
			Code: "DOSSIER " + d.Number.String(),
		})
	}
	return s, out, s.Error()
}

// heading draws "DOSSIER N° :" with the number on a dotted line.
func (r *Renderer) heading(s *surface.Surface, number string) {
	x := marginRight - 40
	s.Draw(
		surface.Text{Tag: "heading.label", X: marginRight - 85, Y: marginTop - 5, Str: "DOSSIER N° :", Font: edenpdf.HelveticaBold(18)},
		surface.Line{Tag: "heading.leader", X1: x, Y1: marginTop - 6, X2: x + 35, Y2: marginTop - 6, Dash: []float64{1, 2}},
	)
	if number != "" {
		s.Draw(surface.Text{Tag: "heading.value", X: x, Y: marginTop - 4, Str: number, Font: edenpdf.Helvetica(14)})
	}
}

// banner draws a titled band whose top rule is at y and returns the
// baseline of its bottom rule.
func (r *Renderer) banner(s *surface.Surface, title string, y float64) float64 {
	rules := func(y float64) {
		for _, dy := range []float64{0, bannerRuleGap} {
			s.Draw(surface.Line{Tag: title + ".rule", X1: marginLeft, Y1: y - dy, X2: marginRight, Y2: y - dy, Width: bannerWidth})
		}
	}
	rules(y)
	s.Draw(surface.Text{
		Tag:   title + ".title",
		X:     r.cfg.Page.Width / 2,
		Y:     y - bannerTitle,
		Str:   title,
		Font:  bannerFont,
		Align: surface.AlignCenter,
	})
	y -= bannerHeight
	rules(y)
	return y
}
