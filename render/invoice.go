package render

import (
	"fmt"

	"github.com/edentir/edenpdf"
	"github.com/edentir/edenpdf/layout"
	"github.com/edentir/edenpdf/record"
	"github.com/edentir/edenpdf/surface"
)

// Invoice page geometry, mm.
const (
	clientRight = 185.0
	clientTop   = 255.0
	clientPitch = 5.0

	infoTop   = 218.0
	infoPitch = 4.5

	sectionsTop = 182.0

	totalsLabelX = 115.0
	totalsDrop   = 10.0
	totalsPitch  = 5.0
	finalDrop    = 2.0
	footerX      = 25.0
	footerDrop   = 15.0
	wordsDrop    = 6.0

	qrSize = 20.0
	qrRise = 4.0
)

// totalsHeight is the room kept under the last section for the totals
// block, the amount in words and the QR code.
const totalsHeight = totalsDrop + 5*totalsPitch + footerDrop + qrSize - qrRise

// infoColumn is one of the two label / value columns under the client block.
type infoColumn struct {
	labelX, valueX float64
	rows           []infoRow
}

type infoRow struct {
	label string
	value func(h record.InvoiceHeader) string
}

var infoColumns = []infoColumn{
	{labelX: 25, valueX: 60, rows: []infoRow{
		{"Facture n° :", func(h record.InvoiceHeader) string { return h.Number.String() }},
		{"Date Facture :", record.InvoiceHeader.ShortDate},
		{"Dossier import n° :", func(h record.InvoiceHeader) string { return h.DossierNo.String() }},
		{"Navire :", func(h record.InvoiceHeader) string { return h.Vessel.String() }},
		{"Date d'arrivée :", func(h record.InvoiceHeader) string { return h.ArrivalDate.String() }},
		{"Conteneur :", func(h record.InvoiceHeader) string { return h.Container.String() }},
	}},
	{labelX: 115, valueX: 155, rows: []infoRow{
		{"Déclaration C n° :", func(h record.InvoiceHeader) string { return h.DeclarationC.String() }},
		{"Déclaration UC n° :", func(h record.InvoiceHeader) string { return h.DeclarationUC.String() }},
		{"Escale n° :", func(h record.InvoiceHeader) string { return h.PortCall.String() }},
		{"Rubrique :", func(h record.InvoiceHeader) string { return h.Heading.String() }},
		{"Colisage :", func(h record.InvoiceHeader) string { return h.Packages.String() }},
		{"Poids Brut :", func(h record.InvoiceHeader) string { return h.GrossWeight.String() }},
	}},
}

// InvoiceLayout reports how the line-item sections were placed.
type InvoiceLayout struct {
	Sections []layout.SectionStats
	Dropped  int     // items left out for lack of room
	Totals   float64 // baseline of the first totals line
}

// Invoice renders an invoice and paints it on page 1 of background, the
// company letterhead. An empty background fails with
// edenpdf.ErrTemplateMissing before anything is drawn.
func (r *Renderer) Invoice(inv *record.Invoice, background []byte) (*Artifact, error) {
	if len(background) == 0 {
		return nil, edenpdf.NewError("RenderInvoice", edenpdf.ErrTemplateMissing)
	}
	s, _, err := r.LayoutInvoice(inv)
	if err != nil {
		return nil, edenpdf.NewError("RenderInvoice", err)
	}
	content, err := r.finalize(s, "Facture "+inv.Header.Number.String())
	if err != nil {
		return nil, edenpdf.NewError("RenderInvoice", err)
	}
	data, err := r.merger.Merge(content, background)
	if err != nil {
		return nil, edenpdf.NewError("RenderInvoice", err)
	}
	return &Artifact{Kind: KindInvoice, Filename: inv.Filename(), Data: data, Record: inv}, nil
}

// SectionStyle returns the geometry of the invoice line-item sections.
func (r *Renderer) SectionStyle() layout.SectionStyle {
	return layout.InvoiceSectionStyle(r.cfg.Bottom + totalsHeight)
}

// LayoutInvoice draws an invoice on a new surface without serializing it.
func (r *Renderer) LayoutInvoice(inv *record.Invoice) (*surface.Surface, InvoiceLayout, error) {
	var out InvoiceLayout
	if inv == nil {
		return nil, out, fmt.Errorf("%w: no invoice", edenpdf.ErrMalformedRecord)
	}
	s := surface.New(r.cfg.Page)

	c := inv.Client
	for i, line := range []string{
		"Code client " + c.Code.String(),
		"Client : " + c.Name.String(),
		"Adresse : " + c.Address.String(),
		"Code TVA : " + c.VATCode.String(),
	} {
		s.Draw(surface.Text{
			Tag:   "client",
			X:     clientRight,
			Y:     clientTop - float64(i)*clientPitch,
			Str:   line,
			Font:  edenpdf.Helvetica(9),
			Align: surface.AlignRight,
		})
	}

	for _, col := range infoColumns {
		for i, row := range col.rows {
			y := infoTop - float64(i)*infoPitch
			s.Draw(surface.Text{Tag: "info.label", X: col.labelX, Y: y, Str: row.label, Font: edenpdf.HelveticaBold(8.5)})
			if v := row.value(inv.Header); v != "" {
				s.Draw(surface.Text{Tag: "info.value", X: col.valueX, Y: y, Str: v, Font: edenpdf.Helvetica(8.5)})
			}
		}
	}

	acc := layout.NewAccumulator(s, r.SectionStyle(), sectionsTop)
	acc.Section("DEBOURS", inv.Lines.Disbursements)
	acc.Section("TRANSIT", inv.Lines.Transit)
	acc.Section("TRANSPORT", inv.Lines.Transport)
	out.Sections = acc.Stats
	out.Dropped = acc.Dropped()

	y := float64(acc.Cursor) - totalsDrop
	out.Totals = y
	t := inv.Totals
	for _, row := range []struct {
		label  string
		amount record.Amount
	}{
		{"Total non Taxable :", t.NonTaxable},
		{"Total Taxables :", t.Taxable},
		{"TVA 7% :", t.VAT7},
		{"TVA 19% :", t.VAT19},
		{"Timbre Fiscal :", t.Stamp},
	} {
		s.Draw(
			surface.Text{Tag: "totals.label", X: totalsLabelX, Y: y, Str: row.label, Font: edenpdf.Helvetica(9.5)},
			surface.Text{Tag: "totals.amount", X: clientRight, Y: y, Str: row.amount.Fixed3(), Font: edenpdf.Helvetica(9.5), Align: surface.AlignRight},
		)
		y -= totalsPitch
	}
	s.Draw(
		surface.Text{Tag: "total.label", X: totalsLabelX, Y: y - finalDrop, Str: "Total Facture en TND", Font: edenpdf.HelveticaBold(11)},
		surface.Text{Tag: "total.amount", X: clientRight, Y: y - finalDrop, Str: t.Final.Fixed3(), Font: edenpdf.HelveticaBold(11), Align: surface.AlignRight},
	)

	footer := y - footerDrop
	s.Draw(
		surface.Text{Tag: "footer", X: footerX, Y: footer, Str: "Total en votre aimable règlement :", Font: edenpdf.HelveticaOblique(9.5)},
		surface.Text{Tag: "footer.words", X: footerX, Y: footer - wordsDrop, Str: t.Final.InWords(), Font: edenpdf.Helvetica(10)},
	)

	if r.cfg.Codes {
		s.Draw(surface.Barcode{
			Tag:  "code",
			Kind: surface.QR,
			X:    clientRight - qrSize,
			Y:    footer + qrRise - qrSize,
			W:    qrSize, H: qrSize,
			Code: fmt.Sprintf("FACTURE %s|%s|%s TND", inv.Header.Number.String(), inv.Header.ShortDate(), t.Final.Fixed3()),
		})
	}
	return s, out, s.Error()
}
