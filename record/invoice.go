package record

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/edentir/edenpdf"
)

// LineItem is one billed line of an invoice section.
type LineItem struct {
	Label  string `json:"label"`
	Amount Amount `json:"montant"`
}

// UnmarshalJSON accepts the amount under either "montant" or "amount".
func (li *LineItem) UnmarshalJSON(b []byte) error {
	var raw struct {
		Label   Text    `json:"label"`
		Montant *Amount `json:"montant"`
		Amount  *Amount `json:"amount"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("%w: line item: %v", edenpdf.ErrMalformedRecord, err)
	}
	li.Label = raw.Label.String()
	switch {
	case raw.Montant != nil:
		li.Amount = *raw.Montant
	case raw.Amount != nil:
		li.Amount = *raw.Amount
	default:
		li.Amount = Amount{}
	}
	return nil
}

// Client is the billed party shown in the invoice's top-right block.
type Client struct {
	Code    Text `json:"code_client"`
	Name    Text `json:"nom"`
	Address Text `json:"adresse"`
	VATCode Text `json:"code_tva"`
}

// InvoiceHeader holds the reference fields printed in the two info columns.
type InvoiceHeader struct {
	Number        Text `json:"numero"`
	Date          Text `json:"date"`
	DossierNo     Text `json:"dossier_no"`
	Vessel        Text `json:"navire"`
	ArrivalDate   Text `json:"date_arrivee"`
	Container     Text `json:"conteneur"`
	DeclarationC  Text `json:"declaration_c"`
	DeclarationUC Text `json:"declaration_uc"`
	PortCall      Text `json:"escale"`
	Heading       Text `json:"rubrique"`
	Packages      Text `json:"colisage"`
	GrossWeight   Text `json:"poids_brut"`
}

// ShortDate returns the first ten characters of the invoice date, which
// drops the time part of an ISO 8601 timestamp.
func (h InvoiceHeader) ShortDate() string {
	d := []rune(h.Date.String())
	if len(d) > 10 {
		d = d[:10]
	}
	return string(d)
}

// Lines groups the billed items by section.
type Lines struct {
	Disbursements []LineItem `json:"debours"`
	Transit       []LineItem `json:"transit"`
	Transport     []LineItem `json:"transport"`
}

// Totals is the totals block of an invoice.
type Totals struct {
	NonTaxable Amount `json:"total_non_taxable"`
	Taxable    Amount `json:"total_taxable"`
	VAT7       Amount `json:"tva_7"`
	VAT19      Amount `json:"tva_19"`
	Stamp      Amount `json:"timbre"`
	Final      Amount `json:"total_final"`
}

// Invoice is a commercial invoice.
type Invoice struct {
	Client Client        `json:"client"`
	Header InvoiceHeader `json:"facture"`
	Lines  Lines         `json:"lignes"`
	Totals Totals        `json:"totaux"`
}

// DecodeInvoice decodes an invoice document. The "facture" and "totaux"
// objects are required; every other part may be absent.
func DecodeInvoice(data []byte) (*Invoice, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("%w: invoice: %v", edenpdf.ErrMalformedRecord, err)
	}
	for _, key := range []string{"facture", "totaux"} {
		raw, ok := probe[key]
		if !ok || !isObject(raw) {
			return nil, fmt.Errorf("%w: invoice has no %q object", edenpdf.ErrMalformedRecord, key)
		}
	}
	var inv Invoice
	if err := json.Unmarshal(data, &inv); err != nil {
		return nil, fmt.Errorf("%w: invoice: %v", edenpdf.ErrMalformedRecord, err)
	}
	return &inv, nil
}

// Filename returns the download name of the rendered invoice.
func (inv *Invoice) Filename() string {
	return "Facture_" + sanitize(inv.Header.Number.String(), "sans-numero") + ".pdf"
}

func isObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}
