package record

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/edentir/edenpdf"
)

// Dossier is a customs dossier cover sheet.
type Dossier struct {
	Number    Text `json:"dossier_no"`
	Mode      Text `json:"mode"`              // import or export
	Loading   Text `json:"nature_chargement"` // complet or groupage
	Shipper   Text `json:"expediteur"`
	Consignee Text `json:"destinataire"`
	Goods     Text `json:"marchandise"`

	ShippingAgent   Text `json:"agent_marit"`
	Warehouse       Text `json:"magasin"`
	LoadingPort     Text `json:"port_emb"`
	LoadingDate     Text `json:"date_emb"`
	DischargePort   Text `json:"port_dest"`
	DischargeDate   Text `json:"date_dest"`
	ContainerOrAWB  Text `json:"ctu_lta"`
	Vessel          Text `json:"navire"`
	PortCall        Text `json:"escale"`
	Heading         Text `json:"rubrique"`
	Packages        Text `json:"colisage"`
	GrossWeight     Text `json:"pb"`
	ForeignValue    Text `json:"valeur_devise"`
	DinarValue      Text `json:"valeur_dinars"`
	DG              Text `json:"dg"`
	DeclarationType Text `json:"type_declaration"`
	DeclarationNo   Text `json:"declaration_no"`
	DeclarationDate Text `json:"date_declaration"`
	Directory       Text `json:"repertoire"`
	Bank            Text `json:"banque"`
}

// DecodeDossier decodes a dossier document. Every field is optional.
func DecodeDossier(data []byte) (*Dossier, error) {
	var d Dossier
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("%w: dossier: %v", edenpdf.ErrMalformedRecord, err)
	}
	return &d, nil
}

// ModeIs reports whether the dossier mode matches m, ignoring case.
func (d *Dossier) ModeIs(m string) bool {
	return strings.EqualFold(d.Mode.String(), m)
}

// LoadingIs reports whether the loading nature matches n, ignoring case.
func (d *Dossier) LoadingIs(n string) bool {
	return strings.EqualFold(d.Loading.String(), n)
}

// Values returns the dotted-leader fields keyed by their JSON name.
func (d *Dossier) Values() map[string]any {
	return map[string]any{
		"agent_marit":      d.ShippingAgent.String(),
		"magasin":          d.Warehouse.String(),
		"port_emb":         d.LoadingPort.String(),
		"date_emb":         d.LoadingDate.String(),
		"port_dest":        d.DischargePort.String(),
		"date_dest":        d.DischargeDate.String(),
		"ctu_lta":          d.ContainerOrAWB.String(),
		"navire":           d.Vessel.String(),
		"escale":           d.PortCall.String(),
		"rubrique":         d.Heading.String(),
		"colisage":         d.Packages.String(),
		"pb":               d.GrossWeight.String(),
		"valeur_devise":    d.ForeignValue.String(),
		"valeur_dinars":    d.DinarValue.String(),
		"dg":               d.DG.String(),
		"type_declaration": d.DeclarationType.String(),
		"declaration_no":   d.DeclarationNo.String(),
		"date_declaration": d.DeclarationDate.String(),
		"repertoire":       d.Directory.String(),
		"banque":           d.Bank.String(),
	}
}

// Filename returns the download name of the rendered dossier.
func (d *Dossier) Filename() string {
	return "Dossier_" + sanitize(d.Number.String(), "export") + ".pdf"
}

// sanitize keeps letters, digits and a few separators so the result is a
// safe single path element.
func sanitize(s, fallback string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '-' || r == '_' || r == '.':
			b.WriteRune(r)
		case r == '/' || r == '\\' || unicode.IsSpace(r):
			b.WriteRune('-')
		}
	}
	out := strings.Trim(b.String(), ".-")
	if out == "" {
		return fallback
	}
	return out
}
