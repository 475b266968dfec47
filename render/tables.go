package render

import (
	"github.com/edentir/edenpdf"
	"github.com/edentir/edenpdf/layout"
)

// Dossier page frame, mm.
const (
	marginLeft  = 10.0
	marginRight = 200.0
	marginTop   = 282.0
	rowPitch    = 10.0
)

// Table names accepted by WithTable.
const (
	TableTransport = "transport"
	TableCustoms   = "douane"
)

// row returns the baseline offset of the n-th leader row under an anchor.
func row(n int) float64 { return -float64(n) * rowPitch }

// transportTable lists the leader fields under the TRANSPORT banner. Y is
// relative to the loading-nature row.
func transportTable() layout.Table {
	return layout.Table{Name: TableTransport, Fields: []layout.FieldSpec{
		{Name: "agent_marit", Label: "Agent maritime :", X: marginLeft, Y: row(1), BoxWidth: 70, LabelWidth: 35},
		{Name: "magasin", Label: "Magasin :", X: marginLeft + 110, Y: row(1), BoxWidth: 45, LabelWidth: 20},
		{Name: "port_emb", Label: "Port Embarquement :", X: marginLeft, Y: row(2), BoxWidth: 60, LabelWidth: 45},
		{Name: "date_emb", Label: "Date :", X: marginLeft + 120, Y: row(2), BoxWidth: 30, LabelWidth: 15},
		{Name: "port_dest", Label: "Port Destination :", X: marginLeft, Y: row(3), BoxWidth: 65, LabelWidth: 40},
		{Name: "date_dest", Label: "Date :", X: marginLeft + 120, Y: row(3), BoxWidth: 30, LabelWidth: 15},
		{Name: "ctu_lta", Label: "CTU N° / LTA N° :", X: marginLeft, Y: row(4), BoxWidth: 120, LabelWidth: 40},
		{Name: "navire", Label: "Navire :", X: marginLeft, Y: row(5), BoxWidth: 50, LabelWidth: 20},
		{Name: "escale", Label: "Escale :", X: marginLeft + 75, Y: row(5), BoxWidth: 45, LabelWidth: 20},
		{Name: "rubrique", Label: "Rubrique :", X: marginLeft + 145, Y: row(5), BoxWidth: 30, LabelWidth: 25},
		{Name: "colisage", Label: "Colisage :", X: marginLeft, Y: row(6), BoxWidth: 70, LabelWidth: 25},
		{Name: "pb", Label: "P.B :", X: marginLeft + 110, Y: row(6), BoxWidth: 50, LabelWidth: 15},
	}}
}

// customsTable lists the leader fields under the DOUANE banner. Y is
// relative to the lower rule of the banner.
func customsTable() layout.Table {
	return layout.Table{Name: TableCustoms, Fields: []layout.FieldSpec{
		{Name: "valeur_devise", Label: "Valeur devise :", X: marginLeft, Y: row(1), BoxWidth: 65, LabelWidth: 30},
		{Name: "valeur_dinars", Label: "Valeur dinars :", X: marginLeft + 100, Y: row(1), BoxWidth: 65, LabelWidth: 30},
		{Name: "dg", Label: "DG :", X: marginLeft, Y: row(2), BoxWidth: 65, LabelWidth: 15},
		{Name: "type_declaration", Label: "Type déclaration :", X: marginLeft + 100, Y: row(2), BoxWidth: 55, LabelWidth: 40},
		{Name: "declaration_no", Label: "Déclaration N° :", X: marginLeft, Y: row(3), BoxWidth: 60, LabelWidth: 35},
		{Name: "date_declaration", Label: "Date :", X: marginLeft + 120, Y: row(3), BoxWidth: 35, LabelWidth: 15},
		{Name: "repertoire", Label: "Répertoire :", X: marginLeft, Y: row(4), BoxWidth: 60, LabelWidth: 25},
		{Name: "banque", Label: "Banque domiciliaire :", X: marginLeft + 105, Y: row(4), BoxWidth: 50, LabelWidth: 45},
	}}
}

func defaultTables() map[string]layout.Table {
	return map[string]layout.Table{
		TableTransport: transportTable(),
		TableCustoms:   customsTable(),
	}
}

// modeChoice is the import / export row under the heading.
var modeChoice = layout.ChoiceGroup{
	Name:    "mode",
	Y:       marginTop - 25,
	Size:    6,
	Caption: edenpdf.HelveticaBold(16),
	Mark:    edenpdf.HelveticaBold(16),
	Options: []layout.Choice{
		{Value: "import", Caption: "import", BoxX: marginLeft + 45, CaptionX: marginLeft + 55},
		{Value: "export", Caption: "export", BoxX: marginLeft + 115, CaptionX: marginLeft + 125},
	},
}

// loadingChoice is the loading-nature row under the TRANSPORT banner; its
// baseline is set at render time.
var loadingChoice = layout.ChoiceGroup{
	Name:    "nature",
	Size:    5,
	Caption: edenpdf.Helvetica(12),
	Mark:    edenpdf.HelveticaBold(12),
	Options: []layout.Choice{
		{Value: "complet", Caption: "Complet", BoxX: marginLeft + 55, CaptionX: marginLeft + 62},
		{Value: "groupage", Caption: "Groupage", BoxX: marginLeft + 100, CaptionX: marginLeft + 107},
	},
}

// partyTable is the shipper / consignee / goods table; its top is
// 12 mm under the mode row.
var partyTable = layout.ColumnTable{
	Left:         marginLeft,
	Right:        marginRight,
	Top:          marginTop - 37,
	Height:       30,
	HeaderHeight: 10,
	HeadingDrop:  7,
	HeadingFont:  edenpdf.HelveticaBold(12),
	RuleWidth:    0.7,
	Columns: []layout.Column{
		{Name: "expediteur", Heading: "Expéditeur", X: marginLeft, Width: 65},
		{Name: "destinataire", Heading: "Destinataire", X: marginLeft + 65, Width: 65},
		{Name: "marchandise", Heading: "Marchandise", X: marginLeft + 130, Width: 65},
	},
}
