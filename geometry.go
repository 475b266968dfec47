package edenpdf

// Layout coordinates are millimetres measured from the bottom-left corner of
// the page, y growing upward. Font sizes are points.

// PointsPerMm converts millimetres to PDF points.
const PointsPerMm = 72 / 25.4

// Pt converts a length in points to millimetres.
func Pt(points float64) float64 {
	return points / PointsPerMm
}

// PageSize is a page format in millimetres.
type PageSize struct {
	Name   string
	Width  float64
	Height float64
}

// A4 is the only format produced by the layouts in this module.
var A4 = PageSize{Name: "A4", Width: 210, Height: 297}

// Point is a position on the page.
type Point struct {
	X, Y float64
}

// Font identifies one of the PDF core fonts at a given size.
type Font struct {
	Family string  `json:"family"` // Helvetica, Courier, Times
	Style  string  `json:"style"`  // "" (regular), "B", "I", "BI"
	Size   float64 `json:"size"`   // points
}

// Helvetica returns the regular Helvetica face at size points.
func Helvetica(size float64) Font { return Font{Family: "Helvetica", Size: size} }

// HelveticaBold returns the bold Helvetica face at size points.
func HelveticaBold(size float64) Font { return Font{Family: "Helvetica", Style: "B", Size: size} }

// HelveticaOblique returns the oblique Helvetica face at size points.
func HelveticaOblique(size float64) Font { return Font{Family: "Helvetica", Style: "I", Size: size} }
