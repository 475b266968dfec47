package surface

import "github.com/edentir/edenpdf"

// Primitive is a single drawing instruction. Coordinates are millimetres from
// the bottom-left corner of the page.
type Primitive interface {
	primitive()
}

// Align is the horizontal anchor of a text primitive.
type Align int

const (
	AlignLeft   Align = iota // X is the start of the text
	AlignRight               // X is the end of the text
	AlignCenter              // X is the middle of the text
)

// Text draws Str with its baseline at Y.
type Text struct {
	Tag   string
	X, Y  float64
	Str   string
	Font  edenpdf.Font
	Align Align
}

// Line draws a straight segment. A non-empty Dash draws it dashed; dash
// lengths are in points.
type Line struct {
	Tag            string
	X1, Y1, X2, Y2 float64
	Width          float64 // points; 0 keeps the writer default
	Dash           []float64
}

// Rect draws the outline of a rectangle whose lower-left corner is (X, Y).
type Rect struct {
	Tag   string
	X, Y  float64
	W, H  float64
	Width float64 // points; 0 keeps the writer default
}

// Checkbox draws a square outline with its lower-left corner at (X, Y) and,
// when Checked, an X mark set in Mark.
type Checkbox struct {
	Tag     string
	X, Y    float64
	Size    float64
	Checked bool
	Mark    edenpdf.Font
}

// Image places raster data with its lower-left corner at (X, Y).
// A zero H keeps the aspect ratio for width W.
type Image struct {
	Tag  string
	X, Y float64
	W, H float64
	Data []byte
}

// BarcodeKind selects the symbology of a Barcode primitive.
type BarcodeKind int

const (
	QR BarcodeKind = iota
	PDF417
)

// Barcode draws Code as a 2D symbol inside the W×H box at (X, Y).
type Barcode struct {
	Tag  string
	Kind BarcodeKind
	X, Y float64
	W, H float64
	Code string
}

func (Text) primitive()     {}
func (Line) primitive()     {}
func (Rect) primitive()     {}
func (Checkbox) primitive() {}
func (Image) primitive()    {}
func (Barcode) primitive()  {}
