package pageops

import (
	"bytes"
	"fmt"
	"time"

	"github.com/edentir/edenpdf"
	"github.com/edentir/edenpdf/surface"
	"github.com/jung-kurt/gofpdf"
)

// capHeight is the Helvetica cap height as a fraction of the font size.
const capHeight = 0.718

// Writer serializes surfaces with gofpdf. It implements surface.Encoder and
// is safe for concurrent use: every Encode call builds its own document.
type Writer struct {
	Compress     bool
	CreationDate time.Time // fixed so that equal pages give equal bytes
	Title        string
	Author       string
}

// NewWriter returns a writer configured from cfg.
func NewWriter(cfg edenpdf.Config) *Writer {
	return &Writer{
		Compress:     cfg.Compress,
		CreationDate: cfg.CreationDate,
		Author:       "edenpdf",
	}
}

// WithTitle returns a copy of w that writes title into the document
// information dictionary.
func (w *Writer) WithTitle(title string) *Writer {
	c := *w
	c.Title = title
	return &c
}

// Encode implements surface.Encoder.
func (w *Writer) Encode(page edenpdf.PageSize, ops []surface.Primitive) ([]byte, error) {
	if page.Width <= 0 || page.Height <= 0 {
		return nil, edenpdf.NewError("Encode", fmt.Errorf("%w: page %vx%v", edenpdf.ErrInvalidParam, page.Width, page.Height))
	}
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: page.Width, Ht: page.Height},
	})
	pdf.SetCompression(w.Compress)
	pdf.SetCatalogSort(true)
	if !w.CreationDate.IsZero() {
		pdf.SetCreationDate(w.CreationDate)
	}
	if w.Title != "" {
		pdf.SetTitle(w.Title, true)
	}
	if w.Author != "" {
		pdf.SetAuthor(w.Author, true)
	}
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.AddPage()

	d := &drawer{pdf: pdf, h: page.Height, lineWidth: pdf.GetLineWidth()}
	for i, op := range ops {
		if err := d.draw(i, op); err != nil {
			return nil, edenpdf.NewError("Encode", err)
		}
		if pdf.Err() {
			return nil, edenpdf.NewError("Encode", pdf.Error())
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, edenpdf.NewError("Encode", err)
	}
	return buf.Bytes(), nil
}

// drawer converts bottom-left millimetre coordinates into gofpdf's top-left
// ones.
type drawer struct {
	pdf       *gofpdf.Fpdf
	h         float64
	lineWidth float64
}

func (d *drawer) y(v float64) float64 { return d.h - v }

func (d *drawer) draw(i int, op surface.Primitive) error {
	switch p := op.(type) {
	case surface.Text:
		return d.text(p)
	case surface.Line:
		d.stroke(p.Width, p.Dash, func() {
			d.pdf.Line(p.X1, d.y(p.Y1), p.X2, d.y(p.Y2))
		})
	case surface.Rect:
		d.stroke(p.Width, nil, func() {
			d.pdf.Rect(p.X, d.y(p.Y+p.H), p.W, p.H, "D")
		})
	case surface.Checkbox:
		return d.checkbox(p)
	case surface.Image:
		return d.image(i, p)
	case surface.Barcode:
		return drawBarcode(d.pdf, p, d.y(p.Y+p.H))
	default:
		return fmt.Errorf("%w: primitive %T", edenpdf.ErrInvalidParam, op)
	}
	return nil
}

func (d *drawer) setFont(f edenpdf.Font) error {
	d.pdf.SetFont(f.Family, f.Style, f.Size)
	if d.pdf.Err() {
		return fmt.Errorf("%w: %v", edenpdf.ErrUnknownFont, d.pdf.Error())
	}
	return nil
}

func (d *drawer) text(t surface.Text) error {
	if t.Str == "" {
		return nil
	}
	if err := d.setFont(t.Font); err != nil {
		return err
	}
	s := edenpdf.WinAnsi(t.Str)
	x := t.X
	switch t.Align {
	case surface.AlignRight:
		x -= d.pdf.GetStringWidth(s)
	case surface.AlignCenter:
		x -= d.pdf.GetStringWidth(s) / 2
	}
	d.pdf.Text(x, d.y(t.Y), s)
	return nil
}

// stroke runs fn with the given line width (points) and dash pattern
// (points), restoring the defaults afterwards.
func (d *drawer) stroke(width float64, dash []float64, fn func()) {
	if width > 0 {
		d.pdf.SetLineWidth(edenpdf.Pt(width))
	}
	if len(dash) > 0 {
		mm := make([]float64, len(dash))
		for i, v := range dash {
			mm[i] = edenpdf.Pt(v)
		}
		d.pdf.SetDashPattern(mm, 0)
	}
	fn()
	if len(dash) > 0 {
		d.pdf.SetDashPattern([]float64{}, 0)
	}
	if width > 0 {
		d.pdf.SetLineWidth(d.lineWidth)
	}
}

// checkbox draws the square and centres the mark in it, horizontally by its
// advance width and vertically by the cap height.
func (d *drawer) checkbox(c surface.Checkbox) error {
	d.stroke(0, nil, func() {
		d.pdf.Rect(c.X, d.y(c.Y+c.Size), c.Size, c.Size, "D")
	})
	if !c.Checked {
		return nil
	}
	mark := c.Mark
	if mark.Family == "" {
		mark = edenpdf.HelveticaBold(12)
	}
	if err := d.setFont(mark); err != nil {
		return err
	}
	w := d.pdf.GetStringWidth("X")
	x := c.X + (c.Size-w)/2
	baseline := c.Y + (c.Size-edenpdf.Pt(capHeight*mark.Size))/2
	d.pdf.Text(x, d.y(baseline), "X")
	return nil
}

func (d *drawer) image(i int, img surface.Image) error {
	data, typ, err := normalizeImage(img.Data)
	if err != nil {
		return err
	}
	name := fmt.Sprintf("image-%d", i)
	info := d.pdf.RegisterImageOptionsReader(name, gofpdf.ImageOptions{ImageType: typ}, bytes.NewReader(data))
	if d.pdf.Err() || info == nil {
		return fmt.Errorf("%w: image %q: %v", edenpdf.ErrInvalidParam, img.Tag, d.pdf.Error())
	}
	w, h := img.W, img.H
	if h == 0 && info.Width() > 0 {
		h = w * info.Height() / info.Width()
	}
	d.pdf.ImageOptions(name, img.X, d.y(img.Y+h), w, h, false, gofpdf.ImageOptions{ImageType: typ}, 0, "")
	return nil
}
