package pageops

import (
	"fmt"
	"sync"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/pdf417"
	"github.com/boombuler/barcode/qr"
	"github.com/edentir/edenpdf"
	"github.com/edentir/edenpdf/surface"
	"github.com/jung-kurt/gofpdf"
	pdfbarcode "github.com/jung-kurt/gofpdf/contrib/barcode"
)

// Register and Barcode share the contrib package's registry keyed by code
// kind and content; holding barcodeMu across both keeps a concurrent
// registration from replacing the entry between the two calls.
var barcodeMu sync.Mutex

// pdf417Security is the PDF417 error correction level.
const pdf417Security = 2

func drawBarcode(pdf *gofpdf.Fpdf, b surface.Barcode, top float64) error {
	if b.Code == "" {
		return nil
	}
	if b.W <= 0 || b.H <= 0 {
		return fmt.Errorf("%w: barcode %q size %vx%v", edenpdf.ErrInvalidParam, b.Tag, b.W, b.H)
	}

	barcodeMu.Lock()
	defer barcodeMu.Unlock()

	// PDF417 goes through boombuler rather than RegisterPdf417: the latter
	// picks text submodes by map iteration and is not reproducible.
	var (
		code barcode.Barcode
		err  error
	)
	switch b.Kind {
	case surface.QR:
		code, err = qr.Encode(b.Code, qr.M, qr.Auto)
	case surface.PDF417:
		code, err = pdf417.Encode(b.Code, pdf417Security)
	default:
		return fmt.Errorf("%w: barcode kind %d", edenpdf.ErrInvalidParam, b.Kind)
	}
	if err != nil {
		return fmt.Errorf("pageops: barcode %q: %w", b.Tag, err)
	}
	key := pdfbarcode.Register(code)
	pdfbarcode.Barcode(pdf, key, b.X, top, b.W, b.H, false)
	return nil
}
