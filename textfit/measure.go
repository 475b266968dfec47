// Package textfit measures and wraps text for fixed-layout pages.
//
// Widths are returned in millimetres. The core-font measurer uses the same
// gofpdf metrics and WinAnsi encoding as the page writer in pageops, so a
// line that fits when measured also fits when drawn.
package textfit

import (
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/edentir/edenpdf"
	"github.com/jung-kurt/gofpdf"
)

// Measurer returns the rendered width of text in millimetres.
type Measurer interface {
	Width(text string, font edenpdf.Font) (float64, error)
}

// CoreMeasurer measures text set in one of the PDF core fonts.
// It is safe for concurrent use.
type CoreMeasurer struct {
	mu  sync.Mutex
	pdf *gofpdf.Fpdf
}

// NewCoreMeasurer returns a measurer backed by the gofpdf core font metrics.
func NewCoreMeasurer() *CoreMeasurer {
	return &CoreMeasurer{pdf: gofpdf.New("P", "mm", "A4", "")}
}

var coreFamilies = map[string]bool{
	"helvetica": true,
	"arial":     true,
	"courier":   true,
	"times":     true,
}

var coreStyles = map[string]bool{"": true, "B": true, "I": true, "BI": true, "IB": true}

// Known reports whether font names a core font this package can measure.
func Known(font edenpdf.Font) bool {
	return coreFamilies[strings.ToLower(font.Family)] && coreStyles[strings.ToUpper(font.Style)] && font.Size > 0
}

// Width implements Measurer.
func (m *CoreMeasurer) Width(text string, font edenpdf.Font) (float64, error) {
	if !Known(font) {
		return 0, fmt.Errorf("%w: %q style %q size %v", edenpdf.ErrUnknownFont, font.Family, font.Style, font.Size)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pdf.SetFont(font.Family, strings.ToUpper(font.Style), font.Size)
	if m.pdf.Err() {
		return 0, fmt.Errorf("%w: %v", edenpdf.ErrUnknownFont, m.pdf.Error())
	}
	return m.pdf.GetStringWidth(edenpdf.WinAnsi(text)), nil
}

// Monospace is a measurer in which every rune advances the same number of
// millimetres regardless of font. It is meant for layout tests.
type Monospace float64

// Width implements Measurer.
func (m Monospace) Width(text string, font edenpdf.Font) (float64, error) {
	if font.Family == "" {
		return 0, fmt.Errorf("%w: empty family", edenpdf.ErrUnknownFont)
	}
	return float64(utf8.RuneCountInString(text)) * float64(m), nil
}
