package edenpdf

import (
	"fmt"
	"time"
)

// WrapPolicy controls how free text is wrapped into the columns of the
// dossier party table and how far the following block is pushed down.
//
// Two historical behaviours exist and neither is the default: callers must
// pick one with WithWrapPolicy.
type WrapPolicy struct {
	Name         string
	MaxLines     int     // lines kept per column; the rest is dropped
	FontSize     float64 // points, used for both measuring and drawing
	LineHeight   float64 // mm between wrapped lines
	Margin       float64 // mm subtracted from the column width before wrapping
	FirstLine    float64 // mm from the table top to the first baseline
	TrailingGap  float64 // mm added under the table when the advance is computed
	FixedAdvance float64 // mm; when > 0 the advance ignores the line count
}

// Advance returns the distance from the top of a table of the given height
// to the next block, given the tallest column's line count.
func (p WrapPolicy) Advance(tableHeight float64, lines int) float64 {
	if p.FixedAdvance > 0 {
		return p.FixedAdvance
	}
	return tableHeight + p.TrailingGap + float64(lines)*p.LineHeight
}

var (
	// WrapAdaptive keeps three lines per column with a 4 mm safety margin and
	// pushes the next block down by the number of lines actually used.
	WrapAdaptive = WrapPolicy{
		Name:        "adaptive",
		MaxLines:    3,
		FontSize:    9,
		LineHeight:  3.5,
		Margin:      4,
		FirstLine:   20,
		TrailingGap: 10,
	}

	// WrapFixed keeps four lines per column with a 4 pt safety margin and a
	// constant 45 mm advance.
	WrapFixed = WrapPolicy{
		Name:         "fixed",
		MaxLines:     4,
		FontSize:     9,
		LineHeight:   3.5,
		Margin:       Pt(4),
		FirstLine:    18,
		FixedAdvance: 45,
	}
)

// WrapPolicyByName returns the preset with the given name.
func WrapPolicyByName(name string) (WrapPolicy, error) {
	switch name {
	case WrapAdaptive.Name:
		return WrapAdaptive, nil
	case WrapFixed.Name:
		return WrapFixed, nil
	default:
		return WrapPolicy{}, fmt.Errorf("%w: unknown wrap policy %q", ErrInvalidParam, name)
	}
}

// Config holds the rendering configuration shared by all documents.
type Config struct {
	Page         PageSize
	Bottom       float64 // page-bottom boundary for content sections, mm
	Wrap         WrapPolicy
	Codes        bool   // draw QR / PDF417 codes
	Logo         []byte // optional dossier logo (PNG, JPEG, GIF, BMP, TIFF or WebP)
	Compress     bool
	CreationDate time.Time
}

// Option is a functional option for configuring rendering via NewConfig.
type Option func(*Config)

// WithWrapPolicy selects the wrap behaviour for the dossier party table.
func WithWrapPolicy(p WrapPolicy) Option {
	return func(c *Config) {
		c.Wrap = p
	}
}

// WithPageBottom sets the lowest baseline, in mm from the page bottom, that
// section lines may use.
func WithPageBottom(mm float64) Option {
	return func(c *Config) {
		c.Bottom = mm
	}
}

// WithLogo sets the image drawn in the dossier's top-left corner.
func WithLogo(data []byte) Option {
	return func(c *Config) {
		c.Logo = data
	}
}

// WithoutCodes disables the QR and PDF417 codes.
func WithoutCodes() Option {
	return func(c *Config) {
		c.Codes = false
	}
}

// WithCompression enables or disables content stream compression.
func WithCompression(compress bool) Option {
	return func(c *Config) {
		c.Compress = compress
	}
}

// WithCreationDate fixes the creation date written into every document.
func WithCreationDate(t time.Time) Option {
	return func(c *Config) {
		c.CreationDate = t
	}
}

// NewConfig builds a Config from options.
// Defaults: A4, 20 mm bottom boundary, codes on, compression on, creation
// date captured once here so that repeated renders are byte-identical.
// No wrap policy is selected by default.
//
// Example:
//
//	cfg := edenpdf.NewConfig(
//	    edenpdf.WithWrapPolicy(edenpdf.WrapAdaptive),
//	    edenpdf.WithPageBottom(25),
//	)
func NewConfig(opts ...Option) Config {
	cfg := Config{
		Page:         A4,
		Bottom:       20,
		Codes:        true,
		Compress:     true,
		CreationDate: time.Now().UTC().Truncate(time.Second),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Validate reports configuration errors.
func (c Config) Validate() error {
	if c.Wrap.MaxLines <= 0 || c.Wrap.FontSize <= 0 || c.Wrap.LineHeight <= 0 {
		return fmt.Errorf("%w: no wrap policy selected", ErrInvalidParam)
	}
	if c.Page.Width <= 0 || c.Page.Height <= 0 {
		return fmt.Errorf("%w: page size %vx%v", ErrInvalidParam, c.Page.Width, c.Page.Height)
	}
	if c.Bottom < 0 || c.Bottom >= c.Page.Height {
		return fmt.Errorf("%w: page bottom %v outside page", ErrInvalidParam, c.Bottom)
	}
	return nil
}
