// Package reader parses existing PDF files far enough to check that they
// are usable as merge inputs, inspect their page boxes and pull positioned
// text out of their content streams.
//
// Encrypted documents are not supported.
package reader

import (
	"fmt"
	"strconv"
)

// Object is a PDF object: Null, Bool, Int, Real, Name, String, Array, Dict,
// Stream or Ref.
type Object interface {
	isObject()
}

type (
	Null   struct{}
	Bool   bool
	Int    int64
	Real   float64
	Name   string
	String []byte
	Array  []Object
	Dict   map[Name]Object
)

// Stream is a dictionary followed by raw (possibly filtered) bytes.
type Stream struct {
	Dict Dict
	Raw  []byte
}

// Ref is an indirect reference "num gen R".
type Ref struct {
	Num, Gen int
}

func (Null) isObject()    {}
func (Bool) isObject()    {}
func (Int) isObject()     {}
func (Real) isObject()    {}
func (Name) isObject()    {}
func (String) isObject()  {}
func (Array) isObject()   {}
func (Dict) isObject()    {}
func (*Stream) isObject() {}
func (Ref) isObject()     {}

func (r Ref) String() string { return strconv.Itoa(r.Num) + " " + strconv.Itoa(r.Gen) + " R" }

// Number returns the numeric value of an Int or Real.
func Number(o Object) (float64, bool) {
	switch v := o.(type) {
	case Int:
		return float64(v), true
	case Real:
		return float64(v), true
	}
	return 0, false
}

// Rect is a PDF rectangle in points.
type Rect struct {
	LLX, LLY, URX, URY float64
}

// Width returns the horizontal extent of r.
func (r Rect) Width() float64 { return r.URX - r.LLX }

// Height returns the vertical extent of r.
func (r Rect) Height() float64 { return r.URY - r.LLY }

func (r Rect) String() string {
	return fmt.Sprintf("[%g %g %g %g]", r.LLX, r.LLY, r.URX, r.URY)
}

func rectFrom(o Object) (Rect, bool) {
	a, ok := o.(Array)
	if !ok || len(a) != 4 {
		return Rect{}, false
	}
	var v [4]float64
	for i, e := range a {
		n, ok := Number(e)
		if !ok {
			return Rect{}, false
		}
		v[i] = n
	}
	// Normalize so that LL is the lower-left corner.
	return Rect{min(v[0], v[2]), min(v[1], v[3]), max(v[0], v[2]), max(v[1], v[3])}, true
}
