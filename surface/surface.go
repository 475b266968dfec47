// Package surface accumulates the drawing primitives of one page.
//
// A Surface starts Idle, moves to Drawing with the first primitive and to
// Finalized when it is serialized. Primitives drawn after finalization are
// rejected with edenpdf.ErrInvalidState, recorded as a sticky error in the
// manner of gofpdf's Err/Error pair.
package surface

import (
	"fmt"

	"github.com/edentir/edenpdf"
)

// State is the lifecycle position of a Surface.
type State int

const (
	Idle State = iota
	Drawing
	Finalized
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Drawing:
		return "drawing"
	case Finalized:
		return "finalized"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Encoder serializes a page made of primitives into a standalone document.
type Encoder interface {
	Encode(page edenpdf.PageSize, ops []Primitive) ([]byte, error)
}

// Surface is the drawing target for one page. It is not safe for concurrent
// use; each render owns its own Surface.
type Surface struct {
	page  edenpdf.PageSize
	ops   []Primitive
	state State
	err   error
	out   []byte
}

// New returns an empty surface for a page of the given size.
func New(page edenpdf.PageSize) *Surface {
	return &Surface{page: page}
}

// Page returns the page size.
func (s *Surface) Page() edenpdf.PageSize { return s.page }

// State returns the current lifecycle state.
func (s *Surface) State() State { return s.state }

// Draw appends primitives in order.
func (s *Surface) Draw(ps ...Primitive) {
	if s.state == Finalized {
		s.setError(fmt.Errorf("%w: draw after finalize", edenpdf.ErrInvalidState))
		return
	}
	if len(ps) == 0 {
		return
	}
	s.state = Drawing
	s.ops = append(s.ops, ps...)
}

// Ops returns a copy of the primitives drawn so far.
func (s *Surface) Ops() []Primitive {
	out := make([]Primitive, len(s.ops))
	copy(out, s.ops)
	return out
}

// Len returns the number of primitives drawn so far.
func (s *Surface) Len() int { return len(s.ops) }

// Err returns true if an error has been recorded.
func (s *Surface) Err() bool { return s.err != nil }

// Error returns the first recorded error, or nil.
func (s *Surface) Error() error { return s.err }

// SetError records err unless an error is already set.
func (s *Surface) SetError(err error) { s.setError(err) }

func (s *Surface) setError(err error) {
	if s.err == nil && err != nil {
		s.err = err
	}
}

// Finalize closes the page and serializes it with enc. The first call moves
// the surface to Finalized; later calls return the same bytes without
// encoding again.
func (s *Surface) Finalize(enc Encoder) ([]byte, error) {
	if s.state == Finalized {
		if s.err != nil {
			return nil, s.err
		}
		return s.out, nil
	}
	if s.err != nil {
		return nil, s.err
	}
	out, err := enc.Encode(s.page, s.ops)
	s.state = Finalized
	if err != nil {
		s.setError(err)
		return nil, err
	}
	s.out = out
	return out, nil
}
