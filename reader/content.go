package reader

import (
	"strings"
	"unicode/utf16"

	"golang.org/x/text/encoding/charmap"
)

// Run is a piece of text shown by one text operator.
type Run struct {
	X, Y float64 // origin in page space, points
	Size float64 // font size after the text and user matrices
	Font string  // BaseFont of the font resource
	Text string
}

// Runs returns the text shown on the page in content order, descending
// into form XObjects such as imported pages.
func (p *Page) Runs() ([]Run, error) {
	data, err := p.Contents()
	if err != nil {
		return nil, err
	}
	x := &interp{doc: p.doc}
	x.run(data, p.resources, identity, 0)
	return x.out, nil
}

// Text returns the page text, one line per run.
func (p *Page) Text() (string, error) {
	runs, err := p.Runs()
	if err != nil {
		return "", err
	}
	lines := make([]string, 0, len(runs))
	for _, r := range runs {
		if t := strings.TrimSpace(r.Text); t != "" {
			lines = append(lines, t)
		}
	}
	return strings.Join(lines, "\n"), nil
}

type matrix [6]float64

var identity = matrix{1, 0, 0, 1, 0, 0}

// mul returns m × n in the PDF row-vector convention.
func (m matrix) mul(n matrix) matrix {
	return matrix{
		m[0]*n[0] + m[1]*n[2],
		m[0]*n[1] + m[1]*n[3],
		m[2]*n[0] + m[3]*n[2],
		m[2]*n[1] + m[3]*n[3],
		m[4]*n[0] + m[5]*n[2] + n[4],
		m[4]*n[1] + m[5]*n[3] + n[5],
	}
}

func matrixFrom(ops []Object) (matrix, bool) {
	var m matrix
	if len(ops) < 6 {
		return m, false
	}
	for i, o := range ops[len(ops)-6:] {
		v, ok := Number(o)
		if !ok {
			return m, false
		}
		m[i] = v
	}
	return m, true
}

type textState struct {
	font    Dict
	base    string
	size    float64
	leading float64
	tm, tlm matrix
}

type interp struct {
	doc *Document
	out []Run
}

// maxFormDepth bounds XObject recursion.
const maxFormDepth = 8

func (x *interp) run(data []byte, res Dict, ctm matrix, depth int) {
	l := lexer{buf: data}
	var (
		ops   []Object
		stack []matrix
		ts    = textState{tm: identity, tlm: identity}
	)
	num := func(i int) float64 {
		if i < 0 || i >= len(ops) {
			return 0
		}
		v, _ := Number(ops[i])
		return v
	}
	last := func(n int) int { return len(ops) - n }
	show := func(s String) {
		trm := ts.tm.mul(ctm)
		scale := trm[3]
		if scale < 0 {
			scale = -scale
		}
		x.out = append(x.out, Run{
			X:    trm[4],
			Y:    trm[5],
			Size: ts.size * scale,
			Font: ts.base,
			Text: x.decode(ts.font, s),
		})
	}
	nextLine := func(tx, ty float64) {
		ts.tlm = matrix{1, 0, 0, 1, tx, ty}.mul(ts.tlm)
		ts.tm = ts.tlm
	}

	for !l.eof() {
		start := l.pos
		o, err := l.object()
		if err != nil {
			if l.pos == start {
				l.pos++
			}
			ops = ops[:0]
			continue
		}
		op, isOp := o.(keyword)
		if !isOp {
			ops = append(ops, o)
			continue
		}
		switch op {
		case "q":
			stack = append(stack, ctm)
		case "Q":
			if n := len(stack); n > 0 {
				ctm, stack = stack[n-1], stack[:n-1]
			}
		case "cm":
			if m, ok := matrixFrom(ops); ok {
				ctm = m.mul(ctm)
			}
		case "BT":
			ts.tm, ts.tlm = identity, identity
		case "Tf":
			if len(ops) >= 2 {
				name, _ := ops[last(2)].(Name)
				ts.font, ts.base = x.font(res, name)
				ts.size = num(last(1))
			}
		case "TL":
			ts.leading = num(last(1))
		case "Td":
			nextLine(num(last(2)), num(last(1)))
		case "TD":
			ts.leading = -num(last(1))
			nextLine(num(last(2)), num(last(1)))
		case "Tm":
			if m, ok := matrixFrom(ops); ok {
				ts.tm, ts.tlm = m, m
			}
		case "T*":
			nextLine(0, -ts.leading)
		case "Tj":
			if s, ok := lastString(ops); ok {
				show(s)
			}
		case "'", "\"":
			nextLine(0, -ts.leading)
			if s, ok := lastString(ops); ok {
				show(s)
			}
		case "TJ":
			if len(ops) > 0 {
				if a, ok := ops[len(ops)-1].(Array); ok {
					show(joinTJ(a))
				}
			}
		case "Do":
			if len(ops) > 0 && depth < maxFormDepth {
				if name, ok := ops[len(ops)-1].(Name); ok {
					x.form(res, name, ctm, depth)
				}
			}
		case "ID":
			skipInlineImage(&l)
		}
		ops = ops[:0]
	}
}

func lastString(ops []Object) (String, bool) {
	if len(ops) == 0 {
		return nil, false
	}
	s, ok := ops[len(ops)-1].(String)
	return s, ok
}

// joinTJ concatenates the strings of a TJ array. A large negative
// adjustment stands for a word space in most generators.
func joinTJ(a Array) String {
	var out []byte
	for _, e := range a {
		switch v := e.(type) {
		case String:
			out = append(out, v...)
		case Int, Real:
			if n, _ := Number(v); n < -200 {
				out = append(out, ' ')
			}
		}
	}
	return String(out)
}

func (x *interp) font(res Dict, name Name) (Dict, string) {
	fonts, _ := x.doc.resolve(res["Font"]).(Dict)
	f, _ := x.doc.resolve(fonts[name]).(Dict)
	base, _ := x.doc.resolve(f["BaseFont"]).(Name)
	return f, string(base)
}

func (x *interp) form(res Dict, name Name, ctm matrix, depth int) {
	xobjs, _ := x.doc.resolve(res["XObject"]).(Dict)
	s, ok := x.doc.resolve(xobjs[name]).(*Stream)
	if !ok || s.Dict["Subtype"] != Name("Form") {
		return
	}
	data, err := x.doc.decode(s)
	if err != nil {
		return
	}
	if m, ok := matrixFrom(toObjects(x.doc.resolve(s.Dict["Matrix"]))); ok {
		ctm = m.mul(ctm)
	}
	inner, ok := x.doc.resolve(s.Dict["Resources"]).(Dict)
	if !ok {
		inner = res
	}
	x.run(data, inner, ctm, depth+1)
}

func toObjects(o Object) []Object {
	a, _ := o.(Array)
	return a
}

// decode maps the bytes of a shown string to text. Simple fonts are read
// as WinAnsi, which is what the core fonts written by gofpdf use; composite
// fonts are read as two-byte Unicode.
func (x *interp) decode(font Dict, s String) string {
	if font != nil && x.doc.resolve(font["Subtype"]) == Name("Type0") {
		return utf16be(s)
	}
	out, err := charmap.Windows1252.NewDecoder().Bytes(s)
	if err != nil {
		return string(s)
	}
	return string(out)
}

func utf16be(b []byte) string {
	u := make([]uint16, len(b)/2)
	for i := range u {
		u[i] = uint16(b[2*i])<<8 | uint16(b[2*i+1])
	}
	return string(utf16.Decode(u))
}

// skipInlineImage moves past the binary data of an inline image to the EI
// operator.
func skipInlineImage(l *lexer) {
	if l.pos < len(l.buf) && isSpace(l.buf[l.pos]) {
		l.pos++
	}
	for i := l.pos; i+2 <= len(l.buf); i++ {
		if l.buf[i] == 'E' && l.buf[i+1] == 'I' && (i == 0 || isSpace(l.buf[i-1])) &&
			(i+2 == len(l.buf) || isSpace(l.buf[i+2])) {
			l.pos = i + 2
			return
		}
	}
	l.pos = len(l.buf)
}

// Contains reports whether any run's text contains sub.
func Contains(runs []Run, sub string) bool {
	for _, r := range runs {
		if strings.Contains(r.Text, sub) {
			return true
		}
	}
	return false
}
