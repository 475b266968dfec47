package reader

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
)

var errEOF = errors.New("reader: unexpected end of data")

// keyword is a bare token such as obj, R, endstream or a content operator.
type keyword string

func (keyword) isObject() {}

type lexer struct {
	buf []byte
	pos int
}

func isSpace(c byte) bool {
	switch c {
	case 0, '\t', '\n', '\f', '\r', ' ':
		return true
	}
	return false
}

func isDelim(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func (l *lexer) eof() bool { return l.pos >= len(l.buf) }

func (l *lexer) skipSpace() {
	for l.pos < len(l.buf) {
		c := l.buf[l.pos]
		if c == '%' {
			for l.pos < len(l.buf) && l.buf[l.pos] != '\n' && l.buf[l.pos] != '\r' {
				l.pos++
			}
			continue
		}
		if !isSpace(c) {
			return
		}
		l.pos++
	}
}

func (l *lexer) bare() string {
	start := l.pos
	for l.pos < len(l.buf) && !isSpace(l.buf[l.pos]) && !isDelim(l.buf[l.pos]) {
		l.pos++
	}
	return string(l.buf[start:l.pos])
}

// object reads the next object. Bare words come back as keyword values and
// "num gen R" triples are folded into a Ref.
func (l *lexer) object() (Object, error) {
	l.skipSpace()
	if l.eof() {
		return nil, errEOF
	}
	switch c := l.buf[l.pos]; {
	case c == '/':
		return l.name(), nil
	case c == '(':
		return l.literal()
	case c == '<':
		if l.pos+1 < len(l.buf) && l.buf[l.pos+1] == '<' {
			return l.dict()
		}
		return l.hex()
	case c == '[':
		l.pos++
		var a Array
		for {
			l.skipSpace()
			if l.eof() {
				return nil, errEOF
			}
			if l.buf[l.pos] == ']' {
				l.pos++
				return a, nil
			}
			o, err := l.object()
			if err != nil {
				return nil, err
			}
			a = append(a, o)
		}
	case c == ']' || c == '>' || c == ')' || c == '{' || c == '}':
		l.pos++
		return keyword(c), nil
	case c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9'):
		return l.number()
	default:
		w := l.bare()
		switch w {
		case "true":
			return Bool(true), nil
		case "false":
			return Bool(false), nil
		case "null":
			return Null{}, nil
		case "":
			l.pos++
			return nil, fmt.Errorf("reader: unexpected byte %q at %d", c, l.pos-1)
		}
		return keyword(w), nil
	}
}

func (l *lexer) number() (Object, error) {
	start := l.pos
	w := l.bare()
	if i, err := strconv.ParseInt(w, 10, 64); err == nil {
		if ref, ok := l.refTail(int(i)); ok {
			return ref, nil
		}
		return Int(i), nil
	}
	f, err := strconv.ParseFloat(w, 64)
	if err != nil {
		// Some writers emit "--1" or "1.2.3"; keep the digits we can read.
		return Real(0), fmt.Errorf("reader: bad number %q at %d", w, start)
	}
	return Real(f), nil
}

// refTail checks whether "gen R" follows and consumes it when it does.
func (l *lexer) refTail(num int) (Ref, bool) {
	save := l.pos
	l.skipSpace()
	w := l.bare()
	gen, err := strconv.Atoi(w)
	if err == nil && gen >= 0 {
		l.skipSpace()
		if l.pos < len(l.buf) && l.buf[l.pos] == 'R' &&
			(l.pos+1 == len(l.buf) || isSpace(l.buf[l.pos+1]) || isDelim(l.buf[l.pos+1])) {
			l.pos++
			return Ref{Num: num, Gen: gen}, true
		}
	}
	l.pos = save
	return Ref{}, false
}

func (l *lexer) name() Name {
	l.pos++
	var b []byte
	for l.pos < len(l.buf) {
		c := l.buf[l.pos]
		if isSpace(c) || isDelim(c) {
			break
		}
		if c == '#' && l.pos+2 < len(l.buf) {
			if v, err := strconv.ParseUint(string(l.buf[l.pos+1:l.pos+3]), 16, 8); err == nil {
				b = append(b, byte(v))
				l.pos += 3
				continue
			}
		}
		b = append(b, c)
		l.pos++
	}
	return Name(b)
}

var escapes = map[byte]byte{'n': '\n', 'r': '\r', 't': '\t', 'b': '\b', 'f': '\f', '(': '(', ')': ')', '\\': '\\'}

func (l *lexer) literal() (String, error) {
	l.pos++
	var out []byte
	depth := 1
	for l.pos < len(l.buf) {
		c := l.buf[l.pos]
		l.pos++
		switch c {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return String(out), nil
			}
		case '\\':
			if l.eof() {
				return nil, errEOF
			}
			e := l.buf[l.pos]
			l.pos++
			if r, ok := escapes[e]; ok {
				out = append(out, r)
				continue
			}
			if e >= '0' && e <= '7' {
				v := int(e - '0')
				for n := 0; n < 2 && l.pos < len(l.buf) && l.buf[l.pos] >= '0' && l.buf[l.pos] <= '7'; n++ {
					v = v*8 + int(l.buf[l.pos]-'0')
					l.pos++
				}
				out = append(out, byte(v))
				continue
			}
			if e == '\r' {
				if l.pos < len(l.buf) && l.buf[l.pos] == '\n' {
					l.pos++
				}
				continue
			}
			if e == '\n' {
				continue
			}
			out = append(out, e)
			continue
		}
		out = append(out, c)
	}
	return nil, fmt.Errorf("reader: unterminated string: %w", errEOF)
}

func (l *lexer) hex() (String, error) {
	l.pos++
	end := bytes.IndexByte(l.buf[l.pos:], '>')
	if end < 0 {
		return nil, fmt.Errorf("reader: unterminated hex string: %w", errEOF)
	}
	var digits []byte
	for _, c := range l.buf[l.pos : l.pos+end] {
		if !isSpace(c) {
			digits = append(digits, c)
		}
	}
	l.pos += end + 1
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	out := make([]byte, len(digits)/2)
	for i := range out {
		v, err := strconv.ParseUint(string(digits[2*i:2*i+2]), 16, 8)
		if err != nil {
			return nil, fmt.Errorf("reader: bad hex string: %w", err)
		}
		out[i] = byte(v)
	}
	return String(out), nil
}

func (l *lexer) dict() (Dict, error) {
	l.pos += 2
	d := Dict{}
	for {
		l.skipSpace()
		if l.pos+1 >= len(l.buf) {
			return nil, errEOF
		}
		if l.buf[l.pos] == '>' && l.buf[l.pos+1] == '>' {
			l.pos += 2
			return d, nil
		}
		if l.buf[l.pos] != '/' {
			return nil, fmt.Errorf("reader: dictionary key expected at %d", l.pos)
		}
		key := l.name()
		val, err := l.object()
		if err != nil {
			return nil, err
		}
		d[key] = val
	}
}

// indirect parses "num gen obj value [stream ... endstream] endobj".
// length resolves a /Length given as a reference.
func (l *lexer) indirect(length func(Object) int) (Ref, Object, error) {
	var ref Ref
	for i, dst := range []*int{&ref.Num, &ref.Gen} {
		o, err := l.object()
		if err != nil {
			return ref, nil, err
		}
		n, ok := o.(Int)
		if !ok {
			return ref, nil, fmt.Errorf("reader: object header field %d is %T", i, o)
		}
		*dst = int(n)
	}
	l.skipSpace()
	if kw := l.bare(); kw != "obj" {
		return ref, nil, fmt.Errorf("reader: object %v: found %q, want obj", ref, kw)
	}
	val, err := l.object()
	if err != nil {
		return ref, nil, fmt.Errorf("reader: object %v: %w", ref, err)
	}
	d, isDict := val.(Dict)
	l.skipSpace()
	if !isDict || !bytes.HasPrefix(l.buf[l.pos:], []byte("stream")) {
		return ref, val, nil
	}
	l.pos += len("stream")
	if l.pos < len(l.buf) && l.buf[l.pos] == '\r' {
		l.pos++
	}
	if l.pos < len(l.buf) && l.buf[l.pos] == '\n' {
		l.pos++
	}
	n := length(d["Length"])
	rest := l.buf[l.pos:]
	if n < 0 || n > len(rest) || !endsStream(rest[n:]) {
		// Wrong or missing /Length: fall back to the endstream marker.
		i := bytes.Index(rest, []byte("endstream"))
		if i < 0 {
			return ref, nil, fmt.Errorf("reader: object %v: stream without endstream", ref)
		}
		n = i
		for n > 0 && (rest[n-1] == '\n' || rest[n-1] == '\r') {
			n--
		}
	}
	raw := make([]byte, n)
	copy(raw, rest[:n])
	l.pos += n
	return ref, &Stream{Dict: d, Raw: raw}, nil
}

func endsStream(b []byte) bool {
	return bytes.HasPrefix(bytes.TrimLeft(b, "\r\n \t"), []byte("endstream"))
}
