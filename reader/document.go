package reader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrNotPDF is returned for input that does not start with a PDF header.
var ErrNotPDF = errors.New("reader: not a PDF file")

// Document is a parsed PDF file. It is not safe for concurrent use.
type Document struct {
	Version string

	data    []byte
	xref    map[int]entry
	trailer Dict
	cache   map[int]Object
	pages   []*Page
}

// Open reads and parses the named file.
func Open(name string) (*Document, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("reader: %w", err)
	}
	return Parse(data)
}

// ReadFrom reads r to the end and parses it.
func ReadFrom(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reader: %w", err)
	}
	return Parse(data)
}

// Parse parses a complete PDF file held in memory. A damaged
// cross-reference table is rebuilt by scanning the file.
func Parse(data []byte) (*Document, error) {
	head := data[:min(len(data), 1024)]
	i := bytes.Index(head, []byte("%PDF-"))
	if i < 0 {
		return nil, ErrNotPDF
	}
	d := &Document{data: data, cache: map[int]Object{}}
	v := head[i+5:]
	if j := bytes.IndexAny(v, "\r\n \t%"); j >= 0 {
		v = v[:j]
	}
	d.Version = string(v)

	if err := d.loadXref(); err != nil || d.trailer["Root"] == nil {
		if rerr := d.rebuild(); rerr != nil {
			if err != nil {
				return nil, err
			}
			return nil, rerr
		}
	}
	if d.trailer["Encrypt"] != nil {
		return nil, fmt.Errorf("reader: encrypted documents are not supported")
	}
	if err := d.loadPages(); err != nil {
		return nil, err
	}
	return d, nil
}

// NumPages returns the number of pages.
func (d *Document) NumPages() int { return len(d.pages) }

// Page returns page n, counting from 1.
func (d *Document) Page(n int) (*Page, error) {
	if n < 1 || n > len(d.pages) {
		return nil, fmt.Errorf("reader: page %d out of range [1, %d]", n, len(d.pages))
	}
	return d.pages[n-1], nil
}

// Info returns the text entries of the document information dictionary.
func (d *Document) Info() map[string]string {
	out := map[string]string{}
	info, _ := d.resolve(d.trailer["Info"]).(Dict)
	for k, v := range info {
		if s, ok := d.resolve(v).(String); ok {
			out[string(k)] = decodeTextString(s)
		}
	}
	return out
}

// Resolve follows indirect references until it reaches a direct object.
// Missing objects resolve to Null.
func (d *Document) Resolve(o Object) Object { return d.resolve(o) }

func (d *Document) resolve(o Object) Object {
	for depth := 0; depth < 32; depth++ {
		r, ok := o.(Ref)
		if !ok {
			return o
		}
		o = d.get(r.Num)
	}
	return Null{}
}

func (d *Document) get(num int) Object {
	if o, ok := d.cache[num]; ok {
		return o
	}
	// Guard against reference cycles through /Length.
	d.cache[num] = Null{}
	o := d.load(num)
	d.cache[num] = o
	return o
}

func (d *Document) load(num int) Object {
	e, ok := d.xref[num]
	if !ok || e.free {
		return Null{}
	}
	if e.inStm > 0 {
		return d.fromObjStm(e.inStm, num, e.index)
	}
	if e.offset < 0 || e.offset >= int64(len(d.data)) {
		return Null{}
	}
	l := lexer{buf: d.data, pos: int(e.offset)}
	_, o, err := l.indirect(d.length)
	if err != nil {
		return Null{}
	}
	return o
}

func (d *Document) length(o Object) int {
	n, ok := Number(d.resolve(o))
	if !ok {
		return -1
	}
	return int(n)
}

// fromObjStm extracts object num stored at position index of an object
// stream.
func (d *Document) fromObjStm(stm, num, index int) Object {
	s, ok := d.get(stm).(*Stream)
	if !ok {
		return Null{}
	}
	data, err := d.decode(s)
	if err != nil {
		return Null{}
	}
	n, _ := Number(s.Dict["N"])
	first, _ := Number(s.Dict["First"])
	l := lexer{buf: data}
	offsets := make(map[int]int, int(n))
	order := make([]int, 0, int(n))
	for i := 0; i < int(n); i++ {
		a, err1 := l.object()
		b, err2 := l.object()
		on, ok1 := a.(Int)
		off, ok2 := b.(Int)
		if err1 != nil || err2 != nil || !ok1 || !ok2 {
			break
		}
		offsets[int(on)] = int(off)
		order = append(order, int(on))
	}
	off, ok := offsets[num]
	if !ok && index < len(order) {
		off = offsets[order[index]]
	}
	l.pos = int(first) + off
	if l.pos >= len(data) {
		return Null{}
	}
	o, err := l.object()
	if err != nil {
		return Null{}
	}
	return o
}

// decodeTextString decodes a PDF text string: UTF-16BE with a byte order
// mark, UTF-8 with a byte order mark, or PDFDocEncoding.
func decodeTextString(s String) string {
	b := []byte(s)
	switch {
	case bytes.HasPrefix(b, []byte{0xFE, 0xFF}):
		return utf16be(b[2:])
	case bytes.HasPrefix(b, []byte{0xEF, 0xBB, 0xBF}):
		return string(b[3:])
	}
	var sb strings.Builder
	for _, c := range b {
		// PDFDocEncoding agrees with Latin-1 outside a few control-range
		// glyphs that never occur in metadata written by gofpdf.
		sb.WriteRune(rune(c))
	}
	return sb.String()
}
