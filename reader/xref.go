package reader

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
)

// entry locates one object: either at a byte offset or inside an object
// stream.
type entry struct {
	offset int64
	gen    int
	inStm  int // object stream number, 0 when stored directly
	index  int // position inside the object stream
	free   bool
}

func (d *Document) loadXref() error {
	start, err := startxref(d.data)
	if err != nil {
		return err
	}
	d.xref = map[int]entry{}
	seen := map[int64]bool{}
	for off := start; off >= 0; {
		if seen[off] {
			break
		}
		seen[off] = true
		trailer, err := d.xrefSection(off)
		if err != nil {
			return err
		}
		if d.trailer == nil {
			d.trailer = trailer
		}
		// Hybrid files keep compressed objects in a side stream.
		if stm, ok := Number(trailer["XRefStm"]); ok && !seen[int64(stm)] {
			seen[int64(stm)] = true
			if _, err := d.xrefSection(int64(stm)); err != nil {
				return err
			}
		}
		prev, ok := Number(trailer["Prev"])
		if !ok {
			break
		}
		off = int64(prev)
	}
	return nil
}

func startxref(data []byte) (int64, error) {
	tail := data[max(0, len(data)-2048):]
	i := bytes.LastIndex(tail, []byte("startxref"))
	if i < 0 {
		return 0, fmt.Errorf("reader: startxref not found")
	}
	l := lexer{buf: tail, pos: i + len("startxref")}
	o, err := l.object()
	n, ok := o.(Int)
	if err != nil || !ok || n < 0 || int(n) >= len(data) {
		return 0, fmt.Errorf("reader: bad startxref offset")
	}
	return int64(n), nil
}

// xrefSection reads the table or stream at off. Entries already known
// come from a newer section and win.
func (d *Document) xrefSection(off int64) (Dict, error) {
	if off < 0 || off >= int64(len(d.data)) {
		return nil, fmt.Errorf("reader: xref offset %d out of range", off)
	}
	l := lexer{buf: d.data, pos: int(off)}
	l.skipSpace()
	if !bytes.HasPrefix(d.data[l.pos:], []byte("xref")) {
		return d.xrefStream(&l)
	}
	l.pos += len("xref")
	for {
		o, err := l.object()
		if err != nil {
			return nil, fmt.Errorf("reader: xref table: %w", err)
		}
		if o == keyword("trailer") {
			break
		}
		first, ok1 := o.(Int)
		c, err := l.object()
		count, ok2 := c.(Int)
		if err != nil || !ok1 || !ok2 {
			return nil, fmt.Errorf("reader: bad xref subsection header")
		}
		for i := 0; i < int(count); i++ {
			var f [3]Object
			for k := range f {
				if f[k], err = l.object(); err != nil {
					return nil, fmt.Errorf("reader: xref entry: %w", err)
				}
			}
			offset, _ := f[0].(Int)
			gen, _ := f[1].(Int)
			num := int(first) + i
			if _, known := d.xref[num]; !known {
				d.xref[num] = entry{offset: int64(offset), gen: int(gen), free: f[2] != keyword("n")}
			}
		}
	}
	t, err := l.object()
	if err != nil {
		return nil, fmt.Errorf("reader: trailer: %w", err)
	}
	trailer, ok := t.(Dict)
	if !ok {
		return nil, fmt.Errorf("reader: trailer is %T", t)
	}
	return trailer, nil
}

func (d *Document) xrefStream(l *lexer) (Dict, error) {
	_, o, err := l.indirect(d.length)
	if err != nil {
		return nil, fmt.Errorf("reader: xref stream: %w", err)
	}
	s, ok := o.(*Stream)
	if !ok || s.Dict["Type"] != Name("XRef") {
		return nil, fmt.Errorf("reader: no xref table or stream at startxref")
	}
	data, err := d.decode(s)
	if err != nil {
		return nil, err
	}
	wa, _ := s.Dict["W"].(Array)
	if len(wa) != 3 {
		return nil, fmt.Errorf("reader: xref stream /W has %d entries", len(wa))
	}
	var w [3]int
	for i, e := range wa {
		n, _ := Number(e)
		w[i] = int(n)
	}
	size, _ := Number(s.Dict["Size"])
	index := []int{0, int(size)}
	if ia, ok := s.Dict["Index"].(Array); ok {
		index = index[:0]
		for _, e := range ia {
			n, _ := Number(e)
			index = append(index, int(n))
		}
	}
	width := w[0] + w[1] + w[2]
	field := func(b []byte) int64 {
		var v int64
		for _, c := range b {
			v = v<<8 | int64(c)
		}
		return v
	}
	pos := 0
	for i := 0; i+1 < len(index); i += 2 {
		for j := 0; j < index[i+1]; j++ {
			if width == 0 || pos+width > len(data) {
				return s.Dict, nil
			}
			row := data[pos : pos+width]
			pos += width
			typ := int64(1)
			if w[0] > 0 {
				typ = field(row[:w[0]])
			}
			a, b := field(row[w[0]:w[0]+w[1]]), field(row[w[0]+w[1]:])
			num := index[i] + j
			if _, known := d.xref[num]; known {
				continue
			}
			switch typ {
			case 0:
				d.xref[num] = entry{free: true}
			case 1:
				d.xref[num] = entry{offset: a, gen: int(b)}
			case 2:
				d.xref[num] = entry{inStm: int(a), index: int(b)}
			}
		}
	}
	return s.Dict, nil
}

var objHeader = regexp.MustCompile(`(?m)(?:^|[\r\n\s])(\d+)\s+(\d+)\s+obj\b`)

// rebuild scans the whole file for object headers when the cross-reference
// data is missing or broken. The last definition of an object wins.
func (d *Document) rebuild() error {
	d.xref = map[int]entry{}
	d.cache = map[int]Object{}
	for _, m := range objHeader.FindAllSubmatchIndex(d.data, -1) {
		num, _ := strconv.Atoi(string(d.data[m[2]:m[3]]))
		gen, _ := strconv.Atoi(string(d.data[m[4]:m[5]]))
		d.xref[num] = entry{offset: int64(m[2]), gen: gen}
	}
	if len(d.xref) == 0 {
		return fmt.Errorf("reader: no objects found")
	}
	d.trailer = nil
	if i := bytes.LastIndex(d.data, []byte("trailer")); i >= 0 {
		l := lexer{buf: d.data, pos: i + len("trailer")}
		if o, err := l.object(); err == nil {
			d.trailer, _ = o.(Dict)
		}
	}
	if d.trailer == nil || d.trailer["Root"] == nil {
		// Look for the catalog directly.
		for num := range d.xref {
			if dict, ok := d.get(num).(Dict); ok && dict["Type"] == Name("Catalog") {
				d.trailer = Dict{"Root": Ref{Num: num, Gen: d.xref[num].gen}}
				break
			}
		}
	}
	if d.trailer == nil {
		return fmt.Errorf("reader: no trailer or catalog found")
	}
	return nil
}
