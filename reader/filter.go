package reader

import (
	"bytes"
	"compress/zlib"
	"encoding/ascii85"
	"fmt"
	"io"
)

// decode returns the stream data with its filter chain removed.
func (d *Document) decode(s *Stream) ([]byte, error) {
	var names []Name
	var params []Dict
	switch f := d.resolve(s.Dict["Filter"]).(type) {
	case nil, Null:
		return s.Raw, nil
	case Name:
		names = []Name{f}
	case Array:
		for _, e := range f {
			n, ok := d.resolve(e).(Name)
			if !ok {
				return nil, fmt.Errorf("reader: filter entry is %T", e)
			}
			names = append(names, n)
		}
	default:
		return nil, fmt.Errorf("reader: filter is %T", f)
	}
	switch p := d.resolve(s.Dict["DecodeParms"]).(type) {
	case Dict:
		params = []Dict{p}
	case Array:
		for _, e := range p {
			dp, _ := d.resolve(e).(Dict)
			params = append(params, dp)
		}
	}

	data := s.Raw
	for i, name := range names {
		var dp Dict
		if i < len(params) {
			dp = params[i]
		}
		var err error
		switch name {
		case "FlateDecode", "Fl":
			data, err = inflate(data)
			if err == nil {
				data, err = unpredict(data, dp)
			}
		case "ASCIIHexDecode", "AHx":
			// The data carries its own '>' end marker; the extra one covers
			// writers that omit it.
			l := lexer{buf: append(append([]byte{'<'}, data...), '>')}
			data, err = l.hex()
		case "ASCII85Decode", "A85":
			data, err = unascii85(data)
		default:
			return nil, fmt.Errorf("reader: unsupported filter %s", name)
		}
		if err != nil {
			return nil, fmt.Errorf("reader: %s: %w", name, err)
		}
	}
	return data, nil
}

func inflate(data []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil && len(out) > 0 && (err == io.ErrUnexpectedEOF || err == zlib.ErrChecksum) {
		// Truncated or badly checksummed streams are common; keep what inflated.
		return out, nil
	}
	return out, err
}

func unascii85(data []byte) ([]byte, error) {
	data = bytes.TrimSpace(data)
	data = bytes.TrimPrefix(data, []byte("<~"))
	if i := bytes.Index(data, []byte("~>")); i >= 0 {
		data = data[:i]
	}
	return io.ReadAll(ascii85.NewDecoder(bytes.NewReader(data)))
}

// unpredict reverses the PNG predictors used by cross-reference and object
// streams. TIFF predictor 2 is not supported.
func unpredict(data []byte, dp Dict) ([]byte, error) {
	if dp == nil {
		return data, nil
	}
	pred, _ := Number(dp["Predictor"])
	if pred < 10 {
		if pred == 2 {
			return nil, fmt.Errorf("TIFF predictor not supported")
		}
		return data, nil
	}
	columns, colors, bpc := 1.0, 1.0, 8.0
	if v, ok := Number(dp["Columns"]); ok {
		columns = v
	}
	if v, ok := Number(dp["Colors"]); ok {
		colors = v
	}
	if v, ok := Number(dp["BitsPerComponent"]); ok {
		bpc = v
	}
	bpp := max(1, int(colors*bpc+7)/8)
	rowLen := int(columns*colors*bpc+7) / 8
	if rowLen <= 0 {
		return nil, fmt.Errorf("bad predictor columns")
	}

	var out []byte
	prev := make([]byte, rowLen)
	for len(data) > 0 {
		if len(data) < rowLen+1 {
			break
		}
		tag, row := data[0], append([]byte(nil), data[1:rowLen+1]...)
		data = data[rowLen+1:]
		for i := range row {
			var left, up, upLeft byte
			if i >= bpp {
				left = row[i-bpp]
				upLeft = prev[i-bpp]
			}
			up = prev[i]
			switch tag {
			case 0:
			case 1:
				row[i] += left
			case 2:
				row[i] += up
			case 3:
				row[i] += byte((int(left) + int(up)) / 2)
			case 4:
				row[i] += paeth(left, up, upLeft)
			default:
				return nil, fmt.Errorf("bad PNG filter type %d", tag)
			}
		}
		out = append(out, row...)
		prev = row
	}
	return out, nil
}

func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa, pb, pc := abs(p-int(a)), abs(p-int(b)), abs(p-int(c))
	switch {
	case pa <= pb && pa <= pc:
		return a
	case pb <= pc:
		return b
	}
	return c
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
