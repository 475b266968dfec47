package reader

import (
	"fmt"
)

// Page is one leaf of the page tree with its inherited attributes applied.
type Page struct {
	Number   int
	MediaBox Rect
	CropBox  Rect // equals MediaBox when absent
	Rotate   int

	doc       *Document
	dict      Dict
	resources Dict
}

// A4 in points, used when a page has no usable MediaBox.
var defaultMediaBox = Rect{0, 0, 595.28, 841.89}

func (d *Document) loadPages() error {
	root, ok := d.resolve(d.trailer["Root"]).(Dict)
	if !ok {
		return fmt.Errorf("reader: document catalog missing")
	}
	tree, ok := d.resolve(root["Pages"]).(Dict)
	if !ok {
		return fmt.Errorf("reader: page tree missing")
	}
	d.pages = nil
	return d.walk(tree, Dict{}, 0)
}

// inheritable page attributes.
var inherited = []Name{"MediaBox", "CropBox", "Resources", "Rotate"}

func (d *Document) walk(node Dict, attrs Dict, depth int) error {
	if depth > 64 {
		return fmt.Errorf("reader: page tree too deep")
	}
	own := Dict{}
	for k, v := range attrs {
		own[k] = v
	}
	for _, k := range inherited {
		if v, ok := node[k]; ok {
			own[k] = v
		}
	}

	kids, hasKids := d.resolve(node["Kids"]).(Array)
	if node["Type"] == Name("Page") || !hasKids {
		p := &Page{Number: len(d.pages) + 1, doc: d, dict: node}
		if r, ok := rectFrom(d.resolve(own["MediaBox"])); ok {
			p.MediaBox = r
		} else {
			p.MediaBox = defaultMediaBox
		}
		p.CropBox = p.MediaBox
		if r, ok := rectFrom(d.resolve(own["CropBox"])); ok {
			p.CropBox = r
		}
		if n, ok := Number(d.resolve(own["Rotate"])); ok {
			p.Rotate = ((int(n) % 360) + 360) % 360
		}
		p.resources, _ = d.resolve(own["Resources"]).(Dict)
		d.pages = append(d.pages, p)
		return nil
	}
	for _, k := range kids {
		child, ok := d.resolve(k).(Dict)
		if !ok {
			continue
		}
		if err := d.walk(child, own, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// Contents returns the page's content streams decoded and joined.
func (p *Page) Contents() ([]byte, error) {
	var streams []*Stream
	switch c := p.doc.resolve(p.dict["Contents"]).(type) {
	case *Stream:
		streams = []*Stream{c}
	case Array:
		for _, e := range c {
			if s, ok := p.doc.resolve(e).(*Stream); ok {
				streams = append(streams, s)
			}
		}
	}
	var out []byte
	for _, s := range streams {
		b, err := p.doc.decode(s)
		if err != nil {
			return nil, fmt.Errorf("reader: page %d: %w", p.Number, err)
		}
		out = append(out, b...)
		out = append(out, '\n')
	}
	return out, nil
}

// Resources returns the page's resource dictionary, possibly inherited.
func (p *Page) Resources() Dict { return p.resources }
