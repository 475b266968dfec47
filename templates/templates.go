// Package templates provides the background pages, such as the company
// letterhead, that rendered invoices are painted on.
package templates

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/edentir/edenpdf"
)

// Store returns the bytes of a background document by name.
type Store interface {
	Open(name string) ([]byte, error)
}

// Dir reads templates from a directory. Names are single path elements;
// anything that would leave the directory is refused.
type Dir struct {
	Root string
}

// Open implements Store. A missing file yields edenpdf.ErrTemplateMissing.
func (d Dir) Open(name string) ([]byte, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	root, err := os.OpenRoot(d.Root)
	if err != nil {
		return nil, fmt.Errorf("%w: template directory: %v", edenpdf.ErrTemplateMissing, err)
	}
	defer root.Close()
	f, err := root.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %q", edenpdf.ErrTemplateMissing, name)
		}
		return nil, fmt.Errorf("templates: opening %q: %w", name, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("templates: reading %q: %w", name, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %q is empty", edenpdf.ErrTemplateMissing, name)
	}
	return data, nil
}

func checkName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || filepath.IsAbs(name) || name != filepath.Base(name) {
		return fmt.Errorf("%w: template name %q", edenpdf.ErrInvalidParam, name)
	}
	return nil
}

// Cached wraps a store and keeps every template it has read. It is safe
// for concurrent use.
type Cached struct {
	Store Store

	mu    sync.RWMutex
	bytes map[string][]byte
}

// Open implements Store. Failures are not cached.
func (c *Cached) Open(name string) ([]byte, error) {
	c.mu.RLock()
	data, ok := c.bytes[name]
	c.mu.RUnlock()
	if ok {
		return data, nil
	}
	data, err := c.Store.Open(name)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	if c.bytes == nil {
		c.bytes = make(map[string][]byte)
	}
	c.bytes[name] = data
	c.mu.Unlock()
	return data, nil
}

// Memory is a fixed in-memory store.
type Memory map[string][]byte

// Open implements Store.
func (m Memory) Open(name string) ([]byte, error) {
	data, ok := m[name]
	if !ok || len(data) == 0 {
		return nil, fmt.Errorf("%w: %q", edenpdf.ErrTemplateMissing, name)
	}
	return data, nil
}
