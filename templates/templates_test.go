package templates

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/edentir/edenpdf"
)

func TestDirOpen(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "Entete EDEN.pdf"), []byte("%PDF-1.4 head"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "empty.pdf"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	d := Dir{Root: dir}

	data, err := d.Open("Entete EDEN.pdf")
	if err != nil || string(data) != "%PDF-1.4 head" {
		t.Fatalf("Open = %q, %v", data, err)
	}

	tests := []struct {
		name string
		want error
	}{
		{"missing.pdf", edenpdf.ErrTemplateMissing},
		{"empty.pdf", edenpdf.ErrTemplateMissing},
		{"../secret.pdf", edenpdf.ErrInvalidParam},
		{"sub/x.pdf", edenpdf.ErrInvalidParam},
		{`..\x.pdf`, edenpdf.ErrInvalidParam},
		{"..", edenpdf.ErrInvalidParam},
		{"", edenpdf.ErrInvalidParam},
	}
	for _, tt := range tests {
		if _, err := d.Open(tt.name); !errors.Is(err, tt.want) {
			t.Errorf("Open(%q) = %v, want %v", tt.name, err, tt.want)
		}
	}

	if _, err := (Dir{Root: filepath.Join(dir, "nope")}).Open("x.pdf"); !errors.Is(err, edenpdf.ErrTemplateMissing) {
		t.Errorf("missing root: err = %v", err)
	}
}

type countingStore struct {
	Memory
	calls int
}

func (c *countingStore) Open(name string) ([]byte, error) {
	c.calls++
	return c.Memory.Open(name)
}

func TestCached(t *testing.T) {
	inner := &countingStore{Memory: Memory{"a.pdf": []byte("A")}}
	c := &Cached{Store: inner}
	for range 3 {
		if data, err := c.Open("a.pdf"); err != nil || string(data) != "A" {
			t.Fatalf("Open = %q, %v", data, err)
		}
	}
	if inner.calls != 1 {
		t.Errorf("inner store read %d times, want 1", inner.calls)
	}
	for range 2 {
		if _, err := c.Open("b.pdf"); !errors.Is(err, edenpdf.ErrTemplateMissing) {
			t.Errorf("err = %v", err)
		}
	}
	if inner.calls != 3 {
		t.Errorf("failures were cached: %d calls", inner.calls)
	}
}
