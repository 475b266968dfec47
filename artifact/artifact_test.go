package artifact

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/edentir/edenpdf/render"
)

type rec struct {
	Number string `json:"numero"`
}

func doc(number string) *render.Artifact {
	return &render.Artifact{
		Kind:     render.KindInvoice,
		Filename: "Facture_" + number + ".pdf",
		Data:     []byte("%PDF-1.3 " + number),
		Record:   rec{number},
	}
}

func TestKey(t *testing.T) {
	a, err := Key(render.KindInvoice, rec{"F-1"})
	if err != nil {
		t.Fatal(err)
	}
	b, _ := Key(render.KindInvoice, rec{"F-1"})
	c, _ := Key(render.KindDossier, rec{"F-1"})
	d, _ := Key(render.KindInvoice, rec{"F-2"})
	if a != b {
		t.Errorf("equal records gave %s and %s", a, b)
	}
	if a == c || a == d {
		t.Error("distinct inputs share a key")
	}
	if !strings.HasPrefix(a, "facture:") || len(a) != len("facture:")+64 {
		t.Errorf("key = %s", a)
	}
	if _, err := Key("x", func() {}); err == nil {
		t.Error("Key accepted an unmarshalable record")
	}
}

func TestDirPut(t *testing.T) {
	root := t.TempDir()
	d := Dir{Root: root}
	path, err := d.Put(context.Background(), doc("F-1"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if want := filepath.Join(root, "facture", "Facture_F-1.pdf"); path != want {
		t.Errorf("path = %s, want %s", path, want)
	}
	got, err := os.ReadFile(path)
	if err != nil || string(got) != "%PDF-1.3 F-1" {
		t.Errorf("stored %q, %v", got, err)
	}
	entries, _ := os.ReadDir(filepath.Join(root, "facture"))
	if len(entries) != 1 {
		t.Errorf("%d entries left in kind directory", len(entries))
	}

	bad := doc("F-2")
	bad.Filename = "../escape.pdf"
	if _, err := d.Put(context.Background(), bad); err == nil {
		t.Error("Put accepted a path in the filename")
	}
}

func TestMemoryAndMulti(t *testing.T) {
	ctx := context.Background()
	mem := &Memory{}
	sink := Multi{mem, Dir{Root: t.TempDir()}, Discard{}}

	loc, err := sink.Put(ctx, doc("F-3"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	key, _ := Key(render.KindInvoice, rec{"F-3"})
	if !strings.HasPrefix(loc, key+",") {
		t.Errorf("location = %s", loc)
	}
	data, err := mem.Get(ctx, key)
	if err != nil || string(data) != "%PDF-1.3 F-3" {
		t.Errorf("Get = %q, %v", data, err)
	}
	if _, err := mem.Get(ctx, "facture:none"); !errors.Is(err, ErrMiss) {
		t.Errorf("missing key error = %v", err)
	}
}

// TestRedis needs a server; set EDENPDF_TEST_REDIS to its address.
func TestRedis(t *testing.T) {
	addr := os.Getenv("EDENPDF_TEST_REDIS")
	if addr == "" {
		t.Skip("EDENPDF_TEST_REDIS not set")
	}
	ctx := context.Background()
	r, err := NewRedis(ctx, addr, "", 0, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	r.Prefix = "edenpdf-test:"

	key, err := r.Put(ctx, doc("F-4"))
	if err != nil {
		t.Fatal(err)
	}
	data, err := r.Get(ctx, key)
	if err != nil || string(data) != "%PDF-1.3 F-4" {
		t.Errorf("Get = %q, %v", data, err)
	}
	r.Client.Del(ctx, r.Prefix+key)
	if _, err := r.Get(ctx, key); !errors.Is(err, ErrMiss) {
		t.Errorf("after delete: %v", err)
	}
}
