package app

import (
	"context"
	"fmt"
	"testing"

	"github.com/edentir/edenpdf/config"
)

func TestNew(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Parse([]byte(fmt.Sprintf(`{"templates_dir": %q, "output_dir": %q, "wrap_policy": "fixed"}`, dir, dir)))
	if err != nil {
		t.Fatal(err)
	}
	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()
	if a.Renderer == nil || a.Templates == nil || a.Sink == nil {
		t.Errorf("app = %+v", a)
	}
	if a.Invoices != nil || a.Cache != nil {
		t.Error("optional parts wired without configuration")
	}
	if a.Renderer.Config().Wrap.Name != "fixed" {
		t.Errorf("wrap = %s", a.Renderer.Config().Wrap.Name)
	}
}

func TestNewBadLogo(t *testing.T) {
	cfg, err := config.Parse([]byte(`{"logo": "/nonexistent/logo.png"}`))
	if err != nil {
		t.Fatal(err)
	}
	if a, err := New(context.Background(), cfg); err == nil || a != nil {
		t.Errorf("New = %v, %v", a, err)
	}
}

func TestNewFailsWithoutPanic(t *testing.T) {
	tests := []struct {
		name string
		cfg  *config.Config
	}{
		{"zero config", &config.Config{}},
		{"unknown wrap policy", &config.Config{WrapPolicy: "justified"}},
		{"unreachable sql", &config.Config{
			WrapPolicy: "adaptive",
			SQL:        &config.SQL{Type: "pgsql", DSN: "host=127.0.0.1 port=1 user=eden dbname=eden connect_timeout=1", Table: "factures"},
		}},
		{"unknown sql type", &config.Config{
			WrapPolicy: "adaptive",
			SQL:        &config.SQL{Type: "sqlite", DSN: "eden.db", Table: "factures"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := New(context.Background(), tt.cfg)
			if err == nil {
				t.Fatal("New succeeded")
			}
			if a != nil {
				t.Errorf("app = %+v, want nil on failure", a)
			}
		})
	}
}

func TestCloseNil(t *testing.T) {
	var a *App
	if err := a.Close(); err != nil {
		t.Errorf("Close = %v", err)
	}
}
