package artifact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/edentir/edenpdf/render"
)

// Dir writes artifacts under Root, one subdirectory per kind. A file is
// written to a temporary name first and renamed, so readers never see a
// partial document.
type Dir struct {
	Root string
}

// Put implements Sink.
func (d Dir) Put(ctx context.Context, a *render.Artifact) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if a == nil || a.Filename == "" || filepath.Base(a.Filename) != a.Filename {
		return "", fmt.Errorf("artifact: refusing to store %v", a)
	}
	dir := filepath.Join(d.Root, a.Kind)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("artifact: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return "", fmt.Errorf("artifact: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(a.Data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("artifact: writing %s: %w", a.Filename, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("artifact: writing %s: %w", a.Filename, err)
	}
	path := filepath.Join(dir, a.Filename)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("artifact: %w", err)
	}
	return path, nil
}
