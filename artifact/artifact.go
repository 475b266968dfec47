// Package artifact stores rendered documents: on disk for archiving and in
// Redis as a short-lived cache keyed by the record they were rendered from.
package artifact

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/edentir/edenpdf/render"
	"golang.org/x/crypto/blake2b"
)

// ErrMiss is returned by a cache lookup for an absent key.
var ErrMiss = errors.New("artifact: cache miss")

// Sink stores an artifact and returns where it went.
type Sink interface {
	Put(ctx context.Context, a *render.Artifact) (string, error)
}

// Cache is a sink that can also hand back what it stored.
type Cache interface {
	Sink
	Get(ctx context.Context, key string) ([]byte, error)
}

// Key derives the cache key of a document from its kind and record. Two
// renders of equal records share a key.
func Key(kind string, rec any) (string, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("artifact: hashing %s record: %w", kind, err)
	}
	h, _ := blake2b.New256(nil)
	h.Write([]byte(kind))
	h.Write([]byte{0})
	h.Write(data)
	return kind + ":" + hex.EncodeToString(h.Sum(nil)), nil
}

// Multi fans an artifact out to every sink in order and returns the
// locations joined by commas. It stops at the first failure.
type Multi []Sink

// Put implements Sink.
func (m Multi) Put(ctx context.Context, a *render.Artifact) (string, error) {
	var loc string
	for _, s := range m {
		l, err := s.Put(ctx, a)
		if err != nil {
			return "", err
		}
		if loc != "" {
			loc += ","
		}
		loc += l
	}
	return loc, nil
}

// Discard drops every artifact.
type Discard struct{}

// Put implements Sink.
func (Discard) Put(context.Context, *render.Artifact) (string, error) { return "", nil }
