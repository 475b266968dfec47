// Package source loads invoice records stored as JSON documents in a SQL
// table, one row per invoice with the document in a data_json column.
package source

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/edentir/edenpdf/record"
)

// ErrNotFound is returned when no invoice has the requested id.
var ErrNotFound = errors.New("source: record not found")

// DefaultTable is the table holding invoice documents.
const DefaultTable = "factures"

// Invoices looks up invoices by id.
type Invoices interface {
	Invoice(ctx context.Context, id int64) (*record.Invoice, error)
	Close() error
}

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func checkTable(name string) (string, error) {
	if name == "" {
		return DefaultTable, nil
	}
	if !identifier.MatchString(name) {
		return "", fmt.Errorf("source: invalid table name %q", name)
	}
	return name, nil
}

// decode turns a data_json value into an invoice. A NULL or empty document
// counts as missing.
func decode(id int64, data []byte) (*record.Invoice, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, fmt.Errorf("%w: invoice %d has no document", ErrNotFound, id)
	}
	inv, err := record.DecodeInvoice(data)
	if err != nil {
		return nil, fmt.Errorf("source: invoice %d: %w", id, err)
	}
	return inv, nil
}

// Static serves invoices from memory, keyed by id.
type Static map[int64][]byte

// Invoice implements Invoices.
func (s Static) Invoice(ctx context.Context, id int64) (*record.Invoice, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, ok := s[id]
	if !ok {
		return nil, fmt.Errorf("%w: invoice %d", ErrNotFound, id)
	}
	return decode(id, data)
}

// Close implements Invoices.
func (Static) Close() error { return nil }
