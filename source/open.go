package source

import (
	"context"
	"fmt"
)

// Open connects to the database of the given type ("pgsql" or "mysql").
func Open(ctx context.Context, typ, dsn, table string) (Invoices, error) {
	switch typ {
	case "pgsql", "postgres":
		p, err := OpenPostgres(ctx, dsn, table)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "mysql":
		m, err := OpenMySQL(ctx, dsn, table)
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("source: unsupported database type %q", typ)
	}
}
