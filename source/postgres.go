package source

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/edentir/edenpdf/record"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres reads invoices from PostgreSQL, e.g. a Supabase project.
type Postgres struct {
	pool  *pgxpool.Pool
	query string
}

// OpenPostgres connects a pool to dsn and checks it with a ping.
func OpenPostgres(ctx context.Context, dsn, table string) (*Postgres, error) {
	table, err := checkTable(table)
	if err != nil {
		return nil, err
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("source: parsing pgx config: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 1
	cfg.MaxConnLifetime = 3 * time.Minute

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("source: connecting to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("source: postgres ping failed: %w", err)
	}
	log.Print("[INFO] postgres invoice source initialized")
	return &Postgres{
		pool:  pool,
		query: fmt.Sprintf("SELECT data_json FROM %s WHERE id = $1", pgx.Identifier{table}.Sanitize()),
	}, nil
}

// Invoice implements Invoices.
func (p *Postgres) Invoice(ctx context.Context, id int64) (*record.Invoice, error) {
	var data []byte
	err := p.pool.QueryRow(ctx, p.query, id).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: invoice %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("source: querying invoice %d: %w", id, err)
	}
	return decode(id, data)
}

// Close releases the pool.
func (p *Postgres) Close() error {
	p.pool.Close()
	log.Print("[INFO] postgres invoice source closed")
	return nil
}
