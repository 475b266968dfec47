package source

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/edentir/edenpdf/record"
	"github.com/go-sql-driver/mysql"
)

// MySQL reads invoices from a MySQL or MariaDB table.
type MySQL struct {
	db    *sql.DB
	query string
}

// OpenMySQL opens dsn, forcing parseTime, and checks it with a ping.
func OpenMySQL(ctx context.Context, dsn, table string) (*MySQL, error) {
	table, err := checkTable(table)
	if err != nil {
		return nil, err
	}
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("source: parsing mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("source: mysql connector: %w", err)
	}
	db := sql.OpenDB(connector)
	db.SetConnMaxLifetime(3 * time.Minute)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("source: mysql ping failed: %w", err)
	}
	log.Println("[INFO] mysql invoice source initialized")
	return &MySQL{
		db:    db,
		query: fmt.Sprintf("SELECT data_json FROM `%s` WHERE id = ?", table),
	}, nil
}

// Invoice implements Invoices.
func (m *MySQL) Invoice(ctx context.Context, id int64) (*record.Invoice, error) {
	var data []byte
	err := m.db.QueryRowContext(ctx, m.query, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: invoice %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("source: querying invoice %d: %w", id, err)
	}
	return decode(id, data)
}

// Close closes the database handle.
func (m *MySQL) Close() error {
	log.Println("[INFO] closing mysql invoice source")
	return m.db.Close()
}
