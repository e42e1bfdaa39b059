package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"option-pricer/internal/errors"
	"option-pricer/internal/models"
)

// SQLiteStore implements ContractStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based contract store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS contracts (
		id TEXT PRIMARY KEY,
		symbol TEXT NOT NULL,
		option_type TEXT NOT NULL,
		side TEXT NOT NULL,
		strike REAL NOT NULL,
		spot REAL NOT NULL,
		premium REAL NOT NULL,
		quantity INTEGER NOT NULL,
		days_to_expiry INTEGER NOT NULL,
		sigma REAL NOT NULL,
		rate REAL NOT NULL,
		delta REAL NOT NULL,
		gamma REAL NOT NULL,
		theta REAL NOT NULL,
		vega REAL NOT NULL,
		created_at DATETIME NOT NULL,
		expires_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_contracts_symbol ON contracts(symbol);
	CREATE INDEX IF NOT EXISTS idx_contracts_created ON contracts(created_at);
	CREATE INDEX IF NOT EXISTS idx_contracts_expires ON contracts(expires_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const contractColumns = `id, symbol, option_type, side, strike, spot, premium, quantity, days_to_expiry,
	sigma, rate, delta, gamma, theta, vega, created_at`

// SaveContract stores a contract snapshot.
func (s *SQLiteStore) SaveContract(ctx context.Context, c *models.Contract) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO contracts (`+contractColumns+`, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.Symbol, c.Type, c.Side, c.Strike, c.Spot, c.Premium, c.Quantity, c.DaysToExpiry,
		c.Sigma, c.Rate, c.Greeks.Delta, c.Greeks.Gamma, c.Greeks.Theta, c.Greeks.Vega,
		c.CreatedAt.UTC(), c.ExpiresAt().UTC())
	if err != nil {
		return fmt.Errorf("failed to save contract: %w: %v", errors.ErrDatabaseError, err)
	}
	return nil
}

// GetContract retrieves a contract by ID.
func (s *SQLiteStore) GetContract(ctx context.Context, id string) (*models.Contract, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+contractColumns+` FROM contracts WHERE id = ?`, id)

	c, err := scanContract(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewDataError("contract", id, "not found", errors.ErrDataNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contract: %w", err)
	}
	return c, nil
}

// GetContracts retrieves contracts, newest first.
func (s *SQLiteStore) GetContracts(ctx context.Context, filter ContractFilter) ([]models.Contract, error) {
	query := "SELECT " + contractColumns + " FROM contracts WHERE 1=1"
	args := []interface{}{}

	if filter.Symbol != "" {
		query += " AND symbol = ?"
		args = append(args, models.NormalizeSymbol(filter.Symbol))
	}
	if filter.Side != "" {
		query += " AND side = ?"
		args = append(args, filter.Side)
	}
	if filter.Type != "" {
		query += " AND option_type = ?"
		args = append(args, filter.Type)
	}
	if !filter.Since.IsZero() {
		query += " AND created_at >= ?"
		args = append(args, filter.Since.UTC())
	}

	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query contracts: %w", err)
	}
	defer rows.Close()

	var contracts []models.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contract: %w", err)
		}
		contracts = append(contracts, *c)
	}

	return contracts, rows.Err()
}

// DeleteExpired removes contracts whose expiry is before asOf.
func (s *SQLiteStore) DeleteExpired(ctx context.Context, asOf time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM contracts WHERE expires_at < ?`, asOf.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired contracts: %w", err)
	}
	return result.RowsAffected()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanContract(row scanner) (*models.Contract, error) {
	var c models.Contract
	err := row.Scan(&c.ID, &c.Symbol, &c.Type, &c.Side, &c.Strike, &c.Spot, &c.Premium, &c.Quantity,
		&c.DaysToExpiry, &c.Sigma, &c.Rate, &c.Greeks.Delta, &c.Greeks.Gamma, &c.Greeks.Theta,
		&c.Greeks.Vega, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	c.Greeks.Price = c.Premium
	return &c, nil
}
