package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"divcap-lab/internal/domain"
	"divcap-lab/internal/storage"
)

// FillLog implements storage.FillLog using PostgreSQL.
type FillLog struct {
	pool *Pool
}

// NewFillLog creates a new FillLog.
func NewFillLog(pool *Pool) *FillLog {
	return &FillLog{pool: pool}
}

// Compile-time interface check.
var _ storage.FillLog = (*FillLog)(nil)

// Insert adds a fill. Returns ErrDuplicateKey if fill_id exists.
func (s *FillLog) Insert(ctx context.Context, f *domain.Fill) error {
	query := `
		INSERT INTO fills (
			fill_id, symbol, shares, avg_cost, price,
			open_date, close_date, reason, profit, synthetic
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9, $10
		)
	`

	_, err := s.pool.Exec(ctx, query,
		f.FillID, f.Symbol, f.Shares, f.AvgCost, f.Price,
		f.OpenDate, f.CloseDate, f.Reason, f.Profit, f.Synthetic,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert fill: %w", err)
	}
	return nil
}

// GetByID retrieves a fill by its ID. Returns ErrNotFound if not exists.
func (s *FillLog) GetByID(ctx context.Context, fillID string) (*domain.Fill, error) {
	query := `
		SELECT
			fill_id, symbol, shares, avg_cost, price,
			open_date, close_date, reason, profit, synthetic
		FROM fills
		WHERE fill_id = $1
	`

	row := s.pool.QueryRow(ctx, query, fillID)
	f, err := scanFill(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get fill by id: %w", err)
	}
	return f, nil
}

// GetBySymbol retrieves all fills for a symbol, ordered by close date ASC.
func (s *FillLog) GetBySymbol(ctx context.Context, symbol string) ([]*domain.Fill, error) {
	query := `
		SELECT
			fill_id, symbol, shares, avg_cost, price,
			open_date, close_date, reason, profit, synthetic
		FROM fills
		WHERE symbol = $1
		ORDER BY close_date ASC, seq ASC
	`

	rows, err := s.pool.Query(ctx, query, symbol)
	if err != nil {
		return nil, fmt.Errorf("get fills by symbol: %w", err)
	}
	defer rows.Close()

	return scanFills(rows)
}

// GetAll retrieves every fill, ordered by close date ASC.
func (s *FillLog) GetAll(ctx context.Context) ([]*domain.Fill, error) {
	query := `
		SELECT
			fill_id, symbol, shares, avg_cost, price,
			open_date, close_date, reason, profit, synthetic
		FROM fills
		ORDER BY close_date ASC, seq ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all fills: %w", err)
	}
	defer rows.Close()

	return scanFills(rows)
}

// scanFill scans a single row into a Fill.
func scanFill(row pgx.Row) (*domain.Fill, error) {
	var f domain.Fill

	err := row.Scan(
		&f.FillID, &f.Symbol, &f.Shares, &f.AvgCost, &f.Price,
		&f.OpenDate, &f.CloseDate, &f.Reason, &f.Profit, &f.Synthetic,
	)
	if err != nil {
		return nil, err
	}

	return &f, nil
}

// scanFills scans multiple rows into a slice of Fill.
func scanFills(rows pgx.Rows) ([]*domain.Fill, error) {
	var fills []*domain.Fill

	for rows.Next() {
		var f domain.Fill

		err := rows.Scan(
			&f.FillID, &f.Symbol, &f.Shares, &f.AvgCost, &f.Price,
			&f.OpenDate, &f.CloseDate, &f.Reason, &f.Profit, &f.Synthetic,
		)
		if err != nil {
			return nil, fmt.Errorf("scan fill row: %w", err)
		}

		fills = append(fills, &f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fill rows: %w", err)
	}

	return fills, nil
}
