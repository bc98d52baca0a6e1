package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"marketpulse/internal/domain"
)

// StrengthHistoryStore implements domain.StrengthHistoryStore using PostgreSQL.
type StrengthHistoryStore struct {
	pool *pgxpool.Pool
}

// NewStrengthHistoryStore creates a store backed by the given connection pool.
func NewStrengthHistoryStore(pool *pgxpool.Pool) *StrengthHistoryStore {
	return &StrengthHistoryStore{pool: pool}
}

const strengthSelectCols = `id, cycle_id, symbol, ltp, total_volume, buy_volume,
	sell_volume, traded_volume, buy_percent, sell_percent, strength_percent,
	sentiment, source, observed_at`

func scanStrengthRows(rows pgx.Rows) ([]domain.StrengthRecord, error) {
	var records []domain.StrengthRecord
	for rows.Next() {
		var r domain.StrengthRecord
		if err := rows.Scan(
			&r.ID, &r.CycleID, &r.Symbol, &r.LTP,
			&r.TotalVolume, &r.BuyVolume, &r.SellVolume, &r.TradedVolume,
			&r.BuyPercent, &r.SellPercent, &r.StrengthPercent,
			&r.Sentiment, &r.Source, &r.ObservedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// InsertCycle persists every result of a refresh cycle using a pgx Batch.
func (s *StrengthHistoryStore) InsertCycle(ctx context.Context, cycle domain.StrengthCycle) error {
	if len(cycle.Results) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	const query = `
		INSERT INTO strength_history (
			cycle_id, symbol, ltp,
			total_volume, buy_volume, sell_volume, traded_volume,
			buy_percent, sell_percent, strength_percent,
			sentiment, source, observed_at
		) VALUES (
			$1, $2, $3,
			$4, $5, $6, $7,
			$8, $9, $10,
			$11, $12, $13
		)`

	for _, r := range cycle.Results {
		batch.Queue(query,
			cycle.CycleID, r.Symbol, r.LTP,
			r.TotalVolume, r.BuyVolume, r.SellVolume, r.TradedVolume,
			r.BuyPercent, r.SellPercent, r.StrengthPercent,
			string(r.Sentiment), string(r.Source), cycle.Timestamp,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := range cycle.Results {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("postgres: insert strength batch item %d: %w", i, err)
		}
	}
	return nil
}

// ListBySymbol returns the most recent observations for a symbol, newest first.
func (s *StrengthHistoryStore) ListBySymbol(ctx context.Context, symbol string, limit int) ([]domain.StrengthRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT ` + strengthSelectCols + `
		FROM strength_history
		WHERE symbol = $1
		ORDER BY observed_at DESC
		LIMIT $2`

	rows, err := s.pool.Query(ctx, query, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: list strength history: %w", err)
	}
	defer rows.Close()

	records, err := scanStrengthRows(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: scan strength history: %w", err)
	}
	return records, nil
}

// Compile-time interface check.
var _ domain.StrengthHistoryStore = (*StrengthHistoryStore)(nil)
