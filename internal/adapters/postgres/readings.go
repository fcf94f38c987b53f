package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kjfsoul/mystic-arcana-v3/internal/domain"
	"github.com/kjfsoul/mystic-arcana-v3/internal/ports"
)

// ReadingRepository persists history in user_readings and answers premium
// checks from user_subscriptions.
type ReadingRepository struct {
	pool *pgxpool.Pool
}

func NewReadingRepository(pool *pgxpool.Pool) *ReadingRepository {
	return &ReadingRepository{pool: pool}
}

func (r *ReadingRepository) SaveReading(ctx context.Context, rd ports.Reading) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO user_readings (id, user_id, card_id, reading_type, is_reversed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, rd.ID, rd.UserID, rd.CardID, string(rd.ReadingType), rd.IsReversed, rd.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert user_readings: %w", err)
	}
	return nil
}

func (r *ReadingRepository) ListReadings(ctx context.Context, userID string, limit int) ([]ports.Reading, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, card_id, reading_type, is_reversed, created_at
		FROM user_readings
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query user_readings: %w", err)
	}
	defer rows.Close()

	out := []ports.Reading{}
	for rows.Next() {
		rd, err := scanReading(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user_readings: %w", err)
		}
		out = append(out, rd)
	}
	return out, rows.Err()
}

func (r *ReadingRepository) IsPremium(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	var premium bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM user_subscriptions WHERE user_id = $1 AND status = 'active'
		)
	`, userID).Scan(&premium)
	if err != nil {
		return false, fmt.Errorf("query user_subscriptions: %w", err)
	}
	return premium, nil
}

func scanReading(row rowScanner) (ports.Reading, error) {
	var (
		rd      ports.Reading
		rt      string
		created time.Time
	)
	if err := row.Scan(&rd.ID, &rd.UserID, &rd.CardID, &rt, &rd.IsReversed, &created); err != nil {
		return ports.Reading{}, err
	}
	rd.ReadingType = domain.ReadingType(rt)
	rd.CreatedAt = created.UTC()
	return rd, nil
}

var (
	_ ports.ReadingStore        = (*ReadingRepository)(nil)
	_ ports.SubscriptionChecker = (*ReadingRepository)(nil)
)
