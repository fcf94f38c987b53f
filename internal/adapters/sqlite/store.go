// Package sqlite keeps reading history in a local SQLite file for
// deployments without Supabase.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kjfsoul/mystic-arcana-v3/internal/domain"
	"github.com/kjfsoul/mystic-arcana-v3/internal/ports"
)

type Store struct {
	db *sql.DB
}

// Open migrates the database at path and opens it.
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	if err := Migrate(path); err != nil {
		return nil, err
	}

	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_time_format=sqlite"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		return nil, errors.Join(fmt.Errorf("ping sqlite: %w", err), db.Close())
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) SaveReading(ctx context.Context, rd ports.Reading) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_readings (id, user_id, card_id, reading_type, is_reversed, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rd.ID, rd.UserID, rd.CardID, string(rd.ReadingType), rd.IsReversed, rd.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert user_readings: %w", err)
	}
	return nil
}

func (s *Store) ListReadings(ctx context.Context, userID string, limit int) ([]ports.Reading, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, card_id, reading_type, is_reversed, created_at
		FROM user_readings
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query user_readings: %w", err)
	}
	defer rows.Close()

	out := []ports.Reading{}
	for rows.Next() {
		var (
			rd      ports.Reading
			rt      string
			created time.Time
		)
		if err := rows.Scan(&rd.ID, &rd.UserID, &rd.CardID, &rt, &rd.IsReversed, &created); err != nil {
			return nil, fmt.Errorf("scan user_readings: %w", err)
		}
		rd.ReadingType = domain.ReadingType(rt)
		rd.CreatedAt = created.UTC()
		out = append(out, rd)
	}
	return out, rows.Err()
}

func (s *Store) IsPremium(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	var status string
	err := s.db.QueryRowContext(ctx,
		`SELECT status FROM user_subscriptions WHERE user_id = ?`, userID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query user_subscriptions: %w", err)
	}
	return status == "active", nil
}

var (
	_ ports.ReadingStore        = (*Store)(nil)
	_ ports.SubscriptionChecker = (*Store)(nil)
)
