package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/supabase-community/postgrest-go"

	"github.com/kjfsoul/mystic-arcana-v3/internal/domain"
	"github.com/kjfsoul/mystic-arcana-v3/internal/ports"
)

const (
	tableReadings      = "user_readings"
	tableSubscriptions = "user_subscriptions"
)

type readingRow struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	CardID      string    `json:"card_id"`
	ReadingType string    `json:"reading_type"`
	IsReversed  bool      `json:"is_reversed"`
	CreatedAt   time.Time `json:"created_at"`
}

// ReadingRepository stores reading history in user_readings.
type ReadingRepository struct {
	client *Client
}

func NewReadingRepository(client *Client) *ReadingRepository {
	return &ReadingRepository{client: client}
}

func (r *ReadingRepository) SaveReading(ctx context.Context, rd ports.Reading) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	row := readingRow{
		ID:          rd.ID,
		UserID:      rd.UserID,
		CardID:      rd.CardID,
		ReadingType: string(rd.ReadingType),
		IsReversed:  rd.IsReversed,
		CreatedAt:   rd.CreatedAt.UTC(),
	}
	_, _, err := r.client.rest().From(tableReadings).Insert(row, false, "", "minimal", "").Execute()
	if err != nil {
		return fmt.Errorf("insert %s: %w", tableReadings, err)
	}
	return nil
}

func (r *ReadingRepository) ListReadings(ctx context.Context, userID string, limit int) ([]ports.Reading, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	body, _, err := r.client.rest().
		From(tableReadings).
		Select("*", "", false).
		Eq("user_id", userID).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		Limit(limit, "").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", tableReadings, err)
	}

	var rows []readingRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode %s: %w", tableReadings, err)
	}
	out := make([]ports.Reading, len(rows))
	for i, row := range rows {
		out[i] = ports.Reading{
			ID:          row.ID,
			UserID:      row.UserID,
			CardID:      row.CardID,
			ReadingType: domain.ReadingType(row.ReadingType),
			IsReversed:  row.IsReversed,
			CreatedAt:   row.CreatedAt,
		}
	}
	return out, nil
}

// SubscriptionRepository checks user_subscriptions for an active plan.
type SubscriptionRepository struct {
	client *Client
}

func NewSubscriptionRepository(client *Client) *SubscriptionRepository {
	return &SubscriptionRepository{client: client}
}

func (r *SubscriptionRepository) IsPremium(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	body, _, err := r.client.rest().
		From(tableSubscriptions).
		Select("status", "", false).
		Eq("user_id", userID).
		Eq("status", "active").
		Limit(1, "").
		Execute()
	if err != nil {
		return false, fmt.Errorf("select %s: %w", tableSubscriptions, err)
	}
	var rows []struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &rows); err != nil {
		return false, fmt.Errorf("decode %s: %w", tableSubscriptions, err)
	}
	return len(rows) > 0, nil
}
