package sqlite

import (
	"context"
	"fmt"
	"time"
)

// setSubscription upserts a user's subscription status.
func (s *Store) setSubscription(ctx context.Context, userID, status string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_subscriptions (user_id, status, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET status = excluded.status, updated_at = excluded.updated_at
	`, userID, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert user_subscriptions: %w", err)
	}
	return nil
}
