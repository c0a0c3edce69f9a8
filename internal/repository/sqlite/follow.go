package sqlite

import (
	"context"
	"fmt"
	"time"
)

// IsFollowing checks membership of targetID in userID's following set.
func (db *DB) IsFollowing(ctx context.Context, userID, targetID string) (bool, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM user_following WHERE user_id = ? AND target_id = ?`,
		userID, targetID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking follow %s -> %s: %w", userID, targetID, err)
	}
	return count > 0, nil
}

// AddFollowing inserts into userID's following set. Inserting an existing
// member is a no-op.
func (db *DB) AddFollowing(ctx context.Context, userID, targetID string) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO user_following (user_id, target_id, created_at) VALUES (?, ?, ?)`,
		userID, targetID, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: adding %s to following of %s: %w", targetID, userID, err)
	}
	return nil
}

// AddFollower inserts into userID's followers set. Idempotent.
func (db *DB) AddFollower(ctx context.Context, userID, followerID string) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO user_followers (user_id, follower_id, created_at) VALUES (?, ?, ?)`,
		userID, followerID, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: adding %s to followers of %s: %w", followerID, userID, err)
	}
	return nil
}

// RemoveFollowing deletes from userID's following set. Removing a
// non-member is a no-op.
func (db *DB) RemoveFollowing(ctx context.Context, userID, targetID string) error {
	_, err := db.conn.ExecContext(ctx,
		`DELETE FROM user_following WHERE user_id = ? AND target_id = ?`,
		userID, targetID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: removing %s from following of %s: %w", targetID, userID, err)
	}
	return nil
}

func (db *DB) RemoveFollower(ctx context.Context, userID, followerID string) error {
	_, err := db.conn.ExecContext(ctx,
		`DELETE FROM user_followers WHERE user_id = ? AND follower_id = ?`,
		userID, followerID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: removing %s from followers of %s: %w", followerID, userID, err)
	}
	return nil
}
