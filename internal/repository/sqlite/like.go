package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/minisocial/internal/apperror"
	"github.com/sakif/minisocial/internal/model"
)

// likeColumn maps a target kind to the column holding its id.
func likeColumn(target model.LikeTarget) (string, error) {
	switch target {
	case model.LikeTargetPost:
		return "post_id", nil
	case model.LikeTargetComment:
		return "comment_id", nil
	}
	return "", fmt.Errorf("sqlite: unknown like target %q", target)
}

// nullable stores "" as NULL so the per-kind UNIQUE constraints ignore it.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (db *DB) FindLike(ctx context.Context, userID string, target model.LikeTarget, targetID string) (*model.Like, error) {
	column, err := likeColumn(target)
	if err != nil {
		return nil, err
	}

	like := model.Like{UserID: userID, Target: target, TargetID: targetID}
	err = db.conn.QueryRowContext(ctx,
		`SELECT id, created_at FROM likes WHERE user_id = ? AND `+column+` = ?`,
		userID, targetID,
	).Scan(&like.ID, &like.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("like", targetID)
		}
		return nil, fmt.Errorf("sqlite: finding like on %s %s: %w", target, targetID, err)
	}
	return &like, nil
}

// CreateLike inserts a like. The (user, post) and (user, comment) UNIQUE
// constraints catch a duplicate that slipped past the caller's pre-check.
func (db *DB) CreateLike(ctx context.Context, like *model.Like) error {
	if _, err := likeColumn(like.Target); err != nil {
		return err
	}
	like.ID = xid.New().String()
	like.CreatedAt = time.Now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO likes (id, user_id, post_id, comment_id, created_at) VALUES (?, ?, ?, ?, ?)`,
		like.ID,
		like.UserID,
		nullable(like.PostID()),
		nullable(like.CommentID()),
		like.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.New(apperror.ErrAlreadyLiked, fmt.Sprintf("you already liked this %s", like.Target))
		}
		return fmt.Errorf("sqlite: creating like on %s %s: %w", like.Target, like.TargetID, err)
	}
	return nil
}

func (db *DB) DeleteLike(ctx context.Context, userID string, target model.LikeTarget, targetID string) error {
	column, err := likeColumn(target)
	if err != nil {
		return err
	}

	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM likes WHERE user_id = ? AND `+column+` = ?`,
		userID, targetID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting like on %s %s: %w", target, targetID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.New(apperror.ErrLikeNotFound, "like not found")
	}
	return nil
}
