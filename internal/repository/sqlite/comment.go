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

const commentSelect = `
	SELECT c.id, c.post_id, c.author_id, c.content, c.likes_count, c.created_at, c.updated_at,
	       u.username, u.first_name, u.last_name, u.bio, u.photo
	FROM comments c
	JOIN users u ON u.id = c.author_id`

func scanComment(row rowScanner) (*model.Comment, error) {
	var (
		c      model.Comment
		author model.UserSummary
	)
	err := row.Scan(
		&c.ID, &c.PostID, &c.AuthorID, &c.Content, &c.LikesCount, &c.CreatedAt, &c.UpdatedAt,
		&author.Username,
		&author.Profile.FirstName, &author.Profile.LastName,
		&author.Profile.Bio, &author.Profile.Photo,
	)
	if err != nil {
		return nil, err
	}
	author.ID = c.AuthorID
	c.Author = &author
	return &c, nil
}

func (db *DB) CreateComment(ctx context.Context, comment *model.Comment) error {
	now := time.Now()
	comment.ID = xid.New().String()
	comment.CreatedAt = now
	comment.UpdatedAt = now
	comment.LikesCount = 0

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO comments (id, post_id, author_id, content, likes_count, created_at, updated_at)
		 VALUES (?, ?, ?, ?, 0, ?, ?)`,
		comment.ID,
		comment.PostID,
		comment.AuthorID,
		comment.Content,
		comment.CreatedAt,
		comment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating comment on %s: %w", comment.PostID, err)
	}
	return nil
}

func (db *DB) GetCommentByID(ctx context.Context, id string) (*model.Comment, error) {
	c, err := scanComment(db.conn.QueryRowContext(ctx, commentSelect+` WHERE c.id = ?`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("comment", id)
		}
		return nil, fmt.Errorf("sqlite: getting comment %s: %w", id, err)
	}
	return c, nil
}

func (db *DB) ListComments(ctx context.Context, postID string, page model.PageRequest) ([]model.Comment, int, error) {
	var total int
	if err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM comments WHERE post_id = ?`, postID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("sqlite: counting comments: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx,
		commentSelect+` WHERE c.post_id = ? ORDER BY c.created_at DESC, c.id DESC LIMIT ? OFFSET ?`,
		postID, page.Limit, page.Offset(),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite: listing comments: %w", err)
	}
	defer rows.Close()

	comments := make([]model.Comment, 0, page.Limit)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("sqlite: scanning comment row: %w", err)
		}
		comments = append(comments, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("sqlite: iterating comments: %w", err)
	}
	return comments, total, nil
}

func (db *DB) UpdateCommentContent(ctx context.Context, id, content string) (*model.Comment, error) {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE comments SET content = ?, updated_at = ? WHERE id = ?`,
		content, time.Now(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: updating comment %s: %w", id, err)
	}
	if err := expectOneRow(result, "comment", id); err != nil {
		return nil, err
	}
	return db.GetCommentByID(ctx, id)
}

func (db *DB) DeleteComment(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting comment %s: %w", id, err)
	}
	return expectOneRow(result, "comment", id)
}

func (db *DB) IncrementCommentLikes(ctx context.Context, id string, delta int) error {
	return db.bumpCounter(ctx, "comments", "likes_count", id, delta)
}
