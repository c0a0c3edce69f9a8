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

// Posts are always read joined with their author so the summary can be
// populated without a second round trip.
const postSelect = `
	SELECT p.id, p.author_id, p.content, p.image, p.likes_count, p.comments_count,
	       p.created_at, p.updated_at,
	       u.username, u.first_name, u.last_name, u.bio, u.photo
	FROM posts p
	JOIN users u ON u.id = p.author_id`

func scanPost(row rowScanner) (*model.Post, error) {
	var (
		p      model.Post
		author model.UserSummary
	)
	err := row.Scan(
		&p.ID, &p.AuthorID, &p.Content, &p.Image, &p.LikesCount, &p.CommentsCount,
		&p.CreatedAt, &p.UpdatedAt,
		&author.Username,
		&author.Profile.FirstName, &author.Profile.LastName,
		&author.Profile.Bio, &author.Profile.Photo,
	)
	if err != nil {
		return nil, err
	}
	author.ID = p.AuthorID
	p.Author = &author
	return &p, nil
}

// CreatePost inserts a post with zeroed counters.
func (db *DB) CreatePost(ctx context.Context, post *model.Post) error {
	now := time.Now()
	post.ID = xid.New().String()
	post.CreatedAt = now
	post.UpdatedAt = now
	post.LikesCount = 0
	post.CommentsCount = 0

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO posts (id, author_id, content, image, likes_count, comments_count, created_at, updated_at)
		 VALUES (?, ?, ?, ?, 0, 0, ?, ?)`,
		post.ID,
		post.AuthorID,
		post.Content,
		post.Image,
		post.CreatedAt,
		post.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating post: %w", err)
	}
	return nil
}

func (db *DB) GetPostByID(ctx context.Context, id string) (*model.Post, error) {
	p, err := scanPost(db.conn.QueryRowContext(ctx, postSelect+` WHERE p.id = ?`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("post", id)
		}
		return nil, fmt.Errorf("sqlite: getting post %s: %w", id, err)
	}
	return p, nil
}

// ListPosts pages through posts newest first. xid IDs sort by creation
// time, so they break ties between identical timestamps.
func (db *DB) ListPosts(ctx context.Context, authorID string, page model.PageRequest) ([]model.Post, int, error) {
	where, args := "", []any{}
	if authorID != "" {
		where = ` WHERE p.author_id = ?`
		args = append(args, authorID)
	}

	var total int
	if err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM posts p`+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("sqlite: counting posts: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx,
		postSelect+where+` ORDER BY p.created_at DESC, p.id DESC LIMIT ? OFFSET ?`,
		append(args, page.Limit, page.Offset())...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite: listing posts: %w", err)
	}
	defer rows.Close()

	posts := make([]model.Post, 0, page.Limit)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("sqlite: scanning post row: %w", err)
		}
		posts = append(posts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("sqlite: iterating posts: %w", err)
	}
	return posts, total, nil
}

func (db *DB) UpdatePostContent(ctx context.Context, id, content string) (*model.Post, error) {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE posts SET content = ?, updated_at = ? WHERE id = ?`,
		content, time.Now(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: updating post %s: %w", id, err)
	}
	if err := expectOneRow(result, "post", id); err != nil {
		return nil, err
	}
	return db.GetPostByID(ctx, id)
}

// DeletePost removes only the post row; comments and likes stay.
func (db *DB) DeletePost(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting post %s: %w", id, err)
	}
	return expectOneRow(result, "post", id)
}

func (db *DB) IncrementPostLikes(ctx context.Context, id string, delta int) error {
	return db.bumpCounter(ctx, "posts", "likes_count", id, delta)
}

func (db *DB) IncrementPostComments(ctx context.Context, id string, delta int) error {
	return db.bumpCounter(ctx, "posts", "comments_count", id, delta)
}

// bumpCounter adds delta to a counter column in place. table and column
// are always compile-time constants from this package.
func (db *DB) bumpCounter(ctx context.Context, table, column, id string, delta int) error {
	result, err := db.conn.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET %s = %s + ? WHERE id = ?`, table, column, column),
		delta, id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: bumping %s.%s for %s: %w", table, column, id, err)
	}
	return expectOneRow(result, table[:len(table)-1], id)
}

// expectOneRow turns a zero RowsAffected into a NotFound.
func expectOneRow(result sql.Result, resource, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound(resource, id)
	}
	return nil
}
