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

const userColumns = `id, username, email, password_hash, first_name, last_name, bio, photo, created_at, updated_at`

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.Profile.FirstName,
		&u.Profile.LastName,
		&u.Profile.Bio,
		&u.Profile.Photo,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a new user, generating its ID and timestamps.
// The UNIQUE constraints on username and email are the final word on
// duplicates; a violation comes back as a Conflict.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	now := time.Now()
	user.ID = xid.New().String()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Profile.FirstName,
		user.Profile.LastName,
		user.Profile.Bio,
		user.Profile.Photo,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user", "username or email already registered")
		}
		return fmt.Errorf("sqlite: inserting user %q: %w", user.Username, err)
	}
	return nil
}

// GetUserByID retrieves a user and both follow sets.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	u, err := scanUser(db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id,
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}

	if u.Following, err = db.edgeIDs(ctx,
		`SELECT target_id FROM user_following WHERE user_id = ? ORDER BY created_at`, id); err != nil {
		return nil, err
	}
	if u.Followers, err = db.edgeIDs(ctx,
		`SELECT follower_id FROM user_followers WHERE user_id = ? ORDER BY created_at`, id); err != nil {
		return nil, err
	}
	return u, nil
}

// GetUserByEmail is the login lookup. The follow sets are left empty.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := scanUser(db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email,
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", email)
		}
		return nil, fmt.Errorf("sqlite: getting user by email: %w", err)
	}
	return u, nil
}

func (db *DB) UserExists(ctx context.Context, username, email string) (bool, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE username = ? OR email = ?`,
		username, email,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking user existence: %w", err)
	}
	return count > 0, nil
}

// UpdateProfile overwrites first name, last name and bio, and the photo
// reference when profile.Photo is non-empty.
func (db *DB) UpdateProfile(ctx context.Context, id string, profile model.Profile) (*model.User, error) {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE users
		 SET first_name = ?, last_name = ?, bio = ?,
		     photo = CASE WHEN ? = '' THEN photo ELSE ? END,
		     updated_at = ?
		 WHERE id = ?`,
		profile.FirstName,
		profile.LastName,
		profile.Bio,
		profile.Photo, profile.Photo,
		time.Now(),
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: updating profile %s: %w", id, err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return nil, fmt.Errorf("sqlite: checking rows affected: %w", err)
	} else if n == 0 {
		return nil, apperror.NotFound("user", id)
	}
	return db.GetUserByID(ctx, id)
}

func (db *DB) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		hash, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating password for %s: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("user", id)
	}
	return nil
}

func (db *DB) GetUserSummaries(ctx context.Context, ids []string) ([]model.UserSummary, error) {
	if len(ids) == 0 {
		return []model.UserSummary{}, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, username, first_name, last_name, bio, photo
		 FROM users WHERE id IN (`+placeholders(len(ids))+`)`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: loading user summaries: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]model.UserSummary, len(ids))
	for rows.Next() {
		var s model.UserSummary
		if err := rows.Scan(&s.ID, &s.Username,
			&s.Profile.FirstName, &s.Profile.LastName, &s.Profile.Bio, &s.Profile.Photo,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning user summary: %w", err)
		}
		byID[s.ID] = s
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating user summaries: %w", err)
	}

	summaries := make([]model.UserSummary, 0, len(byID))
	for _, id := range ids {
		if s, ok := byID[id]; ok {
			summaries = append(summaries, s)
		}
	}
	return summaries, nil
}

// edgeIDs runs a single-column id query. The rows are fully drained before
// returning, which matters with a one-connection pool.
func (db *DB) edgeIDs(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing follow edges: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("sqlite: scanning follow edge: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating follow edges: %w", err)
	}
	return ids, nil
}
