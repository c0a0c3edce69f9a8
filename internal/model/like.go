package model

import "time"

// LikeTarget says which kind of record a like points at.
type LikeTarget string

const (
	LikeTargetPost    LikeTarget = "post"
	LikeTargetComment LikeTarget = "comment"
)

// Like is one user's like on exactly one post or exactly one comment.
// At most one like exists per (user, post) and per (user, comment).
type Like struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user"`
	Target    LikeTarget `json:"target"`
	TargetID  string     `json:"targetId"`
	CreatedAt time.Time  `json:"createdAt"`
}

// PostID returns the liked post, or "" for a comment like.
func (l *Like) PostID() string {
	if l.Target == LikeTargetPost {
		return l.TargetID
	}
	return ""
}

// CommentID returns the liked comment, or "" for a post like.
func (l *Like) CommentID() string {
	if l.Target == LikeTargetComment {
		return l.TargetID
	}
	return ""
}
