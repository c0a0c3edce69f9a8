package model

import "time"

// Post is a status update owned by its author.
//
// LikesCount and CommentsCount are denormalised counters. They are bumped
// by exactly one after the Like/Comment write succeeds and are never
// recomputed, so a failure between the two writes can leave them off by one.
type Post struct {
	ID            string       `json:"id"`
	AuthorID      string       `json:"-"`
	Author        *UserSummary `json:"author,omitempty"`
	Content       string       `json:"content"`
	ContentHTML   string       `json:"contentHtml,omitempty"`
	Image         string       `json:"image"` // upload reference, empty when the post has none
	LikesCount    int          `json:"likesCount"`
	CommentsCount int          `json:"commentsCount"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}
