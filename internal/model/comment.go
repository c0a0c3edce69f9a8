package model

import "time"

// Comment belongs to one post and one author.
type Comment struct {
	ID          string       `json:"id"`
	PostID      string       `json:"post"`
	AuthorID    string       `json:"-"`
	Author      *UserSummary `json:"author,omitempty"`
	Content     string       `json:"content"`
	ContentHTML string       `json:"contentHtml,omitempty"`
	LikesCount  int          `json:"likesCount"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}
