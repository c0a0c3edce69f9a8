package model

import "math"

// PageRequest is a 1-indexed page of a list endpoint.
type PageRequest struct {
	Page  int
	Limit int
}

// Offset is the number of records to skip for this page. It saturates at
// math.MaxInt instead of wrapping negative.
func (p PageRequest) Offset() int {
	if p.Page <= 1 || p.Limit <= 0 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.Limit {
		return math.MaxInt
	}
	return (p.Page - 1) * p.Limit
}

// TotalPages rounds total/limit up.
func (p PageRequest) TotalPages(total int) int {
	if p.Limit <= 0 {
		return 0
	}
	return (total + p.Limit - 1) / p.Limit
}

// PostPage is one page of posts plus the pagination metadata.
type PostPage struct {
	Posts       []Post `json:"posts"`
	CurrentPage int    `json:"currentPage"`
	TotalPages  int    `json:"totalPages"`
	TotalPosts  int    `json:"totalPosts"`
}

// CommentPage is one page of comments plus the pagination metadata.
type CommentPage struct {
	Comments      []Comment `json:"comments"`
	CurrentPage   int       `json:"currentPage"`
	TotalPages    int       `json:"totalPages"`
	TotalComments int       `json:"totalComments"`
}
