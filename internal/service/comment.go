package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/minisocial/internal/apperror"
	"github.com/sakif/minisocial/internal/model"
	"github.com/sakif/minisocial/internal/repository"
)

// CommentService handles comments and keeps the parent post's
// commentsCount in step: +1 after a create, -1 after a delete.
type CommentService struct {
	posts    repository.PostRepository
	comments repository.CommentRepository
	logger   *slog.Logger
}

func NewCommentService(posts repository.PostRepository, comments repository.CommentRepository, logger *slog.Logger) *CommentService {
	return &CommentService{posts: posts, comments: comments, logger: logger}
}

func (s *CommentService) Create(ctx context.Context, actorID, postID, text string) (*model.Comment, error) {
	text, err := requireText("content", "content", text, MaxCommentLength)
	if err != nil {
		return nil, err
	}
	if _, err := s.posts.GetPostByID(ctx, postID); err != nil {
		return nil, err
	}

	comment := &model.Comment{PostID: postID, AuthorID: actorID, Content: text}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("service/comment: creating comment: %w", err)
	}
	if err := s.posts.IncrementPostComments(ctx, postID, 1); err != nil {
		return nil, fmt.Errorf("service/comment: bumping comments on %s: %w", postID, err)
	}

	s.logger.Info("comment created",
		slog.String("commentID", comment.ID),
		slog.String("postID", postID),
		slog.String("userID", actorID),
	)

	created, err := s.comments.GetCommentByID(ctx, comment.ID)
	if err != nil {
		return nil, err
	}
	return renderComment(created), nil
}

// List pages through a post's comments, newest first.
func (s *CommentService) List(ctx context.Context, postID string, page model.PageRequest) (*model.CommentPage, error) {
	if _, err := s.posts.GetPostByID(ctx, postID); err != nil {
		return nil, err
	}

	comments, total, err := s.comments.ListComments(ctx, postID, page)
	if err != nil {
		return nil, fmt.Errorf("service/comment: listing comments: %w", err)
	}
	for i := range comments {
		renderComment(&comments[i])
	}
	return &model.CommentPage{
		Comments:      comments,
		CurrentPage:   page.Page,
		TotalPages:    page.TotalPages(total),
		TotalComments: total,
	}, nil
}

func (s *CommentService) Update(ctx context.Context, actorID, id, text string) (*model.Comment, error) {
	if _, err := s.owned(ctx, actorID, id, "update"); err != nil {
		return nil, err
	}
	text, err := requireText("content", "content", text, MaxCommentLength)
	if err != nil {
		return nil, err
	}

	updated, err := s.comments.UpdateCommentContent(ctx, id, text)
	if err != nil {
		return nil, fmt.Errorf("service/comment: updating comment %s: %w", id, err)
	}
	return renderComment(updated), nil
}

// Delete removes the actor's own comment. If the parent post is already
// gone there is no counter left to decrement.
func (s *CommentService) Delete(ctx context.Context, actorID, id string) error {
	comment, err := s.owned(ctx, actorID, id, "delete")
	if err != nil {
		return err
	}
	if err := s.comments.DeleteComment(ctx, id); err != nil {
		return fmt.Errorf("service/comment: deleting comment %s: %w", id, err)
	}

	err = s.posts.IncrementPostComments(ctx, comment.PostID, -1)
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		s.logger.Debug("comment deleted from a deleted post", slog.String("postID", comment.PostID))
	case err != nil:
		return fmt.Errorf("service/comment: bumping comments on %s: %w", comment.PostID, err)
	}

	s.logger.Info("comment deleted",
		slog.String("commentID", id),
		slog.String("userID", actorID),
	)
	return nil
}

func (s *CommentService) owned(ctx context.Context, actorID, id, verb string) (*model.Comment, error) {
	comment, err := s.comments.GetCommentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment.AuthorID != actorID {
		return nil, apperror.Forbidden(fmt.Sprintf("you can only %s your own comments", verb))
	}
	return comment, nil
}
