package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/sakif/minisocial/internal/apperror"
	"github.com/sakif/minisocial/internal/content"
	"github.com/sakif/minisocial/internal/model"
	"github.com/sakif/minisocial/internal/repository"
)

// PostService handles posts. Only the author may edit or delete a post.
type PostService struct {
	users  repository.UserRepository
	posts  repository.PostRepository
	images ImageStore
	logger *slog.Logger
}

func NewPostService(users repository.UserRepository, posts repository.PostRepository, images ImageStore, logger *slog.Logger) *PostService {
	return &PostService{users: users, posts: posts, images: images, logger: logger}
}

// Create validates content, stores the optional image and saves the post.
// image may be nil.
func (s *PostService) Create(ctx context.Context, actorID, text string, image io.Reader) (*model.Post, error) {
	text, err := requireText("content", "content", text, MaxPostLength)
	if err != nil {
		return nil, err
	}

	post := &model.Post{AuthorID: actorID, Content: text}
	if image != nil {
		if post.Image, err = s.images.SaveImage(image); err != nil {
			return nil, err
		}
	}

	if err := s.posts.CreatePost(ctx, post); err != nil {
		s.logger.Error("failed to create post",
			slog.String("userID", actorID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/post: creating post: %w", err)
	}

	s.logger.Info("post created",
		slog.String("postID", post.ID),
		slog.String("userID", actorID),
	)

	// re-read for the author summary
	return s.Get(ctx, post.ID)
}

func (s *PostService) Get(ctx context.Context, id string) (*model.Post, error) {
	post, err := s.posts.GetPostByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return renderPost(post), nil
}

// List pages through every post, newest first.
func (s *PostService) List(ctx context.Context, page model.PageRequest) (*model.PostPage, error) {
	return s.list(ctx, "", page)
}

// ListByUser pages through one user's posts. An unknown user is NotFound.
func (s *PostService) ListByUser(ctx context.Context, userID string, page model.PageRequest) (*model.PostPage, error) {
	if _, err := s.users.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.list(ctx, userID, page)
}

func (s *PostService) list(ctx context.Context, authorID string, page model.PageRequest) (*model.PostPage, error) {
	posts, total, err := s.posts.ListPosts(ctx, authorID, page)
	if err != nil {
		return nil, fmt.Errorf("service/post: listing posts: %w", err)
	}
	for i := range posts {
		renderPost(&posts[i])
	}
	return &model.PostPage{
		Posts:       posts,
		CurrentPage: page.Page,
		TotalPages:  page.TotalPages(total),
		TotalPosts:  total,
	}, nil
}

// Update replaces the content of the actor's own post. Content that is
// empty after cleaning keeps the previous content.
func (s *PostService) Update(ctx context.Context, actorID, id, text string) (*model.Post, error) {
	post, err := s.owned(ctx, actorID, id, "update")
	if err != nil {
		return nil, err
	}

	text = content.Clean(text)
	if text == "" {
		return renderPost(post), nil
	}
	if text, err = requireText("content", "content", text, MaxPostLength); err != nil {
		return nil, err
	}

	updated, err := s.posts.UpdatePostContent(ctx, id, text)
	if err != nil {
		return nil, fmt.Errorf("service/post: updating post %s: %w", id, err)
	}
	return renderPost(updated), nil
}

// Delete removes the actor's own post. Its comments and likes are left in
// place.
func (s *PostService) Delete(ctx context.Context, actorID, id string) error {
	if _, err := s.owned(ctx, actorID, id, "delete"); err != nil {
		return err
	}
	if err := s.posts.DeletePost(ctx, id); err != nil {
		return fmt.Errorf("service/post: deleting post %s: %w", id, err)
	}

	s.logger.Info("post deleted",
		slog.String("postID", id),
		slog.String("userID", actorID),
	)
	return nil
}

func (s *PostService) owned(ctx context.Context, actorID, id, verb string) (*model.Post, error) {
	post, err := s.posts.GetPostByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != actorID {
		return nil, apperror.Forbidden(fmt.Sprintf("you can only %s your own posts", verb))
	}
	return post, nil
}
