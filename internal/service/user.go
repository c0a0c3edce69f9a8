package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/sakif/minisocial/internal/apperror"
	"github.com/sakif/minisocial/internal/auth"
	"github.com/sakif/minisocial/internal/model"
	"github.com/sakif/minisocial/internal/repository"
)

// UserService reads and edits profiles.
type UserService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	images    ImageStore
	logger    *slog.Logger
}

func NewUserService(
	users repository.UserRepository,
	passwords *auth.PasswordService,
	images ImageStore,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		users:     users,
		passwords: passwords,
		images:    images,
		logger:    logger,
	}
}

// ProfileInput is a partial update: nil fields keep their stored value.
type ProfileInput struct {
	FirstName *string
	LastName  *string
	Bio       *string
}

// GetProfile returns a user without the password hash, with both follow
// sets resolved to summaries.
func (s *UserService) GetProfile(ctx context.Context, id string) (*model.UserView, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, user)
}

func (s *UserService) view(ctx context.Context, user *model.User) (*model.UserView, error) {
	followers, err := s.users.GetUserSummaries(ctx, user.Followers)
	if err != nil {
		return nil, fmt.Errorf("service/user: loading followers of %s: %w", user.ID, err)
	}
	following, err := s.users.GetUserSummaries(ctx, user.Following)
	if err != nil {
		return nil, fmt.Errorf("service/user: loading following of %s: %w", user.ID, err)
	}

	u := *user
	u.PasswordHash = ""
	return &model.UserView{User: &u, Followers: followers, Following: following}, nil
}

// UpdateProfile applies the non-nil fields of in to actorID's profile.
// First and last name may be changed but not cleared.
func (s *UserService) UpdateProfile(ctx context.Context, actorID string, in ProfileInput) (*model.UserView, error) {
	current, err := s.users.GetUserByID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	profile := current.Profile
	profile.Photo = "" // keep the stored photo
	if in.FirstName != nil {
		if profile.FirstName, err = requireText("firstName", "first name", *in.FirstName, MaxNameLength); err != nil {
			return nil, err
		}
	}
	if in.LastName != nil {
		if profile.LastName, err = requireText("lastName", "last name", *in.LastName, MaxNameLength); err != nil {
			return nil, err
		}
	}
	if in.Bio != nil {
		if profile.Bio, err = optionalText("bio", "bio", *in.Bio, MaxBioLength); err != nil {
			return nil, err
		}
	}

	updated, err := s.users.UpdateProfile(ctx, actorID, profile)
	if err != nil {
		return nil, fmt.Errorf("service/user: updating profile %s: %w", actorID, err)
	}

	s.logger.Info("profile updated", slog.String("userID", actorID))
	return s.view(ctx, updated)
}

// ChangePassword is the explicit credential change. The new password is
// hashed through HashIfChanged, so reusing the current one is rejected.
func (s *UserService) ChangePassword(ctx context.Context, actorID, currentPassword, newPassword string) error {
	if err := validatePassword("newPassword", newPassword); err != nil {
		return err
	}

	user, err := s.users.GetUserByID(ctx, actorID)
	if err != nil {
		return err
	}
	if err := s.passwords.Verify(user.PasswordHash, currentPassword); err != nil {
		return apperror.Unauthorized(apperror.ErrInvalidCredential, "current password is incorrect")
	}

	hash, changed, err := s.passwords.HashIfChanged(newPassword, user.PasswordHash)
	if err != nil {
		return err
	}
	if !changed {
		return apperror.ValidationFailed("newPassword", "new password must differ from the current one")
	}

	if err := s.users.UpdatePasswordHash(ctx, actorID, hash); err != nil {
		return fmt.Errorf("service/user: storing password for %s: %w", actorID, err)
	}

	s.logger.Info("password changed", slog.String("userID", actorID))
	return nil
}

// SetAvatar stores an uploaded image and points the profile photo at it.
func (s *UserService) SetAvatar(ctx context.Context, actorID string, image io.Reader) (*model.UserView, error) {
	current, err := s.users.GetUserByID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	ref, err := s.images.SaveImage(image)
	if err != nil {
		return nil, err
	}

	profile := current.Profile
	profile.Photo = ref
	updated, err := s.users.UpdateProfile(ctx, actorID, profile)
	if err != nil {
		return nil, fmt.Errorf("service/user: setting avatar for %s: %w", actorID, err)
	}

	s.logger.Info("avatar updated", slog.String("userID", actorID), slog.String("photo", ref))
	return s.view(ctx, updated)
}
