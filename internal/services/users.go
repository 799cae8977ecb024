package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/vidtube/backend/internal/apperr"
	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/media"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
	"github.com/vidtube/backend/internal/validation"
)

// RegisterInput is the payload of an account registration. Paths point at local temp files.
type RegisterInput struct {
	FullName   string `json:"fullName" validate:"notblank,max=100"`
	Email      string `json:"email" validate:"required,email,max=254"`
	Username   string `json:"username" validate:"notblank,min=3,max=30"`
	Password   string `json:"password" validate:"required,min=8,max=72"`
	AvatarPath string `json:"avatar" validate:"required"`
	CoverPath  string `json:"coverImage"`
}

// LoginInput identifies the account by username or email.
type LoginInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password" validate:"required"`
}

// ChangePasswordInput is the payload of a password change.
type ChangePasswordInput struct {
	OldPassword     string `json:"oldPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=72"`
	ConfirmPassword string `json:"confirmPassword" validate:"eqfield=NewPassword"`
}

// UpdateAccountInput changes profile details. Empty fields are left unchanged.
type UpdateAccountInput struct {
	FullName   string `json:"fullName" validate:"omitempty,max=100"`
	Email      string `json:"email" validate:"omitempty,email,max=254"`
	AvatarPath string `json:"avatar"`
	CoverPath  string `json:"coverImage"`
}

func (in UpdateAccountInput) empty() bool {
	return in.FullName == "" && in.Email == "" && in.AvatarPath == "" && in.CoverPath == ""
}

// UserService manages accounts and sessions.
type UserService struct {
	users  repositories.UserRepository
	tokens TokenManager
	media  media.Delegate
	clock
}

// NewUserService constructs a UserService.
func NewUserService(users repositories.UserRepository, tokens TokenManager, delegate media.Delegate) *UserService {
	return &UserService{users: users, tokens: tokens, media: delegate}
}

// Register creates an account after uploading its avatar (and optional cover image).
// Uploaded media is deleted again when the account cannot be stored.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Username = strings.ToLower(strings.TrimSpace(in.Username))
	if err := validation.Struct(in); err != nil {
		return models.User{}, err
	}

	_, err := s.users.FindByUsernameOrEmail(ctx, in.Username, in.Email)
	switch {
	case err == nil:
		return models.User{}, apperr.Conflict("user with email or username already exists")
	case !errors.Is(err, repositories.ErrNotFound):
		return models.User{}, apperr.Internal("failed to check existing users", err)
	}

	paths := []string{in.AvatarPath}
	if in.CoverPath != "" {
		paths = append(paths, in.CoverPath)
	}
	assets, err := media.UploadAll(ctx, s.media, paths...)
	if err != nil {
		return models.User{}, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		media.Compensate(ctx, s.media, assets...)
		return models.User{}, apperr.Internal("failed to register user", err)
	}

	now := s.timestamp()
	user := models.User{
		ID:           newID(),
		Username:     in.Username,
		Email:        in.Email,
		FullName:     in.FullName,
		Avatar:       assets[0].URL,
		AvatarRef:    assets[0].Ref,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if len(assets) > 1 {
		user.CoverImage = assets[1].URL
		user.CoverImageRef = assets[1].Ref
	}

	if err := s.users.Create(ctx, user); err != nil {
		media.Compensate(ctx, s.media, assets...)
		return models.User{}, writeError(err, "user with email or username already exists", "register user")
	}

	logging.FromContext(ctx).Info("user registered", zap.String("user_id", user.ID))
	return user, nil
}

// Login verifies credentials and issues a new session, replacing any previous one.
func (s *UserService) Login(ctx context.Context, in LoginInput) (models.User, models.SessionTokens, error) {
	username := strings.ToLower(strings.TrimSpace(in.Username))
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if username == "" && email == "" {
		return models.User{}, models.SessionTokens{}, apperr.Validation("username or email is required")
	}
	if err := validation.Struct(in); err != nil {
		return models.User{}, models.SessionTokens{}, err
	}

	user, err := s.users.FindByUsernameOrEmail(ctx, username, email)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.User{}, models.SessionTokens{}, apperr.Validation("user does not exist")
	}
	if err != nil {
		return models.User{}, models.SessionTokens{}, apperr.Internal("failed to load user", err)
	}

	if !auth.VerifyPassword(user.PasswordHash, in.Password) {
		return models.User{}, models.SessionTokens{}, apperr.Validation("invalid user credentials")
	}

	tokens, err := s.tokens.Issue(ctx, user)
	if err != nil {
		return models.User{}, models.SessionTokens{}, apperr.Internal("failed to issue session", err)
	}
	user.RefreshToken = tokens.RefreshToken
	return user, tokens, nil
}

// Logout clears the stored refresh token.
func (s *UserService) Logout(ctx context.Context, userID string) error {
	if err := s.tokens.Revoke(ctx, userID); err != nil {
		return apperr.Internal("failed to log out", err)
	}
	return nil
}

// Refresh rotates the session identified by refreshToken.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (models.User, models.SessionTokens, error) {
	user, tokens, err := s.tokens.Refresh(ctx, strings.TrimSpace(refreshToken))
	if err != nil {
		if apperr.KindOf(err) == apperr.KindInternal {
			return models.User{}, models.SessionTokens{}, apperr.Internal("failed to refresh session", err)
		}
		return models.User{}, models.SessionTokens{}, err
	}
	return user, tokens, nil
}

// ChangePassword replaces the password after checking the current one.
func (s *UserService) ChangePassword(ctx context.Context, userID string, in ChangePasswordInput) error {
	if err := validation.Struct(in); err != nil {
		return err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return loadError(err, "user not found")
	}
	if !auth.VerifyPassword(user.PasswordHash, in.OldPassword) {
		return apperr.Validation("invalid old password")
	}
	if in.NewPassword == in.OldPassword {
		return apperr.Validation("new password must differ from the old password")
	}

	hash, err := auth.HashPassword(in.NewPassword)
	if err != nil {
		return apperr.Internal("failed to change password", err)
	}
	user.PasswordHash = hash
	user.UpdatedAt = s.timestamp()

	if err := s.users.Update(ctx, user); err != nil {
		return writeError(err, "user conflict", "change password")
	}
	return nil
}

// Me returns the account of the authenticated user.
func (s *UserService) Me(ctx context.Context, userID string) (models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return models.User{}, loadError(err, "user not found")
	}
	return user, nil
}

// UpdateAccount edits profile fields and replaces avatar or cover image. New media is uploaded
// before the record changes; the replaced media is deleted afterwards.
func (s *UserService) UpdateAccount(ctx context.Context, userID string, in UpdateAccountInput) (models.User, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.empty() {
		return models.User{}, apperr.Validation("at least one field is required")
	}
	if err := validation.Struct(in); err != nil {
		return models.User{}, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return models.User{}, loadError(err, "user not found")
	}

	var paths []string
	if in.AvatarPath != "" {
		paths = append(paths, in.AvatarPath)
	}
	if in.CoverPath != "" {
		paths = append(paths, in.CoverPath)
	}
	assets, err := media.UploadAll(ctx, s.media, paths...)
	if err != nil {
		return models.User{}, err
	}

	var replaced []string
	next := 0
	if in.AvatarPath != "" {
		replaced = append(replaced, user.AvatarRef)
		user.Avatar, user.AvatarRef = assets[next].URL, assets[next].Ref
		next++
	}
	if in.CoverPath != "" {
		replaced = append(replaced, user.CoverImageRef)
		user.CoverImage, user.CoverImageRef = assets[next].URL, assets[next].Ref
	}
	if in.FullName != "" {
		user.FullName = in.FullName
	}
	if in.Email != "" {
		user.Email = in.Email
	}
	user.UpdatedAt = s.timestamp()

	if err := s.users.Update(ctx, user); err != nil {
		media.Compensate(ctx, s.media, assets...)
		return models.User{}, writeError(err, "email is already in use", "update account")
	}

	dropAssets(ctx, s.media, replaced...)
	return user, nil
}
