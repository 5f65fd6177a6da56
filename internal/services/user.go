package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/adverto/adboard-backend/internal/data/repos"
	types "github.com/adverto/adboard-backend/internal/domain"
	"github.com/adverto/adboard-backend/internal/domain/aggregates"
	"github.com/adverto/adboard-backend/internal/platform/gcs"
	"github.com/adverto/adboard-backend/internal/platform/logger"
)

type UpdateProfileInput struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Phone     *string `json:"phone,omitempty"`
}

type UserService interface {
	GetProfile(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*types.User, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error
	UploadAvatar(ctx context.Context, userID uuid.UUID, contentType string, file io.Reader) (*types.User, error)

	// Admin surface.
	SetUserStatus(ctx context.Context, adminID, userID uuid.UUID, status string) (*types.User, error)
}

type userService struct {
	db       *gorm.DB
	log      *logger.Logger
	userRepo repos.UserRepo
	bucket   gcs.BucketService
}

func NewUserService(db *gorm.DB, baseLog *logger.Logger, userRepo repos.UserRepo, bucket gcs.BucketService) UserService {
	return &userService{
		db:       db,
		log:      baseLog.With("service", "UserService"),
		userRepo: userRepo,
		bucket:   bucket,
	}
}

func (s *userService) GetProfile(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.User, error) {
	const op = "UserService.GetProfile"
	if userID == uuid.Nil {
		return nil, aggregates.ValidationError(op, "user id required")
	}
	u, err := s.userRepo.GetByID(ctx, tx, userID)
	if err != nil {
		return nil, aggregates.Wrap(aggregates.CodeInternal, op, err)
	}
	if u == nil {
		return nil, aggregates.NotFoundError(op, "user not found")
	}
	return u, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*types.User, error) {
	const op = "UserService.UpdateProfile"
	if userID == uuid.Nil {
		return nil, aggregates.ValidationError(op, "user id required")
	}
	updates := map[string]interface{}{}
	if input.FirstName != nil {
		name := strings.TrimSpace(*input.FirstName)
		if name == "" {
			return nil, aggregates.ValidationError(op, "first name cannot be empty")
		}
		updates["first_name"] = name
	}
	if input.LastName != nil {
		name := strings.TrimSpace(*input.LastName)
		if name == "" {
			return nil, aggregates.ValidationError(op, "last name cannot be empty")
		}
		updates["last_name"] = name
	}
	if input.Phone != nil {
		updates["phone"] = strings.TrimSpace(*input.Phone)
	}
	if len(updates) > 0 {
		if err := s.userRepo.UpdateFields(ctx, nil, userID, updates); err != nil {
			s.log.Error("update profile failed", "error", err, "user_id", userID)
			return nil, aggregates.Wrap(aggregates.CodeInternal, op, err)
		}
	}
	return s.GetProfile(ctx, nil, userID)
}

func (s *userService) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	const op = "UserService.ChangePassword"
	if len(newPassword) < 8 {
		return aggregates.ValidationError(op, "password must be at least 8 characters")
	}
	u, err := s.GetProfile(ctx, nil, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(currentPassword)); err != nil {
		return aggregates.ValidationError(op, "current password is incorrect")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return aggregates.Wrap(aggregates.CodeInternal, op, err)
	}
	if err := s.userRepo.UpdateFields(ctx, nil, userID, map[string]interface{}{"password": string(hash)}); err != nil {
		s.log.Error("change password failed", "error", err, "user_id", userID)
		return aggregates.Wrap(aggregates.CodeInternal, op, err)
	}
	s.log.Info("password changed", "user_id", userID)
	return nil
}

func (s *userService) UploadAvatar(ctx context.Context, userID uuid.UUID, contentType string, file io.Reader) (*types.User, error) {
	const op = "UserService.UploadAvatar"
	if !allowedMediaTypes[strings.ToLower(strings.TrimSpace(contentType))] {
		return nil, aggregates.ValidationError(op, "unsupported avatar media type")
	}
	u, err := s.GetProfile(ctx, nil, userID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s/%s%s", userID, uuid.New(), extensionFor("", contentType))
	if err := s.bucket.UploadFile(ctx, gcs.BucketCategoryAvatar, key, contentType, file); err != nil {
		s.log.Error("avatar upload failed", "error", err, "user_id", userID)
		return nil, aggregates.Wrap(aggregates.CodeInternal, op, err)
	}

	oldKey := u.AvatarBucketKey
	updates := map[string]interface{}{
		"avatar_bucket_key": key,
		"avatar_url":        s.bucket.GetPublicURL(gcs.BucketCategoryAvatar, key),
	}
	if err := s.userRepo.UpdateFields(ctx, nil, userID, updates); err != nil {
		if derr := s.bucket.DeleteFile(ctx, gcs.BucketCategoryAvatar, key); derr != nil {
			s.log.Warn("orphaned avatar object left behind", "key", key, "error", derr)
		}
		return nil, aggregates.Wrap(aggregates.CodeInternal, op, err)
	}
	if oldKey != "" {
		if derr := s.bucket.DeleteFile(ctx, gcs.BucketCategoryAvatar, oldKey); derr != nil {
			s.log.Warn("stale avatar object left behind", "key", oldKey, "error", derr)
		}
	}
	return s.GetProfile(ctx, nil, userID)
}

func (s *userService) SetUserStatus(ctx context.Context, adminID, userID uuid.UUID, status string) (*types.User, error) {
	const op = "UserService.SetUserStatus"
	if status != "ACTIVE" && status != "SUSPENDED" {
		return nil, aggregates.ValidationError(op, "unknown user status")
	}
	if adminID == userID {
		return nil, aggregates.ValidationError(op, "cannot change your own status")
	}
	if _, err := s.GetProfile(ctx, nil, userID); err != nil {
		return nil, err
	}
	if err := s.userRepo.UpdateFields(ctx, nil, userID, map[string]interface{}{"status": status}); err != nil {
		s.log.Error("set user status failed", "error", err, "user_id", userID)
		return nil, aggregates.Wrap(aggregates.CodeInternal, op, err)
	}
	s.log.Info("user status changed", "user_id", userID, "status", status, "admin_id", adminID)
	return s.GetProfile(ctx, nil, userID)
}
