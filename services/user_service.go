package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"transcendence/models"
	"transcendence/repositories"
	"transcendence/storage"
)

const maxAvatarSizeBytes = 2 << 20 // 2 MiB

var avatarExtByContentType = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/webp": "webp",
}

type UpdateProfileInput struct {
	Username    *string `json:"username,omitempty"`
	DisplayName *string `json:"display_name,omitempty"`
	Email       *string `json:"email,omitempty"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type UserService interface {
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	UpdateProfile(ctx context.Context, userID int, input UpdateProfileInput) (*models.User, error)
	ChangePassword(ctx context.Context, userID int, input ChangePasswordInput) error
	UploadAvatar(ctx context.Context, userID int, contentType string, size int64, reader io.Reader) (*models.User, error)
	Delete(ctx context.Context, userID int) error
}

type userService struct {
	userRepo repositories.UserRepository
	uploader storage.FileUploader
}

func NewUserService(userRepo repositories.UserRepository, uploader storage.FileUploader) UserService {
	return &userService{userRepo: userRepo, uploader: uploader}
}

func (s *userService) GetByID(ctx context.Context, id int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.fillAvatarURL(user)
	return user, nil
}

func (s *userService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	s.fillAvatarURL(user)
	return user, nil
}

func (s *userService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		s.fillAvatarURL(&users[i])
	}
	return users, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID int, input UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Username != nil {
		if v := strings.TrimSpace(*input.Username); v != "" {
			user.Username = v
		}
	}
	if input.DisplayName != nil {
		if v := strings.TrimSpace(*input.DisplayName); v != "" {
			user.DisplayName = v
		}
	}
	if input.Email != nil {
		if v := strings.TrimSpace(*input.Email); v != "" {
			user.Email = v
		}
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	s.fillAvatarURL(user)
	return user, nil
}

func (s *userService) ChangePassword(ctx context.Context, userID int, input ChangePasswordInput) error {
	if input.NewPassword == "" {
		return ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.CurrentPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = string(hashed)

	return s.userRepo.Update(ctx, user)
}

// UploadAvatar stores the image in object storage and points the profile at
// it. The previous object is deleted best-effort after the profile update
// lands, so a failed upload never leaves the user without an avatar.
func (s *userService) UploadAvatar(ctx context.Context, userID int, contentType string, size int64, reader io.Reader) (*models.User, error) {
	if s.uploader == nil {
		return nil, ErrUploaderNotAvailable
	}
	if size > maxAvatarSizeBytes {
		return nil, ErrAvatarTooLarge
	}
	ext, ok := avatarExtByContentType[contentType]
	if !ok {
		return nil, ErrAvatarUnsupported
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("avatars/%d/%s.%s", userID, randomHex(16), ext)
	if _, err := s.uploader.Upload(ctx, key, contentType, io.LimitReader(reader, maxAvatarSizeBytes)); err != nil {
		return nil, fmt.Errorf("failed to upload avatar: %w", err)
	}

	oldKey := user.AvatarKey
	user.AvatarKey = &key
	if err := s.userRepo.Update(ctx, user); err != nil {
		if delErr := s.uploader.Delete(ctx, key); delErr != nil {
			log.Printf("user service: failed to clean up orphaned avatar %s: %v", key, delErr)
		}
		return nil, err
	}

	if oldKey != nil && *oldKey != key {
		if err := s.uploader.Delete(ctx, *oldKey); err != nil {
			log.Printf("user service: failed to delete old avatar %s: %v", *oldKey, err)
		}
	}

	s.fillAvatarURL(user)
	return user, nil
}

func (s *userService) Delete(ctx context.Context, userID int) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return err
	}

	if s.uploader != nil && user.AvatarKey != nil {
		if err := s.uploader.Delete(ctx, *user.AvatarKey); err != nil {
			log.Printf("user service: failed to delete avatar for removed user %d: %v", userID, err)
		}
	}
	return nil
}

func (s *userService) fillAvatarURL(user *models.User) {
	if s.uploader == nil || user.AvatarKey == nil {
		return
	}
	url := s.uploader.GetPublicURL(*user.AvatarKey)
	user.AvatarURL = &url
}

func randomHex(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("crypto/rand unavailable: %v", err))
	}
	return hex.EncodeToString(buf)
}
