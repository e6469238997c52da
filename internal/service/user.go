package service

import (
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/fittrack/fittrack/internal/model"
	"github.com/fittrack/fittrack/internal/repository"
	"github.com/fittrack/fittrack/internal/storage"
	"github.com/fittrack/fittrack/internal/validation"
)

type UserService struct {
	repo    repository.UserRepository
	storage storage.Storage
}

func NewUserService(repo repository.UserRepository, storage storage.Storage) *UserService {
	return &UserService{repo: repo, storage: storage}
}

func (s *UserService) ByID(id string) (*model.User, error) {
	user, err := s.repo.ByID(id)
	if err != nil {
		return nil, err
	}

	if user.AvatarPath != "" {
		user.AvatarURL = s.storage.PublicURL(user.AvatarPath)
	}

	return user, nil
}

// UpdateAvatar validates and stores a new avatar, replacing any previous
// object. The key embeds the user id so re-uploads overwrite in place.
func (s *UserService) UpdateAvatar(userID string, file io.Reader, header *multipart.FileHeader) (*model.User, error) {
	if err := validation.ValidateAvatar(header); err != nil {
		return nil, err
	}

	user, err := s.repo.ByID(userID)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	key := fmt.Sprintf("avatars/%s%s", userID, ext)

	err = s.storage.Save(key, file)
	if err != nil {
		return nil, fmt.Errorf("failed to store avatar: %w", err)
	}

	// A previous avatar with a different extension would otherwise leak
	if user.AvatarPath != "" && user.AvatarPath != key {
		if delErr := s.storage.Delete(user.AvatarPath); delErr != nil {
			return nil, fmt.Errorf("failed to remove previous avatar: %w", delErr)
		}
	}

	user.AvatarPath = key
	user.UpdatedAt = time.Now()
	err = s.repo.Update(user)
	if err != nil {
		return nil, fmt.Errorf("failed to save avatar path: %w", err)
	}

	user.AvatarURL = s.storage.PublicURL(key)
	return user, nil
}

func (s *UserService) DeleteAvatar(userID string) error {
	user, err := s.repo.ByID(userID)
	if err != nil {
		return err
	}

	if user.AvatarPath == "" {
		return nil
	}

	err = s.storage.Delete(user.AvatarPath)
	if err != nil {
		return fmt.Errorf("failed to delete avatar: %w", err)
	}

	user.AvatarPath = ""
	user.UpdatedAt = time.Now()
	return s.repo.Update(user)
}
