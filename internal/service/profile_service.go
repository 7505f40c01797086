package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"blogora/internal/dto"
	"blogora/internal/repository"
	"blogora/pkg/apperror"
	"blogora/pkg/storage"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// PictureFile carries an uploaded profile picture.
type PictureFile struct {
	Reader   io.Reader
	FileName string
}

type ProfileService interface {
	GetByUsername(ctx context.Context, username string) (*dto.ProfileResponse, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*dto.ProfileResponse, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input dto.UpdateProfileRequest, picture *PictureFile) (*dto.ProfileResponse, error)
}

type profileService struct {
	repo         repository.UserRepository
	imageStorage storage.ImageStorage
}

func NewProfileService(repo repository.UserRepository, imageStorage storage.ImageStorage) ProfileService {
	return &profileService{
		repo:         repo,
		imageStorage: imageStorage,
	}
}

func (s *profileService) GetByUsername(ctx context.Context, username string) (*dto.ProfileResponse, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %s", apperror.ErrNotFound, username)
		}
		return nil, err
	}

	return &dto.ProfileResponse{User: user, Profile: user.Profile}, nil
}

func (s *profileService) GetByUserID(ctx context.Context, userID uuid.UUID) (*dto.ProfileResponse, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user", apperror.ErrNotFound)
		}
		return nil, err
	}

	return &dto.ProfileResponse{User: user, Profile: user.Profile}, nil
}

func (s *profileService) UpdateProfile(ctx context.Context, userID uuid.UUID, input dto.UpdateProfileRequest, picture *PictureFile) (*dto.ProfileResponse, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user", apperror.ErrNotFound)
		}
		return nil, err
	}

	if input.Username != nil && *input.Username != "" && *input.Username != user.Username {
		if len(*input.Username) < 3 || len(*input.Username) > 50 {
			return nil, fmt.Errorf("%w: username must be 3-50 characters", apperror.ErrValidation)
		}
		if _, err := s.repo.FindByUsername(ctx, *input.Username); err == nil {
			return nil, fmt.Errorf("%w: username already taken", apperror.ErrConflict)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		user.Username = *input.Username
	}

	if input.Password != nil && *input.Password != "" {
		if len(*input.Password) < 8 {
			return nil, fmt.Errorf("%w: password must be at least 8 characters", apperror.ErrValidation)
		}
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = string(hashedPassword)
	}

	profile := user.Profile
	if profile != nil {
		if input.Bio != nil {
			profile.Bio = *input.Bio
		}

		if picture != nil && picture.Reader != nil && s.imageStorage != nil {
			url, err := s.imageStorage.UploadImage(ctx, picture.Reader, "profiles", picture.FileName)
			if err != nil {
				return nil, err
			}
			if profile.PictureURL != nil {
				// Replaced picture is best-effort cleanup, a stale file is harmless
				_ = s.imageStorage.DeleteImage(ctx, *profile.PictureURL)
			}
			profile.PictureURL = &url
		}
	}

	if err := s.repo.Update(ctx, user, profile); err != nil {
		return nil, err
	}

	return &dto.ProfileResponse{User: user, Profile: profile}, nil
}
