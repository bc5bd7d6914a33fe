package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/raceclub/portal/models"
	"github.com/raceclub/portal/repositories"
	"github.com/raceclub/portal/storage"
)

type ClubService struct {
	repo      repositories.ClubRepository
	trackRepo repositories.TrackRepository
	uploader  storage.FileUploader
	logger    *slog.Logger
}

func NewClubService(repo repositories.ClubRepository, trackRepo repositories.TrackRepository, uploader storage.FileUploader, logger *slog.Logger) *ClubService {
	return &ClubService{repo: repo, trackRepo: trackRepo, uploader: uploader, logger: logger}
}

func (s *ClubService) GetBySlug(ctx context.Context, slug string) (*models.Club, error) {
	club, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repositories.ErrClubNotFound) {
			return nil, ErrClubNotFound
		}
		return nil, fmt.Errorf("failed to load club: %w", err)
	}
	s.decorate(club)
	return club, nil
}

func (s *ClubService) ListTracks(ctx context.Context, clubID int) ([]models.Track, error) {
	return s.trackRepo.ListByClub(ctx, clubID)
}

func (s *ClubService) ListTrackClasses(ctx context.Context, trackID int) ([]models.TrackClass, error) {
	if _, err := s.trackRepo.GetByID(ctx, trackID); err != nil {
		if errors.Is(err, repositories.ErrTrackNotFound) {
			return nil, ErrTrackNotFound
		}
		return nil, fmt.Errorf("failed to load track: %w", err)
	}
	return s.trackRepo.ListClasses(ctx, trackID)
}

func (s *ClubService) UploadLogo(ctx context.Context, clubID int, contentType string, r io.Reader) (string, error) {
	club, err := s.repo.GetByID(ctx, clubID)
	if err != nil {
		if errors.Is(err, repositories.ErrClubNotFound) {
			return "", ErrClubNotFound
		}
		return "", fmt.Errorf("failed to load club: %w", err)
	}

	key := fmt.Sprintf("clubs/%d/logo-%s", clubID, uuid.NewString())
	result, err := s.uploader.Upload(ctx, key, contentType, r)
	if err != nil {
		return "", fmt.Errorf("failed to upload club logo: %w", err)
	}

	if club.LogoKey != nil {
		if delErr := s.uploader.Delete(ctx, *club.LogoKey); delErr != nil {
			s.logger.Warn("failed to delete previous club logo",
				slog.String("key", *club.LogoKey), slog.Any("error", delErr))
		}
	}
	if err := s.repo.UpdateLogoKey(ctx, clubID, &result.Key); err != nil {
		return "", fmt.Errorf("failed to record club logo: %w", err)
	}
	return result.Location, nil
}

func (s *ClubService) decorate(club *models.Club) {
	if club.LogoKey != nil && *club.LogoKey != "" {
		url := s.uploader.GetPublicURL(*club.LogoKey)
		if url != "" {
			club.LogoURL = &url
		} else {
			s.logger.Warn("club logo key yields no public URL",
				slog.Int("club_id", club.ID), slog.String("key", *club.LogoKey))
		}
	}
}
