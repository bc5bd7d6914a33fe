package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/raceclub/portal/models"
	"github.com/raceclub/portal/repositories"
)

type ChampionshipService struct {
	repo repositories.ChampionshipRepository
}

func NewChampionshipService(repo repositories.ChampionshipRepository) *ChampionshipService {
	return &ChampionshipService{repo: repo}
}

func validateChampionship(c *models.Championship) error {
	if c.Name == "" {
		return ErrChampionshipNameRequired
	}
	if c.TotalRounds <= 0 || c.DropRounds < 0 || c.DropRounds >= c.TotalRounds {
		return ErrChampionshipInvalidRounds
	}
	return nil
}

func (s *ChampionshipService) Create(ctx context.Context, c *models.Championship) error {
	if err := validateChampionship(c); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, c); err != nil {
		if errors.Is(err, repositories.ErrChampionshipNameConflict) {
			return ErrChampionshipNameConflict
		}
		return fmt.Errorf("failed to create championship: %w", err)
	}
	return nil
}

func (s *ChampionshipService) Update(ctx context.Context, c *models.Championship) error {
	if err := validateChampionship(c); err != nil {
		return err
	}
	err := s.repo.Update(ctx, c)
	switch {
	case errors.Is(err, repositories.ErrChampionshipNotFound):
		return ErrChampionshipNotFound
	case errors.Is(err, repositories.ErrChampionshipNameConflict):
		return ErrChampionshipNameConflict
	}
	return err
}

func (s *ChampionshipService) GetByID(ctx context.Context, id int) (*models.Championship, error) {
	c, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrChampionshipNotFound) {
		return nil, ErrChampionshipNotFound
	}
	return c, err
}

func (s *ChampionshipService) ListByClub(ctx context.Context, clubID int) ([]models.Championship, error) {
	return s.repo.ListByClub(ctx, clubID)
}

func (s *ChampionshipService) Delete(ctx context.Context, id int) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, repositories.ErrChampionshipNotFound) {
		return ErrChampionshipNotFound
	}
	return err
}
