package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/raceclub/portal/membership"
	"github.com/raceclub/portal/models"
	"github.com/raceclub/portal/repositories"
)

// MembershipService owns the household membership lifecycle:
// non-member -> active -> expired -> renewed/upgraded. Records are
// superseded by new periods, never hard-deleted.
type MembershipService struct {
	repo   repositories.MembershipRepository
	logger *slog.Logger
	now    func() time.Time
}

func NewMembershipService(repo repositories.MembershipRepository, logger *slog.Logger) *MembershipService {
	return &MembershipService{repo: repo, logger: logger, now: time.Now}
}

// GetState fetches and classifies the caller's membership. A missing
// record is a valid StateNone; a failed fetch is an error so callers
// can tell "no membership" apart from "could not load membership".
func (s *MembershipService) GetState(ctx context.Context, userID int) (membership.State, *models.Membership, error) {
	rec, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrMembershipNotFound) {
			return membership.Resolve(nil, s.now()), nil, nil
		}
		return membership.Unknown(), nil, fmt.Errorf("failed to fetch membership: %w", err)
	}

	state := membership.Resolve(rec, s.now())
	if state.Warning != "" {
		s.logger.Warn("membership record resolved to a safe default",
			slog.Int("membership_id", rec.ID),
			slog.String("warning", state.Warning))
	}
	return state, rec, nil
}

// Join creates a household membership running one year from now.
func (s *MembershipService) Join(ctx context.Context, userID, clubID int, typ models.MembershipType) (*models.Membership, error) {
	switch typ {
	case models.MembershipJunior, models.MembershipSingle, models.MembershipFamily:
	default:
		return nil, ErrMembershipInvalidType
	}

	now := s.now()
	end := now.AddDate(1, 0, 0).Format(time.RFC3339)
	m := &models.Membership{
		UserID:    userID,
		ClubID:    clubID,
		Type:      string(typ),
		Status:    "active",
		StartDate: now,
		EndDate:   &end,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		if errors.Is(err, repositories.ErrMembershipConflict) {
			return nil, ErrMembershipExists
		}
		return nil, fmt.Errorf("failed to create membership: %w", err)
	}
	return m, nil
}

// Renew extends the membership by one year from now. Renewing an
// expired membership reactivates it; the old period is simply
// superseded.
func (s *MembershipService) Renew(ctx context.Context, userID int) (*models.Membership, error) {
	rec, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrMembershipNotFound) {
			return nil, ErrMembershipNotFound
		}
		return nil, fmt.Errorf("failed to fetch membership: %w", err)
	}

	newEnd := s.now().AddDate(1, 0, 0)
	if err := s.repo.UpdateEndDate(ctx, rec.ID, newEnd); err != nil {
		return nil, fmt.Errorf("failed to renew membership: %w", err)
	}
	return s.repo.FindByID(ctx, rec.ID)
}

// Upgrade moves a junior or single membership to the family tier and
// starts a fresh one-year period. The caller is charged the price
// difference between tiers.
func (s *MembershipService) Upgrade(ctx context.Context, userID int) (*models.Membership, int, error) {
	rec, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrMembershipNotFound) {
			return nil, 0, ErrMembershipNotFound
		}
		return nil, 0, fmt.Errorf("failed to fetch membership: %w", err)
	}

	state := membership.Resolve(rec, s.now())
	if state.IsFamily() {
		return nil, 0, ErrAlreadyFamily
	}

	price := models.MembershipPrices[models.MembershipFamily]
	if current, ok := models.MembershipPrices[state.Type]; ok {
		price -= current
	}

	newEnd := s.now().AddDate(1, 0, 0)
	if err := s.repo.UpdateTypeAndEndDate(ctx, rec.ID, models.MembershipFamily, newEnd); err != nil {
		return nil, 0, fmt.Errorf("failed to upgrade membership: %w", err)
	}

	updated, err := s.repo.FindByID(ctx, rec.ID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to reload membership: %w", err)
	}
	return updated, price, nil
}
