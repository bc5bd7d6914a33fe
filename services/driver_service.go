package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/raceclub/portal/models"
	"github.com/raceclub/portal/repositories"
)

// DriverService manages the household roster: the self driver created
// at registration, family members, and reserved race numbers.
type DriverService struct {
	repo              repositories.DriverRepository
	membershipService *MembershipService
}

func NewDriverService(repo repositories.DriverRepository, membershipService *MembershipService) *DriverService {
	return &DriverService{repo: repo, membershipService: membershipService}
}

func (s *DriverService) ListHousehold(ctx context.Context, userID int) ([]models.Driver, error) {
	return s.repo.ListByUser(ctx, userID)
}

type AddFamilyDriverInput struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Junior    bool   `json:"junior"`
}

// AddFamilyDriver links a family member as a nominatable driver.
// Only an active family membership may hold more than the self driver.
func (s *DriverService) AddFamilyDriver(ctx context.Context, userID int, input AddFamilyDriverInput) (*models.Driver, error) {
	if input.FirstName == "" || input.LastName == "" {
		return nil, ErrDriverNameRequired
	}

	state, _, err := s.membershipService.GetState(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !state.CanAddDrivers() {
		return nil, ErrDriverLimitExceeded
	}

	d := &models.Driver{
		UserID:    userID,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Junior:    input.Junior,
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to add family driver: %w", err)
	}
	return d, nil
}

// RemoveFamilyDriver unlinks a family member. The self driver cannot be
// removed; ownership is checked before the delete.
func (s *DriverService) RemoveFamilyDriver(ctx context.Context, userID, driverID int) error {
	d, err := s.repo.FindByID(ctx, driverID)
	if err != nil {
		if errors.Is(err, repositories.ErrDriverNotFound) {
			return ErrDriverNotFound
		}
		return fmt.Errorf("failed to find driver: %w", err)
	}
	if d.UserID != userID {
		return ErrForbiddenOperation
	}
	if d.Self {
		return ErrForbiddenOperation
	}
	return s.repo.Delete(ctx, driverID)
}

func (s *DriverService) ListNumbers(ctx context.Context, userID int) ([]models.DriverNumber, error) {
	return s.repo.ListNumbers(ctx, userID)
}

func (s *DriverService) AddNumber(ctx context.Context, userID, number int) (*models.DriverNumber, error) {
	if number <= 0 {
		return nil, fmt.Errorf("%w: driver number must be positive", ErrValidationFailed)
	}
	n := &models.DriverNumber{UserID: userID, Number: number}
	if err := s.repo.AddNumber(ctx, n); err != nil {
		if errors.Is(err, repositories.ErrDriverNumberConflict) {
			return nil, ErrDriverNumberConflict
		}
		return nil, fmt.Errorf("failed to add driver number: %w", err)
	}
	return n, nil
}

func (s *DriverService) RemoveNumber(ctx context.Context, userID, id int) error {
	err := s.repo.RemoveNumber(ctx, userID, id)
	if errors.Is(err, repositories.ErrDriverNotFound) {
		return ErrNotFound
	}
	return err
}
