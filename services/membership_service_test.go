package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/raceclub/portal/membership"
	"github.com/raceclub/portal/models"
	"github.com/raceclub/portal/repositories"
)

type mockMembershipRepo struct {
	createFn               func(ctx context.Context, m *models.Membership) error
	findByUserFn           func(ctx context.Context, userID int) (*models.Membership, error)
	findByIDFn             func(ctx context.Context, id int) (*models.Membership, error)
	updateEndDateFn        func(ctx context.Context, id int, endDate time.Time) error
	updateTypeAndEndDateFn func(ctx context.Context, id int, newType models.MembershipType, endDate time.Time) error
}

func (m *mockMembershipRepo) Create(ctx context.Context, rec *models.Membership) error {
	return m.createFn(ctx, rec)
}

func (m *mockMembershipRepo) FindByUser(ctx context.Context, userID int) (*models.Membership, error) {
	return m.findByUserFn(ctx, userID)
}

func (m *mockMembershipRepo) FindByID(ctx context.Context, id int) (*models.Membership, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, repositories.ErrMembershipNotFound
}

func (m *mockMembershipRepo) UpdateEndDate(ctx context.Context, id int, endDate time.Time) error {
	return m.updateEndDateFn(ctx, id, endDate)
}

func (m *mockMembershipRepo) UpdateTypeAndEndDate(ctx context.Context, id int, newType models.MembershipType, endDate time.Time) error {
	return m.updateTypeAndEndDateFn(ctx, id, newType, endDate)
}

var fixedNow = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

func newTestMembershipService(repo *mockMembershipRepo) *MembershipService {
	svc := NewMembershipService(repo, discardLogger())
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestGetStateNoRecordIsNone(t *testing.T) {
	repo := &mockMembershipRepo{findByUserFn: func(ctx context.Context, userID int) (*models.Membership, error) {
		return nil, repositories.ErrMembershipNotFound
	}}
	svc := newTestMembershipService(repo)

	state, rec, err := svc.GetState(context.Background(), 1)
	if err != nil {
		t.Fatalf("a missing record is a clean None, not an error: %v", err)
	}
	if rec != nil {
		t.Fatal("expected nil record")
	}
	if state.Kind != membership.StateNone {
		t.Fatalf("expected None, got %v", state.Kind)
	}
}

func TestGetStateFetchFailureIsUnknown(t *testing.T) {
	repo := &mockMembershipRepo{findByUserFn: func(ctx context.Context, userID int) (*models.Membership, error) {
		return nil, errors.New("connection refused")
	}}
	svc := newTestMembershipService(repo)

	state, _, err := svc.GetState(context.Background(), 1)
	if err == nil {
		t.Fatal("a fetch failure must be surfaced")
	}
	if state.Kind != membership.StateUnknown {
		t.Fatalf("fetch failure must resolve to Unknown, got %v", state.Kind)
	}
	if state.IsActive() {
		t.Fatal("Unknown must never grant member benefits")
	}
}

func TestJoinCreatesOneYearMembership(t *testing.T) {
	var created *models.Membership
	repo := &mockMembershipRepo{createFn: func(ctx context.Context, m *models.Membership) error {
		m.ID = 3
		created = m
		return nil
	}}
	svc := newTestMembershipService(repo)

	m, err := svc.Join(context.Background(), 1, 2, models.MembershipSingle)
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if m.ID != 3 || created.UserID != 1 || created.ClubID != 2 {
		t.Fatalf("created record wrong: %+v", created)
	}
	if created.Status != "active" || created.Type != "single" {
		t.Fatalf("expected an active single membership, got %s/%s", created.Status, created.Type)
	}

	wantEnd := fixedNow.AddDate(1, 0, 0).Format(time.RFC3339)
	if created.EndDate == nil || *created.EndDate != wantEnd {
		t.Fatalf("end date = %v, want %s", created.EndDate, wantEnd)
	}
}

func TestJoinRejectsUnknownTier(t *testing.T) {
	svc := newTestMembershipService(&mockMembershipRepo{})
	if _, err := svc.Join(context.Background(), 1, 2, "platinum"); !errors.Is(err, ErrMembershipInvalidType) {
		t.Fatalf("expected ErrMembershipInvalidType, got %v", err)
	}
}

func TestJoinConflictWhenHouseholdAlreadyMember(t *testing.T) {
	repo := &mockMembershipRepo{createFn: func(ctx context.Context, m *models.Membership) error {
		return repositories.ErrMembershipConflict
	}}
	svc := newTestMembershipService(repo)

	if _, err := svc.Join(context.Background(), 1, 2, models.MembershipJunior); !errors.Is(err, ErrMembershipExists) {
		t.Fatalf("expected ErrMembershipExists, got %v", err)
	}
}

func TestRenewExtendsOneYearFromNow(t *testing.T) {
	end := "2025-01-01T00:00:00Z" // already lapsed
	rec := &models.Membership{ID: 8, UserID: 1, Type: "single", Status: "active", EndDate: &end}

	var updatedEnd time.Time
	repo := &mockMembershipRepo{
		findByUserFn: func(ctx context.Context, userID int) (*models.Membership, error) { return rec, nil },
		updateEndDateFn: func(ctx context.Context, id int, endDate time.Time) error {
			if id != 8 {
				t.Fatalf("renewed wrong record %d", id)
			}
			updatedEnd = endDate
			return nil
		},
		findByIDFn: func(ctx context.Context, id int) (*models.Membership, error) { return rec, nil },
	}
	svc := newTestMembershipService(repo)

	if _, err := svc.Renew(context.Background(), 1); err != nil {
		t.Fatalf("Renew: %v", err)
	}
	if want := fixedNow.AddDate(1, 0, 0); !updatedEnd.Equal(want) {
		t.Fatalf("new end = %v, want %v", updatedEnd, want)
	}
}

func TestRenewWithoutMembership(t *testing.T) {
	repo := &mockMembershipRepo{findByUserFn: func(ctx context.Context, userID int) (*models.Membership, error) {
		return nil, repositories.ErrMembershipNotFound
	}}
	svc := newTestMembershipService(repo)

	if _, err := svc.Renew(context.Background(), 1); !errors.Is(err, ErrMembershipNotFound) {
		t.Fatalf("expected ErrMembershipNotFound, got %v", err)
	}
}

func TestUpgradeChargesPriceDifference(t *testing.T) {
	end := "2099-01-01T00:00:00Z"
	rec := &models.Membership{ID: 4, UserID: 1, Type: "junior", Status: "active", EndDate: &end}

	var gotType models.MembershipType
	repo := &mockMembershipRepo{
		findByUserFn: func(ctx context.Context, userID int) (*models.Membership, error) { return rec, nil },
		updateTypeAndEndDateFn: func(ctx context.Context, id int, newType models.MembershipType, endDate time.Time) error {
			gotType = newType
			return nil
		},
		findByIDFn: func(ctx context.Context, id int) (*models.Membership, error) { return rec, nil },
	}
	svc := newTestMembershipService(repo)

	_, charged, err := svc.Upgrade(context.Background(), 1)
	if err != nil {
		t.Fatalf("Upgrade: %v", err)
	}
	if gotType != models.MembershipFamily {
		t.Fatalf("expected upgrade to family, got %s", gotType)
	}
	want := models.MembershipPrices[models.MembershipFamily] - models.MembershipPrices[models.MembershipJunior]
	if charged != want {
		t.Fatalf("charged %d, want the %d price difference", charged, want)
	}
}

func TestUpgradeRejectsFamily(t *testing.T) {
	end := "2099-01-01T00:00:00Z"
	rec := &models.Membership{ID: 4, UserID: 1, Type: "family", Status: "active", EndDate: &end}
	repo := &mockMembershipRepo{
		findByUserFn: func(ctx context.Context, userID int) (*models.Membership, error) { return rec, nil },
	}
	svc := newTestMembershipService(repo)

	if _, _, err := svc.Upgrade(context.Background(), 1); !errors.Is(err, ErrAlreadyFamily) {
		t.Fatalf("expected ErrAlreadyFamily, got %v", err)
	}
}
