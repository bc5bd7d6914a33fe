package services

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/raceclub/portal/membership"
	"github.com/raceclub/portal/models"
)

// Session is the session-scoped snapshot of the ambient portal state:
// the current user's membership state and household drivers. It is
// created after login, refreshed on demand, and discarded when the
// identity changes, instead of living in mutable globals.
type Session struct {
	UserID int
	ClubID int

	mu      sync.RWMutex
	state   membership.State
	record  *models.Membership
	drivers []models.Driver
}

// SessionService builds and refreshes session snapshots.
type SessionService struct {
	membershipService *MembershipService
	driverService     *DriverService
}

func NewSessionService(membershipService *MembershipService, driverService *DriverService) *SessionService {
	return &SessionService{
		membershipService: membershipService,
		driverService:     driverService,
	}
}

// Open creates a session for user and loads its snapshot. Until Refresh
// succeeds the membership state is Unknown, never None.
func (s *SessionService) Open(ctx context.Context, userID, clubID int) (*Session, error) {
	sess := &Session{UserID: userID, ClubID: clubID, state: membership.Unknown()}
	if err := s.Refresh(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Refresh re-fetches membership and drivers in parallel. On any fetch
// failure the previous snapshot is kept and the membership state stays
// whatever it was; callers see the error instead of a false None.
func (s *SessionService) Refresh(ctx context.Context, sess *Session) error {
	var (
		state   membership.State
		record  *models.Membership
		drivers []models.Driver
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		state, record, err = s.membershipService.GetState(gctx, sess.UserID)
		return err
	})
	g.Go(func() error {
		var err error
		drivers, err = s.driverService.ListHousehold(gctx, sess.UserID)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to refresh session: %w", err)
	}

	sess.mu.Lock()
	sess.state = state
	sess.record = record
	sess.drivers = drivers
	sess.mu.Unlock()
	return nil
}

// MembershipState returns the resolved membership state of the snapshot.
func (sess *Session) MembershipState() membership.State {
	sess.mu.RLock()
	defer sess.mu.RUnlock()
	return sess.state
}

// Membership returns the raw stored record, or nil.
func (sess *Session) Membership() *models.Membership {
	sess.mu.RLock()
	defer sess.mu.RUnlock()
	return sess.record
}

// Drivers returns the household's drivers.
func (sess *Session) Drivers() []models.Driver {
	sess.mu.RLock()
	defer sess.mu.RUnlock()
	out := make([]models.Driver, len(sess.drivers))
	copy(out, sess.drivers)
	return out
}
