package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/raceclub/portal/membership"
	"github.com/raceclub/portal/models"
	"github.com/raceclub/portal/repositories"
)

type mockNominationRepo struct {
	createFn          func(ctx context.Context, n *models.Nomination) error
	findByAttemptIDFn func(ctx context.Context, attemptID string) (*models.Nomination, error)
}

func (m *mockNominationRepo) Create(ctx context.Context, n *models.Nomination) error {
	return m.createFn(ctx, n)
}

func (m *mockNominationRepo) FindByID(ctx context.Context, id int) (*models.Nomination, error) {
	return nil, repositories.ErrNominationNotFound
}

func (m *mockNominationRepo) FindByEventAndDriver(ctx context.Context, eventID, driverID int) (*models.Nomination, error) {
	return nil, repositories.ErrNominationNotFound
}

func (m *mockNominationRepo) FindByAttemptID(ctx context.Context, attemptID string) (*models.Nomination, error) {
	if m.findByAttemptIDFn != nil {
		return m.findByAttemptIDFn(ctx, attemptID)
	}
	return nil, repositories.ErrNominationNotFound
}

func (m *mockNominationRepo) ListByEvent(ctx context.Context, eventID int) ([]models.Nomination, error) {
	return nil, nil
}

type mockEventRepo struct {
	getByIDFn func(ctx context.Context, id int) (*models.Event, error)
}

func (m *mockEventRepo) Create(ctx context.Context, ev *models.Event) error { return nil }
func (m *mockEventRepo) Update(ctx context.Context, ev *models.Event) error { return nil }
func (m *mockEventRepo) GetByID(ctx context.Context, id int) (*models.Event, error) {
	return m.getByIDFn(ctx, id)
}
func (m *mockEventRepo) ListByClub(ctx context.Context, clubID int, withTrack bool) ([]models.Event, error) {
	return nil, nil
}
func (m *mockEventRepo) ListByClubBetween(ctx context.Context, clubID int, from, to time.Time) ([]models.Event, error) {
	return nil, nil
}

type mockEventClassRepo struct {
	listByEventFn func(ctx context.Context, eventID int) ([]models.EventClass, error)
}

func (m *mockEventClassRepo) ListByEvent(ctx context.Context, eventID int) ([]models.EventClass, error) {
	return m.listByEventFn(ctx, eventID)
}

func (m *mockEventClassRepo) UpsertForEvent(ctx context.Context, eventID int, list []models.EventClass) error {
	return nil
}

type mockDriverRepo struct {
	listByUserFn func(ctx context.Context, userID int) ([]models.Driver, error)
}

func (m *mockDriverRepo) Create(ctx context.Context, d *models.Driver) error { return nil }
func (m *mockDriverRepo) FindByID(ctx context.Context, id int) (*models.Driver, error) {
	return nil, repositories.ErrDriverNotFound
}
func (m *mockDriverRepo) ListByUser(ctx context.Context, userID int) ([]models.Driver, error) {
	return m.listByUserFn(ctx, userID)
}
func (m *mockDriverRepo) Delete(ctx context.Context, id int) error { return nil }
func (m *mockDriverRepo) AddNumber(ctx context.Context, n *models.DriverNumber) error {
	return nil
}
func (m *mockDriverRepo) RemoveNumber(ctx context.Context, userID, id int) error { return nil }
func (m *mockDriverRepo) ListNumbers(ctx context.Context, userID int) ([]models.DriverNumber, error) {
	return nil, nil
}

type mockHub struct {
	broadcasts []string
}

func (m *mockHub) BroadcastToRoom(room, messageType string, payload interface{}) {
	m.broadcasts = append(m.broadcasts, room+"/"+messageType)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openWindowEvent(membersOnly bool) *models.Event {
	open := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	close := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	return &models.Event{
		ID:                7,
		Name:              "Club Round 1",
		EventDate:         time.Date(2025, 1, 18, 0, 0, 0, 0, time.UTC),
		Type:              models.EventRace,
		NominationsOpen:   &open,
		NominationsClose:  &close,
		MembersOnly:       membersOnly,
		PreferenceEnabled: true,
		ClassLimit:        2,
	}
}

func testClasses() []models.EventClass {
	return []models.EventClass{
		{EventID: 7, ClassID: 1, ClassName: "1/10 Buggy", Enabled: true, OrderIndex: 1},
		{EventID: 7, ClassID: 2, ClassName: "1/10 Truck", Enabled: true, OrderIndex: 2},
		{EventID: 7, ClassID: 3, ClassName: "1/8 Nitro", Enabled: false, OrderIndex: 3},
		{EventID: 7, ClassID: 4, ClassName: "Stadium Truck", Enabled: true, OrderIndex: 4},
	}
}

func activeFamilyState() membership.State {
	end := "2099-01-01T00:00:00Z"
	rec := &models.Membership{ID: 1, Status: "active", Type: "family", EndDate: &end}
	return membership.Resolve(rec, time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC))
}

func newTestNominationService(nomRepo *mockNominationRepo, ev *models.Event, hub *mockHub) *NominationService {
	if hub == nil {
		hub = &mockHub{}
	}
	svc := NewNominationService(
		nomRepo,
		&mockEventRepo{getByIDFn: func(ctx context.Context, id int) (*models.Event, error) {
			return ev, nil
		}},
		&mockEventClassRepo{listByEventFn: func(ctx context.Context, eventID int) ([]models.EventClass, error) {
			return testClasses(), nil
		}},
		&mockDriverRepo{listByUserFn: func(ctx context.Context, userID int) ([]models.Driver, error) {
			return []models.Driver{
				{ID: 10, UserID: userID, FirstName: "Alex", Self: true},
				{ID: 11, UserID: userID, FirstName: "Sam", Junior: true},
			}, nil
		}},
		hub,
		discardLogger(),
	)
	svc.now = func() time.Time { return time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC) }
	return svc
}

func TestStartEntryRejectsClosedWindow(t *testing.T) {
	ev := openWindowEvent(false)
	svc := newTestNominationService(&mockNominationRepo{}, ev, nil)
	svc.now = func() time.Time { return time.Date(2025, 1, 11, 0, 0, 0, 0, time.UTC) }

	_, err := svc.StartEntry(context.Background(), ev.ID, 1, activeFamilyState())
	if !errors.Is(err, ErrNominationsClosed) {
		t.Fatalf("expected ErrNominationsClosed, got %v", err)
	}
}

func TestStartEntryRejectsNonMemberOnMembersOnlyEvent(t *testing.T) {
	ev := openWindowEvent(true)
	svc := newTestNominationService(&mockNominationRepo{}, ev, nil)

	none := membership.Resolve(nil, time.Now())
	_, err := svc.StartEntry(context.Background(), ev.ID, 1, none)
	if !errors.Is(err, ErrMembersOnlyEvent) {
		t.Fatalf("expected ErrMembersOnlyEvent, got %v", err)
	}
}

func TestStartEntryFiltersDisabledClasses(t *testing.T) {
	ev := openWindowEvent(false)
	svc := newTestNominationService(&mockNominationRepo{}, ev, nil)

	wf, err := svc.StartEntry(context.Background(), ev.ID, 1, activeFamilyState())
	if err != nil {
		t.Fatalf("StartEntry: %v", err)
	}
	if len(wf.Classes) != 3 {
		t.Fatalf("expected 3 enabled classes, got %d", len(wf.Classes))
	}
	for _, ec := range wf.Classes {
		if !ec.Enabled {
			t.Fatalf("disabled class %d leaked into workflow", ec.ClassID)
		}
	}
	if wf.AttemptID() == "" {
		t.Fatal("expected a generated attempt id")
	}
}

func TestWorkflowRequiresDriverBeforeClasses(t *testing.T) {
	svc := newTestNominationService(&mockNominationRepo{}, openWindowEvent(false), nil)
	wf, _ := svc.StartEntry(context.Background(), 7, 1, activeFamilyState())

	if err := wf.SelectClass1(1); !errors.Is(err, ErrDriverNotSelected) {
		t.Fatalf("expected ErrDriverNotSelected, got %v", err)
	}
	if err := wf.SelectDriver(99); !errors.Is(err, ErrDriverNotInHousehold) {
		t.Fatalf("expected ErrDriverNotInHousehold, got %v", err)
	}
	if err := wf.SelectDriver(11); err != nil {
		t.Fatalf("SelectDriver: %v", err)
	}
	if wf.State() != StateSelectingClasses {
		t.Fatalf("expected selecting_classes, got %s", wf.State())
	}
}

func TestSelectClass1ClearsEqualLowerSlots(t *testing.T) {
	svc := newTestNominationService(&mockNominationRepo{}, openWindowEvent(false), nil)
	wf, _ := svc.StartEntry(context.Background(), 7, 1, activeFamilyState())
	_ = wf.SelectDriver(10)

	if err := wf.SelectClass1(1); err != nil {
		t.Fatalf("SelectClass1: %v", err)
	}
	if err := wf.SelectClass2(2); err != nil {
		t.Fatalf("SelectClass2: %v", err)
	}
	if err := wf.SelectPreference(4); err != nil {
		t.Fatalf("SelectPreference: %v", err)
	}

	// Moving class 1 onto the class-2 pick clears class 2 atomically.
	if err := wf.SelectClass1(2); err != nil {
		t.Fatalf("SelectClass1: %v", err)
	}
	c1, c2, pref := wf.Selection()
	if c1 != 2 {
		t.Fatalf("class1 = %d, want 2", c1)
	}
	if c2 != nil {
		t.Fatalf("class2 should have been cleared, got %d", *c2)
	}
	if pref == nil || *pref != 4 {
		t.Fatal("preference should have survived")
	}
}

func TestSelectClass2RejectsDuplicateAndRespectsLimit(t *testing.T) {
	ev := openWindowEvent(false)
	svc := newTestNominationService(&mockNominationRepo{}, ev, nil)
	wf, _ := svc.StartEntry(context.Background(), 7, 1, activeFamilyState())
	_ = wf.SelectDriver(10)
	_ = wf.SelectClass1(1)

	if err := wf.SelectClass2(1); !errors.Is(err, ErrDuplicateClassSelection) {
		t.Fatalf("expected ErrDuplicateClassSelection, got %v", err)
	}
	if err := wf.SelectClass2(3); !errors.Is(err, ErrClassNotOffered) {
		t.Fatalf("disabled class accepted: %v", err)
	}

	// Class limit of 1 blocks a second paid entry entirely.
	limited := openWindowEvent(false)
	limited.ClassLimit = 1
	svc2 := newTestNominationService(&mockNominationRepo{}, limited, nil)
	wf2, _ := svc2.StartEntry(context.Background(), 7, 1, activeFamilyState())
	_ = wf2.SelectDriver(10)
	_ = wf2.SelectClass1(1)
	if err := wf2.SelectClass2(2); !errors.Is(err, ErrClassNotOffered) {
		t.Fatalf("expected class limit rejection, got %v", err)
	}
}

func TestSelectPreferenceRequiresToggle(t *testing.T) {
	ev := openWindowEvent(false)
	ev.PreferenceEnabled = false
	svc := newTestNominationService(&mockNominationRepo{}, ev, nil)
	wf, _ := svc.StartEntry(context.Background(), 7, 1, activeFamilyState())
	_ = wf.SelectDriver(10)
	_ = wf.SelectClass1(1)

	if err := wf.SelectPreference(2); !errors.Is(err, ErrPreferenceDisabled) {
		t.Fatalf("expected ErrPreferenceDisabled, got %v", err)
	}
}

func TestOptionSetsExcludeHigherSlotPicks(t *testing.T) {
	svc := newTestNominationService(&mockNominationRepo{}, openWindowEvent(false), nil)
	wf, _ := svc.StartEntry(context.Background(), 7, 1, activeFamilyState())
	_ = wf.SelectDriver(10)
	_ = wf.SelectClass1(1)
	_ = wf.SelectClass2(2)

	for _, ec := range wf.Class2Options() {
		if ec.ClassID == 1 {
			t.Fatal("class-2 options must exclude the first pick")
		}
	}
	for _, ec := range wf.PreferenceOptions() {
		if ec.ClassID == 1 || ec.ClassID == 2 {
			t.Fatalf("preference options must exclude both paid picks, got %d", ec.ClassID)
		}
	}
}

func TestSubmitValidatesBeforeStore(t *testing.T) {
	storeCalled := false
	repo := &mockNominationRepo{createFn: func(ctx context.Context, n *models.Nomination) error {
		storeCalled = true
		return nil
	}}
	svc := newTestNominationService(repo, openWindowEvent(false), nil)
	wf, _ := svc.StartEntry(context.Background(), 7, 1, activeFamilyState())
	_ = wf.SelectDriver(10)

	if _, err := wf.Submit(context.Background()); !errors.Is(err, ErrClass1Required) {
		t.Fatalf("expected ErrClass1Required, got %v", err)
	}
	if storeCalled {
		t.Fatal("store must not be called when validation fails")
	}
}

func TestSubmitPersistsAndBroadcasts(t *testing.T) {
	var stored *models.Nomination
	repo := &mockNominationRepo{createFn: func(ctx context.Context, n *models.Nomination) error {
		n.ID = 42
		stored = n
		return nil
	}}
	hub := &mockHub{}
	svc := newTestNominationService(repo, openWindowEvent(false), hub)
	wf, _ := svc.StartEntry(context.Background(), 7, 1, activeFamilyState())
	_ = wf.SelectDriver(11)
	_ = wf.SelectClass1(1)
	_ = wf.SelectClass2(2)
	_ = wf.SelectPreference(4)

	n, err := wf.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if wf.State() != StateConfirmed || wf.CreatedID() != 42 {
		t.Fatalf("expected confirmed id 42, got %s/%d", wf.State(), wf.CreatedID())
	}
	if stored.DriverID != 11 || stored.Class1ID != 1 || *stored.Class2ID != 2 || *stored.PreferenceClassID != 4 {
		t.Fatalf("stored nomination wrong: %+v", stored)
	}
	if stored.AttemptID != wf.AttemptID() {
		t.Fatal("attempt id not written with the nomination")
	}
	if n.ID != 42 {
		t.Fatalf("returned nomination id %d, want 42", n.ID)
	}
	if len(hub.broadcasts) != 1 || hub.broadcasts[0] != "event:7/NOMINATION_CREATED" {
		t.Fatalf("expected one NOMINATION_CREATED broadcast, got %v", hub.broadcasts)
	}
}

func TestSubmitFailureLeavesWorkflowResubmittable(t *testing.T) {
	attempts := 0
	repo := &mockNominationRepo{createFn: func(ctx context.Context, n *models.Nomination) error {
		attempts++
		if attempts == 1 {
			return errors.New("connection reset")
		}
		n.ID = 5
		return nil
	}}
	svc := newTestNominationService(repo, openWindowEvent(false), nil)
	wf, _ := svc.StartEntry(context.Background(), 7, 1, activeFamilyState())
	_ = wf.SelectDriver(10)
	_ = wf.SelectClass1(1)
	_ = wf.SelectClass2(2)

	if _, err := wf.Submit(context.Background()); err == nil {
		t.Fatal("expected first submit to fail")
	}
	if wf.State() != StateSelectingClasses {
		t.Fatalf("expected selecting_classes after failure, got %s", wf.State())
	}

	// Selection survived; retry without re-entering anything.
	c1, c2, _ := wf.Selection()
	if c1 != 1 || c2 == nil || *c2 != 2 {
		t.Fatal("selection lost across failed submit")
	}
	if _, err := wf.Submit(context.Background()); err != nil {
		t.Fatalf("retry should succeed: %v", err)
	}
	if wf.State() != StateConfirmed {
		t.Fatalf("expected confirmed, got %s", wf.State())
	}
}

func TestSubmitConflictWithOwnAttemptConfirms(t *testing.T) {
	prior := &models.Nomination{ID: 9, EventID: 7, DriverID: 10, Class1ID: 1}
	repo := &mockNominationRepo{
		createFn: func(ctx context.Context, n *models.Nomination) error {
			prior.AttemptID = n.AttemptID
			return repositories.ErrNominationConflict
		},
		findByAttemptIDFn: func(ctx context.Context, attemptID string) (*models.Nomination, error) {
			if attemptID == prior.AttemptID {
				return prior, nil
			}
			return nil, repositories.ErrNominationNotFound
		},
	}
	svc := newTestNominationService(repo, openWindowEvent(false), nil)
	wf, _ := svc.StartEntry(context.Background(), 7, 1, activeFamilyState())
	_ = wf.SelectDriver(10)
	_ = wf.SelectClass1(1)

	n, err := wf.Submit(context.Background())
	if err != nil {
		t.Fatalf("a conflict with our own attempt should confirm: %v", err)
	}
	if n.ID != 9 || wf.State() != StateConfirmed {
		t.Fatalf("expected confirmed with prior id 9, got %d/%s", n.ID, wf.State())
	}
}

func TestSubmitConflictWithForeignRowFails(t *testing.T) {
	repo := &mockNominationRepo{
		createFn: func(ctx context.Context, n *models.Nomination) error {
			return repositories.ErrNominationConflict
		},
	}
	svc := newTestNominationService(repo, openWindowEvent(false), nil)
	wf, _ := svc.StartEntry(context.Background(), 7, 1, activeFamilyState())
	_ = wf.SelectDriver(10)
	_ = wf.SelectClass1(1)

	if _, err := wf.Submit(context.Background()); !errors.Is(err, ErrNominationConflict) {
		t.Fatalf("expected ErrNominationConflict, got %v", err)
	}
	if wf.State() != StateSelectingClasses {
		t.Fatalf("conflict should re-open class selection, got %s", wf.State())
	}
}

func TestSetAttemptIDIgnoredAfterConfirm(t *testing.T) {
	repo := &mockNominationRepo{createFn: func(ctx context.Context, n *models.Nomination) error {
		n.ID = 1
		return nil
	}}
	svc := newTestNominationService(repo, openWindowEvent(false), nil)
	wf, _ := svc.StartEntry(context.Background(), 7, 1, activeFamilyState())
	_ = wf.SelectDriver(10)
	_ = wf.SelectClass1(1)

	wf.SetAttemptID("client-attempt-1")
	if wf.AttemptID() != "client-attempt-1" {
		t.Fatal("attempt id override before submit should apply")
	}

	if _, err := wf.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	wf.SetAttemptID("too-late")
	if wf.AttemptID() != "client-attempt-1" {
		t.Fatal("attempt id must be frozen after confirmation")
	}
}
