package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/raceclub/portal/models"
)

type mockEventStore struct {
	createFn     func(ctx context.Context, ev *models.Event) error
	updateFn     func(ctx context.Context, ev *models.Event) error
	getByIDFn    func(ctx context.Context, id int) (*models.Event, error)
	listByClubFn func(ctx context.Context, clubID int, withTrack bool) ([]models.Event, error)
}

func (m *mockEventStore) Create(ctx context.Context, ev *models.Event) error {
	return m.createFn(ctx, ev)
}
func (m *mockEventStore) Update(ctx context.Context, ev *models.Event) error {
	return m.updateFn(ctx, ev)
}
func (m *mockEventStore) GetByID(ctx context.Context, id int) (*models.Event, error) {
	return m.getByIDFn(ctx, id)
}
func (m *mockEventStore) ListByClub(ctx context.Context, clubID int, withTrack bool) ([]models.Event, error) {
	return m.listByClubFn(ctx, clubID, withTrack)
}
func (m *mockEventStore) ListByClubBetween(ctx context.Context, clubID int, from, to time.Time) ([]models.Event, error) {
	return nil, nil
}

type mockClassStore struct {
	listByEventFn func(ctx context.Context, eventID int) ([]models.EventClass, error)
	upserts       [][]models.EventClass
}

func (m *mockClassStore) ListByEvent(ctx context.Context, eventID int) ([]models.EventClass, error) {
	if m.listByEventFn != nil {
		return m.listByEventFn(ctx, eventID)
	}
	return nil, nil
}
func (m *mockClassStore) UpsertForEvent(ctx context.Context, eventID int, list []models.EventClass) error {
	m.upserts = append(m.upserts, list)
	return nil
}

type mockTrackRepo struct {
	catalog []models.TrackClass
}

func (m *mockTrackRepo) GetByID(ctx context.Context, id int) (*models.Track, error) {
	return &models.Track{ID: id, Name: "Main Track"}, nil
}
func (m *mockTrackRepo) ListByClub(ctx context.Context, clubID int) ([]models.Track, error) {
	return nil, nil
}
func (m *mockTrackRepo) ListClasses(ctx context.Context, trackID int) ([]models.TrackClass, error) {
	return m.catalog, nil
}

func newTestEventService(store *mockEventStore, classes *mockClassStore, tracks *mockTrackRepo, hub *mockHub) *EventService {
	if hub == nil {
		hub = &mockHub{}
	}
	svc := NewEventService(store, classes, tracks, nil, hub, discardLogger())
	svc.now = func() time.Time { return time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC) }
	return svc
}

func TestCreateRejectsInvertedWindow(t *testing.T) {
	open := time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC)
	close := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	ev := &models.Event{Name: "Round 2", NominationsOpen: &open, NominationsClose: &close}

	svc := newTestEventService(&mockEventStore{}, &mockClassStore{}, &mockTrackRepo{}, nil)
	if err := svc.Create(context.Background(), ev); !errors.Is(err, ErrEventInvalidWindow) {
		t.Fatalf("expected ErrEventInvalidWindow, got %v", err)
	}
}

func TestCreateSeedsClassListFromTrackCatalog(t *testing.T) {
	trackID := 3
	ev := &models.Event{Name: "Round 2", TrackID: &trackID}
	store := &mockEventStore{createFn: func(ctx context.Context, ev *models.Event) error {
		ev.ID = 12
		return nil
	}}
	classes := &mockClassStore{}
	tracks := &mockTrackRepo{catalog: []models.TrackClass{
		{ID: 1, TrackID: 3, ClassName: "1/10 Buggy", SortOrder: 2},
		{ID: 2, TrackID: 3, ClassName: "1/8 Nitro", SortOrder: 1},
	}}

	svc := newTestEventService(store, classes, tracks, nil)
	if err := svc.Create(context.Background(), ev); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if len(classes.upserts) != 1 {
		t.Fatalf("expected one class-list save, got %d", len(classes.upserts))
	}
	seeded := classes.upserts[0]
	if len(seeded) != 2 {
		t.Fatalf("expected 2 seeded classes, got %d", len(seeded))
	}
	for i, ec := range seeded {
		if ec.Enabled {
			t.Fatal("seeded classes must start disabled")
		}
		if ec.OrderIndex != i+1 {
			t.Fatalf("seeded order not dense: %+v", seeded)
		}
		if ec.EventID != 12 {
			t.Fatalf("seeded class bound to wrong event %d", ec.EventID)
		}
	}
}

func TestUpdateReseedsOnTrackChange(t *testing.T) {
	oldTrack, newTrack := 3, 4
	current := &models.Event{ID: 12, Name: "Round 2", TrackID: &oldTrack}
	updated := &models.Event{ID: 12, Name: "Round 2", TrackID: &newTrack}

	store := &mockEventStore{
		getByIDFn: func(ctx context.Context, id int) (*models.Event, error) { return current, nil },
		updateFn:  func(ctx context.Context, ev *models.Event) error { return nil },
	}
	classes := &mockClassStore{}
	tracks := &mockTrackRepo{catalog: []models.TrackClass{{ID: 9, TrackID: 4, ClassName: "GT8"}}}
	hub := &mockHub{}

	svc := newTestEventService(store, classes, tracks, hub)
	if err := svc.Update(context.Background(), updated); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(classes.upserts) != 1 {
		t.Fatal("a track change must reseed the class list")
	}
	if len(hub.broadcasts) != 1 || hub.broadcasts[0] != "event:12/EVENT_UPDATED" {
		t.Fatalf("expected EVENT_UPDATED broadcast, got %v", hub.broadcasts)
	}

	// Same track again: no reseed, old enablement survives.
	classes.upserts = nil
	current.TrackID = &newTrack
	if err := svc.Update(context.Background(), updated); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(classes.upserts) != 0 {
		t.Fatal("an unchanged track must not reseed")
	}
}

func TestDuplicateClearsNominationWindow(t *testing.T) {
	open := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	close := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	src := &models.Event{
		ID: 12, Name: "Round 2", NominationsOpen: &open, NominationsClose: &close,
	}

	store := &mockEventStore{
		getByIDFn: func(ctx context.Context, id int) (*models.Event, error) { return src, nil },
		createFn: func(ctx context.Context, ev *models.Event) error {
			ev.ID = 13
			return nil
		},
	}
	classes := &mockClassStore{listByEventFn: func(ctx context.Context, eventID int) ([]models.EventClass, error) {
		return []models.EventClass{{EventID: 12, ClassID: 1, ClassName: "1/10 Buggy", Enabled: true, OrderIndex: 1}}, nil
	}}

	svc := newTestEventService(store, classes, &mockTrackRepo{}, nil)
	dup, err := svc.Duplicate(context.Background(), 12)
	if err != nil {
		t.Fatalf("Duplicate: %v", err)
	}
	if dup.ID != 13 || dup.Name != "Round 2 (copy)" {
		t.Fatalf("unexpected copy: %+v", dup)
	}
	if dup.NominationsOpen != nil || dup.NominationsClose != nil {
		t.Fatal("the copy's nomination window must be cleared")
	}
	if len(classes.upserts) != 1 || classes.upserts[0][0].EventID != 13 {
		t.Fatal("class list must be copied onto the new event")
	}
	if !classes.upserts[0][0].Enabled {
		t.Fatal("copied classes keep their enablement")
	}
}

func TestAutoUpdateBroadcastsPhaseTransitionsOnce(t *testing.T) {
	open := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	close := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	list := []models.Event{{ID: 12, Name: "Round 2", NominationsOpen: &open, NominationsClose: &close}}

	store := &mockEventStore{listByClubFn: func(ctx context.Context, clubID int, withTrack bool) ([]models.Event, error) {
		return list, nil
	}}
	hub := &mockHub{}
	svc := newTestEventService(store, &mockClassStore{}, &mockTrackRepo{}, hub)

	// First sweep inside the window: one "open" broadcast.
	if err := svc.AutoUpdateNominationPhases(context.Background(), 1); err != nil {
		t.Fatalf("AutoUpdateNominationPhases: %v", err)
	}
	// Second sweep, same phase: silence.
	if err := svc.AutoUpdateNominationPhases(context.Background(), 1); err != nil {
		t.Fatalf("AutoUpdateNominationPhases: %v", err)
	}
	if len(hub.broadcasts) != 1 {
		t.Fatalf("expected exactly one phase broadcast, got %v", hub.broadcasts)
	}

	// Window closes: a second transition fires.
	svc.now = func() time.Time { return time.Date(2025, 1, 11, 0, 0, 0, 0, time.UTC) }
	if err := svc.AutoUpdateNominationPhases(context.Background(), 1); err != nil {
		t.Fatalf("AutoUpdateNominationPhases: %v", err)
	}
	if len(hub.broadcasts) != 2 {
		t.Fatalf("expected a broadcast on the close transition, got %v", hub.broadcasts)
	}
}
