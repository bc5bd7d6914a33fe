package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/raceclub/portal/classlist"
	"github.com/raceclub/portal/events"
	"github.com/raceclub/portal/models"
	"github.com/raceclub/portal/repositories"
	"github.com/raceclub/portal/storage"
)

// EventService owns event CRUD, the admin class list, and the derived
// nomination phase that the scheduler keeps broadcasting.
type EventService struct {
	repo      repositories.EventRepository
	classRepo repositories.EventClassRepository
	trackRepo repositories.TrackRepository
	uploader  storage.FileUploader
	hub       Broadcaster
	logger    *slog.Logger
	now       func() time.Time

	phaseMu    sync.Mutex
	lastPhases map[int]models.NominationPhase
}

func NewEventService(
	repo repositories.EventRepository,
	classRepo repositories.EventClassRepository,
	trackRepo repositories.TrackRepository,
	uploader storage.FileUploader,
	hub Broadcaster,
	logger *slog.Logger,
) *EventService {
	return &EventService{
		repo:       repo,
		classRepo:  classRepo,
		trackRepo:  trackRepo,
		uploader:   uploader,
		hub:        hub,
		logger:     logger,
		now:        time.Now,
		lastPhases: make(map[int]models.NominationPhase),
	}
}

func validateEvent(ev *models.Event) error {
	if ev.Name == "" {
		return ErrEventNameRequired
	}
	if ev.NominationsOpen != nil && ev.NominationsClose != nil &&
		ev.NominationsClose.Before(*ev.NominationsOpen) {
		return ErrEventInvalidWindow
	}
	if ev.MemberPrice < 0 || ev.NonMemberPrice < 0 || ev.JuniorPrice < 0 {
		return ErrEventInvalidPrices
	}
	return nil
}

// Create stores a new event and, when a track is set, seeds its class
// list from the track's catalog (all classes disabled until the admin
// enables them).
func (s *EventService) Create(ctx context.Context, ev *models.Event) error {
	if err := validateEvent(ev); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, ev); err != nil {
		if errors.Is(err, repositories.ErrEventTrackInvalid) {
			return ErrTrackNotFound
		}
		return fmt.Errorf("failed to create event: %w", err)
	}

	if ev.TrackID != nil {
		if err := s.seedClasses(ctx, ev.ID, *ev.TrackID); err != nil {
			return err
		}
	}
	return nil
}

// Update edits an event. A track change reseeds the class list from the
// new track's catalog; everything previously enabled is discarded since
// the old classes do not exist at the new track.
func (s *EventService) Update(ctx context.Context, ev *models.Event) error {
	if err := validateEvent(ev); err != nil {
		return err
	}

	current, err := s.repo.GetByID(ctx, ev.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return ErrEventNotFound
		}
		return fmt.Errorf("failed to load event: %w", err)
	}

	if err := s.repo.Update(ctx, ev); err != nil {
		if errors.Is(err, repositories.ErrEventTrackInvalid) {
			return ErrTrackNotFound
		}
		return fmt.Errorf("failed to update event: %w", err)
	}

	trackChanged := ev.TrackID != nil &&
		(current.TrackID == nil || *current.TrackID != *ev.TrackID)
	if trackChanged {
		if err := s.seedClasses(ctx, ev.ID, *ev.TrackID); err != nil {
			return err
		}
	}

	s.hub.BroadcastToRoom(eventRoom(ev.ID), "EVENT_UPDATED", ev)
	return nil
}

func (s *EventService) seedClasses(ctx context.Context, eventID, trackID int) error {
	catalog, err := s.trackRepo.ListClasses(ctx, trackID)
	if err != nil {
		return fmt.Errorf("failed to load track class catalog: %w", err)
	}
	seeded := classlist.SeedFromCatalog(eventID, catalog)
	if err := s.classRepo.UpsertForEvent(ctx, eventID, seeded.Entries()); err != nil {
		return fmt.Errorf("failed to seed event classes: %w", err)
	}
	return nil
}

// Duplicate copies an event into a new record with the nomination
// window cleared, so the copy never opens by accident before the admin
// sets fresh dates. The class list is copied with enablement intact.
func (s *EventService) Duplicate(ctx context.Context, eventID int) (*models.Event, error) {
	src, err := s.repo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to load event: %w", err)
	}

	dup := *src
	dup.ID = 0
	dup.Name = src.Name + " (copy)"
	dup.NominationsOpen = nil
	dup.NominationsClose = nil
	dup.Track = nil
	dup.Classes = nil

	if err := s.repo.Create(ctx, &dup); err != nil {
		return nil, fmt.Errorf("failed to duplicate event: %w", err)
	}

	srcClasses, err := s.classRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load event classes: %w", err)
	}
	copied := classlist.New(dup.ID, srcClasses)
	entries := copied.Entries()
	for i := range entries {
		entries[i].EventID = dup.ID
	}
	if err := s.classRepo.UpsertForEvent(ctx, dup.ID, entries); err != nil {
		return nil, fmt.Errorf("failed to copy event classes: %w", err)
	}
	return &dup, nil
}

func (s *EventService) GetByID(ctx context.Context, id int) (*models.Event, error) {
	ev, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to load event: %w", err)
	}
	s.decorate(ev)
	return ev, nil
}

// Listing is a filtered, sorted, grouped view over a club's events.
type Listing struct {
	Upcoming []events.MonthGroup `json:"upcoming"`
	Past     []events.MonthGroup `json:"past"`
}

// List applies the search/filter/sort parameters and groups the result
// by year and month, split into upcoming and past.
func (s *EventService) List(ctx context.Context, clubID int, filter events.Filter, asc bool) (*Listing, error) {
	all, err := s.repo.ListByClub(ctx, clubID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	for i := range all {
		s.decorate(&all[i])
	}

	now := s.now()
	filtered := filter.Apply(all, now)
	sorted := events.SortByDate(filtered, asc)
	upcoming, past := events.SplitUpcomingPast(sorted, now)

	return &Listing{
		Upcoming: events.GroupByYearMonth(upcoming),
		Past:     events.GroupByYearMonth(past),
	}, nil
}

// Calendar returns the events of one calendar month.
func (s *EventService) Calendar(ctx context.Context, clubID, year int, month time.Month) ([]models.Event, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Second)
	list, err := s.repo.ListByClubBetween(ctx, clubID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load calendar: %w", err)
	}
	for i := range list {
		s.decorate(&list[i])
	}
	return list, nil
}

// GetClassList loads an event's class list, healed to dense indices.
func (s *EventService) GetClassList(ctx context.Context, eventID int) (*classlist.List, error) {
	rows, err := s.classRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load event classes: %w", err)
	}
	return classlist.New(eventID, rows), nil
}

// SaveClassList persists the full list keyed by (event, class).
func (s *EventService) SaveClassList(ctx context.Context, l *classlist.List) error {
	if err := s.classRepo.UpsertForEvent(ctx, l.EventID, l.Entries()); err != nil {
		return fmt.Errorf("failed to save event classes: %w", err)
	}
	return nil
}

// UploadLogo stores an event image and records its key.
func (s *EventService) UploadLogo(ctx context.Context, eventID int, contentType string, r io.Reader) (string, error) {
	ev, err := s.repo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return "", ErrEventNotFound
		}
		return "", fmt.Errorf("failed to load event: %w", err)
	}

	key := fmt.Sprintf("events/%d/logo-%s", eventID, uuid.NewString())
	result, err := s.uploader.Upload(ctx, key, contentType, r)
	if err != nil {
		return "", fmt.Errorf("failed to upload event logo: %w", err)
	}

	if ev.LogoKey != nil {
		if delErr := s.uploader.Delete(ctx, *ev.LogoKey); delErr != nil {
			s.logger.Warn("failed to delete previous event logo",
				slog.String("key", *ev.LogoKey), slog.Any("error", delErr))
		}
	}

	ev.LogoKey = &result.Key
	if err := s.repo.Update(ctx, ev); err != nil {
		return "", fmt.Errorf("failed to record event logo: %w", err)
	}
	return result.Location, nil
}

// decorate fills derived fields. A logo key that cannot be turned into
// a URL falls back to nothing rather than erroring the whole listing.
func (s *EventService) decorate(ev *models.Event) {
	if ev.LogoKey != nil && *ev.LogoKey != "" {
		url := s.uploader.GetPublicURL(*ev.LogoKey)
		if url != "" {
			ev.LogoURL = &url
		} else {
			s.logger.Warn("event logo key yields no public URL",
				slog.Int("event_id", ev.ID), slog.String("key", *ev.LogoKey))
		}
	}
}

// AutoUpdateNominationPhases recomputes each event's nomination phase
// and broadcasts transitions to the event's live room. Run periodically
// from the scheduler.
func (s *EventService) AutoUpdateNominationPhases(ctx context.Context, clubID int) error {
	list, err := s.repo.ListByClub(ctx, clubID, false)
	if err != nil {
		return fmt.Errorf("failed to list events for phase update: %w", err)
	}

	now := s.now()
	s.phaseMu.Lock()
	defer s.phaseMu.Unlock()

	for i := range list {
		ev := &list[i]
		phase := events.Phase(ev, now)
		if last, ok := s.lastPhases[ev.ID]; ok && last == phase {
			continue
		}
		s.lastPhases[ev.ID] = phase
		s.hub.BroadcastToRoom(eventRoom(ev.ID), "EVENT_PHASE_CHANGED", map[string]interface{}{
			"event_id": ev.ID,
			"phase":    phase,
		})
		s.logger.Info("event nomination phase changed",
			slog.Int("event_id", ev.ID), slog.String("phase", string(phase)))
	}
	return nil
}
