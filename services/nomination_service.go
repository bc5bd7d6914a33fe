package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/raceclub/portal/events"
	"github.com/raceclub/portal/membership"
	"github.com/raceclub/portal/models"
	"github.com/raceclub/portal/repositories"
)

// Broadcaster pushes live updates to connected clients. Implemented by
// the websocket hub; a no-op stand-in is fine for tests.
type Broadcaster interface {
	BroadcastToRoom(room string, messageType string, payload interface{})
}

// WorkflowState is the phase a nomination workflow instance is in.
type WorkflowState string

const (
	StateSelectingDriver  WorkflowState = "selecting_driver"
	StateSelectingClasses WorkflowState = "selecting_classes"
	StateSubmitting       WorkflowState = "submitting"
	StateConfirmed        WorkflowState = "confirmed"
	StateFailed           WorkflowState = "failed"
)

// NominationService creates nomination workflows and persists their
// outcome. Nothing is stored until a workflow's final Submit; abandoning
// a workflow mid-way leaves no partial record.
type NominationService struct {
	nominationRepo repositories.NominationRepository
	eventRepo      repositories.EventRepository
	classRepo      repositories.EventClassRepository
	driverRepo     repositories.DriverRepository
	hub            Broadcaster
	logger         *slog.Logger
	now            func() time.Time
}

func NewNominationService(
	nominationRepo repositories.NominationRepository,
	eventRepo repositories.EventRepository,
	classRepo repositories.EventClassRepository,
	driverRepo repositories.DriverRepository,
	hub Broadcaster,
	logger *slog.Logger,
) *NominationService {
	return &NominationService{
		nominationRepo: nominationRepo,
		eventRepo:      eventRepo,
		classRepo:      classRepo,
		driverRepo:     driverRepo,
		hub:            hub,
		logger:         logger,
		now:            time.Now,
	}
}

// NominationWorkflow walks one driver's entry into one event:
// SelectingDriver -> SelectingClasses -> Submitting -> Confirmed/Failed.
// Class selections are mutated under a single lock so a change to the
// first class and the clearing of a now-conflicting second/preference
// class are observed together, never as an intermediate invalid state.
type NominationWorkflow struct {
	svc *NominationService

	Event   *models.Event
	Classes []models.EventClass // enabled classes, in order
	Drivers []models.Driver

	mu         sync.Mutex
	state      WorkflowState
	driver     *models.Driver
	class1     *int
	class2     *int
	preference *int
	attemptID  string
	createdID  int
}

// StartEntry loads everything the workflow needs in parallel and checks
// the entry guards: the nomination window must be open and, for
// members-only events, the caller must hold an active membership.
func (s *NominationService) StartEntry(ctx context.Context, eventID, userID int, memberState membership.State) (*NominationWorkflow, error) {
	var (
		ev      *models.Event
		classes []models.EventClass
		drivers []models.Driver
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		ev, err = s.eventRepo.GetByID(gctx, eventID)
		if errors.Is(err, repositories.ErrEventNotFound) {
			return ErrEventNotFound
		}
		return err
	})
	g.Go(func() error {
		var err error
		classes, err = s.classRepo.ListByEvent(gctx, eventID)
		return err
	})
	g.Go(func() error {
		var err error
		drivers, err = s.driverRepo.ListByUser(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if !events.NominationsOpen(ev, s.now()) {
		return nil, ErrNominationsClosed
	}
	if ev.MembersOnly && !memberState.IsActive() {
		return nil, ErrMembersOnlyEvent
	}

	enabled := make([]models.EventClass, 0, len(classes))
	for _, ec := range classes {
		if ec.Enabled {
			enabled = append(enabled, ec)
		}
	}

	return &NominationWorkflow{
		svc:       s,
		Event:     ev,
		Classes:   enabled,
		Drivers:   drivers,
		state:     StateSelectingDriver,
		attemptID: uuid.NewString(),
	}, nil
}

func (w *NominationWorkflow) State() WorkflowState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// AttemptID is the correlation id written with the nomination row.
func (w *NominationWorkflow) AttemptID() string { return w.attemptID }

// SetAttemptID replaces the generated attempt id with one the client
// obtained earlier, so a resubmit over a new workflow instance is still
// recognised as the same attempt. Ignored once submission has started.
func (w *NominationWorkflow) SetAttemptID(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if id == "" || w.state == StateSubmitting || w.state == StateConfirmed {
		return
	}
	w.attemptID = id
}

// CreatedID returns the persisted nomination id after Confirmed.
func (w *NominationWorkflow) CreatedID() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.createdID
}

// SelectDriver picks exactly one nominee from the household and moves
// the workflow to class selection.
func (w *NominationWorkflow) SelectDriver(driverID int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateSelectingDriver && w.state != StateSelectingClasses {
		return ErrWorkflowNotSubmittable
	}
	for i := range w.Drivers {
		if w.Drivers[i].ID == driverID {
			w.driver = &w.Drivers[i]
			w.state = StateSelectingClasses
			return nil
		}
	}
	return ErrDriverNotInHousehold
}

func (w *NominationWorkflow) offered(classID int) bool {
	for _, ec := range w.Classes {
		if ec.ClassID == classID {
			return true
		}
	}
	return false
}

// SelectClass1 sets the required first class. Any second or preference
// selection that now equals the first class is cleared in the same
// critical section.
func (w *NominationWorkflow) SelectClass1(classID int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateSelectingClasses {
		return ErrDriverNotSelected
	}
	if !w.offered(classID) {
		return ErrClassNotOffered
	}

	w.class1 = &classID
	if w.class2 != nil && *w.class2 == classID {
		w.class2 = nil
	}
	if w.preference != nil && *w.preference == classID {
		w.preference = nil
	}
	return nil
}

// SelectClass2 sets the optional second class; 0 clears it. The second
// class must differ from the first, and the event's class limit must
// allow a second paid entry.
func (w *NominationWorkflow) SelectClass2(classID int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateSelectingClasses {
		return ErrDriverNotSelected
	}
	if classID == 0 {
		w.class2 = nil
		return nil
	}
	if w.Event.ClassLimit > 0 && w.Event.ClassLimit < 2 {
		return ErrClassNotOffered
	}
	if !w.offered(classID) {
		return ErrClassNotOffered
	}
	if w.class1 != nil && *w.class1 == classID {
		return ErrDuplicateClassSelection
	}

	w.class2 = &classID
	if w.preference != nil && *w.preference == classID {
		w.preference = nil
	}
	return nil
}

// SelectPreference sets the optional non-guaranteed preference class;
// 0 clears it. It carries no fee and must differ from both paid picks.
func (w *NominationWorkflow) SelectPreference(classID int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateSelectingClasses {
		return ErrDriverNotSelected
	}
	if classID == 0 {
		w.preference = nil
		return nil
	}
	if !w.Event.PreferenceEnabled {
		return ErrPreferenceDisabled
	}
	if !w.offered(classID) {
		return ErrClassNotOffered
	}
	if (w.class1 != nil && *w.class1 == classID) || (w.class2 != nil && *w.class2 == classID) {
		return ErrDuplicateClassSelection
	}

	w.preference = &classID
	return nil
}

// Class2Options lists the classes offered for the second slot: every
// enabled class except the current first pick.
func (w *NominationWorkflow) Class2Options() []models.EventClass {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.optionsExcluding(w.class1)
}

// PreferenceOptions lists the classes offered for the preference slot:
// every enabled class except both paid picks.
func (w *NominationWorkflow) PreferenceOptions() []models.EventClass {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.optionsExcluding(w.class1, w.class2)
}

func (w *NominationWorkflow) optionsExcluding(exclude ...*int) []models.EventClass {
	out := make([]models.EventClass, 0, len(w.Classes))
	for _, ec := range w.Classes {
		skip := false
		for _, ex := range exclude {
			if ex != nil && *ex == ec.ClassID {
				skip = true
				break
			}
		}
		if !skip {
			out = append(out, ec)
		}
	}
	return out
}

// Selection reports the current picks: class1 is 0 when unset.
func (w *NominationWorkflow) Selection() (class1 int, class2, preference *int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.class1 != nil {
		class1 = *w.class1
	}
	return class1, w.class2, w.preference
}

// Submit validates the selection and persists the nomination. All
// validation happens before any store call. On a store failure the
// workflow drops back to SelectingClasses with its selection intact, so
// a retry needs no re-entry. A uniqueness conflict whose surviving row
// carries this workflow's attempt id means an earlier submit actually
// landed; that retry confirms instead of failing.
func (w *NominationWorkflow) Submit(ctx context.Context) (*models.Nomination, error) {
	w.mu.Lock()

	if w.state != StateSelectingClasses {
		w.mu.Unlock()
		return nil, ErrWorkflowNotSubmittable
	}
	if w.driver == nil {
		w.mu.Unlock()
		return nil, ErrDriverNotSelected
	}
	if w.class1 == nil {
		w.mu.Unlock()
		return nil, ErrClass1Required
	}
	if w.class2 != nil && *w.class2 == *w.class1 {
		w.mu.Unlock()
		return nil, ErrDuplicateClassSelection
	}
	if w.preference != nil && (*w.preference == *w.class1 || (w.class2 != nil && *w.preference == *w.class2)) {
		w.mu.Unlock()
		return nil, ErrDuplicateClassSelection
	}

	n := &models.Nomination{
		EventID:           w.Event.ID,
		DriverID:          w.driver.ID,
		Class1ID:          *w.class1,
		Class2ID:          w.class2,
		PreferenceClassID: w.preference,
		AttemptID:         w.attemptID,
	}
	w.state = StateSubmitting
	w.mu.Unlock()

	err := w.svc.nominationRepo.Create(ctx, n)
	if err != nil {
		if errors.Is(err, repositories.ErrNominationConflict) {
			if prior, lookupErr := w.svc.nominationRepo.FindByAttemptID(ctx, w.attemptID); lookupErr == nil {
				w.confirm(prior.ID)
				return prior, nil
			}
			w.fail()
			return nil, ErrNominationConflict
		}
		w.fail()
		return nil, fmt.Errorf("failed to submit nomination: %w", err)
	}

	w.confirm(n.ID)
	w.svc.hub.BroadcastToRoom(eventRoom(w.Event.ID), "NOMINATION_CREATED", n)
	w.svc.logger.Info("nomination submitted",
		slog.Int("event_id", n.EventID),
		slog.Int("driver_id", n.DriverID),
		slog.Int("nomination_id", n.ID))
	return n, nil
}

func (w *NominationWorkflow) confirm(id int) {
	w.mu.Lock()
	w.createdID = id
	w.state = StateConfirmed
	w.mu.Unlock()
}

// fail records the failure and immediately re-opens class selection so
// the caller can retry without rebuilding the workflow.
func (w *NominationWorkflow) fail() {
	w.mu.Lock()
	w.state = StateSelectingClasses
	w.mu.Unlock()
}

func eventRoom(eventID int) string {
	return fmt.Sprintf("event:%d", eventID)
}

// ListByEvent returns an event's nominations with their drivers.
func (s *NominationService) ListByEvent(ctx context.Context, eventID int) ([]models.Nomination, error) {
	return s.nominationRepo.ListByEvent(ctx, eventID)
}

// GetByID returns one nomination.
func (s *NominationService) GetByID(ctx context.Context, id int) (*models.Nomination, error) {
	n, err := s.nominationRepo.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNominationNotFound) {
		return nil, ErrNotFound
	}
	return n, err
}
