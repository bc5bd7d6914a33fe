package models

import "time"

// EventType mirrors the ENUM in the DB.
type EventType string

const (
	EventRace     EventType = "race"
	EventPractice EventType = "practice"
	EventMeeting  EventType = "meeting"
)

// NominationPhase is derived from the nomination window, never stored
// directly; the scheduler recomputes it and broadcasts transitions.
type NominationPhase string

const (
	PhaseUpcoming NominationPhase = "upcoming"
	PhaseOpen     NominationPhase = "open"
	PhaseClosed   NominationPhase = "closed"
)

type Event struct {
	ID               int        `json:"id" db:"id"`
	ClubID           int        `json:"club_id" db:"club_id"`
	Name             string     `json:"name" db:"name"`
	Description      *string    `json:"description,omitempty" db:"description"`
	EventDate        time.Time  `json:"event_date" db:"event_date"`
	Type             EventType  `json:"type" db:"type"`
	TrackID          *int       `json:"track_id,omitempty" db:"track_id"`
	NominationsOpen  *time.Time `json:"nominations_open,omitempty" db:"nominations_open"`
	NominationsClose *time.Time `json:"nominations_close,omitempty" db:"nominations_close"`
	MemberPrice      int        `json:"member_price" db:"member_price"`
	NonMemberPrice   int        `json:"non_member_price" db:"non_member_price"`
	JuniorPrice      int        `json:"junior_price" db:"junior_price"`
	MembersOnly      bool       `json:"members_only" db:"members_only"`
	PreferenceEnabled bool      `json:"preference_enabled" db:"preference_enabled"`
	ClassLimit       int        `json:"class_limit" db:"class_limit"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	LogoKey          *string    `json:"-" db:"logo_key"`
	LogoURL          *string    `json:"logo_url,omitempty" db:"-"`

	// Optional related entities, loaded on demand.
	Track   *Track       `json:"track,omitempty" db:"-"`
	Classes []EventClass `json:"classes,omitempty" db:"-"`
}

// EventClass is one race class offered by an event. Order indices are a
// dense 1..N sequence within the event; identity never changes on reorder.
type EventClass struct {
	EventID    int    `json:"event_id" db:"event_id"`
	ClassID    int    `json:"class_id" db:"class_id"`
	ClassName  string `json:"class_name" db:"class_name"`
	Price      int    `json:"price" db:"price"`
	Enabled    bool   `json:"enabled" db:"enabled"`
	OrderIndex int    `json:"order_index" db:"order_index"`
}
