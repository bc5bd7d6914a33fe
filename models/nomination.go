package models

import "time"

// Nomination is one driver's entry into an event: a required first
// class, an optional second class, and an optional preference class
// that carries no fee and no guaranteed admission. AttemptID is the
// client-side correlation id written alongside the row so a retried
// submit can be tied back to an insert that already landed.
type Nomination struct {
	ID                int       `json:"id" db:"id"`
	EventID           int       `json:"event_id" db:"event_id"`
	DriverID          int       `json:"driver_id" db:"driver_id"`
	Class1ID          int       `json:"class_1_id" db:"class_1_id"`
	Class2ID          *int      `json:"class_2_id,omitempty" db:"class_2_id"`
	PreferenceClassID *int      `json:"preference_class_id,omitempty" db:"preference_class_id"`
	AttemptID         string    `json:"attempt_id" db:"attempt_id"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`

	Driver *Driver `json:"driver,omitempty" db:"-"`
}
