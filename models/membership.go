package models

import "time"

// MembershipType is the billable household tier, matching the ENUM in the DB.
type MembershipType string

const (
	MembershipJunior MembershipType = "junior"
	MembershipSingle MembershipType = "single"
	MembershipFamily MembershipType = "family"
)

// MembershipPrices is the annual fee per tier. Upgrades charge the difference.
var MembershipPrices = map[MembershipType]int{
	MembershipJunior: 20,
	MembershipSingle: 40,
	MembershipFamily: 60,
}

// Membership is a household membership record as stored. Type, status and
// end date are raw strings from the store; classification happens in the
// membership package, not here.
type Membership struct {
	ID        int       `json:"id" db:"id"`
	UserID    int       `json:"user_id" db:"user_id"`
	ClubID    int       `json:"club_id" db:"club_id"`
	Type      string    `json:"membership_type" db:"membership_type"`
	Status    string    `json:"status" db:"status"`
	StartDate time.Time `json:"start_date" db:"start_date"`
	EndDate   *string   `json:"end_date" db:"end_date"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
