package models

import "time"

// Driver is a person who can be nominated for an event: the account
// holder, or a family member linked to a family membership.
type Driver struct {
	ID        int       `json:"id" db:"id"`
	UserID    int       `json:"user_id" db:"user_id"`
	FirstName string    `json:"first_name" db:"first_name"`
	LastName  string    `json:"last_name" db:"last_name"`
	Junior    bool      `json:"junior" db:"junior"`
	Self      bool      `json:"self" db:"self"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// DriverNumber is a race number reserved by a user.
type DriverNumber struct {
	ID     int `json:"id" db:"id"`
	UserID int `json:"user_id" db:"user_id"`
	Number int `json:"number" db:"number"`
}
