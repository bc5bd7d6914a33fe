package models

import "time"

// Championship is a season-long points competition over a set of classes.
// Classes and the points table are stored as JSON columns.
type Championship struct {
	ID          int       `json:"id" db:"id"`
	ClubID      int       `json:"club_id" db:"club_id"`
	Name        string    `json:"name" db:"name"`
	Season      string    `json:"season" db:"season"`
	MembersOnly bool      `json:"members_only" db:"members_only"`
	TotalRounds int       `json:"total_rounds" db:"total_rounds"`
	DropRounds  int       `json:"drop_rounds" db:"drop_rounds"`
	Classes     []string  `json:"classes" db:"classes"`
	PointsTable []int64   `json:"points_table" db:"points_table"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
