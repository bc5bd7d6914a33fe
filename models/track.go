package models

// Track is a racing surface belonging to a club.
type Track struct {
	ID     int    `json:"id" db:"id"`
	ClubID int    `json:"club_id" db:"club_id"`
	Name   string `json:"name" db:"name"`

	LogoKey *string `json:"-" db:"logo_key"`
	LogoURL *string `json:"logo_url,omitempty" db:"-"`
}

// TrackClass is a class catalog entry: the set of classes a track can
// run, from which an event's class list is seeded.
type TrackClass struct {
	ID        int    `json:"id" db:"id"`
	TrackID   int    `json:"track_id" db:"track_id"`
	ClassName string `json:"class_name" db:"class_name"`
	Price     int    `json:"price" db:"price"`
	SortOrder int    `json:"sort_order" db:"sort_order"`
}
