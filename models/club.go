package models

// Club is the tenant boundary: events, championships and memberships
// all hang off a club, resolved by its URL slug.
type Club struct {
	ID   int    `json:"id" db:"id"`
	Slug string `json:"slug" db:"slug"`
	Name string `json:"name" db:"name"`

	LogoKey *string `json:"-" db:"logo_key"`
	LogoURL *string `json:"logo_url,omitempty" db:"-"`
}
