// Package events holds the pure event logic shared by the listing
// endpoints and the nomination workflow: the nomination window check
// and the search/filter/sort/group operations.
package events

import (
	"time"

	"github.com/raceclub/portal/models"
)

// NominationsOpen reports whether nominations are open for ev at now.
// Both window boundaries are inclusive. An absent open timestamp means
// the window never opens regardless of other fields. A close timestamp
// before the open timestamp is an admin-side data error; the comparison
// simply yields an empty window.
func NominationsOpen(ev *models.Event, now time.Time) bool {
	if ev == nil || ev.NominationsOpen == nil {
		return false
	}
	if now.Before(*ev.NominationsOpen) {
		return false
	}
	if ev.NominationsClose != nil && now.After(*ev.NominationsClose) {
		return false
	}
	return true
}

// Phase derives the nomination phase from the window.
func Phase(ev *models.Event, now time.Time) models.NominationPhase {
	if NominationsOpen(ev, now) {
		return models.PhaseOpen
	}
	if ev != nil && ev.NominationsOpen != nil && now.Before(*ev.NominationsOpen) {
		return models.PhaseUpcoming
	}
	return models.PhaseClosed
}
