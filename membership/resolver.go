// Package membership classifies a stored household membership record
// into a validated state exactly once, at the boundary, instead of
// re-deriving booleans from raw strings at every call site.
package membership

import (
	"strings"
	"time"

	"github.com/raceclub/portal/models"
)

type StateKind string

const (
	// StateUnknown means the backing fetch has not completed or failed.
	// Callers must not treat it as StateNone.
	StateUnknown StateKind = "unknown"
	StateNone    StateKind = "none"
	StateActive  StateKind = "active"
	StateExpired StateKind = "expired"
)

// State is the resolved membership state plus capability flags.
type State struct {
	Kind StateKind
	Type models.MembershipType

	// ValidUntil is set for StateActive, ExpiredOn for StateExpired.
	ValidUntil time.Time
	ExpiredOn  time.Time

	// Warning is set when a malformed record was resolved to a safe
	// default; the caller is expected to log it.
	Warning string
}

func (s State) IsActive() bool  { return s.Kind == StateActive }
func (s State) IsExpired() bool { return s.Kind == StateExpired }
func (s State) IsJunior() bool  { return s.Type == models.MembershipJunior }
func (s State) IsSingle() bool  { return s.Type == models.MembershipSingle }
func (s State) IsFamily() bool  { return s.Type == models.MembershipFamily }

// CanAddDrivers reports whether the household may link additional
// drivers: family tier with a current membership.
func (s State) CanAddDrivers() bool { return s.Kind == StateActive && s.IsFamily() }

// Unknown is the state a session snapshot carries before the membership
// fetch has succeeded.
func Unknown() State { return State{Kind: StateUnknown} }

// Resolve classifies rec at instant now. A nil record resolves to
// StateNone. Stored type and status strings are case-folded and
// trimmed; an unparseable end date resolves to StateNone with a
// Warning rather than panicking, on the grounds that the safer reading
// of a corrupt record is the more restrictive one.
func Resolve(rec *models.Membership, now time.Time) State {
	if rec == nil {
		return State{Kind: StateNone}
	}

	typ := normalizeType(rec.Type)
	status := strings.ToLower(strings.TrimSpace(rec.Status))

	if rec.EndDate == nil || strings.TrimSpace(*rec.EndDate) == "" {
		return State{Kind: StateNone, Type: typ, Warning: "membership record has no end date"}
	}

	end, ok := parseEndDate(*rec.EndDate)
	if !ok {
		return State{Kind: StateNone, Type: typ, Warning: "membership end date is unparseable: " + *rec.EndDate}
	}

	if status == "active" && !end.Before(now) {
		return State{Kind: StateActive, Type: typ, ValidUntil: end}
	}
	if end.Before(now) {
		return State{Kind: StateExpired, Type: typ, ExpiredOn: end}
	}
	// End date is in the future but the status flag is not active:
	// the record is not usable for member-gated actions.
	return State{Kind: StateNone, Type: typ}
}

func normalizeType(raw string) models.MembershipType {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "junior":
		return models.MembershipJunior
	case "single":
		return models.MembershipSingle
	case "family":
		return models.MembershipFamily
	default:
		return ""
	}
}

var endDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseEndDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range endDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
