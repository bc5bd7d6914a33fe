// Package classlist maintains the ordered, toggleable list of race
// classes an event offers. The operations are deliberately independent
// of any drag-and-drop input mechanism; the presentation layer calls
// Reorder with a target position and nothing more.
package classlist

import "github.com/raceclub/portal/models"

// List is an event's class list. Order indices are kept as a dense
// 1..N sequence by every mutating operation.
type List struct {
	EventID int
	entries []models.EventClass
}

// New builds a list from stored rows, sorting by order index and
// renumbering so a gappy sequence from the store heals on load.
func New(eventID int, rows []models.EventClass) *List {
	l := &List{EventID: eventID, entries: make([]models.EventClass, len(rows))}
	copy(l.entries, rows)
	for i := 1; i < len(l.entries); i++ {
		for j := i; j > 0 && l.entries[j].OrderIndex < l.entries[j-1].OrderIndex; j-- {
			l.entries[j], l.entries[j-1] = l.entries[j-1], l.entries[j]
		}
	}
	l.renumber()
	return l
}

// SeedFromCatalog builds a fresh list for a new event from the track's
// class catalog: one entry per catalog class, all disabled, in catalog
// order.
func SeedFromCatalog(eventID int, catalog []models.TrackClass) *List {
	l := &List{EventID: eventID}
	for i, tc := range catalog {
		l.entries = append(l.entries, models.EventClass{
			EventID:    eventID,
			ClassID:    tc.ID,
			ClassName:  tc.ClassName,
			Price:      tc.Price,
			Enabled:    false,
			OrderIndex: i + 1,
		})
	}
	return l
}

// Entries returns a copy of the list in order.
func (l *List) Entries() []models.EventClass {
	out := make([]models.EventClass, len(l.entries))
	copy(out, l.entries)
	return out
}

// Enabled returns the enabled entries in order.
func (l *List) Enabled() []models.EventClass {
	var out []models.EventClass
	for _, e := range l.entries {
		if e.Enabled {
			out = append(out, e)
		}
	}
	return out
}

func (l *List) Len() int { return len(l.entries) }

// ToggleEnabled flips the enabled flag of exactly one entry. Order is
// untouched. Unknown ids are ignored.
func (l *List) ToggleEnabled(classID int) {
	for i := range l.entries {
		if l.entries[i].ClassID == classID {
			l.entries[i].Enabled = !l.entries[i].Enabled
			return
		}
	}
}

// Reorder moves the entry with movedID to newPosition (1-based) and
// renumbers the whole list densely. Positions outside 1..N are clamped.
// Moving to the current position, or moving an unknown id, is a no-op.
func (l *List) Reorder(movedID, newPosition int) {
	from := -1
	for i := range l.entries {
		if l.entries[i].ClassID == movedID {
			from = i
			break
		}
	}
	if from == -1 {
		return
	}

	if newPosition < 1 {
		newPosition = 1
	}
	if newPosition > len(l.entries) {
		newPosition = len(l.entries)
	}
	to := newPosition - 1
	if to == from {
		return
	}

	moved := l.entries[from]
	l.entries = append(l.entries[:from], l.entries[from+1:]...)
	l.entries = append(l.entries[:to], append([]models.EventClass{moved}, l.entries[to:]...)...)
	l.renumber()
}

func (l *List) renumber() {
	for i := range l.entries {
		l.entries[i].OrderIndex = i + 1
	}
}
