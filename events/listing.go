package events

import (
	"sort"
	"strings"
	"time"

	"github.com/raceclub/portal/models"
)

// Filter narrows an event listing. Zero values mean "no filter".
type Filter struct {
	Search string
	Track  string           // matches track name, case-insensitive substring
	Type   models.EventType // race / practice / meeting
	Status string           // "open" or "closed" against the nomination window
}

// Apply returns the events matching f at instant now, in input order.
func (f Filter) Apply(list []models.Event, now time.Time) []models.Event {
	q := strings.ToLower(strings.TrimSpace(f.Search))
	track := strings.ToLower(strings.TrimSpace(f.Track))

	out := make([]models.Event, 0, len(list))
	for i := range list {
		ev := &list[i]
		if q != "" && !matchesSearch(ev, q) {
			continue
		}
		if track != "" && !strings.Contains(strings.ToLower(trackName(ev)), track) {
			continue
		}
		if f.Type != "" && ev.Type != f.Type {
			continue
		}
		if f.Status != "" {
			open := NominationsOpen(ev, now)
			if f.Status == "open" && !open {
				continue
			}
			if f.Status == "closed" && open {
				continue
			}
		}
		out = append(out, *ev)
	}
	return out
}

func matchesSearch(ev *models.Event, q string) bool {
	if strings.Contains(strings.ToLower(ev.Name), q) {
		return true
	}
	if ev.Description != nil && strings.Contains(strings.ToLower(*ev.Description), q) {
		return true
	}
	return strings.Contains(strings.ToLower(trackName(ev)), q)
}

func trackName(ev *models.Event) string {
	if ev.Track == nil {
		return ""
	}
	return ev.Track.Name
}

// SortByDate returns a copy of list sorted by event date. Descending
// when asc is false. The sort is stable so same-day events keep their
// listing order.
func SortByDate(list []models.Event, asc bool) []models.Event {
	out := make([]models.Event, len(list))
	copy(out, list)
	sort.SliceStable(out, func(i, j int) bool {
		if asc {
			return out[i].EventDate.Before(out[j].EventDate)
		}
		return out[i].EventDate.After(out[j].EventDate)
	})
	return out
}

// SplitUpcomingPast partitions list around now. Events on the boundary
// count as upcoming.
func SplitUpcomingPast(list []models.Event, now time.Time) (upcoming, past []models.Event) {
	for _, ev := range list {
		if ev.EventDate.Before(now) {
			past = append(past, ev)
		} else {
			upcoming = append(upcoming, ev)
		}
	}
	return upcoming, past
}

// MonthGroup is one year-month bucket of a grouped listing.
type MonthGroup struct {
	Year   int             `json:"year"`
	Month  time.Month      `json:"month"`
	Events []models.Event  `json:"events"`
}

// GroupByYearMonth buckets events by calendar year and month, in the
// order they first appear in list.
func GroupByYearMonth(list []models.Event) []MonthGroup {
	var groups []MonthGroup
	index := make(map[[2]int]int)
	for _, ev := range list {
		key := [2]int{ev.EventDate.Year(), int(ev.EventDate.Month())}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, MonthGroup{Year: key[0], Month: time.Month(key[1])})
		}
		groups[i].Events = append(groups[i].Events, ev)
	}
	return groups
}
