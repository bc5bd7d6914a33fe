package events

import (
	"testing"
	"time"

	"github.com/raceclub/portal/models"
)

func sampleEvents() []models.Event {
	return []models.Event{
		{
			ID:              1,
			Name:            "Summer Cup Round 1",
			EventDate:       at("2025-07-05T09:00:00Z"),
			Type:            models.EventRace,
			Track:           &models.Track{Name: "Dirt Track"},
			NominationsOpen: ts("2025-06-01T00:00:00Z"),
		},
		{
			ID:        2,
			Name:      "Club Practice",
			EventDate: at("2025-07-12T09:00:00Z"),
			Type:      models.EventPractice,
			Track:     &models.Track{Name: "SIC Surface"},
		},
		{
			ID:        3,
			Name:      "AGM",
			EventDate: at("2025-08-20T18:00:00Z"),
			Type:      models.EventMeeting,
		},
		{
			ID:        4,
			Name:      "Winter Cup Final",
			EventDate: at("2024-11-02T09:00:00Z"),
			Type:      models.EventRace,
			Track:     &models.Track{Name: "Dirt Track"},
		},
	}
}

var listingNow = at("2025-06-15T00:00:00Z")

func ids(list []models.Event) []int {
	out := make([]int, len(list))
	for i, ev := range list {
		out[i] = ev.ID
	}
	return out
}

func TestFilter_Search(t *testing.T) {
	got := Filter{Search: "cup"}.Apply(sampleEvents(), listingNow)
	if len(got) != 2 || got[0].ID != 1 || got[1].ID != 4 {
		t.Fatalf("search 'cup': got %v", ids(got))
	}

	// Track names are searchable too.
	got = Filter{Search: "sic"}.Apply(sampleEvents(), listingNow)
	if len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("search 'sic': got %v", ids(got))
	}
}

func TestFilter_TrackAndType(t *testing.T) {
	got := Filter{Track: "dirt"}.Apply(sampleEvents(), listingNow)
	if len(got) != 2 {
		t.Fatalf("track filter: got %v", ids(got))
	}

	got = Filter{Type: models.EventMeeting}.Apply(sampleEvents(), listingNow)
	if len(got) != 1 || got[0].ID != 3 {
		t.Fatalf("type filter: got %v", ids(got))
	}
}

func TestFilter_Status(t *testing.T) {
	open := Filter{Status: "open"}.Apply(sampleEvents(), listingNow)
	if len(open) != 1 || open[0].ID != 1 {
		t.Fatalf("open filter: got %v", ids(open))
	}
	closed := Filter{Status: "closed"}.Apply(sampleEvents(), listingNow)
	if len(closed) != 3 {
		t.Fatalf("closed filter: got %v", ids(closed))
	}
}

func TestSortByDate(t *testing.T) {
	asc := SortByDate(sampleEvents(), true)
	if got := ids(asc); got[0] != 4 || got[3] != 3 {
		t.Fatalf("asc sort: got %v", got)
	}
	desc := SortByDate(sampleEvents(), false)
	if got := ids(desc); got[0] != 3 || got[3] != 4 {
		t.Fatalf("desc sort: got %v", got)
	}
}

func TestSplitUpcomingPast(t *testing.T) {
	upcoming, past := SplitUpcomingPast(sampleEvents(), listingNow)
	if len(upcoming) != 3 || len(past) != 1 || past[0].ID != 4 {
		t.Fatalf("split: upcoming=%v past=%v", ids(upcoming), ids(past))
	}
}

func TestGroupByYearMonth(t *testing.T) {
	sorted := SortByDate(sampleEvents(), true)
	groups := GroupByYearMonth(sorted)

	if len(groups) != 3 {
		t.Fatalf("groups: got %d, want 3", len(groups))
	}
	if groups[0].Year != 2024 || groups[0].Month != time.November {
		t.Errorf("first group: got %d-%s", groups[0].Year, groups[0].Month)
	}
	if groups[1].Year != 2025 || groups[1].Month != time.July || len(groups[1].Events) != 2 {
		t.Errorf("second group: got %d-%s with %d events", groups[1].Year, groups[1].Month, len(groups[1].Events))
	}
}
