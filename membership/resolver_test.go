package membership

import (
	"testing"
	"time"

	"github.com/raceclub/portal/models"
)

func strptr(s string) *string { return &s }

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestResolve_NilRecord(t *testing.T) {
	st := Resolve(nil, testNow)
	if st.Kind != StateNone {
		t.Fatalf("Kind: got %q, want %q", st.Kind, StateNone)
	}
}

func TestResolve_ActiveFamily(t *testing.T) {
	rec := &models.Membership{
		Type:    "family",
		Status:  "active",
		EndDate: strptr("2099-01-01"),
	}
	st := Resolve(rec, testNow)

	if st.Kind != StateActive {
		t.Fatalf("Kind: got %q, want %q", st.Kind, StateActive)
	}
	if !st.IsFamily() {
		t.Error("expected IsFamily to be true")
	}
	if !st.CanAddDrivers() {
		t.Error("expected CanAddDrivers to be true for active family")
	}
	if st.ValidUntil.Year() != 2099 {
		t.Errorf("ValidUntil: got %v", st.ValidUntil)
	}
}

func TestResolve_NormalizesStoredStrings(t *testing.T) {
	rec := &models.Membership{
		Type:    "  Family ",
		Status:  " ACTIVE ",
		EndDate: strptr("2099-01-01"),
	}
	st := Resolve(rec, testNow)
	if st.Kind != StateActive || !st.IsFamily() {
		t.Fatalf("got kind=%q type=%q", st.Kind, st.Type)
	}
}

func TestResolve_Expired(t *testing.T) {
	rec := &models.Membership{
		Type:    "single",
		Status:  "active",
		EndDate: strptr("2024-01-01"),
	}
	st := Resolve(rec, testNow)

	if st.Kind != StateExpired {
		t.Fatalf("Kind: got %q, want %q", st.Kind, StateExpired)
	}
	if !st.ExpiredOn.Before(testNow) {
		t.Error("ExpiredOn must be before now for expired memberships")
	}
	if st.CanAddDrivers() {
		t.Error("expired membership must not allow adding drivers")
	}
}

func TestResolve_EndDateBoundaryIsInclusive(t *testing.T) {
	rec := &models.Membership{
		Type:    "single",
		Status:  "active",
		EndDate: strptr(testNow.Format(time.RFC3339)),
	}
	st := Resolve(rec, testNow)
	if st.Kind != StateActive {
		t.Fatalf("end date equal to now should still be active, got %q", st.Kind)
	}
}

func TestResolve_NeverActiveAndExpired(t *testing.T) {
	dates := []string{"2024-01-01", "2025-06-01T12:00:00Z", "2099-01-01", "garbage", ""}
	statuses := []string{"active", "expired", ""}
	for _, d := range dates {
		for _, s := range statuses {
			st := Resolve(&models.Membership{Type: "single", Status: s, EndDate: strptr(d)}, testNow)
			switch st.Kind {
			case StateActive:
				if st.ValidUntil.Before(testNow) {
					t.Errorf("active with end date %q before now (status %q)", d, s)
				}
			case StateExpired:
				if !st.ExpiredOn.Before(testNow) {
					t.Errorf("expired with end date %q not before now (status %q)", d, s)
				}
			}
		}
	}
}

func TestResolve_MalformedEndDateFailsSafe(t *testing.T) {
	rec := &models.Membership{
		Type:    "family",
		Status:  "active",
		EndDate: strptr("not-a-date"),
	}
	st := Resolve(rec, testNow)

	if st.Kind != StateNone {
		t.Fatalf("Kind: got %q, want %q", st.Kind, StateNone)
	}
	if st.Warning == "" {
		t.Error("expected a Warning for an unparseable end date")
	}
}

func TestResolve_MissingEndDate(t *testing.T) {
	st := Resolve(&models.Membership{Type: "junior", Status: "active"}, testNow)
	if st.Kind != StateNone {
		t.Fatalf("Kind: got %q, want %q", st.Kind, StateNone)
	}
}

func TestResolve_FutureEndDateInactiveStatus(t *testing.T) {
	rec := &models.Membership{
		Type:    "single",
		Status:  "pending",
		EndDate: strptr("2099-01-01"),
	}
	st := Resolve(rec, testNow)
	if st.Kind != StateNone {
		t.Fatalf("Kind: got %q, want %q", st.Kind, StateNone)
	}
}

func TestUnknown_DistinctFromNone(t *testing.T) {
	if Unknown().Kind == StateNone {
		t.Fatal("unknown state must not collapse into none")
	}
	if Unknown().CanAddDrivers() {
		t.Fatal("unknown state must not grant capabilities")
	}
}
