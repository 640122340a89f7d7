package schedule

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/javiermolinar/clinicdesk/internal/appointment"
)

func fixture() []*appointment.Appointment {
	mk := func(id, patient, doctor string, offset int, status appointment.Status) *appointment.Appointment {
		return &appointment.Appointment{
			ID:              id,
			PatientName:     patient,
			DoctorName:      doctor,
			Date:            day.AddDate(0, 0, offset),
			Time:            "10:00",
			DurationMinutes: 30,
			Status:          status,
		}
	}
	return []*appointment.Appointment{
		mk("past", "Meera Nair", "Dr. Sana Iyer", -3, appointment.StatusCompleted),
		mk("today1", "Ravi Kumar", "Dr. Amit Gupta", 0, appointment.StatusScheduled),
		mk("today2", "Gupta Something", "Dr. Sana Iyer", 0, appointment.StatusConfirmed),
		mk("tomorrow", "Leela Das", "Dr. Amit Gupta", 1, appointment.StatusCancelled),
		mk("later", "Omar Sheikh", "Dr. Paul Mathew", 20, appointment.StatusScheduled),
	}
}

func ids(appts []*appointment.Appointment) []string {
	out := make([]string, len(appts))
	for i, a := range appts {
		out[i] = a.ID
	}
	return out
}

func dateptr(t time.Time) *time.Time { return &t }

func TestFilter(t *testing.T) {
	tests := []struct {
		name  string
		state FilterState
		want  []string
	}{
		{
			name:  "today",
			state: FilterState{Scope: ScopeToday},
			want:  []string{"today1", "today2"},
		},
		{
			name:  "upcoming includes today",
			state: FilterState{Scope: ScopeUpcoming},
			want:  []string{"today1", "today2", "tomorrow", "later"},
		},
		{
			name:  "past excludes today",
			state: FilterState{Scope: ScopePast},
			want:  []string{"past"},
		},
		{
			name:  "all",
			state: FilterState{Scope: ScopeAll},
			want:  []string{"past", "today1", "today2", "tomorrow", "later"},
		},
		{
			name:  "explicit date overrides tab",
			state: FilterState{Scope: ScopeToday, ExplicitDate: dateptr(day.AddDate(0, 0, -3))},
			want:  []string{"past"},
		},
		{
			name:  "search matches doctor and patient",
			state: FilterState{Scope: ScopeAll, SearchText: "  gupta "},
			want:  []string{"today1", "today2", "tomorrow"},
		},
		{
			name:  "search is case insensitive",
			state: FilterState{Scope: ScopeAll, SearchText: "OMAR"},
			want:  []string{"later"},
		},
		{
			name:  "status facet",
			state: FilterState{Scope: ScopeUpcoming, Status: "Scheduled"},
			want:  []string{"today1", "later"},
		},
		{
			name:  "status all is inactive",
			state: FilterState{Scope: ScopeToday, Status: FilterAll, Doctor: FilterAll},
			want:  []string{"today1", "today2"},
		},
		{
			name:  "doctor facet",
			state: FilterState{Scope: ScopeAll, Doctor: "Dr. Sana Iyer"},
			want:  []string{"past", "today2"},
		},
		{
			name:  "stages combine",
			state: FilterState{Scope: ScopeUpcoming, Doctor: "Dr. Amit Gupta", Status: "Cancelled", SearchText: "leela"},
			want:  []string{"tomorrow"},
		},
		{
			name:  "nothing matches",
			state: FilterState{Scope: ScopeToday, SearchText: "nobody"},
			want:  []string{},
		},
	}

	appts := fixture()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Filter(appts, tt.state, day))
			if !slices.Equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilter_ReferenceDayIgnoresClock(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	now := time.Date(2025, 6, 10, 23, 59, 0, 0, loc)

	got := ids(Filter(fixture(), FilterState{Scope: ScopeToday}, now))
	if !slices.Equal(got, []string{"today1", "today2"}) {
		t.Errorf("got %v", got)
	}
}

func TestFilter_DoesNotMutateInput(t *testing.T) {
	appts := fixture()
	before := ids(appts)
	_ = Filter(appts, FilterState{Scope: ScopePast}, day)
	if !slices.Equal(ids(appts), before) {
		t.Error("Filter modified its input")
	}
}

func TestParseScope(t *testing.T) {
	tests := []struct {
		in   string
		want Scope
	}{
		{"today", ScopeToday},
		{" Upcoming ", ScopeUpcoming},
		{"PAST", ScopePast},
		{"all", ScopeAll},
		{"", ScopeAll},
	}
	for _, tt := range tests {
		got, err := ParseScope(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseScope(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}

	if _, err := ParseScope("tomorrow"); !errors.Is(err, ErrInvalidScope) {
		t.Errorf("expected ErrInvalidScope, got %v", err)
	}
}

func TestScope_Next(t *testing.T) {
	if ScopeToday.Next() != ScopeUpcoming || ScopeAll.Next() != ScopeToday {
		t.Error("unexpected tab order")
	}
}

func TestFilterState_Describe(t *testing.T) {
	f := DefaultFilter()
	if got := f.Describe(); got != "scope=today" {
		t.Errorf("Describe() = %q", got)
	}

	f.ExplicitDate = dateptr(day)
	f.Status = "Confirmed"
	f.SearchText = " gupta "
	want := `date=2025-06-10 status=Confirmed search="gupta"`
	if got := f.Describe(); got != want {
		t.Errorf("Describe() = %q, want %q", got, want)
	}
}

func TestDoctors(t *testing.T) {
	got := Doctors(fixture())
	want := []string{"Dr. Amit Gupta", "Dr. Paul Mathew", "Dr. Sana Iyer"}
	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestNextFacet(t *testing.T) {
	choices := []string{"a", "b"}
	steps := []string{"a", "b", FilterAll, "a"}
	cur := FilterAll
	for _, want := range steps {
		cur = NextFacet(cur, choices)
		if cur != want {
			t.Fatalf("got %q, want %q", cur, want)
		}
	}
	if NextFacet("gone", choices) != FilterAll {
		t.Error("unknown value should reset to all")
	}
	if NextFacet(FilterAll, nil) != FilterAll {
		t.Error("no choices should stay on all")
	}
}
