package schedule

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/javiermolinar/clinicdesk/internal/appointment"
	"github.com/javiermolinar/clinicdesk/internal/dateutil"
)

// ErrInvalidScope is returned by ParseScope for unknown tab names.
var ErrInvalidScope = errors.New("scope must be one of today, upcoming, past, all")

// Scope is the time-period tab of the list view.
type Scope string

const (
	ScopeToday    Scope = "today"
	ScopeUpcoming Scope = "upcoming"
	ScopePast     Scope = "past"
	ScopeAll      Scope = "all"
)

// Scopes lists the tabs in display order.
var Scopes = []Scope{ScopeToday, ScopeUpcoming, ScopePast, ScopeAll}

// ParseScope matches s case-insensitively. Empty means all.
func ParseScope(s string) (Scope, error) {
	switch sc := Scope(strings.ToLower(strings.TrimSpace(s))); sc {
	case "":
		return ScopeAll, nil
	case ScopeToday, ScopeUpcoming, ScopePast, ScopeAll:
		return sc, nil
	default:
		return "", fmt.Errorf("%w: got %q", ErrInvalidScope, s)
	}
}

// Next returns the tab after s, wrapping around.
func (s Scope) Next() Scope {
	i := slices.Index(Scopes, s)
	return Scopes[(i+1)%len(Scopes)]
}

// FilterAll is the inactive value for the status and doctor facets.
const FilterAll = "all"

// FilterState is every facet of the list view filter.
type FilterState struct {
	Scope        Scope
	ExplicitDate *time.Time // overrides Scope when set
	SearchText   string
	Status       string // FilterAll or empty means inactive
	Doctor       string // FilterAll or empty means inactive
}

// DefaultFilter shows today's appointments with no other facet active.
func DefaultFilter() FilterState {
	return FilterState{Scope: ScopeToday, Status: FilterAll, Doctor: FilterAll}
}

func facetActive(v string) bool {
	return v != "" && v != FilterAll
}

// StatusActive reports whether the status facet narrows the list.
func (f FilterState) StatusActive() bool { return facetActive(f.Status) }

// DoctorActive reports whether the doctor facet narrows the list.
func (f FilterState) DoctorActive() bool { return facetActive(f.Doctor) }

// Active reports whether anything beyond the scope tab narrows the list.
func (f FilterState) Active() bool {
	return f.ExplicitDate != nil || f.StatusActive() || f.DoctorActive() || f.Search() != ""
}

// Search returns the trimmed search text.
func (f FilterState) Search() string { return strings.TrimSpace(f.SearchText) }

// Describe renders the active facets for headers and log lines,
// e.g. "date=2025-06-10 status=Confirmed search=\"gupta\"".
func (f FilterState) Describe() string {
	var parts []string
	if f.ExplicitDate != nil {
		parts = append(parts, "date="+dateutil.Key(*f.ExplicitDate))
	} else {
		scope := f.Scope
		if scope == "" {
			scope = ScopeAll
		}
		parts = append(parts, "scope="+string(scope))
	}
	if f.StatusActive() {
		parts = append(parts, "status="+f.Status)
	}
	if f.DoctorActive() {
		parts = append(parts, "doctor="+f.Doctor)
	}
	if s := f.Search(); s != "" {
		parts = append(parts, fmt.Sprintf("search=%q", s))
	}
	return strings.Join(parts, " ")
}

// Filter narrows appts through the scope, status, doctor and search stages,
// in that order. Each stage keeps input order. today is the reference civil day.
func Filter(appts []*appointment.Appointment, f FilterState, today time.Time) []*appointment.Appointment {
	out := make([]*appointment.Appointment, 0, len(appts))
	for _, a := range appts {
		if a == nil {
			continue
		}
		if !inScope(a, f, today) {
			continue
		}
		if f.StatusActive() && string(a.Status) != f.Status {
			continue
		}
		if f.DoctorActive() && a.DoctorName != f.Doctor {
			continue
		}
		if !matchesSearch(a, f.Search()) {
			continue
		}
		out = append(out, a)
	}
	return out
}

func inScope(a *appointment.Appointment, f FilterState, today time.Time) bool {
	if f.ExplicitDate != nil {
		return dateutil.SameDay(a.Date, *f.ExplicitDate)
	}
	switch f.Scope {
	case ScopeToday:
		return dateutil.SameDay(a.Date, today)
	case ScopeUpcoming:
		return dateutil.CompareDays(a.Date, today) >= 0
	case ScopePast:
		return dateutil.CompareDays(a.Date, today) < 0
	default:
		return true
	}
}

func matchesSearch(a *appointment.Appointment, search string) bool {
	if search == "" {
		return true
	}
	needle := strings.ToLower(search)
	return strings.Contains(strings.ToLower(a.PatientName), needle) ||
		strings.Contains(strings.ToLower(a.DoctorName), needle)
}

// Doctors returns the distinct doctor names in appts, sorted.
// It feeds the doctor facet choices.
func Doctors(appts []*appointment.Appointment) []string {
	seen := make(map[string]bool)
	var names []string
	for _, a := range appts {
		if a == nil || seen[a.DoctorName] {
			continue
		}
		seen[a.DoctorName] = true
		names = append(names, a.DoctorName)
	}
	slices.Sort(names)
	return names
}

// NextFacet cycles a facet value through FilterAll followed by choices.
func NextFacet(current string, choices []string) string {
	if !facetActive(current) {
		if len(choices) == 0 {
			return FilterAll
		}
		return choices[0]
	}
	i := slices.Index(choices, current)
	if i < 0 || i == len(choices)-1 {
		return FilterAll
	}
	return choices[i+1]
}
