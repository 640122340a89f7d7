package appointment

import (
	"context"
	"time"

	"github.com/javiermolinar/clinicdesk/internal/dateutil"
)

// Query narrows a List call. Zero values mean "no constraint".
type Query struct {
	Date   *time.Time // exact civil day
	Status Status     // exact status
	From   *time.Time // inclusive lower bound
	To     *time.Time // inclusive upper bound
	Doctor string     // exact doctor name
}

// Matches reports whether a satisfies every set constraint.
// Stores use it for filtering they cannot push down, and tests use it as the reference.
func (q Query) Matches(a *Appointment) bool {
	if q.Date != nil && !dateutil.SameDay(a.Date, *q.Date) {
		return false
	}
	if q.Status != "" && a.Status != q.Status {
		return false
	}
	if q.From != nil && dateutil.CompareDays(a.Date, *q.From) < 0 {
		return false
	}
	if q.To != nil && dateutil.CompareDays(a.Date, *q.To) > 0 {
		return false
	}
	if q.Doctor != "" && a.DoctorName != q.Doctor {
		return false
	}
	return true
}

// Repository defines the storage interface for appointments.
// It is the only way appointment data enters or leaves the dashboard.
type Repository interface {
	// List returns the appointments matching q ordered by date then time.
	List(ctx context.Context, q Query) ([]*Appointment, error)

	// Get retrieves an appointment by ID. Returns ErrNotFound if absent.
	Get(ctx context.Context, id string) (*Appointment, error)

	// Create validates and inserts a new appointment.
	// Returns ErrSlotConflict if the doctor is already booked.
	Create(ctx context.Context, in Input) (*Appointment, error)

	// Update replaces every editable field of an appointment.
	Update(ctx context.Context, id string, in Input) (*Appointment, error)

	// UpdateStatus changes only the status and returns the stored record.
	UpdateStatus(ctx context.Context, id string, status Status) (*Appointment, error)

	// Delete removes an appointment. Returns ErrNotFound if absent.
	Delete(ctx context.Context, id string) error

	// Close releases any resources held by the repository.
	Close() error
}

// Preferences persists small user settings such as the first-visit flag.
type Preferences interface {
	// Preference returns the stored value and whether it was set.
	Preference(ctx context.Context, key string) (string, bool, error)

	// SetPreference stores value under key, replacing any previous value.
	SetPreference(ctx context.Context, key, value string) error
}

// PreferenceWelcomeSeen records that the welcome dialog was dismissed.
const PreferenceWelcomeSeen = "welcome_seen"
