// Package appointment defines the core domain types for clinicdesk.
package appointment

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/javiermolinar/clinicdesk/internal/dateutil"
)

// Validation errors.
var (
	ErrEmptyPatient       = errors.New("patient name cannot be empty")
	ErrEmptyDoctor        = errors.New("doctor name cannot be empty")
	ErrInvalidDateFormat  = dateutil.ErrInvalidDateFormat
	ErrInvalidTimeFormat  = errors.New("time must be in HH:MM format")
	ErrInvalidDuration    = errors.New("duration must be a positive number of minutes")
	ErrInvalidStatus      = errors.New("unknown appointment status")
	ErrInvalidMode        = errors.New("mode must be 'Online' or 'In-Person'")
	ErrOutsideClinicHours = errors.New("appointment starts outside clinic hours")
)

// Domain errors.
var (
	ErrInvalidTransition = errors.New("status transition not allowed")
	ErrSlotConflict      = errors.New("time slot is already booked")
	ErrNotFound          = errors.New("appointment not found")
)

var validationErrors = []error{
	ErrEmptyPatient,
	ErrEmptyDoctor,
	ErrInvalidDateFormat,
	ErrInvalidTimeFormat,
	ErrInvalidDuration,
	ErrInvalidStatus,
	ErrInvalidMode,
	ErrOutsideClinicHours,
}

// IsValidation reports whether err is caused by malformed caller input.
func IsValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Appointment is a single booked visit.
type Appointment struct {
	ID              string
	PatientName     string
	DoctorName      string
	Date            time.Time // civil day, time of day ignored
	Time            string    // "HH:MM" format
	DurationMinutes int
	Status          Status
	Mode            Mode
	Notes           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Input carries the caller-editable fields of an appointment.
// It is the payload for both creation and full edits.
type Input struct {
	PatientName     string
	DoctorName      string
	Date            string // "YYYY-MM-DD"
	Time            string // "HH:MM"
	DurationMinutes int
	Status          Status // empty defaults to Scheduled
	Mode            Mode   // empty defaults to In-Person
	Notes           string
}

// Normalize trims text fields and fills defaults for status and mode.
func (in Input) Normalize() Input {
	in.PatientName = strings.TrimSpace(in.PatientName)
	in.DoctorName = strings.TrimSpace(in.DoctorName)
	in.Date = strings.TrimSpace(in.Date)
	in.Time = strings.TrimSpace(in.Time)
	in.Notes = strings.TrimSpace(in.Notes)
	if in.Status == "" {
		in.Status = StatusScheduled
	}
	if in.Mode == "" {
		in.Mode = ModeInPerson
	}
	return in
}

// Validate checks every field and returns the first validation error.
// Input should be normalized first.
func (in Input) Validate() error {
	if in.PatientName == "" {
		return ErrEmptyPatient
	}
	if in.DoctorName == "" {
		return ErrEmptyDoctor
	}
	if _, err := dateutil.ParseDate(in.Date); err != nil {
		return err
	}
	if err := ValidateTime(in.Time); err != nil {
		return err
	}
	if in.DurationMinutes <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidDuration, in.DurationMinutes)
	}
	if !in.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, in.Status)
	}
	if !in.Mode.Valid() {
		return fmt.Errorf("%w: got %q", ErrInvalidMode, in.Mode)
	}
	return nil
}

// New creates a new Appointment from input with validation.
// The ID is left empty; stores assign it on insert.
func New(in Input, now time.Time) (*Appointment, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	date, _ := dateutil.ParseDate(in.Date)
	return &Appointment{
		PatientName:     in.PatientName,
		DoctorName:      in.DoctorName,
		Date:            date,
		Time:            in.Time,
		DurationMinutes: in.DurationMinutes,
		Status:          in.Status,
		Mode:            in.Mode,
		Notes:           in.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// Apply overwrites the editable fields of a with a validated input.
// Identity and timestamps other than UpdatedAt are preserved.
func (a *Appointment) Apply(in Input, now time.Time) error {
	next, err := New(in, now)
	if err != nil {
		return err
	}
	next.ID = a.ID
	next.CreatedAt = a.CreatedAt
	*a = *next
	return nil
}

// ToInput converts the appointment back into an editable input.
func (a *Appointment) ToInput() Input {
	return Input{
		PatientName:     a.PatientName,
		DoctorName:      a.DoctorName,
		Date:            a.DateKey(),
		Time:            a.Time,
		DurationMinutes: a.DurationMinutes,
		Status:          a.Status,
		Mode:            a.Mode,
		Notes:           a.Notes,
	}
}

// Clone returns a shallow copy that can be mutated independently.
func (a *Appointment) Clone() *Appointment {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}

// DateKey returns the appointment date as YYYY-MM-DD.
func (a *Appointment) DateKey() string {
	return dateutil.Key(a.Date)
}

// StartMinute returns the start as minutes since midnight.
func (a *Appointment) StartMinute() int {
	return TimeToMinutes(a.Time)
}

// EndMinute returns the exclusive end as minutes since midnight.
// It may exceed 24*60 for appointments running past midnight.
func (a *Appointment) EndMinute() int {
	return a.StartMinute() + a.DurationMinutes
}

// EndTime returns the end as "HH:MM", clamped to the same day.
func (a *Appointment) EndTime() string {
	return MinutesToTime(a.EndMinute())
}

// Interval returns the half-open [start, end) minute range of the appointment.
func (a *Appointment) Interval() Interval {
	return Interval{Start: a.StartMinute(), End: a.EndMinute()}
}

// OverlapsWith returns true if this appointment overlaps with another.
// Appointments must be on the same civil day and have intersecting intervals.
func (a *Appointment) OverlapsWith(other *Appointment) bool {
	if other == nil {
		return false
	}
	if !dateutil.SameDay(a.Date, other.Date) {
		return false
	}
	return a.Interval().Overlaps(other.Interval())
}

// IsCancelled returns true if the appointment has cancelled status.
func (a *Appointment) IsCancelled() bool {
	return a.Status == StatusCancelled
}

// IsOnline returns true for remote consultations.
func (a *Appointment) IsOnline() bool {
	return a.Mode == ModeOnline
}

// String renders a compact one-line description used in logs and errors.
func (a *Appointment) String() string {
	return fmt.Sprintf("%s %s-%s %s with %s", a.DateKey(), a.Time, a.EndTime(), a.PatientName, a.DoctorName)
}
