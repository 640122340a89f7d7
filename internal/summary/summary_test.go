package summary

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/javiermolinar/clinicdesk/internal/appointment"
	"github.com/javiermolinar/clinicdesk/internal/dateutil"
)

func fixture() []*appointment.Appointment {
	monday := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)
	return []*appointment.Appointment{
		{ID: "1", DoctorName: "Dr. Rao", Date: monday, Time: "09:00", DurationMinutes: 30, Status: appointment.StatusScheduled, Mode: appointment.ModeInPerson},
		{ID: "2", DoctorName: "Dr. Rao", Date: monday, Time: "10:00", DurationMinutes: 60, Status: appointment.StatusConfirmed, Mode: appointment.ModeOnline},
		{ID: "3", DoctorName: "Dr. Iyer", Date: monday.AddDate(0, 0, 1), Time: "11:00", DurationMinutes: 45, Status: appointment.StatusCancelled, Mode: appointment.ModeInPerson},
		{ID: "4", DoctorName: "Dr. Iyer", Date: monday.AddDate(0, 0, 6), Time: "12:00", DurationMinutes: 60, Status: appointment.StatusCompleted, Mode: appointment.ModeInPerson},
		{ID: "5", DoctorName: "Dr. Rao", Date: monday.AddDate(0, 0, 7), Time: "09:00", DurationMinutes: 30, Status: appointment.StatusScheduled, Mode: appointment.ModeInPerson},
	}
}

func TestCompute(t *testing.T) {
	stats := Compute(append(fixture(), nil))

	if stats.Total != 5 {
		t.Errorf("Total = %d, want 5", stats.Total)
	}
	if stats.Count(appointment.StatusScheduled) != 2 {
		t.Errorf("Scheduled = %d, want 2", stats.Count(appointment.StatusScheduled))
	}
	if stats.Active() != 4 {
		t.Errorf("Active = %d, want 4", stats.Active())
	}
	if stats.Online != 1 || stats.InPerson != 4 {
		t.Errorf("Online/InPerson = %d/%d, want 1/4", stats.Online, stats.InPerson)
	}
	if stats.BookedMinutes != 180 {
		t.Errorf("BookedMinutes = %d, want 180", stats.BookedMinutes)
	}
	if stats.Doctors != 2 {
		t.Errorf("Doctors = %d, want 2", stats.Doctors)
	}
	if got, want := stats.String(), "5 appointments, 1 cancelled, 3h booked"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestCompute_Empty(t *testing.T) {
	stats := Compute(nil)
	if stats.Total != 0 || stats.Count(appointment.StatusScheduled) != 0 {
		t.Errorf("expected zero stats, got %+v", stats)
	}
	if got := stats.String(); got != "0 appointments, 0 cancelled, 0m booked" {
		t.Errorf("String() = %q", got)
	}
}

func TestSummarize_Week(t *testing.T) {
	start, end := dateutil.WeekRange(time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC))
	r := summarize(dateutil.DateRange{Start: start, End: end}, fixture())

	if dateutil.Key(r.Start) != "2025-06-09" || dateutil.Key(r.End) != "2025-06-15" {
		t.Fatalf("range = %s..%s", dateutil.Key(r.Start), dateutil.Key(r.End))
	}
	if len(r.Appointments) != 4 {
		t.Errorf("expected 4 appointments in week, got %d", len(r.Appointments))
	}
	if r.PerDay["2025-06-09"].Total != 2 {
		t.Errorf("expected 2 on Monday, got %d", r.PerDay["2025-06-09"].Total)
	}
	if r.PerDay["2025-06-10"].BookedMinutes != 0 {
		t.Error("cancelled appointments should not add booked minutes")
	}
	if _, ok := r.PerDay["2025-06-16"]; ok {
		t.Error("next week should be excluded")
	}
}

type listRepo struct {
	appointment.Repository
	appts []*appointment.Appointment
	err   error
	got   appointment.Query
}

func (r *listRepo) List(_ context.Context, q appointment.Query) ([]*appointment.Appointment, error) {
	r.got = q
	if r.err != nil {
		return nil, r.err
	}
	var out []*appointment.Appointment
	for _, a := range r.appts {
		if q.Matches(a) {
			out = append(out, a)
		}
	}
	return out, nil
}

func TestBuild(t *testing.T) {
	repo := &listRepo{appts: fixture()}
	rng, err := dateutil.NewDateRange("2025-06-09", "2025-06-10", time.Now())
	if err != nil {
		t.Fatal(err)
	}

	r, err := Build(context.Background(), repo, *rng)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Stats.Total != 3 {
		t.Errorf("Total = %d, want 3", r.Stats.Total)
	}
	if repo.got.From == nil || repo.got.To == nil {
		t.Error("expected range pushed down to the repository")
	}

	repo.err = errors.New("boom")
	if _, err := Build(context.Background(), repo, *rng); err == nil {
		t.Error("expected error from failing repository")
	}
}
