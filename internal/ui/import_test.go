package ui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/javiermolinar/clinicdesk/internal/appointment"
	"github.com/javiermolinar/clinicdesk/internal/db"
)

func TestImportAppointments(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	sourcePath := filepath.Join(dir, "source.db")
	destPath := filepath.Join(dir, "dest.db")

	source, err := db.New(sourcePath)
	if err != nil {
		t.Fatalf("creating source store: %v", err)
	}
	for _, in := range []appointment.Input{
		{PatientName: "Ravi Kumar", DoctorName: "Dr. Amit Gupta", Date: "2025-06-10", Time: "09:00", DurationMinutes: 30},
		{PatientName: "Meera Nair", DoctorName: "Dr. Sana Iyer", Date: "2025-06-10", Time: "10:00", DurationMinutes: 45, Mode: appointment.ModeOnline, Notes: "follow-up"},
		{PatientName: "Leela Das", DoctorName: "Dr. Paul Mathew", Date: "2025-06-11", Time: "11:00", DurationMinutes: 30, Status: appointment.StatusConfirmed},
	} {
		if _, err := source.Create(ctx, in); err != nil {
			t.Fatalf("seeding source: %v", err)
		}
	}
	_ = source.Close()

	dest, err := db.New(destPath)
	if err != nil {
		t.Fatalf("creating destination store: %v", err)
	}
	defer func() { _ = dest.Close() }()

	// Already present, and a different patient in Leela's slot.
	for _, in := range []appointment.Input{
		{PatientName: "Ravi Kumar", DoctorName: "Dr. Amit Gupta", Date: "2025-06-10", Time: "09:00", DurationMinutes: 30},
		{PatientName: "Omar Sheikh", DoctorName: "Dr. Paul Mathew", Date: "2025-06-11", Time: "11:15", DurationMinutes: 30},
	} {
		if _, err := dest.Create(ctx, in); err != nil {
			t.Fatalf("seeding destination: %v", err)
		}
	}

	result, err := importAppointments(ctx, dest, sourcePath, appointment.DefaultHours)
	if err != nil {
		t.Fatalf("importAppointments failed: %v", err)
	}
	if result.Imported != 1 || result.Duplicates != 1 || len(result.Conflicts) != 1 {
		t.Fatalf("unexpected result %+v", result)
	}

	imported, err := dest.List(ctx, appointment.Query{Doctor: "Dr. Sana Iyer"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(imported) != 1 {
		t.Fatalf("expected Meera imported, got %d", len(imported))
	}
	got := imported[0]
	if got.Mode != appointment.ModeOnline || got.Notes != "follow-up" || got.DurationMinutes != 45 {
		t.Errorf("fields not carried over: %+v", got)
	}

	again, err := importAppointments(ctx, dest, sourcePath, appointment.DefaultHours)
	if err != nil {
		t.Fatalf("second import failed: %v", err)
	}
	if again.Imported != 0 || again.Duplicates != 2 {
		t.Errorf("second import should only skip, got %+v", again)
	}
}

func TestImportAppointments_SkipsRejectedRows(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	sourcePath := filepath.Join(dir, "source.db")

	source, err := db.New(sourcePath, db.WithHours(appointment.Hours{Open: "00:00", Close: "23:59"}))
	if err != nil {
		t.Fatalf("creating source store: %v", err)
	}
	for _, in := range []appointment.Input{
		{PatientName: "Ravi Kumar", DoctorName: "Dr. Amit Gupta", Date: "2025-06-10", Time: "09:00", DurationMinutes: 30},
		{PatientName: "Late Visit", DoctorName: "Dr. Amit Gupta", Date: "2025-06-10", Time: "22:00", DurationMinutes: 30},
		{PatientName: "Meera Nair", DoctorName: "Dr. Amit Gupta", Date: "2025-06-11", Time: "10:00", DurationMinutes: 30},
	} {
		if _, err := source.Create(ctx, in); err != nil {
			t.Fatalf("seeding source: %v", err)
		}
	}
	_ = source.Close()

	dest, err := db.New(filepath.Join(dir, "dest.db"))
	if err != nil {
		t.Fatalf("creating destination store: %v", err)
	}
	defer func() { _ = dest.Close() }()

	result, err := importAppointments(ctx, dest, sourcePath, appointment.DefaultHours)
	if err != nil {
		t.Fatalf("importAppointments failed: %v", err)
	}
	if result.Imported != 2 || len(result.Rejected) != 1 || len(result.Conflicts) != 0 {
		t.Fatalf("unexpected result %+v", result)
	}
	if !strings.Contains(result.Rejected[0], "Late Visit") {
		t.Errorf("rejected row should name the patient, got %q", result.Rejected[0])
	}

	all, err := dest.List(ctx, appointment.Query{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 stored appointments, got %d", len(all))
	}
}

func TestResolvePath(t *testing.T) {
	if _, err := resolvePath("  "); err == nil {
		t.Error("expected error for empty path")
	}
	got, err := resolvePath("data/clinic.db")
	if err != nil || !filepath.IsAbs(got) {
		t.Errorf("resolvePath() = %q, %v", got, err)
	}
}
