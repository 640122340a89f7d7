package board

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/javiermolinar/clinicdesk/internal/appointment"
	"github.com/javiermolinar/clinicdesk/internal/schedule"
)

var today = time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

// fakeRepo is an in-memory repository with failure injection.
type fakeRepo struct {
	mu        sync.Mutex
	appts     []*appointment.Appointment
	listErr   error
	updateErr error
	lists     int
	nextID    int
}

func (r *fakeRepo) List(_ context.Context, q appointment.Query) ([]*appointment.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lists++
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []*appointment.Appointment
	for _, a := range r.appts {
		if q.Matches(a) {
			out = append(out, a.Clone())
		}
	}
	return out, nil
}

func (r *fakeRepo) Get(_ context.Context, id string) (*appointment.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.appts {
		if a.ID == id {
			return a.Clone(), nil
		}
	}
	return nil, appointment.ErrNotFound
}

func (r *fakeRepo) Create(_ context.Context, in appointment.Input) (*appointment.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, err := appointment.New(in, today)
	if err != nil {
		return nil, err
	}
	r.nextID++
	a.ID = fmt.Sprintf("new-%d", r.nextID)
	r.appts = append(r.appts, a)
	return a.Clone(), nil
}

func (r *fakeRepo) Update(_ context.Context, id string, in appointment.Input) (*appointment.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return nil, r.updateErr
	}
	for _, a := range r.appts {
		if a.ID == id {
			if err := a.Apply(in, today); err != nil {
				return nil, err
			}
			return a.Clone(), nil
		}
	}
	return nil, appointment.ErrNotFound
}

func (r *fakeRepo) UpdateStatus(_ context.Context, id string, status appointment.Status) (*appointment.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return nil, r.updateErr
	}
	for _, a := range r.appts {
		if a.ID == id {
			a.Status = status
			a.UpdatedAt = today.Add(time.Hour)
			return a.Clone(), nil
		}
	}
	return nil, appointment.ErrNotFound
}

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, a := range r.appts {
		if a.ID == id {
			r.appts = append(r.appts[:i], r.appts[i+1:]...)
			return nil
		}
	}
	return appointment.ErrNotFound
}

func (r *fakeRepo) Close() error { return nil }

func seed() *fakeRepo {
	mk := func(id, patient, doctor string, offset int, at string, status appointment.Status) *appointment.Appointment {
		return &appointment.Appointment{
			ID:              id,
			PatientName:     patient,
			DoctorName:      doctor,
			Date:            today.AddDate(0, 0, offset),
			Time:            at,
			DurationMinutes: 30,
			Status:          status,
			Mode:            appointment.ModeInPerson,
		}
	}
	return &fakeRepo{appts: []*appointment.Appointment{
		mk("a", "Ravi Kumar", "Dr. Amit Gupta", 0, "09:00", appointment.StatusScheduled),
		mk("b", "Gupta Something", "Dr. Sana Iyer", 0, "09:15", appointment.StatusConfirmed),
		mk("c", "Leela Das", "Dr. Amit Gupta", 1, "10:00", appointment.StatusCancelled),
		mk("d", "Meera Nair", "Dr. Sana Iyer", -2, "11:00", appointment.StatusCompleted),
	}}
}

func newBoard(t *testing.T, repo *fakeRepo) *Board {
	t.Helper()
	b := New(repo, zerolog.Nop(), WithClock(func() time.Time { return today.Add(8 * time.Hour) }))
	if err := b.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	return b
}

func TestBoard_View(t *testing.T) {
	b := newBoard(t, seed())

	v := b.View()
	if len(v.Filtered) != 2 {
		t.Fatalf("expected today's 2 appointments, got %d", len(v.Filtered))
	}
	if v.Day.Width() != 2 {
		t.Errorf("expected overlapping pair to need 2 columns, got %d", v.Day.Width())
	}
	if v.Density.Total() != 3 {
		t.Errorf("density should count 3 non-cancelled appointments, got %d", v.Density.Total())
	}
	if v.Summary.Total != 2 {
		t.Errorf("summary should follow the filtered list, got %d", v.Summary.Total)
	}
	if len(v.Doctors) != 2 {
		t.Errorf("expected 2 doctors, got %v", v.Doctors)
	}
}

func TestBoard_FilterAndDay(t *testing.T) {
	b := newBoard(t, seed())

	b.SetFilter(schedule.FilterState{Scope: schedule.ScopeAll, SearchText: "gupta"})
	v := b.View()
	if len(v.Filtered) != 3 {
		t.Errorf("expected 3 matches for gupta, got %d", len(v.Filtered))
	}

	// The timeline shows the selected day even though the scope tab is today.
	b.SetFilter(schedule.DefaultFilter())
	b.SetDay(today.AddDate(0, 0, -2))
	v = b.View()
	if v.Day.Len() != 1 || v.Day.Placements[0].Appointment.ID != "d" {
		t.Errorf("expected d on the selected day, got %+v", v.Day.Cells())
	}
	if len(v.Filtered) != 2 {
		t.Errorf("list should still show today, got %d", len(v.Filtered))
	}
}

func TestBoard_RefreshFailureEmptiesSnapshot(t *testing.T) {
	repo := seed()
	b := newBoard(t, repo)

	repo.listErr = errors.New("connection refused")
	err := b.Refresh(context.Background())
	if !errors.Is(err, ErrQueryFailed) {
		t.Fatalf("expected ErrQueryFailed, got %v", err)
	}
	if len(b.Snapshot()) != 0 {
		t.Error("snapshot should be empty after a failed query")
	}
	if v := b.View(); len(v.Filtered) != 0 || v.Density.Total() != 0 {
		t.Error("derived views should be empty after a failed query")
	}
}

func TestBoard_ChangeStatus(t *testing.T) {
	repo := seed()
	b := newBoard(t, repo)

	got, err := b.ChangeStatus(context.Background(), "a", appointment.StatusConfirmed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != appointment.StatusConfirmed {
		t.Errorf("expected Confirmed, got %s", got.Status)
	}
	a, _ := b.Get("a")
	if a.Status != appointment.StatusConfirmed || !a.UpdatedAt.Equal(today.Add(time.Hour)) {
		t.Errorf("snapshot should hold the stored record, got %+v", a)
	}
	if b.State("a") != Idle {
		t.Errorf("expected idle after commit, got %s", b.State("a"))
	}
}

func TestBoard_ChangeStatus_IllegalTransition(t *testing.T) {
	repo := seed()
	b := newBoard(t, repo)

	_, err := b.ChangeStatus(context.Background(), "d", appointment.StatusScheduled)
	if !errors.Is(err, appointment.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	d, _ := b.Get("d")
	if d.Status != appointment.StatusCompleted {
		t.Error("rejected transition must not touch the snapshot")
	}

	if _, err := b.ChangeStatus(context.Background(), "missing", appointment.StatusConfirmed); !errors.Is(err, appointment.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestBoard_ChangeStatus_Rollback(t *testing.T) {
	repo := seed()
	b := newBoard(t, repo)
	lists := repo.lists

	repo.updateErr = errors.New("disk full")
	_, err := b.ChangeStatus(context.Background(), "a", appointment.StatusCancelled)
	if !errors.Is(err, ErrMutationFailed) {
		t.Fatalf("expected ErrMutationFailed, got %v", err)
	}
	a, _ := b.Get("a")
	if a.Status != appointment.StatusScheduled {
		t.Errorf("expected rollback to Scheduled, got %s", a.Status)
	}
	if repo.lists != lists+1 {
		t.Error("expected a reload after rollback")
	}
}

func TestBoard_OptimisticLifecycle(t *testing.T) {
	b := newBoard(t, seed())

	m, err := b.BeginStatusChange("b", appointment.StatusCancelled)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.State != Pending || b.State("b") != Pending {
		t.Fatalf("expected pending, got %s / %s", m.State, b.State("b"))
	}
	if v := b.View(); !v.Pending["b"] || v.Density.Total() != 2 {
		t.Errorf("optimistic cancel should show immediately, got pending=%v density=%d", v.Pending, v.Density.Total())
	}

	if _, err := b.BeginStatusChange("b", appointment.StatusScheduled); !errors.Is(err, ErrMutationInFlight) {
		t.Errorf("expected ErrMutationInFlight, got %v", err)
	}
	if err := b.Delete(context.Background(), "b"); !errors.Is(err, ErrMutationInFlight) {
		t.Errorf("expected delete to be blocked, got %v", err)
	}

	// A reload while pending keeps the optimistic status.
	if err := b.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got, _ := b.Get("b"); got.Status != appointment.StatusCancelled {
		t.Errorf("expected optimistic status after reload, got %s", got.Status)
	}

	err = b.Rollback(m, errors.New("timeout"))
	if !errors.Is(err, ErrMutationFailed) || m.State != RolledBack {
		t.Fatalf("unexpected rollback result: %v, %s", err, m.State)
	}
	if got, _ := b.Get("b"); got.Status != appointment.StatusConfirmed {
		t.Errorf("expected Confirmed after rollback, got %s", got.Status)
	}

	// Settled mutations ignore further calls.
	b.Commit(m, nil)
	if m.State != RolledBack {
		t.Errorf("commit after rollback changed state to %s", m.State)
	}
}

func TestBoard_PersistAndSettle(t *testing.T) {
	repo := seed()
	b := newBoard(t, repo)
	ctx := context.Background()

	m, err := b.BeginStatusChange("a", appointment.StatusConfirmed)
	if err != nil {
		t.Fatal(err)
	}
	stored, err := b.Persist(ctx, m)
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Settle(ctx, m, stored, nil); err != nil {
		t.Fatalf("Settle: %v", err)
	}
	if m.State != Committed || b.State("a") != Idle {
		t.Errorf("expected committed and idle, got %s / %s", m.State, b.State("a"))
	}

	repo.updateErr = errors.New("locked")
	m, err = b.BeginStatusChange("a", appointment.StatusCancelled)
	if err != nil {
		t.Fatal(err)
	}
	lists := repo.lists
	stored, err = b.Persist(ctx, m)
	if err := b.Settle(ctx, m, stored, err); !errors.Is(err, ErrMutationFailed) {
		t.Fatalf("expected ErrMutationFailed, got %v", err)
	}
	if got, _ := b.Get("a"); got.Status != appointment.StatusConfirmed {
		t.Errorf("expected Confirmed after rollback, got %s", got.Status)
	}
	if repo.lists != lists+1 {
		t.Error("expected a reload after rollback")
	}
}

func TestBoard_CreateUpdateDelete(t *testing.T) {
	repo := seed()
	b := newBoard(t, repo)
	ctx := context.Background()

	created, err := b.Create(ctx, appointment.Input{
		PatientName:     "Omar Sheikh",
		DoctorName:      "Dr. Paul Mathew",
		Date:            "2025-06-10",
		Time:            "14:00",
		DurationMinutes: 45,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, ok := b.Get(created.ID); !ok {
		t.Error("created appointment should be in the snapshot")
	}

	in := created.ToInput()
	in.Notes = "bring reports"
	if _, err := b.Update(ctx, created.ID, in); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := b.Get(created.ID)
	if got.Notes != "bring reports" {
		t.Errorf("expected notes updated, got %q", got.Notes)
	}

	in.Status = appointment.StatusCompleted
	if _, err := b.Update(ctx, created.ID, in); !errors.Is(err, appointment.ErrInvalidTransition) {
		t.Errorf("expected edit to respect the transition table, got %v", err)
	}

	if err := b.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := b.Get(created.ID); ok {
		t.Error("deleted appointment should be gone")
	}

	_, err = b.Create(ctx, appointment.Input{PatientName: "X", DoctorName: "Y", Date: "bad", Time: "10:00", DurationMinutes: 10})
	if !errors.Is(err, ErrMutationFailed) || !appointment.IsValidation(err) {
		t.Errorf("expected wrapped validation error, got %v", err)
	}
}

func TestBoard_ConcurrentStatusChanges(t *testing.T) {
	b := newBoard(t, seed())

	var wg sync.WaitGroup
	results := make(chan error, 8)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := b.BeginStatusChange("a", appointment.StatusConfirmed)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	ok := 0
	for err := range results {
		switch {
		case err == nil:
			ok++
		case !errors.Is(err, ErrMutationInFlight):
			t.Errorf("unexpected error: %v", err)
		}
	}
	if ok != 1 {
		t.Errorf("expected exactly one change to begin, got %d", ok)
	}
}

func TestMutationState_String(t *testing.T) {
	if Pending.String() != "pending" || RolledBack.String() != "rolled back" {
		t.Error("unexpected state names")
	}
}
