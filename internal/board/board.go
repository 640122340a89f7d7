// Package board orchestrates the dashboard: it owns the appointment snapshot,
// the active filter and the selected day, and recomputes every derived view
// from them on demand. Status changes are applied optimistically and tracked
// per appointment until the store confirms or rejects them.
package board

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/javiermolinar/clinicdesk/internal/appointment"
	"github.com/javiermolinar/clinicdesk/internal/dateutil"
	"github.com/javiermolinar/clinicdesk/internal/schedule"
	"github.com/javiermolinar/clinicdesk/internal/summary"
)

// Orchestrator errors.
var (
	ErrQueryFailed      = errors.New("loading appointments failed")
	ErrMutationFailed   = errors.New("saving appointment failed")
	ErrMutationInFlight = errors.New("a change to this appointment is already in progress")
)

// Board is the dashboard state. It is safe for concurrent use.
type Board struct {
	repo   appointment.Repository
	logger zerolog.Logger
	now    func() time.Time

	mu       sync.Mutex
	snapshot []*appointment.Appointment
	filter   schedule.FilterState
	day      time.Time
	inflight map[string]*Mutation
}

// Option configures a Board.
type Option func(*Board)

// WithClock overrides time.Now, used for the reference day.
func WithClock(now func() time.Time) Option {
	return func(b *Board) {
		b.now = now
	}
}

// WithFilter sets the initial filter.
func WithFilter(f schedule.FilterState) Option {
	return func(b *Board) {
		b.filter = f
	}
}

// New creates a Board over repo. The snapshot is empty until Refresh.
func New(repo appointment.Repository, logger zerolog.Logger, opts ...Option) *Board {
	b := &Board{
		repo:     repo,
		logger:   logger.With().Str("component", "board").Logger(),
		now:      time.Now,
		filter:   schedule.DefaultFilter(),
		inflight: make(map[string]*Mutation),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.day = dateutil.Day(b.now())
	return b
}

// Today returns the reference civil day.
func (b *Board) Today() time.Time {
	return dateutil.Day(b.now())
}

// Refresh reloads the full snapshot. On failure the snapshot is emptied so
// that no stale data is shown.
func (b *Board) Refresh(ctx context.Context) error {
	appts, err := b.repo.List(ctx, appointment.Query{})

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.snapshot = nil
		b.logger.Error().Err(err).Msg("refresh failed")
		return fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}
	b.snapshot = appts
	b.reapplyPending()
	b.logger.Debug().Int("count", len(appts)).Msg("refreshed")
	return nil
}

// reapplyPending keeps optimistic statuses visible across a reload that
// raced with an unconfirmed change.
func (b *Board) reapplyPending() {
	for id, m := range b.inflight {
		i := b.index(id)
		if i < 0 {
			continue
		}
		m.previous = b.snapshot[i]
		next := b.snapshot[i].Clone()
		next.Status = m.To
		b.snapshot[i] = next
	}
}

// SetFilter replaces the active filter.
func (b *Board) SetFilter(f schedule.FilterState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.filter = f
}

// Filter returns the active filter.
func (b *Board) Filter() schedule.FilterState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.filter
}

// SetDay selects the day shown in the timeline view.
func (b *Board) SetDay(date time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.day = dateutil.Day(date)
}

// Day returns the selected timeline day.
func (b *Board) Day() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.day
}

// Snapshot returns a copy of the loaded appointment list.
func (b *Board) Snapshot() []*appointment.Appointment {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.snapshot)
}

// Get returns the snapshot entry for id.
func (b *Board) Get(id string) (*appointment.Appointment, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.index(id)
	if i < 0 {
		return nil, false
	}
	return b.snapshot[i], true
}

func (b *Board) index(id string) int {
	return slices.IndexFunc(b.snapshot, func(a *appointment.Appointment) bool {
		return a.ID == id
	})
}

// View is every derived presentation model for one render.
type View struct {
	Today    time.Time
	Filter   schedule.FilterState
	Filtered []*appointment.Appointment
	Day      schedule.DayLayout
	Density  schedule.DensityMap
	Summary  summary.Stats
	Doctors  []string
	Pending  map[string]bool
}

// View recomputes the filtered list, the day layout of the selected day, the
// density map of the full snapshot and the summary of the filtered list.
// The day layout honors the status, doctor and search facets but always
// shows the selected day regardless of the scope tab.
func (b *Board) View() View {
	b.mu.Lock()
	snapshot := slices.Clone(b.snapshot)
	filter := b.filter
	day := b.day
	pending := make(map[string]bool, len(b.inflight))
	for id := range b.inflight {
		pending[id] = true
	}
	b.mu.Unlock()

	today := b.Today()
	filtered := schedule.Filter(snapshot, filter, today)
	dayFilter := filter
	dayFilter.ExplicitDate = &day
	return View{
		Today:    today,
		Filter:   filter,
		Filtered: filtered,
		Day:      schedule.LayoutDay(day, schedule.Filter(snapshot, dayFilter, today)),
		Density:  schedule.Density(snapshot),
		Summary:  summary.Compute(filtered),
		Doctors:  schedule.Doctors(snapshot),
		Pending:  pending,
	}
}
