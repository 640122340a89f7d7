package board

import (
	"context"
	"fmt"

	"github.com/javiermolinar/clinicdesk/internal/appointment"
)

// MutationState is the lifecycle of one optimistic status change.
type MutationState int

const (
	Idle MutationState = iota
	Pending
	Committed
	RolledBack
)

func (s MutationState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Committed:
		return "committed"
	case RolledBack:
		return "rolled back"
	default:
		return fmt.Sprintf("MutationState(%d)", int(s))
	}
}

// Mutation is an optimistic status change awaiting the store.
type Mutation struct {
	ID    string
	From  appointment.Status
	To    appointment.Status
	State MutationState

	previous *appointment.Appointment
}

// State returns the mutation state of an appointment: Pending while a change
// is in flight, Idle otherwise.
func (b *Board) State(id string) MutationState {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.inflight[id]; ok {
		return Pending
	}
	return Idle
}

// BeginStatusChange validates the transition, marks id busy and shows the new
// status in the snapshot immediately.
func (b *Board) BeginStatusChange(id string, to appointment.Status) (*Mutation, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.index(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", appointment.ErrNotFound, id)
	}
	if _, busy := b.inflight[id]; busy {
		return nil, ErrMutationInFlight
	}
	current := b.snapshot[i]
	if err := appointment.CheckTransition(current.Status, to); err != nil {
		return nil, err
	}

	m := &Mutation{ID: id, From: current.Status, To: to, State: Pending, previous: current}
	next := current.Clone()
	next.Status = to
	b.snapshot[i] = next
	b.inflight[id] = m

	b.logger.Debug().Str("id", id).Str("from", string(m.From)).Str("to", string(to)).Msg("status change pending")
	return m, nil
}

// Commit replaces the optimistic entry with the stored record and clears the
// busy flag. A nil record keeps the optimistic entry.
func (b *Board) Commit(m *Mutation, stored *appointment.Appointment) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if m.State != Pending {
		return
	}
	if stored != nil {
		if i := b.index(m.ID); i >= 0 {
			b.snapshot[i] = stored
		}
	}
	m.State = Committed
	delete(b.inflight, m.ID)
	b.logger.Info().Str("id", m.ID).Str("status", string(m.To)).Msg("status change committed")
}

// Rollback restores the record seen before the change, clears the busy flag
// and returns cause wrapped in ErrMutationFailed.
func (b *Board) Rollback(m *Mutation, cause error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	err := fmt.Errorf("%w: %w", ErrMutationFailed, cause)
	if m.State != Pending {
		return err
	}
	if i := b.index(m.ID); i >= 0 {
		b.snapshot[i] = m.previous
	}
	m.State = RolledBack
	delete(b.inflight, m.ID)
	b.logger.Warn().Err(cause).Str("id", m.ID).Str("status", string(m.From)).Msg("status change rolled back")
	return err
}

// Persist writes a pending change to the store. It does not touch the
// snapshot; callers follow up with Commit or Rollback.
func (b *Board) Persist(ctx context.Context, m *Mutation) (*appointment.Appointment, error) {
	return b.repo.UpdateStatus(ctx, m.ID, m.To)
}

// Settle commits or rolls back m depending on the outcome of Persist. A
// rollback also reloads the snapshot so that a concurrent edit shows up.
func (b *Board) Settle(ctx context.Context, m *Mutation, stored *appointment.Appointment, err error) error {
	if err == nil {
		b.Commit(m, stored)
		return nil
	}
	rerr := b.Rollback(m, err)
	if qerr := b.Refresh(ctx); qerr != nil {
		b.logger.Error().Err(qerr).Msg("reload after rollback failed")
	}
	return rerr
}

// ChangeStatus runs a full status change: begin, store, then commit or roll
// back and reload.
func (b *Board) ChangeStatus(ctx context.Context, id string, to appointment.Status) (*appointment.Appointment, error) {
	m, err := b.BeginStatusChange(id, to)
	if err != nil {
		return nil, err
	}
	stored, err := b.Persist(ctx, m)
	if err := b.Settle(ctx, m, stored, err); err != nil {
		return nil, err
	}
	return stored, nil
}

// Create stores a new appointment and reloads the snapshot.
func (b *Board) Create(ctx context.Context, in appointment.Input) (*appointment.Appointment, error) {
	created, err := b.repo.Create(ctx, in)
	if err != nil {
		b.logger.Warn().Err(err).Msg("create rejected")
		return nil, fmt.Errorf("%w: %w", ErrMutationFailed, err)
	}
	b.logger.Info().Str("id", created.ID).Str("doctor", created.DoctorName).Str("date", created.DateKey()).Msg("appointment created")
	return created, b.Refresh(ctx)
}

// Update replaces every editable field of id and reloads the snapshot.
// A status change carried by in must be a legal transition.
func (b *Board) Update(ctx context.Context, id string, in appointment.Input) (*appointment.Appointment, error) {
	b.mu.Lock()
	_, busy := b.inflight[id]
	b.mu.Unlock()
	if busy {
		return nil, ErrMutationInFlight
	}

	current, err := b.current(ctx, id)
	if err != nil {
		return nil, err
	}
	in = in.Normalize()
	if in.Status != current.Status {
		if err := appointment.CheckTransition(current.Status, in.Status); err != nil {
			return nil, err
		}
	}

	updated, err := b.repo.Update(ctx, id, in)
	if err != nil {
		b.logger.Warn().Err(err).Str("id", id).Msg("update rejected")
		return nil, fmt.Errorf("%w: %w", ErrMutationFailed, err)
	}
	b.logger.Info().Str("id", id).Msg("appointment updated")
	return updated, b.Refresh(ctx)
}

// Delete removes id and reloads the snapshot.
func (b *Board) Delete(ctx context.Context, id string) error {
	b.mu.Lock()
	_, busy := b.inflight[id]
	b.mu.Unlock()
	if busy {
		return ErrMutationInFlight
	}

	if err := b.repo.Delete(ctx, id); err != nil {
		b.logger.Warn().Err(err).Str("id", id).Msg("delete rejected")
		return fmt.Errorf("%w: %w", ErrMutationFailed, err)
	}
	b.logger.Info().Str("id", id).Msg("appointment deleted")
	return b.Refresh(ctx)
}

// current returns the snapshot entry for id, falling back to the store.
func (b *Board) current(ctx context.Context, id string) (*appointment.Appointment, error) {
	if a, ok := b.Get(id); ok {
		return a, nil
	}
	return b.repo.Get(ctx, id)
}
