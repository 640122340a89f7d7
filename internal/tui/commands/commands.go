// Package commands provides TUI command constructors and message types.
package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/clinicdesk/internal/appointment"
	"github.com/javiermolinar/clinicdesk/internal/board"
)

// timeout bounds every store call made from the TUI.
const timeout = 10 * time.Second

// LoadedMsg is sent when the snapshot has been reloaded.
type LoadedMsg struct {
	Err error
}

// StatusChangedMsg is sent when the store has answered a pending status change.
type StatusChangedMsg struct {
	Mutation *board.Mutation
	Stored   *appointment.Appointment
	Err      error
}

// SavedMsg is sent after a create or full edit.
type SavedMsg struct {
	Appointment *appointment.Appointment
	Created     bool
	Err         error
}

// DeletedMsg is sent after a delete.
type DeletedMsg struct {
	ID  string
	Err error
}

// PreferencesMsg carries the stored UI preferences read at startup.
type PreferencesMsg struct {
	WelcomeSeen bool
}

// ErrMsg is sent when an error occurs.
type ErrMsg struct {
	Err error
}

// StatusMsgCmd is sent for temporary status messages.
type StatusMsgCmd struct {
	Msg string
}

// ClearStatusMsg is sent to clear the status message.
type ClearStatusMsg struct{}

// Refresh reloads the board snapshot.
func Refresh(b *board.Board) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return LoadedMsg{Err: b.Refresh(ctx)}
	}
}

// PersistStatus stores a status change that has already been applied
// optimistically with board.BeginStatusChange.
func PersistStatus(b *board.Board, m *board.Mutation) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		stored, err := b.Persist(ctx, m)
		return StatusChangedMsg{Mutation: m, Stored: stored, Err: err}
	}
}

// Create stores a new appointment.
func Create(b *board.Board, in appointment.Input) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		a, err := b.Create(ctx, in)
		return SavedMsg{Appointment: a, Created: true, Err: err}
	}
}

// Update replaces the editable fields of an appointment.
func Update(b *board.Board, id string, in appointment.Input) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		a, err := b.Update(ctx, id, in)
		return SavedMsg{Appointment: a, Err: err}
	}
}

// Delete removes an appointment.
func Delete(b *board.Board, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return DeletedMsg{ID: id, Err: b.Delete(ctx, id)}
	}
}

// LoadPreferences reads the UI preferences. A nil store reports defaults.
func LoadPreferences(prefs appointment.Preferences) tea.Cmd {
	return func() tea.Msg {
		if prefs == nil {
			return PreferencesMsg{}
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		v, ok, err := prefs.Preference(ctx, appointment.PreferenceWelcomeSeen)
		if err != nil {
			return ErrMsg{Err: fmt.Errorf("reading preferences: %w", err)}
		}
		return PreferencesMsg{WelcomeSeen: ok && v == "true"}
	}
}

// MarkWelcomeSeen records that the welcome screen was dismissed.
func MarkWelcomeSeen(prefs appointment.Preferences) tea.Cmd {
	return func() tea.Msg {
		if prefs == nil {
			return nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := prefs.SetPreference(ctx, appointment.PreferenceWelcomeSeen, "true"); err != nil {
			return ErrMsg{Err: fmt.Errorf("saving preferences: %w", err)}
		}
		return nil
	}
}

// Copy writes text to the system clipboard.
func Copy(text string, what string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.WriteAll(text); err != nil {
			return ErrMsg{Err: fmt.Errorf("copying %s: %w", what, err)}
		}
		return StatusMsgCmd{Msg: "Copied " + what}
	}
}
