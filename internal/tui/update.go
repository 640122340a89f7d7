package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/clinicdesk/internal/tui/commands"
	"github.com/javiermolinar/clinicdesk/internal/tui/view"
)

const (
	statusTTL = 3 * time.Second
	errorTTL  = 5 * time.Second
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.refreshView()
		return m, nil

	case commands.LoadedMsg:
		m.loading = false
		if msg.Err != nil {
			return m.setError(msg.Err)
		}
		m.refreshView()
		return m, nil

	case commands.StatusChangedMsg:
		if msg.Err == nil {
			m.board.Commit(msg.Mutation, msg.Stored)
			m.refreshView()
			name := msg.Mutation.ID
			if a, ok := m.board.Get(msg.Mutation.ID); ok {
				name = a.PatientName
			}
			return m.setStatus(fmt.Sprintf("%s is now %s", name, msg.Mutation.To))
		}
		err := m.board.Rollback(msg.Mutation, msg.Err)
		m.refreshView()
		updated, cmd := m.setError(err)
		return updated, tea.Batch(cmd, commands.Refresh(m.board))

	case commands.SavedMsg:
		if msg.Err != nil {
			if m.modalType == ModalForm {
				m.form.err = msg.Err.Error()
				return m, nil
			}
			return m.setError(msg.Err)
		}
		m.closeModal()
		m.refreshView()
		m.selectID(msg.Appointment.ID)
		verb := "Updated"
		if msg.Created {
			verb = "Booked"
		}
		return m.setStatus(fmt.Sprintf("%s %s", verb, msg.Appointment))

	case commands.DeletedMsg:
		if msg.Err != nil {
			return m.setError(msg.Err)
		}
		m.refreshView()
		return m.setStatus("Appointment deleted")

	case commands.PreferencesMsg:
		m.welcomeSeen = msg.WelcomeSeen
		if !msg.WelcomeSeen && m.mode == ModeNormal {
			m.openModal(ModalWelcome, "")
		}
		return m, nil

	case commands.ErrMsg:
		return m.setError(msg.Err)

	case commands.StatusMsgCmd:
		return m.setStatus(msg.Msg)

	case commands.ClearStatusMsg:
		if !m.now().Before(m.statusTime) {
			m.statusMsg = ""
			m.statusErr = false
		}
		return m, nil
	}

	// Cursor blinks and other input messages.
	var cmd tea.Cmd
	switch {
	case m.mode == ModeSearch || m.mode == ModeDate:
		m.prompt, cmd = m.prompt.Update(msg)
	case m.mode == ModeModal && m.modalType == ModalForm:
		m.form, cmd = m.form.update(msg)
	}
	return m, cmd
}

func (m Model) setStatus(text string) (Model, tea.Cmd) {
	m.statusMsg = text
	m.statusErr = false
	m.statusTime = m.now().Add(statusTTL)
	return m, clearAfter(statusTTL)
}

func (m Model) setError(err error) (Model, tea.Cmd) {
	m.logger.Error().Err(err).Msg("tui")
	m.statusMsg = "Error: " + err.Error()
	m.statusErr = true
	m.statusTime = m.now().Add(errorTTL)
	return m, clearAfter(errorTTL)
}

func clearAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return commands.ClearStatusMsg{}
	})
}

// refreshView recomputes the board view and keeps the cursors in range.
func (m *Model) refreshView() {
	if m.board == nil {
		return
	}
	m.view = m.board.View()
	m.listIdx = clamp(m.listIdx, 0, len(m.view.Filtered)-1)
	m.listTop, _ = view.ListWindow(len(m.view.Filtered), m.listIdx, m.listTop, m.listRows())
	m.dayIdx = clamp(m.dayIdx, 0, m.view.Day.Len()-1)
}

// selectID moves the cursors onto id when it is visible.
func (m *Model) selectID(id string) {
	for i, a := range m.view.Filtered {
		if a.ID == id {
			m.listIdx = i
			m.listTop, _ = view.ListWindow(len(m.view.Filtered), i, m.listTop, m.listRows())
			break
		}
	}
	if i := m.view.Day.Index(id); i >= 0 {
		m.dayIdx = i
	}
}
