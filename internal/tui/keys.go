package tui

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/clinicdesk/internal/appointment"
	"github.com/javiermolinar/clinicdesk/internal/board"
	"github.com/javiermolinar/clinicdesk/internal/dateutil"
	"github.com/javiermolinar/clinicdesk/internal/schedule"
	"github.com/javiermolinar/clinicdesk/internal/tui/commands"
	"github.com/javiermolinar/clinicdesk/internal/tui/view"
)

// nextFreeDays is how far ahead ctrl+n looks for a free slot.
const nextFreeDays = 14

var keyHelp = []view.KeyHelp{
	{Key: "tab / shift+tab", Desc: "next / previous tab"},
	{Key: "v", Desc: "switch list, day and month view"},
	{Key: "j k", Desc: "move down / up"},
	{Key: "h l", Desc: "previous / next day (day, month)"},
	{Key: "H L", Desc: "previous / next week or month"},
	{Key: "t", Desc: "jump to today"},
	{Key: "/", Desc: "search patient or doctor"},
	{Key: "g", Desc: "show a single date"},
	{Key: "s d", Desc: "cycle status / doctor filter"},
	{Key: "esc", Desc: "clear filters"},
	{Key: "enter", Desc: "details (month: open day)"},
	{Key: "c", Desc: "change status"},
	{Key: "a e x", Desc: "add / edit / delete"},
	{Key: "y", Desc: "copy visible list"},
	{Key: "r", Desc: "reload"},
	{Key: "q", Desc: "quit"},
}

// handleKeyMsg handles keyboard input.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.logger.Debug().Str("key", msg.String()).Int("mode", int(m.mode)).Msg("key")

	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	switch m.mode {
	case ModeSearch:
		return m.handleSearchKeys(msg)
	case ModeDate:
		return m.handleDateKeys(msg)
	case ModeModal:
		return m.handleModalKeys(msg)
	default:
		if m.board == nil {
			if msg.String() == "q" {
				return m, tea.Quit
			}
			return m, nil
		}
		return m.handleNormalKeys(msg)
	}
}

// handleNormalKeys handles keys in normal mode.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "tab":
		m.setScope(m.view.Filter.Scope.Next())
	case "shift+tab":
		m.setScope(prevScope(m.view.Filter.Scope))
	case "v":
		m.pane = (m.pane + 1) % Pane(len(paneNames))

	case "j", "down":
		m.move(1)
	case "k", "up":
		m.move(-1)
	case "h", "left":
		m.shiftDay(-1)
	case "l", "right":
		m.shiftDay(1)
	case "H", "shift+left":
		m.shiftPage(-1)
	case "L", "shift+right":
		m.shiftPage(1)
	case "t":
		m.board.SetDay(m.board.Today())
		m.dayIdx = 0
		m.refreshView()

	case "/":
		m.mode = ModeSearch
		m.prompt.Prompt = "search: "
		m.prompt.Placeholder = "patient or doctor"
		m.prompt.SetValue(m.view.Filter.SearchText)
		m.prompt.CursorEnd()
		return m, m.prompt.Focus()
	case "g":
		m.mode = ModeDate
		m.prompt.Prompt = "date: "
		m.prompt.Placeholder = "YYYY-MM-DD, empty to clear"
		m.prompt.SetValue("")
		return m, m.prompt.Focus()
	case "s":
		f := m.board.Filter()
		f.Status = schedule.NextFacet(f.Status, statusNames())
		m.setFilter(f)
	case "d":
		f := m.board.Filter()
		f.Doctor = schedule.NextFacet(f.Doctor, m.view.Doctors)
		m.setFilter(f)
	case "esc":
		f := m.board.Filter()
		if f.Active() {
			m.setFilter(schedule.FilterState{Scope: f.Scope, Status: schedule.FilterAll, Doctor: schedule.FilterAll})
			return m, statusCmd("Filters cleared")
		}

	case "enter":
		if m.pane == PaneMonth {
			m.pane = PaneDay
			m.dayIdx = 0
			return m, nil
		}
		if a := m.selected(); a != nil {
			m.openModal(ModalDetail, a.ID)
		}
	case "c":
		return m.openStatusPicker()
	case "a":
		return m.openCreateForm()
	case "e":
		return m.openEditForm()
	case "x":
		if a := m.selected(); a != nil {
			m.openModal(ModalConfirmDelete, a.ID)
		}
	case "y":
		if len(m.view.Filtered) == 0 {
			return m, statusCmd("Nothing to copy")
		}
		return m, commands.Copy(copyText(m.view.Filtered), fmt.Sprintf("%d appointments", len(m.view.Filtered)))
	case "r":
		m.loading = true
		return m, commands.Refresh(m.board)
	case "?":
		m.openModal(ModalHelp, "")
	}
	return m, nil
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.mode = ModeNormal
		m.prompt.Blur()
		return m, nil
	case "esc":
		m.mode = ModeNormal
		m.prompt.Blur()
		f := m.board.Filter()
		f.SearchText = ""
		m.setFilter(f)
		return m, nil
	}
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	f := m.board.Filter()
	f.SearchText = m.prompt.Value()
	m.setFilter(f)
	return m, cmd
}

func (m Model) handleDateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = ModeNormal
		m.prompt.Blur()
		return m, nil
	case "enter":
		m.mode = ModeNormal
		m.prompt.Blur()
		f := m.board.Filter()
		value := strings.TrimSpace(m.prompt.Value())
		if value == "" {
			f.ExplicitDate = nil
			m.setFilter(f)
			return m, nil
		}
		date, err := dateutil.ParseDateOr(value, m.now())
		if err != nil {
			return m, errCmd(err)
		}
		f.ExplicitDate = &date
		m.board.SetDay(date)
		m.dayIdx = 0
		m.setFilter(f)
		return m, nil
	}
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

func (m Model) handleModalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch m.modalType {
	case ModalInit:
		switch key {
		case "enter":
			updated, err := m.initializeStorage()
			if err != nil {
				m.initError = err.Error()
				return m, nil
			}
			updated.closeModal()
			updated.loading = true
			return updated, updated.startup()
		case "esc", "q":
			return m, tea.Quit
		}

	case ModalWelcome:
		if key == "enter" || key == "esc" || key == " " {
			m.welcomeSeen = true
			m.closeModal()
			return m, commands.MarkWelcomeSeen(m.store)
		}

	case ModalHelp:
		m.closeModal()

	case ModalDetail:
		switch key {
		case "esc", "enter", "q":
			m.closeModal()
		case "c":
			return m.openStatusPicker()
		case "e":
			return m.openEditForm()
		case "x":
			m.modalType = ModalConfirmDelete
		}

	case ModalStatus:
		switch key {
		case "esc", "q":
			m.closeModal()
		case "j", "down":
			if len(m.statusChoices) > 0 {
				m.statusIdx = (m.statusIdx + 1) % len(m.statusChoices)
			}
		case "k", "up":
			if len(m.statusChoices) > 0 {
				m.statusIdx = (m.statusIdx + len(m.statusChoices) - 1) % len(m.statusChoices)
			}
		case "enter":
			if m.statusIdx < len(m.statusChoices) {
				return m.applyStatus(m.statusChoices[m.statusIdx])
			}
		default:
			if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= len(m.statusChoices) {
				return m.applyStatus(m.statusChoices[n-1])
			}
		}

	case ModalConfirmDelete:
		switch key {
		case "y", "enter":
			id := m.modalID
			m.closeModal()
			return m, commands.Delete(m.board, id)
		case "n", "esc":
			m.closeModal()
		}

	case ModalForm:
		return m.handleFormKeys(msg)
	}
	return m, nil
}

func (m Model) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeModal()
		return m, nil
	case "tab", "down":
		m.form.next()
		return m, nil
	case "shift+tab", "up":
		m.form.prev()
		return m, nil
	case "ctrl+n":
		m.suggestSlot()
		return m, nil
	case "enter":
		in, err := m.form.Input()
		if err != nil {
			m.form.err = err.Error()
			return m, nil
		}
		m.form.err = ""
		if m.form.editingID == "" {
			return m, commands.Create(m.board, in)
		}
		return m, commands.Update(m.board, m.form.editingID, in)
	}
	if m.form.focus == fieldMode {
		switch msg.String() {
		case " ", "left", "right", "h", "l":
			m.form.toggleMode()
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.form, cmd = m.form.update(msg)
	return m, cmd
}

// suggestSlot fills date and time with the next free slot of the entered doctor.
func (m *Model) suggestSlot() {
	duration, err := strconv.Atoi(m.form.value(fieldDuration))
	if err != nil || duration <= 0 {
		duration = m.config.Clinic.DefaultDuration
	}
	doctor := m.form.value(fieldDoctor)
	existing := slices.DeleteFunc(m.board.Snapshot(), func(a *appointment.Appointment) bool {
		return a.ID == m.form.editingID
	})
	slot, ok := m.scheduler.NextFree(doctor, duration, existing, m.now(), nextFreeDays)
	if !ok {
		m.form.err = fmt.Sprintf("no free slot for %s in the next %d days", doctor, nextFreeDays)
		return
	}
	m.form.err = ""
	m.form.inputs[fieldDate].SetValue(dateutil.Key(slot.Date))
	m.form.inputs[fieldTime].SetValue(slot.Start)
}

func (m Model) openStatusPicker() (tea.Model, tea.Cmd) {
	a := m.selected()
	if m.modalType == ModalDetail {
		a, _ = m.board.Get(m.modalID)
	}
	if a == nil {
		return m, nil
	}
	if m.board.State(a.ID) == board.Pending {
		return m, statusCmd("A change to this appointment is still saving")
	}
	m.openModal(ModalStatus, a.ID)
	m.statusChoices = appointment.AllowedTransitions(a.Status)
	m.statusIdx = 0
	return m, nil
}

// applyStatus shows the new status at once and stores it in the background.
func (m Model) applyStatus(to appointment.Status) (tea.Model, tea.Cmd) {
	id := m.modalID
	m.closeModal()
	mutation, err := m.board.BeginStatusChange(id, to)
	if err != nil {
		return m, errCmd(err)
	}
	m.refreshView()
	return m, commands.PersistStatus(m.board, mutation)
}

func (m Model) openCreateForm() (tea.Model, tea.Cmd) {
	day := m.board.Today()
	if m.pane != PaneList {
		day = m.board.Day()
	}
	duration := m.config.Clinic.DefaultDuration
	start := ""
	if slots := m.scheduler.FreeSlots(day, "", duration, nil, m.now()); len(slots) > 0 {
		start = slots[0].Start
	}
	m.form.reset(day, start, duration)
	m.openModal(ModalForm, "")
	return m, textinput.Blink
}

func (m Model) openEditForm() (tea.Model, tea.Cmd) {
	a := m.selected()
	if m.modalType == ModalDetail {
		a, _ = m.board.Get(m.modalID)
	}
	if a == nil {
		return m, nil
	}
	m.form.load(a)
	m.openModal(ModalForm, a.ID)
	return m, textinput.Blink
}

func (m *Model) openModal(t ModalType, id string) {
	m.mode = ModeModal
	m.modalType = t
	m.modalID = id
}

func (m *Model) closeModal() {
	m.mode = ModeNormal
	m.modalType = ModalNone
	m.modalID = ""
	m.statusChoices = nil
}

func (m *Model) setScope(s schedule.Scope) {
	f := m.board.Filter()
	f.Scope = s
	f.ExplicitDate = nil
	m.listIdx, m.listTop = 0, 0
	m.setFilter(f)
}

func (m *Model) setFilter(f schedule.FilterState) {
	m.board.SetFilter(f)
	m.refreshView()
}

// move steps the cursor of the current pane.
func (m *Model) move(delta int) {
	switch m.pane {
	case PaneList:
		m.listIdx = clamp(m.listIdx+delta, 0, len(m.view.Filtered)-1)
		m.listTop, _ = view.ListWindow(len(m.view.Filtered), m.listIdx, m.listTop, m.listRows())
	case PaneDay:
		m.dayIdx = clamp(m.dayIdx+delta, 0, m.view.Day.Len()-1)
	case PaneMonth:
		m.shiftDay(7 * delta)
	}
}

func (m *Model) shiftDay(days int) {
	if m.pane == PaneList {
		return
	}
	m.board.SetDay(m.board.Day().AddDate(0, 0, days))
	m.dayIdx = 0
	m.refreshView()
}

// shiftPage moves a week in the day view and a month in the month view.
func (m *Model) shiftPage(delta int) {
	switch m.pane {
	case PaneDay:
		m.shiftDay(7 * delta)
	case PaneMonth:
		m.board.SetDay(m.board.Day().AddDate(0, delta, 0))
		m.refreshView()
	}
}

// selected returns the appointment under the cursor of the current pane.
func (m Model) selected() *appointment.Appointment {
	switch m.pane {
	case PaneList:
		if m.listIdx >= 0 && m.listIdx < len(m.view.Filtered) {
			return m.view.Filtered[m.listIdx]
		}
	case PaneDay:
		if m.dayIdx >= 0 && m.dayIdx < m.view.Day.Len() {
			return m.view.Day.Placements[m.dayIdx].Appointment
		}
	}
	return nil
}

func prevScope(s schedule.Scope) schedule.Scope {
	i := slices.Index(schedule.Scopes, s)
	if i <= 0 {
		return schedule.Scopes[len(schedule.Scopes)-1]
	}
	return schedule.Scopes[i-1]
}

func statusNames() []string {
	names := make([]string, len(appointment.Statuses))
	for i, s := range appointment.Statuses {
		names[i] = string(s)
	}
	return names
}

// copyText renders appointments as tab-separated rows.
func copyText(appts []*appointment.Appointment) string {
	var b strings.Builder
	b.WriteString(strings.Join(view.ListColumns, "\t") + "\n")
	for _, a := range appts {
		b.WriteString(strings.Join([]string{
			a.DateKey(),
			a.Time,
			a.PatientName,
			a.DoctorName,
			strconv.Itoa(a.DurationMinutes),
			string(a.Mode),
			string(a.Status),
		}, "\t") + "\n")
	}
	return b.String()
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return min(max(v, lo), hi)
}

func statusCmd(msg string) tea.Cmd {
	return func() tea.Msg { return commands.StatusMsgCmd{Msg: msg} }
}

func errCmd(err error) tea.Cmd {
	return func() tea.Msg { return commands.ErrMsg{Err: err} }
}
