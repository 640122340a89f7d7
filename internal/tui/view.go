package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/clinicdesk/internal/appointment"
	"github.com/javiermolinar/clinicdesk/internal/dateutil"
	"github.com/javiermolinar/clinicdesk/internal/schedule"
	"github.com/javiermolinar/clinicdesk/internal/tui/view"
)

const (
	headerHeight = 2
	// tableChrome is the border and header lines lipgloss/table draws
	// around the list rows.
	tableChrome = 4
)

var paneHelp = map[Pane]string{
	PaneList:  "j/k move  enter details  c status  a add  e edit  x delete  / search  v view  ? help",
	PaneDay:   "j/k move  h/l day  H/L week  t today  enter details  c status  a add  v view  ? help",
	PaneMonth: "h/l day  j/k week  H/L month  t today  enter open day  v view  ? help",
}

// View renders the TUI.
func (m Model) View() string {
	modal := ""
	if m.mode == ModeModal && m.modalType != ModalNone {
		modal = m.renderModal()
	}
	return view.Render(view.Screen{
		Width:     m.width,
		Height:    m.height,
		MinHeight: headerHeight + view.FooterHeight + 1,
		Base:      m.renderAppContent,
		Modal:     modal,
		Overlay:   view.Overlay{Bg: m.styles.palette.Modal.Bg},
	})
}

func (m Model) bodyHeight() int {
	return max(m.height-headerHeight-view.FooterHeight, 0)
}

// listRows is how many appointments fit in the list table.
func (m Model) listRows() int {
	return max(m.bodyHeight()-tableChrome, 1)
}

func (m Model) renderAppContent() string {
	if m.board == nil {
		content := m.styles.Empty.Render("No appointment store open")
		return view.PadLines(content, m.width, m.height, m.styles.palette.Bg)
	}

	var body string
	switch m.pane {
	case PaneDay:
		body = m.renderDay()
	case PaneMonth:
		body = m.renderMonth()
	default:
		body = m.renderList()
	}
	content := lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), body, m.renderFooter())
	return view.PadLines(m.styles.App.Render(content), m.width, m.height, m.styles.palette.Bg)
}

func (m Model) renderHeader() string {
	filter := m.view.Filter
	snapshot := m.board.Snapshot()
	tabs := make([]view.Tab, len(schedule.Scopes))
	for i, scope := range schedule.Scopes {
		f := filter
		f.Scope = scope
		f.ExplicitDate = nil
		tabs[i] = view.Tab{
			Label:  strings.ToUpper(string(scope[:1])) + string(scope[1:]),
			Count:  len(schedule.Filter(snapshot, f, m.view.Today)),
			Active: filter.ExplicitDate == nil && filter.Scope == scope,
		}
	}

	meta := m.pane.String() + " · " + m.now().Format("Mon Jan 2 2006 15:04")
	if m.loading {
		meta = "loading… " + meta
	}
	filters := ""
	if filter.Active() {
		filters = filter.Describe()
	}
	return view.RenderHeader(view.HeaderModel{
		Width:   m.width,
		Title:   "clinicdesk",
		Meta:    meta,
		Tabs:    tabs,
		Filters: filters,
	}, m.styles.header())
}

func (m Model) renderList() string {
	n := len(m.view.Filtered)
	start, end := view.ListWindow(n, m.listIdx, m.listTop, m.listRows())
	rows := make([]view.ListRow, 0, end-start)
	for i := start; i < end; i++ {
		a := m.view.Filtered[i]
		rows = append(rows, view.ListRow{
			Appointment: a,
			Pending:     m.view.Pending[a.ID],
			Past:        dateutil.CompareDays(a.Date, m.view.Today) < 0,
			Selected:    i == m.listIdx,
		})
	}
	empty := "No appointments"
	if m.view.Filter.Active() {
		empty = "No appointments match " + m.view.Filter.Describe()
	}
	return view.RenderList(view.ListModel{
		Width:  m.width,
		Height: m.bodyHeight(),
		Rows:   rows,
		Empty:  empty,
		Bg:     m.styles.palette.Bg,
	}, m.styles.list())
}

func (m Model) renderDay() string {
	day := m.view.Day
	title := fmt.Sprintf("%s · %d appointments", day.Date.Format("Monday, January 2 2006"), day.Len())
	if w := day.Width(); w > 1 {
		title += fmt.Sprintf(" · %d overlapping", w)
	}
	titleLine := view.Line(m.width, m.styles.PaneTitle, title)

	hours := m.config.Hours()
	open, closing := appointment.TimeToMinutes(hours.Open), appointment.TimeToMinutes(hours.Close)
	height := max(m.bodyHeight()-1, 0)
	if day.Len() == 0 {
		empty := view.PlaceBox(m.width, height, lipgloss.Center,
			m.styles.Empty.Width(m.width).Align(lipgloss.Center).Render("Nothing booked this day"), m.styles.palette.Bg)
		return titleLine + "\n" + empty
	}

	model := view.TimelineModel{
		Width:     m.width,
		Height:    height,
		Open:      open,
		Close:     closing,
		Step:      view.TimelineStep(open, closing, height),
		NowMinute: -1,
		Bg:        m.styles.palette.Bg,
	}
	now := m.now()
	if dateutil.SameDay(day.Date, now) {
		model.NowMinute = now.Hour()*60 + now.Minute()
	}
	for i, cell := range day.Cells() {
		model.Blocks = append(model.Blocks, view.TimelineBlock{
			Appointment: day.Placements[i].Appointment,
			Cell:        cell,
			Pending:     m.view.Pending[cell.ID],
			Selected:    i == m.dayIdx,
		})
	}
	model.Offset = timelineOffset(model, m.dayIdx)
	return titleLine + "\n" + view.RenderTimeline(model, m.styles.timeline())
}

// timelineOffset scrolls just enough to keep the selected block on screen.
func timelineOffset(model view.TimelineModel, selected int) int {
	if selected < 0 || selected >= len(model.Blocks) {
		return 0
	}
	first, last, ok := model.RowSpan(model.Blocks[selected].Appointment)
	if !ok || last < model.Height {
		return 0
	}
	return max(min(first, last-model.Height+1), 0)
}

func (m Model) renderMonth() string {
	day := m.board.Day()
	return view.RenderHeatmap(view.HeatmapModel{
		Width:    m.width,
		Height:   m.bodyHeight(),
		Month:    dateutil.FirstOfMonth(day),
		Weeks:    schedule.MonthGrid(day, m.view.Density),
		Today:    m.view.Today,
		Selected: day,
		Bg:       m.styles.palette.Bg,
	}, m.styles.heatmap())
}

func (m Model) renderFooter() string {
	prompt := ""
	if m.mode == ModeSearch || m.mode == ModeDate {
		prompt = m.prompt.View()
	}
	return view.RenderFooter(view.FooterModel{
		Width:       m.width,
		StatsText:   m.view.Summary.String(),
		PromptText:  prompt,
		StatusText:  m.statusMsg,
		StatusError: m.statusErr,
		HelpText:    paneHelp[m.pane],
		StatsStyle:  m.styles.Stats,
		PromptStyle: m.styles.Prompt,
		StatusStyle: m.styles.Status,
		ErrorStyle:  m.styles.Error,
		HelpStyle:   m.styles.Help,
	})
}

func (m Model) renderModal() string {
	s := m.styles.Modal
	switch m.modalType {
	case ModalInit:
		return view.RenderModalFrame("Set up clinicdesk", m.initBody(), view.RenderButtons(s, "enter create", "esc quit"), s)

	case ModalWelcome:
		return view.RenderModalFrame("Welcome to clinicdesk", view.RenderWelcomeBody(s), view.RenderButtons(s, "enter start"), s)

	case ModalHelp:
		return view.RenderModalFrame("Keys", view.RenderHelpBody(keyHelp, s), s.Hint.Render("any key closes"), s)

	case ModalDetail:
		a, ok := m.board.Get(m.modalID)
		if !ok {
			return view.RenderModalFrame("Appointment", s.Error.Render("This appointment no longer exists."), "", s)
		}
		return view.RenderModalFrame(a.PatientName, view.RenderDetailBody(a, m.view.Pending[a.ID], s),
			view.RenderButtons(s, "esc close", "c status", "e edit", "x delete"), s)

	case ModalStatus:
		a, ok := m.board.Get(m.modalID)
		if !ok {
			return ""
		}
		return view.RenderModalFrame("Change status", view.RenderStatusPicker(a.Status, m.statusChoices, m.statusIdx, s),
			view.RenderButtons(s, "enter apply", "esc cancel"), s)

	case ModalForm:
		return view.RenderModalFrame(m.form.title(), view.RenderFormBody(m.form.fields(), m.form.err, s),
			view.RenderButtons(s, "enter save", "tab next", "esc cancel"), s)

	case ModalConfirmDelete:
		msg := "Delete this appointment?"
		if a, ok := m.board.Get(m.modalID); ok {
			msg = fmt.Sprintf("Delete %s?", a)
		}
		return view.RenderModalFrame("Delete appointment", view.RenderConfirmBody(msg, s),
			view.RenderButtons(s, "y delete", "n keep"), s)
	}
	return ""
}

func (m Model) initBody() string {
	s := m.styles.Modal
	var lines []string
	if m.initState.ConfigMissing {
		lines = append(lines, s.Label.Render("Config   ")+s.Body.Render(m.initState.ConfigPath))
	}
	if m.initState.DBMissing {
		lines = append(lines, s.Label.Render("Database ")+s.Body.Render(m.initState.DBPath))
	}
	lines = append(lines, "", s.Hint.Render("These files will be created."))
	if m.initError != "" {
		lines = append(lines, "", s.Error.Render(m.initError))
	}
	return strings.Join(lines, "\n")
}
