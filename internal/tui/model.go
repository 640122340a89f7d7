package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/javiermolinar/clinicdesk/internal/appointment"
	"github.com/javiermolinar/clinicdesk/internal/board"
	"github.com/javiermolinar/clinicdesk/internal/config"
	"github.com/javiermolinar/clinicdesk/internal/db"
	"github.com/javiermolinar/clinicdesk/internal/scheduler"
	"github.com/javiermolinar/clinicdesk/internal/schedule"
	"github.com/javiermolinar/clinicdesk/internal/tui/commands"
	"github.com/javiermolinar/clinicdesk/internal/tui/theme"
)

// Mode represents the current interaction mode.
type Mode int

const (
	ModeNormal Mode = iota
	ModeSearch      // typing in the search prompt, the list narrows live
	ModeDate        // typing a date to jump to
	ModeModal
)

// ModalType identifies the type of modal.
type ModalType int

const (
	ModalNone ModalType = iota
	ModalInit
	ModalWelcome
	ModalDetail
	ModalStatus
	ModalForm
	ModalConfirmDelete
	ModalHelp
)

// Pane is the main body view.
type Pane int

const (
	PaneList Pane = iota
	PaneDay
	PaneMonth
)

var paneNames = []string{"List", "Day", "Month"}

func (p Pane) String() string {
	return paneNames[p]
}

// Model is the main TUI model.
type Model struct {
	// Dependencies
	store     db.Store
	board     *board.Board
	config    *config.Config
	scheduler *scheduler.Scheduler
	logger    zerolog.Logger
	now       func() time.Time

	// Theme and styles
	theme  *theme.Theme
	styles *Styles

	// State
	mode      Mode
	pane      Pane
	view      board.View // derived from the board after every change
	listIdx   int        // cursor in view.Filtered
	listTop   int        // first visible list row
	dayIdx    int        // cursor in view.Day.Placements
	loading   bool
	initState InitState
	initError string

	// Modal state
	modalType     ModalType
	modalID       string // appointment the modal acts on
	statusChoices []appointment.Status
	statusIdx     int
	form          appointmentForm
	welcomeSeen   bool

	// Components
	prompt textinput.Model

	// Terminal dimensions
	width  int
	height int

	// Messages
	statusMsg  string    // Temporary status/error message
	statusErr  bool      // statusMsg is an error
	statusTime time.Time // When to clear message
}

// ModelOption configures optional model behavior.
type ModelOption func(*Model)

// WithInitState sets the startup initialization state.
func WithInitState(state InitState) ModelOption {
	return func(m *Model) {
		m.initState = state
		if state.NeedsInit {
			m.mode = ModeModal
			m.modalType = ModalInit
		}
	}
}

// WithLogger sets the logger shared with the board.
func WithLogger(logger zerolog.Logger) ModelOption {
	return func(m *Model) {
		m.logger = logger
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) ModelOption {
	return func(m *Model) {
		m.now = now
	}
}

// New creates a new TUI model. store may be nil until startup
// initialization has created it.
func New(store db.Store, cfg *config.Config, opts ...ModelOption) *Model {
	t, err := theme.Load(cfg.UI.Theme)
	if err != nil {
		t, _ = theme.Load(theme.DefaultName)
	}
	styles := NewStyles(t)

	prompt := textinput.New()
	prompt.CharLimit = 64
	prompt.PromptStyle = styles.Prompt
	prompt.TextStyle = styles.Stats

	m := &Model{
		config:    cfg,
		scheduler: scheduler.New(cfg.Clinic.Workdays, cfg.Hours(), cfg.Clinic.SlotStep),
		logger:    zerolog.Nop(),
		now:       time.Now,
		theme:     t,
		styles:    styles,
		mode:      ModeNormal,
		pane:      PaneList,
		prompt:    prompt,
		form:      newAppointmentForm(styles),
	}
	for _, opt := range opts {
		opt(m)
	}
	if store != nil {
		m.attach(store)
	}
	return m
}

// attach wires the store and builds the board over it.
func (m *Model) attach(store db.Store) {
	filter := schedule.DefaultFilter()
	filter.Scope = m.config.Scope()
	m.store = store
	m.board = board.New(store, m.logger, board.WithClock(m.now), board.WithFilter(filter))
	m.view = m.board.View()
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	if m.initState.NeedsInit || m.board == nil {
		return nil
	}
	return m.startup()
}

func (m Model) startup() tea.Cmd {
	return tea.Batch(commands.Refresh(m.board), commands.LoadPreferences(m.store))
}

// Run starts the TUI. A nil store is opened from cfg, asking first when the
// config file or database does not exist yet.
func Run(store db.Store, cfg *config.Config, logger zerolog.Logger) error {
	initialStore := store
	var initState InitState

	if store == nil {
		state, err := DetectInitState(cfg)
		if err != nil {
			return err
		}
		initState = state
		if !state.NeedsInit {
			s, err := OpenStore(context.Background(), cfg)
			if err != nil {
				return err
			}
			store = s
		}
	}

	logger.Info().Str("theme", cfg.UI.Theme).Str("driver", cfg.Storage.Driver).Msg("starting tui")
	model := New(store, cfg, WithInitState(initState), WithLogger(logger))
	p := tea.NewProgram(*model, tea.WithAltScreen())
	finalModel, err := p.Run()
	if initialStore == nil {
		if m, ok := finalModel.(Model); ok && m.store != nil {
			_ = m.store.Close()
		}
	}
	return err
}
