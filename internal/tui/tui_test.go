package tui

import (
	"context"
	"errors"
	"os"
	"slices"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"github.com/javiermolinar/clinicdesk/internal/appointment"
	"github.com/javiermolinar/clinicdesk/internal/config"
	"github.com/javiermolinar/clinicdesk/internal/schedule"
	"github.com/javiermolinar/clinicdesk/internal/tui/commands"
	"github.com/javiermolinar/clinicdesk/internal/tui/theme"
	"github.com/javiermolinar/clinicdesk/internal/tui/view"
)

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

// Tuesday, mid-morning.
var testNow = time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC)

type fakeStore struct {
	appts     []*appointment.Appointment
	prefs     map[string]string
	updateErr error
	nextID    int
}

func newFakeStore() *fakeStore {
	day := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	mk := func(id, patient, doctor string, offset int, start string, status appointment.Status) *appointment.Appointment {
		return &appointment.Appointment{
			ID:              id,
			PatientName:     patient,
			DoctorName:      doctor,
			Date:            day.AddDate(0, 0, offset),
			Time:            start,
			DurationMinutes: 30,
			Status:          status,
			Mode:            appointment.ModeInPerson,
		}
	}
	return &fakeStore{
		appts: []*appointment.Appointment{
			mk("yesterday", "Leela Das", "Dr. Amit Gupta", -1, "11:00", appointment.StatusCancelled),
			mk("ravi", "Ravi Kumar", "Dr. Amit Gupta", 0, "09:00", appointment.StatusScheduled),
			mk("meera", "Meera Nair", "Dr. Sana Iyer", 0, "09:15", appointment.StatusConfirmed),
			mk("done", "Omar Sheikh", "Dr. Sana Iyer", 0, "08:00", appointment.StatusCompleted),
			mk("tomorrow", "Anya Roy", "Dr. Paul Mathew", 1, "14:00", appointment.StatusScheduled),
		},
		prefs: map[string]string{},
	}
}

func (f *fakeStore) List(ctx context.Context, q appointment.Query) ([]*appointment.Appointment, error) {
	var out []*appointment.Appointment
	for _, a := range f.appts {
		if q.Matches(a) {
			out = append(out, a.Clone())
		}
	}
	slices.SortStableFunc(out, func(a, b *appointment.Appointment) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return strings.Compare(a.Time, b.Time)
	})
	return out, nil
}

func (f *fakeStore) find(id string) *appointment.Appointment {
	for _, a := range f.appts {
		if a.ID == id {
			return a
		}
	}
	return nil
}

func (f *fakeStore) Get(ctx context.Context, id string) (*appointment.Appointment, error) {
	if a := f.find(id); a != nil {
		return a.Clone(), nil
	}
	return nil, appointment.ErrNotFound
}

func (f *fakeStore) Create(ctx context.Context, in appointment.Input) (*appointment.Appointment, error) {
	a, err := appointment.New(in, testNow)
	if err != nil {
		return nil, err
	}
	if err := appointment.CheckConflict(f.appts, a); err != nil {
		return nil, err
	}
	f.nextID++
	a.ID = "new" + strings.Repeat("+", f.nextID-1)
	f.appts = append(f.appts, a)
	return a.Clone(), nil
}

func (f *fakeStore) Update(ctx context.Context, id string, in appointment.Input) (*appointment.Appointment, error) {
	a := f.find(id)
	if a == nil {
		return nil, appointment.ErrNotFound
	}
	if err := a.Apply(in, testNow); err != nil {
		return nil, err
	}
	return a.Clone(), nil
}

func (f *fakeStore) UpdateStatus(ctx context.Context, id string, status appointment.Status) (*appointment.Appointment, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	a := f.find(id)
	if a == nil {
		return nil, appointment.ErrNotFound
	}
	a.Status = status
	return a.Clone(), nil
}

func (f *fakeStore) Delete(ctx context.Context, id string) error {
	i := slices.IndexFunc(f.appts, func(a *appointment.Appointment) bool { return a.ID == id })
	if i < 0 {
		return appointment.ErrNotFound
	}
	f.appts = slices.Delete(f.appts, i, i+1)
	return nil
}

func (f *fakeStore) Close() error { return nil }

func (f *fakeStore) Preference(ctx context.Context, key string) (string, bool, error) {
	v, ok := f.prefs[key]
	return v, ok, nil
}

func (f *fakeStore) SetPreference(ctx context.Context, key, value string) error {
	f.prefs[key] = value
	return nil
}

// newTestModel returns a sized model whose board has been loaded from store.
func newTestModel(t *testing.T, store *fakeStore) Model {
	t.Helper()
	cfg := config.Default()
	m := New(store, cfg, WithClock(func() time.Time { return testNow }))
	if err := m.board.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return updated.(Model)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends keys in order and returns the model and the last command.
func press(t *testing.T, m Model, keys ...tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var updated tea.Model
		updated, cmd = m.Update(k)
		m = updated.(Model)
	}
	return m, cmd
}

func filteredIDs(m Model) []string {
	ids := make([]string, len(m.view.Filtered))
	for i, a := range m.view.Filtered {
		ids[i] = a.ID
	}
	return ids
}

func TestModel_StartsOnTodayTab(t *testing.T) {
	m := newTestModel(t, newFakeStore())

	if m.view.Filter.Scope != schedule.ScopeToday {
		t.Errorf("scope = %s, want today", m.view.Filter.Scope)
	}
	want := []string{"done", "ravi", "meera"}
	if got := filteredIDs(m); !slices.Equal(got, want) {
		t.Errorf("filtered = %v, want %v", got, want)
	}
	if got := m.view.Summary.Total; got != 3 {
		t.Errorf("summary total = %d, want 3", got)
	}
}

func TestKeys_TabCyclesScope(t *testing.T) {
	m := newTestModel(t, newFakeStore())

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.view.Filter.Scope != schedule.ScopeUpcoming {
		t.Fatalf("scope = %s, want upcoming", m.view.Filter.Scope)
	}
	if len(m.view.Filtered) != 4 {
		t.Errorf("upcoming shows %d, want 4", len(m.view.Filtered))
	}

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyShiftTab}, tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.view.Filter.Scope != schedule.ScopeAll {
		t.Errorf("scope = %s, want all", m.view.Filter.Scope)
	}
}

func TestKeys_SearchFiltersWhileTyping(t *testing.T) {
	m := newTestModel(t, newFakeStore())

	m, _ = press(t, m, runes("/"))
	if m.mode != ModeSearch {
		t.Fatalf("mode = %v, want search", m.mode)
	}
	m, _ = press(t, m, runes("g"), runes("u"), runes("p"))
	if got := filteredIDs(m); !slices.Equal(got, []string{"ravi"}) {
		t.Errorf("filtered = %v, want [ravi]", got)
	}

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.mode != ModeNormal || m.view.Filter.SearchText != "" {
		t.Errorf("esc should leave search and clear it, got mode=%v search=%q", m.mode, m.view.Filter.SearchText)
	}
	if len(m.view.Filtered) != 3 {
		t.Errorf("filtered = %d after clearing, want 3", len(m.view.Filtered))
	}
}

func TestKeys_FacetsAndClear(t *testing.T) {
	m := newTestModel(t, newFakeStore())

	m, _ = press(t, m, runes("s"))
	if m.view.Filter.Status != string(appointment.StatusScheduled) {
		t.Fatalf("status facet = %q", m.view.Filter.Status)
	}
	if got := filteredIDs(m); !slices.Equal(got, []string{"ravi"}) {
		t.Errorf("filtered = %v", got)
	}

	m, _ = press(t, m, runes("d"))
	if m.view.Filter.Doctor != "Dr. Amit Gupta" {
		t.Errorf("doctor facet = %q", m.view.Filter.Doctor)
	}

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.view.Filter.Active() {
		t.Errorf("filters still active: %s", m.view.Filter.Describe())
	}
	if cmd == nil {
		t.Error("expected a status message command")
	}
}

func TestKeys_DatePrompt(t *testing.T) {
	m := newTestModel(t, newFakeStore())

	m, _ = press(t, m, runes("g"))
	m, _ = press(t, m, runes("2025-06-11"), tea.KeyMsg{Type: tea.KeyEnter})
	if got := filteredIDs(m); !slices.Equal(got, []string{"tomorrow"}) {
		t.Fatalf("filtered = %v, want [tomorrow]", got)
	}
	if m.board.Day().Day() != 11 {
		t.Errorf("selected day = %v, want the 11th", m.board.Day())
	}

	m, _ = press(t, m, runes("g"), tea.KeyMsg{Type: tea.KeyEnter})
	if m.view.Filter.ExplicitDate != nil {
		t.Error("empty date should clear the explicit date")
	}
}

func TestKeys_StatusChangeIsOptimistic(t *testing.T) {
	store := newFakeStore()
	m := newTestModel(t, store)
	m, _ = press(t, m, runes("j")) // done -> ravi

	m, _ = press(t, m, runes("c"))
	if m.modalType != ModalStatus {
		t.Fatalf("modal = %v, want status picker", m.modalType)
	}
	choice := slices.Index(m.statusChoices, appointment.StatusConfirmed)
	if choice < 0 {
		t.Fatalf("Confirmed not offered: %v", m.statusChoices)
	}
	m, cmd := press(t, m, runes(string(rune('1'+choice))))
	if cmd == nil {
		t.Fatal("expected a persist command")
	}

	a, _ := m.board.Get("ravi")
	if a.Status != appointment.StatusConfirmed || !m.view.Pending["ravi"] {
		t.Fatalf("expected optimistic Confirmed pending, got %s pending=%v", a.Status, m.view.Pending["ravi"])
	}

	updated, _ := m.Update(cmd())
	m = updated.(Model)
	if m.view.Pending["ravi"] {
		t.Error("mutation should be settled")
	}
	if store.find("ravi").Status != appointment.StatusConfirmed {
		t.Error("store was not updated")
	}
	if !strings.Contains(m.statusMsg, "Confirmed") {
		t.Errorf("status message = %q", m.statusMsg)
	}
}

func TestUpdate_StatusChangeWithoutStoredRecord(t *testing.T) {
	m := newTestModel(t, newFakeStore())

	mutation, err := m.board.BeginStatusChange("meera", appointment.StatusCancelled)
	if err != nil {
		t.Fatalf("BeginStatusChange: %v", err)
	}
	m.refreshView()
	updated, _ := m.Update(commands.StatusChangedMsg{Mutation: mutation})
	m = updated.(Model)

	if m.statusErr || m.statusMsg != "Meera Nair is now Cancelled" {
		t.Errorf("status = %q err=%v", m.statusMsg, m.statusErr)
	}
	if a, _ := m.board.Get("meera"); a.Status != appointment.StatusCancelled {
		t.Errorf("status = %s, want optimistic Cancelled kept", a.Status)
	}
}

func TestUpdate_StatusChangeRollsBack(t *testing.T) {
	store := newFakeStore()
	store.updateErr = errors.New("disk full")
	m := newTestModel(t, store)

	mutation, err := m.board.BeginStatusChange("meera", appointment.StatusCancelled)
	if err != nil {
		t.Fatalf("BeginStatusChange: %v", err)
	}
	m.refreshView()
	updated, cmd := m.Update(commands.StatusChangedMsg{Mutation: mutation, Err: store.updateErr})
	m = updated.(Model)

	a, _ := m.board.Get("meera")
	if a.Status != appointment.StatusConfirmed {
		t.Errorf("status = %s, want rolled back to Confirmed", a.Status)
	}
	if m.view.Pending["meera"] {
		t.Error("rolled back mutation should not stay pending")
	}
	if !m.statusErr || !strings.Contains(m.statusMsg, "disk full") {
		t.Errorf("status = %q err=%v", m.statusMsg, m.statusErr)
	}
	if cmd == nil {
		t.Error("expected a refresh after rollback")
	}
}

func TestKeys_StatusPickerWaitsForPendingChange(t *testing.T) {
	m := newTestModel(t, newFakeStore())
	if _, err := m.board.BeginStatusChange("ravi", appointment.StatusConfirmed); err != nil {
		t.Fatalf("BeginStatusChange: %v", err)
	}
	m.refreshView()
	m.selectID("ravi")

	m, cmd := press(t, m, runes("c"))
	if m.modalType != ModalNone {
		t.Errorf("modal = %v, want none while saving", m.modalType)
	}
	if cmd == nil {
		t.Fatal("expected a status message")
	}
	msg, ok := cmd().(commands.StatusMsgCmd)
	if !ok || !strings.Contains(msg.Msg, "still saving") {
		t.Errorf("unexpected message %#v", msg)
	}
}

func TestKeys_TerminalStatusOffersNothing(t *testing.T) {
	m := newTestModel(t, newFakeStore())

	m, _ = press(t, m, runes("c")) // done is Completed
	if m.modalType != ModalStatus {
		t.Fatalf("modal = %v", m.modalType)
	}
	if len(m.statusChoices) != 0 {
		t.Errorf("choices = %v, want none", m.statusChoices)
	}
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Error("enter on a final status should do nothing")
	}
	if !strings.Contains(ansi.Strip(m.View()), "cannot change") {
		t.Error("picker should explain the status is final")
	}
}

func TestForm_CreateAppointment(t *testing.T) {
	store := newFakeStore()
	m := newTestModel(t, store)

	m, _ = press(t, m, runes("a"))
	if m.modalType != ModalForm || m.form.editingID != "" {
		t.Fatalf("expected create form, got modal %v", m.modalType)
	}
	if m.form.value(fieldDate) != "2025-06-10" || m.form.value(fieldDuration) != "30" {
		t.Errorf("unexpected defaults: date=%q length=%q", m.form.value(fieldDate), m.form.value(fieldDuration))
	}

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil || m.form.err == "" {
		t.Fatalf("empty patient should fail validation, err=%q", m.form.err)
	}

	m, _ = press(t, m, runes("Kiran Shah"), tea.KeyMsg{Type: tea.KeyTab}, runes("Dr. Paul Mathew"))
	m.form.inputs[fieldTime].SetValue("15:00")
	m, cmd = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatalf("expected a create command, form err %q", m.form.err)
	}

	updated, _ := m.Update(cmd())
	m = updated.(Model)
	if m.modalType != ModalNone {
		t.Errorf("form should close after saving, modal = %v", m.modalType)
	}
	if len(store.appts) != 6 {
		t.Errorf("store has %d appointments, want 6", len(store.appts))
	}
	if a := m.selected(); a == nil || a.PatientName != "Kiran Shah" {
		t.Errorf("cursor should move to the new appointment, got %v", a)
	}
}

func TestForm_ConflictKeepsFormOpen(t *testing.T) {
	m := newTestModel(t, newFakeStore())
	m, _ = press(t, m, runes("j"), runes("e"))
	if m.form.editingID != "ravi" {
		t.Fatalf("editing %q, want ravi", m.form.editingID)
	}

	updated, _ := m.Update(commands.SavedMsg{Err: appointment.ErrSlotConflict})
	m = updated.(Model)
	if m.modalType != ModalForm || m.form.err == "" {
		t.Errorf("conflict should stay in the form, modal=%v err=%q", m.modalType, m.form.err)
	}
}

func TestForm_ToggleMode(t *testing.T) {
	m := newTestModel(t, newFakeStore())
	m, _ = press(t, m, runes("a"))
	m.form.setFocus(fieldMode)

	m, _ = press(t, m, runes(" "))
	if m.form.mode != appointment.ModeOnline {
		t.Errorf("mode = %s, want Online", m.form.mode)
	}
}

func TestForm_SuggestsNextFreeSlot(t *testing.T) {
	m := newTestModel(t, newFakeStore())
	m, _ = press(t, m, runes("a"), runes("Kiran Shah"), tea.KeyMsg{Type: tea.KeyTab}, runes("Dr. Amit Gupta"))

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlN})
	if m.form.err != "" {
		t.Fatalf("unexpected error %q", m.form.err)
	}
	if m.form.value(fieldDate) != "2025-06-10" || m.form.value(fieldTime) != "10:00" {
		t.Errorf("suggested %s %s, want 2025-06-10 10:00", m.form.value(fieldDate), m.form.value(fieldTime))
	}
}

func TestKeys_DeleteAsksFirst(t *testing.T) {
	store := newFakeStore()
	m := newTestModel(t, store)

	m, cmd := press(t, m, runes("x"), runes("n"))
	if cmd != nil || m.modalType != ModalNone || len(store.appts) != 5 {
		t.Fatal("n should keep the appointment")
	}

	m, cmd = press(t, m, runes("x"), runes("y"))
	if cmd == nil {
		t.Fatal("expected a delete command")
	}
	updated, _ := m.Update(cmd())
	m = updated.(Model)
	if len(store.appts) != 4 || len(m.view.Filtered) != 2 {
		t.Errorf("store=%d filtered=%d after delete", len(store.appts), len(m.view.Filtered))
	}
}

func TestKeys_PaneNavigation(t *testing.T) {
	m := newTestModel(t, newFakeStore())

	m, _ = press(t, m, runes("v"))
	if m.pane != PaneDay {
		t.Fatalf("pane = %v, want Day", m.pane)
	}
	if m.view.Day.Len() != 3 {
		t.Errorf("day shows %d, want 3", m.view.Day.Len())
	}
	m, _ = press(t, m, runes("l"))
	if m.board.Day().Day() != 11 || m.view.Day.Len() != 1 {
		t.Errorf("l should move to the 11th, day=%v len=%d", m.board.Day(), m.view.Day.Len())
	}

	m, _ = press(t, m, runes("v"), runes("j"))
	if m.pane != PaneMonth || m.board.Day().Day() != 18 {
		t.Errorf("j in month should move a week, got %v", m.board.Day())
	}
	m, _ = press(t, m, runes("L"))
	if m.board.Day().Month() != time.July {
		t.Errorf("L should move a month, got %v", m.board.Day())
	}
	m, _ = press(t, m, runes("t"), tea.KeyMsg{Type: tea.KeyEnter})
	if m.pane != PaneDay || m.board.Day().Day() != 10 {
		t.Errorf("t then enter should open today, pane=%v day=%v", m.pane, m.board.Day())
	}
}

func TestUpdate_WelcomeShownOnce(t *testing.T) {
	store := newFakeStore()
	m := newTestModel(t, store)

	updated, _ := m.Update(commands.PreferencesMsg{WelcomeSeen: false})
	m = updated.(Model)
	if m.modalType != ModalWelcome {
		t.Fatalf("modal = %v, want welcome", m.modalType)
	}
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.modalType != ModalNone || cmd == nil {
		t.Fatal("enter should close welcome and store the preference")
	}
	cmd()
	if store.prefs[appointment.PreferenceWelcomeSeen] != "true" {
		t.Errorf("prefs = %v", store.prefs)
	}

	updated, _ = m.Update(commands.PreferencesMsg{WelcomeSeen: true})
	if updated.(Model).modalType != ModalNone {
		t.Error("welcome should not show again")
	}
}

func TestUpdate_StatusMessageClears(t *testing.T) {
	m := newTestModel(t, newFakeStore())

	updated, cmd := m.Update(commands.StatusMsgCmd{Msg: "Copied"})
	m = updated.(Model)
	if m.statusMsg != "Copied" || cmd == nil {
		t.Fatalf("status = %q", m.statusMsg)
	}
	m.statusTime = testNow.Add(-time.Second)
	updated, _ = m.Update(commands.ClearStatusMsg{})
	if updated.(Model).statusMsg != "" {
		t.Error("status message should clear after it expires")
	}
}

func TestView_Panes(t *testing.T) {
	m := newTestModel(t, newFakeStore())

	tests := []struct {
		pane Pane
		want []string
	}{
		{PaneList, []string{"clinicdesk", "Today (3)", "Upcoming (4)", "Ravi Kumar", "Patient", "3 appointments"}},
		{PaneDay, []string{"Tuesday, June 10 2025", "09:00", "Meera Nair"}},
		{PaneMonth, []string{"June 2025", "Mo", "[10]", "less", "more"}},
	}
	for _, tt := range tests {
		t.Run(tt.pane.String(), func(t *testing.T) {
			m.pane = tt.pane
			out := ansi.Strip(m.View())
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("view missing %q", want)
				}
			}
			if lines := strings.Count(out, "\n") + 1; lines != m.height {
				t.Errorf("rendered %d lines, want %d", lines, m.height)
			}
		})
	}
}

func TestView_NotSized(t *testing.T) {
	m := New(newFakeStore(), config.Default())
	if got := m.View(); got != "Loading..." {
		t.Errorf("View() = %q", got)
	}
}

func TestView_TooSmall(t *testing.T) {
	m := New(newFakeStore(), config.Default())
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 40, Height: 3})
	if got := updated.(Model).View(); got != view.TooSmall {
		t.Errorf("View() = %q", got)
	}
}

func TestCopyText(t *testing.T) {
	store := newFakeStore()
	got := copyText(store.appts[1:2])
	want := "Date\tTime\tPatient\tDoctor\tLength\tMode\tStatus\n" +
		"2025-06-10\t09:00\tRavi Kumar\tDr. Amit Gupta\t30\tIn-Person\tScheduled\n"
	if got != want {
		t.Errorf("copyText() = %q, want %q", got, want)
	}
}

func TestClamp(t *testing.T) {
	if clamp(5, 0, 3) != 3 || clamp(-1, 0, 3) != 0 || clamp(2, 0, -1) != 0 {
		t.Error("clamp out of range")
	}
}

func TestStyles_HeatOutOfRange(t *testing.T) {
	th, err := theme.Load("mocha")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	s := NewStyles(th)
	if got, want := s.Heat(9).Render("x"), s.Heat(schedule.MaxBucket).Render("x"); got != want {
		t.Errorf("Heat(9) = %q, want the top bucket %q", got, want)
	}
	if got, want := s.Heat(-1).Render("x"), s.Heat(0).Render("x"); got != want {
		t.Errorf("Heat(-1) = %q, want the empty bucket %q", got, want)
	}
}
