package tui

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/clinicdesk/internal/appointment"
	"github.com/javiermolinar/clinicdesk/internal/dateutil"
	"github.com/javiermolinar/clinicdesk/internal/tui/view"
)

type formField int

const (
	fieldPatient formField = iota
	fieldDoctor
	fieldDate
	fieldTime
	fieldDuration
	fieldMode
	fieldNotes
	fieldCount
)

var formLabels = [fieldCount]string{"Patient", "Doctor", "Date", "Time", "Length", "Mode", "Notes"}

var formHints = [fieldCount]string{
	fieldDate:     "YYYY-MM-DD",
	fieldTime:     "HH:MM, ctrl+n finds the next free slot",
	fieldDuration: "minutes",
	fieldMode:     "space to toggle",
}

var errDurationNotNumber = errors.New("length must be a whole number of minutes")

// appointmentForm edits every caller-editable field of an appointment.
// The mode field has no text input; it toggles between the two modes.
type appointmentForm struct {
	editingID string // empty when creating
	status    appointment.Status
	inputs    [fieldCount]textinput.Model
	mode      appointment.Mode
	focus     formField
	err       string
}

func newAppointmentForm(styles *Styles) appointmentForm {
	var f appointmentForm
	placeholders := [fieldCount]string{"Full name", "Dr. ...", "2025-06-10", "09:30", "30", "", "Optional"}
	limits := [fieldCount]int{80, 80, 10, 5, 3, 0, 200}
	for i := range f.inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = placeholders[i]
		ti.CharLimit = limits[i]
		ti.Width = 32
		ti.PlaceholderStyle = styles.Modal.Hint
		ti.TextStyle = styles.Modal.Body
		ti.Cursor.Style = styles.Modal.InputFocused
		f.inputs[i] = ti
	}
	f.mode = appointment.ModeInPerson
	return f
}

// reset prepares the form for a new appointment.
func (f *appointmentForm) reset(date time.Time, start string, duration int) {
	f.editingID = ""
	f.status = appointment.StatusScheduled
	f.mode = appointment.ModeInPerson
	f.err = ""
	for i := range f.inputs {
		f.inputs[i].SetValue("")
	}
	f.inputs[fieldDate].SetValue(dateutil.Key(date))
	f.inputs[fieldTime].SetValue(start)
	f.inputs[fieldDuration].SetValue(strconv.Itoa(duration))
	f.setFocus(fieldPatient)
}

// load fills the form from an existing appointment.
func (f *appointmentForm) load(a *appointment.Appointment) {
	in := a.ToInput()
	f.editingID = a.ID
	f.status = in.Status
	f.mode = in.Mode
	f.err = ""
	f.inputs[fieldPatient].SetValue(in.PatientName)
	f.inputs[fieldDoctor].SetValue(in.DoctorName)
	f.inputs[fieldDate].SetValue(in.Date)
	f.inputs[fieldTime].SetValue(in.Time)
	f.inputs[fieldDuration].SetValue(strconv.Itoa(in.DurationMinutes))
	f.inputs[fieldNotes].SetValue(in.Notes)
	f.setFocus(fieldPatient)
}

func (f *appointmentForm) setFocus(field formField) {
	f.focus = (field + fieldCount) % fieldCount
	for i := range f.inputs {
		if formField(i) == f.focus {
			f.inputs[i].Focus()
		} else {
			f.inputs[i].Blur()
		}
	}
}

func (f *appointmentForm) next() { f.setFocus(f.focus + 1) }
func (f *appointmentForm) prev() { f.setFocus(f.focus - 1) }

func (f *appointmentForm) toggleMode() {
	if f.mode == appointment.ModeOnline {
		f.mode = appointment.ModeInPerson
	} else {
		f.mode = appointment.ModeOnline
	}
}

func (f appointmentForm) value(field formField) string {
	return strings.TrimSpace(f.inputs[field].Value())
}

// Input returns the normalized, validated payload.
func (f appointmentForm) Input() (appointment.Input, error) {
	duration, err := strconv.Atoi(f.value(fieldDuration))
	if err != nil {
		return appointment.Input{}, errDurationNotNumber
	}
	in := appointment.Input{
		PatientName:     f.value(fieldPatient),
		DoctorName:      f.value(fieldDoctor),
		Date:            f.value(fieldDate),
		Time:            f.value(fieldTime),
		DurationMinutes: duration,
		Status:          f.status,
		Mode:            f.mode,
		Notes:           f.value(fieldNotes),
	}.Normalize()
	return in, in.Validate()
}

// update forwards a message to the focused input.
func (f appointmentForm) update(msg tea.Msg) (appointmentForm, tea.Cmd) {
	if f.focus == fieldMode {
		return f, nil
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

func (f appointmentForm) title() string {
	if f.editingID == "" {
		return "New appointment"
	}
	return "Edit appointment"
}

func (f appointmentForm) fields() []view.FormField {
	out := make([]view.FormField, fieldCount)
	for i := range out {
		field := formField(i)
		value := f.inputs[i].View()
		if field == fieldMode {
			value = "< " + string(f.mode) + " >"
		}
		out[i] = view.FormField{
			Label:   formLabels[i],
			Value:   value,
			Focused: field == f.focus,
			Hint:    formHints[i],
		}
	}
	return out
}
