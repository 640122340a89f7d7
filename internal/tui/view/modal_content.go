package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/clinicdesk/internal/appointment"
)

// RenderDetailBody lists every field of an appointment.
func RenderDetailBody(a *appointment.Appointment, pending bool, styles ModalStyles) string {
	status := string(a.Status)
	if pending {
		status += " (saving…)"
	}
	rows := [][2]string{
		{"Patient", a.PatientName},
		{"Doctor", a.DoctorName},
		{"When", a.Date.Format("Mon Jan 2 2006") + " " + a.Time + "-" + a.EndTime()},
		{"Length", FormatDuration(a.DurationMinutes)},
		{"Mode", string(a.Mode)},
		{"Status", status},
	}
	if a.Notes != "" {
		rows = append(rows, [2]string{"Notes", a.Notes})
	}
	return renderFields(rows, styles)
}

func renderFields(rows [][2]string, styles ModalStyles) string {
	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = styles.Label.Render(fmt.Sprintf(" %-8s", r[0])) + styles.Body.Render(" "+r[1])
	}
	return strings.Join(lines, "\n")
}

// RenderStatusPicker lists the legal next statuses with the cursor on active.
func RenderStatusPicker(current appointment.Status, choices []appointment.Status, active int, styles ModalStyles) string {
	var b strings.Builder
	b.WriteString(styles.Meta.Render(" Current: "+string(current)) + "\n\n")
	if len(choices) == 0 {
		b.WriteString(styles.Hint.Render(" " + string(current) + " is final and cannot change."))
		return b.String()
	}
	for i, s := range choices {
		style := styles.Choice
		marker := "  "
		if i == active {
			style = styles.ChoiceActive
			marker = "> "
		}
		b.WriteString(style.Render(fmt.Sprintf(" %s%d. %s ", marker, i+1, s)) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderConfirmBody renders a yes/no question.
func RenderConfirmBody(message string, styles ModalStyles) string {
	return styles.Body.Render(" " + message)
}

// FormField is one input row of the appointment form.
type FormField struct {
	Label   string
	Value   string // already rendered input
	Focused bool
	Hint    string
}

// RenderFormBody renders labelled inputs and an optional validation error.
func RenderFormBody(fields []FormField, errText string, styles ModalStyles) string {
	var b strings.Builder
	for _, f := range fields {
		input := styles.Input
		if f.Focused {
			input = styles.InputFocused
		}
		line := styles.Label.Render(fmt.Sprintf(" %-9s", f.Label)) + input.Render(f.Value)
		if f.Hint != "" && f.Focused {
			line += styles.Hint.Render(" " + f.Hint)
		}
		b.WriteString(line + "\n")
	}
	if errText != "" {
		b.WriteString("\n" + styles.Error.Render(" "+errText))
	}
	return strings.TrimRight(b.String(), "\n")
}

// KeyHelp is a key and what it does.
type KeyHelp struct {
	Key  string
	Desc string
}

// RenderHelpBody renders key bindings in two aligned columns.
func RenderHelpBody(keys []KeyHelp, styles ModalStyles) string {
	width := 0
	for _, k := range keys {
		width = max(width, lipgloss.Width(k.Key))
	}
	lines := make([]string, len(keys))
	for i, k := range keys {
		lines[i] = styles.Label.Render(" "+Fit(k.Key, width)) + styles.Body.Render("  "+k.Desc)
	}
	return strings.Join(lines, "\n")
}

// RenderWelcomeBody is shown on first launch.
func RenderWelcomeBody(styles ModalStyles) string {
	lines := []string{
		"Appointments are grouped by the tabs at the top:",
		"Today, Upcoming, Past and All.",
		"",
		"Press v to switch between the list, the day",
		"timeline and the month heat map.",
		"Press ? at any time to see every key.",
	}
	for i, l := range lines {
		lines[i] = styles.Body.Render(" " + l)
	}
	return strings.Join(lines, "\n")
}
