package view

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/javiermolinar/clinicdesk/internal/appointment"
)

// ListColumns are the headers of the appointment list.
var ListColumns = []string{"Date", "Time", "Patient", "Doctor", "Length", "Mode", "Status"}

// ListRow is one appointment as shown in the list.
type ListRow struct {
	Appointment *appointment.Appointment
	Pending     bool
	Past        bool
	Selected    bool
}

// Cells returns the row's column values.
func (r ListRow) Cells() []string {
	a := r.Appointment
	status := string(a.Status)
	if r.Pending {
		status += " …"
	}
	return []string{
		a.Date.Format("Mon Jan 2"),
		a.Time + "-" + a.EndTime(),
		a.PatientName,
		a.DoctorName,
		FormatDuration(a.DurationMinutes),
		string(a.Mode),
		status,
	}
}

// ListStyles groups the styles of the list table.
type ListStyles struct {
	Header   lipgloss.Style
	Cell     lipgloss.Style
	Past     lipgloss.Style
	Selected lipgloss.Style
	Pending  lipgloss.Style
	Border   lipgloss.Style
	Empty    lipgloss.Style
	Status   func(appointment.Status) lipgloss.Style
}

// ListModel holds the rows in the visible window of the list.
type ListModel struct {
	Width  int
	Height int
	Rows   []ListRow
	Empty  string
	Bg     lipgloss.Color
}

const statusColumn = 6

// RenderList renders the appointment table.
func RenderList(model ListModel, styles ListStyles) string {
	if model.Height <= 0 {
		return ""
	}
	if len(model.Rows) == 0 {
		return PlaceBox(model.Width, model.Height, lipgloss.Center, styles.Empty.Width(model.Width).Align(lipgloss.Center).Render(model.Empty), model.Bg)
	}

	rows := make([][]string, len(model.Rows))
	for i, r := range model.Rows {
		rows[i] = r.Cells()
	}
	frame := 0
	for _, st := range []lipgloss.Style{styles.Header, styles.Cell, styles.Past, styles.Selected, styles.Pending} {
		frame = max(frame, st.GetHorizontalFrameSize())
	}
	// Two outer border cells; columns have no separators.
	widths := ListColumnWidths(rows, model.Width-2-frame*len(ListColumns))
	headers := make([]string, len(ListColumns))
	for c, h := range ListColumns {
		headers[c] = Fit(h, widths[c])
	}
	for _, row := range rows {
		for c := range row {
			row[c] = Fit(row[c], widths[c])
		}
	}

	t := table.New().
		Headers(headers...).
		Height(model.Height).
		Border(lipgloss.RoundedBorder()).
		BorderHeader(true).
		BorderColumn(false).
		BorderRow(false).
		BorderStyle(styles.Border).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.Header
			}
			if row < 0 || row >= len(model.Rows) {
				return styles.Cell
			}
			r := model.Rows[row]
			switch {
			case r.Selected:
				return styles.Selected
			case col == statusColumn && r.Pending:
				return styles.Pending
			case col == statusColumn && styles.Status != nil:
				return styles.Status(r.Appointment.Status)
			case r.Past:
				return styles.Past
			default:
				return styles.Cell
			}
		})

	return PlaceBox(model.Width, model.Height, lipgloss.Top, t.Render(), model.Bg)
}

// Patient and Doctor absorb any width the table lacks or has to spare.
const (
	patientColumn = 2
	doctorColumn  = 3
	minNameWidth  = 4
)

// ListColumnWidths returns the content width of each list column so that
// their sum is avail. Fixed columns keep their natural width; the name
// columns shrink down to minNameWidth or grow to fill. The sum exceeds
// avail only when even the shrunken names do not fit.
func ListColumnWidths(rows [][]string, avail int) []int {
	widths := make([]int, len(ListColumns))
	for c, h := range ListColumns {
		widths[c] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for c, cell := range row {
			if c < len(widths) {
				widths[c] = max(widths[c], lipgloss.Width(cell))
			}
		}
	}

	total := 0
	for _, w := range widths {
		total += w
	}
	for ; total > avail; total-- {
		wider := patientColumn
		if widths[doctorColumn] > widths[patientColumn] {
			wider = doctorColumn
		}
		if widths[wider] <= minNameWidth {
			break
		}
		widths[wider]--
	}
	for extra := avail - total; extra > 0; extra-- {
		if extra%2 == 0 {
			widths[patientColumn]++
		} else {
			widths[doctorColumn]++
		}
	}
	return widths
}

// ListWindow returns the [start, end) range of rows to show so that cursor
// stays visible in a list of n rows with room for visible rows.
func ListWindow(n, cursor, offset, visible int) (start, end int) {
	if visible <= 0 || n == 0 {
		return 0, 0
	}
	cursor = min(max(cursor, 0), n-1)
	start = min(max(offset, 0), max(n-visible, 0))
	if cursor < start {
		start = cursor
	}
	if cursor >= start+visible {
		start = cursor - visible + 1
	}
	return start, min(start+visible, n)
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
