package view

import (
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/clinicdesk/internal/appointment"
	"github.com/javiermolinar/clinicdesk/internal/schedule"
)

// TimelineSteps are the row resolutions tried, finest first.
var TimelineSteps = []int{15, 30, 60}

const timeLabelWidth = 6

// TimelineBlock is a laid-out appointment in the day view. Cell carries its
// lane as computed by schedule.LayoutDay.
type TimelineBlock struct {
	Appointment *appointment.Appointment
	Cell        schedule.Cell
	Pending     bool
	Selected    bool
}

// TimelineModel holds the day view inputs. Open and Close are minutes from
// midnight, Step is minutes per row and Offset the first visible row.
type TimelineModel struct {
	Width     int
	Height    int
	Open      int
	Close     int
	Step      int
	Offset    int
	NowMinute int // -1 when the day is not today
	Blocks    []TimelineBlock
	Bg        lipgloss.Color
}

// TimelineStyles groups the styles of the day view.
type TimelineStyles struct {
	Time     lipgloss.Style
	TimeNow  lipgloss.Style
	Empty    lipgloss.Style
	Hour     lipgloss.Style
	Selected lipgloss.Style
	Pending  lipgloss.Style
	Block    func(appointment.Status) lipgloss.Style
}

// TimelineStep returns the finest step whose rows fit in height.
func TimelineStep(open, close, height int) int {
	for _, step := range TimelineSteps {
		if TimelineRows(open, close, step) <= height {
			return step
		}
	}
	return TimelineSteps[len(TimelineSteps)-1]
}

// TimelineRows returns how many rows cover [open, close) at step.
func TimelineRows(open, close, step int) int {
	if step <= 0 || close <= open {
		return 0
	}
	return (close - open + step - 1) / step
}

// RowSpan returns the first and last row an appointment covers, clamped to
// the visible day.
func (m TimelineModel) RowSpan(a *appointment.Appointment) (first, last int, ok bool) {
	rows := TimelineRows(m.Open, m.Close, m.Step)
	start, end := a.StartMinute(), a.EndMinute()
	if rows == 0 || end <= m.Open || start >= m.Close {
		return 0, 0, false
	}
	first = max((start-m.Open)/m.Step, 0)
	last = min((end-m.Open+m.Step-1)/m.Step-1, rows-1)
	return first, max(first, last), true
}

type segment struct {
	x, end int
	text   string
	style  lipgloss.Style
}

// RenderTimeline draws the day as rows of time with appointments placed in
// their lanes. Lane widths follow each block's TotalColumns.
func RenderTimeline(model TimelineModel, styles TimelineStyles) string {
	rows := TimelineRows(model.Open, model.Close, model.Step)
	if model.Height <= 0 || rows == 0 {
		return PlaceBox(model.Width, max(model.Height, 0), lipgloss.Top, "", model.Bg)
	}
	laneW := max(model.Width-timeLabelWidth, 1)

	lines := make([]string, 0, model.Height)
	for row := model.Offset; row < rows && len(lines) < model.Height; row++ {
		minute := model.Open + row*model.Step
		label := styles.Time
		if model.NowMinute >= minute && model.NowMinute < minute+model.Step {
			label = styles.TimeNow
		}
		line := label.Render(Fit(appointment.MinutesToTime(minute), timeLabelWidth))

		empty := styles.Empty
		if minute%60 == 0 {
			empty = styles.Hour
		}
		line += renderSegments(model.segments(row, laneW, styles), laneW, empty)
		lines = append(lines, line)
	}
	return PlaceBox(model.Width, model.Height, lipgloss.Top, strings.Join(lines, "\n"), model.Bg)
}

func (m TimelineModel) segments(row, laneW int, styles TimelineStyles) []segment {
	var segs []segment
	for _, b := range m.Blocks {
		first, last, ok := m.RowSpan(b.Appointment)
		if !ok || row < first || row > last {
			continue
		}
		total := max(b.Cell.TotalColumns, 1)
		x := laneW * b.Cell.Column / total
		end := laneW * (b.Cell.Column + 1) / total

		style := lipgloss.NewStyle()
		if styles.Block != nil {
			style = styles.Block(b.Appointment.Status)
		}
		switch {
		case b.Selected:
			style = styles.Selected
		case b.Pending:
			style = styles.Pending
		}
		segs = append(segs, segment{x: x, end: end, text: blockLine(b, row-first), style: style})
	}
	slices.SortStableFunc(segs, func(a, b segment) int { return a.x - b.x })
	return segs
}

// blockLine is the text of the n-th row of a block.
func blockLine(b TimelineBlock, n int) string {
	a := b.Appointment
	switch n {
	case 0:
		text := a.Time + " " + a.PatientName
		if b.Pending {
			text += " …"
		}
		return text
	case 1:
		return a.DoctorName
	case 2:
		return string(a.Status) + " · " + string(a.Mode)
	default:
		return ""
	}
}

// renderSegments fills one row of lanes. A segment that starts inside an
// earlier one is clipped to the free space after it.
func renderSegments(segs []segment, width int, empty lipgloss.Style) string {
	var b strings.Builder
	cursor := 0
	for _, s := range segs {
		start := max(s.x, cursor)
		end := min(s.end, width)
		if end <= start {
			continue
		}
		if start > cursor {
			b.WriteString(empty.Render(strings.Repeat(" ", start-cursor)))
		}
		b.WriteString(s.style.Render(Fit(" "+s.text, end-start)))
		cursor = end
	}
	if cursor < width {
		b.WriteString(empty.Render(strings.Repeat(" ", width-cursor)))
	}
	return b.String()
}
