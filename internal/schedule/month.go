package schedule

import (
	"time"

	"github.com/javiermolinar/clinicdesk/internal/dateutil"
)

// DayCell is one square of the month heat map.
type DayCell struct {
	Date    time.Time
	Count   int
	Bucket  Bucket
	InMonth bool // false for leading and trailing days of adjacent months
}

// MonthGrid returns the Monday-first weeks covering the month of month,
// each cell annotated from density.
func MonthGrid(month time.Time, density DensityMap) [][]DayCell {
	first, last := dateutil.MonthRange(month)
	start, _ := dateutil.WeekRange(first)
	_, end := dateutil.WeekRange(last)

	var weeks [][]DayCell
	for day := start; dateutil.CompareDays(day, end) <= 0; day = day.AddDate(0, 0, 7) {
		week := make([]DayCell, 7)
		for i := range week {
			d := day.AddDate(0, 0, i)
			week[i] = DayCell{
				Date:    d,
				Count:   density.Count(d),
				Bucket:  density.Bucket(d),
				InMonth: d.Month() == first.Month(),
			}
		}
		weeks = append(weeks, week)
	}
	return weeks
}
