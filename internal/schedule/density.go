package schedule

import (
	"fmt"
	"time"

	"github.com/javiermolinar/clinicdesk/internal/appointment"
	"github.com/javiermolinar/clinicdesk/internal/dateutil"
)

// Bucket is the heat-map intensity of a day: the number of non-cancelled
// appointments clamped at MaxBucket.
type Bucket int

// MaxBucket is the "4 or more" bucket.
const MaxBucket Bucket = 4

// String renders the bucket as shown in legends ("0".."3", "4+").
func (b Bucket) String() string {
	if b >= MaxBucket {
		return "4+"
	}
	return fmt.Sprintf("%d", int(b))
}

// Clamp limits b to the range 0..MaxBucket, for indexing per-bucket tables.
func (b Bucket) Clamp() Bucket {
	return min(max(b, 0), MaxBucket)
}

// DensityMap maps a civil day (YYYY-MM-DD) to its appointment count.
// Counts are stored unclamped; Bucket clamps on read.
type DensityMap map[string]int

// Density counts non-cancelled appointments per calendar day.
// It is meant for the full, unfiltered snapshot.
func Density(appts []*appointment.Appointment) DensityMap {
	m := make(DensityMap)
	for _, a := range appts {
		if a == nil || a.IsCancelled() {
			continue
		}
		m[a.DateKey()]++
	}
	return m
}

// Count returns the raw number of contributing appointments on date.
func (m DensityMap) Count(date time.Time) int {
	return m[dateutil.Key(date)]
}

// Bucket returns the clamped intensity of date. Days without appointments are 0.
func (m DensityMap) Bucket(date time.Time) Bucket {
	return Bucket(m.Count(date)).Clamp()
}

// Total returns the number of appointments that contributed to the map.
func (m DensityMap) Total() int {
	total := 0
	for _, n := range m {
		total += n
	}
	return total
}
