// Package slots resolves calendar dates to the fixed catalog of bookable
// 2-hour windows and joins them against backend lock status.
package slots

import (
	"fmt"
	"time"
)

// LocalStart is the wall-clock start of a slot window.
type LocalStart struct {
	Hour   int
	Minute int
}

// Descriptor describes one bookable 2-hour window.
type Descriptor struct {
	Label string
	Start LocalStart
}

// Catalog is the fixed set of four daily windows. The backend's slot-lock map
// is keyed by the window start, so order and times must not drift from it.
var Catalog = []Descriptor{
	{Label: "9:30 AM - 11:30 AM", Start: LocalStart{Hour: 9, Minute: 30}},
	{Label: "11:30 AM - 1:30 PM", Start: LocalStart{Hour: 11, Minute: 30}},
	{Label: "2:30 PM - 4:30 PM", Start: LocalStart{Hour: 14, Minute: 30}},
	{Label: "4:30 PM - 6:30 PM", Start: LocalStart{Hour: 16, Minute: 30}},
}

// PickerDayCount is how many calendar days the slot picker offers.
const PickerDayCount = 10

// StartTime materializes the slot start on the given date in loc.
func (d Descriptor) StartTime(date time.Time, loc *time.Location) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), d.Start.Hour, d.Start.Minute, 0, 0, loc)
}

// Key derives the canonical SlotKey for a local slot start: the UTC-normalized
// YYYYMMDD-HHmm representation. The same local instant always yields the same
// key, independent of the zone the process happens to run in.
func Key(startLocal time.Time) string {
	utc := startLocal.UTC()
	return fmt.Sprintf("%04d%02d%02d-%02d%02d",
		utc.Year(), int(utc.Month()), utc.Day(), utc.Hour(), utc.Minute())
}

// BookableDays returns the next PickerDayCount calendar days starting
// tomorrow, normalized to midnight in loc.
func BookableDays(now time.Time, loc *time.Location) []time.Time {
	start := now.In(loc)
	tomorrow := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, 1)
	days := make([]time.Time, 0, PickerDayCount)
	for i := 0; i < PickerDayCount; i++ {
		days = append(days, tomorrow.AddDate(0, 0, i))
	}
	return days
}

// DateParam formats a picker day as the YYYY-MM-DD query parameter the
// slot-lock endpoint expects.
func DateParam(date time.Time) string {
	return date.Format("2006-01-02")
}
