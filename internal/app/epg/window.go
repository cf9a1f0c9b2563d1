package epg

import (
	"time"
)

// TimeWindow is one query range of the 48-hour lookahead. Start and End
// carry the source's native anchor: instants in the guide timezone for the
// epoch/civil-timestamp upstreams, UTC-midnight dates for the calendar-day
// upstreams.
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// EpochSeconds returns the window start as epoch seconds (Sky).
func (w TimeWindow) EpochSeconds() int64 {
	return w.Start.Unix()
}

// Civil renders t as a timezone-naive local timestamp with the literal "Z"
// suffix the BT schedule API expects.
func Civil(t time.Time) string {
	return t.Format("2006-01-02T15:04:05") + "Z"
}

// Day returns the window's calendar date (BBC radio, Freeview).
func (w TimeWindow) Day() time.Time {
	return w.Start
}

// Windows generates the three query windows for one source kind: roughly
// now through the local midnight after next. Deterministic given now and the
// guide timezone.
func Windows(kind SourceKind, now time.Time, loc *time.Location) []TimeWindow {
	switch kind {
	case SourceBBCRadio, SourceFreeview:
		// Calendar-day sources are queried by UTC-anchored dates.
		day := now.UTC().Truncate(24 * time.Hour)
		return []TimeWindow{
			{Start: day, End: day.AddDate(0, 0, 1)},
			{Start: day.AddDate(0, 0, 1), End: day.AddDate(0, 0, 2)},
			{Start: day.AddDate(0, 0, 2), End: day.AddDate(0, 0, 3)},
		}
	default:
		local := now.In(loc)
		midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
		return []TimeWindow{
			{Start: local.Add(-time.Hour), End: midnight.AddDate(0, 0, 1)},
			{Start: midnight.AddDate(0, 0, 1), End: midnight.AddDate(0, 0, 2)},
			{Start: midnight.AddDate(0, 0, 2), End: midnight.AddDate(0, 0, 3)},
		}
	}
}
