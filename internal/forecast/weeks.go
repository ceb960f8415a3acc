package forecast

import "time"

// Week index range of the forecast horizon: one week of history, the
// current week at index 0, and eleven weeks ahead. 13 windows total.
const (
	FirstWeekIndex = -1
	LastWeekIndex  = 11
	NumWeeks       = LastWeekIndex - FirstWeekIndex + 1
)

// Window is one weekly bucket of the forecast horizon. Start and End are
// both inclusive: [start, start+6d 23:59:59.999999999].
type Window struct {
	Index int
	Start time.Time
	End   time.Time
}

// Contains reports whether d falls inside the window.
func (w Window) Contains(d time.Time) bool {
	return !d.Before(w.Start) && !d.After(w.End)
}

// Calendar is the shared week bucketer. Every component that resolves a
// date to a week index goes through the same Calendar instance, so week
// boundaries are identical everywhere.
type Calendar struct {
	windows []Window
}

// NewCalendar builds the 13-window sequence anchored to the most recent
// weekStart day at or before now, in now's location.
func NewCalendar(now time.Time, weekStart time.Weekday) *Calendar {
	daysBack := (int(now.Weekday()) - int(weekStart) + 7) % 7
	anchor := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	anchor = anchor.AddDate(0, 0, -daysBack)

	windows := make([]Window, 0, NumWeeks)
	for idx := FirstWeekIndex; idx <= LastWeekIndex; idx++ {
		start := anchor.AddDate(0, 0, 7*idx)
		windows = append(windows, Window{
			Index: idx,
			Start: start,
			End:   start.AddDate(0, 0, 7).Add(-time.Nanosecond),
		})
	}
	return &Calendar{windows: windows}
}

// Windows returns the ordered 13-window sequence.
func (c *Calendar) Windows() []Window {
	return c.windows
}

// Window returns the window with the given forecast index.
func (c *Calendar) Window(index int) (Window, bool) {
	if index < FirstWeekIndex || index > LastWeekIndex {
		return Window{}, false
	}
	return c.windows[index-FirstWeekIndex], true
}

// HorizonStart returns the first instant of the horizon.
func (c *Calendar) HorizonStart() time.Time {
	return c.windows[0].Start
}

// HorizonEnd returns the last instant of the horizon.
func (c *Calendar) HorizonEnd() time.Time {
	return c.windows[len(c.windows)-1].End
}

// IndexForDate returns the index of the window containing d. Dates beyond
// the horizon clamp to the nearest edge window: forecast dates are carried
// forward into the last week, never dropped, and dates before the horizon
// resolve to the first week. Bucketing is total over the date line.
func (c *Calendar) IndexForDate(d time.Time) int {
	if d.Before(c.HorizonStart()) {
		return FirstWeekIndex
	}
	for _, w := range c.windows {
		if w.Contains(d) {
			return w.Index
		}
	}
	return LastWeekIndex
}
