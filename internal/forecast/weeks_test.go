package forecast

import (
	"testing"
	"time"
)

// 2026-08-25 is a Tuesday; the Monday of its week is 2026-08-24.
var testNow = time.Date(2026, 8, 25, 10, 30, 0, 0, time.UTC)

func TestNewCalendar_MondayAnchor(t *testing.T) {
	cal := NewCalendar(testNow, time.Monday)

	w0, ok := cal.Window(0)
	if !ok {
		t.Fatal("window 0 missing")
	}
	wantStart := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	if !w0.Start.Equal(wantStart) {
		t.Errorf("week 0 start = %v, want %v", w0.Start, wantStart)
	}

	prev, ok := cal.Window(FirstWeekIndex)
	if !ok {
		t.Fatal("first window missing")
	}
	if !prev.Start.Equal(wantStart.AddDate(0, 0, -7)) {
		t.Errorf("week -1 start = %v, want %v", prev.Start, wantStart.AddDate(0, 0, -7))
	}

	if got := len(cal.Windows()); got != NumWeeks {
		t.Errorf("window count = %d, want %d", got, NumWeeks)
	}
}

func TestNewCalendar_SundayWeekStart(t *testing.T) {
	cal := NewCalendar(testNow, time.Sunday)

	w0, _ := cal.Window(0)
	wantStart := time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC)
	if !w0.Start.Equal(wantStart) {
		t.Errorf("week 0 start = %v, want %v", w0.Start, wantStart)
	}
}

func TestIndexForDate_CoversEveryDayExactlyOnce(t *testing.T) {
	cal := NewCalendar(testNow, time.Monday)

	for d := cal.HorizonStart(); !d.After(cal.HorizonEnd()); d = d.AddDate(0, 0, 1) {
		contained := 0
		for _, w := range cal.Windows() {
			if w.Contains(d) {
				contained++
			}
		}
		if contained != 1 {
			t.Fatalf("date %v contained in %d windows, want 1", d, contained)
		}

		idx := cal.IndexForDate(d)
		w, ok := cal.Window(idx)
		if !ok || !w.Contains(d) {
			t.Fatalf("IndexForDate(%v) = %d, window does not contain date", d, idx)
		}
	}
}

func TestIndexForDate_ClampsBeyondHorizon(t *testing.T) {
	cal := NewCalendar(testNow, time.Monday)

	far := cal.HorizonEnd().AddDate(0, 0, 90)
	if got := cal.IndexForDate(far); got != LastWeekIndex {
		t.Errorf("far-future index = %d, want %d", got, LastWeekIndex)
	}

	past := cal.HorizonStart().AddDate(0, 0, -30)
	if got := cal.IndexForDate(past); got != FirstWeekIndex {
		t.Errorf("far-past index = %d, want %d", got, FirstWeekIndex)
	}
}

func TestWindow_InclusiveBoundaries(t *testing.T) {
	cal := NewCalendar(testNow, time.Monday)
	w, _ := cal.Window(0)

	if !w.Contains(w.Start) {
		t.Error("window excludes its own start")
	}
	if !w.Contains(w.End) {
		t.Error("window excludes its own end")
	}
	if w.Contains(w.End.Add(time.Nanosecond)) {
		t.Error("window contains the next window's start")
	}

	// End of week 0 and start of week 1 are adjacent, not overlapping.
	next, _ := cal.Window(1)
	if !w.End.Add(time.Nanosecond).Equal(next.Start) {
		t.Errorf("week 0 end %v does not abut week 1 start %v", w.End, next.Start)
	}
}
