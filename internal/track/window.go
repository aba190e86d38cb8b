package track

import (
	"fmt"
	"time"

	"github.com/couchcryptid/storm-vortex-track/internal/domain"
)

const dateLayout = "2006-01-02T15:04Z"

// applyWindow sets the construction-time dates. Offsets win over absolute
// dates when both are given.
func (t *Track) applyWindow(s settings) error {
	first, last, _ := t.table.Bounds()

	start := s.start
	if s.startOffset != nil {
		start = offsetFrom(first, last, *s.startOffset)
	}
	end := s.end
	if s.endOffset != nil {
		end = offsetFrom(first, last, *s.endOffset)
	}

	if err := t.SetStartDate(start); err != nil {
		return err
	}
	return t.SetEndDate(end)
}

// offsetFrom counts a non-negative offset from first and a negative one back
// from last.
func offsetFrom(first, last time.Time, d time.Duration) time.Time {
	if d < 0 {
		return last.Add(d)
	}
	return first.Add(d)
}

// StartDate is the inclusive lower bound of the view.
func (t *Track) StartDate() time.Time {
	if !t.start.IsZero() {
		return t.start
	}
	first, _, _ := t.table.Bounds()
	return first
}

// EndDate is the requested upper bound of the view, before snapping.
func (t *Track) EndDate() time.Time {
	if !t.end.IsZero() {
		return t.end
	}
	_, last, _ := t.table.Bounds()
	return last
}

// SetStartDate moves the start of the window. The zero time resets it to the
// first fix.
func (t *Track) SetStartDate(start time.Time) error {
	if start.IsZero() {
		t.start = time.Time{}
		return nil
	}
	if err := t.checkBounds("start", start); err != nil {
		return err
	}
	if !t.end.IsZero() && !t.end.After(start) {
		return fmt.Errorf("%w: start %s must be before end %s",
			domain.ErrDateRange, start.Format(dateLayout), t.end.Format(dateLayout))
	}
	t.start = start.UTC()
	return nil
}

// SetEndDate moves the end of the window. The zero time resets it to the
// last fix.
func (t *Track) SetEndDate(end time.Time) error {
	if end.IsZero() {
		t.end = time.Time{}
		return nil
	}
	if err := t.checkBounds("end", end); err != nil {
		return err
	}
	if start := t.StartDate(); !end.After(start) {
		return fmt.Errorf("%w: end %s must be after start %s",
			domain.ErrDateRange, end.Format(dateLayout), start.Format(dateLayout))
	}
	t.end = end.UTC()
	return nil
}

func (t *Track) checkBounds(which string, d time.Time) error {
	first, last, ok := t.table.Bounds()
	if !ok {
		return fmt.Errorf("%w: track has no fixes", domain.ErrDateRange)
	}
	if d.Before(first) || d.After(last) {
		return fmt.Errorf("%w: %s date %s outside of data bounds (%s - %s)", domain.ErrDateRange,
			which, d.Format(dateLayout), first.Format(dateLayout), last.Format(dateLayout))
	}
	return nil
}

// revalidateWindow drops explicit dates that no longer fit the table.
func (t *Track) revalidateWindow() {
	first, last, _ := t.table.Bounds()
	if !t.start.IsZero() && (t.start.Before(first) || t.start.After(last)) {
		t.logger.Warn("start date reset", "start", t.start, "first", first)
		t.start = time.Time{}
	}
	if !t.end.IsZero() && (t.end.Before(first) || t.end.After(last) || !t.end.After(t.StartDate())) {
		t.logger.Warn("end date reset", "end", t.end, "last", last)
		t.end = time.Time{}
	}
}

// snappedEnd advances the end date to the first timestamp in the unfiltered
// table at or after it, so no timestamp cluster is cut in half.
func (t *Track) snappedEnd() time.Time {
	end := t.EndDate()
	for _, ts := range t.table.UniqueTimes() {
		if !ts.Before(end) {
			return ts
		}
	}
	return end
}

// Duration spans the requested window.
func (t *Track) Duration() time.Duration {
	return t.EndDate().Sub(t.StartDate())
}
