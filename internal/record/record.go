package record

import (
	"context"
	"errors"
	"time"
)

// DateLayout is the calendar-date key format. It matches the format the
// original web client wrote, so stores written by either side stay readable.
const DateLayout = "Mon Jan 02 2006"

// MarkedAtLayout is the human-readable timestamp captured at mark time.
const MarkedAtLayout = "1/2/2006, 3:04:05 PM"

// DateKey renders t as a store key in the client's local calendar.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// ErrStoreUnavailable wraps persistence-layer failures so callers can tell
// them apart from domain rejections.
var ErrStoreUnavailable = errors.New("record store unavailable")

// Record is a durable proof that a student was present on a date. Field
// names are the persisted compatibility surface; do not rename them.
type Record struct {
	StudentID     string `json:"studentId"`
	StudentName   string `json:"studentName"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	MiddleInitial string `json:"middleInitial"`
	Email         string `json:"email"`
	MarkedAt      string `json:"markedAt"`
	Date          string `json:"date"`
}

// MarkedAtTime parses the human-readable timestamp back into a time.Time.
// Records written by other clients may carry an unparseable string; callers
// fall back to string ordering in that case.
func (r Record) MarkedAtTime() (time.Time, bool) {
	t, err := time.Parse(MarkedAtLayout, r.MarkedAt)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Store is the date-keyed collection of attendance records. The store is a
// dumb persistence layer: it never rejects duplicates, the marker owns the
// one-record-per-student-per-day policy.
type Store interface {
	// RecordsFor returns the records filed under date, oldest first. A date
	// with no entry yields an empty slice, not an error.
	RecordsFor(ctx context.Context, date string) ([]Record, error)
	// Append files record under date, creating the entry if absent.
	Append(ctx context.Context, date string, rec Record) error
}
