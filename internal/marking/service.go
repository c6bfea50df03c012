package marking

import (
	"context"
	"errors"
	"sync"
	"time"

	"qrattend/internal/record"
	"qrattend/internal/student"
	"qrattend/internal/token"
)

// State of a student's attendance for a given day. Error outcomes are
// transient signals surfaced per scan, never a stored state.
type State string

const (
	StateNotMarked State = "not_marked"
	StateMarked    State = "marked"
)

// Outcome statuses for a scan that went through.
const (
	OutcomeAccepted      = "accepted"
	OutcomeAlreadyMarked = "already_marked"
)

// ErrWrongDate is returned when a token's session date is not the evaluating
// day. The student needs today's code; re-scanning the same one won't help.
var ErrWrongDate = errors.New("code is not valid for today")

// Outcome describes a scan that was not rejected. AlreadyMarked carries the
// existing record so callers can still show the original mark time.
type Outcome struct {
	Status string
	Record record.Record
}

// Status is the current-day standing used for the initial render.
type Status struct {
	State    State
	MarkedAt string
}

// overridable in tests
var nowFunc = time.Now

// Service decides accept/reject/duplicate for scans and drives the store.
// The store itself never rejects duplicates; the mutex keeps the
// check-then-append sequence atomic against concurrent scans.
type Service struct {
	mu    sync.Mutex
	store record.Store
}

// NewService creates a marker over the given store.
func NewService(store record.Store) *Service {
	return &Service{store: store}
}

// Status derives the student's state for today by inspecting the store.
func (s *Service) Status(ctx context.Context, stu student.Student, today string) (Status, error) {
	existing, err := s.find(ctx, today, stu.ID)
	if err != nil {
		return Status{}, err
	}
	if existing != nil {
		return Status{State: StateMarked, MarkedAt: existing.MarkedAt}, nil
	}
	return Status{State: StateNotMarked}, nil
}

// SubmitScan validates a scanned payload against today and the store.
//
// Check order is part of the contract: a malformed payload is rejected
// before any date comparison, and a wrong date before any duplicate lookup,
// so a stale code on an already-marked day reports the date problem.
func (s *Service) SubmitScan(ctx context.Context, raw string, stu student.Student, today string) (Outcome, error) {
	tok, err := token.Parse(raw)
	if err != nil {
		return Outcome{}, err
	}
	if tok.SessionDate != today {
		return Outcome{}, ErrWrongDate
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.find(ctx, today, stu.ID)
	if err != nil {
		return Outcome{}, err
	}
	if existing != nil {
		return Outcome{Status: OutcomeAlreadyMarked, Record: *existing}, nil
	}

	rec := record.Record{
		StudentID:     stu.ID,
		StudentName:   stu.DisplayName(),
		FirstName:     stu.FirstName,
		LastName:      stu.LastName,
		MiddleInitial: stu.MiddleInitial,
		Email:         stu.Email,
		MarkedAt:      nowFunc().Format(record.MarkedAtLayout),
		Date:          today,
	}
	if err := s.store.Append(ctx, today, rec); err != nil {
		return Outcome{}, err
	}
	return Outcome{Status: OutcomeAccepted, Record: rec}, nil
}

func (s *Service) find(ctx context.Context, date, studentID string) (*record.Record, error) {
	recs, err := s.store.RecordsFor(ctx, date)
	if err != nil {
		return nil, err
	}
	for i := range recs {
		if recs[i].StudentID == studentID {
			return &recs[i], nil
		}
	}
	return nil, nil
}
