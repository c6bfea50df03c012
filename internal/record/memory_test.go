package record

import (
	"context"
	"testing"
	"time"
)

func TestDateKey(t *testing.T) {
	// Jan 1 2024 was a Monday; the layout zero-pads the day.
	got := DateKey(time.Date(2024, time.January, 1, 10, 30, 0, 0, time.UTC))
	if got != "Mon Jan 01 2024" {
		t.Errorf("DateKey() = %q, want %q", got, "Mon Jan 01 2024")
	}
}

func TestMemoryEmptyDay(t *testing.T) {
	s := NewMemory()
	recs, err := s.RecordsFor(context.Background(), "Mon Jan 01 2024")
	if err != nil {
		t.Fatalf("RecordsFor() error: %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("RecordsFor() on empty day = %v, want empty", recs)
	}
}

func TestMemoryRoundTrip(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	date := "Mon Jan 01 2024"

	rec := Record{
		StudentID:     "S1",
		StudentName:   "Ada Lovelace",
		FirstName:     "Ada",
		LastName:      "Lovelace",
		MiddleInitial: "K",
		Email:         "ada@example.edu",
		MarkedAt:      "1/1/2024, 10:30:00 AM",
		Date:          date,
	}
	if err := s.Append(ctx, date, rec); err != nil {
		t.Fatalf("Append() error: %v", err)
	}

	got, err := s.RecordsFor(ctx, date)
	if err != nil {
		t.Fatalf("RecordsFor() error: %v", err)
	}
	if len(got) != 1 || got[0] != rec {
		t.Errorf("RecordsFor() = %+v, want [%+v]", got, rec)
	}
}

func TestMemoryPreservesOrder(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	date := "Mon Jan 01 2024"

	for _, id := range []string{"S1", "S2", "S3"} {
		if err := s.Append(ctx, date, Record{StudentID: id, Date: date}); err != nil {
			t.Fatalf("Append(%s) error: %v", id, err)
		}
	}

	got, _ := s.RecordsFor(ctx, date)
	for i, id := range []string{"S1", "S2", "S3"} {
		if got[i].StudentID != id {
			t.Errorf("RecordsFor()[%d].StudentID = %q, want %q", i, got[i].StudentID, id)
		}
	}
}

func TestMemoryReturnsCopy(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	date := "Mon Jan 01 2024"
	_ = s.Append(ctx, date, Record{StudentID: "S1", Date: date})

	got, _ := s.RecordsFor(ctx, date)
	got[0].StudentID = "tampered"

	again, _ := s.RecordsFor(ctx, date)
	if again[0].StudentID != "S1" {
		t.Error("mutating a returned slice leaked into the store")
	}
}

func TestMarkedAtTime(t *testing.T) {
	r := Record{MarkedAt: "1/1/2024, 10:30:00 AM"}
	ts, ok := r.MarkedAtTime()
	if !ok {
		t.Fatal("MarkedAtTime() failed on a well-formed timestamp")
	}
	if ts.Hour() != 10 || ts.Minute() != 30 {
		t.Errorf("MarkedAtTime() = %v, want 10:30", ts)
	}

	if _, ok := (Record{MarkedAt: "yesterday-ish"}).MarkedAtTime(); ok {
		t.Error("MarkedAtTime() accepted garbage")
	}
}
