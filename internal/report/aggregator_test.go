package report

import (
	"context"
	"testing"
	"time"

	"qrattend/internal/record"
	"qrattend/internal/student"
)

var ada = student.Student{ID: "S1", Name: "Ada Lovelace"}

func seed(t *testing.T, store *record.Memory, day time.Time, ids ...string) {
	t.Helper()
	date := record.DateKey(day)
	for _, id := range ids {
		markedAt := day.Add(9 * time.Hour).Format(record.MarkedAtLayout)
		err := store.Append(context.Background(), date, record.Record{
			StudentID: id,
			MarkedAt:  markedAt,
			Date:      date,
		})
		if err != nil {
			t.Fatalf("seed %s/%s: %v", date, id, err)
		}
	}
}

func TestBuildEmptyWindow(t *testing.T) {
	rep, err := NewAggregator(record.NewMemory()).Build(context.Background(), ada, 30, time.Date(2024, time.January, 31, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if rep.TotalDays != 0 || rep.PresentDays != 0 || rep.Percentage != 0 {
		t.Errorf("empty store report = %+v, want zeros", rep)
	}
	if rep.Status != StatusPoor {
		t.Errorf("empty store status = %q, want Poor", rep.Status)
	}
	if rep.Records == nil || len(rep.Records) != 0 {
		t.Errorf("empty store records = %v, want empty slice", rep.Records)
	}
}

func TestBuildSingleDay(t *testing.T) {
	store := record.NewMemory()
	asOf := time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)
	seed(t, store, asOf, "S1")

	rep, err := NewAggregator(store).Build(context.Background(), ada, 30, asOf)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if rep.TotalDays != 1 || rep.PresentDays != 1 || rep.Percentage != 100 || rep.Status != StatusGood {
		t.Errorf("report = %+v, want 1/1 100%% Good", rep)
	}
	if len(rep.Records) != 1 || rep.Records[0].StudentID != "S1" {
		t.Errorf("records = %+v", rep.Records)
	}
}

func TestBuildCountsClassDaysFromAnyStudent(t *testing.T) {
	store := record.NewMemory()
	asOf := time.Date(2024, time.January, 10, 12, 0, 0, 0, time.UTC)

	// Four class days observed, Ada present on three of them.
	seed(t, store, asOf.AddDate(0, 0, -6), "S1", "S2")
	seed(t, store, asOf.AddDate(0, 0, -4), "S2")
	seed(t, store, asOf.AddDate(0, 0, -2), "S1")
	seed(t, store, asOf, "S1", "S3")

	rep, err := NewAggregator(store).Build(context.Background(), ada, 30, asOf)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if rep.TotalDays != 4 || rep.PresentDays != 3 {
		t.Fatalf("report = %+v, want total 4 present 3", rep)
	}
	if rep.Percentage != 75 || rep.Status != StatusGood {
		t.Errorf("percentage/status = %d/%s, want 75/Good", rep.Percentage, rep.Status)
	}
}

func TestBuildStatusBuckets(t *testing.T) {
	tests := []struct {
		name        string
		presentDays int
		classDays   int
		wantPct     int
		wantStatus  string
	}{
		{name: "good boundary", presentDays: 3, classDays: 4, wantPct: 75, wantStatus: StatusGood},
		{name: "warning", presentDays: 2, classDays: 3, wantPct: 67, wantStatus: StatusWarning},
		{name: "warning boundary", presentDays: 1, classDays: 2, wantPct: 50, wantStatus: StatusWarning},
		{name: "poor", presentDays: 1, classDays: 3, wantPct: 33, wantStatus: StatusPoor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := record.NewMemory()
			asOf := time.Date(2024, time.March, 29, 12, 0, 0, 0, time.UTC)
			for i := 0; i < tt.classDays; i++ {
				day := asOf.AddDate(0, 0, -i)
				if i < tt.presentDays {
					seed(t, store, day, "S1", "S2")
				} else {
					seed(t, store, day, "S2")
				}
			}

			rep, err := NewAggregator(store).Build(context.Background(), ada, 30, asOf)
			if err != nil {
				t.Fatalf("Build() error: %v", err)
			}
			if rep.Percentage != tt.wantPct || rep.Status != tt.wantStatus {
				t.Errorf("got %d%%/%s, want %d%%/%s", rep.Percentage, rep.Status, tt.wantPct, tt.wantStatus)
			}
		})
	}
}

// TotalDays never drops below PresentDays, whatever the window.
func TestBuildMonotonicity(t *testing.T) {
	store := record.NewMemory()
	asOf := time.Date(2024, time.February, 15, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 8; i += 2 {
		seed(t, store, asOf.AddDate(0, 0, -i), "S1")
	}

	for _, window := range []int{0, 1, 5, 7, 30, 365} {
		rep, err := NewAggregator(store).Build(context.Background(), ada, window, asOf)
		if err != nil {
			t.Fatalf("Build(window=%d) error: %v", window, err)
		}
		if rep.TotalDays < rep.PresentDays {
			t.Errorf("window %d: totalDays %d < presentDays %d", window, rep.TotalDays, rep.PresentDays)
		}
	}
}

func TestBuildNegativeWindowClamped(t *testing.T) {
	store := record.NewMemory()
	asOf := time.Date(2024, time.February, 15, 12, 0, 0, 0, time.UTC)
	seed(t, store, asOf, "S1")

	rep, err := NewAggregator(store).Build(context.Background(), ada, -5, asOf)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if rep.TotalDays != 1 || rep.PresentDays != 1 {
		t.Errorf("report = %+v, want asOf alone", rep)
	}
}

func TestBuildRecentRecordsCappedAndSorted(t *testing.T) {
	store := record.NewMemory()
	asOf := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 14; i++ {
		seed(t, store, asOf.AddDate(0, 0, -i), "S1")
	}

	rep, err := NewAggregator(store).Build(context.Background(), ada, 30, asOf)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if rep.PresentDays != 14 || rep.TotalDays != 14 {
		t.Fatalf("counts = %d/%d, want 14/14 (counts use the full set)", rep.PresentDays, rep.TotalDays)
	}
	if len(rep.Records) != 10 {
		t.Fatalf("surfaced %d records, want 10", len(rep.Records))
	}
	for i := 1; i < len(rep.Records); i++ {
		prev, _ := rep.Records[i-1].MarkedAtTime()
		cur, _ := rep.Records[i].MarkedAtTime()
		if cur.After(prev) {
			t.Fatalf("records not sorted descending at %d: %s before %s", i, rep.Records[i-1].MarkedAt, rep.Records[i].MarkedAt)
		}
	}
	if rep.Records[0].Date != record.DateKey(asOf) {
		t.Errorf("newest surfaced record is %s, want %s", rep.Records[0].Date, record.DateKey(asOf))
	}
}
