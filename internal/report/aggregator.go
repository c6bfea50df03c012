package report

import (
	"context"
	"math"
	"sort"
	"time"

	"qrattend/internal/record"
	"qrattend/internal/student"
)

// Status buckets for the attendance percentage.
const (
	StatusGood    = "Good"
	StatusWarning = "Warning"
	StatusPoor    = "Poor"
)

// recentLimit caps how many records a report surfaces for display. Counts
// and the percentage always use the full set.
const recentLimit = 10

// Report is one student's aggregate over a trailing window. It is
// recomputed from the store on every request, never cached.
type Report struct {
	TotalDays   int             `json:"totalDays"`
	PresentDays int             `json:"presentDays"`
	Percentage  int             `json:"percentage"`
	Status      string          `json:"status"`
	Records     []record.Record `json:"records"`
}

// Aggregator builds reports by scanning the store over a date window.
type Aggregator struct {
	store record.Store
}

// NewAggregator creates an aggregator over the given store.
func NewAggregator(store record.Store) *Aggregator {
	return &Aggregator{store: store}
}

// Build walks each calendar date from asOf-windowDays to asOf inclusive.
// A day counts toward TotalDays when anyone's attendance was recorded on
// it; there is no schedule source of truth, so "class happened" is inferred
// from the store. TotalDays is clamped to at least PresentDays.
func (a *Aggregator) Build(ctx context.Context, stu student.Student, windowDays int, asOf time.Time) (Report, error) {
	if windowDays < 0 {
		windowDays = 0
	}

	classDays := 0
	var mine []record.Record
	for d := asOf.AddDate(0, 0, -windowDays); !d.After(asOf); d = d.AddDate(0, 0, 1) {
		recs, err := a.store.RecordsFor(ctx, record.DateKey(d))
		if err != nil {
			return Report{}, err
		}
		if len(recs) == 0 {
			continue
		}
		classDays++
		for _, r := range recs {
			if r.StudentID == stu.ID {
				mine = append(mine, r)
				break
			}
		}
	}

	presentDays := len(mine)
	totalDays := classDays
	if presentDays > totalDays {
		totalDays = presentDays
	}

	percentage := 0
	if totalDays > 0 {
		percentage = int(math.Round(100 * float64(presentDays) / float64(totalDays)))
	}

	sort.Slice(mine, func(i, j int) bool {
		ti, iok := mine[i].MarkedAtTime()
		tj, jok := mine[j].MarkedAtTime()
		if iok && jok {
			return ti.After(tj)
		}
		return mine[i].MarkedAt > mine[j].MarkedAt
	})
	if len(mine) > recentLimit {
		mine = mine[:recentLimit]
	}
	if mine == nil {
		mine = []record.Record{}
	}

	return Report{
		TotalDays:   totalDays,
		PresentDays: presentDays,
		Percentage:  percentage,
		Status:      bucket(percentage),
		Records:     mine,
	}, nil
}

func bucket(percentage int) string {
	switch {
	case percentage >= 75:
		return StatusGood
	case percentage >= 50:
		return StatusWarning
	default:
		return StatusPoor
	}
}
