package pipeline

import (
	"sort"
	"time"
)

// Summary aggregates the result records of one run.
type Summary struct {
	Count       int
	Succeeded   int // includes skipped files
	Skipped     int
	TotalBefore int64
	TotalAfter  int64
	TotalSaved  int64
	Failures    []ResultRecord // in discovery order
	Duration    time.Duration
}

// Aggregate reduces records into a Summary. The result does not depend on the
// order in which records were collected.
func Aggregate(records []ResultRecord, elapsed time.Duration) Summary {
	s := Summary{
		Count:    len(records),
		Duration: elapsed,
	}

	for _, r := range records {
		s.TotalBefore += r.Before
		s.TotalAfter += r.After
		if r.Failed() {
			s.Failures = append(s.Failures, r)
			continue
		}
		s.Succeeded++
		if r.Skipped {
			s.Skipped++
		}
	}

	if s.TotalBefore > s.TotalAfter {
		s.TotalSaved = s.TotalBefore - s.TotalAfter
	}

	sort.SliceStable(s.Failures, func(i, j int) bool {
		return s.Failures[i].Index < s.Failures[j].Index
	})

	return s
}

// Failed returns the number of failed files.
func (s Summary) Failed() int {
	return len(s.Failures)
}

// SavedPercent returns TotalSaved as a percentage of TotalBefore.
func (s Summary) SavedPercent() float64 {
	if s.TotalBefore == 0 {
		return 0
	}
	return float64(s.TotalSaved) * 100 / float64(s.TotalBefore)
}
