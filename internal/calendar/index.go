// Package calendar assigns dense day indices to the calendar dates
// observed in a migration-detector input range.
package calendar

import (
	"fmt"
	"sort"
	"time"
)

// ErrEmptyRange is returned when the minimum observed date is after the
// maximum, leaving no dates to index.
var ErrEmptyRange = fmt.Errorf("calendar: empty date range")

// Index is a bijection between YYYYMMDD calendar dates and dense day
// indices 0..len(dates)-1, built from a closed [min, max] date range.
type Index struct {
	dateToIndex map[int]int
	indexToDate []int
}

// New builds an Index covering every calendar date in [min, max]
// inclusive, where min and max are YYYYMMDD integers.
func New(min, max int) (Index, error) {
	minT, err := parseYYYYMMDD(min)
	if err != nil {
		return Index{}, err
	}
	maxT, err := parseYYYYMMDD(max)
	if err != nil {
		return Index{}, err
	}
	if maxT.Before(minT) {
		return Index{}, ErrEmptyRange
	}

	var dates []int
	for d := minT; !d.After(maxT); d = d.AddDate(0, 0, 1) {
		dates = append(dates, toYYYYMMDD(d))
	}

	dateToIndex := make(map[int]int, len(dates))
	for i, d := range dates {
		dateToIndex[d] = i
	}

	return Index{dateToIndex: dateToIndex, indexToDate: dates}, nil
}

// NewFromDates builds an Index spanning the closed range between the
// smallest and largest date in dates, which need not be sorted or
// unique.
func NewFromDates(dates []int) (Index, error) {
	if len(dates) == 0 {
		return Index{}, ErrEmptyRange
	}
	min, max := dates[0], dates[0]
	for _, d := range dates[1:] {
		if d < min {
			min = d
		}
		if d > max {
			max = d
		}
	}
	return New(min, max)
}

// Len returns the number of distinct days in the index (D in spec terms).
func (idx Index) Len() int {
	return len(idx.indexToDate)
}

// DateToIndex returns the dense day index for a YYYYMMDD date.
func (idx Index) DateToIndex(date int) (int, bool) {
	i, ok := idx.dateToIndex[date]
	return i, ok
}

// IndexToDate returns the YYYYMMDD date for a dense day index.
func (idx Index) IndexToDate(i int) (int, bool) {
	if i < 0 || i >= len(idx.indexToDate) {
		return 0, false
	}
	return idx.indexToDate[i], true
}

// MustIndexToDate panics if i is out of range; for call sites that have
// already validated the index came from this same Index.
func (idx Index) MustIndexToDate(i int) int {
	d, ok := idx.IndexToDate(i)
	if !ok {
		panic(fmt.Sprintf("calendar: index %d out of range [0,%d)", i, idx.Len()))
	}
	return d
}

// Long returns a copy of the index extended by extraDays beyond the
// original maximum date, for callers (e.g. a plotting or export tool)
// that need day indices past the observed range. Per spec.md's data
// model, callers typically pass extraDays >= 200.
func (idx Index) Long(extraDays int) Index {
	if len(idx.indexToDate) == 0 || extraDays <= 0 {
		return idx
	}
	lastDate := idx.indexToDate[len(idx.indexToDate)-1]
	lastT, err := parseYYYYMMDD(lastDate)
	if err != nil {
		return idx
	}

	dates := make([]int, len(idx.indexToDate), len(idx.indexToDate)+extraDays)
	copy(dates, idx.indexToDate)
	for i := 1; i <= extraDays; i++ {
		dates = append(dates, toYYYYMMDD(lastT.AddDate(0, 0, i)))
	}

	dateToIndex := make(map[int]int, len(dates))
	for i, d := range dates {
		dateToIndex[d] = i
	}
	return Index{dateToIndex: dateToIndex, indexToDate: dates}
}

func parseYYYYMMDD(date int) (time.Time, error) {
	t, err := time.Parse("20060102", fmt.Sprintf("%08d", date))
	if err != nil {
		return time.Time{}, fmt.Errorf("calendar: invalid date %d: %w", date, err)
	}
	return t, nil
}

func toYYYYMMDD(t time.Time) int {
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}

// SortDates returns a sorted copy of dates; a small helper used by
// callers building an Index from raw input rows.
func SortDates(dates []int) []int {
	out := make([]int, len(dates))
	copy(out, dates)
	sort.Ints(out)
	return out
}
