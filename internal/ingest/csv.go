// Package ingest reads raw observations and tower metadata from CSV or
// PostgreSQL and writes detected migration events and debug segments
// back out.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/saaga0h/migration-detector/internal/frequency"
	"github.com/saaga0h/migration-detector/internal/migration"
	"github.com/saaga0h/migration-detector/internal/trajectory"
)

// ReadObservations parses the input CSV (§6: user_id, date, location)
// from r into raw observation rows, in file order.
func ReadObservations(r io.Reader) ([]trajectory.Observation, error) {
	rows, header, err := readRows(r)
	if err != nil {
		return nil, err
	}
	col, err := columnIndex(header, "user_id", "date", "location")
	if err != nil {
		return nil, err
	}

	obs := make([]trajectory.Observation, 0, len(rows))
	for i, row := range rows {
		date, err := strconv.Atoi(row[col["date"]])
		if err != nil {
			return nil, fmt.Errorf("ingest: row %d: invalid date %q: %w", i+2, row[col["date"]], err)
		}
		location, err := strconv.Atoi(row[col["location"]])
		if err != nil {
			return nil, fmt.Errorf("ingest: row %d: invalid location %q: %w", i+2, row[col["location"]], err)
		}
		obs = append(obs, trajectory.Observation{
			UserID:   row[col["user_id"]],
			Date:     date,
			Location: location,
		})
	}
	return obs, nil
}

// WriteEvents writes detected migration events to w in the exact
// column order specified by spec.md §6. When includeShortTerm is true
// an additional trailing short_term boolean column is written, per
// SPEC_FULL.md's supplemented short-term-filter output.
func WriteEvents(w io.Writer, events []migration.Event, includeShortTerm bool) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{
		"user_id", "home", "destination", "migration_date",
		"uncertainty", "num_error_day",
		"home_start", "home_end",
		"destination_start", "destination_end",
		"home_start_date", "home_end_date",
		"destination_start_date", "destination_end_date",
	}
	if includeShortTerm {
		header = append(header, "short_term")
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("ingest: writing header: %w", err)
	}

	for _, e := range events {
		row := []string{
			e.UserID,
			strconv.Itoa(e.HomeLoc),
			strconv.Itoa(e.DestLoc),
			strconv.Itoa(e.MigrationDate),
			strconv.Itoa(e.Uncertainty),
			strconv.Itoa(e.NumErrorDay),
			strconv.Itoa(e.HomeSeg.Start),
			strconv.Itoa(e.HomeSeg.End),
			strconv.Itoa(e.DestSeg.Start),
			strconv.Itoa(e.DestSeg.End),
			strconv.Itoa(e.HomeStartDate),
			strconv.Itoa(e.HomeEndDate),
			strconv.Itoa(e.DestinationStartDate),
			strconv.Itoa(e.DestinationEndDate),
		}
		if includeShortTerm {
			row = append(row, strconv.FormatBool(e.ShortTerm))
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("ingest: writing event row for user %s: %w", e.UserID, err)
		}
	}
	return cw.Error()
}

// DebugSegment is one row of the optional Segments CSV (§6).
type DebugSegment struct {
	UserID           string
	Location         int
	SegmentStartDate int
	SegmentEndDate   int
	SegmentLength    int
}

// WriteSegments writes debug segment rows to w, sorted by the caller
// per §6 ((user_id, segment_start_date)); this function writes rows in
// the order given.
func WriteSegments(w io.Writer, segs []DebugSegment) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"user_id", "location", "segment_start_date", "segment_end_date", "segment_length"}); err != nil {
		return fmt.Errorf("ingest: writing segments header: %w", err)
	}
	for _, s := range segs {
		row := []string{
			s.UserID,
			strconv.Itoa(s.Location),
			strconv.Itoa(s.SegmentStartDate),
			strconv.Itoa(s.SegmentEndDate),
			strconv.Itoa(s.SegmentLength),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("ingest: writing segment row for user %s: %w", s.UserID, err)
		}
	}
	return cw.Error()
}

// ReadTowerDistricts parses a tower_district CSV (tower, district, lat,
// lon) used by the frequency front end.
func ReadTowerDistricts(r io.Reader) ([]frequency.TowerLocation, map[int]int, error) {
	rows, header, err := readRows(r)
	if err != nil {
		return nil, nil, err
	}
	col, err := columnIndex(header, "tower", "district", "lat", "lon")
	if err != nil {
		return nil, nil, err
	}

	var towers []frequency.TowerLocation
	districts := make(map[int]int, len(rows))
	for i, row := range rows {
		tower, err := strconv.Atoi(row[col["tower"]])
		if err != nil {
			return nil, nil, fmt.Errorf("ingest: row %d: invalid tower %q: %w", i+2, row[col["tower"]], err)
		}
		district, err := strconv.Atoi(row[col["district"]])
		if err != nil {
			return nil, nil, fmt.Errorf("ingest: row %d: invalid district %q: %w", i+2, row[col["district"]], err)
		}
		lat, err := strconv.ParseFloat(row[col["lat"]], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("ingest: row %d: invalid lat %q: %w", i+2, row[col["lat"]], err)
		}
		lon, err := strconv.ParseFloat(row[col["lon"]], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("ingest: row %d: invalid lon %q: %w", i+2, row[col["lon"]], err)
		}
		towers = append(towers, frequency.TowerLocation{Tower: tower, Lat: lat, Lon: lon})
		districts[tower] = district
	}
	return towers, districts, nil
}

func readRows(r io.Reader) (rows [][]string, header []string, err error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	all, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("ingest: reading CSV: %w", err)
	}
	if len(all) == 0 {
		return nil, nil, fmt.Errorf("ingest: empty CSV input")
	}
	return all[1:], all[0], nil
}

func columnIndex(header []string, want ...string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[h] = i
	}
	col := make(map[string]int, len(want))
	for _, w := range want {
		i, ok := idx[w]
		if !ok {
			return nil, fmt.Errorf("ingest: missing required column %q", w)
		}
		col[w] = i
	}
	return col, nil
}
