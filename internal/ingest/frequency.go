package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/saaga0h/migration-detector/internal/calendar"
	"github.com/saaga0h/migration-detector/internal/frequency"
)

// HourlyRow is one raw row of the frequency front end's input: a user
// seen at a tower on a calendar date and hour.
type HourlyRow struct {
	UserID string
	Date   int // YYYYMMDD
	Hour   int
	Tower  int
}

// ReadHourlyObservations parses the frequency front end's input CSV
// (user_id, date, hour, tower).
func ReadHourlyObservations(r io.Reader) ([]HourlyRow, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	all, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("ingest: reading hourly CSV: %w", err)
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("ingest: empty hourly CSV input")
	}
	col, err := columnIndex(all[0], "user_id", "date", "hour", "tower")
	if err != nil {
		return nil, err
	}

	rows := make([]HourlyRow, 0, len(all)-1)
	for i, row := range all[1:] {
		date, err := strconv.Atoi(row[col["date"]])
		if err != nil {
			return nil, fmt.Errorf("ingest: hourly row %d: invalid date %q: %w", i+2, row[col["date"]], err)
		}
		hour, err := strconv.Atoi(row[col["hour"]])
		if err != nil {
			return nil, fmt.Errorf("ingest: hourly row %d: invalid hour %q: %w", i+2, row[col["hour"]], err)
		}
		tower, err := strconv.Atoi(row[col["tower"]])
		if err != nil {
			return nil, fmt.Errorf("ingest: hourly row %d: invalid tower %q: %w", i+2, row[col["tower"]], err)
		}
		rows = append(rows, HourlyRow{UserID: row[col["user_id"]], Date: date, Hour: hour, Tower: tower})
	}
	return rows, nil
}

// BuildFrequencyObservations resolves each row's tower to a district
// (logging and dropping rows with an unrecognized tower, per spec.md
// §7's UnknownTower warning-only error kind) and its date to a dense
// day index, grouping the results by user and then by month.
//
// Hours 0-8 are assigned to the previous day before bucketing by
// month (matching the convention that a night out doesn't register
// as the following day's home), so a shift across a month boundary
// moves the observation into the previous month's bucket rather than
// staying keyed to its original, unshifted month.
//
// onUnknownTower receives one callback per row dropped for an
// unrecognized tower so the caller
// can log it at Warn without this function taking a logger dependency.
func BuildFrequencyObservations(rows []HourlyRow, idx calendar.Index, towerDistrict map[int]int, startYear int, onUnknownTower func(row HourlyRow)) map[string]map[int][]frequency.Observation {
	byUser := make(map[string]map[int][]frequency.Observation)
	for _, row := range rows {
		district, ok := towerDistrict[row.Tower]
		if !ok {
			if onUnknownTower != nil {
				onUnknownTower(row)
			}
			continue
		}
		day, ok := idx.DateToIndex(row.Date)
		if !ok {
			continue
		}

		monthDay := day
		if row.Hour <= 8 {
			monthDay--
		}
		monthDate, ok := idx.IndexToDate(monthDay)
		if !ok {
			monthDate = row.Date
		}
		year, month := splitYearMonth(monthDate)
		monthIdx := frequency.MonthIndex(month, year, startYear)

		if byUser[row.UserID] == nil {
			byUser[row.UserID] = make(map[int][]frequency.Observation)
		}
		byUser[row.UserID][monthIdx] = append(byUser[row.UserID][monthIdx], frequency.Observation{
			UserID:   row.UserID,
			Date:     day,
			Hour:     row.Hour,
			Tower:    row.Tower,
			District: district,
		})
	}
	return byUser
}

func splitYearMonth(yyyymmdd int) (year, month int) {
	return yyyymmdd / 10000, (yyyymmdd / 100) % 100
}

// WriteMonthlyEvents writes the frequency front end's detected
// month-level migration events to w.
func WriteMonthlyEvents(w io.Writer, events []frequency.MonthlyEvent) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"user_id", "month", "home", "destination"}); err != nil {
		return fmt.Errorf("ingest: writing monthly events header: %w", err)
	}
	for _, e := range events {
		row := []string{e.UserID, strconv.Itoa(e.Month), strconv.Itoa(e.HomeLoc), strconv.Itoa(e.DestLoc)}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("ingest: writing monthly event row for user %s: %w", e.UserID, err)
		}
	}
	return cw.Error()
}
