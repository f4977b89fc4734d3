// Command migration-frequency runs the tower-frequency home-location
// front end (spec.md §4.12): it resolves a monthly home location per
// user from hourly tower observations using one of six selectable
// rules, then feeds the resulting month -> home sequence through the
// shared six-consecutive-month migration finder.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/saaga0h/migration-detector/internal/calendar"
	"github.com/saaga0h/migration-detector/internal/frequency"
	"github.com/saaga0h/migration-detector/internal/ingest"
	"github.com/saaga0h/migration-detector/pkg/config"
)

func main() {
	cfg := config.NewConfig()
	cfg.ServiceName = "migration-frequency"

	var inputPath, towersPath, outputPath, yamlPath, rule string
	pflag.StringVar(&inputPath, "input", "", "Input hourly observations CSV (user_id, date, hour, tower)")
	pflag.StringVar(&towersPath, "towers", "", "Tower -> district lookup CSV (tower, district, lat, lon)")
	pflag.StringVar(&outputPath, "output", "", "Output monthly migration events CSV (defaults to stdout)")
	pflag.StringVar(&yamlPath, "config", "", "Optional YAML file pinning the full parameter set")
	pflag.StringVar(&rule, "rule", "rule1", "Home-location rule: rule1, rule2, rule2prop, rule3, rule4, rule5, rule6")

	cfg.LoadFromEnv()
	cfg.LoadFromFlags()
	if yamlPath != "" {
		if err := cfg.LoadFromYAML(yamlPath); err != nil {
			fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
			os.Exit(1)
		}
		// The environment and command-line flags override the YAML file.
		cfg.LoadFromEnv()
		pflag.Parse()
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if inputPath == "" {
		fmt.Fprintln(os.Stderr, "Config error: --input is required")
		os.Exit(1)
	}
	if towersPath == "" {
		fmt.Fprintln(os.Stderr, "Config error: --towers is required")
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	towersFile, err := os.Open(towersPath)
	if err != nil {
		logger.Error("Failed to open towers CSV", "error", err)
		os.Exit(1)
	}
	towers, towerDistrict, err := ingest.ReadTowerDistricts(towersFile)
	towersFile.Close()
	if err != nil {
		logger.Error("Failed to parse towers CSV", "error", err)
		os.Exit(1)
	}
	nearby := frequency.NearbyTowers(towers, cfg.NearbyRadiusKM)

	in, err := os.Open(inputPath)
	if err != nil {
		logger.Error("Failed to open input CSV", "error", err)
		os.Exit(1)
	}
	hourly, err := ingest.ReadHourlyObservations(in)
	in.Close()
	if err != nil {
		logger.Error("Failed to parse input CSV", "error", err)
		os.Exit(1)
	}

	dates := make([]int, len(hourly))
	for i, r := range hourly {
		dates[i] = r.Date
	}
	idx, err := calendar.NewFromDates(dates)
	if err != nil {
		logger.Error("Failed to build calendar index", "error", err)
		os.Exit(1)
	}

	unknownTowers := map[int]struct{}{}
	byUser := ingest.BuildFrequencyObservations(hourly, idx, towerDistrict, cfg.StartYear, func(row ingest.HourlyRow) {
		if _, seen := unknownTowers[row.Tower]; !seen {
			unknownTowers[row.Tower] = struct{}{}
			logger.Warn("Dropping observations at unrecognized tower", "tower", row.Tower)
		}
	})

	ruleFn, err := resolveRule(rule, cfg, idx, nearby, towerDistrict)
	if err != nil {
		logger.Error("Config error", "error", err)
		os.Exit(1)
	}

	var allEvents []frequency.MonthlyEvent
	for userID, byMonth := range byUser {
		homes := frequency.ResolveMonthlyHomes(byMonth, ruleFn)
		allEvents = append(allEvents, frequency.FindMigrations(userID, homes)...)
	}

	out := os.Stdout
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			logger.Error("Failed to create output CSV", "error", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}
	if err := ingest.WriteMonthlyEvents(out, allEvents); err != nil {
		logger.Error("Failed to write output CSV", "error", err)
		os.Exit(1)
	}

	logger.Info("Frequency front end complete", "users", len(byUser), "events", len(allEvents))
}

// resolveRule selects one of the six home-location rules, curried over
// the parameters each needs beyond the per-month observation slice so
// that frequency.ResolveMonthlyHomes sees a uniform func([]Observation)
// (int, bool) regardless of which rule is active.
func resolveRule(name string, cfg *config.Config, idx calendar.Index, nearby map[int][]int, towerDistrict map[int]int) (func([]frequency.Observation) (int, bool), error) {
	switch name {
	case "rule1":
		return frequency.Rule1MostActivity, nil
	case "rule2":
		return frequency.Rule2MostDistinctDays, nil
	case "rule2prop":
		return func(obs []frequency.Observation) (int, bool) {
			if len(obs) == 0 {
				return 0, false
			}
			return frequency.Rule2PropGated(obs, cfg.HomeLocProp, daysInMonth(idx, obs[0].Date))
		}, nil
	case "rule3":
		return frequency.Rule3NightHours, nil
	case "rule4":
		return func(obs []frequency.Observation) (int, bool) {
			return frequency.Rule4NearbyExpanded(obs, nearby, towerDistrict)
		}, nil
	case "rule5":
		return func(obs []frequency.Observation) (int, bool) {
			return frequency.Rule5NightAndNearby(obs, nearby, towerDistrict)
		}, nil
	case "rule6":
		return frequency.Rule6Hierarchical, nil
	default:
		return nil, fmt.Errorf("unknown --rule %q", name)
	}
}

// daysInMonth recovers the real calendar month length backing a dense
// day index, for Rule2PropGated's proportion gate.
func daysInMonth(idx calendar.Index, day int) int {
	yyyymmdd := idx.MustIndexToDate(day)
	year, month := yyyymmdd/10000, (yyyymmdd/100)%100
	firstOfNext := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	lastOfMonth := firstOfNext.AddDate(0, 0, -1)
	return lastOfMonth.Day()
}
