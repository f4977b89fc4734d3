// Package pipeline wires the calendar, trajectory, segment and
// migration packages into the per-user batch run described in
// spec.md §5: a worker pool processes users concurrently, each user's
// stages run sequentially, and a single user's failure never aborts
// the batch.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/saaga0h/migration-detector/internal/calendar"
	"github.com/saaga0h/migration-detector/internal/migration"
	"github.com/saaga0h/migration-detector/internal/segment"
	"github.com/saaga0h/migration-detector/internal/trajectory"
	"github.com/saaga0h/migration-detector/pkg/config"
)

// unboundedSegmentLen stands in for the original's float("inf") hmax:
// spec.md §6 defines no max_home_segment_len, so the short-term filter's
// home-length ceiling is effectively unbounded rather than reusing the
// destination ceiling.
const unboundedSegmentLen = 1 << 30

// Params collects the §6 parameter set needed by one user's pipeline run.
type Params struct {
	NumDaysMissingGap    int
	SmallSegLen          int // S1 segment builder's minimum run length (§4.4, core.py's small_seg_len)
	NumStayedDaysMigrant int
	SegProp              float64
	MinOverlapPartLen    int // also used as K, the migration detector's overlap allowance (core.py L138)
	MaxGapHomeDes        int
	ShortTerm            migration.ShortTermParams
}

// ParamsFromConfig extracts the segment-pipeline parameters from a loaded Config.
func ParamsFromConfig(cfg *config.Config) Params {
	return Params{
		NumDaysMissingGap:    cfg.NumDaysMissingGap,
		SmallSegLen:          cfg.SmallSegLen,
		NumStayedDaysMigrant: cfg.NumStayedDaysMigrant,
		SegProp:              cfg.SegProp,
		MinOverlapPartLen:    cfg.MinOverlapPartLen,
		MaxGapHomeDes:        cfg.MaxGapHomeDes,
		ShortTerm: migration.ShortTermParams{
			Enabled: cfg.ShortTermFilterEnabled,
			HomeMin: cfg.MinHomeSegmentLen,
			HomeMax: unboundedSegmentLen,
			DestMin: cfg.MinDesSegmentLen,
			DestMax: cfg.MaxDesSegmentLen,
		},
	}
}

// UserResult is one user's pipeline output, paired with its debug segments.
type UserResult struct {
	UserID string
	Events []migration.Event
	Debug  segment.Collection
	Err    error
}

// ProcessUser runs the full §4.3-§4.11 chain for a single user's raw record.
func ProcessUser(userID string, original trajectory.Record, idx calendar.Index, p Params) UserResult {
	filled := segment.FillMissingDays(original, p.NumDaysMissingGap)
	s1 := segment.FindSegments(filled, p.SmallSegLen)
	s2 := segment.DensityFilter(original, s1, p.SegProp)
	s3 := segment.MergeAdjacent(s2)
	s4 := segment.ResolveOverlaps(s3, p.MinOverlapPartLen, p.NumStayedDaysMigrant)

	events := migration.FindEvents(userID, s4, original, idx, p.MinOverlapPartLen, p.MaxGapHomeDes, p.ShortTerm)
	return UserResult{UserID: userID, Events: events, Debug: s4}
}

// Runner drives a worker pool of goroutines over a set of per-user
// records, isolating each user's failure per spec.md §7: ProcessUser
// itself never errors (every stage is pure), so Runner's isolation
// exists to guard against a future stage that can fail without
// reshaping the caller's contract.
type Runner struct {
	Workers int
	Logger  *slog.Logger
}

// NewRunner creates a Runner with the given worker count, defaulting to 1
// when count is non-positive.
func NewRunner(workers int, logger *slog.Logger) *Runner {
	if workers <= 0 {
		workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{Workers: workers, Logger: logger}
}

// Run processes every user in records concurrently across r.Workers
// goroutines and returns results in the order userIDs were given
// (deterministic regardless of completion order, per spec.md §5's
// determinism requirement).
func (r *Runner) Run(ctx context.Context, userIDs []string, records map[string]trajectory.Record, idx calendar.Index, p Params) []UserResult {
	results := make([]UserResult, len(userIDs))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < r.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = r.safeProcess(userIDs[i], records[userIDs[i]], idx, p)
			}
		}()
	}

	for i := range userIDs {
		select {
		case jobs <- i:
		case <-ctx.Done():
		}
	}
	close(jobs)
	wg.Wait()

	return results
}

// safeProcess recovers from a panic in ProcessUser so one user's bug
// cannot take down the batch, logging it the same way a returned error
// would be (spec.md §7's per-user isolation).
func (r *Runner) safeProcess(userID string, rec trajectory.Record, idx calendar.Index, p Params) (res UserResult) {
	defer func() {
		if rcv := recover(); rcv != nil {
			r.Logger.Warn("pipeline: user processing panicked, skipping", "user_id", userID, "error", rcv)
			res = UserResult{UserID: userID, Err: fmt.Errorf("pipeline: user %s: %v", userID, rcv)}
		}
	}()
	return ProcessUser(userID, rec, idx, p)
}
