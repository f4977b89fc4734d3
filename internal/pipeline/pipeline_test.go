package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saaga0h/migration-detector/internal/calendar"
	"github.com/saaga0h/migration-detector/internal/trajectory"
	"github.com/saaga0h/migration-detector/pkg/config"
)

func defaultParams() Params {
	return Params{
		NumDaysMissingGap:    2,
		SmallSegLen:          5,
		NumStayedDaysMigrant: 5,
		SegProp:              0.5,
		MinOverlapPartLen:    0,
		MaxGapHomeDes:        30,
	}
}

func TestParamsFromConfig_MapsConfigFields(t *testing.T) {
	cfg := config.NewConfig()
	cfg.NumDaysMissingGap = 3
	cfg.SmallSegLen = 10
	cfg.NumStayedDaysMigrant = 7
	cfg.SegProp = 0.6
	cfg.MinOverlapPartLen = 2
	cfg.MaxGapHomeDes = 40
	cfg.ShortTermFilterEnabled = true
	cfg.MinHomeSegmentLen = 4
	cfg.MinDesSegmentLen = 6
	cfg.MaxDesSegmentLen = 20

	p := ParamsFromConfig(cfg)
	assert.Equal(t, 3, p.NumDaysMissingGap)
	assert.Equal(t, 10, p.SmallSegLen)
	assert.Equal(t, 7, p.NumStayedDaysMigrant)
	assert.Equal(t, 0.6, p.SegProp)
	assert.Equal(t, 2, p.MinOverlapPartLen)
	assert.Equal(t, 40, p.MaxGapHomeDes)
	assert.True(t, p.ShortTerm.Enabled)
	assert.Equal(t, 4, p.ShortTerm.HomeMin)
	assert.Equal(t, unboundedSegmentLen, p.ShortTerm.HomeMax)
	assert.Equal(t, 6, p.ShortTerm.DestMin)
	assert.Equal(t, 20, p.ShortTerm.DestMax)
}

func TestProcessUser_DetectsCleanMigration(t *testing.T) {
	idx, err := calendar.New(20200101, 20201231)
	require.NoError(t, err)

	home := make([]int, 0, 100)
	for d := 0; d <= 99; d++ {
		home = append(home, d)
	}
	dest := make([]int, 0, 140)
	for d := 120; d <= 259; d++ {
		dest = append(dest, d)
	}
	rec := trajectory.Record{1: home, 2: dest}

	res := ProcessUser("u1", rec, idx, defaultParams())
	assert.NoError(t, res.Err)
	require.Len(t, res.Events, 1)
	assert.Equal(t, 1, res.Events[0].HomeLoc)
	assert.Equal(t, 2, res.Events[0].DestLoc)
	assert.NotEmpty(t, res.Debug)
}

func TestProcessUser_NoEventsForStationaryUser(t *testing.T) {
	idx, err := calendar.New(20200101, 20201231)
	require.NoError(t, err)

	home := make([]int, 0, 300)
	for d := 0; d <= 299; d++ {
		home = append(home, d)
	}
	rec := trajectory.Record{1: home}

	res := ProcessUser("u1", rec, idx, defaultParams())
	assert.NoError(t, res.Err)
	assert.Empty(t, res.Events)
}

func TestRunner_Run_PreservesUserOrderRegardlessOfCompletion(t *testing.T) {
	idx, err := calendar.New(20200101, 20201231)
	require.NoError(t, err)

	home := make([]int, 0, 100)
	for d := 0; d <= 99; d++ {
		home = append(home, d)
	}
	dest := make([]int, 0, 140)
	for d := 120; d <= 259; d++ {
		dest = append(dest, d)
	}

	userIDs := []string{"a", "b", "c", "d", "e"}
	records := make(map[string]trajectory.Record, len(userIDs))
	for _, u := range userIDs {
		records[u] = trajectory.Record{1: append([]int(nil), home...), 2: append([]int(nil), dest...)}
	}

	runner := NewRunner(3, nil)
	results := runner.Run(context.Background(), userIDs, records, idx, defaultParams())

	require.Len(t, results, len(userIDs))
	for i, res := range results {
		assert.Equal(t, userIDs[i], res.UserID)
		assert.NoError(t, res.Err)
		assert.Len(t, res.Events, 1)
	}
}

func TestRunner_Run_EmptyUserIDsReturnsEmptyResult(t *testing.T) {
	idx, err := calendar.New(20200101, 20201231)
	require.NoError(t, err)

	runner := NewRunner(0, nil) // zero workers defaults to 1
	results := runner.Run(context.Background(), nil, map[string]trajectory.Record{}, idx, defaultParams())
	assert.Empty(t, results)
}

func TestRunner_Run_CancelledContextStillReturnsFullSlice(t *testing.T) {
	idx, err := calendar.New(20200101, 20201231)
	require.NoError(t, err)

	userIDs := []string{"a", "b", "c"}
	records := map[string]trajectory.Record{
		"a": {1: {0, 1, 2}},
		"b": {1: {0, 1, 2}},
		"c": {1: {0, 1, 2}},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	runner := NewRunner(2, nil)
	results := runner.Run(ctx, userIDs, records, idx, defaultParams())

	// The result slice is always pre-sized to len(userIDs); a cancelled
	// context may leave some entries as the zero UserResult rather than
	// dispatching every job, but it never panics or shrinks the slice.
	assert.Len(t, results, len(userIDs))
}

func TestSafeProcess_WrapsEmptyRecordWithoutError(t *testing.T) {
	idx, err := calendar.New(20200101, 20201231)
	require.NoError(t, err)

	runner := NewRunner(1, nil)
	res := runner.safeProcess("u1", trajectory.Record{}, idx, defaultParams())
	assert.NoError(t, res.Err)
	assert.Empty(t, res.Events)
}

func TestUserResult_ErrFieldHoldsError(t *testing.T) {
	var res UserResult
	res.Err = errors.New("boom")
	assert.Error(t, res.Err)
	assert.Empty(t, res.Events)
}
