package trajectory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saaga0h/migration-detector/internal/calendar"
)

func newTestIndex(t *testing.T) calendar.Index {
	t.Helper()
	idx, err := calendar.New(20200101, 20200110)
	require.NoError(t, err)
	return idx
}

func TestBuilder_AddAndRecords(t *testing.T) {
	idx := newTestIndex(t)
	b := NewBuilder(idx)

	require.NoError(t, b.Add(Observation{UserID: "u1", Date: 20200101, Location: 1}))
	require.NoError(t, b.Add(Observation{UserID: "u1", Date: 20200102, Location: 1}))
	require.NoError(t, b.Add(Observation{UserID: "u1", Date: 20200103, Location: 2}))

	records := b.Records()
	require.Contains(t, records, "u1")
	assert.Equal(t, []int{0, 1}, records["u1"][1])
	assert.Equal(t, []int{2}, records["u1"][2])
}

func TestBuilder_CoalescesExactDuplicates(t *testing.T) {
	idx := newTestIndex(t)
	b := NewBuilder(idx)

	require.NoError(t, b.Add(Observation{UserID: "u1", Date: 20200101, Location: 1}))
	require.NoError(t, b.Add(Observation{UserID: "u1", Date: 20200101, Location: 1}))

	records := b.Records()
	assert.Equal(t, []int{0}, records["u1"][1])
}

func TestBuilder_RejectsCrossLocationDuplicate(t *testing.T) {
	idx := newTestIndex(t)
	b := NewBuilder(idx)

	require.NoError(t, b.Add(Observation{UserID: "u1", Date: 20200101, Location: 1}))
	err := b.Add(Observation{UserID: "u1", Date: 20200101, Location: 2})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateDay)
}

func TestBuilder_RejectsDateOutsideCalendar(t *testing.T) {
	idx := newTestIndex(t)
	b := NewBuilder(idx)

	err := b.Add(Observation{UserID: "u1", Date: 20200201, Location: 1})
	assert.Error(t, err)
}

func TestBuilder_MultipleUsersIndependent(t *testing.T) {
	idx := newTestIndex(t)
	b := NewBuilder(idx)

	require.NoError(t, b.Add(Observation{UserID: "u1", Date: 20200101, Location: 1}))
	require.NoError(t, b.Add(Observation{UserID: "u2", Date: 20200101, Location: 2}))

	ids := b.UserIDs()
	assert.Equal(t, []string{"u1", "u2"}, ids)
}

func TestRecord_Clone(t *testing.T) {
	r := Record{1: {0, 1, 2}}
	c := r.Clone()
	c[1][0] = 99
	assert.Equal(t, 0, r[1][0])
}

func TestRecord_Locations(t *testing.T) {
	r := Record{5: {0}, 1: {1}, 3: {2}}
	assert.Equal(t, []int{1, 3, 5}, r.Locations())
}
