package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduflow/eduflow-registry/internal/domain/record"
)

func studentWith(t *testing.T, id string, marks []record.AttendanceStatus) record.Record {
	t.Helper()
	r, err := record.NewRecord(record.NewRecordParams{
		ID: id, Name: "Student " + id, JoinDate: "2026-01-01", FeesTotal: 1000,
	})
	require.NoError(t, err)
	dates := []string{"2026-03-01", "2026-03-02", "2026-03-03", "2026-03-04", "2026-03-05"}
	for i, m := range marks {
		require.NoError(t, r.LogAttendance(dates[i], m))
	}
	return *r
}

func TestAttendancePercent(t *testing.T) {
	empty := studentWith(t, "e0", nil)
	assert.Equal(t, 0.0, AttendancePercent(&empty))

	// [present, present, absent, leave] -> 50%
	half := studentWith(t, "h1", []record.AttendanceStatus{
		record.StatusPresent, record.StatusPresent, record.StatusAbsent, record.StatusLeave,
	})
	assert.Equal(t, 50.0, AttendancePercent(&half))

	// 1 из 3 -> round(33.33) = 33
	third := studentWith(t, "t1", []record.AttendanceStatus{
		record.StatusPresent, record.StatusAbsent, record.StatusAbsent,
	})
	assert.Equal(t, 33.0, AttendancePercent(&third))
}

func TestFeeBalance_NoClamp(t *testing.T) {
	r, err := record.NewRecord(record.NewRecordParams{
		ID: "a1", Name: "Ann", FeesPaid: 1200, FeesTotal: 1000, JoinDate: "2026-01-01",
	})
	require.NoError(t, err)

	// Переплата даёт отрицательный остаток.
	assert.Equal(t, -200.0, FeeBalance(r))
}

func TestCohortAverage_EmptyIsZero(t *testing.T) {
	assert.Equal(t, 0.0, CohortAverage(nil, func(r *record.Record) float64 { return r.Score }))

	records := []record.Record{
		studentWith(t, "a1", nil),
		studentWith(t, "b2", nil),
	}
	records[0].Score = 80
	records[1].Score = 90
	assert.Equal(t, 85.0, CohortAverage(records, func(r *record.Record) float64 { return r.Score }))
}

func TestWatchlist_StrictlyBelowThreshold(t *testing.T) {
	exactly75 := studentWith(t, "x1", []record.AttendanceStatus{
		record.StatusPresent, record.StatusPresent, record.StatusPresent, record.StatusAbsent,
	}) // 75%
	below := studentWith(t, "y2", []record.AttendanceStatus{
		record.StatusPresent, record.StatusAbsent,
	}) // 50%
	noMarks := studentWith(t, "z3", nil) // 0%

	list := Watchlist([]record.Record{exactly75, below, noMarks}, DefaultWatchlistThreshold)

	// Ровно на пороге - не в списке; порядок реестра сохранён.
	require.Len(t, list, 2)
	assert.Equal(t, record.StudentID("Y2"), list[0].ID)
	assert.Equal(t, record.StudentID("Z3"), list[1].ID)
	assert.Equal(t, 0.0, list[1].AttendancePercent)
}

func TestGroupMembership(t *testing.T) {
	a := studentWith(t, "a1", nil)
	a.Groups = []string{"Honors Program", "Sports Quota"}
	b := studentWith(t, "b2", nil)
	b.Groups = []string{"Honors Program"}
	c := studentWith(t, "c3", nil)

	shares := GroupMembership([]record.Record{a, b, c}, []string{"Honors Program", "Sports Quota", "Exchange Students"})

	require.Len(t, shares, 3)
	assert.Equal(t, GroupShare{Group: "Honors Program", Count: 2, Percent: 67}, shares[0])
	assert.Equal(t, GroupShare{Group: "Sports Quota", Count: 1, Percent: 33}, shares[1])
	assert.Equal(t, GroupShare{Group: "Exchange Students", Count: 0, Percent: 0}, shares[2])
}

func TestSummarize(t *testing.T) {
	a := studentWith(t, "a1", []record.AttendanceStatus{record.StatusPresent, record.StatusAbsent})
	a.Score = 80
	a.FeesPaid = 500
	b := studentWith(t, "b2", []record.AttendanceStatus{record.StatusPresent, record.StatusLeave})
	b.Score = 90
	b.FeesPaid = 300

	s := Summarize([]record.Record{a, b})

	assert.Equal(t, 2, s.CohortSize)
	assert.Equal(t, 800.0, s.TotalCollected)
	assert.Equal(t, 2000.0, s.TotalTarget)
	assert.Equal(t, 1200.0, s.TotalOutstanding)
	assert.Equal(t, 85.0, s.AverageScore)
	assert.Equal(t, 50.0, s.AverageAttendance)
	assert.Equal(t, 4, s.ClassesLogged)
	assert.Equal(t, AttendanceBreakdown{Present: 2, Absent: 1, Leaves: 1}, s.Attendance)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, 0, s.CohortSize)
	assert.Equal(t, 0.0, s.AverageScore)
	assert.Equal(t, 0.0, s.AverageAttendance)
}
