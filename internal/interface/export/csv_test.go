package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduflow/eduflow-registry/internal/domain/record"
)

func sampleRoster() []record.Record {
	ann, err := record.NewRecord(record.NewRecordParams{
		ID:            "a1",
		Name:          "Ann Walker",
		Score:         91.5,
		JoinDate:      "2026-01-10",
		FeesPaid:      2500,
		FeesTotal:     5000,
		Email:         "ann@example.com",
		GuardianName:  "Walter Walker",
		GuardianPhone: "555-0199",
	})
	if err != nil {
		panic(err)
	}
	ann.Attendance = []record.AttendanceEntry{
		{Date: "2026-03-03", Status: record.StatusLeave},
		{Date: "2026-03-02", Status: record.StatusAbsent},
		{Date: "2026-03-01", Status: record.StatusPresent},
	}

	bob, err := record.NewRecord(record.NewRecordParams{
		ID: "b2", Name: "Bob Chen", JoinDate: "2026-01-11", FeesTotal: 5000,
	})
	if err != nil {
		panic(err)
	}

	return []record.Record{*ann, *bob}
}

func TestRosterCSV(t *testing.T) {
	out := RosterCSV(sampleRoster())
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	require.Len(t, lines, 3)
	assert.Equal(t, "ID,NAME,SCORE,FEES_PAID,FEES_TOTAL,EMAIL,GUARDIAN_NAME,GUARDIAN_PHONE", lines[0])
	assert.Equal(t, "A1,Ann Walker,91.5,2500,5000,ann@example.com,Walter Walker,555-0199", lines[1])
	assert.Equal(t, "B2,Bob Chen,0,0,5000,,,", lines[2])
}

func TestRosterCSV_EmptyRosterIsHeaderOnly(t *testing.T) {
	assert.Equal(t, RosterHeader+"\n", RosterCSV(nil))
}

func TestAttendanceCSV(t *testing.T) {
	out := AttendanceCSV(sampleRoster())
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	require.Len(t, lines, 3)
	assert.Equal(t, "ID,NAME,ATTENDANCE_PERCENTAGE,TOTAL_CLASSES,PRESENT_DAYS,ABSENT_DAYS,LEAVES", lines[0])
	// 1 из 3 присутствий = 33% (округление).
	assert.Equal(t, "A1,Ann Walker,33%,3,1,1,1", lines[1])
	// Без отметок - 0%.
	assert.Equal(t, "B2,Bob Chen,0%,0,0,0,0", lines[2])
}
