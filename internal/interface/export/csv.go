// Package export renders roster views as CSV reports.
//
// The reports use a fixed column set and plain comma joins. Field values in
// this domain (IDs, names, dates, numbers) do not carry commas or quotes, so
// no CSV escaping is applied; a value containing a comma would shift columns.
package export

import (
	"strconv"
	"strings"

	"github.com/eduflow/eduflow-registry/internal/domain/record"
	"github.com/eduflow/eduflow-registry/internal/domain/stats"
)

// ══════════════════════════════════════════════════════════════════════════════
// ROSTER REPORT
// ══════════════════════════════════════════════════════════════════════════════

// RosterHeader is the column row of the roster report.
const RosterHeader = "ID,NAME,SCORE,FEES_PAID,FEES_TOTAL,EMAIL,GUARDIAN_NAME,GUARDIAN_PHONE"

// RosterCSV renders the full roster, one row per record, in roster order.
func RosterCSV(records []record.Record) string {
	var b strings.Builder
	b.WriteString(RosterHeader)
	b.WriteByte('\n')

	for i := range records {
		r := &records[i]
		row := []string{
			string(r.ID),
			r.Name,
			formatNumber(r.Score),
			formatNumber(r.FeesPaid),
			formatNumber(r.FeesTotal),
			r.Email,
			r.GuardianName,
			r.GuardianPhone,
		}
		b.WriteString(strings.Join(row, ","))
		b.WriteByte('\n')
	}
	return b.String()
}

// ══════════════════════════════════════════════════════════════════════════════
// ATTENDANCE REPORT
// ══════════════════════════════════════════════════════════════════════════════

// AttendanceHeader is the column row of the attendance report.
const AttendanceHeader = "ID,NAME,ATTENDANCE_PERCENTAGE,TOTAL_CLASSES,PRESENT_DAYS,ABSENT_DAYS,LEAVES"

// AttendanceCSV renders the per-student attendance breakdown. The percentage
// column carries a trailing percent sign.
func AttendanceCSV(records []record.Record) string {
	var b strings.Builder
	b.WriteString(AttendanceHeader)
	b.WriteByte('\n')

	for i := range records {
		r := &records[i]
		breakdown := stats.Breakdown(records[i : i+1])
		row := []string{
			string(r.ID),
			r.Name,
			formatNumber(stats.AttendancePercent(r)) + "%",
			strconv.Itoa(len(r.Attendance)),
			strconv.Itoa(breakdown.Present),
			strconv.Itoa(breakdown.Absent),
			strconv.Itoa(breakdown.Leaves),
		}
		b.WriteString(strings.Join(row, ","))
		b.WriteByte('\n')
	}
	return b.String()
}

// formatNumber renders a float without a fixed precision: 2500 stays "2500",
// 1250.5 stays "1250.5".
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
