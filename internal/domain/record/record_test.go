package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduflow/eduflow-registry/internal/domain/shared"
)

func validParams() NewRecordParams {
	return NewRecordParams{
		ID:        "stu-001",
		Name:      "Ann Walker",
		Score:     88.5,
		JoinDate:  "2026-01-15",
		FeesTotal: 5000,
	}
}

func TestNewRecord_NormalizesID(t *testing.T) {
	params := validParams()
	params.ID = "  stu-001  "

	r, err := NewRecord(params)

	require.NoError(t, err)
	assert.Equal(t, StudentID("STU-001"), r.ID)
}

func TestNewRecord_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*NewRecordParams)
		wantErr error
	}{
		{"empty id", func(p *NewRecordParams) { p.ID = "   " }, shared.ErrMissingID},
		{"empty name", func(p *NewRecordParams) { p.Name = "" }, shared.ErrMissingName},
		{"negative fees paid", func(p *NewRecordParams) { p.FeesPaid = -1 }, shared.ErrNegativeFees},
		{"negative fees total", func(p *NewRecordParams) { p.FeesTotal = -100 }, shared.ErrNegativeFees},
		{"negative backlog", func(p *NewRecordParams) { p.BacklogCount = -2 }, shared.ErrNegativeBacklog},
		{"bad join date", func(p *NewRecordParams) { p.JoinDate = "15/01/2026" }, shared.ErrInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := validParams()
			tt.mutate(&params)

			_, err := NewRecord(params)

			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNewRecord_DefaultsJoinDateToToday(t *testing.T) {
	params := validParams()
	params.JoinDate = ""

	r, err := NewRecord(params)

	require.NoError(t, err)
	assert.NotEmpty(t, r.JoinDate)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}$`, r.JoinDate)
}

func TestLogAttendance_OverwriteSameDateIsIdempotent(t *testing.T) {
	r, err := NewRecord(validParams())
	require.NoError(t, err)

	require.NoError(t, r.LogAttendance("2026-03-01", StatusPresent))
	require.NoError(t, r.LogAttendance("2026-03-01", StatusAbsent))
	require.NoError(t, r.LogAttendance("2026-03-01", StatusAbsent))

	require.Len(t, r.Attendance, 1)
	assert.Equal(t, StatusAbsent, r.Attendance[0].Status)
}

func TestLogAttendance_KeepsDescendingDateOrder(t *testing.T) {
	r, err := NewRecord(validParams())
	require.NoError(t, err)

	require.NoError(t, r.LogAttendance("2026-03-02", StatusPresent))
	require.NoError(t, r.LogAttendance("2026-03-05", StatusLeave))
	require.NoError(t, r.LogAttendance("2026-03-03", StatusAbsent))

	require.Len(t, r.Attendance, 3)
	assert.Equal(t, "2026-03-05", r.Attendance[0].Date)
	assert.Equal(t, "2026-03-03", r.Attendance[1].Date)
	assert.Equal(t, "2026-03-02", r.Attendance[2].Date)
}

func TestLogAttendance_RejectsBadInput(t *testing.T) {
	r, err := NewRecord(validParams())
	require.NoError(t, err)

	assert.ErrorIs(t, r.LogAttendance("not-a-date", StatusPresent), shared.ErrInvalidDate)
	assert.ErrorIs(t, r.LogAttendance("2026-03-01", AttendanceStatus("sick")), shared.ErrInvalidStatus)
	assert.Empty(t, r.Attendance)
}

func TestRemoveAttendance_MissingDateIsNoop(t *testing.T) {
	r, err := NewRecord(validParams())
	require.NoError(t, err)

	require.NoError(t, r.LogAttendance("2026-03-01", StatusPresent))
	r.RemoveAttendance("2026-03-02") // нет такой даты

	assert.Len(t, r.Attendance, 1)

	r.RemoveAttendance("2026-03-01")
	assert.Empty(t, r.Attendance)
}

func TestLogPayment_RejectedAmountLeavesLedgerUntouched(t *testing.T) {
	r, err := NewRecord(validParams())
	require.NoError(t, err)

	_, err = r.LogPayment(0, "")
	assert.ErrorIs(t, err, shared.ErrInvalidAmount)

	_, err = r.LogPayment(-50, "")
	assert.ErrorIs(t, err, shared.ErrInvalidAmount)

	assert.Empty(t, r.Payments)
	assert.Equal(t, 0.0, r.FeesPaid)
}

func TestLogPayment_RecomputesFeesPaidFromFullHistory(t *testing.T) {
	r, err := NewRecord(validParams())
	require.NoError(t, err)

	// Прямое выставление FeesPaid перекрывается журналом при первом платеже.
	r.FeesPaid = 999

	_, err = r.LogPayment(1000, "")
	require.NoError(t, err)
	assert.Equal(t, 1000.0, r.FeesPaid)

	entry, err := r.LogPayment(250.5, "Late fee")
	require.NoError(t, err)
	assert.Equal(t, 1250.5, r.FeesPaid)
	assert.Equal(t, "Late fee", entry.Note)
	assert.NotEmpty(t, entry.ID)
}

func TestLogPayment_DefaultNote(t *testing.T) {
	r, err := NewRecord(validParams())
	require.NoError(t, err)

	entry, err := r.LogPayment(100, "   ")

	require.NoError(t, err)
	assert.Equal(t, DefaultPaymentNote, entry.Note)
}

func TestClone_IsDeep(t *testing.T) {
	r, err := NewRecord(validParams())
	require.NoError(t, err)
	require.NoError(t, r.LogAttendance("2026-03-01", StatusPresent))
	_, err = r.LogPayment(100, "")
	require.NoError(t, err)
	ref := "avatars/stu-001.png"
	r.AvatarRef = &ref
	r.Groups = []string{"Honors Program"}

	clone := r.Clone()
	clone.Attendance[0].Status = StatusAbsent
	clone.Payments[0].Amount = 1
	clone.Groups[0] = "changed"
	*clone.AvatarRef = "changed"

	assert.Equal(t, StatusPresent, r.Attendance[0].Status)
	assert.Equal(t, 100.0, r.Payments[0].Amount)
	assert.Equal(t, "Honors Program", r.Groups[0])
	assert.Equal(t, "avatars/stu-001.png", *r.AvatarRef)
}

func TestReplaceFields_PreservesEntityPointer(t *testing.T) {
	r, err := NewRecord(validParams())
	require.NoError(t, err)
	original := r

	donor, err := NewRecord(NewRecordParams{ID: "stu-002", Name: "Bob Chen", Score: 42, FeesTotal: 4000, JoinDate: "2026-02-01"})
	require.NoError(t, err)

	r.ReplaceFields(donor)

	assert.Same(t, original, r)
	assert.Equal(t, StudentID("STU-002"), r.ID)
	assert.Equal(t, "Bob Chen", r.Name)

	// Донор не делит срезы с обновлённой карточкой.
	donor.Groups = append(donor.Groups, "x")
	assert.Empty(t, r.Groups)
}
