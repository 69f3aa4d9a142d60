package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduflow/eduflow-registry/internal/application/registry"
	"github.com/eduflow/eduflow-registry/internal/domain/record"
	"github.com/eduflow/eduflow-registry/internal/domain/shared"
	"github.com/eduflow/eduflow-registry/pkg/logger"
)

type memSnapshots struct {
	records []record.Record
}

func (m *memSnapshots) Load(ctx context.Context) ([]record.Record, error) {
	if m.records == nil {
		return nil, shared.ErrNoSnapshot
	}
	return m.records, nil
}

func (m *memSnapshots) Save(ctx context.Context, records []record.Record) error {
	m.records = records
	return nil
}

type memLabels struct {
	names []string
}

func (m *memLabels) LoadLabels(ctx context.Context) ([]string, error) {
	if m.names == nil {
		return nil, shared.ErrNoSnapshot
	}
	return m.names, nil
}

func (m *memLabels) SaveLabels(ctx context.Context, names []string) error {
	m.names = names
	return nil
}

func seedRegistry(t *testing.T, records []record.Record, labelNames []string) *registry.Registry {
	t.Helper()
	reg := registry.New(registry.Dependencies{
		Snapshots:  &memSnapshots{records: records},
		LabelStore: &memLabels{names: labelNames},
		Logger:     logger.New(logger.Options{Level: logger.LevelError}),
	})
	require.NoError(t, reg.Load(context.Background()))
	return reg
}

func student(id, name string, mutate func(*record.Record)) record.Record {
	rec, err := record.NewRecord(record.NewRecordParams{
		ID: id, Name: name, JoinDate: "2026-01-10", FeesTotal: 5000,
	})
	if err != nil {
		panic(err)
	}
	if mutate != nil {
		mutate(rec)
	}
	return *rec
}

// ══════════════════════════════════════════════════════════════════════════════
// GET / LIST
// ══════════════════════════════════════════════════════════════════════════════

func TestGetStudent_NormalizesAndCopies(t *testing.T) {
	reg := seedRegistry(t, []record.Record{student("a1", "Ann", nil)}, nil)
	h := NewGetStudentHandler(reg)

	rec, err := h.Handle(context.Background(), GetStudentQuery{ID: "  a1 "})
	require.NoError(t, err)
	assert.Equal(t, "Ann", rec.Name)

	// Мутация копии не протекает в реестр.
	rec.Name = "Hacked"
	again, err := h.Handle(context.Background(), GetStudentQuery{ID: "A1"})
	require.NoError(t, err)
	assert.Equal(t, "Ann", again.Name)

	_, err = h.Handle(context.Background(), GetStudentQuery{ID: "nobody"})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestListStudents_SearchAndGroupFilter(t *testing.T) {
	reg := seedRegistry(t, []record.Record{
		student("a1", "Ann Walker", func(r *record.Record) {
			r.Groups = []string{"Honors Program"}
			r.GuardianName = "Walter Walker"
		}),
		student("b2", "Bob Chen", func(r *record.Record) { r.Phone = "555-0101" }),
		student("c3", "Cid Walken", nil),
	}, []string{"Honors Program"})
	h := NewListStudentsHandler(reg)

	res, err := h.Handle(context.Background(), ListStudentsQuery{})
	require.NoError(t, err)
	assert.Len(t, res.Records, 3)
	assert.Equal(t, 3, res.Total)

	// Подстрока без учёта регистра: "walk" матчит Ann (имя и опекун) и Cid.
	res, err = h.Handle(context.Background(), ListStudentsQuery{Search: "WALK"})
	require.NoError(t, err)
	assert.Len(t, res.Records, 2)
	assert.Equal(t, 3, res.Total)

	res, err = h.Handle(context.Background(), ListStudentsQuery{Search: "555-01"})
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "Bob Chen", res.Records[0].Name)

	res, err = h.Handle(context.Background(), ListStudentsQuery{Group: "Honors Program"})
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "Ann Walker", res.Records[0].Name)

	// Оба фильтра сужают вместе.
	res, err = h.Handle(context.Background(), ListStudentsQuery{Search: "cid", Group: "Honors Program"})
	require.NoError(t, err)
	assert.Empty(t, res.Records)
}

// ══════════════════════════════════════════════════════════════════════════════
// DASHBOARD
// ══════════════════════════════════════════════════════════════════════════════

func TestDashboard_ComposesCohortView(t *testing.T) {
	reg := seedRegistry(t, []record.Record{
		student("a1", "Ann", func(r *record.Record) {
			r.Score = 90
			r.FeesPaid = 2000
			r.Groups = []string{"Honors Program"}
			r.Attendance = []record.AttendanceEntry{
				{Date: "2026-03-02", Status: record.StatusPresent},
				{Date: "2026-03-01", Status: record.StatusPresent},
			}
		}),
		student("b2", "Bob", func(r *record.Record) {
			r.Score = 70
			r.Attendance = []record.AttendanceEntry{
				{Date: "2026-03-02", Status: record.StatusAbsent},
				{Date: "2026-03-01", Status: record.StatusPresent},
			}
		}),
	}, []string{"Honors Program", "Sports Quota"})

	dash, err := NewGetDashboardHandler(reg, 0).Handle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, dash.Summary.CohortSize)
	assert.Equal(t, 2000.0, dash.Summary.TotalCollected)
	assert.Equal(t, 10000.0, dash.Summary.TotalTarget)
	assert.Equal(t, 80.0, dash.Summary.AverageScore)

	require.Len(t, dash.Groups, 2)
	assert.Equal(t, 1, dash.Groups[0].Count)
	assert.Equal(t, 0, dash.Groups[1].Count)

	// Bob на 50% - строго ниже порога 75.
	require.Len(t, dash.Watchlist, 1)
	assert.Equal(t, record.StudentID("B2"), dash.Watchlist[0].ID)
	assert.Equal(t, 50.0, dash.Watchlist[0].AttendancePercent)
}

func TestDashboard_EmptyRosterIsZeroes(t *testing.T) {
	reg := seedRegistry(t, nil, nil)

	dash, err := NewGetDashboardHandler(reg, 0).Handle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, dash.Summary.CohortSize)
	assert.Empty(t, dash.Watchlist)
}

// ══════════════════════════════════════════════════════════════════════════════
// INSIGHT
// ══════════════════════════════════════════════════════════════════════════════

type fakeSummarizer struct {
	text string
	err  error
	got  []record.Record
}

func (f *fakeSummarizer) Summarize(ctx context.Context, records []record.Record) (string, error) {
	f.got = records
	return f.text, f.err
}

func TestInsight_EmptyRosterRejected(t *testing.T) {
	reg := seedRegistry(t, nil, nil)
	sum := &fakeSummarizer{text: "ok"}

	_, err := NewGetInsightHandler(reg, sum).Handle(context.Background())

	assert.ErrorIs(t, err, shared.ErrEmptyRoster)
	assert.Nil(t, sum.got) // коллаборатор не вызывался
}

func TestInsight_PassesSnapshotThrough(t *testing.T) {
	reg := seedRegistry(t, []record.Record{student("a1", "Ann", nil)}, nil)
	sum := &fakeSummarizer{text: "Collections are healthy."}

	insight, err := NewGetInsightHandler(reg, sum).Handle(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "Collections are healthy.", insight.Text)
	require.Len(t, sum.got, 1)
	assert.Equal(t, "Ann", sum.got[0].Name)
}

func TestInsight_CollaboratorErrorSurfaces(t *testing.T) {
	reg := seedRegistry(t, []record.Record{student("a1", "Ann", nil)}, nil)
	sum := &fakeSummarizer{err: shared.ErrInsightUnavailable}

	_, err := NewGetInsightHandler(reg, sum).Handle(context.Background())
	assert.ErrorIs(t, err, shared.ErrExternalService)
}
