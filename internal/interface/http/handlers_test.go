package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/eduflow/eduflow-registry/internal/application/command"
	"github.com/eduflow/eduflow-registry/internal/application/query"
	"github.com/eduflow/eduflow-registry/internal/application/registry"
	"github.com/eduflow/eduflow-registry/internal/domain/record"
	"github.com/eduflow/eduflow-registry/internal/domain/shared"
	"github.com/eduflow/eduflow-registry/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// TEST HARNESS
// ══════════════════════════════════════════════════════════════════════════════

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

type stubSummarizer struct{ text string }

func (s *stubSummarizer) Summarize(ctx context.Context, records []record.Record) (string, error) {
	return s.text, nil
}

func newTestServer(t *testing.T, cfg Config) (*Server, *registry.Registry) {
	t.Helper()
	reg := registry.New(registry.Dependencies{
		Snapshots:  &memSnapshots{},
		LabelStore: &memLabels{},
		Logger:     logger.New(logger.Options{Level: logger.LevelError}),
	})
	require.NoError(t, reg.Load(context.Background()))

	srv := NewServer(cfg, Dependencies{
		Registry:         reg,
		Enroll:           command.NewEnrollStudentHandler(reg),
		Update:           command.NewUpdateStudentHandler(reg),
		Remove:           command.NewRemoveStudentHandler(reg),
		LogAttendance:    command.NewLogAttendanceHandler(reg),
		RemoveAttendance: command.NewRemoveAttendanceHandler(reg),
		BulkAttendance:   command.NewBulkAttendanceHandler(reg),
		LogPayment:       command.NewLogPaymentHandler(reg),
		SortRoster:       command.NewSortRosterHandler(reg),
		ManageLabels:     command.NewManageLabelsHandler(reg),
		GetStudent:       query.NewGetStudentHandler(reg),
		ListStudents:     query.NewListStudentsHandler(reg),
		GetDashboard:     query.NewGetDashboardHandler(reg, 0),
		GetInsight:       query.NewGetInsightHandler(reg, &stubSummarizer{text: "Cohort is healthy."}),
		Logger:           logger.New(logger.Options{Level: logger.LevelError}),
	})
	return srv, reg
}

func doJSON(t *testing.T, srv *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) JSONResponse {
	t.Helper()
	var env JSONResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func enrollAnn(t *testing.T, srv *Server) {
	t.Helper()
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/students", command.EnrollStudentCommand{
		ID: "a1", Name: "Ann Walker", JoinDate: "2026-01-10", FeesTotal: 5000,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

// ══════════════════════════════════════════════════════════════════════════════
// ROSTER ENDPOINTS
// ══════════════════════════════════════════════════════════════════════════════

func TestEnrollAndGetStudent(t *testing.T) {
	srv, _ := newTestServer(t, DefaultConfig())
	enrollAnn(t, srv)

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/students/a1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestEnroll_DuplicateIs400(t *testing.T) {
	srv, _ := newTestServer(t, DefaultConfig())
	enrollAnn(t, srv)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/students", command.EnrollStudentCommand{
		ID: "A1", Name: "Imposter", FeesTotal: 1,
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "validation_failed", env.Error.Code)
}

func TestGetStudent_MissingIs404(t *testing.T) {
	srv, _ := newTestServer(t, DefaultConfig())

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/students/nobody", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateStudent_PathIDWins(t *testing.T) {
	srv, reg := newTestServer(t, DefaultConfig())
	enrollAnn(t, srv)

	rec := doJSON(t, srv, http.MethodPut, "/api/v1/students/a1", command.UpdateStudentCommand{
		ID: "a1", Name: "Ann W.", Score: 88, FeesTotal: 5000,
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Ann W.", reg.Snapshot()[0].Name)
}

func TestRemoveStudent(t *testing.T) {
	srv, reg := newTestServer(t, DefaultConfig())
	enrollAnn(t, srv)

	rec := doJSON(t, srv, http.MethodDelete, "/api/v1/students/a1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, reg.Snapshot())
}

func TestSortRoster_UnknownFieldIs400(t *testing.T) {
	srv, _ := newTestServer(t, DefaultConfig())

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/roster/sort", command.SortRosterCommand{Field: "height"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMalformedBodyIs400(t *testing.T) {
	srv, _ := newTestServer(t, DefaultConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/students", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "malformed_body", env.Error.Code)
}

// ══════════════════════════════════════════════════════════════════════════════
// LEDGER ENDPOINTS
// ══════════════════════════════════════════════════════════════════════════════

func TestAttendanceAndPaymentFlow(t *testing.T) {
	srv, reg := newTestServer(t, DefaultConfig())
	enrollAnn(t, srv)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/students/a1/attendance", map[string]string{
		"date": "2026-03-01", "status": "present",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/students/a1/payments", map[string]interface{}{
		"amount": 2500.0,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	stored := reg.Snapshot()[0]
	assert.Len(t, stored.Attendance, 1)
	assert.Equal(t, 2500.0, stored.FeesPaid)

	rec = doJSON(t, srv, http.MethodDelete, "/api/v1/students/a1/attendance/2026-03-01", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, reg.Snapshot()[0].Attendance)
}

func TestBulkAttendance_ReportsSkipped(t *testing.T) {
	srv, _ := newTestServer(t, DefaultConfig())
	enrollAnn(t, srv)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/attendance", map[string]interface{}{
		"date":  "2026-03-01",
		"marks": map[string]string{"a1": "present", "ghost": "absent"},
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"applied":1`)
	assert.Contains(t, rec.Body.String(), `"ghost"`)
}

func TestPayment_NonPositiveAmountIs400(t *testing.T) {
	srv, _ := newTestServer(t, DefaultConfig())
	enrollAnn(t, srv)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/students/a1/payments", map[string]interface{}{
		"amount": -10.0,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ══════════════════════════════════════════════════════════════════════════════
// GROUPS, ANALYTICS, EXPORTS
// ══════════════════════════════════════════════════════════════════════════════

func TestGroupVocabularyEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, DefaultConfig())

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/groups", map[string]string{"name": "Chess Club"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/groups", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Chess Club")

	rec = doJSON(t, srv, http.MethodDelete, "/api/v1/groups/Chess%20Club", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodDelete, "/api/v1/groups/Chess%20Club", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDashboardEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, DefaultConfig())
	enrollAnn(t, srv)

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"cohort_size":1`)
}

func TestInsightEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, DefaultConfig())

	// Пустой реестр - валидационная ошибка.
	rec := doJSON(t, srv, http.MethodGet, "/api/v1/insight", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	enrollAnn(t, srv)
	rec = doJSON(t, srv, http.MethodGet, "/api/v1/insight", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Cohort is healthy.")
}

func TestExportEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, DefaultConfig())
	enrollAnn(t, srv)

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/export/roster.csv", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "ID,NAME,SCORE,"))
	assert.Contains(t, rec.Body.String(), "A1,Ann Walker,")

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/export/attendance.csv", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "ID,NAME,ATTENDANCE_PERCENTAGE,"))
}

func TestExport_HonorsListFilters(t *testing.T) {
	srv, _ := newTestServer(t, DefaultConfig())
	enrollAnn(t, srv)
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/students", command.EnrollStudentCommand{
		ID: "b2", Name: "Bob Chen", FeesTotal: 5000,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/export/roster.csv?search=ann", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Ann Walker")
	assert.NotContains(t, rec.Body.String(), "Bob Chen")
}

// ══════════════════════════════════════════════════════════════════════════════
// AUTHENTICATION
// ══════════════════════════════════════════════════════════════════════════════

func TestAPIKeyGuard(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("sekret"), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.APIKeyHashes = []string{string(hash)}
	srv, _ := newTestServer(t, cfg)

	body := command.EnrollStudentCommand{ID: "a1", Name: "Ann", FeesTotal: 1}

	// Без ключа - 401.
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/students", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Неверный ключ - 401.
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/students", bytes.NewReader(raw))
	req.Header.Set("X-API-Key", "wrong")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Верный ключ - 201.
	req = httptest.NewRequest(http.MethodPost, "/api/v1/students", bytes.NewReader(raw))
	req.Header.Set("X-API-Key", "sekret")
	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)

	// Чтение остаётся открытым.
	rec = doJSON(t, srv, http.MethodGet, "/api/v1/students", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
