package http

import (
	"net/http"
	"time"

	"github.com/eduflow/eduflow-registry/internal/application/command"
	"github.com/eduflow/eduflow-registry/internal/application/query"
	"github.com/eduflow/eduflow-registry/internal/domain/record"
	"github.com/eduflow/eduflow-registry/internal/interface/export"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "not_found", "unknown endpoint")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "eduflow-registry",
		"status":  "ok",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "healthy",
		"roster_size": len(s.deps.Registry.Snapshot()),
		"timestamp":   time.Now().UTC(),
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// ROSTER
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleListStudents(w http.ResponseWriter, r *http.Request) {
	res, err := s.deps.ListStudents.Handle(r.Context(), query.ListStudentsQuery{
		Search: getQueryParam(r, "search", ""),
		Group:  getQueryParam(r, "group", ""),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleGetStudent(w http.ResponseWriter, r *http.Request) {
	rec, err := s.deps.GetStudent.Handle(r.Context(), query.GetStudentQuery{ID: r.PathValue("id")})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleEnrollStudent(w http.ResponseWriter, r *http.Request) {
	var cmd command.EnrollStudentCommand
	if !decodeBody(w, r, &cmd) {
		return
	}
	res, err := s.deps.Enroll.Handle(r.Context(), cmd)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) handleUpdateStudent(w http.ResponseWriter, r *http.Request) {
	var cmd command.UpdateStudentCommand
	if !decodeBody(w, r, &cmd) {
		return
	}
	cmd.TargetID = r.PathValue("id")

	res, err := s.deps.Update.Handle(r.Context(), cmd)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !res.Found {
		writeError(w, http.StatusNotFound, "not_found", "student record not found")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleRemoveStudent(w http.ResponseWriter, r *http.Request) {
	res, err := s.deps.Remove.Handle(r.Context(), command.RemoveStudentCommand{ID: r.PathValue("id")})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSortRoster(w http.ResponseWriter, r *http.Request) {
	var cmd command.SortRosterCommand
	if !decodeBody(w, r, &cmd) {
		return
	}
	if err := s.deps.SortRoster.Handle(r.Context(), cmd); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"sorted_by": cmd.Field})
}

// ══════════════════════════════════════════════════════════════════════════════
// ATTENDANCE & PAYMENTS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleLogAttendance(w http.ResponseWriter, r *http.Request) {
	var cmd command.LogAttendanceCommand
	if !decodeBody(w, r, &cmd) {
		return
	}
	cmd.ID = r.PathValue("id")

	if err := s.deps.LogAttendance.Handle(r.Context(), cmd); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"date": cmd.Date, "status": string(cmd.Status)})
}

func (s *Server) handleRemoveAttendance(w http.ResponseWriter, r *http.Request) {
	cmd := command.RemoveAttendanceCommand{
		ID:   r.PathValue("id"),
		Date: r.PathValue("date"),
	}
	if err := s.deps.RemoveAttendance.Handle(r.Context(), cmd); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"date": cmd.Date})
}

func (s *Server) handleBulkAttendance(w http.ResponseWriter, r *http.Request) {
	var cmd command.BulkAttendanceCommand
	if !decodeBody(w, r, &cmd) {
		return
	}
	res, err := s.deps.BulkAttendance.Handle(r.Context(), cmd)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleLogPayment(w http.ResponseWriter, r *http.Request) {
	var cmd command.LogPaymentCommand
	if !decodeBody(w, r, &cmd) {
		return
	}
	cmd.ID = r.PathValue("id")

	res, err := s.deps.LogPayment.Handle(r.Context(), cmd)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// ══════════════════════════════════════════════════════════════════════════════
// GROUP VOCABULARY
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"groups": s.deps.Registry.Labels()})
}

func (s *Server) handleAddGroup(w http.ResponseWriter, r *http.Request) {
	var cmd command.AddLabelCommand
	if !decodeBody(w, r, &cmd) {
		return
	}
	if err := s.deps.ManageLabels.HandleAdd(r.Context(), cmd); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"name": cmd.Name})
}

func (s *Server) handleRemoveGroup(w http.ResponseWriter, r *http.Request) {
	cmd := command.RemoveLabelCommand{Name: r.PathValue("name")}
	if err := s.deps.ManageLabels.HandleRemove(r.Context(), cmd); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"name": cmd.Name})
}

// ══════════════════════════════════════════════════════════════════════════════
// ANALYTICS & AI
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := s.deps.GetDashboard.Handle(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dash)
}

func (s *Server) handleInsight(w http.ResponseWriter, r *http.Request) {
	if s.deps.GetInsight == nil {
		writeError(w, http.StatusNotImplemented, "insights_disabled", "AI insights are not enabled on this instance")
		return
	}
	insight, err := s.deps.GetInsight.Handle(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, insight)
}

func (s *Server) handleGenerateAvatar(w http.ResponseWriter, r *http.Request) {
	if s.deps.GenerateAvatar == nil {
		writeError(w, http.StatusNotImplemented, "avatars_disabled", "AI avatars are not enabled on this instance")
		return
	}
	res, err := s.deps.GenerateAvatar.Handle(r.Context(), command.GenerateAvatarCommand{ID: r.PathValue("id")})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// ══════════════════════════════════════════════════════════════════════════════
// CSV EXPORTS
// ══════════════════════════════════════════════════════════════════════════════

// Exports honor the same search/group filters as the list endpoint, so a
// filtered view can be downloaded as-is.
func (s *Server) handleExportRoster(w http.ResponseWriter, r *http.Request) {
	records, err := s.exportView(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.writeCSV(w, "roster.csv", export.RosterCSV(records))
}

func (s *Server) handleExportAttendance(w http.ResponseWriter, r *http.Request) {
	records, err := s.exportView(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.writeCSV(w, "attendance.csv", export.AttendanceCSV(records))
}

func (s *Server) exportView(r *http.Request) ([]record.Record, error) {
	res, err := s.deps.ListStudents.Handle(r.Context(), query.ListStudentsQuery{
		Search: getQueryParam(r, "search", ""),
		Group:  getQueryParam(r, "group", ""),
	})
	if err != nil {
		return nil, err
	}
	return res.Records, nil
}

func (s *Server) writeCSV(w http.ResponseWriter, filename, body string) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}
