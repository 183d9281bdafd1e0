package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/DevN0mad/ShiftBot/internal/models"
	"github.com/DevN0mad/ShiftBot/internal/services"
	"github.com/DevN0mad/ShiftBot/internal/shifts"
)

type shiftResponse struct {
	Date        string        `json:"date"`
	Period      shifts.Period `json:"period"`
	Available   bool          `json:"available"`
	Technicians []string      `json:"technicians"`
}

type workloadResponse struct {
	Available bool                     `json:"available"`
	Workload  []models.WorkloadSummary `json:"workload"`
}

type statisticsResponse struct {
	Available  bool                     `json:"available"`
	Statistics models.MonthlyStatistics `json:"statistics"`
}

type scheduleResponse struct {
	Available bool                 `json:"available"`
	Year      int                  `json:"year"`
	Month     int                  `json:"month"`
	Records   []models.ShiftRecord `json:"records"`
	Conflicts []models.Conflict    `json:"conflicts"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) view() services.DashboardView {
	return s.dashboard.View(s.dashboard.Now())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.view())
}

func (s *Server) handleCurrentShift(w http.ResponseWriter, r *http.Request) {
	v := s.view()
	s.writeJSON(w, http.StatusOK, shiftResponse{
		Date:        v.Date,
		Period:      v.Period,
		Available:   v.Available,
		Technicians: v.CurrentShift,
	})
}

// handleNextShift отдаёт другую половину текущих суток.
func (s *Server) handleNextShift(w http.ResponseWriter, r *http.Request) {
	v := s.view()
	s.writeJSON(w, http.StatusOK, shiftResponse{
		Date:        v.Date,
		Period:      v.Period.Other(),
		Available:   v.Available,
		Technicians: v.NextShift,
	})
}

func (s *Server) handleWorkload(w http.ResponseWriter, r *http.Request) {
	v := s.view()
	s.writeJSON(w, http.StatusOK, workloadResponse{Available: v.Available, Workload: v.Workload})
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	v := s.view()
	s.writeJSON(w, http.StatusOK, statisticsResponse{Available: v.Available, Statistics: v.Statistics})
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	v := s.view()
	conflicts := shifts.Conflicts(v.Records)
	if conflicts == nil {
		conflicts = []models.Conflict{}
	}
	s.writeJSON(w, http.StatusOK, scheduleResponse{
		Available: v.Available,
		Year:      v.Year,
		Month:     v.Month,
		Records:   v.Records,
		Conflicts: conflicts,
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.dashboard.Refresh(r.Context()); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, services.ErrDataUnavailable) {
			status = http.StatusServiceUnavailable
		}
		s.logger.Warn("Refresh request failed", "error", err)
		s.writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, s.view())
}

// handleReport отдаёт excel отчёт по текущему месяцу.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	v := s.view()
	if !v.Available {
		s.writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: v.Error})
		return
	}

	var buf bytes.Buffer
	if err := s.report.WriteReport(&buf, v); err != nil {
		s.logger.Error("Generate report", "error", err)
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to generate report"})
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", services.ReportFileName(v)))
	if _, err := w.Write(buf.Bytes()); err != nil {
		s.logger.Error("Write report response", "error", err)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("Encode response", "error", err)
	}
}
