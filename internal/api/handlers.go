package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/star/tlehist/internal/history"
)

type errorResponse struct {
	Error string `json:"error"`
}

type summaryResponse struct {
	RunID       string               `json:"runId"`
	From        string               `json:"from"`
	To          string               `json:"to"`
	Partial     bool                 `json:"partial"`
	Summary     history.Summary      `json:"summary"`
	Diagnostics []history.Diagnostic `json:"diagnostics"`
}

type satelliteResponse struct {
	RunID       string                    `json:"runId"`
	From        string                    `json:"from"`
	To          string                    `json:"to"`
	Partial     bool                      `json:"partial"`
	Satellite   *history.SatelliteHistory `json:"satellite"`
	Diagnostics []history.Diagnostic      `json:"diagnostics"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// analyze runs an analysis for the from/to query parameters. It writes the
// error response itself and returns nil when the request cannot proceed.
func (s *Server) analyze(w http.ResponseWriter, r *http.Request) *history.Report {
	q := r.URL.Query()
	from, to := q.Get("from"), q.Get("to")
	if from == "" || to == "" {
		writeError(w, http.StatusBadRequest, "from and to query parameters are required (YYYY-MM-DD)")
		return nil
	}

	ctx := r.Context()
	if s.opts.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.RequestTimeout)
		defer cancel()
	}

	report, err := s.analyzer.Analyze(ctx, from, to)
	if err != nil {
		if errors.Is(err, history.ErrInvalidRange) {
			writeError(w, http.StatusBadRequest, err.Error())
			return nil
		}
		s.logger.Error("analysis failed",
			"component", "api",
			"from", from,
			"to", to,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "analysis failed")
		return nil
	}
	return report
}

// parseLimit reads the optional non-negative limit parameter.
func parseLimit(r *http.Request) (int, error) {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, errors.New("limit must be a non-negative integer")
	}
	return n, nil
}

// GET /api/v1/history?from=&to=[&type=][&limit=]
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	report := s.analyze(w, r)
	if report == nil {
		return
	}
	report.Satellites = history.Filter(report.Satellites, r.URL.Query().Get("type"), limit)
	writeJSON(w, http.StatusOK, report)
}

// GET /api/v1/summary?from=&to=[&type=]
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	report := s.analyze(w, r)
	if report == nil {
		return
	}
	satellites := history.Filter(report.Satellites, r.URL.Query().Get("type"), 0)
	writeJSON(w, http.StatusOK, summaryResponse{
		RunID:       report.RunID,
		From:        report.From,
		To:          report.To,
		Partial:     report.Partial,
		Summary:     history.Summarize(satellites),
		Diagnostics: report.Diagnostics,
	})
}

// GET /api/v1/satellites/{norad_id}?from=&to=
func (s *Server) handleSatellite(w http.ResponseWriter, r *http.Request) {
	noradID := chi.URLParam(r, "norad_id")

	report := s.analyze(w, r)
	if report == nil {
		return
	}
	sat := history.Find(report.Satellites, noradID)
	if sat == nil {
		writeError(w, http.StatusNotFound, "no updates for satellite "+noradID+" in range")
		return
	}
	writeJSON(w, http.StatusOK, satelliteResponse{
		RunID:       report.RunID,
		From:        report.From,
		To:          report.To,
		Partial:     report.Partial,
		Satellite:   sat,
		Diagnostics: report.Diagnostics,
	})
}
