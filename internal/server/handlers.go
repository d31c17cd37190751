package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ihelfrich/GermanCostCo/internal/pipeline"
	"github.com/ihelfrich/GermanCostCo/internal/storage"
)

// writeJSON encodes v as the response body.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode response")
	}
}

// writeError renders a JSON error envelope.
func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// resolveRunID maps the "latest" alias to the newest stored run id.
func (s *Server) resolveRunID(ctx context.Context, r *http.Request) (string, error) {
	runID := chi.URLParam(r, "runID")
	if runID != "latest" {
		return runID, nil
	}
	return s.repo.LatestRunID(ctx)
}

// runLookup wraps the shared not-found/500 handling around a repository read.
func runLookup[T any](s *Server, w http.ResponseWriter, r *http.Request, fetch func(ctx context.Context, runID string) (T, error)) {
	runID, err := s.resolveRunID(r.Context(), r)
	if err != nil {
		if errors.Is(err, storage.ErrRunNotFound) {
			s.writeError(w, http.StatusNotFound, "no runs stored yet")
			return
		}
		s.log.Error().Err(err).Msg("Failed to resolve run id")
		s.writeError(w, http.StatusInternalServerError, "failed to resolve run id")
		return
	}

	result, err := fetch(r.Context(), runID)
	if err != nil {
		if errors.Is(err, storage.ErrRunNotFound) {
			s.writeError(w, http.StatusNotFound, "run not found: "+runID)
			return
		}
		s.log.Error().Err(err).Str("run_id", runID).Msg("Failed to load run data")
		s.writeError(w, http.StatusInternalServerError, "failed to load run data")
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

// handleHealth reports server and results database health.
// GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if err := s.resultsDB.HealthCheck(r.Context()); err != nil {
		s.log.Error().Err(err).Msg("Results database health check failed")
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	s.writeJSON(w, code, map[string]string{"status": status})
}

// handleTriggerRun executes the full analysis pipeline and persists the result.
// POST /api/runs
func (s *Server) handleTriggerRun(w http.ResponseWriter, r *http.Request) {
	if !s.runMu.TryLock() {
		s.writeError(w, http.StatusConflict, "analysis run already in progress")
		return
	}
	defer s.runMu.Unlock()

	p, err := pipeline.New(s.snapshot, s.log)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to build pipeline")
		s.writeError(w, http.StatusInternalServerError, "invalid assumption snapshot")
		return
	}

	result, err := p.Run(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("Analysis run failed")
		s.writeError(w, http.StatusInternalServerError, "analysis run failed")
		return
	}

	if err := s.repo.Save(r.Context(), result); err != nil {
		s.log.Error().Err(err).Str("run_id", result.RunID).Msg("Failed to persist run")
		s.writeError(w, http.StatusInternalServerError, "failed to persist run")
		return
	}

	s.writeJSON(w, http.StatusCreated, map[string]any{
		"run_id":       result.RunID,
		"generated_at": result.GeneratedAt,
		"elapsed_ms":   result.Elapsed.Milliseconds(),
		"insights":     result.Insights,
	})
}

// handleListRuns lists stored runs, newest first.
// GET /api/runs?limit=N
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	runs, err := s.repo.ListRuns(r.Context(), limit)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to list runs")
		s.writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	if runs == nil {
		runs = []storage.RunMeta{}
	}
	s.writeJSON(w, http.StatusOK, runs)
}

// handleGetRun returns the run metadata plus its executive insights.
// GET /api/runs/{runID}
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	runLookup(s, w, r, func(ctx context.Context, runID string) (any, error) {
		meta, err := s.repo.GetRunMeta(ctx, runID)
		if err != nil {
			return nil, err
		}
		insights, err := s.repo.GetInsights(ctx, runID)
		if err != nil {
			return nil, err
		}
		return map[string]any{"run": meta, "insights": insights}, nil
	})
}

// handleGetSummaries returns per-scenario strategy summaries.
// GET /api/runs/{runID}/summary
func (s *Server) handleGetSummaries(w http.ResponseWriter, r *http.Request) {
	runLookup(s, w, r, s.repo.GetSummaries)
}

// handleGetDecisions returns the ranked decision matrix.
// GET /api/runs/{runID}/decision
func (s *Server) handleGetDecisions(w http.ResponseWriter, r *http.Request) {
	runLookup(s, w, r, s.repo.GetDecisions)
}

// handleGetValuations returns the five-year valuations.
// GET /api/runs/{runID}/valuation
func (s *Server) handleGetValuations(w http.ResponseWriter, r *http.Request) {
	runLookup(s, w, r, s.repo.GetValuations)
}

// handleGetCityScores returns the city x strategy score table.
// GET /api/runs/{runID}/cities
func (s *Server) handleGetCityScores(w http.ResponseWriter, r *http.Request) {
	runLookup(s, w, r, s.repo.GetCityScores)
}

// handleGetCityPlan returns the rollout plan in launch order.
// GET /api/runs/{runID}/plan
func (s *Server) handleGetCityPlan(w http.ResponseWriter, r *http.Request) {
	runLookup(s, w, r, s.repo.GetCityPlan)
}

// handleGetInsights returns the stored executive summary.
// GET /api/runs/{runID}/insights
func (s *Server) handleGetInsights(w http.ResponseWriter, r *http.Request) {
	runLookup(s, w, r, s.repo.GetInsights)
}

// handleGetReport streams the board report as markdown.
// GET /api/runs/{runID}/report
func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	runID, err := s.resolveRunID(r.Context(), r)
	if err != nil {
		if errors.Is(err, storage.ErrRunNotFound) {
			s.writeError(w, http.StatusNotFound, "no runs stored yet")
			return
		}
		s.log.Error().Err(err).Msg("Failed to resolve run id")
		s.writeError(w, http.StatusInternalServerError, "failed to resolve run id")
		return
	}

	report, err := s.repo.GetReport(r.Context(), runID)
	if err != nil {
		if errors.Is(err, storage.ErrRunNotFound) {
			s.writeError(w, http.StatusNotFound, "run not found: "+runID)
			return
		}
		s.log.Error().Err(err).Str("run_id", runID).Msg("Failed to load report")
		s.writeError(w, http.StatusInternalServerError, "failed to load report")
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	if _, err := w.Write([]byte(report)); err != nil {
		s.log.Error().Err(err).Msg("Failed to write report response")
	}
}

// handleGetAssumptions returns the active assumption snapshot.
// GET /api/system/assumptions
func (s *Server) handleGetAssumptions(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.snapshot)
}
