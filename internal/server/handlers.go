package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/repolens/repolens/internal/chat"
	"github.com/repolens/repolens/internal/discover"
	"github.com/repolens/repolens/internal/engine"
	"github.com/repolens/repolens/internal/ingest"
	"github.com/repolens/repolens/internal/search"
	"github.com/repolens/repolens/internal/store"
)

func respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("http.encode_failed", "err", err)
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respond(w, status, map[string]string{"error": msg})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

type analyzeRequest struct {
	RepoURL string `json:"repo_url"`
}

type analyzeResponse struct {
	Message     string                `json:"message"`
	ID          string                `json:"id"`
	RepoURL     string                `json:"repo_url"`
	RepoName    string                `json:"repo_name"`
	ScanResults *discover.ScanSummary `json:"scan_results"`
	Analysis    *engine.Analysis      `json:"analysis"`
}

// handleAnalyze clones a repository, analyzes it, persists the run,
// and removes the workspace before responding.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !decode(w, r, &req) {
		return
	}

	workDir, id, err := s.ingestor.Clone(r.Context(), req.RepoURL)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer s.ingestor.Remove(id)

	scan, err := discover.Scan(workDir)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to scan repository")
		return
	}

	analysis, err := engine.Analyze(r.Context(), workDir)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to analyze repository")
		return
	}

	run := &store.Run{
		ID:        id,
		RepoURL:   req.RepoURL,
		RepoName:  ingest.RepoName(req.RepoURL),
		CreatedAt: time.Now().UTC(),
		Analysis:  analysis,
	}
	if err := s.store.SaveRun(run); err != nil {
		slog.Warn("analyze.save_failed", "run", id, "err", err)
	}
	s.cache.Add(id, run)

	respond(w, http.StatusOK, analyzeResponse{
		Message:     "repository cloned and analyzed successfully",
		ID:          id,
		RepoURL:     req.RepoURL,
		RepoName:    run.RepoName,
		ScanResults: scan,
		Analysis:    analysis,
	})
}

type structureRequest struct {
	RepoPath string `json:"repo_path"`
}

// handleStructure analyzes a local path without cloning or persisting.
func (s *Server) handleStructure(w http.ResponseWriter, r *http.Request) {
	var req structureRequest
	if !decode(w, r, &req) {
		return
	}
	if req.RepoPath == "" {
		respondError(w, http.StatusBadRequest, "repo_path is required")
		return
	}
	if _, err := os.Stat(req.RepoPath); err != nil {
		respondError(w, http.StatusNotFound, "repository path not found: "+req.RepoPath)
		return
	}

	analysis, err := engine.Analyze(r.Context(), req.RepoPath)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to analyze repository")
		return
	}
	respond(w, http.StatusOK, map[string]any{
		"status":     "success",
		"repository": req.RepoPath,
		"analysis":   analysis,
	})
}

func (s *Server) handleStructureByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "runID")
	run, err := s.loadRun(id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load analysis")
		return
	}
	if run == nil {
		respondError(w, http.StatusNotFound, "repository not found: "+id)
		return
	}
	respond(w, http.StatusOK, map[string]any{
		"status":        "success",
		"repository_id": id,
		"analysis":      run.Analysis,
	})
}

type searchRequest struct {
	Query string `json:"query"`
	RunID string `json:"run_id"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !decode(w, r, &req) {
		return
	}
	run, err := s.loadRun(req.RunID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load analysis")
		return
	}
	if run == nil {
		respondError(w, http.StatusNotFound, "repository not found: "+req.RunID)
		return
	}
	respond(w, http.StatusOK, search.Run(req.Query, run.Analysis.Files))
}

type chatRequest struct {
	Question string         `json:"question"`
	RunID    string         `json:"run_id"`
	History  []chat.Message `json:"chat_history"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !decode(w, r, &req) {
		return
	}
	if s.chat == nil {
		respondError(w, http.StatusInternalServerError, "chat feature is not configured: API key is missing")
		return
	}
	run, err := s.loadRun(req.RunID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load analysis")
		return
	}
	if run == nil {
		respondError(w, http.StatusNotFound, "repository not found: "+req.RunID)
		return
	}

	answer, err := s.chat.Ask(r.Context(), req.Question, run.RepoURL, run.Analysis, req.History)
	if err != nil {
		var chatErr *chat.Error
		if errors.As(err, &chatErr) {
			respondError(w, chatErr.Status, chatErr.Message)
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to get AI response")
		return
	}
	respond(w, http.StatusOK, map[string]string{"response": answer})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	infos, err := s.store.ListRuns()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	if infos == nil {
		infos = []store.RunInfo{}
	}
	respond(w, http.StatusOK, map[string]any{"runs": infos})
}

func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "runID")
	if err := s.store.DeleteRun(id); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete run")
		return
	}
	s.cache.Remove(id)
	respond(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}
