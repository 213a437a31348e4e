package ui

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"goexpect/domain/core"
	"goexpect/domain/dataset"
	"goexpect/domain/rules"
	"goexpect/domain/validation"
	"goexpect/internal/export"
	profiling "goexpect/internal/profile"
)

const previewRowLimit = 200

type validateRequest struct {
	SuiteID string             `json:"suiteId"`
	Dataset dataset.Descriptor `json:"dataset"`
	Rules   []rules.Spec       `json:"rules"`
}

type previewRequest struct {
	Dataset  dataset.Descriptor `json:"dataset"`
	RowLimit int                `json:"rowLimit,omitempty"`
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	run, err := a.service.Run(r.Context(), core.SuiteID(req.SuiteID), req.Dataset, req.Rules)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, run)
}

func (a *App) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	limit := req.RowLimit
	if limit <= 0 || limit > previewRowLimit {
		limit = previewRowLimit
	}

	preview, err := a.resolver.Preview(r.Context(), req.Dataset, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, preview)
}

func (a *App) handleSuggest(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	b, err := a.resolver.Resolve(r.Context(), req.Dataset, previewRowLimit)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	prof := profiling.Profile(b)
	suggestions, err := a.suggester.SuggestRules(r.Context(), prof)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"suggestions": suggestions})
}

func (a *App) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			limit = n
		}
	}

	runs, err := a.recorder.ListRuns(r.Context(), limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if runs == nil {
		runs = []*validation.Run{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"runs": runs})
}

func (a *App) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := a.recorder.GetRun(r.Context(), core.RunID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (a *App) handleRunReport(w http.ResponseWriter, r *http.Request) {
	run, err := a.recorder.GetRun(r.Context(), core.RunID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if r.URL.Query().Get("format") == "markdown" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Write([]byte(export.Markdown(run)))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(export.HTML(run))
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("[API] failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeDomainError maps the error taxonomy onto HTTP statuses: caller
// mistakes are 4xx, unreachable backends are 502, everything else is 500.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case core.IsRuleSetError(err), errors.Is(err, core.ErrUnsupportedDialect), errors.Is(err, core.ErrDriverUnavailable):
		writeError(w, http.StatusBadRequest, err.Error())
	case core.IsNotFoundError(err):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, core.ErrSourceUnavailable):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
