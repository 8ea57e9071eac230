// Package api provides the HTTP surface of the metabolic engine.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/heys-app/metabolic-engine/internal/domain"
	"github.com/heys-app/metabolic-engine/internal/report"
	"github.com/heys-app/metabolic-engine/internal/status"
	"github.com/heys-app/metabolic-engine/internal/store"
)

// Handler holds all dependencies for the HTTP handlers.
type Handler struct {
	Engine  *status.Engine
	Reports *report.Generator
	Records *store.RecordRepo
	Foods   *store.FoodRepo
	Limiter *RateLimiter
}

// APIError is a structured error response.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// UpsertFoodRequest is the body for PUT /api/v1/food/{ref}.
type UpsertFoodRequest struct {
	Name  string           `json:"name"`
	Facts domain.FoodFacts `json:"facts"`
}

// Health handles GET /api/v1/health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetStatus handles GET /api/v1/status/{clientID}. Query parameters:
// date (YYYY-MM-DD, defaults to today) and refresh (any truthy value
// bypasses the cache).
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	clientID := mux.Vars(r)["clientID"]
	if err := h.Limiter.Allow(clientID); err != nil {
		writeError(w, err)
		return
	}

	date := domain.DateKey(r.URL.Query().Get("date"))
	refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))

	res, err := h.Engine.Status(r.Context(), clientID, date, refresh)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// GetReport handles GET /api/v1/report/{clientID}. Query parameters:
// date (window end, defaults to today) and period (week or month).
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	clientID := mux.Vars(r)["clientID"]
	if err := h.Limiter.Allow(clientID); err != nil {
		writeError(w, err)
		return
	}

	end := domain.DateKey(r.URL.Query().Get("date"))
	if end == "" {
		end = h.Engine.Today()
	}

	days := report.WeekDays
	switch r.URL.Query().Get("period") {
	case "", "week":
	case "month":
		days = report.MonthDays
	default:
		writeJSON(w, http.StatusBadRequest, APIError{Code: 400, Message: "period must be week or month"})
		return
	}

	sum, err := h.Reports.Generate(r.Context(), clientID, end, days)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// GetPhenotype handles GET /api/v1/phenotype/{clientID}.
func (h *Handler) GetPhenotype(w http.ResponseWriter, r *http.Request) {
	clientID := mux.Vars(r)["clientID"]
	if clientID == "" {
		writeError(w, domain.ErrClientIDRequired)
		return
	}

	res, err := h.Engine.Phenotype(r.Context(), clientID, domain.DateKey(r.URL.Query().Get("date")))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// GetThresholds handles GET /api/v1/thresholds/{clientID}.
func (h *Handler) GetThresholds(w http.ResponseWriter, r *http.Request) {
	clientID := mux.Vars(r)["clientID"]
	if clientID == "" {
		writeError(w, domain.ErrClientIDRequired)
		return
	}

	res, err := h.Engine.Thresholds(r.Context(), clientID, domain.DateKey(r.URL.Query().Get("date")))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// PutDay handles PUT /api/v1/day/{clientID}/{date}.
func (h *Handler) PutDay(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	clientID := vars["clientID"]
	date := domain.DateKey(vars["date"])
	if _, err := date.Time(); err != nil {
		writeError(w, domain.ErrInvalidDate)
		return
	}

	var rec domain.DayRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeJSON(w, http.StatusBadRequest, APIError{Code: 400, Message: "invalid request body"})
		return
	}
	rec.Date = date

	if err := h.Records.PutDayRecord(r.Context(), clientID, rec); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PutProfile handles PUT /api/v1/profile/{clientID}.
func (h *Handler) PutProfile(w http.ResponseWriter, r *http.Request) {
	clientID := mux.Vars(r)["clientID"]

	var p domain.Profile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, APIError{Code: 400, Message: "invalid request body"})
		return
	}

	if err := h.Records.PutProfile(r.Context(), clientID, p); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PutFood handles PUT /api/v1/food/{ref}.
func (h *Handler) PutFood(w http.ResponseWriter, r *http.Request) {
	ref := mux.Vars(r)["ref"]

	var req UpsertFoodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, APIError{Code: 400, Message: "invalid request body"})
		return
	}

	if err := h.Foods.Upsert(r.Context(), ref, req.Name, req.Facts); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	if engErr, ok := err.(*domain.EngineError); ok {
		status := http.StatusInternalServerError
		switch engErr.Code {
		case domain.ErrInvalidDate.Code, domain.ErrClientIDRequired.Code, domain.ErrWindowTooLarge.Code:
			status = http.StatusBadRequest
		case domain.ErrProfileMissing.Code, domain.ErrFoodNotFound.Code:
			status = http.StatusNotFound
		case domain.ErrRateLimitExceeded.Code:
			status = http.StatusTooManyRequests
		}
		writeJSON(w, status, APIError{Code: engErr.Code, Message: engErr.Message})
		return
	}
	writeJSON(w, http.StatusInternalServerError, APIError{Code: -1, Message: err.Error()})
}
