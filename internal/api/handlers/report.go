// Package handlers contains the HTTP endpoint implementations.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/sgkim/tradelens/internal/engine"
	"github.com/sgkim/tradelens/internal/ingest"
	"github.com/sgkim/tradelens/internal/report"
	"github.com/sgkim/tradelens/pkg/config"
	"github.com/sgkim/tradelens/pkg/logger"
	"github.com/sgkim/tradelens/pkg/redis"
)

// ReportHandler handles report submission and retrieval.
type ReportHandler struct {
	analyzer *engine.Analyzer
	repo     *report.Repository
	cache    *redis.Cache
	config   *config.Config
	logger   *logger.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(
	analyzer *engine.Analyzer,
	repo *report.Repository,
	cache *redis.Cache,
	cfg *config.Config,
	log *logger.Logger,
) *ReportHandler {
	return &ReportHandler{
		analyzer: analyzer,
		repo:     repo,
		cache:    cache,
		config:   cfg,
		logger:   log,
	}
}

// CreateRequest is the report submission body.
type CreateRequest struct {
	CSV      string `json:"csv"`
	FileName string `json:"fileName"`
}

// Create computes and stores a report from raw CSV text
// POST /api/reports
func (h *ReportHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, h.config.Report.MaxUploadBytes)

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.CSV == "" {
		respondError(w, http.StatusBadRequest, "CSV content is required")
		return
	}
	if req.FileName == "" {
		req.FileName = "upload.csv"
	}

	trades, err := ingest.Parse(req.CSV)
	if err != nil {
		if errors.Is(err, ingest.ErrEmptyCSV) {
			respondError(w, http.StatusBadRequest, "CSV file is empty or invalid")
			return
		}
		h.logger.WithError(err).Error("Failed to parse CSV")
		respondError(w, http.StatusBadRequest, "Failed to parse CSV")
		return
	}

	rep := h.analyzer.Analyze(trades, req.FileName)

	id, err := h.repo.Save(ctx, rep)
	if err != nil {
		h.logger.WithError(err).Error("Failed to save report")
		respondError(w, http.StatusInternalServerError, "Failed to save report")
		return
	}

	h.logger.WithFields(map[string]interface{}{
		"id":     id,
		"file":   req.FileName,
		"trades": len(trades),
	}).Info("Report created")

	respondJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// Get returns a stored report by id
// GET /api/reports/{id}
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]

	var cached report.Report
	if hit, err := h.cache.Get(ctx, id, &cached); err == nil && hit {
		respondJSON(w, http.StatusOK, &cached)
		return
	}

	rep, err := h.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, report.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Report not found")
			return
		}
		h.logger.WithError(err).Error("Failed to get report")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve report")
		return
	}

	if err := h.cache.Set(ctx, id, rep, h.config.Report.CacheTTL); err != nil {
		h.logger.WithError(err).Warn("Failed to cache report")
	}

	respondJSON(w, http.StatusOK, rep)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
