package interfaces

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"lantern/internal/audit"
	"lantern/internal/auth"
	"lantern/internal/dataprep/application"
	dataprep "lantern/internal/dataprep/domain"
	"lantern/internal/observability/metrics"
)

// Service is the part of the preparation service the API needs.
type Service interface {
	Prepare(ctx context.Context, req application.PrepareRequest) (*dataprep.PreparedDataset, error)
	Simulate(ctx context.Context, req application.PrepareRequest) (*application.SimulationRun, error)
}

// Handler serves the simulation and export routes.
type Handler struct {
	service     Service
	auditLogger audit.Logger
	logger      *log.Logger
}

// NewHandler constructs a handler. auditLogger may be nil.
func NewHandler(service Service, auditLogger audit.Logger, logger *log.Logger) (*Handler, error) {
	if service == nil {
		return nil, errors.New("simulation handler: nil service")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{service: service, auditLogger: auditLogger, logger: logger}, nil
}

// ServeHTTP routes by path.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeDetail(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	switch r.URL.Path {
	case "/api/simulate", "/api/v1/simulate":
		h.handleSimulate(w, r)
	case "/api/v1/simulate/report.pdf":
		h.handleReport(w, r)
	case "/api/v1/datasets/export.xlsx":
		h.handleDatasetExport(w, r)
	default:
		writeDetail(w, http.StatusNotFound, "not found")
	}
}

func (h *Handler) handleSimulate(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest(w, r)
	if err != nil {
		h.respondError(w, "simulate", err)
		return
	}
	run, err := h.service.Simulate(r.Context(), req)
	if err != nil {
		h.respondError(w, "simulate", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Run-ID", run.ID)
	_ = json.NewEncoder(w).Encode(run.Result)
	h.logAudit(r, "simulation.run", run.ID, req)
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest(w, r)
	if err != nil {
		h.respondError(w, "report", err)
		return
	}
	run, err := h.service.Simulate(r.Context(), req)
	if err != nil {
		h.respondError(w, "report", err)
		return
	}
	start := time.Now()
	data, err := BuildRunPDF(run)
	if err != nil {
		metrics.ObserveExport("pdf", metrics.ResultError, time.Since(start))
		h.respondError(w, "report", err)
		return
	}
	metrics.ObserveExport("pdf", metrics.ResultSuccess, time.Since(start))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "simulation-"+run.ID+".pdf"))
	w.Header().Set("X-Run-ID", run.ID)
	_, _ = w.Write(data)
	h.logAudit(r, "simulation.report", run.ID, req)
}

func (h *Handler) handleDatasetExport(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest(w, r)
	if err != nil {
		h.respondError(w, "dataset export", err)
		return
	}
	dataset, err := h.service.Prepare(r.Context(), req)
	if err != nil {
		h.respondError(w, "dataset export", err)
		return
	}
	start := time.Now()
	data, err := BuildDatasetXLSX(dataset)
	if err != nil {
		metrics.ObserveExport("xlsx", metrics.ResultError, time.Since(start))
		h.respondError(w, "dataset export", err)
		return
	}
	metrics.ObserveExport("xlsx", metrics.ResultSuccess, time.Since(start))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "dataset-"+string(dataset.Season)+".xlsx"))
	_, _ = w.Write(data)
	h.logAudit(r, "dataset.export", string(dataset.Season), req)
}

func (h *Handler) respondError(w http.ResponseWriter, route string, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Printf("%s: error: %v", route, err)
	}
	writeDetail(w, status, err.Error())
}

func (h *Handler) logAudit(r *http.Request, action, resourceID string, req application.PrepareRequest) {
	if h.auditLogger == nil {
		return
	}
	metadata, _ := json.Marshal(requestPayload{
		CommunitySize: &req.CommunitySize,
		Season:        &req.Season,
		PVPercentage:  &req.PVPercentage,
		SDPercentage:  &req.SDPercentage,
		WithBattery:   req.WithBattery,
	})
	entry := audit.Entry{
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       action,
		ResourceType: "simulation",
		ResourceID:   resourceID,
		Metadata:     metadata,
		IP:           clientIP(r),
		UserAgent:    r.UserAgent(),
	}
	if err := h.auditLogger.Log(r.Context(), entry); err != nil {
		h.logger.Printf("audit: log error: action=%s err=%v", action, err)
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
