package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/iwvelando/strategy-compare/internal/config"
	"github.com/iwvelando/strategy-compare/internal/tradeoff"
	"github.com/iwvelando/strategy-compare/pkg/constants"
	"github.com/iwvelando/strategy-compare/pkg/notify"
	"github.com/iwvelando/strategy-compare/pkg/output"
	"go.uber.org/zap"
)

type handler struct {
	logger        *zap.Logger
	maxUploadSize int64
	version       string
	engineOpts    []tradeoff.Option
	metrics       *serverMetrics
	disableStats  bool
}

// HandlerOption configures the HTTP handler.
type HandlerOption func(*handler)

// WithEngineOptions sets the scoring options applied to JSON comparisons.
func WithEngineOptions(opts ...tradeoff.Option) HandlerOption {
	return func(h *handler) {
		h.engineOpts = append(h.engineOpts, opts...)
	}
}

// WithoutMetrics disables the /metrics endpoint.
func WithoutMetrics() HandlerOption {
	return func(h *handler) {
		h.disableStats = true
	}
}

// NewHandler constructs the HTTP handler that serves the comparison API.
func NewHandler(logger *zap.Logger, maxUploadSize int64, version string, opts ...HandlerOption) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{logger: logger, maxUploadSize: maxUploadSize, version: trimmedVersion}
	for _, opt := range opts {
		opt(h)
	}
	if !h.disableStats {
		h.metrics = newServerMetrics()
	}

	mux := http.NewServeMux()

	// Comparison of two JSON-encoded runs
	mux.HandleFunc("/api/compare", h.metrics.instrument("compare", h.handleCompare))

	// Comparison from an uploaded YAML comparison file
	mux.HandleFunc("/api/compare/upload", h.metrics.instrument("upload", h.handleUpload))

	// Summary of a precomputed delta bundle
	mux.HandleFunc("/api/summary", h.metrics.instrument("summary", h.handleSummary))

	mux.HandleFunc("/api/version", h.handleVersion)

	if h.metrics != nil {
		mux.Handle("/metrics", h.metrics.handler())
	}

	return mux
}

type strategyPayload struct {
	Name    string           `json:"name"`
	Metrics *tradeoff.Result `json:"metrics"`
}

type compareRequest struct {
	Previous strategyPayload `json:"previous"`
	Current  strategyPayload `json:"current"`
}

type summaryRequest struct {
	Metrics      *tradeoff.Metrics `json:"metrics"`
	PreviousName string            `json:"previousName"`
	CurrentName  string            `json:"currentName"`
}

type compareResponse struct {
	output.Report
	Deltas   *tradeoff.Metrics `json:"deltas"`
	Warnings []string          `json:"warnings,omitempty"`
	Duration string            `json:"duration"`
}

func (h *handler) handleCompare(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleCompare"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	var req compareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondDecodeError(w, err, op)
		return
	}

	var warnings []string
	for _, s := range []struct {
		label   string
		payload strategyPayload
	}{
		{"previous", req.Previous},
		{"current", req.Current},
	} {
		if s.payload.Metrics == nil {
			continue
		}
		if err := config.ValidateResult(s.label, *s.payload.Metrics); err != nil {
			h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
			return
		}
		warnings = append(warnings, config.ResultWarnings(s.label, *s.payload.Metrics)...)
	}

	response := h.compare(h.engineOpts, req.Previous.Name, req.Current.Name, req.Previous.Metrics, req.Current.Metrics)
	response.Warnings = warnings
	h.finish(w, response, start, op)
}

func (h *handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleUpload"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds limit of %d bytes", h.maxUploadSize), op)
			return
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to parse upload: %v", err), op)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, "missing comparison file", op)
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			h.logger.Warn("failed to close uploaded file",
				zap.String("op", op),
				zap.Error(closeErr),
			)
		}
	}()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to read comparison file: %v", err), op)
		return
	}

	cfg, err := config.LoadConfigurationFromReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	warnings := cfg.ValidateConfiguration()
	if err := cfg.Validate(); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	// Scoring settings in the uploaded file apply on top of the server's.
	fileOpts, err := cfg.EngineOptions()
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	opts := append(append([]tradeoff.Option(nil), h.engineOpts...), fileOpts...)

	previous, current := cfg.Comparison.Previous, cfg.Comparison.Current
	response := h.compare(opts, previous.Name, current.Name, previous.Results, current.Results)
	response.Warnings = warnings
	h.finish(w, response, start, op)
}

func (h *handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSummary"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	var req summaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondDecodeError(w, err, op)
		return
	}

	summary := h.engine(h.engineOpts).GenerateSummary(req.Metrics, req.PreviousName, req.CurrentName)
	h.metrics.recordComparison(summary.Assessment)
	h.writeJSON(w, http.StatusOK, summary)
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) engine(opts []tradeoff.Option) *tradeoff.Engine {
	all := append(append([]tradeoff.Option(nil), opts...), tradeoff.WithNotifier(notify.NewZapNotifier(h.logger)))
	return tradeoff.NewEngine(h.logger, all...)
}

// compare runs the engine over two runs. Either result may be nil, which
// yields the no-data summary.
func (h *handler) compare(opts []tradeoff.Option, previousName, currentName string, previous, current *tradeoff.Result) compareResponse {
	var metrics *tradeoff.Metrics
	if previous != nil && current != nil {
		metrics = tradeoff.Compare(*previous, *current)
	}

	engine := h.engine(opts)
	summary := engine.GenerateSummary(metrics, previousName, currentName)
	h.metrics.recordComparison(summary.Assessment)

	return compareResponse{
		Report: output.BuildReport(previousName, currentName, previous, current, metrics, summary, engine.Rules()),
		Deltas: metrics,
	}
}

func (h *handler) finish(w http.ResponseWriter, response compareResponse, start time.Time, op string) {
	elapsed := time.Since(start)
	response.Duration = elapsed.String()

	h.logger.Info("comparison computed",
		zap.String("op", op),
		zap.String("assessment", string(response.Summary.Assessment)),
		zap.Int("rows", len(response.Rows)),
		zap.Int("warnings", len(response.Warnings)),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, response)
}

func (h *handler) respondDecodeError(w http.ResponseWriter, err error, op string) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("request exceeds limit of %d bytes", h.maxUploadSize), op)
		return
	}
	h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("comparison request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		h.logger.Error("failed to encode JSON response",
			zap.Int("status", status),
			zap.Error(err),
		)
		status = http.StatusInternalServerError
		buf.Reset()
		_ = json.NewEncoder(&buf).Encode(map[string]string{
			"error": fmt.Sprintf("failed to encode response: %v", err),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
