package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	apierrors "chezblos/internal/errors"
	"chezblos/internal/export"
	"chezblos/internal/infrastructure"
	"chezblos/pkg/contracts/domain"
)

// ExportHandler handles export HTTP requests with RFC 7807 compliance.
// Every successful response is an attachment download; the artifact is
// streamed to the client and never written to disk on the server.
type ExportHandler struct {
	service      ExportServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validate     *validator.Validate
	maxBodyBytes int64
}

// NewExportHandler creates a new export handler
func NewExportHandler(service ExportServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler, maxBodyBytes int64) *ExportHandler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = 16 << 20
	}
	return &ExportHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "export_handler")),
		errorHandler: errorHandler,
		validate:     validator.New(),
		maxBodyBytes: maxBodyBytes,
	}
}

// Routes returns the export routes with proper Chi patterns
func (h *ExportHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/orders", h.ExportOrders)
	r.Post("/orders/stats", h.ExportOrderStats)
	r.Post("/staff", h.ExportStaff)
	r.Post("/staff/stats", h.ExportStaffStats)
	r.Post("/stock", h.ExportStock)
	r.Post("/stock/stats", h.ExportStockStats)

	return r
}

// exportRequest is the common envelope of every export endpoint. Records is
// deliberately NOT validated as required here: an absent collection is a
// caller precondition the engine reports itself, and an empty collection is
// a valid header-only export.
type exportRequest struct {
	Format       string `json:"format" validate:"omitempty,oneof=excel pdf"`
	Filename     string `json:"filename" validate:"omitempty,max=128,excludesall=/\\"`
	IncludeStats bool   `json:"include_stats"`
}

type orderExportRequest struct {
	exportRequest
	Records []domain.OrderRecord `json:"records"`
}

type staffExportRequest struct {
	exportRequest
	Records []domain.StaffRecord `json:"records"`
}

type stockExportRequest struct {
	exportRequest
	Records []domain.StockRecord `json:"records"`
}

func (req *exportRequest) options() export.Options {
	return export.Options{
		Format:       export.Format(req.Format),
		Filename:     req.Filename,
		IncludeStats: req.IncludeStats,
	}
}

// ExportOrders handles POST /api/exports/orders
func (h *ExportHandler) ExportOrders(w http.ResponseWriter, r *http.Request) {
	var req orderExportRequest
	if !h.decode(w, r, &req, &req.exportRequest) {
		return
	}
	artifact, err := h.service.ExportOrders(r.Context(), req.Records, req.options())
	h.respond(w, r, artifact, err)
}

// ExportOrderStats handles POST /api/exports/orders/stats
func (h *ExportHandler) ExportOrderStats(w http.ResponseWriter, r *http.Request) {
	var req orderExportRequest
	if !h.decode(w, r, &req, &req.exportRequest) {
		return
	}
	artifact, err := h.service.ExportOrderStats(r.Context(), req.Records, req.options())
	h.respond(w, r, artifact, err)
}

// ExportStaff handles POST /api/exports/staff
func (h *ExportHandler) ExportStaff(w http.ResponseWriter, r *http.Request) {
	var req staffExportRequest
	if !h.decode(w, r, &req, &req.exportRequest) {
		return
	}
	artifact, err := h.service.ExportStaff(r.Context(), req.Records, req.options())
	h.respond(w, r, artifact, err)
}

// ExportStaffStats handles POST /api/exports/staff/stats
func (h *ExportHandler) ExportStaffStats(w http.ResponseWriter, r *http.Request) {
	var req staffExportRequest
	if !h.decode(w, r, &req, &req.exportRequest) {
		return
	}
	artifact, err := h.service.ExportStaffStats(r.Context(), req.Records, req.options())
	h.respond(w, r, artifact, err)
}

// ExportStock handles POST /api/exports/stock
func (h *ExportHandler) ExportStock(w http.ResponseWriter, r *http.Request) {
	var req stockExportRequest
	if !h.decode(w, r, &req, &req.exportRequest) {
		return
	}
	artifact, err := h.service.ExportStock(r.Context(), req.Records, req.options())
	h.respond(w, r, artifact, err)
}

// ExportStockStats handles POST /api/exports/stock/stats
func (h *ExportHandler) ExportStockStats(w http.ResponseWriter, r *http.Request) {
	var req stockExportRequest
	if !h.decode(w, r, &req, &req.exportRequest) {
		return
	}
	artifact, err := h.service.ExportStockStats(r.Context(), req.Records, req.options())
	h.respond(w, r, artifact, err)
}

// decode reads and validates the request body. Returns false when a problem
// response has already been written.
func (h *ExportHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}, envelope *exportRequest) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return false
	}

	if err := h.validate.Struct(envelope); err != nil {
		h.errorHandler.HandleError(w, r, h.validationError(err))
		return false
	}

	return true
}

// validationError converts validator errors into an APIError with field details
func (h *ExportHandler) validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apierrors.InvalidRequestWithError(err)
	}

	details := make([]apierrors.ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, apierrors.ValidationError{
			Field:   strings.ToLower(fe.Field()),
			Message: fmt.Sprintf("failed %s validation", fe.Tag()),
		})
	}
	return apierrors.NewWithDetails(http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed", details)
}

// respond streams the artifact as an attachment, or renders the error
func (h *ExportHandler) respond(w http.ResponseWriter, r *http.Request, artifact *export.Artifact, err error) {
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "serving export download",
		slog.String("request_id", infrastructure.GetTraceID(r.Context())),
		slog.String("filename", artifact.Filename),
		slog.Int("bytes", len(artifact.Content)),
	)

	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": artifact.Filename})
	w.Header().Set("Content-Type", artifact.MIME)
	w.Header().Set("Content-Disposition", disposition)
	w.Header().Set("Content-Length", strconv.Itoa(len(artifact.Content)))
	w.WriteHeader(http.StatusOK)
	w.Write(artifact.Content)
}
