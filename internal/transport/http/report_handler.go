package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "pidimsmart/internal/errors"
	"pidimsmart/internal/exporter"
	"pidimsmart/internal/middleware"
	"pidimsmart/pkg/contracts/domain"
)

// ReportHandler serves the report views and their exports
type ReportHandler struct {
	service      ReportServiceInterface
	validator    *middleware.QueryValidator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewReportHandler creates a new report handler
func NewReportHandler(service ReportServiceInterface, validator *middleware.QueryValidator, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ReportHandler {
	return &ReportHandler{
		service:      service,
		validator:    validator,
		logger:       logger.With(slog.String("component", "report_handler")),
		errorHandler: errorHandler,
	}
}

// ReportRoutes returns the routes mounted at /reports
func (h *ReportHandler) ReportRoutes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Get("/fixed", h.GetFixedReports)
	return r
}

// ExportRoutes returns the routes mounted at /export
func (h *ReportHandler) ExportRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/excel", h.ExportExcel)
	r.Get("/csv", h.ExportCSV)
	return r
}

// DisbursementRoutes returns the routes mounted at /branch-disbursement
func (h *ReportHandler) DisbursementRoutes() chi.Router {
	r := chi.NewRouter()
	r.With(render.SetContentType(render.ContentTypeJSON)).Get("/", h.GetDisbursement)
	r.Get("/export/excel", h.ExportDisbursementExcel)
	return r
}

// GetFixedReports handles GET /reports/fixed
func (h *ReportHandler) GetFixedReports(w http.ResponseWriter, r *http.Request) {
	fixed, err := h.service.FixedReports(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.DebugContext(r.Context(), "fixed reports served",
		slog.String("request_id", middleware.GetReqID(r.Context())))
	render.JSON(w, r, fixed.Response())
}

// ExportExcel handles GET /export/excel
func (h *ReportHandler) ExportExcel(w http.ResponseWriter, r *http.Request) {
	body, err := h.service.ExportFixedExcel(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.attachment(w, r, exporter.ContentTypeXLSX, exporter.FixedReportsFilename, body)
}

// ExportCSV handles GET /export/csv?report=loan|poultry|grants
func (h *ReportHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	q := middleware.CSVExportQuery{Report: r.URL.Query().Get("report")}
	if err := h.validator.Validate(q); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	name, _ := domain.ParseReportName(q.Report)

	body, err := h.service.ExportCSV(r.Context(), name)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.attachment(w, r, exporter.ContentTypeCSV, exporter.CSVFilename(name), body)
}

// GetDisbursement handles GET /branch-disbursement?month=YYYY-MM&branch=
func (h *ReportHandler) GetDisbursement(w http.ResponseWriter, r *http.Request) {
	q, ok := h.disbursementQuery(w, r)
	if !ok {
		return
	}

	rep, err := h.service.Disbursement(r.Context(), q.Month, q.Branch)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, rep)
}

// ExportDisbursementExcel handles GET /branch-disbursement/export/excel
func (h *ReportHandler) ExportDisbursementExcel(w http.ResponseWriter, r *http.Request) {
	q, ok := h.disbursementQuery(w, r)
	if !ok {
		return
	}

	body, err := h.service.ExportDisbursementExcel(r.Context(), q.Month, q.Branch)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.attachment(w, r, exporter.ContentTypeXLSX, exporter.DisbursementFilename, body)
}

func (h *ReportHandler) disbursementQuery(w http.ResponseWriter, r *http.Request) (middleware.DisbursementQuery, bool) {
	values := r.URL.Query()
	q := middleware.DisbursementQuery{
		Month:  values.Get("month"),
		Branch: values.Get("branch"),
	}
	if err := h.validator.Validate(q); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return q, false
	}
	return q, true
}

func (h *ReportHandler) attachment(w http.ResponseWriter, r *http.Request, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(body); err != nil {
		h.logger.WarnContext(r.Context(), "export download interrupted",
			slog.String("filename", filename),
			slog.String("error", err.Error()))
		return
	}
	h.logger.InfoContext(r.Context(), "export served",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("filename", filename),
		slog.Int("bytes", len(body)))
}
