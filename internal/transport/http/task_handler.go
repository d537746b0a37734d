package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "pidimsmart/internal/errors"
	"pidimsmart/internal/middleware"
	"pidimsmart/internal/source"
)

// TaskHandler serves maintenance tasks
type TaskHandler struct {
	service      ReportServiceInterface
	apiKeys      []string
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// RefreshResponse is the body of a successful refresh
type RefreshResponse struct {
	Refreshed bool         `json:"refreshed"`
	Cache     source.Stats `json:"cache"`
}

// NewTaskHandler creates a task handler. A non-empty apiKeys list requires
// callers to present one of the keys.
func NewTaskHandler(service ReportServiceInterface, apiKeys []string, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *TaskHandler {
	return &TaskHandler{
		service:      service,
		apiKeys:      apiKeys,
		logger:       logger.With(slog.String("component", "task_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the routes mounted at /tasks
func (h *TaskHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Use(middleware.APIKeyAuth(h.logger, h.apiKeys))
	r.Use(middleware.AuditLog(h.logger))
	r.Post("/refresh", h.Refresh)
	return r
}

// Refresh handles POST /tasks/refresh
func (h *TaskHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Refresh(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "dataset refresh completed",
		slog.String("client", middleware.APIClient(r.Context())),
		slog.Int64("fetches", stats.Fetches))
	render.JSON(w, r, RefreshResponse{Refreshed: true, Cache: stats})
}
