package audit

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lameridiana/gestionale/internal/shared"
	"github.com/lameridiana/gestionale/internal/view"
)

// Handler serves the audit trail browsing page.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	csrf      *shared.CSRFManager
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	return &Handler{logger: logger, service: service, templates: templates, csrf: csrf}
}

// MountRoutes registers the audit routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/audit-logs", h.showTimeline)
}

type timelinePageData struct {
	Filters  TimelineFilters
	Result   TimelineResult
	Actions  []Action
	PrevPage int
	NextPage int
}

func (h *Handler) showTimeline(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := TimelineFilters{
		Actor:  q.Get("actor"),
		Entity: q.Get("entity"),
		Action: q.Get("action"),
	}
	if page, err := strconv.Atoi(q.Get("page")); err == nil {
		filters.Page = page
	}
	if from, err := time.Parse("2006-01-02", q.Get("from")); err == nil {
		filters.From = from
	}
	if to, err := time.Parse("2006-01-02", q.Get("to")); err == nil {
		filters.To = to
	}

	result, err := h.service.Timeline(r.Context(), filters)
	if err != nil {
		h.logger.Error("audit timeline", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	sess := shared.SessionFromContext(r.Context())
	data := timelinePageData{
		Filters:  filters,
		Result:   result,
		Actions:  []Action{ActionCreate, ActionUpdate, ActionDelete},
		PrevPage: result.Paging.Page - 1,
		NextPage: result.Paging.Page + 1,
	}
	viewData := view.TemplateData{
		Title:       "Audit",
		CSRFToken:   h.csrf.Token(sess),
		CurrentPath: r.URL.Path,
		Session:     sess,
		Data:        data,
	}
	if err := h.templates.Render(w, "pages/audit_logs.html", viewData); err != nil {
		h.logger.Error("render audit timeline", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
