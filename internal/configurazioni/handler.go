package configurazioni

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lameridiana/gestionale/internal/rbac"
	"github.com/lameridiana/gestionale/internal/shared"
	"github.com/lameridiana/gestionale/internal/view"
)

// Handler wires HTTP endpoints for the settings page.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	csrf      *shared.CSRFManager
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	return &Handler{logger: logger, service: service, templates: templates, csrf: csrf}
}

// MountRoutes registers the settings routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.showSettings)
	r.Post("/{key}", h.handleSet)
}

type settingsPageData struct {
	Settings []Setting
	CanEdit  bool
}

func (h *Handler) showSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list configurazioni", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	sess := shared.SessionFromContext(r.Context())
	data := settingsPageData{
		Settings: settings,
		CanEdit:  sess != nil && rbac.HasPermission(sess.Roles, rbac.CanEditSettings),
	}
	viewData := view.TemplateData{
		Title:       "Configurazioni",
		CSRFToken:   h.csrf.Token(sess),
		CurrentPath: r.URL.Path,
		Session:     sess,
		Data:        data,
	}
	if err := h.templates.Render(w, "pages/configurazioni.html", viewData); err != nil {
		h.logger.Error("render configurazioni", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) handleSet(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	sess := shared.SessionFromContext(r.Context())
	key := chi.URLParam(r, "key")
	if _, err := h.service.Set(r.Context(), sess, key, r.PostFormValue("value")); err != nil {
		switch {
		case errors.Is(err, shared.ErrForbidden):
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		case errors.Is(err, shared.ErrNotFound):
			http.NotFound(w, r)
		default:
			h.logger.Error("update configurazione", slog.String("key", key), slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
		return
	}
	http.Redirect(w, r, "/configurazioni", http.StatusSeeOther)
}
