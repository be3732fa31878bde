package app

import (
	"io/fs"
	"log/slog"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/lameridiana/gestionale/internal/audit"
	"github.com/lameridiana/gestionale/internal/auth"
	"github.com/lameridiana/gestionale/internal/clienti"
	"github.com/lameridiana/gestionale/internal/configurazioni"
	"github.com/lameridiana/gestionale/internal/observability"
	"github.com/lameridiana/gestionale/internal/session"
	"github.com/lameridiana/gestionale/internal/shared"
	"github.com/lameridiana/gestionale/internal/users"
	"github.com/lameridiana/gestionale/internal/view"
	"github.com/lameridiana/gestionale/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	Templates       *view.Engine
	Session         session.Middleware
	CSRFManager     *shared.CSRFManager
	AuthHandler     *auth.Handler
	ClientiHandler  *clienti.Handler
	UsersHandler    *users.Handler
	SettingsHandler *configurazioni.Handler
	AuditHandler    *audit.Handler
	Metrics         *observability.Metrics
}

// NewRouter constructs the chi.Router.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:      params.Logger,
		Config:      params.Config,
		Session:     params.Session,
		CSRFManager: params.CSRFManager,
	}) {
		r.Use(mw)
	}
	if params.Metrics != nil {
		r.Use(params.Metrics.Middleware)
	}
	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		renderPage(params, w, r, "pages/home.html", "Gestionale")
	})

	params.AuthHandler.MountRoutes(r)
	r.Route("/clienti", params.ClientiHandler.MountRoutes)
	r.Route("/api/clienti", params.ClientiHandler.MountAPIRoutes)
	r.Route("/users", params.UsersHandler.MountRoutes)
	r.Route("/configurazioni", params.SettingsHandler.MountRoutes)
	params.AuditHandler.MountRoutes(r)

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	return r
}

// DeniedHandler renders the access-denied page used by the route guard.
func DeniedHandler(params RouterParams) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		renderPage(params, w, r, "pages/denied.html", "Accesso negato")
	})
}

func renderPage(params RouterParams, w http.ResponseWriter, r *http.Request, page, title string) {
	sess := shared.SessionFromContext(r.Context())
	data := view.TemplateData{
		Title:       title,
		CSRFToken:   params.CSRFManager.Token(sess),
		CurrentPath: r.URL.Path,
		Session:     sess,
	}
	if err := params.Templates.Render(w, page, data); err != nil {
		params.Logger.Error("render page", slog.String("page", page), slog.Any("error", err))
	}
}

// staticCacheHandler wraps a file server with a one-hour Cache-Control
// header for static assets.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}

// Some minimal OS images ship without a mime.types table, which would
// serve the stylesheet as application/octet-stream.
func init() {
	if mime.TypeByExtension(".css") == "" {
		_ = mime.AddExtensionType(".css", "text/css; charset=utf-8")
	}
}
