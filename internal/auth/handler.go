package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/lameridiana/gestionale/internal/session"
	"github.com/lameridiana/gestionale/internal/shared"
	"github.com/lameridiana/gestionale/internal/view"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger      *slog.Logger
	service     *Service
	templates   *view.Engine
	issuer      *session.Issuer
	revocations *session.RevocationList
	csrf        *shared.CSRFManager
	secure      bool
	validator   *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, issuer *session.Issuer, revocations *session.RevocationList, csrf *shared.CSRFManager, secure bool) *Handler {
	return &Handler{
		logger:      logger,
		service:     service,
		templates:   templates,
		issuer:      issuer,
		revocations: revocations,
		csrf:        csrf,
		secure:      secure,
		validator:   validator.New(),
	}
}

// MountRoutes registers auth routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/login", h.showLogin)
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
}

type loginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type loginPageData struct {
	Form   loginForm
	Errors map[string]string
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.renderLogin(w, r, loginPageData{}, http.StatusOK)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := loginForm{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}
	fieldErrors := make(map[string]string)
	if err := h.validator.Struct(form); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fieldErr := range verrs {
				fieldErrors[fieldErr.Field()] = "campo obbligatorio"
			}
		}
		h.renderLogin(w, r, loginPageData{Form: form, Errors: fieldErrors}, http.StatusBadRequest)
		return
	}

	user, err := h.service.Authenticate(r.Context(), form.Email, form.Password)
	if err != nil {
		if errors.Is(err, shared.ErrInvalidCredentials) {
			fieldErrors["general"] = "credenziali non valide"
			h.renderLogin(w, r, loginPageData{Form: loginForm{Email: form.Email}, Errors: fieldErrors}, http.StatusUnauthorized)
			return
		}
		h.logger.Error("login", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	token, jti, err := h.issuer.Issue(user.UID, user.Email, user.EmailVerified)
	if err != nil {
		h.logger.Error("issue session token", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	session.SetCookie(w, token, h.issuer.TTL(), h.secure)
	h.logger.Info("login", slog.String("uid", user.UID), slog.String("jti", jti))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		// The cookie outlives this response in other tabs, so the jti is
		// revoked server-side until the token would have expired.
		until := time.Now().Add(h.issuer.TTL())
		if err := h.revocations.Revoke(r.Context(), sess.TokenID, until); err != nil {
			h.logger.Warn("revoke session", slog.String("jti", sess.TokenID), slog.Any("error", err))
		}
	}
	session.ClearCookie(w, h.secure)
	http.Redirect(w, r, session.LoginPath, http.StatusSeeOther)
}

func (h *Handler) renderLogin(w http.ResponseWriter, r *http.Request, data loginPageData, status int) {
	sess := shared.SessionFromContext(r.Context())
	viewData := view.TemplateData{
		Title:       "Accedi",
		CSRFToken:   h.csrf.Token(sess),
		CurrentPath: r.URL.Path,
		Session:     sess,
		Data:        data,
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	if err := h.templates.Render(w, "pages/login.html", viewData); err != nil {
		h.logger.Error("render login", slog.Any("error", err))
	}
}
