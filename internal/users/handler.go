package users

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/lameridiana/gestionale/internal/rbac"
	"github.com/lameridiana/gestionale/internal/shared"
	"github.com/lameridiana/gestionale/internal/view"
)

// Handler wires HTTP endpoints for user management.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	csrf      *shared.CSRFManager
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		templates: templates,
		csrf:      csrf,
		validator: validator.New(),
	}
}

// MountRoutes registers user management routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.showList)
	r.Get("/new", h.showCreate)
	r.Post("/", h.handleCreate)
	r.Get("/{uid}", h.showEdit)
	r.Post("/{uid}", h.handleUpdate)
	r.Post("/{uid}/toggle", h.handleToggle)
}

type userForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"omitempty,min=8"`
	Ruolo    string `validate:"required"`
}

type roleOption struct {
	Value    string
	Selected bool
}

type formPageData struct {
	Form   userForm
	Errors map[string]string
	IsNew  bool
	Action string
	Roles  []roleOption
}

func (h *Handler) showList(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list users", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.render(w, r, "pages/users_list.html", "Utenti", map[string]any{"Users": list})
}

func (h *Handler) showCreate(w http.ResponseWriter, r *http.Request) {
	if !h.requireEdit(w, r) {
		return
	}
	data := formPageData{
		IsNew:  true,
		Action: "/users",
		Roles:  roleOptions(string(rbac.RoleOperatore)),
	}
	h.render(w, r, "pages/users_form.html", "Nuovo utente", data)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if !h.requireEdit(w, r) {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := userForm{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
		Ruolo:    r.PostFormValue("ruolo"),
	}
	fieldErrors := h.validate(form)
	if form.Password == "" {
		fieldErrors["Password"] = "password obbligatoria"
	}
	if len(fieldErrors) == 0 {
		sess := shared.SessionFromContext(r.Context())
		_, err := h.service.Create(r.Context(), sess, CreateInput{
			Email:    form.Email,
			Password: form.Password,
			Ruolo:    []string{form.Ruolo},
		})
		switch {
		case err == nil:
			http.Redirect(w, r, "/users", http.StatusSeeOther)
			return
		case errors.Is(err, shared.ErrDuplicate):
			fieldErrors["Email"] = "email già registrata"
		case errors.Is(err, shared.ErrForbidden):
			fieldErrors["general"] = "permessi insufficienti per assegnare questo ruolo"
		default:
			h.logger.Error("create user", slog.Any("error", err))
			fieldErrors["general"] = "errore interno, riprova"
		}
	}
	data := formPageData{
		Form:   form,
		Errors: fieldErrors,
		IsNew:  true,
		Action: "/users",
		Roles:  roleOptions(form.Ruolo),
	}
	w.WriteHeader(http.StatusBadRequest)
	h.render(w, r, "pages/users_form.html", "Nuovo utente", data)
}

func (h *Handler) showEdit(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")
	user, err := h.service.Get(r.Context(), uid)
	if err != nil {
		h.respondLookupError(w, err)
		return
	}
	selected := ""
	if len(user.Ruolo) > 0 {
		selected = user.Ruolo[len(user.Ruolo)-1]
	}
	data := formPageData{
		Form:   userForm{Email: user.Email, Ruolo: selected},
		Action: "/users/" + user.UID,
		Roles:  roleOptions(selected),
	}
	h.render(w, r, "pages/users_form.html", user.Email, data)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if !h.requireEdit(w, r) {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	uid := chi.URLParam(r, "uid")
	sess := shared.SessionFromContext(r.Context())
	_, err := h.service.Update(r.Context(), sess, uid, UpdateInput{
		Ruolo: []string{r.PostFormValue("ruolo")},
	})
	if err != nil {
		h.respondLookupError(w, err)
		return
	}
	http.Redirect(w, r, "/users", http.StatusSeeOther)
}

func (h *Handler) handleToggle(w http.ResponseWriter, r *http.Request) {
	if !h.requireEdit(w, r) {
		return
	}
	uid := chi.URLParam(r, "uid")
	sess := shared.SessionFromContext(r.Context())
	user, err := h.service.Get(r.Context(), uid)
	if err != nil {
		h.respondLookupError(w, err)
		return
	}
	if _, err := h.service.SetDisabled(r.Context(), sess, uid, !user.Disabled); err != nil {
		h.respondLookupError(w, err)
		return
	}
	http.Redirect(w, r, "/users", http.StatusSeeOther)
}

// requireEdit gates mutating endpoints beyond the route table view grant.
func (h *Handler) requireEdit(w http.ResponseWriter, r *http.Request) bool {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || !rbac.HasPermission(sess.Roles, rbac.CanEditUsers) {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return false
	}
	return true
}

func (h *Handler) respondLookupError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		http.NotFound(w, nil)
	case errors.Is(err, shared.ErrForbidden):
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
	default:
		h.logger.Error("users handler", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) validate(form userForm) map[string]string {
	fieldErrors := make(map[string]string)
	if err := h.validator.Struct(form); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fieldErr := range verrs {
				fieldErrors[fieldErr.Field()] = "valore non valido"
			}
		}
	}
	return fieldErrors
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, page, title string, data any) {
	sess := shared.SessionFromContext(r.Context())
	viewData := view.TemplateData{
		Title:       title,
		CSRFToken:   h.csrf.Token(sess),
		CurrentPath: r.URL.Path,
		Session:     sess,
		Data:        data,
	}
	if err := h.templates.Render(w, page, viewData); err != nil {
		h.logger.Error("render users page", slog.String("page", page), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func roleOptions(selected string) []roleOption {
	roles := rbac.KnownRoles()
	out := make([]roleOption, len(roles))
	for i, role := range roles {
		out[i] = roleOption{Value: string(role), Selected: string(role) == selected}
	}
	return out
}
