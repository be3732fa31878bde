package clienti

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/lameridiana/gestionale/internal/rbac"
	"github.com/lameridiana/gestionale/internal/shared"
	"github.com/lameridiana/gestionale/internal/view"
)

// Handler wires HTTP endpoints for the clients registry.
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

// MountRoutes registers the registry routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.showList)
	r.Get("/new", h.showCreate)
	r.Post("/", h.handleCreate)
	r.Get("/{id}", h.showEdit)
	r.Post("/{id}", h.handleUpdate)
	r.Post("/{id}/delete", h.handleDelete)
}

type clienteForm struct {
	RagioneSociale string `validate:"required,min=2"`
	PartitaIVA     string `validate:"omitempty,len=11,numeric"`
	CodiceFiscale  string `validate:"omitempty,max=16"`
	Email          string `validate:"omitempty,email"`
	Telefono       string
	Indirizzo      string
	Citta          string
	CAP            string `validate:"omitempty,len=5,numeric"`
	Provincia      string `validate:"omitempty,len=2"`
	Note           string
}

type listRow struct {
	ID             int64
	RagioneSociale string
	PartitaIVA     string
	Email          string
	Citta          string
	CanDelete      bool
}

type listPageData struct {
	Clienti  []listRow
	Query    string
	Paging   shared.Pagination
	PrevPage int
	NextPage int
}

type formPageData struct {
	Form   clienteForm
	Errors map[string]string
	IsNew  bool
	Action string
}

func (h *Handler) showList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	list, paging, err := h.service.List(r.Context(), ListRequest{Search: q.Get("q"), Page: page})
	if err != nil {
		h.logger.Error("list clienti", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	sess := shared.SessionFromContext(r.Context())
	canDelete := sess != nil && rbac.HasPermission(sess.Roles, rbac.CanDeleteClienti)
	rows := make([]listRow, len(list))
	for i, c := range list {
		rows[i] = listRow{
			ID:             c.ID,
			RagioneSociale: c.RagioneSociale,
			PartitaIVA:     c.PartitaIVA,
			Email:          c.Email,
			Citta:          c.Citta,
			CanDelete:      canDelete,
		}
	}
	data := listPageData{
		Clienti:  rows,
		Query:    q.Get("q"),
		Paging:   paging,
		PrevPage: paging.Page - 1,
		NextPage: paging.Page + 1,
	}
	h.render(w, r, "pages/clienti_list.html", "Clienti", data)
}

func (h *Handler) showCreate(w http.ResponseWriter, r *http.Request) {
	data := formPageData{IsNew: true, Action: "/clienti"}
	h.render(w, r, "pages/clienti_form.html", "Nuovo cliente", data)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	form, fieldErrors, ok := h.parseForm(w, r)
	if !ok {
		return
	}
	if len(fieldErrors) == 0 {
		sess := shared.SessionFromContext(r.Context())
		created, err := h.service.Create(r.Context(), sess, form.toInput())
		switch {
		case err == nil:
			http.Redirect(w, r, "/clienti/"+strconv.FormatInt(created.ID, 10), http.StatusSeeOther)
			return
		case errors.Is(err, shared.ErrDuplicate):
			fieldErrors["PartitaIVA"] = "partita IVA già presente"
		default:
			h.logger.Error("create cliente", slog.Any("error", err))
			fieldErrors["general"] = "errore interno, riprova"
		}
	}
	data := formPageData{Form: form, Errors: fieldErrors, IsNew: true, Action: "/clienti"}
	w.WriteHeader(http.StatusBadRequest)
	h.render(w, r, "pages/clienti_form.html", "Nuovo cliente", data)
}

func (h *Handler) showEdit(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	c, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondLookupError(w, r, err)
		return
	}
	data := formPageData{
		Form:   formFromCliente(c),
		Action: "/clienti/" + strconv.FormatInt(id, 10),
	}
	h.render(w, r, "pages/clienti_form.html", c.RagioneSociale, data)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	form, fieldErrors, ok := h.parseForm(w, r)
	if !ok {
		return
	}
	action := "/clienti/" + strconv.FormatInt(id, 10)
	if len(fieldErrors) == 0 {
		sess := shared.SessionFromContext(r.Context())
		_, err := h.service.Update(r.Context(), sess, id, form.toInput())
		switch {
		case err == nil:
			http.Redirect(w, r, "/clienti", http.StatusSeeOther)
			return
		case errors.Is(err, shared.ErrNotFound):
			http.NotFound(w, r)
			return
		case errors.Is(err, shared.ErrDuplicate):
			fieldErrors["PartitaIVA"] = "partita IVA già presente"
		default:
			h.logger.Error("update cliente", slog.Any("error", err))
			fieldErrors["general"] = "errore interno, riprova"
		}
	}
	data := formPageData{Form: form, Errors: fieldErrors, Action: action}
	w.WriteHeader(http.StatusBadRequest)
	h.render(w, r, "pages/clienti_form.html", form.RagioneSociale, data)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	sess := shared.SessionFromContext(r.Context())
	if err := h.service.Delete(r.Context(), sess, id); err != nil {
		h.respondLookupError(w, r, err)
		return
	}
	http.Redirect(w, r, "/clienti", http.StatusSeeOther)
}

func (h *Handler) parseForm(w http.ResponseWriter, r *http.Request) (clienteForm, map[string]string, bool) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return clienteForm{}, nil, false
	}
	form := clienteForm{
		RagioneSociale: r.PostFormValue("ragione_sociale"),
		PartitaIVA:     r.PostFormValue("partita_iva"),
		CodiceFiscale:  r.PostFormValue("codice_fiscale"),
		Email:          r.PostFormValue("email"),
		Telefono:       r.PostFormValue("telefono"),
		Indirizzo:      r.PostFormValue("indirizzo"),
		Citta:          r.PostFormValue("citta"),
		CAP:            r.PostFormValue("cap"),
		Provincia:      r.PostFormValue("provincia"),
		Note:           r.PostFormValue("note"),
	}
	fieldErrors := make(map[string]string)
	if err := h.validator.Struct(form); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fieldErr := range verrs {
				fieldErrors[fieldErr.Field()] = "valore non valido"
			}
		}
	}
	return form, fieldErrors, true
}

func (h *Handler) respondLookupError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		http.NotFound(w, r)
	case errors.Is(err, shared.ErrForbidden):
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
	default:
		h.logger.Error("clienti handler", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
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
		h.logger.Error("render clienti page", slog.String("page", page), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (f clienteForm) toInput() Input {
	return Input{
		RagioneSociale: f.RagioneSociale,
		PartitaIVA:     f.PartitaIVA,
		CodiceFiscale:  f.CodiceFiscale,
		Email:          f.Email,
		Telefono:       f.Telefono,
		Indirizzo:      f.Indirizzo,
		Citta:          f.Citta,
		CAP:            f.CAP,
		Provincia:      f.Provincia,
		Note:           f.Note,
	}
}

func formFromCliente(c *Cliente) clienteForm {
	return clienteForm{
		RagioneSociale: c.RagioneSociale,
		PartitaIVA:     c.PartitaIVA,
		CodiceFiscale:  c.CodiceFiscale,
		Email:          c.Email,
		Telefono:       c.Telefono,
		Indirizzo:      c.Indirizzo,
		Citta:          c.Citta,
		CAP:            c.CAP,
		Provincia:      c.Provincia,
		Note:           c.Note,
	}
}
