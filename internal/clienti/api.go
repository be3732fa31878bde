package clienti

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lameridiana/gestionale/internal/platform/httpx"
	"github.com/lameridiana/gestionale/internal/shared"
)

// apiCliente is the JSON projection of a registry entry.
type apiCliente struct {
	ID             int64  `json:"id"`
	RagioneSociale string `json:"ragione_sociale"`
	PartitaIVA     string `json:"partita_iva"`
	CodiceFiscale  string `json:"codice_fiscale,omitempty"`
	Email          string `json:"email,omitempty"`
	Telefono       string `json:"telefono,omitempty"`
	Indirizzo      string `json:"indirizzo,omitempty"`
	Citta          string `json:"citta,omitempty"`
	CAP            string `json:"cap,omitempty"`
	Provincia      string `json:"provincia,omitempty"`
	Note           string `json:"note,omitempty"`
}

type apiListResponse struct {
	Clienti []apiCliente      `json:"clienti"`
	Paging  shared.Pagination `json:"paging"`
}

type apiCreateRequest struct {
	RagioneSociale string `json:"ragione_sociale"`
	PartitaIVA     string `json:"partita_iva"`
	CodiceFiscale  string `json:"codice_fiscale"`
	Email          string `json:"email"`
	Telefono       string `json:"telefono"`
	Indirizzo      string `json:"indirizzo"`
	Citta          string `json:"citta"`
	CAP            string `json:"cap"`
	Provincia      string `json:"provincia"`
	Note           string `json:"note"`
}

// MountAPIRoutes registers the JSON endpoints used by integrations. The
// routes sit behind the session middleware like the HTML pages.
func (h *Handler) MountAPIRoutes(r chi.Router) {
	r.Get("/", h.apiList)
	r.Get("/{id}", h.apiGet)
	r.Post("/", h.apiCreate)
}

func (h *Handler) apiList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	list, paging, err := h.service.List(r.Context(), ListRequest{Search: q.Get("q"), Page: page})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	out := apiListResponse{Clienti: make([]apiCliente, len(list)), Paging: paging}
	for i, c := range list {
		out.Clienti[i] = toAPICliente(c)
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) apiGet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "invalid id")
		return
	}
	c, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toAPICliente(*c))
}

func (h *Handler) apiCreate(w http.ResponseWriter, r *http.Request) {
	var req apiCreateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if req.RagioneSociale == "" {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "ragione_sociale required")
		return
	}
	sess := shared.SessionFromContext(r.Context())
	created, err := h.service.Create(r.Context(), sess, Input{
		RagioneSociale: req.RagioneSociale,
		PartitaIVA:     req.PartitaIVA,
		CodiceFiscale:  req.CodiceFiscale,
		Email:          req.Email,
		Telefono:       req.Telefono,
		Indirizzo:      req.Indirizzo,
		Citta:          req.Citta,
		CAP:            req.CAP,
		Provincia:      req.Provincia,
		Note:           req.Note,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toAPICliente(*created))
}

func toAPICliente(c Cliente) apiCliente {
	return apiCliente{
		ID:             c.ID,
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
