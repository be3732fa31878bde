package clienti

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/lameridiana/gestionale/internal/shared"
	"github.com/lameridiana/gestionale/internal/view"
)

func newTestHandler(t *testing.T, repo Repository) *Handler {
	t.Helper()
	templates, err := view.NewEngine()
	require.NoError(t, err)
	svc := NewService(repo, nil)
	return NewHandler(slog.Default(), svc, templates, shared.NewCSRFManager("segreto"))
}

func serve(t *testing.T, h *Handler, r *http.Request, sess *shared.Session) *httptest.ResponseRecorder {
	t.Helper()
	router := chi.NewRouter()
	router.Route("/clienti", h.MountRoutes)
	if sess != nil {
		r = r.WithContext(shared.ContextWithSession(r.Context(), sess))
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, r)
	return rec
}

func TestShowListRendersClients(t *testing.T) {
	repo := newStubRepo()
	_, err := repo.Create(context.Background(), Cliente{RagioneSociale: "Rossi SRL", PartitaIVA: "01234567890"}, nil)
	require.NoError(t, err)
	h := newTestHandler(t, repo)

	rec := serve(t, h, httptest.NewRequest(http.MethodGet, "/clienti", nil), operatoreSession())
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Rossi SRL")
}

func TestShowListHidesDeleteForOperatore(t *testing.T) {
	repo := newStubRepo()
	_, err := repo.Create(context.Background(), Cliente{RagioneSociale: "Rossi SRL"}, nil)
	require.NoError(t, err)
	h := newTestHandler(t, repo)

	asOperatore := serve(t, h, httptest.NewRequest(http.MethodGet, "/clienti", nil), operatoreSession())
	require.NotContains(t, asOperatore.Body.String(), "/delete")

	asAdmin := serve(t, h, httptest.NewRequest(http.MethodGet, "/clienti", nil), adminSession())
	require.Contains(t, asAdmin.Body.String(), "/delete")
}

func TestHandleCreateValidationError(t *testing.T) {
	h := newTestHandler(t, newStubRepo())

	form := strings.NewReader("ragione_sociale=&email=non-valida")
	req := httptest.NewRequest(http.MethodPost, "/clienti", form)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := serve(t, h, req, operatoreSession())
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "valore non valido")
}

func TestHandleCreateRedirects(t *testing.T) {
	repo := newStubRepo()
	h := newTestHandler(t, repo)

	form := strings.NewReader("ragione_sociale=Bianchi+SNC&partita_iva=01234567890")
	req := httptest.NewRequest(http.MethodPost, "/clienti", form)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := serve(t, h, req, operatoreSession())
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Len(t, repo.byID, 1)
}

func TestHandleDeleteForbiddenForOperatore(t *testing.T) {
	repo := newStubRepo()
	id, err := repo.Create(context.Background(), Cliente{RagioneSociale: "Rossi SRL"}, nil)
	require.NoError(t, err)
	h := newTestHandler(t, repo)

	req := httptest.NewRequest(http.MethodPost, "/clienti/1/delete", nil)
	rec := serve(t, h, req, operatoreSession())
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Contains(t, repo.byID, id)
}

func TestShowEditUnknownClient(t *testing.T) {
	h := newTestHandler(t, newStubRepo())
	rec := serve(t, h, httptest.NewRequest(http.MethodGet, "/clienti/99", nil), operatoreSession())
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPIListReturnsJSON(t *testing.T) {
	repo := newStubRepo()
	_, err := repo.Create(context.Background(), Cliente{RagioneSociale: "Rossi SRL", PartitaIVA: "01234567890"}, nil)
	require.NoError(t, err)
	h := newTestHandler(t, repo)

	router := chi.NewRouter()
	router.Route("/api/clienti", h.MountAPIRoutes)
	req := httptest.NewRequest(http.MethodGet, "/api/clienti", nil)
	req = req.WithContext(shared.ContextWithSession(req.Context(), operatoreSession()))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Body.String(), `"ragione_sociale":"Rossi SRL"`)
}
