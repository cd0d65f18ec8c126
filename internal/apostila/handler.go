package apostila

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"aprovado/internal/app/apiresp"
	"aprovado/internal/auth"
)

type Handler struct {
	svc listingService
}

type listingService interface {
	List(ctx context.Context, concursoID string) ([]Apostila, error)
	Create(ctx context.Context, in CreateInput) (*Apostila, error)
}

type createRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	URL         string  `json:"url"`
	ConcursoID  *string `json:"concurso_id"`
}

func NewHandler(svc listingService) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.CurrentUser(r.Context()); !ok {
		apiresp.WriteError(w, r, http.StatusUnauthorized, "não autorizado")
		return
	}

	concursoID := r.URL.Query().Get("concurso_id")
	apostilas, err := h.svc.List(r.Context(), concursoID)
	if err != nil {
		apiresp.WriteError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	apiresp.WriteJSON(w, r, http.StatusOK, map[string]any{"apostilas": apostilas})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.CurrentUser(r.Context()); !ok {
		apiresp.WriteError(w, r, http.StatusUnauthorized, "não autorizado")
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiresp.WriteError(w, r, http.StatusBadRequest, "corpo da requisição inválido")
		return
	}

	apostila, err := h.svc.Create(r.Context(), CreateInput{
		Title:       req.Title,
		Description: req.Description,
		URL:         req.URL,
		ConcursoID:  req.ConcursoID,
	})
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			apiresp.WriteError(w, r, http.StatusBadRequest, "Título e URL são obrigatórios")
			return
		}
		apiresp.WriteError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	apiresp.WriteJSON(w, r, http.StatusOK, map[string]any{
		"message":  "Apostila criada com sucesso",
		"apostila": apostila,
	})
}
