package performance

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"aprovado/internal/app/apiresp"
	"aprovado/internal/auth"
)

type Handler struct {
	svc aggregatorService
}

type aggregatorService interface {
	CalculateUserPerformance(ctx context.Context, userID string) Stats
	RecordSimuladoCompletion(ctx context.Context, userID, simuladoID string, score float64, timeTakenMinutes int, answers []Answer) Outcome
	RecordQuestaoCompletion(ctx context.Context, userID, questoesSemanaID string, score float64, answers []Answer) Outcome
	ExportXLSX(ctx context.Context, userID string) ([]byte, error)
}

type simuladoCompletionRequest struct {
	SimuladoID       string   `json:"simulado_id"`
	Score            float64  `json:"score"`
	TimeTakenMinutes int      `json:"time_taken_minutes"`
	Answers          []Answer `json:"answers"`
}

type questaoCompletionRequest struct {
	QuestoesSemanaID string   `json:"questoes_semanais_id"`
	Score            float64  `json:"score"`
	Answers          []Answer `json:"answers"`
}

func NewHandler(svc aggregatorService) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r.Context())
	if !ok {
		apiresp.WriteError(w, r, http.StatusUnauthorized, "não autorizado")
		return
	}

	stats := h.svc.CalculateUserPerformance(r.Context(), user.ID)
	apiresp.WriteJSON(w, r, http.StatusOK, map[string]any{"performance": stats})
}

func (h *Handler) CompleteSimulado(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r.Context())
	if !ok {
		apiresp.WriteError(w, r, http.StatusUnauthorized, "não autorizado")
		return
	}

	var req simuladoCompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiresp.WriteError(w, r, http.StatusBadRequest, "corpo da requisição inválido")
		return
	}
	if strings.TrimSpace(req.SimuladoID) == "" {
		apiresp.WriteError(w, r, http.StatusBadRequest, "simulado_id é obrigatório")
		return
	}
	if req.Score < 0 || req.Score > 100 {
		apiresp.WriteError(w, r, http.StatusBadRequest, "score deve estar entre 0 e 100")
		return
	}

	outcome := h.svc.RecordSimuladoCompletion(r.Context(), user.ID, req.SimuladoID, req.Score, req.TimeTakenMinutes, req.Answers)
	apiresp.WriteJSON(w, r, http.StatusOK, map[string]any{"outcome": outcome})
}

func (h *Handler) CompleteQuestao(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r.Context())
	if !ok {
		apiresp.WriteError(w, r, http.StatusUnauthorized, "não autorizado")
		return
	}

	var req questaoCompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiresp.WriteError(w, r, http.StatusBadRequest, "corpo da requisição inválido")
		return
	}
	if strings.TrimSpace(req.QuestoesSemanaID) == "" {
		apiresp.WriteError(w, r, http.StatusBadRequest, "questoes_semanais_id é obrigatório")
		return
	}
	if req.Score < 0 || req.Score > 100 {
		apiresp.WriteError(w, r, http.StatusBadRequest, "score deve estar entre 0 e 100")
		return
	}

	outcome := h.svc.RecordQuestaoCompletion(r.Context(), user.ID, req.QuestoesSemanaID, req.Score, req.Answers)
	apiresp.WriteJSON(w, r, http.StatusOK, map[string]any{"outcome": outcome})
}

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r.Context())
	if !ok {
		apiresp.WriteError(w, r, http.StatusUnauthorized, "não autorizado")
		return
	}

	body, err := h.svc.ExportXLSX(r.Context(), user.ID)
	if err != nil {
		apiresp.WriteError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="desempenho.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
