package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"singularity/server/application"
	"singularity/server/domain"
)

// ScoreHandler は /score でセッション単位のスコアを返します。
type ScoreHandler struct {
	scores *application.ScoreKeeper
}

func NewScoreHandler(scores *application.ScoreKeeper) *ScoreHandler {
	return &ScoreHandler{scores: scores}
}

type scoreResponse struct {
	SessionID     string  `json:"sessionId"`
	AbsorbedCount uint32  `json:"absorbedCount"`
	TotalPayout   float64 `json:"totalPayout"`
	LastMass      float64 `json:"lastMass"`
}

func (h *ScoreHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(r.URL.Query().Get("session"))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	sessionID := domain.SessionIDFromBytes(id)

	score, ok := h.scores.Score(sessionID)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(scoreResponse{
		SessionID:     sessionID.String(),
		AbsorbedCount: score.AbsorbedCount,
		TotalPayout:   score.TotalPayout,
		LastMass:      score.LastMass,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to write score response", "err", err)
	}
}
