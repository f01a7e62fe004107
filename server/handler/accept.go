package handler

import (
	"log/slog"
	"net/http"

	"github.com/coder/websocket"

	adapterwebsocket "singularity/server/adapter/websocket"
	"singularity/server/domain"
)

type AcceptHandler struct {
	pubsub      domain.PubSub
	roomManager domain.RoomManager
	verifier    *TokenVerifier
}

func NewAcceptHandler(pubsub domain.PubSub, roomManager domain.RoomManager, verifier *TokenVerifier) *AcceptHandler {
	return &AcceptHandler{pubsub: pubsub, roomManager: roomManager, verifier: verifier}
}

func (h *AcceptHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.verifier.Enabled() {
		if err := h.verifier.Verify(r.URL.Query().Get("token")); err != nil {
			slog.WarnContext(ctx, "rejected connection", "err", err)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // 開発用: Origin チェックをスキップ
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to accept", "err", err)
		return
	}

	session := domain.NewSession()
	transport := adapterwebsocket.NewTransportFrom(conn)
	connection := domain.NewConnection(session.ID(), transport)
	endpoint, err := domain.NewSessionEndpoint(session, connection, h.pubsub, h.roomManager)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create session endpoint", "err", err)
		return
	}
	slog.DebugContext(ctx, "accepted new connection", "sessionID", session.ID())
	if err := endpoint.Run(); err != nil {
		slog.ErrorContext(ctx, "failed to run session endpoint", "err", err)
	}
}
