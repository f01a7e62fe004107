package server

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"singularity/server/application"
	"singularity/server/domain"
	"singularity/server/handler"
)

// Route は全ハンドラーを束ねたルーターを返します。
// HTTPハンドラーはotelhttpでトレースされます（エクスポーター無効時はほぼ無コスト）。
func Route(pubsub domain.PubSub, roomManager domain.RoomManager, verifier *handler.TokenVerifier, scores *application.ScoreKeeper) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/ws", handler.NewAcceptHandler(pubsub, roomManager, verifier))
	mux.Handle("/auth", handler.NewAuthHandler(verifier))
	mux.Handle("/score", handler.NewScoreHandler(scores))
	mux.Handle("/healthz", handler.NewHealthHandler())
	return otelhttp.NewHandler(mux, "singularity")
}
