package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"singularity/internal/telemetry"
	"singularity/server"
	"singularity/server/application"
	"singularity/server/domain"
	"singularity/server/handler"
	"singularity/utils"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := utils.GetEnvDefault("ADDR", "localhost")
	port := utils.GetEnvDefault("PORT", "9090")
	authSecret := utils.GetEnvDefault("AUTH_SECRET", "")
	seed := int64(utils.GetEnvInt("GAME_SEED", 0))

	shutdownTracing, err := telemetry.Setup(ctx, "singularity")
	if err != nil {
		log.Fatalf("telemetry setup error: %v", err)
	}

	pubsub := domain.NewSimplePubSub()

	scores, err := application.NewScoreKeeper(logger)
	if err != nil {
		log.Fatalf("score keeper error: %v", err)
	}
	if err := scores.Start(ctx); err != nil {
		log.Fatalf("score keeper start error: %v", err)
	}

	// セッションごとに独立したシミュレーションを持つルームを払い出す
	roomManager := domain.NewSessionRoomManager(ctx, pubsub, func() domain.Application {
		app, err := application.NewSingularityApplication(application.ApplicationConfig{
			Seed:   seed,
			Scores: scores,
			Logger: logger,
		})
		if err != nil {
			slog.ErrorContext(ctx, "failed to create application", "err", err)
			return nil
		}
		return app
	})

	verifier := handler.NewTokenVerifier(authSecret)
	if !verifier.Enabled() {
		slog.WarnContext(ctx, "AUTH_SECRET is empty, accepting unauthenticated connections")
	}

	s := server.NewServer(fmt.Sprintf("%s:%s", addr, port), server.Route(pubsub, roomManager, verifier, scores))

	go func() {
		if err := s.Serve(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	}()
	slog.InfoContext(ctx, "server listening", "addr", s.Addr())

	<-ctx.Done()
	slog.InfoContext(ctx, "shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(ctx, "graceful shutdown failed", "error", err)
		if err := s.Close(); err != nil {
			slog.ErrorContext(ctx, "forced close failed", "error", err)
		}
	}

	roomManager.Close()
	if err := scores.Stop(5 * time.Second); err != nil {
		slog.ErrorContext(ctx, "score keeper stop failed", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		slog.ErrorContext(ctx, "tracing shutdown failed", "error", err)
	}
	slog.InfoContext(ctx, "server shutdown complete")
}
