package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/coder/websocket"

	"singularity/server/application"
	"singularity/server/domain"
	"singularity/utils"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := utils.GetEnvDefault("ADDR", "localhost")
	port := utils.GetEnvDefault("PORT", "9090")
	botCount := utils.GetEnvInt("BOT_COUNT", 3)

	baseURL := fmt.Sprintf("http://%s:%s", addr, port)
	serverURL := fmt.Sprintf("ws://%s:%s/ws", addr, port)
	slog.Info("starting bots", "count", botCount, "server", serverURL)

	var wg sync.WaitGroup
	for i := range botCount {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			runBot(ctx, baseURL, serverURL, id)
		}(i)
	}

	wg.Wait()
	slog.Info("all bots stopped")
}

func runBot(ctx context.Context, baseURL, serverURL string, id int) {
	logger := slog.With("botID", id)

	for {
		if ctx.Err() != nil {
			return
		}
		err := botSession(ctx, baseURL, serverURL, logger)
		if err != nil && ctx.Err() == nil {
			logger.Warn("bot session ended, reconnecting", "err", err)
			time.Sleep(2 * time.Second)
		}
	}
}

// fetchToken は /auth から接続トークンを取得します。
func fetchToken(ctx context.Context, baseURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/auth", nil)
	if err != nil {
		return "", err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("auth status %d", resp.StatusCode)
	}
	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	return body.Token, nil
}

func botSession(ctx context.Context, baseURL, serverURL string, logger *slog.Logger) error {
	token, err := fetchToken(ctx, baseURL)
	if err != nil {
		return fmt.Errorf("fetch token: %w", err)
	}

	conn, _, err := websocket.Dial(ctx, serverURL+"?token="+token, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.CloseNow()

	logger.Info("connected")

	var sessionID domain.SessionID
	var seq uint16
	controller := application.NewBotController()

	// 最新スナップショットを保持
	var attractor domain.SnapshotAttractor
	var bodies []domain.SnapshotBody
	var mu sync.Mutex

	// 受信ループ
	go func() {
		for {
			if ctx.Err() != nil {
				return
			}
			_, data, err := conn.Read(ctx)
			if err != nil {
				if ctx.Err() == nil {
					logger.Warn("read error", "err", err)
				}
				return
			}

			if len(data) < domain.HeaderSize+domain.PayloadHeaderSize {
				continue
			}

			payloadHeader, err := domain.ParsePayloadHeader(data[domain.HeaderSize:])
			if err != nil {
				continue
			}
			payload := data[domain.HeaderSize+domain.PayloadHeaderSize:]

			switch payloadHeader.DataType {
			case domain.DataTypeControl:
				switch domain.ControlSubType(payloadHeader.SubType) {
				case domain.ControlSubTypeAssign:
					header, err := domain.ParseHeader(data)
					if err != nil {
						continue
					}
					sessionID = domain.SessionIDFromBytes(header.SessionID)
					logger.Info("session assigned", "sessionID", sessionID)

					// RoomIDゼロ埋めで自動割り当てのJoinを送る
					joinMsg := domain.EncodeMessage(sessionID, seq, domain.DataTypeControl,
						uint8(domain.ControlSubTypeJoin), make([]byte, domain.JoinPayloadSize))
					seq++
					if err := conn.Write(ctx, websocket.MessageBinary, joinMsg); err != nil {
						logger.Warn("failed to send join", "err", err)
						return
					}
					logger.Info("joined room")

				case domain.ControlSubTypePing:
					pongMsg := domain.EncodeMessage(sessionID, seq, domain.DataTypeControl,
						uint8(domain.ControlSubTypePong), nil)
					seq++
					if err := conn.Write(ctx, websocket.MessageBinary, pongMsg); err != nil {
						logger.Warn("failed to send pong", "err", err)
						return
					}

				case domain.ControlSubTypeError:
					logger.Warn("server reported error")
				}

			case domain.DataTypeSnapshot:
				snapshot, err := domain.ParseSnapshotPayload(payload)
				if err != nil {
					continue
				}
				mu.Lock()
				attractor = snapshot.Attractor
				bodies = snapshot.Bodies
				mu.Unlock()

			case domain.DataTypeEvent:
				if domain.EventSubType(payloadHeader.SubType) == domain.EventSubTypeGameOver {
					report, err := domain.ParseGameOverPayload(payload)
					if err == nil {
						logger.Info("game over", "finalMass", report.FinalMass, "absorbed", report.AbsorbedCount)
					}
				}
			}
		}
	}()

	// 判断・送信ループ (10Hz)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "shutdown")
			return nil
		case <-ticker.C:
			if sessionID.IsEmpty() {
				continue
			}

			mu.Lock()
			x, y, ok := controller.Decide(attractor, bodies)
			mu.Unlock()
			if !ok {
				continue
			}

			payload := (&domain.PointerPayload{TargetX: x, TargetY: y}).Encode()
			msg := domain.EncodeMessage(sessionID, seq, domain.DataTypeInput,
				uint8(domain.InputSubTypePointer), payload)
			seq++
			if err := conn.Write(ctx, websocket.MessageBinary, msg); err != nil {
				return fmt.Errorf("write: %w", err)
			}
		}
	}
}
