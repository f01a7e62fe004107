package domain

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

var ErrRoomManagerClosed = errors.New("room manager is closed")

// RoomManager はセッションへのルーム割り当てを担当します。
type RoomManager interface {
	// GetRoom はセッションに割り当てるルームを返します。必要なら新規に作成します。
	GetRoom(ctx context.Context, sessionID SessionID) (RoomID, error)
	// Release はセッションのルーム割り当てを解除します。
	// ルームの最後のセッションが離脱した場合、ルームを停止します。
	Release(ctx context.Context, sessionID SessionID)
}

// ApplicationFactory はルームごとに独立したアプリケーションインスタンスを生成します。
type ApplicationFactory func() Application

type managedRoom struct {
	room   *Room
	cancel context.CancelFunc
}

// SessionRoomManager はセッションごとに専用ルームを作成するRoomManagerです。
// ブラックホールゲームは1人用のため、ルームとセッションは1対1に対応します。
type SessionRoomManager struct {
	mu      sync.Mutex
	pubsub  PubSub
	factory ApplicationFactory
	ctx     context.Context
	rooms   map[SessionID]*managedRoom
	closed  bool
}

func NewSessionRoomManager(ctx context.Context, pubsub PubSub, factory ApplicationFactory) *SessionRoomManager {
	return &SessionRoomManager{
		pubsub:  pubsub,
		factory: factory,
		ctx:     ctx,
		rooms:   make(map[SessionID]*managedRoom),
	}
}

func (m *SessionRoomManager) GetRoom(ctx context.Context, sessionID SessionID) (RoomID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return RoomID{}, ErrRoomManagerClosed
	}
	if mr, ok := m.rooms[sessionID]; ok {
		return mr.room.ID, nil
	}

	room := NewRoom(NewRoomID(), m.pubsub, m.factory())
	roomCtx, cancel := context.WithCancel(m.ctx)
	go func() {
		if err := room.Run(roomCtx); err != nil {
			slog.ErrorContext(roomCtx, "room manager: room stopped with error", "roomID", room.ID, "err", err)
		}
	}()

	m.rooms[sessionID] = &managedRoom{room: room, cancel: cancel}
	slog.DebugContext(ctx, "room manager: room created", "sessionID", sessionID, "roomID", room.ID)
	return room.ID, nil
}

func (m *SessionRoomManager) Release(ctx context.Context, sessionID SessionID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	mr, ok := m.rooms[sessionID]
	if !ok {
		return
	}
	mr.cancel()
	delete(m.rooms, sessionID)
	slog.DebugContext(ctx, "room manager: room released", "sessionID", sessionID, "roomID", mr.room.ID)
}

// Close は全ルームを停止します。以降のGetRoomは失敗します。
func (m *SessionRoomManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, mr := range m.rooms {
		mr.cancel()
	}
	m.rooms = make(map[SessionID]*managedRoom)
	m.closed = true
}
