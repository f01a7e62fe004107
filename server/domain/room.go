package domain

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

var ErrRoomBusy = errors.New("room control channel is full")

type roomSendKind uint8

const (
	roomSendBroadcast roomSendKind = iota
	roomSendTo
)

type roomSend struct {
	kind      roomSendKind
	sessionID SessionID
	data      []byte
}

// Room は1ゲームセッション分のシミュレーションを駆動する構造体です。
// tickゴルーチン1本の上で受信処理・シミュレーション・送信をすべて直列に実行します。
type Room struct {
	ID       RoomID
	sessions map[SessionID]struct{}

	pubsub      PubSub
	application Application // 外部からアプリケーションロジックを注入できる

	sendCh chan roomSend

	tickInterval time.Duration
}

func NewRoom(id RoomID, pubsub PubSub, application Application) *Room {
	return &Room{
		ID:           id,
		sessions:     make(map[SessionID]struct{}),
		pubsub:       pubsub,
		application:  application,
		sendCh:       make(chan roomSend, 1024),
		tickInterval: time.Second / 60,
	}
}

func (r *Room) Broadcast(ctx context.Context, data []byte) {
	for sessionID := range r.sessions {
		r.pubsub.Publish(ctx, SessionTopic(sessionID), Message{Data: data})
	}
}

func (r *Room) SendTo(ctx context.Context, sessionID SessionID, data []byte) {
	r.pubsub.Publish(ctx, SessionTopic(sessionID), Message{Data: data})
}

func (r *Room) EnqueueBroadcast(ctx context.Context, data []byte) error {
	return r.enqueueSend(ctx, roomSend{kind: roomSendBroadcast, data: data})
}

func (r *Room) EnqueueSendTo(ctx context.Context, sessionID SessionID, data []byte) error {
	return r.enqueueSend(ctx, roomSend{kind: roomSendTo, sessionID: sessionID, data: data})
}

func (r *Room) enqueueSend(ctx context.Context, msg roomSend) error {
	select {
	case <-ctx.Done():
		return nil
	case r.sendCh <- msg:
		return nil
	default:
		return ErrRoomBusy
	}
}

func (r *Room) Run(ctx context.Context) error {
	if r.application == nil {
		return errors.New("room requires an application")
	}

	// room宛のメッセージを購読
	msgCh := r.pubsub.Subscribe(RoomTopic(r.ID))
	defer r.pubsub.Unsubscribe(RoomTopic(r.ID), msgCh)

	ticker := time.NewTicker(r.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			// 受信メッセージを処理 join/leave制御はRoomが、それ以外はApplicationが担当する
		RECEIVE_LOOP:
			for {
				select {
				case msg := <-msgCh:
					r.handleMessage(ctx, msg)
				default:
					break RECEIVE_LOOP
				}
			}
			// 送信するデータがあれば送信する このデータは１フレーム前のデータになる
		SEND_LOOP:
			for {
				select {
				case msg := <-r.sendCh:
					r.handleSendMessage(ctx, msg)
				default:
					break SEND_LOOP
				}
			}
			// ApplicationのTick()を呼び出し、返されたフレームをブロードキャスト
			for _, frame := range r.application.Tick(ctx) {
				r.Broadcast(ctx, frame)
			}
		}
	}
}

// handleMessage は受信メッセージを振り分けます。
// join/leaveはRoomのセッション集合を更新してからApplicationに通知します。
func (r *Room) handleMessage(ctx context.Context, msg Message) {
	if len(msg.Data) < HeaderSize+PayloadHeaderSize {
		slog.WarnContext(ctx, "room: message too short", "len", len(msg.Data))
		return
	}
	payloadHeader, err := ParsePayloadHeader(msg.Data[HeaderSize:])
	if err != nil {
		slog.WarnContext(ctx, "room: failed to parse payload header", "err", err)
		return
	}

	if payloadHeader.DataType == DataTypeControl {
		switch ControlSubType(payloadHeader.SubType) {
		case ControlSubTypeJoin:
			r.sessions[msg.SessionID] = struct{}{}
			if err := r.application.HandleJoin(ctx, msg.SessionID); err != nil {
				slog.WarnContext(ctx, "room: join rejected", "sessionID", msg.SessionID, "err", err)
			}
			return
		case ControlSubTypeLeave:
			delete(r.sessions, msg.SessionID)
			if err := r.application.HandleLeave(ctx, msg.SessionID); err != nil {
				slog.WarnContext(ctx, "room: leave failed", "sessionID", msg.SessionID, "err", err)
			}
			return
		}
	}

	if err := r.application.HandleMessage(ctx, msg.SessionID, msg.Data); err != nil {
		slog.WarnContext(ctx, "room: handle message failed", "err", err)
	}
}

func (r *Room) handleSendMessage(ctx context.Context, msg roomSend) {
	switch msg.kind {
	case roomSendBroadcast:
		r.Broadcast(ctx, msg.data)
	case roomSendTo:
		r.SendTo(ctx, msg.sessionID, msg.data)
	default:
	}
}
