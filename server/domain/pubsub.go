package domain

import (
	"context"
	"log/slog"
	"sync"
)

type Topic string

func SessionTopic(sessionID SessionID) Topic {
	return Topic("session:" + sessionID.String())
}

func RoomTopic(roomID RoomID) Topic {
	return Topic("room:" + roomID.String())
}

// Message はpubsub経由で配送されるメッセージです。
type Message struct {
	SessionID SessionID
	Data      []byte
}

// PubSub はトピックベースのメッセージ配送境界です。
type PubSub interface {
	Publish(ctx context.Context, topic Topic, msg Message)
	Subscribe(topic Topic) chan Message
	Unsubscribe(topic Topic, ch chan Message)
}

const subscriberBufferSize = 1024

// SimplePubSub はプロセス内完結のPubSub実装です。
// Publishはブロックしません。購読者のバッファが満杯の場合メッセージは破棄されます。
type SimplePubSub struct {
	mu          sync.RWMutex
	subscribers map[Topic][]chan Message
}

func NewSimplePubSub() *SimplePubSub {
	return &SimplePubSub{
		subscribers: make(map[Topic][]chan Message),
	}
}

func (p *SimplePubSub) Publish(ctx context.Context, topic Topic, msg Message) {
	p.mu.RLock()
	subs := p.subscribers[topic]
	p.mu.RUnlock()

	for _, ch := range subs {
		select {
		case ch <- msg:
		default:
			slog.WarnContext(ctx, "pubsub: subscriber buffer full, message dropped", "topic", topic)
		}
	}
}

func (p *SimplePubSub) Subscribe(topic Topic) chan Message {
	ch := make(chan Message, subscriberBufferSize)
	p.mu.Lock()
	p.subscribers[topic] = append(p.subscribers[topic], ch)
	p.mu.Unlock()
	return ch
}

func (p *SimplePubSub) Unsubscribe(topic Topic, ch chan Message) {
	p.mu.Lock()
	defer p.mu.Unlock()
	subs := p.subscribers[topic]
	for i, sub := range subs {
		if sub == ch {
			p.subscribers[topic] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	if len(p.subscribers[topic]) == 0 {
		delete(p.subscribers, topic)
	}
}
