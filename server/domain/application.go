package domain

import "context"

// Application はRoomに注入されるゲームロジックの境界です。
// すべてのメソッドはRoomのtickゴルーチンからのみ呼び出されます。
type Application interface {
	// HandleJoin はセッションがルームに参加したときに呼び出されます。
	HandleJoin(ctx context.Context, sessionID SessionID) error
	// HandleLeave はセッションがルームから離脱したときに呼び出されます。
	HandleLeave(ctx context.Context, sessionID SessionID) error
	// HandleMessage は受信したデータメッセージを処理します。
	HandleMessage(ctx context.Context, sessionID SessionID, data []byte) error
	// Tick は1シミュレーションtickを進め、ブロードキャストすべきフレームを返します。
	Tick(ctx context.Context) [][]byte
}
