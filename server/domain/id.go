package domain

import "github.com/google/uuid"

// SessionID は1クライアント接続を識別するIDです。
type SessionID [16]byte

func NewSessionID() SessionID {
	return SessionID(uuid.New())
}

// SessionIDFromBytes はワイヤ上の16バイトからSessionIDを復元する
func SessionIDFromBytes(b [16]byte) SessionID {
	return SessionID(b)
}

func (s SessionID) Bytes() [16]byte {
	return [16]byte(s)
}

func (s SessionID) String() string {
	return uuid.UUID(s).String()
}

func (s SessionID) IsEmpty() bool {
	return s == SessionID{}
}

// RoomID はゲームルームを識別するIDです。
type RoomID [16]byte

func NewRoomID() RoomID {
	return RoomID(uuid.New())
}

func (r RoomID) Bytes() [16]byte {
	return [16]byte(r)
}

func (r RoomID) String() string {
	return uuid.UUID(r).String()
}

func (r RoomID) IsEmpty() bool {
	return r == RoomID{}
}
