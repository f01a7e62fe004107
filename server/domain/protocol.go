package domain

import (
	"encoding/binary"
	"errors"
	"math"
	"time"
)

// バイトオーダー: リトルエンディアン
var byteOrder = binary.LittleEndian

const (
	HeaderSize        = 25
	PayloadHeaderSize = 2
	JoinPayloadSize   = 16
)

// Header はメッセージヘッダー (25バイト)
//
//	version    u8      (1)
//	sessionID  [16]byte (16)
//	seq        u16     (2)
//	length     u16     (2)  - ペイロード長
//	timestamp  u32     (4)
type Header struct {
	Version   uint8
	SessionID [16]byte
	Seq       uint16
	Length    uint16
	Timestamp uint32
}

// DataType はメッセージの種別
type DataType uint8

const (
	DataTypeInput    DataType = 1
	DataTypeSnapshot DataType = 2
	DataTypeEvent    DataType = 3
	DataTypeControl  DataType = 4
)

// InputSubType はinputメッセージのサブタイプ
type InputSubType uint8

const (
	// InputSubTypePointer はポインタ入力。アトラクターの目標位置を設定する。
	InputSubTypePointer InputSubType = 1
)

// EventSubType はeventメッセージのサブタイプ
type EventSubType uint8

const (
	EventSubTypeAbsorption EventSubType = 1
	EventSubTypeGameOver   EventSubType = 2
)

// ControlSubType はcontrolメッセージのサブタイプ
type ControlSubType uint8

const (
	ControlSubTypeJoin    ControlSubType = 1
	ControlSubTypeLeave   ControlSubType = 2
	ControlSubTypeKick    ControlSubType = 3
	ControlSubTypePing    ControlSubType = 4
	ControlSubTypePong    ControlSubType = 5
	ControlSubTypeError   ControlSubType = 6
	ControlSubTypeAssign  ControlSubType = 7
	ControlSubTypeStart   ControlSubType = 8
	ControlSubTypeRestart ControlSubType = 9
	ControlSubTypeEnd     ControlSubType = 10
)

// PayloadHeader はペイロードヘッダー (2バイト)
//
//	datatype  u8 (1)
//	subtype   u8 (1)
type PayloadHeader struct {
	DataType DataType
	SubType  uint8
}

var (
	ErrInvalidHeaderSize  = errors.New("invalid header size")
	ErrInvalidPayloadSize = errors.New("invalid payload size")
)

// ParseHeader はバイト列からHeaderをパースする
func ParseHeader(data []byte) (*Header, error) {
	if len(data) < HeaderSize {
		return nil, ErrInvalidHeaderSize
	}

	var sessionID [16]byte
	copy(sessionID[:], data[1:17])

	return &Header{
		Version:   data[0],
		SessionID: sessionID,
		Seq:       byteOrder.Uint16(data[17:19]),
		Length:    byteOrder.Uint16(data[19:21]),
		Timestamp: byteOrder.Uint32(data[21:25]),
	}, nil
}

// Encode はHeaderをバイト列にエンコードする
func (h *Header) Encode() []byte {
	data := make([]byte, HeaderSize)
	data[0] = h.Version
	copy(data[1:17], h.SessionID[:])
	byteOrder.PutUint16(data[17:19], h.Seq)
	byteOrder.PutUint16(data[19:21], h.Length)
	byteOrder.PutUint32(data[21:25], h.Timestamp)
	return data
}

// ParsePayloadHeader はバイト列からPayloadHeaderをパースする
func ParsePayloadHeader(data []byte) (*PayloadHeader, error) {
	if len(data) < PayloadHeaderSize {
		return nil, ErrInvalidPayloadSize
	}

	return &PayloadHeader{
		DataType: DataType(data[0]),
		SubType:  data[1],
	}, nil
}

// Encode はPayloadHeaderをバイト列にエンコードする
func (p *PayloadHeader) Encode() []byte {
	data := make([]byte, PayloadHeaderSize)
	data[0] = byte(p.DataType)
	data[1] = byte(p.SubType)
	return data
}

// Position3D は3D位置データ (12バイト)
//
//	x, y, z float32 (12)
type Position3D struct {
	X, Y, Z float32
}

const Position3DSize = 12

var ErrInvalidPosition3DData = errors.New("invalid position3d data: expected 12 bytes")

// ParsePosition3D はバイト列からPosition3Dをパースする
func ParsePosition3D(data []byte) (*Position3D, error) {
	if len(data) < Position3DSize {
		return nil, ErrInvalidPosition3DData
	}

	return &Position3D{
		X: math.Float32frombits(byteOrder.Uint32(data[0:4])),
		Y: math.Float32frombits(byteOrder.Uint32(data[4:8])),
		Z: math.Float32frombits(byteOrder.Uint32(data[8:12])),
	}, nil
}

// Encode はPosition3Dをバイト列にエンコードする
func (p *Position3D) Encode() []byte {
	buf := make([]byte, Position3DSize)
	byteOrder.PutUint32(buf[0:4], math.Float32bits(p.X))
	byteOrder.PutUint32(buf[4:8], math.Float32bits(p.Y))
	byteOrder.PutUint32(buf[8:12], math.Float32bits(p.Z))
	return buf
}

// PointerPayload はポインタ入力 (8バイト)
//
//	targetX, targetY float32 (8) - アトラクターの目標位置（フィールド座標）
type PointerPayload struct {
	TargetX, TargetY float32
}

const PointerPayloadSize = 8

var ErrInvalidPointerPayloadSize = errors.New("invalid pointer payload size")

// ParsePointerPayload はバイト列からPointerPayloadをパースする
func ParsePointerPayload(data []byte) (*PointerPayload, error) {
	if len(data) < PointerPayloadSize {
		return nil, ErrInvalidPointerPayloadSize
	}

	return &PointerPayload{
		TargetX: math.Float32frombits(byteOrder.Uint32(data[0:4])),
		TargetY: math.Float32frombits(byteOrder.Uint32(data[4:8])),
	}, nil
}

// Encode はPointerPayloadをバイト列にエンコードする
func (p *PointerPayload) Encode() []byte {
	data := make([]byte, PointerPayloadSize)
	byteOrder.PutUint32(data[0:4], math.Float32bits(p.TargetX))
	byteOrder.PutUint32(data[4:8], math.Float32bits(p.TargetY))
	return data
}

// SnapshotAttractor はスナップショット内のアトラクター状態 (20バイト)
//
//	position Position3D (12)
//	mass     float32    (4)
//	radius   float32    (4)
type SnapshotAttractor struct {
	Position Position3D
	Mass     float32
	Radius   float32
}

// SnapshotBody はスナップショット内の1天体 (19バイト)
//
//	id       u16        (2)
//	state    u8         (1)  - 状態・種別ビットマスク
//	position Position3D (12)
//	scale    float32    (4)  - 描画スケール（吸収アニメーション中は縮小）
type SnapshotBody struct {
	ID       uint16
	State    uint8
	Position Position3D
	Scale    float32
}

const (
	SnapshotAttractorSize = 20
	SnapshotBodySize      = 19
	snapshotCountSize     = 2
)

// SnapshotPayload は1tick分のフィールド状態 (可変長)
//
//	attractor SnapshotAttractor (20)
//	count     u16               (2)
//	bodies    []SnapshotBody    (19 * count)
type SnapshotPayload struct {
	Attractor SnapshotAttractor
	Bodies    []SnapshotBody
}

var ErrInvalidSnapshotSize = errors.New("invalid snapshot size")

// ParseSnapshotPayload はバイト列からSnapshotPayloadをパースする
func ParseSnapshotPayload(data []byte) (*SnapshotPayload, error) {
	minSize := SnapshotAttractorSize + snapshotCountSize
	if len(data) < minSize {
		return nil, ErrInvalidSnapshotSize
	}

	pos, err := ParsePosition3D(data[0:Position3DSize])
	if err != nil {
		return nil, err
	}
	attractor := SnapshotAttractor{
		Position: *pos,
		Mass:     math.Float32frombits(byteOrder.Uint32(data[12:16])),
		Radius:   math.Float32frombits(byteOrder.Uint32(data[16:20])),
	}

	count := int(byteOrder.Uint16(data[20:22]))
	if len(data) < minSize+count*SnapshotBodySize {
		return nil, ErrInvalidSnapshotSize
	}

	bodies := make([]SnapshotBody, 0, count)
	offset := minSize
	for i := 0; i < count; i++ {
		bodyPos, err := ParsePosition3D(data[offset+3 : offset+3+Position3DSize])
		if err != nil {
			return nil, err
		}
		bodies = append(bodies, SnapshotBody{
			ID:       byteOrder.Uint16(data[offset : offset+2]),
			State:    data[offset+2],
			Position: *bodyPos,
			Scale:    math.Float32frombits(byteOrder.Uint32(data[offset+15 : offset+19])),
		})
		offset += SnapshotBodySize
	}

	return &SnapshotPayload{
		Attractor: attractor,
		Bodies:    bodies,
	}, nil
}

// Encode はSnapshotPayloadをバイト列にエンコードする
func (s *SnapshotPayload) Encode() []byte {
	size := SnapshotAttractorSize + snapshotCountSize + len(s.Bodies)*SnapshotBodySize
	data := make([]byte, size)

	copy(data[0:Position3DSize], s.Attractor.Position.Encode())
	byteOrder.PutUint32(data[12:16], math.Float32bits(s.Attractor.Mass))
	byteOrder.PutUint32(data[16:20], math.Float32bits(s.Attractor.Radius))
	byteOrder.PutUint16(data[20:22], uint16(len(s.Bodies)))

	offset := SnapshotAttractorSize + snapshotCountSize
	for _, b := range s.Bodies {
		byteOrder.PutUint16(data[offset:offset+2], b.ID)
		data[offset+2] = b.State
		copy(data[offset+3:offset+3+Position3DSize], b.Position.Encode())
		byteOrder.PutUint32(data[offset+15:offset+19], math.Float32bits(b.Scale))
		offset += SnapshotBodySize
	}

	return data
}

// AbsorptionEventPayload は吸収完了イベント (9バイト)
//
//	kind          u8      (1) - 吸収された天体の種別ビット
//	bodyMass      float32 (4)
//	attractorMass float32 (4) - 吸収後のアトラクター質量
type AbsorptionEventPayload struct {
	Kind          uint8
	BodyMass      float32
	AttractorMass float32
}

const AbsorptionEventPayloadSize = 9

var ErrInvalidAbsorptionEventSize = errors.New("invalid absorption event size")

// ParseAbsorptionEventPayload はバイト列からAbsorptionEventPayloadをパースする
func ParseAbsorptionEventPayload(data []byte) (*AbsorptionEventPayload, error) {
	if len(data) < AbsorptionEventPayloadSize {
		return nil, ErrInvalidAbsorptionEventSize
	}

	return &AbsorptionEventPayload{
		Kind:          data[0],
		BodyMass:      math.Float32frombits(byteOrder.Uint32(data[1:5])),
		AttractorMass: math.Float32frombits(byteOrder.Uint32(data[5:9])),
	}, nil
}

// Encode はAbsorptionEventPayloadをバイト列にエンコードする
func (a *AbsorptionEventPayload) Encode() []byte {
	data := make([]byte, AbsorptionEventPayloadSize)
	data[0] = a.Kind
	byteOrder.PutUint32(data[1:5], math.Float32bits(a.BodyMass))
	byteOrder.PutUint32(data[5:9], math.Float32bits(a.AttractorMass))
	return data
}

// GameOverPayload はセッション終了レポート (8バイト)
//
//	finalMass     float32 (4) - 最終アトラクター質量
//	absorbedCount u32     (4) - 吸収した天体の総数
type GameOverPayload struct {
	FinalMass     float32
	AbsorbedCount uint32
}

const GameOverPayloadSize = 8

var ErrInvalidGameOverSize = errors.New("invalid game over payload size")

// ParseGameOverPayload はバイト列からGameOverPayloadをパースする
func ParseGameOverPayload(data []byte) (*GameOverPayload, error) {
	if len(data) < GameOverPayloadSize {
		return nil, ErrInvalidGameOverSize
	}

	return &GameOverPayload{
		FinalMass:     math.Float32frombits(byteOrder.Uint32(data[0:4])),
		AbsorbedCount: byteOrder.Uint32(data[4:8]),
	}, nil
}

// Encode はGameOverPayloadをバイト列にエンコードする
func (g *GameOverPayload) Encode() []byte {
	data := make([]byte, GameOverPayloadSize)
	byteOrder.PutUint32(data[0:4], math.Float32bits(g.FinalMass))
	byteOrder.PutUint32(data[4:8], g.AbsorbedCount)
	return data
}

// JoinPayload はルーム参加メッセージのペイロード (16バイト)
//
//	roomID  [16]byte  - ルームID (UUID)。空の場合はRoomManagerが割り当てる。
type JoinPayload struct {
	RoomID RoomID
}

var ErrInvalidJoinPayloadSize = errors.New("invalid join payload size")

// ParseJoinPayload はバイト列からJoinPayloadをパースする
func ParseJoinPayload(data []byte) (*JoinPayload, error) {
	if len(data) < JoinPayloadSize {
		return nil, ErrInvalidJoinPayloadSize
	}

	var roomID RoomID
	copy(roomID[:], data[:JoinPayloadSize])

	return &JoinPayload{
		RoomID: roomID,
	}, nil
}

// Encode はJoinPayloadをバイト列にエンコードする
func (j *JoinPayload) Encode() []byte {
	return j.RoomID[:]
}

// EncodeMessage はヘッダー・ペイロードヘッダー・ペイロードを連結した完全なメッセージを生成する
func EncodeMessage(sessionID SessionID, seq uint16, dataType DataType, subType uint8, payload []byte) []byte {
	header := Header{
		Version:   1,
		SessionID: sessionID.Bytes(),
		Seq:       seq,
		Length:    uint16(PayloadHeaderSize + len(payload)),
		Timestamp: uint32(time.Now().UnixMilli() & 0xFFFFFFFF),
	}
	payloadHeader := PayloadHeader{
		DataType: dataType,
		SubType:  subType,
	}

	data := make([]byte, 0, HeaderSize+PayloadHeaderSize+len(payload))
	data = append(data, header.Encode()...)
	data = append(data, payloadHeader.Encode()...)
	data = append(data, payload...)
	return data
}

// EncodeAssignMessage はセッションID通知メッセージをエンコードする
// クライアントに自分のセッションIDを通知するために使用
func EncodeAssignMessage(sessionID SessionID) []byte {
	return EncodeMessage(sessionID, 0, DataTypeControl, uint8(ControlSubTypeAssign), nil)
}

// EncodeLeaveMessage はルーム離脱メッセージをエンコードする
// 異常切断時にclose()からRoom離脱を通知するために使用
func EncodeLeaveMessage(sessionID SessionID) []byte {
	return EncodeMessage(sessionID, 0, DataTypeControl, uint8(ControlSubTypeLeave), nil)
}

// EncodePingMessage はPingメッセージをエンコードする
// クライアントに死活確認のpingを送信するために使用
func EncodePingMessage(sessionID SessionID) []byte {
	return EncodeMessage(sessionID, 0, DataTypeControl, uint8(ControlSubTypePing), nil)
}

// EncodeSnapshotMessage はスナップショット配信メッセージをエンコードする
func EncodeSnapshotMessage(sessionID SessionID, seq uint16, snapshot *SnapshotPayload) []byte {
	return EncodeMessage(sessionID, seq, DataTypeSnapshot, 0, snapshot.Encode())
}

// EncodeAbsorptionEventMessage は吸収完了イベントメッセージをエンコードする
func EncodeAbsorptionEventMessage(sessionID SessionID, seq uint16, event *AbsorptionEventPayload) []byte {
	return EncodeMessage(sessionID, seq, DataTypeEvent, uint8(EventSubTypeAbsorption), event.Encode())
}

// EncodeGameOverMessage はセッション終了レポートメッセージをエンコードする
func EncodeGameOverMessage(sessionID SessionID, seq uint16, report *GameOverPayload) []byte {
	return EncodeMessage(sessionID, seq, DataTypeEvent, uint8(EventSubTypeGameOver), report.Encode())
}
