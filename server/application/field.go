package application

import (
	"errors"
	"math"
)

var ErrInvalidBounds = errors.New("invalid field bounds")

// Bounds はフィールドの論理範囲です。原点中心でX/Yは±半分まで。
type Bounds struct {
	Width       float64
	Height      float64
	DepthSpread float64
}

func (b Bounds) Valid() bool {
	return b.Width > 0 && b.Height > 0 && b.DepthSpread >= 0 &&
		!math.IsInf(b.Width, 0) && !math.IsInf(b.Height, 0) && !math.IsInf(b.DepthSpread, 0) &&
		!math.IsNaN(b.Width) && !math.IsNaN(b.Height) && !math.IsNaN(b.DepthSpread)
}

func (b Bounds) ClampX(x float64) float64 {
	half := b.Width / 2
	return math.Max(-half, math.Min(half, x))
}

func (b Bounds) ClampY(y float64) float64 {
	half := b.Height / 2
	return math.Max(-half, math.Min(half, y))
}

// Diagonal はフィールドの対角長です。消失判定の基準に使います。
func (b Bounds) Diagonal() float64 {
	return math.Hypot(b.Width, b.Height)
}

func DefaultBounds() Bounds {
	return Bounds{
		Width:       DefaultFieldWidth,
		Height:      DefaultFieldHeight,
		DepthSpread: DefaultDepthSpread,
	}
}

// NoParentを予約しているため最大スロット数は1つ少ない
const maxBodySlots = int(NoParent)

// Field はボディを安定インデックスで管理するアリーナです。
// スロットは削除後に再利用され、IDはスロット位置を指します。
// 参照の循環を避けるため、親子関係もIDで保持します。
type Field struct {
	bounds Bounds
	bodies []*Body
	free   []BodyID
}

func NewField(bounds Bounds) (*Field, error) {
	if !bounds.Valid() {
		return nil, ErrInvalidBounds
	}
	return &Field{bounds: bounds}, nil
}

func (f *Field) Bounds() Bounds {
	return f.bounds
}

// Spawn は空きスロットへボディを配置して返します。
// アリーナが満杯の場合はnilを返します（スポーンはベストエフォート）。
func (f *Field) Spawn(state BodyState, mass float64, position, velocity Vec3) *Body {
	if mass <= 0 {
		return nil
	}
	body := &Body{
		State:    state.Kind() | StateActive,
		Mass:     mass,
		Position: position,
		Velocity: velocity,
		Parent:   NoParent,
	}
	if n := len(f.free); n > 0 {
		id := f.free[n-1]
		f.free = f.free[:n-1]
		body.ID = id
		f.bodies[id] = body
		return body
	}
	if len(f.bodies) >= maxBodySlots {
		return nil
	}
	body.ID = BodyID(len(f.bodies))
	f.bodies = append(f.bodies, body)
	return body
}

func (f *Field) Get(id BodyID) (*Body, bool) {
	if int(id) >= len(f.bodies) || f.bodies[id] == nil {
		return nil, false
	}
	return f.bodies[id], true
}

// Remove はスロットを空けてIDを再利用可能にします。
func (f *Field) Remove(id BodyID) {
	if int(id) >= len(f.bodies) || f.bodies[id] == nil {
		return
	}
	f.bodies[id] = nil
	f.free = append(f.free, id)
}

// ForEach は生存中の全ボディをスロット順に訪問します。
// 訪問中のRemoveは安全です（スロットがnilになるだけで並びは変わらない）。
func (f *Field) ForEach(fn func(*Body)) {
	for _, b := range f.bodies {
		if b != nil {
			fn(b)
		}
	}
}

// Count はAbsorbedを除いた生存ボディ数を返します。
func (f *Field) Count() int {
	n := 0
	for _, b := range f.bodies {
		if b != nil && !b.State.IsAbsorbed() {
			n++
		}
	}
	return n
}

// Clear は全ボディと空きスロットを破棄します。リスタート用。
func (f *Field) Clear() {
	f.bodies = f.bodies[:0]
	f.free = f.free[:0]
}
