package application

import "math"

// BodyID はフィールド内のボディを指す安定インデックスです。
// スロットが再利用されてもIDの意味はその時点の占有者を指します。
type BodyID uint16

// NoParent は親を持たない自由運動ボディを表します。
const NoParent BodyID = 0xFFFF

// BodyState は下位4bitに状態、上位4bitに種別を持つビットマスクです。
type BodyState uint8

const (
	StateActive    BodyState = 0x01
	StateAbsorbing BodyState = 0x02
	StateAbsorbed  BodyState = 0x04

	KindStar   BodyState = 0x10
	KindPlanet BodyState = 0x20
	KindDebris BodyState = 0x30

	stateMask BodyState = 0x0F
	kindMask  BodyState = 0xF0
)

func (s BodyState) Status() BodyState {
	return s & stateMask
}

func (s BodyState) Kind() BodyState {
	return s & kindMask
}

func (s BodyState) IsActive() bool {
	return s&stateMask == StateActive
}

func (s BodyState) IsAbsorbing() bool {
	return s&stateMask == StateAbsorbing
}

func (s BodyState) IsAbsorbed() bool {
	return s&stateMask == StateAbsorbed
}

func (s BodyState) String() string {
	var kind, status string
	switch s.Kind() {
	case KindStar:
		kind = "star"
	case KindPlanet:
		kind = "planet"
	case KindDebris:
		kind = "debris"
	default:
		kind = "unknown"
	}
	switch s.Status() {
	case StateActive:
		status = "active"
	case StateAbsorbing:
		status = "absorbing"
	case StateAbsorbed:
		status = "absorbed"
	default:
		status = "unknown"
	}
	return kind + ":" + status
}

// PayoutFactor は吸収時にアトラクター質量へ加算される倍率を返します。
func (s BodyState) PayoutFactor() float64 {
	switch s.Kind() {
	case KindStar:
		return PayoutStar
	case KindPlanet:
		return PayoutPlanet
	default:
		return PayoutDebris
	}
}

// radiusWeight は種別ごとの見た目の大きさの重みです。
func (s BodyState) radiusWeight() float64 {
	switch s.Kind() {
	case KindStar:
		return 1.0
	case KindPlanet:
		return 0.8
	default:
		return 0.5
	}
}

// AbsorptionTimer は吸収アニメーションの進行状態です。
// コールバックではなく毎ティックのポーリングで駆動されます。
type AbsorptionTimer struct {
	Elapsed  float64
	Duration float64
	Origin   Vec3 // トリガー時点の位置
	Scale    float64
}

// Progress は 0..1 にクランプした進行度を返します。
func (t *AbsorptionTimer) Progress() float64 {
	if t.Duration <= 0 {
		return 1.0
	}
	p := t.Elapsed / t.Duration
	if p > 1.0 {
		return 1.0
	}
	return p
}

// Body はシミュレーション対象1体の状態です。
type Body struct {
	ID       BodyID
	State    BodyState
	Mass     float64
	Position Vec3
	Velocity Vec3

	// 軌道追従用（惑星が恒星を回るケース）
	Parent      BodyID
	OrbitRadius float64
	OrbitSpeed  float64 // [rad/s]
	OrbitPhase  float64

	Absorption *AbsorptionTimer
}

// Radius は質量から導出した半径を返します。常に再計算し、保持しません。
func (b *Body) Radius() float64 {
	return math.Cbrt(b.Mass) * b.State.radiusWeight()
}

// RenderScale は描画側へ渡すスケールです。吸収中は進行に合わせて縮みます。
func (b *Body) RenderScale() float64 {
	if b.State.IsAbsorbing() && b.Absorption != nil {
		return b.Absorption.Scale
	}
	if b.State.IsAbsorbed() {
		return 0
	}
	return 1.0
}

// beginAbsorbing はActiveなボディを吸収状態へ遷移させます。
// すでにAbsorbing/Absorbedの場合は何もしません（二重発火ガード）。
func (b *Body) beginAbsorbing() bool {
	if !b.State.IsActive() {
		return false
	}
	b.State = b.State.Kind() | StateAbsorbing
	b.Parent = NoParent
	b.Absorption = &AbsorptionTimer{
		Duration: AbsorbDuration,
		Origin:   b.Position,
		Scale:    1.0,
	}
	return true
}

// markAbsorbed は吸収完了の終端状態へ遷移させます。逆方向には戻れません。
func (b *Body) markAbsorbed() bool {
	if !b.State.IsAbsorbing() {
		return false
	}
	b.State = b.State.Kind() | StateAbsorbed
	return true
}
