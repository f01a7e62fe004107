package application

import "math"

// Attractor はボディを引き寄せて吸収するブラックホール本体です。
// セッション開始時に1つ生成され、リスタートで作り直されます。
type Attractor struct {
	Mass      float64
	Position  Vec3
	Target    Vec3
	hasTarget bool

	absorbedCount uint32
}

func NewAttractor(mass float64) *Attractor {
	return &Attractor{Mass: mass}
}

// Radius は質量の立方根から導出します。毎回計算し、別途保持しません。
func (a *Attractor) Radius() float64 {
	return math.Cbrt(a.Mass) * AttractorRadiusScale
}

// EventHorizonRadius は近距離レジームの境界半径です。
func (a *Attractor) EventHorizonRadius() float64 {
	return a.Radius() * EventHorizonScale
}

// AbsorbedCount はこのセッションで吸収したボディ数を返します。
func (a *Attractor) AbsorbedCount() uint32 {
	return a.absorbedCount
}

// SetTarget は移動目標を設定します。フィールド境界にクランプしてから保存します。
func (a *Attractor) SetTarget(x, y float64, bounds Bounds) {
	a.Target = Vec3{
		X: bounds.ClampX(x),
		Y: bounds.ClampY(y),
		Z: a.Position.Z,
	}
	a.hasTarget = true
}

// Advance は目標位置へ指数平滑で近づきます。テレポートはしません。
func (a *Attractor) Advance(dt float64) {
	if !a.hasTarget {
		return
	}
	delta := a.Target.Sub(a.Position)
	if delta.Lateral() <= TargetEpsilon {
		return
	}
	f := TargetLerpRate * dt
	if f > 1 {
		f = 1
	}
	a.Position = a.Position.Add(delta.Scale(f))
}

// Pull はボディの位置と質量から引力ベクトルを計算します。
// 距離がForceEpsilon未満の場合はゼロベクトルを返します（特異点ガード）。
// 常に有限なベクトルを返し、エラーは発生しません。
func (a *Attractor) Pull(position Vec3, mass float64) Vec3 {
	delta := a.Position.Sub(position)
	dist := delta.Length()
	if dist < ForceEpsilon {
		return Vec3{}
	}

	invSquare := GravityConstant * a.Mass * mass / (dist * dist)
	horizon := a.EventHorizonRadius()

	var magnitude float64
	if dist < horizon {
		// 地平面に近づくほど急激に強くなるブースト項を逆二乗に重ねる
		boost := 1 - (dist/horizon)*(dist/horizon)
		magnitude = invSquare * (1 + HorizonBoostGain*boost)
	} else {
		// 遠距離は逆二乗と逆一乗のブレンド。純粋な逆二乗より減衰を緩くする
		invLinear := GravityConstant * a.Mass * mass / (dist * LongRangeSoftening)
		t := (dist - FarBlendStart) / (FarBlendEnd - FarBlendStart)
		if t < 0 {
			t = 0
		} else if t > 1 {
			t = 1
		}
		magnitude = invSquare*(1-t) + invLinear*t
	}

	if floor := MinForceFloor * mass; magnitude < floor {
		magnitude = floor
	}

	force := delta.Scale(magnitude / dist)

	// 平面上では重なっているのに奥行きだけずれている場合、Z成分を増幅して
	// 画面の奥へ吸い込まれる見た目を作る（チューニング用の係数であり力学要件ではない）
	if delta.Lateral() < a.Radius()*DepthAlignFactor {
		force.Z *= DepthEmphasisGain
	}

	if !force.IsFinite() {
		return Vec3{}
	}
	return force
}

// Absorb は吸収ペイアウトを質量へ加算し、加算後の質量を返します。
// 質量は単調非減少。不正な加算量は無視します。
func (a *Attractor) Absorb(amount float64) float64 {
	if amount > 0 && !math.IsInf(amount, 0) && !math.IsNaN(amount) {
		a.Mass += amount
		a.absorbedCount++
	}
	return a.Mass
}
