package application

import "math"

// absorptionTriggered はActiveなボディが吸収条件に入ったかを判定します。
// 平面距離テストと3D距離テストのORで構成され、どちらか片方で成立します。
// この境界条件はゲームフィール調整の結果であり、単一の距離判定に
// 単純化してはいけません。境界値ちょうどは成立扱いです。
func absorptionTriggered(a *Attractor, b *Body) bool {
	if !b.State.IsActive() {
		return false
	}

	delta := a.Position.Sub(b.Position)
	dist3 := delta.Length()
	lateral := delta.Lateral()

	base := a.Radius()
	reach := base*math.Pow(a.Mass, AbsorbGrowthExponent) + b.Radius()

	// 奥側（画面の奥にいる）ボディはパースで小さく見えるため、
	// 吸収半径を広げて公平感を出す
	depth := b.Position.Z - a.Position.Z
	if depth > 0 {
		behind := depth / DepthBehindRange
		if behind > 1 {
			behind = 1
		}
		reach *= 1 + DepthBehindBonus*behind
	}

	depthRange := base * DepthAbsorbFactor
	if depthRange > DepthAbsorbCap {
		depthRange = DepthAbsorbCap
	}

	if lateral <= reach && math.Abs(depth) <= depthRange {
		return true
	}
	return dist3 <= base*LooseAbsorbFactor
}

// easeInCubic は吸収アニメーションの進行カーブです。
// 中心に向かって加速しながら落ちていく動きになります。
func easeInCubic(p float64) float64 {
	return p * p * p
}

// animateAbsorption は吸収中のボディを1ステップ進めます。
// トリガー時の位置からアトラクターの現在位置（移動中かもしれない）へ
// 向かってイージング補間し、減衰スパイラルを重ねます。
// 完了（progress >= 1.0）でtrueを返します。タイマーの無いボディはfalseです。
func animateAbsorption(a *Attractor, b *Body, dt float64) bool {
	timer := b.Absorption
	if timer == nil {
		return false
	}

	timer.Elapsed += dt
	p := timer.Progress()
	eased := easeInCubic(p)

	pos := timer.Origin.Lerp(a.Position, eased)

	// 直線経路の周りを減衰しながら回るスパイラル。見た目だけの装飾
	angle := p * SpiralTurns * 2 * math.Pi
	r := SpiralRadius * (1 - p)
	pos.X += math.Cos(angle) * r
	pos.Y += math.Sin(angle) * r

	b.Position = pos
	timer.Scale = 1 - eased

	return p >= 1.0
}
