package application

import "math"

// Step はシミュレーションを1ティック進めます。
// 処理順は固定です:
//  1. 前ティックで吸収完了・消失したボディの後始末
//  2. アトラクターの移動（ボディは今ティックの位置に反応する）
//  3. 各ボディのディスパッチ（Activeは積分、Absorbingはアニメーション）
//  4. 吸収判定（積分後の最新位置で評価する）
//  5. 個体数の補充
//
// 除去はティック先頭の後始末に限定し、イテレーション中のコレクション変更を
// 避けています。End後は何も変更しません。
func (g *GameSession) Step(dt float64) {
	if !g.running || g.ended || dt <= 0 {
		return
	}
	g.tick++

	g.population.Cull()

	g.attractor.Advance(dt)

	g.field.ForEach(func(b *Body) {
		switch {
		case b.State.IsActive():
			g.integrate(b, dt)
		case b.State.IsAbsorbing():
			g.stepAbsorption(b, dt)
		}
	})

	g.field.ForEach(func(b *Body) {
		if absorptionTriggered(g.attractor, b) {
			b.beginAbsorbing()
		}
	})

	g.population.Replenish(g.tick)
}

// integrate はActiveなボディ1体を速度積分で進めます。
func (g *GameSession) integrate(b *Body, dt float64) {
	// 軌道追従モード。親の現在位置周りの軌道方程式で動き、
	// 同一ステップでアトラクターの引力とは合成しない
	if b.Parent != NoParent {
		if parent, ok := g.field.Get(b.Parent); ok && parent.State.IsActive() {
			g.followOrbit(b, parent, dt)
			return
		}
		// 親を失ったら自由運動へ戻る
		b.Parent = NoParent
	}

	pull := g.attractor.Pull(b.Position, b.Mass)
	accel := pull.Scale(1 / b.Mass)

	// 完全な停止を防ぐための補正が2つ重なっている。
	// どちらも無条件に毎ステップ適用する独立した補正であり、まとめてはいけない
	if accel.Length() < MinAcceleration {
		dir := g.attractor.Position.Sub(b.Position).Normalize()
		accel = accel.Add(dir.Scale(AccelerationAssist))
	}
	if b.Velocity.Length() < SlowSpeedThreshold {
		b.Velocity = b.Velocity.Scale(SlowSpeedBoost)
	}

	// 全ボディが一直線に落ちる縮退を防ぐ確率的ナッジ
	if g.rng.Float64() < NudgeChance {
		radial := g.attractor.Position.Sub(b.Position)
		perp := Vec3{X: -radial.Y, Y: radial.X}.Normalize()
		if g.rng.Float64() < 0.5 {
			perp = perp.Scale(-1)
		}
		b.Velocity = b.Velocity.Add(perp.Scale(NudgeSpeed))
	}

	b.Velocity = b.Velocity.Add(accel.Scale(dt))
	if b.Velocity.Length() > MaxBodySpeed {
		b.Velocity = b.Velocity.Scale(SpeedDamping)
	}
	b.Position = b.Position.Add(b.Velocity.Scale(dt))
}

// followOrbit は親の周りの円軌道上でボディを進めます。
// 親を失った瞬間に自然な速度で飛び出せるよう、速度も更新しておきます。
func (g *GameSession) followOrbit(b *Body, parent *Body, dt float64) {
	b.OrbitPhase += b.OrbitSpeed * dt
	next := parent.Position.Add(Vec3{
		X: math.Cos(b.OrbitPhase) * b.OrbitRadius,
		Y: math.Sin(b.OrbitPhase) * b.OrbitRadius,
	})
	b.Velocity = next.Sub(b.Position).Scale(1 / dt)
	b.Position = next
}

// stepAbsorption は吸収アニメーションを進め、完了したらペイアウトを行います。
// markAbsorbedが成功した1回だけペイアウトするため、二重加算は起きません。
func (g *GameSession) stepAbsorption(b *Body, dt float64) {
	if b.Absorption == nil {
		// アニメーション状態が欠けたボディは回復不能ではなくスキップ対象。
		// ティック全体は止めない
		g.logger.Warn("absorbing body without timer", "bodyID", b.ID, "state", b.State.String())
		b.markAbsorbed()
		return
	}

	if !animateAbsorption(g.attractor, b, dt) {
		return
	}
	if !b.markAbsorbed() {
		return
	}

	newMass := g.attractor.Absorb(b.Mass * b.State.PayoutFactor())
	if g.onAbsorption != nil {
		g.onAbsorption(AbsorptionEvent{
			Kind:          b.State.Kind(),
			BodyMass:      b.Mass,
			AttractorMass: newMass,
		})
	}
}
