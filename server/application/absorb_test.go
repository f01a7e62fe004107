package application

import (
	"math"
	"testing"
)

func newTestSession(t *testing.T) *GameSession {
	t.Helper()
	g, err := NewGameSession(SessionConfig{Bounds: DefaultBounds(), Seed: 1})
	if err != nil {
		t.Fatalf("NewGameSession failed: %v", err)
	}
	g.running = true
	return g
}

// 吸収半径の境界値ちょうどに置いたボディはトリガーされる（境界は含む）
func TestAbsorptionTriggered_BoundaryInclusive(t *testing.T) {
	a := NewAttractor(1.0)
	body := &Body{
		State: KindDebris | StateActive,
		Mass:  0.1,
	}
	reach := a.Radius()*math.Pow(a.Mass, AbsorbGrowthExponent) + body.Radius()
	body.Position = Vec3{X: reach}

	if !absorptionTriggered(a, body) {
		t.Errorf("body at exact boundary distance %f should trigger absorption", reach)
	}
}

func TestAbsorptionTriggered_OutsideBoundary(t *testing.T) {
	a := NewAttractor(1.0)
	body := &Body{
		State:    KindDebris | StateActive,
		Mass:     0.1,
		Position: Vec3{X: 100},
	}
	if absorptionTriggered(a, body) {
		t.Errorf("distant body should not trigger absorption")
	}
}

// 平面距離がNGでも3D距離がゆるい閾値に入っていれば成立する（ORの片側）
func TestAbsorptionTriggered_LooseDistanceAlone(t *testing.T) {
	a := NewAttractor(1000.0) // radius = 12, loose = 19.2, depth range capped at 8
	body := &Body{
		State: KindDebris | StateActive,
		Mass:  0.05,
		// 深度はcapの8を超えているが3D距離はloose半径内
		Position: Vec3{Z: -15},
	}
	if !absorptionTriggered(a, body) {
		t.Errorf("body inside loose 3D radius should trigger despite depth cap")
	}
}

// 奥側のボディは手前のボディより吸収半径が広い
func TestAbsorptionTriggered_BehindBonus(t *testing.T) {
	a := NewAttractor(8.0)
	lateral := a.Radius()*math.Pow(a.Mass, AbsorbGrowthExponent) + 0.4

	behind := &Body{State: KindDebris | StateActive, Mass: 0.1, Position: Vec3{X: lateral, Z: 4}}
	front := &Body{State: KindDebris | StateActive, Mass: 0.1, Position: Vec3{X: lateral, Z: -4}}

	if !absorptionTriggered(a, behind) {
		t.Errorf("behind body should benefit from enlarged radius")
	}
	if absorptionTriggered(a, front) {
		t.Errorf("front body at same offset should not trigger")
	}
}

// Absorbing状態のボディへの再トリガーは状態を変えない
func TestBeginAbsorbing_Idempotent(t *testing.T) {
	g := newTestSession(t)
	body := g.field.Spawn(KindStar, 2.0, Vec3{X: 1}, Vec3{})

	if !body.beginAbsorbing() {
		t.Fatalf("first beginAbsorbing should succeed")
	}
	timer := body.Absorption
	timer.Elapsed = 0.5

	if body.beginAbsorbing() {
		t.Errorf("second beginAbsorbing should be a no-op")
	}
	if body.Absorption != timer || body.Absorption.Elapsed != 0.5 {
		t.Errorf("re-trigger must not reset the running timer")
	}
	if !body.State.IsAbsorbing() {
		t.Errorf("state = %s, want absorbing", body.State)
	}
}

// 恒星3体（質量2.0、ペイアウト0.03）で最終質量は1.18になる
func TestAbsorption_StarPayout(t *testing.T) {
	g := newTestSession(t)
	dt := 1.0 / TickRate

	for i := 0; i < 3; i++ {
		star := g.field.Spawn(KindStar, 2.0, Vec3{X: 5}, Vec3{})
		star.beginAbsorbing()
		for tick := 0; tick < 2*TickRate; tick++ {
			g.stepAbsorption(star, dt)
		}
		if !star.State.IsAbsorbed() {
			t.Fatalf("star %d not absorbed after animation duration", i)
		}
	}

	if got, want := g.attractor.Mass, 1.0+3*(2.0*0.03); math.Abs(got-want) > 1e-9 {
		t.Errorf("attractor mass = %f, want %f", got, want)
	}
	if g.attractor.AbsorbedCount() != 3 {
		t.Errorf("absorbed count = %d, want 3", g.attractor.AbsorbedCount())
	}
}

// 完了後にさらにstepしても二重ペイアウトは発生しない
func TestAbsorption_NoDoublePayout(t *testing.T) {
	events := 0
	g, err := NewGameSession(SessionConfig{
		Bounds:       DefaultBounds(),
		Seed:         1,
		OnAbsorption: func(AbsorptionEvent) { events++ },
	})
	if err != nil {
		t.Fatalf("NewGameSession failed: %v", err)
	}
	g.running = true

	dt := 1.0 / TickRate
	star := g.field.Spawn(KindStar, 2.0, Vec3{X: 5}, Vec3{})
	star.beginAbsorbing()
	for tick := 0; tick < 4*TickRate; tick++ {
		g.stepAbsorption(star, dt)
	}

	if events != 1 {
		t.Errorf("absorption events = %d, want 1", events)
	}
	if got, want := g.attractor.Mass, 1.06; math.Abs(got-want) > 1e-9 {
		t.Errorf("attractor mass = %f, want %f", got, want)
	}
}

// アニメーション中はスケールが縮み、位置がアトラクターへ向かう
func TestAnimateAbsorption_ShrinksTowardAttractor(t *testing.T) {
	a := NewAttractor(1.0)
	body := &Body{State: KindPlanet | StateActive, Mass: 0.5, Position: Vec3{X: 30}}
	body.beginAbsorbing()

	dt := 1.0 / TickRate
	prevDist := body.Position.Length()
	for tick := 0; tick < TickRate; tick++ {
		animateAbsorption(a, body, dt)
	}

	if body.Position.Length() >= prevDist {
		t.Errorf("body did not move toward attractor: %f -> %f", prevDist, body.Position.Length())
	}
	if s := body.Absorption.Scale; s <= 0 || s >= 1 {
		t.Errorf("scale = %f, want in (0, 1) mid-animation", s)
	}
}

func TestAnimateAbsorption_TracksMovingAttractor(t *testing.T) {
	a := NewAttractor(1.0)
	body := &Body{State: KindPlanet | StateActive, Mass: 0.5, Position: Vec3{X: 20}}
	body.beginAbsorbing()

	dt := 1.0 / TickRate
	for tick := 0; tick < 2*TickRate; tick++ {
		// アトラクターが動き続けても現在位置へ収束する
		a.Position = Vec3{X: -10, Y: float64(tick) * 0.1}
		animateAbsorption(a, body, dt)
	}

	if body.Position.Sub(a.Position).Length() > 1e-6 {
		t.Errorf("body should end at attractor's current position, off by %f", body.Position.Sub(a.Position).Length())
	}
}

func TestMarkAbsorbed_RequiresAbsorbing(t *testing.T) {
	body := &Body{State: KindStar | StateActive, Mass: 1.0}
	if body.markAbsorbed() {
		t.Errorf("active body must not jump straight to absorbed")
	}
	body.beginAbsorbing()
	if !body.markAbsorbed() {
		t.Errorf("absorbing body should become absorbed")
	}
	if body.markAbsorbed() {
		t.Errorf("absorbed is terminal, second mark must fail")
	}
	if body.State.Kind() != KindStar {
		t.Errorf("kind must survive transitions, got %s", body.State)
	}
}
