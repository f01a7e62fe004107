package application

import (
	"math"
	"testing"
)

func startedSession(t *testing.T, seed int64) *GameSession {
	t.Helper()
	g, err := NewGameSession(SessionConfig{Bounds: DefaultBounds(), Seed: seed})
	if err != nil {
		t.Fatalf("NewGameSession failed: %v", err)
	}
	if err := g.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	return g
}

func TestGameSession_RejectsInvalidBounds(t *testing.T) {
	if _, err := NewGameSession(SessionConfig{Bounds: Bounds{Width: -1}}); err != ErrInvalidBounds {
		t.Errorf("error = %v, want ErrInvalidBounds", err)
	}
}

func TestGameSession_StartInitializesPopulation(t *testing.T) {
	g := startedSession(t, 7)
	if g.field.Count() != DesiredBodyCount {
		t.Errorf("initial count = %d, want %d", g.field.Count(), DesiredBodyCount)
	}
	if g.attractor.Mass != InitialAttractorMass {
		t.Errorf("initial mass = %f, want %f", g.attractor.Mass, InitialAttractorMass)
	}
	if !g.Running() {
		t.Errorf("session should be running after Start")
	}
}

func TestGameSession_StartTwiceFails(t *testing.T) {
	g := startedSession(t, 7)
	if err := g.Start(); err != ErrSessionRunning {
		t.Errorf("second Start error = %v, want ErrSessionRunning", err)
	}
}

func TestGameSession_EndFreezesSimulation(t *testing.T) {
	g := startedSession(t, 7)
	dt := 1.0 / TickRate
	g.Step(dt)

	report := g.End()
	if report.FinalMass != g.attractor.Mass {
		t.Errorf("FinalMass = %f, want %f", report.FinalMass, g.attractor.Mass)
	}

	tickBefore := g.Tick()
	_, bodiesBefore := g.Snapshot()
	g.Step(dt)
	g.Step(dt)
	if g.Tick() != tickBefore {
		t.Errorf("tick advanced after End")
	}
	_, bodiesAfter := g.Snapshot()
	if len(bodiesAfter) != len(bodiesBefore) {
		t.Errorf("body set changed after End")
	}
}

// ResetはAbsorbing状態も含めた全状態を破棄してやり直す
func TestGameSession_ResetClearsAnimations(t *testing.T) {
	g := startedSession(t, 7)
	star := g.field.Spawn(KindStar, 2.0, Vec3{X: 3}, Vec3{})
	star.beginAbsorbing()

	if err := g.Reset(); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if g.Tick() != 0 {
		t.Errorf("tick = %d after Reset, want 0", g.Tick())
	}
	if g.attractor.Mass != InitialAttractorMass {
		t.Errorf("mass = %f after Reset, want %f", g.attractor.Mass, InitialAttractorMass)
	}
	absorbing := 0
	g.field.ForEach(func(b *Body) {
		if b.State.IsAbsorbing() {
			absorbing++
		}
	})
	if absorbing != 0 {
		t.Errorf("%d absorbing bodies survived Reset", absorbing)
	}
}

func TestGameSession_ResetWorksAfterEnd(t *testing.T) {
	g := startedSession(t, 7)
	g.End()
	if err := g.Reset(); err != nil {
		t.Fatalf("Reset after End failed: %v", err)
	}
	if !g.Running() {
		t.Errorf("session should run again after Reset")
	}
}

func TestGameSession_SetTargetMovesAttractor(t *testing.T) {
	g := startedSession(t, 7)
	g.SetTarget(80, -40)

	dt := 1.0 / TickRate
	start := g.attractor.Position
	for i := 0; i < TickRate; i++ {
		g.Step(dt)
	}

	target := Vec3{X: 80, Y: -40}
	if g.attractor.Position.Sub(target).Length() >= start.Sub(target).Length() {
		t.Errorf("attractor did not approach target: %+v", g.attractor.Position)
	}
}

// 長時間回しても状態は前進のみ、質量は単調非減少、座標は有限のまま
func TestGameSession_LongRunInvariants(t *testing.T) {
	g := startedSession(t, 99)
	g.SetTarget(30, 20)

	rank := func(s BodyState) int {
		switch s.Status() {
		case StateActive:
			return 0
		case StateAbsorbing:
			return 1
		default:
			return 2
		}
	}

	dt := 1.0 / TickRate
	lastRank := make(map[*Body]int)
	lastMass := g.attractor.Mass

	for tick := 0; tick < 10*TickRate; tick++ {
		g.Step(dt)

		if g.attractor.Mass < lastMass {
			t.Fatalf("tick %d: attractor mass decreased %f -> %f", tick, lastMass, g.attractor.Mass)
		}
		lastMass = g.attractor.Mass

		g.field.ForEach(func(b *Body) {
			if !b.Position.IsFinite() || !b.Velocity.IsFinite() {
				t.Fatalf("tick %d: body %d has non-finite state", tick, b.ID)
			}
			r := rank(b.State)
			if prev, ok := lastRank[b]; ok && r < prev {
				t.Fatalf("tick %d: body %d state went backward", tick, b.ID)
			}
			lastRank[b] = r
		})
	}
}

// 個体数は有限ティック内に低水位以上へ回復する
func TestGameSession_PopulationBandRecovery(t *testing.T) {
	g := startedSession(t, 5)

	// 大半を人為的に取り除いて水位を割る
	removed := 0
	g.field.ForEach(func(b *Body) {
		if removed < DesiredBodyCount-10 {
			g.field.Remove(b.ID)
			removed++
		}
	})
	if g.field.Count() >= MinBodyCount {
		t.Fatalf("setup failed: count = %d", g.field.Count())
	}

	dt := 1.0 / TickRate
	for tick := 0; tick < 5*TickRate; tick++ {
		g.Step(dt)
		if g.field.Count() >= MinBodyCount {
			return
		}
	}
	t.Errorf("population never recovered: count = %d", g.field.Count())
}

// 軌道追従中のボディは親の周囲に留まり、親を失うと自由運動へ戻る
func TestGameSession_OrbitFollowing(t *testing.T) {
	g := startedSession(t, 7)
	g.field.Clear()

	star := g.field.Spawn(KindStar, 3.0, Vec3{X: 120, Y: 80}, Vec3{})
	planet := g.field.Spawn(KindPlanet, 0.5, star.Position.Add(Vec3{X: 6}), Vec3{})
	planet.Parent = star.ID
	planet.OrbitRadius = 6
	planet.OrbitSpeed = 1.0

	dt := 1.0 / TickRate
	for tick := 0; tick < TickRate; tick++ {
		g.integrate(planet, dt)
		if d := planet.Position.Sub(star.Position).Length(); math.Abs(d-6) > 1e-9 {
			t.Fatalf("tick %d: orbit distance = %f, want 6", tick, d)
		}
	}

	g.field.Remove(star.ID)
	g.integrate(planet, dt)
	if planet.Parent != NoParent {
		t.Errorf("planet kept dangling parent after star removal")
	}
}

// Absorbed除去はティック先頭で行われ、同一ティック内の他ボディ処理を乱さない
func TestGameSession_DeferredRemoval(t *testing.T) {
	g := startedSession(t, 7)
	star := g.field.Spawn(KindStar, 2.0, Vec3{X: 3}, Vec3{})
	star.beginAbsorbing()
	star.Absorption.Elapsed = AbsorbDuration // 次のstepで完了する

	dt := 1.0 / TickRate
	g.Step(dt)

	if !star.State.IsAbsorbed() {
		t.Fatalf("star should complete absorption, state = %s", star.State)
	}
	if _, ok := g.field.Get(star.ID); !ok {
		t.Errorf("absorbed body removed in the same tick, want deferred removal")
	}

	g.Step(dt)
	if b, ok := g.field.Get(star.ID); ok && b == star {
		t.Errorf("absorbed body survived the next bookkeeping pass")
	}
}

func TestGameSession_SnapshotExcludesAbsorbed(t *testing.T) {
	g := startedSession(t, 7)
	star := g.field.Spawn(KindStar, 2.0, Vec3{X: 3}, Vec3{})
	star.beginAbsorbing()
	star.markAbsorbed()

	_, bodies := g.Snapshot()
	for _, b := range bodies {
		if b.ID == star.ID {
			t.Errorf("snapshot contains absorbed body")
		}
	}
}
