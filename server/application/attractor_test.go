package application

import (
	"math"
	"testing"
)

func TestPull_SingularityGuard(t *testing.T) {
	a := NewAttractor(1.0)

	// 距離0.05 < epsilon 0.1 なのでゼロベクトル
	force := a.Pull(Vec3{X: 0.05}, 1.0)
	if force != (Vec3{}) {
		t.Errorf("force = %+v, want zero vector", force)
	}

	force = a.Pull(a.Position, 1.0)
	if force != (Vec3{}) {
		t.Errorf("force at attractor position = %+v, want zero vector", force)
	}
}

func TestPull_ForceFloor(t *testing.T) {
	a := NewAttractor(1.0)

	cases := []struct {
		name     string
		position Vec3
		mass     float64
	}{
		{"far away", Vec3{X: 500}, 1.0},
		{"very far away", Vec3{X: 5000}, 0.5},
		{"heavy body far away", Vec3{Y: 800}, 10.0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			force := a.Pull(tc.position, tc.mass)
			if got, want := force.Length(), MinForceFloor*tc.mass; got < want-1e-12 {
				t.Errorf("|force| = %f, want >= %f", got, want)
			}
		})
	}
}

func TestPull_NearFieldStrongerThanInverseSquare(t *testing.T) {
	a := NewAttractor(8.0) // radius = 2*1.2 = 2.4, horizon = 14.4

	dist := a.EventHorizonRadius() / 2
	force := a.Pull(Vec3{X: dist}, 1.0)
	invSquare := GravityConstant * a.Mass * 1.0 / (dist * dist)
	if force.Length() <= invSquare {
		t.Errorf("near-field force %f should exceed inverse-square %f", force.Length(), invSquare)
	}
}

func TestPull_PointsTowardAttractor(t *testing.T) {
	a := NewAttractor(1.0)
	a.Position = Vec3{X: 10, Y: 5, Z: 2}

	body := Vec3{X: 40, Y: -20, Z: 6}
	force := a.Pull(body, 2.0)
	toward := a.Position.Sub(body)
	if force.Dot(toward) <= 0 {
		t.Errorf("force %+v does not point toward attractor", force)
	}
	if !force.IsFinite() {
		t.Errorf("force is not finite: %+v", force)
	}
}

func TestPull_DepthEmphasis(t *testing.T) {
	a := NewAttractor(1.0)

	// 平面上で重なっていて奥行きだけずれているボディ
	aligned := a.Pull(Vec3{Z: 10}, 1.0)
	// 平面上で同じ距離だけ離れているボディ
	offset := a.Pull(Vec3{X: 10}, 1.0)

	if math.Abs(aligned.Z) <= math.Abs(offset.X) {
		t.Errorf("aligned Z pull %f should exceed lateral pull %f", math.Abs(aligned.Z), math.Abs(offset.X))
	}
}

func TestAttractor_RadiusDerivedFromMass(t *testing.T) {
	a := NewAttractor(8.0)
	if got, want := a.Radius(), math.Cbrt(8.0)*AttractorRadiusScale; math.Abs(got-want) > 1e-12 {
		t.Errorf("Radius() = %f, want %f", got, want)
	}

	a.Absorb(19.0)
	if got, want := a.Radius(), math.Cbrt(27.0)*AttractorRadiusScale; math.Abs(got-want) > 1e-12 {
		t.Errorf("Radius() after absorb = %f, want %f", got, want)
	}
}

func TestAttractor_AbsorbIgnoresInvalidAmounts(t *testing.T) {
	a := NewAttractor(1.0)
	a.Absorb(-5)
	a.Absorb(0)
	a.Absorb(math.NaN())
	a.Absorb(math.Inf(1))
	if a.Mass != 1.0 {
		t.Errorf("Mass = %f, want 1.0", a.Mass)
	}
	if a.AbsorbedCount() != 0 {
		t.Errorf("AbsorbedCount = %d, want 0", a.AbsorbedCount())
	}
}

func TestAttractor_SetTargetClampsToBounds(t *testing.T) {
	a := NewAttractor(1.0)
	bounds := DefaultBounds()

	a.SetTarget(10000, -10000, bounds)
	if a.Target.X != bounds.Width/2 {
		t.Errorf("Target.X = %f, want %f", a.Target.X, bounds.Width/2)
	}
	if a.Target.Y != -bounds.Height/2 {
		t.Errorf("Target.Y = %f, want %f", a.Target.Y, -bounds.Height/2)
	}
}

func TestAttractor_AdvanceApproachesWithoutTeleport(t *testing.T) {
	a := NewAttractor(1.0)
	a.SetTarget(100, 0, DefaultBounds())

	dt := 1.0 / TickRate
	prev := a.Position
	for i := 0; i < TickRate; i++ {
		a.Advance(dt)
		step := a.Position.Sub(prev).Length()
		if step > 100*TargetLerpRate*dt+1e-9 {
			t.Fatalf("tick %d: step %f looks like a teleport", i, step)
		}
		prev = a.Position
	}

	if a.Position.X <= 0 || a.Position.X >= 100 {
		t.Errorf("Position.X = %f, want strictly between 0 and 100", a.Position.X)
	}
}

func TestAttractor_AdvanceStopsInsideEpsilon(t *testing.T) {
	a := NewAttractor(1.0)
	a.Position = Vec3{X: 50}
	a.SetTarget(50, 0, DefaultBounds())

	a.Advance(1.0 / TickRate)
	if a.Position.X != 50 {
		t.Errorf("Position.X = %f, want 50 (no movement inside epsilon)", a.Position.X)
	}
}
