package flight

import (
	"math"
	"testing"

	"aeroclash/arena/internal/geom"
	"aeroclash/arena/internal/state"
	"aeroclash/arena/internal/world"
)

func newEntity() *state.Entity {
	entity := &state.Entity{ID: "e", Health: 100, Ready: true, Orientation: geom.IdentityQuat()}
	ResetViolations(entity)
	return entity
}

func TestIntegrateNeutralControlsFliesStraight(t *testing.T) {
	entity := newEntity()
	Integrate(entity, state.Controls{}, 0.5)
	want := geom.Vec3{Z: -BaseSpeed * 0.5}
	if math.Abs(entity.Position.Z-want.Z) > 1e-9 || entity.Position.X != 0 || entity.Position.Y != 0 {
		t.Fatalf("expected straight -Z travel, got %+v", entity.Position)
	}
}

func TestIntegrateBoostDoublesSpeed(t *testing.T) {
	plain := newEntity()
	boosted := newEntity()
	Integrate(plain, state.Controls{}, 1)
	Integrate(boosted, state.Controls{Boost: true}, 1)
	if math.Abs(boosted.Position.Z-2*plain.Position.Z) > 1e-9 {
		t.Fatalf("boost should double travel: %v vs %v", boosted.Position.Z, plain.Position.Z)
	}
}

func TestIntegrateThrottleModifiesSpeed(t *testing.T) {
	entity := newEntity()
	Integrate(entity, state.Controls{Throttle: 1}, 1)
	want := -BaseSpeed * (1 + ThrottleGain)
	if math.Abs(entity.Position.Z-want) > 1e-9 {
		t.Fatalf("expected z=%v, got %v", want, entity.Position.Z)
	}
}

func TestIntegratePitchClimbs(t *testing.T) {
	entity := newEntity()
	//1.- Positive pitch rotates the nose upward about the local lateral axis.
	Integrate(entity, state.Controls{Pitch: 1}, 0.25)
	if entity.Position.Y <= 0 {
		t.Fatalf("positive pitch should gain altitude, got %+v", entity.Position)
	}
}

func TestIntegratePitchRollOrderCoupling(t *testing.T) {
	//1.- Applying pitch and roll together over one large step must match the
	// pitch-then-roll composition, not a blended rotation.
	entity := newEntity()
	Integrate(entity, state.Controls{Pitch: 1, Roll: 1}, 0.5)

	reference := geom.IdentityQuat().
		Mul(geom.QuatFromAxisAngle(geom.Vec3{X: 1}, PitchRate*0.5)).
		Mul(geom.QuatFromAxisAngle(geom.Vec3{Z: 1}, RollRate*0.5)).
		Normalize()
	forward := reference.Rotate(geom.Vec3{Z: -1})
	got := entity.Forward()
	if math.Abs(forward.X-got.X) > 1e-9 || math.Abs(forward.Y-got.Y) > 1e-9 || math.Abs(forward.Z-got.Z) > 1e-9 {
		t.Fatalf("composition mismatch: got %+v want %+v", got, forward)
	}
}

func TestViolationTimerDecrementsAboveCeiling(t *testing.T) {
	entity := newEntity()
	entity.Position.Y = world.Ceiling + 50

	ticks := 0
	fatal := false
	for !fatal && ticks < 1000 {
		fatal = TickViolations(entity, 0.1)
		ticks++
	}
	if !fatal {
		t.Fatal("altitude violation never became fatal")
	}
	if entity.Health != 0 {
		t.Fatalf("fatal violation must zero health, got %d", entity.Health)
	}
	want := int(math.Ceil(AltitudeWindow / 0.1))
	if ticks < want || ticks > want+1 {
		t.Fatalf("expected fatal around tick %d, got %d", want, ticks)
	}
}

func TestViolationTimerResetsInsideLimits(t *testing.T) {
	entity := newEntity()
	entity.Position.Y = world.Ceiling + 50
	TickViolations(entity, 1)
	if entity.AltitudeTimer >= AltitudeWindow {
		t.Fatal("timer should drain while above the ceiling")
	}
	entity.Position.Y = world.Ceiling - 10
	TickViolations(entity, 1)
	if entity.AltitudeTimer != AltitudeWindow {
		t.Fatalf("timer should reset below the ceiling, got %v", entity.AltitudeTimer)
	}
}

func TestBoundaryTimerFatal(t *testing.T) {
	entity := newEntity()
	entity.Position.X = world.HalfExtent + 100
	fatal := false
	for i := 0; i < 100 && !fatal; i++ {
		fatal = TickViolations(entity, 0.1)
	}
	if !fatal {
		t.Fatal("boundary violation never became fatal")
	}
}
