// Package flight applies one control vector to one entity for one fixed
// timestep: orientation first, then position, then the violation timers.
package flight

import (
	"aeroclash/arena/internal/geom"
	"aeroclash/arena/internal/state"
	"aeroclash/arena/internal/world"
)

// Tuning constants for the shared flight model.
const (
	// PitchRate and RollRate are angular rates in radians per second at full
	// axis deflection.
	PitchRate = 1.8
	RollRate  = 2.4

	// BaseSpeed is forward speed in meters per second at neutral throttle.
	BaseSpeed = 60.0
	// ThrottleGain scales the throttle modifier onto the base speed.
	ThrottleGain = 0.5
	// BoostMultiplier doubles forward speed while boost is held.
	BoostMultiplier = 2.0

	// AltitudeWindow and BoundaryWindow are the full violation timer
	// durations in seconds.
	AltitudeWindow = 4.0
	BoundaryWindow = 5.0
)

// Integrate advances the entity orientation and position for the timestep.
// Pitch is applied about the local lateral axis, then roll about the local
// longitudinal axis, as successive quaternion compositions. The slight
// order-dependent coupling between the two is intentional.
func Integrate(entity *state.Entity, controls state.Controls, dt float64) {
	if entity == nil || dt <= 0 {
		return
	}

	//1.- Compose pitch then roll in the body frame and renormalise.
	orientation := entity.Orientation
	if controls.Pitch != 0 {
		orientation = orientation.Mul(geom.QuatFromAxisAngle(geom.Vec3{X: 1}, controls.Pitch*PitchRate*dt))
	}
	if controls.Roll != 0 {
		orientation = orientation.Mul(geom.QuatFromAxisAngle(geom.Vec3{Z: 1}, controls.Roll*RollRate*dt))
	}
	entity.Orientation = orientation.Normalize()

	//2.- Move along the updated forward vector at the throttled speed.
	speed := BaseSpeed * (1 + ThrottleGain*controls.Throttle)
	if controls.Boost {
		speed *= BoostMultiplier
	}
	entity.Position = entity.Position.Add(entity.Forward().Scale(speed * dt))
}

// TickViolations evaluates the altitude and boundary timers for the timestep
// and reports whether either expired. Expiry forces health to zero; the
// caller transitions the entity to not-ready afterwards.
func TickViolations(entity *state.Entity, dt float64) bool {
	if entity == nil || dt <= 0 {
		return false
	}

	fatal := false

	//1.- The decrement-vs-reset decision runs every tick, even when another
	// rule kills the entity later in the same tick.
	if entity.Position.Y-world.GroundLevel > world.Ceiling {
		entity.AltitudeTimer -= dt
		if entity.AltitudeTimer <= 0 {
			fatal = true
		}
	} else {
		entity.AltitudeTimer = AltitudeWindow
	}

	if !world.InBounds(entity.Position) {
		entity.BoundaryTimer -= dt
		if entity.BoundaryTimer <= 0 {
			fatal = true
		}
	} else {
		entity.BoundaryTimer = BoundaryWindow
	}

	if fatal {
		entity.Health = 0
	}
	return fatal
}

// ResetViolations restores both timers to their full windows, used on spawn.
func ResetViolations(entity *state.Entity) {
	if entity == nil {
		return
	}
	entity.AltitudeTimer = AltitudeWindow
	entity.BoundaryTimer = BoundaryWindow
}
