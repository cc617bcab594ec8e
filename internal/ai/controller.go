// Package ai drives bot entities. Each decision epoch a bot re-targets and
// walks an ordered priority cascade; the winning priority yields a desired
// world-space direction that is converted into the same discrete control
// vector a human control scheme produces, so bots flow through the identical
// flight integration path.
package ai

import (
	"math"

	"aeroclash/arena/internal/geom"
	"aeroclash/arena/internal/state"
	"aeroclash/arena/internal/world"
)

// Decision and steering tunables.
const (
	// DecisionInterval is how often a bot re-selects its target, in seconds.
	// Steering itself is recomputed every tick.
	DecisionInterval = 0.75
	// DescentExitMargin is the hysteresis band below the ceiling that ends a
	// forced descent, keeping bots from oscillating at the limit.
	DescentExitMargin = 40.0
	// GroundBuffer is the minimum altitude before ground avoidance engages.
	GroundBuffer = 25.0
	// BoundaryMargin is the distance from the horizontal limit at which bots
	// turn back toward the world centre.
	BoundaryMargin = 150.0
	// SteerDeadzone suppresses jittery axis intents near alignment.
	SteerDeadzone = 0.08

	// ShootRange is the maximum firing distance in meters.
	ShootRange = 320.0
	// CloseRange is the distance under which a granted shot starts the
	// fly-by cooldown.
	CloseRange = 60.0
	// FlyByCooldown is the post-shot stand-down duration in seconds.
	FlyByCooldown = 1.5

	descentSlope = 0.8
	climbSlope   = 0.8
)

// aimTolerance is the cosine of the maximum angle between the forward vector
// and the direction to the target at which a bot will fire (10 degrees).
var aimTolerance = math.Cos(10 * math.Pi / 180)

// steering is the outcome of one priority evaluator.
type steering struct {
	direction geom.Vec3
	combat    bool
}

// priority is a named evaluator in the cascade. It returns handled=false to
// pass control to the next priority.
type priority struct {
	name     string
	evaluate func(bot *state.Entity) (steering, bool)
}

// Controller produces synthetic control vectors for bot entities. It holds no
// per-bot state of its own; everything lives on the entity record so the room
// remains the single authority.
type Controller struct {
	entities *state.EntityStore
}

// NewController constructs a controller reading targets from the store.
func NewController(entities *state.EntityStore) *Controller {
	return &Controller{entities: entities}
}

// Decide computes the control vector for one bot for this tick. The weapon
// gate mirrors the weapon system's own conditions so the fly-by cooldown only
// starts on shots that will actually be granted.
func (c *Controller) Decide(bot *state.Entity, now float64, cooldownReady func(*state.Entity) bool) state.Controls {
	if c == nil || bot == nil || !bot.Bot {
		return state.Controls{}
	}

	//1.- Re-target on the decision epoch, not every tick, so pursuit is stable.
	if now >= bot.NextDecision {
		bot.TargetID = c.selectTarget(bot)
		bot.NextDecision = now + DecisionInterval
	}

	//2.- Walk the cascade; the first handled priority wins.
	var chosen steering
	handled := false
	for _, p := range c.cascade() {
		if result, ok := p.evaluate(bot); ok {
			chosen = result
			handled = true
			break
		}
	}
	if !handled {
		// No priority engaged and no target: hold the current heading.
		return state.Controls{}
	}

	controls := steerToward(bot, chosen.direction)

	//3.- Shooting is only attempted under the combat priority and outside the
	// fly-by stand-down.
	if chosen.combat && bot.FlyBy <= 0 {
		if target := c.validTarget(bot.TargetID); target != nil {
			offset := target.Position.Sub(bot.Position)
			distance := offset.Length()
			if distance > 0 && distance <= ShootRange {
				if bot.Forward().Dot(offset.Normalize()) >= aimTolerance {
					controls.Fire = true
					granted := cooldownReady == nil || cooldownReady(bot)
					if granted && distance < CloseRange {
						bot.FlyBy = FlyByCooldown
					}
				}
			}
		}
	}

	return controls
}

// cascade returns the ordered priority evaluators.
func (c *Controller) cascade() []priority {
	return []priority{
		{name: "descent-forced", evaluate: c.descentForced},
		{name: "ground-avoidance", evaluate: c.groundAvoidance},
		{name: "boundary-avoidance", evaluate: c.boundaryAvoidance},
		{name: "combat", evaluate: c.combat},
	}
}

// descentForced pushes the bot down when it breaches the ceiling, with a
// hysteresis band so the mode disengages well below the entry altitude.
func (c *Controller) descentForced(bot *state.Entity) (steering, bool) {
	altitude := bot.Position.Y - world.GroundLevel
	if bot.DescentMode {
		if altitude < world.Ceiling-DescentExitMargin {
			bot.DescentMode = false
		}
	} else if altitude > world.Ceiling {
		bot.DescentMode = true
	}
	if !bot.DescentMode {
		return steering{}, false
	}
	return steering{direction: levelForward(bot, -descentSlope)}, true
}

// groundAvoidance climbs when the bot drops below the safety buffer.
func (c *Controller) groundAvoidance(bot *state.Entity) (steering, bool) {
	if bot.Position.Y-world.GroundLevel >= GroundBuffer {
		return steering{}, false
	}
	return steering{direction: levelForward(bot, climbSlope)}, true
}

// boundaryAvoidance turns back toward the world centre near the edge.
func (c *Controller) boundaryAvoidance(bot *state.Entity) (steering, bool) {
	limit := world.HalfExtent - BoundaryMargin
	if math.Abs(bot.Position.X) < limit && math.Abs(bot.Position.Z) < limit {
		return steering{}, false
	}
	toCentre := geom.Vec3{X: -bot.Position.X, Z: -bot.Position.Z}.Normalize()
	return steering{direction: toCentre}, true
}

// combat chases the selected target when one is still valid.
func (c *Controller) combat(bot *state.Entity) (steering, bool) {
	target := c.validTarget(bot.TargetID)
	if target == nil {
		return steering{}, false
	}
	direction := target.Position.Sub(bot.Position)
	if direction.Length() == 0 {
		return steering{}, false
	}
	return steering{direction: direction.Normalize(), combat: true}, true
}

// selectTarget picks the nearest ready, alive human at decision time. A stale
// or missing previous target is simply replaced, never an error.
func (c *Controller) selectTarget(bot *state.Entity) string {
	best := ""
	bestDistSq := math.MaxFloat64
	for _, candidate := range c.entities.Ordered() {
		if candidate.Bot || !candidate.Alive() {
			continue
		}
		offset := candidate.Position.Sub(bot.Position)
		distSq := offset.Dot(offset)
		if distSq < bestDistSq {
			bestDistSq = distSq
			best = candidate.ID
		}
	}
	return best
}

func (c *Controller) validTarget(id string) *state.Entity {
	if c == nil || c.entities == nil || id == "" {
		return nil
	}
	target := c.entities.Get(id)
	if target == nil || target.Bot || !target.Alive() {
		return nil
	}
	return target
}

// levelForward projects the bot's heading onto the horizontal plane and tilts
// it by the requested vertical slope.
func levelForward(bot *state.Entity, slope float64) geom.Vec3 {
	forward := bot.Forward()
	flat := geom.Vec3{X: forward.X, Z: forward.Z}
	if flat.Length() == 0 {
		// Flying straight up or down: fall back to an arbitrary level heading.
		flat = geom.Vec3{Z: -1}
	}
	flat = flat.Normalize()
	flat.Y = slope
	return flat.Normalize()
}

// steerToward converts a desired world direction into discrete pitch and roll
// intents by rotating it into the bot's local frame and comparing the local Y
// and X components against the deadzone.
func steerToward(bot *state.Entity, direction geom.Vec3) state.Controls {
	controls := state.Controls{}
	if direction.Length() == 0 {
		return controls
	}
	local := bot.Orientation.Conjugate().Rotate(direction.Normalize())

	//1.- Local +Y means the target is above the nose: pitch up.
	if local.Y > SteerDeadzone {
		controls.Pitch = 1
	} else if local.Y < -SteerDeadzone {
		controls.Pitch = -1
	}

	//2.- Local +X means the target is starboard: roll into the turn.
	if local.X > SteerDeadzone {
		controls.Roll = -1
	} else if local.X < -SteerDeadzone {
		controls.Roll = 1
	}

	return controls
}
