package state

import "aeroclash/arena/internal/geom"

// MaxHealth is the upper clamp for entity health.
const MaxHealth = 100

// BotFlavor carries the opaque display strings attached to bot entities.
// The simulation never interprets these values.
type BotFlavor struct {
	AttackPattern string `json:"attack_pattern" msgpack:"attack_pattern"`
	Evasion       string `json:"evasion" msgpack:"evasion"`
	Difficulty    string `json:"difficulty" msgpack:"difficulty"`
}

// Entity is one controllable vehicle, human or bot driven. All mutation
// happens on the room goroutine; the struct itself carries no locking.
type Entity struct {
	ID   string
	Name string

	Health int
	Kills  int

	Position    geom.Vec3
	Orientation geom.Quat

	// GunCooldown is the seconds remaining until the next shot is allowed;
	// GunHeat rises per shot and decays per second within [0, 100].
	GunCooldown float64
	GunHeat     float64

	// Violation timers drain while the entity is outside the legal volume
	// and reset to their full window the moment it returns.
	BoundaryTimer float64
	AltitudeTimer float64

	// Invulnerable blocks all incoming damage and crash detection while > 0.
	Invulnerable float64

	Ready bool
	Bot   bool

	// joinSeq orders entities deterministically for collision iteration.
	joinSeq uint64

	// Bot-only decision state.
	TargetID     string
	NextDecision float64
	DescentMode  bool
	FlyBy        float64
	RespawnDelay float64
	Flavor       BotFlavor
}

// Alive reports whether the entity can currently take part in combat.
func (e *Entity) Alive() bool {
	return e != nil && e.Ready && e.Health > 0
}

// ApplyDamage subtracts the amount from health, flooring at zero, and reports
// whether this call crossed the entity from alive to dead.
func (e *Entity) ApplyDamage(amount int) bool {
	if e == nil || amount <= 0 || e.Health <= 0 {
		return false
	}
	e.Health -= amount
	if e.Health <= 0 {
		e.Health = 0
		return true
	}
	return false
}

// Forward returns the world-space forward unit vector (local -Z).
func (e *Entity) Forward() geom.Vec3 {
	if e == nil {
		return geom.Vec3{}
	}
	return e.Orientation.Rotate(geom.Vec3{Z: -1})
}

// JoinSeq exposes the monotonically assigned join order.
func (e *Entity) JoinSeq() uint64 {
	if e == nil {
		return 0
	}
	return e.joinSeq
}
