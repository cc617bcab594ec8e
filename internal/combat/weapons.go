// Package combat owns the weapon state machine and the collision engine:
// cooldown/overheat gating, projectile spawning, terrain crash detection, and
// projectile hit resolution with kill bookkeeping.
package combat

import (
	"github.com/google/uuid"

	"aeroclash/arena/internal/state"
)

// Weapon tuning shared by humans and bots.
const (
	// ReloadSeconds is the cooldown armed after every granted shot.
	ReloadSeconds = 0.3
	// HeatPerShot is added to gun heat on every granted shot.
	HeatPerShot = 12.0
	// HeatDecayPerSecond drains gun heat while not firing.
	HeatDecayPerSecond = 25.0
	// HeatCeiling blocks firing once reached; heat itself clamps at MaxHeat.
	HeatCeiling = 100.0
	// MaxHeat is the hard clamp for the published heat value.
	MaxHeat = 100.0
	// MuzzleSpeed is projectile speed in meters per second.
	MuzzleSpeed = 240.0
	// ProjectileLifespan is the flight time in seconds before expiry.
	ProjectileLifespan = 3.0
	// ProjectileDamage is subtracted from a target's health per hit.
	ProjectileDamage = 25
)

// UpdateWeapon advances the entity's cooldown and heat for the timestep and,
// when the fire intent is granted, returns exactly one new projectile. Denied
// intents are dropped; nothing is queued.
func UpdateWeapon(entity *state.Entity, controls state.Controls, dt, now float64) *state.Projectile {
	if entity == nil || dt <= 0 {
		return nil
	}

	//1.- Cooldown and heat decay run unconditionally, floored at zero.
	entity.GunCooldown -= dt
	if entity.GunCooldown < 0 {
		entity.GunCooldown = 0
	}
	entity.GunHeat -= HeatDecayPerSecond * dt
	if entity.GunHeat < 0 {
		entity.GunHeat = 0
	}

	if !controls.Fire || entity.GunCooldown > 0 || entity.GunHeat >= HeatCeiling {
		return nil
	}

	//2.- Grant the shot: arm the cooldown, accrue heat, spawn the projectile.
	entity.GunCooldown = ReloadSeconds
	entity.GunHeat += HeatPerShot
	if entity.GunHeat > MaxHeat {
		entity.GunHeat = MaxHeat
	}

	return &state.Projectile{
		ID:        uuid.NewString(),
		OwnerID:   entity.ID,
		Position:  entity.Position,
		Velocity:  entity.Forward().Scale(MuzzleSpeed),
		SpawnedAt: now,
	}
}
