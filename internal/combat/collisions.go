package combat

import (
	"aeroclash/arena/internal/geom"
	"aeroclash/arena/internal/state"
	"aeroclash/arena/internal/world"
)

// HitboxHalfExtents is the fixed vehicle hit volume template: wingspan on X,
// hull height on Y, fuselage length on Z.
var HitboxHalfExtents = geom.Vec3{X: 4, Y: 2, Z: 6}

// HitEvent records one resolved projectile strike.
type HitEvent struct {
	ProjectileID string
	ShooterID    string
	TargetID     string
	Killed       bool
}

// EntityVolume builds the world-aligned hit volume for the entity from its
// position, orientation, and the fixed hitbox template.
func EntityVolume(entity *state.Entity) geom.AABB {
	if entity == nil {
		return geom.AABB{}
	}
	return geom.OrientedBounds(entity.Position, HitboxHalfExtents, entity.Orientation)
}

// TerrainPass marks every ready, non-invulnerable entity whose hit volume
// intersects a static obstacle as fatally crashed (health zeroed). The
// returned slice lists the crashed entities in join order.
func TerrainPass(entities *state.EntityStore, terrain *world.Terrain) []*state.Entity {
	if entities == nil || terrain == nil {
		return nil
	}
	var crashed []*state.Entity
	for _, entity := range entities.Ordered() {
		if !entity.Ready || entity.Invulnerable > 0 || entity.Health <= 0 {
			continue
		}
		if terrain.Collides(EntityVolume(entity)) {
			entity.Health = 0
			crashed = append(crashed, entity)
		}
	}
	return crashed
}

// ProjectilePass tests every projectile position for containment against the
// hit volumes of valid targets. Iteration follows join order so resolution is
// deterministic within a tick; the first matching target absorbs the hit and
// the projectile is destroyed. A shooter that no longer exists simply earns
// no credit.
func ProjectilePass(projectiles *state.ProjectileStore, entities *state.EntityStore) []HitEvent {
	if projectiles == nil || entities == nil {
		return nil
	}

	//1.- Snapshot eligible targets and their volumes once per tick.
	ordered := entities.Ordered()
	targets := make([]*state.Entity, 0, len(ordered))
	volumes := make([]geom.AABB, 0, len(ordered))
	for _, entity := range ordered {
		if !entity.Ready || entity.Invulnerable > 0 || entity.Health <= 0 {
			continue
		}
		targets = append(targets, entity)
		volumes = append(volumes, EntityVolume(entity))
	}

	var events []HitEvent
	for _, projectile := range projectiles.Ordered() {
		for i, target := range targets {
			if target.ID == projectile.OwnerID {
				continue
			}
			if target.Health <= 0 {
				// Already killed earlier in this pass.
				continue
			}
			if !volumes[i].Contains(projectile.Position) {
				continue
			}

			//2.- First match wins: apply damage, destroy the projectile, and
			// credit the shooter when the target crossed into death.
			killed := target.ApplyDamage(ProjectileDamage)
			event := HitEvent{
				ProjectileID: projectile.ID,
				ShooterID:    projectile.OwnerID,
				TargetID:     target.ID,
				Killed:       killed,
			}
			if killed {
				if shooter := entities.Get(projectile.OwnerID); shooter != nil {
					shooter.Kills++
				}
			}
			projectiles.Remove(projectile.ID)
			events = append(events, event)
			break
		}
	}
	return events
}
