package combat

import (
	"testing"

	"aeroclash/arena/internal/geom"
	"aeroclash/arena/internal/state"
	"aeroclash/arena/internal/world"
)

func storeWith(entities ...*state.Entity) *state.EntityStore {
	store := state.NewEntityStore()
	for _, entity := range entities {
		store.Add(entity)
	}
	return store
}

func TestTerrainPassKillsCrashedEntity(t *testing.T) {
	terrain := world.Generate(1)
	flying := readyEntity("flying")
	flying.Position = geom.Vec3{Y: world.SpawnCeiling}
	buried := readyEntity("buried")
	buried.Position = geom.Vec3{X: 200, Y: world.GroundLevel - 10, Z: 200}

	crashed := TerrainPass(storeWith(flying, buried), terrain)
	if len(crashed) != 1 || crashed[0].ID != "buried" {
		t.Fatalf("expected only the buried entity to crash, got %+v", crashed)
	}
	if buried.Health != 0 {
		t.Fatalf("crash must zero health, got %d", buried.Health)
	}
	if flying.Health != 100 {
		t.Fatalf("airborne entity must be untouched, got %d", flying.Health)
	}
}

func TestTerrainPassSkipsInvulnerable(t *testing.T) {
	terrain := world.Generate(1)
	entity := readyEntity("spawning")
	entity.Position = geom.Vec3{Y: world.GroundLevel - 10}
	entity.Invulnerable = 2

	if crashed := TerrainPass(storeWith(entity), terrain); len(crashed) != 0 {
		t.Fatalf("invulnerable entities must not crash, got %+v", crashed)
	}
	if entity.Health != 100 {
		t.Fatalf("health must be untouched, got %d", entity.Health)
	}
}

func TestProjectilePassDamagesFirstMatch(t *testing.T) {
	shooter := readyEntity("shooter")
	target := readyEntity("target")
	target.Position = geom.Vec3{X: 100, Y: 100}

	projectiles := state.NewProjectileStore()
	projectiles.Add(&state.Projectile{ID: "p", OwnerID: "shooter", Position: target.Position})

	events := ProjectilePass(projectiles, storeWith(shooter, target))
	if len(events) != 1 {
		t.Fatalf("expected one hit event, got %d", len(events))
	}
	if events[0].TargetID != "target" || events[0].Killed {
		t.Fatalf("unexpected event %+v", events[0])
	}
	if target.Health != 100-ProjectileDamage {
		t.Fatalf("expected %d health, got %d", 100-ProjectileDamage, target.Health)
	}
	if projectiles.Len() != 0 {
		t.Fatal("projectile must be destroyed on hit")
	}
}

func TestProjectilePassNeverHitsOwner(t *testing.T) {
	shooter := readyEntity("shooter")
	projectiles := state.NewProjectileStore()
	projectiles.Add(&state.Projectile{ID: "p", OwnerID: "shooter", Position: shooter.Position})

	events := ProjectilePass(projectiles, storeWith(shooter))
	if len(events) != 0 {
		t.Fatalf("an entity must never damage itself, got %+v", events)
	}
	if shooter.Health != 100 {
		t.Fatalf("owner health must be untouched, got %d", shooter.Health)
	}
	if projectiles.Len() != 1 {
		t.Fatal("projectile should keep flying past its owner")
	}
}

func TestProjectilePassSkipsInvulnerableTarget(t *testing.T) {
	shooter := readyEntity("shooter")
	target := readyEntity("target")
	target.Position = geom.Vec3{X: 50}
	target.Invulnerable = 1.5

	projectiles := state.NewProjectileStore()
	projectiles.Add(&state.Projectile{ID: "p", OwnerID: "shooter", Position: target.Position})

	if events := ProjectilePass(projectiles, storeWith(shooter, target)); len(events) != 0 {
		t.Fatalf("invulnerable targets take zero damage, got %+v", events)
	}
	if target.Health != 100 {
		t.Fatalf("target health must be untouched, got %d", target.Health)
	}
}

func TestProjectilePassCreditsKill(t *testing.T) {
	shooter := readyEntity("shooter")
	target := readyEntity("target")
	target.Position = geom.Vec3{X: 80}
	target.Health = ProjectileDamage

	projectiles := state.NewProjectileStore()
	projectiles.Add(&state.Projectile{ID: "p", OwnerID: "shooter", Position: target.Position})

	events := ProjectilePass(projectiles, storeWith(shooter, target))
	if len(events) != 1 || !events[0].Killed {
		t.Fatalf("expected a killing blow, got %+v", events)
	}
	if shooter.Kills != 1 {
		t.Fatalf("shooter should earn the kill, got %d", shooter.Kills)
	}
	if target.Health != 0 {
		t.Fatalf("target health must floor at zero, got %d", target.Health)
	}
}

func TestProjectilePassStaleOwnerNoCredit(t *testing.T) {
	target := readyEntity("target")
	target.Health = ProjectileDamage

	projectiles := state.NewProjectileStore()
	projectiles.Add(&state.Projectile{ID: "p", OwnerID: "gone", Position: target.Position})

	events := ProjectilePass(projectiles, storeWith(target))
	if len(events) != 1 || !events[0].Killed {
		t.Fatalf("hit should resolve even with a missing shooter, got %+v", events)
	}
	if target.Health != 0 {
		t.Fatalf("target should still die, got %d health", target.Health)
	}
}

func TestProjectilePassOneVictimPerProjectile(t *testing.T) {
	shooter := readyEntity("shooter")
	first := readyEntity("first")
	second := readyEntity("second")
	//1.- Stack both targets on the same point; join order decides the victim.
	first.Position = geom.Vec3{X: 60}
	second.Position = geom.Vec3{X: 60}

	projectiles := state.NewProjectileStore()
	projectiles.Add(&state.Projectile{ID: "p", OwnerID: "shooter", Position: first.Position})

	events := ProjectilePass(projectiles, storeWith(shooter, first, second))
	if len(events) != 1 || events[0].TargetID != "first" {
		t.Fatalf("first entity in join order must absorb the hit, got %+v", events)
	}
	if second.Health != 100 {
		t.Fatalf("second target must be untouched, got %d", second.Health)
	}
}
