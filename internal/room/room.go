// Package room is the single authority over one arena. All entity and
// projectile mutation happens inside Step on the loop goroutine; connection
// handlers only stage join, leave, respawn and control requests, which the
// next tick drains before simulating.
package room

import (
	"math"
	"math/rand"
	"sync"

	"github.com/rs/zerolog"

	"aeroclash/arena/internal/ai"
	"aeroclash/arena/internal/bots"
	"aeroclash/arena/internal/combat"
	"aeroclash/arena/internal/flight"
	"aeroclash/arena/internal/geom"
	"aeroclash/arena/internal/input"
	"aeroclash/arena/internal/scoreboard"
	"aeroclash/arena/internal/state"
	"aeroclash/arena/internal/wire"
	"aeroclash/arena/internal/world"
)

const (
	// InvulnerabilityWindow is the post-respawn grace period in seconds.
	InvulnerabilityWindow = 3.0
	// BotRespawnDelay is how long a destroyed bot stays down before it
	// respawns on its own, in seconds.
	BotRespawnDelay = 4.0

	// spawnMargin keeps spawn points away from the horizontal world limit.
	spawnMargin = 200.0
	// spawnAttempts bounds the rejection sampling against terrain.
	spawnAttempts = 32
)

// Options configures a new room.
type Options struct {
	TargetOccupancy int
	LeaderboardSize int
	TerrainSeed     int64
	// Rand supplies spawn randomness; tests inject a seeded source.
	Rand   *rand.Rand
	Logger zerolog.Logger
}

type joinRequest struct {
	id   string
	name string
}

// Room owns all simulation state for one arena.
type Room struct {
	log zerolog.Logger

	// mu guards only the staged request slices; everything else is touched
	// exclusively from Step.
	mu       sync.Mutex
	joins    []joinRequest
	leaves   []string
	respawns []string

	gateway     *input.Gateway
	entities    *state.EntityStore
	projectiles *state.ProjectileStore
	terrain     *world.Terrain
	pilots      *ai.Controller
	balancer    *bots.Balancer
	board       *scoreboard.Projector
	rng         *rand.Rand
	monitor     *TickMonitor

	tick uint64
	now  float64

	publish func(*wire.Snapshot)

	// snapMu guards the published view: the latest snapshot plus the derived
	// occupancy counters, refreshed together at the end of each tick.
	snapMu sync.RWMutex
	latest *wire.Snapshot
	humans int
	total  int
}

// New constructs a room with freshly generated terrain and empty stores.
func New(opts Options) *Room {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(opts.TerrainSeed))
	}
	entities := state.NewEntityStore()
	return &Room{
		log:         opts.Logger,
		gateway:     input.NewGateway(),
		entities:    entities,
		projectiles: state.NewProjectileStore(),
		terrain:     world.Generate(opts.TerrainSeed),
		pilots:      ai.NewController(entities),
		balancer:    bots.NewBalancer(opts.TargetOccupancy),
		board:       scoreboard.NewProjector(opts.LeaderboardSize),
		rng:         rng,
		monitor:     NewTickMonitor(),
	}
}

// SetPublisher installs the snapshot sink. Must be called before the loop
// starts; the room invokes it from the loop goroutine at the end of each tick.
func (r *Room) SetPublisher(publish func(*wire.Snapshot)) {
	if r == nil {
		return
	}
	r.publish = publish
}

// Monitor exposes the tick timing statistics collector.
func (r *Room) Monitor() *TickMonitor {
	if r == nil {
		return nil
	}
	return r.monitor
}

// Terrain exposes the generated world geometry for handshake payloads.
func (r *Room) Terrain() *world.Terrain {
	if r == nil {
		return nil
	}
	return r.terrain
}

// Join stages a new human session. The entity is created not-ready on the
// next tick; the session must request a respawn to enter play.
func (r *Room) Join(id, name string) {
	if r == nil || id == "" {
		return
	}
	r.mu.Lock()
	r.joins = append(r.joins, joinRequest{id: id, name: name})
	r.mu.Unlock()
}

// Leave stages removal of a human session. In-flight projectiles owned by the
// session keep flying; a vanished owner simply earns no further credit.
func (r *Room) Leave(id string) {
	if r == nil || id == "" {
		return
	}
	r.mu.Lock()
	r.leaves = append(r.leaves, id)
	r.mu.Unlock()
}

// RequestRespawn stages a respawn for a session whose entity is down, or for
// a fresh join that has not entered play yet.
func (r *Room) RequestRespawn(id string) {
	if r == nil || id == "" {
		return
	}
	r.mu.Lock()
	r.respawns = append(r.respawns, id)
	r.mu.Unlock()
}

// SetControls stages the latest control vector for a session. Last write wins.
func (r *Room) SetControls(id string, controls state.Controls) {
	if r == nil {
		return
	}
	r.gateway.SetControls(id, controls)
}

// Snapshot returns the most recently published world snapshot.
func (r *Room) Snapshot() *wire.Snapshot {
	if r == nil {
		return nil
	}
	r.snapMu.RLock()
	defer r.snapMu.RUnlock()
	return r.latest
}

// Occupancy reports the human and total entity counts as of the last
// published tick. The stores themselves are never read off the loop
// goroutine; only this published copy is.
func (r *Room) Occupancy() (humans, total int) {
	if r == nil {
		return 0, 0
	}
	r.snapMu.RLock()
	defer r.snapMu.RUnlock()
	return r.humans, r.total
}

// Step advances the simulation by dt seconds. It must only be called from one
// goroutine; the loop owns it in production and tests drive it directly.
func (r *Room) Step(dt float64) {
	if r == nil || dt <= 0 {
		return
	}
	r.tick++
	r.now += dt

	r.applyPending()
	r.decideBots(dt)
	r.advanceEntities(dt)

	//1.- Static geometry first: a crash this tick removes the entity from the
	// projectile pass below.
	for _, crashed := range combat.TerrainPass(r.entities, r.terrain) {
		r.log.Info().Str("entity", crashed.ID).Uint64("tick", r.tick).Msg("terrain crash")
	}

	//2.- Projectiles move, then hit-test against the surviving targets.
	r.projectiles.Advance(dt)
	for _, hit := range combat.ProjectilePass(r.projectiles, r.entities) {
		if hit.Killed {
			r.board.MarkDirty()
			r.log.Info().
				Str("shooter", hit.ShooterID).
				Str("target", hit.TargetID).
				Uint64("tick", r.tick).
				Msg("kill")
		}
	}
	r.projectiles.PruneExpired(r.now, combat.ProjectileLifespan)

	r.applyTransitions(dt)
	r.publishSnapshot()
}

// Respawn places the entity back into play: full health, cleared weapon and
// violation timers, an invulnerability window, and a random clear position.
func (r *Room) Respawn(entity *state.Entity) {
	if r == nil || entity == nil {
		return
	}
	entity.Health = state.MaxHealth
	entity.GunCooldown = 0
	entity.GunHeat = 0
	flight.ResetViolations(entity)
	entity.Invulnerable = InvulnerabilityWindow
	entity.FlyBy = 0
	entity.RespawnDelay = 0
	entity.TargetID = ""
	entity.NextDecision = r.now
	entity.DescentMode = false
	entity.Orientation = geom.QuatFromAxisAngle(geom.Vec3{Y: 1}, r.rng.Float64()*2*math.Pi)
	entity.Position = r.findSpawn(entity.Orientation)
	entity.Ready = true
	r.log.Debug().Str("entity", entity.ID).Bool("bot", entity.Bot).Msg("respawn")
}

// applyPending drains the staged join, leave and respawn requests and
// rebalances the bot population when the human count changed.
func (r *Room) applyPending() {
	r.mu.Lock()
	joins := r.joins
	leaves := r.leaves
	respawns := r.respawns
	r.joins = nil
	r.leaves = nil
	r.respawns = nil
	r.mu.Unlock()

	churn := false

	for _, join := range joins {
		if r.entities.Get(join.id) != nil {
			continue
		}
		name := join.name
		if name == "" {
			name = "pilot"
		}
		r.entities.Add(&state.Entity{
			ID:          join.id,
			Name:        name,
			Health:      state.MaxHealth,
			Orientation: geom.IdentityQuat(),
		})
		r.gateway.Track(join.id)
		churn = true
		r.log.Info().Str("entity", join.id).Str("name", name).Msg("session joined")
	}

	for _, id := range leaves {
		if r.entities.Get(id) == nil {
			continue
		}
		r.entities.Remove(id)
		r.gateway.Forget(id)
		churn = true
		r.log.Info().Str("entity", id).Msg("session left")
	}

	if churn {
		added, removed := r.balancer.Rebalance(r.entities, r)
		for _, id := range added {
			r.gateway.Track(id)
		}
		for _, id := range removed {
			r.gateway.Forget(id)
		}
		if len(added) > 0 || len(removed) > 0 {
			r.log.Info().Int("added", len(added)).Int("removed", len(removed)).Msg("bot population rebalanced")
		}
		r.board.MarkDirty()
	}

	for _, id := range respawns {
		entity := r.entities.Get(id)
		if entity == nil || entity.Alive() {
			continue
		}
		r.Respawn(entity)
	}
}

// decideBots stages a synthetic control vector for every live bot, so bots
// flow through the same gateway and integration path as humans.
func (r *Room) decideBots(dt float64) {
	for _, entity := range r.entities.Ordered() {
		if !entity.Bot || !entity.Alive() {
			continue
		}
		if entity.FlyBy > 0 {
			entity.FlyBy -= dt
			if entity.FlyBy < 0 {
				entity.FlyBy = 0
			}
		}
		controls := r.pilots.Decide(entity, r.now, weaponReady)
		r.gateway.SetControls(entity.ID, controls)
	}
}

// advanceEntities integrates flight, violation timers and weapons for every
// ready entity. A panic while stepping one entity is contained to it.
func (r *Room) advanceEntities(dt float64) {
	for _, entity := range r.entities.Ordered() {
		if entity.Invulnerable > 0 {
			entity.Invulnerable -= dt
			if entity.Invulnerable < 0 {
				entity.Invulnerable = 0
			}
		}
		if !entity.Ready || entity.Health <= 0 {
			continue
		}
		r.stepEntity(entity, dt)
	}
}

func (r *Room) stepEntity(entity *state.Entity, dt float64) {
	defer func() {
		if cause := recover(); cause != nil {
			r.log.Error().
				Str("entity", entity.ID).
				Interface("cause", cause).
				Uint64("tick", r.tick).
				Msg("entity step panicked; entity skipped this tick")
		}
	}()

	controls := r.gateway.Controls(entity.ID)
	flight.Integrate(entity, controls, dt)
	if flight.TickViolations(entity, dt) {
		r.log.Info().Str("entity", entity.ID).Uint64("tick", r.tick).Msg("violation timer expired")
		return
	}
	if projectile := combat.UpdateWeapon(entity, controls, dt, r.now); projectile != nil {
		r.projectiles.Add(projectile)
	}
}

// applyTransitions moves freshly dead entities to not-ready and drives the
// bot auto-respawn countdown.
func (r *Room) applyTransitions(dt float64) {
	for _, entity := range r.entities.Ordered() {
		if entity.Ready && entity.Health <= 0 {
			entity.Ready = false
			if entity.Bot {
				entity.RespawnDelay = BotRespawnDelay
			}
			continue
		}
		if entity.Bot && !entity.Ready && entity.Health <= 0 && entity.RespawnDelay > 0 {
			entity.RespawnDelay -= dt
			if entity.RespawnDelay <= 0 {
				r.Respawn(entity)
			}
		}
	}
}

// publishSnapshot projects the world into a wire snapshot, stores it for
// pull-based readers and pushes it to the configured sink.
func (r *Room) publishSnapshot() {
	snapshot := &wire.Snapshot{Tick: r.tick}
	humans := 0
	for _, entity := range r.entities.Ordered() {
		if !entity.Bot {
			humans++
		}
		snapshot.Entities = append(snapshot.Entities, wire.EntitySnapshot{
			ID:          entity.ID,
			Name:        entity.Name,
			Position:    entity.Position,
			Orientation: entity.Orientation,
			Health:      float64(entity.Health),
			Kills:       entity.Kills,
			GunHeat:     entity.GunHeat,
			IsBot:       entity.Bot,
			Ready:       entity.Ready,
			Flavor:      entity.Flavor,
		})
	}
	for _, projectile := range r.projectiles.Ordered() {
		snapshot.Projectiles = append(snapshot.Projectiles, wire.ProjectileSnapshot{
			ID:       projectile.ID,
			OwnerID:  projectile.OwnerID,
			Position: projectile.Position,
		})
	}
	snapshot.Leaderboard = append(snapshot.Leaderboard, r.board.Entries(r.entities)...)

	r.snapMu.Lock()
	r.latest = snapshot
	r.humans = humans
	r.total = len(snapshot.Entities)
	r.snapMu.Unlock()

	if r.publish != nil {
		r.publish(snapshot)
	}
}

// findSpawn rejection-samples a spawn point whose hit volume clears the
// terrain. After too many misses it falls back to the arena centre at the
// spawn ceiling, which sits above the tallest obstacle.
func (r *Room) findSpawn(orientation geom.Quat) geom.Vec3 {
	limit := world.HalfExtent - spawnMargin
	for attempt := 0; attempt < spawnAttempts; attempt++ {
		candidate := geom.Vec3{
			X: (r.rng.Float64()*2 - 1) * limit,
			Y: world.SpawnFloor + r.rng.Float64()*(world.SpawnCeiling-world.SpawnFloor),
			Z: (r.rng.Float64()*2 - 1) * limit,
		}
		volume := geom.OrientedBounds(candidate, combat.HitboxHalfExtents, orientation)
		if !r.terrain.Collides(volume) {
			return candidate
		}
	}
	return geom.Vec3{Y: world.SpawnCeiling}
}

// weaponReady mirrors the weapon grant conditions so the fly-by cooldown only
// arms on shots that will actually fire.
func weaponReady(entity *state.Entity) bool {
	return entity != nil && entity.GunCooldown <= 0 && entity.GunHeat < combat.HeatCeiling
}
