package state

import "aeroclash/arena/internal/geom"

// Projectile tracks one fired shot. Only position integration mutates it
// after creation.
type Projectile struct {
	ID        string
	OwnerID   string
	Position  geom.Vec3
	Velocity  geom.Vec3
	SpawnedAt float64
}

// ProjectileStore maps projectile identifiers to kinematic state, preserving
// spawn order for deterministic iteration. Owned by the room authority.
type ProjectileStore struct {
	projectiles map[string]*Projectile
	order       []string
}

// NewProjectileStore constructs an empty projectile container.
func NewProjectileStore() *ProjectileStore {
	return &ProjectileStore{projectiles: make(map[string]*Projectile)}
}

// Add registers a freshly spawned projectile.
func (s *ProjectileStore) Add(projectile *Projectile) {
	if s == nil || projectile == nil || projectile.ID == "" {
		return
	}
	if _, ok := s.projectiles[projectile.ID]; ok {
		return
	}
	s.projectiles[projectile.ID] = projectile
	s.order = append(s.order, projectile.ID)
}

// Remove destroys the projectile; unknown identifiers are ignored.
func (s *ProjectileStore) Remove(id string) {
	if s == nil || id == "" {
		return
	}
	if _, ok := s.projectiles[id]; !ok {
		return
	}
	delete(s.projectiles, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Len reports the number of live projectiles.
func (s *ProjectileStore) Len() int {
	if s == nil {
		return 0
	}
	return len(s.projectiles)
}

// Ordered returns live projectiles in spawn order.
func (s *ProjectileStore) Ordered() []*Projectile {
	if s == nil {
		return nil
	}
	ordered := make([]*Projectile, 0, len(s.order))
	for _, id := range s.order {
		if projectile, ok := s.projectiles[id]; ok {
			ordered = append(ordered, projectile)
		}
	}
	return ordered
}

// Advance integrates projectile motion for the fixed timestep.
func (s *ProjectileStore) Advance(dt float64) {
	if s == nil || dt <= 0 {
		return
	}
	for _, projectile := range s.projectiles {
		projectile.Position = projectile.Position.Add(projectile.Velocity.Scale(dt))
	}
}

// PruneExpired removes every projectile older than the lifespan and returns
// the removed identifiers.
func (s *ProjectileStore) PruneExpired(now, lifespan float64) []string {
	if s == nil {
		return nil
	}
	var removed []string
	for _, projectile := range s.Ordered() {
		if now-projectile.SpawnedAt > lifespan {
			removed = append(removed, projectile.ID)
		}
	}
	for _, id := range removed {
		s.Remove(id)
	}
	return removed
}
