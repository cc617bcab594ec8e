package world

import (
	"math/rand"

	"aeroclash/arena/internal/geom"
)

// Playable volume tunables shared by flight rules, AI steering, and spawning.
const (
	// HalfExtent bounds the square horizontal play area on |x| and |z|.
	HalfExtent = 1000.0
	// Ceiling is the altitude above which the violation timer starts draining.
	Ceiling = 400.0
	// GroundLevel is the reference altitude for the terrain slab surface.
	GroundLevel = 0.0
	// SpawnFloor and SpawnCeiling bracket the altitude band for respawns.
	SpawnFloor   = 120.0
	SpawnCeiling = 280.0

	mountainCount     = 24
	treeCount         = 60
	mountainMaxHeight = 220.0
	mountainMinHeight = 60.0
	mountainMaxRadius = 90.0
	mountainMinRadius = 30.0
	treeHeight        = 14.0
	treeRadius        = 2.5
	groundDepth       = 50.0
)

// ObstacleKind labels the terrain feature a bounding volume belongs to.
type ObstacleKind string

const (
	ObstacleGround   ObstacleKind = "ground"
	ObstacleMountain ObstacleKind = "mountain"
	ObstacleTree     ObstacleKind = "tree"
)

// Obstacle is one immutable terrain bounding volume.
type Obstacle struct {
	Kind ObstacleKind
	Box  geom.AABB
}

// Terrain holds the static obstacle set generated once at room creation.
type Terrain struct {
	seed      int64
	obstacles []Obstacle
}

// Generate builds the deterministic obstacle set for the provided seed.
func Generate(seed int64) *Terrain {
	rng := rand.New(rand.NewSource(seed))
	obstacles := make([]Obstacle, 0, 1+mountainCount+treeCount)

	//1.- The ground slab spans the whole play area just below the surface.
	obstacles = append(obstacles, Obstacle{
		Kind: ObstacleGround,
		Box: geom.AABB{
			Min: geom.Vec3{X: -HalfExtent, Y: GroundLevel - groundDepth, Z: -HalfExtent},
			Max: geom.Vec3{X: HalfExtent, Y: GroundLevel, Z: HalfExtent},
		},
	})

	//2.- Mountains are tall boxes scattered across the map with varied footprints.
	for i := 0; i < mountainCount; i++ {
		radius := mountainMinRadius + rng.Float64()*(mountainMaxRadius-mountainMinRadius)
		height := mountainMinHeight + rng.Float64()*(mountainMaxHeight-mountainMinHeight)
		center := scatter(rng, HalfExtent-radius)
		obstacles = append(obstacles, Obstacle{
			Kind: ObstacleMountain,
			Box: geom.AABB{
				Min: geom.Vec3{X: center.X - radius, Y: GroundLevel, Z: center.Z - radius},
				Max: geom.Vec3{X: center.X + radius, Y: GroundLevel + height, Z: center.Z + radius},
			},
		})
	}

	//3.- Trees are thin low boxes; mostly scenery but still lethal to clip.
	for i := 0; i < treeCount; i++ {
		center := scatter(rng, HalfExtent-treeRadius)
		obstacles = append(obstacles, Obstacle{
			Kind: ObstacleTree,
			Box: geom.AABB{
				Min: geom.Vec3{X: center.X - treeRadius, Y: GroundLevel, Z: center.Z - treeRadius},
				Max: geom.Vec3{X: center.X + treeRadius, Y: GroundLevel + treeHeight, Z: center.Z + treeRadius},
			},
		})
	}

	return &Terrain{seed: seed, obstacles: obstacles}
}

func scatter(rng *rand.Rand, limit float64) geom.Vec3 {
	return geom.Vec3{
		X: (rng.Float64()*2 - 1) * limit,
		Z: (rng.Float64()*2 - 1) * limit,
	}
}

// Seed reports the seed the terrain was generated from.
func (t *Terrain) Seed() int64 {
	if t == nil {
		return 0
	}
	return t.seed
}

// Obstacles exposes the obstacle set; callers must treat it as read-only.
func (t *Terrain) Obstacles() []Obstacle {
	if t == nil {
		return nil
	}
	return t.obstacles
}

// Collides reports whether the volume intersects any terrain obstacle.
func (t *Terrain) Collides(box geom.AABB) bool {
	if t == nil {
		return false
	}
	for _, obstacle := range t.obstacles {
		if obstacle.Box.Intersects(box) {
			return true
		}
	}
	return false
}

// InBounds reports whether the point lies inside the square horizontal limit.
func InBounds(point geom.Vec3) bool {
	return point.X >= -HalfExtent && point.X <= HalfExtent &&
		point.Z >= -HalfExtent && point.Z <= HalfExtent
}
