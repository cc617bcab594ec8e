package world

import (
	"testing"

	"aeroclash/arena/internal/geom"
)

func TestGenerateIsDeterministic(t *testing.T) {
	a := Generate(42)
	b := Generate(42)
	if len(a.Obstacles()) != len(b.Obstacles()) {
		t.Fatalf("obstacle counts differ: %d vs %d", len(a.Obstacles()), len(b.Obstacles()))
	}
	for i := range a.Obstacles() {
		if a.Obstacles()[i] != b.Obstacles()[i] {
			t.Fatalf("obstacle %d differs between identical seeds", i)
		}
	}
	c := Generate(43)
	same := len(a.Obstacles()) == len(c.Obstacles())
	if same {
		identical := true
		for i := range a.Obstacles() {
			if a.Obstacles()[i] != c.Obstacles()[i] {
				identical = false
				break
			}
		}
		if identical {
			t.Fatal("different seeds produced identical terrain")
		}
	}
}

func TestGroundSlabCoversPlayArea(t *testing.T) {
	terrain := Generate(7)
	probe := geom.AABBFromCenter(geom.Vec3{X: 500, Y: -5, Z: -500}, geom.Vec3{X: 1, Y: 1, Z: 1})
	if !terrain.Collides(probe) {
		t.Fatal("volume below ground level should collide with the ground slab")
	}
	aloft := geom.AABBFromCenter(geom.Vec3{Y: SpawnCeiling + 40}, geom.Vec3{X: 1, Y: 1, Z: 1})
	if terrain.Collides(aloft) {
		t.Fatal("volume high above the spawn band should be clear of terrain")
	}
}

func TestObstaclesStayInsideBounds(t *testing.T) {
	terrain := Generate(99)
	for i, obstacle := range terrain.Obstacles() {
		if obstacle.Box.Min.X < -HalfExtent || obstacle.Box.Max.X > HalfExtent {
			t.Fatalf("obstacle %d exceeds the x boundary: %+v", i, obstacle.Box)
		}
		if obstacle.Box.Min.Z < -HalfExtent || obstacle.Box.Max.Z > HalfExtent {
			t.Fatalf("obstacle %d exceeds the z boundary: %+v", i, obstacle.Box)
		}
	}
}

func TestInBounds(t *testing.T) {
	if !InBounds(geom.Vec3{X: HalfExtent, Z: -HalfExtent}) {
		t.Fatal("points on the limit are in bounds")
	}
	if InBounds(geom.Vec3{X: HalfExtent + 1}) {
		t.Fatal("points beyond the limit are out of bounds")
	}
}
