package geom

import "math"

// AABB is an axis-aligned bounding box described by its two extreme corners.
type AABB struct {
	Min Vec3
	Max Vec3
}

// AABBFromCenter builds a box around a center point using half extents per axis.
func AABBFromCenter(center Vec3, half Vec3) AABB {
	return AABB{Min: center.Sub(half), Max: center.Add(half)}
}

// Intersects reports whether two boxes overlap on every axis.
func (b AABB) Intersects(other AABB) bool {
	if b.Max.X < other.Min.X || b.Min.X > other.Max.X {
		return false
	}
	if b.Max.Y < other.Min.Y || b.Min.Y > other.Max.Y {
		return false
	}
	if b.Max.Z < other.Min.Z || b.Min.Z > other.Max.Z {
		return false
	}
	return true
}

// Contains reports whether the point lies inside or on the box surface.
func (b AABB) Contains(point Vec3) bool {
	return point.X >= b.Min.X && point.X <= b.Max.X &&
		point.Y >= b.Min.Y && point.Y <= b.Max.Y &&
		point.Z >= b.Min.Z && point.Z <= b.Max.Z
}

// OrientedBounds projects an oriented box (half extents rotated by the
// quaternion) back into a world-aligned AABB around the center point.
func OrientedBounds(center Vec3, half Vec3, orientation Quat) AABB {
	//1.- Rotate each local half axis into world space.
	ax := orientation.Rotate(Vec3{X: half.X})
	ay := orientation.Rotate(Vec3{Y: half.Y})
	az := orientation.Rotate(Vec3{Z: half.Z})
	//2.- The world extent per axis is the sum of absolute axis contributions.
	extent := Vec3{
		X: math.Abs(ax.X) + math.Abs(ay.X) + math.Abs(az.X),
		Y: math.Abs(ax.Y) + math.Abs(ay.Y) + math.Abs(az.Y),
		Z: math.Abs(ax.Z) + math.Abs(ay.Z) + math.Abs(az.Z),
	}
	return AABBFromCenter(center, extent)
}
