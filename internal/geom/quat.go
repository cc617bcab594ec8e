package geom

import "math"

// Quat is a unit quaternion describing an entity orientation in world space.
type Quat struct {
	W float64 `json:"w" msgpack:"w"`
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
	Z float64 `json:"z" msgpack:"z"`
}

// IdentityQuat returns the no-rotation quaternion.
func IdentityQuat() Quat {
	return Quat{W: 1}
}

// QuatFromAxisAngle builds a quaternion rotating by the angle (radians) about the axis.
func QuatFromAxisAngle(axis Vec3, angle float64) Quat {
	//1.- Normalise the axis so repeated compositions stay unit length.
	unit := axis.Normalize()
	half := angle * 0.5
	sin := math.Sin(half)
	return Quat{W: math.Cos(half), X: unit.X * sin, Y: unit.Y * sin, Z: unit.Z * sin}
}

// Mul composes two rotations; the receiver is applied first in world space,
// which makes q.Mul(local) a rotation in the body frame of q.
func (q Quat) Mul(other Quat) Quat {
	return Quat{
		W: q.W*other.W - q.X*other.X - q.Y*other.Y - q.Z*other.Z,
		X: q.W*other.X + q.X*other.W + q.Y*other.Z - q.Z*other.Y,
		Y: q.W*other.Y - q.X*other.Z + q.Y*other.W + q.Z*other.X,
		Z: q.W*other.Z + q.X*other.Y - q.Y*other.X + q.Z*other.W,
	}
}

// Conjugate returns the inverse rotation for unit quaternions.
func (q Quat) Conjugate() Quat {
	return Quat{W: q.W, X: -q.X, Y: -q.Y, Z: -q.Z}
}

// Normalize rescales the quaternion to unit length, guarding against drift
// accumulated over many integration steps.
func (q Quat) Normalize() Quat {
	length := math.Sqrt(q.W*q.W + q.X*q.X + q.Y*q.Y + q.Z*q.Z)
	if length == 0 {
		return IdentityQuat()
	}
	inv := 1.0 / length
	return Quat{W: q.W * inv, X: q.X * inv, Y: q.Y * inv, Z: q.Z * inv}
}

// Rotate applies the rotation to a vector using q * v * q^-1.
func (q Quat) Rotate(v Vec3) Vec3 {
	//1.- Expand the sandwich product with the vector promoted to a pure quaternion.
	u := Vec3{X: q.X, Y: q.Y, Z: q.Z}
	uv := u.Cross(v)
	uuv := u.Cross(uv)
	return v.Add(uv.Scale(2 * q.W)).Add(uuv.Scale(2))
}
