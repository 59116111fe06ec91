// Package geom provides the small set of vector and quaternion operations
// the battle simulation needs. All types are plain values and every
// operation returns a new value; nothing mutates in place.
package geom

import "math"

// Vec3 represents a point or direction in simulation space. Y is up.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// World axis vectors.
var (
	UnitX = Vec3{X: 1}
	UnitY = Vec3{Y: 1}
	UnitZ = Vec3{Z: 1}
)

// Add returns the component-wise sum of two vectors.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Sub returns the component-wise difference of two vectors.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// Scale returns the vector multiplied by a scalar.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Dot returns the dot product of two vectors.
func (v Vec3) Dot(o Vec3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

// Cross returns the cross product of two vectors.
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

// Magnitude returns the length of the vector.
func (v Vec3) Magnitude() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Normalize returns a unit vector in the same direction. A zero-length
// vector normalizes to the zero vector rather than dividing by zero.
func (v Vec3) Normalize() Vec3 {
	mag := v.Magnitude()
	if mag == 0 {
		return Vec3{}
	}
	return Vec3{X: v.X / mag, Y: v.Y / mag, Z: v.Z / mag}
}

// DistanceTo returns the Euclidean distance between two points.
func (v Vec3) DistanceTo(o Vec3) float64 {
	return v.Sub(o).Magnitude()
}

// Lerp returns the linear interpolation between v and o at t.
func (v Vec3) Lerp(o Vec3, t float64) Vec3 {
	return Vec3{
		X: v.X + (o.X-v.X)*t,
		Y: v.Y + (o.Y-v.Y)*t,
		Z: v.Z + (o.Z-v.Z)*t,
	}
}

// IsZero reports whether every component is exactly zero.
func (v Vec3) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// RotateToward turns the unit direction from toward the unit direction to
// by at most maxAngle radians. Degenerate inputs return the target
// direction when the remaining angle is negligible, or from unchanged when
// the two are exactly opposed with no defined turn plane.
func RotateToward(from, to Vec3, maxAngle float64) Vec3 {
	f := from.Normalize()
	t := to.Normalize()
	if f.IsZero() {
		return t
	}
	if t.IsZero() {
		return f
	}
	d := f.Dot(t)
	if d > 1 {
		d = 1
	} else if d < -1 {
		d = -1
	}
	angle := math.Acos(d)
	if angle <= maxAngle {
		return t
	}
	axis := f.Cross(t)
	if axis.Magnitude() < 1e-12 {
		return f
	}
	return FromAxisAngle(axis, maxAngle).Rotate(f)
}
