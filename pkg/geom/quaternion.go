package geom

import "math"

// Quat is a rotation expressed as a unit quaternion.
type Quat struct {
	W float64 `json:"w"`
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// IdentityQuat returns the no-rotation quaternion.
func IdentityQuat() Quat {
	return Quat{W: 1}
}

// FromAxisAngle builds a rotation of angle radians around the given axis.
// A zero axis yields the identity rotation.
func FromAxisAngle(axis Vec3, angle float64) Quat {
	n := axis.Normalize()
	if n.IsZero() {
		return IdentityQuat()
	}
	half := angle / 2
	s := math.Sin(half)
	return Quat{W: math.Cos(half), X: n.X * s, Y: n.Y * s, Z: n.Z * s}
}

// Mul composes two rotations: the result applies o first, then q.
func (q Quat) Mul(o Quat) Quat {
	return Quat{
		W: q.W*o.W - q.X*o.X - q.Y*o.Y - q.Z*o.Z,
		X: q.W*o.X + q.X*o.W + q.Y*o.Z - q.Z*o.Y,
		Y: q.W*o.Y - q.X*o.Z + q.Y*o.W + q.Z*o.X,
		Z: q.W*o.Z + q.X*o.Y - q.Y*o.X + q.Z*o.W,
	}
}

// Dot returns the four-component dot product of two quaternions.
func (q Quat) Dot(o Quat) float64 {
	return q.W*o.W + q.X*o.X + q.Y*o.Y + q.Z*o.Z
}

// Normalize rescales the quaternion to unit length. A degenerate
// all-zero quaternion collapses to the identity rotation.
func (q Quat) Normalize() Quat {
	mag := math.Sqrt(q.Dot(q))
	if mag == 0 {
		return IdentityQuat()
	}
	return Quat{W: q.W / mag, X: q.X / mag, Y: q.Y / mag, Z: q.Z / mag}
}

// Rotate applies the rotation to a vector.
func (q Quat) Rotate(v Vec3) Vec3 {
	u := Vec3{X: q.X, Y: q.Y, Z: q.Z}
	uv := u.Cross(v)
	uuv := u.Cross(uv)
	return v.Add(uv.Scale(2 * q.W)).Add(uuv.Scale(2))
}

// Forward returns the +Z basis vector rotated by q.
func (q Quat) Forward() Vec3 {
	return q.Rotate(UnitZ)
}

// Up returns the +Y basis vector rotated by q.
func (q Quat) Up() Vec3 {
	return q.Rotate(UnitY)
}

// Right returns the +X basis vector rotated by q.
func (q Quat) Right() Vec3 {
	return q.Rotate(UnitX)
}

// Slerp spherically interpolates from q toward o by t in [0, 1]. Inputs
// are assumed unit length; nearly parallel rotations fall back to a
// normalized linear blend to avoid the vanishing sine denominator.
func (q Quat) Slerp(o Quat, t float64) Quat {
	if t <= 0 {
		return q
	}
	if t >= 1 {
		return o
	}
	d := q.Dot(o)
	// Take the short arc.
	if d < 0 {
		o = Quat{W: -o.W, X: -o.X, Y: -o.Y, Z: -o.Z}
		d = -d
	}
	if d > 0.9995 {
		return Quat{
			W: q.W + (o.W-q.W)*t,
			X: q.X + (o.X-q.X)*t,
			Y: q.Y + (o.Y-q.Y)*t,
			Z: q.Z + (o.Z-q.Z)*t,
		}.Normalize()
	}
	theta := math.Acos(d)
	sin := math.Sin(theta)
	wa := math.Sin((1-t)*theta) / sin
	wb := math.Sin(t*theta) / sin
	return Quat{
		W: q.W*wa + o.W*wb,
		X: q.X*wa + o.X*wb,
		Y: q.Y*wa + o.Y*wb,
		Z: q.Z*wa + o.Z*wb,
	}
}

// LookRotation returns the rotation whose forward axis points along the
// given direction with the given up hint. A zero forward yields the
// identity; an up hint collinear with forward falls back to the world up
// and then the world Z axis.
func LookRotation(forward, up Vec3) Quat {
	f := forward.Normalize()
	if f.IsZero() {
		return IdentityQuat()
	}
	if up.IsZero() {
		up = UnitY
	}
	right := up.Cross(f)
	if right.Magnitude() < 1e-9 {
		up = UnitY
		right = up.Cross(f)
		if right.Magnitude() < 1e-9 {
			up = UnitZ
			right = up.Cross(f)
		}
	}
	r := right.Normalize()
	u := f.Cross(r)
	return matrixToQuat(r, u, f)
}

// matrixToQuat converts an orthonormal basis (columns right, up, forward)
// into the equivalent quaternion using the standard trace method.
func matrixToQuat(r, u, f Vec3) Quat {
	m00, m01, m02 := r.X, u.X, f.X
	m10, m11, m12 := r.Y, u.Y, f.Y
	m20, m21, m22 := r.Z, u.Z, f.Z

	trace := m00 + m11 + m22
	switch {
	case trace > 0:
		s := math.Sqrt(trace+1) * 2
		return Quat{
			W: s / 4,
			X: (m21 - m12) / s,
			Y: (m02 - m20) / s,
			Z: (m10 - m01) / s,
		}
	case m00 > m11 && m00 > m22:
		s := math.Sqrt(1+m00-m11-m22) * 2
		return Quat{
			W: (m21 - m12) / s,
			X: s / 4,
			Y: (m01 + m10) / s,
			Z: (m02 + m20) / s,
		}
	case m11 > m22:
		s := math.Sqrt(1+m11-m00-m22) * 2
		return Quat{
			W: (m02 - m20) / s,
			X: (m01 + m10) / s,
			Y: s / 4,
			Z: (m12 + m21) / s,
		}
	default:
		s := math.Sqrt(1+m22-m00-m11) * 2
		return Quat{
			W: (m10 - m01) / s,
			X: (m02 + m20) / s,
			Y: (m12 + m21) / s,
			Z: s / 4,
		}
	}
}
