// Package picking provides segment casting against simple collision shapes.
package picking

import "github.com/Faultbox/stance-ik/pkg/math"

// Segment is a finite line from Start to End.
type Segment struct {
	Start math.Vec3
	End   math.Vec3
}

// Point returns the point a fraction t of the way along the segment.
func (s Segment) Point(t float32) math.Vec3 {
	return s.Start.Lerp(s.End, t)
}

// AABB represents an axis-aligned bounding box.
type AABB struct {
	Min math.Vec3
	Max math.Vec3
}

// NewAABB creates an AABB from two opposite corners in any order.
func NewAABB(a, b math.Vec3) AABB {
	return AABB{
		Min: math.Vec3{X: min(a.X, b.X), Y: min(a.Y, b.Y), Z: min(a.Z, b.Z)},
		Max: math.Vec3{X: max(a.X, b.X), Y: max(a.Y, b.Y), Z: max(a.Z, b.Z)},
	}
}

// Contains reports whether p lies inside or on the box.
func (b AABB) Contains(p math.Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// IntersectAABB tests the segment against a box with the slab method.
// It returns the entry fraction along the segment and the normal of the face
// entered. A segment starting inside the box hits at fraction 0 with a normal
// facing back along the segment.
func (s Segment) IntersectAABB(box AABB) (frac float32, normal math.Vec3, hit bool) {
	dir := s.End.Sub(s.Start)
	tmin, tmax := float32(0), float32(1)
	entryAxis, entrySign := -1, float32(0)

	for axis := 0; axis < 3; axis++ {
		o := s.Start.Component(axis)
		d := dir.Component(axis)
		lo, hi := box.Min.Component(axis), box.Max.Component(axis)

		if d == 0 {
			if o < lo || o > hi {
				return 0, math.Vec3{}, false
			}
			continue
		}

		t1 := (lo - o) / d
		t2 := (hi - o) / d
		// Moving along +axis enters through the min face, whose normal points -axis.
		sign := float32(-1)
		if t1 > t2 {
			t1, t2 = t2, t1
			sign = 1
		}
		if t1 > tmin {
			tmin = t1
			entryAxis, entrySign = axis, sign
		}
		if t2 < tmax {
			tmax = t2
		}
		if tmin > tmax {
			return 0, math.Vec3{}, false
		}
	}

	if entryAxis < 0 {
		return 0, dir.Scale(-1).Normalize(), true
	}
	switch entryAxis {
	case 0:
		normal.X = entrySign
	case 1:
		normal.Y = entrySign
	default:
		normal.Z = entrySign
	}
	return tmin, normal, true
}

// SnapToFace moves p exactly onto the box face with the given axis normal,
// removing the rounding left by a slab intersection.
func (b AABB) SnapToFace(p, normal math.Vec3) math.Vec3 {
	switch {
	case normal.X < 0:
		p.X = b.Min.X
	case normal.X > 0:
		p.X = b.Max.X
	case normal.Y < 0:
		p.Y = b.Min.Y
	case normal.Y > 0:
		p.Y = b.Max.Y
	case normal.Z < 0:
		p.Z = b.Min.Z
	case normal.Z > 0:
		p.Z = b.Max.Z
	}
	return p
}
