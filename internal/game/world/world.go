// Package world holds the collision scene characters stand in.
package world

import (
	"fmt"

	"github.com/Faultbox/stance-ik/internal/engine/picking"
	"github.com/Faultbox/stance-ik/internal/engine/terrain"
	"github.com/Faultbox/stance-ik/pkg/math"
)

// NoOwner marks static geometry.
const NoOwner uint64 = 0

// Collider is a box in the scene, optionally owned by a character.
type Collider struct {
	Name  string
	Box   picking.AABB
	Owner uint64
}

// Hit is the nearest blocking surface found by a trace.
type Hit struct {
	Location math.Vec3
	Normal   math.Vec3
	Fraction float32
	Collider string // Empty for terrain
}

// World is the collision scene: a heightmap ground plus box colliders.
type World struct {
	Name      string
	Ground    *terrain.Heightmap
	colliders []Collider
}

// New creates a world over the given ground. ground may be nil for a world
// made only of boxes.
func New(name string, ground *terrain.Heightmap) *World {
	return &World{Name: name, Ground: ground}
}

// AddBox adds a collider to the scene.
func (w *World) AddBox(name string, box picking.AABB, owner uint64) {
	w.colliders = append(w.colliders, Collider{Name: name, Box: box, Owner: owner})
}

// SetOwnedBox moves the collider owned by owner, adding it on first use.
// Characters use it to keep their capsule bounds in the scene.
func (w *World) SetOwnedBox(name string, box picking.AABB, owner uint64) {
	for i := range w.colliders {
		if w.colliders[i].Owner == owner && w.colliders[i].Name == name {
			w.colliders[i].Box = box
			return
		}
	}
	w.AddBox(name, box, owner)
}

// Colliders returns the scene's colliders.
func (w *World) Colliders() []Collider {
	return w.colliders
}

// Trace returns the nearest hit along start→end against the ground and every
// collider not owned by ignore. Boxes that already contain start are passed
// through, as a line trace starting inside a solid does not hit it.
func (w *World) Trace(start, end math.Vec3, ignore uint64) (Hit, bool) {
	return w.trace(start, end, func(c *Collider) bool {
		return ignore != NoOwner && c.Owner == ignore
	})
}

// HeightAt returns the top of the highest static surface between fromZ and
// toZ under (x, y). Character-owned colliders are never stood on.
func (w *World) HeightAt(x, y, fromZ, toZ float32) (float32, bool) {
	h, ok := w.trace(math.Vec3{X: x, Y: y, Z: fromZ}, math.Vec3{X: x, Y: y, Z: toZ}, func(c *Collider) bool {
		return c.Owner != NoOwner
	})
	if !ok {
		return 0, false
	}
	return h.Location.Z, true
}

func (w *World) trace(start, end math.Vec3, skip func(*Collider) bool) (Hit, bool) {
	best := Hit{Fraction: 2}
	found := false

	if w.Ground != nil {
		if h, ok := w.Ground.Trace(start, end); ok {
			best = Hit{Location: h.Location, Normal: h.Normal, Fraction: h.Fraction}
			found = true
		}
	}

	seg := picking.Segment{Start: start, End: end}
	for i := range w.colliders {
		c := &w.colliders[i]
		if skip(c) || c.Box.Contains(start) {
			continue
		}
		frac, normal, ok := seg.IntersectAABB(c.Box)
		if !ok || frac >= best.Fraction {
			continue
		}
		loc := c.Box.SnapToFace(seg.Point(frac), normal)
		best = Hit{Location: loc, Normal: normal, Fraction: frac, Collider: c.Name}
		found = true
	}
	return best, found
}

func (w *World) String() string {
	return fmt.Sprintf("world %q (%d colliders)", w.Name, len(w.colliders))
}
