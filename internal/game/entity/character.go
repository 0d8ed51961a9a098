// Package entity implements the characters that stand in a world.
package entity

import (
	"github.com/Faultbox/stance-ik/internal/engine/picking"
	"github.com/Faultbox/stance-ik/internal/game/world"
	"github.com/Faultbox/stance-ik/internal/ik"
	"github.com/Faultbox/stance-ik/pkg/math"
)

// Spec describes a character at spawn.
type Spec struct {
	Name              string
	X, Y              float32
	Yaw               float32 // Facing in degrees, 0 = +X
	MoveSpeed         float32 // Units per second
	CapsuleRadius     float32
	CapsuleHalfHeight float32
	// Sockets maps socket names to offsets from the capsule center in the
	// character's local frame (+X forward, +Y left, +Z up).
	Sockets map[string]math.Vec3
}

// DefaultSockets returns foot sockets for a capsule of the given half-height,
// placed on the capsule bottom a little forward of center.
func DefaultSockets(halfHeight float32) map[string]math.Vec3 {
	return map[string]math.Vec3{
		ik.DefaultLeftSocket:  {X: 4, Y: 11, Z: -halfHeight + 3},
		ik.DefaultRightSocket: {X: 4, Y: -11, Z: -halfHeight + 3},
	}
}

// DefaultSpec returns a character with the stock capsule and sockets.
func DefaultSpec(name string) Spec {
	return Spec{
		Name:              name,
		MoveSpeed:         150,
		CapsuleRadius:     42,
		CapsuleHalfHeight: ik.DefaultBaseCapsuleHalfHeight,
		Sockets:           DefaultSockets(ik.DefaultBaseCapsuleHalfHeight),
	}
}

// Character is a capsule body with named sockets. It satisfies ik.Host.
type Character struct {
	ID   uint64
	Name string

	// Position is the capsule center in world coordinates.
	Position math.Vec3
	Yaw      float32
	Velocity math.Vec3

	// Movement state
	MoveSpeed      float32
	Dest           math.Vec3
	HasDestination bool
	IsMoving       bool

	CapsuleRadius  float32
	BaseHalfHeight float32
	halfHeight     float32

	sockets map[string]math.Vec3
	world   *world.World
}

// NewCharacter creates a character and registers its capsule with the world.
// The capsule center starts at z = BaseHalfHeight; use Settle to drop it on
// the ground.
func NewCharacter(id uint64, spec Spec, w *world.World) *Character {
	sockets := make(map[string]math.Vec3, len(spec.Sockets))
	for name, off := range spec.Sockets {
		sockets[name] = off
	}
	c := &Character{
		ID:             id,
		Name:           spec.Name,
		Position:       math.Vec3{X: spec.X, Y: spec.Y, Z: spec.CapsuleHalfHeight},
		Yaw:            spec.Yaw,
		MoveSpeed:      spec.MoveSpeed,
		CapsuleRadius:  spec.CapsuleRadius,
		BaseHalfHeight: spec.CapsuleHalfHeight,
		halfHeight:     spec.CapsuleHalfHeight,
		sockets:        sockets,
		world:          w,
	}
	c.syncCollider()
	return c
}

// World returns the world the character stands in.
func (c *Character) World() *world.World {
	return c.world
}

// SetPosition moves the capsule center.
func (c *Character) SetPosition(p math.Vec3) {
	c.Position = p
	c.syncCollider()
}

// SetDestination sets a click-to-move destination on the XY plane.
func (c *Character) SetDestination(x, y float32) {
	c.Dest = math.Vec3{X: x, Y: y}
	c.HasDestination = true
}

// ClearDestination stops the character where it is.
func (c *Character) ClearDestination() {
	c.HasDestination = false
	c.IsMoving = false
	c.Velocity = math.Vec3{}
}

// SocketLocation returns the world position of a socket. Unknown sockets
// resolve to the capsule center.
func (c *Character) SocketLocation(name string) math.Vec3 {
	off, ok := c.sockets[name]
	if !ok {
		return c.Position
	}
	return c.Position.Add(math.Rotator{Yaw: c.Yaw}.Quat().Rotate(off))
}

// Location returns the capsule center.
func (c *Character) Location() math.Vec3 {
	return c.Position
}

// Speed returns the magnitude of the velocity.
func (c *Character) Speed() float32 {
	return c.Velocity.Length()
}

// ProbeGround traces against the world, ignoring this character's capsule.
func (c *Character) ProbeGround(start, end math.Vec3) (ik.Hit, bool) {
	h, ok := c.world.Trace(start, end, c.ID)
	if !ok {
		return ik.Hit{}, false
	}
	return ik.Hit{Location: h.Location, Normal: h.Normal}, true
}

// CapsuleHalfHeight returns the current capsule half-height.
func (c *Character) CapsuleHalfHeight() float32 {
	return c.halfHeight
}

// SetCapsuleHalfHeight resizes the capsule, keeping its center in place.
func (c *Character) SetCapsuleHalfHeight(h float32) {
	c.halfHeight = h
	c.syncCollider()
}

// Bounds returns the capsule's bounding box.
func (c *Character) Bounds() picking.AABB {
	ext := math.Vec3{X: c.CapsuleRadius, Y: c.CapsuleRadius, Z: c.halfHeight}
	return picking.NewAABB(c.Position.Sub(ext), c.Position.Add(ext))
}

func (c *Character) syncCollider() {
	if c.world != nil {
		c.world.SetOwnedBox("capsule:"+c.Name, c.Bounds(), c.ID)
	}
}
