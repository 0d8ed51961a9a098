package entity

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/stance-ik/internal/engine/terrain"
	"github.com/Faultbox/stance-ik/internal/game/world"
	"github.com/Faultbox/stance-ik/internal/ik"
	"github.com/Faultbox/stance-ik/pkg/math"
)

func near(a, b float32) bool {
	return gomath.Abs(float64(a-b)) < 1e-4
}

func newFlatCharacter(t *testing.T) *Character {
	t.Helper()
	ground, err := terrain.Flat(10, 50, 0)
	if err != nil {
		t.Fatalf("Flat: %v", err)
	}
	return NewCharacter(1, DefaultSpec("hero"), world.New("flat", ground))
}

// Compile-time check that Character can drive the solver.
var _ ik.Host = (*Character)(nil)

func TestSocketLocationFollowsYaw(t *testing.T) {
	c := newFlatCharacter(t)
	c.SetPosition(math.Vec3{X: 10, Y: 20, Z: 96})

	left := c.SocketLocation(ik.DefaultLeftSocket)
	if !near(left.X, 14) || !near(left.Y, 31) || !near(left.Z, 3) {
		t.Errorf("left socket facing +X = %v", left)
	}

	c.Yaw = 90
	left = c.SocketLocation(ik.DefaultLeftSocket)
	if !near(left.X, -1) || !near(left.Y, 24) || !near(left.Z, 3) {
		t.Errorf("left socket facing +Y = %v", left)
	}

	if got := c.SocketLocation("hand_rSocket"); got != c.Position {
		t.Errorf("unknown socket = %v, want capsule center", got)
	}
}

func TestProbeGroundIgnoresOwnCapsule(t *testing.T) {
	c := newFlatCharacter(t)
	socket := c.SocketLocation(ik.DefaultRightSocket)
	start, end := ik.ProbeSegment(socket, c.Position.Z, c.BaseHalfHeight, 55)

	hit, ok := c.ProbeGround(start, end)
	if !ok {
		t.Fatal("expected ground hit")
	}
	if hit.Location.Z != 0 || hit.Normal != math.Up {
		t.Errorf("hit = %+v, want flat ground at z=0", hit)
	}

	other := NewCharacter(2, DefaultSpec("other"), c.World())
	other.SetPosition(math.Vec3{X: 500, Y: 500, Z: 96})

	// From above, another character lands on the capsule top.
	h, ok := other.ProbeGround(start.WithZ(300), end)
	if !ok || h.Location.Z != 192 {
		t.Errorf("other character should hit the capsule top, got %+v", h)
	}

	// Starting inside someone else's capsule passes through it.
	h, ok = other.ProbeGround(start, end)
	if !ok || h.Location.Z != 0 {
		t.Errorf("trace from inside a capsule should reach the ground, got %+v", h)
	}
}

func TestCapsuleHalfHeight(t *testing.T) {
	c := newFlatCharacter(t)
	if c.CapsuleHalfHeight() != 96 {
		t.Fatalf("half-height = %v, want 96", c.CapsuleHalfHeight())
	}
	c.SetCapsuleHalfHeight(92)
	b := c.Bounds()
	if b.Max.Z-b.Min.Z != 184 {
		t.Errorf("bounds height = %v, want 184", b.Max.Z-b.Min.Z)
	}
	for _, col := range c.World().Colliders() {
		if col.Owner == c.ID && col.Box != b {
			t.Errorf("world collider %+v not synced to %+v", col.Box, b)
		}
	}
}

func TestSpeedAndDestination(t *testing.T) {
	c := newFlatCharacter(t)
	c.Velocity = math.Vec3{X: 3, Y: 4}
	if c.Speed() != 5 {
		t.Errorf("Speed() = %v, want 5", c.Speed())
	}
	c.SetDestination(10, 0)
	if !c.HasDestination {
		t.Error("destination not set")
	}
	c.ClearDestination()
	if c.HasDestination || c.IsMoving || c.Speed() != 0 {
		t.Error("ClearDestination should stop the character")
	}
}
