package character

import (
	"github.com/Faultbox/stance-ik/internal/game/entity"
	"github.com/Faultbox/stance-ik/pkg/math"
)

// ArrivalThreshold is the distance at which a character is considered to have arrived.
const ArrivalThreshold = 1.0

// DefaultMoveSpeed is the default movement speed in world units per second.
const DefaultMoveSpeed = 150.0

// MaxStepHeight bounds how far above the capsule bottom the ground may rise
// under a moving character and still be stepped onto.
const MaxStepHeight = 45.0

// UpdateMovement advances click-to-move navigation by dt seconds.
// ground may be nil to skip height following.
func UpdateMovement(c *entity.Character, dt float32, ground GroundQuery) {
	if c == nil {
		return
	}
	if !c.HasDestination {
		if c.IsMoving {
			c.ClearDestination()
		}
		return
	}

	delta := c.Dest.Sub(c.Position).WithZ(0)
	dist := delta.Length()
	if dist < ArrivalThreshold {
		c.ClearDestination()
		return
	}
	dir := delta.Scale(1 / dist)

	moveAmount := c.MoveSpeed * dt
	if moveAmount > dist {
		moveAmount = dist
	}

	next := c.Position.Add(dir.Scale(moveAmount))
	if ground != nil {
		if z, ok := groundUnder(c, next, ground, MaxStepHeight); ok {
			next.Z = z + c.BaseHalfHeight
		}
	}

	if dt > 0 {
		c.Velocity = next.Sub(c.Position).Scale(1 / dt)
	}
	c.Yaw = math.Atan2Deg(dir.Y, dir.X)
	c.IsMoving = true
	c.SetPosition(next)
}

// Settle places a character onto the ground under its center, searching a
// few capsule heights above and below it.
func Settle(c *entity.Character, ground GroundQuery) bool {
	z, ok := groundUnder(c, c.Position, ground, 8*c.BaseHalfHeight)
	if !ok {
		return false
	}
	c.SetPosition(c.Position.WithZ(z + c.BaseHalfHeight))
	return true
}

func groundUnder(c *entity.Character, at math.Vec3, ground GroundQuery, reach float32) (float32, bool) {
	bottom := c.Position.Z - c.BaseHalfHeight
	return ground.HeightAt(at.X, at.Y, bottom+reach, bottom-8*c.BaseHalfHeight)
}
