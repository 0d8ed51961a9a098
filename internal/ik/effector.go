package ik

import "github.com/Faultbox/stance-ik/pkg/math"

// StepEffector eases a foot effector toward footOffset - hipOffset. The hip
// share of the drop is added back so the effector is relative to the shrunk
// capsule rather than to the world.
func StepEffector(prior, footOffset, hipOffset, dt, speed float32) float32 {
	return math.FInterpTo(prior, footOffset-hipOffset, dt, speed)
}
