package ik

import "github.com/Faultbox/stance-ik/pkg/math"

// CapsuleShrinkFactor is the share of the hip drop taken off the capsule
// half-height. Tuned visually; revisit if offsets grow much beyond the default
// probe distance.
const CapsuleShrinkFactor = 0.5

// HipTarget returns the hip offset target: the lower foot, never above 0.
func HipTarget(left, right float32) float32 {
	return min(left, right, 0)
}

// CapsuleTarget returns the half-height the capsule eases toward for a hip offset.
func CapsuleTarget(base, hipOffset float32) float32 {
	drop := hipOffset
	if drop < 0 {
		drop = -drop
	}
	return base - drop*CapsuleShrinkFactor
}

// updateHip lowers the hip toward the deeper foot and resizes the host capsule.
func (s *Solver) updateHip(st *State, host Host, dt float32) {
	target := HipTarget(st.Left.Offset, st.Right.Offset)
	st.Hip.Offset = math.FInterpTo(st.Hip.Offset, target, dt, s.tuning.HipInterpSpeed)

	capsule := math.FInterpTo(
		host.CapsuleHalfHeight(),
		CapsuleTarget(s.tuning.BaseCapsuleHalfHeight, st.Hip.Offset),
		dt,
		s.tuning.HipInterpSpeed,
	)
	host.SetCapsuleHalfHeight(capsule)
	st.Hip.CapsuleHalfHeight = capsule
}
