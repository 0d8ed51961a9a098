// Package ik adjusts a standing biped's feet and hips to uneven ground.
//
// Every tick the character is stationary, Solver.Advance probes the ground under
// both foot sockets, turns the hits into per-foot offsets and surface tilts,
// lowers the hip by the deeper foot and eases every value toward its target.
// The host simulation is reached only through the Host interface.
package ik

import "github.com/Faultbox/stance-ik/pkg/math"

// Side identifies a foot.
type Side int

const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	if s == Left {
		return "left"
	}
	return "right"
}

// Phase is the gating state of the solver.
type Phase int

const (
	// PhaseActive means the character is stationary and IK runs.
	PhaseActive Phase = iota
	// PhaseSuspended means the character is moving and all IK state holds.
	PhaseSuspended
)

func (p Phase) String() string {
	if p == PhaseActive {
		return "active"
	}
	return "suspended"
}

// Hit is what the host's ground probe reports for a blocking surface.
type Hit struct {
	Location math.Vec3 // Impact point
	Normal   math.Vec3 // Unit surface normal
}

// Host is the slice of the simulation the solver needs from its character.
type Host interface {
	// SocketLocation returns the world position of a named foot socket.
	SocketLocation(name string) math.Vec3
	// Location returns the character origin (capsule center).
	Location() math.Vec3
	// Speed returns the magnitude of the character velocity.
	Speed() float32
	// ProbeGround traces the segment start→end against complex collision,
	// ignoring the character itself, and returns the nearest blocking hit.
	ProbeGround(start, end math.Vec3) (Hit, bool)
	// CapsuleHalfHeight returns the current collision capsule half-height.
	CapsuleHalfHeight() float32
	// SetCapsuleHalfHeight resizes the collision capsule.
	SetCapsuleHalfHeight(halfHeight float32)
}

// FootState is the per-foot state carried across ticks.
type FootState struct {
	Socket   string
	Offset   float32      // Vertical offset from the last probe; 0 when unsupported
	Rotation math.Rotator // Surface tilt (pitch, roll); yaw is always 0
	Effector float32      // Displacement handed to the pose system
}

// HipState is the hip state carried across ticks.
type HipState struct {
	Offset            float32 // Always <= 0
	CapsuleHalfHeight float32 // Last half-height written to the host
}

// State is everything the solver keeps for one character.
type State struct {
	Left  FootState
	Right FootState
	Hip   HipState
	Phase Phase
}

// NewState returns a neutral state for the given tuning.
func NewState(t Tuning) State {
	return State{
		Left:  FootState{Socket: t.LeftSocket},
		Right: FootState{Socket: t.RightSocket},
		Hip:   HipState{CapsuleHalfHeight: t.BaseCapsuleHalfHeight},
		Phase: PhaseActive,
	}
}

// Foot returns the state of one foot.
func (s *State) Foot(side Side) *FootState {
	if side == Left {
		return &s.Left
	}
	return &s.Right
}

// Pose is the read-only view consumed by a pose blending stage.
type Pose struct {
	LeftEffector  float32
	RightEffector float32
	LeftRotation  math.Rotator
	RightRotation math.Rotator
	HipOffset     float32
}

// Pose returns the values a pose blending stage reads.
func (s *State) Pose() Pose {
	return Pose{
		LeftEffector:  s.Left.Effector,
		RightEffector: s.Right.Effector,
		LeftRotation:  s.Left.Rotation,
		RightRotation: s.Right.Rotation,
		HipOffset:     s.Hip.Offset,
	}
}
