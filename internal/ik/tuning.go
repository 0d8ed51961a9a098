package ik

import (
	"errors"
	"fmt"
)

// Default tuning values.
const (
	DefaultFootInterpSpeed       = 13.0
	DefaultHipInterpSpeed        = 7.0
	DefaultProbeDistance         = 55.0
	DefaultAdjustOffsetBias      = 2.0
	DefaultBaseCapsuleHalfHeight = 96.0
	DefaultStationarySpeed       = 1e-4
	DefaultLeftSocket            = "foot_lSocket"
	DefaultRightSocket           = "foot_rSocket"
)

// Tuning holds the construction-time solver parameters.
type Tuning struct {
	FootInterpSpeed       float32 // Rate for foot rotation and effector easing (1/s)
	HipInterpSpeed        float32 // Rate for hip offset and capsule easing (1/s)
	ProbeDistance         float32 // How far below the capsule bottom a probe reaches
	AdjustOffsetBias      float32 // Shifts the zero crossing of foot offsets upward
	BaseCapsuleHalfHeight float32 // Unshrunk collision capsule half-height
	LeftSocket            string
	RightSocket           string

	// StationarySpeed is the speed at or below which IK runs.
	StationarySpeed float32
	// ResumeHysteresis widens the suspend threshold while active. Zero keeps
	// the raw threshold comparison, which can toggle every tick near it.
	ResumeHysteresis float32
}

// DefaultTuning returns the stock tuning.
func DefaultTuning() Tuning {
	return Tuning{
		FootInterpSpeed:       DefaultFootInterpSpeed,
		HipInterpSpeed:        DefaultHipInterpSpeed,
		ProbeDistance:         DefaultProbeDistance,
		AdjustOffsetBias:      DefaultAdjustOffsetBias,
		BaseCapsuleHalfHeight: DefaultBaseCapsuleHalfHeight,
		LeftSocket:            DefaultLeftSocket,
		RightSocket:           DefaultRightSocket,
		StationarySpeed:       DefaultStationarySpeed,
	}
}

// ErrInvalidTuning is wrapped by every Validate failure.
var ErrInvalidTuning = errors.New("invalid ik tuning")

// MaxHipDrop is the deepest hip offset magnitude the tuning can produce: a
// probe that hits at its far end yields -ProbeDistance + AdjustOffsetBias.
func (t Tuning) MaxHipDrop() float32 {
	drop := t.ProbeDistance - t.AdjustOffsetBias
	if drop < 0 {
		return 0
	}
	return drop
}

// Validate checks the tuning invariants.
func (t Tuning) Validate() error {
	switch {
	case t.ProbeDistance <= 0:
		return fmt.Errorf("%w: probe distance %v must be > 0", ErrInvalidTuning, t.ProbeDistance)
	case t.FootInterpSpeed <= 0:
		return fmt.Errorf("%w: foot interp speed %v must be > 0", ErrInvalidTuning, t.FootInterpSpeed)
	case t.HipInterpSpeed <= 0:
		return fmt.Errorf("%w: hip interp speed %v must be > 0", ErrInvalidTuning, t.HipInterpSpeed)
	case t.BaseCapsuleHalfHeight <= 0:
		return fmt.Errorf("%w: capsule half-height %v must be > 0", ErrInvalidTuning, t.BaseCapsuleHalfHeight)
	case t.BaseCapsuleHalfHeight <= t.MaxHipDrop()*CapsuleShrinkFactor:
		return fmt.Errorf("%w: capsule half-height %v cannot absorb a hip drop of %v",
			ErrInvalidTuning, t.BaseCapsuleHalfHeight, t.MaxHipDrop())
	case t.StationarySpeed < 0:
		return fmt.Errorf("%w: stationary speed %v must be >= 0", ErrInvalidTuning, t.StationarySpeed)
	case t.ResumeHysteresis < 0:
		return fmt.Errorf("%w: resume hysteresis %v must be >= 0", ErrInvalidTuning, t.ResumeHysteresis)
	case t.LeftSocket == "" || t.RightSocket == "":
		return fmt.Errorf("%w: foot sockets must be named", ErrInvalidTuning)
	case t.LeftSocket == t.RightSocket:
		return fmt.Errorf("%w: left and right socket are both %q", ErrInvalidTuning, t.LeftSocket)
	}
	return nil
}
