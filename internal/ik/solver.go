package ik

import (
	"fmt"

	"go.uber.org/zap"
)

// Solver runs the per-tick IK update. It holds no per-character state, so one
// Solver can serve any number of characters sharing a tuning.
type Solver struct {
	tuning Tuning
	log    *zap.Logger
}

// NewSolver validates the tuning and returns a solver. A nil logger discards output.
func NewSolver(t Tuning, log *zap.Logger) (*Solver, error) {
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("new solver: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Solver{tuning: t, log: log}, nil
}

// Tuning returns the solver's parameters.
func (s *Solver) Tuning() Tuning {
	return s.tuning
}

// Probes holds the raw probe results of one tick.
type Probes struct {
	Left  ProbeResult
	Right ProbeResult
}

// Advance runs one tick for a character. It reports whether IK ran; when the
// character is moving the state is left untouched apart from its phase.
//
// Order is fixed: both feet, then the hip from the fresh foot offsets, then
// both effectors from the fresh hip offset.
func (s *Solver) Advance(st *State, host Host, dt float32) (Probes, bool) {
	if !s.gate(st, host.Speed()) {
		return Probes{}, false
	}

	originZ := host.Location().Z
	var p Probes
	p.Left = s.updateFoot(&st.Left, host, originZ, dt)
	p.Right = s.updateFoot(&st.Right, host, originZ, dt)

	s.updateHip(st, host, dt)

	st.Left.Effector = StepEffector(st.Left.Effector, st.Left.Offset, st.Hip.Offset, dt, s.tuning.FootInterpSpeed)
	st.Right.Effector = StepEffector(st.Right.Effector, st.Right.Offset, st.Hip.Offset, dt, s.tuning.FootInterpSpeed)
	return p, true
}

// gate re-evaluates the phase from the current speed and reports whether IK runs.
func (s *Solver) gate(st *State, speed float32) bool {
	threshold := s.tuning.StationarySpeed
	if st.Phase == PhaseActive {
		threshold += s.tuning.ResumeHysteresis
	}

	next := PhaseSuspended
	if speed <= threshold {
		next = PhaseActive
	}
	if next != st.Phase {
		s.log.Debug("ik phase change",
			zap.Stringer("from", st.Phase),
			zap.Stringer("to", next),
			zap.Float32("speed", speed))
		st.Phase = next
	}
	return st.Phase == PhaseActive
}
