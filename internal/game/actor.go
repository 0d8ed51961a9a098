package game

import (
	"github.com/Faultbox/stance-ik/internal/config"
	"github.com/Faultbox/stance-ik/internal/game/entity"
	"github.com/Faultbox/stance-ik/internal/ik"
	"github.com/Faultbox/stance-ik/internal/network/packets"
)

// Actor is a character together with its IK state and movement script.
type Actor struct {
	Character *entity.Character
	State     ik.State

	solver *ik.Solver
	probes ik.Probes
	active bool

	script []config.Waypoint
	loop   bool
	next   int
	wait   float32 // Seconds left to idle before the next waypoint
}

// Solver returns the actor's IK solver.
func (a *Actor) Solver() *ik.Solver {
	return a.solver
}

// Probes returns the probe results of the last tick and whether IK ran.
func (a *Actor) Probes() (ik.Probes, bool) {
	return a.probes, a.active
}

// followScript issues the next waypoint once the character has arrived and
// finished waiting.
func (a *Actor) followScript(dt float32) {
	if len(a.script) == 0 || a.Character.HasDestination {
		return
	}
	if a.wait > 0 {
		a.wait -= dt
		return
	}
	if a.next >= len(a.script) {
		if !a.loop {
			return
		}
		a.next = 0
	}
	wp := a.script[a.next]
	a.next++
	a.Character.SetDestination(wp.X, wp.Y)
	a.wait = float32(wp.Wait.Seconds())
}

// frame snapshots the actor after a tick.
func (a *Actor) frame(tick uint64, t float64) packets.Frame {
	st := &a.State
	pos := a.Character.Position
	return packets.Frame{
		Type:              packets.TypeFrame,
		Tick:              tick,
		Time:              t,
		Character:         a.Character.Name,
		Phase:             st.Phase.String(),
		Position:          [3]float32{pos.X, pos.Y, pos.Z},
		Speed:             a.Character.Speed(),
		Left:              footPacket(&st.Left, a.probes.Left),
		Right:             footPacket(&st.Right, a.probes.Right),
		HipOffset:         st.Hip.Offset,
		CapsuleHalfHeight: a.Character.CapsuleHalfHeight(),
	}
}

func footPacket(f *ik.FootState, p ik.ProbeResult) packets.Foot {
	out := packets.Foot{
		Socket:   f.Socket,
		Hit:      p.Hit,
		Offset:   f.Offset,
		Effector: f.Effector,
		Pitch:    f.Rotation.Pitch,
		Roll:     f.Rotation.Roll,
	}
	if p.Hit {
		out.Distance = p.Distance
	}
	return out
}

func tuningPacket(t ik.Tuning) packets.Tuning {
	return packets.Tuning{
		FootInterpSpeed:       t.FootInterpSpeed,
		HipInterpSpeed:        t.HipInterpSpeed,
		ProbeDistance:         t.ProbeDistance,
		AdjustOffsetBias:      t.AdjustOffsetBias,
		BaseCapsuleHalfHeight: t.BaseCapsuleHalfHeight,
	}
}
