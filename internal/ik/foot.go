package ik

import "github.com/Faultbox/stance-ik/pkg/math"

// SurfaceRotation returns the foot tilt that lays the sole flat on a surface
// with the given normal. It depends only on the world axes, not on facing.
func SurfaceRotation(normal math.Vec3) math.Rotator {
	return math.Rotator{
		Pitch: -math.Atan2Deg(normal.X, normal.Z),
		Yaw:   0,
		Roll:  math.Atan2Deg(normal.Y, normal.Z),
	}
}

// FootTarget converts a probe into the foot's target offset and tilt.
// ok is false on a miss: the offset is 0 and no tilt target exists.
func FootTarget(p ProbeResult, t Tuning) (offset float32, rot math.Rotator, ok bool) {
	if !p.Hit {
		return 0, math.Rotator{}, false
	}
	offset = p.Distance - t.ProbeDistance + t.AdjustOffsetBias
	return offset, SurfaceRotation(p.Normal), true
}

// updateFoot probes under one foot and refreshes its offset and tilt.
func (s *Solver) updateFoot(foot *FootState, host Host, originZ, dt float32) ProbeResult {
	socket := host.SocketLocation(foot.Socket)
	p := Probe(host, socket, originZ, s.tuning.BaseCapsuleHalfHeight, s.tuning.ProbeDistance)

	offset, target, ok := FootTarget(p, s.tuning)
	foot.Offset = offset
	if ok {
		foot.Rotation = math.RInterpTo(foot.Rotation, target, dt, s.tuning.FootInterpSpeed)
	}
	return p
}
