package ik

import "github.com/Faultbox/stance-ik/pkg/math"

// ProbeResult is one foot's ground probe for the current tick.
type ProbeResult struct {
	Hit bool
	// Distance from the far end of the probe back up to the hit point, so a
	// hit right at the nominal ground plane reads ProbeDistance.
	Distance float32
	Normal   math.Vec3
}

// ProbeSegment returns the vertical probe under a socket. It starts at the
// character origin height and ends halfHeight+probeDistance below it.
func ProbeSegment(socket math.Vec3, originZ, halfHeight, probeDistance float32) (start, end math.Vec3) {
	start = socket.WithZ(originZ)
	end = socket.WithZ(originZ - halfHeight - probeDistance)
	return start, end
}

// Probe casts a downward probe under socket through the host.
// A nil host is a programming error and panics.
func Probe(host Host, socket math.Vec3, originZ, halfHeight, probeDistance float32) ProbeResult {
	start, end := ProbeSegment(socket, originZ, halfHeight, probeDistance)
	hit, ok := host.ProbeGround(start, end)
	if !ok {
		return ProbeResult{}
	}
	return ProbeResult{
		Hit:      true,
		Distance: hit.Location.Distance(end),
		Normal:   hit.Normal,
	}
}
