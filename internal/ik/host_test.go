package ik

import "github.com/Faultbox/stance-ik/pkg/math"

// ground describes what a probe finds under one socket.
type ground struct {
	miss   bool
	z      float32
	normal math.Vec3
}

var flat = math.Vec3{X: 0, Y: 0, Z: 1}

// fakeHost is a character standing with its origin at z=96 over ground that
// is defined per socket.
type fakeHost struct {
	loc     math.Vec3
	speed   float32
	sockets map[string]math.Vec3
	ground  map[string]ground
	capsule float32
	probes  int
}

func newFakeHost(left, right ground) *fakeHost {
	return &fakeHost{
		loc: math.Vec3{X: 0, Y: 0, Z: DefaultBaseCapsuleHalfHeight},
		sockets: map[string]math.Vec3{
			DefaultLeftSocket:  {X: 5, Y: -12, Z: 4},
			DefaultRightSocket: {X: 5, Y: 12, Z: 4},
		},
		ground: map[string]ground{
			DefaultLeftSocket:  left,
			DefaultRightSocket: right,
		},
		capsule: DefaultBaseCapsuleHalfHeight,
	}
}

func (h *fakeHost) SocketLocation(name string) math.Vec3 { return h.sockets[name] }
func (h *fakeHost) Location() math.Vec3                  { return h.loc }
func (h *fakeHost) Speed() float32                       { return h.speed }
func (h *fakeHost) CapsuleHalfHeight() float32           { return h.capsule }
func (h *fakeHost) SetCapsuleHalfHeight(v float32)       { h.capsule = v }

func (h *fakeHost) ProbeGround(start, end math.Vec3) (Hit, bool) {
	h.probes++
	for name, s := range h.sockets {
		if s.X != start.X || s.Y != start.Y {
			continue
		}
		g := h.ground[name]
		if g.miss || g.z > start.Z || g.z < end.Z {
			return Hit{}, false
		}
		return Hit{Location: start.WithZ(g.z), Normal: g.normal}, true
	}
	return Hit{}, false
}
