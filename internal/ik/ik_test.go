package ik

import (
	gomath "math"
	"math/rand"
	"testing"

	"github.com/Faultbox/stance-ik/pkg/math"
)

const dt = float32(1.0 / 60)

func near(a, b, eps float32) bool {
	return gomath.Abs(float64(a-b)) <= float64(eps)
}

func newTestSolver(t *testing.T) *Solver {
	t.Helper()
	s, err := NewSolver(DefaultTuning(), nil)
	if err != nil {
		t.Fatalf("NewSolver: %v", err)
	}
	return s
}

func run(s *Solver, st *State, h Host, ticks int) {
	for i := 0; i < ticks; i++ {
		s.Advance(st, h, dt)
	}
}

func TestProbeMeasuresFromFarEnd(t *testing.T) {
	h := newFakeHost(ground{z: 0, normal: flat}, ground{miss: true})
	socket := h.SocketLocation(DefaultLeftSocket)

	start, end := ProbeSegment(socket, 96, 96, 55)
	if start != (math.Vec3{X: 5, Y: -12, Z: 96}) || end != (math.Vec3{X: 5, Y: -12, Z: -55}) {
		t.Fatalf("segment = %v -> %v", start, end)
	}

	p := Probe(h, socket, 96, 96, 55)
	if !p.Hit || p.Distance != 55 || p.Normal != flat {
		t.Errorf("left probe = %+v, want hit at distance 55", p)
	}

	p = Probe(h, h.SocketLocation(DefaultRightSocket), 96, 96, 55)
	if p.Hit {
		t.Errorf("right probe should miss, got %+v", p)
	}
}

func TestScenarioFlatGround(t *testing.T) {
	tun := DefaultTuning()
	offset, rot, ok := FootTarget(ProbeResult{Hit: true, Distance: tun.ProbeDistance, Normal: flat}, tun)
	if !ok || offset != 2 {
		t.Errorf("offset = %v (ok=%v), want 2", offset, ok)
	}
	if rot != (math.Rotator{}) {
		t.Errorf("rotation = %v, want zero", rot)
	}
	if got := HipTarget(offset, offset); got != 0 {
		t.Errorf("hip target = %v, want 0", got)
	}

	s := newTestSolver(t)
	h := newFakeHost(ground{z: 0, normal: flat}, ground{z: 0, normal: flat})
	st := NewState(tun)
	run(s, &st, h, 600)

	if st.Left.Offset != 2 || st.Right.Offset != 2 {
		t.Errorf("foot offsets = %v, %v, want 2", st.Left.Offset, st.Right.Offset)
	}
	if st.Hip.Offset != 0 {
		t.Errorf("hip offset = %v, want 0", st.Hip.Offset)
	}
	if h.capsule != tun.BaseCapsuleHalfHeight {
		t.Errorf("capsule = %v, want unchanged %v", h.capsule, tun.BaseCapsuleHalfHeight)
	}
	if !near(st.Left.Effector, 2, 1e-4) || !near(st.Right.Effector, 2, 1e-4) {
		t.Errorf("effectors = %v, %v, want 2", st.Left.Effector, st.Right.Effector)
	}
}

func TestScenarioOneFootLowOtherUnsupported(t *testing.T) {
	tun := DefaultTuning()
	offset, _, _ := FootTarget(ProbeResult{Hit: true, Distance: tun.ProbeDistance - 10, Normal: flat}, tun)
	if offset != -8 {
		t.Errorf("left target = %v, want -8", offset)
	}

	s := newTestSolver(t)
	// Probe end is at z=-55, so ground at z=-10 is hit 45 units up from it.
	h := newFakeHost(ground{z: -10, normal: flat}, ground{miss: true})
	st := NewState(tun)

	s.Advance(&st, h, dt)
	if st.Left.Offset != -8 || st.Right.Offset != 0 {
		t.Fatalf("offsets = %v, %v, want -8, 0", st.Left.Offset, st.Right.Offset)
	}
	if st.Hip.Offset >= 0 || st.Hip.Offset <= -8 {
		t.Errorf("hip should be easing toward -8, got %v", st.Hip.Offset)
	}

	run(s, &st, h, 2000)
	if st.Hip.Offset != -8 {
		t.Errorf("hip = %v, want -8", st.Hip.Offset)
	}
	if !near(h.capsule, tun.BaseCapsuleHalfHeight-4, 1e-4) {
		t.Errorf("capsule = %v, want %v", h.capsule, tun.BaseCapsuleHalfHeight-4)
	}
	if st.Hip.CapsuleHalfHeight != h.capsule {
		t.Errorf("hip state capsule %v differs from host %v", st.Hip.CapsuleHalfHeight, h.capsule)
	}
	if !near(st.Left.Effector, 0, 1e-4) || !near(st.Right.Effector, 8, 1e-4) {
		t.Errorf("effectors = %v, %v, want 0, 8", st.Left.Effector, st.Right.Effector)
	}
}

func TestScenarioSlopedNormal(t *testing.T) {
	rad := float64(10 * gomath.Pi / 180)
	n := math.Vec3{X: float32(gomath.Sin(rad)), Y: 0, Z: float32(gomath.Cos(rad))}

	rot := SurfaceRotation(n)
	if !near(rot.Pitch, -10, 1e-4) || !near(rot.Roll, 0, 1e-4) || rot.Yaw != 0 {
		t.Errorf("rotation = %+v, want pitch -10 roll 0", rot)
	}

	roll := SurfaceRotation(math.Vec3{X: 0, Y: float32(gomath.Sin(rad)), Z: float32(gomath.Cos(rad))})
	if !near(roll.Roll, 10, 1e-4) || !near(roll.Pitch, 0, 1e-4) {
		t.Errorf("rotation = %+v, want roll 10", roll)
	}

	s := newTestSolver(t)
	h := newFakeHost(ground{z: 0, normal: n}, ground{z: 0, normal: n})
	st := NewState(DefaultTuning())
	run(s, &st, h, 600)
	if !st.Left.Rotation.Equals(rot, 1e-3) {
		t.Errorf("left foot rotation = %+v, want %+v", st.Left.Rotation, rot)
	}
}

func TestHipNeverRises(t *testing.T) {
	s := newTestSolver(t)
	h := newFakeHost(ground{}, ground{})
	st := NewState(DefaultTuning())
	rng := rand.New(rand.NewSource(7))

	randomGround := func() ground {
		if rng.Intn(5) == 0 {
			return ground{miss: true}
		}
		// Anywhere in the probe range, including above the nominal plane.
		return ground{z: rng.Float32()*140 - 50, normal: flat}
	}

	for tick := 0; tick < 5000; tick++ {
		h.ground[DefaultLeftSocket] = randomGround()
		h.ground[DefaultRightSocket] = randomGround()
		s.Advance(&st, h, dt*float32(1+rng.Intn(4)))
		if st.Hip.Offset > 0 {
			t.Fatalf("tick %d: hip offset %v > 0", tick, st.Hip.Offset)
		}
		if h.capsule <= 0 || h.capsule > DefaultBaseCapsuleHalfHeight {
			t.Fatalf("tick %d: capsule %v out of (0, %v]", tick, h.capsule, DefaultBaseCapsuleHalfHeight)
		}
	}
}

func TestMissResetsOffsetAndHoldsRotation(t *testing.T) {
	s := newTestSolver(t)
	n := math.Vec3{X: 0.3, Y: 0.1, Z: 1}.Normalize()
	h := newFakeHost(ground{z: -20, normal: n}, ground{z: 0, normal: flat})
	st := NewState(DefaultTuning())
	run(s, &st, h, 30)

	if st.Left.Offset == 0 {
		t.Fatal("left offset should be non-zero before the miss")
	}
	rot := st.Left.Rotation

	h.ground[DefaultLeftSocket] = ground{miss: true}
	s.Advance(&st, h, dt)
	if st.Left.Offset != 0 {
		t.Errorf("offset after miss = %v, want exactly 0", st.Left.Offset)
	}
	if st.Left.Rotation != rot {
		t.Errorf("rotation changed on miss: %v -> %v", rot, st.Left.Rotation)
	}
}

func TestSteadyGroundReachesFixedPoint(t *testing.T) {
	s := newTestSolver(t)
	n := math.Vec3{X: -0.2, Y: 0.15, Z: 1}.Normalize()
	h := newFakeHost(ground{z: -14, normal: n}, ground{z: 6, normal: flat})
	st := NewState(DefaultTuning())
	run(s, &st, h, 3000)

	before := st
	capsule := h.capsule
	run(s, &st, h, 10)

	const eps = 1e-5
	if !near(st.Hip.Offset, before.Hip.Offset, eps) ||
		!near(st.Left.Effector, before.Left.Effector, eps) ||
		!near(st.Right.Effector, before.Right.Effector, eps) ||
		!near(h.capsule, capsule, eps) ||
		!st.Left.Rotation.Equals(before.Left.Rotation, eps) {
		t.Errorf("state still moving at steady ground:\nbefore %+v\nafter  %+v", before, st)
	}
	if st.Left.Offset != before.Left.Offset || st.Right.Offset != before.Right.Offset {
		t.Errorf("foot offsets drifted: %+v vs %+v", before, st)
	}
}

func TestLeftRightSymmetry(t *testing.T) {
	a := ground{z: -12, normal: math.Vec3{X: 0.1, Y: -0.2, Z: 1}.Normalize()}
	b := ground{z: 3, normal: math.Vec3{X: -0.05, Y: 0.3, Z: 1}.Normalize()}

	s := newTestSolver(t)
	h1 := newFakeHost(a, b)
	h2 := newFakeHost(b, a)
	st1 := NewState(DefaultTuning())
	st2 := NewState(DefaultTuning())

	for i := 0; i < 120; i++ {
		s.Advance(&st1, h1, dt)
		s.Advance(&st2, h2, dt)

		if st1.Left.Offset != st2.Right.Offset || st1.Right.Offset != st2.Left.Offset {
			t.Fatalf("tick %d: offsets not mirrored", i)
		}
		if st1.Left.Rotation != st2.Right.Rotation || st1.Right.Rotation != st2.Left.Rotation {
			t.Fatalf("tick %d: rotations not mirrored", i)
		}
		if st1.Left.Effector != st2.Right.Effector || st1.Right.Effector != st2.Left.Effector {
			t.Fatalf("tick %d: effectors not mirrored", i)
		}
		if st1.Hip.Offset != st2.Hip.Offset {
			t.Fatalf("tick %d: hip %v vs %v", i, st1.Hip.Offset, st2.Hip.Offset)
		}
	}
}

func TestMovingCharacterHoldsState(t *testing.T) {
	s := newTestSolver(t)
	h := newFakeHost(ground{z: -10, normal: flat}, ground{z: 0, normal: flat})
	st := NewState(DefaultTuning())
	run(s, &st, h, 20)

	before := st
	capsule := h.capsule
	probes := h.probes

	h.speed = 150
	h.ground[DefaultLeftSocket] = ground{miss: true}
	if _, ran := s.Advance(&st, h, dt); ran {
		t.Fatal("Advance ran while moving")
	}
	if st.Phase != PhaseSuspended {
		t.Errorf("phase = %v, want suspended", st.Phase)
	}
	before.Phase = PhaseSuspended
	if st != before || h.capsule != capsule || h.probes != probes {
		t.Errorf("state changed while suspended")
	}

	h.speed = 0
	if _, ran := s.Advance(&st, h, dt); !ran || st.Phase != PhaseActive {
		t.Errorf("should resume when stopped, phase %v", st.Phase)
	}
}

func TestGateHysteresis(t *testing.T) {
	tun := DefaultTuning()
	tun.StationarySpeed = 1
	tun.ResumeHysteresis = 4

	s, err := NewSolver(tun, nil)
	if err != nil {
		t.Fatal(err)
	}
	st := NewState(tun)

	steps := []struct {
		speed float32
		want  Phase
	}{
		{0, PhaseActive},
		{3, PhaseActive},    // within the band while active
		{6, PhaseSuspended}, // beyond 1+4
		{3, PhaseSuspended}, // must drop to 1 to resume
		{1, PhaseActive},
	}
	for i, step := range steps {
		s.gate(&st, step.speed)
		if st.Phase != step.want {
			t.Errorf("step %d speed %v: phase %v, want %v", i, step.speed, st.Phase, step.want)
		}
	}

	// Without hysteresis the raw threshold toggles every tick.
	tun.ResumeHysteresis = 0
	s, _ = NewSolver(tun, nil)
	st = NewState(tun)
	for i, speed := range []float32{1.01, 0.99, 1.01, 0.99} {
		s.gate(&st, speed)
		want := PhaseSuspended
		if i%2 == 1 {
			want = PhaseActive
		}
		if st.Phase != want {
			t.Errorf("speed %v: phase %v, want %v", speed, st.Phase, want)
		}
	}
}

func TestAdvanceReturnsProbes(t *testing.T) {
	s := newTestSolver(t)
	h := newFakeHost(ground{z: -10, normal: flat}, ground{miss: true})
	st := NewState(DefaultTuning())

	p, ran := s.Advance(&st, h, dt)
	if !ran {
		t.Fatal("Advance did not run")
	}
	if !p.Left.Hit || p.Left.Distance != 45 {
		t.Errorf("left probe = %+v", p.Left)
	}
	if p.Right.Hit {
		t.Errorf("right probe = %+v, want miss", p.Right)
	}
	if h.probes != 2 {
		t.Errorf("probes = %d, want 2", h.probes)
	}
}

func TestPose(t *testing.T) {
	st := State{
		Left:  FootState{Effector: -1, Rotation: math.Rotator{Pitch: 3}},
		Right: FootState{Effector: 2, Rotation: math.Rotator{Roll: -4}},
		Hip:   HipState{Offset: -5},
	}
	want := Pose{
		LeftEffector:  -1,
		RightEffector: 2,
		LeftRotation:  math.Rotator{Pitch: 3},
		RightRotation: math.Rotator{Roll: -4},
		HipOffset:     -5,
	}
	if got := st.Pose(); got != want {
		t.Errorf("Pose() = %+v, want %+v", got, want)
	}
	if st.Foot(Right) != &st.Right {
		t.Error("Foot(Right) should point at Right")
	}
}
