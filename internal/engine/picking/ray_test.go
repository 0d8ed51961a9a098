package picking

import (
	"testing"

	"github.com/Faultbox/stance-ik/pkg/math"
)

func TestNewAABBSortsCorners(t *testing.T) {
	box := NewAABB(math.Vec3{X: 5, Y: -1, Z: 10}, math.Vec3{X: -5, Y: 1, Z: 0})
	want := AABB{Min: math.Vec3{X: -5, Y: -1, Z: 0}, Max: math.Vec3{X: 5, Y: 1, Z: 10}}
	if box != want {
		t.Errorf("NewAABB() = %+v, want %+v", box, want)
	}
	if !box.Contains(math.Vec3{}) || box.Contains(math.Vec3{Z: 11}) {
		t.Error("Contains() wrong")
	}
}

func TestSegmentIntersectAABB(t *testing.T) {
	step := NewAABB(math.Vec3{X: -10, Y: -10, Z: 0}, math.Vec3{X: 10, Y: 10, Z: 20})

	tests := []struct {
		name       string
		seg        Segment
		wantHit    bool
		wantFrac   float32
		wantNormal math.Vec3
	}{
		{
			name:       "straight down onto top face",
			seg:        Segment{Start: math.Vec3{Z: 100}, End: math.Vec3{Z: -100}},
			wantHit:    true,
			wantFrac:   0.4,
			wantNormal: math.Vec3{Z: 1},
		},
		{
			name:       "sideways into -X face",
			seg:        Segment{Start: math.Vec3{X: -30, Z: 5}, End: math.Vec3{X: 10, Z: 5}},
			wantHit:    true,
			wantFrac:   0.5,
			wantNormal: math.Vec3{X: -1},
		},
		{
			name:    "passes beside",
			seg:     Segment{Start: math.Vec3{X: 20, Z: 100}, End: math.Vec3{X: 20, Z: -100}},
			wantHit: false,
		},
		{
			name:    "stops short",
			seg:     Segment{Start: math.Vec3{Z: 100}, End: math.Vec3{Z: 30}},
			wantHit: false,
		},
		{
			name:       "starts inside",
			seg:        Segment{Start: math.Vec3{Z: 10}, End: math.Vec3{Z: -10}},
			wantHit:    true,
			wantFrac:   0,
			wantNormal: math.Vec3{Z: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frac, normal, hit := tt.seg.IntersectAABB(step)
			if hit != tt.wantHit {
				t.Fatalf("hit = %v, want %v", hit, tt.wantHit)
			}
			if !hit {
				return
			}
			if d := frac - tt.wantFrac; d > 1e-5 || d < -1e-5 {
				t.Errorf("frac = %v, want %v", frac, tt.wantFrac)
			}
			if normal != tt.wantNormal {
				t.Errorf("normal = %v, want %v", normal, tt.wantNormal)
			}
		})
	}
}

func TestSnapToFace(t *testing.T) {
	box := NewAABB(math.Vec3{X: -1, Y: -2, Z: -3}, math.Vec3{X: 1, Y: 2, Z: 3})
	p := math.Vec3{X: 0.5, Y: 0.5, Z: 2.9999998}
	if got := box.SnapToFace(p, math.Vec3{Z: 1}); got.Z != 3 || got.X != 0.5 {
		t.Errorf("SnapToFace(+Z) = %v", got)
	}
	if got := box.SnapToFace(p, math.Vec3{X: -1}); got.X != -1 || got.Z != p.Z {
		t.Errorf("SnapToFace(-X) = %v", got)
	}
}
