package terrain

import (
	"errors"
	"fmt"
	gomath "math"

	"github.com/Faultbox/stance-ik/pkg/math"
)

// ErrBadGrid is returned for heightmaps that cannot form at least one cell.
var ErrBadGrid = errors.New("heightmap needs at least 2x2 vertices and a positive cell size")

// New allocates a heightmap of vertsX*vertsY vertices, all at height z.
func New(vertsX, vertsY int, cellSize float32, origin math.Vec3, z float32) (*Heightmap, error) {
	if vertsX < 2 || vertsY < 2 || cellSize <= 0 {
		return nil, ErrBadGrid
	}
	heights := make([][]float32, vertsX)
	for x := 0; x < vertsX; x++ {
		heights[x] = make([]float32, vertsY)
		for y := 0; y < vertsY; y++ {
			heights[x][y] = z
		}
	}
	return &Heightmap{
		Heights:  heights,
		VertsX:   vertsX,
		VertsY:   vertsY,
		CellSize: cellSize,
		Origin:   origin,
	}, nil
}

// Flat returns a level heightmap centered on the world origin.
func Flat(cells int, cellSize, z float32) (*Heightmap, error) {
	return New(cells+1, cells+1, cellSize, centered(cells, cellSize), z)
}

// Slope returns a plane centered on the world origin that rises by deg
// degrees along +X and passes through z=0 at the origin.
func Slope(cells int, cellSize, deg float32) (*Heightmap, error) {
	h, err := New(cells+1, cells+1, cellSize, centered(cells, cellSize), 0)
	if err != nil {
		return nil, err
	}
	grad := float32(gomath.Tan(float64(math.DegToRad(deg))))
	for x := 0; x < h.VertsX; x++ {
		wx := h.Origin.X + float32(x)*cellSize
		for y := 0; y < h.VertsY; y++ {
			h.Heights[x][y] = wx * grad
		}
	}
	return h, nil
}

// FromRows builds a heightmap from rows of heights, rows[y][x], the layout
// used in config files. Every row must have the same length.
func FromRows(rows [][]float32, cellSize float32, origin math.Vec3) (*Heightmap, error) {
	if len(rows) < 2 || len(rows[0]) < 2 {
		return nil, ErrBadGrid
	}
	h, err := New(len(rows[0]), len(rows), cellSize, origin, 0)
	if err != nil {
		return nil, err
	}
	for y, row := range rows {
		if len(row) != h.VertsX {
			return nil, fmt.Errorf("heightmap row %d has %d heights, want %d", y, len(row), h.VertsX)
		}
		for x, z := range row {
			h.Heights[x][y] = z
		}
	}
	return h, nil
}

func centered(cells int, cellSize float32) math.Vec3 {
	half := float32(cells) * cellSize / 2
	return math.Vec3{X: -half, Y: -half}
}

// cellAt locates a world XY position on the grid. It returns the cell index
// and the fractional position inside it (0-1). inX/inY are false when the
// position lies outside the grid on that axis, where the ground is flat.
func (h *Heightmap) cellAt(worldX, worldY float32) (cx, cy int, fx, fy float32, inX, inY bool) {
	cx, fx, inX = locate((worldX-h.Origin.X)/h.CellSize, h.VertsX-1)
	cy, fy, inY = locate((worldY-h.Origin.Y)/h.CellSize, h.VertsY-1)
	return
}

func locate(f float32, cells int) (int, float32, bool) {
	if f < 0 {
		return 0, 0, false
	}
	if f >= float32(cells) {
		return cells - 1, 1, f == float32(cells)
	}
	c := int(f)
	return c, f - float32(c), true
}

// corners returns the cell's corner heights: SW, SE, NW, NE.
func (h *Heightmap) corners(cx, cy int) (sw, se, nw, ne float32) {
	return h.Heights[cx][cy], h.Heights[cx+1][cy], h.Heights[cx][cy+1], h.Heights[cx+1][cy+1]
}

// HeightAt returns the bilinearly interpolated ground height at a world position.
func (h *Heightmap) HeightAt(worldX, worldY float32) float32 {
	cx, cy, fx, fy, _, _ := h.cellAt(worldX, worldY)
	sw, se, nw, ne := h.corners(cx, cy)

	// South edge (lower Y): lerp between SW and SE
	south := sw*(1-fx) + se*fx
	// North edge (higher Y): lerp between NW and NE
	north := nw*(1-fx) + ne*fx
	return south*(1-fy) + north*fy
}

// NormalAt returns the unit surface normal of the bilinear patch at a world position.
func (h *Heightmap) NormalAt(worldX, worldY float32) math.Vec3 {
	cx, cy, fx, fy, inX, inY := h.cellAt(worldX, worldY)
	sw, se, nw, ne := h.corners(cx, cy)

	var dhdx, dhdy float32
	if inX {
		dhdx = ((se-sw)*(1-fy) + (ne-nw)*fy) / h.CellSize
	}
	if inY {
		south := sw*(1-fx) + se*fx
		north := nw*(1-fx) + ne*fx
		dhdy = (north - south) / h.CellSize
	}
	return math.Vec3{X: -dhdx, Y: -dhdy, Z: 1}.Normalize()
}

// Contains reports whether a world XY position lies on the grid.
func (h *Heightmap) Contains(worldX, worldY float32) bool {
	lo, hi := h.Bounds()
	return worldX >= lo.X && worldX <= hi.X && worldY >= lo.Y && worldY <= hi.Y
}

// Hit is a ground intersection.
type Hit struct {
	Location math.Vec3
	Normal   math.Vec3
	Fraction float32 // Position along the traced segment, 0 at start and 1 at end
}

// Trace marches a quarter cell at a time, then bisects the crossing.
const (
	marchPerCell   = 4
	bisectionSteps = 24
)

// Trace finds where the segment start→end first passes below the ground.
// A segment that starts below ground hits at its start.
func (h *Heightmap) Trace(start, end math.Vec3) (Hit, bool) {
	below := func(p math.Vec3) float32 { return p.Z - h.HeightAt(p.X, p.Y) }

	// Vertical segments cross the ground exactly once.
	if start.X == end.X && start.Y == end.Y {
		z := h.HeightAt(start.X, start.Y)
		normal := h.NormalAt(start.X, start.Y)
		switch {
		case start.Z <= z:
			return Hit{Location: start, Normal: normal}, true
		case end.Z > z:
			return Hit{}, false
		}
		frac := (start.Z - z) / (start.Z - end.Z)
		return Hit{Location: start.WithZ(z), Normal: normal, Fraction: frac}, true
	}

	if below(start) <= 0 {
		return Hit{Location: start, Normal: h.NormalAt(start.X, start.Y)}, true
	}

	length := start.Sub(end).Length2D()
	steps := int(gomath.Ceil(float64(length * marchPerCell / h.CellSize)))
	if steps < 1 {
		steps = 1
	}

	t0 := float32(0)
	for i := 1; i <= steps; i++ {
		t1 := float32(i) / float32(steps)
		if below(start.Lerp(end, t1)) > 0 {
			t0 = t1
			continue
		}
		for j := 0; j < bisectionSteps; j++ {
			mid := (t0 + t1) / 2
			if below(start.Lerp(end, mid)) > 0 {
				t0 = mid
			} else {
				t1 = mid
			}
		}
		p := start.Lerp(end, t1)
		p.Z = h.HeightAt(p.X, p.Y)
		return Hit{Location: p, Normal: h.NormalAt(p.X, p.Y), Fraction: t1}, true
	}
	return Hit{}, false
}
