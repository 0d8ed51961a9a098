// Package terrain provides heightmap ground for the reference simulation.
package terrain

import "github.com/Faultbox/stance-ik/pkg/math"

// Heightmap is a regular grid of vertex heights over the XY plane.
// Heights[x][y] is the height of vertex (x, y); cell (x, y) spans vertices
// (x, y) to (x+1, y+1). Queries outside the grid see the nearest edge.
type Heightmap struct {
	Heights  [][]float32 // 2D array [x][y] of vertex heights
	VertsX   int         // Number of vertices in X direction
	VertsY   int         // Number of vertices in Y direction
	CellSize float32     // Size of each cell in world units
	Origin   math.Vec3   // World position of vertex (0, 0); Z is ignored
}

// Bounds returns the XY extent of the grid.
func (h *Heightmap) Bounds() (lo, hi math.Vec3) {
	lo = math.Vec3{X: h.Origin.X, Y: h.Origin.Y}
	hi = math.Vec3{
		X: h.Origin.X + float32(h.VertsX-1)*h.CellSize,
		Y: h.Origin.Y + float32(h.VertsY-1)*h.CellSize,
	}
	return lo, hi
}
