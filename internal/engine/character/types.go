// Package character moves characters across the ground.
package character

// GroundQuery provides ground height for character movement.
type GroundQuery interface {
	// HeightAt returns the top of the highest walkable surface between fromZ
	// and toZ under (x, y).
	HeightAt(x, y, fromZ, toZ float32) (float32, bool)
}
