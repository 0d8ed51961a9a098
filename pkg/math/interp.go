package math

import "math"

// InterpSnap is the remaining distance below which interpolation lands exactly
// on its target.
const InterpSnap = 1e-6

// InterpAlpha returns the fraction of the remaining distance covered in one
// step of length dt at the given speed: 1 - exp(-speed*dt).
func InterpAlpha(dt, speed float32) float32 {
	return float32(1 - math.Exp(-float64(speed)*float64(dt)))
}

// FInterpTo moves current toward target so that the remaining error decays by
// exp(-speed*dt). The step never overshoots and is framerate independent.
// A non-positive speed jumps straight to target; a non-positive dt holds.
func FInterpTo(current, target, dt, speed float32) float32 {
	if speed <= 0 {
		return target
	}
	if dt <= 0 {
		return current
	}
	dist := target - current
	if absf(dist) < InterpSnap {
		return target
	}
	return current + dist*InterpAlpha(dt, speed)
}

// RInterpTo is FInterpTo for rotators. Each axis takes the shortest way around.
func RInterpTo(current, target Rotator, dt, speed float32) Rotator {
	if speed <= 0 {
		return target.Normalize()
	}
	if dt <= 0 {
		return current
	}
	delta := target.Sub(current).Normalize()
	if delta.IsNearlyZero(InterpSnap) {
		return target.Normalize()
	}
	return current.Add(delta.Scale(InterpAlpha(dt, speed))).Normalize()
}
