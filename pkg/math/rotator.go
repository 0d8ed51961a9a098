package math

import "math"

// Rotator is an Euler orientation in degrees.
// Pitch turns about Y, Yaw about Z and Roll about X.
type Rotator struct {
	Pitch, Yaw, Roll float32
}

// Add returns r + other, component-wise.
func (r Rotator) Add(other Rotator) Rotator {
	return Rotator{r.Pitch + other.Pitch, r.Yaw + other.Yaw, r.Roll + other.Roll}
}

// Sub returns r - other, component-wise.
func (r Rotator) Sub(other Rotator) Rotator {
	return Rotator{r.Pitch - other.Pitch, r.Yaw - other.Yaw, r.Roll - other.Roll}
}

// Scale returns r * s, component-wise.
func (r Rotator) Scale(s float32) Rotator {
	return Rotator{r.Pitch * s, r.Yaw * s, r.Roll * s}
}

// Normalize wraps every component into (-180, 180].
func (r Rotator) Normalize() Rotator {
	return Rotator{NormalizeAxis(r.Pitch), NormalizeAxis(r.Yaw), NormalizeAxis(r.Roll)}
}

// IsNearlyZero reports whether every component is within tolerance of zero.
func (r Rotator) IsNearlyZero(tolerance float32) bool {
	return absf(r.Pitch) <= tolerance && absf(r.Yaw) <= tolerance && absf(r.Roll) <= tolerance
}

// Equals reports whether r and other describe the same orientation within
// tolerance degrees per axis, accounting for wrap-around.
func (r Rotator) Equals(other Rotator, tolerance float32) bool {
	return r.Sub(other).Normalize().IsNearlyZero(tolerance)
}

// Quat converts the rotator to a quaternion applying roll, then pitch, then yaw.
func (r Rotator) Quat() Quat {
	roll := QuatFromAxisAngle(Vec3{1, 0, 0}, DegToRad(r.Roll))
	pitch := QuatFromAxisAngle(Vec3{0, 1, 0}, DegToRad(r.Pitch))
	yaw := QuatFromAxisAngle(Up, DegToRad(r.Yaw))
	return yaw.Mul(pitch).Mul(roll).Normalize()
}

// NormalizeAxis wraps an angle in degrees into (-180, 180].
func NormalizeAxis(deg float32) float32 {
	a := float32(math.Mod(float64(deg), 360))
	if a <= -180 {
		a += 360
	} else if a > 180 {
		a -= 360
	}
	return a
}

// DegToRad converts degrees to radians.
func DegToRad(deg float32) float32 {
	return deg * math.Pi / 180
}

// RadToDeg converts radians to degrees.
func RadToDeg(rad float32) float32 {
	return rad * 180 / math.Pi
}

// Atan2Deg returns atan2(y, x) in degrees.
func Atan2Deg(y, x float32) float32 {
	return RadToDeg(float32(math.Atan2(float64(y), float64(x))))
}

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
