package gamemath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const normalEpsilon = 1e-8

// RandSource is the subset of *rand.Rand used for spread sampling.
type RandSource interface {
	Float64() float64
}

// SafeNormal returns v normalized, or the zero vector when v is too short.
func SafeNormal(v mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l < normalEpsilon {
		return mgl64.Vec3{}
	}
	return v.Mul(1 / l)
}

// SafeNormal2D drops the vertical component and normalizes the rest.
func SafeNormal2D(v mgl64.Vec3) mgl64.Vec3 {
	return SafeNormal(mgl64.Vec3{v.X(), v.Y(), 0})
}

// HeadingDeviates reports whether the horizontal direction of move points more
// than toleranceDeg away from forward. A zero move vector always deviates.
func HeadingDeviates(move, forward mgl64.Vec3, toleranceDeg float64) bool {
	m := SafeNormal2D(move)
	f := SafeNormal2D(forward)
	return m.Dot(f) < math.Cos(mgl64.DegToRad(toleranceDeg))
}

// RandCone returns a unit vector sampled uniformly from the spherical cap of
// the given half angle (radians) around dir.
func RandCone(rng RandSource, dir mgl64.Vec3, halfAngle float64) mgl64.Vec3 {
	axis := SafeNormal(dir)
	if halfAngle <= 0 || axis == (mgl64.Vec3{}) {
		return axis
	}
	if halfAngle > math.Pi {
		halfAngle = math.Pi
	}

	cosPhi := 1 - rng.Float64()*(1-math.Cos(halfAngle))
	sinPhi := math.Sqrt(math.Max(0, 1-cosPhi*cosPhi))
	theta := 2 * math.Pi * rng.Float64()

	right, up := basis(axis)
	offset := right.Mul(math.Cos(theta)).Add(up.Mul(math.Sin(theta)))
	return SafeNormal(axis.Mul(cosPhi).Add(offset.Mul(sinPhi)))
}

// AngleBetween returns the angle in radians between two non-zero vectors.
func AngleBetween(a, b mgl64.Vec3) float64 {
	d := SafeNormal(a).Dot(SafeNormal(b))
	return math.Acos(mgl64.Clamp(d, -1, 1))
}

func basis(axis mgl64.Vec3) (right, up mgl64.Vec3) {
	ref := mgl64.Vec3{0, 0, 1}
	if math.Abs(axis.Z()) > 0.99 {
		ref = mgl64.Vec3{1, 0, 0}
	}
	right = axis.Cross(ref).Normalize()
	up = right.Cross(axis)
	return right, up
}
