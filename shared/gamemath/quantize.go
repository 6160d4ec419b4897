package gamemath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Quantize10 rounds each component to one decimal place, the precision used
// for replicated locations.
func Quantize10(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{
		math.Round(v.X()*10) / 10,
		math.Round(v.Y()*10) / 10,
		math.Round(v.Z()*10) / 10,
	}
}

// QuantizeNormal snaps a unit vector to 16 bits per component.
func QuantizeNormal(v mgl64.Vec3) mgl64.Vec3 {
	const scale = 32767
	q := func(f float64) float64 {
		return math.Round(mgl64.Clamp(f, -1, 1)*scale) / scale
	}
	return mgl64.Vec3{q(v.X()), q(v.Y()), q(v.Z())}
}
