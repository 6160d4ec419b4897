package netcomponents

import (
	"github.com/automoto/hitscan-mp/shared/netconfig"
	"github.com/yohamta/donburi"
)

// NetTransformData is the best-effort movement state of an actor. It stops
// changing once the actor dies: movement replication is frozen then.
type NetTransformData struct {
	ActorID    netconfig.NetID
	X, Y, Z    float64
	Yaw, Pitch float64 // degrees
	VelX, VelY float64 // client extrapolation between snapshots
	VelZ       float64
	Crouched   bool
	Falling    bool
	LastInput  uint32 // last movement input sequence the authority applied
}

var NetTransform = donburi.NewComponentType[NetTransformData]()

// LerpNetTransform interpolates between two transforms.
func LerpNetTransform(from, to NetTransformData, t float64) *NetTransformData {
	return &NetTransformData{
		ActorID:   to.ActorID,
		X:         from.X + (to.X-from.X)*t,
		Y:         from.Y + (to.Y-from.Y)*t,
		Z:         from.Z + (to.Z-from.Z)*t,
		Yaw:       lerpAngle(from.Yaw, to.Yaw, t),
		Pitch:     from.Pitch + (to.Pitch-from.Pitch)*t,
		VelX:      to.VelX,
		VelY:      to.VelY,
		VelZ:      to.VelZ,
		Crouched:  to.Crouched,
		Falling:   to.Falling,
		LastInput: to.LastInput,
	}
}

// lerpAngle takes the short way around the circle.
func lerpAngle(from, to, t float64) float64 {
	d := to - from
	for d > 180 {
		d -= 360
	}
	for d < -180 {
		d += 360
	}
	return from + d*t
}
