// Package combat holds the character combat state machine shared by the
// authority and every observer: health and death, running, weapon slots,
// damage routing and instant-hit shots.
package combat

import (
	"github.com/automoto/hitscan-mp/shared/netconfig"
	"github.com/go-gl/mathgl/mgl64"
)

// HitInfo describes the last hit an actor received. ForceReplicateCounter
// changes on every hit so two identical hits still replicate as two.
type HitInfo struct {
	DamageCauser          netconfig.NetID `msgpack:"causer"`
	Damage                float32         `msgpack:"damage"`
	HitBone               string          `msgpack:"bone"`
	HitLocation           mgl64.Vec3      `msgpack:"loc"`
	HitDirection          mgl64.Vec3      `msgpack:"dir"`
	ForceReplicateCounter uint8           `msgpack:"n"`
}

// ShotRecord is the last authoritative shot of a weapon. FireToggle flips on
// every shot so repeated identical targets still replicate.
type ShotRecord struct {
	Target     mgl64.Vec3 `msgpack:"target"`
	FireToggle bool       `msgpack:"toggle"`
}

// DamageEvent is either PointDamage or RadialDamage.
type DamageEvent interface {
	damageEvent()
}

// PointDamage comes from an instant-hit trace.
type PointDamage struct {
	Location      mgl64.Vec3
	Bone          string
	ShotDirection mgl64.Vec3
}

// RadialDamage comes from an explosion centered on Origin.
type RadialDamage struct {
	Origin mgl64.Vec3
}

func (PointDamage) damageEvent()  {}
func (RadialDamage) damageEvent() {}

// TraceResult is the outcome of a line trace.
type TraceResult struct {
	Blocking bool
	Impact   mgl64.Vec3
	Normal   mgl64.Vec3
	Actor    netconfig.NetID // zero when world geometry was hit
	Bone     string
	Material string
}

// ShotData is one computed shot. Each process computes its own.
type ShotData struct {
	Start        mgl64.Vec3
	Direction    mgl64.Vec3
	Impact       TraceResult
	ImpactNeeded bool
	Seed         uint64
}

// End is where the shot stops: the impact point or the end of its range.
func (s ShotData) End(maxRange float64) mgl64.Vec3 {
	if s.ImpactNeeded {
		return s.Impact.Impact
	}
	return s.Start.Add(s.Direction.Mul(maxRange))
}
