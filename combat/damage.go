package combat

import (
	"github.com/automoto/hitscan-mp/events"
	"github.com/automoto/hitscan-mp/shared/gamemath"
	"github.com/automoto/hitscan-mp/shared/netconfig"
)

// DamageRouter turns a damage event into the victim's hit info and the
// controller notifications. The caller mutates health afterwards.
type DamageRouter struct {
	World      World
	Notifier   ControllerNotifier
	Cosmetics  Cosmetics
	Bus        *events.Bus
	RadialBone string
}

// Apply records the hit on victim. Dead victims are ignored.
func (r *DamageRouter) Apply(victim *Actor, amount float32, ev DamageEvent, instigator netconfig.ControllerID, causer netconfig.NetID) {
	if victim.Health() <= 0 {
		return
	}

	info := victim.hitInfo.Get()
	info.DamageCauser = causer
	info.Damage = amount

	switch e := ev.(type) {
	case PointDamage:
		info.HitBone = e.Bone
		info.HitLocation = e.Location
		info.HitDirection = e.ShotDirection
	case RadialDamage:
		info.HitBone = r.RadialBone
		info.HitLocation = e.Origin
		info.HitDirection = gamemath.SafeNormal(victim.Location().Sub(e.Origin))
	}
	info.HitLocation = gamemath.Quantize10(info.HitLocation)
	info.HitDirection = gamemath.QuantizeNormal(info.HitDirection)
	info.ForceReplicateCounter++

	victim.hitInfo.Set(info)

	if r.Cosmetics != nil {
		r.Cosmetics.OnReceiveHit(victim.ID(), info)
	}
	if r.Bus != nil {
		r.Bus.Publish(events.HitReceived, HitEvent{Actor: victim.ID(), Info: info})
	}

	if causer == 0 || r.Notifier == nil {
		return
	}
	if ctrl := victim.Controller(); ctrl != 0 && r.World != nil {
		if loc, ok := r.World.Location(causer); ok {
			r.Notifier.NotifyReceivedDamage(ctrl, loc)
		}
	}
	if instigator != 0 {
		r.Notifier.NotifyWeaponHit(instigator)
	}
}
