package client

import (
	"time"

	"github.com/automoto/hitscan-mp/combat"
	"github.com/automoto/hitscan-mp/shared/netconfig"
	"github.com/go-gl/mathgl/mgl64"
)

// world is the combat.World of an observer. Traces run against the local
// copy of the arena; nothing here is damageable.
type world struct {
	s *Session
}

var _ combat.World = world{}

func (w world) LineTrace(start, end mgl64.Vec3, ignore netconfig.NetID) combat.TraceResult {
	return w.s.arena.LineTrace(start, end, ignore)
}

func (w world) Damageable(netconfig.NetID) (combat.Damageable, bool) {
	return nil, false
}

func (w world) Location(id netconfig.NetID) (mgl64.Vec3, bool) {
	v, ok := w.s.actors[id]
	if !ok {
		return mgl64.Vec3{}, false
	}
	return v.mover.Location(), true
}

func (w world) Weapon(id netconfig.NetID) (*combat.Weapon, bool) {
	wp, ok := w.s.weapons[id]
	return wp, ok
}

func (w world) After(d time.Duration, fn func()) {
	w.s.clock.after(d, fn)
}

func (w world) SetLifespan(id netconfig.NetID, d time.Duration) {
	w.s.clock.setLifespan(id, d)
}
