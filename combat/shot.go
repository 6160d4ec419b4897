package combat

import (
	"math/rand/v2"

	"github.com/automoto/hitscan-mp/config"
	"github.com/automoto/hitscan-mp/events"
	"github.com/automoto/hitscan-mp/replication"
	"github.com/automoto/hitscan-mp/shared/gamemath"
	"github.com/automoto/hitscan-mp/shared/netconfig"
	"github.com/go-gl/mathgl/mgl64"
)

// SeedSource returns the seed for one shot's spread stream.
type SeedSource func() uint64

// InstantShot is the hit-scan behavior of a weapon. Every process samples
// spread with its own seed, so the firing client's trail and the
// authority's damage trace can differ; only the authority's result deals
// damage.
type InstantShot struct {
	weapon *Weapon
	record *replication.Field[ShotRecord]

	// Seeds defaults to a fresh random seed per shot.
	Seeds SeedSource
}

func newInstantShot(w *Weapon) *InstantShot {
	s := &InstantShot{
		weapon: w,
		record: replication.NewField(netconfig.FieldShotRecord, replication.CondSkipOwner, ShotRecord{}),
		Seeds:  rand.Uint64,
	}
	s.record.OnRep(s.OnRepShotRecord)
	return s
}

// Record returns the last authoritative shot.
func (s *InstantShot) Record() ShotRecord { return s.record.Get() }

// ComputeShot samples a trajectory from the holder's aim camera and traces
// it. It reports false when the holder, its camera or the world is missing.
func (s *InstantShot) ComputeShot() (ShotData, bool) {
	w := s.weapon
	h := w.holder
	if h == nil || h.deps.Movement == nil || w.deps.World == nil {
		return ShotData{}, false
	}
	m := h.deps.Movement
	aim := gamemath.SafeNormal(m.AimDirection())
	if aim == (mgl64.Vec3{}) {
		return ShotData{}, false
	}

	seed := s.Seeds()
	stream := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	start := m.AimLocation()
	dir := gamemath.RandCone(stream, aim, mgl64.DegToRad(w.CurrentSpread()))
	end := start.Add(dir.Mul(config.Weapon.MaxShotRange))

	impact := w.deps.World.LineTrace(start, end, h.ID())
	return ShotData{
		Start:        start,
		Direction:    dir,
		Impact:       impact,
		ImpactNeeded: impact.Blocking,
		Seed:         seed,
	}, true
}

// PreInvokeShot plays the firing process's own trajectory right away.
func (s *InstantShot) PreInvokeShot(shot ShotData) {
	end := shot.End(config.Weapon.MaxShotRange)
	s.SimulateFire(end, false)
}

// InvokeShot resolves a shot on the authority: damage on impact, then the
// shot record update that replays it on other observers.
func (s *InstantShot) InvokeShot(shot ShotData) {
	w := s.weapon
	if w.role != netconfig.RoleAuthority {
		return
	}
	end := shot.End(config.Weapon.MaxShotRange)

	if shot.ImpactNeeded && shot.Impact.Actor != 0 && w.deps.World != nil {
		if target, ok := w.deps.World.Damageable(shot.Impact.Actor); ok {
			var instigator netconfig.ControllerID
			var causer netconfig.NetID
			if w.holder != nil {
				instigator = w.holder.Controller()
				causer = w.holder.ID()
			}
			ev := PointDamage{
				Location:      shot.Impact.Impact,
				Bone:          shot.Impact.Bone,
				ShotDirection: shot.Direction.Mul(-1),
			}
			target.TakeDamage(w.stats.Damage, ev, instigator, causer)
		}
	}

	prev := s.record.Get()
	s.record.Set(ShotRecord{
		Target:     gamemath.Quantize10(end),
		FireToggle: !prev.FireToggle,
	})

	w.publish(events.ShotFired, ShotEvent{
		Weapon:        w.id,
		Start:         shot.Start,
		End:           end,
		Impact:        shot.ImpactNeeded,
		Authoritative: true,
	})
}

// OnRepShotRecord replays the authority's shot on a non-owning observer.
func (s *InstantShot) OnRepShotRecord(ShotRecord) {
	s.SimulateFire(s.record.Get().Target, true)
}

// SimulateFire plays trail and impact from the weapon's muzzle toward
// target. It traces again locally to find the impact surface.
func (s *InstantShot) SimulateFire(target mgl64.Vec3, replay bool) {
	w := s.weapon
	start, ok := w.FireLocation()
	if !ok {
		return
	}

	impact := false
	if w.deps.World != nil {
		// Extend slightly so a target lying on a surface still hits it.
		dir := gamemath.SafeNormal(target.Sub(start))
		hit := w.deps.World.LineTrace(start, target.Add(dir), w.holder.ID())
		if hit.Blocking {
			impact = true
			w.deps.Cosmetics.PlayImpact(w.id, hit)
		}
	}
	w.deps.Cosmetics.PlayTrail(w.id, start, target)

	kind := events.ShotFired
	if replay {
		kind = events.ShotReplayed
	}
	w.publish(kind, ShotEvent{Weapon: w.id, Start: start, End: target, Impact: impact})
}
