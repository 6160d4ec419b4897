package core

import (
	"sort"
	"time"

	"github.com/automoto/hitscan-mp/combat"
	"github.com/automoto/hitscan-mp/shared/netconfig"
	"github.com/go-gl/mathgl/mgl64"
)

type timer struct {
	at  time.Duration
	seq uint64
	fn  func()
}

// simWorld is the combat.World of the authority. Every method runs on the
// tick goroutine.
type simWorld struct {
	s *Server
}

var _ combat.World = simWorld{}

func (w simWorld) LineTrace(start, end mgl64.Vec3, ignore netconfig.NetID) combat.TraceResult {
	return w.s.arena.LineTrace(start, end, ignore)
}

func (w simWorld) Damageable(id netconfig.NetID) (combat.Damageable, bool) {
	st, ok := w.s.actors[id]
	if !ok {
		return nil, false
	}
	return st.actor, true
}

func (w simWorld) Location(id netconfig.NetID) (mgl64.Vec3, bool) {
	st, ok := w.s.actors[id]
	if !ok {
		return mgl64.Vec3{}, false
	}
	return st.mover.Location(), true
}

func (w simWorld) Weapon(id netconfig.NetID) (*combat.Weapon, bool) {
	wp, ok := w.s.weapons[id]
	return wp, ok
}

func (w simWorld) After(d time.Duration, fn func()) {
	w.s.after(d, fn)
}

func (w simWorld) SetLifespan(id netconfig.NetID, d time.Duration) {
	w.s.lifespans[id] = w.s.now + d
}

func (s *Server) after(d time.Duration, fn func()) {
	s.timerSeq++
	s.timers = append(s.timers, timer{at: s.now + d, seq: s.timerSeq, fn: fn})
}

// runTimers fires every timer due at the current simulation time, oldest
// first. Timers added by a callback wait for the next tick.
func (s *Server) runTimers() {
	var due, pending []timer
	for _, t := range s.timers {
		if t.at <= s.now {
			due = append(due, t)
		} else {
			pending = append(pending, t)
		}
	}
	s.timers = pending

	sort.Slice(due, func(i, j int) bool {
		if due[i].at != due[j].at {
			return due[i].at < due[j].at
		}
		return due[i].seq < due[j].seq
	})
	for _, t := range due {
		t.fn()
	}
}

// expireLifespans destroys every object whose lifespan ran out.
func (s *Server) expireLifespans() {
	var expired []netconfig.NetID
	for id, at := range s.lifespans {
		if at <= s.now {
			expired = append(expired, id)
		}
	}
	sort.Slice(expired, func(i, j int) bool { return expired[i] < expired[j] })

	for _, id := range expired {
		delete(s.lifespans, id)
		s.destroyObject(id)
	}
}
