package core

import (
	"sort"
	"time"

	"github.com/automoto/hitscan-mp/shared/netcomponents"
	"github.com/automoto/hitscan-mp/shared/netconfig"
)

// Movement is sub-stepped at this rate whatever the tick rate is.
const physicsRate = 60

// Tick advances the simulation by dt. Commands queued by the transport run
// first and replication goes out last, so every change made during the
// tick reaches observers in the same flush.
func (s *Server) Tick(dt time.Duration) {
	s.ProcessCommands()
	s.mode.Update()

	s.updatePhysics(dt)
	for _, id := range s.actorIDs() {
		if st, ok := s.actors[id]; ok {
			st.actor.Tick(dt)
		}
	}

	s.now += dt
	s.runTimers()
	s.expireLifespans()

	s.syncTransforms()
	s.bridge.Flush()
}

// Now returns the simulated time since the server started.
func (s *Server) Now() time.Duration { return s.now }

// TickInterval is the simulated time one Tick should advance.
func (s *Server) TickInterval() time.Duration { return s.loop.Interval() }

// updatePhysics runs sub-stepped movement for every actor.
func (s *Server) updatePhysics(dt time.Duration) {
	steps := physicsRate / s.loop.tickRate
	if steps < 1 {
		steps = 1
	}
	sub := dt / time.Duration(steps)
	ids := s.actorIDs()

	for step := 0; step < steps; step++ {
		for _, id := range ids {
			st := s.actors[id]
			if st.mover.IsDisabled() {
				continue
			}
			if st.mover.Step(sub, st.actor.MovementModifier()) {
				st.actor.Landed()
			}
		}
	}
}

// syncTransforms writes the esync transform of every actor whose movement
// still replicates.
func (s *Server) syncTransforms() {
	for id, st := range s.actors {
		if st.mover.IsStopped() || !s.world.Valid(st.entity) {
			continue
		}
		netcomponents.NetTransform.SetValue(s.world.Entry(st.entity), transformOf(id, st))
	}
}

func (s *Server) actorIDs() []netconfig.NetID {
	ids := make([]netconfig.NetID, 0, len(s.actors))
	for id := range s.actors {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
