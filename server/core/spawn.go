package core

import (
	"math"

	"github.com/automoto/hitscan-mp/arena"
	"github.com/automoto/hitscan-mp/combat"
	"github.com/automoto/hitscan-mp/config"
	"github.com/automoto/hitscan-mp/shared/messages"
	"github.com/automoto/hitscan-mp/shared/netcomponents"
	"github.com/automoto/hitscan-mp/shared/netconfig"
	"github.com/automoto/hitscan-mp/tags"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/leap-fish/necs/esync/srvsync"
	"github.com/yohamta/donburi"
)

// actorState is the authority's bookkeeping for one actor.
type actorState struct {
	actor   *combat.Actor
	mover   *arena.Mover
	entity  donburi.Entity
	weapons []netconfig.NetID
	input   messages.RequestMove
}

func (s *Server) actorDeps() combat.Deps {
	return combat.Deps{
		World:      simWorld{s},
		Scorer:     s.mode,
		Modifier:   s.mode,
		Notifier:   s,
		Replicator: s.bridge,
		Bus:        s.bus,
		Logger:     s.logger,
	}
}

// spawnActor creates an actor with the default loadout for c at the next
// spawn point and registers it for replication.
func (s *Server) spawnActor(c *controller) *actorState {
	pos, yaw := s.nextSpawn()

	actor := combat.NewActor(combat.ActorOptions{Role: netconfig.RoleAuthority, Controller: c.id}, s.actorDeps())
	obj := s.bridge.Register(netconfig.KindActor, 0, c.id, actor.Fields()...)
	actor.SetNetID(obj.ID())

	mover := arena.NewMover(s.arena.AddBody(obj.ID(), pos), yaw)
	actor.SetMovement(mover)

	st := &actorState{actor: actor, mover: mover}

	for i, typeName := range config.Weapon.DefaultLoadout {
		slot := netconfig.WeaponSlot(i)
		if slot >= netconfig.SlotCount {
			break
		}
		w := combat.NewWeapon(typeName, netconfig.RoleAuthority, s.actorDeps())
		wobj := s.bridge.Register(netconfig.KindWeapon, obj.ID(), c.id, w.Fields()...)
		w.SetNetID(wobj.ID())
		s.weapons[wobj.ID()] = w
		st.weapons = append(st.weapons, wobj.ID())
		actor.GiveWeapon(slot, w)
	}

	entity := s.world.Create(netcomponents.NetTransform, tags.Actor)
	st.entity = entity
	entry := s.world.Entry(entity)
	netcomponents.NetTransform.SetValue(entry, transformOf(obj.ID(), st))
	if err := srvsync.NetworkSync(s.world, &entity, srvsync.WithInterp(netcomponents.NetTransform)); err != nil {
		s.logger.Error().Err(err).Msg("network sync setup failed")
	}

	s.actors[obj.ID()] = st
	s.setControllerActor(c, obj.ID())
	s.send(c.id, messages.Possessed{ActorID: obj.ID()})

	s.logger.Info().
		Uint32("controller", uint32(c.id)).
		Uint32("actor", uint32(obj.ID())).
		Str("name", c.name).
		Msg("actor spawned")
	return st
}

// nextSpawn rotates through the level's spawn points.
func (s *Server) nextSpawn() (mgl64.Vec3, float64) {
	spawns := s.arena.SpawnPoints()
	if len(spawns) == 0 {
		w, h := s.arena.Size()
		return mgl64.Vec3{w / 2, h / 2, 0}, 0
	}
	sp := spawns[s.spawnCursor%len(spawns)]
	s.spawnCursor++
	return mgl64.Vec3{sp.X, sp.Y, sp.Z}, mgl64.DegToRad(sp.Yaw)
}

// destroyObject removes an actor or weapon everywhere. Torn-off objects are
// already gone from the bridge, so only local state is dropped for them.
func (s *Server) destroyObject(id netconfig.NetID) {
	if st, ok := s.actors[id]; ok {
		s.arena.RemoveBody(id)
		if s.world.Valid(st.entity) {
			s.world.Remove(st.entity)
		}
		delete(s.actors, id)
		delete(s.lifespans, id)
		s.bridge.Destroy(id)
		return
	}
	if _, ok := s.weapons[id]; ok {
		delete(s.weapons, id)
		delete(s.lifespans, id)
		s.bridge.Destroy(id)
	}
}

// removeActor destroys a living actor and its weapons, e.g. when its player
// leaves.
func (s *Server) removeActor(id netconfig.NetID) {
	st, ok := s.actors[id]
	if !ok {
		return
	}
	for _, wid := range st.weapons {
		s.destroyObject(wid)
	}
	s.destroyObject(id)
}

func transformOf(id netconfig.NetID, st *actorState) netcomponents.NetTransformData {
	m := st.mover
	loc, vel := m.Location(), m.Velocity()
	return netcomponents.NetTransformData{
		ActorID:   id,
		X:         loc.X(),
		Y:         loc.Y(),
		Z:         loc.Z(),
		Yaw:       math.Mod(mgl64.RadToDeg(m.Yaw())+360, 360),
		Pitch:     mgl64.RadToDeg(m.Pitch()),
		VelX:      vel.X(),
		VelY:      vel.Y(),
		VelZ:      vel.Z(),
		Crouched:  m.IsCrouched(),
		Falling:   m.IsFalling(),
		LastInput: st.input.Sequence,
	}
}
