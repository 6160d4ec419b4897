package core

import (
	"github.com/automoto/hitscan-mp/arena"
	"github.com/automoto/hitscan-mp/config"
	"github.com/automoto/hitscan-mp/shared/messages"
	"github.com/automoto/hitscan-mp/shared/netconfig"
	"github.com/automoto/hitscan-mp/tags"
	"github.com/go-gl/mathgl/mgl64"
)

// enqueue schedules fn for the start of the next tick. Safe from any
// goroutine.
func (s *Server) enqueue(fn func()) {
	s.mu.Lock()
	s.commands = append(s.commands, fn)
	s.mu.Unlock()
}

// ProcessCommands runs every queued command in arrival order.
func (s *Server) ProcessCommands() {
	s.mu.Lock()
	cmds := s.commands
	s.commands = nil
	s.mu.Unlock()

	for _, fn := range cmds {
		fn()
	}
}

func (s *Server) onJoin(peer Peer, req messages.JoinRequest) {
	if _, joined := s.peers[peer.Id()]; joined {
		return
	}
	if s.version != "" && req.Version != s.version {
		s.reject(peer, "version mismatch: server requires "+s.version)
		return
	}
	if limit := config.Server.MaxPlayers; limit > 0 && len(s.controllers) >= limit {
		s.reject(peer, "server full")
		return
	}

	s.nextController++
	c := &controller{
		id:   s.nextController,
		name: req.PlayerName,
		peer: peer,
	}
	if c.name == "" {
		c.name = "player"
	}
	c.entity = s.world.Create(Controller, tags.Controller)
	Controller.SetValue(s.world.Entry(c.entity), ControllerInfo{ID: c.id, Name: c.name})

	s.controllers[c.id] = c
	s.peers[peer.Id()] = c
	s.setPlayers(len(s.controllers))

	s.bridge.AddObserver(peerObserver{id: c.id, peer: peer})
	st := s.spawnActor(c)

	if err := peer.SendMessage(messages.JoinAccepted{
		ActorID:    st.actor.ID(),
		Controller: c.id,
		ServerName: s.name,
		TickRate:   s.loop.tickRate,
		Level:      s.level,
	}); err != nil {
		s.logger.Warn().Err(err).Str("client", peer.Id()).Msg("join reply failed")
	}

	s.logger.Info().
		Str("client", peer.Id()).
		Uint32("controller", uint32(c.id)).
		Str("name", c.name).
		Msg("player joined")
	s.mode.PlayerJoined()
}

func (s *Server) reject(peer Peer, reason string) {
	s.logger.Info().Str("client", peer.Id()).Str("reason", reason).Msg("join rejected")
	if err := peer.SendMessage(messages.JoinRejected{Reason: reason}); err != nil {
		s.logger.Debug().Err(err).Str("client", peer.Id()).Msg("reject send failed")
	}
}

func (s *Server) onDisconnect(peer Peer, err error) {
	if err != nil {
		s.logger.Info().Err(err).Str("client", peer.Id()).Msg("client disconnected")
	} else {
		s.logger.Info().Str("client", peer.Id()).Msg("client disconnected")
	}

	c, ok := s.peers[peer.Id()]
	if !ok {
		return
	}
	delete(s.peers, peer.Id())
	delete(s.controllers, c.id)
	s.setPlayers(len(s.controllers))

	s.bridge.RemoveObserver(c.id)
	if c.actor != 0 {
		s.removeActor(c.actor)
	}
	if s.world.Valid(c.entity) {
		s.world.Remove(c.entity)
	}
	s.mode.PlayerLeft()
}

// controlledActor resolves the living actor a peer may command.
func (s *Server) controlledActor(peer Peer, actorID netconfig.NetID) (*actorState, bool) {
	c, ok := s.peers[peer.Id()]
	if !ok || actorID == 0 || c.actor != actorID {
		return nil, false
	}
	st, ok := s.actors[actorID]
	if !ok || st.actor.IsDying() {
		return nil, false
	}
	return st, true
}

// onRequest forwards a validated reliable request to the actor.
func (s *Server) onRequest(peer Peer, actorID netconfig.NetID, msg any) {
	st, ok := s.controlledActor(peer, actorID)
	if !ok {
		s.logger.Debug().Str("client", peer.Id()).Uint32("actor", uint32(actorID)).Msgf("%T dropped", msg)
		return
	}
	if !st.actor.HandleRequest(msg) {
		s.logger.Debug().Str("client", peer.Id()).Uint32("actor", uint32(actorID)).Msgf("%T rejected", msg)
	}
}

// onMove stores the latest movement input. Out of order inputs are dropped.
func (s *Server) onMove(peer Peer, msg messages.RequestMove) {
	st, ok := s.controlledActor(peer, msg.ActorID)
	if !ok {
		return
	}
	if msg.Sequence != 0 && msg.Sequence <= st.input.Sequence {
		return
	}
	st.input = msg

	st.mover.SetInput(arena.Input{
		Forward: mgl64.Clamp(msg.MoveX, -1, 1),
		Right:   mgl64.Clamp(msg.MoveY, -1, 1),
		Yaw:     mgl64.DegToRad(msg.Yaw),
		Pitch:   mgl64.DegToRad(msg.Pitch),
	})

	if msg.Jump && st.actor.Jump() {
		st.mover.Launch()
	}
	switch {
	case msg.Crouch && !st.mover.IsCrouched():
		st.actor.Crouch()
	case !msg.Crouch && st.mover.IsCrouched():
		st.mover.UnCrouch()
	}
}

func (s *Server) setPlayers(n int) {
	s.mu.Lock()
	s.players = n
	s.mu.Unlock()
}
