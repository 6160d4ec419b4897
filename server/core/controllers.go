package core

import (
	"github.com/automoto/hitscan-mp/shared/messages"
	"github.com/automoto/hitscan-mp/shared/netconfig"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/yohamta/donburi"
)

// Peer is a connected client. *router.NetworkClient satisfies it.
type Peer interface {
	Id() string
	SendMessage(msg any) error
}

// ControllerInfo is the donburi view of a joined player.
type ControllerInfo struct {
	ID    netconfig.ControllerID
	Name  string
	Actor netconfig.NetID // zero while waiting to respawn
}

var Controller = donburi.NewComponentType[ControllerInfo]()

// controller is a joined player. Actors refer to it by id only.
type controller struct {
	id     netconfig.ControllerID
	name   string
	peer   Peer
	entity donburi.Entity
	actor  netconfig.NetID
}

func (s *Server) setControllerActor(c *controller, actor netconfig.NetID) {
	c.actor = actor
	if s.world.Valid(c.entity) {
		Controller.Get(s.world.Entry(c.entity)).Actor = actor
	}
}

func (s *Server) send(ctrl netconfig.ControllerID, msg any) {
	c, ok := s.controllers[ctrl]
	if !ok {
		return
	}
	if err := c.peer.SendMessage(msg); err != nil {
		s.logger.Debug().Err(err).Uint32("controller", uint32(ctrl)).Msg("send failed")
	}
}

// NotifyReceivedDamage implements combat.ControllerNotifier.
func (s *Server) NotifyReceivedDamage(ctrl netconfig.ControllerID, sourceLocation mgl64.Vec3) {
	s.send(ctrl, messages.ClientNotifyReceivedDamage{SourceLocation: sourceLocation})
}

// NotifyWeaponHit implements combat.ControllerNotifier.
func (s *Server) NotifyWeaponHit(ctrl netconfig.ControllerID) {
	s.send(ctrl, messages.ClientNotifyWeaponHit{})
}

// peerObserver receives replication for one controller.
type peerObserver struct {
	id   netconfig.ControllerID
	peer Peer
}

func (o peerObserver) ObserverID() netconfig.ControllerID { return o.id }

func (o peerObserver) SendReplication(batch messages.ReplicationBatch) error {
	return o.peer.SendMessage(batch)
}

func (o peerObserver) SendDestroy(msg messages.ReplicationDestroy) error {
	return o.peer.SendMessage(msg)
}

func (s *Server) controllerName(id netconfig.ControllerID) string {
	if c, ok := s.controllers[id]; ok {
		return c.name
	}
	return ""
}
