package messages

import "github.com/automoto/hitscan-mp/shared/netconfig"

// JoinRequest is sent by a client after connecting to request joining the game.
type JoinRequest struct {
	Version    string
	PlayerName string
}

// JoinAccepted is sent by the server when a client's join request is accepted.
// ActorID is the actor the client controls locally.
type JoinAccepted struct {
	ActorID    netconfig.NetID
	Controller netconfig.ControllerID
	ServerName string
	TickRate   int
	Level      string
}

// JoinRejected is sent by the server when a client's join request is rejected.
type JoinRejected struct {
	Reason string
}

// Possessed tells a client which actor it controls. Sent on every spawn,
// before the actor's first replication update.
type Possessed struct {
	ActorID netconfig.NetID
}
