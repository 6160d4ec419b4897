package messages

import "github.com/automoto/hitscan-mp/shared/netconfig"

// Reliable client -> authority requests. All of them are fire-and-forget and
// validated on receipt; an invalid request is dropped without a reply.

// RequestSetRunning asks the authority to apply a running state change the
// client already predicted locally.
type RequestSetRunning struct {
	ActorID netconfig.NetID
	Running bool
}

// RequestEquipWeapon asks the authority to equip a slot. Only Primary and
// Secondary are accepted.
type RequestEquipWeapon struct {
	ActorID netconfig.NetID
	Slot    netconfig.WeaponSlot
}

// RequestStartFire starts the authority's fire loop for the equipped weapon.
type RequestStartFire struct {
	ActorID netconfig.NetID
}

// RequestStopFire stops the authority's fire loop.
type RequestStopFire struct {
	ActorID netconfig.NetID
}

// RequestReload asks the equipped weapon to reload.
type RequestReload struct {
	ActorID netconfig.NetID
}

// RequestMove carries the latest movement input. Movement itself is simulated
// outside the combat core; it is what CanRun and the aim camera read from.
type RequestMove struct {
	ActorID  netconfig.NetID
	Sequence uint32
	MoveX    float64 // forward/back input in [-1, 1]
	MoveY    float64 // strafe input in [-1, 1]
	Yaw      float64 // degrees
	Pitch    float64 // degrees
	Jump     bool
	Crouch   bool
}
