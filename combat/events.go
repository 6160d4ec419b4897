package combat

import (
	"github.com/automoto/hitscan-mp/shared/netconfig"
	"github.com/go-gl/mathgl/mgl64"
)

// Bus payloads.

type HealthEvent struct {
	Actor    netconfig.NetID
	Old, New int32
}

type HitEvent struct {
	Actor netconfig.NetID
	Info  HitInfo
}

type DeathEvent struct {
	Actor  netconfig.NetID
	Killer netconfig.ControllerID
	Victim netconfig.ControllerID
	Event  DamageEvent
}

type RunningEvent struct {
	Actor   netconfig.NetID
	Running bool
}

type EquipEvent struct {
	Actor netconfig.NetID
	Slot  netconfig.WeaponSlot
}

type WeaponsEvent struct {
	Actor   netconfig.NetID
	Weapons [netconfig.SlotCount]netconfig.NetID
}

// ShotEvent is published for every shot a process plays or resolves.
// Authoritative is true only for shots that went through InvokeShot.
type ShotEvent struct {
	Weapon        netconfig.NetID
	Start, End    mgl64.Vec3
	Impact        bool
	Authoritative bool
}

type RagdollEvent struct {
	Actor netconfig.NetID
}
