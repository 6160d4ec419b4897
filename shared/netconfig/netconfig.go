// Package netconfig defines lightweight types shared between client and server
// for network serialization. It must have zero dependencies on the simulation
// packages so both binaries can import it freely.
package netconfig

// NetID identifies a replicated object (actor or weapon) on every process.
// Zero is never assigned.
type NetID uint32

// ControllerID is a non-owning handle to a controller in the server's
// controller table. Zero means "no controller".
type ControllerID uint32

// Role tells an actor whether it holds ground truth or a mirror.
type Role int

const (
	RoleAuthority Role = iota
	RoleObserver
)

func (r Role) String() string {
	switch r {
	case RoleAuthority:
		return "authority"
	case RoleObserver:
		return "observer"
	}
	return "unknown"
}

// WeaponSlot indexes an actor's weapon loadout.
type WeaponSlot uint8

const (
	SlotPrimary WeaponSlot = iota
	SlotSecondary
	SlotCount // Must follow the last real slot - used for array sizing

	SlotNone WeaponSlot = 0xff
)

// IsEquipSlot reports whether s is one of the slots a client may request.
func (s WeaponSlot) IsEquipSlot() bool {
	return s == SlotPrimary || s == SlotSecondary
}

func (s WeaponSlot) String() string {
	switch s {
	case SlotPrimary:
		return "primary"
	case SlotSecondary:
		return "secondary"
	case SlotNone:
		return "none"
	}
	return "invalid"
}

// LifeState is the health/death state machine of an actor.
type LifeState int

const (
	LifeActive LifeState = iota
	LifeDying
	LifeTornOff // terminal, no further replication
)

func (s LifeState) String() string {
	switch s {
	case LifeActive:
		return "active"
	case LifeDying:
		return "dying"
	case LifeTornOff:
		return "torn_off"
	}
	return "unknown"
}

// ObjectKind distinguishes replicated object types on the wire.
type ObjectKind uint8

const (
	KindActor ObjectKind = iota + 1
	KindWeapon
)

// Replicated field names. Shared so mirror hooks and the authority agree.
const (
	FieldHealth           = "health"
	FieldIsDying          = "isDying"
	FieldIsRunning        = "isRunning"
	FieldActiveWeaponSlot = "activeWeaponSlot"
	FieldReceiveHitInfo   = "receiveHitInfo"
	FieldWeapons          = "weapons"
	FieldShotRecord       = "shotRecord"
	FieldWeaponType       = "weaponType"
)

// MatchStateID represents the current state of a match.
type MatchStateID int

const (
	MatchStateWaiting   MatchStateID = iota // Waiting for players
	MatchStatePlaying                       // Damage and scoring enabled
	MatchStateFinished                      // Match over, damage ignored
)
