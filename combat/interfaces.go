package combat

import (
	"time"

	"github.com/automoto/hitscan-mp/shared/netconfig"
	"github.com/go-gl/mathgl/mgl64"
)

// Scorer credits kills. Called exactly once per death.
type Scorer interface {
	ScoreKill(killer, victim netconfig.ControllerID)
}

// DamageModifier turns requested damage into actual damage (team rules,
// match state, armor).
type DamageModifier interface {
	ModifyDamage(victim *Actor, amount float32, ev DamageEvent, instigator netconfig.ControllerID, causer netconfig.NetID) float32
}

// PassthroughDamage applies damage unchanged.
type PassthroughDamage struct{}

func (PassthroughDamage) ModifyDamage(_ *Actor, amount float32, _ DamageEvent, _ netconfig.ControllerID, _ netconfig.NetID) float32 {
	return amount
}

// ControllerNotifier delivers UI notifications to player controllers.
// Controllers without a UI are simply not notified.
type ControllerNotifier interface {
	NotifyReceivedDamage(ctrl netconfig.ControllerID, sourceLocation mgl64.Vec3)
	NotifyWeaponHit(ctrl netconfig.ControllerID)
}

// Movement is the character movement simulation an actor reads from.
type Movement interface {
	IsFalling() bool
	IsCrouched() bool
	Crouch()
	UnCrouch()
	Location() mgl64.Vec3
	Forward() mgl64.Vec3
	LastMovementInput() mgl64.Vec3
	AimLocation() mgl64.Vec3
	AimDirection() mgl64.Vec3
	// StopReplication freezes authoritative movement updates for the actor.
	StopReplication()
	// Disable stops and locks movement once the body goes ragdoll.
	Disable()
}

// Cosmetics plays local-only feedback. A dedicated server uses NopCosmetics.
type Cosmetics interface {
	PlayTrail(weapon netconfig.NetID, start, end mgl64.Vec3)
	PlayImpact(weapon netconfig.NetID, hit TraceResult)
	AttachWeapon(weapon, holder netconfig.NetID)
	// PlayDeathAnimation returns the animation length, or zero when none is
	// configured.
	PlayDeathAnimation(actor netconfig.NetID) time.Duration
	EnableRagdoll(actor netconfig.NetID)
	OnReceiveHit(actor netconfig.NetID, info HitInfo)
}

// NopCosmetics ignores every cosmetic request.
type NopCosmetics struct{}

func (NopCosmetics) PlayTrail(netconfig.NetID, mgl64.Vec3, mgl64.Vec3) {}
func (NopCosmetics) PlayImpact(netconfig.NetID, TraceResult)           {}
func (NopCosmetics) AttachWeapon(netconfig.NetID, netconfig.NetID)     {}
func (NopCosmetics) PlayDeathAnimation(netconfig.NetID) time.Duration  { return 0 }
func (NopCosmetics) EnableRagdoll(netconfig.NetID)                     {}
func (NopCosmetics) OnReceiveHit(netconfig.NetID, HitInfo)             {}

// Damageable receives damage.
type Damageable interface {
	TakeDamage(amount float32, ev DamageEvent, instigator netconfig.ControllerID, causer netconfig.NetID) float32
}

// World resolves handles and provides the shared simulation services.
type World interface {
	LineTrace(start, end mgl64.Vec3, ignore netconfig.NetID) TraceResult
	Damageable(id netconfig.NetID) (Damageable, bool)
	Location(id netconfig.NetID) (mgl64.Vec3, bool)
	Weapon(id netconfig.NetID) (*Weapon, bool)
	// After runs fn on the simulation goroutine once d has elapsed.
	After(d time.Duration, fn func())
	// SetLifespan destroys id once d has elapsed.
	SetLifespan(id netconfig.NetID, d time.Duration)
}

// Replicator is the authority's handle on the replication bridge.
type Replicator interface {
	TearOff(id netconfig.NetID)
}
