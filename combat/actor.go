package combat

import (
	"math"
	"time"

	"github.com/automoto/hitscan-mp/config"
	"github.com/automoto/hitscan-mp/events"
	"github.com/automoto/hitscan-mp/replication"
	"github.com/automoto/hitscan-mp/shared/gamemath"
	"github.com/automoto/hitscan-mp/shared/messages"
	"github.com/automoto/hitscan-mp/shared/netconfig"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
)

// Deps wires actors and weapons to their collaborators. Nil members turn the
// operations that need them into no-ops.
type Deps struct {
	World      World
	Movement   Movement
	Scorer     Scorer
	Modifier   DamageModifier
	Notifier   ControllerNotifier
	Cosmetics  Cosmetics
	Caller     replication.Caller
	Replicator Replicator
	Bus        *events.Bus
	Logger     zerolog.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Modifier == nil {
		d.Modifier = PassthroughDamage{}
	}
	if d.Cosmetics == nil {
		d.Cosmetics = NopCosmetics{}
	}
	return d
}

// ActorOptions selects how a process holds an actor.
type ActorOptions struct {
	Role              netconfig.Role
	LocallyControlled bool
	Controller        netconfig.ControllerID
}

// Actor is a combat character. The authority owns health, death and shot
// outcomes; observers mirror them and may only predict running and the
// active weapon slot.
type Actor struct {
	id                netconfig.NetID
	role              netconfig.Role
	locallyControlled bool
	controller        netconfig.ControllerID

	deps   Deps
	router *DamageRouter

	life            netconfig.LifeState
	actionsDisabled bool
	jumpCounter     int

	health     *replication.Field[int32]
	isDying    *replication.Field[bool]
	isRunning  *replication.Field[bool]
	activeSlot *replication.Field[netconfig.WeaponSlot]
	weapons    *replication.Field[[netconfig.SlotCount]netconfig.NetID]
	hitInfo    *replication.Field[HitInfo]

	slots [netconfig.SlotCount]*Weapon
}

// NewActor creates an actor at full health with the primary slot active.
func NewActor(opts ActorOptions, deps Deps) *Actor {
	deps = deps.withDefaults()
	a := &Actor{
		role:              opts.Role,
		locallyControlled: opts.LocallyControlled,
		controller:        opts.Controller,
		deps:              deps,

		health:     replication.NewField(netconfig.FieldHealth, replication.CondAlways, config.Character.MaxHealth),
		isDying:    replication.NewField(netconfig.FieldIsDying, replication.CondAlways, false),
		isRunning:  replication.NewField(netconfig.FieldIsRunning, replication.CondSkipOwner, false),
		activeSlot: replication.NewField(netconfig.FieldActiveWeaponSlot, replication.CondSkipOwner, netconfig.SlotPrimary),
		weapons:    replication.NewField(netconfig.FieldWeapons, replication.CondInitialOnly, [netconfig.SlotCount]netconfig.NetID{}),
		hitInfo:    replication.NewField(netconfig.FieldReceiveHitInfo, replication.CondAlways, HitInfo{}),
	}
	a.router = &DamageRouter{
		World:      deps.World,
		Notifier:   deps.Notifier,
		Cosmetics:  deps.Cosmetics,
		Bus:        deps.Bus,
		RadialBone: config.Character.DefaultRadialBone,
	}

	a.weapons.OnRep(func([netconfig.SlotCount]netconfig.NetID) { a.OnRepWeapons() })
	a.activeSlot.OnRep(a.onRepActiveSlot)
	a.isRunning.OnRep(func(bool) { a.publish(events.RunningChanged, RunningEvent{Actor: a.id, Running: a.isRunning.Get()}) })
	a.health.OnRep(func(old int32) {
		a.publish(events.HealthChanged, HealthEvent{Actor: a.id, Old: old, New: a.health.Get()})
	})
	a.hitInfo.OnRep(func(HitInfo) { a.onRepHitInfo() })
	a.isDying.OnRep(func(bool) { a.OnRepIsDying() })

	return a
}

// Fields returns the replicated fields. Weapons come first so slot hooks can
// resolve them within the same update.
func (a *Actor) Fields() []replication.Value {
	return []replication.Value{a.weapons, a.activeSlot, a.isRunning, a.health, a.hitInfo, a.isDying}
}

func (a *Actor) SetNetID(id netconfig.NetID)            { a.id = id }
func (a *Actor) ID() netconfig.NetID                    { return a.id }
func (a *Actor) Role() netconfig.Role                   { return a.role }
func (a *Actor) IsLocallyControlled() bool              { return a.locallyControlled }
func (a *Actor) Controller() netconfig.ControllerID     { return a.controller }
func (a *Actor) LifeState() netconfig.LifeState         { return a.life }
func (a *Actor) Health() int32                          { return a.health.Get() }
func (a *Actor) IsDying() bool                          { return a.isDying.Get() }
func (a *Actor) IsRunning() bool                        { return a.isRunning.Get() }
func (a *Actor) ActiveWeaponSlot() netconfig.WeaponSlot { return a.activeSlot.Get() }
func (a *Actor) HitInfo() HitInfo                       { return a.hitInfo.Get() }
func (a *Actor) ActionsDisabled() bool                  { return a.actionsDisabled }

// Weapons returns the slot-indexed weapon ids. Zero marks an empty slot.
func (a *Actor) Weapons() [netconfig.SlotCount]netconfig.NetID { return a.weapons.Get() }

// Location returns the movement location, or the origin without movement.
func (a *Actor) Location() mgl64.Vec3 {
	if a.deps.Movement == nil {
		return mgl64.Vec3{}
	}
	return a.deps.Movement.Location()
}

// SetMovement binds the movement simulation once the body exists.
func (a *Actor) SetMovement(m Movement) {
	a.deps.Movement = m
}

// PossessedBy attaches a controller.
func (a *Actor) PossessedBy(ctrl netconfig.ControllerID) {
	a.controller = ctrl
	if w := a.EquippedWeapon(); w != nil {
		w.AttachToOwner()
	}
}

// TakeDamage applies damage on the authority and returns the actual amount.
// Dead actors and observers ignore it.
func (a *Actor) TakeDamage(amount float32, ev DamageEvent, instigator netconfig.ControllerID, causer netconfig.NetID) float32 {
	if a.role != netconfig.RoleAuthority || a.health.Get() <= 0 {
		return 0
	}

	actual := a.deps.Modifier.ModifyDamage(a, amount, ev, instigator, causer)
	if actual <= 0 {
		return actual
	}

	a.router.Apply(a, actual, ev, instigator, causer)

	old := a.health.Get()
	remaining := int32(math.Trunc(float64(old) - float64(actual)))
	if remaining < 0 {
		remaining = 0
	}
	a.health.Set(remaining)
	a.publish(events.HealthChanged, HealthEvent{Actor: a.id, Old: old, New: remaining})

	if remaining <= 0 {
		a.Die(ev, instigator)
	}
	return actual
}

// Die runs the one-way death transition on the authority.
func (a *Actor) Die(ev DamageEvent, killer netconfig.ControllerID) {
	if a.isDying.Get() {
		return
	}
	a.isDying.Set(true)
	a.life = netconfig.LifeDying

	if m := a.deps.Movement; m != nil {
		m.StopReplication()
	}
	if r := a.deps.Replicator; r != nil {
		r.TearOff(a.id)
		a.life = netconfig.LifeTornOff
	}

	victim := a.controller
	if a.deps.Scorer != nil {
		a.deps.Scorer.ScoreKill(killer, victim)
	}
	a.controller = 0

	for _, w := range a.slots {
		if w != nil {
			w.TearOff()
		}
	}

	a.publish(events.Died, DeathEvent{Actor: a.id, Killer: killer, Victim: victim, Event: ev})
	a.OnRepIsDying()
}

// OnRepIsDying runs on every process once the actor is dying: weapons stop
// and expire, the death animation plays and the body goes ragdoll.
func (a *Actor) OnRepIsDying() {
	if a.life == netconfig.LifeActive {
		a.life = netconfig.LifeDying
	}
	world := a.deps.World

	for _, w := range a.slots {
		if w == nil {
			continue
		}
		w.StopFire()
		if world != nil {
			world.SetLifespan(w.ID(), config.Death.WeaponLifespan)
		}
	}

	length := a.deps.Cosmetics.PlayDeathAnimation(a.id)
	if length > 0 && world != nil {
		world.After(min(config.Death.RagdollDelay, length), a.enableRagdoll)
		return
	}
	a.enableRagdoll()
}

func (a *Actor) enableRagdoll() {
	a.deps.Cosmetics.EnableRagdoll(a.id)
	if m := a.deps.Movement; m != nil {
		m.Disable()
	}
	if w := a.deps.World; w != nil {
		w.SetLifespan(a.id, config.Death.ActorLifespan)
	}
	a.publish(events.RagdollStarted, RagdollEvent{Actor: a.id})
}

// CanRun holds while grounded and actions are enabled.
func (a *Actor) CanRun() bool {
	if a.actionsDisabled {
		return false
	}
	return a.deps.Movement == nil || !a.deps.Movement.IsFalling()
}

// SetRunning predicts the running state locally and forwards it to the
// authority when this process is not it.
func (a *Actor) SetRunning(running bool) {
	if a.isRunning.Get() == running || (running && !a.CanRun()) {
		return
	}
	a.isRunning.Set(running)

	if running {
		if w := a.EquippedWeapon(); w != nil {
			w.StopFire()
		}
		if m := a.deps.Movement; m != nil {
			m.UnCrouch()
		}
	}
	a.publish(events.RunningChanged, RunningEvent{Actor: a.id, Running: running})

	if a.role != netconfig.RoleAuthority {
		a.call(messages.RequestSetRunning{ActorID: a.id, Running: running})
	}
}

// ToggleRunning flips the running state.
func (a *Actor) ToggleRunning() {
	a.SetRunning(!a.isRunning.Get())
}

// MovementModifier scales movement speed while running.
func (a *Actor) MovementModifier() float64 {
	if a.isRunning.Get() {
		return config.Character.RunningMovementModifier
	}
	return 1.0
}

// SetDisableActions blocks firing, running and reloading.
func (a *Actor) SetDisableActions(disabled bool) {
	a.actionsDisabled = disabled
	if !disabled {
		return
	}
	if w := a.EquippedWeapon(); w != nil {
		w.StopFire()
	}
	if a.isRunning.Get() {
		a.isRunning.Set(false)
		a.publish(events.RunningChanged, RunningEvent{Actor: a.id, Running: false})
	}
}

// Jump cancels running and reports whether another jump is allowed. The
// caller applies the jump to movement when it returns true.
func (a *Actor) Jump() bool {
	a.SetRunning(false)

	if a.jumpCounter >= config.Character.MaxJumps {
		return false
	}
	if a.jumpCounter == 0 && a.deps.Movement != nil && a.deps.Movement.IsFalling() {
		return false
	}
	a.jumpCounter++
	return true
}

// Landed resets the jump counter.
func (a *Actor) Landed() {
	a.jumpCounter = 0
}

// Crouch cancels running before crouching.
func (a *Actor) Crouch() {
	a.SetRunning(false)
	if m := a.deps.Movement; m != nil {
		m.Crouch()
	}
}

// IsFirstPerson holds for the living, locally controlled actor.
func (a *Actor) IsFirstPerson() bool {
	return !a.isDying.Get() && a.locallyControlled
}

// AimSpread returns the equipped weapon's spread in degrees.
func (a *Actor) AimSpread() float64 {
	if w := a.EquippedWeapon(); w != nil {
		return w.CurrentSpread()
	}
	return 0
}

// Tick cancels running when input leaves the forward cone and advances the
// equipped weapon.
func (a *Actor) Tick(dt time.Duration) {
	if a.isRunning.Get() && a.locallyControlled && a.deps.Movement != nil {
		m := a.deps.Movement
		if gamemath.HeadingDeviates(m.LastMovementInput(), m.Forward(), config.Character.RunHeadingTolerance) {
			a.SetRunning(false)
		}
	}

	if w := a.EquippedWeapon(); w != nil {
		w.Tick(dt)
	}
}

func (a *Actor) publish(kind events.Kind, payload any) {
	if a.deps.Bus != nil {
		a.deps.Bus.Publish(kind, payload)
	}
}

func (a *Actor) call(msg any) {
	if a.deps.Caller == nil {
		return
	}
	if err := a.deps.Caller.Call(msg); err != nil {
		a.deps.Logger.Debug().Err(err).Uint32("actor", uint32(a.id)).Msg("request not sent")
	}
}

// TornOff marks the mirror as final. Replication target hook.
func (a *Actor) TornOff() {
	a.life = netconfig.LifeTornOff
}

// Destroyed stops the actor's weapons when the authority removes it.
// Replication target hook.
func (a *Actor) Destroyed() {
	for _, w := range a.slots {
		if w != nil {
			w.StopFire()
		}
	}
	a.life = netconfig.LifeTornOff
}

func (a *Actor) onRepHitInfo() {
	info := a.hitInfo.Get()
	a.deps.Cosmetics.OnReceiveHit(a.id, info)
	a.publish(events.HitReceived, HitEvent{Actor: a.id, Info: info})
}
