package combat

import (
	"time"

	"github.com/automoto/hitscan-mp/config"
	"github.com/automoto/hitscan-mp/events"
	"github.com/automoto/hitscan-mp/replication"
	"github.com/automoto/hitscan-mp/shared/netconfig"
	"github.com/go-gl/mathgl/mgl64"
)

// Distance from the aim camera to the muzzle along the aim direction.
const muzzleOffset = 50.0

// Weapon is an instant-hit gun held by an actor. The authority and the
// holder's own process run its fire loop; everyone else replays shots from
// the replicated shot record.
type Weapon struct {
	id   netconfig.NetID
	role netconfig.Role
	deps Deps

	weaponType *replication.Field[string]
	stats      config.WeaponTypeConfig

	holder   *Actor
	equipped bool
	firing   bool
	cooldown time.Duration
	ammo     int32
	reload   time.Duration
	life     netconfig.LifeState

	shot *InstantShot
}

// NewWeapon creates a weapon of the named type. An empty or unknown type
// leaves zero stats until the type replicates.
func NewWeapon(typeName string, role netconfig.Role, deps Deps) *Weapon {
	w := &Weapon{
		role:       role,
		deps:       deps.withDefaults(),
		weaponType: replication.NewField(netconfig.FieldWeaponType, replication.CondInitialOnly, ""),
	}
	w.shot = newInstantShot(w)
	w.weaponType.OnRep(func(string) { w.applyType(w.weaponType.Get()) })
	w.applyType(typeName)
	return w
}

func (w *Weapon) applyType(name string) {
	w.weaponType.Set(name)
	w.stats = config.Weapon.Types[name]
	w.ammo = w.stats.MagazineSize
}

// Fields returns the replicated fields.
func (w *Weapon) Fields() []replication.Value {
	return []replication.Value{w.weaponType, w.shot.record}
}

func (w *Weapon) SetNetID(id netconfig.NetID)    { w.id = id }
func (w *Weapon) ID() netconfig.NetID            { return w.id }
func (w *Weapon) Type() string                   { return w.weaponType.Get() }
func (w *Weapon) Holder() *Actor                 { return w.holder }
func (w *Weapon) IsEquipped() bool               { return w.equipped }
func (w *Weapon) IsFiring() bool                 { return w.firing }
func (w *Weapon) Ammo() int32                    { return w.ammo }
func (w *Weapon) IsReloading() bool              { return w.reload > 0 }
func (w *Weapon) LifeState() netconfig.LifeState { return w.life }
func (w *Weapon) Shot() *InstantShot             { return w.shot }

// SetOwner links the weapon to its holder.
func (w *Weapon) SetOwner(a *Actor) { w.holder = a }

// CurrentSpread is the cone half angle in degrees.
func (w *Weapon) CurrentSpread() float64 { return w.stats.SpreadDegrees }

// Equip makes the weapon active and attaches it to the holder.
func (w *Weapon) Equip() {
	w.equipped = true
	w.AttachToOwner()
}

// Unequip stops firing and deactivates the weapon.
func (w *Weapon) Unequip() {
	w.StopFire()
	w.equipped = false
}

// AttachToOwner attaches the visual to the holder on whichever process
// calls it.
func (w *Weapon) AttachToOwner() {
	if w.holder == nil {
		return
	}
	w.deps.Cosmetics.AttachWeapon(w.id, w.holder.ID())
}

// FireLocation is the muzzle position used for cosmetic replays.
func (w *Weapon) FireLocation() (mgl64.Vec3, bool) {
	if w.holder == nil || w.holder.deps.Movement == nil {
		return mgl64.Vec3{}, false
	}
	m := w.holder.deps.Movement
	return m.AimLocation().Add(m.AimDirection().Mul(muzzleOffset)), true
}

// StartFire begins the fire loop, shooting immediately when off cooldown.
func (w *Weapon) StartFire() {
	if w.life != netconfig.LifeActive || !w.equipped {
		return
	}
	w.firing = true
	w.tryFire()
}

// StopFire ends the fire loop.
func (w *Weapon) StopFire() {
	w.firing = false
}

// Reload refills the magazine after the reload time.
func (w *Weapon) Reload() {
	if w.reload > 0 || w.ammo >= w.stats.MagazineSize || w.life != netconfig.LifeActive {
		return
	}
	w.StopFire()
	w.reload = w.stats.ReloadTime
	if w.reload <= 0 {
		w.ammo = w.stats.MagazineSize
	}
}

// Tick advances cooldown and reload and fires at most one shot.
func (w *Weapon) Tick(dt time.Duration) {
	if w.cooldown > 0 {
		w.cooldown -= dt
	}
	if w.reload > 0 {
		w.reload -= dt
		if w.reload <= 0 {
			w.reload = 0
			w.ammo = w.stats.MagazineSize
		}
		return
	}
	if w.firing {
		w.tryFire()
	}
}

// TearOff stops replicating the weapon. Authority only.
func (w *Weapon) TearOff() {
	w.firing = false
	w.life = netconfig.LifeTornOff
	if w.role == netconfig.RoleAuthority && w.deps.Replicator != nil {
		w.deps.Replicator.TearOff(w.id)
	}
}

// TornOff is the replication target hook for the final update.
func (w *Weapon) TornOff() {
	w.firing = false
	w.life = netconfig.LifeTornOff
}

// Destroyed is the replication target hook for removal.
func (w *Weapon) Destroyed() {
	w.TornOff()
}

func (w *Weapon) runsFireLoop() bool {
	if w.role == netconfig.RoleAuthority {
		return true
	}
	return w.holder != nil && w.holder.IsLocallyControlled()
}

func (w *Weapon) tryFire() {
	if w.cooldown > 0 || w.reload > 0 || !w.runsFireLoop() {
		return
	}
	if w.ammo <= 0 {
		w.StopFire()
		return
	}

	shot, ok := w.shot.ComputeShot()
	if !ok {
		return
	}
	w.ammo--
	w.cooldown += w.stats.FireInterval
	if w.cooldown < 0 {
		w.cooldown = 0
	}

	if w.role == netconfig.RoleAuthority {
		w.shot.InvokeShot(shot)
		return
	}
	w.shot.PreInvokeShot(shot)
}

func (w *Weapon) publish(kind events.Kind, payload any) {
	if w.deps.Bus != nil {
		w.deps.Bus.Publish(kind, payload)
	}
}
