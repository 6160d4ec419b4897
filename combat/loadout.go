package combat

import (
	"github.com/automoto/hitscan-mp/events"
	"github.com/automoto/hitscan-mp/shared/messages"
	"github.com/automoto/hitscan-mp/shared/netconfig"
)

// GiveWeapon places w in slot on the authority. Must happen before the
// actor's first replication flush since the loadout is sent only once.
func (a *Actor) GiveWeapon(slot netconfig.WeaponSlot, w *Weapon) {
	if slot >= netconfig.SlotCount || w == nil {
		return
	}
	a.slots[slot] = w
	w.SetOwner(a)

	ids := a.weapons.Get()
	ids[slot] = w.ID()
	a.weapons.Set(ids)

	if slot == a.activeSlot.Get() {
		w.Equip()
	}
}

// EquippedWeapon returns the weapon in the active slot, if any.
func (a *Actor) EquippedWeapon() *Weapon {
	return a.weaponAt(a.activeSlot.Get())
}

func (a *Actor) weaponAt(slot netconfig.WeaponSlot) *Weapon {
	if slot >= netconfig.SlotCount {
		return nil
	}
	if w := a.slots[slot]; w != nil {
		return w
	}
	id := a.weapons.Get()[slot]
	if id == 0 || a.deps.World == nil {
		return nil
	}
	w, ok := a.deps.World.Weapon(id)
	if !ok {
		return nil
	}
	a.slots[slot] = w
	return w
}

// EquipWeapon unequips the current weapon and equips the one in slot,
// predicting on observers and forwarding the request to the authority.
func (a *Actor) EquipWeapon(slot netconfig.WeaponSlot) {
	if cur := a.EquippedWeapon(); cur != nil {
		cur.Unequip()
	}

	a.activeSlot.Set(slot)

	if w := a.weaponAt(slot); w != nil {
		w.Equip()
	}
	a.publish(events.WeaponEquipped, EquipEvent{Actor: a.id, Slot: slot})

	if a.role != netconfig.RoleAuthority {
		a.call(messages.RequestEquipWeapon{ActorID: a.id, Slot: slot})
	}
}

// SwapWeapon toggles between the primary and secondary slot.
func (a *Actor) SwapWeapon() {
	if a.activeSlot.Get() == netconfig.SlotPrimary {
		a.EquipWeapon(netconfig.SlotSecondary)
		return
	}
	a.EquipWeapon(netconfig.SlotPrimary)
}

// OnRepWeapons re-links every weapon to this actor, since a weapon may
// arrive without its owner. The local player then re-asserts its slot.
func (a *Actor) OnRepWeapons() {
	ids := a.weapons.Get()
	for i, id := range ids {
		if id == 0 {
			a.slots[i] = nil
			continue
		}
		if a.slots[i] != nil && a.slots[i].ID() != id {
			a.slots[i] = nil
		}
		if w := a.weaponAt(netconfig.WeaponSlot(i)); w != nil {
			w.SetOwner(a)
		}
	}

	if a.locallyControlled {
		a.EquipWeapon(a.activeSlot.Get())
	}

	if w := a.EquippedWeapon(); w != nil {
		w.AttachToOwner()
	}

	a.publish(events.WeaponsChanged, WeaponsEvent{Actor: a.id, Weapons: ids})
}

func (a *Actor) onRepActiveSlot(old netconfig.WeaponSlot) {
	if w := a.weaponAt(old); w != nil {
		w.Unequip()
	}
	if w := a.EquippedWeapon(); w != nil {
		w.Equip()
	}
	a.publish(events.WeaponEquipped, EquipEvent{Actor: a.id, Slot: a.activeSlot.Get()})
}

// StartFire starts the equipped weapon, cancelling running first.
func (a *Actor) StartFire() {
	w := a.EquippedWeapon()
	if w == nil || a.actionsDisabled {
		return
	}
	if a.isRunning.Get() {
		a.SetRunning(false)
	}
	w.StartFire()

	if a.role != netconfig.RoleAuthority {
		a.call(messages.RequestStartFire{ActorID: a.id})
	}
}

// StopFire stops the equipped weapon.
func (a *Actor) StopFire() {
	if w := a.EquippedWeapon(); w != nil {
		w.StopFire()
	}
	if a.role != netconfig.RoleAuthority {
		a.call(messages.RequestStopFire{ActorID: a.id})
	}
}

// Reload reloads the equipped weapon.
func (a *Actor) Reload() {
	w := a.EquippedWeapon()
	if a.actionsDisabled || w == nil {
		return
	}
	w.Reload()

	if a.role != netconfig.RoleAuthority {
		a.call(messages.RequestReload{ActorID: a.id})
	}
}

// HandleRequest validates and applies a client request on the authority. It
// reports whether the request was accepted; rejected requests change nothing.
func (a *Actor) HandleRequest(msg any) bool {
	if a.role != netconfig.RoleAuthority || a.isDying.Get() {
		return false
	}

	switch m := msg.(type) {
	case messages.RequestSetRunning:
		a.SetRunning(m.Running)
	case messages.RequestEquipWeapon:
		if !m.Slot.IsEquipSlot() {
			return false
		}
		a.EquipWeapon(m.Slot)
	case messages.RequestStartFire:
		a.StartFire()
	case messages.RequestStopFire:
		a.StopFire()
	case messages.RequestReload:
		a.Reload()
	default:
		return false
	}
	return true
}
