package combat

import (
	"testing"
	"time"

	"github.com/automoto/hitscan-mp/events"
	"github.com/automoto/hitscan-mp/shared/netconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeapon_StatsFollowType(t *testing.T) {
	r := newRig(netconfig.RoleAuthority, false)

	assert.Equal(t, "rifle", r.primary.Type())
	assert.Equal(t, int32(30), r.primary.Ammo())
	assert.Equal(t, 2.0, r.primary.CurrentSpread())
	assert.Equal(t, "pistol", r.secondary.Type())
	assert.Equal(t, int32(12), r.secondary.Ammo())

	unknown := NewWeapon("", netconfig.RoleObserver, r.weaponDeps())
	assert.Zero(t, unknown.Ammo())
	data, err := r.secondary.weaponType.Encode()
	require.NoError(t, err)
	notify, err := unknown.weaponType.Apply(data)
	require.NoError(t, err)
	require.NotNil(t, notify)
	notify()
	assert.Equal(t, int32(12), unknown.Ammo(), "type replicated from authority")
}

func TestWeapon_FireIntervalLimitsShots(t *testing.T) {
	r := newRig(netconfig.RoleAuthority, false)
	w := r.primary
	require.True(t, w.IsEquipped())

	w.StartFire()
	assert.Equal(t, int32(29), w.Ammo(), "first shot is immediate")

	w.Tick(50 * time.Millisecond)
	assert.Equal(t, int32(29), w.Ammo())

	w.Tick(50 * time.Millisecond)
	assert.Equal(t, int32(28), w.Ammo())

	for i := 0; i < 10; i++ {
		w.Tick(100 * time.Millisecond)
	}
	assert.Equal(t, int32(18), w.Ammo())

	w.StopFire()
	w.Tick(time.Second)
	assert.Equal(t, int32(18), w.Ammo())
}

func TestWeapon_StartFireRequiresEquip(t *testing.T) {
	r := newRig(netconfig.RoleAuthority, false)

	r.secondary.StartFire()
	assert.False(t, r.secondary.IsFiring())
	assert.Equal(t, int32(12), r.secondary.Ammo())
}

func TestWeapon_EmptyMagazineStopsFire(t *testing.T) {
	r := newRig(netconfig.RoleAuthority, false)
	w := r.secondary
	r.actor.EquipWeapon(netconfig.SlotSecondary)

	w.StartFire()
	for i := 0; i < 20; i++ {
		w.Tick(w.stats.FireInterval)
	}
	assert.Zero(t, w.Ammo())
	assert.False(t, w.IsFiring())
}

func TestWeapon_Reload(t *testing.T) {
	r := newRig(netconfig.RoleAuthority, false)
	w := r.primary

	w.Reload()
	assert.False(t, w.IsReloading(), "full magazine")

	w.StartFire()
	w.Reload()
	assert.True(t, w.IsReloading())
	assert.False(t, w.IsFiring())

	w.StartFire()
	assert.Equal(t, int32(29), w.Ammo(), "no shots while reloading")

	w.Tick(time.Second)
	assert.True(t, w.IsReloading())
	w.Tick(time.Second)
	assert.False(t, w.IsReloading())
	assert.Equal(t, int32(30), w.Ammo())
}

func TestWeapon_UnequipStopsFire(t *testing.T) {
	r := newRig(netconfig.RoleAuthority, false)
	r.primary.StartFire()
	require.True(t, r.primary.IsFiring())

	r.actor.EquipWeapon(netconfig.SlotSecondary)
	assert.False(t, r.primary.IsFiring())
	assert.False(t, r.primary.IsEquipped())
	assert.True(t, r.secondary.IsEquipped())
	assert.Equal(t, netconfig.NetID(1), r.cosmetics.attached[3])
}

func TestWeapon_RemoteObserverDoesNotRunFireLoop(t *testing.T) {
	r := newRig(netconfig.RoleObserver, false)

	r.primary.StartFire()
	assert.Equal(t, int32(30), r.primary.Ammo())
	assert.Empty(t, r.cosmetics.trails)
}

func TestWeapon_LocalObserverFiresCosmetically(t *testing.T) {
	r := newRig(netconfig.RoleObserver, true)
	bus, err := events.New(nil)
	require.NoError(t, err)
	defer bus.Close()

	var shots []ShotEvent
	bus.Subscribe(events.ShotFired, func(e events.Event) {
		shots = append(shots, e.Payload.(ShotEvent))
	})
	r.primary.deps.Bus = bus

	r.primary.StartFire()
	assert.Equal(t, int32(29), r.primary.Ammo())
	require.Len(t, r.cosmetics.trails, 1)
	require.Len(t, shots, 1)
	assert.False(t, shots[0].Authoritative)
	assert.Equal(t, ShotRecord{}, r.primary.Shot().Record())
}

func TestWeapon_TearOff(t *testing.T) {
	r := newRig(netconfig.RoleAuthority, false)
	r.primary.StartFire()

	r.primary.TearOff()
	assert.Equal(t, netconfig.LifeTornOff, r.primary.LifeState())
	assert.False(t, r.primary.IsFiring())
	assert.Equal(t, []netconfig.NetID{2}, r.replicator.tornOff)

	r.primary.StartFire()
	assert.False(t, r.primary.IsFiring())

	obs := newRig(netconfig.RoleObserver, false)
	obs.primary.TearOff()
	assert.Empty(t, obs.replicator.tornOff)
}
