package combat

import (
	"testing"

	"github.com/automoto/hitscan-mp/config"
	"github.com/automoto/hitscan-mp/replication"
	"github.com/automoto/hitscan-mp/shared/gamemath"
	"github.com/automoto/hitscan-mp/shared/messages"
	"github.com/automoto/hitscan-mp/shared/netconfig"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedSeed(seed uint64) SeedSource {
	return func() uint64 { return seed }
}

func TestComputeShot_MissingReferences(t *testing.T) {
	r := newRig(netconfig.RoleAuthority, false)

	orphan := NewWeapon("rifle", netconfig.RoleAuthority, r.weaponDeps())
	_, ok := orphan.Shot().ComputeShot()
	assert.False(t, ok, "no holder")

	noWorld := r.weaponDeps()
	noWorld.World = nil
	w := NewWeapon("rifle", netconfig.RoleAuthority, noWorld)
	w.SetOwner(r.actor)
	_, ok = w.Shot().ComputeShot()
	assert.False(t, ok, "no world")

	headless := NewActor(ActorOptions{Role: netconfig.RoleAuthority}, Deps{World: r.world})
	w = NewWeapon("rifle", netconfig.RoleAuthority, r.weaponDeps())
	w.SetOwner(headless)
	_, ok = w.Shot().ComputeShot()
	assert.False(t, ok, "no aim camera")

	r.movement.aimDir = mgl64.Vec3{}
	_, ok = r.primary.Shot().ComputeShot()
	assert.False(t, ok, "no aim direction")
}

func TestComputeShot_StaysInsideSpreadCone(t *testing.T) {
	r := newRig(netconfig.RoleAuthority, false)
	spread := mgl64.DegToRad(r.primary.CurrentSpread())

	for seed := uint64(1); seed <= 200; seed++ {
		r.primary.Shot().Seeds = fixedSeed(seed)
		shot, ok := r.primary.Shot().ComputeShot()
		require.True(t, ok)
		assert.Equal(t, r.movement.aimLoc, shot.Start)
		assert.Equal(t, seed, shot.Seed)
		assert.InDelta(t, 1.0, shot.Direction.Len(), 1e-9)
		assert.LessOrEqual(t, gamemath.AngleBetween(shot.Direction, r.movement.aimDir), spread+1e-9)
		assert.False(t, shot.ImpactNeeded)
	}
}

func TestComputeShot_TracesToMaxRange(t *testing.T) {
	r := newRig(netconfig.RoleAuthority, false)
	r.primary.stats.SpreadDegrees = 0

	r.world.wallX = config.Weapon.MaxShotRange + 100
	shot, ok := r.primary.Shot().ComputeShot()
	require.True(t, ok)
	assert.False(t, shot.ImpactNeeded, "wall is beyond range")
	assert.InDelta(t, config.Weapon.MaxShotRange, shot.End(config.Weapon.MaxShotRange).Sub(shot.Start).Len(), 1e-6)

	r.world.wallX = 500
	shot, _ = r.primary.Shot().ComputeShot()
	assert.True(t, shot.ImpactNeeded)
	assert.InDelta(t, 500, shot.End(config.Weapon.MaxShotRange).X(), 1e-9)
	assert.Equal(t, netconfig.NetID(0), shot.Impact.Actor)
}

func TestInvokeShot_DamagesHitActorAndFlipsToggle(t *testing.T) {
	r := newRig(netconfig.RoleAuthority, false)
	r.primary.stats.SpreadDegrees = 0
	victim := r.addVictim(20, 8, mgl64.Vec3{400, 0, 0})

	shot, ok := r.primary.Shot().ComputeShot()
	require.True(t, ok)
	require.True(t, shot.ImpactNeeded)
	require.Equal(t, netconfig.NetID(20), shot.Impact.Actor)

	r.primary.Shot().InvokeShot(shot)

	dmg := config.Weapon.Types[config.WeaponRifle].Damage
	assert.Equal(t, int32(100-int32(dmg)), victim.Health())
	info := victim.HitInfo()
	assert.Equal(t, "head", info.HitBone)
	assert.Equal(t, netconfig.NetID(1), info.DamageCauser)
	assert.Equal(t, mgl64.Vec3{-1, 0, 0}, info.HitDirection)
	assert.Equal(t, []netconfig.ControllerID{7}, r.notifier.hits)

	rec := r.primary.Shot().Record()
	assert.True(t, rec.FireToggle)
	assert.Equal(t, gamemath.Quantize10(shot.Impact.Impact), rec.Target)

	r.primary.Shot().InvokeShot(shot)
	assert.False(t, r.primary.Shot().Record().FireToggle)
	assert.Equal(t, rec.Target, r.primary.Shot().Record().Target)
}

func TestInvokeShot_MissStillRecords(t *testing.T) {
	r := newRig(netconfig.RoleAuthority, false)
	r.primary.stats.SpreadDegrees = 0

	shot, _ := r.primary.Shot().ComputeShot()
	r.primary.Shot().InvokeShot(shot)

	want := gamemath.Quantize10(r.movement.aimLoc.Add(mgl64.Vec3{config.Weapon.MaxShotRange, 0, 0}))
	assert.Equal(t, want, r.primary.Shot().Record().Target)
}

func TestInvokeShot_ObserverDoesNothing(t *testing.T) {
	r := newRig(netconfig.RoleObserver, true)
	r.primary.stats.SpreadDegrees = 0
	victim := r.addVictim(20, 8, mgl64.Vec3{400, 0, 0})

	shot, ok := r.primary.Shot().ComputeShot()
	require.True(t, ok)
	r.primary.Shot().InvokeShot(shot)

	assert.Equal(t, int32(100), victim.Health())
	assert.Equal(t, ShotRecord{}, r.primary.Shot().Record())
}

func TestPreInvokeShot_PlaysLocalCosmeticsOnly(t *testing.T) {
	r := newRig(netconfig.RoleObserver, true)
	r.primary.stats.SpreadDegrees = 0
	r.world.wallX = 800
	victim := r.addVictim(20, 8, mgl64.Vec3{400, 0, 0})

	shot, _ := r.primary.Shot().ComputeShot()
	r.primary.Shot().PreInvokeShot(shot)

	require.Len(t, r.cosmetics.trails, 1)
	fire, _ := r.primary.FireLocation()
	assert.Equal(t, fire, r.cosmetics.trails[0].start)
	assert.Equal(t, shot.Impact.Impact, r.cosmetics.trails[0].end)
	require.Len(t, r.cosmetics.impacts, 1)
	assert.Equal(t, netconfig.NetID(20), r.cosmetics.impacts[0].Actor)
	assert.Equal(t, int32(100), victim.Health())
}

// Each process samples its own spread; only the authority's sample deals
// damage, the firing client's sample is purely cosmetic.
func TestShotTrajectories_AuthorityAndClientDiverge(t *testing.T) {
	server := newRig(netconfig.RoleAuthority, false)
	client := newRig(netconfig.RoleObserver, true)
	for _, r := range []*rig{server, client} {
		r.primary.stats.SpreadDegrees = 5
	}
	serverVictim := server.addVictim(20, 8, mgl64.Vec3{400, 0, 0})
	clientVictim := client.addVictim(20, 8, mgl64.Vec3{400, 0, 0})

	server.primary.Shot().Seeds = fixedSeed(11)
	client.primary.Shot().Seeds = fixedSeed(12345)

	serverShot, ok := server.primary.Shot().ComputeShot()
	require.True(t, ok)
	clientShot, ok := client.primary.Shot().ComputeShot()
	require.True(t, ok)

	assert.NotEqual(t, serverShot.Direction, clientShot.Direction)

	client.primary.Shot().PreInvokeShot(clientShot)
	client.primary.Shot().InvokeShot(clientShot)
	assert.Equal(t, int32(100), clientVictim.Health(), "client trajectory never deals damage")

	server.primary.Shot().InvokeShot(serverShot)
	if serverShot.ImpactNeeded && serverShot.Impact.Actor == 20 {
		assert.Less(t, serverVictim.Health(), int32(100))
	} else {
		assert.Equal(t, int32(100), serverVictim.Health())
	}
	assert.Equal(t, gamemath.Quantize10(serverShot.End(config.Weapon.MaxShotRange)), server.primary.Shot().Record().Target)

	// Same seed on both sides reproduces the same direction.
	client.primary.Shot().Seeds = fixedSeed(11)
	again, _ := client.primary.Shot().ComputeShot()
	assert.Equal(t, serverShot.Direction, again.Direction)
}

type weaponMirror struct {
	mirror *replication.Mirror
}

func (m *weaponMirror) ObserverID() netconfig.ControllerID { return 50 }
func (m *weaponMirror) SendReplication(b messages.ReplicationBatch) error {
	m.mirror.ApplyBatch(b)
	return nil
}
func (m *weaponMirror) SendDestroy(d messages.ReplicationDestroy) error {
	m.mirror.ApplyDestroy(d)
	return nil
}

func TestShotRecord_IdenticalShotsReplayTwiceRemotely(t *testing.T) {
	server := newRig(netconfig.RoleAuthority, false)
	server.primary.stats.SpreadDegrees = 0
	server.world.wallX = 600

	remote := newRig(netconfig.RoleObserver, false)
	remote.world.wallX = 600

	bridge, err := replication.NewBridge(zerolog.Nop())
	require.NoError(t, err)
	bridge.Register(netconfig.KindWeapon, 1, 7, server.primary.Fields()...)
	m := replication.NewMirror(zerolog.Nop(), nil)
	m.Track(1, remote.primary)
	bridge.AddObserver(&weaponMirror{mirror: m})
	bridge.Flush()

	for i := 0; i < 2; i++ {
		shot, ok := server.primary.Shot().ComputeShot()
		require.True(t, ok)
		server.primary.Shot().InvokeShot(shot)
		bridge.Flush()
	}

	require.Len(t, remote.cosmetics.trails, 2)
	assert.Equal(t, remote.cosmetics.trails[0].end, remote.cosmetics.trails[1].end)
	assert.InDelta(t, 600, remote.cosmetics.trails[0].end.X(), 0.1)
	assert.Len(t, remote.cosmetics.impacts, 2)
}

func TestShotRecord_OwnerDoesNotReplay(t *testing.T) {
	server := newRig(netconfig.RoleAuthority, false)
	server.primary.stats.SpreadDegrees = 0

	bridge, err := replication.NewBridge(zerolog.Nop())
	require.NoError(t, err)
	// Owned by controller 50, which is the observer below.
	bridge.Register(netconfig.KindWeapon, 1, 50, server.primary.Fields()...)

	owner := newRig(netconfig.RoleObserver, true)
	m := replication.NewMirror(zerolog.Nop(), nil)
	m.Track(1, owner.primary)
	bridge.AddObserver(&weaponMirror{mirror: m})
	bridge.Flush()

	shot, _ := server.primary.Shot().ComputeShot()
	server.primary.Shot().InvokeShot(shot)
	bridge.Flush()

	assert.Empty(t, owner.cosmetics.trails)
}
