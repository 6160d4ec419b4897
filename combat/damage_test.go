package combat

import (
	"testing"

	"github.com/automoto/hitscan-mp/config"
	"github.com/automoto/hitscan-mp/events"
	"github.com/automoto/hitscan-mp/replication"
	"github.com/automoto/hitscan-mp/shared/messages"
	"github.com/automoto/hitscan-mp/shared/netconfig"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDamageRouter_PointDamageHead(t *testing.T) {
	r := newRig(netconfig.RoleAuthority, false)
	before := r.actor.HitInfo().ForceReplicateCounter

	r.actor.TakeDamage(25, headShot, 9, 4)

	info := r.actor.HitInfo()
	assert.Equal(t, "head", info.HitBone)
	assert.Equal(t, mgl64.Vec3{0, -1, 0}, info.HitDirection)
	assert.Equal(t, mgl64.Vec3{1, 2, 3}, info.HitLocation)
	assert.Equal(t, netconfig.NetID(4), info.DamageCauser)
	assert.Equal(t, float32(25), info.Damage)
	assert.Equal(t, before+1, info.ForceReplicateCounter)
	assert.Equal(t, []HitInfo{info}, r.cosmetics.hits)
}

func TestDamageRouter_RadialDamage(t *testing.T) {
	r := newRig(netconfig.RoleAuthority, false)
	r.movement.location = mgl64.Vec3{300, 400, 0}

	r.actor.TakeDamage(10, RadialDamage{Origin: mgl64.Vec3{0, 0, 0}}, 9, 4)

	info := r.actor.HitInfo()
	assert.Equal(t, config.Character.DefaultRadialBone, info.HitBone)
	assert.Equal(t, mgl64.Vec3{0, 0, 0}, info.HitLocation)
	assert.InDelta(t, 0.6, info.HitDirection.X(), 1e-4)
	assert.InDelta(t, 0.8, info.HitDirection.Y(), 1e-4)
	assert.InDelta(t, 1.0, info.HitDirection.Len(), 1e-4)
}

func TestDamageRouter_QuantizesLocation(t *testing.T) {
	r := newRig(netconfig.RoleAuthority, false)
	r.actor.TakeDamage(1, PointDamage{Location: mgl64.Vec3{1.234, -5.678, 9.96}, Bone: "spine_01", ShotDirection: mgl64.Vec3{1, 0, 0}}, 0, 0)

	info := r.actor.HitInfo()
	assert.InDelta(t, 1.2, info.HitLocation.X(), 1e-9)
	assert.InDelta(t, -5.7, info.HitLocation.Y(), 1e-9)
	assert.InDelta(t, 10.0, info.HitLocation.Z(), 1e-9)
}

func TestDamageRouter_Notifications(t *testing.T) {
	tests := []struct {
		name         string
		causer       netconfig.NetID
		instigator   netconfig.ControllerID
		wantReceived []netconfig.ControllerID
		wantHits     []netconfig.ControllerID
	}{
		{"causer and instigator known", 4, 9, []netconfig.ControllerID{7}, []netconfig.ControllerID{9}},
		{"no causer", 0, 9, nil, nil},
		{"no instigator", 4, 0, []netconfig.ControllerID{7}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRig(netconfig.RoleAuthority, false)
			r.world.locations[4] = mgl64.Vec3{50, 60, 70}

			r.actor.TakeDamage(5, headShot, tt.instigator, tt.causer)

			assert.Equal(t, tt.wantReceived, r.notifier.received)
			assert.Equal(t, tt.wantHits, r.notifier.hits)
			if len(tt.wantReceived) > 0 {
				assert.Equal(t, mgl64.Vec3{50, 60, 70}, r.notifier.from[0])
			}
		})
	}
}

func TestDamageRouter_NoNotifierIsSafe(t *testing.T) {
	r := newRig(netconfig.RoleAuthority, false)
	d := r.deps()
	d.Notifier = nil
	a := NewActor(ActorOptions{Role: netconfig.RoleAuthority, Controller: 7}, d)

	assert.NotPanics(t, func() { a.TakeDamage(5, headShot, 9, 4) })
	assert.Equal(t, int32(95), a.Health())
}

func TestDamageRouter_PublishesHit(t *testing.T) {
	bus, err := events.New(nil)
	require.NoError(t, err)
	t.Cleanup(bus.Close)

	var got []HitEvent
	bus.Subscribe(events.HitReceived, func(e events.Event) { got = append(got, e.Payload.(HitEvent)) })

	r := newRig(netconfig.RoleAuthority, false)
	d := r.deps()
	d.Bus = bus
	a := NewActor(ActorOptions{Role: netconfig.RoleAuthority, Controller: 7}, d)
	a.SetNetID(42)

	a.TakeDamage(5, headShot, 9, 4)

	require.Len(t, got, 1)
	assert.Equal(t, netconfig.NetID(42), got[0].Actor)
	assert.Equal(t, "head", got[0].Info.HitBone)
}

type captureObserver struct {
	batches []messages.ReplicationBatch
}

func (c *captureObserver) ObserverID() netconfig.ControllerID { return 99 }
func (c *captureObserver) SendReplication(b messages.ReplicationBatch) error {
	c.batches = append(c.batches, b)
	return nil
}
func (c *captureObserver) SendDestroy(messages.ReplicationDestroy) error { return nil }

func TestDamageRouter_IdenticalHitsReplicateTwice(t *testing.T) {
	r := newRig(netconfig.RoleAuthority, false)
	bridge, err := replication.NewBridge(zerolog.Nop())
	require.NoError(t, err)
	obs := &captureObserver{}
	bridge.AddObserver(obs)
	bridge.Register(netconfig.KindActor, 0, 7, r.actor.Fields()...)
	bridge.Flush()

	countHitUpdates := func() int {
		n := 0
		for _, b := range obs.batches {
			for _, u := range b.Updates {
				for _, f := range u.Fields {
					if f.Name == netconfig.FieldReceiveHitInfo {
						n++
					}
				}
			}
		}
		return n
	}
	base := countHitUpdates()

	r.actor.TakeDamage(1, headShot, 9, 4)
	bridge.Flush()
	r.actor.TakeDamage(1, headShot, 9, 4)
	bridge.Flush()

	assert.Equal(t, base+2, countHitUpdates())
}
