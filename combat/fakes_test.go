package combat

import (
	"math"
	"time"

	"github.com/automoto/hitscan-mp/shared/netconfig"
	"github.com/go-gl/mathgl/mgl64"
)

type sphereTarget struct {
	id     netconfig.NetID
	center mgl64.Vec3
	radius float64
	bone   string
}

type timer struct {
	after time.Duration
	fn    func()
}

// fakeWorld traces against spheres and an optional wall plane at x = wallX.
type fakeWorld struct {
	wallX     float64
	targets   []sphereTarget
	damage    map[netconfig.NetID]Damageable
	locations map[netconfig.NetID]mgl64.Vec3
	weapons   map[netconfig.NetID]*Weapon
	timers    []timer
	lifespans map[netconfig.NetID]time.Duration
	traces    int
}

func newFakeWorld() *fakeWorld {
	return &fakeWorld{
		damage:    map[netconfig.NetID]Damageable{},
		locations: map[netconfig.NetID]mgl64.Vec3{},
		weapons:   map[netconfig.NetID]*Weapon{},
		lifespans: map[netconfig.NetID]time.Duration{},
	}
}

func (w *fakeWorld) LineTrace(start, end mgl64.Vec3, ignore netconfig.NetID) TraceResult {
	w.traces++
	dir := end.Sub(start)
	length := dir.Len()
	if length == 0 {
		return TraceResult{}
	}
	dir = dir.Mul(1 / length)

	best := math.Inf(1)
	var res TraceResult
	for _, t := range w.targets {
		if t.id == ignore {
			continue
		}
		oc := start.Sub(t.center)
		b := oc.Dot(dir)
		c := oc.Dot(oc) - t.radius*t.radius
		disc := b*b - c
		if disc < 0 {
			continue
		}
		d := -b - math.Sqrt(disc)
		if d < 0 || d > length || d >= best {
			continue
		}
		best = d
		p := start.Add(dir.Mul(d))
		res = TraceResult{Blocking: true, Impact: p, Normal: p.Sub(t.center).Normalize(), Actor: t.id, Bone: t.bone}
	}
	if w.wallX != 0 && dir.X() > 0 {
		d := (w.wallX - start.X()) / dir.X()
		if d >= 0 && d <= length && d < best {
			res = TraceResult{Blocking: true, Impact: start.Add(dir.Mul(d)), Normal: mgl64.Vec3{-1, 0, 0}, Material: "concrete"}
		}
	}
	return res
}

func (w *fakeWorld) Damageable(id netconfig.NetID) (Damageable, bool) {
	d, ok := w.damage[id]
	return d, ok
}

func (w *fakeWorld) Location(id netconfig.NetID) (mgl64.Vec3, bool) {
	l, ok := w.locations[id]
	return l, ok
}

func (w *fakeWorld) Weapon(id netconfig.NetID) (*Weapon, bool) {
	wp, ok := w.weapons[id]
	return wp, ok
}

func (w *fakeWorld) After(d time.Duration, fn func()) {
	w.timers = append(w.timers, timer{after: d, fn: fn})
}

func (w *fakeWorld) SetLifespan(id netconfig.NetID, d time.Duration) {
	w.lifespans[id] = d
}

func (w *fakeWorld) runTimers() {
	ts := w.timers
	w.timers = nil
	for _, t := range ts {
		t.fn()
	}
}

type fakeMovement struct {
	falling   bool
	crouched  bool
	location  mgl64.Vec3
	forward   mgl64.Vec3
	input     mgl64.Vec3
	aimLoc    mgl64.Vec3
	aimDir    mgl64.Vec3
	stopped   bool
	disabled  bool
	unCrouchN int
}

func newFakeMovement(loc mgl64.Vec3) *fakeMovement {
	return &fakeMovement{
		location: loc,
		forward:  mgl64.Vec3{1, 0, 0},
		input:    mgl64.Vec3{1, 0, 0},
		aimLoc:   loc.Add(mgl64.Vec3{0, 0, 60}),
		aimDir:   mgl64.Vec3{1, 0, 0},
	}
}

func (m *fakeMovement) IsFalling() bool  { return m.falling }
func (m *fakeMovement) IsCrouched() bool { return m.crouched }
func (m *fakeMovement) Crouch()          { m.crouched = true }
func (m *fakeMovement) UnCrouch() {
	m.crouched = false
	m.unCrouchN++
}
func (m *fakeMovement) Location() mgl64.Vec3          { return m.location }
func (m *fakeMovement) Forward() mgl64.Vec3           { return m.forward }
func (m *fakeMovement) LastMovementInput() mgl64.Vec3 { return m.input }
func (m *fakeMovement) AimLocation() mgl64.Vec3       { return m.aimLoc }
func (m *fakeMovement) AimDirection() mgl64.Vec3      { return m.aimDir }
func (m *fakeMovement) StopReplication()              { m.stopped = true }
func (m *fakeMovement) Disable()                      { m.disabled = true }

type kill struct {
	killer, victim netconfig.ControllerID
}

type recordingScorer struct {
	kills []kill
}

func (s *recordingScorer) ScoreKill(killer, victim netconfig.ControllerID) {
	s.kills = append(s.kills, kill{killer, victim})
}

type recordingNotifier struct {
	received []netconfig.ControllerID
	from     []mgl64.Vec3
	hits     []netconfig.ControllerID
}

func (n *recordingNotifier) NotifyReceivedDamage(ctrl netconfig.ControllerID, loc mgl64.Vec3) {
	n.received = append(n.received, ctrl)
	n.from = append(n.from, loc)
}

func (n *recordingNotifier) NotifyWeaponHit(ctrl netconfig.ControllerID) {
	n.hits = append(n.hits, ctrl)
}

type trail struct {
	weapon     netconfig.NetID
	start, end mgl64.Vec3
}

type recordingCosmetics struct {
	trails    []trail
	impacts   []TraceResult
	attached  map[netconfig.NetID]netconfig.NetID
	deathAnim time.Duration
	anims     int
	ragdolls  []netconfig.NetID
	hits      []HitInfo
}

func newRecordingCosmetics() *recordingCosmetics {
	return &recordingCosmetics{attached: map[netconfig.NetID]netconfig.NetID{}}
}

func (c *recordingCosmetics) PlayTrail(w netconfig.NetID, start, end mgl64.Vec3) {
	c.trails = append(c.trails, trail{w, start, end})
}
func (c *recordingCosmetics) PlayImpact(_ netconfig.NetID, hit TraceResult) {
	c.impacts = append(c.impacts, hit)
}
func (c *recordingCosmetics) AttachWeapon(w, holder netconfig.NetID) { c.attached[w] = holder }
func (c *recordingCosmetics) PlayDeathAnimation(netconfig.NetID) time.Duration {
	c.anims++
	return c.deathAnim
}
func (c *recordingCosmetics) EnableRagdoll(a netconfig.NetID) { c.ragdolls = append(c.ragdolls, a) }
func (c *recordingCosmetics) OnReceiveHit(_ netconfig.NetID, info HitInfo) {
	c.hits = append(c.hits, info)
}

type recordingCaller struct {
	calls []any
}

func (c *recordingCaller) Call(msg any) error {
	c.calls = append(c.calls, msg)
	return nil
}

type recordingReplicator struct {
	tornOff []netconfig.NetID
}

func (r *recordingReplicator) TearOff(id netconfig.NetID) {
	r.tornOff = append(r.tornOff, id)
}

type fixedModifier float32

func (m fixedModifier) ModifyDamage(_ *Actor, amount float32, _ DamageEvent, _ netconfig.ControllerID, _ netconfig.NetID) float32 {
	return amount * float32(m)
}

// rig is an authority actor with every collaborator recorded.
type rig struct {
	world      *fakeWorld
	movement   *fakeMovement
	scorer     *recordingScorer
	notifier   *recordingNotifier
	cosmetics  *recordingCosmetics
	replicator *recordingReplicator
	caller     *recordingCaller
	actor      *Actor
	primary    *Weapon
	secondary  *Weapon
}

func newRig(role netconfig.Role, local bool) *rig {
	r := &rig{
		world:      newFakeWorld(),
		movement:   newFakeMovement(mgl64.Vec3{0, 0, 0}),
		scorer:     &recordingScorer{},
		notifier:   &recordingNotifier{},
		cosmetics:  newRecordingCosmetics(),
		replicator: &recordingReplicator{},
		caller:     &recordingCaller{},
	}
	deps := r.deps()
	r.actor = NewActor(ActorOptions{Role: role, LocallyControlled: local, Controller: 7}, deps)
	r.actor.SetNetID(1)
	r.world.locations[1] = r.movement.location

	r.primary = NewWeapon("rifle", role, r.weaponDeps())
	r.primary.SetNetID(2)
	r.secondary = NewWeapon("pistol", role, r.weaponDeps())
	r.secondary.SetNetID(3)
	r.world.weapons[2] = r.primary
	r.world.weapons[3] = r.secondary

	r.actor.GiveWeapon(netconfig.SlotPrimary, r.primary)
	r.actor.GiveWeapon(netconfig.SlotSecondary, r.secondary)
	return r
}

func (r *rig) deps() Deps {
	return Deps{
		World:      r.world,
		Movement:   r.movement,
		Scorer:     r.scorer,
		Notifier:   r.notifier,
		Cosmetics:  r.cosmetics,
		Caller:     r.caller,
		Replicator: r.replicator,
	}
}

func (r *rig) weaponDeps() Deps {
	d := r.deps()
	d.Movement = nil
	return d
}

// addVictim places an authority actor at loc that shots can hit.
func (r *rig) addVictim(id netconfig.NetID, ctrl netconfig.ControllerID, loc mgl64.Vec3) *Actor {
	d := r.deps()
	d.Movement = newFakeMovement(loc)
	v := NewActor(ActorOptions{Role: netconfig.RoleAuthority, Controller: ctrl}, d)
	v.SetNetID(id)
	r.world.damage[id] = v
	r.world.locations[id] = loc
	r.world.targets = append(r.world.targets, sphereTarget{id: id, center: loc.Add(mgl64.Vec3{0, 0, 60}), radius: 20, bone: "head"})
	return v
}
