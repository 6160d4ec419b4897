// Package client is the observer side of a match: it mirrors the
// authority's actors and weapons, predicts the local player's movement and
// plays the cosmetic side of combat.
package client

import (
	"fmt"
	"maps"
	"sort"
	"time"

	"github.com/automoto/hitscan-mp/arena"
	"github.com/automoto/hitscan-mp/combat"
	"github.com/automoto/hitscan-mp/config"
	"github.com/automoto/hitscan-mp/events"
	"github.com/automoto/hitscan-mp/logging"
	"github.com/automoto/hitscan-mp/network"
	"github.com/automoto/hitscan-mp/replication"
	"github.com/automoto/hitscan-mp/shared/messages"
	"github.com/automoto/hitscan-mp/shared/netcomponents"
	"github.com/automoto/hitscan-mp/shared/netconfig"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/leap-fish/necs/esync"
	"github.com/rs/zerolog"
)

// Input is one frame of local control.
type Input struct {
	Forward, Right float64 // [-1, 1]
	Yaw, Pitch     float64 // degrees
	Jump, Crouch   bool
}

// Options configures a Session.
type Options struct {
	Arena     *arena.Arena
	Caller    replication.Caller
	Cosmetics combat.Cosmetics // nil plays nothing
	Logger    zerolog.Logger
}

// Session holds one client's view of the match. It is not safe for
// concurrent use: feed it messages and ticks from one goroutine.
type Session struct {
	logger    zerolog.Logger
	arena     *arena.Arena
	caller    replication.Caller
	cosmetics combat.Cosmetics
	bus       *events.Bus
	mirror    *replication.Mirror
	clock     clock

	localID    netconfig.NetID
	controller netconfig.ControllerID
	serverName string

	actors     map[netconfig.NetID]*actorView
	weapons    map[netconfig.NetID]*combat.Weapon
	transforms map[netconfig.NetID]netcomponents.NetTransformData
	game       netcomponents.NetGameStateData

	prediction  network.PredictionBuffer
	input       Input
	step        time.Duration
	threshold   float64
	corrections int
}

// NewSession creates an empty session over a local copy of the arena.
func NewSession(opts Options) (*Session, error) {
	if opts.Arena == nil {
		return nil, fmt.Errorf("session needs an arena")
	}
	cosmetics := opts.Cosmetics
	if cosmetics == nil {
		cosmetics = combat.NopCosmetics{}
	}

	bus, err := events.New(logging.NewBusLogger(logging.Component(opts.Logger, "events")))
	if err != nil {
		return nil, fmt.Errorf("create event bus: %w", err)
	}

	s := &Session{
		logger:     logging.Component(opts.Logger, "session"),
		arena:      opts.Arena,
		caller:     opts.Caller,
		cosmetics:  cosmetics,
		bus:        bus,
		clock:      newClock(),
		actors:     make(map[netconfig.NetID]*actorView),
		weapons:    make(map[netconfig.NetID]*combat.Weapon),
		transforms: make(map[netconfig.NetID]netcomponents.NetTransformData),
		threshold:  config.Client.CorrectionThreshold,
	}
	s.mirror = replication.NewMirror(logging.Component(opts.Logger, "replication"), s.create)
	return s, nil
}

// Close stops event delivery.
func (s *Session) Close() {
	s.bus.Close()
}

func (s *Session) Bus() *events.Bus                   { return s.bus }
func (s *Session) LocalID() netconfig.NetID           { return s.localID }
func (s *Session) Controller() netconfig.ControllerID { return s.controller }
func (s *Session) ServerName() string                 { return s.serverName }
func (s *Session) Now() time.Duration                 { return s.clock.now }
func (s *Session) MatchState() netconfig.MatchStateID { return s.game.MatchState }

// Corrections counts how often local prediction was snapped back.
func (s *Session) Corrections() int { return s.corrections }

// Actor returns the mirrored actor for id.
func (s *Session) Actor(id netconfig.NetID) (*combat.Actor, bool) {
	v, ok := s.actors[id]
	if !ok {
		return nil, false
	}
	return v.actor, true
}

// LocalActor returns the actor this client controls.
func (s *Session) LocalActor() (*combat.Actor, bool) {
	return s.Actor(s.localID)
}

// Mover returns the local movement state of an actor.
func (s *Session) Mover(id netconfig.NetID) (*arena.Mover, bool) {
	v, ok := s.actors[id]
	if !ok {
		return nil, false
	}
	return v.mover, true
}

// Weapon returns the mirrored weapon for id.
func (s *Session) Weapon(id netconfig.NetID) (*combat.Weapon, bool) {
	w, ok := s.weapons[id]
	return w, ok
}

// Scores returns copies of the replicated scoreboard.
func (s *Session) Scores() (kills, deaths map[netconfig.ControllerID]int) {
	return maps.Clone(s.game.Kills), maps.Clone(s.game.Deaths)
}

// Handle applies one reliable message from the authority.
func (s *Session) Handle(msg any) {
	switch m := msg.(type) {
	case messages.JoinAccepted:
		s.controller = m.Controller
		s.serverName = m.ServerName
		s.possess(m.ActorID)
	case messages.Possessed:
		s.possess(m.ActorID)
	case messages.ReplicationBatch:
		s.mirror.ApplyBatch(m)
	case messages.ReplicationDestroy:
		s.mirror.ApplyDestroy(m)
	case messages.ClientNotifyReceivedDamage:
		s.bus.Publish(events.ReceivedDamage, m)
	case messages.ClientNotifyWeaponHit:
		s.bus.Publish(events.WeaponHit, m)
	default:
		s.logger.Debug().Msgf("%T ignored", msg)
	}
}

func (s *Session) possess(id netconfig.NetID) {
	if id == s.localID {
		return
	}
	s.localID = id
	s.prediction.Reset()
	s.logger.Info().Uint32("actor", uint32(id)).Msg("possessed actor")
}

// ApplySnapshot applies the best-effort state of an esync world snapshot.
func (s *Session) ApplySnapshot(snap esync.WorldSnapshot) {
	for _, ent := range snap {
		for _, raw := range ent.State {
			v, err := esync.Mapper.Deserialize(raw)
			if err != nil {
				s.logger.Debug().Err(err).Msg("snapshot component skipped")
				continue
			}
			switch d := v.(type) {
			case netcomponents.NetTransformData:
				s.ApplyTransform(d)
			case netcomponents.NetGameStateData:
				s.ApplyGameState(d)
			}
		}
	}
}

// ApplyTransform moves an actor to its authoritative transform. Remote
// actors snap; the local actor is reconciled against its prediction.
func (s *Session) ApplyTransform(t netcomponents.NetTransformData) {
	s.transforms[t.ActorID] = t
	v, ok := s.actors[t.ActorID]
	if !ok || v.mover.IsDisabled() || v.mover.IsStopped() {
		return
	}

	pos := mgl64.Vec3{t.X, t.Y, t.Z}
	vel := mgl64.Vec3{t.VelX, t.VelY, t.VelZ}
	if t.ActorID == s.localID {
		s.reconcile(v, t, pos, vel)
		return
	}
	v.mover.Snap(pos, vel, t.Crouched, t.Falling)
	v.mover.SetAim(mgl64.DegToRad(t.Yaw), mgl64.DegToRad(t.Pitch))
}

// reconcile keeps the prediction while it stays within the threshold of
// the authority. Otherwise the body snaps back and unacknowledged inputs
// are replayed on top.
func (s *Session) reconcile(v *actorView, t netcomponents.NetTransformData, pos, vel mgl64.Vec3) {
	r := s.prediction.Reconcile(t.LastInput, pos, s.threshold)
	if !r.Snap {
		return
	}
	if r.Drift > 0 {
		s.corrections++
		s.logger.Debug().Uint32("seq", t.LastInput).Float64("drift", r.Drift).Msg("prediction corrected")
	}

	v.mover.Snap(pos, vel, t.Crouched, t.Falling)
	for _, rec := range r.Replay {
		v.mover.SetInput(moveInput(rec.Input))
		v.mover.Step(s.step, v.actor.MovementModifier())
		s.prediction.Store(rec.Input, v.mover.Location())
	}
}

// ApplyGameState stores the replicated scoreboard.
func (s *Session) ApplyGameState(g netcomponents.NetGameStateData) {
	changed := g.MatchState != s.game.MatchState
	s.game = netcomponents.NetGameStateData{
		Kills:      maps.Clone(g.Kills),
		Deaths:     maps.Clone(g.Deaths),
		MatchState: g.MatchState,
	}
	if changed {
		s.bus.Publish(events.MatchStateChanged, g.MatchState)
	}
}

// SetInput sets the local control used from the next tick on. A jump is
// kept until a tick consumes it.
func (s *Session) SetInput(in Input) {
	jump := s.input.Jump || in.Jump
	s.input = in
	s.input.Jump = jump
}

func (s *Session) StartFire() {
	if a, ok := s.living(); ok {
		a.StartFire()
	}
}

func (s *Session) StopFire() {
	if a, ok := s.living(); ok {
		a.StopFire()
	}
}

func (s *Session) Reload() {
	if a, ok := s.living(); ok {
		a.Reload()
	}
}

func (s *Session) EquipWeapon(slot netconfig.WeaponSlot) {
	if a, ok := s.living(); ok {
		a.EquipWeapon(slot)
	}
}

func (s *Session) SwapWeapon() {
	if a, ok := s.living(); ok {
		a.SwapWeapon()
	}
}

func (s *Session) SetRunning(running bool) {
	if a, ok := s.living(); ok {
		a.SetRunning(running)
	}
}

func (s *Session) ToggleRunning() {
	if a, ok := s.living(); ok {
		a.ToggleRunning()
	}
}

func (s *Session) living() (*combat.Actor, bool) {
	a, ok := s.LocalActor()
	if !ok || a.IsDying() {
		return nil, false
	}
	return a, true
}

// Tick predicts the local actor, advances every actor and weapon, and runs
// local timers and lifespans.
func (s *Session) Tick(dt time.Duration) {
	if dt <= 0 {
		return
	}
	s.step = dt

	if v, ok := s.actors[s.localID]; ok && !v.actor.IsDying() {
		s.predict(v, dt)
	}
	for _, id := range s.actorIDs() {
		s.actors[id].actor.Tick(dt)
	}
	for _, id := range s.clock.advance(dt) {
		s.expire(id)
	}
	if u, ok := s.cosmetics.(interface{ Update(time.Duration) }); ok {
		u.Update(dt)
	}
}

// predict sends this tick's movement input and applies it locally.
func (s *Session) predict(v *actorView, dt time.Duration) {
	seq := s.prediction.Next()
	msg := messages.RequestMove{
		ActorID:  s.localID,
		Sequence: seq,
		MoveX:    s.input.Forward,
		MoveY:    s.input.Right,
		Yaw:      s.input.Yaw,
		Pitch:    s.input.Pitch,
		Jump:     s.input.Jump,
		Crouch:   s.input.Crouch,
	}
	s.input.Jump = false

	v.mover.SetInput(moveInput(msg))
	if msg.Jump && v.actor.Jump() {
		v.mover.Launch()
	}
	switch {
	case msg.Crouch && !v.mover.IsCrouched():
		v.actor.Crouch()
	case !msg.Crouch && v.mover.IsCrouched():
		v.mover.UnCrouch()
	}

	if v.mover.Step(dt, v.actor.MovementModifier()) {
		v.actor.Landed()
	}
	s.prediction.Store(msg, v.mover.Location())

	if s.caller == nil {
		return
	}
	if err := s.caller.Call(msg); err != nil {
		s.logger.Debug().Err(err).Msg("move not sent")
	}
}

func moveInput(m messages.RequestMove) arena.Input {
	return arena.Input{
		Forward: mgl64.Clamp(m.MoveX, -1, 1),
		Right:   mgl64.Clamp(m.MoveY, -1, 1),
		Yaw:     mgl64.DegToRad(m.Yaw),
		Pitch:   mgl64.DegToRad(m.Pitch),
	}
}

func (s *Session) deps() combat.Deps {
	return combat.Deps{
		World:     world{s},
		Cosmetics: s.cosmetics,
		Caller:    s.caller,
		Bus:       s.bus,
		Logger:    s.logger,
	}
}

// create is the mirror factory for objects seen for the first time.
func (s *Session) create(upd messages.ReplicationUpdate) (replication.Target, error) {
	switch upd.Kind {
	case netconfig.KindActor:
		return s.createActor(upd.ObjectID), nil
	case netconfig.KindWeapon:
		w := combat.NewWeapon("", netconfig.RoleObserver, s.deps())
		w.SetNetID(upd.ObjectID)
		s.weapons[upd.ObjectID] = w
		return &weaponView{s: s, weapon: w}, nil
	}
	return nil, fmt.Errorf("unknown object kind %d", upd.Kind)
}

func (s *Session) createActor(id netconfig.NetID) *actorView {
	opts := combat.ActorOptions{Role: netconfig.RoleObserver}
	if id == s.localID {
		opts.LocallyControlled = true
		opts.Controller = s.controller
	}
	a := combat.NewActor(opts, s.deps())
	a.SetNetID(id)

	t, known := s.transforms[id]
	mover := arena.NewMover(s.arena.AddBody(id, mgl64.Vec3{t.X, t.Y, t.Z}), mgl64.DegToRad(t.Yaw))
	a.SetMovement(mover)

	v := &actorView{s: s, actor: a, mover: mover}
	s.actors[id] = v
	if known {
		s.ApplyTransform(t)
	}

	s.logger.Debug().Uint32("actor", uint32(id)).Bool("local", opts.LocallyControlled).Msg("actor mirrored")
	return v
}

// expire drops an object whose local lifespan ran out. Torn-off objects
// never get a destroy from the authority, so this is how they go away.
func (s *Session) expire(id netconfig.NetID) {
	s.mirror.Forget(id)
	if _, ok := s.actors[id]; ok {
		s.dropActor(id)
		return
	}
	delete(s.weapons, id)
}

func (s *Session) dropActor(id netconfig.NetID) {
	delete(s.actors, id)
	delete(s.transforms, id)
	s.arena.RemoveBody(id)
	if f, ok := s.cosmetics.(interface{ Forget(netconfig.NetID) }); ok {
		f.Forget(id)
	}
}

func (s *Session) actorIDs() []netconfig.NetID {
	ids := make([]netconfig.NetID, 0, len(s.actors))
	for id := range s.actors {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// actorView binds a mirrored actor to its local body.
type actorView struct {
	s     *Session
	actor *combat.Actor
	mover *arena.Mover
}

func (v *actorView) Fields() []replication.Value { return v.actor.Fields() }

func (v *actorView) TornOff() {
	v.actor.TornOff()
	v.mover.StopReplication()
}

func (v *actorView) Destroyed() {
	v.actor.Destroyed()
	v.s.dropActor(v.actor.ID())
}

type weaponView struct {
	s      *Session
	weapon *combat.Weapon
}

func (v *weaponView) Fields() []replication.Value { return v.weapon.Fields() }
func (v *weaponView) TornOff()                    { v.weapon.TornOff() }

func (v *weaponView) Destroyed() {
	v.weapon.Destroyed()
	delete(v.s.weapons, v.weapon.ID())
}
