package arena

import (
	"math"
	"time"

	"github.com/automoto/hitscan-mp/config"
	"github.com/automoto/hitscan-mp/tags"
	"github.com/go-gl/mathgl/mgl64"
)

// Max height a walking body snaps up onto.
const stepHeight = 2.0

// Input is one tick of movement input. Forward and Right are in [-1, 1];
// Yaw and Pitch are radians.
type Input struct {
	Forward, Right float64
	Yaw, Pitch     float64
}

// Mover is the character movement of one body. It implements
// combat.Movement.
type Mover struct {
	body *Body

	vel      mgl64.Vec3
	yaw      float64
	pitch    float64
	input    mgl64.Vec3
	falling  bool
	stopped  bool
	disabled bool
}

// NewMover creates the movement for body.
func NewMover(body *Body, yaw float64) *Mover {
	return &Mover{body: body, yaw: yaw}
}

// Body returns the body the mover drives.
func (m *Mover) Body() *Body { return m.body }

// SetInput applies a tick of movement input. The world space direction is
// kept as the last movement input.
func (m *Mover) SetInput(in Input) {
	if m.disabled {
		return
	}
	m.SetAim(in.Yaw, in.Pitch)

	fwd := m.Forward()
	right := mgl64.Vec3{fwd.Y(), -fwd.X(), 0}
	dir := fwd.Mul(in.Forward).Add(right.Mul(in.Right))
	if l := dir.Len(); l > 1 {
		dir = dir.Mul(1 / l)
	}
	m.input = dir
}

// Launch starts a jump. Callers gate it on the actor's jump rules.
func (m *Mover) Launch() {
	if m.disabled {
		return
	}
	m.vel[2] = config.Character.JumpSpeed
	m.falling = true
}

func (m *Mover) IsFalling() bool               { return m.falling }
func (m *Mover) IsCrouched() bool              { return m.body.crouched }
func (m *Mover) Crouch()                       { m.body.SetCrouched(true) }
func (m *Mover) UnCrouch()                     { m.body.SetCrouched(false) }
func (m *Mover) Location() mgl64.Vec3          { return m.body.pos }
func (m *Mover) LastMovementInput() mgl64.Vec3 { return m.input }
func (m *Mover) IsStopped() bool               { return m.stopped }
func (m *Mover) IsDisabled() bool              { return m.disabled }
func (m *Mover) StopReplication()              { m.stopped = true }
func (m *Mover) Yaw() float64                  { return m.yaw }
func (m *Mover) Pitch() float64                { return m.pitch }
func (m *Mover) Velocity() mgl64.Vec3          { return m.vel }

// Forward is the facing direction on the ground plane.
func (m *Mover) Forward() mgl64.Vec3 {
	return mgl64.Vec3{math.Cos(m.yaw), math.Sin(m.yaw), 0}
}

// AimLocation is the eye position.
func (m *Mover) AimLocation() mgl64.Vec3 {
	return m.body.pos.Add(mgl64.Vec3{0, 0, m.body.EyeHeight()})
}

// AimDirection is the view direction from yaw and pitch.
func (m *Mover) AimDirection() mgl64.Vec3 {
	cp := math.Cos(m.pitch)
	return mgl64.Vec3{cp * math.Cos(m.yaw), cp * math.Sin(m.yaw), math.Sin(m.pitch)}
}

// SetAim turns the view without touching movement input.
func (m *Mover) SetAim(yaw, pitch float64) {
	m.yaw = yaw
	m.pitch = mgl64.Clamp(pitch, -math.Pi/2+0.01, math.Pi/2-0.01)
}

// Snap places the body at an authoritative transform. Observers drive
// remote bodies this way instead of stepping them.
func (m *Mover) Snap(pos, vel mgl64.Vec3, crouched, falling bool) {
	m.body.SetPosition(pos)
	m.body.SetCrouched(crouched)
	m.vel = vel
	m.falling = falling
}

// Disable zeroes velocity and input and turns the body into a ragdoll.
func (m *Mover) Disable() {
	m.disabled = true
	m.vel = mgl64.Vec3{}
	m.input = mgl64.Vec3{}
	m.body.SetRagdoll()
}

// Step advances the body by dt with the given speed modifier and reports
// whether it landed during the step.
func (m *Mover) Step(dt time.Duration, speedModifier float64) bool {
	if m.disabled {
		return false
	}
	secs := dt.Seconds()
	cfg := config.Character

	speed := cfg.WalkSpeed
	if m.body.crouched {
		speed = cfg.CrouchSpeed
	}
	speed *= speedModifier
	m.vel[0] = m.input.X() * speed
	m.vel[1] = m.input.Y() * speed

	pos := m.body.pos
	pos[0] += m.resolveAxis(m.vel.X()*secs, 0)
	m.body.SetPosition(pos)
	pos = m.body.pos
	pos[1] += m.resolveAxis(0, m.vel.Y()*secs)
	m.body.SetPosition(pos)
	pos = m.body.pos

	m.vel[2] = max(m.vel.Z()-cfg.Gravity*secs, -cfg.MaxFallSpeed)
	dz := m.vel.Z() * secs
	ground := m.groundHeight()
	landed := false

	switch {
	case pos.Z()+dz <= ground:
		pos[2] = ground
		m.vel[2] = 0
		landed = m.falling
		m.falling = false
	case dz > 0:
		if ceiling, ok := m.ceilingHeight(); ok && pos.Z()+m.body.Height()+dz > ceiling {
			pos[2] = ceiling - m.body.Height()
			m.vel[2] = 0
		} else {
			pos[2] += dz
		}
		m.falling = true
	default:
		pos[2] += dz
		m.falling = true
	}
	m.body.SetPosition(pos)
	return landed
}

// resolveAxis returns how far the body may move along one axis before
// touching a blocker that overlaps its vertical extent.
func (m *Mover) resolveAxis(dx, dy float64) float64 {
	move := dx + dy
	if move == 0 {
		return 0
	}
	check := m.body.obj.Check(dx, dy, tags.ResolvBlocker)
	if check == nil {
		return move
	}
	for _, o := range check.ObjectsByTags(tags.ResolvBlocker) {
		b := o.Data.(*blocker)
		if !m.blocksAt(b, dx, dy) {
			continue
		}
		contact := check.ContactWithObject(o)
		allowed := contact.X()
		if dy != 0 {
			allowed = contact.Y()
		}
		if math.Abs(allowed) < math.Abs(move) {
			move = allowed
		}
	}
	return move
}

// blocksAt reports whether b overlaps the body moved by (dx, dy).
func (m *Mover) blocksAt(b *blocker, dx, dy float64) bool {
	z := m.body.pos.Z()
	if b.max.Z() <= z+stepHeight || b.min.Z() >= z+m.body.Height() {
		return false
	}
	return m.footprintOverlaps(b, dx, dy)
}

func (m *Mover) footprintOverlaps(b *blocker, dx, dy float64) bool {
	r := bodyRadius()
	x, y := m.body.pos.X()+dx, m.body.pos.Y()+dy
	return x+r > b.min.X() && x-r < b.max.X() && y+r > b.min.Y() && y-r < b.max.Y()
}

// groundHeight is the highest blocker top below the feet, or the floor.
func (m *Mover) groundHeight() float64 {
	z := m.body.pos.Z()
	ground := 0.0
	m.eachNearBlocker(func(b *blocker) {
		if b.max.Z() <= z+stepHeight && b.max.Z() > ground && m.footprintOverlaps(b, 0, 0) {
			ground = b.max.Z()
		}
	})
	return ground
}

// ceilingHeight is the lowest blocker bottom above the head.
func (m *Mover) ceilingHeight() (float64, bool) {
	top := m.body.pos.Z() + m.body.Height()
	ceiling, found := math.Inf(1), false
	m.eachNearBlocker(func(b *blocker) {
		if b.min.Z() >= top && b.min.Z() < ceiling && m.footprintOverlaps(b, 0, 0) {
			ceiling, found = b.min.Z(), true
		}
	})
	return ceiling, found
}

func (m *Mover) eachNearBlocker(fn func(*blocker)) {
	check := m.body.obj.Check(0, 0, tags.ResolvBlocker)
	if check == nil {
		return
	}
	for _, o := range check.ObjectsByTags(tags.ResolvBlocker) {
		fn(o.Data.(*blocker))
	}
}

