package arena

import (
	"github.com/automoto/hitscan-mp/config"
	"github.com/automoto/hitscan-mp/shared/netconfig"
	"github.com/automoto/hitscan-mp/tags"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/solarlune/resolv"
)

// Bone names reported by traces that hit a body.
const (
	BonePelvis = "pelvis"
	BoneSpine  = "spine_01"
	BoneHead   = "head"
)

// Fraction of the body height covered by the pelvis volume.
const pelvisFraction = 0.45

// HitVolume is one bone box of a body.
type HitVolume struct {
	Bone     string
	Min, Max mgl64.Vec3
}

// Body is an actor's footprint in the space plus its bone volumes. Pos is
// the center of the feet.
type Body struct {
	arena *Arena
	id    netconfig.NetID
	obj   *resolv.Object

	pos      mgl64.Vec3
	crouched bool
	ragdoll  bool
}

func bodyRadius() float64 { return config.Character.CapsuleRadius }

func newBody(a *Arena, id netconfig.NetID, pos mgl64.Vec3) *Body {
	r := bodyRadius()
	b := &Body{arena: a, id: id, pos: pos}
	b.obj = resolv.NewObject(pos.X()-r, pos.Y()-r, 2*r, 2*r, tags.ResolvActor)
	b.obj.SetShape(resolv.NewRectangle(0, 0, 2*r, 2*r))
	b.obj.Data = b
	return b
}

func (b *Body) ID() netconfig.NetID       { return b.id }
func (b *Body) Position() mgl64.Vec3      { return b.pos }
func (b *Body) IsCrouched() bool          { return b.crouched }
func (b *Body) IsRagdoll() bool           { return b.ragdoll }
func (b *Body) SetCrouched(crouched bool) { b.crouched = crouched }

// Height is the current standing or crouched height.
func (b *Body) Height() float64 {
	if b.crouched {
		return config.Character.CrouchedHeight
	}
	return config.Character.CapsuleHeight
}

// EyeHeight is the aim camera height above the feet.
func (b *Body) EyeHeight() float64 {
	if b.crouched {
		return config.Character.CrouchedEyeHeight
	}
	return config.Character.EyeHeight
}

// SetPosition moves the body and re-indexes it in the space.
func (b *Body) SetPosition(p mgl64.Vec3) {
	p = b.arena.clamp(p)
	b.pos = p
	r := bodyRadius()
	b.obj.X = p.X() - r
	b.obj.Y = p.Y() - r
	b.obj.Update()
}

// SetRagdoll switches the body to a ragdoll. Ragdolls no longer block
// traces.
func (b *Body) SetRagdoll() {
	if b.ragdoll {
		return
	}
	b.ragdoll = true
	b.obj.RemoveTags(tags.ResolvActor)
	b.obj.AddTags(tags.ResolvRagdoll)
}

// HitVolumes returns the bone boxes, bottom to top.
func (b *Body) HitVolumes() []HitVolume {
	r := bodyRadius()
	h := b.Height()
	head := min(config.Character.HeadHeight, h/2)
	headR := r * 0.6
	x, y, z := b.pos.X(), b.pos.Y(), b.pos.Z()
	pelvisTop := z + h*pelvisFraction

	return []HitVolume{
		{Bone: BonePelvis, Min: mgl64.Vec3{x - r, y - r, z}, Max: mgl64.Vec3{x + r, y + r, pelvisTop}},
		{Bone: BoneSpine, Min: mgl64.Vec3{x - r, y - r, pelvisTop}, Max: mgl64.Vec3{x + r, y + r, z + h - head}},
		{Bone: BoneHead, Min: mgl64.Vec3{x - headR, y - headR, z + h - head}, Max: mgl64.Vec3{x + headR, y + headR, z + h}},
	}
}
