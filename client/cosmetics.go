package client

import (
	"time"

	"github.com/automoto/hitscan-mp/combat"
	"github.com/automoto/hitscan-mp/config"
	"github.com/automoto/hitscan-mp/shared/netconfig"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Cosmetics is the headless presentation layer. It logs what a renderer
// would draw and blends bodies into ragdoll over config.Death.RagdollBlend.
type Cosmetics struct {
	logger         zerolog.Logger
	deathAnimation time.Duration

	blends  map[netconfig.NetID]*gween.Tween
	weights map[netconfig.NetID]float32

	Trails  int
	Impacts int
}

var _ combat.Cosmetics = (*Cosmetics)(nil)

// NewCosmetics creates cosmetics whose death animation lasts deathAnimation.
// Zero means no animation: bodies go ragdoll right away.
func NewCosmetics(logger zerolog.Logger, deathAnimation time.Duration) *Cosmetics {
	return &Cosmetics{
		logger:         logger,
		deathAnimation: deathAnimation,
		blends:         make(map[netconfig.NetID]*gween.Tween),
		weights:        make(map[netconfig.NetID]float32),
	}
}

func (c *Cosmetics) PlayTrail(weapon netconfig.NetID, start, end mgl64.Vec3) {
	c.Trails++
	c.logger.Debug().
		Uint32("weapon", uint32(weapon)).
		Floats64("start", start[:]).
		Floats64("end", end[:]).
		Msg("trail")
}

func (c *Cosmetics) PlayImpact(weapon netconfig.NetID, hit combat.TraceResult) {
	c.Impacts++
	ev := c.logger.Debug().
		Uint32("weapon", uint32(weapon)).
		Floats64("at", hit.Impact[:]).
		Str("material", hit.Material)
	if hit.Actor != 0 {
		ev = ev.Uint32("actor", uint32(hit.Actor)).Str("bone", hit.Bone)
	}
	ev.Msg("impact")
}

func (c *Cosmetics) AttachWeapon(weapon, holder netconfig.NetID) {
	c.logger.Debug().Uint32("weapon", uint32(weapon)).Uint32("holder", uint32(holder)).Msg("weapon attached")
}

func (c *Cosmetics) PlayDeathAnimation(actor netconfig.NetID) time.Duration {
	if c.deathAnimation > 0 {
		c.logger.Info().Uint32("actor", uint32(actor)).Dur("length", c.deathAnimation).Msg("death animation")
	}
	return c.deathAnimation
}

// EnableRagdoll starts blending the body from its pose into ragdoll.
func (c *Cosmetics) EnableRagdoll(actor netconfig.NetID) {
	c.logger.Info().Uint32("actor", uint32(actor)).Msg("ragdoll")

	blend := config.Death.RagdollBlend
	if blend <= 0 {
		c.weights[actor] = 1
		return
	}
	c.weights[actor] = 0
	c.blends[actor] = gween.New(0, 1, float32(blend.Seconds()), ease.OutQuad)
}

func (c *Cosmetics) OnReceiveHit(actor netconfig.NetID, info combat.HitInfo) {
	c.logger.Info().
		Uint32("actor", uint32(actor)).
		Str("bone", info.HitBone).
		Float32("damage", info.Damage).
		Uint32("causer", uint32(info.DamageCauser)).
		Msg("hit")
}

// Update advances running ragdoll blends.
func (c *Cosmetics) Update(dt time.Duration) {
	for id, tw := range c.blends {
		w, done := tw.Update(float32(dt.Seconds()))
		c.weights[id] = w
		if done {
			c.weights[id] = 1
			delete(c.blends, id)
		}
	}
}

// RagdollWeight reports how far an actor has blended into ragdoll, from 0
// to 1. False means the actor is not ragdolling.
func (c *Cosmetics) RagdollWeight(actor netconfig.NetID) (float32, bool) {
	w, ok := c.weights[actor]
	return w, ok
}

// Forget drops blend state for a removed actor.
func (c *Cosmetics) Forget(actor netconfig.NetID) {
	delete(c.blends, actor)
	delete(c.weights, actor)
}
