package client

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/automoto/hitscan-mp/config"
)

// Bot drives a session with scripted input: it walks in a slow circle and
// alternates fire bursts with the odd sprint, swapping weapons now and then.
type Bot struct {
	cfg config.BotConfig
	rng *rand.Rand

	yaw       float64
	phase     time.Duration
	firing    bool
	sinceSwap time.Duration
}

func NewBot(cfg config.BotConfig) *Bot {
	return &Bot{
		cfg: cfg,
		rng: rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x5851f42d4c957f2d)),
	}
}

// Drive feeds one frame of input. Call it before Session.Tick.
func (b *Bot) Drive(s *Session, dt time.Duration) {
	a, ok := s.LocalActor()
	if !ok || a.IsDying() {
		b.firing = false
		b.phase = 0
		return
	}

	b.yaw = math.Mod(b.yaw+b.cfg.TurnRate*dt.Seconds(), 360)
	s.SetInput(Input{Forward: 1, Yaw: b.yaw})

	if w := a.EquippedWeapon(); w != nil && w.Ammo() == 0 && !w.IsReloading() {
		s.Reload()
		b.firing = false
	}

	b.phase += dt
	switch {
	case b.firing && b.phase >= b.cfg.BurstLength:
		s.StopFire()
		b.firing = false
		b.phase = 0
	case !b.firing && b.phase >= b.cfg.BurstPause:
		if b.rng.Float64() < b.cfg.RunChance {
			s.ToggleRunning()
		} else {
			s.StartFire()
			b.firing = true
		}
		b.phase = 0
	}

	b.sinceSwap += dt
	if b.cfg.SwapEvery > 0 && b.sinceSwap >= b.cfg.SwapEvery {
		s.SwapWeapon()
		b.sinceSwap = 0
	}
}
