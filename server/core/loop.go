package core

import (
	"time"

	"github.com/leap-fish/necs/esync/srvsync"
)

// GameLoop drives the server at a fixed rate: one simulation tick, then a
// snapshot sync to every client.
type GameLoop struct {
	server   *Server
	tickRate int
	stopChan chan struct{}
	overruns int
}

func NewGameLoop(server *Server, tickRate int) *GameLoop {
	return &GameLoop{
		server:   server,
		tickRate: tickRate,
		stopChan: make(chan struct{}),
	}
}

// Interval is the simulated time of one tick.
func (g *GameLoop) Interval() time.Duration {
	return time.Second / time.Duration(g.tickRate)
}

// Run blocks until Stop. The simulated step is always Interval; a tick that
// runs long is logged, not compensated.
func (g *GameLoop) Run() {
	ticker := time.NewTicker(g.Interval())
	defer ticker.Stop()

	log := g.server.logger
	log.Info().Int("tickRate", g.tickRate).Msg("game loop started")

	for {
		select {
		case <-g.stopChan:
			log.Info().Int("overruns", g.overruns).Msg("game loop stopped")
			return
		case <-ticker.C:
			start := time.Now()
			g.tick()
			if took := time.Since(start); took > g.Interval() {
				g.overruns++
				log.Warn().Dur("took", took).Dur("budget", g.Interval()).Msg("tick overrun")
			}
		}
	}
}

// Stop may be called more than once.
func (g *GameLoop) Stop() {
	select {
	case <-g.stopChan:
	default:
		close(g.stopChan)
	}
}

func (g *GameLoop) tick() {
	g.server.Tick(g.Interval())

	if err := srvsync.DoSync(); err != nil {
		g.server.logger.Error().Err(err).Msg("sync error")
	}
}
