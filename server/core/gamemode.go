package core

import (
	"time"

	"github.com/automoto/hitscan-mp/combat"
	"github.com/automoto/hitscan-mp/config"
	"github.com/automoto/hitscan-mp/events"
	"github.com/automoto/hitscan-mp/shared/netcomponents"
	"github.com/automoto/hitscan-mp/shared/netconfig"
	"github.com/leap-fish/necs/esync/srvsync"
	"github.com/yohamta/donburi"
)

// Time between a finished match and the next one.
const intermission = 10 * time.Second

// KillEvent is the ScoreboardUpdate payload.
type KillEvent struct {
	Killer, Victim         netconfig.ControllerID
	KillerName, VictimName string
	Kills                  int  // killer total after this kill
	MatchID                uint // journal match, zero when not journaled
}

// GameMode runs the match state machine and keeps the replicated
// scoreboard. It is the combat.Scorer and combat.DamageModifier of every
// actor.
type GameMode struct {
	s        *Server
	entity   donburi.Entity
	state    netconfig.MatchStateID
	deadline time.Duration
	match    uint
}

var (
	_ combat.Scorer         = (*GameMode)(nil)
	_ combat.DamageModifier = (*GameMode)(nil)
)

func newGameMode(s *Server) *GameMode {
	g := &GameMode{s: s}
	g.entity = s.world.Create(netcomponents.NetGameState)
	netcomponents.NetGameState.SetValue(s.world.Entry(g.entity), netcomponents.NetGameStateData{
		Kills:      make(map[netconfig.ControllerID]int),
		Deaths:     make(map[netconfig.ControllerID]int),
		MatchState: netconfig.MatchStateWaiting,
	})
	if err := srvsync.NetworkSync(s.world, &g.entity, netcomponents.NetGameState); err != nil {
		s.logger.Error().Err(err).Msg("network sync setup failed")
	}
	return g
}

func (g *GameMode) State() netconfig.MatchStateID { return g.state }

// Match is the journal id of the match being played, zero outside one or
// without a journal.
func (g *GameMode) Match() uint { return g.match }

func (g *GameMode) scoreboard() *netcomponents.NetGameStateData {
	return netcomponents.NetGameState.Get(g.s.world.Entry(g.entity))
}

// Scores returns a copy of the kill and death tallies.
func (g *GameMode) Scores() (kills, deaths map[netconfig.ControllerID]int) {
	sb := g.scoreboard()
	kills = make(map[netconfig.ControllerID]int, len(sb.Kills))
	deaths = make(map[netconfig.ControllerID]int, len(sb.Deaths))
	for k, v := range sb.Kills {
		kills[k] = v
	}
	for k, v := range sb.Deaths {
		deaths[k] = v
	}
	return kills, deaths
}

// ModifyDamage lets damage through only while a match is being played.
func (g *GameMode) ModifyDamage(_ *combat.Actor, amount float32, _ combat.DamageEvent, _ netconfig.ControllerID, _ netconfig.NetID) float32 {
	if g.state != netconfig.MatchStatePlaying {
		return 0
	}
	return amount
}

// ScoreKill counts the death and, unless it was a suicide or an
// environment kill, credits the killer.
func (g *GameMode) ScoreKill(killer, victim netconfig.ControllerID) {
	sb := g.scoreboard()
	if victim != 0 {
		sb.Deaths[victim]++
	}
	if killer != 0 && killer != victim {
		sb.Kills[killer]++
	}

	g.s.bus.Publish(events.ScoreboardUpdate, KillEvent{
		Killer:     killer,
		Victim:     victim,
		KillerName: g.s.controllerName(killer),
		VictimName: g.s.controllerName(victim),
		Kills:      sb.Kills[killer],
		MatchID:    g.match,
	})
}

// PlayerJoined may start a match.
func (g *GameMode) PlayerJoined() {
	if g.state == netconfig.MatchStateWaiting && len(g.s.controllers) >= config.Server.MinPlayers {
		g.start()
	}
}

// PlayerLeft ends the match once nobody is left to play it.
func (g *GameMode) PlayerLeft() {
	if g.state == netconfig.MatchStatePlaying && len(g.s.controllers) == 0 {
		g.finish()
	}
}

// Update advances timed transitions.
func (g *GameMode) Update() {
	switch g.state {
	case netconfig.MatchStateWaiting:
		g.PlayerJoined()
	case netconfig.MatchStatePlaying:
		if g.s.now >= g.deadline {
			g.finish()
		}
	case netconfig.MatchStateFinished:
		if g.s.now >= g.deadline {
			g.setState(netconfig.MatchStateWaiting)
		}
	}
}

// Close ends a running match.
func (g *GameMode) Close() {
	if g.state == netconfig.MatchStatePlaying {
		g.finish()
	}
}

func (g *GameMode) start() {
	sb := g.scoreboard()
	sb.Kills = make(map[netconfig.ControllerID]int)
	sb.Deaths = make(map[netconfig.ControllerID]int)
	g.deadline = g.s.now + config.Server.MatchTime
	g.setState(netconfig.MatchStatePlaying)

	if j := g.s.journal; j != nil {
		match, err := j.StartMatch(g.s.name, g.s.level)
		if err != nil {
			g.s.logger.Error().Err(err).Msg("journal start failed")
		}
		g.match = match
	}
	g.s.logger.Info().Int("players", len(g.s.controllers)).Dur("length", config.Server.MatchTime).Msg("match started")
}

func (g *GameMode) finish() {
	g.deadline = g.s.now + intermission
	g.setState(netconfig.MatchStateFinished)
	g.match = 0

	if j := g.s.journal; j != nil {
		if err := j.EndMatch(); err != nil {
			g.s.logger.Error().Err(err).Msg("journal end failed")
		}
	}
	kills, _ := g.Scores()
	g.s.logger.Info().Interface("kills", kills).Msg("match finished")
}

func (g *GameMode) setState(state netconfig.MatchStateID) {
	g.state = state
	g.scoreboard().MatchState = state
}
