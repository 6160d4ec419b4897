package core

import (
	"errors"

	"github.com/automoto/hitscan-mp/combat"
	"github.com/automoto/hitscan-mp/events"
	"github.com/automoto/hitscan-mp/storage"
)

const journalQueue = 256

// attachJournal records kills and health changing hits. Records are
// stamped with the match on the tick goroutine and written off it, so a
// match that ends while writes are queued keeps its last records.
func (s *Server) attachJournal() {
	j := s.journal

	s.bus.Subscribe(events.ScoreboardUpdate, func(e events.Event) {
		kill, ok := e.Payload.(KillEvent)
		if !ok || kill.MatchID == 0 {
			return
		}
		s.bus.Publish(events.JournalEntry, storage.KillRecord{
			MatchID:    kill.MatchID,
			Time:       e.Timestamp,
			Killer:     uint32(kill.Killer),
			Victim:     uint32(kill.Victim),
			KillerName: kill.KillerName,
			VictimName: kill.VictimName,
		})
	})

	s.bus.Subscribe(events.HitReceived, func(e events.Event) {
		hit, ok := e.Payload.(combat.HitEvent)
		match := s.mode.Match()
		if !ok || match == 0 {
			return
		}
		loc := hit.Info.HitLocation
		s.bus.Publish(events.JournalEntry, storage.HitRecord{
			MatchID: match,
			Time:    e.Timestamp,
			Victim:  uint32(hit.Actor),
			Causer:  uint32(hit.Info.DamageCauser),
			Bone:    hit.Info.HitBone,
			Damage:  hit.Info.Damage,
			X:       loc.X(),
			Y:       loc.Y(),
			Z:       loc.Z(),
		})
	})

	s.bus.Subscribe(events.JournalEntry, func(e events.Event) {
		switch rec := e.Payload.(type) {
		case storage.KillRecord:
			s.journalErr(j.RecordKill(rec.MatchID, rec))
		case storage.HitRecord:
			s.journalErr(j.RecordHit(rec.MatchID, rec))
		}
	}, events.Buffered(journalQueue))
}

func (s *Server) journalErr(err error) {
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrNoMatch):
		s.logger.Debug().Msg("journal write outside a match")
	default:
		s.logger.Error().Err(err).Msg("journal write failed")
	}
}
