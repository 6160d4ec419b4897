package client

import (
	"sort"
	"time"

	"github.com/automoto/hitscan-mp/shared/netconfig"
)

type timer struct {
	at  time.Duration
	seq uint64
	fn  func()
}

// clock keeps the session's local time, delayed calls and object lifespans.
type clock struct {
	now       time.Duration
	seq       uint64
	timers    []timer
	lifespans map[netconfig.NetID]time.Duration
}

func newClock() clock {
	return clock{lifespans: make(map[netconfig.NetID]time.Duration)}
}

func (c *clock) after(d time.Duration, fn func()) {
	c.seq++
	c.timers = append(c.timers, timer{at: c.now + d, seq: c.seq, fn: fn})
}

func (c *clock) setLifespan(id netconfig.NetID, d time.Duration) {
	c.lifespans[id] = c.now + d
}

// advance moves time forward, fires due timers oldest first and returns
// the ids whose lifespan ran out, sorted.
func (c *clock) advance(dt time.Duration) []netconfig.NetID {
	c.now += dt

	var due, pending []timer
	for _, t := range c.timers {
		if t.at <= c.now {
			due = append(due, t)
		} else {
			pending = append(pending, t)
		}
	}
	c.timers = pending
	sort.Slice(due, func(i, j int) bool {
		if due[i].at != due[j].at {
			return due[i].at < due[j].at
		}
		return due[i].seq < due[j].seq
	})
	for _, t := range due {
		t.fn()
	}

	var expired []netconfig.NetID
	for id, at := range c.lifespans {
		if at <= c.now {
			expired = append(expired, id)
			delete(c.lifespans, id)
		}
	}
	sort.Slice(expired, func(i, j int) bool { return expired[i] < expired[j] })
	return expired
}
