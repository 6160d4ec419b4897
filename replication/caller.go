package replication

import "github.com/automoto/hitscan-mp/shared/netconfig"

// Caller delivers reliable, ordered, one-way requests from an observer to the
// authority. There is no reply; the authority validates and may drop.
type Caller interface {
	Call(msg any) error
}

// CallerFunc adapts a function to Caller.
type CallerFunc func(msg any) error

func (f CallerFunc) Call(msg any) error { return f(msg) }

// Loopback hands requests straight to an in-process authority handler,
// tagged with the calling controller. Used by tests and local play.
type Loopback struct {
	From    netconfig.ControllerID
	Handler func(from netconfig.ControllerID, msg any)
}

func (l *Loopback) Call(msg any) error {
	if l.Handler != nil {
		l.Handler(l.From, msg)
	}
	return nil
}
