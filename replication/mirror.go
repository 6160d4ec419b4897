package replication

import (
	"fmt"

	"github.com/automoto/hitscan-mp/shared/messages"
	"github.com/automoto/hitscan-mp/shared/netconfig"
	"github.com/rs/zerolog"
)

// Target is the observer-side object a Mirror writes into.
type Target interface {
	Fields() []Value
	// TornOff runs after the final update of a torn-off object was applied.
	TornOff()
	// Destroyed runs when the authority destroys the object.
	Destroyed()
}

// Factory creates the local object for the first update of an id.
type Factory func(upd messages.ReplicationUpdate) (Target, error)

type mirrored struct {
	target  Target
	fields  map[string]Value
	tornOff bool
}

// Mirror is the observer side of replication. It is not safe for concurrent
// use; the client applies updates from a single goroutine.
type Mirror struct {
	logger  zerolog.Logger
	factory Factory
	objects map[netconfig.NetID]*mirrored
	tick    uint64
}

// NewMirror creates a mirror that builds unknown objects with factory.
func NewMirror(logger zerolog.Logger, factory Factory) *Mirror {
	return &Mirror{
		logger:  logger,
		factory: factory,
		objects: make(map[netconfig.NetID]*mirrored),
	}
}

// Track registers a locally created target under id, so updates for it are
// applied without going through the factory.
func (m *Mirror) Track(id netconfig.NetID, t Target) {
	m.objects[id] = newMirrored(t)
}

// Lookup returns the local object for id.
func (m *Mirror) Lookup(id netconfig.NetID) (Target, bool) {
	mo, ok := m.objects[id]
	if !ok {
		return nil, false
	}
	return mo.target, true
}

// LastTick returns the tick of the last applied batch.
func (m *Mirror) LastTick() uint64 { return m.tick }

// ApplyBatch applies every update of a batch in order.
func (m *Mirror) ApplyBatch(batch messages.ReplicationBatch) {
	m.tick = batch.Tick
	for _, upd := range batch.Updates {
		if err := m.Apply(upd); err != nil {
			m.logger.Warn().Err(err).Uint32("object", uint32(upd.ObjectID)).Msg("replication update dropped")
		}
	}
}

// Apply writes one update. All field values land before any on-change hook
// runs, so hooks see the whole update.
func (m *Mirror) Apply(upd messages.ReplicationUpdate) error {
	mo, ok := m.objects[upd.ObjectID]
	if !ok {
		if m.factory == nil {
			return fmt.Errorf("unknown object %d", upd.ObjectID)
		}
		t, err := m.factory(upd)
		if err != nil {
			return fmt.Errorf("create object %d: %w", upd.ObjectID, err)
		}
		mo = newMirrored(t)
		m.objects[upd.ObjectID] = mo
	}
	if mo.tornOff {
		return nil
	}

	var notifies []func()
	for _, fv := range upd.Fields {
		f, ok := mo.fields[fv.Name]
		if !ok {
			m.logger.Debug().Str("field", fv.Name).Msg("unknown field")
			continue
		}
		notify, err := f.Apply(fv.Data)
		if err != nil {
			m.logger.Warn().Err(err).Str("field", fv.Name).Msg("field skipped")
			continue
		}
		if notify != nil {
			notifies = append(notifies, notify)
		}
	}
	for _, n := range notifies {
		n()
	}

	if upd.TornOff {
		mo.tornOff = true
		mo.target.TornOff()
	}
	return nil
}

// ApplyDestroy removes id and runs its Destroyed hook.
func (m *Mirror) ApplyDestroy(msg messages.ReplicationDestroy) {
	mo, ok := m.objects[msg.ObjectID]
	if !ok {
		return
	}
	delete(m.objects, msg.ObjectID)
	mo.target.Destroyed()
}

// Forget drops id without running any hook. Used for torn-off objects whose
// local lifespan ran out.
func (m *Mirror) Forget(id netconfig.NetID) {
	delete(m.objects, id)
}

func newMirrored(t Target) *mirrored {
	mo := &mirrored{target: t, fields: make(map[string]Value)}
	for _, f := range t.Fields() {
		mo.fields[f.Name()] = f
	}
	return mo
}
