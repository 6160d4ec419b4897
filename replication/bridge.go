package replication

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/automoto/hitscan-mp/shared/messages"
	"github.com/automoto/hitscan-mp/shared/netconfig"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/metric"
)

// Observer is a remote process receiving replicated state.
type Observer interface {
	ObserverID() netconfig.ControllerID
	SendReplication(batch messages.ReplicationBatch) error
	SendDestroy(msg messages.ReplicationDestroy) error
}

// Object is a registered replicated object.
type Object struct {
	id     netconfig.NetID
	kind   netconfig.ObjectKind
	parent netconfig.NetID
	owner  netconfig.ControllerID
	fields []Value

	tornOff bool
}

// ID returns the object's network id.
func (o *Object) ID() netconfig.NetID { return o.id }

// Kind returns the object's kind.
func (o *Object) Kind() netconfig.ObjectKind { return o.kind }

type observerState struct {
	obs  Observer
	sent map[netconfig.NetID]map[string][]byte // last pushed encoding per field
}

// Bridge is the authority side of replication. All methods are safe for
// concurrent use, but the server only calls them from its tick goroutine.
type Bridge struct {
	logger zerolog.Logger

	mu        sync.Mutex
	nextID    netconfig.NetID
	objects   map[netconfig.NetID]*Object
	observers map[netconfig.ControllerID]*observerState
	tick      uint64

	pushed metric.Int64Counter
}

// NewBridge creates an empty bridge.
func NewBridge(logger zerolog.Logger) (*Bridge, error) {
	pushed, err := meter().Int64Counter(
		"replication.fields.pushed",
		metric.WithDescription("Total field values pushed to observers"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pushed counter: %w", err)
	}

	return &Bridge{
		logger:    logger,
		objects:   make(map[netconfig.NetID]*Object),
		observers: make(map[netconfig.ControllerID]*observerState),
		pushed:    pushed,
	}, nil
}

// Register adds an object and assigns its NetID. parent is the owning actor
// for weapons and zero otherwise; owner is the controller skipped by
// CondSkipOwner fields.
func (b *Bridge) Register(kind netconfig.ObjectKind, parent netconfig.NetID, owner netconfig.ControllerID, fields ...Value) *Object {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	o := &Object{
		id:     b.nextID,
		kind:   kind,
		parent: parent,
		owner:  owner,
		fields: fields,
	}
	b.objects[o.id] = o
	return o
}

// SetOwner changes the controller that CondSkipOwner fields skip.
func (b *Bridge) SetOwner(id netconfig.NetID, owner netconfig.ControllerID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if o, ok := b.objects[id]; ok {
		o.owner = owner
	}
}

// Has reports whether id is still replicated.
func (b *Bridge) Has(id netconfig.NetID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.objects[id]
	return ok
}

// TearOff makes the next flush the last one for id. Observers that already
// know the object get its final changed fields flagged TornOff; afterwards it
// is forgotten and never destroyed on observers.
func (b *Bridge) TearOff(id netconfig.NetID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if o, ok := b.objects[id]; ok {
		o.tornOff = true
	}
}

// Destroy removes id and tells every observer that knows it. Torn-off
// objects are dropped silently.
func (b *Bridge) Destroy(id netconfig.NetID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	o, ok := b.objects[id]
	if !ok {
		return
	}
	delete(b.objects, id)
	if o.tornOff {
		return
	}

	for _, st := range b.observers {
		if _, known := st.sent[id]; !known {
			continue
		}
		delete(st.sent, id)
		if err := st.obs.SendDestroy(messages.ReplicationDestroy{ObjectID: id}); err != nil {
			b.logger.Warn().Err(err).Uint32("observer", uint32(st.obs.ObserverID())).Msg("destroy send failed")
		}
	}
}

// AddObserver starts replicating to obs. Its first flush carries the
// initial state of every live object.
func (b *Bridge) AddObserver(obs Observer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.observers[obs.ObserverID()] = &observerState{
		obs:  obs,
		sent: make(map[netconfig.NetID]map[string][]byte),
	}
}

// RemoveObserver stops replicating to the controller.
func (b *Bridge) RemoveObserver(id netconfig.ControllerID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.observers, id)
}

// Flush pushes every field whose encoding differs from what each observer
// last received, honoring field conditions. It returns the number of
// updates sent.
func (b *Bridge) Flush() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.tick++

	ids := make([]netconfig.NetID, 0, len(b.objects))
	for id := range b.objects {
		ids = append(ids, id)
	}
	// Children go first so a holder's hooks can resolve them in the same batch.
	sort.Slice(ids, func(i, j int) bool {
		ci, cj := b.objects[ids[i]].parent != 0, b.objects[ids[j]].parent != 0
		if ci != cj {
			return ci
		}
		return ids[i] < ids[j]
	})

	encoded := make(map[Value][]byte)
	encode := func(v Value) ([]byte, bool) {
		if data, ok := encoded[v]; ok {
			return data, data != nil
		}
		data, err := v.Encode()
		if err != nil {
			b.logger.Error().Err(err).Str("field", v.Name()).Msg("field encode failed")
		}
		encoded[v] = data
		return data, data != nil
	}

	obsIDs := make([]netconfig.ControllerID, 0, len(b.observers))
	for id := range b.observers {
		obsIDs = append(obsIDs, id)
	}
	sort.Slice(obsIDs, func(i, j int) bool { return obsIDs[i] < obsIDs[j] })

	sentUpdates := 0
	for _, oid := range obsIDs {
		st := b.observers[oid]
		batch := messages.ReplicationBatch{Tick: b.tick}

		for _, id := range ids {
			o := b.objects[id]
			last, known := st.sent[id]
			if o.tornOff && !known {
				continue
			}
			initial := !known
			if initial {
				last = make(map[string][]byte, len(o.fields))
				st.sent[id] = last
			}

			upd := messages.ReplicationUpdate{
				ObjectID: o.id,
				Kind:     o.kind,
				OwnerID:  o.parent,
				Initial:  initial,
				TornOff:  o.tornOff,
			}
			for _, f := range o.fields {
				if !b.shouldSend(f, o, oid, initial) {
					continue
				}
				data, ok := encode(f)
				if !ok {
					continue
				}
				if prev, seen := last[f.Name()]; seen && bytes.Equal(prev, data) {
					continue
				}
				last[f.Name()] = data
				upd.Fields = append(upd.Fields, messages.FieldValue{Name: f.Name(), Data: data})
			}

			if len(upd.Fields) > 0 || initial || o.tornOff {
				batch.Updates = append(batch.Updates, upd)
			}
			if o.tornOff {
				delete(st.sent, id)
			}
		}

		if len(batch.Updates) == 0 {
			continue
		}
		fields := 0
		for _, u := range batch.Updates {
			fields += len(u.Fields)
		}
		if err := st.obs.SendReplication(batch); err != nil {
			b.logger.Warn().Err(err).Uint32("observer", uint32(oid)).Msg("replication send failed")
			continue
		}
		b.pushed.Add(context.Background(), int64(fields))
		sentUpdates += len(batch.Updates)
	}

	for _, id := range ids {
		if b.objects[id].tornOff {
			delete(b.objects, id)
		}
	}

	return sentUpdates
}

func (b *Bridge) shouldSend(f Value, o *Object, observer netconfig.ControllerID, initial bool) bool {
	switch f.Condition() {
	case CondSkipOwner:
		return o.owner == 0 || o.owner != observer
	case CondInitialOnly:
		return initial
	}
	return true
}
