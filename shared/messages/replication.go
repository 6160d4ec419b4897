package messages

import "github.com/automoto/hitscan-mp/shared/netconfig"

// FieldValue is one replicated field encoded with msgpack.
type FieldValue struct {
	Name string
	Data []byte
}

// ReplicationUpdate carries the changed fields of one object for one observer.
// Initial is set on the first update an observer receives for the object, and
// TornOff on the last one the authority will ever send for it.
type ReplicationUpdate struct {
	ObjectID netconfig.NetID
	Kind     netconfig.ObjectKind
	OwnerID  netconfig.NetID // owning actor for weapons, 0 for actors
	Initial  bool
	TornOff  bool
	Fields   []FieldValue
}

// ReplicationBatch groups all updates of one flush for one observer.
type ReplicationBatch struct {
	Tick    uint64
	Updates []ReplicationUpdate
}

// ReplicationDestroy tells observers an object no longer exists. Never sent
// for torn-off objects.
type ReplicationDestroy struct {
	ObjectID netconfig.NetID
}
