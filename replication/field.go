// Package replication moves authoritative field values to observers. The
// authority registers objects with a Bridge and flushes once per tick;
// observers feed what they receive into a Mirror, which fires the on-change
// hooks bound to each field.
package replication

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Condition restricts which observers receive a field.
type Condition uint8

const (
	// CondAlways sends the field to every observer whenever it changes.
	CondAlways Condition = iota
	// CondSkipOwner never sends the field to the owning controller, which
	// predicts it locally.
	CondSkipOwner
	// CondInitialOnly sends the field only with an observer's first update.
	CondInitialOnly
)

func (c Condition) String() string {
	switch c {
	case CondAlways:
		return "always"
	case CondSkipOwner:
		return "skip_owner"
	case CondInitialOnly:
		return "initial_only"
	}
	return "unknown"
}

// Value is the type-erased view of a Field used by Bridge and Mirror.
type Value interface {
	Name() string
	Condition() Condition
	Encode() ([]byte, error)
	// Apply decodes data into the field. The returned notify func is non-nil
	// when the value changed and an on-change hook is bound.
	Apply(data []byte) (notify func(), err error)
}

// Field is a replicated value. The authority writes it with Set; observers
// receive it through Apply and react through the OnRep hook.
type Field[T comparable] struct {
	name  string
	cond  Condition
	value T
	onRep func(old T)
}

// NewField creates a field holding initial.
func NewField[T comparable](name string, cond Condition, initial T) *Field[T] {
	return &Field[T]{name: name, cond: cond, value: initial}
}

// OnRep binds the hook Apply calls after the value changed. Only one hook is
// kept.
func (f *Field[T]) OnRep(fn func(old T)) {
	f.onRep = fn
}

func (f *Field[T]) Name() string         { return f.name }
func (f *Field[T]) Condition() Condition { return f.cond }

// Get returns the current value.
func (f *Field[T]) Get() T {
	return f.value
}

// Set stores v and reports whether it differs from the previous value. It
// never fires the OnRep hook.
func (f *Field[T]) Set(v T) bool {
	if f.value == v {
		return false
	}
	f.value = v
	return true
}

// Encode serializes the current value with msgpack.
func (f *Field[T]) Encode() ([]byte, error) {
	data, err := msgpack.Marshal(f.value)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", f.name, err)
	}
	return data, nil
}

// Apply implements Value.
func (f *Field[T]) Apply(data []byte) (func(), error) {
	var v T
	if err := msgpack.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode %s: %w", f.name, err)
	}
	old := f.value
	if !f.Set(v) || f.onRep == nil {
		return nil, nil
	}
	hook := f.onRep
	return func() { hook(old) }, nil
}
