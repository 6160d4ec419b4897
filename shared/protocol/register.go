// Package protocol binds the best-effort snapshot components to their necs
// sync ids. Both processes must agree on these.
package protocol

import (
	"fmt"
	"sync"

	"github.com/automoto/hitscan-mp/shared/netcomponents"
	"github.com/leap-fish/necs/esync"
)

// ID 1 is taken by necs for the network id component.
const (
	SyncIDTransform uint = 10
	SyncIDGameState uint = 11

	InterpIDTransform uint8 = 10
)

var (
	registerOnce sync.Once
	registerErr  error
)

// RegisterComponents registers the snapshot components with esync. It is
// safe to call more than once; only the first call registers.
func RegisterComponents() error {
	registerOnce.Do(func() {
		registerErr = register()
	})
	return registerErr
}

func register() error {
	// Remote bodies interpolate between snapshots.
	if err := esync.RegisterComponent(
		SyncIDTransform,
		netcomponents.NetTransformData{},
		netcomponents.NetTransform,
		esync.WithInterpFn(InterpIDTransform, netcomponents.LerpNetTransform),
	); err != nil {
		return fmt.Errorf("register transform: %w", err)
	}

	if err := esync.RegisterComponent(
		SyncIDGameState,
		netcomponents.NetGameStateData{},
		netcomponents.NetGameState,
	); err != nil {
		return fmt.Errorf("register game state: %w", err)
	}
	return nil
}
