package messages

import "github.com/go-gl/mathgl/mgl64"

// ClientNotifyReceivedDamage tells a victim's controller where a hit came from.
// Consumed by UI only.
type ClientNotifyReceivedDamage struct {
	SourceLocation mgl64.Vec3
}

// ClientNotifyWeaponHit tells an instigating controller its weapon connected.
type ClientNotifyWeaponHit struct{}
