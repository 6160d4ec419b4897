package tags

import "github.com/yohamta/donburi"

var (
	Controller = donburi.NewTag().SetName("Controller")
	Actor      = donburi.NewTag().SetName("Actor")
	Dying      = donburi.NewTag().SetName("Dying")
)

// Resolv tags for the arena space
const (
	ResolvBlocker = "blocker"
	ResolvActor   = "actor"

	// Ragdolled bodies stay in the space but stop blocking traces
	ResolvRagdoll = "ragdoll"
)
