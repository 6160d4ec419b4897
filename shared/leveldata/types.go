// Package leveldata provides TMX arena parsing shared between client and server.
// It has no dependencies on donburi or resolv, pure data only.
package leveldata

// ArenaData holds all collision-relevant data parsed from a TMX arena file.
// The map is a top-down plan: X/Y come from the map, Z from object properties.
type ArenaData struct {
	Blockers    []Blocker
	SpawnPoints []SpawnPoint
	MapWidth    int
	MapHeight   int
}

// Blocker is an axis-aligned box that stops instant-hit traces.
type Blocker struct {
	X, Y, W, H float64
	ZMin, ZMax float64
	Material   string // impact effect selector, "" = default
}

// SpawnPoint represents a player spawn location.
type SpawnPoint struct {
	X, Y, Z float64
	Yaw     float64
	Index   int
}
