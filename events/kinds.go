package events

// Gameplay event kinds. Payload types live with the code that publishes them.
const (
	HealthChanged     Kind = "health_changed"
	HitReceived       Kind = "hit_received"
	Died              Kind = "died"
	RunningChanged    Kind = "running_changed"
	WeaponEquipped    Kind = "weapon_equipped"
	WeaponsChanged    Kind = "weapons_changed"
	ShotFired         Kind = "shot_fired"
	ShotReplayed      Kind = "shot_replayed"
	ReceivedDamage    Kind = "received_damage"
	WeaponHit         Kind = "weapon_hit"
	RagdollStarted    Kind = "ragdoll_started"
	ScoreboardUpdate  Kind = "scoreboard_update"
	MatchStateChanged Kind = "match_state_changed"
	JournalEntry      Kind = "journal_entry"
)
