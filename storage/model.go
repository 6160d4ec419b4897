package storage

import "time"

// Models is every table the journal migrates.
var Models = []interface{}{
	&Match{},
	&KillRecord{},
	&HitRecord{},
}

// Match is one played round on a level.
type Match struct {
	ID         uint      `gorm:"primarykey"`
	ServerName string    `gorm:"size:127"`
	Level      string    `gorm:"size:127"`
	StartedAt  time.Time `gorm:"index:idx_match_started"`
	EndedAt    *time.Time
}

// KillRecord is written once per death.
type KillRecord struct {
	ID         uint      `gorm:"primarykey"`
	MatchID    uint      `gorm:"index:idx_kill_match_id"`
	Match      Match     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:MatchID;"`
	Time       time.Time `gorm:"index:idx_kill_time"`
	Killer     uint32    // controller id, 0 for environment kills
	Victim     uint32
	KillerName string `gorm:"size:64"`
	VictimName string `gorm:"size:64"`
}

// HitRecord is written for every hit that changed health.
type HitRecord struct {
	ID      uint      `gorm:"primarykey"`
	MatchID uint      `gorm:"index:idx_hit_match_id"`
	Match   Match     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:MatchID;"`
	Time    time.Time `gorm:"index:idx_hit_time"`
	Victim  uint32    // actor net id
	Causer  uint32
	Bone    string `gorm:"size:32"`
	Damage  float32
	X, Y, Z float64
}
