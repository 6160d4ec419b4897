package config

import "time"

// CharacterConfig contains all actor-related configuration values
type CharacterConfig struct {
	// Combat
	MaxHealth         int32  `mapstructure:"maxHealth"`
	DefaultRadialBone string `mapstructure:"defaultRadialBone"` // bone recorded for radial damage

	// Running
	RunningMovementModifier float64 `mapstructure:"runningMovementModifier"`
	RunHeadingTolerance     float64 `mapstructure:"runHeadingTolerance"` // degrees between input and facing

	// Movement
	WalkSpeed    float64 `mapstructure:"walkSpeed"`
	CrouchSpeed  float64 `mapstructure:"crouchSpeed"`
	JumpSpeed    float64 `mapstructure:"jumpSpeed"`
	Gravity      float64 `mapstructure:"gravity"`
	MaxFallSpeed float64 `mapstructure:"maxFallSpeed"`
	MaxJumps     int     `mapstructure:"maxJumps"`

	// Dimensions
	CapsuleRadius     float64 `mapstructure:"capsuleRadius"`
	CapsuleHeight     float64 `mapstructure:"capsuleHeight"`
	CrouchedHeight    float64 `mapstructure:"crouchedHeight"`
	HeadHeight        float64 `mapstructure:"headHeight"`
	EyeHeight         float64 `mapstructure:"eyeHeight"`
	CrouchedEyeHeight float64 `mapstructure:"crouchedEyeHeight"`
}

// WeaponTypeConfig contains configuration for a specific weapon type
type WeaponTypeConfig struct {
	Damage        float32       `mapstructure:"damage"`
	SpreadDegrees float64       `mapstructure:"spreadDegrees"` // cone half angle
	FireInterval  time.Duration `mapstructure:"fireInterval"`
	MagazineSize  int32         `mapstructure:"magazineSize"`
	ReloadTime    time.Duration `mapstructure:"reloadTime"`
}

// WeaponConfig contains weapon system configuration
type WeaponConfig struct {
	MaxShotRange   float64                     `mapstructure:"maxShotRange"`
	Types          map[string]WeaponTypeConfig `mapstructure:"types"`
	DefaultLoadout []string                    `mapstructure:"defaultLoadout"` // slot-ordered type names
}

// DeathConfig contains timings applied once an actor dies
type DeathConfig struct {
	RagdollDelay   time.Duration `mapstructure:"ragdollDelay"` // upper bound on death anim before ragdoll
	RagdollBlend   time.Duration `mapstructure:"ragdollBlend"`
	WeaponLifespan time.Duration `mapstructure:"weaponLifespan"`
	ActorLifespan  time.Duration `mapstructure:"actorLifespan"`
}

// ServerConfig contains authority process settings
type ServerConfig struct {
	Port         uint          `mapstructure:"port"`
	TickRate     int           `mapstructure:"tickRate"`
	Name         string        `mapstructure:"name"`
	Level        string        `mapstructure:"level"`
	AssetsDir    string        `mapstructure:"assetsDir"` // contains levels/*.tmx
	MaxPlayers   int           `mapstructure:"maxPlayers"`
	MinPlayers   int           `mapstructure:"minPlayers"` // match starts once reached
	MatchTime    time.Duration `mapstructure:"matchTime"`
	RespawnDelay time.Duration `mapstructure:"respawnDelay"`
	LogLevel     string        `mapstructure:"logLevel"`
}

// StorageConfig contains combat journal settings
type StorageConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Driver  string `mapstructure:"driver"` // "sqlite" or "postgres"
	Path    string `mapstructure:"path"`   // sqlite file
	DSN     string `mapstructure:"dsn"`    // postgres connection string
}

// Global configuration instances
var (
	Character CharacterConfig
	Weapon    WeaponConfig
	Death     DeathConfig
	Server    ServerConfig
	Storage   StorageConfig
)

// Weapon type names used by the default loadout.
const (
	WeaponRifle  = "rifle"
	WeaponPistol = "pistol"
)

func init() {
	Defaults()
}

// Defaults resets every global to its built-in value.
func Defaults() {
	Character = CharacterConfig{
		MaxHealth:         100,
		DefaultRadialBone: "spine_01",

		RunningMovementModifier: 1.5,
		RunHeadingTolerance:     30.0,

		WalkSpeed:    400.0,
		CrouchSpeed:  200.0,
		JumpSpeed:    420.0,
		Gravity:      980.0,
		MaxFallSpeed: 4000.0,
		MaxJumps:     1,

		CapsuleRadius:     34.0,
		CapsuleHeight:     176.0,
		CrouchedHeight:    120.0,
		HeadHeight:        26.0,
		EyeHeight:         160.0,
		CrouchedEyeHeight: 104.0,
	}

	Weapon = WeaponConfig{
		MaxShotRange: 10000.0,
		Types: map[string]WeaponTypeConfig{
			WeaponRifle: {
				Damage:        20,
				SpreadDegrees: 2.0,
				FireInterval:  100 * time.Millisecond,
				MagazineSize:  30,
				ReloadTime:    2 * time.Second,
			},
			WeaponPistol: {
				Damage:        35,
				SpreadDegrees: 1.0,
				FireInterval:  300 * time.Millisecond,
				MagazineSize:  12,
				ReloadTime:    1500 * time.Millisecond,
			},
		},
		DefaultLoadout: []string{WeaponRifle, WeaponPistol},
	}

	Death = DeathConfig{
		RagdollDelay:   200 * time.Millisecond,
		RagdollBlend:   300 * time.Millisecond,
		WeaponLifespan: 5 * time.Second,
		ActorLifespan:  10 * time.Second,
	}

	Server = ServerConfig{
		Port:         7373,
		TickRate:     30,
		Name:         "Hitscan Server",
		Level:        "arena",
		AssetsDir:    "assets",
		MaxPlayers:   8,
		MinPlayers:   2,
		MatchTime:    10 * time.Minute,
		RespawnDelay: 3 * time.Second,
		LogLevel:     "info",
	}

	Storage = StorageConfig{
		Enabled: false,
		Driver:  "sqlite",
		Path:    "./hitscan.db",
	}

	clientDefaults()
}
