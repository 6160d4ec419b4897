package config

import "time"

// ClientConfig contains observer process settings
type ClientConfig struct {
	ServerAddr          string        `mapstructure:"serverAddr"`
	AppName             string        `mapstructure:"appName"` // gdata save directory name
	TickRate            int           `mapstructure:"tickRate"`
	DeathAnimation      time.Duration `mapstructure:"deathAnimation"`      // zero goes straight to ragdoll
	CorrectionThreshold float64       `mapstructure:"correctionThreshold"` // prediction drift before snapping
	JoinTimeout         time.Duration `mapstructure:"joinTimeout"`
	LogLevel            string        `mapstructure:"logLevel"`
}

// BotConfig drives the scripted headless client
type BotConfig struct {
	TurnRate    float64       `mapstructure:"turnRate"` // degrees per second
	BurstLength time.Duration `mapstructure:"burstLength"`
	BurstPause  time.Duration `mapstructure:"burstPause"`
	SwapEvery   time.Duration `mapstructure:"swapEvery"`
	RunChance   float64       `mapstructure:"runChance"` // per burst pause
	Seed        uint64        `mapstructure:"seed"`
}

var (
	Client ClientConfig
	Bot    BotConfig
)

func clientDefaults() {
	Client = ClientConfig{
		ServerAddr:          "localhost:7373",
		AppName:             "hitscan",
		TickRate:            60,
		DeathAnimation:      500 * time.Millisecond,
		CorrectionThreshold: 16.0,
		JoinTimeout:         10 * time.Second,
		LogLevel:            "info",
	}

	Bot = BotConfig{
		TurnRate:    45.0,
		BurstLength: 400 * time.Millisecond,
		BurstPause:  1200 * time.Millisecond,
		SwapEvery:   15 * time.Second,
		RunChance:   0.25,
		Seed:        42,
	}
}
