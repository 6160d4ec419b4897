package config

import (
	"errors"
	"fmt"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// FileName is the JSON file Load looks for in its directory.
const FileName = "hitscan.cfg.json"

// ErrConfigNotFound is returned by Load when no config file exists. The
// globals keep their defaults in that case.
var ErrConfigNotFound = errors.New("config file not found")

// Load reads configuration from the JSON file in configDir on top of the
// built-in defaults and stores the result in the package globals.
func Load(configDir string) error {
	if err := setDefaults(); err != nil {
		return err
	}

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return fmt.Errorf("%w in %s", ErrConfigNotFound, configDir)
		}
		return fmt.Errorf("error reading config file: %w", err)
	}

	return apply()
}

func setDefaults() error {
	type section struct {
		key string
		v   any
	}
	sections := []section{
		{"character", Character},
		{"death", Death},
		{"server", Server},
		{"storage", Storage},
		{"client", Client},
		{"bot", Bot},
	}
	for name, wt := range Weapon.Types {
		sections = append(sections, section{"weapon.types." + name, wt})
	}
	for _, sec := range sections {
		m, err := structDefaults(sec.v)
		if err != nil {
			return fmt.Errorf("defaults for %s: %w", sec.key, err)
		}
		viper.SetDefault(sec.key, m)
	}

	viper.SetDefault("weapon.maxShotRange", Weapon.MaxShotRange)
	viper.SetDefault("weapon.defaultLoadout", Weapon.DefaultLoadout)
	return nil
}

// fileConfig mirrors the JSON layout. Unmarshal goes through viper's merged
// leaf keys so partial sections keep their defaults.
type fileConfig struct {
	Character CharacterConfig `mapstructure:"character"`
	Weapon    WeaponConfig    `mapstructure:"weapon"`
	Death     DeathConfig     `mapstructure:"death"`
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Client    ClientConfig    `mapstructure:"client"`
	Bot       BotConfig       `mapstructure:"bot"`
}

func apply() error {
	fc := fileConfig{
		Character: Character,
		Weapon:    Weapon,
		Death:     Death,
		Server:    Server,
		Storage:   Storage,
		Client:    Client,
		Bot:       Bot,
	}
	if err := viper.Unmarshal(&fc); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}

	Character = fc.Character
	Weapon = fc.Weapon
	Death = fc.Death
	Server = fc.Server
	Storage = fc.Storage
	Client = fc.Client
	Bot = fc.Bot
	return nil
}

// structDefaults flattens a config struct into the nested map viper expects
// for SetDefault, keyed by mapstructure tags.
func structDefaults(v any) (map[string]any, error) {
	out := map[string]any{}
	if err := mapstructure.Decode(v, &out); err != nil {
		return nil, err
	}
	return out, nil
}
