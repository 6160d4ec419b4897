package client

import (
	"encoding/json"
	"fmt"

	"github.com/automoto/hitscan-mp/shared/netconfig"
	"github.com/quasilyte/gdata"
)

const settingsKey = "settings"

// ItemStore persists small named blobs. *gdata.Manager satisfies it.
type ItemStore interface {
	LoadItem(itemKey string) ([]byte, error)
	SaveItem(itemKey string, data []byte) error
}

// OpenStore opens the per-user gdata store for appName.
func OpenStore(appName string) (ItemStore, error) {
	m, err := gdata.Open(gdata.Config{
		AppName: appName,
	})
	if err != nil {
		return nil, fmt.Errorf("open settings store: %w", err)
	}
	return m, nil
}

// SavedSettings are the player preferences kept between runs.
type SavedSettings struct {
	PlayerName string               `json:"playerName"`
	ServerAddr string               `json:"serverAddr"`
	ToggleRun  bool                 `json:"toggleRun"` // run key toggles instead of hold
	LastSlot   netconfig.WeaponSlot `json:"lastSlot"`
}

// DefaultSettings are used until something is saved.
func DefaultSettings() SavedSettings {
	return SavedSettings{
		PlayerName: "player",
		LastSlot:   netconfig.SlotPrimary,
	}
}

// LoadSettings reads saved settings. Nothing saved yet yields the defaults.
func LoadSettings(store ItemStore) (SavedSettings, error) {
	out := DefaultSettings()
	data, err := store.LoadItem(settingsKey)
	if err != nil {
		return out, fmt.Errorf("load settings: %w", err)
	}
	if len(data) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return DefaultSettings(), fmt.Errorf("parse settings: %w", err)
	}
	if !out.LastSlot.IsEquipSlot() {
		out.LastSlot = netconfig.SlotPrimary
	}
	return out, nil
}

// SaveSettings writes settings to the store.
func SaveSettings(store ItemStore, s SavedSettings) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("serialize settings: %w", err)
	}
	if err := store.SaveItem(settingsKey, data); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}
