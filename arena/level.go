package arena

import (
	"fmt"
	"os"

	"github.com/automoto/hitscan-mp/shared/leveldata"
	"github.com/rs/zerolog"
)

// LoadAll loads all .tmx levels from the given assets directory, returning
// a map of arenas keyed by stem name plus a sorted name list.
func LoadAll(assetsDir string, log zerolog.Logger) (map[string]*Arena, []string, error) {
	dataMap, names, err := leveldata.LoadAllArenas(os.DirFS(assetsDir), "levels")
	if err != nil {
		return nil, nil, fmt.Errorf("load all levels: %w", err)
	}

	arenas := make(map[string]*Arena, len(names))
	for _, name := range names {
		data := dataMap[name]
		arenas[name] = New(data)
		log.Info().
			Str("level", name).
			Int("blockers", len(data.Blockers)).
			Int("spawns", len(data.SpawnPoints)).
			Int("width", data.MapWidth).
			Int("height", data.MapHeight).
			Msg("loaded level")
	}

	return arenas, names, nil
}

// Load loads one named level.
func Load(assetsDir, name string, log zerolog.Logger) (*Arena, error) {
	arenas, names, err := LoadAll(assetsDir, log)
	if err != nil {
		return nil, err
	}
	a, ok := arenas[name]
	if !ok {
		return nil, fmt.Errorf("level %q not found, have %v", name, names)
	}
	return a, nil
}
