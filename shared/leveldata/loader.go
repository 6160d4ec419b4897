package leveldata

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lafriks/go-tiled"
)

// Default vertical extent for blockers without a "height" property.
const defaultBlockerHeight = 300.0

// LoadArenaData parses a TMX file and returns blockers and spawn points. It
// takes an fs.FS so callers can pass embed.FS or os.DirFS.
func LoadArenaData(fsys fs.FS, tmxPath string) (*ArenaData, error) {
	levelMap, err := tiled.LoadFile(tmxPath, tiled.WithFileSystem(fsys))
	if err != nil {
		return nil, fmt.Errorf("load TMX %s: %w", tmxPath, err)
	}

	data := &ArenaData{
		MapWidth:  levelMap.Width * levelMap.TileWidth,
		MapHeight: levelMap.Height * levelMap.TileHeight,
	}

	for _, og := range levelMap.ObjectGroups {
		switch og.Name {
		case "Blockers":
			for _, o := range og.Objects {
				height := o.Properties.GetFloat("height")
				if height <= 0 {
					height = defaultBlockerHeight
				}
				zMin := o.Properties.GetFloat("zmin")
				data.Blockers = append(data.Blockers, Blocker{
					X:        o.X,
					Y:        o.Y,
					W:        o.Width,
					H:        o.Height,
					ZMin:     zMin,
					ZMax:     zMin + height,
					Material: o.Properties.GetString("material"),
				})
			}
		case "PlayerSpawn":
			for _, o := range og.Objects {
				data.SpawnPoints = append(data.SpawnPoints, SpawnPoint{
					X:     o.X,
					Y:     o.Y,
					Z:     o.Properties.GetFloat("z"),
					Yaw:   o.Properties.GetFloat("yaw"),
					Index: o.Properties.GetInt("spawnIndex"),
				})
			}
		}
	}

	// Sort spawns by index for consistent assignment
	sort.Slice(data.SpawnPoints, func(i, j int) bool {
		return data.SpawnPoints[i].Index < data.SpawnPoints[j].Index
	})

	return data, nil
}

// LoadAllArenas discovers all .tmx files in dir within fsys, loads each, and
// returns a map keyed by stem name plus a sorted list of names.
func LoadAllArenas(fsys fs.FS, dir string) (map[string]*ArenaData, []string, error) {
	pattern := dir + "/*.tmx"
	matches, err := fs.Glob(fsys, pattern)
	if err != nil {
		return nil, nil, fmt.Errorf("glob %s: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, nil, fmt.Errorf("no .tmx files found in %s", dir)
	}

	arenas := make(map[string]*ArenaData, len(matches))
	names := make([]string, 0, len(matches))

	for _, path := range matches {
		data, err := LoadArenaData(fsys, path)
		if err != nil {
			return nil, nil, fmt.Errorf("load %s: %w", path, err)
		}
		stem := strings.TrimSuffix(filepath.Base(path), ".tmx")
		arenas[stem] = data
		names = append(names, stem)
	}

	sort.Strings(names)
	return arenas, names, nil
}
