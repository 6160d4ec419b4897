package leveldata

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testArena = `<?xml version="1.0" encoding="UTF-8"?>
<map version="1.10" orientation="orthogonal" renderorder="right-down" width="10" height="8" tilewidth="32" tileheight="32" infinite="0" nextlayerid="3" nextobjectid="5">
 <objectgroup id="1" name="Blockers">
  <object id="1" x="64" y="32" width="32" height="128">
   <properties>
    <property name="height" type="float" value="150"/>
    <property name="zmin" type="float" value="10"/>
    <property name="material" value="metal"/>
   </properties>
  </object>
  <object id="2" x="200" y="100" width="16" height="16"/>
 </objectgroup>
 <objectgroup id="2" name="PlayerSpawn">
  <object id="3" x="300" y="40">
   <properties>
    <property name="spawnIndex" type="int" value="1"/>
   </properties>
  </object>
  <object id="4" x="20" y="40">
   <properties>
    <property name="spawnIndex" type="int" value="0"/>
    <property name="yaw" type="float" value="90"/>
   </properties>
  </object>
 </objectgroup>
</map>`

func TestLoadArenaData(t *testing.T) {
	fsys := fstest.MapFS{"levels/test.tmx": {Data: []byte(testArena)}}

	data, err := LoadArenaData(fsys, "levels/test.tmx")
	require.NoError(t, err)

	assert.Equal(t, 320, data.MapWidth)
	assert.Equal(t, 256, data.MapHeight)

	require.Len(t, data.Blockers, 2)
	assert.Equal(t, Blocker{X: 64, Y: 32, W: 32, H: 128, ZMin: 10, ZMax: 160, Material: "metal"}, data.Blockers[0])
	assert.Equal(t, defaultBlockerHeight, data.Blockers[1].ZMax)

	require.Len(t, data.SpawnPoints, 2)
	assert.Equal(t, 0, data.SpawnPoints[0].Index)
	assert.Equal(t, 90.0, data.SpawnPoints[0].Yaw)
	assert.Equal(t, 300.0, data.SpawnPoints[1].X)
}

func TestLoadAllArenas_Empty(t *testing.T) {
	_, _, err := LoadAllArenas(fstest.MapFS{}, "levels")
	require.Error(t, err)
}
