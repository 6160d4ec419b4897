package storage

import (
	"path/filepath"
	"testing"

	"github.com/automoto/hitscan-mp/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTest(t *testing.T, path string) *Journal {
	t.Helper()
	j, err := Open(config.StorageConfig{Driver: "sqlite", Path: path}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(config.StorageConfig{Driver: "mongo"}, zerolog.Nop())
	assert.ErrorContains(t, err, "unknown storage driver")
}

func TestRecord_RequiresMatch(t *testing.T) {
	j := openTest(t, "")

	assert.ErrorIs(t, j.RecordKill(0, KillRecord{Killer: 1, Victim: 2}), ErrNoMatch)
	assert.ErrorIs(t, j.RecordHit(0, HitRecord{Victim: 2}), ErrNoMatch)
	assert.ErrorIs(t, j.EndMatch(), ErrNoMatch)
}

func TestLeaderboard(t *testing.T) {
	j := openTest(t, filepath.Join(t.TempDir(), "journal.db"))

	match, err := j.StartMatch("test", "arena")
	require.NoError(t, err)
	assert.Equal(t, match, j.CurrentMatch())

	kills := []KillRecord{
		{Killer: 7, Victim: 8},
		{Killer: 8, Victim: 7},
		{Killer: 7, Victim: 9},
		{Killer: 0, Victim: 9},
		{Killer: 9, Victim: 8},
		{Killer: 7, Victim: 8},
	}
	for _, k := range kills {
		require.NoError(t, j.RecordKill(match, k))
	}

	board, err := j.Leaderboard(match)
	require.NoError(t, err)
	assert.Equal(t, []KillCount{
		{Killer: 7, Kills: 3},
		{Killer: 8, Kills: 1},
		{Killer: 9, Kills: 1},
	}, board)

	require.NoError(t, j.EndMatch())
	assert.Zero(t, j.CurrentMatch())

	var m Match
	require.NoError(t, j.db.First(&m, match).Error)
	assert.NotNil(t, m.EndedAt)
	assert.Equal(t, "arena", m.Level)
}

func TestHits_ScopedToMatch(t *testing.T) {
	j := openTest(t, "")

	first, err := j.StartMatch("test", "arena")
	require.NoError(t, err)
	require.NoError(t, j.RecordHit(first, HitRecord{Victim: 2, Causer: 1, Bone: "head", Damage: 35, X: 1, Y: 2, Z: 3}))
	require.NoError(t, j.RecordHit(first, HitRecord{Victim: 2, Causer: 1, Bone: "spine_01", Damage: 20}))
	require.NoError(t, j.EndMatch())

	second, err := j.StartMatch("test", "arena")
	require.NoError(t, err)
	require.NoError(t, j.RecordHit(second, HitRecord{Victim: 1, Causer: 2, Bone: "head", Damage: 35}))
	// Late write for the ended match.
	require.NoError(t, j.RecordHit(first, HitRecord{Victim: 2, Causer: 1, Bone: "pelvis", Damage: 10}))

	hits, err := j.Hits(first)
	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, "head", hits[0].Bone)
	assert.Equal(t, float32(35), hits[0].Damage)
	assert.Equal(t, 3.0, hits[0].Z)
	assert.False(t, hits[0].Time.IsZero())
	assert.Equal(t, "spine_01", hits[1].Bone)
	assert.Equal(t, "pelvis", hits[2].Bone)

	hits, err = j.Hits(second)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}
