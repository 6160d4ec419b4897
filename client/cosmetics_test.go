package client

import (
	"testing"
	"time"

	"github.com/automoto/hitscan-mp/config"
	"github.com/automoto/hitscan-mp/shared/netconfig"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosmetics_RagdollBlend(t *testing.T) {
	config.Defaults()
	t.Cleanup(config.Defaults)
	config.Death.RagdollBlend = 200 * time.Millisecond

	c := NewCosmetics(zerolog.Nop(), 0)
	assert.Zero(t, c.PlayDeathAnimation(3))

	_, ok := c.RagdollWeight(3)
	assert.False(t, ok)

	c.EnableRagdoll(3)
	w, ok := c.RagdollWeight(3)
	require.True(t, ok)
	assert.Zero(t, w)

	c.Update(100 * time.Millisecond)
	mid, _ := c.RagdollWeight(3)
	assert.Greater(t, mid, float32(0.5), "eases out")
	assert.Less(t, mid, float32(1))

	c.Update(150 * time.Millisecond)
	w, _ = c.RagdollWeight(3)
	assert.Equal(t, float32(1), w)

	c.Forget(3)
	_, ok = c.RagdollWeight(3)
	assert.False(t, ok)
}

func TestCosmetics_InstantRagdoll(t *testing.T) {
	config.Defaults()
	t.Cleanup(config.Defaults)
	config.Death.RagdollBlend = 0

	c := NewCosmetics(zerolog.Nop(), 750*time.Millisecond)
	assert.Equal(t, 750*time.Millisecond, c.PlayDeathAnimation(netconfig.NetID(4)))

	c.EnableRagdoll(4)
	w, ok := c.RagdollWeight(4)
	require.True(t, ok)
	assert.Equal(t, float32(1), w)
}
