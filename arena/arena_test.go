package arena

import (
	"math"
	"testing"
	"time"

	"github.com/automoto/hitscan-mp/config"
	"github.com/automoto/hitscan-mp/shared/leveldata"
	"github.com/automoto/hitscan-mp/shared/netconfig"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testArena is 1024x1024 with a wall at x=[600,640], a crate at
// x=[200,264] y=[200,264] and a catwalk over y=[700,764].
func testArena() *Arena {
	return New(&leveldata.ArenaData{
		MapWidth:  1024,
		MapHeight: 1024,
		Blockers: []leveldata.Blocker{
			{X: 600, Y: 0, W: 40, H: 1024, ZMin: 0, ZMax: 600, Material: "concrete"},
			{X: 200, Y: 200, W: 64, H: 64, ZMin: 0, ZMax: 120, Material: "wood"},
			{X: 0, Y: 700, W: 600, H: 64, ZMin: 240, ZMax: 260, Material: "metal"},
		},
		SpawnPoints: []leveldata.SpawnPoint{{X: 100, Y: 100, Index: 0}},
	})
}

func TestLineTrace_HitsWall(t *testing.T) {
	a := testArena()

	hit := a.LineTrace(mgl64.Vec3{100, 500, 100}, mgl64.Vec3{900, 500, 100}, 0)
	require.True(t, hit.Blocking)
	assert.InDelta(t, 600, hit.Impact.X(), 1e-9)
	assert.Equal(t, mgl64.Vec3{-1, 0, 0}, hit.Normal)
	assert.Equal(t, "concrete", hit.Material)
	assert.Zero(t, hit.Actor)

	back := a.LineTrace(mgl64.Vec3{900, 500, 100}, mgl64.Vec3{100, 500, 100}, 0)
	require.True(t, back.Blocking)
	assert.InDelta(t, 640, back.Impact.X(), 1e-9)
	assert.Equal(t, mgl64.Vec3{1, 0, 0}, back.Normal)
}

func TestLineTrace_OverCrateAndUnderCatwalk(t *testing.T) {
	a := testArena()

	over := a.LineTrace(mgl64.Vec3{100, 232, 150}, mgl64.Vec3{500, 232, 150}, 0)
	assert.False(t, over.Blocking)

	into := a.LineTrace(mgl64.Vec3{100, 232, 60}, mgl64.Vec3{500, 232, 60}, 0)
	require.True(t, into.Blocking)
	assert.Equal(t, "wood", into.Material)
	assert.InDelta(t, 200, into.Impact.X(), 1e-9)

	under := a.LineTrace(mgl64.Vec3{300, 600, 100}, mgl64.Vec3{300, 900, 100}, 0)
	assert.False(t, under.Blocking)

	catwalk := a.LineTrace(mgl64.Vec3{300, 600, 250}, mgl64.Vec3{300, 900, 250}, 0)
	require.True(t, catwalk.Blocking)
	assert.Equal(t, "metal", catwalk.Material)
	assert.InDelta(t, 700, catwalk.Impact.Y(), 1e-9)
}

func TestLineTrace_Floor(t *testing.T) {
	a := testArena()

	hit := a.LineTrace(mgl64.Vec3{100, 500, 100}, mgl64.Vec3{300, 500, -100}, 0)
	require.True(t, hit.Blocking)
	assert.Equal(t, FloorMaterial, hit.Material)
	assert.Equal(t, mgl64.Vec3{0, 0, 1}, hit.Normal)
	assert.InDelta(t, 200, hit.Impact.X(), 1e-9)
	assert.InDelta(t, 0, hit.Impact.Z(), 1e-9)
}

func TestLineTrace_LeavesMapWithoutHit(t *testing.T) {
	a := testArena()

	hit := a.LineTrace(mgl64.Vec3{100, 500, 100}, mgl64.Vec3{100, -5000, 100}, 0)
	assert.False(t, hit.Blocking)

	outside := a.LineTrace(mgl64.Vec3{-500, -500, 100}, mgl64.Vec3{-100, -900, 100}, 0)
	assert.False(t, outside.Blocking)
}

func TestLineTrace_BodyBones(t *testing.T) {
	a := testArena()
	a.AddBody(5, mgl64.Vec3{400, 400, 0})
	cfg := config.Character

	tests := []struct {
		name string
		z    float64
		bone string
	}{
		{"head", cfg.CapsuleHeight - cfg.HeadHeight/2, BoneHead},
		{"spine", cfg.CapsuleHeight * 0.6, BoneSpine},
		{"pelvis", 20, BonePelvis},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit := a.LineTrace(mgl64.Vec3{100, 400, tt.z}, mgl64.Vec3{500, 400, tt.z}, 0)
			require.True(t, hit.Blocking)
			assert.Equal(t, netconfig.NetID(5), hit.Actor)
			assert.Equal(t, tt.bone, hit.Bone)
		})
	}

	above := a.LineTrace(mgl64.Vec3{100, 400, cfg.CapsuleHeight + 5}, mgl64.Vec3{500, 400, cfg.CapsuleHeight + 5}, 0)
	assert.False(t, above.Blocking)
}

func TestLineTrace_IgnoreAndRagdoll(t *testing.T) {
	a := testArena()
	a.AddBody(5, mgl64.Vec3{400, 400, 0})
	a.AddBody(6, mgl64.Vec3{500, 400, 0})

	hit := a.LineTrace(mgl64.Vec3{300, 400, 100}, mgl64.Vec3{590, 400, 100}, 5)
	require.True(t, hit.Blocking)
	assert.Equal(t, netconfig.NetID(6), hit.Actor)

	b, ok := a.Body(6)
	require.True(t, ok)
	b.SetRagdoll()
	hit = a.LineTrace(mgl64.Vec3{300, 400, 100}, mgl64.Vec3{590, 400, 100}, 5)
	assert.False(t, hit.Blocking)

	a.RemoveBody(5)
	_, ok = a.Body(5)
	assert.False(t, ok)
	hit = a.LineTrace(mgl64.Vec3{300, 400, 100}, mgl64.Vec3{590, 400, 100}, 0)
	assert.False(t, hit.Blocking)
}

func TestLineTrace_CrouchLowersHead(t *testing.T) {
	a := testArena()
	b := a.AddBody(5, mgl64.Vec3{400, 400, 0})
	z := config.Character.CapsuleHeight - 5

	require.True(t, a.LineTrace(mgl64.Vec3{100, 400, z}, mgl64.Vec3{500, 400, z}, 0).Blocking)
	b.SetCrouched(true)
	assert.False(t, a.LineTrace(mgl64.Vec3{100, 400, z}, mgl64.Vec3{500, 400, z}, 0).Blocking)
}

func TestIntersectBox(t *testing.T) {
	lo, hi := mgl64.Vec3{0, 0, 0}, mgl64.Vec3{10, 10, 10}

	tHit, n, ok := intersectBox(mgl64.Vec3{5, 5, 20}, mgl64.Vec3{0, 0, -20}, lo, hi)
	require.True(t, ok)
	assert.InDelta(t, 0.5, tHit, 1e-9)
	assert.Equal(t, mgl64.Vec3{0, 0, 1}, n)

	_, _, ok = intersectBox(mgl64.Vec3{5, 5, 5}, mgl64.Vec3{20, 0, 0}, lo, hi)
	assert.False(t, ok, "starts inside")

	_, _, ok = intersectBox(mgl64.Vec3{-10, 5, 5}, mgl64.Vec3{5, 0, 0}, lo, hi)
	assert.False(t, ok, "stops short")

	_, _, ok = intersectBox(mgl64.Vec3{-10, 20, 5}, mgl64.Vec3{40, 0, 0}, lo, hi)
	assert.False(t, ok, "parallel miss")
}

func TestClipSegment(t *testing.T) {
	x0, y0, x1, y1, ok := clipSegment(-100, 50, 300, 50, 200, 200)
	require.True(t, ok)
	assert.InDelta(t, 0, x0, 1e-9)
	assert.InDelta(t, 50, y0, 1e-9)
	assert.InDelta(t, 200, x1, 1e-3)
	assert.InDelta(t, 50, y1, 1e-9)

	_, _, _, _, ok = clipSegment(-100, -100, -50, 300, 200, 200)
	assert.False(t, ok)
}

func TestMover_WalksAndStopsAtWall(t *testing.T) {
	a := testArena()
	m := NewMover(a.AddBody(1, mgl64.Vec3{500, 500, 0}), 0)

	m.SetInput(Input{Forward: 1})
	assert.Equal(t, mgl64.Vec3{1, 0, 0}, m.LastMovementInput())
	m.Step(100*time.Millisecond, 1)
	assert.InDelta(t, 500+config.Character.WalkSpeed*0.1, m.Location().X(), 1e-6)

	for i := 0; i < 10; i++ {
		m.Step(100*time.Millisecond, 1.5)
	}
	assert.InDelta(t, 600-config.Character.CapsuleRadius, m.Location().X(), 1e-6)
	assert.False(t, m.IsFalling())
}

func TestMover_StrafeAndRunModifier(t *testing.T) {
	a := testArena()
	m := NewMover(a.AddBody(1, mgl64.Vec3{400, 400, 0}), math.Pi/2)

	m.SetInput(Input{Right: 1, Yaw: math.Pi / 2})
	right := m.LastMovementInput()
	assert.InDelta(t, 1, right.X(), 1e-9)
	assert.InDelta(t, 0, right.Y(), 1e-9)

	m.SetInput(Input{Forward: 1, Yaw: math.Pi / 2})
	m.Step(100*time.Millisecond, config.Character.RunningMovementModifier)
	assert.InDelta(t, 400+config.Character.WalkSpeed*1.5*0.1, m.Location().Y(), 1e-6)
}

func TestMover_JumpAndLand(t *testing.T) {
	a := testArena()
	m := NewMover(a.AddBody(1, mgl64.Vec3{400, 400, 0}), 0)

	m.Launch()
	assert.True(t, m.IsFalling())
	m.Step(50*time.Millisecond, 1)
	assert.Greater(t, m.Location().Z(), 0.0)

	landed := false
	for i := 0; i < 100 && !landed; i++ {
		landed = m.Step(50*time.Millisecond, 1)
	}
	assert.True(t, landed)
	assert.False(t, m.IsFalling())
	assert.Zero(t, m.Location().Z())
}

func TestMover_StandsOnCrate(t *testing.T) {
	a := testArena()
	m := NewMover(a.AddBody(1, mgl64.Vec3{232, 232, 300}), 0)

	for i := 0; i < 100; i++ {
		m.Step(50*time.Millisecond, 1)
	}
	assert.InDelta(t, 120, m.Location().Z(), 1e-9)
	assert.False(t, m.IsFalling())
}

func TestMover_AimFollowsCrouch(t *testing.T) {
	a := testArena()
	m := NewMover(a.AddBody(1, mgl64.Vec3{400, 400, 0}), 0)

	assert.InDelta(t, config.Character.EyeHeight, m.AimLocation().Z(), 1e-9)
	m.Crouch()
	assert.True(t, m.IsCrouched())
	assert.InDelta(t, config.Character.CrouchedEyeHeight, m.AimLocation().Z(), 1e-9)

	m.SetInput(Input{Pitch: math.Pi / 4})
	dir := m.AimDirection()
	assert.InDelta(t, 1, dir.Len(), 1e-9)
	assert.InDelta(t, math.Sqrt2/2, dir.Z(), 1e-9)
}

func TestMover_Disable(t *testing.T) {
	a := testArena()
	m := NewMover(a.AddBody(1, mgl64.Vec3{400, 400, 0}), 0)
	m.SetInput(Input{Forward: 1})

	m.Disable()
	assert.True(t, m.Body().IsRagdoll())
	m.SetInput(Input{Forward: 1})
	m.Step(time.Second, 1)
	assert.Equal(t, mgl64.Vec3{400, 400, 0}, m.Location())
}

func TestLoad_BundledArena(t *testing.T) {
	a, err := Load("../assets", "arena", zerolog.Nop())
	require.NoError(t, err)

	w, h := a.Size()
	assert.Equal(t, 2048.0, w)
	assert.Equal(t, 2048.0, h)
	assert.NotEmpty(t, a.SpawnPoints())

	_, err = Load("../assets", "missing", zerolog.Nop())
	assert.ErrorContains(t, err, `level "missing" not found`)
}
