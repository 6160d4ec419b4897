package arena

import (
	"math"

	"github.com/automoto/hitscan-mp/combat"
	"github.com/automoto/hitscan-mp/shared/netconfig"
	"github.com/automoto/hitscan-mp/tags"
	"github.com/go-gl/mathgl/mgl64"
)

// LineTrace returns the first blocker, body volume or floor hit between
// start and end. Bodies with id ignore are skipped.
func (a *Arena) LineTrace(start, end mgl64.Vec3, ignore netconfig.NetID) combat.TraceResult {
	delta := end.Sub(start)
	if delta.Len() == 0 {
		return combat.TraceResult{}
	}

	best := math.Inf(1)
	var res combat.TraceResult
	consider := func(t float64, normal mgl64.Vec3, actor netconfig.NetID, bone, material string) {
		if t >= best {
			return
		}
		best = t
		res = combat.TraceResult{
			Blocking: true,
			Impact:   start.Add(delta.Mul(t)),
			Normal:   normal,
			Actor:    actor,
			Bone:     bone,
			Material: material,
		}
	}

	// Floor at z = 0 inside the map.
	if start.Z() >= 0 && end.Z() < 0 {
		t := start.Z() / (start.Z() - end.Z())
		p := start.Add(delta.Mul(t))
		if p.X() >= 0 && p.X() <= a.width && p.Y() >= 0 && p.Y() <= a.height {
			consider(t, mgl64.Vec3{0, 0, 1}, 0, "", FloorMaterial)
		}
	}

	for _, o := range a.candidates(start, end) {
		switch {
		case o.HasTags(tags.ResolvBlocker):
			b := o.Data.(*blocker)
			if t, n, ok := intersectBox(start, delta, b.min, b.max); ok {
				consider(t, n, 0, "", b.material)
			}
		case o.HasTags(tags.ResolvActor):
			body := o.Data.(*Body)
			if body.id == ignore {
				continue
			}
			for _, v := range body.HitVolumes() {
				if t, n, ok := intersectBox(start, delta, v.Min, v.Max); ok {
					consider(t, n, body.id, v.Bone, "")
				}
			}
		}
	}

	return res
}

// intersectBox is the slab test of start + t*delta against an AABB. It
// returns the entry parameter in [0,1] and the face normal. Segments that
// start inside the box do not hit it.
func intersectBox(start, delta, lo, hi mgl64.Vec3) (float64, mgl64.Vec3, bool) {
	tEnter, tExit := math.Inf(-1), math.Inf(1)
	axis, sign := -1, 0.0

	for i := 0; i < 3; i++ {
		if delta[i] == 0 {
			if start[i] < lo[i] || start[i] > hi[i] {
				return 0, mgl64.Vec3{}, false
			}
			continue
		}
		inv := 1 / delta[i]
		t1 := (lo[i] - start[i]) * inv
		t2 := (hi[i] - start[i]) * inv
		s := -1.0
		if t1 > t2 {
			t1, t2 = t2, t1
			s = 1.0
		}
		if t1 > tEnter {
			tEnter = t1
			axis, sign = i, s
		}
		tExit = min(tExit, t2)
		if tEnter > tExit {
			return 0, mgl64.Vec3{}, false
		}
	}

	if axis < 0 || tEnter < 0 || tEnter > 1 {
		return 0, mgl64.Vec3{}, false
	}
	var n mgl64.Vec3
	n[axis] = sign
	return tEnter, n, true
}
