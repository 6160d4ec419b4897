// Package arena is the authoritative collision world: static blockers from
// the level plus one hit volume per actor, indexed in a resolv space for
// broadphase queries.
package arena

import (
	"github.com/automoto/hitscan-mp/shared/leveldata"
	"github.com/automoto/hitscan-mp/shared/netconfig"
	"github.com/automoto/hitscan-mp/tags"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/solarlune/resolv"
)

const cellSize = 64

// Material reported when a trace hits the implicit floor.
const FloorMaterial = "ground"

type blocker struct {
	obj      *resolv.Object
	min, max mgl64.Vec3
	material string
}

// Arena holds the resolv space and every body in it. It is not safe for
// concurrent use; the server touches it from the tick goroutine only.
type Arena struct {
	space  *resolv.Space
	width  float64
	height float64

	blockers []*blocker
	bodies   map[netconfig.NetID]*Body
	spawns   []leveldata.SpawnPoint
}

// New builds an arena from parsed level data.
func New(data *leveldata.ArenaData) *Arena {
	a := &Arena{
		space:  resolv.NewSpace(data.MapWidth, data.MapHeight, cellSize, cellSize),
		width:  float64(data.MapWidth),
		height: float64(data.MapHeight),
		bodies: make(map[netconfig.NetID]*Body),
		spawns: data.SpawnPoints,
	}

	for _, bd := range data.Blockers {
		b := &blocker{
			min:      mgl64.Vec3{bd.X, bd.Y, bd.ZMin},
			max:      mgl64.Vec3{bd.X + bd.W, bd.Y + bd.H, bd.ZMax},
			material: bd.Material,
		}
		b.obj = resolv.NewObject(bd.X, bd.Y, bd.W, bd.H, tags.ResolvBlocker)
		b.obj.SetShape(resolv.NewRectangle(0, 0, bd.W, bd.H))
		b.obj.Data = b
		a.space.Add(b.obj)
		a.blockers = append(a.blockers, b)
	}

	return a
}

// Size returns the map extent on X and Y.
func (a *Arena) Size() (float64, float64) { return a.width, a.height }

// SpawnPoints returns the level's spawn points ordered by index.
func (a *Arena) SpawnPoints() []leveldata.SpawnPoint { return a.spawns }

// AddBody places a new standing body for id with its feet at pos.
func (a *Arena) AddBody(id netconfig.NetID, pos mgl64.Vec3) *Body {
	if old, ok := a.bodies[id]; ok {
		a.space.Remove(old.obj)
	}
	b := newBody(a, id, a.clamp(pos))
	a.space.Add(b.obj)
	a.bodies[id] = b
	return b
}

// RemoveBody takes id out of the space.
func (a *Arena) RemoveBody(id netconfig.NetID) {
	b, ok := a.bodies[id]
	if !ok {
		return
	}
	a.space.Remove(b.obj)
	delete(a.bodies, id)
}

// Body returns the body of id.
func (a *Arena) Body(id netconfig.NetID) (*Body, bool) {
	b, ok := a.bodies[id]
	return b, ok
}

// clamp keeps a footprint center inside the map.
func (a *Arena) clamp(p mgl64.Vec3) mgl64.Vec3 {
	r := bodyRadius()
	p[0] = mgl64.Clamp(p[0], r, max(r, a.width-r))
	p[1] = mgl64.Clamp(p[1], r, max(r, a.height-r))
	if p[2] < 0 {
		p[2] = 0
	}
	return p
}

// candidates returns every blocker and body whose cell lies on or next to
// the XY projection of the segment.
func (a *Arena) candidates(start, end mgl64.Vec3) []*resolv.Object {
	x0, y0, x1, y1, ok := clipSegment(start.X(), start.Y(), end.X(), end.Y(), a.width, a.height)
	if !ok {
		return nil
	}

	cx0, cy0 := cellOf(x0), cellOf(y0)
	cx1, cy1 := cellOf(x1), cellOf(y1)

	var line []*resolv.Cell
	if cx0 == cx1 && cy0 == cy1 {
		if c := a.space.Cell(cx0, cy0); c != nil {
			line = append(line, c)
		}
	} else {
		line = a.space.CellsInLine(cx0, cy0, cx1, cy1)
		if c := a.space.Cell(cx1, cy1); c != nil {
			line = append(line, c)
		}
	}

	seenCell := make(map[*resolv.Cell]bool)
	seen := make(map[*resolv.Object]bool)
	var out []*resolv.Object
	for _, c := range line {
		// The line walk can skip a diagonal neighbor.
		for dx := -1; dx <= 1; dx++ {
			for dy := -1; dy <= 1; dy++ {
				n := a.space.Cell(c.X+dx, c.Y+dy)
				if n == nil || seenCell[n] {
					continue
				}
				seenCell[n] = true
				for _, o := range n.Objects {
					if !seen[o] {
						seen[o] = true
						out = append(out, o)
					}
				}
			}
		}
	}
	return out
}

func cellOf(v float64) int {
	return int(v) / cellSize
}

// clipSegment clips a 2D segment to [0,w)x[0,h) (Liang-Barsky).
func clipSegment(x0, y0, x1, y1, w, h float64) (float64, float64, float64, float64, bool) {
	const eps = 1e-6
	dx, dy := x1-x0, y1-y0
	t0, t1 := 0.0, 1.0
	edges := [4][2]float64{
		{-dx, x0},
		{dx, w - eps - x0},
		{-dy, y0},
		{dy, h - eps - y0},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return 0, 0, 0, 0, false
			}
			continue
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return 0, 0, 0, 0, false
			}
			t0 = max(t0, r)
		} else {
			if r < t0 {
				return 0, 0, 0, 0, false
			}
			t1 = min(t1, r)
		}
	}
	return x0 + t0*dx, y0 + t0*dy, x0 + t1*dx, y0 + t1*dy, true
}
