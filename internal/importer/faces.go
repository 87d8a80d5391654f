package importer

import (
	"math"
	"sort"

	"level-engine/internal/mapgraph"
)

// ============================================================
// Face tracing
// ============================================================

type halfEdge struct{ from, to int }

// pruneDangling отделяет ребра, которые не могут входить в комнату:
// итеративно снимаются вершины степени 1.
func (b *Builder) pruneDangling() (cycle, dangling []*edge) {
	degree := make(map[int]int)
	alive := make(map[edgeKey]bool, len(b.edges))
	for k, e := range b.edges {
		degree[e.a]++
		degree[e.b]++
		alive[k] = true
	}

	for changed := true; changed; {
		changed = false
		for _, e := range sortedEdges(b.edges) {
			k := keyOf(e.a, e.b)
			if !alive[k] || (degree[e.a] > 1 && degree[e.b] > 1) {
				continue
			}
			alive[k] = false
			degree[e.a]--
			degree[e.b]--
			changed = true
		}
	}

	for _, e := range sortedEdges(b.edges) {
		if alive[keyOf(e.a, e.b)] {
			cycle = append(cycle, e)
		} else {
			dangling = append(dangling, e)
		}
	}
	return cycle, dangling
}

// traceFaces обходит планарный граф: для полуребра u->v следующее берется в v
// по часовой стрелке от v->u. Внутренние грани получаются против часовой
// стрелки, внешняя грань имеет отрицательную площадь и отбрасывается.
func (b *Builder) traceFaces(edges []*edge) [][]int {
	out := make(map[int][]int)
	for _, e := range edges {
		out[e.a] = append(out[e.a], e.b)
		out[e.b] = append(out[e.b], e.a)
	}
	for v, ns := range out {
		origin := b.vertices[v]
		sort.SliceStable(ns, func(i, j int) bool {
			return b.angle(origin, ns[i]) < b.angle(origin, ns[j])
		})
	}

	next := func(h halfEdge) halfEdge {
		ns := out[h.to]
		idx := 0
		for i, n := range ns {
			if n == h.from {
				idx = i
				break
			}
		}
		return halfEdge{from: h.to, to: ns[(idx-1+len(ns))%len(ns)]}
	}

	var starts []halfEdge
	for _, e := range edges {
		starts = append(starts, halfEdge{e.a, e.b}, halfEdge{e.b, e.a})
	}

	visited := make(map[halfEdge]bool, len(starts))
	var faces [][]int
	for _, start := range starts {
		if visited[start] {
			continue
		}
		var loop []int
		h := start
		for steps := 0; !visited[h] && steps <= len(starts); steps++ {
			visited[h] = true
			loop = append(loop, h.from)
			h = next(h)
		}
		if h != start || len(loop) < 3 {
			continue
		}
		if b.signedArea(loop) > 1e-9 {
			faces = append(faces, loop)
		}
	}
	return faces
}

func (b *Builder) angle(origin Point, to int) float64 {
	p := b.vertices[to]
	return math.Atan2(p.Y-origin.Y, p.X-origin.X)
}

func (b *Builder) signedArea(loop []int) float64 {
	var area float64
	for i, id := range loop {
		p := b.vertices[id]
		q := b.vertices[loop[(i+1)%len(loop)]]
		area += p.X*q.Y - q.X*p.Y
	}
	return area / 2
}

// ============================================================
// Map emission
// ============================================================

func (b *Builder) emit(m *mapgraph.Map) Report {
	cycle, dangling := b.pruneDangling()
	faces := b.traceFaces(cycle)

	ids := make(map[int]uint32)
	vertexID := func(i int) uint32 {
		if id, ok := ids[i]; ok {
			return id
		}
		p := b.vertices[i]
		id := m.AddVertexAt(float32(p.X), float32(p.Y))
		ids[i] = id
		return id
	}

	m.ClearTemp()
	for _, face := range faces {
		for i, from := range face {
			to := face[(i+1)%len(face)]
			lid := m.CreateLinedefManual(vertexID(from), vertexID(to))
			b.applyWallProperties(m, lid, b.edges[keyOf(from, to)])
		}
		if _, ok := m.ClosePolygonManual(); !ok {
			log.WithField("vertices", len(face)).Warn("room could not be closed")
			m.ClearTemp()
		}
	}

	for _, e := range dangling {
		lid := m.CreateLinedefManual(vertexID(e.a), vertexID(e.b))
		b.applyWallProperties(m, lid, e)
	}
	m.ClearTemp()

	return Report{Dangling: len(dangling)}
}

func (b *Builder) applyWallProperties(m *mapgraph.Map, lid uint32, e *edge) {
	l := m.FindLinedef(lid)
	if l == nil || e == nil {
		return
	}
	if l.Name == "" {
		l.Name = e.seg.ID
	}
	if e.seg.WallWidth == 0 && e.seg.WallHeight == 0 {
		return
	}
	if l.Properties == nil {
		l.Properties = mapgraph.Properties{}
	}
	if e.seg.WallWidth > 0 {
		l.Properties["wall_width"] = e.seg.WallWidth
	}
	if e.seg.WallHeight > 0 {
		l.Properties["wall_height"] = e.seg.WallHeight
	}
}
