package importer

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"level-engine/internal/common/logging"
	"level-engine/internal/mapgraph"
)

var log = logging.Named("importer")

var ErrNoSegments = errors.New("no wall segments")

// ============================================================
// Segment importer
// ============================================================

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Segment стена из внешнего источника. Направление не важно.
type Segment struct {
	ID         string  `json:"id"`
	P1         Point   `json:"p1"`
	P2         Point   `json:"p2"`
	WallWidth  float32 `json:"wall_width,omitempty"`
	WallHeight float32 `json:"wall_height,omitempty"`
}

type Options struct {
	ConnectTolerance  float64 // допуск поиска пересечения и снаппинга
	MergeTolerance    float64 // радиус склейки близких вершин после разрезания
	AxisSnapTolerance float64 // отклонение от оси, при котором стена считается осевой
}

func DefaultOptions() Options {
	return Options{
		ConnectTolerance:  0.5,
		MergeTolerance:    0.25,
		AxisSnapTolerance: 0.1,
	}
}

// Report сколько элементов добавлено в карту.
type Report struct {
	Vertices int
	Linedefs int
	Sectors  int
	Dangling int
}

type Builder struct {
	opts     Options
	vertices []Point
	edges    map[edgeKey]*edge
}

type edgeKey struct{ a, b int }

type edge struct {
	a, b int
	seg  Segment
}

func New(opts Options) *Builder {
	return &Builder{opts: opts}
}

// Import разрезает стены в местах пересечений, склеивает близкие концы и
// переносит граф в карту: каждая замкнутая комната становится сектором,
// стены вне комнат остаются отдельными linedef.
func (b *Builder) Import(m *mapgraph.Map, segments []Segment) (Report, error) {
	if len(segments) == 0 {
		return Report{}, ErrNoSegments
	}
	for _, s := range segments {
		if !finite(s.P1) || !finite(s.P2) {
			return Report{}, fmt.Errorf("segment %q: non-finite coordinates", s.ID)
		}
	}

	b.reset()
	for _, seg := range b.splitSegments(segments) {
		v1 := b.findOrCreateVertex(seg.P1)
		v2 := b.findOrCreateVertex(seg.P2)
		b.addEdge(v1, v2, seg)
	}
	b.mergeCloseVertices()
	b.snapAxisAligned()

	before := struct{ v, l, s int }{len(m.Vertices), len(m.Linedefs), len(m.Sectors)}
	report := b.emit(m)
	m.Sanitize()

	report.Vertices = len(m.Vertices) - before.v
	report.Linedefs = len(m.Linedefs) - before.l
	report.Sectors = len(m.Sectors) - before.s

	log.WithFields(logrus.Fields{
		"segments": len(segments),
		"vertices": report.Vertices,
		"linedefs": report.Linedefs,
		"sectors":  report.Sectors,
	}).Info("walls imported")
	return report, nil
}

func (b *Builder) reset() {
	b.vertices = b.vertices[:0]
	b.edges = make(map[edgeKey]*edge)
}

func (b *Builder) findOrCreateVertex(p Point) int {
	for i, v := range b.vertices {
		if distance(p, v) < b.opts.MergeTolerance {
			return i
		}
	}
	b.vertices = append(b.vertices, p)
	return len(b.vertices) - 1
}

func (b *Builder) addEdge(v1, v2 int, seg Segment) {
	if v1 == v2 {
		return
	}
	key := keyOf(v1, v2)
	if _, ok := b.edges[key]; ok {
		return
	}
	b.edges[key] = &edge{a: v1, b: v2, seg: seg}
}

func keyOf(a, b int) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{a, b}
}

// ============================================================
// Wall segments connection
// ============================================================

type segmentInfo struct {
	segment     Segment
	horizontal  bool
	diagonal    bool
	start       float64
	end         float64
	constant    float64
	splitPoints []float64
}

func (b *Builder) splitSegments(segments []Segment) []Segment {
	infos := make([]*segmentInfo, 0, len(segments))
	for _, seg := range segments {
		dx := math.Abs(seg.P1.X - seg.P2.X)
		dy := math.Abs(seg.P1.Y - seg.P2.Y)
		horizontal := dy <= dx
		info := &segmentInfo{
			segment:    seg,
			horizontal: horizontal,
			diagonal:   math.Min(dx, dy) > b.opts.AxisSnapTolerance,
		}

		info.start, info.end, info.constant = seg.P1.X, seg.P2.X, seg.P1.Y
		if !horizontal {
			info.start, info.end, info.constant = seg.P1.Y, seg.P2.Y, seg.P1.X
		}
		if info.start > info.end {
			info.start, info.end = info.end, info.start
		}
		infos = append(infos, info)
	}

	for i := 0; i < len(infos); i++ {
		for j := i + 1; j < len(infos); j++ {
			a, c := infos[i], infos[j]
			if a.diagonal || c.diagonal || a.horizontal == c.horizontal {
				continue
			}
			h, v := a, c
			if !a.horizontal {
				h, v = c, a
			}
			b.tryAddIntersection(h, v)
		}
	}

	var result []Segment
	for _, info := range infos {
		if info.diagonal {
			result = append(result, info.segment)
			continue
		}

		points := append([]float64{info.start, info.end}, info.splitPoints...)
		sort.Float64s(points)
		points = uniquePoints(points)

		parts := 0
		for idx := 0; idx+1 < len(points); idx++ {
			start, end := points[idx], points[idx+1]
			if almostEqual(start, end) {
				continue
			}
			parts++

			part := info.segment
			if info.horizontal {
				part.P1 = Point{X: start, Y: info.constant}
				part.P2 = Point{X: end, Y: info.constant}
			} else {
				part.P1 = Point{X: info.constant, Y: start}
				part.P2 = Point{X: info.constant, Y: end}
			}
			if len(points) > 2 {
				part.ID = fmt.Sprintf("%s_%d", info.segment.ID, parts)
			}
			result = append(result, part)
		}
	}
	return result
}

func (b *Builder) tryAddIntersection(h, v *segmentInfo) {
	tol := b.opts.ConnectTolerance
	vx := v.constant
	hy := h.constant

	if vx < h.start-tol || vx > h.end+tol {
		return
	}
	if hy < v.start-tol || hy > v.end+tol {
		return
	}

	// Недотянутая стена продлевается до пересечения.
	h.start, h.end = math.Min(h.start, vx), math.Max(h.end, vx)
	v.start, v.end = math.Min(v.start, hy), math.Max(v.end, hy)

	h.splitPoints = append(h.splitPoints, clamp(vx, h.start, h.end))
	v.splitPoints = append(v.splitPoints, clamp(hy, v.start, v.end))
}

// mergeCloseVertices склеивает вершины, оказавшиеся рядом после разрезания.
func (b *Builder) mergeCloseVertices() {
	rep := make([]int, len(b.vertices))
	for i := range rep {
		rep[i] = -1
	}
	for i := range b.vertices {
		if rep[i] >= 0 {
			continue
		}
		rep[i] = i
		for j := i + 1; j < len(b.vertices); j++ {
			if rep[j] < 0 && distance(b.vertices[i], b.vertices[j]) <= b.opts.MergeTolerance {
				rep[j] = i
			}
		}
	}

	old := b.edges
	b.edges = make(map[edgeKey]*edge, len(old))
	for _, e := range sortedEdges(old) {
		b.addEdge(rep[e.a], rep[e.b], e.seg)
	}
}

// snapAxisAligned фиксирует координаты вершин почти горизонтальных и вертикальных стен.
func (b *Builder) snapAxisAligned() {
	type agg struct {
		sumX, sumY float64
		cntX, cntY int
	}
	aggs := make(map[int]*agg)
	get := func(id int) *agg {
		if a, ok := aggs[id]; ok {
			return a
		}
		a := &agg{}
		aggs[id] = a
		return a
	}

	for _, e := range sortedEdges(b.edges) {
		v1, v2 := b.vertices[e.a], b.vertices[e.b]
		dx, dy := v1.X-v2.X, v1.Y-v2.Y

		if math.Abs(dy) <= b.opts.AxisSnapTolerance {
			y := (v1.Y + v2.Y) / 2
			for _, id := range [2]int{e.a, e.b} {
				get(id).sumY += y
				get(id).cntY++
			}
		} else if math.Abs(dx) <= b.opts.AxisSnapTolerance {
			x := (v1.X + v2.X) / 2
			for _, id := range [2]int{e.a, e.b} {
				get(id).sumX += x
				get(id).cntX++
			}
		}
	}

	for id, a := range aggs {
		if a.cntX > 0 {
			b.vertices[id].X = a.sumX / float64(a.cntX)
		}
		if a.cntY > 0 {
			b.vertices[id].Y = a.sumY / float64(a.cntY)
		}
	}
}

// ============================================================
// Helpers
// ============================================================

// sortedEdges стабильный порядок обхода ребер.
func sortedEdges(edges map[edgeKey]*edge) []*edge {
	out := make([]*edge, 0, len(edges))
	for _, e := range edges {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		ki, kj := keyOf(out[i].a, out[i].b), keyOf(out[j].a, out[j].b)
		if ki.a != kj.a {
			return ki.a < kj.a
		}
		return ki.b < kj.b
	})
	return out
}

func distance(p1, p2 Point) float64 {
	return math.Hypot(p1.X-p2.X, p1.Y-p2.Y)
}

func uniquePoints(points []float64) []float64 {
	if len(points) == 0 {
		return points
	}
	out := points[:1]
	for i := 1; i < len(points); i++ {
		if !almostEqual(points[i], points[i-1]) {
			out = append(out, points[i])
		}
	}
	return out
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func finite(p Point) bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}
