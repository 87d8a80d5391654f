package mapgraph

import (
	"math"
	"slices"
	"sort"

	"level-engine/internal/geometry"
)

// ============================================================
// Sector geometry
// ============================================================

// VerticesWorld мировые координаты начальных вершин ребер, без соседних дублей.
// Возвращает false, если различных точек меньше трех или ребро не найдено.
func (s *Sector) VerticesWorld(m *Map) ([]geometry.Vec3, bool) {
	var pts []geometry.Vec3
	for _, lid := range s.Linedefs {
		l := m.FindLinedef(lid)
		if l == nil {
			return nil, false
		}
		v := m.FindVertex(l.StartVertex)
		if v == nil {
			return nil, false
		}
		p := v.World()
		if len(pts) > 0 && pts[len(pts)-1] == p {
			continue
		}
		pts = append(pts, p)
	}
	if len(pts) < 3 {
		return nil, false
	}
	return pts, true
}

// polygon контур сектора по start_vertex каждого ребра в порядке следования (без дедупликации).
func (s *Sector) polygon(m *Map) []geometry.Vec2 {
	pts := make([]geometry.Vec2, 0, len(s.Linedefs))
	for _, lid := range s.Linedefs {
		if l := m.FindLinedef(lid); l != nil {
			if p, ok := m.GetVertex(l.StartVertex); ok {
				pts = append(pts, p)
			}
		}
	}
	return pts
}

// endpoints начало и конец каждого ребра, как есть (с повторами).
func (s *Sector) endpoints(m *Map) []geometry.Vec2 {
	var pts []geometry.Vec2
	for _, lid := range s.Linedefs {
		l := m.FindLinedef(lid)
		if l == nil {
			continue
		}
		start := m.FindVertex(l.StartVertex)
		if start == nil {
			continue
		}
		pts = append(pts, start.Pos())
		if end := m.FindVertex(l.EndVertex); end != nil {
			pts = append(pts, end.Pos())
		}
	}
	return pts
}

func (s *Sector) BoundingBox(m *Map) geometry.BBox {
	return geometry.BBoxFromPoints(s.endpoints(m))
}

// Center невзвешенный центроид всех концов ребер.
func (s *Sector) Center(m *Map) (geometry.Vec2, bool) {
	pts := s.endpoints(m)
	if len(pts) == 0 {
		return geometry.Vec2{}, false
	}
	var sum geometry.Vec2
	for _, p := range pts {
		sum = sum.Add(p)
	}
	return sum.Scale(1 / float32(len(pts))), true
}

func (s *Sector) Center3D(m *Map) (geometry.Vec3, bool) {
	var sum geometry.Vec3
	n := 0
	for _, lid := range s.Linedefs {
		l := m.FindLinedef(lid)
		if l == nil {
			continue
		}
		for _, vid := range [2]uint32{l.StartVertex, l.EndVertex} {
			if v := m.FindVertex(vid); v != nil {
				sum = sum.Add(geometry.V3(v.X, v.Y, v.Z))
				n++
			}
		}
	}
	if n == 0 {
		return geometry.Vec3{}, false
	}
	return sum.Scale(1 / float32(n)), true
}

// Area площадь по формуле шнурков.
func (s *Sector) Area(m *Map) float32 {
	return geometry.PolygonArea(s.polygon(m))
}

// IsInside ray casting по контуру сектора.
func (s *Sector) IsInside(m *Map, p geometry.Vec2) bool {
	return geometry.PointInPolygon(s.polygon(m), p)
}

// SignedDistance отрицательна внутри сектора.
func (s *Sector) SignedDistance(m *Map, p geometry.Vec2) (float32, bool) {
	best := float32(math.MaxFloat32)
	for _, lid := range s.Linedefs {
		l := m.FindLinedef(lid)
		if l == nil {
			continue
		}
		a, okA := m.GetVertex(l.StartVertex)
		b, okB := m.GetVertex(l.EndVertex)
		if !okA || !okB {
			return 0, false
		}
		best = min(best, geometry.DistanceToSegment(p, a, b))
	}
	if s.IsInside(m, p) {
		return -best, true
	}
	return best, true
}

// ============================================================
// Map queries
// ============================================================

// FindEmbeddedSectors сектора, чей центроид лежит внутри контейнера.
func (m *Map) FindEmbeddedSectors(containerID uint32) []uint32 {
	container := m.FindSector(containerID)
	if container == nil {
		return nil
	}
	var out []uint32
	for i := range m.Sectors {
		s := &m.Sectors[i]
		if s.ID == containerID {
			continue
		}
		if c, ok := s.Center(m); ok && container.IsInside(m, c) {
			out = append(out, s.ID)
		}
	}
	return out
}

// SortedSectorsByArea ID секторов по убыванию площади.
func (m *Map) SortedSectorsByArea() []uint32 {
	type entry struct {
		id   uint32
		area float32
	}
	entries := make([]entry, 0, len(m.Sectors))
	for i := range m.Sectors {
		entries = append(entries, entry{id: m.Sectors[i].ID, area: m.Sectors[i].Area(m)})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].area > entries[j].area })

	out := make([]uint32, len(entries))
	for i, e := range entries {
		out[i] = e.id
	}
	return out
}

// FindSectorAt самый маленький сектор без слоя, содержащий точку.
func (m *Map) FindSectorAt(p geometry.Vec2) (uint32, bool) {
	ordered := m.SortedSectorsByArea()
	for i := len(ordered) - 1; i >= 0; i-- {
		if s := m.FindSector(ordered[i]); s != nil && s.Layer == nil && s.IsInside(m, p) {
			return s.ID, true
		}
	}
	return 0, false
}

// FindSectorsWithVertexIndices сектора, набор вершин которых совпадает с указанным.
func (m *Map) FindSectorsWithVertexIndices(vertexIDs []uint32) []uint32 {
	want := append([]uint32{}, vertexIDs...)
	slices.Sort(want)
	want = slices.Compact(want)

	var out []uint32
	for _, s := range m.Sectors {
		var used []uint32
		for _, lid := range s.Linedefs {
			if l := m.FindLinedef(lid); l != nil {
				used = append(used, l.StartVertex, l.EndVertex)
			}
		}
		slices.Sort(used)
		used = slices.Compact(used)
		if slices.Equal(used, want) {
			out = append(out, s.ID)
		}
	}
	return out
}

// BoundingBox охватывает все сектора карты.
func (m *Map) BoundingBox() geometry.BBox {
	b := geometry.EmptyBBox()
	for i := range m.Sectors {
		sb := m.Sectors[i].BoundingBox(m)
		if sb.IsEmpty() {
			continue
		}
		b = b.Extend(sb.Min).Extend(sb.Max)
	}
	return b
}

// BBox охватывает все вершины карты.
func (m *Map) BBox() geometry.BBox {
	b := geometry.EmptyBBox()
	for _, v := range m.Vertices {
		b = b.Extend(v.Pos())
	}
	return b
}
