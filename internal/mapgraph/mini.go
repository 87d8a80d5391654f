package mapgraph

import (
	"github.com/google/uuid"
	"github.com/zyedidia/generic/mapset"

	"level-engine/internal/geometry"
)

// ============================================================
// MapMini
// ============================================================

// CompiledLinedef стена в мировых координатах для коллизий и видимости.
type CompiledLinedef struct {
	Start      geometry.Vec2
	End        geometry.Vec2
	WallWidth  float32
	WallHeight float32
}

type OccludedSector struct {
	Bounds    geometry.BBox
	Occlusion float32
}

// MapMini минимальная скомпилированная форма карты для рендера и коллизий.
type MapMini struct {
	Offset          geometry.Vec2
	GridSize        float32
	Linedefs        []CompiledLinedef
	DynamicLinedefs []CompiledLinedef
	OccludedSectors []OccludedSector
	BlockedTiles    mapset.Set[[2]int32]
}

// AsMini компилирует блокирующую геометрию. blocking содержит ID тайлов и
// материалов, которые блокируют движение.
func (m *Map) AsMini(blocking mapset.Set[uuid.UUID]) *MapMini {
	mini := &MapMini{
		Offset:       m.Offset,
		GridSize:     m.GridSize,
		BlockedTiles: mapset.New[[2]int32](),
	}

	for i := range m.Sectors {
		s := &m.Sectors[i]

		if occlusion := s.Properties.Get("occlusion", 1); occlusion < 1 {
			mini.OccludedSectors = append(mini.OccludedSectors, OccludedSector{
				Bounds:    s.BoundingBox(m).Expand(geometry.V2(0.1, 0.1)),
				Occlusion: occlusion,
			})
		}

		if s.Layer == nil || s.Source == nil || !blocking.Has(s.Source.ID) {
			continue
		}
		if s.Source.Kind == SourceTile {
			if c, ok := s.Center(m); ok {
				mini.BlockedTiles.Put(c.Floor())
			}
		}
		for _, lid := range s.Linedefs {
			if l := m.FindLinedef(lid); l != nil {
				m.compileWall(mini, l)
			}
		}
	}

	for i := range m.Linedefs {
		l := &m.Linedefs[i]
		if len(l.SectorIDs) > 0 || l.Source == nil || !blocking.Has(l.Source.ID) {
			continue
		}
		m.compileWall(mini, l)
	}

	return mini
}

// compileWall добавляет стену, только если оба конца лежат на нулевой высоте.
func (m *Map) compileWall(mini *MapMini, l *Linedef) {
	start := m.FindVertex(l.StartVertex)
	end := m.FindVertex(l.EndVertex)
	if start == nil || end == nil || start.Z != 0 || end.Z != 0 {
		return
	}
	mini.Linedefs = append(mini.Linedefs, CompiledLinedef{
		Start:      start.Pos(),
		End:        end.Pos(),
		WallWidth:  l.Properties.Get("wall_width", 0),
		WallHeight: l.Properties.Get("wall_height", 0),
	})
}

// GetOcclusion окклюзия в точке, 1 вне затененных секторов.
func (mm *MapMini) GetOcclusion(at geometry.Vec2) float32 {
	for _, o := range mm.OccludedSectors {
		if o.Bounds.Contains(at) {
			return o.Occlusion
		}
	}
	return 1
}

func (mm *MapMini) SegmentsIntersect(a1, a2, b1, b2 geometry.Vec2) bool {
	return geometry.SegmentsIntersect(a1, a2, b1, b2)
}

// IsVisible отрезок from-to не пересекает ни одной статической стены.
func (mm *MapMini) IsVisible(from, to geometry.Vec2) bool {
	for _, l := range mm.Linedefs {
		if geometry.SegmentsIntersect(from, to, l.Start, l.End) {
			return false
		}
	}
	return true
}

// IsVisibleAndLit при попадании в стену свет проходит только с внутренней стороны.
func (mm *MapMini) IsVisibleAndLit(from, to geometry.Vec2) bool {
	for _, l := range mm.Linedefs {
		if !geometry.SegmentsIntersect(from, to, l.Start, l.End) {
			continue
		}
		dir := l.End.Sub(l.Start).Normalized()
		normal := geometry.V2(-dir.Y, dir.X)
		light := from.Sub(to).Normalized()
		return normal.Dot(light) < 0
	}
	return true
}

// IsBlocked клетка сетки занята блокирующим тайлом.
func (mm *MapMini) IsBlocked(tile [2]int32) bool {
	return mm.BlockedTiles.Has(tile)
}
