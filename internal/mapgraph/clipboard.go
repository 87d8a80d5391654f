package mapgraph

import (
	"level-engine/internal/geometry"
)

// ============================================================
// Clipboard
// ============================================================

// CopySelected копирует выделение в новую карту с координатами относительно
// минимального угла. При cut исходное выделение удаляется.
func (m *Map) CopySelected(cut bool) *Map {
	clip := New()

	linedefIDs := append([]uint32{}, m.SelectedLinedefs...)
	sectorIDs := append([]uint32{}, m.SelectedSectors...)
	for _, sid := range sectorIDs {
		if s := m.FindSector(sid); s != nil {
			linedefIDs = appendUnique(linedefIDs, s.Linedefs...)
		}
	}

	var vertexIDs []uint32
	for _, lid := range linedefIDs {
		if l := m.FindLinedef(lid); l != nil {
			vertexIDs = appendUnique(vertexIDs, l.StartVertex, l.EndVertex)
		}
	}
	vertexIDs = appendUnique(vertexIDs, m.SelectedVertices...)

	wantVertices := idSet(vertexIDs)
	var copied []Vertex
	for _, v := range m.Vertices {
		if wantVertices.Has(v.ID) {
			copied = append(copied, v)
		}
	}
	if len(copied) == 0 {
		return clip
	}

	origin := geometry.EmptyBBox()
	for _, v := range copied {
		origin = origin.Extend(v.Pos())
	}

	vertexMap := map[uint32]uint32{}
	for _, v := range copied {
		nv := v
		nv.Properties = v.Properties.clone()
		nv.ID = clip.FindFreeVertexID()
		nv.X -= origin.Min.X
		nv.Y -= origin.Min.Y
		vertexMap[v.ID] = nv.ID
		clip.Vertices = append(clip.Vertices, nv)
	}

	wantLinedefs := idSet(linedefIDs)
	linedefMap := map[uint32]uint32{}
	for _, l := range m.Linedefs {
		if !wantLinedefs.Has(l.ID) {
			continue
		}
		nl := l.clone()
		nl.ID = clip.FindFreeLinedefID()
		nl.StartVertex = vertexMap[l.StartVertex]
		nl.EndVertex = vertexMap[l.EndVertex]
		nl.SectorIDs = []uint32{}
		linedefMap[l.ID] = nl.ID
		clip.Linedefs = append(clip.Linedefs, nl)
	}

	wantSectors := idSet(sectorIDs)
	for _, s := range m.Sectors {
		if !wantSectors.Has(s.ID) || !allIn(s.Linedefs, linedefMap) {
			continue
		}
		ns := s.clone()
		ns.ID = clip.FindFreeSectorID()
		ns.Linedefs = remap(s.Linedefs, linedefMap)
		clip.linkSector(ns)
		clip.Sectors = append(clip.Sectors, ns)
	}

	if cut {
		m.DeleteElements(vertexIDs, linedefIDs, sectorIDs)
		m.ClearSelection()
	}
	return clip
}

// PasteAtPosition вставляет карту со смещением position под новыми ID
// и выделяет все вставленное. Вызывающий код затем делает Sanitize.
func (m *Map) PasteAtPosition(local *Map, position geometry.Vec2) {
	m.ClearSelection()

	vertexMap := map[uint32]uint32{}
	for _, v := range local.Vertices {
		nv := v
		nv.Properties = v.Properties.clone()
		nv.ID = m.FindFreeVertexID()
		nv.X += position.X
		nv.Y += position.Y
		m.Vertices = append(m.Vertices, nv)
		m.SelectedVertices = append(m.SelectedVertices, nv.ID)
		vertexMap[v.ID] = nv.ID
	}

	linedefMap := map[uint32]uint32{}
	for _, l := range local.Linedefs {
		start, okS := vertexMap[l.StartVertex]
		end, okE := vertexMap[l.EndVertex]
		if !okS || !okE {
			log.WithField("linedef_id", l.ID).Warn("paste: linedef references missing vertex, skipped")
			continue
		}
		nl := l.clone()
		nl.ID = m.FindFreeLinedefID()
		nl.StartVertex = start
		nl.EndVertex = end
		nl.SectorIDs = []uint32{}
		m.Linedefs = append(m.Linedefs, nl)
		m.SelectedLinedefs = append(m.SelectedLinedefs, nl.ID)
		linedefMap[l.ID] = nl.ID
	}

	for _, s := range local.Sectors {
		ns := s.clone()
		ns.ID = m.FindFreeSectorID()
		ns.Linedefs = remap(s.Linedefs, linedefMap)
		m.linkSector(ns)
		m.Sectors = append(m.Sectors, ns)
		m.SelectedSectors = append(m.SelectedSectors, ns.ID)
	}
}

// linkSector добавляет ID сектора в SectorIDs его ребер.
func (m *Map) linkSector(s Sector) {
	for _, lid := range s.Linedefs {
		if l := m.FindLinedef(lid); l != nil {
			l.SectorIDs = appendUnique(l.SectorIDs, s.ID)
		}
	}
}

func allIn(ids []uint32, mapping map[uint32]uint32) bool {
	for _, id := range ids {
		if _, ok := mapping[id]; !ok {
			return false
		}
	}
	return true
}

// remap переводит ID через таблицу, неизвестные ID отбрасываются.
func remap(ids []uint32, mapping map[uint32]uint32) []uint32 {
	out := make([]uint32, 0, len(ids))
	for _, id := range ids {
		if nid, ok := mapping[id]; ok {
			out = append(out, nid)
		}
	}
	return out
}

// ============================================================
// Chunks
// ============================================================

// Chunk геометрия, попавшая в прямоугольник чанка. В отличие от Map не
// гарантирует замкнутость секторов: сектор содержит только попавшие в чанк
// ребра. Используется для превью и пространственного разбиения, не для
// редактирования, и никогда не проходит через Sanitize.
type Chunk struct {
	Bounds   geometry.BBox
	Geometry *Map
}

// ExtractChunkGeometry собирает ребра, у которых конец внутри bounds или
// отрезок пересекает его границу, их вершины и сектора с отфильтрованными ребрами.
func (m *Map) ExtractChunkGeometry(bounds geometry.BBox) *Chunk {
	out := New()
	vertexMap := map[uint32]uint32{}
	linedefMap := map[uint32]uint32{}

	for _, l := range m.Linedefs {
		start, okS := m.GetVertex(l.StartVertex)
		end, okE := m.GetVertex(l.EndVertex)
		if !okS || !okE {
			continue
		}
		if !bounds.Contains(start) && !bounds.Contains(end) && !bounds.LineIntersects(start, end) {
			continue
		}

		for _, vid := range [2]uint32{l.StartVertex, l.EndVertex} {
			if _, seen := vertexMap[vid]; seen {
				continue
			}
			v := m.FindVertex(vid)
			if v == nil {
				continue
			}
			nv := *v
			nv.Properties = v.Properties.clone()
			nv.ID = out.FindFreeVertexID()
			out.Vertices = append(out.Vertices, nv)
			vertexMap[vid] = nv.ID
		}

		nl := l.clone()
		nl.ID = out.FindFreeLinedefID()
		nl.StartVertex = vertexMap[l.StartVertex]
		nl.EndVertex = vertexMap[l.EndVertex]
		nl.SectorIDs = []uint32{}
		out.Linedefs = append(out.Linedefs, nl)
		linedefMap[l.ID] = nl.ID
	}

	for _, s := range m.Sectors {
		kept := remap(s.Linedefs, linedefMap)
		if len(kept) == 0 {
			continue
		}
		ns := s.clone()
		ns.ID = out.FindFreeSectorID()
		ns.Linedefs = kept
		out.linkSector(ns)
		out.Sectors = append(out.Sectors, ns)
	}

	return &Chunk{Bounds: bounds, Geometry: out}
}
