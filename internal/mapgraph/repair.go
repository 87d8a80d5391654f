package mapgraph

import (
	"github.com/sirupsen/logrus"
	"github.com/zyedidia/generic/mapset"
)

// ============================================================
// Deletion
// ============================================================

// DeleteElements удаляет вершины, linedef и сектора с каскадной очисткой.
// Вершины удаляются только явно запрошенные.
func (m *Map) DeleteElements(vertexIDs, linedefIDs, sectorIDs []uint32) {
	allLinedefs := append([]uint32{}, linedefIDs...)
	deadSectors := idSet(sectorIDs)

	// 1. Ребра удаляемых секторов, которые больше никому не нужны
	for _, sector := range m.Sectors {
		if !deadSectors.Has(sector.ID) {
			continue
		}
		for _, lid := range sector.Linedefs {
			if m.linedefUsedElsewhere(lid, sector.ID, deadSectors) {
				continue
			}
			allLinedefs = appendUnique(allLinedefs, lid)
		}
	}

	// 2. Сектора и их поверхности
	if len(sectorIDs) > 0 {
		kept := m.Sectors[:0]
		for _, s := range m.Sectors {
			if !deadSectors.Has(s.ID) {
				kept = append(kept, s)
			}
		}
		m.Sectors = kept
		m.removeSurfacesFor(deadSectors)

		for i := range m.Linedefs {
			l := &m.Linedefs[i]
			l.SectorIDs = filterIDs(l.SectorIDs, func(id uint32) bool { return !deadSectors.Has(id) })
		}
	}

	// Ребра, опирающиеся на удаляемые вершины
	deadVertices := idSet(vertexIDs)
	for _, l := range m.Linedefs {
		if deadVertices.Has(l.StartVertex) || deadVertices.Has(l.EndVertex) {
			allLinedefs = appendUnique(allLinedefs, l.ID)
		}
	}

	// 3. Ребра, очистка секторов, вершины
	if len(allLinedefs) > 0 {
		deadLinedefs := idSet(allLinedefs)
		kept := m.Linedefs[:0]
		for _, l := range m.Linedefs {
			if !deadLinedefs.Has(l.ID) {
				kept = append(kept, l)
			}
		}
		m.Linedefs = kept
	}
	m.cleanupSectors()

	if len(vertexIDs) > 0 {
		kept := m.Vertices[:0]
		for _, v := range m.Vertices {
			if !deadVertices.Has(v.ID) {
				kept = append(kept, v)
			}
		}
		m.Vertices = kept
	}

	m.Sanitize()
}

// linedefUsedElsewhere проверяет и списки секторов, и обратные ссылки sector_ids.
func (m *Map) linedefUsedElsewhere(lid, owner uint32, dead mapset.Set[uint32]) bool {
	for _, s := range m.Sectors {
		if s.ID != owner && !dead.Has(s.ID) && contains(s.Linedefs, lid) {
			return true
		}
	}
	if l := m.FindLinedef(lid); l != nil {
		for _, sid := range l.SectorIDs {
			if sid != owner && !dead.Has(sid) {
				return true
			}
		}
	}
	return false
}

// cleanupSectors убирает ссылки на несуществующие linedef и пустые сектора.
func (m *Map) cleanupSectors() {
	valid := mapset.New[uint32]()
	for _, l := range m.Linedefs {
		valid.Put(l.ID)
	}

	kept := m.Sectors[:0]
	for _, s := range m.Sectors {
		s.Linedefs = filterIDs(s.Linedefs, valid.Has)
		if len(s.Linedefs) > 0 {
			kept = append(kept, s)
		}
	}
	m.Sectors = kept
}

// removeSurfacesFor удаляет поверхности (и их профили) для указанных секторов.
func (m *Map) removeSurfacesFor(sectors mapset.Set[uint32]) {
	if sectors.Size() == 0 {
		return
	}
	kept := m.Surfaces[:0]
	for _, surf := range m.Surfaces {
		if sectors.Has(surf.SectorID) {
			if surf.Profile != nil {
				delete(m.Profiles, *surf.Profile)
			}
			continue
		}
		kept = append(kept, surf)
	}
	m.Surfaces = kept
}

// ============================================================
// Sanitize
// ============================================================

// Sanitize восстанавливает инварианты графа. Повторный вызов ничего не меняет.
func (m *Map) Sanitize() {
	vertices := mapset.New[uint32]()
	for _, v := range m.Vertices {
		vertices.Put(v.ID)
	}

	// 1. Linedef со ссылками на несуществующие вершины
	removed := 0
	kept := m.Linedefs[:0]
	for _, l := range m.Linedefs {
		if !vertices.Has(l.StartVertex) || !vertices.Has(l.EndVertex) {
			log.WithFields(logrus.Fields{
				"linedef_id": l.ID,
				"start":      l.StartVertex,
				"end":        l.EndVertex,
			}).Info("sanitize: removing orphaned linedef")
			removed++
			continue
		}
		kept = append(kept, l)
	}
	m.Linedefs = kept

	// 2. Сектора без ребер и их поверхности
	before := m.sectorIDs()
	m.cleanupSectors()
	gone := mapset.New[uint32]()
	after := m.sectorIDs()
	before.Each(func(id uint32) {
		if !after.Has(id) {
			gone.Put(id)
		}
	})
	m.removeSurfacesFor(gone)
	if removed > 0 || gone.Size() > 0 {
		log.WithFields(logrus.Fields{
			"linedefs": removed,
			"sectors":  gone.Size(),
		}).Info("sanitize: removed orphans")
	}

	// 3. Геометрическая валидность секторов
	invalid := mapset.New[uint32]()
	for _, s := range m.Sectors {
		if reason := m.validateSector(s); reason != "" {
			log.WithFields(logrus.Fields{"sector_id": s.ID, "reason": reason}).Info("sanitize: removing invalid sector")
			invalid.Put(s.ID)
		}
	}
	m.dropSectors(invalid)

	// 4. Поверхности; сектор с невалидной трансформацией удаляется
	m.UpdateSurfaces()
	badSurface := mapset.New[uint32]()
	for _, surf := range m.Surfaces {
		if !surf.IsValid() {
			log.WithField("sector_id", surf.SectorID).Info("sanitize: removing sector with invalid surface")
			badSurface.Put(surf.SectorID)
		}
	}
	m.dropSectors(badSurface)

	// 5. Обратные ссылки sector_ids
	m.rebuildSectorIDs()
}

func (m *Map) sectorIDs() mapset.Set[uint32] {
	s := mapset.New[uint32]()
	for _, sec := range m.Sectors {
		s.Put(sec.ID)
	}
	return s
}

func (m *Map) dropSectors(ids mapset.Set[uint32]) {
	if ids.Size() == 0 {
		return
	}
	kept := m.Sectors[:0]
	for _, s := range m.Sectors {
		if !ids.Has(s.ID) {
			kept = append(kept, s)
		}
	}
	m.Sectors = kept
	m.removeSurfacesFor(ids)
}

// validateSector возвращает причину невалидности или пустую строку.
func (m *Map) validateSector(s Sector) string {
	if len(s.Linedefs) < 3 {
		return "fewer than 3 linedefs"
	}

	edges := make([]*Linedef, 0, len(s.Linedefs))
	for _, lid := range s.Linedefs {
		l := m.FindLinedef(lid)
		if l == nil {
			return "references missing linedef"
		}
		if m.FindVertex(l.StartVertex) == nil || m.FindVertex(l.EndVertex) == nil {
			return "linedef with missing vertex"
		}
		edges = append(edges, l)
	}

	for i, l := range edges {
		next := edges[(i+1)%len(edges)]
		if l.EndVertex != next.StartVertex {
			return "edge chain is not closed"
		}
	}

	for _, l := range edges {
		if l.StartVertex == l.EndVertex {
			return "degenerate linedef"
		}
	}

	for _, l := range edges {
		if !m.FindVertex(l.StartVertex).IsFinite() || !m.FindVertex(l.EndVertex).IsFinite() {
			return "non-finite vertex coordinates"
		}
	}
	return ""
}

// rebuildSectorIDs полностью пересчитывает Linedef.SectorIDs.
func (m *Map) rebuildSectorIDs() {
	index := make(map[uint32]int, len(m.Linedefs))
	for i := range m.Linedefs {
		m.Linedefs[i].SectorIDs = []uint32{}
		index[m.Linedefs[i].ID] = i
	}
	for _, s := range m.Sectors {
		for _, lid := range s.Linedefs {
			if i, ok := index[lid]; ok {
				m.Linedefs[i].SectorIDs = appendUnique(m.Linedefs[i].SectorIDs, s.ID)
			}
		}
	}
}

func filterIDs(ids []uint32, keep func(uint32) bool) []uint32 {
	out := make([]uint32, 0, len(ids))
	for _, id := range ids {
		if keep(id) {
			out = append(out, id)
		}
	}
	return out
}
