package mapgraph

import (
	"github.com/zyedidia/generic/mapset"
)

// ============================================================
// Topology builder
// ============================================================

// CreateLinedef создает направленное ребро start -> end либо переиспользует
// существующее с точно таким же направлением. Если ребро замыкает направленный
// цикл, из цикла создается сектор и его ID возвращается с ok == true.
func (m *Map) CreateLinedef(start, end uint32) (id uint32, sectorID uint32, ok bool) {
	if existing := m.findDirectedLinedef(start, end); existing != nil {
		id = existing.ID
	} else {
		id = m.FindFreeLinedefID()
		m.Linedefs = append(m.Linedefs, NewLinedef(id, start, end))
	}

	if cycle := m.findDirectedCycleFromEdge(id); cycle != nil {
		m.PossiblePolygon = cycle
		sectorID, ok = m.CreateSectorFromPolygon()
	}
	return id, sectorID, ok
}

// CreateLinedefManual добавляет ребро в PossiblePolygon без автоматического
// поиска циклов. Полигон замыкается вызовом ClosePolygonManual.
func (m *Map) CreateLinedefManual(start, end uint32) uint32 {
	if existing := m.findDirectedLinedef(start, end); existing != nil {
		m.PossiblePolygon = appendUnique(m.PossiblePolygon, existing.ID)
		return existing.ID
	}

	id := m.FindFreeLinedefID()
	m.Linedefs = append(m.Linedefs, NewLinedef(id, start, end))
	m.PossiblePolygon = append(m.PossiblePolygon, id)
	return id
}

// ClosePolygonManual создает сектор из PossiblePolygon, если цепочка замкнута.
func (m *Map) ClosePolygonManual() (uint32, bool) {
	if !m.TestForClosedPolygon() {
		return 0, false
	}
	return m.CreateSectorFromPolygon()
}

// TestForClosedPolygon: минимум три ребра и конец последнего совпадает с началом первого.
func (m *Map) TestForClosedPolygon() bool {
	if len(m.PossiblePolygon) < 3 {
		return false
	}
	first := m.FindLinedef(m.PossiblePolygon[0])
	last := m.FindLinedef(m.PossiblePolygon[len(m.PossiblePolygon)-1])
	if first == nil || last == nil {
		return false
	}
	return last.EndVertex == first.StartVertex
}

// CreateSectorFromPolygon превращает PossiblePolygon в сектор.
// Дубликат существующего сектора (тот же набор linedef) не создается.
func (m *Map) CreateSectorFromPolygon() (uint32, bool) {
	if !m.TestForClosedPolygon() {
		return 0, false
	}

	if _, dup := m.findSectorByLinedefs(m.PossiblePolygon); dup {
		m.PossiblePolygon = nil
		return 0, false
	}

	sectorID := m.FindFreeSectorID()
	for _, lid := range m.PossiblePolygon {
		if l := m.FindLinedef(lid); l != nil {
			l.SectorIDs = appendUnique(l.SectorIDs, sectorID)
		}
	}
	m.Sectors = append(m.Sectors, NewSector(sectorID, m.PossiblePolygon))
	m.PossiblePolygon = nil

	log.WithField("sector_id", sectorID).Debug("sector created")
	return sectorID, true
}

// IsLinedefInClosedPolygon сообщает, входит ли ребро хотя бы в один сектор.
func (m *Map) IsLinedefInClosedPolygon(id uint32) bool {
	for _, s := range m.Sectors {
		if contains(s.Linedefs, id) {
			return true
		}
	}
	return false
}

func (m *Map) findDirectedLinedef(start, end uint32) *Linedef {
	for i := range m.Linedefs {
		if m.Linedefs[i].StartVertex == start && m.Linedefs[i].EndVertex == end {
			return &m.Linedefs[i]
		}
	}
	return nil
}

func (m *Map) findSectorByLinedefs(linedefs []uint32) (uint32, bool) {
	for _, s := range m.Sectors {
		if len(s.Linedefs) != len(linedefs) {
			continue
		}
		same := true
		for _, id := range s.Linedefs {
			if !contains(linedefs, id) {
				same = false
				break
			}
		}
		if same {
			return s.ID, true
		}
	}
	return 0, false
}

// findDirectedCycleFromEdge ищет путь от конца ребра обратно к его началу.
// Результат: путь + само ребро, минимум три ребра.
func (m *Map) findDirectedCycleFromEdge(edgeID uint32) []uint32 {
	edge := m.FindLinedef(edgeID)
	if edge == nil {
		return nil
	}

	path := m.findDirectedPath(edge.EndVertex, edge.StartVertex, edgeID)
	if path == nil || len(path)+1 < 3 {
		return nil
	}
	return append(path, edgeID)
}

type parentEdge struct {
	prev uint32
	edge uint32
}

// findDirectedPath BFS только по исходящим ребрам (start == текущая вершина).
func (m *Map) findDirectedPath(from, to, skipEdge uint32) []uint32 {
	queue := []uint32{from}
	visited := mapset.New[uint32]()
	visited.Put(from)
	parent := map[uint32]parentEdge{}

	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]

		for _, l := range m.Linedefs {
			if l.StartVertex != v || l.ID == skipEdge {
				continue
			}
			next := l.EndVertex
			if visited.Has(next) {
				continue
			}
			parent[next] = parentEdge{prev: v, edge: l.ID}

			if next == to {
				var path []uint32
				current := to
				for {
					p, ok := parent[current]
					if !ok {
						break
					}
					path = append(path, p.edge)
					if p.prev == from {
						break
					}
					current = p.prev
				}
				reverse(path)
				return path
			}

			visited.Put(next)
			queue = append(queue, next)
		}
	}
	return nil
}

func reverse(ids []uint32) {
	for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
		ids[i], ids[j] = ids[j], ids[i]
	}
}
