package mapgraph

// ============================================================
// Structural edits
// ============================================================

// ReplaceVertexInSector заменяет вершину в ребрах сектора. Ребро, общее с другим
// сектором, не меняется: для этого сектора создается его копия с новой вершиной.
func (m *Map) ReplaceVertexInSector(sectorID, oldVertex, newVertex uint32) {
	sector := m.FindSector(sectorID)
	if sector == nil {
		return
	}

	for _, lid := range append([]uint32{}, sector.Linedefs...) {
		l := m.FindLinedef(lid)
		if l == nil || (l.StartVertex != oldVertex && l.EndVertex != oldVertex) {
			continue
		}

		shared := len(l.SectorIDs) > 1
		for _, s := range m.Sectors {
			if s.ID != sectorID && contains(s.Linedefs, lid) {
				shared = true
				break
			}
		}

		if !shared {
			if l.StartVertex == oldVertex {
				l.StartVertex = newVertex
			}
			if l.EndVertex == oldVertex {
				l.EndVertex = newVertex
			}
			continue
		}

		split := l.clone()
		split.ID = m.FindFreeLinedefID()
		if split.StartVertex == oldVertex {
			split.StartVertex = newVertex
		}
		if split.EndVertex == oldVertex {
			split.EndVertex = newVertex
		}
		split.SectorIDs = []uint32{sectorID}
		l.SectorIDs = filterIDs(l.SectorIDs, func(id uint32) bool { return id != sectorID })
		m.Linedefs = append(m.Linedefs, split)

		for i, id := range sector.Linedefs {
			if id == lid {
				sector.Linedefs[i] = split.ID
				break
			}
		}
	}

	m.Sanitize()
}

// AddMidpoint делит ребро пополам. Первая половина сохраняет ID, вторая получает
// свободный ID и вставляется следом во всех секторах. Возвращает ID новой вершины.
func (m *Map) AddMidpoint(linedefID uint32) (uint32, bool) {
	l := m.FindLinedef(linedefID)
	if l == nil {
		return 0, false
	}
	orig := l.clone()
	start := m.FindVertex(orig.StartVertex)
	end := m.FindVertex(orig.EndVertex)
	if start == nil || end == nil {
		return 0, false
	}

	mid := m.addVertex3D(
		(start.X+end.X)/2,
		(start.Y+end.Y)/2,
		(start.Z+end.Z)/2,
		false,
	)

	second := orig.clone()
	second.ID = m.FindFreeLinedefID()
	second.StartVertex = mid
	second.EndVertex = orig.EndVertex

	for i := range m.Sectors {
		s := &m.Sectors[i]
		for pos, id := range s.Linedefs {
			if id == linedefID {
				s.Linedefs = append(s.Linedefs[:pos+1], append([]uint32{second.ID}, s.Linedefs[pos+1:]...)...)
				break
			}
		}
	}

	if first := m.FindLinedef(linedefID); first != nil {
		first.EndVertex = mid
	}
	m.Linedefs = append(m.Linedefs, second)

	m.Sanitize()
	return mid, true
}

// IsVertexInRectSector вершина принадлежит сектору, созданному прямоугольным инструментом.
func (m *Map) IsVertexInRectSector(vertexID uint32) bool {
	for _, s := range m.Sectors {
		if !s.Properties.Has("rect") {
			continue
		}
		for _, lid := range s.Linedefs {
			if l := m.FindLinedef(lid); l != nil && (l.StartVertex == vertexID || l.EndVertex == vertexID) {
				return true
			}
		}
	}
	return false
}
