package mapgraph

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/zyedidia/generic/mapset"

	"level-engine/internal/common/logging"
	"level-engine/internal/geometry"
)

var log = logging.Named("mapgraph")

// ============================================================
// Map
// ============================================================

// Map владеет вершинами, linedef и секторами. Элементы ссылаются друг на друга только по ID.
type Map struct {
	ID           uuid.UUID     `json:"id"`
	Name         string        `json:"name"`
	Offset       geometry.Vec2 `json:"offset"`
	GridSize     float32       `json:"grid_size"`
	Subdivisions float32       `json:"subdivisions"`

	Vertices []Vertex  `json:"vertices"`
	Linedefs []Linedef `json:"linedefs"`
	Sectors  []Sector  `json:"sectors"`

	// Производные данные, пересчитываются в UpdateSurfaces / Sanitize
	Surfaces []Surface              `json:"surfaces,omitempty"`
	Profiles map[uuid.UUID]*Map     `json:"profiles,omitempty"`
	SoftRigs map[uuid.UUID]*SoftRig `json:"softrigs,omitempty"`

	SelectedVertices []uint32 `json:"selected_vertices"`
	SelectedLinedefs []uint32 `json:"selected_linedefs"`
	SelectedSectors  []uint32 `json:"selected_sectors"`

	// Временное состояние редактора
	PossiblePolygon []uint32          `json:"-"`
	CurrGridPos     *geometry.Vec2    `json:"-"`
	CurrMousePos    *geometry.Vec2    `json:"-"`
	CurrRectangle   *[2]geometry.Vec2 `json:"-"`
	EditingRig      *uuid.UUID        `json:"-"`

	Changed uint32 `json:"changed"`
}

func New() *Map {
	return &Map{
		ID:               uuid.New(),
		Name:             "New Map",
		GridSize:         30,
		Subdivisions:     1,
		Vertices:         []Vertex{},
		Linedefs:         []Linedef{},
		Sectors:          []Sector{},
		Profiles:         map[uuid.UUID]*Map{},
		SoftRigs:         map[uuid.UUID]*SoftRig{},
		SelectedVertices: []uint32{},
		SelectedLinedefs: []uint32{},
		SelectedSectors:  []uint32{},
	}
}

// Info краткая статистика карты.
func (m *Map) Info() string {
	return fmt.Sprintf("V %d, L %d, S %d", len(m.Vertices), len(m.Linedefs), len(m.Sectors))
}

func (m *Map) IsEmpty() bool {
	return len(m.Vertices) == 0 && len(m.Linedefs) == 0 && len(m.Sectors) == 0
}

// ClearTemp сбрасывает незавершенный полигон и превью.
func (m *Map) ClearTemp() {
	m.PossiblePolygon = nil
	m.CurrGridPos = nil
	m.CurrRectangle = nil
}

// GeometryClone копирует только геометрию и параметры сетки.
func (m *Map) GeometryClone() *Map {
	c := New()
	c.Offset = m.Offset
	c.GridSize = m.GridSize
	c.Subdivisions = m.Subdivisions
	c.Vertices = append(c.Vertices, m.Vertices...)
	for i := range m.Vertices {
		c.Vertices[i].Properties = m.Vertices[i].Properties.clone()
	}
	for _, l := range m.Linedefs {
		c.Linedefs = append(c.Linedefs, l.clone())
	}
	for _, s := range m.Sectors {
		c.Sectors = append(c.Sectors, s.clone())
	}
	return c
}

// ============================================================
// Lookup
// ============================================================

func (m *Map) FindVertex(id uint32) *Vertex {
	for i := range m.Vertices {
		if m.Vertices[i].ID == id {
			return &m.Vertices[i]
		}
	}
	return nil
}

func (m *Map) FindLinedef(id uint32) *Linedef {
	for i := range m.Linedefs {
		if m.Linedefs[i].ID == id {
			return &m.Linedefs[i]
		}
	}
	return nil
}

func (m *Map) FindSector(id uint32) *Sector {
	for i := range m.Sectors {
		if m.Sectors[i].ID == id {
			return &m.Sectors[i]
		}
	}
	return nil
}

// FindVertexAt ищет вершину точно в (x, y).
func (m *Map) FindVertexAt(x, y float32) (uint32, bool) {
	for _, v := range m.Vertices {
		if v.X == x && v.Y == y {
			return v.ID, true
		}
	}
	return 0, false
}

func (m *Map) FindVertexAt3D(x, y, z float32) (uint32, bool) {
	for _, v := range m.Vertices {
		if v.X == x && v.Y == y && v.Z == z {
			return v.ID, true
		}
	}
	return 0, false
}

// ============================================================
// Free IDs
// ============================================================

// FindFreeVertexID возвращает наименьший неиспользуемый ID вершины.
func (m *Map) FindFreeVertexID() uint32 {
	used := mapset.New[uint32]()
	for _, v := range m.Vertices {
		used.Put(v.ID)
	}
	return smallestFree(used)
}

func (m *Map) FindFreeLinedefID() uint32 {
	used := mapset.New[uint32]()
	for _, l := range m.Linedefs {
		used.Put(l.ID)
	}
	return smallestFree(used)
}

func (m *Map) FindFreeSectorID() uint32 {
	used := mapset.New[uint32]()
	for _, s := range m.Sectors {
		used.Put(s.ID)
	}
	return smallestFree(used)
}

func smallestFree(used mapset.Set[uint32]) uint32 {
	var id uint32
	for used.Has(id) {
		id++
	}
	return id
}

// ============================================================
// Vertices
// ============================================================

// AddVertexAt добавляет вершину с привязкой к сетке subdivisions.
// Если вершина в этой точке уже есть, возвращается ее ID.
func (m *Map) AddVertexAt(x, y float32) uint32 {
	x, y = m.snap(x), m.snap(y)
	if id, ok := m.FindVertexAt(x, y); ok {
		return id
	}
	id := m.FindFreeVertexID()
	m.Vertices = append(m.Vertices, NewVertex(id, x, y))
	return id
}

func (m *Map) AddVertexAt3D(x, y, z float32) uint32 {
	return m.addVertex3D(x, y, z, true)
}

func (m *Map) addVertex3D(x, y, z float32, snap bool) uint32 {
	if snap {
		x, y = m.snap(x), m.snap(y)
	}
	if id, ok := m.FindVertexAt3D(x, y, z); ok {
		return id
	}
	id := m.FindFreeVertexID()
	v := NewVertex(id, x, y)
	v.Z = z
	m.Vertices = append(m.Vertices, v)
	return id
}

func (m *Map) snap(f float32) float32 {
	sub := m.Subdivisions
	if sub <= 0 {
		sub = 1
	}
	step := 1 / float64(sub)
	return float32(math.Round(float64(f)/step) * step)
}

// GetVertex позиция вершины с учетом активного soft rig.
func (m *Map) GetVertex(id uint32) (geometry.Vec2, bool) {
	if rig := m.editingRig(); rig != nil && len(rig.Keyforms) > 0 {
		for _, vp := range rig.Keyforms[0].VertexPositions {
			if vp.VertexID == id {
				return vp.Pos, true
			}
		}
	}
	if v := m.FindVertex(id); v != nil {
		return v.Pos(), true
	}
	return geometry.Vec2{}, false
}

func (m *Map) GetVertex3D(id uint32) (geometry.Vec3, bool) {
	v := m.FindVertex(id)
	if v == nil {
		return geometry.Vec3{}, false
	}
	pos, _ := m.GetVertex(id)
	return geometry.V3(pos.X, pos.Y, v.Z), true
}

// UpdateVertex пишет в первую ключевую форму активного rig, иначе в саму вершину.
func (m *Map) UpdateVertex(id uint32, pos geometry.Vec2) {
	if rig := m.editingRig(); rig != nil {
		if len(rig.Keyforms) == 0 {
			rig.Keyforms = append(rig.Keyforms, Keyform{})
		}
		kf := &rig.Keyforms[0]
		for i := range kf.VertexPositions {
			if kf.VertexPositions[i].VertexID == id {
				kf.VertexPositions[i].Pos = pos
				return
			}
		}
		kf.VertexPositions = append(kf.VertexPositions, VertexPosition{VertexID: id, Pos: pos})
		return
	}
	if v := m.FindVertex(id); v != nil {
		v.X = pos.X
		v.Y = pos.Y
	}
}

// AddSoftRig регистрирует rig в карте.
func (m *Map) AddSoftRig(rig *SoftRig) {
	if m.SoftRigs == nil {
		m.SoftRigs = map[uuid.UUID]*SoftRig{}
	}
	m.SoftRigs[rig.ID] = rig
}

func (m *Map) editingRig() *SoftRig {
	if m.EditingRig == nil {
		return nil
	}
	return m.SoftRigs[*m.EditingRig]
}

// DuplicateVertex копия вершины в той же точке под новым ID.
func (m *Map) DuplicateVertex(id uint32) (uint32, bool) {
	v := m.FindVertex(id)
	if v == nil {
		return 0, false
	}
	dup := *v
	dup.Properties = v.Properties.clone()
	dup.ID = m.FindFreeVertexID()
	m.Vertices = append(m.Vertices, dup)
	return dup.ID, true
}

// ============================================================
// Selection
// ============================================================

func (m *Map) AddToSelection(vertices, linedefs, sectors []uint32) {
	m.SelectedVertices = appendUnique(m.SelectedVertices, vertices...)
	m.SelectedLinedefs = appendUnique(m.SelectedLinedefs, linedefs...)
	m.SelectedSectors = appendUnique(m.SelectedSectors, sectors...)
}

func (m *Map) RemoveFromSelection(vertices, linedefs, sectors []uint32) {
	m.SelectedVertices = removeAll(m.SelectedVertices, vertices)
	m.SelectedLinedefs = removeAll(m.SelectedLinedefs, linedefs)
	m.SelectedSectors = removeAll(m.SelectedSectors, sectors)
}

func (m *Map) ClearSelection() {
	m.SelectedVertices = []uint32{}
	m.SelectedLinedefs = []uint32{}
	m.SelectedSectors = []uint32{}
}

func (m *Map) HasSelection() bool {
	return len(m.SelectedVertices) > 0 || len(m.SelectedLinedefs) > 0 || len(m.SelectedSectors) > 0
}

// ============================================================
// Helpers
// ============================================================

func contains(list []uint32, target uint32) bool {
	for _, item := range list {
		if item == target {
			return true
		}
	}
	return false
}

func appendUnique(dst []uint32, src ...uint32) []uint32 {
	for _, s := range src {
		if !contains(dst, s) {
			dst = append(dst, s)
		}
	}
	return dst
}

func removeAll(list, drop []uint32) []uint32 {
	out := list[:0]
	for _, id := range list {
		if !contains(drop, id) {
			out = append(out, id)
		}
	}
	return out
}

func idSet(ids []uint32) mapset.Set[uint32] {
	s := mapset.New[uint32]()
	for _, id := range ids {
		s.Put(id)
	}
	return s
}
