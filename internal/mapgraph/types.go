package mapgraph

import (
	"github.com/google/uuid"

	"level-engine/internal/geometry"
)

// ============================================================
// Properties & sources
// ============================================================

// Properties числовые параметры элемента (wall_width, wall_height, occlusion, ...).
type Properties map[string]float32

func (p Properties) Get(key string, def float32) float32 {
	if v, ok := p[key]; ok {
		return v
	}
	return def
}

func (p Properties) Has(key string) bool {
	_, ok := p[key]
	return ok
}

func (p Properties) clone() Properties {
	if p == nil {
		return nil
	}
	cp := make(Properties, len(p))
	for k, v := range p {
		cp[k] = v
	}
	return cp
}

type SourceKind string

const (
	SourceTile     SourceKind = "tile"
	SourceMaterial SourceKind = "material"
)

// PixelSource ссылка на тайл или материал, которым покрыт элемент.
type PixelSource struct {
	Kind SourceKind `json:"kind"`
	ID   uuid.UUID  `json:"id"`
}

// ============================================================
// Graph entities
// ============================================================

type Vertex struct {
	ID         uint32     `json:"id"`
	X          float32    `json:"x"`
	Y          float32    `json:"y"`
	Z          float32    `json:"z"`
	Properties Properties `json:"properties,omitempty"`
}

func NewVertex(id uint32, x, y float32) Vertex {
	return Vertex{ID: id, X: x, Y: y}
}

func (v Vertex) Pos() geometry.Vec2 {
	return geometry.V2(v.X, v.Y)
}

// World координаты в мировом пространстве: высота z идет в ось Y.
func (v Vertex) World() geometry.Vec3 {
	return geometry.V3(v.X, v.Z, v.Y)
}

func (v Vertex) IsFinite() bool {
	return geometry.IsFinite(v.X) && geometry.IsFinite(v.Y) && geometry.IsFinite(v.Z)
}

// Linedef направленное ребро start -> end.
type Linedef struct {
	ID          uint32       `json:"id"`
	CreatorID   uuid.UUID    `json:"creator_id"`
	Name        string       `json:"name,omitempty"`
	StartVertex uint32       `json:"start_vertex"`
	EndVertex   uint32       `json:"end_vertex"`
	SectorIDs   []uint32     `json:"sector_ids"`
	Source      *PixelSource `json:"source,omitempty"`
	Properties  Properties   `json:"properties,omitempty"`
}

func NewLinedef(id, start, end uint32) Linedef {
	return Linedef{
		ID:          id,
		CreatorID:   uuid.New(),
		StartVertex: start,
		EndVertex:   end,
		SectorIDs:   []uint32{},
	}
}

func (l Linedef) clone() Linedef {
	l.SectorIDs = append([]uint32{}, l.SectorIDs...)
	l.Properties = l.Properties.clone()
	if l.Source != nil {
		src := *l.Source
		l.Source = &src
	}
	return l
}

// Sector замкнутый многоугольник из упорядоченных linedef.
type Sector struct {
	ID         uint32       `json:"id"`
	CreatorID  uuid.UUID    `json:"creator_id"`
	Name       string       `json:"name,omitempty"`
	Linedefs   []uint32     `json:"linedefs"`
	Layer      *uint8       `json:"layer,omitempty"`
	Source     *PixelSource `json:"source,omitempty"`
	Properties Properties   `json:"properties,omitempty"`
}

func NewSector(id uint32, linedefs []uint32) Sector {
	return Sector{
		ID:        id,
		CreatorID: uuid.New(),
		Linedefs:  append([]uint32{}, linedefs...),
	}
}

func (s Sector) clone() Sector {
	s.Linedefs = append([]uint32{}, s.Linedefs...)
	s.Properties = s.Properties.clone()
	if s.Layer != nil {
		layer := *s.Layer
		s.Layer = &layer
	}
	if s.Source != nil {
		src := *s.Source
		s.Source = &src
	}
	return s
}

// ============================================================
// Soft rigs
// ============================================================

// VertexPosition переопределение позиции вершины в ключевой форме.
type VertexPosition struct {
	VertexID uint32        `json:"vertex_id"`
	Pos      geometry.Vec2 `json:"pos"`
}

type Keyform struct {
	VertexPositions []VertexPosition `json:"vertex_positions"`
}

// SoftRig набор ключевых форм, которые смещают вершины без изменения графа.
type SoftRig struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Keyforms []Keyform `json:"keyforms"`
}

func NewSoftRig(name string) *SoftRig {
	return &SoftRig{ID: uuid.New(), Name: name}
}
