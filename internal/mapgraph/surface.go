package mapgraph

import (
	"github.com/google/uuid"

	"level-engine/internal/geometry"
)

// ============================================================
// Surfaces
// ============================================================

type Plane struct {
	Origin geometry.Vec3 `json:"origin"`
	Normal geometry.Vec3 `json:"normal"`
}

type Basis3 struct {
	Right  geometry.Vec3 `json:"right"`
	Up     geometry.Vec3 `json:"up"`
	Normal geometry.Vec3 `json:"normal"`
}

// EditPlane плоскость редактирования UV с масштабом.
type EditPlane struct {
	Origin geometry.Vec3 `json:"origin"`
	Right  geometry.Vec3 `json:"right"`
	Up     geometry.Vec3 `json:"up"`
	Scale  float32       `json:"scale"`
}

// Surface производная трансформация сектора для рендера.
type Surface struct {
	ID       uuid.UUID  `json:"id"`
	SectorID uint32     `json:"sector_id"`
	Plane    Plane      `json:"plane"`
	Frame    Basis3     `json:"frame"`
	EditUV   EditPlane  `json:"edit_uv"`
	Profile  *uuid.UUID `json:"profile,omitempty"`
}

func NewSurface(sectorID uint32) Surface {
	return Surface{ID: uuid.New(), SectorID: sectorID}
}

// IsValid все компоненты плоскости и базиса конечны.
func (s *Surface) IsValid() bool {
	return s.Plane.Origin.IsFinite() &&
		s.Plane.Normal.IsFinite() &&
		s.Frame.Right.IsFinite() &&
		s.Frame.Up.IsFinite() &&
		s.Frame.Normal.IsFinite()
}

// CalculateGeometry строит плоскость по нормали Ньюэлла и ортонормированный базис.
func (s *Surface) CalculateGeometry(m *Map) {
	sector := m.FindSector(s.SectorID)
	if sector == nil {
		s.reset()
		return
	}
	points, ok := sector.VerticesWorld(m)
	if !ok {
		s.reset()
		return
	}

	centroid, normal := newellPlane(points)
	if normal.Length() < 1e-6 {
		normal = geometry.V3(0, 1, 0)
	}
	right := stableRight(points, normal)
	up := normal.Cross(right).NormalizedOrZero()

	if up.Length() < 1e-6 {
		right = normal.Cross(geometry.V3(0, 1, 0)).NormalizedOrZero()
		up = normal.Cross(right).NormalizedOrZero()
	}
	if up.Length() < 1e-6 {
		right = geometry.V3(1, 0, 0)
		up = normal.Cross(right).NormalizedOrZero()
	}

	s.Plane = Plane{Origin: centroid, Normal: normal}
	s.Frame = Basis3{Right: right, Up: up, Normal: normal}
	s.EditUV = EditPlane{Origin: centroid, Right: right, Up: up, Scale: 1}
}

func (s *Surface) reset() {
	s.Plane = Plane{}
	s.Frame = Basis3{}
	s.EditUV = EditPlane{}
}

func (s *Surface) UVToWorld(uv geometry.Vec2) geometry.Vec3 {
	e := s.EditUV
	return e.Origin.
		Add(e.Right.Scale(uv.X * e.Scale)).
		Add(e.Up.Scale(uv.Y * e.Scale))
}

func (s *Surface) WorldToUV(p geometry.Vec3) geometry.Vec2 {
	e := s.EditUV
	if e.Scale == 0 {
		return geometry.Vec2{}
	}
	rel := p.Sub(e.Origin)
	return geometry.V2(rel.Dot(e.Right)/e.Scale, rel.Dot(e.Up)/e.Scale)
}

// UpdateSurfaces держит по одной поверхности на сектор и пересчитывает все.
func (m *Map) UpdateSurfaces() {
	have := map[uint32]bool{}
	kept := m.Surfaces[:0]
	for _, surf := range m.Surfaces {
		if m.FindSector(surf.SectorID) == nil || have[surf.SectorID] {
			continue
		}
		have[surf.SectorID] = true
		kept = append(kept, surf)
	}
	m.Surfaces = kept

	for _, s := range m.Sectors {
		if !have[s.ID] {
			m.Surfaces = append(m.Surfaces, NewSurface(s.ID))
		}
	}
	for i := range m.Surfaces {
		m.Surfaces[i].CalculateGeometry(m)
	}
}

// SurfaceForSector поверхность сектора или nil.
func (m *Map) SurfaceForSector(sectorID uint32) *Surface {
	for i := range m.Surfaces {
		if m.Surfaces[i].SectorID == sectorID {
			return &m.Surfaces[i]
		}
	}
	return nil
}

func newellPlane(points []geometry.Vec3) (geometry.Vec3, geometry.Vec3) {
	var centroid, normal geometry.Vec3
	n := len(points)
	for i := range points {
		cur := points[i]
		next := points[(i+1)%n]
		centroid = centroid.Add(cur)
		normal.X += (cur.Y - next.Y) * (cur.Z + next.Z)
		normal.Y += (cur.Z - next.Z) * (cur.X + next.X)
		normal.Z += (cur.X - next.X) * (cur.Y + next.Y)
	}
	centroid = centroid.Scale(1 / float32(n))
	return centroid, normal.NormalizedOrZero()
}

func stableRight(points []geometry.Vec3, normal geometry.Vec3) geometry.Vec3 {
	var best float32
	var right geometry.Vec3
	n := len(points)
	for i := range points {
		edge := points[(i+1)%n].Sub(points[i])
		proj := edge.Sub(normal.Scale(normal.Dot(edge)))
		if l := proj.Length(); l > best {
			best = l
			right = proj
		}
	}
	if best < 1e-6 {
		ax, ay, az := abs32(normal.X), abs32(normal.Y), abs32(normal.Z)
		switch {
		case ax < ay && ax < az:
			right = geometry.V3(0, -normal.Z, normal.Y)
		case ay < az:
			right = geometry.V3(-normal.Z, 0, normal.X)
		default:
			right = geometry.V3(-normal.Y, normal.X, 0)
		}
	}
	return right.NormalizedOrZero()
}

func abs32(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
