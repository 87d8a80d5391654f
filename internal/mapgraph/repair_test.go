package mapgraph

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeIsIdempotent(t *testing.T) {
	m := New()
	buildRect(t, m, 0, 0, 2, 2)
	buildRect(t, m, 5, 5, 6, 6)

	// всякий мусор: висячее ребро, сектор с пропавшим ребром, пустой сектор
	m.Linedefs = append(m.Linedefs, NewLinedef(40, 0, 99))
	m.Sectors = append(m.Sectors, NewSector(7, []uint32{0, 1, 77}))
	m.Sectors = append(m.Sectors, NewSector(8, []uint32{55}))
	m.Linedefs[0].SectorIDs = append(m.Linedefs[0].SectorIDs, 12)

	m.Sanitize()
	once := m.GeometryClone()
	surfaces := append([]Surface{}, m.Surfaces...)

	m.Sanitize()
	if diff := cmp.Diff(once.Linedefs, m.Linedefs); diff != "" {
		t.Fatalf("second sanitize changed linedefs:\n%s", diff)
	}
	assert.Equal(t, once.Sectors, m.Sectors)
	assert.Equal(t, once.Vertices, m.Vertices)
	assert.Equal(t, surfaces, m.Surfaces)

	assert.Len(t, m.Sectors, 2)
	assert.Nil(t, m.FindLinedef(40))
	requireConsistent(t, m)
}

func TestSanitizeRemovesBrokenChains(t *testing.T) {
	m := New()
	sid := buildRect(t, m, 0, 0, 1, 1)

	// переставленные ребра: первое и последнее все еще сходятся, середина нет
	s := m.FindSector(sid)
	s.Linedefs[1], s.Linedefs[2] = s.Linedefs[2], s.Linedefs[1]

	m.Sanitize()
	assert.Empty(t, m.Sectors)
	assert.Len(t, m.Linedefs, 4, "linedefs survive their sector")
	for _, l := range m.Linedefs {
		assert.Empty(t, l.SectorIDs)
	}
}

func TestSanitizeRemovesDegenerateAndNonFinite(t *testing.T) {
	t.Run("self loop", func(t *testing.T) {
		m := New()
		sid := buildRect(t, m, 0, 0, 1, 1)
		s := m.FindSector(sid)
		loop := NewLinedef(10, 0, 0)
		m.Linedefs = append(m.Linedefs, loop)
		s.Linedefs = append([]uint32{10}, s.Linedefs...)

		m.Sanitize()
		assert.Empty(t, m.Sectors)
	})

	t.Run("nan vertex", func(t *testing.T) {
		m := New()
		buildRect(t, m, 0, 0, 1, 1)
		m.Vertices[2].X = float32(math.NaN())

		m.Sanitize()
		assert.Empty(t, m.Sectors)
		assert.Empty(t, m.Surfaces)
	})

	t.Run("overflowing surface", func(t *testing.T) {
		m := New()
		buildRect(t, m, 0, 0, 1, 1)
		big := float32(3e38)
		for i := range m.Vertices {
			m.Vertices[i].X *= big
			m.Vertices[i].Y *= big
		}

		m.Sanitize()
		assert.Empty(t, m.Sectors, "sector with a non-finite surface transform is dropped")
	})
}

func TestSanitizeRebuildsBackReferences(t *testing.T) {
	m := New()
	sid := buildRect(t, m, 0, 0, 1, 1)
	for i := range m.Linedefs {
		m.Linedefs[i].SectorIDs = []uint32{42, 43}
	}

	m.Sanitize()
	for _, l := range m.Linedefs {
		assert.Equal(t, []uint32{sid}, l.SectorIDs)
	}
	require.NotNil(t, m.SurfaceForSector(sid))
}

func TestDeleteSectorKeepsSharedLinedefs(t *testing.T) {
	m := New()
	a := m.AddVertexAt(0, 0)
	b := m.AddVertexAt(1, 0)
	c := m.AddVertexAt(1, 1)
	d := m.AddVertexAt(0, 1)
	ab, _, _ := m.CreateLinedef(a, b)
	bc, _, _ := m.CreateLinedef(b, c)
	ca, first, ok := m.CreateLinedef(c, a)
	require.True(t, ok)

	// второй треугольник проходит по тому же ребру c -> a
	require.Equal(t, ca, m.CreateLinedefManual(c, a))
	ad := m.CreateLinedefManual(a, d)
	dc := m.CreateLinedefManual(d, c)
	second, ok := m.ClosePolygonManual()
	require.True(t, ok)
	require.ElementsMatch(t, []uint32{first, second}, m.FindLinedef(ca).SectorIDs)

	m.DeleteElements(nil, nil, []uint32{first})

	assert.Nil(t, m.FindSector(first))
	require.NotNil(t, m.FindSector(second))
	assert.Nil(t, m.FindLinedef(ab))
	assert.Nil(t, m.FindLinedef(bc))
	assert.NotNil(t, m.FindLinedef(ca))
	assert.NotNil(t, m.FindLinedef(ad))
	assert.NotNil(t, m.FindLinedef(dc))
	assert.Equal(t, []uint32{second}, m.FindLinedef(ca).SectorIDs)
	assert.Len(t, m.Vertices, 4, "vertices are only removed on request")
	requireConsistent(t, m)
}

func TestDeleteVertexCascades(t *testing.T) {
	m := New()
	buildRect(t, m, 0, 0, 1, 1)
	v := m.Vertices[1].ID

	m.DeleteElements([]uint32{v}, nil, nil)

	assert.Nil(t, m.FindVertex(v))
	assert.Len(t, m.Linedefs, 2)
	assert.Empty(t, m.Sectors)
	assert.Empty(t, m.Surfaces)
	requireConsistent(t, m)
}
