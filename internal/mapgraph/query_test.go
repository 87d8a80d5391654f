package mapgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"level-engine/internal/geometry"
)

func TestPointInSector(t *testing.T) {
	m := New()
	sid := buildRect(t, m, 0, 0, 2, 2)
	s := m.FindSector(sid)

	assert.True(t, s.IsInside(m, geometry.V2(1, 1)))
	assert.False(t, s.IsInside(m, geometry.V2(3, 1)))
	assert.InDelta(t, 4.0, s.Area(m), 1e-6)

	d, ok := s.SignedDistance(m, geometry.V2(1, 0.5))
	require.True(t, ok)
	assert.InDelta(t, -0.5, d, 1e-6)
	d, _ = s.SignedDistance(m, geometry.V2(3, 1))
	assert.InDelta(t, 1.0, d, 1e-6)

	c, ok := s.Center(m)
	require.True(t, ok)
	assert.Equal(t, geometry.V2(1, 1), c)
}

func TestFindEmbeddedSectors(t *testing.T) {
	m := New()
	outer := buildRect(t, m, 0, 0, 10, 10)
	inner := buildRect(t, m, 2, 2, 4, 4)
	buildRect(t, m, 20, 20, 22, 22)

	assert.Equal(t, []uint32{inner}, m.FindEmbeddedSectors(outer))
	assert.Empty(t, m.FindEmbeddedSectors(inner))
	assert.Nil(t, m.FindEmbeddedSectors(99))
}

func TestSortedSectorsByAreaAndFindSectorAt(t *testing.T) {
	m := New()
	small := buildRect(t, m, 2, 2, 3, 3)
	big := buildRect(t, m, 0, 0, 10, 10)
	mid := buildRect(t, m, 20, 0, 24, 4)

	assert.Equal(t, []uint32{big, mid, small}, m.SortedSectorsByArea())

	at, ok := m.FindSectorAt(geometry.V2(2.5, 2.5))
	require.True(t, ok)
	assert.Equal(t, small, at)

	at, ok = m.FindSectorAt(geometry.V2(5, 5))
	require.True(t, ok)
	assert.Equal(t, big, at)

	_, ok = m.FindSectorAt(geometry.V2(-5, -5))
	assert.False(t, ok)
}

func TestFindSectorsWithVertexIndices(t *testing.T) {
	m := New()
	sid := buildRect(t, m, 0, 0, 1, 1)

	assert.Equal(t, []uint32{sid}, m.FindSectorsWithVertexIndices([]uint32{3, 2, 1, 0}))
	assert.Empty(t, m.FindSectorsWithVertexIndices([]uint32{0, 1, 2}))
}

func TestMapBounds(t *testing.T) {
	m := New()
	buildRect(t, m, -1, -2, 3, 4)
	m.AddVertexAt(10, 10)

	assert.Equal(t, geometry.NewBBox(geometry.V2(-1, -2), geometry.V2(3, 4)), m.BoundingBox())
	assert.Equal(t, geometry.NewBBox(geometry.V2(-1, -2), geometry.V2(10, 10)), m.BBox())
}
