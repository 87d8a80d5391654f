package mapgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"level-engine/internal/geometry"
)

func TestAddMidpointSplitsInEverySector(t *testing.T) {
	m := New()
	sid := buildRect(t, m, 0, 0, 2, 2)
	m.Linedefs[0].Properties = Properties{"wall_height": 3}

	mid, ok := m.AddMidpoint(0)
	require.True(t, ok)

	v := m.FindVertex(mid)
	require.NotNil(t, v)
	assert.Equal(t, geometry.V2(1, 0), v.Pos())

	s := m.FindSector(sid)
	require.NotNil(t, s)
	assert.Equal(t, []uint32{0, 4, 1, 2, 3}, s.Linedefs)
	assert.Equal(t, mid, m.FindLinedef(0).EndVertex)
	assert.Equal(t, mid, m.FindLinedef(4).StartVertex)
	assert.Equal(t, float32(3), m.FindLinedef(4).Properties.Get("wall_height", 0))
	requireConsistent(t, m)
}

func TestAddMidpointUsesFreeLinedefID(t *testing.T) {
	m := New()
	buildRect(t, m, 0, 0, 2, 2)
	// дырка в нумерации: len(Linedefs) совпал бы с живым ID
	m.Linedefs[1].ID = 4
	m.Sectors[0].Linedefs[1] = 4
	m.Sanitize()

	_, ok := m.AddMidpoint(0)
	require.True(t, ok)
	assert.NotNil(t, m.FindLinedef(1))
	assert.Len(t, m.Linedefs, 5)
	requireConsistent(t, m)
}

func TestReplaceVertexInSectorSplitsSharedEdges(t *testing.T) {
	m := New()
	a := m.AddVertexAt(0, 0)
	b := m.AddVertexAt(1, 0)
	c := m.AddVertexAt(1, 1)
	d := m.AddVertexAt(0, 1)
	m.CreateLinedef(a, b)
	m.CreateLinedef(b, c)
	ca, first, _ := m.CreateLinedef(c, a)
	m.CreateLinedefManual(c, a)
	m.CreateLinedefManual(a, d)
	m.CreateLinedefManual(d, c)
	second, ok := m.ClosePolygonManual()
	require.True(t, ok)

	dup, ok := m.DuplicateVertex(a)
	require.True(t, ok)
	m.ReplaceVertexInSector(second, a, dup)

	shared := m.FindLinedef(ca)
	require.NotNil(t, shared)
	assert.Equal(t, a, shared.EndVertex, "first sector keeps the original edge")
	assert.Equal(t, []uint32{first}, shared.SectorIDs)

	s := m.FindSector(second)
	require.NotNil(t, s)
	assert.NotContains(t, s.Linedefs, ca)
	for _, lid := range s.Linedefs {
		l := m.FindLinedef(lid)
		assert.NotEqual(t, a, l.StartVertex)
		assert.NotEqual(t, a, l.EndVertex)
	}
	requireConsistent(t, m)
}

func TestIsVertexInRectSector(t *testing.T) {
	m := New()
	sid := buildRect(t, m, 0, 0, 1, 1)
	assert.False(t, m.IsVertexInRectSector(0))

	m.FindSector(sid).Properties = Properties{"rect": 1}
	assert.True(t, m.IsVertexInRectSector(0))
	assert.False(t, m.IsVertexInRectSector(42))
}
