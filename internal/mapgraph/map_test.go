package mapgraph

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"level-engine/internal/geometry"
)

func TestFreeIDsReturnSmallestGap(t *testing.T) {
	m := New()
	m.Vertices = []Vertex{NewVertex(0, 0, 0), NewVertex(1, 1, 0), NewVertex(3, 2, 0)}
	m.Linedefs = []Linedef{NewLinedef(1, 0, 1), NewLinedef(2, 1, 3)}
	m.Sectors = []Sector{NewSector(0, nil), NewSector(1, nil), NewSector(2, nil)}

	assert.Equal(t, uint32(2), m.FindFreeVertexID())
	assert.Equal(t, uint32(0), m.FindFreeLinedefID())
	assert.Equal(t, uint32(3), m.FindFreeSectorID())
}

func TestAddVertexAtSnapsAndReuses(t *testing.T) {
	m := New()
	m.Subdivisions = 2

	id := m.AddVertexAt(1.3, 0.7)
	v := m.FindVertex(id)
	require.NotNil(t, v)
	assert.Equal(t, float32(1.5), v.X)
	assert.Equal(t, float32(0.5), v.Y)

	assert.Equal(t, id, m.AddVertexAt(1.4, 0.6))
	assert.Len(t, m.Vertices, 1)

	id3 := m.AddVertexAt3D(1.5, 0.5, 2)
	assert.NotEqual(t, id, id3)
}

func TestAddVertexAtZeroSubdivisions(t *testing.T) {
	m := New()
	m.Subdivisions = 0

	id := m.AddVertexAt(2.4, 0)
	assert.Equal(t, float32(2), m.FindVertex(id).X)
}

func TestSelection(t *testing.T) {
	m := New()
	assert.False(t, m.HasSelection())

	m.AddToSelection([]uint32{1, 2}, []uint32{3}, nil)
	m.AddToSelection([]uint32{2}, nil, []uint32{7})
	assert.Equal(t, []uint32{1, 2}, m.SelectedVertices)
	assert.True(t, m.HasSelection())

	m.RemoveFromSelection([]uint32{1}, []uint32{3}, nil)
	assert.Equal(t, []uint32{2}, m.SelectedVertices)
	assert.Empty(t, m.SelectedLinedefs)

	m.ClearSelection()
	assert.False(t, m.HasSelection())
}

func TestSoftRigOverridesVertex(t *testing.T) {
	m := New()
	id := m.AddVertexAt(1, 1)

	rig := NewSoftRig("bend")
	m.AddSoftRig(rig)
	m.EditingRig = &rig.ID

	m.UpdateVertex(id, geometry.V2(5, 5))
	pos, ok := m.GetVertex(id)
	require.True(t, ok)
	assert.Equal(t, geometry.V2(5, 5), pos)
	assert.Equal(t, float32(1), m.FindVertex(id).X, "base vertex must not move while a rig is edited")

	m.EditingRig = nil
	pos, _ = m.GetVertex(id)
	assert.Equal(t, geometry.V2(1, 1), pos)

	m.UpdateVertex(id, geometry.V2(2, 3))
	assert.Equal(t, float32(3), m.FindVertex(id).Y)
}

func TestInfoAndClone(t *testing.T) {
	m := New()
	buildRect(t, m, 0, 0, 1, 1)
	assert.Equal(t, "V 4, L 4, S 1", m.Info())

	c := m.GeometryClone()
	c.Linedefs[0].SectorIDs[0] = 99
	assert.Equal(t, uint32(0), m.Linedefs[0].SectorIDs[0])
	assert.NotEqual(t, m.ID, c.ID)
}

func TestMapJSONKeepsIDsAndOrder(t *testing.T) {
	m := New()
	buildRect(t, m, 0, 0, 2, 2)
	m.DeleteElements(nil, nil, nil)

	data, err := json.Marshal(m)
	require.NoError(t, err)

	var back Map
	require.NoError(t, json.Unmarshal(data, &back))

	if diff := cmp.Diff(m.Linedefs, back.Linedefs); diff != "" {
		t.Fatalf("linedefs differ (-want +got):\n%s", diff)
	}
	assert.Equal(t, m.Sectors[0].Linedefs, back.Sectors[0].Linedefs)
	assert.Equal(t, m.ID, back.ID)
	assert.Len(t, back.Surfaces, 1)
}
