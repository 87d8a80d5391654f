package mapgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"level-engine/internal/geometry"
)

func TestFloorSurfaceFrame(t *testing.T) {
	m := New()
	sid := buildRect(t, m, 0, 0, 2, 2)
	m.UpdateSurfaces()

	require.Len(t, m.Surfaces, 1)
	surf := m.SurfaceForSector(sid)
	require.NotNil(t, surf)
	require.True(t, surf.IsValid())

	assert.InDelta(t, 1.0, surf.Plane.Origin.X, 1e-6)
	assert.InDelta(t, 0.0, surf.Plane.Origin.Y, 1e-6)
	assert.InDelta(t, 1.0, surf.Plane.Origin.Z, 1e-6)
	// горизонтальный пол: нормаль вдоль мировой оси Y
	assert.InDelta(t, 1.0, abs32(surf.Plane.Normal.Y), 1e-6)
	assert.InDelta(t, 0.0, surf.Frame.Right.Dot(surf.Frame.Up), 1e-6)

	p := geometry.V3(2, 0, 0)
	back := surf.UVToWorld(surf.WorldToUV(p))
	assert.InDelta(t, p.X, back.X, 1e-5)
	assert.InDelta(t, p.Z, back.Z, 1e-5)
}

func TestUpdateSurfacesTracksSectors(t *testing.T) {
	m := New()
	first := buildRect(t, m, 0, 0, 1, 1)
	buildRect(t, m, 3, 3, 4, 4)
	m.UpdateSurfaces()
	require.Len(t, m.Surfaces, 2)
	id := m.SurfaceForSector(first).ID

	m.DeleteElements(nil, nil, []uint32{first})
	assert.Len(t, m.Surfaces, 1)
	assert.Nil(t, m.SurfaceForSector(first))

	m.UpdateSurfaces()
	for _, s := range m.Surfaces {
		assert.NotEqual(t, id, s.ID)
	}
}
