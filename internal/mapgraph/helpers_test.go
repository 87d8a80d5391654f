package mapgraph

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// buildRect рисует прямоугольник против часовой стрелки и возвращает ID сектора.
func buildRect(t *testing.T, m *Map, x0, y0, x1, y1 float32) uint32 {
	t.Helper()
	a := m.AddVertexAt(x0, y0)
	b := m.AddVertexAt(x1, y0)
	c := m.AddVertexAt(x1, y1)
	d := m.AddVertexAt(x0, y1)

	m.CreateLinedef(a, b)
	m.CreateLinedef(b, c)
	m.CreateLinedef(c, d)
	_, sid, ok := m.CreateLinedef(d, a)
	require.True(t, ok, "rectangle should close into a sector")
	return sid
}

// requireConsistent проверяет замкнутость секторов и обратные ссылки.
func requireConsistent(t *testing.T, m *Map) {
	t.Helper()
	for _, s := range m.Sectors {
		require.GreaterOrEqual(t, len(s.Linedefs), 3)
		for i, lid := range s.Linedefs {
			l := m.FindLinedef(lid)
			require.NotNil(t, l)
			next := m.FindLinedef(s.Linedefs[(i+1)%len(s.Linedefs)])
			require.NotNil(t, next)
			require.Equal(t, l.EndVertex, next.StartVertex, "sector %d chain broken at %d", s.ID, lid)
			require.NotEqual(t, l.StartVertex, l.EndVertex)
			require.Contains(t, l.SectorIDs, s.ID)
		}
	}
	for _, l := range m.Linedefs {
		for _, sid := range l.SectorIDs {
			s := m.FindSector(sid)
			require.NotNil(t, s)
			require.Contains(t, s.Linedefs, l.ID)
		}
	}
}
