package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBBoxContainsAndExpand(t *testing.T) {
	b := BBoxFromPoints([]Vec2{V2(0, 0), V2(2, 1)})
	assert.True(t, b.Contains(V2(2, 1)))
	assert.False(t, b.Contains(V2(2.05, 1)))

	e := b.Expand(V2(0.1, 0.1))
	assert.True(t, e.Contains(V2(2.05, 1)))
	assert.False(t, EmptyBBox().Contains(V2(0, 0)))
	assert.True(t, EmptyBBox().IsEmpty())
}

func TestLineIntersects(t *testing.T) {
	b := NewBBox(V2(0, 0), V2(1, 1))

	assert.True(t, b.LineIntersects(V2(-1, 0.5), V2(2, 0.5)))
	assert.False(t, b.LineIntersects(V2(-1, 2), V2(2, 2)))
	// отрезок целиком внутри не пересекает границу
	assert.False(t, b.LineIntersects(V2(0.2, 0.2), V2(0.8, 0.8)))
}

func TestSegmentsIntersect(t *testing.T) {
	assert.True(t, SegmentsIntersect(V2(0, 0), V2(2, 2), V2(0, 2), V2(2, 0)))
	assert.False(t, SegmentsIntersect(V2(0, 0), V2(1, 0), V2(0, 1), V2(1, 1)))
	assert.False(t, SegmentsIntersect(V2(0, 0), V2(1, 1), V2(3, 0), V2(2, 1)))
}

func TestPolygonHelpers(t *testing.T) {
	square := []Vec2{V2(0, 0), V2(2, 0), V2(2, 2), V2(0, 2)}

	assert.InDelta(t, 4.0, PolygonArea(square), 1e-6)
	assert.Greater(t, SignedArea(square), float32(0))
	assert.True(t, PointInPolygon(square, V2(1, 1)))
	assert.False(t, PointInPolygon(square, V2(3, 1)))
	assert.InDelta(t, 1.0, DistanceToSegment(V2(1, 1), V2(0, 0), V2(2, 0)), 1e-6)
}
