package geometry

import "math"

// ============================================================
// Bounding box
// ============================================================

// BBox осевой прямоугольник [Min, Max].
type BBox struct {
	Min Vec2 `json:"min"`
	Max Vec2 `json:"max"`
}

func NewBBox(min, max Vec2) BBox {
	return BBox{Min: min, Max: max}
}

// EmptyBBox возвращает "вывернутый" прямоугольник, готовый к Extend.
func EmptyBBox() BBox {
	inf := float32(math.Inf(1))
	return BBox{Min: Vec2{inf, inf}, Max: Vec2{-inf, -inf}}
}

// BBoxFromPoints строит прямоугольник по набору точек.
func BBoxFromPoints(points []Vec2) BBox {
	b := EmptyBBox()
	for _, p := range points {
		b = b.Extend(p)
	}
	return b
}

func (b BBox) Extend(p Vec2) BBox {
	return BBox{
		Min: Vec2{min(b.Min.X, p.X), min(b.Min.Y, p.Y)},
		Max: Vec2{max(b.Max.X, p.X), max(b.Max.Y, p.Y)},
	}
}

// Expand расширяет прямоугольник на d в каждую сторону.
func (b BBox) Expand(d Vec2) BBox {
	return BBox{Min: b.Min.Sub(d), Max: b.Max.Add(d)}
}

func (b BBox) IsEmpty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y
}

func (b BBox) Size() Vec2 {
	return b.Max.Sub(b.Min)
}

func (b BBox) Center() Vec2 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Contains включает границы.
func (b BBox) Contains(p Vec2) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X && p.Y >= b.Min.Y && p.Y <= b.Max.Y
}

func (b BBox) Intersects(o BBox) bool {
	return b.Min.X <= o.Max.X && b.Max.X >= o.Min.X && b.Min.Y <= o.Max.Y && b.Max.Y >= o.Min.Y
}

// LineIntersects проверяет пересечение отрезка a-b с границей прямоугольника.
func (b BBox) LineIntersects(a, c Vec2) bool {
	corners := [4]Vec2{
		b.Min,
		{b.Max.X, b.Min.Y},
		b.Max,
		{b.Min.X, b.Max.Y},
	}
	for i := range corners {
		if SegmentsIntersect(a, c, corners[i], corners[(i+1)%4]) {
			return true
		}
	}
	return false
}

// ============================================================
// Segments
// ============================================================

// SegmentsIntersect параметрический тест пересечения двух отрезков.
// Параллельные отрезки считаются непересекающимися.
func SegmentsIntersect(a1, a2, b1, b2 Vec2) bool {
	d := (a2.X-a1.X)*(b2.Y-b1.Y) - (a2.Y-a1.Y)*(b2.X-b1.X)
	if d == 0 {
		return false
	}

	u := ((b1.X-a1.X)*(b2.Y-b1.Y) - (b1.Y-a1.Y)*(b2.X-b1.X)) / d
	v := ((b1.X-a1.X)*(a2.Y-a1.Y) - (b1.Y-a1.Y)*(a2.X-a1.X)) / d

	return u >= 0 && u <= 1 && v >= 0 && v <= 1
}

// DistanceToSegment расстояние от точки p до отрезка a-b.
func DistanceToSegment(p, a, b Vec2) float32 {
	edge := b.Sub(a)
	ll := edge.Dot(edge)
	if ll == 0 {
		return p.Sub(a).Length()
	}
	t := p.Sub(a).Dot(edge) / ll
	t = max(0, min(1, t))
	return p.Sub(a.Add(edge.Scale(t))).Length()
}

// PolygonArea площадь многоугольника по формуле шнурков, без знака.
func PolygonArea(points []Vec2) float32 {
	a := SignedArea(points)
	if a < 0 {
		return -a
	}
	return a
}

// SignedArea положительна для обхода против часовой стрелки.
func SignedArea(points []Vec2) float32 {
	if len(points) < 3 {
		return 0
	}
	var a float32
	for i := range points {
		p := points[i]
		q := points[(i+1)%len(points)]
		a += p.X*q.Y - q.X*p.Y
	}
	return 0.5 * a
}

// PointInPolygon классический ray casting (crossing number).
func PointInPolygon(polygon []Vec2, p Vec2) bool {
	if len(polygon) < 3 {
		return false
	}
	inside := false
	j := len(polygon) - 1
	for i := range polygon {
		pi, pj := polygon[i], polygon[j]
		if (pi.Y > p.Y) != (pj.Y > p.Y) &&
			p.X < (pj.X-pi.X)*(p.Y-pi.Y)/(pj.Y-pi.Y)+pi.X {
			inside = !inside
		}
		j = i
	}
	return inside
}
