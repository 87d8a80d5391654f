package geometry

import "math"

// ============================================================
// Vectors
// ============================================================

// Vec2 точка или направление на плоскости карты.
type Vec2 struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
}

// Vec3 точка в мировых координатах.
type Vec3 struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
}

func V2(x, y float32) Vec2 {
	return Vec2{X: x, Y: y}
}

func V3(x, y, z float32) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

func (v Vec2) Add(o Vec2) Vec2      { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2      { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(s float32) Vec2 { return Vec2{v.X * s, v.Y * s} }
func (v Vec2) Dot(o Vec2) float32   { return v.X*o.X + v.Y*o.Y }

func (v Vec2) Length() float32 {
	return float32(math.Sqrt(float64(v.Dot(v))))
}

// Normalized возвращает единичный вектор или нулевой для вырожденного случая.
func (v Vec2) Normalized() Vec2 {
	l := v.Length()
	if l < 1e-6 {
		return Vec2{}
	}
	return v.Scale(1 / l)
}

func (v Vec2) IsFinite() bool {
	return finite(v.X) && finite(v.Y)
}

// Floor возвращает целочисленную клетку сетки.
func (v Vec2) Floor() [2]int32 {
	return [2]int32{int32(math.Floor(float64(v.X))), int32(math.Floor(float64(v.Y)))}
}

func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3      { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float32) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) Neg() Vec3            { return Vec3{-v.X, -v.Y, -v.Z} }
func (v Vec3) Dot(o Vec3) float32   { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

func (v Vec3) Length() float32 {
	return float32(math.Sqrt(float64(v.Dot(v))))
}

// NormalizedOrZero нормализует вектор, короткие векторы превращаются в ноль.
func (v Vec3) NormalizedOrZero() Vec3 {
	l := v.Length()
	if l > 1e-6 {
		return v.Scale(1 / l)
	}
	return Vec3{}
}

func (v Vec3) IsFinite() bool {
	return finite(v.X) && finite(v.Y) && finite(v.Z)
}

func (v Vec3) XY() Vec2 {
	return Vec2{v.X, v.Y}
}

func finite(f float32) bool {
	return !math.IsNaN(float64(f)) && !math.IsInf(float64(f), 0)
}

// IsFinite сообщает, что значение не NaN и не бесконечность.
func IsFinite(f float32) bool {
	return finite(f)
}
