package code

import (
	"math"

	"level-engine/internal/geometry"
)

// ============================================================
// Arithmetic
// ============================================================

type arithOp int

const (
	opAdd arithOp = iota
	opSub
	opMul
	opDiv
	opMod
)

// Add: текст слева склеивается с Describe правого через пробел.
// Для остальных видов результат как у численного сложения.
func (v Value) Add(other Value) (Value, bool) {
	if s, ok := v.AsText(); ok {
		return Text(s + " " + other.Describe()), true
	}
	return arith(v, other, opAdd)
}

func (v Value) Sub(other Value) (Value, bool) { return arith(v, other, opSub) }
func (v Value) Mul(other Value) (Value, bool) { return arith(v, other, opMul) }
func (v Value) Div(other Value) (Value, bool) { return arith(v, other, opDiv) }
func (v Value) Mod(other Value) (Value, bool) { return arith(v, other, opMod) }

// arith: Int op Int дает Int, смешанные числа дают Float, векторы считаются
// покомпонентно с числом или вектором того же размера. Несовместимые виды и
// целочисленное деление на ноль дают false.
func arith(a, b Value, op arithOp) (Value, bool) {
	if x, ok := a.AsInt(); ok {
		if y, ok := b.AsInt(); ok {
			return intOp(x, y, op)
		}
	}
	if x, ok := a.numeric(); ok {
		if y, ok := b.numeric(); ok {
			return Float(floatOp(x, y, op)), true
		}
	}

	ac, aVec := components(a)
	bc, bVec := components(b)
	switch {
	case aVec && bVec:
		if len(ac) != len(bc) {
			return Value{}, false
		}
		return vectorOp(a.Kind(), ac, func(i int) Value { return bc[i] }, op)
	case aVec && b.isNumber():
		return vectorOp(a.Kind(), ac, func(int) Value { return b }, op)
	case bVec && a.isNumber():
		out := make([]Value, len(bc))
		for i, c := range bc {
			r, ok := arith(a, c, op)
			if !ok {
				return Value{}, false
			}
			out[i] = r
		}
		return fromComponents(b.Kind(), out), true
	}
	return Value{}, false
}

func (v Value) isNumber() bool {
	_, ok := v.numeric()
	return ok
}

func intOp(x, y int32, op arithOp) (Value, bool) {
	switch op {
	case opAdd:
		return Int(x + y), true
	case opSub:
		return Int(x - y), true
	case opMul:
		return Int(x * y), true
	case opDiv:
		if y == 0 {
			return Value{}, false
		}
		return Int(x / y), true
	case opMod:
		if y == 0 {
			return Value{}, false
		}
		return Int(x % y), true
	}
	return Value{}, false
}

func floatOp(x, y float32, op arithOp) float32 {
	switch op {
	case opAdd:
		return x + y
	case opSub:
		return x - y
	case opMul:
		return x * y
	case opDiv:
		return x / y
	case opMod:
		return float32(math.Mod(float64(x), float64(y)))
	}
	return 0
}

func vectorOp(kind Kind, comps []Value, rhs func(int) Value, op arithOp) (Value, bool) {
	out := make([]Value, len(comps))
	for i, c := range comps {
		r, ok := arith(c, rhs(i), op)
		if !ok {
			return Value{}, false
		}
		out[i] = r
	}
	return fromComponents(kind, out), true
}

func components(v Value) ([]Value, bool) {
	switch d := v.data.(type) {
	case [2]int32:
		return []Value{Int(d[0]), Int(d[1])}, true
	case [3]int32:
		return []Value{Int(d[0]), Int(d[1]), Int(d[2])}, true
	case [2]float32:
		return []Value{Float(d[0]), Float(d[1])}, true
	case [3]float32:
		return []Value{Float(d[0]), Float(d[1]), Float(d[2])}, true
	case geometry.Vec3:
		return []Value{Float(d.X), Float(d.Y), Float(d.Z)}, true
	}
	return nil, false
}

// fromComponents собирает вектор обратно. Целые компоненты сохраняют
// целочисленный вид, Position остается Position.
func fromComponents(kind Kind, comps []Value) Value {
	allInt := true
	f := make([]float32, len(comps))
	n := make([]int32, len(comps))
	for i, c := range comps {
		if x, ok := c.AsInt(); ok {
			n[i] = x
		} else {
			allInt = false
		}
		f[i], _ = c.ToFloat()
	}

	if kind == KindPosition {
		return Position(geometry.V3(f[0], f[1], f[2]))
	}
	if len(comps) == 2 {
		if allInt {
			return Int2(n[0], n[1])
		}
		return Float2(f[0], f[1])
	}
	if allInt {
		return Int3(n[0], n[1], n[2])
	}
	return Float3(f[0], f[1], f[2])
}
