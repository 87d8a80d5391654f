package code

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"level-engine/internal/geometry"
)

// ============================================================
// Value
// ============================================================

type Kind string

const (
	KindEmpty    Kind = "empty"
	KindBool     Kind = "bool"
	KindInt      Kind = "int"
	KindFloat    Kind = "float"
	KindText     Kind = "text"
	KindTextList Kind = "text_list"
	KindInt2     Kind = "int2"
	KindFloat2   Kind = "float2"
	KindInt3     Kind = "int3"
	KindFloat3   Kind = "float3"
	KindPosition Kind = "position"
	KindID       Kind = "id"
	KindList     Kind = "list"
	KindObject   Kind = "object"
)

// Value значение на стеке интерпретатора. Нулевое значение = Empty.
type Value struct {
	kind Kind
	data any
}

func Empty() Value { return Value{kind: KindEmpty} }
func Bool(b bool) Value { return Value{kind: KindBool, data: b} }
func Int(i int32) Value { return Value{kind: KindInt, data: i} }
func Float(f float32) Value { return Value{kind: KindFloat, data: f} }
func Text(s string) Value { return Value{kind: KindText, data: s} }
func TextList(items []string) Value { return Value{kind: KindTextList, data: items} }
func Int2(x, y int32) Value { return Value{kind: KindInt2, data: [2]int32{x, y}} }
func Float2(x, y float32) Value { return Value{kind: KindFloat2, data: [2]float32{x, y}} }
func Int3(x, y, z int32) Value { return Value{kind: KindInt3, data: [3]int32{x, y, z}} }
func Float3(x, y, z float32) Value { return Value{kind: KindFloat3, data: [3]float32{x, y, z}} }
func Position(p geometry.Vec3) Value { return Value{kind: KindPosition, data: p} }
func ID(id uuid.UUID) Value { return Value{kind: KindID, data: id} }
func List(items ...Value) Value { return Value{kind: KindList, data: items} }
func ObjectValue(o *Object) Value { return Value{kind: KindObject, data: o} }

func (v Value) Kind() Kind {
	if v.kind == "" {
		return KindEmpty
	}
	return v.kind
}

func (v Value) IsEmpty() bool { return v.Kind() == KindEmpty }

func (v Value) AsBool() (bool, bool) {
	b, ok := v.data.(bool)
	return b, ok && v.kind == KindBool
}

func (v Value) AsInt() (int32, bool) {
	i, ok := v.data.(int32)
	return i, ok && v.kind == KindInt
}

func (v Value) AsFloat() (float32, bool) {
	f, ok := v.data.(float32)
	return f, ok && v.kind == KindFloat
}

func (v Value) AsText() (string, bool) {
	s, ok := v.data.(string)
	return s, ok && v.kind == KindText
}

func (v Value) AsTextList() ([]string, bool) {
	items, ok := v.data.([]string)
	return items, ok
}

func (v Value) AsInt2() ([2]int32, bool) {
	p, ok := v.data.([2]int32)
	return p, ok
}

func (v Value) AsFloat2() ([2]float32, bool) {
	p, ok := v.data.([2]float32)
	return p, ok
}

func (v Value) AsPosition() (geometry.Vec3, bool) {
	p, ok := v.data.(geometry.Vec3)
	return p, ok
}

func (v Value) AsID() (uuid.UUID, bool) {
	id, ok := v.data.(uuid.UUID)
	return id, ok
}

func (v Value) AsList() ([]Value, bool) {
	items, ok := v.data.([]Value)
	return items, ok && v.kind == KindList
}

func (v Value) AsObject() (*Object, bool) {
	o, ok := v.data.(*Object)
	return o, ok && o != nil
}

// ToFloat численное значение для Int и Float.
func (v Value) ToFloat() (float32, bool) {
	switch d := v.data.(type) {
	case int32:
		return float32(d), true
	case float32:
		return d, true
	}
	return 0, false
}

func (v Value) ToInt() (int32, bool) {
	switch d := v.data.(type) {
	case int32:
		return d, true
	case float32:
		if math.IsNaN(float64(d)) || math.IsInf(float64(d), 0) {
			return 0, false
		}
		return int32(d), true
	}
	return 0, false
}

// ToString возвращает текст для Text и Id.
func (v Value) ToString() (string, bool) {
	switch d := v.data.(type) {
	case string:
		return d, true
	case uuid.UUID:
		return d.String(), true
	}
	return "", false
}

// Describe человекочитаемая форма значения. Используется при склейке текста.
func (v Value) Describe() string {
	switch d := v.data.(type) {
	case bool:
		if d {
			return "True"
		}
		return "False"
	case int32:
		return strconv.FormatInt(int64(d), 10)
	case float32:
		return formatFloat(d)
	case string:
		return d
	case []string:
		return strings.Join(d, ", ")
	case [2]int32:
		return fmt.Sprintf("(%d, %d)", d[0], d[1])
	case [3]int32:
		return fmt.Sprintf("(%d, %d, %d)", d[0], d[1], d[2])
	case [2]float32:
		return fmt.Sprintf("(%s, %s)", formatFloat(d[0]), formatFloat(d[1]))
	case [3]float32:
		return fmt.Sprintf("(%s, %s, %s)", formatFloat(d[0]), formatFloat(d[1]), formatFloat(d[2]))
	case geometry.Vec3:
		return fmt.Sprintf("(%s, %s, %s)", formatFloat(d.X), formatFloat(d.Y), formatFloat(d.Z))
	case uuid.UUID:
		return d.String()
	case []Value:
		return fmt.Sprintf("List (%d)", len(d))
	case *Object:
		return fmt.Sprintf("Object (%s)", d.Name)
	}
	return "Empty"
}

func formatFloat(f float32) string {
	if f == float32(math.Trunc(float64(f))) && !math.IsInf(float64(f), 0) {
		return fmt.Sprintf("%.1f", f)
	}
	return strconv.FormatFloat(float64(f), 'f', -1, 32)
}

// Clone глубокая копия: списки и объекты не разделяются с оригиналом.
func (v Value) Clone() Value {
	switch d := v.data.(type) {
	case []string:
		return Value{kind: v.kind, data: slices.Clone(d)}
	case []Value:
		out := make([]Value, len(d))
		for i, item := range d {
			out[i] = item.Clone()
		}
		return Value{kind: v.kind, data: out}
	case *Object:
		return Value{kind: v.kind, data: d.Clone()}
	}
	return v
}

// IsEqual: Int и Float сравниваются численно, остальные виды только с тем же видом.
func (v Value) IsEqual(other Value) bool {
	if a, ok := v.numeric(); ok {
		b, ok := other.numeric()
		return ok && a == b
	}
	if v.Kind() != other.Kind() {
		return false
	}

	switch d := v.data.(type) {
	case []string:
		o, _ := other.data.([]string)
		return slices.Equal(d, o)
	case []Value:
		o, _ := other.data.([]Value)
		return slices.EqualFunc(d, o, Value.IsEqual)
	case *Object:
		o, _ := other.data.(*Object)
		return d.Equal(o)
	}
	return v.data == other.data
}

func (v Value) numeric() (float32, bool) {
	if v.kind != KindInt && v.kind != KindFloat {
		return 0, false
	}
	return v.ToFloat()
}

// compare: два Text сравниваются как строки, иначе оба должны быть числами.
func (v Value) compare(other Value) (int, bool) {
	if a, ok := v.AsText(); ok {
		if b, ok := other.AsText(); ok {
			return strings.Compare(a, b), true
		}
		return 0, false
	}
	a, ok := v.numeric()
	if !ok {
		return 0, false
	}
	b, ok := other.numeric()
	if !ok {
		return 0, false
	}
	switch {
	case a < b:
		return -1, true
	case a > b:
		return 1, true
	}
	return 0, true
}

// Test проверяет отношение op между v (левый операнд) и other.
func (v Value) Test(op CompareOp, other Value) bool {
	switch op {
	case Equal:
		return v.IsEqual(other)
	case Unequal:
		return !v.IsEqual(other)
	}

	c, ok := v.compare(other)
	if !ok {
		return false
	}
	switch op {
	case GreaterThan:
		return c > 0
	case GreaterThanOrEqual:
		return c >= 0
	case LessThan:
		return c < 0
	case LessThanOrEqual:
		return c <= 0
	}
	return false
}

// ============================================================
// JSON
// ============================================================

type valueJSON struct {
	Kind  Kind            `json:"kind"`
	Value json.RawMessage `json:"value,omitempty"`
}

func (v Value) MarshalJSON() ([]byte, error) {
	out := valueJSON{Kind: v.Kind()}
	if v.data != nil {
		raw, err := json.Marshal(v.data)
		if err != nil {
			return nil, fmt.Errorf("marshal %s value: %w", v.kind, err)
		}
		out.Value = raw
	}
	return json.Marshal(out)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var in valueJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	var err error
	switch in.Kind {
	case KindEmpty, "":
		*v = Empty()
	case KindBool:
		*v, err = decodeAs(in, Bool)
	case KindInt:
		*v, err = decodeAs(in, Int)
	case KindFloat:
		*v, err = decodeAs(in, Float)
	case KindText:
		*v, err = decodeAs(in, Text)
	case KindTextList:
		*v, err = decodeAs(in, TextList)
	case KindInt2:
		*v, err = decodeAs(in, func(p [2]int32) Value { return Int2(p[0], p[1]) })
	case KindFloat2:
		*v, err = decodeAs(in, func(p [2]float32) Value { return Float2(p[0], p[1]) })
	case KindInt3:
		*v, err = decodeAs(in, func(p [3]int32) Value { return Int3(p[0], p[1], p[2]) })
	case KindFloat3:
		*v, err = decodeAs(in, func(p [3]float32) Value { return Float3(p[0], p[1], p[2]) })
	case KindPosition:
		*v, err = decodeAs(in, Position)
	case KindID:
		*v, err = decodeAs(in, ID)
	case KindList:
		*v, err = decodeAs(in, func(items []Value) Value { return List(items...) })
	case KindObject:
		*v, err = decodeAs(in, ObjectValue)
	default:
		return fmt.Errorf("unknown value kind %q", in.Kind)
	}
	return err
}

func decodeAs[T any](in valueJSON, wrap func(T) Value) (Value, error) {
	var t T
	if len(in.Value) > 0 {
		if err := json.Unmarshal(in.Value, &t); err != nil {
			return Value{}, fmt.Errorf("decode %s value: %w", in.Kind, err)
		}
	}
	return wrap(t), nil
}
