package code

import (
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"level-engine/internal/common/logging"
)

var log = logging.Named("code")

type Result int

const (
	Continue Result = iota
	Break
)

// ExternalFunc нативная функция хоста. args в порядке объявления.
type ExternalFunc func(args []Value, sb *Sandbox) (Value, bool)

// NodeData операнды узла, известные на этапе компиляции.
type NodeData struct {
	Location   Location
	Values     []Value
	Name       string
	Object     string
	Path       []string
	IsObject   bool
	Assign     AssignOp
	Compare    CompareOp
	PackageID  uuid.UUID
	CodegridID uuid.UUID
	External   ExternalFunc
	Sub        []*Function
}

// Node скомпилированный атом. Sub-функции принадлежат узлу.
type Node struct {
	Kind AtomKind
	Data NodeData
}

func (n *Node) Clone() *Node {
	c := &Node{Kind: n.Kind, Data: n.Data}
	c.Data.Values = make([]Value, len(n.Data.Values))
	for i, v := range n.Data.Values {
		c.Data.Values[i] = v.Clone()
	}
	c.Data.Path = append([]string(nil), n.Data.Path...)
	c.Data.Sub = make([]*Function, len(n.Data.Sub))
	for i, f := range n.Data.Sub {
		c.Data.Sub[i] = f.Clone()
	}
	return c
}

func (n *Node) runtimeError(sb *Sandbox, msg string, fields logrus.Fields) {
	entry := log.WithFields(logrus.Fields{"x": n.Data.Location.X, "y": n.Data.Location.Y})
	if fields != nil {
		entry = entry.WithFields(fields)
	}
	entry.Warn(msg)
	sb.SetDebugError(n.Data.Location)
}

// ============================================================
// Execution
// ============================================================

func (n *Node) Execute(stack *Stack, sb *Sandbox) Result {
	d := &n.Data

	switch n.Kind {
	case AtomValue:
		stack.Push(d.Values[0].Clone())

	case AtomLocalGet:
		if v, ok := sb.Local(d.Name); ok {
			stack.Push(v.Clone())
		} else {
			n.runtimeError(sb, "unknown local variable", logrus.Fields{"name": d.Name})
		}

	case AtomLocalSet:
		v, ok := stack.Pop()
		if !ok {
			return Continue
		}
		frame := sb.Frame()
		if frame == nil {
			n.runtimeError(sb, "no active function for local", logrus.Fields{"name": d.Name})
			return Continue
		}
		n.assign(sb, frame.Local(), d.Name, v)

	case AtomObjectGet:
		obj, ok := sb.Object(d.Object)
		if !ok {
			n.runtimeError(sb, "unknown object", logrus.Fields{"object": d.Object})
			return Continue
		}
		if v, ok := obj.Get(d.Name); ok {
			stack.Push(v.Clone())
		} else {
			n.runtimeError(sb, "unknown object member", logrus.Fields{"object": d.Object, "name": d.Name})
		}

	case AtomObjectSet:
		v, ok := stack.Pop()
		if !ok {
			return Continue
		}
		obj, ok := sb.Object(d.Object)
		if !ok {
			n.runtimeError(sb, "unknown object", logrus.Fields{"object": d.Object})
			return Continue
		}
		n.assign(sb, obj, d.Name, v)

	case AtomGet:
		if root, parts, ok := n.pathRoot(sb); ok {
			if v, ok := getPath(root, parts); ok {
				stack.Push(v.Clone())
			}
		}

	case AtomSet:
		v, ok := stack.Pop()
		if !ok {
			return Continue
		}
		if root, parts, ok := n.pathRoot(sb); ok {
			if obj, name, ok := walkPath(root, parts); ok {
				n.assign(sb, obj, name, v)
			}
		}

	case AtomAdd, AtomSubtract, AtomMultiply, AtomDivide, AtomModulus:
		b, okB := stack.Pop()
		a, okA := stack.Pop()
		if !okA || !okB {
			return Continue
		}
		if r, ok := binary(n.Kind, a, b); ok {
			stack.Push(r)
		} else {
			n.runtimeError(sb, "invalid operand types", logrus.Fields{
				"op":    n.Kind,
				"left":  a.Kind(),
				"right": b.Kind(),
			})
		}

	case AtomComparison:
		right, okR := stack.Pop()
		left, okL := stack.Pop()
		if !okL || !okR {
			return Continue
		}
		if left.Test(d.Compare, right) && len(d.Sub) > 0 {
			sb.SetDebugExecuted(d.Location)
			d.Sub[0].Execute(sb)
		}

	case AtomReturn:
		if v, ok := stack.Top(); ok {
			sb.SetDebugValue(d.Location, v)
		}
		return Break

	case AtomExternalCall:
		args := make([]Value, len(d.Values))
		for i := len(args) - 1; i >= 0; i-- {
			if v, ok := stack.Pop(); ok {
				args[i] = v
			} else {
				args[i] = d.Values[i].Clone()
			}
		}
		if r, ok := d.External(args, sb); ok {
			sb.SetDebugValue(d.Location, r)
			stack.Push(r)
		}
		sb.SetDebugExecuted(d.Location)

	case AtomModuleCall:
		n.callModule(stack, sb)

	case AtomRandInt:
		r, _ := d.Values[0].AsInt2()
		lo, hi := min(r[0], r[1]), max(r[0], r[1])
		v := Int(int32(int64(lo) + sb.rng.Int64N(int64(hi)-int64(lo)+1)))
		sb.SetDebugValue(d.Location, v)
		stack.Push(v)

	case AtomRandFloat:
		r, _ := d.Values[0].AsFloat2()
		lo, hi := min(r[0], r[1]), max(r[0], r[1])
		v := Float(lo + sb.rng.Float32()*(hi-lo))
		sb.SetDebugValue(d.Location, v)
		stack.Push(v)
	}

	return Continue
}

func binary(kind AtomKind, a, b Value) (Value, bool) {
	switch kind {
	case AtomAdd:
		return a.Add(b)
	case AtomSubtract:
		return a.Sub(b)
	case AtomMultiply:
		return a.Mul(b)
	case AtomDivide:
		return a.Div(b)
	case AtomModulus:
		return a.Mod(b)
	}
	return Value{}, false
}

// callModule клонирует модуль, переносит аргументы со стека вызывающего
// в локальные переменные вызываемого и кладет результат обратно.
func (n *Node) callModule(stack *Stack, sb *Sandbox) {
	d := &n.Data
	module, ok := sb.ModuleClone(d.PackageID, d.CodegridID)
	if !ok {
		n.runtimeError(sb, "unknown module", logrus.Fields{
			"package":  d.PackageID,
			"codegrid": d.CodegridID,
		})
		return
	}

	args := module.Function.Arguments
	for i := len(args) - 1; i >= 0; i-- {
		v, ok := stack.Pop()
		if !ok {
			break
		}
		module.Function.SetLocal(args[i], v)
	}

	rc, err := module.Execute(sb)
	if err != nil {
		n.runtimeError(sb, err.Error(), logrus.Fields{"module": module.Name})
		return
	}

	if v, ok := rc.Top(); ok {
		sb.FuncRC = &v
		stack.Push(v)
		sb.SetDebugValue(d.Location, v)
	} else {
		sb.FuncRC = nil
		sb.SetDebugValue(d.Location, Empty())
	}
	sb.SetDebugExecuted(d.Location)

	if dm, ok := sb.DebugModule(module.ID); ok && dm.Errors.Size() > 0 {
		sb.SetDebugError(d.Location)
	}
}

// ============================================================
// Paths
// ============================================================

// pathRoot выбирает корень пути: объект песочницы для "@name.rest"
// или локальную область активной функции.
func (n *Node) pathRoot(sb *Sandbox) (*Object, []string, bool) {
	d := &n.Data
	if d.IsObject {
		obj, ok := sb.Object(d.Path[0])
		if !ok {
			log.WithField("object", d.Path[0]).Debug("path: unknown object")
			return nil, nil, false
		}
		return obj, d.Path[1:], true
	}
	frame := sb.Frame()
	if frame == nil {
		return nil, nil, false
	}
	return frame.Local(), d.Path, true
}

// walkPath спускается по вложенным объектам до последнего сегмента.
// Промежуточный сегмент, не являющийся объектом, прерывает обход без ошибки.
func walkPath(root *Object, parts []string) (*Object, string, bool) {
	if len(parts) == 0 {
		return nil, "", false
	}
	obj := root
	for _, part := range parts[:len(parts)-1] {
		v, ok := obj.Get(part)
		if !ok {
			return nil, "", false
		}
		next, ok := v.AsObject()
		if !ok {
			return nil, "", false
		}
		obj = next
	}
	return obj, parts[len(parts)-1], true
}

func getPath(root *Object, parts []string) (Value, bool) {
	obj, name, ok := walkPath(root, parts)
	if !ok {
		return Value{}, false
	}
	return obj.Get(name)
}

// splitPath разбирает "@obj.a.b" на сегменты и признак адресации объекта.
func splitPath(path string) ([]string, bool) {
	isObject := strings.HasPrefix(path, "@")
	path = strings.TrimPrefix(path, "@")
	if path == "" {
		return nil, isObject
	}
	parts := strings.Split(path, ".")
	for _, p := range parts {
		if p == "" {
			return nil, isObject
		}
	}
	return parts, isObject
}

// ============================================================
// Assignment
// ============================================================

// assign применяет op к члену name объекта obj. Для += текст склеивается
// через пробел, к списку значение добавляется. Несовместимые типы и
// отсутствующая переменная для составного присваивания пропускаются.
func (n *Node) assign(sb *Sandbox, obj *Object, name string, v Value) {
	op := n.Data.Assign
	if op == Assign || op == "" {
		obj.Set(name, v)
		sb.SetDebugValue(n.Data.Location, v)
		return
	}

	left, ok := obj.Get(name)
	if !ok {
		n.runtimeError(sb, "compound assignment to unknown variable", logrus.Fields{"name": name, "op": op})
		return
	}

	var result Value
	switch op {
	case AddAssign:
		if items, isList := left.AsList(); isList {
			result = List(append(slices.Clone(items), v)...)
		} else {
			result, ok = left.Add(v)
		}
	case SubtractAssign:
		result, ok = left.Sub(v)
	case MultiplyAssign:
		result, ok = left.Mul(v)
	case DivideAssign:
		result, ok = left.Div(v)
	case ModulusAssign:
		result, ok = left.Mod(v)
	default:
		ok = false
	}
	if !ok {
		n.runtimeError(sb, "assignment type mismatch", logrus.Fields{
			"name":  name,
			"op":    op,
			"left":  left.Kind(),
			"right": v.Kind(),
		})
		return
	}

	obj.Set(name, result)
	sb.SetDebugValue(n.Data.Location, result)
}
