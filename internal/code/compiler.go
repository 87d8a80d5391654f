package code

import (
	"fmt"

	"github.com/google/uuid"
)

// ============================================================
// Compiler
// ============================================================

// CompilerError первая ошибка компиляции с позицией ячейки.
type CompilerError struct {
	Location Location
	Message  string
	Err      error
}

func (e *CompilerError) Error() string {
	return fmt.Sprintf("compile error at (%d, %d): %s", e.Location.X, e.Location.Y, e.Message)
}

func (e *CompilerError) Unwrap() error { return e.Err }

// ExternalDef нативная функция и значения ее аргументов по умолчанию.
// Returns сообщает компилятору, что функция кладет результат на стек.
type ExternalDef struct {
	Func     ExternalFunc
	Defaults []Value
	Returns  bool
}

type Compiler struct {
	externals map[string]ExternalDef
	err       *CompilerError
}

// NewCompiler создает компилятор со встроенными внешними функциями.
func NewCompiler() *Compiler {
	c := &Compiler{externals: map[string]ExternalDef{}}
	registerBuiltins(c)
	return c
}

func (c *Compiler) AddExternal(name string, def ExternalDef) {
	c.externals[name] = def
}

func (c *Compiler) fail(loc Location, err error, format string, args ...any) {
	if c.err != nil {
		return
	}
	c.err = &CompilerError{Location: loc, Message: fmt.Sprintf(format, args...), Err: err}
}

// Compile превращает инструкции в функцию. Компиляция проходит до конца
// даже после ошибки; возвращается первая.
func (c *Compiler) Compile(name string, instructions []Instruction) (*Function, error) {
	c.err = nil
	fn := NewFunction(name)
	depth := 0
	fn.Nodes = c.compileBlock(fn, instructions, &depth)
	if c.err != nil {
		return nil, c.err
	}
	return fn, nil
}

// CompilePackage компилирует все модули пакета.
func (c *Compiler) CompilePackage(src PackageSource) (*Package, error) {
	p := &Package{ID: src.ID, Name: src.Name, Modules: map[uuid.UUID]*Module{}}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}

	for _, ms := range src.Modules {
		fn, err := c.Compile(ms.Name, ms.Instructions)
		if err != nil {
			return nil, fmt.Errorf("module %q: %w", ms.Name, err)
		}
		m := &Module{ID: ms.ID, CodegridID: ms.CodegridID, Name: ms.Name, Function: fn}
		if m.ID == uuid.Nil {
			m.ID = uuid.New()
		}
		p.Insert(m)
	}
	return p, nil
}

func (c *Compiler) compileBlock(owner *Function, instructions []Instruction, depth *int) []*Node {
	var nodes []*Node
	for _, ins := range instructions {
		if n := c.compileAtom(owner, ins, depth); n != nil {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// compileAtom проверяет глубину стека и собирает данные узла.
// depth моделирует число значений на стеке во время выполнения.
func (c *Compiler) compileAtom(owner *Function, ins Instruction, depth *int) *Node {
	a := ins.Atom
	n := &Node{Kind: a.Kind, Data: NodeData{Location: ins.Loc}}
	d := &n.Data

	need := func(count int, what string) bool {
		if *depth < count {
			c.fail(ins.Loc, nil, "invalid stack for %s (%d)", what, *depth)
			return false
		}
		return true
	}

	switch a.Kind {
	case AtomValue:
		if a.Value == nil {
			c.fail(ins.Loc, nil, "missing literal value")
			return nil
		}
		d.Values = []Value{*a.Value}
		*depth++

	case AtomArgument:
		owner.Arguments = append(owner.Arguments, a.Name)
		return nil

	case AtomLocalGet:
		d.Name = a.Name
		*depth++

	case AtomLocalSet:
		if !need(1, "local "+a.Name) {
			return nil
		}
		d.Name, d.Assign = a.Name, a.Assign
		*depth--

	case AtomObjectGet:
		d.Object, d.Name = a.Object, a.Name
		*depth++

	case AtomObjectSet:
		if !need(1, "object "+a.Object) {
			return nil
		}
		d.Object, d.Name, d.Assign = a.Object, a.Name, a.Assign
		*depth--

	case AtomGet, AtomSet:
		parts, isObject := splitPath(a.Name)
		if len(parts) == 0 {
			c.fail(ins.Loc, nil, "empty variable path for %s", a.Kind)
			return nil
		}
		d.Path, d.IsObject, d.Assign = parts, isObject, a.Assign
		if a.Kind == AtomGet {
			*depth++
		} else {
			if !need(1, "set "+a.Name) {
				return nil
			}
			*depth--
		}

	case AtomAdd, AtomSubtract, AtomMultiply, AtomDivide, AtomModulus:
		if !need(2, string(a.Kind)) {
			return nil
		}
		*depth--

	case AtomComparison:
		if !need(2, "comparison "+string(a.Compare)) {
			return nil
		}
		*depth -= 2
		d.Compare = a.Compare
		body := &Function{Name: owner.Name}
		bodyDepth := 0
		body.Nodes = c.compileBlock(owner, ins.Body, &bodyDepth)
		d.Sub = []*Function{body}

	case AtomReturn:

	case AtomExternalCall:
		def, ok := c.externals[a.Name]
		if !ok {
			c.fail(ins.Loc, ErrUnknownExternal, "unknown external call (%s)", a.Name)
			return nil
		}
		d.Name, d.External = a.Name, def.Func
		d.Values = make([]Value, len(def.Defaults))
		for i, v := range def.Defaults {
			d.Values[i] = v.Clone()
		}
		*depth -= min(*depth, len(def.Defaults))
		if def.Returns {
			*depth++
		}

	case AtomModuleCall:
		d.PackageID, d.CodegridID = a.Package, a.Codegrid
		// Число аргументов и результат известны только при выполнении.
		*depth++

	case AtomRandInt:
		if a.Value == nil || a.Value.Kind() != KindInt2 {
			c.fail(ins.Loc, nil, "RandInt needs an int2 range")
			return nil
		}
		d.Values = []Value{*a.Value}
		*depth++

	case AtomRandFloat:
		if a.Value == nil || a.Value.Kind() != KindFloat2 {
			c.fail(ins.Loc, nil, "RandFloat needs a float2 range")
			return nil
		}
		d.Values = []Value{*a.Value}
		*depth++

	case AtomEndOfExpression, AtomEndOfCode, AtomAnd, AtomOr:
		return nil

	default:
		c.fail(ins.Loc, nil, "unknown atom %q", a.Kind)
		return nil
	}

	return n
}
