package code

// Function скомпилированная последовательность узлов. Locals хранит
// области видимости; поиск идет от верхней к нижней.
type Function struct {
	Name      string
	Arguments []string
	Nodes     []*Node
	Locals    []*Object
}

func NewFunction(name string) *Function {
	return &Function{
		Name:   name,
		Locals: []*Object{NewObject(name)},
	}
}

// Local верхняя область видимости; создается при первом обращении.
func (f *Function) Local() *Object {
	if len(f.Locals) == 0 {
		f.Locals = append(f.Locals, NewObject(f.Name))
	}
	return f.Locals[len(f.Locals)-1]
}

func (f *Function) GetLocal(name string) (Value, bool) {
	for i := len(f.Locals) - 1; i >= 0; i-- {
		if v, ok := f.Locals[i].Get(name); ok {
			return v, true
		}
	}
	return Value{}, false
}

func (f *Function) SetLocal(name string, v Value) {
	f.Local().Set(name, v)
}

// Execute выполняет узлы на новом стеке до конца или до Break.
// Стек вызовов не меняется: тело сравнения работает в кадре вызывающего модуля.
func (f *Function) Execute(sb *Sandbox) Stack {
	var stack Stack
	for _, n := range f.Nodes {
		if n.Execute(&stack, sb) == Break {
			break
		}
	}
	return stack
}

func (f *Function) Clone() *Function {
	c := &Function{
		Name:      f.Name,
		Arguments: append([]string(nil), f.Arguments...),
		Nodes:     make([]*Node, len(f.Nodes)),
		Locals:    make([]*Object, len(f.Locals)),
	}
	for i, n := range f.Nodes {
		c.Nodes[i] = n.Clone()
	}
	for i, l := range f.Locals {
		c.Locals[i] = l.Clone()
	}
	return c
}
