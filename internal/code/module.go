package code

import (
	"github.com/google/uuid"
)

// ============================================================
// Modules and packages
// ============================================================

// Module функция, собранная из одной кодовой сетки.
type Module struct {
	ID         uuid.UUID
	CodegridID uuid.UUID
	Name       string
	Function   *Function
}

// Execute кладет функцию модуля на стек вызовов, выполняет ее и снимает.
// При превышении глубины вызовов модуль не выполняется.
func (m *Module) Execute(sb *Sandbox) (Stack, error) {
	if err := sb.pushModule(m); err != nil {
		return nil, err
	}
	defer sb.popModule()
	return m.Function.Execute(sb), nil
}

func (m *Module) Clone() *Module {
	c := *m
	c.Function = m.Function.Clone()
	return &c
}

type Package struct {
	ID      uuid.UUID
	Name    string
	Modules map[uuid.UUID]*Module // по CodegridID
}

func NewPackage(name string) *Package {
	return &Package{
		ID:      uuid.New(),
		Name:    name,
		Modules: map[uuid.UUID]*Module{},
	}
}

func (p *Package) Insert(m *Module) { p.Modules[m.CodegridID] = m }

// ModuleByName ищет модуль по имени. Имена в пакете должны быть уникальны.
func (p *Package) ModuleByName(name string) (*Module, bool) {
	for _, m := range p.Modules {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}

// PackageSource сериализуемая форма пакета: инструкции до компиляции.
type PackageSource struct {
	ID      uuid.UUID      `json:"id"`
	Name    string         `json:"name"`
	Modules []ModuleSource `json:"modules"`
}

type ModuleSource struct {
	ID           uuid.UUID     `json:"id"`
	CodegridID   uuid.UUID     `json:"codegrid_id"`
	Name         string        `json:"name"`
	Instructions []Instruction `json:"instructions"`
}
