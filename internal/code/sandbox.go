package code

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/zyedidia/generic/mapset"
)

const DefaultMaxCallDepth = 64

var (
	ErrUnknownExternal = errors.New("unknown external call")
	ErrMaxCallDepth    = errors.New("max call depth exceeded")
)

// DebugModule значения и отметки выполнения одного модуля по позициям ячеек.
type DebugModule struct {
	CodegridID uuid.UUID
	Values     map[Location]Value
	Executed   mapset.Set[Location]
	Errors     mapset.Set[Location]
}

func newDebugModule(codegridID uuid.UUID) *DebugModule {
	return &DebugModule{
		CodegridID: codegridID,
		Values:     map[Location]Value{},
		Executed:   mapset.New[Location](),
		Errors:     mapset.New[Location](),
	}
}

// ============================================================
// Sandbox
// ============================================================

// Sandbox контекст выполнения одного экземпляра скрипта.
type Sandbox struct {
	ID uuid.UUID

	Packages map[uuid.UUID]*Package

	Objects map[uuid.UUID]*Object
	Items   map[uuid.UUID]*Object
	Areas   map[uuid.UUID]*Object
	Aliases map[string]uuid.UUID

	DebugMode    bool
	MaxCallDepth int

	// FuncRC последнее значение, возвращенное вызванным модулем.
	FuncRC *Value

	CallStack    []*Function
	ModuleStack  []uuid.UUID
	DebugModules map[uuid.UUID]*DebugModule

	rng *rand.Rand
}

func NewSandbox() *Sandbox {
	seed := uint64(time.Now().UnixNano())
	return &Sandbox{
		ID:           uuid.New(),
		Packages:     map[uuid.UUID]*Package{},
		Objects:      map[uuid.UUID]*Object{},
		Items:        map[uuid.UUID]*Object{},
		Areas:        map[uuid.UUID]*Object{},
		Aliases:      map[string]uuid.UUID{},
		MaxCallDepth: DefaultMaxCallDepth,
		DebugModules: map[uuid.UUID]*DebugModule{},
		rng:          rand.New(rand.NewPCG(seed, seed>>1)),
	}
}

// Seed делает RandInt и RandFloat воспроизводимыми.
func (sb *Sandbox) Seed(seed uint64) {
	sb.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Clear сбрасывает состояние выполнения между независимыми запусками.
// Пакеты и объекты остаются.
func (sb *Sandbox) Clear() {
	sb.Aliases = map[string]uuid.UUID{}
	sb.FuncRC = nil
	sb.CallStack = nil
	sb.ModuleStack = nil
	sb.DebugModules = map[uuid.UUID]*DebugModule{}
}

func (sb *Sandbox) InsertPackage(p *Package) { sb.Packages[p.ID] = p }
func (sb *Sandbox) AddObject(o *Object)      { sb.Objects[o.ID] = o }
func (sb *Sandbox) AddItem(o *Object)        { sb.Items[o.ID] = o }
func (sb *Sandbox) AddArea(o *Object)        { sb.Areas[o.ID] = o }

// SetAlias связывает имя (например "self" или "target") с объектом.
func (sb *Sandbox) SetAlias(name string, id uuid.UUID) { sb.Aliases[name] = id }

// Object ищет объект по псевдониму среди объектов, предметов и зон.
func (sb *Sandbox) Object(name string) (*Object, bool) {
	id, ok := sb.Aliases[name]
	if !ok {
		return nil, false
	}
	for _, registry := range []map[uuid.UUID]*Object{sb.Objects, sb.Items, sb.Areas} {
		if o, ok := registry[id]; ok {
			return o, true
		}
	}
	return nil, false
}

// ModuleClone копия модуля из пакета; вызываемый модуль не разделяет
// локальное состояние с оригиналом.
func (sb *Sandbox) ModuleClone(packageID, codegridID uuid.UUID) (*Module, bool) {
	p, ok := sb.Packages[packageID]
	if !ok {
		return nil, false
	}
	m, ok := p.Modules[codegridID]
	if !ok {
		return nil, false
	}
	return m.Clone(), true
}

// Frame активная функция на вершине стека вызовов.
func (sb *Sandbox) Frame() *Function {
	if len(sb.CallStack) == 0 {
		return nil
	}
	return sb.CallStack[len(sb.CallStack)-1]
}

func (sb *Sandbox) Local(name string) (Value, bool) {
	if f := sb.Frame(); f != nil {
		return f.GetLocal(name)
	}
	return Value{}, false
}

func (sb *Sandbox) maxDepth() int {
	if sb.MaxCallDepth <= 0 {
		return DefaultMaxCallDepth
	}
	return sb.MaxCallDepth
}

func (sb *Sandbox) pushModule(m *Module) error {
	if len(sb.CallStack) >= sb.maxDepth() {
		return fmt.Errorf("module %q: %w (%d)", m.Name, ErrMaxCallDepth, sb.maxDepth())
	}
	sb.CallStack = append(sb.CallStack, m.Function)
	sb.ModuleStack = append(sb.ModuleStack, m.ID)
	sb.DebugModules[m.ID] = newDebugModule(m.CodegridID)
	return nil
}

func (sb *Sandbox) popModule() {
	if n := len(sb.CallStack); n > 0 {
		sb.CallStack = sb.CallStack[:n-1]
	}
	if n := len(sb.ModuleStack); n > 0 {
		sb.ModuleStack = sb.ModuleStack[:n-1]
	}
}

// ============================================================
// Debug capture
// ============================================================

func (sb *Sandbox) currentDebugModule() *DebugModule {
	if !sb.DebugMode || len(sb.ModuleStack) == 0 {
		return nil
	}
	return sb.DebugModules[sb.ModuleStack[len(sb.ModuleStack)-1]]
}

func (sb *Sandbox) SetDebugValue(loc Location, v Value) {
	if dm := sb.currentDebugModule(); dm != nil {
		dm.Values[loc] = v.Clone()
	}
}

func (sb *Sandbox) SetDebugExecuted(loc Location) {
	if dm := sb.currentDebugModule(); dm != nil {
		dm.Executed.Put(loc)
	}
}

func (sb *Sandbox) SetDebugError(loc Location) {
	if dm := sb.currentDebugModule(); dm != nil {
		dm.Errors.Put(loc)
	}
}

// DebugModule отладочные данные модуля по его ID.
func (sb *Sandbox) DebugModule(moduleID uuid.UUID) (*DebugModule, bool) {
	dm, ok := sb.DebugModules[moduleID]
	return dm, ok
}
