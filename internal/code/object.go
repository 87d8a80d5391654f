package code

import (
	"maps"
	"slices"

	"github.com/google/uuid"
)

// Object именованный набор значений: локальная область функции,
// внешний объект песочницы или вложенное значение.
type Object struct {
	ID     uuid.UUID        `json:"id"`
	Name   string           `json:"name"`
	Values map[string]Value `json:"values"`
}

func NewObject(name string) *Object {
	return &Object{
		ID:     uuid.New(),
		Name:   name,
		Values: map[string]Value{},
	}
}

func (o *Object) Get(name string) (Value, bool) {
	v, ok := o.Values[name]
	return v, ok
}

func (o *Object) Set(name string, v Value) {
	if o.Values == nil {
		o.Values = map[string]Value{}
	}
	o.Values[name] = v
}

func (o *Object) Has(name string) bool {
	_, ok := o.Values[name]
	return ok
}

func (o *Object) Keys() []string {
	return slices.Sorted(maps.Keys(o.Values))
}

func (o *Object) Clone() *Object {
	if o == nil {
		return nil
	}
	c := &Object{ID: o.ID, Name: o.Name, Values: make(map[string]Value, len(o.Values))}
	for k, v := range o.Values {
		c.Values[k] = v.Clone()
	}
	return c
}

// Equal сравнивает содержимое; ID и имя не учитываются.
func (o *Object) Equal(other *Object) bool {
	if o == nil || other == nil {
		return o == other
	}
	if len(o.Values) != len(other.Values) {
		return false
	}
	for k, v := range o.Values {
		w, ok := other.Values[k]
		if !ok || !v.IsEqual(w) {
			return false
		}
	}
	return true
}
