package code

import (
	"github.com/google/uuid"
)

// ============================================================
// Atoms
// ============================================================

type AtomKind string

const (
	AtomValue           AtomKind = "value"
	AtomArgument        AtomKind = "argument"
	AtomLocalGet        AtomKind = "local_get"
	AtomLocalSet        AtomKind = "local_set"
	AtomObjectGet       AtomKind = "object_get"
	AtomObjectSet       AtomKind = "object_set"
	AtomGet             AtomKind = "get"
	AtomSet             AtomKind = "set"
	AtomAdd             AtomKind = "add"
	AtomSubtract        AtomKind = "subtract"
	AtomMultiply        AtomKind = "multiply"
	AtomDivide          AtomKind = "divide"
	AtomModulus         AtomKind = "modulus"
	AtomComparison      AtomKind = "comparison"
	AtomReturn          AtomKind = "return"
	AtomExternalCall    AtomKind = "external_call"
	AtomModuleCall      AtomKind = "module_call"
	AtomRandInt         AtomKind = "rand_int"
	AtomRandFloat       AtomKind = "rand_float"
	AtomEndOfExpression AtomKind = "end_of_expression"
	AtomEndOfCode       AtomKind = "end_of_code"
	AtomAnd             AtomKind = "and"
	AtomOr              AtomKind = "or"
)

type AssignOp string

const (
	Assign         AssignOp = "="
	AddAssign      AssignOp = "+="
	SubtractAssign AssignOp = "-="
	MultiplyAssign AssignOp = "*="
	DivideAssign   AssignOp = "/="
	ModulusAssign  AssignOp = "%="
)

type CompareOp string

const (
	Equal              CompareOp = "=="
	Unequal            CompareOp = "!="
	GreaterThan        CompareOp = ">"
	GreaterThanOrEqual CompareOp = ">="
	LessThan           CompareOp = "<"
	LessThanOrEqual    CompareOp = "<="
)

// Atom одна ячейка скрипта до компиляции.
type Atom struct {
	Kind     AtomKind  `json:"kind"`
	Name     string    `json:"name,omitempty"`
	Object   string    `json:"object,omitempty"`
	Value    *Value    `json:"value,omitempty"`
	Assign   AssignOp  `json:"assign,omitempty"`
	Compare  CompareOp `json:"compare,omitempty"`
	Package  uuid.UUID `json:"package,omitzero"`
	Codegrid uuid.UUID `json:"codegrid,omitzero"`
}

func Literal(v Value) Atom { return Atom{Kind: AtomValue, Value: &v} }

func Arg(name string) Atom { return Atom{Kind: AtomArgument, Name: name} }

func LocalGet(name string) Atom { return Atom{Kind: AtomLocalGet, Name: name} }

func LocalSet(name string, op AssignOp) Atom {
	return Atom{Kind: AtomLocalSet, Name: name, Assign: op}
}

func ObjectGet(object, name string) Atom {
	return Atom{Kind: AtomObjectGet, Object: object, Name: name}
}

func ObjectSet(object, name string, op AssignOp) Atom {
	return Atom{Kind: AtomObjectSet, Object: object, Name: name, Assign: op}
}

// Get читает значение по пути через точку; "@" в начале адресует объект песочницы.
func Get(path string) Atom { return Atom{Kind: AtomGet, Name: path} }

func Set(path string, op AssignOp) Atom {
	return Atom{Kind: AtomSet, Name: path, Assign: op}
}

func Compare(op CompareOp) Atom { return Atom{Kind: AtomComparison, Compare: op} }

func External(name string) Atom { return Atom{Kind: AtomExternalCall, Name: name} }

func CallModule(packageID, codegridID uuid.UUID) Atom {
	return Atom{Kind: AtomModuleCall, Package: packageID, Codegrid: codegridID}
}

func RandInt(lo, hi int32) Atom {
	v := Int2(lo, hi)
	return Atom{Kind: AtomRandInt, Value: &v}
}

func RandFloat(lo, hi float32) Atom {
	v := Float2(lo, hi)
	return Atom{Kind: AtomRandFloat, Value: &v}
}

// Op атом без операндов: арифметика, Return, разделители.
func Op(kind AtomKind) Atom { return Atom{Kind: kind} }

// ============================================================
// Instructions
// ============================================================

type Location struct {
	X uint16 `json:"x"`
	Y uint16 `json:"y"`
}

// Instruction атом с позицией в сетке. Body принадлежит Comparison
// и выполняется только при истинном сравнении.
type Instruction struct {
	Loc  Location      `json:"loc"`
	Atom Atom          `json:"atom"`
	Body []Instruction `json:"body,omitempty"`
}

func At(x, y uint16, atom Atom, body ...Instruction) Instruction {
	return Instruction{Loc: Location{X: x, Y: y}, Atom: atom, Body: body}
}
