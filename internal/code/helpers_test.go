package code

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// runScript компилирует инструкции в модуль и выполняет его в песочнице с отладкой.
func runScript(t *testing.T, sb *Sandbox, instructions ...Instruction) (Stack, *Module) {
	t.Helper()
	fn, err := NewCompiler().Compile("test", instructions)
	require.NoError(t, err)

	m := &Module{ID: uuid.New(), CodegridID: uuid.New(), Name: "test", Function: fn}
	stack, err := m.Execute(sb)
	require.NoError(t, err)
	return stack, m
}

func debugSandbox() *Sandbox {
	sb := NewSandbox()
	sb.DebugMode = true
	sb.Seed(7)
	return sb
}

// seq расставляет атомы по строке сетки слева направо.
func seq(atoms ...Atom) []Instruction {
	out := make([]Instruction, len(atoms))
	for i, a := range atoms {
		out[i] = At(uint16(i), 0, a)
	}
	return out
}
