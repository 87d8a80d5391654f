package code

// Stack стек значений одного выполнения функции.
type Stack []Value

func (s *Stack) Push(v Value) { *s = append(*s, v) }

func (s *Stack) Pop() (Value, bool) {
	if len(*s) == 0 {
		return Value{}, false
	}
	v := (*s)[len(*s)-1]
	*s = (*s)[:len(*s)-1]
	return v, true
}

func (s Stack) Top() (Value, bool) {
	if len(s) == 0 {
		return Value{}, false
	}
	return s[len(s)-1], true
}

func (s Stack) Len() int { return len(s) }
