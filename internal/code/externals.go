package code

import (
	"strings"
	"unicode/utf8"
)

// registerBuiltins встроенные функции, доступные любому скрипту.
func registerBuiltins(c *Compiler) {
	c.AddExternal("Print", ExternalDef{
		Func: func(args []Value, sb *Sandbox) (Value, bool) {
			log.WithField("sandbox", sb.ID).Info(args[0].Describe())
			return Value{}, false
		},
		Defaults: []Value{Text("")},
	})

	c.AddExternal("Length", ExternalDef{
		Func: func(args []Value, _ *Sandbox) (Value, bool) {
			switch args[0].Kind() {
			case KindList:
				items, _ := args[0].AsList()
				return Int(int32(len(items))), true
			case KindText:
				s, _ := args[0].AsText()
				return Int(int32(utf8.RuneCountInString(s))), true
			case KindTextList:
				items, _ := args[0].AsTextList()
				return Int(int32(len(items))), true
			}
			return Int(0), true
		},
		Defaults: []Value{List()},
		Returns:  true,
	})

	c.AddExternal("Upper", ExternalDef{
		Func: func(args []Value, _ *Sandbox) (Value, bool) {
			return Text(strings.ToUpper(args[0].Describe())), true
		},
		Defaults: []Value{Text("")},
		Returns:  true,
	})
}
