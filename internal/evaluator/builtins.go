package evaluator

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"rocket/internal/object"
	"rocket/internal/token"
)

// NewGlobalEnv returns a fresh global frame with every built-in bound by
// name, per §4.6. There are no infix operators in Rocket; arithmetic,
// comparison, and logic are ordinary function calls against these names,
// the same design original_source's BUILT_IN_FNS table uses. Container
// mutation (push, pop, keys, has, remove, ...) is exposed through attribute
// dispatch instead, per the per-type method tables in methods.go.
func NewGlobalEnv() *object.Environment {
	env := object.NewEnvironment()
	for _, b := range builtinTable {
		env.Define(b.Name, b)
	}
	return env
}

var builtinTable = []*object.Builtin{
	{Name: "print", MinArgs: 0, MaxArgs: -1, Fn: biPrint},
	{Name: "input", MinArgs: 0, MaxArgs: 1, Fn: biInput},

	{Name: "add", MinArgs: 2, MaxArgs: 2, Fn: biAdd},
	{Name: "sub", MinArgs: 2, MaxArgs: 2, Fn: biSub},
	{Name: "mul", MinArgs: 2, MaxArgs: 2, Fn: biMul},
	{Name: "div", MinArgs: 2, MaxArgs: 2, Fn: biDiv},
	{Name: "mod", MinArgs: 2, MaxArgs: 2, Fn: biMod},
	{Name: "pow", MinArgs: 2, MaxArgs: 2, Fn: biPow},
	{Name: "neg", MinArgs: 1, MaxArgs: 1, Fn: biNeg},
	{Name: "abs", MinArgs: 1, MaxArgs: 1, Fn: biAbs},

	{Name: "eq", MinArgs: 2, MaxArgs: 2, Fn: biEq},
	{Name: "ne", MinArgs: 2, MaxArgs: 2, Fn: biNe},
	{Name: "lt", MinArgs: 2, MaxArgs: 2, Fn: biLt},
	{Name: "le", MinArgs: 2, MaxArgs: 2, Fn: biLe},
	{Name: "gt", MinArgs: 2, MaxArgs: 2, Fn: biGt},
	{Name: "ge", MinArgs: 2, MaxArgs: 2, Fn: biGe},

	{Name: "not", MinArgs: 1, MaxArgs: 1, Fn: biNot},
	{Name: "and", MinArgs: 2, MaxArgs: 2, Fn: biAnd},
	{Name: "or", MinArgs: 2, MaxArgs: 2, Fn: biOr},

	{Name: "parse_int", MinArgs: 1, MaxArgs: 1, Fn: biParseInt},
	{Name: "parse_float", MinArgs: 1, MaxArgs: 1, Fn: biParseFloat},
	{Name: "format", MinArgs: 1, MaxArgs: -1, Fn: biFormat},
	{Name: "range", MinArgs: 1, MaxArgs: 3, Fn: biRange},
	{Name: "len", MinArgs: 1, MaxArgs: 1, Fn: biLen},
}

func typeErr(format string, args ...interface{}) error {
	return object.NewError(object.TypeError, zeroPos, format, args...)
}

func valueErr(format string, args ...interface{}) error {
	return object.NewError(object.ValueError, zeroPos, format, args...)
}

func indexErr(format string, args ...interface{}) error {
	return object.NewError(object.IndexError, zeroPos, format, args...)
}

func keyErr(format string, args ...interface{}) error {
	return object.NewError(object.KeyError, zeroPos, format, args...)
}

// zeroPos is a placeholder; callBuiltin in evaluator.go stamps the call
// site's real position onto any RuntimeError left at the zero value.
var zeroPos token.Position

func display(o object.Object) string {
	if s, ok := o.(*object.Str); ok {
		return s.Value
	}
	return o.Inspect()
}

func numeric(o object.Object) (float64, bool) {
	switch v := o.(type) {
	case *object.Int:
		return float64(v.Value), true
	case *object.Float:
		return v.Value, true
	default:
		return 0, false
	}
}

func bothInt(a, b object.Object) (int64, int64, bool) {
	x, ok1 := a.(*object.Int)
	y, ok2 := b.(*object.Int)
	if ok1 && ok2 {
		return x.Value, y.Value, true
	}
	return 0, 0, false
}

func biPrint(args []object.Object) (object.Object, error) {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = display(a)
	}
	fmt.Println(strings.Join(parts, " "))
	return null, nil
}

// stdinReader is shared by every `input` call, so lines buffered by one call
// are still there for the next.
var stdinReader = bufio.NewReader(os.Stdin)

func biInput(args []object.Object) (object.Object, error) {
	if len(args) == 1 {
		prompt, ok := args[0].(*object.Str)
		if !ok {
			return nil, typeErr("input expected a string prompt, got %s", args[0].Type())
		}
		fmt.Print(prompt.Value)
	}
	line, err := stdinReader.ReadString('\n')
	if err != nil && line == "" {
		return &object.Str{Value: ""}, nil
	}
	return &object.Str{Value: strings.TrimRight(line, "\r\n")}, nil
}

// arith implements the "Int op Int -> Int unless an operand is Float" shape
// §4.6 gives the arithmetic built-ins; add, sub and mul use it, while div,
// mod and pow handle their operands in their own functions.
func arith(a, b object.Object, name string, intOp func(int64, int64) int64, floatOp func(float64, float64) float64) (object.Object, error) {
	if x, y, ok := bothInt(a, b); ok {
		return &object.Int{Value: intOp(x, y)}, nil
	}
	fx, ok1 := numeric(a)
	fy, ok2 := numeric(b)
	if !ok1 || !ok2 {
		return nil, typeErr("unsupported operand types for %s: %s and %s", name, a.Type(), b.Type())
	}
	return &object.Float{Value: floatOp(fx, fy)}, nil
}

func biAdd(args []object.Object) (object.Object, error) {
	a, b := args[0], args[1]
	if sx, ok := a.(*object.Str); ok {
		if sy, ok := b.(*object.Str); ok {
			return &object.Str{Value: sx.Value + sy.Value}, nil
		}
	}
	if lx, ok := a.(*object.List); ok {
		if ly, ok := b.(*object.List); ok {
			elems := make([]object.Object, 0, len(lx.Elements)+len(ly.Elements))
			elems = append(elems, lx.Elements...)
			elems = append(elems, ly.Elements...)
			return &object.List{Elements: elems}, nil
		}
	}
	return arith(a, b, "add", func(x, y int64) int64 { return x + y }, func(x, y float64) float64 { return x + y })
}

func biSub(args []object.Object) (object.Object, error) {
	return arith(args[0], args[1], "sub", func(x, y int64) int64 { return x - y }, func(x, y float64) float64 { return x - y })
}

// biMul also implements list-times-int replication and str-times-int
// repetition, per §4.6's note on the `mul` built-in.
func biMul(args []object.Object) (object.Object, error) {
	a, b := args[0], args[1]
	if rep, err, ok := tryRepeat(a, b); ok {
		return rep, err
	}
	if rep, err, ok := tryRepeat(b, a); ok {
		return rep, err
	}
	return arith(a, b, "mul", func(x, y int64) int64 { return x * y }, func(x, y float64) float64 { return x * y })
}

func tryRepeat(container, count object.Object) (object.Object, error, bool) {
	n, ok := count.(*object.Int)
	if !ok {
		return nil, nil, false
	}
	switch c := container.(type) {
	case *object.List:
		if n.Value < 0 {
			return nil, valueErr("repeat count must not be negative"), true
		}
		elems := make([]object.Object, 0, len(c.Elements)*int(n.Value))
		for i := int64(0); i < n.Value; i++ {
			elems = append(elems, c.Elements...)
		}
		return &object.List{Elements: elems}, nil, true
	case *object.Str:
		if n.Value < 0 {
			return nil, valueErr("repeat count must not be negative"), true
		}
		return &object.Str{Value: strings.Repeat(c.Value, int(n.Value))}, nil, true
	default:
		return nil, nil, false
	}
}

func biDiv(args []object.Object) (object.Object, error) {
	a, b := args[0], args[1]
	if x, y, ok := bothInt(a, b); ok {
		if y == 0 {
			return nil, valueErr("division by zero")
		}
		return &object.Int{Value: x / y}, nil
	}
	fx, ok1 := numeric(a)
	fy, ok2 := numeric(b)
	if !ok1 || !ok2 {
		return nil, typeErr("unsupported operand types for div: %s and %s", a.Type(), b.Type())
	}
	if fy == 0 {
		return nil, valueErr("division by zero")
	}
	return &object.Float{Value: fx / fy}, nil
}

// biMod implements floor modulo (result takes the sign of the divisor),
// matching original_source's Python-style `%`.
func biMod(args []object.Object) (object.Object, error) {
	a, b := args[0], args[1]
	if x, y, ok := bothInt(a, b); ok {
		if y == 0 {
			return nil, valueErr("modulo by zero")
		}
		m := x % y
		if m != 0 && ((m < 0) != (y < 0)) {
			m += y
		}
		return &object.Int{Value: m}, nil
	}
	fx, ok1 := numeric(a)
	fy, ok2 := numeric(b)
	if !ok1 || !ok2 {
		return nil, typeErr("unsupported operand types for mod: %s and %s", a.Type(), b.Type())
	}
	if fy == 0 {
		return nil, valueErr("modulo by zero")
	}
	m := math.Mod(fx, fy)
	if m != 0 && ((m < 0) != (fy < 0)) {
		m += fy
	}
	return &object.Float{Value: m}, nil
}

func biPow(args []object.Object) (object.Object, error) {
	a, b := args[0], args[1]
	if x, y, ok := bothInt(a, b); ok && y >= 0 {
		result := int64(1)
		for i := int64(0); i < y; i++ {
			result *= x
		}
		return &object.Int{Value: result}, nil
	}
	fx, ok1 := numeric(a)
	fy, ok2 := numeric(b)
	if !ok1 || !ok2 {
		return nil, typeErr("unsupported operand types for pow: %s and %s", a.Type(), b.Type())
	}
	return &object.Float{Value: math.Pow(fx, fy)}, nil
}

func biNeg(args []object.Object) (object.Object, error) {
	switch v := args[0].(type) {
	case *object.Int:
		return &object.Int{Value: -v.Value}, nil
	case *object.Float:
		return &object.Float{Value: -v.Value}, nil
	default:
		return nil, typeErr("unsupported operand type for neg: %s", v.Type())
	}
}

func biAbs(args []object.Object) (object.Object, error) {
	switch v := args[0].(type) {
	case *object.Int:
		if v.Value < 0 {
			return &object.Int{Value: -v.Value}, nil
		}
		return v, nil
	case *object.Float:
		return &object.Float{Value: math.Abs(v.Value)}, nil
	default:
		return nil, typeErr("unsupported operand type for abs: %s", v.Type())
	}
}

func biEq(args []object.Object) (object.Object, error) {
	return nativeBool(object.Equals(args[0], args[1])), nil
}

func biNe(args []object.Object) (object.Object, error) {
	return nativeBool(!object.Equals(args[0], args[1])), nil
}

// compare implements §4.6: ordering is defined only on numeric-numeric and
// str-str pairs.
func compare(a, b object.Object, name string) (int, error) {
	if sx, ok := a.(*object.Str); ok {
		if sy, ok := b.(*object.Str); ok {
			return strings.Compare(sx.Value, sy.Value), nil
		}
	}
	fx, ok1 := numeric(a)
	fy, ok2 := numeric(b)
	if !ok1 || !ok2 {
		return 0, typeErr("unsupported operand types for %s: %s and %s", name, a.Type(), b.Type())
	}
	switch {
	case fx < fy:
		return -1, nil
	case fx > fy:
		return 1, nil
	default:
		return 0, nil
	}
}

func biLt(args []object.Object) (object.Object, error) {
	c, err := compare(args[0], args[1], "lt")
	if err != nil {
		return nil, err
	}
	return nativeBool(c < 0), nil
}

func biLe(args []object.Object) (object.Object, error) {
	c, err := compare(args[0], args[1], "le")
	if err != nil {
		return nil, err
	}
	return nativeBool(c <= 0), nil
}

func biGt(args []object.Object) (object.Object, error) {
	c, err := compare(args[0], args[1], "gt")
	if err != nil {
		return nil, err
	}
	return nativeBool(c > 0), nil
}

func biGe(args []object.Object) (object.Object, error) {
	c, err := compare(args[0], args[1], "ge")
	if err != nil {
		return nil, err
	}
	return nativeBool(c >= 0), nil
}

func biNot(args []object.Object) (object.Object, error) {
	return nativeBool(!object.IsTruthy(args[0])), nil
}

// biAnd/biOr: both operands are always evaluated by the caller before the
// call dispatches (Rocket has no short-circuit operators, §4.6).
func biAnd(args []object.Object) (object.Object, error) {
	return nativeBool(object.IsTruthy(args[0]) && object.IsTruthy(args[1])), nil
}

func biOr(args []object.Object) (object.Object, error) {
	return nativeBool(object.IsTruthy(args[0]) || object.IsTruthy(args[1])), nil
}

func biParseInt(args []object.Object) (object.Object, error) {
	s, ok := args[0].(*object.Str)
	if !ok {
		return nil, typeErr("parse_int expected a string, got %s", args[0].Type())
	}
	v, err := strconv.ParseInt(strings.TrimSpace(s.Value), 10, 64)
	if err != nil {
		return nil, valueErr("cannot parse '%s' as an int", s.Value)
	}
	return &object.Int{Value: v}, nil
}

func biParseFloat(args []object.Object) (object.Object, error) {
	s, ok := args[0].(*object.Str)
	if !ok {
		return nil, typeErr("parse_float expected a string, got %s", args[0].Type())
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s.Value), 64)
	if err != nil {
		return nil, valueErr("cannot parse '%s' as a float", s.Value)
	}
	return &object.Float{Value: v}, nil
}

// biFormat substitutes "{}" placeholders in order, the way original's
// `format` built-in stands in for str.format with positional arguments.
func biFormat(args []object.Object) (object.Object, error) {
	tmpl, ok := args[0].(*object.Str)
	if !ok {
		return nil, typeErr("format expected a string template, got %s", args[0].Type())
	}
	var out strings.Builder
	rest := args[1:]
	i := 0
	s := tmpl.Value
	for {
		idx := strings.Index(s, "{}")
		if idx < 0 {
			out.WriteString(s)
			break
		}
		out.WriteString(s[:idx])
		if i < len(rest) {
			out.WriteString(display(rest[i]))
			i++
		}
		s = s[idx+2:]
	}
	return &object.Str{Value: out.String()}, nil
}

func biRange(args []object.Object) (object.Object, error) {
	ints := make([]int64, len(args))
	for i, a := range args {
		v, ok := a.(*object.Int)
		if !ok {
			return nil, typeErr("range expected int arguments, got %s", a.Type())
		}
		ints[i] = v.Value
	}
	switch len(ints) {
	case 1:
		return &object.Range{Start: 0, Stop: ints[0], Step: 1}, nil
	case 2:
		return &object.Range{Start: ints[0], Stop: ints[1], Step: 1}, nil
	default:
		if ints[2] == 0 {
			return nil, valueErr("range step must not be zero")
		}
		return &object.Range{Start: ints[0], Stop: ints[1], Step: ints[2]}, nil
	}
}

func biLen(args []object.Object) (object.Object, error) {
	switch v := args[0].(type) {
	case *object.Str:
		return &object.Int{Value: int64(utf8.RuneCountInString(v.Value))}, nil
	case *object.List:
		return &object.Int{Value: int64(len(v.Elements))}, nil
	case *object.Dict:
		return &object.Int{Value: int64(v.Len())}, nil
	default:
		return nil, typeErr("value of type %s has no len", v.Type())
	}
}
