// Package object defines Rocket's runtime value model: the tagged union of
// values the evaluator produces and operates on, plus equality, truthiness,
// and display rules.
package object

import (
	"strconv"
	"strings"

	"rocket/internal/ast"
)

type Type string

const (
	INT      Type = "INT"
	FLOAT    Type = "FLOAT"
	STRING   Type = "STRING"
	BOOL     Type = "BOOL"
	NULL     Type = "NULL"
	LIST     Type = "LIST"
	DICT     Type = "DICT"
	FUNCTION Type = "FUNCTION"
	BUILTIN  Type = "BUILTIN"
	BOUND    Type = "BOUND_METHOD"
	RANGE    Type = "RANGE"
)

// Object is implemented by every Rocket runtime value.
type Object interface {
	Type() Type
	Inspect() string
}

type Int struct{ Value int64 }

func (i *Int) Type() Type      { return INT }
func (i *Int) Inspect() string { return strconv.FormatInt(i.Value, 10) }

type Float struct{ Value float64 }

func (f *Float) Type() Type { return FLOAT }
func (f *Float) Inspect() string {
	s := strconv.FormatFloat(f.Value, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

type Str struct{ Value string }

func (s *Str) Type() Type      { return STRING }
func (s *Str) Inspect() string { return s.Value }

type Bool struct{ Value bool }

func (b *Bool) Type() Type { return BOOL }
func (b *Bool) Inspect() string {
	if b.Value {
		return "true"
	}
	return "false"
}

type Null struct{}

func (n *Null) Type() Type      { return NULL }
func (n *Null) Inspect() string { return "null" }

// List is always shared by reference: assigning a list to another name
// aliases the same backing slice (§3).
type List struct{ Elements []Object }

func (l *List) Type() Type { return LIST }
func (l *List) Inspect() string {
	parts := make([]string, len(l.Elements))
	for i, e := range l.Elements {
		parts[i] = inspectNested(e)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Dict preserves insertion order of its keys.
type Dict struct {
	keys    []Object
	index   map[mapKey]int
	entries map[mapKey]Object
}

func NewDict() *Dict {
	return &Dict{index: map[mapKey]int{}, entries: map[mapKey]Object{}}
}

func (d *Dict) Type() Type { return DICT }
func (d *Dict) Inspect() string {
	parts := make([]string, 0, len(d.keys))
	for _, k := range d.keys {
		v, _ := d.Get(k)
		parts = append(parts, inspectNested(k)+": "+inspectNested(v))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (d *Dict) Set(key, value Object) error {
	mk, err := hashKey(key)
	if err != nil {
		return err
	}
	if i, ok := d.index[mk]; ok {
		d.keys[i] = key
		d.entries[mk] = value
		return nil
	}
	d.index[mk] = len(d.keys)
	d.keys = append(d.keys, key)
	d.entries[mk] = value
	return nil
}

func (d *Dict) Get(key Object) (Object, bool) {
	mk, err := hashKey(key)
	if err != nil {
		return nil, false
	}
	v, ok := d.entries[mk]
	return v, ok
}

func (d *Dict) Has(key Object) bool {
	_, ok := d.Get(key)
	return ok
}

func (d *Dict) Remove(key Object) (Object, bool) {
	mk, err := hashKey(key)
	if err != nil {
		return nil, false
	}
	v, ok := d.entries[mk]
	if !ok {
		return nil, false
	}
	i := d.index[mk]
	d.keys = append(d.keys[:i], d.keys[i+1:]...)
	delete(d.entries, mk)
	delete(d.index, mk)
	for k, idx := range d.index {
		if idx > i {
			d.index[k] = idx - 1
		}
	}
	return v, true
}

func (d *Dict) Keys() []Object   { return d.keys }
func (d *Dict) Len() int         { return len(d.keys) }

type Function struct {
	Params []string
	Body   *ast.BlockStatement
	Env    *Environment
}

func (f *Function) Type() Type      { return FUNCTION }
func (f *Function) Inspect() string { return "fn(" + strings.Join(f.Params, ", ") + ") {...}" }

// BuiltinImpl is the signature every native function and method implements.
// For a BoundMethod, args[0] is the receiver, which the evaluator prepends
// to the call's own arguments before calling.
type BuiltinImpl func(args []Object) (Object, error)

type Builtin struct {
	Name       string
	MinArgs    int
	MaxArgs    int // -1 means variadic
	Fn         BuiltinImpl
}

func (b *Builtin) Type() Type      { return BUILTIN }
func (b *Builtin) Inspect() string { return "builtin " + b.Name }

// BoundMethod pairs a receiver with a method implementation so it can be
// invoked as a regular callable; produced by attribute dispatch on List,
// Dict, and Str values (§4.3).
type BoundMethod struct {
	Receiver Object
	Method   *Builtin
}

func (m *BoundMethod) Type() Type      { return BOUND }
func (m *BoundMethod) Inspect() string { return "bound method " + m.Method.Name }

// Range is produced by the `range` builtin and consumed by for-of; it is
// not part of the literal value grammar.
type Range struct {
	Start, Stop, Step int64
}

func (r *Range) Type() Type { return RANGE }
func (r *Range) Inspect() string {
	return "range(" + strconv.FormatInt(r.Start, 10) + ", " + strconv.FormatInt(r.Stop, 10) + ", " + strconv.FormatInt(r.Step, 10) + ")"
}

func (r *Range) Len() int {
	if r.Step > 0 {
		if r.Stop <= r.Start {
			return 0
		}
		return int((r.Stop-r.Start+r.Step-1)/r.Step)
	}
	if r.Stop >= r.Start {
		return 0
	}
	return int((r.Start-r.Stop-r.Step-1) / -r.Step)
}

func (r *Range) At(i int) int64 { return r.Start + int64(i)*r.Step }

func inspectNested(o Object) string {
	if s, ok := o.(*Str); ok {
		return `"` + s.Value + `"`
	}
	return o.Inspect()
}

// IsTruthy implements §4.3's truthiness rule.
func IsTruthy(o Object) bool {
	switch v := o.(type) {
	case *Bool:
		return v.Value
	case *Null:
		return false
	case *Int:
		return v.Value != 0
	case *Float:
		return v.Value != 0
	case *Str:
		return v.Value != ""
	case *List:
		return len(v.Elements) != 0
	case *Dict:
		return v.Len() != 0
	default:
		return true
	}
}

// Equals implements §4.3's eq rule: numeric coercion between Int and Float,
// structural comparison for List and Dict, identity for Function.
func Equals(a, b Object) bool {
	switch x := a.(type) {
	case *Int:
		switch y := b.(type) {
		case *Int:
			return x.Value == y.Value
		case *Float:
			return float64(x.Value) == y.Value
		}
		return false
	case *Float:
		switch y := b.(type) {
		case *Int:
			return x.Value == float64(y.Value)
		case *Float:
			return x.Value == y.Value
		}
		return false
	case *Str:
		y, ok := b.(*Str)
		return ok && x.Value == y.Value
	case *Bool:
		y, ok := b.(*Bool)
		return ok && x.Value == y.Value
	case *Null:
		_, ok := b.(*Null)
		return ok
	case *List:
		y, ok := b.(*List)
		if !ok || len(x.Elements) != len(y.Elements) {
			return false
		}
		for i := range x.Elements {
			if !Equals(x.Elements[i], y.Elements[i]) {
				return false
			}
		}
		return true
	case *Dict:
		y, ok := b.(*Dict)
		if !ok || x.Len() != y.Len() {
			return false
		}
		for _, k := range x.Keys() {
			xv, _ := x.Get(k)
			yv, ok := y.Get(k)
			if !ok || !Equals(xv, yv) {
				return false
			}
		}
		return true
	case *Function:
		y, ok := b.(*Function)
		return ok && x == y
	case *Builtin:
		y, ok := b.(*Builtin)
		return ok && x == y
	case *BoundMethod:
		y, ok := b.(*BoundMethod)
		return ok && x.Method == y.Method && Equals(x.Receiver, y.Receiver)
	default:
		return a == b
	}
}

// mapKey is the comparable Go key backing Dict's map, derived from a
// hashable Object (Int, Float, Str, Bool, Null per §3's invariant).
type mapKey struct {
	typ Type
	val string
}

func hashKey(o Object) (mapKey, error) {
	switch v := o.(type) {
	case *Int:
		return mapKey{INT, strconv.FormatInt(v.Value, 10)}, nil
	case *Float:
		return mapKey{FLOAT, strconv.FormatFloat(v.Value, 'g', -1, 64)}, nil
	case *Str:
		return mapKey{STRING, v.Value}, nil
	case *Bool:
		return mapKey{BOOL, strconv.FormatBool(v.Value)}, nil
	case *Null:
		return mapKey{NULL, ""}, nil
	default:
		return mapKey{}, &UnhashableError{Got: o.Type()}
	}
}

// UnhashableError marks a dict key whose variant is not hashable.
type UnhashableError struct{ Got Type }

func (e *UnhashableError) Error() string {
	return "unhashable type used as dict key: " + string(e.Got)
}
