package evaluator

import (
	"strings"

	"rocket/internal/object"
)

// methodsFor returns the per-type method table attribute dispatch consults
// once a target's own keys (for Dict) don't satisfy the lookup (§4.3).
func methodsFor(o object.Object) map[string]*object.Builtin {
	switch o.(type) {
	case *object.List:
		return listMethods
	case *object.Dict:
		return dictMethods
	case *object.Str:
		return strMethods
	default:
		return nil
	}
}

// MinArgs/MaxArgs below count the receiver that the evaluator prepends, so
// a nullary method like `length` still requires exactly one argument.
var listMethods = map[string]*object.Builtin{
	"index":  {Name: "index", MinArgs: 2, MaxArgs: 2, Fn: methodListIndex},
	"count":  {Name: "count", MinArgs: 2, MaxArgs: 2, Fn: methodListCount},
	"push":   {Name: "push", MinArgs: 2, MaxArgs: 2, Fn: methodListPush},
	"pop":    {Name: "pop", MinArgs: 1, MaxArgs: 1, Fn: methodListPop},
	"length": {Name: "length", MinArgs: 1, MaxArgs: 1, Fn: methodListLength},
}

var dictMethods = map[string]*object.Builtin{
	"keys":   {Name: "keys", MinArgs: 1, MaxArgs: 1, Fn: methodDictKeys},
	"values": {Name: "values", MinArgs: 1, MaxArgs: 1, Fn: methodDictValues},
	"has":    {Name: "has", MinArgs: 2, MaxArgs: 2, Fn: methodDictHas},
	"remove": {Name: "remove", MinArgs: 2, MaxArgs: 2, Fn: methodDictRemove},
	"length": {Name: "length", MinArgs: 1, MaxArgs: 1, Fn: methodDictLength},
}

var strMethods = map[string]*object.Builtin{
	"split":   {Name: "split", MinArgs: 2, MaxArgs: 2, Fn: methodStrSplit},
	"length":  {Name: "length", MinArgs: 1, MaxArgs: 1, Fn: methodStrLength},
	"upper":   {Name: "upper", MinArgs: 1, MaxArgs: 1, Fn: methodStrUpper},
	"lower":   {Name: "lower", MinArgs: 1, MaxArgs: 1, Fn: methodStrLower},
	"replace": {Name: "replace", MinArgs: 3, MaxArgs: 3, Fn: methodStrReplace},
}

// Every method's Fn receives the receiver prepended as args[0] (§4.5's
// BoundMethod call semantics: "prepend the receiver to the argument vector").

func methodListIndex(args []object.Object) (object.Object, error) {
	list := args[0].(*object.List)
	for i, e := range list.Elements {
		if object.Equals(e, args[1]) {
			return &object.Int{Value: int64(i)}, nil
		}
	}
	return nil, valueErr("value not found in list")
}

func methodListCount(args []object.Object) (object.Object, error) {
	list := args[0].(*object.List)
	n := int64(0)
	for _, e := range list.Elements {
		if object.Equals(e, args[1]) {
			n++
		}
	}
	return &object.Int{Value: n}, nil
}

func methodListPush(args []object.Object) (object.Object, error) {
	list := args[0].(*object.List)
	list.Elements = append(list.Elements, args[1])
	return null, nil
}

func methodListPop(args []object.Object) (object.Object, error) {
	list := args[0].(*object.List)
	if len(list.Elements) == 0 {
		return nil, indexErr("pop from an empty list")
	}
	last := list.Elements[len(list.Elements)-1]
	list.Elements = list.Elements[:len(list.Elements)-1]
	return last, nil
}

func methodListLength(args []object.Object) (object.Object, error) {
	list := args[0].(*object.List)
	return &object.Int{Value: int64(len(list.Elements))}, nil
}

func methodDictKeys(args []object.Object) (object.Object, error) {
	dict := args[0].(*object.Dict)
	src := dict.Keys()
	out := make([]object.Object, len(src))
	copy(out, src)
	return &object.List{Elements: out}, nil
}

func methodDictValues(args []object.Object) (object.Object, error) {
	dict := args[0].(*object.Dict)
	keys := dict.Keys()
	out := make([]object.Object, len(keys))
	for i, k := range keys {
		v, _ := dict.Get(k)
		out[i] = v
	}
	return &object.List{Elements: out}, nil
}

func methodDictHas(args []object.Object) (object.Object, error) {
	dict := args[0].(*object.Dict)
	return nativeBool(dict.Has(args[1])), nil
}

func methodDictRemove(args []object.Object) (object.Object, error) {
	dict := args[0].(*object.Dict)
	val, ok := dict.Remove(args[1])
	if !ok {
		return nil, keyErr("key %s not found", args[1].Inspect())
	}
	return val, nil
}

func methodDictLength(args []object.Object) (object.Object, error) {
	dict := args[0].(*object.Dict)
	return &object.Int{Value: int64(dict.Len())}, nil
}

func methodStrSplit(args []object.Object) (object.Object, error) {
	s := args[0].(*object.Str)
	sep, ok := args[1].(*object.Str)
	if !ok {
		return nil, typeErr("split expected a string separator, got %s", args[1].Type())
	}
	parts := strings.Split(s.Value, sep.Value)
	out := make([]object.Object, len(parts))
	for i, p := range parts {
		out[i] = &object.Str{Value: p}
	}
	return &object.List{Elements: out}, nil
}

func methodStrLength(args []object.Object) (object.Object, error) {
	return biLen(args)
}

func methodStrUpper(args []object.Object) (object.Object, error) {
	s := args[0].(*object.Str)
	return &object.Str{Value: strings.ToUpper(s.Value)}, nil
}

func methodStrLower(args []object.Object) (object.Object, error) {
	s := args[0].(*object.Str)
	return &object.Str{Value: strings.ToLower(s.Value)}, nil
}

func methodStrReplace(args []object.Object) (object.Object, error) {
	s := args[0].(*object.Str)
	old, ok := args[1].(*object.Str)
	if !ok {
		return nil, typeErr("replace expected string arguments, got %s", args[1].Type())
	}
	repl, ok := args[2].(*object.Str)
	if !ok {
		return nil, typeErr("replace expected string arguments, got %s", args[2].Type())
	}
	return &object.Str{Value: strings.ReplaceAll(s.Value, old.Value, repl.Value)}, nil
}
