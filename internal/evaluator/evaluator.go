// Package evaluator walks the AST produced by the parser and executes it
// against an object.Environment, per the tree-walking design in §4.5.
package evaluator

import (
	"rocket/internal/ast"
	"rocket/internal/object"
	"rocket/internal/token"
)

var (
	null = &object.Null{}
	yes  = &object.Bool{Value: true}
	no   = &object.Bool{Value: false}
)

func nativeBool(b bool) *object.Bool {
	if b {
		return yes
	}
	return no
}

// Run evaluates a whole program in env (normally a fresh global frame from
// NewGlobalEnv). Top-level function declarations are hoisted, per §4.2: they
// are visible to every statement in the program regardless of textual order.
// A break, continue, or return that escapes every loop and function at top
// level is reported as a CtrlFlowError rather than panicking or silently
// exiting, since nothing outside the program can catch it.
func Run(prog *ast.Program, env *object.Environment) (object.Object, error) {
	hoistFunctions(prog.Statements, env)

	result, err := evalStatements(prog.Statements, env)
	if err != nil {
		return nil, toCtrlFlowError(err)
	}
	return result, nil
}

// toCtrlFlowError converts a break/continue/return signal that escaped every
// loop and function into a CtrlFlowError positioned at the offending
// statement itself, carried on the signal, not at the program's or call
// site's position.
func toCtrlFlowError(err error) error {
	switch s := err.(type) {
	case breakSignal:
		return object.NewError(object.CtrlFlowError, s.Pos, "break outside a loop")
	case continueSignal:
		return object.NewError(object.CtrlFlowError, s.Pos, "continue outside a loop")
	case returnSignal:
		return object.NewError(object.CtrlFlowError, s.Pos, "return outside a function")
	default:
		return err
	}
}

func hoistFunctions(stmts []ast.Statement, env *object.Environment) {
	for _, stmt := range stmts {
		if decl, ok := stmt.(*ast.FnDecl); ok {
			env.Define(decl.Name, &object.Function{Params: decl.Params, Body: decl.Body, Env: env})
		}
	}
}

func evalStatements(stmts []ast.Statement, env *object.Environment) (object.Object, error) {
	var result object.Object = null
	for _, stmt := range stmts {
		var err error
		result, err = evalStatement(stmt, env)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// evalBlock runs a block's statements in a fresh child frame, so `let`
// bindings inside it do not leak into the enclosing scope (§4.4).
func evalBlock(block *ast.BlockStatement, env *object.Environment) (object.Object, error) {
	return evalStatements(block.Statements, env.NewChild())
}

func evalStatement(stmt ast.Statement, env *object.Environment) (object.Object, error) {
	switch s := stmt.(type) {
	case *ast.LetStatement:
		val, err := evalExpr(s.Value, env)
		if err != nil {
			return nil, err
		}
		if !env.Declare(s.Name, val) {
			return nil, object.NewError(object.NameError, s.Pos(), "name '%s' already declared in this scope", s.Name)
		}
		return null, nil
	case *ast.ExprStatement:
		return evalExpr(s.Expr, env)
	case *ast.BlockStatement:
		return evalBlock(s, env)
	case *ast.IfStatement:
		return evalIf(s, env)
	case *ast.WhileStatement:
		return evalWhile(s, env)
	case *ast.CForStatement:
		return evalCFor(s, env)
	case *ast.ForOfStatement:
		return evalForOf(s, env)
	case *ast.FnDecl:
		env.Define(s.Name, &object.Function{Params: s.Params, Body: s.Body, Env: env})
		return null, nil
	case *ast.ReturnStatement:
		var val object.Object = null
		if s.Value != nil {
			v, err := evalExpr(s.Value, env)
			if err != nil {
				return nil, err
			}
			val = v
		}
		return nil, returnSignal{Value: val, Pos: s.Pos()}
	case *ast.BreakStatement:
		return nil, breakSignal{Pos: s.Pos()}
	case *ast.ContinueStatement:
		return nil, continueSignal{Pos: s.Pos()}
	default:
		return nil, object.NewError(object.TypeError, stmt.Pos(), "cannot evaluate statement %T", stmt)
	}
}

func evalIf(s *ast.IfStatement, env *object.Environment) (object.Object, error) {
	cond, err := evalExpr(s.Cond, env)
	if err != nil {
		return nil, err
	}
	if object.IsTruthy(cond) {
		return evalBlock(s.Then, env)
	}
	switch {
	case s.Else == nil:
		return null, nil
	default:
		return evalStatement(s.Else, env)
	}
}

func evalWhile(s *ast.WhileStatement, env *object.Environment) (object.Object, error) {
	for {
		cond, err := evalExpr(s.Cond, env)
		if err != nil {
			return nil, err
		}
		if !object.IsTruthy(cond) {
			return null, nil
		}
		_, err = evalBlock(s.Body, env)
		if err != nil {
			if isBreak(err) {
				return null, nil
			}
			if isContinue(err) {
				continue
			}
			return nil, err
		}
	}
}

func evalCFor(s *ast.CForStatement, env *object.Environment) (object.Object, error) {
	loopEnv := env.NewChild()
	if s.Init != nil {
		if _, err := evalStatement(s.Init, loopEnv); err != nil {
			return nil, err
		}
	}
	for {
		if s.Cond != nil {
			cond, err := evalExpr(s.Cond, loopEnv)
			if err != nil {
				return nil, err
			}
			if !object.IsTruthy(cond) {
				return null, nil
			}
		}

		_, err := evalBlock(s.Body, loopEnv)
		if err != nil {
			if isBreak(err) {
				return null, nil
			}
			if !isContinue(err) {
				return nil, err
			}
		}

		if s.Post != nil {
			if _, err := evalExpr(s.Post, loopEnv); err != nil {
				return nil, err
			}
		}
	}
}

func evalForOf(s *ast.ForOfStatement, env *object.Environment) (object.Object, error) {
	iterable, err := evalExpr(s.Iterable, env)
	if err != nil {
		return nil, err
	}
	items, err := iterate(iterable, s.Iterable.Pos())
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		iterEnv := env.NewChild()
		iterEnv.Define(s.VarName, item)
		_, err := evalBlock(s.Body, iterEnv)
		if err != nil {
			if isBreak(err) {
				return null, nil
			}
			if isContinue(err) {
				continue
			}
			return nil, err
		}
	}
	return null, nil
}

// iterate produces the sequence of values a for-of loop walks: a list's
// elements, a dict's keys, a string's characters, or a range's integers
// (§4.5).
func iterate(o object.Object, pos token.Position) ([]object.Object, error) {
	switch v := o.(type) {
	case *object.List:
		out := make([]object.Object, len(v.Elements))
		copy(out, v.Elements)
		return out, nil
	case *object.Dict:
		return v.Keys(), nil
	case *object.Str:
		runes := []rune(v.Value)
		out := make([]object.Object, len(runes))
		for i, r := range runes {
			out[i] = &object.Str{Value: string(r)}
		}
		return out, nil
	case *object.Range:
		n := v.Len()
		out := make([]object.Object, n)
		for i := 0; i < n; i++ {
			out[i] = &object.Int{Value: v.At(i)}
		}
		return out, nil
	default:
		return nil, object.NewError(object.TypeError, pos, "value of type %s is not iterable", o.Type())
	}
}

func evalExpr(expr ast.Expression, env *object.Environment) (object.Object, error) {
	switch e := expr.(type) {
	case *ast.IntLit:
		return &object.Int{Value: e.Value}, nil
	case *ast.FloatLit:
		return &object.Float{Value: e.Value}, nil
	case *ast.StrLit:
		return &object.Str{Value: e.Value}, nil
	case *ast.BoolLit:
		return nativeBool(e.Value), nil
	case *ast.NullLit:
		return null, nil
	case *ast.ListLit:
		return evalListLit(e, env)
	case *ast.DictLit:
		return evalDictLit(e, env)
	case *ast.Name:
		if val, ok := env.Lookup(e.Value); ok {
			return val, nil
		}
		return nil, object.NewError(object.NameError, e.Pos(), "name '%s' is not defined", e.Value)
	case *ast.IndexExpr:
		return evalIndexExpr(e, env)
	case *ast.AttrExpr:
		return evalAttrExpr(e, env)
	case *ast.CallExpr:
		return evalCallExpr(e, env)
	case *ast.IndexAssignExpr:
		return evalIndexAssign(e, env)
	case *ast.AttrAssignExpr:
		return evalAttrAssign(e, env)
	default:
		return nil, object.NewError(object.TypeError, expr.Pos(), "cannot evaluate expression %T", expr)
	}
}

func evalListLit(e *ast.ListLit, env *object.Environment) (object.Object, error) {
	elems := make([]object.Object, len(e.Elems))
	for i, el := range e.Elems {
		v, err := evalExpr(el, env)
		if err != nil {
			return nil, err
		}
		elems[i] = v
	}
	return &object.List{Elements: elems}, nil
}

func evalDictLit(e *ast.DictLit, env *object.Environment) (object.Object, error) {
	dict := object.NewDict()
	for _, pair := range e.Pairs {
		key, err := evalExpr(pair.Key, env)
		if err != nil {
			return nil, err
		}
		val, err := evalExpr(pair.Value, env)
		if err != nil {
			return nil, err
		}
		if err := dict.Set(key, val); err != nil {
			return nil, object.NewError(object.TypeError, pair.Key.Pos(), "%s", err)
		}
	}
	return dict, nil
}

func evalIndexExpr(e *ast.IndexExpr, env *object.Environment) (object.Object, error) {
	target, err := evalExpr(e.Target, env)
	if err != nil {
		return nil, err
	}
	key, err := evalExpr(e.Key, env)
	if err != nil {
		return nil, err
	}
	return indexGet(target, key, e.Pos())
}

func indexGet(target, key object.Object, pos token.Position) (object.Object, error) {
	switch t := target.(type) {
	case *object.List:
		i, ok := key.(*object.Int)
		if !ok {
			return nil, object.NewError(object.TypeError, pos, "list index must be an int, got %s", key.Type())
		}
		idx, err := resolveIndex(i.Value, len(t.Elements), pos)
		if err != nil {
			return nil, err
		}
		return t.Elements[idx], nil
	case *object.Str:
		i, ok := key.(*object.Int)
		if !ok {
			return nil, object.NewError(object.TypeError, pos, "string index must be an int, got %s", key.Type())
		}
		runes := []rune(t.Value)
		idx, err := resolveIndex(i.Value, len(runes), pos)
		if err != nil {
			return nil, err
		}
		return &object.Str{Value: string(runes[idx])}, nil
	case *object.Dict:
		val, ok := t.Get(key)
		if !ok {
			return nil, object.NewError(object.KeyError, pos, "key %s not found", key.Inspect())
		}
		return val, nil
	default:
		return nil, object.NewError(object.TypeError, pos, "value of type %s is not indexable", target.Type())
	}
}

func resolveIndex(i int64, length int, pos token.Position) (int, error) {
	idx := i
	if idx < 0 {
		idx += int64(length)
	}
	if idx < 0 || idx >= int64(length) {
		return 0, object.NewError(object.IndexError, pos, "index %d out of range for length %d", i, length)
	}
	return int(idx), nil
}

// evalAttrExpr implements §4.3's attribute dispatch: a Dict key takes
// priority over the method table, then List/Dict/Str fall back to their
// per-type method table, binding a BoundMethod; anything else is AttrError.
func evalAttrExpr(e *ast.AttrExpr, env *object.Environment) (object.Object, error) {
	target, err := evalExpr(e.Target, env)
	if err != nil {
		return nil, err
	}
	if dict, ok := target.(*object.Dict); ok {
		if val, ok := dict.Get(&object.Str{Value: e.Name}); ok {
			return val, nil
		}
	}
	if m, ok := methodsFor(target)[e.Name]; ok {
		return &object.BoundMethod{Receiver: target, Method: m}, nil
	}
	return nil, object.NewError(object.AttrError, e.Pos(), "value of type %s has no attribute '%s'", target.Type(), e.Name)
}

func evalIndexAssign(e *ast.IndexAssignExpr, env *object.Environment) (object.Object, error) {
	target, err := evalExpr(e.Target, env)
	if err != nil {
		return nil, err
	}
	key, err := evalExpr(e.Key, env)
	if err != nil {
		return nil, err
	}
	val, err := evalExpr(e.Value, env)
	if err != nil {
		return nil, err
	}
	switch t := target.(type) {
	case *object.List:
		i, ok := key.(*object.Int)
		if !ok {
			return nil, object.NewError(object.TypeError, e.Pos(), "list index must be an int, got %s", key.Type())
		}
		idx, err := resolveIndex(i.Value, len(t.Elements), e.Pos())
		if err != nil {
			return nil, err
		}
		t.Elements[idx] = val
		return val, nil
	case *object.Dict:
		if err := t.Set(key, val); err != nil {
			return nil, object.NewError(object.TypeError, e.Pos(), "%s", err)
		}
		return val, nil
	default:
		return nil, object.NewError(object.TypeError, e.Pos(), "value of type %s does not support index assignment", target.Type())
	}
}

func evalAttrAssign(e *ast.AttrAssignExpr, env *object.Environment) (object.Object, error) {
	target, err := evalExpr(e.Target, env)
	if err != nil {
		return nil, err
	}
	val, err := evalExpr(e.Value, env)
	if err != nil {
		return nil, err
	}
	dict, ok := target.(*object.Dict)
	if !ok {
		return nil, object.NewError(object.AttrError, e.Pos(), "value of type %s does not support attribute assignment", target.Type())
	}
	if err := dict.Set(&object.Str{Value: e.Name}, val); err != nil {
		return nil, object.NewError(object.TypeError, e.Pos(), "%s", err)
	}
	return val, nil
}

func evalCallExpr(e *ast.CallExpr, env *object.Environment) (object.Object, error) {
	callee, err := evalExpr(e.Callee, env)
	if err != nil {
		return nil, err
	}
	args := make([]object.Object, len(e.Args))
	for i, a := range e.Args {
		v, err := evalExpr(a, env)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	switch fn := callee.(type) {
	case *object.Function:
		return callFunction(fn, args, e.Pos())
	case *object.Builtin:
		return callBuiltin(fn, args, e.Pos())
	case *object.BoundMethod:
		full := append([]object.Object{fn.Receiver}, args...)
		return callBuiltin(fn.Method, full, e.Pos())
	default:
		return nil, object.NewError(object.TypeError, e.Pos(), "value of type %s is not callable", callee.Type())
	}
}

func callFunction(fn *object.Function, args []object.Object, pos token.Position) (object.Object, error) {
	if len(args) != len(fn.Params) {
		return nil, object.NewError(object.ArityError, pos, "expected %d argument(s), got %d", len(fn.Params), len(args))
	}
	callEnv := fn.Env.NewChild()
	for i, p := range fn.Params {
		callEnv.Define(p, args[i])
	}
	_, err := evalStatements(fn.Body.Statements, callEnv.NewChild())
	if err != nil {
		if rs, ok := asReturn(err); ok {
			return rs.Value, nil
		}
		if bs, ok := err.(breakSignal); ok {
			return nil, object.NewError(object.CtrlFlowError, bs.Pos, "break outside a loop")
		}
		if cs, ok := err.(continueSignal); ok {
			return nil, object.NewError(object.CtrlFlowError, cs.Pos, "continue outside a loop")
		}
		return nil, err
	}
	return null, nil
}

func callBuiltin(b *object.Builtin, args []object.Object, pos token.Position) (object.Object, error) {
	if len(args) < b.MinArgs || (b.MaxArgs >= 0 && len(args) > b.MaxArgs) {
		return nil, object.NewError(object.ArityError, pos, "'%s' expected %s, got %d", b.Name, arityDesc(b), len(args))
	}
	result, err := b.Fn(args)
	if err != nil {
		if re, ok := err.(*object.RuntimeError); ok && re.Pos == (token.Position{}) {
			re.Pos = pos
		}
		return nil, err
	}
	return result, nil
}

func arityDesc(b *object.Builtin) string {
	if b.MaxArgs < 0 {
		return "at least " + itoa(b.MinArgs) + " argument(s)"
	}
	if b.MinArgs == b.MaxArgs {
		return itoa(b.MinArgs) + " argument(s)"
	}
	return "between " + itoa(b.MinArgs) + " and " + itoa(b.MaxArgs) + " arguments"
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	if neg {
		return "-" + string(digits)
	}
	return string(digits)
}
