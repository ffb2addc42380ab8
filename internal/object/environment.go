package object

// Environment is a single lexical scope frame, chained to its enclosing
// frame. Frames are shared by reference: closures capture the frame active
// at function declaration time (§3/§4.4).
type Environment struct {
	vars  map[string]Object
	outer *Environment
}

func NewEnvironment() *Environment {
	return &Environment{vars: make(map[string]Object)}
}

// NewChild allocates a new frame enclosed by env, the stack discipline used
// for blocks, loop iterations, and function calls.
func (e *Environment) NewChild() *Environment {
	return &Environment{vars: make(map[string]Object), outer: e}
}

// Define binds name in the current frame unconditionally, shadowing any
// outer binding of the same name. Used for bindings that are not subject to
// the same-scope redeclaration check — function parameters, loop variables,
// and hoisted/nested function declarations.
func (e *Environment) Define(name string, val Object) {
	e.vars[name] = val
}

// Declare binds name in the current frame, the way `let` does. It fails if
// name is already bound directly in this frame — redeclaring a name in the
// same scope is an error, not a silent overwrite — but still shadows outer
// bindings of the same name, same as Define.
func (e *Environment) Declare(name string, val Object) bool {
	if _, exists := e.vars[name]; exists {
		return false
	}
	e.vars[name] = val
	return true
}

// Lookup searches the current frame, then enclosing frames out to the
// global frame.
func (e *Environment) Lookup(name string) (Object, bool) {
	env := e
	for env != nil {
		if v, ok := env.vars[name]; ok {
			return v, true
		}
		env = env.outer
	}
	return nil, false
}

// AssignExisting rebinds name in the nearest frame that defines it; it never
// creates a new binding. The evaluator does not call it: subscript and
// attribute assignment mutate the container value in place.
func (e *Environment) AssignExisting(name string, val Object) bool {
	env := e
	for env != nil {
		if _, ok := env.vars[name]; ok {
			env.vars[name] = val
			return true
		}
		env = env.outer
	}
	return false
}

// Names lists every name bound directly in this frame.
func (e *Environment) Names() []string {
	names := make([]string, 0, len(e.vars))
	for n := range e.vars {
		names = append(names, n)
	}
	return names
}

// Global walks outward to the frame with no enclosing parent.
func (e *Environment) Global() *Environment {
	env := e
	for env.outer != nil {
		env = env.outer
	}
	return env
}
