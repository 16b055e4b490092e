package venice

import (
	"fmt"
	"sort"
)

// ForeignFunc is the calling convention for native extension functions:
// exactly one value in, exactly one value out. No other signature shape is
// supported. By convention the argument is a list of the call's arguments.
//
// Ownership at the boundary: the callee never owns the argument value (the
// caller destroys it after the call returns), and the callee transfers
// ownership of the returned value to the caller.
type ForeignFunc func(rt *Runtime, args Value) Value

// RegisterForeign binds a foreign function under a name. Registering the
// same name again replaces the previous binding.
//
//	rt.RegisterForeign("return42", venice.Return42)
//	result, err := rt.CallForeign("return42", args)
func (rt *Runtime) RegisterForeign(name string, fn ForeignFunc) {
	rt.foreign[name] = fn
}

// ForeignFuncs returns the names of all registered foreign functions,
// sorted.
func (rt *Runtime) ForeignFuncs() []string {
	names := make([]string, 0, len(rt.foreign))
	for name := range rt.foreign {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CallForeign invokes a registered foreign function following the
// convention: the caller retains ownership of args and must destroy it
// after the call; the returned value is owned by the caller.
func (rt *Runtime) CallForeign(name string, args Value) (Value, error) {
	fn, ok := rt.foreign[name]
	if !ok {
		return Value{}, fmt.Errorf("unknown foreign function %q", name)
	}
	return fn(rt, args), nil
}

// -----------------------------------------------------------------------------
// Example Foreign Functions
// -----------------------------------------------------------------------------

// Return42 ignores its arguments and returns the integer 42.
func Return42(rt *Runtime, args Value) Value {
	return rt.IntValue(42)
}

// DoubleIt returns twice its first argument.
func DoubleIt(rt *Runtime, args Value) Value {
	return rt.IntValue(args.List().Index(0).Int() * 2)
}

// Return42String ignores its arguments and returns the string "42".
func Return42String(rt *Runtime, args Value) Value {
	return rt.StringValue("42")
}

// RegisterExamples binds the example foreign functions under their
// conventional names: "return42", "double_it" and "return42string".
func RegisterExamples(rt *Runtime) {
	rt.RegisterForeign("return42", Return42)
	rt.RegisterForeign("double_it", DoubleIt)
	rt.RegisterForeign("return42string", Return42String)
}
