// Package venice is the runtime support library for the Venice language.
//
// # Overview
//
// Compiled Venice programs and foreign (native) extension functions call
// into this package for memory allocation, string handling, growable
// lists, and the tagged value representation that crosses the foreign
// function boundary. It provides:
//
//   - An allocation guard that meters every runtime-owned buffer and
//     fails fast on exhaustion
//   - An owned, length-tagged, null-terminated string buffer
//   - An owned, amortized-doubling list
//   - A flat, closed tagged value over {integer, string, list}
//   - A one-value-in, one-value-out foreign calling convention
//
// # Quick Start
//
//	import "github.com/venice-lang/venice"
//
//	func main() {
//	    os.Exit(venice.Run(func(rt *venice.Runtime, args *venice.List) int {
//	        hello := rt.NewString("Hello")
//	        world := rt.NewString(", world!")
//	        greeting := hello.Concat(world)
//	        rt.Println(greeting) // "Hello, world!"
//
//	        greeting.Destroy()
//	        world.Destroy()
//	        hello.Destroy()
//	        return 0
//	    }))
//	}
//
// # Ownership
//
// Every heap buffer is owned by exactly one entity at a time. Construction
// is either copying (the source stays with the caller) or transferring
// (the buffer is adopted and the caller must not touch it again); the two
// are always separate operations, never flags. Appending a value to a list
// and wrapping a buffer in a value are transfers. Destruction is explicit
// and recursive: destroying a value releases everything it transitively
// owns, depth-first. There is no garbage collection of runtime-owned
// buffers; a value nobody destroys stays allocated until the process
// exits, which is accepted runtime behavior.
//
// # Errors
//
// The runtime has no recoverable-error channel. A failed allocation, an
// out-of-range list index, or a failed read raises a *[RuntimeError] by
// panicking; [Run] recovers it at the program boundary, writes
//
//	runtime error: <message>
//
// to the error stream, and returns exit code 1. Misusing the API (reading
// the wrong value arm, using a buffer after destroying it) panics with a
// plain string instead: those are bugs in the caller, not runtime
// conditions.
//
// # Foreign Functions
//
// A foreign function receives one value, conventionally a list of
// arguments, and returns one newly constructed value:
//
//	rt.RegisterForeign("double_it", func(rt *venice.Runtime, args venice.Value) venice.Value {
//	    return rt.IntValue(args.List().Index(0).Int() * 2)
//	})
//
//	args := rt.ListValue(rt.IntValue(21))
//	result, _ := rt.CallForeign("double_it", args)
//	result.Int() // 42
//	result.Destroy()
//	args.Destroy()
//
// The caller keeps ownership of the argument value and receives ownership
// of the result. Foreign functions hosted in WebAssembly modules follow
// the same convention through the wasmffi package.
package venice
