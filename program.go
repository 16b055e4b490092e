package venice

import (
	"fmt"
	"os"
)

// Main is the entrypoint signature for compiled programs: the runtime hands
// it the command-line arguments as a list of string values and uses its
// return value as the process exit code.
type Main func(rt *Runtime, args *List) int

// programPanic carries a language-level panic to the Run boundary.
type programPanic struct {
	message string
}

// Run executes a program entrypoint on a fresh runtime with the process
// arguments and streams, and returns the exit code for os.Exit.
//
// Run is the program boundary for the fatal conditions: a raised
// [RuntimeError] is written to the error stream as
//
//	runtime error: <message>
//
// and a [Runtime.Panic] as
//
//	panic: <message>
//
// and either turns into exit code 1. Any other panic propagates unchanged.
func Run(main Main) int {
	return New().Run(os.Args, main)
}

// Run executes a program entrypoint with explicit arguments. argv is
// marshalled into a list of string values, argv[0] first.
func (rt *Runtime) Run(argv []string, main Main) (code int) {
	defer func() {
		switch e := recover().(type) {
		case nil:
		case *RuntimeError:
			fmt.Fprintf(rt.errOut, "%s\n", e.Error())
			code = 1
		case *programPanic:
			fmt.Fprintf(rt.errOut, "panic: %s\n", e.message)
			code = 1
		default:
			panic(e)
		}
	}()

	args := rt.NewList(uint64(len(argv)))
	for _, arg := range argv {
		args.Append(rt.StringValue(arg))
	}
	return main(rt, args)
}

// Panic aborts the program with a language-level panic: the message is
// written to the error stream and the process exit code is 1. It must be
// called beneath [Run], which implements the reporting.
func (rt *Runtime) Panic(message *StringBuffer) {
	panic(&programPanic{message: message.String()})
}
