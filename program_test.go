package venice_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/venice-lang/venice"
)

func TestRunPassesArguments(t *testing.T) {
	rt := venice.New()

	code := rt.Run([]string{"prog", "alpha", "beta"}, func(rt *venice.Runtime, args *venice.List) int {
		if args.Length() != 3 {
			t.Errorf("expected 3 arguments, got %d", args.Length())
		}
		for i, want := range []string{"prog", "alpha", "beta"} {
			if got := args.Index(uint64(i)).Str().String(); got != want {
				t.Errorf("args[%d] = %q; want %q", i, got, want)
			}
		}
		return 7
	})

	if code != 7 {
		t.Errorf("expected exit code 7, got %d", code)
	}
}

func TestRunReportsRuntimeError(t *testing.T) {
	rt := venice.New()

	var errOut bytes.Buffer
	rt.SetErrorOutput(&errOut)

	code := rt.Run([]string{"prog"}, func(rt *venice.Runtime, args *venice.List) int {
		args.Index(99)
		return 0
	})

	if code != 1 {
		t.Errorf("expected exit code 1, got %d", code)
	}
	if errOut.String() != "runtime error: index out of bounds\n" {
		t.Errorf("expected the diagnostic line, got %q", errOut.String())
	}
}

func TestRunReportsPanic(t *testing.T) {
	rt := venice.New()

	var errOut bytes.Buffer
	rt.SetErrorOutput(&errOut)

	code := rt.Run([]string{"prog"}, func(rt *venice.Runtime, args *venice.List) int {
		message := rt.NewString("something went wrong")
		rt.Panic(message)
		return 0
	})

	if code != 1 {
		t.Errorf("expected exit code 1, got %d", code)
	}
	if errOut.String() != "panic: something went wrong\n" {
		t.Errorf("expected the panic line, got %q", errOut.String())
	}
}

func TestRunPropagatesOtherPanics(t *testing.T) {
	rt := venice.New()

	defer func() {
		if r := recover(); r != "not ours" {
			t.Errorf("expected the foreign panic to propagate, got %v", r)
		}
	}()

	rt.Run([]string{"prog"}, func(rt *venice.Runtime, args *venice.List) int {
		panic("not ours")
	})
	t.Error("expected the panic to escape Run")
}

func TestRunMemoryLimitAsProgramBoundary(t *testing.T) {
	rt := venice.New()
	// Roomy enough for the marshalled argv, far too small for the program.
	rt.SetMemoryLimit(1024)

	var errOut bytes.Buffer
	rt.SetErrorOutput(&errOut)

	code := rt.Run([]string{"p"}, func(rt *venice.Runtime, args *venice.List) int {
		rt.NewString(strings.Repeat("x", 2048))
		return 0
	})

	if code != 1 {
		t.Errorf("expected exit code 1, got %d", code)
	}
	if errOut.String() != "runtime error: out of memory\n" {
		t.Errorf("expected the out-of-memory line, got %q", errOut.String())
	}
}
