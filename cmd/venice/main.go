package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	"golang.org/x/term"

	"github.com/venice-lang/venice"
	"github.com/venice-lang/venice/config"
	"github.com/venice-lang/venice/wasmffi"

	_ "github.com/tliron/commonlog/simple"
)

var (
	configDir string
	verbosity int
	cfg       *config.Config
)

func main() {
	root := &cobra.Command{
		Use:   "venice",
		Short: "Runtime tools for the Venice language",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if configDir != "" {
				cfg, err = config.Load(configDir)
			} else if wd, wdErr := os.Getwd(); wdErr == nil {
				cfg, err = config.FindAndLoad(wd)
			}
			if err != nil {
				return err
			}
			effective := verbosity
			if effective == 0 && cfg != nil {
				effective = cfg.Log.Verbosity
			}
			commonlog.Configure(effective, nil)
			return nil
		},
	}

	root.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase log verbosity (repeatable)")
	root.PersistentFlags().StringVar(&configDir, "config", "", "directory containing venice.toml (default: search upward from the working directory)")

	root.AddCommand(demoCommand(), callCommand(), statsCommand())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// newRuntime builds a runtime with any loaded venice.toml settings applied.
func newRuntime() *venice.Runtime {
	rt := venice.New()
	if cfg != nil {
		cfg.Apply(rt)
	}
	return rt
}

// -----------------------------------------------------------------------------
// venice demo

func demoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Exercise the runtime and print what happens",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			rt := newRuntime()
			os.Exit(rt.Run([]string{"demo"}, runDemo))
		},
	}
}

func runDemo(rt *venice.Runtime, args *venice.List) int {
	// Strings: copy construction and concatenation.
	hello := rt.NewString("Hello")
	world := rt.NewString(", world!")
	greeting := hello.Concat(world)
	rt.Println(greeting)
	hello.Destroy()
	world.Destroy()

	// Lists: amortized growth from the minimum capacity.
	numbers := rt.NewList(1)
	for i := int64(0); i < 100; i++ {
		numbers.Append(rt.IntValue(i))
	}
	fmt.Printf("appended %d integers, capacity grew to %d\n", numbers.Length(), numbers.Capacity())
	numbers.Destroy()

	// Values: a nested tree destroyed in one call. The greeting's ownership
	// moves into the tree here, so the tree destroys it too.
	tree := rt.ListValue(
		rt.IntValue(42),
		rt.WrapString(greeting),
		rt.ListValue(rt.IntValue(1), rt.IntValue(2), rt.IntValue(3)),
	)
	fmt.Println(tree.String())
	tree.Destroy()

	if term.IsTerminal(int(os.Stdin.Fd())) {
		prompt := rt.NewString("your name: ")
		name := rt.Input(prompt)
		lead := rt.NewString("nice to meet you, ")
		reply := lead.Concat(name)
		rt.Println(reply)
		reply.Destroy()
		lead.Destroy()
		name.Destroy()
		prompt.Destroy()
	}

	fmt.Println()
	printStats(rt.Stats())
	return 0
}

// -----------------------------------------------------------------------------
// venice call

func callCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "call <module.wasm> <function> [args...]",
		Short: "Call a function exported by a foreign WebAssembly module",
		Long: `Call loads a WebAssembly module and invokes one of its exported functions.

Integer-looking arguments become Integer values and everything else becomes
String values; all of them are wrapped in a single argument list, which is
what the function receives. The result value is printed and destroyed.`,
		Args: cobra.MinimumNArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			rt := newRuntime()
			code := rt.Run(args, func(rt *venice.Runtime, _ *venice.List) int {
				return runCall(cmd.Context(), rt, args[0], args[1], args[2:])
			})
			os.Exit(code)
		},
	}
}

func runCall(ctx context.Context, rt *venice.Runtime, path, name string, rawArgs []string) int {
	wasm, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	mod, err := wasmffi.Load(ctx, rt, wasm)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer mod.Close()

	list := rt.NewList(uint64(len(rawArgs)))
	for _, raw := range rawArgs {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			list.Append(rt.IntValue(n))
		} else {
			list.Append(rt.StringValue(raw))
		}
	}
	argValue := rt.WrapList(list)

	result, err := mod.Call(name, argValue)
	argValue.Destroy()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	fmt.Println(result.String())
	result.Destroy()
	return 0
}

// -----------------------------------------------------------------------------
// venice stats

func statsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Run a sample workload and print allocation statistics",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			rt := newRuntime()
			os.Exit(rt.Run([]string{"stats"}, runStats))
		},
	}
}

func runStats(rt *venice.Runtime, args *venice.List) int {
	words := rt.NewList(0)
	for i := int64(0); i < 1000; i++ {
		words.Append(rt.StringValue(strconv.FormatInt(i, 10)))
	}

	fmt.Printf("after building a %d-element list of strings:\n", words.Length())
	printStats(rt.Stats())

	rt.WrapList(words).Destroy()

	fmt.Println("\nafter destroying it:")
	printStats(rt.Stats())
	return 0
}

func printStats(stats venice.AllocStats) {
	fmt.Printf("  allocations %d\n", stats.Allocs)
	fmt.Printf("  frees       %d\n", stats.Frees)
	fmt.Printf("  live bytes  %d\n", stats.Live)
	fmt.Printf("  peak bytes  %d\n", stats.Peak)
}
