package wasmffi

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tliron/commonlog"

	"github.com/venice-lang/venice"
)

var log = commonlog.GetLogger("venice.wasmffi")

// instance names must be unique per wazero runtime; a counter suffix keeps
// them so.
var (
	instanceMu sync.Mutex
	instanceID uint64
)

func nextInstanceName() string {
	instanceMu.Lock()
	defer instanceMu.Unlock()
	instanceID++
	return fmt.Sprintf("venice_ffi_%d", instanceID)
}

// Module is a foreign module instantiated from WebAssembly bytes. Its
// exported functions are called through [Module.Call] following the
// one-value-in, one-value-out convention; results are decoded into values
// owned by the host runtime.
//
//	wasm, _ := os.ReadFile("extension.wasm")
//	mod, err := wasmffi.Load(ctx, rt, wasm)
//	if err != nil {
//	    return err
//	}
//	defer mod.Close()
//
//	args := rt.ListValue(rt.IntValue(21))
//	result, err := mod.Call("double_it", args)
//	args.Destroy()
type Module struct {
	rt       *venice.Runtime
	ctx      context.Context
	wruntime wazero.Runtime
	module   api.Module
	memory   api.Memory
	alloc    api.Function
}

// Load compiles and instantiates a foreign module. The module must export
// a linear memory and the venice_alloc allocator; see the package
// documentation for the full guest contract.
func Load(ctx context.Context, rt *venice.Runtime, wasm []byte) (*Module, error) {
	wruntime := wazero.NewRuntime(ctx)

	compiled, err := wruntime.CompileModule(ctx, wasm)
	if err != nil {
		wruntime.Close(ctx)
		return nil, fmt.Errorf("compile foreign module: %w", err)
	}

	name := nextInstanceName()
	module, err := wruntime.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName(name))
	if err != nil {
		wruntime.Close(ctx)
		return nil, fmt.Errorf("instantiate foreign module: %w", err)
	}

	memory := module.Memory()
	if memory == nil {
		wruntime.Close(ctx)
		return nil, fmt.Errorf("foreign module exports no memory")
	}
	alloc := module.ExportedFunction("venice_alloc")
	if alloc == nil {
		wruntime.Close(ctx)
		return nil, fmt.Errorf("foreign module exports no venice_alloc")
	}

	log.Infof("loaded foreign module %s (%d bytes of wasm)", name, len(wasm))
	return &Module{
		rt:       rt,
		ctx:      ctx,
		wruntime: wruntime,
		module:   module,
		memory:   memory,
		alloc:    alloc,
	}, nil
}

// Close releases all resources associated with the module.
func (m *Module) Close() error {
	return m.wruntime.Close(m.ctx)
}

// Functions returns the names of the module's exported functions, sorted.
// The venice_alloc allocator is part of the guest contract and excluded.
func (m *Module) Functions() []string {
	var names []string
	for name := range m.module.ExportedFunctionDefinitions() {
		if name == "venice_alloc" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// allocate places size bytes in guest memory through venice_alloc.
func (m *Module) allocate(size uint32) (uint32, error) {
	results, err := m.alloc.Call(m.ctx, uint64(size))
	if err != nil {
		return 0, fmt.Errorf("venice_alloc: %w", err)
	}
	if len(results) == 0 {
		return 0, fmt.Errorf("venice_alloc returned no results")
	}
	offset := uint32(results[0])
	if offset == 0 {
		return 0, fmt.Errorf("venice_alloc returned null for %d bytes", size)
	}
	return offset, nil
}

// Call invokes an exported foreign function with one argument value.
//
// The argument is encoded into guest memory as a copy: the caller keeps
// ownership of args and destroys it after the call, per the convention.
// The result is decoded into a fresh host value owned by the caller.
func (m *Module) Call(name string, args venice.Value) (venice.Value, error) {
	fn := m.module.ExportedFunction(name)
	if fn == nil {
		return venice.Value{}, fmt.Errorf("function %q not exported", name)
	}

	argOffset, err := EncodeValue(m.memory, m.allocate, args)
	if err != nil {
		return venice.Value{}, fmt.Errorf("encode argument for %s: %w", name, err)
	}

	log.Debugf("call %s(%#x)", name, argOffset)
	results, err := fn.Call(m.ctx, uint64(argOffset))
	if err != nil {
		return venice.Value{}, fmt.Errorf("call %s: %w", name, err)
	}
	if len(results) == 0 {
		return venice.Value{}, fmt.Errorf("%s returned no results", name)
	}

	result, err := DecodeValue(m.rt, m.memory, uint32(results[0]))
	if err != nil {
		return venice.Value{}, fmt.Errorf("decode result of %s: %w", name, err)
	}
	return result, nil
}
