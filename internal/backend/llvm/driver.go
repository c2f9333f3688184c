package llvm

import (
	"braid/internal/diag"
	"braid/internal/ir"

	"tinygo.org/x/go-llvm"
)

// Options configures one codegen run.
type Options struct {
	// ModuleName defaults to "braidprogram".
	ModuleName string

	// Triple overrides the default host target triple.
	Triple string

	// Variant is the specialization overlay to apply, or nil for the
	// generic definitions.
	Variant *ir.Variant
}

// Module is a compiled program together with the LLVM objects that own
// it. Dispose releases everything; the module must not be used after.
type Module struct {
	Ctx     llvm.Context
	Mod     llvm.Module
	Machine llvm.TargetMachine
}

// IRText renders the module as textual LLVM IR.
func (m *Module) IRText() string {
	return m.Mod.String()
}

func (m *Module) Dispose() {
	m.Machine.Dispose()
	m.Mod.Dispose()
	m.Ctx.Dispose()
}

// Compile lowers a complete CompilerIR into an LLVM module tagged with the
// target's data layout and triple. On error every partially built object
// is released and a nil Module is returned.
func Compile(input *ir.CompilerIR, opts Options) (*Module, error) {
	if input == nil || input.Main == nil {
		return nil, diag.Errorf(diag.CgenBadInput, ir.NoNodeID, "missing main proc")
	}
	if err := initNativeTarget(); err != nil {
		return nil, err
	}

	name := opts.ModuleName
	if name == "" {
		name = "braidprogram"
	}
	triple := opts.Triple
	if triple == "" {
		triple = llvm.DefaultTargetTriple()
	}

	ctx := llvm.NewContext()
	mod := ctx.NewModule(name)
	target, err := llvm.GetTargetFromTriple(triple)
	if err != nil {
		mod.Dispose()
		ctx.Dispose()
		return nil, err
	}
	machine := target.CreateTargetMachine(triple, "generic", "",
		llvm.CodeGenLevelDefault, llvm.RelocDefault, llvm.CodeModelDefault)
	layout := machine.CreateTargetData()
	mod.SetDataLayout(layout.String())
	layout.Dispose()
	mod.SetTarget(triple)

	e := newEmitter(ctx, mod, input, opts.Variant)
	err = e.emitProgram()
	e.dispose()
	if err != nil {
		machine.Dispose()
		mod.Dispose()
		ctx.Dispose()
		return nil, err
	}
	return &Module{Ctx: ctx, Mod: mod, Machine: machine}, nil
}

// emitProgram emits the runtime prelude and the entry Proc; everything
// reachable from main follows through child-scope recursion.
func (e *Emitter) emitProgram() error {
	if err := e.emitRuntimePrelude(); err != nil {
		return err
	}
	_, err := e.emitProc(e.in.Main, "main")
	return err
}
