package llvm

import (
	"braid/internal/diag"
	"braid/internal/ir"

	"tinygo.org/x/go-llvm"
)

type runtimeDecl struct {
	name   string
	ret    llvm.Type
	params []llvm.Type
}

// runtimeDecls lists the extern WebGL runtime functions with their real C
// signatures. The linker supplies the definitions.
func (e *Emitter) runtimeDecls() []runtimeDecl {
	i8p := e.i8Ptr()
	i32 := e.ctx.Int32Type()
	void := e.ctx.VoidType()
	return []runtimeDecl{
		{name: "mesh_indices", ret: i32, params: []llvm.Type{i8p}},
		{name: "mesh_positions", ret: i32, params: []llvm.Type{i8p}},
		{name: "mesh_normals", ret: i32, params: []llvm.Type{i8p}},
		{name: "get_shader", ret: i32, params: []llvm.Type{i8p, i8p}},
		{name: "draw_mesh", ret: void, params: []llvm.Type{i32, i32}},
		{name: "print_mesh", ret: void, params: []llvm.Type{i8p}},
		{name: "gl_buffer", ret: i32, params: []llvm.Type{i32, i8p, i8p}},
		{name: "detect_error", ret: void, params: nil},
		{name: "load_obj", ret: i8p, params: []llvm.Type{i8p, i8p}},
		{name: "create_window", ret: i8p, params: nil},
	}
}

// emitRuntimePrelude declares every runtime function and defines its
// <name>_wrapper: the same signature with a trailing i8* environment the
// wrapper ignores. Wrappers give extern calls the closure calling
// convention, so closures and runtime calls are indistinguishable at call
// sites. Idempotent.
func (e *Emitter) emitRuntimePrelude() error {
	if e.preludeDone {
		return nil
	}
	e.preludeDone = true
	for _, decl := range e.runtimeDecls() {
		realTy := llvm.FunctionType(decl.ret, decl.params, false)
		real := llvm.AddFunction(e.mod, decl.name, realTy)

		wrapParams := make([]llvm.Type, 0, len(decl.params)+1)
		wrapParams = append(wrapParams, decl.params...)
		wrapParams = append(wrapParams, e.i8Ptr())
		wrapTy := llvm.FunctionType(decl.ret, wrapParams, false)
		wrap := llvm.AddFunction(e.mod, decl.name+"_wrapper", wrapTy)
		wrap.Param(len(decl.params)).SetName("env")

		entry := e.ctx.AddBasicBlock(wrap, "entry")
		wb := e.ctx.NewBuilder()
		wb.SetInsertPointAtEnd(entry)
		args := make([]llvm.Value, len(decl.params))
		for i := range decl.params {
			args[i] = wrap.Param(i)
		}
		forwarded := wb.CreateCall(realTy, real, args, "")
		if decl.ret.TypeKind() == llvm.VoidTypeKind {
			wb.CreateRetVoid()
		} else {
			wb.CreateRet(forwarded)
		}
		wb.Dispose()

		e.wrapperTys[decl.name] = wrapTy
	}
	return nil
}

// wrapper resolves the uniform-convention entry for an extern symbol.
func (e *Emitter) wrapper(name string, node ir.NodeID) (llvm.Value, llvm.Type, error) {
	wrapTy, ok := e.wrapperTys[name]
	if !ok {
		return llvm.Value{}, llvm.Type{}, diag.Errorf(diag.CgenBadInput, node, "extern %q is not a runtime function", name)
	}
	fn := e.mod.NamedFunction(name + "_wrapper")
	if fn.IsNil() {
		return llvm.Value{}, llvm.Type{}, diag.Errorf(diag.CgenBadInput, node, "runtime prelude missing wrapper for %q", name)
	}
	return fn, wrapTy, nil
}
