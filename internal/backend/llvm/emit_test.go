package llvm

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"braid/internal/diag"
	"braid/internal/ir"
	"braid/internal/types"
)

func compile(t *testing.T, input *ir.CompilerIR, opts Options) *Module {
	t.Helper()
	mod, err := Compile(input, opts)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	t.Cleanup(mod.Dispose)
	return mod
}

func wantCgenError(t *testing.T, input *ir.CompilerIR, code diag.Code) {
	t.Helper()
	mod, err := Compile(input, Options{})
	if err == nil {
		mod.Dispose()
		t.Fatalf("Compile succeeded, want %s", code)
	}
	var cgErr *diag.Error
	if !errors.As(err, &cgErr) {
		t.Fatalf("Compile error %v is not a diag.Error", err)
	}
	if cgErr.Code != code {
		t.Fatalf("Compile error code = %s, want %s", cgErr.Code, code)
	}
}

func TestMainReturnsIntLiteral(t *testing.T) {
	b := ir.NewBuilder()
	input := b.Main(nil, nil, b.IntLit(42))

	mod := compile(t, input, Options{})
	text := mod.IRText()
	if !strings.Contains(text, "i32 42") {
		t.Errorf("module does not return i32 42:\n%s", text)
	}
	main := mod.Mod.NamedFunction("main")
	if main.IsNil() {
		t.Fatal("missing main")
	}
	if got := main.ParamsCount(); got != 1 {
		t.Errorf("main arity = %d, want 1 (env only)", got)
	}
}

func TestLetLoadAdd(t *testing.T) {
	b := ir.NewBuilder()
	x := b.Bind("x", types.Int())
	body := b.Seq(
		b.Let(x, b.IntLit(3)),
		b.Binary("+", b.Use(x), b.IntLit(4), types.Int()),
	)
	input := b.Main([]ir.NodeID{x}, nil, body)

	mod := compile(t, input, Options{})
	text := mod.IRText()
	for _, want := range []string{"alloca i32", "store i32 3", "add i32 %x1, 4", "add"} {
		if !strings.Contains(text, want) {
			t.Errorf("module missing %q:\n%s", want, text)
		}
	}
}

func TestProcCallThroughClosure(t *testing.T) {
	b := ir.NewBuilder()
	funTy := types.Fun([]*types.Type{types.Int()}, types.Int())

	x := b.Bind("x", types.Int())
	procBody := b.Binary("*", b.Use(x), b.IntLit(2), types.Int())
	proc := b.DefProc([]ir.NodeID{x}, nil, nil, nil, procBody)

	f := b.Bind("f", funTy)
	body := b.Seq(
		b.Let(f, b.FunRef(proc, funTy)),
		b.Call(b.Use(f), []*ir.Node{b.IntLit(5)}, types.Int()),
	)
	input := b.Main([]ir.NodeID{f}, []ir.ScopeID{proc}, body)

	mod := compile(t, input, Options{})
	fn := mod.Mod.NamedFunction(ir.SymbolName(proc, false))
	if fn.IsNil() {
		t.Fatalf("missing %s", ir.SymbolName(proc, false))
	}
	if got := fn.ParamsCount(); got != 2 {
		t.Errorf("proc arity = %d, want 2 (param + env)", got)
	}
	text := mod.IRText()
	if !strings.Contains(text, "mul") {
		t.Errorf("proc body lost the multiply:\n%s", text)
	}
	if !strings.Contains(text, "i32 5") {
		t.Errorf("call site lost the argument:\n%s", text)
	}
}

func TestFreeVariableCapture(t *testing.T) {
	b := ir.NewBuilder()
	funTy := types.Fun([]*types.Type{types.Int()}, types.Int())

	y := b.Bind("y", types.Int())
	x := b.Bind("x", types.Int())
	procBody := b.Binary("+", b.Use(x), b.Use(y), types.Int())
	proc := b.DefProc([]ir.NodeID{x}, []ir.NodeID{y}, nil, nil, procBody)

	f := b.Bind("f", funTy)
	body := b.Seq(
		b.Let(y, b.IntLit(2)),
		b.Seq(
			b.Let(f, b.FunRef(proc, funTy)),
			b.Call(b.Use(f), []*ir.Node{b.IntLit(3)}, types.Int()),
		),
	)
	input := b.Main([]ir.NodeID{y, f}, []ir.ScopeID{proc}, body)

	mod := compile(t, input, Options{})
	text := mod.IRText()
	// The callee copies its captured y out of the environment struct.
	if !strings.Contains(text, "y_cap") {
		t.Errorf("captured variable never read from env struct:\n%s", text)
	}
}

func TestRunQuotedFloatAdd(t *testing.T) {
	b := ir.NewBuilder()
	codeTy := types.Code(types.Float())

	progBody := b.Binary("+", b.FloatLit(1.0), b.FloatLit(2.0), types.Float())
	prog := b.DefProg(nil, nil, nil, progBody)

	body := b.Run(b.QuoteRef(prog, codeTy), types.Float())
	input := b.Main(nil, []ir.ScopeID{prog}, body)

	mod := compile(t, input, Options{})
	fn := mod.Mod.NamedFunction(ir.SymbolName(prog, true))
	if fn.IsNil() {
		t.Fatalf("missing %s", ir.SymbolName(prog, true))
	}
	if got := fn.ParamsCount(); got != 1 {
		t.Errorf("prog arity = %d, want 1 (env only)", got)
	}
	// Both operands are constants, so the builder folds the add.
	if !strings.Contains(mod.IRText(), "ret double 3.000000e+00") {
		t.Errorf("quoted body does not return 1.0 + 2.0:\n%s", mod.IRText())
	}
}

func TestRuntimePreludeDeclaredWithWrappers(t *testing.T) {
	b := ir.NewBuilder()
	input := b.Main(nil, nil, b.Root(b.IntLit(0)))

	mod := compile(t, input, Options{})
	names := []string{
		"mesh_indices", "mesh_positions", "mesh_normals", "get_shader",
		"draw_mesh", "print_mesh", "gl_buffer", "detect_error",
		"load_obj", "create_window",
	}
	for _, name := range names {
		if mod.Mod.NamedFunction(name).IsNil() {
			t.Errorf("missing declaration %s", name)
		}
		wrap := mod.Mod.NamedFunction(name + "_wrapper")
		if wrap.IsNil() {
			t.Errorf("missing wrapper %s_wrapper", name)
			continue
		}
		if wrap.ParamsCount() != mod.Mod.NamedFunction(name).ParamsCount()+1 {
			t.Errorf("%s_wrapper arity is not real arity + 1", name)
		}
	}
}

func TestExternCallGoesThroughWrapper(t *testing.T) {
	b := ir.NewBuilder()
	drawTy := types.Fun([]*types.Type{types.Int(), types.Int()}, types.Int())
	draw := b.BindExtern("draw_mesh", drawTy)
	call := b.Call(b.Use(draw), []*ir.Node{b.IntLit(1), b.IntLit(2)}, types.Int())
	body := b.Root(b.Seq(call, b.IntLit(0)))
	input := b.Main(nil, nil, body)

	mod := compile(t, input, Options{})
	text := mod.IRText()
	if !strings.Contains(text, "draw_mesh_wrapper") {
		t.Errorf("extern call does not use the wrapper:\n%s", text)
	}
}

func TestNumericPromotion(t *testing.T) {
	cases := []struct {
		name      string
		lhs, rhs  func(b *ir.Builder) *ir.Node
		resultTy  *types.Type
		wantOps   []string
		rejectOps []string
	}{
		{
			name:     "int plus float promotes left",
			lhs:      func(b *ir.Builder) *ir.Node { return b.IntLit(1) },
			rhs:      func(b *ir.Builder) *ir.Node { return b.FloatLit(2.0) },
			resultTy: types.Float(),
			wantOps:  []string{"sitofp", "fadd"},
		},
		{
			name:     "float plus int promotes right",
			lhs:      func(b *ir.Builder) *ir.Node { return b.FloatLit(2.0) },
			rhs:      func(b *ir.Builder) *ir.Node { return b.IntLit(1) },
			resultTy: types.Float(),
			wantOps:  []string{"sitofp", "fadd"},
		},
		{
			name:      "int plus int stays integral",
			lhs:       func(b *ir.Builder) *ir.Node { return b.IntLit(1) },
			rhs:       func(b *ir.Builder) *ir.Node { return b.IntLit(2) },
			resultTy:  types.Int(),
			wantOps:   []string{"add"},
			rejectOps: []string{"sitofp", "fadd"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := ir.NewBuilder()
			// Operands pass through let-bound slots; constant operands
			// would be folded by the builder and hide the instructions.
			lhs, rhs := tc.lhs(b), tc.rhs(b)
			l := b.Bind("l", b.IR().TypeOf(lhs.ID))
			r := b.Bind("r", b.IR().TypeOf(rhs.ID))
			body := b.Seq(b.Let(l, lhs), b.Seq(b.Let(r, rhs),
				b.Binary("+", b.Use(l), b.Use(r), tc.resultTy)))
			input := b.Main([]ir.NodeID{l, r}, nil, body)

			mod := compile(t, input, Options{})
			text := mod.IRText()
			for _, op := range tc.wantOps {
				if !strings.Contains(text, op) {
					t.Errorf("missing %q:\n%s", op, text)
				}
			}
			for _, op := range tc.rejectOps {
				if strings.Contains(text, op) {
					t.Errorf("unexpected %q:\n%s", op, text)
				}
			}
		})
	}
}

func TestUnaryNegation(t *testing.T) {
	t.Run("float", func(t *testing.T) {
		b := ir.NewBuilder()
		// A let-bound operand keeps the builder from folding the negation.
		v := b.Bind("v", types.Float())
		body := b.Seq(b.Let(v, b.FloatLit(1.5)), b.Unary("-", b.Use(v), types.Float()))
		input := b.Main([]ir.NodeID{v}, nil, body)
		mod := compile(t, input, Options{})
		if !strings.Contains(mod.IRText(), "fneg") {
			t.Errorf("missing fneg:\n%s", mod.IRText())
		}
	})
	t.Run("code operand rejected", func(t *testing.T) {
		b := ir.NewBuilder()
		codeTy := types.Code(types.Int())
		prog := b.DefProg(nil, nil, nil, b.IntLit(1))
		input := b.Main(nil, []ir.ScopeID{prog},
			b.Unary("-", b.QuoteRef(prog, codeTy), codeTy))
		wantCgenError(t, input, diag.CgenIncompatibleOperand)
	})
}

func TestErrorTaxonomy(t *testing.T) {
	cases := []struct {
		name  string
		build func() *ir.CompilerIR
		code  diag.Code
	}{
		{
			name: "unsupported type",
			build: func() *ir.CompilerIR {
				b := ir.NewBuilder()
				return b.Main(nil, nil, b.StringLit("s", types.Any()))
			},
			code: diag.CgenUnsupportedType,
		},
		{
			name: "unknown binary op",
			build: func() *ir.CompilerIR {
				b := ir.NewBuilder()
				return b.Main(nil, nil, b.Binary("/", b.IntLit(1), b.IntLit(2), types.Int()))
			},
			code: diag.CgenUnknownBinaryOp,
		},
		{
			name: "unknown unary op",
			build: func() *ir.CompilerIR {
				b := ir.NewBuilder()
				return b.Main(nil, nil, b.Unary("!", b.IntLit(1), types.Int()))
			},
			code: diag.CgenUnknownUnaryOp,
		},
		{
			name: "incompatible operands",
			build: func() *ir.CompilerIR {
				b := ir.NewBuilder()
				funTy := types.Fun(nil, types.Int())
				proc := b.DefProc(nil, nil, nil, nil, b.IntLit(1))
				return b.Main(nil, []ir.ScopeID{proc},
					b.Binary("+", b.FunRef(proc, funTy), b.IntLit(1), types.Int()))
			},
			code: diag.CgenIncompatibleOperands,
		},
		{
			name: "if not implemented",
			build: func() *ir.CompilerIR {
				b := ir.NewBuilder()
				return b.Main(nil, nil, b.Raw(ir.ExprIf, types.Int()))
			},
			code: diag.CgenNotImplemented,
		},
		{
			name: "unknown variable",
			build: func() *ir.CompilerIR {
				b := ir.NewBuilder()
				x := b.Bind("x", types.Int())
				// x is never listed in bound, so it has no slot.
				return b.Main(nil, nil, b.Use(x))
			},
			code: diag.CgenUnknownVariable,
		},
		{
			name: "persist rejected",
			build: func() *ir.CompilerIR {
				b := ir.NewBuilder()
				input := b.Main(nil, nil, b.IntLit(1))
				input.Main.Persist = []ir.NodeID{b.Bind("p", types.Int())}
				return input
			},
			code: diag.CgenNotImplemented,
		},
		{
			name: "extern lookup outside call",
			build: func() *ir.CompilerIR {
				b := ir.NewBuilder()
				winTy := types.Fun(nil, types.Int())
				win := b.BindExtern("create_window", winTy)
				return b.Main(nil, nil, b.Root(b.Use(win)))
			},
			code: diag.CgenNotImplemented,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			wantCgenError(t, tc.build(), tc.code)
		})
	}
}

func TestUnknownScopeInVariantAndBase(t *testing.T) {
	b := ir.NewBuilder()
	input := b.Main(nil, []ir.ScopeID{99}, b.IntLit(1))
	wantCgenError(t, input, diag.CgenUnknownScope)
}

func TestVariantOverridesScopeBody(t *testing.T) {
	b := ir.NewBuilder()
	funTy := types.Fun([]*types.Type{types.Int()}, types.Int())

	x := b.Bind("x", types.Int())
	proc := b.DefProc([]ir.NodeID{x}, nil, nil, nil,
		b.Binary("*", b.Use(x), b.IntLit(2), types.Int()))

	f := b.Bind("f", funTy)
	body := b.Seq(
		b.Let(f, b.FunRef(proc, funTy)),
		b.Call(b.Use(f), []*ir.Node{b.IntLit(5)}, types.Int()),
	)
	input := b.Main([]ir.NodeID{f}, []ir.ScopeID{proc}, body)

	// The specialized body adds instead of multiplying.
	x2 := b.Bind("x", types.Int())
	specBody := b.Binary("+", b.Use(x2), b.IntLit(2), types.Int())
	variant := &ir.Variant{
		Name: "fast",
		Procs: map[ir.ScopeID]*ir.Proc{
			proc: {
				Scope:  ir.Scope{ID: proc, Body: specBody},
				Params: []ir.NodeID{x2},
			},
		},
	}

	generic := compile(t, input, Options{})
	if !strings.Contains(generic.IRText(), "mul") {
		t.Errorf("generic build lost the multiply:\n%s", generic.IRText())
	}

	specialized := compile(t, input, Options{Variant: variant})
	text := specialized.IRText()
	if strings.Contains(text, "mul") {
		t.Errorf("variant build still multiplies:\n%s", text)
	}
	// Symbol naming is id-driven and must not change under a variant.
	if specialized.Mod.NamedFunction(ir.SymbolName(proc, false)).IsNil() {
		t.Errorf("variant build renamed %s", ir.SymbolName(proc, false))
	}
}

func TestCompileTwiceSameSymbols(t *testing.T) {
	build := func() *ir.CompilerIR {
		b := ir.NewBuilder()
		funTy := types.Fun([]*types.Type{types.Int()}, types.Int())
		x := b.Bind("x", types.Int())
		proc := b.DefProc([]ir.NodeID{x}, nil, nil, nil,
			b.Binary("*", b.Use(x), b.IntLit(2), types.Int()))
		f := b.Bind("f", funTy)
		body := b.Seq(
			b.Let(f, b.FunRef(proc, funTy)),
			b.Call(b.Use(f), []*ir.Node{b.IntLit(5)}, types.Int()),
		)
		return b.Main([]ir.NodeID{f}, []ir.ScopeID{proc}, body)
	}

	first := compile(t, build(), Options{})
	second := compile(t, build(), Options{})
	for _, name := range []string{"main", "proc1"} {
		a := first.Mod.NamedFunction(name)
		b := second.Mod.NamedFunction(name)
		if a.IsNil() || b.IsNil() {
			t.Fatalf("symbol %s missing from a build", name)
		}
		if a.ParamsCount() != b.ParamsCount() {
			t.Errorf("symbol %s arity differs across builds", name)
		}
	}
}

func TestScopeFrameRestoreOnFailure(t *testing.T) {
	b := ir.NewBuilder()
	// Body fails mid-emission: the binary's right operand is typed Any,
	// which is not numeric.
	bad := b.Binary("+", b.IntLit(1), b.StringLit("s", types.Any()), types.Int())
	input := b.Main(nil, nil, bad)

	if err := initNativeTarget(); err != nil {
		t.Fatal(err)
	}
	ctx, mod, machine, err := newTestModule("frame_restore")
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		machine.Dispose()
		mod.Dispose()
		ctx.Dispose()
	}()

	e := newEmitter(ctx, mod, input, nil)
	defer e.dispose()
	outerBuilder := e.builder
	outerNamed := reflect.ValueOf(e.named).Pointer()

	if _, err := e.emitProc(input.Main, "main"); err == nil {
		t.Fatal("emitProc succeeded, want failure")
	}
	if e.builder != outerBuilder {
		t.Error("builder not restored after failed scope emission")
	}
	if reflect.ValueOf(e.named).Pointer() != outerNamed {
		t.Error("named_values not restored after failed scope emission")
	}
}

func TestClosureLoweringShape(t *testing.T) {
	if err := initNativeTarget(); err != nil {
		t.Fatal(err)
	}
	ctx, mod, machine, err := newTestModule("closure_shape")
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		machine.Dispose()
		mod.Dispose()
		ctx.Dispose()
	}()
	e := newEmitter(ctx, mod, ir.NewBuilder().IR(), nil)
	defer e.dispose()

	cases := []*types.Type{
		types.Fun([]*types.Type{types.Int()}, types.Int()),
		types.Code(types.Float()),
	}
	for _, srcTy := range cases {
		lowered, err := e.lowerType(srcTy, ir.NoNodeID)
		if err != nil {
			t.Fatalf("lowerType(%s): %v", srcTy, err)
		}
		elems := lowered.StructElementTypes()
		if len(elems) != 2 {
			t.Fatalf("closure for %s has %d fields, want 2", srcTy, len(elems))
		}
		if !lowered.IsStructPacked() {
			t.Errorf("closure for %s is not packed", srcTy)
		}
	}
}
