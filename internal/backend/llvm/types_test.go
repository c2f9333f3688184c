package llvm

import (
	"errors"
	"testing"

	"tinygo.org/x/go-llvm"

	"braid/internal/diag"
	"braid/internal/ir"
	"braid/internal/types"
)

// newTestModule builds the context/module/machine triple the driver
// normally assembles, for tests that drive the emitter directly.
func newTestModule(name string) (llvm.Context, llvm.Module, llvm.TargetMachine, error) {
	if err := initNativeTarget(); err != nil {
		return llvm.Context{}, llvm.Module{}, llvm.TargetMachine{}, err
	}
	triple := llvm.DefaultTargetTriple()
	ctx := llvm.NewContext()
	mod := ctx.NewModule(name)
	target, err := llvm.GetTargetFromTriple(triple)
	if err != nil {
		mod.Dispose()
		ctx.Dispose()
		return llvm.Context{}, llvm.Module{}, llvm.TargetMachine{}, err
	}
	machine := target.CreateTargetMachine(triple, "generic", "",
		llvm.CodeGenLevelDefault, llvm.RelocDefault, llvm.CodeModelDefault)
	mod.SetTarget(triple)
	return ctx, mod, machine, nil
}

func TestLowerScalarTypes(t *testing.T) {
	ctx, mod, machine, err := newTestModule("lower_scalars")
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

	cases := []struct {
		src  *types.Type
		want llvm.TypeKind
	}{
		{types.Int(), llvm.IntegerTypeKind},
		{types.Float(), llvm.DoubleTypeKind},
		{types.Fun(nil, types.Int()), llvm.StructTypeKind},
		{types.Code(types.Int()), llvm.StructTypeKind},
	}
	for _, tc := range cases {
		lowered, err := e.lowerType(tc.src, ir.NoNodeID)
		if err != nil {
			t.Fatalf("lowerType(%s): %v", tc.src, err)
		}
		if lowered.TypeKind() != tc.want {
			t.Errorf("lowerType(%s) kind = %v, want %v", tc.src, lowered.TypeKind(), tc.want)
		}
	}
	if lowered, err := e.lowerType(types.Int(), ir.NoNodeID); err == nil {
		if width := lowered.IntTypeWidth(); width != 32 {
			t.Errorf("Int lowers to i%d, want i32", width)
		}
	}
}

func TestLowerRejectsUnsupported(t *testing.T) {
	ctx, mod, machine, err := newTestModule("lower_unsupported")
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

	for _, src := range []*types.Type{
		types.Any(),
		types.Void(),
		types.Parameterized("T"),
		types.Instance("Vec", types.Int()),
	} {
		_, err := e.lowerType(src, ir.NoNodeID)
		if err == nil {
			t.Errorf("lowerType(%s) succeeded, want UnsupportedType", src)
			continue
		}
		var cgErr *diag.Error
		if !errors.As(err, &cgErr) || cgErr.Code != diag.CgenUnsupportedType {
			t.Errorf("lowerType(%s) error = %v, want UnsupportedType", src, err)
		}
	}
}

func TestEnvStructLayoutFollowsDeclarationOrder(t *testing.T) {
	ctx, mod, machine, err := newTestModule("env_layout")
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		machine.Dispose()
		mod.Dispose()
		ctx.Dispose()
	}()

	b := ir.NewBuilder()
	a := b.Bind("a", types.Int())
	f := b.Bind("f", types.Float())
	e := newEmitter(ctx, mod, b.IR(), nil)
	defer e.dispose()

	envTy, err := e.envStructType([]ir.NodeID{a, f})
	if err != nil {
		t.Fatal(err)
	}
	elems := envTy.StructElementTypes()
	if len(elems) != 2 {
		t.Fatalf("env struct has %d fields, want 2", len(elems))
	}
	if elems[0].TypeKind() != llvm.IntegerTypeKind || elems[1].TypeKind() != llvm.DoubleTypeKind {
		t.Errorf("env fields out of declaration order: %v, %v", elems[0].TypeKind(), elems[1].TypeKind())
	}
	if !envTy.IsStructPacked() {
		t.Error("env struct is not packed")
	}

	empty, err := e.envStructType(nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := len(empty.StructElementTypes()); got != 0 {
		t.Errorf("empty env struct has %d fields", got)
	}
}
