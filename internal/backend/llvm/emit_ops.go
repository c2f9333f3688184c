package llvm

import (
	"braid/internal/diag"
	"braid/internal/ir"
	"braid/internal/types"

	"tinygo.org/x/go-llvm"
)

func (e *Emitter) emitUnary(n *ir.Node) (llvm.Value, error) {
	if n.Op != "-" {
		return llvm.Value{}, diag.Errorf(diag.CgenUnknownUnaryOp, n.ID, "operator %q", n.Op)
	}
	t, err := e.typeOf(n.Expr.ID)
	if err != nil {
		return llvm.Value{}, err
	}
	v, err := e.emitExpr(n.Expr)
	if err != nil {
		return llvm.Value{}, err
	}
	switch t.Kind {
	case types.KindInt:
		return e.builder.CreateNeg(v, "neg"), nil
	case types.KindFloat:
		return e.builder.CreateFNeg(v, "fneg"), nil
	default:
		return llvm.Value{}, diag.Errorf(diag.CgenIncompatibleOperand, n.ID, "unary - on %s", t)
	}
}

// emitBinary handles + and * with numeric promotion: Int op Int stays
// integral; a Float on either side promotes the other side through sitofp
// and the operation goes floating-point.
func (e *Emitter) emitBinary(n *ir.Node) (llvm.Value, error) {
	if n.Op != "+" && n.Op != "*" {
		return llvm.Value{}, diag.Errorf(diag.CgenUnknownBinaryOp, n.ID, "operator %q", n.Op)
	}
	lt, err := e.typeOf(n.Lhs.ID)
	if err != nil {
		return llvm.Value{}, err
	}
	rt, err := e.typeOf(n.Rhs.ID)
	if err != nil {
		return llvm.Value{}, err
	}
	lhs, err := e.emitExpr(n.Lhs)
	if err != nil {
		return llvm.Value{}, err
	}
	rhs, err := e.emitExpr(n.Rhs)
	if err != nil {
		return llvm.Value{}, err
	}

	if lt.Kind == types.KindInt && rt.Kind == types.KindInt {
		if n.Op == "+" {
			return e.builder.CreateAdd(lhs, rhs, "add"), nil
		}
		return e.builder.CreateMul(lhs, rhs, "mul"), nil
	}
	if !lt.IsNumeric() || !rt.IsNumeric() {
		return llvm.Value{}, diag.Errorf(diag.CgenIncompatibleOperands, n.ID, "%q on %s and %s", n.Op, lt, rt)
	}
	if lt.Kind == types.KindInt {
		lhs = e.builder.CreateSIToFP(lhs, e.ctx.DoubleType(), "promote")
	}
	if rt.Kind == types.KindInt {
		rhs = e.builder.CreateSIToFP(rhs, e.ctx.DoubleType(), "promote")
	}
	if n.Op == "+" {
		return e.builder.CreateFAdd(lhs, rhs, "fadd"), nil
	}
	return e.builder.CreateFMul(lhs, rhs, "fmul"), nil
}
