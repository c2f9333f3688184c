package llvm

import (
	"braid/internal/diag"
	"braid/internal/ir"
	"braid/internal/types"

	"tinygo.org/x/go-llvm"
)

// emitExpr compiles one expression node into an LLVM value in the current
// scope's builder.
func (e *Emitter) emitExpr(n *ir.Node) (llvm.Value, error) {
	if n == nil {
		return llvm.Value{}, diag.Errorf(diag.CgenBadInput, ir.NoNodeID, "nil expression node")
	}
	switch n.Kind {
	case ir.ExprLiteralInt:
		return llvm.ConstInt(e.ctx.Int32Type(), uint64(n.Int), true), nil
	case ir.ExprLiteralFloat:
		return llvm.ConstFloat(e.ctx.DoubleType(), n.Float), nil
	case ir.ExprLiteralString:
		// Defined but dead: the runtime has no string operations yet.
		return e.builder.CreateGlobalStringPtr(n.Str, "str"), nil
	case ir.ExprSeq:
		return e.emitSeq(n)
	case ir.ExprLet:
		return e.emitStore(n, n.Target, false)
	case ir.ExprAssign:
		return e.emitStore(n, n.Target, true)
	case ir.ExprLookup:
		return e.emitLookup(n)
	case ir.ExprUnary:
		return e.emitUnary(n)
	case ir.ExprBinary:
		return e.emitBinary(n)
	case ir.ExprQuote:
		return e.emitQuoteRef(n)
	case ir.ExprFun:
		return e.emitFunRef(n)
	case ir.ExprCall:
		return e.emitCall(n)
	case ir.ExprRun:
		return e.emitRun(n)
	case ir.ExprRoot:
		if err := e.emitRuntimePrelude(); err != nil {
			return llvm.Value{}, err
		}
		return e.emitExpr(n.Expr)
	case ir.ExprExtern, ir.ExprPersist, ir.ExprEscape, ir.ExprIf, ir.ExprWhile,
		ir.ExprMacroCall, ir.ExprAlloc, ir.ExprTuple, ir.ExprTupleIndex, ir.ExprTypeAlias:
		return llvm.Value{}, diag.Errorf(diag.CgenNotImplemented, n.ID, "%s expression", n.Kind)
	default:
		return llvm.Value{}, diag.Errorf(diag.CgenUnsupportedNode, n.ID, "unknown node kind %d", uint8(n.Kind))
	}
}

// emitSeq drops a pure left-hand side; a value that cannot observe or
// effect anything has no reason to be materialized.
func (e *Emitter) emitSeq(n *ir.Node) (llvm.Value, error) {
	if exprUseful(n.Lhs) {
		if _, err := e.emitExpr(n.Lhs); err != nil {
			return llvm.Value{}, err
		}
	}
	return e.emitExpr(n.Rhs)
}

// exprUseful reports whether an expression can have an observable effect.
func exprUseful(n *ir.Node) bool {
	if n == nil {
		return false
	}
	switch n.Kind {
	case ir.ExprLiteralInt, ir.ExprLiteralFloat, ir.ExprLiteralString,
		ir.ExprLookup, ir.ExprFun, ir.ExprQuote:
		return false
	case ir.ExprUnary:
		return exprUseful(n.Expr)
	case ir.ExprBinary, ir.ExprSeq:
		return exprUseful(n.Lhs) || exprUseful(n.Rhs)
	default:
		return true
	}
}

// emitStore compiles let and assign: evaluate, store into the variable's
// slot, yield the stored value. Let targets are definition sites with a
// slot from the scope's bound pass; assigns resolve through def/use and
// may target any in-scope variable.
func (e *Emitter) emitStore(n *ir.Node, target ir.NodeID, assign bool) (llvm.Value, error) {
	v, err := e.emitExpr(n.Expr)
	if err != nil {
		return llvm.Value{}, err
	}
	def := e.in.DefOf(target)
	if assign {
		if name, ok := e.in.ExternOf(def); ok {
			return llvm.Value{}, diag.Errorf(diag.CgenNotImplemented, n.ID, "assignment to extern %q", name)
		}
	}
	slot, ok := e.named[def]
	if !ok {
		return llvm.Value{}, diag.Errorf(diag.CgenUnknownVariable, n.ID, "no slot for variable %s", e.allocaName(def))
	}
	e.builder.CreateStore(v, slot)
	return v, nil
}

func (e *Emitter) emitLookup(n *ir.Node) (llvm.Value, error) {
	def := e.in.DefOf(n.ID)
	if name, ok := e.in.ExternOf(def); ok {
		// Externs have no storage; they are reachable only as direct
		// call callees.
		return llvm.Value{}, diag.Errorf(diag.CgenNotImplemented, n.ID, "first-class reference to extern %q", name)
	}
	slot, ok := e.named[def]
	if !ok {
		return llvm.Value{}, diag.Errorf(diag.CgenUnknownVariable, n.ID, "no slot for variable %s", e.allocaName(def))
	}
	t, err := e.typeOf(def)
	if err != nil {
		return llvm.Value{}, err
	}
	lowered, err := e.lowerType(t, def)
	if err != nil {
		return llvm.Value{}, err
	}
	return e.builder.CreateLoad(lowered, slot, e.allocaName(def)), nil
}

// emitQuoteRef packs a Code closure over an already-emitted Prog.
func (e *Emitter) emitQuoteRef(n *ir.Node) (llvm.Value, error) {
	_, prog, err := e.resolveScope(n.Scope)
	if err != nil {
		return llvm.Value{}, err
	}
	if prog == nil {
		return llvm.Value{}, diag.Errorf(diag.CgenBadInput, n.ID, "quote references proc %d", n.Scope)
	}
	fn := e.mod.NamedFunction(ir.SymbolName(n.Scope, true))
	if fn.IsNil() {
		return llvm.Value{}, diag.Errorf(diag.CgenBadInput, n.ID, "prog %d not emitted before use", n.Scope)
	}
	return e.packScopeRef(n, fn, prog.EnvIDs(), types.KindCode)
}

// emitFunRef packs a Fun closure over an already-emitted Proc.
func (e *Emitter) emitFunRef(n *ir.Node) (llvm.Value, error) {
	proc, _, err := e.resolveScope(n.Scope)
	if err != nil {
		return llvm.Value{}, err
	}
	if proc == nil {
		return llvm.Value{}, diag.Errorf(diag.CgenBadInput, n.ID, "fun references prog %d", n.Scope)
	}
	fn := e.mod.NamedFunction(ir.SymbolName(n.Scope, false))
	if fn.IsNil() {
		return llvm.Value{}, diag.Errorf(diag.CgenBadInput, n.ID, "proc %d not emitted before use", n.Scope)
	}
	return e.packScopeRef(n, fn, proc.EnvIDs(), types.KindFun)
}

func (e *Emitter) packScopeRef(n *ir.Node, fn llvm.Value, envIDs []ir.NodeID, want types.Kind) (llvm.Value, error) {
	t, err := e.typeOf(n.ID)
	if err != nil {
		return llvm.Value{}, err
	}
	if t.Kind != want {
		return llvm.Value{}, diag.Errorf(diag.CgenBadInput, n.ID, "%s node typed %s", n.Kind, t)
	}
	closTy, err := e.lowerType(t, n.ID)
	if err != nil {
		return llvm.Value{}, err
	}
	return e.packClosure(fn, envIDs, closTy, n.ID)
}
