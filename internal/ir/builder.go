package ir

import (
	"fmt"

	"fortio.org/safecast"

	"braid/internal/types"
)

// Builder assembles a well-formed CompilerIR without hand-numbering nodes.
// It is used by tests and by embedders that produce IR programmatically;
// the real front end ships .bir files instead.
type Builder struct {
	out       *CompilerIR
	nextNode  int
	nextScope int
}

func NewBuilder() *Builder {
	return &Builder{
		out: &CompilerIR{
			Procs:     make(map[ScopeID]*Proc),
			Progs:     make(map[ScopeID]*Prog),
			TypeTable: make(map[NodeID]*types.Type),
			DefUse:    make(map[NodeID]NodeID),
			Externs:   make(map[NodeID]string),
			Names:     make(map[NodeID]string),
			Variants:  make(map[string]*Variant),
		},
	}
}

func (b *Builder) allocNode() NodeID {
	id, err := safecast.Conv[int32](b.nextNode)
	if err != nil {
		panic(fmt.Sprintf("ir: node id overflow: %v", err))
	}
	b.nextNode++
	return NodeID(id)
}

func (b *Builder) allocScope() ScopeID {
	id, err := safecast.Conv[int32](b.nextScope + 1)
	if err != nil {
		panic(fmt.Sprintf("ir: scope id overflow: %v", err))
	}
	b.nextScope++
	return ScopeID(id)
}

func (b *Builder) newNode(kind NodeKind, t *types.Type) *Node {
	n := &Node{ID: b.allocNode(), Kind: kind}
	if t != nil {
		b.out.TypeTable[n.ID] = t
	}
	return n
}

// Bind allocates a definition id for a local variable.
func (b *Builder) Bind(name string, t *types.Type) NodeID {
	id := b.allocNode()
	b.out.TypeTable[id] = t
	b.out.Names[id] = name
	return id
}

// BindExtern allocates a definition id bound to an extern runtime symbol.
func (b *Builder) BindExtern(symbol string, t *types.Type) NodeID {
	id := b.Bind(symbol, t)
	b.out.Externs[id] = symbol
	return id
}

func (b *Builder) IntLit(v int64) *Node {
	n := b.newNode(ExprLiteralInt, types.Int())
	n.Int = v
	return n
}

func (b *Builder) FloatLit(v float64) *Node {
	n := b.newNode(ExprLiteralFloat, types.Float())
	n.Float = v
	return n
}

func (b *Builder) StringLit(s string, t *types.Type) *Node {
	n := b.newNode(ExprLiteralString, t)
	n.Str = s
	return n
}

func (b *Builder) Seq(lhs, rhs *Node) *Node {
	n := b.newNode(ExprSeq, b.out.TypeTable[rhs.ID])
	n.Lhs, n.Rhs = lhs, rhs
	return n
}

// Let stores value into the variable def and yields the stored value.
func (b *Builder) Let(def NodeID, value *Node) *Node {
	n := b.newNode(ExprLet, b.out.TypeTable[def])
	n.Target = def
	n.Expr = value
	return n
}

// Assign re-stores value into an in-scope variable through a fresh use site.
func (b *Builder) Assign(def NodeID, value *Node) *Node {
	n := b.newNode(ExprAssign, b.out.TypeTable[def])
	n.Target = b.allocNode()
	n.Expr = value
	b.out.DefUse[n.Target] = def
	return n
}

// Use reads an in-scope variable.
func (b *Builder) Use(def NodeID) *Node {
	n := b.newNode(ExprLookup, b.out.TypeTable[def])
	b.out.DefUse[n.ID] = def
	return n
}

func (b *Builder) Unary(op string, operand *Node, t *types.Type) *Node {
	n := b.newNode(ExprUnary, t)
	n.Op = op
	n.Expr = operand
	return n
}

func (b *Builder) Binary(op string, lhs, rhs *Node, t *types.Type) *Node {
	n := b.newNode(ExprBinary, t)
	n.Op = op
	n.Lhs, n.Rhs = lhs, rhs
	return n
}

// FunRef references an emitted Proc as a first-class value of type t.
func (b *Builder) FunRef(scope ScopeID, t *types.Type) *Node {
	n := b.newNode(ExprFun, t)
	n.Scope = scope
	return n
}

// QuoteRef references an emitted Prog as a Code value of type t.
func (b *Builder) QuoteRef(scope ScopeID, t *types.Type) *Node {
	n := b.newNode(ExprQuote, t)
	n.Scope = scope
	return n
}

func (b *Builder) Call(callee *Node, args []*Node, ret *types.Type) *Node {
	n := b.newNode(ExprCall, ret)
	n.Callee = callee
	n.Args = args
	return n
}

func (b *Builder) Run(code *Node, t *types.Type) *Node {
	n := b.newNode(ExprRun, t)
	n.Expr = code
	return n
}

func (b *Builder) Root(child *Node) *Node {
	n := b.newNode(ExprRoot, b.out.TypeTable[child.ID])
	n.Expr = child
	return n
}

// Raw creates a node of an arbitrary kind, for constructs the backend
// rejects; tests use it to exercise the error paths.
func (b *Builder) Raw(kind NodeKind, t *types.Type) *Node {
	return b.newNode(kind, t)
}

// DefProc registers a Proc under a fresh scope id.
func (b *Builder) DefProc(params, free, bound []NodeID, children []ScopeID, body *Node) ScopeID {
	id := b.allocScope()
	b.out.Procs[id] = &Proc{
		Scope: Scope{
			ID:       id,
			Body:     body,
			Free:     free,
			Bound:    bound,
			Children: children,
		},
		Params: params,
	}
	return id
}

// DefProg registers a Prog under a fresh scope id.
func (b *Builder) DefProg(free, bound []NodeID, children []ScopeID, body *Node) ScopeID {
	id := b.allocScope()
	b.out.Progs[id] = &Prog{
		Scope: Scope{
			ID:       id,
			Body:     body,
			Free:     free,
			Bound:    bound,
			Children: children,
		},
	}
	return id
}

// Main sets the entry Proc and returns the finished IR.
func (b *Builder) Main(bound []NodeID, children []ScopeID, body *Node) *CompilerIR {
	b.out.Main = &Proc{
		Scope: Scope{
			ID:       NoScopeID,
			Body:     body,
			Bound:    bound,
			Children: children,
		},
	}
	return b.out
}

// IR returns the IR under construction, for callers that set Main directly.
func (b *Builder) IR() *CompilerIR {
	return b.out
}
