package ir

import "fmt"

// NodeID is a stable identifier of a syntactic node across the IR. It keys
// the type table, the def/use table, and the backend's named-value map.
type NodeID int32

// NoNodeID marks an absent node reference.
const NoNodeID NodeID = -1

// NodeKind discriminates AST nodes.
type NodeKind uint8

const (
	ExprLiteralInt NodeKind = iota
	ExprLiteralFloat
	ExprLiteralString
	ExprSeq
	ExprLet
	ExprAssign
	ExprLookup
	ExprUnary
	ExprBinary
	ExprQuote
	ExprFun
	ExprCall
	ExprRun
	ExprExtern
	ExprPersist
	ExprEscape
	ExprIf
	ExprWhile
	ExprMacroCall
	ExprAlloc
	ExprTuple
	ExprTupleIndex
	ExprTypeAlias
	ExprRoot
)

var nodeKindNames = [...]string{
	ExprLiteralInt:    "literal_int",
	ExprLiteralFloat:  "literal_float",
	ExprLiteralString: "literal_string",
	ExprSeq:           "seq",
	ExprLet:           "let",
	ExprAssign:        "assign",
	ExprLookup:        "lookup",
	ExprUnary:         "unary",
	ExprBinary:        "binary",
	ExprQuote:         "quote",
	ExprFun:           "fun",
	ExprCall:          "call",
	ExprRun:           "run",
	ExprExtern:        "extern",
	ExprPersist:       "persist",
	ExprEscape:        "escape",
	ExprIf:            "if",
	ExprWhile:         "while",
	ExprMacroCall:     "macrocall",
	ExprAlloc:         "alloc",
	ExprTuple:         "tuple",
	ExprTupleIndex:    "tupleindex",
	ExprTypeAlias:     "typealias",
	ExprRoot:          "root",
}

func (k NodeKind) String() string {
	if int(k) < len(nodeKindNames) && nodeKindNames[k] != "" {
		return nodeKindNames[k]
	}
	return fmt.Sprintf("NodeKind(%d)", uint8(k))
}

// Node is one expression of the typed AST. Fields are populated per kind;
// unused fields stay zero. Nodes are shared by pointer and never mutated
// after construction.
type Node struct {
	ID   NodeID   `msgpack:"id"`
	Kind NodeKind `msgpack:"kind"`

	// Literal payloads.
	Int   int64   `msgpack:"int,omitempty"`
	Float float64 `msgpack:"float,omitempty"`
	Str   string  `msgpack:"str,omitempty"`

	// Op is the operator symbol of a unary or binary node.
	Op string `msgpack:"op,omitempty"`

	// Lhs/Rhs are the children of seq and binary nodes.
	Lhs *Node `msgpack:"lhs,omitempty"`
	Rhs *Node `msgpack:"rhs,omitempty"`

	// Expr is the single child of let/assign (the value), unary, run,
	// escape, and root nodes.
	Expr *Node `msgpack:"expr,omitempty"`

	// Target is the variable reference of a let or assign: the node id
	// resolved through the def/use table to the definition site.
	Target NodeID `msgpack:"target,omitempty"`

	// Scope is the Proc/Prog referenced by fun and quote nodes.
	Scope ScopeID `msgpack:"scope,omitempty"`

	// Callee and Args belong to call nodes.
	Callee *Node   `msgpack:"callee,omitempty"`
	Args   []*Node `msgpack:"args,omitempty"`
}
