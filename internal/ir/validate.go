package ir

import "fmt"

// Validate re-checks the producer-side contract the backend relies on:
// every referenced scope exists, every node carries a type, def/use targets
// are known, and the child graph points strictly from parent to nested
// scope. It does not type-check; the IR is assumed well-typed.
func Validate(c *CompilerIR) error {
	if c == nil {
		return fmt.Errorf("ir: nil input")
	}
	if c.Main == nil {
		return fmt.Errorf("ir: missing main proc")
	}
	if c.Main.ID != NoScopeID {
		return fmt.Errorf("ir: main proc must have no scope id, got %d", c.Main.ID)
	}
	v := &validator{ir: c, visiting: make(map[ScopeID]bool), done: make(map[ScopeID]bool)}
	if err := v.scope(&c.Main.Scope, "main"); err != nil {
		return err
	}
	for id, p := range c.Procs {
		if p == nil {
			return fmt.Errorf("ir: nil proc %d", id)
		}
		if p.ID != id {
			return fmt.Errorf("ir: proc %d recorded under id %d", p.ID, id)
		}
	}
	for id, g := range c.Progs {
		if g == nil {
			return fmt.Errorf("ir: nil prog %d", id)
		}
		if g.ID != id {
			return fmt.Errorf("ir: prog %d recorded under id %d", g.ID, id)
		}
	}
	return nil
}

type validator struct {
	ir       *CompilerIR
	visiting map[ScopeID]bool
	done     map[ScopeID]bool
}

func (v *validator) scope(s *Scope, name string) error {
	if s.Body == nil {
		return fmt.Errorf("ir: scope %s has no body", name)
	}
	for _, child := range s.Children {
		if err := v.child(child); err != nil {
			return err
		}
	}
	return v.expr(s.Body)
}

func (v *validator) child(id ScopeID) error {
	if v.done[id] {
		return nil
	}
	if v.visiting[id] {
		return fmt.Errorf("ir: scope cycle through %d", id)
	}
	v.visiting[id] = true
	defer func() { v.visiting[id] = false }()

	if p, ok := v.ir.Procs[id]; ok {
		if err := v.scope(&p.Scope, SymbolName(id, false)); err != nil {
			return err
		}
	} else if g, ok := v.ir.Progs[id]; ok {
		if err := v.scope(&g.Scope, SymbolName(id, true)); err != nil {
			return err
		}
	} else {
		return fmt.Errorf("ir: child scope %d is neither proc nor prog", id)
	}
	v.done[id] = true
	return nil
}

func (v *validator) expr(n *Node) error {
	if n == nil {
		return fmt.Errorf("ir: nil expression node")
	}
	if _, ok := v.ir.TypeTable[n.ID]; !ok {
		return fmt.Errorf("ir: node %d (%s) missing from type table", n.ID, n.Kind)
	}
	switch n.Kind {
	case ExprQuote:
		if _, ok := v.ir.Progs[n.Scope]; !ok {
			return fmt.Errorf("ir: quote node %d references unknown prog %d", n.ID, n.Scope)
		}
	case ExprFun:
		if _, ok := v.ir.Procs[n.Scope]; !ok {
			return fmt.Errorf("ir: fun node %d references unknown proc %d", n.ID, n.Scope)
		}
	case ExprLookup:
		def := v.ir.DefOf(n.ID)
		if _, ok := v.ir.TypeTable[def]; !ok {
			return fmt.Errorf("ir: lookup node %d resolves to untyped def %d", n.ID, def)
		}
	}
	for _, child := range []*Node{n.Lhs, n.Rhs, n.Expr, n.Callee} {
		if child == nil {
			continue
		}
		if err := v.expr(child); err != nil {
			return err
		}
	}
	for _, arg := range n.Args {
		if err := v.expr(arg); err != nil {
			return err
		}
	}
	return nil
}
