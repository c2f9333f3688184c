// Package ir defines the typed, lifted intermediate representation the
// backend consumes: expression nodes, lifted Proc/Prog scopes, variant
// overlays, and the side tables produced by the checker. It also owns the
// .bir on-disk container.
package ir

import (
	"braid/internal/types"
)

// CompilerIR is the read-only input of a codegen run. The front end
// guarantees a well-typed, fully-resolved program; Validate re-checks the
// structural parts the backend relies on.
type CompilerIR struct {
	// Procs and Progs map scope ids to lifted definitions.
	Procs map[ScopeID]*Proc `msgpack:"procs"`
	Progs map[ScopeID]*Prog `msgpack:"progs"`

	// Main is the entry Proc. Its ID is NoScopeID.
	Main *Proc `msgpack:"main"`

	// TypeTable maps node ids to checked types.
	TypeTable map[NodeID]*types.Type `msgpack:"type_table"`

	// DefUse maps use-site ids to definition-site ids.
	DefUse map[NodeID]NodeID `msgpack:"defuse"`

	// Externs maps definition ids to extern symbol names. Absence means
	// the definition is a local variable.
	Externs map[NodeID]string `msgpack:"externs"`

	// Names maps definition ids to human-readable variable names, used
	// only to label allocas in emitted IR.
	Names map[NodeID]string `msgpack:"names,omitempty"`

	// Variants holds named specialization overlays shipped alongside the
	// generic definitions. The driver activates at most one per run.
	Variants map[string]*Variant `msgpack:"variants,omitempty"`
}

// DefOf resolves a variable reference to its definition id. Ids without a
// def/use entry resolve to themselves (definition sites).
func (c *CompilerIR) DefOf(id NodeID) NodeID {
	if def, ok := c.DefUse[id]; ok {
		return def
	}
	return id
}

// TypeOf returns the checked type of a node, or nil if the node is absent
// from the type table.
func (c *CompilerIR) TypeOf(id NodeID) *types.Type {
	return c.TypeTable[id]
}

// ExternOf returns the extern symbol a definition id is bound to, if any.
func (c *CompilerIR) ExternOf(def NodeID) (string, bool) {
	name, ok := c.Externs[def]
	return name, ok
}

// NameOf returns a label for a definition id: the variable's source name
// where known, otherwise the empty string.
func (c *CompilerIR) NameOf(def NodeID) string {
	return c.Names[def]
}
