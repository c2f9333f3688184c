package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"braid/internal/ir"
)

var dumpCmd = &cobra.Command{
	Use:   "dump <input.bir>",
	Short: "Decode a .bir container and print its shape",
	Args:  cobra.ExactArgs(1),
	RunE:  dumpExecution,
}

func dumpExecution(cmd *cobra.Command, args []string) error {
	compilerIR, err := ir.DecodeFile(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "main: %d bound, %d children\n", len(compilerIR.Main.Bound), len(compilerIR.Main.Children))
	for _, id := range sortedScopeIDs(compilerIR.Procs) {
		p := compilerIR.Procs[id]
		fmt.Fprintf(out, "%s: %d params, %d free, %d bound\n",
			ir.SymbolName(id, false), len(p.Params), len(p.Free), len(p.Bound))
	}
	for _, id := range sortedScopeIDs(compilerIR.Progs) {
		g := compilerIR.Progs[id]
		fmt.Fprintf(out, "%s: %d owned persists, %d free, %d bound\n",
			ir.SymbolName(id, true), len(g.OwnedPersist), len(g.Free), len(g.Bound))
	}

	if len(compilerIR.Variants) > 0 {
		names := make([]string, 0, len(compilerIR.Variants))
		for name := range compilerIR.Variants {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			v := compilerIR.Variants[name]
			fmt.Fprintf(out, "variant %q: %d procs, %d progs\n", name, len(v.Procs), len(v.Progs))
		}
	}
	fmt.Fprintf(out, "nodes typed: %d, def/use edges: %d, externs: %d\n",
		len(compilerIR.TypeTable), len(compilerIR.DefUse), len(compilerIR.Externs))
	return nil
}

func sortedScopeIDs[T any](m map[ir.ScopeID]T) []ir.ScopeID {
	ids := make([]ir.ScopeID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
