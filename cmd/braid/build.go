package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"braid/internal/diagfmt"
	"braid/internal/driver"
	"braid/internal/project"
)

var buildCmd = &cobra.Command{
	Use:   "build [flags] [input.bir ...]",
	Short: "Compile Braid IR to LLVM modules",
	Long: "Compile .bir inputs to LLVM modules. Without arguments the entry point\n" +
		"comes from braid.toml in the working directory.",
	RunE: buildExecution,
}

func init() {
	buildCmd.Flags().String("variant", "", "specialization overlay to activate")
	buildCmd.Flags().String("triple", "", "override the target triple")
	buildCmd.Flags().StringP("out-dir", "o", "", "artifact output directory")
	buildCmd.Flags().Bool("emit-bitcode", false, "also write .bc bitcode")
	buildCmd.Flags().Int("jobs", 0, "maximum concurrent compiles (0 = GOMAXPROCS)")
}

func buildExecution(cmd *cobra.Command, args []string) error {
	variantName, err := cmd.Flags().GetString("variant")
	if err != nil {
		return err
	}
	triple, err := cmd.Flags().GetString("triple")
	if err != nil {
		return err
	}
	outDir, err := cmd.Flags().GetString("out-dir")
	if err != nil {
		return err
	}
	emitBitcode, err := cmd.Flags().GetBool("emit-bitcode")
	if err != nil {
		return err
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return err
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return err
	}

	inputs := args
	outputBase := ""
	if len(inputs) == 0 {
		manifest, found, err := project.Locate(".")
		if err != nil {
			return err
		}
		if !found {
			return errors.New("no inputs and no braid.toml in the working directory")
		}
		inputs = []string{manifest.EntryPath()}
		outputBase = manifest.OutputBase()
		if variantName == "" {
			variantName = manifest.Build.Variant
		}
		if triple == "" {
			triple = manifest.Target.Triple
		}
	}

	results, err := driver.Build(cmd.Context(), &driver.BuildRequest{
		Inputs:         inputs,
		OutDir:         outDir,
		OutputBase:     outputBase,
		VariantName:    variantName,
		Triple:         triple,
		EmitBitcode:    emitBitcode,
		Jobs:           jobs,
		MaxDiagnostics: maxDiagnostics,
	})
	if err != nil {
		return err
	}

	colorize := useColor(cmd, os.Stderr)
	failed := 0
	for _, res := range results {
		if res.Bag != nil && res.Bag.Len() > 0 {
			res.Bag.Sort()
			fmt.Fprintf(os.Stderr, "%s:\n", res.Input)
			diagfmt.RenderBag(os.Stderr, res.Bag, colorize)
		}
		if res.Err != nil {
			failed++
			continue
		}
		if !quiet {
			for _, out := range res.Outputs {
				fmt.Fprintln(cmd.OutOrStdout(), out)
			}
		}
		if showTimings && res.Timer != nil {
			fmt.Fprint(os.Stderr, res.Timer.Summary())
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d inputs failed", failed, len(results))
	}
	return nil
}
