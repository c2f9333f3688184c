// Package driver orchestrates builds: load .bir inputs, run the native
// backend, write artifacts. Multiple inputs compile concurrently.
package driver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"
	"tinygo.org/x/go-llvm"

	backend "braid/internal/backend/llvm"
	"braid/internal/diag"
	"braid/internal/ir"
	"braid/internal/observ"
)

// BuildRequest configures one driver invocation.
type BuildRequest struct {
	// Inputs are .bir files, each compiled to its own module.
	Inputs []string

	// OutDir receives the artifacts; defaults to the working directory.
	OutDir string

	// VariantName selects a specialization overlay present in the input,
	// or "" for the generic definitions.
	VariantName string

	// Triple overrides the host target triple.
	Triple string

	// OutputBase overrides the artifact base name. Only meaningful for
	// single-input builds; multi-input builds name artifacts after their
	// inputs.
	OutputBase string

	// EmitBitcode writes <base>.bc next to <base>.ll.
	EmitBitcode bool

	// Jobs bounds build concurrency; 0 means GOMAXPROCS.
	Jobs int

	// MaxDiagnostics caps the per-input diagnostic bag.
	MaxDiagnostics int
}

// BuildResult captures one input's artifacts and findings.
type BuildResult struct {
	Input   string
	Outputs []string
	Bag     *diag.Bag
	Timer   *observ.Timer
	Err     error
}

// Build compiles every input. Worker failures land in the corresponding
// BuildResult; the returned error reports cancellation only.
func Build(ctx context.Context, req *BuildRequest) ([]BuildResult, error) {
	if req == nil || len(req.Inputs) == 0 {
		return nil, errors.New("driver: no inputs")
	}
	jobs := req.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	results := make([]BuildResult, len(req.Inputs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, input := range req.Inputs {
		i, input := i, input
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = BuildResult{Input: input, Err: err}
				return err
			}
			results[i] = buildOne(input, req)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func buildOne(input string, req *BuildRequest) BuildResult {
	maxDiags := req.MaxDiagnostics
	if maxDiags <= 0 {
		maxDiags = 100
	}
	res := BuildResult{
		Input: input,
		Bag:   diag.NewBag(maxDiags),
		Timer: observ.NewTimer(),
	}

	phase := res.Timer.Begin("load")
	compilerIR, err := ir.DecodeFile(input)
	if err != nil {
		res.Err = err
		res.Bag.Add(diag.Diagnostic{Severity: diag.SevError, Code: diag.DrvBadIRFile, Message: err.Error(), Node: ir.NoNodeID})
		return res
	}
	if err := ir.Validate(compilerIR); err != nil {
		res.Err = err
		res.Bag.Add(diag.Diagnostic{Severity: diag.SevError, Code: diag.DrvBadIRFile, Message: err.Error(), Node: ir.NoNodeID})
		return res
	}
	variant, err := pickVariant(compilerIR, req.VariantName)
	if err != nil {
		res.Err = err
		res.Bag.Add(diag.Diagnostic{Severity: diag.SevError, Code: diag.DrvBadIRFile, Message: err.Error(), Node: ir.NoNodeID})
		return res
	}
	res.Timer.End(phase, input)

	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	if req.OutputBase != "" && len(req.Inputs) == 1 {
		base = req.OutputBase
	}
	phase = res.Timer.Begin("codegen")
	mod, err := backend.Compile(compilerIR, backend.Options{
		ModuleName: base,
		Triple:     req.Triple,
		Variant:    variant,
	})
	if err != nil {
		res.Err = err
		var cgErr *diag.Error
		if errors.As(err, &cgErr) {
			res.Bag.AddError(cgErr)
		} else {
			res.Bag.Add(diag.Diagnostic{Severity: diag.SevError, Code: diag.UnknownCode, Message: err.Error(), Node: ir.NoNodeID})
		}
		return res
	}
	defer mod.Dispose()
	res.Timer.End(phase, "")

	phase = res.Timer.Begin("write")
	outDir := req.OutDir
	if outDir == "" {
		outDir = "."
	}
	llPath := filepath.Join(outDir, base+".ll")
	if err := os.WriteFile(llPath, []byte(mod.IRText()), 0o644); err != nil {
		res.Err = err
		res.Bag.Add(diag.Diagnostic{Severity: diag.SevError, Code: diag.DrvWriteFailed, Message: err.Error(), Node: ir.NoNodeID})
		return res
	}
	res.Outputs = append(res.Outputs, llPath)
	if req.EmitBitcode {
		bcPath := filepath.Join(outDir, base+".bc")
		if err := writeBitcode(mod, bcPath); err != nil {
			res.Err = err
			res.Bag.Add(diag.Diagnostic{Severity: diag.SevError, Code: diag.DrvWriteFailed, Message: err.Error(), Node: ir.NoNodeID})
			return res
		}
		res.Outputs = append(res.Outputs, bcPath)
	}
	res.Timer.End(phase, strings.Join(res.Outputs, ", "))
	return res
}

func pickVariant(c *ir.CompilerIR, name string) (*ir.Variant, error) {
	if name == "" {
		return nil, nil
	}
	v, ok := c.Variants[name]
	if !ok {
		return nil, fmt.Errorf("driver: variant %q not present in input", name)
	}
	return v, nil
}

func writeBitcode(mod *backend.Module, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := llvm.WriteBitcodeToFile(mod.Mod, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
