package llvm

import (
	"sync"

	"tinygo.org/x/go-llvm"
)

var (
	targetOnce sync.Once
	targetErr  error
)

// initNativeTarget readies the host target and asm printer. Factored out
// of the driver so other targets (ARM, wasm) can slot in without touching
// the emitter.
func initNativeTarget() error {
	targetOnce.Do(func() {
		if err := llvm.InitializeNativeTarget(); err != nil {
			targetErr = err
			return
		}
		targetErr = llvm.InitializeNativeAsmPrinter()
	})
	return targetErr
}
