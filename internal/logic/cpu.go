package logic

import (
	"fmt"

	"github.com/idelchi/goxor/internal/config"
	"github.com/idelchi/goxor/pkg/xor"
)

// RunCPU prints the detected CPU features and the combiner in use.
func RunCPU(cfg *config.Config) error {
	features := xor.DetectFeatures()

	combiner, err := xor.ByName(cfg.Combiner)
	if err != nil {
		return err
	}

	//nolint:forbidigo
	fmt.Printf("sse2:     %t\navx2:     %t\nasimd:    %t\nselected: %s\n",
		features.SSE2, features.AVX2, features.ASIMD, xor.Select(features).Name())

	if combiner.Name() != xor.Default().Name() {
		fmt.Printf("forced:   %s\n", combiner.Name()) //nolint:forbidigo
	}

	return nil
}
