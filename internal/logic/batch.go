package logic

import (
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/idelchi/goxor/internal/config"
	"github.com/idelchi/goxor/internal/manifest"
	"github.com/idelchi/goxor/pkg/xor"
)

// RunBatch runs every job of the manifest concurrently, at most cfg.Parallel at a time.
func RunBatch(cfg *config.Config) error {
	start := time.Now()

	m, err := manifest.Load(cfg.Manifest)
	if err != nil {
		return fmt.Errorf("loading manifest: %w", err)
	}

	for i, job := range m.Jobs {
		if usesStdio(job) {
			return fmt.Errorf("%w: job %d (%q) uses standard streams, which batch mode cannot share",
				xor.ErrConfiguration, i, job.Label())
		}
	}

	engines := make(chan *xor.Engine, cfg.Parallel)

	for range cfg.Parallel {
		engine, err := cfg.Engine()
		if err != nil {
			return fmt.Errorf("creating engine: %w", err)
		}

		engines <- engine
	}

	results := make(chan Result, len(m.Jobs))

	group := errgroup.Group{}
	group.SetLimit(cfg.Parallel)

	printed := make(chan struct{})

	var stats stats

	go func() {
		defer close(printed)

		for res := range results {
			stats.add(res)
			report(res, cfg.Quiet)
		}
	}()

	for _, job := range m.Jobs {
		group.Go(func() error {
			// Each worker borrows an engine of its own.
			engine := <-engines
			defer func() { engines <- engine }()

			res, err := runJob(job, engine, cfg.PreserveTimestamps)
			res.Error = err

			results <- res

			return err
		})
	}

	err = group.Wait()

	close(results)

	<-printed

	if cfg.Stats {
		stats.print(time.Since(start))
	}

	if err != nil {
		return fmt.Errorf("running batch: %w", err)
	}

	return nil
}

func usesStdio(job manifest.Job) bool {
	if job.Output.IsStdio() {
		return true
	}

	for _, in := range job.Inputs {
		if in.IsStdio() {
			return true
		}
	}

	return false
}
