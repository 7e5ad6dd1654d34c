package pipeline

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"nanoprep/internal/summary"
)

// Config controls the batch pipeline.
type Config struct {
	Threads int // number of worker goroutines (>=1)
}

// Summarizer analyses one read. A returned error aborts the whole batch.
type Summarizer interface {
	Summarize(path string) (*summary.ReadSummary, error)
}

// ForEachSummary summarizes every file with cfg.Threads workers and calls
// visit for each summary from a single goroutine, in completion order.
// Rejected reads are visited too. It returns the first error encountered
// (including context cancellation).
func ForEachSummary(
	ctx context.Context,
	cfg Config,
	files []string,
	sm Summarizer,
	visit func(*summary.ReadSummary) error,
) error {
	if cfg.Threads < 1 {
		cfg.Threads = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	jobs := make(chan string, cfg.Threads*2)
	results := make(chan *summary.ReadSummary, cfg.Threads*2)

	// Feed work
	g.Go(func() error {
		defer close(jobs)
		for _, f := range files {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case jobs <- f:
			}
		}
		return nil
	})

	// Workers
	var wg sync.WaitGroup
	wg.Add(cfg.Threads)
	for w := 0; w < cfg.Threads; w++ {
		g.Go(func() error {
			defer wg.Done()
			for path := range jobs {
				if err := gctx.Err(); err != nil {
					return err
				}
				rs, err := sm.Summarize(path)
				if err != nil {
					return fmt.Errorf("summarize %s: %w", path, err)
				}
				select {
				case results <- rs:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			return nil
		})
	}
	closed := make(chan struct{})
	go func() {
		wg.Wait()
		close(results)
		close(closed)
	}()

	// Collector
	g.Go(func() error {
		for rs := range results {
			if err := visit(rs); err != nil {
				return err
			}
		}
		return nil
	})

	err := g.Wait()
	<-closed
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}
