// Package batch fans independent jobs out across a bounded worker pool,
// stopping at the first failure. It is the concurrency layer dirdiff uses to
// diff many unrelated files at once instead of one at a time.
package batch

import (
	"context"
	"log"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Ctx carries a batch run's shared configuration.
type Ctx struct {
	// Log receives progress lines; a nil Log discards them.
	Log *log.Logger
	// Workers bounds concurrency. Zero or negative means
	// runtime.GOMAXPROCS(0).
	Workers int
}

func (c *Ctx) log() *log.Logger {
	if c.Log != nil {
		return c.Log
	}
	return log.New(discard{}, "", 0)
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func (c *Ctx) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// Job is one independently runnable unit of work.
type Job func(ctx context.Context) error

// Run executes jobs across Workers goroutines via errgroup.WithContext: the
// first job to return an error cancels ctx for the rest and that error is
// returned, same as the teacher's build scheduler.
func (c *Ctx) Run(ctx context.Context, jobs []Job) error {
	if len(jobs) == 0 {
		return nil
	}
	eg, egCtx := errgroup.WithContext(ctx)
	work := make(chan Job)

	for i := 0; i < c.workers(); i++ {
		eg.Go(func() error {
			for job := range work {
				if err := egCtx.Err(); err != nil {
					return err
				}
				if err := job(egCtx); err != nil {
					return err
				}
			}
			return nil
		})
	}

	eg.Go(func() error {
		defer close(work)
		for _, j := range jobs {
			select {
			case work <- j:
			case <-egCtx.Done():
				return egCtx.Err()
			}
		}
		return nil
	})

	if err := eg.Wait(); err != nil {
		return err
	}
	c.log().Printf("batch: completed %d jobs", len(jobs))
	return nil
}
