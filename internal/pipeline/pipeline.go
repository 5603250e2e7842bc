// internal/pipeline/pipeline.go
package pipeline

import (
	"context"
	"runtime"
	"sync"

	"umidemux-core/demux"
)

// Job is one unit of work: a population and its resolved FASTQ pair.
type Job struct {
	Entry *demux.PopulationEntry
	R1    string
	R2    string
}

// Result carries a job's outcome. Err is per-population: one failed
// population never stops the others.
type Result[T any] struct {
	Job Job
	Out T
	Err error
}

// Map runs fn over all jobs on a bounded worker pool. Populations are
// mutually independent once the configuration table is loaded, so workers
// share nothing; results land in a preallocated slice (one slot per job,
// input order preserved) and are merged by the caller at a single point.
// threads <= 0 selects runtime.NumCPU().
func Map[T any](ctx context.Context, threads int, jobs []Job, fn func(context.Context, Job) (T, error)) []Result[T] {
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	if threads > len(jobs) {
		threads = len(jobs)
	}

	results := make([]Result[T], len(jobs))
	idx := make(chan int, len(jobs))
	for i := range jobs {
		idx <- i
	}
	close(idx)

	var wg sync.WaitGroup
	wg.Add(threads)
	for w := 0; w < threads; w++ {
		go func() {
			defer wg.Done()
			for i := range idx {
				select {
				case <-ctx.Done():
					results[i] = Result[T]{Job: jobs[i], Err: ctx.Err()}
					continue
				default:
				}
				out, err := fn(ctx, jobs[i])
				results[i] = Result[T]{Job: jobs[i], Out: out, Err: err}
			}
		}()
	}
	wg.Wait()
	return results
}
