// Package worker fans a batch of file transforms out across a bounded
// worker pool built on github.com/JekaMas/workerpool. Files share no
// mutable state beyond the read-only registry, so each transform runs
// independently.
package worker

import (
	"context"
	"sync"

	"github.com/JekaMas/workerpool"

	"github.com/jihwankim/kinda/pkg/transform"
)

// FileResult pairs one input file's path with its transform outcome.
type FileResult struct {
	Path   string
	Result *transform.Result
	Err    error
}

// Pool runs transform.Pipeline.Run across many files concurrently, bounded
// by maxWorkers in-flight at a time.
type Pool struct {
	pool     *workerpool.WorkerPool
	pipeline *transform.Pipeline
}

// New builds a Pool of maxWorkers goroutines driving pipeline.
func New(pipeline *transform.Pipeline, maxWorkers int) *Pool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &Pool{
		pool:     workerpool.New(maxWorkers),
		pipeline: pipeline,
	}
}

// File pairs a path with its source bytes, for TransformMany.
type File struct {
	Path   string
	Source []byte
}

// TransformMany submits every file in files to the pool and returns one
// FileResult per input, in the same order files was given (not necessarily
// completion order internally, since each result slot is written by index).
func (p *Pool) TransformMany(ctx context.Context, files []File) []FileResult {
	results := make([]FileResult, len(files))
	var wg sync.WaitGroup
	wg.Add(len(files))

	for i, f := range files {
		i, f := i, f
		p.pool.Submit(ctx, func() error {
			defer wg.Done()
			res, err := p.pipeline.RunNamed(ctx, f.Source, f.Path)
			results[i] = FileResult{Path: f.Path, Result: res, Err: err}
			return nil
		}, workerpool.NoTimeout)
	}

	wg.Wait()
	return results
}

// StopWait waits for all submitted tasks to complete, then releases the
// pool's worker goroutines. The Pool must not be reused afterward.
func (p *Pool) StopWait() {
	p.pool.StopWait()
}
