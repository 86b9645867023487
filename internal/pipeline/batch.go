package pipeline

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ProgressFunc is called once per finished document. done counts the
// documents finished so far, in completion order.
type ProgressFunc func(done, total int, r Result)

// Run processes docs with at most concurrency documents in flight. The
// returned results are in input order regardless of completion order. A
// failing document never stops the batch.
func Run(ctx context.Context, w *Worker, docs []Document, concurrency int, progress ProgressFunc) []Result {
	if concurrency <= 0 {
		concurrency = 1
	}
	results := make([]Result, len(docs))

	var mu sync.Mutex
	done := 0

	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, doc := range docs {
		g.Go(func() error {
			r := w.Process(ctx, doc)
			r.Index = i
			results[i] = r

			if progress != nil {
				mu.Lock()
				done++
				progress(done, len(docs), r)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	return results
}
