package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/leozw/domain-inspector/internal/core"
)

// Inspector produces a report for one raw input.
type Inspector interface {
	Lookup(ctx context.Context, input string, fresh bool) (*core.DomainReport, bool, error)
}

// Result is the outcome of one batch item. Index is the item's position in
// the submitted input list.
type Result struct {
	Index  int
	Input  string
	Report *core.DomainReport
	Cached bool
	Err    error
}

type job struct {
	index int
	input string
}

// Pool runs batch lookups on a fixed number of workers.
type Pool struct {
	size      int
	fresh     bool
	inspector Inspector
	logger    *zap.Logger
}

func NewPool(size int, inspector Inspector, fresh bool, logger *zap.Logger) *Pool {
	if size < 1 {
		size = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pool{
		size:      size,
		fresh:     fresh,
		inspector: inspector,
		logger:    logger.With(zap.String("component", "worker_pool")),
	}
}

// Run looks up every input and returns one Result per input, in input order.
// Per-item failures are carried in Result.Err; Run itself fails only when ctx
// is cancelled before every item was processed.
func (p *Pool) Run(ctx context.Context, inputs []string) ([]Result, error) {
	results := make([]Result, len(inputs))
	queue := make(chan job)

	g, ctx := errgroup.WithContext(ctx)

	for id := 1; id <= p.size; id++ {
		w := &worker{
			id:        id,
			queue:     queue,
			results:   results,
			fresh:     p.fresh,
			inspector: p.inspector,
			logger:    p.logger.With(zap.Int("worker_id", id)),
		}
		g.Go(func() error {
			w.start(ctx)
			return nil
		})
	}

	g.Go(func() error {
		defer close(queue)
		for i, input := range inputs {
			if err := ctx.Err(); err != nil {
				return err
			}
			select {
			case queue <- job{index: i, input: input}:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

type worker struct {
	id        int
	queue     <-chan job
	results   []Result
	fresh     bool
	inspector Inspector
	logger    *zap.Logger
}

func (w *worker) start(ctx context.Context) {
	w.logger.Debug("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("Worker stopped")
			return
		case j, ok := <-w.queue:
			if !ok {
				w.logger.Debug("Work queue closed")
				return
			}
			w.process(ctx, j)
		}
	}
}

// process writes only to its own slot of results.
func (w *worker) process(ctx context.Context, j job) {
	start := time.Now()

	report, cached, err := w.inspector.Lookup(ctx, j.input, w.fresh)
	w.results[j.index] = Result{
		Index:  j.index,
		Input:  j.input,
		Report: report,
		Cached: cached,
		Err:    err,
	}

	if err != nil {
		w.logger.Warn("Lookup failed", zap.String("input", j.input), zap.Error(err))
		return
	}
	w.logger.Debug("Lookup completed",
		zap.String("input", j.input),
		zap.Bool("cached", cached),
		zap.Duration("duration", time.Since(start)),
	)
}
