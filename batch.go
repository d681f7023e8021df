package keyschema

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

type batchOptions struct {
	parallelism int
}

// BatchOption configures EvaluateBatch.
type BatchOption func(o *batchOptions)

// Parallelism sets the maximum number of inputs evaluated at the same time.
// Values below 1 are ignored.
// Default: runtime.GOMAXPROCS(0)
func Parallelism(n int) BatchOption {
	return func(o *batchOptions) {
		if n > 0 {
			o.parallelism = n
		}
	}
}

// EvaluateBatch evaluates independent inputs concurrently. The returned results are
// aligned with inputs by position. If ctx is cancelled before every input has been
// evaluated, EvaluateBatch returns the context's error and no results.
func (s *Schema) EvaluateBatch(ctx context.Context, inputs []map[string]any, opts ...BatchOption) ([]*Result, error) {
	o := batchOptions{parallelism: runtime.GOMAXPROCS(0)}
	for _, opt := range opts {
		opt(&o)
	}

	results := make([]*Result, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.parallelism)

	for i := range inputs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = s.Evaluate(inputs[i])
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	// The loop may stop early without any goroutine seeing the cancellation.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
