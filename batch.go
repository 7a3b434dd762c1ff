package iso8583

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
)

// BatchBuilder assembles many transaction records concurrently over a
// bounded worker pool. Each build is independent; the pool only caps
// parallelism.
type BatchBuilder struct {
	asm  *Assembler
	pool *ants.Pool
}

// NewBatchBuilder creates a batch builder with at most concurrency
// builds in flight.
func NewBatchBuilder(asm *Assembler, concurrency int) (*BatchBuilder, error) {
	if concurrency < 1 {
		return nil, fmt.Errorf("%w: concurrency must be at least 1", ErrInvalidInputFormat)
	}
	pool, err := ants.NewPool(concurrency)
	if err != nil {
		return nil, err
	}
	return &BatchBuilder{asm: asm, pool: pool}, nil
}

// Close releases the worker pool.
func (b *BatchBuilder) Close() {
	b.pool.Release()
}

// BuildBatch assembles every record and returns the messages in input
// order. The batch is all-or-nothing: on any failure the first error
// (by input position) is returned and no messages are handed out.
func (b *BatchBuilder) BuildBatch(ctx context.Context, txs []*Transaction) ([][]byte, error) {
	results := make([][]byte, len(txs))
	errs := make([]error, len(txs))

	var wg sync.WaitGroup
	for i, tx := range txs {
		select {
		case <-ctx.Done():
			wg.Wait()
			return nil, ctx.Err()
		default:
		}

		wg.Add(1)
		i, tx := i, tx
		if err := b.pool.Submit(func() {
			defer wg.Done()
			results[i], errs[i] = b.asm.Build(tx)
		}); err != nil {
			wg.Done()
			errs[i] = err
		}
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}
