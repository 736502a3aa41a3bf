package workers

import (
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

// Runner executes fire-and-forget work off the request path.
type Runner interface {
	Go(task func())
}

var _ Runner = (*Pool)(nil)

type Pool struct {
	pool *ants.Pool
}

func NewPool(size int) (*Pool, error) {
	p, err := ants.NewPool(size,
		ants.WithNonblocking(true),
		ants.WithPanicHandler(func(v any) {
			zap.L().Error("workers: task panicked", zap.Any("panic", v))
		}),
	)
	if err != nil {
		return nil, err
	}
	return &Pool{pool: p}, nil
}

// Go submits task, running it inline when the pool is saturated or closed.
func (p *Pool) Go(task func()) {
	if err := p.pool.Submit(task); err != nil {
		zap.L().Warn("workers: pool rejected task, running inline", zap.Error(err))
		task()
	}
}

func (p *Pool) Release() {
	p.pool.Release()
}

// Inline runs every task on the caller's goroutine.
type Inline struct{}

func (Inline) Go(task func()) { task() }
