package buffers

import (
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/rescale/rescale-copy/internal/constants"
)

// Pool provides reusable chunk buffers of one fixed size so that repeated
// copy runs do not reallocate a buffer per worker.
type Pool struct {
	size        int
	pool        sync.Pool
	allocations atomic.Int64 // New buffers created
	gets        atomic.Int64 // Buffers handed out
}

// NewPool creates a pool of size-byte buffers.
func NewPool(size int) *Pool {
	p := &Pool{size: size}
	p.pool.New = func() interface{} {
		allocs := p.allocations.Add(1)
		// Log every 10th allocation to avoid spam during heavy use
		if allocs%10 == 0 {
			gets := p.gets.Load()
			log.Debug().
				Int("size", p.size).
				Int64("allocations", allocs).
				Int64("gets", gets).
				Msg("Buffer pool growing")
		}
		buf := make([]byte, p.size)
		return &buf
	}
	return p
}

// Size returns the length of buffers handed out by the pool.
func (p *Pool) Size() int { return p.size }

// Get retrieves a buffer from the pool.
// The buffer must be returned with Put when done.
//
// Usage:
//
//	buf := pool.Get()
//	defer pool.Put(buf)
//	n, err := src.Read(*buf)
//	// Use (*buf)[:n] for actual data
func (p *Pool) Get() *[]byte {
	p.gets.Add(1)
	return p.pool.Get().(*[]byte)
}

// Put returns a buffer to the pool for reuse.
// Only buffers of the pool's size are kept. The buffer is cleared first.
func (p *Pool) Put(buf *[]byte) {
	if buf != nil && len(*buf) == p.size {
		clear(*buf)
		p.pool.Put(buf)
	}
}

// Stats returns current pool statistics
type Stats struct {
	BufferSize  int   // Size of pooled buffers (bytes)
	Allocations int64 // Total buffers created
	Gets        int64 // Total buffers handed out
}

// Stats returns the pool's counters.
func (p *Pool) Stats() Stats {
	return Stats{
		BufferSize:  p.size,
		Allocations: p.allocations.Load(),
		Gets:        p.gets.Load(),
	}
}

var (
	defaultPool     *Pool
	defaultPoolOnce sync.Once
)

// Default returns the shared pool of constants.ChunkSize buffers.
func Default() *Pool {
	defaultPoolOnce.Do(func() {
		defaultPool = NewPool(constants.ChunkSize)
	})
	return defaultPool
}
