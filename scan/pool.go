package scan

import (
	"context"
	"sync/atomic"

	dfs "github.com/rclone/dsync/fs"
)

// poolCapacity is the fixed size of the scan buffer pool: 6 buffers of B
// bytes, bounding scan memory to 6*B = 24 MiB regardless of fan-out
// (spec.md §4.4, §5).
const poolCapacity = 6

// Pool is a bounded, blocking free list of B-byte buffers, the bounded
// resource backend/local's parallel_stat.go approximates with a worker
// pool — here made explicit as a buffer free list so the exact capacity
// bound (spec.md §8.7) is directly observable in tests via InUse.
type Pool struct {
	free    chan []byte
	inUse   int32
	waiting int32
}

// NewPool allocates poolCapacity buffers of B bytes up front.
func NewPool() *Pool {
	p := &Pool{free: make(chan []byte, poolCapacity)}
	for i := 0; i < poolCapacity; i++ {
		p.free <- make([]byte, dfs.B)
	}
	return p
}

// Get blocks until a buffer is available or ctx is done.
func (p *Pool) Get(ctx context.Context) ([]byte, bool) {
	atomic.AddInt32(&p.waiting, 1)
	defer atomic.AddInt32(&p.waiting, -1)
	select {
	case buf := <-p.free:
		atomic.AddInt32(&p.inUse, 1)
		return buf, true
	case <-ctx.Done():
		return nil, false
	}
}

// Put returns buf to the pool. buf must have come from Get.
func (p *Pool) Put(buf []byte) {
	atomic.AddInt32(&p.inUse, -1)
	p.free <- buf
}

// InUse reports how many buffers are currently checked out. Used by tests
// to assert the pool never exceeds its capacity.
func (p *Pool) InUse() int { return int(atomic.LoadInt32(&p.inUse)) }

// Waiting reports how many goroutines are currently blocked in Get.
func (p *Pool) Waiting() int { return int(atomic.LoadInt32(&p.waiting)) }

// Capacity returns the pool's fixed size.
func (p *Pool) Capacity() int { return poolCapacity }
