// Copyright 2025 The CCLAYOUT Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cclayout // import "modernc.org/cclayout/lib"

import (
	"sync"
)

// blockSize is the fixed capacity of one scratch block.
const blockSize = 16 << 20

// blockPool is a fixed set of pre-allocated scratch blocks. With capacity
// workers+1 no task waits long for a free block and peak scratch memory
// stays bounded no matter how many tasks a run dispatches. Checkout and
// checkin happen under the mutex, a caller owns a block exclusively until
// it puts it back.
type blockPool struct {
	cond *sync.Cond
	free [][]byte
	mu   sync.Mutex
}

func newBlockPool(n int) *blockPool {
	p := &blockPool{free: make([][]byte, 0, n)}
	p.cond = sync.NewCond(&p.mu)
	for i := 0; i < n; i++ {
		p.free = append(p.free, make([]byte, blockSize))
	}
	return p
}

// get blocks until a free block exists. It cannot fail: the pool is
// pre-populated and the scheduler bounds concurrent checkouts below the
// pool capacity.
func (p *blockPool) get() []byte {
	p.mu.Lock()

	defer p.mu.Unlock()

	for len(p.free) == 0 {
		p.cond.Wait()
	}
	r := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]
	return r
}

// put returns a block to the free set. The caller must not touch the
// block's contents afterwards.
func (p *blockPool) put(b []byte) {
	p.mu.Lock()
	p.free = append(p.free, b)
	p.mu.Unlock()
	p.cond.Signal()
}

// arena is a linear allocator over one scratch block, scoped to a single
// task. It never grows, exhausting the block fails the task.
type arena struct {
	b   []byte
	off int
	hw  int
}

func newArena(b []byte) *arena { return &arena{b: b} }

func (a *arena) alloc(n int) ([]byte, error) {
	if n < 0 || n > len(a.b)-a.off {
		return nil, errorf("scratch block exhausted: need %v, have %v", n, len(a.b)-a.off)
	}

	r := a.b[a.off : a.off+n : a.off+n]
	a.off += n
	if a.off > a.hw {
		a.hw = a.off
	}
	return r, nil
}

// use returns the high water mark reached over the arena's lifetime.
func (a *arena) use() int { return a.hw }

func (a *arena) reset() { a.off = 0 }

// arenaWriter satisfies io.Writer by bump-allocating every chunk from the
// task arena, bounding the writer by the block capacity.
type arenaWriter struct {
	a *arena
	n int
}

func (w *arenaWriter) Write(b []byte) (int, error) {
	p, err := w.a.alloc(len(b))
	if err != nil {
		return 0, err
	}

	copy(p, b)
	w.n += len(b)
	return len(b), nil
}
