// Copyright 2025 The CCLAYOUT Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cclayout // import "modernc.org/cclayout/lib"

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestArenaAlloc(t *testing.T) {
	a := newArena(make([]byte, 64))
	b, err := a.alloc(16)
	if err != nil {
		t.Fatal(err)
	}

	if len(b) != 16 || cap(b) != 16 {
		t.Fatalf("got len %v cap %v, want 16/16", len(b), cap(b))
	}

	if _, err := a.alloc(48); err != nil {
		t.Fatal(err)
	}

	if g, e := a.use(), 64; g != e {
		t.Fatalf("high water %v, want %v", g, e)
	}

	if _, err := a.alloc(1); err == nil {
		t.Fatal("expected exhaustion")
	}

	a.reset()
	if _, err := a.alloc(64); err != nil {
		t.Fatal(err)
	}

	// Resetting rewinds the offset, not the high water mark.
	if g, e := a.use(), 64; g != e {
		t.Fatalf("high water %v, want %v", g, e)
	}

	if _, err := a.alloc(-1); err == nil {
		t.Fatal("expected an error for a negative size")
	}
}

func TestArenaWriter(t *testing.T) {
	a := newArena(make([]byte, 32))
	w := &arenaWriter{a: a}
	for _, s := range []string{"hello", ", ", "world"} {
		if _, err := w.Write([]byte(s)); err != nil {
			t.Fatal(err)
		}
	}

	if g, e := w.n, 12; g != e {
		t.Fatalf("wrote %v, want %v", g, e)
	}

	if string(a.b[:w.n]) != "hello, world" {
		t.Fatalf("got %q", a.b[:w.n])
	}

	if _, err := w.Write(make([]byte, 32)); err == nil {
		t.Fatal("expected exhaustion")
	}
}

// At no instant are more blocks checked out than the pool holds, and every
// block acquired is released exactly once.
func TestBlockPoolBounded(t *testing.T) {
	const (
		capacity = 3
		tasks    = 64
	)

	pool := newBlockPool(capacity)
	var cur, max, gets, puts int32
	var wg sync.WaitGroup
	for i := 0; i < tasks; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			b := pool.get()
			atomic.AddInt32(&gets, 1)
			n := atomic.AddInt32(&cur, 1)
			for {
				o := atomic.LoadInt32(&max)
				if n <= o || atomic.CompareAndSwapInt32(&max, o, n) {
					break
				}
			}
			b[0] = byte(n) // touch the block while owned
			atomic.AddInt32(&cur, -1)
			pool.put(b)
			atomic.AddInt32(&puts, 1)
		}()
	}
	wg.Wait()
	if max > capacity {
		t.Fatalf("%v blocks checked out concurrently, capacity %v", max, capacity)
	}

	if gets != tasks || puts != tasks {
		t.Fatalf("gets %v puts %v, want %v each", gets, puts, tasks)
	}

	if g, e := len(pool.free), capacity; g != e {
		t.Fatalf("%v blocks free after join, want %v", g, e)
	}
}

func TestBlockPoolBlocksUntilPut(t *testing.T) {
	pool := newBlockPool(1)
	b := pool.get()
	got := make(chan []byte)
	go func() { got <- pool.get() }()

	select {
	case <-got:
		t.Fatal("acquired a block from an empty pool")
	case <-time.After(50 * time.Millisecond):
		// blocked, as it must
	}

	pool.put(b)
	select {
	case <-got:
		// ok
	case <-time.After(time.Second):
		t.Fatal("put did not wake the waiter")
	}
}
