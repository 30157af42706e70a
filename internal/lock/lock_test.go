// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package lock

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReadersShare(t *testing.T) {
	m := NewManager()
	u1 := m.ReadLock("a")
	done := make(chan struct{})
	go func() {
		u2 := m.ReadLock("a")
		u2()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("second reader blocked")
	}
	u1()
}

func TestWriterExcludesReaders(t *testing.T) {
	m := NewManager()
	unlock := m.WriteLock("a")

	acquired := make(chan struct{})
	go func() {
		u := m.ReadLock("a")
		close(acquired)
		u()
	}()

	select {
	case <-acquired:
		t.Fatal("reader acquired while writer held the path")
	case <-time.After(50 * time.Millisecond):
	}
	unlock()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("reader never acquired")
	}
}

func TestPathsAreIndependent(t *testing.T) {
	m := NewManager()
	ua := m.WriteLock("a")
	defer ua()

	done := make(chan struct{})
	go func() {
		ub := m.WriteLock("b")
		ub()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("writer on b blocked by writer on a")
	}
}

func TestGlobalWriteExcludesPaths(t *testing.T) {
	m := NewManager()
	ug := m.GlobalWrite()

	acquired := make(chan struct{})
	go func() {
		u := m.WriteLock("a")
		close(acquired)
		u()
	}()
	select {
	case <-acquired:
		t.Fatal("path lock acquired during global write")
	case <-time.After(50 * time.Millisecond):
	}
	ug()
	<-acquired
}

func TestUnlockIsIdempotentAndPathsReleased(t *testing.T) {
	m := NewManager()
	u := m.WriteLock("a")
	assert.Equal(t, 1, m.Paths())
	u()
	u()
	assert.Equal(t, 0, m.Paths())

	ug := m.GlobalWrite()
	ug()
	ug()
}

func TestConcurrentWritersSerialize(t *testing.T) {
	m := NewManager()
	var (
		wg      sync.WaitGroup
		inside  int32
		overlap atomic.Bool
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			u := m.WriteLock("onto")
			defer u()
			if atomic.AddInt32(&inside, 1) > 1 {
				overlap.Store(true)
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
		}()
	}
	wg.Wait()
	assert.False(t, overlap.Load())
	assert.Equal(t, 0, m.Paths())
}
