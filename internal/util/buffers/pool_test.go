package buffers

import (
	"sync"
	"testing"
)

func TestGetReturnsCapacity(t *testing.T) {
	p := NewPool(64 * 1024)
	buf := p.Get()
	if cap(*buf) != 64*1024 {
		t.Fatalf("cap = %d, want %d", cap(*buf), 64*1024)
	}
	if len(*buf) != 0 {
		t.Fatalf("len = %d, want 0", len(*buf))
	}
	p.Put(buf)
}

func TestPutThenGetReusesBacking(t *testing.T) {
	p := NewPool(1024)
	buf := p.Get()
	*buf = append(*buf, []byte("secret")...)
	p.Put(buf)

	buf2 := p.Get()
	if len(*buf2) != 0 {
		t.Fatalf("expected zero-length buffer after reuse, got %d", len(*buf2))
	}
	for i, b := range *buf2 {
		if b != 0 {
			t.Fatalf("expected cleared backing array at %d, got %d", i, b)
		}
	}
}

func TestPutRejectsWrongCapacity(t *testing.T) {
	p := NewPool(1024)
	wrongSize := make([]byte, 0, 128)
	p.Put(&wrongSize) // should not panic, just not pool it
}

func TestPutNilDoesNotPanic(t *testing.T) {
	p := NewPool(1024)
	p.Put(nil)
}

func TestConcurrentGetPut(t *testing.T) {
	p := NewPool(4096)
	const goroutines = 10
	const iterations = 100

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				buf := p.Get()
				*buf = append(*buf, byte(j))
				p.Put(buf)
			}
		}()
	}
	wg.Wait()
}
