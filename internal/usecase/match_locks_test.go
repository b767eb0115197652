package usecase

import (
	"sync"
	"testing"
	"time"
)

func TestMatchLocks_SerializesPerMatch(t *testing.T) {
	locks := NewMatchLocks()

	var (
		wg      sync.WaitGroup
		counter int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock("m1")
			defer unlock()
			v := counter
			time.Sleep(time.Microsecond)
			counter = v + 1
		}()
	}
	wg.Wait()

	if counter != 50 {
		t.Fatalf("lost updates under lock: %d", counter)
	}
	if n := locks.size(); n != 0 {
		t.Fatalf("expected idle lock entries to be released, got %d", n)
	}
}

func TestMatchLocks_IndependentMatchesDoNotBlock(t *testing.T) {
	locks := NewMatchLocks()
	unlockA := locks.Lock("a")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlock := locks.Lock("b")
		unlock()
		unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("lock on another match blocked")
	}
}
