package util

import (
	"sync"
	"testing"
	"time"
)

func TestTickWorkerRunsAndStops(t *testing.T) {
	var wg sync.WaitGroup
	ticks := make(chan struct{}, 16)
	tw := NewTickWorker("test-tick", 5*time.Millisecond, func() {
		select {
		case ticks <- struct{}{}:
		default:
		}
	}, &wg)

	tw.Start()
	select {
	case <-ticks:
	case <-time.After(time.Second):
		t.Fatal("tick worker never fired")
	}

	tw.Stop()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("tick worker goroutine did not exit on stop")
	}
}
