// Package workpool splits independent index ranges across CPU workers.
package workpool

import (
	"runtime"
	"sync"
)

// For calls fn(i) for every i in [0, n), spreading the indices over runtime.NumCPU()
// goroutines. fn must only write state owned by index i. A panic in fn is raised again on
// the calling goroutine once every worker has stopped.
func For(n int, fn func(i int)) {
	forWorkers(n, runtime.NumCPU(), fn)
}

func forWorkers(n, workers int, fn func(i int)) {
	if n <= 0 {
		return
	}
	if workers < 1 {
		workers = 1
	}
	if workers > n {
		workers = n
	}
	if workers == 1 {
		for i := range n {
			fn(i)
		}
		return
	}

	var (
		wg       sync.WaitGroup
		once     sync.Once
		panicked bool
		value    any
	)
	wg.Add(workers)
	for w := range workers {
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					once.Do(func() { panicked, value = true, r })
				}
			}()
			for i := w; i < n; i += workers {
				fn(i)
			}
		}()
	}
	wg.Wait()
	if panicked {
		panic(value)
	}
}
