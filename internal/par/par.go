// Package par splits index ranges across goroutines.
package par

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
)

// For calls fn over contiguous sub-ranges [lo, hi) covering [0, n) using up to
// workers goroutines (workers <= 0 means runtime.NumCPU()). It returns the
// first error returned by fn. Panics inside fn are recovered and returned as
// errors.
func For(n, workers int, fn func(lo, hi int) error) error {
	if n <= 0 {
		return nil
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > n {
		workers = n
	}
	chunk := (n + workers - 1) / workers
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for lo := 0; lo < n; lo += chunk {
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			err := call(fn, lo, hi)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}(lo, hi)
	}
	wg.Wait()
	return firstErr
}

func call(fn func(lo, hi int) error, lo, hi int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in range [%d,%d): %v\n%s", lo, hi, r, debug.Stack())
		}
	}()
	return fn(lo, hi)
}
