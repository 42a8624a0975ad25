package closer

import (
	"sync"
)

var (
	mu      sync.Mutex
	closers []func() error
	done    = make(chan struct{})
	once    sync.Once
)

// Add registers a cleanup function to run on shutdown.
func Add(closer func() error) {
	mu.Lock()
	defer mu.Unlock()
	closers = append(closers, closer)
}

// CloseAll runs registered closers in reverse registration order.
// The first error is returned, but every closer still runs.
func CloseAll() error {
	mu.Lock()
	fns := closers
	closers = nil
	mu.Unlock()

	var firstErr error
	for i := len(fns) - 1; i >= 0; i-- {
		if err := fns[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	once.Do(func() { close(done) })
	return firstErr
}

// Wait blocks until CloseAll has completed.
func Wait() {
	<-done
}
