// Package signals watches for termination signals and runs registered
// cleanup before the process exits.
package signals

import (
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Watcher fans a termination signal out to registered close handlers.
type Watcher struct {
	doneCh  chan struct{}
	closed  bool
	mu      sync.Mutex
	closers []func()
}

// AddOnClose registers a function to run when a signal arrives or the
// watcher is closed, whichever happens first.
func (w *Watcher) AddOnClose(closer func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closers = append(w.closers, closer)
}

// Close runs the registered close handlers exactly once and releases
// anyone waiting on Done.
func (w *Watcher) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.closed = true
	for _, closer := range w.closers {
		closer()
	}
	w.closers = nil
	close(w.doneCh)
}

// Done closes once a signal has been handled or Close has been called.
func (w *Watcher) Done() <-chan struct{} {
	return w.doneCh
}

// NewWatcher returns a Watcher running its close handlers on SIGINT,
// SIGTERM, or SIGQUIT.
func NewWatcher() *Watcher {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	w := &Watcher{
		doneCh: make(chan struct{}),
	}
	go func() {
		<-signalCh
		w.Close()
	}()
	return w
}
