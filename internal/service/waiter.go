package service

import (
	"context"
	"errors"
	"sync"
	"time"
)

// WaitTimeout is the longest a client is held before it gets the unchanged
// state back
const WaitTimeout = 25 * time.Second

var ErrWaitShutdownTimeout = errors.New("wait registry shutdown timed out")

// WaitRegistry parks clients until the game they watch moves past the
// version they last saw
type WaitRegistry struct {
	mu       sync.RWMutex
	waiters  map[string][]*waitRequest // gameID → parked clients
	shutdown chan struct{}
	closed   bool
	wg       sync.WaitGroup
}

type waitRequest struct {
	version int
	notify  chan struct{} // buffered, receives exactly once
	done    chan struct{}
	timer   *time.Timer
	once    sync.Once
}

func (r *waitRequest) wake() {
	r.once.Do(func() {
		if r.timer != nil {
			r.timer.Stop()
		}
		r.notify <- struct{}{}
		close(r.done)
	})
}

func NewWaitRegistry() *WaitRegistry {
	return &WaitRegistry{
		waiters:  make(map[string][]*waitRequest),
		shutdown: make(chan struct{}),
	}
}

// RegisterWait returns a channel that receives once when the game changes,
// the wait times out, the game is deleted or the registry shuts down.
func (w *WaitRegistry) RegisterWait(ctx context.Context, gameID string, version int) <-chan struct{} {
	req := &waitRequest{
		version: version,
		notify:  make(chan struct{}, 1),
		done:    make(chan struct{}),
	}

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		req.wake()
		return req.notify
	}
	req.timer = time.AfterFunc(WaitTimeout, req.wake)
	w.waiters[gameID] = append(w.waiters[gameID], req)
	w.wg.Add(1)
	w.mu.Unlock()

	go func() {
		defer w.wg.Done()
		select {
		case <-ctx.Done():
			if req.timer != nil {
				req.timer.Stop()
			}
		case <-req.done:
		case <-w.shutdown:
			req.wake()
		}
		w.remove(gameID, req)
	}()

	return req.notify
}

// NotifyGame wakes every waiter whose version differs from the current one
func (w *WaitRegistry) NotifyGame(gameID string, version int) {
	w.mu.RLock()
	list := append([]*waitRequest(nil), w.waiters[gameID]...)
	w.mu.RUnlock()

	for _, req := range list {
		if req.version != version {
			req.wake()
		}
	}
}

// RemoveGame wakes every waiter on a deleted game
func (w *WaitRegistry) RemoveGame(gameID string) {
	w.mu.RLock()
	list := append([]*waitRequest(nil), w.waiters[gameID]...)
	w.mu.RUnlock()

	for _, req := range list {
		req.wake()
	}
}

// Waiting reports how many clients are parked on a game
func (w *WaitRegistry) Waiting(gameID string) int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.waiters[gameID])
}

// Shutdown releases every waiter and waits for the watcher goroutines
func (w *WaitRegistry) Shutdown(timeout time.Duration) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.shutdown)
	w.mu.Unlock()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return ErrWaitShutdownTimeout
	}
}

func (w *WaitRegistry) remove(gameID string, req *waitRequest) {
	w.mu.Lock()
	defer w.mu.Unlock()

	list := w.waiters[gameID]
	for i, r := range list {
		if r == req {
			w.waiters[gameID] = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(w.waiters[gameID]) == 0 {
		delete(w.waiters, gameID)
	}
}
