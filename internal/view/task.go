package view

import (
	"context"
	"errors"
	"sync"
)

var errTasksClosed = errors.New("session closed")

// TaskKey identifies a unit of background work. Seq separates concurrent work on the same
// resource, such as several chat sends.
type TaskKey struct {
	Screen   Screen
	Resource Resource
	Seq      uint64
}

type task struct {
	id     uint64
	cancel context.CancelFunc
}

// taskSet tracks cancellable work per key. Starting work under a key that is still running
// cancels the older work first.
type taskSet struct {
	mu     sync.Mutex
	parent context.Context
	stop   context.CancelFunc
	tasks  map[TaskKey]task
	lastID uint64
	closed bool
	wg     sync.WaitGroup
}

func newTaskSet() *taskSet {
	parent, stop := context.WithCancel(context.Background())
	return &taskSet{
		parent: parent,
		stop:   stop,
		tasks:  make(map[TaskKey]task),
	}
}

// goKey runs fn in its own goroutine under key.
func (ts *taskSet) goKey(key TaskKey, fn func(ctx context.Context)) error {
	ctx, release, err := ts.register(ts.parent, key)
	if err != nil {
		return err
	}
	go func() {
		defer release()
		fn(ctx)
	}()
	return nil
}

// bind ties a caller's context to key so leaving the screen cancels it. release must be called
// when the work is done.
func (ts *taskSet) bind(ctx context.Context, key TaskKey) (context.Context, func(), error) {
	return ts.register(ctx, key)
}

func (ts *taskSet) register(base context.Context, key TaskKey) (context.Context, func(), error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if ts.closed {
		return nil, nil, errTasksClosed
	}
	if old, ok := ts.tasks[key]; ok {
		old.cancel()
	}

	ctx, cancel := context.WithCancel(base)
	// bound contexts come from callers, so the session shutdown has to reach them too
	stopOnClose := context.AfterFunc(ts.parent, cancel)

	ts.lastID++
	id := ts.lastID
	ts.tasks[key] = task{id: id, cancel: cancel}
	ts.wg.Add(1)

	var once sync.Once
	release := func() {
		once.Do(func() {
			stopOnClose()
			cancel()
			ts.mu.Lock()
			if cur, ok := ts.tasks[key]; ok && cur.id == id {
				delete(ts.tasks, key)
			}
			ts.mu.Unlock()
			ts.wg.Done()
		})
	}
	return ctx, release, nil
}

func (ts *taskSet) cancelScreen(screen Screen) int {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	n := 0
	for key, t := range ts.tasks {
		if key.Screen == screen {
			t.cancel()
			delete(ts.tasks, key)
			n++
		}
	}
	return n
}

func (ts *taskSet) running() int {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return len(ts.tasks)
}

func (ts *taskSet) closeAll() {
	ts.mu.Lock()
	ts.closed = true
	ts.tasks = make(map[TaskKey]task)
	ts.mu.Unlock()
	ts.stop()
}

func (ts *taskSet) wait() {
	ts.wg.Wait()
}
