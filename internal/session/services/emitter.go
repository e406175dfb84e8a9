package services

import (
	"sync"

	"github.com/architect/learning-playground/internal/session/models"
)

// emitter fans engine events out to any number of subscribers. The original
// single-slot callback field silently dropped earlier subscribers; every
// On* call here gets its own slot and an unsubscribe function.
type emitter struct {
	mu                sync.Mutex
	nextID            int
	stateListeners    map[int]func(models.GameState)
	progressListeners map[int]func(models.GameProgress)
	timeListeners     map[int]func(int)
}

func newEmitter() *emitter {
	return &emitter{
		stateListeners:    make(map[int]func(models.GameState)),
		progressListeners: make(map[int]func(models.GameProgress)),
		timeListeners:     make(map[int]func(int)),
	}
}

func (e *emitter) onState(fn func(models.GameState)) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextID
	e.nextID++
	e.stateListeners[id] = fn
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.stateListeners, id)
	}
}

func (e *emitter) onProgress(fn func(models.GameProgress)) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextID
	e.nextID++
	e.progressListeners[id] = fn
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.progressListeners, id)
	}
}

func (e *emitter) onTime(fn func(int)) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextID
	e.nextID++
	e.timeListeners[id] = fn
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.timeListeners, id)
	}
}

func (e *emitter) clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stateListeners = make(map[int]func(models.GameState))
	e.progressListeners = make(map[int]func(models.GameProgress))
	e.timeListeners = make(map[int]func(int))
}

// event is a queued notification. The engine gathers events while holding
// its own lock and flushes them afterwards, preserving mutation order while
// letting subscribers call back into the engine safely.
type event struct {
	state    *models.GameState
	progress *models.GameProgress
	seconds  *int
}

func stateEvent(s models.GameState) event {
	return event{state: &s}
}

func progressEvent(p models.GameProgress) event {
	return event{progress: &p}
}

func timeEvent(seconds int) event {
	return event{seconds: &seconds}
}

func (e *emitter) flush(events []event) {
	for _, ev := range events {
		switch {
		case ev.state != nil:
			for _, fn := range e.snapshotState() {
				fn(*ev.state)
			}
		case ev.progress != nil:
			for _, fn := range e.snapshotProgress() {
				fn(*ev.progress)
			}
		case ev.seconds != nil:
			for _, fn := range e.snapshotTime() {
				fn(*ev.seconds)
			}
		}
	}
}

func (e *emitter) snapshotState() []func(models.GameState) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fns := make([]func(models.GameState), 0, len(e.stateListeners))
	for _, fn := range e.stateListeners {
		fns = append(fns, fn)
	}
	return fns
}

func (e *emitter) snapshotProgress() []func(models.GameProgress) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fns := make([]func(models.GameProgress), 0, len(e.progressListeners))
	for _, fn := range e.progressListeners {
		fns = append(fns, fn)
	}
	return fns
}

func (e *emitter) snapshotTime() []func(int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fns := make([]func(int), 0, len(e.timeListeners))
	for _, fn := range e.timeListeners {
		fns = append(fns, fn)
	}
	return fns
}
