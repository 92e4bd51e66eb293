package session

import (
	"context"
	"fmt"
	"sync"

	"docqa-be/pkg/rag"
	"docqa-be/pkg/store"
)

// threadLock is a one-slot semaphore shared by every caller waiting on the
// same thread. refs counts holders plus waiters.
type threadLock struct {
	slot chan struct{}
	refs int
}

// Manager owns thread histories and serialises turns per thread. Turns on
// different threads never block each other.
type Manager struct {
	history store.HistoryStore

	mu    sync.Mutex
	locks map[string]*threadLock
}

func NewManager(history store.HistoryStore) *Manager {
	return &Manager{
		history: history,
		locks:   make(map[string]*threadLock),
	}
}

// Acquire blocks until the caller holds the thread or ctx is done. The
// returned release func must be called exactly once.
func (m *Manager) Acquire(ctx context.Context, threadID string) (func(), error) {
	threadID = store.NormalizeThreadID(threadID)

	m.mu.Lock()
	l, ok := m.locks[threadID]
	if !ok {
		l = &threadLock{slot: make(chan struct{}, 1)}
		m.locks[threadID] = l
	}
	l.refs++
	m.mu.Unlock()

	select {
	case l.slot <- struct{}{}:
	case <-ctx.Done():
		m.drop(threadID, l)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-l.slot
			m.drop(threadID, l)
		})
	}, nil
}

func (m *Manager) drop(threadID string, l *threadLock) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(m.locks, threadID)
	}
}

// ActiveThreads reports how many threads currently have a holder or waiter.
func (m *Manager) ActiveThreads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}

func (m *Manager) Load(ctx context.Context, threadID string) ([]store.Turn, error) {
	turns, err := m.history.Load(ctx, store.NormalizeThreadID(threadID))
	if err != nil {
		return nil, fmt.Errorf("load history: %w: %w", rag.ErrHistory, err)
	}
	return turns, nil
}

func (m *Manager) Append(ctx context.Context, threadID string, turn store.Turn) error {
	if err := m.history.Append(ctx, store.NormalizeThreadID(threadID), turn); err != nil {
		return fmt.Errorf("append history: %w: %w", rag.ErrHistory, err)
	}
	return nil
}

// Clear drops every turn of the thread. It waits for an in-flight turn on
// the same thread to finish first.
func (m *Manager) Clear(ctx context.Context, threadID string) error {
	release, err := m.Acquire(ctx, threadID)
	if err != nil {
		return err
	}
	defer release()

	if err := m.history.Clear(ctx, store.NormalizeThreadID(threadID)); err != nil {
		return fmt.Errorf("clear history: %w: %w", rag.ErrHistory, err)
	}
	return nil
}
