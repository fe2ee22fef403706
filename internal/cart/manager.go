package cart

import (
	"context"
	"sync"
)

// sessionLock serializes operations for one session. refs counts waiters
// plus the holder so the registry entry can be evicted once nobody needs it.
type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// Manager owns the live carts, one per session, and serializes every
// operation for a given session: the cart mutation and the write-through
// snapshot save happen under the same per-session lock, so no reader ever
// observes a torn intermediate state.
//
// Session ids come from an unauthenticated request header, so the registry
// must not grow with every id it sees: empty carts and idle locks are
// evicted as soon as the last operation on the session finishes.
type Manager struct {
	mu    sync.Mutex
	carts map[string]*Cart
	locks map[string]*sessionLock
	store SnapshotStore
}

func NewManager(store SnapshotStore) *Manager {
	return &Manager{
		carts: make(map[string]*Cart),
		locks: make(map[string]*sessionLock),
		store: store,
	}
}

// Update runs fn against the session's cart under its lock and persists the
// result when fn succeeds. An empty cart is persisted as a delete, so a
// session that never adds anything leaves no key behind in the store.
func (m *Manager) Update(ctx context.Context, sessionID string, fn func(*Cart) error) error {
	lock := m.acquire(sessionID)
	defer m.release(sessionID, lock)

	c, err := m.cartLocked(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := fn(c); err != nil {
		return err
	}
	if c.Len() == 0 {
		return m.store.Delete(ctx, sessionID)
	}
	return m.store.Save(ctx, sessionID, c.Snapshot())
}

// View runs fn against a read-only view of the session's cart under its lock.
func (m *Manager) View(ctx context.Context, sessionID string, fn func(*Cart)) error {
	lock := m.acquire(sessionID)
	defer m.release(sessionID, lock)

	c, err := m.cartLocked(ctx, sessionID)
	if err != nil {
		return err
	}
	fn(c)
	return nil
}

// Clear empties the session's cart and drops the persisted snapshot in one
// step under the session lock.
func (m *Manager) Clear(ctx context.Context, sessionID string) error {
	lock := m.acquire(sessionID)
	defer m.release(sessionID, lock)

	if err := m.store.Delete(ctx, sessionID); err != nil {
		return err
	}

	m.mu.Lock()
	delete(m.carts, sessionID)
	m.mu.Unlock()
	return nil
}

func (m *Manager) acquire(sessionID string) *sessionLock {
	m.mu.Lock()
	lock, ok := m.locks[sessionID]
	if !ok {
		lock = &sessionLock{}
		m.locks[sessionID] = lock
	}
	lock.refs++
	m.mu.Unlock()

	lock.mu.Lock()
	return lock
}

// release drops the session lock and evicts registry entries nobody needs
// anymore: an empty cart is forgotten (its snapshot is already gone from the
// store), and the lock itself goes once the last waiter is done and no live
// cart remains. refs hitting zero under m.mu guarantees no goroutine is
// inside the session's critical section, so inspecting the cart is safe.
func (m *Manager) release(sessionID string, lock *sessionLock) {
	lock.mu.Unlock()

	m.mu.Lock()
	lock.refs--
	if lock.refs == 0 {
		if c, ok := m.carts[sessionID]; ok && c.Len() == 0 {
			delete(m.carts, sessionID)
		}
		if _, ok := m.carts[sessionID]; !ok {
			delete(m.locks, sessionID)
		}
	}
	m.mu.Unlock()
}

// cartLocked returns the live cart for the session, rebuilding it from the
// persisted snapshot on first access. Callers must hold the session lock.
func (m *Manager) cartLocked(ctx context.Context, sessionID string) (*Cart, error) {
	m.mu.Lock()
	c, ok := m.carts[sessionID]
	m.mu.Unlock()
	if ok {
		return c, nil
	}

	snap, err := m.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		c = NewCart()
	} else {
		c = FromSnapshot(*snap)
	}

	m.mu.Lock()
	m.carts[sessionID] = c
	m.mu.Unlock()
	return c, nil
}

// registrySize reports the live cache footprint, for tests.
func (m *Manager) registrySize() (carts, locks int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.carts), len(m.locks)
}
