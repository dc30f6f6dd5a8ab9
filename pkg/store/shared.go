package store

import "sync"

// Shared is a Store safe for concurrent use. Transactions are serialized and
// listeners run after the write lock is released, so a listener may read or
// write the store. Calling Transact from inside a transaction deadlocks.
type Shared struct {
	mu  sync.RWMutex
	lmu sync.Mutex
	mem memory
}

// NewShared returns an empty Shared store.
func NewShared() *Shared {
	return &Shared{mem: newMemory()}
}

func (s *Shared) Read(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.mem.data[key]
	return v, ok
}

func (s *Shared) Write(key string, fn Updater) {
	_ = s.Transact(func(t Tx) error {
		t.Write(key, fn)
		return nil
	})
}

func (s *Shared) Transact(fn func(Tx) error) error {
	s.mu.Lock()
	keys, err := s.mem.apply(fn)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.lmu.Lock()
	listeners := s.mem.snapshotListeners()
	s.lmu.Unlock()
	notify(listeners, keys)
	return nil
}

func (s *Shared) Subscribe(fn Listener) func() {
	if fn == nil {
		return func() {}
	}
	s.lmu.Lock()
	id := s.mem.subscribe(fn)
	s.lmu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.lmu.Lock()
			delete(s.mem.listeners, id)
			s.lmu.Unlock()
		})
	}
}
