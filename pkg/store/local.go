package store

// Local is an unsynchronized Store for a single owner.
type Local struct {
	mem memory
}

// NewLocal returns an empty Local store.
func NewLocal() *Local {
	return &Local{mem: newMemory()}
}

func (l *Local) Read(key string) (any, bool) {
	v, ok := l.mem.data[key]
	return v, ok
}

func (l *Local) Write(key string, fn Updater) {
	_ = l.Transact(func(t Tx) error {
		t.Write(key, fn)
		return nil
	})
}

func (l *Local) Transact(fn func(Tx) error) error {
	keys, err := l.mem.apply(fn)
	if err != nil {
		return err
	}
	notify(l.mem.snapshotListeners(), keys)
	return nil
}

func (l *Local) Subscribe(fn Listener) func() {
	if fn == nil {
		return func() {}
	}
	id := l.mem.subscribe(fn)
	return func() { delete(l.mem.listeners, id) }
}
