// Package store provides the reactive key/value substrate form state lives
// in. A Local store is for single-goroutine owners; a Shared store may be
// written from several goroutines and shared by several forms through
// Namespace.
package store

import (
	"sort"
	"strings"
)

// Updater computes the next value for a key from its previous value.
type Updater func(prev any, ok bool) any

// Listener receives the keys changed by one committed transaction.
type Listener func(keys []string)

// Tx is the view handed to a transaction. Reads observe the transaction's own
// pending writes.
type Tx interface {
	Read(key string) (any, bool)
	Write(key string, fn Updater)
}

// Store is the substrate contract.
type Store interface {
	Read(key string) (any, bool)
	Write(key string, fn Updater)
	// Transact applies every write made by fn atomically. When fn returns an
	// error nothing is committed and no listener runs.
	Transact(fn func(Tx) error) error
	Subscribe(fn Listener) (cancel func())
}

// Set returns an Updater that ignores the previous value.
func Set(v any) Updater {
	return func(any, bool) any { return v }
}

type memory struct {
	data      map[string]any
	listeners map[int]Listener
	nextID    int
}

func newMemory() memory {
	return memory{data: map[string]any{}, listeners: map[int]Listener{}}
}

func (m *memory) apply(fn func(Tx) error) ([]string, error) {
	t := &tx{base: m.data, pending: map[string]any{}}
	if err := fn(t); err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(t.pending))
	for k, v := range t.pending {
		m.data[k] = v
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *memory) subscribe(fn Listener) int {
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	return id
}

func (m *memory) snapshotListeners() []Listener {
	ids := make([]int, 0, len(m.listeners))
	for id := range m.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]Listener, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.listeners[id])
	}
	return out
}

func notify(listeners []Listener, keys []string) {
	if len(keys) == 0 {
		return
	}
	for _, fn := range listeners {
		fn(append([]string(nil), keys...))
	}
}

type tx struct {
	base    map[string]any
	pending map[string]any
}

func (t *tx) Read(key string) (any, bool) {
	if v, ok := t.pending[key]; ok {
		return v, true
	}
	v, ok := t.base[key]
	return v, ok
}

func (t *tx) Write(key string, fn Updater) {
	if fn == nil {
		return
	}
	prev, ok := t.Read(key)
	t.pending[key] = fn(prev, ok)
}

// Namespace scopes every key of s under prefix. Listeners only see keys
// inside the namespace, with the prefix removed.
func Namespace(s Store, prefix string) Store {
	if prefix == "" {
		return s
	}
	return &namespaced{inner: s, prefix: prefix + "/"}
}

type namespaced struct {
	inner  Store
	prefix string
}

func (n *namespaced) Read(key string) (any, bool) {
	return n.inner.Read(n.prefix + key)
}

func (n *namespaced) Write(key string, fn Updater) {
	n.inner.Write(n.prefix+key, fn)
}

func (n *namespaced) Transact(fn func(Tx) error) error {
	return n.inner.Transact(func(t Tx) error {
		return fn(namespacedTx{inner: t, prefix: n.prefix})
	})
}

func (n *namespaced) Subscribe(fn Listener) func() {
	return n.inner.Subscribe(func(keys []string) {
		var scoped []string
		for _, k := range keys {
			if rest, ok := strings.CutPrefix(k, n.prefix); ok {
				scoped = append(scoped, rest)
			}
		}
		if len(scoped) > 0 {
			fn(scoped)
		}
	})
}

type namespacedTx struct {
	inner  Tx
	prefix string
}

func (t namespacedTx) Read(key string) (any, bool) {
	return t.inner.Read(t.prefix + key)
}

func (t namespacedTx) Write(key string, fn Updater) {
	t.inner.Write(t.prefix+key, fn)
}
