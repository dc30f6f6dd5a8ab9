// Package schemafile keeps the current schema loaded from a YAML file and
// reloads it when the file changes. Forms already built keep the schema
// they were created with.
package schemafile

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/schema"
)

// Snapshot is one successfully loaded version of the file.
type Snapshot struct {
	Schema   schema.Schema
	Defaults map[string]any
	LoadedAt time.Time
}

// Holder provides concurrent access to the latest schema.
type Holder struct {
	mu       sync.RWMutex
	current  Snapshot
	path     string
	logger   zerolog.Logger
	watcher  *fsnotify.Watcher
	onChange []func(Snapshot)
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewHolder loads path.
func NewHolder(path string, logger zerolog.Logger) (*Holder, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}
	snap, err := load(absPath)
	if err != nil {
		return nil, err
	}
	return &Holder{
		current: snap,
		path:    absPath,
		logger:  logger.With().Str("schema_file", absPath).Logger(),
		stopCh:  make(chan struct{}),
	}, nil
}

func load(path string) (Snapshot, error) {
	s, defaults, err := schema.LoadFile(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load schema: %w", err)
	}
	return Snapshot{Schema: s, Defaults: defaults, LoadedAt: time.Now()}, nil
}

// Get returns the current snapshot.
func (h *Holder) Get() Snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// NewForm builds a form from the current snapshot. opts are applied after
// the snapshot defaults, so WithDefaultValues overrides them.
func (h *Holder) NewForm(opts ...form.Option) (*form.Form, error) {
	snap := h.Get()
	all := append([]form.Option{form.WithDefaultValues(cloneDefaults(snap.Defaults))}, opts...)
	return form.New(snap.Schema, all...)
}

// Reload reads the file again. On failure the previous snapshot is kept.
func (h *Holder) Reload() error {
	snap, err := load(h.path)
	if err != nil {
		h.logger.Error().Err(err).Msg("schema reload failed, keeping previous schema")
		return fmt.Errorf("reload schema: %w", err)
	}

	h.mu.Lock()
	old := h.current
	h.current = snap
	listeners := append([]func(Snapshot){}, h.onChange...)
	h.mu.Unlock()

	h.logger.Info().
		Strs("old_fields", old.Schema.Names()).
		Strs("new_fields", snap.Schema.Names()).
		Msg("schema reloaded")
	for _, fn := range listeners {
		fn(snap)
	}
	return nil
}

// OnChange registers fn to run after every successful reload.
func (h *Holder) OnChange(fn func(Snapshot)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onChange = append(h.onChange, fn)
}

// Watch starts reloading on file changes.
func (h *Holder) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	// Editors often save by renaming over the file, so watch the directory.
	if err := watcher.Add(filepath.Dir(h.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch directory: %w", err)
	}
	h.watcher = watcher
	go h.watchLoop(watcher)

	h.logger.Info().Msg("watching schema file for changes")
	return nil
}

// Stop ends watching. It is safe to call more than once.
func (h *Holder) Stop() {
	h.stopOnce.Do(func() {
		close(h.stopCh)
		if h.watcher != nil {
			h.watcher.Close()
		}
	})
}

func (h *Holder) watchLoop(watcher *fsnotify.Watcher) {
	filename := filepath.Base(h.path)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			h.logger.Debug().Str("event", event.Op.String()).Msg("schema file changed")
			_ = h.Reload()

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			h.logger.Error().Err(err).Msg("file watcher error")

		case <-h.stopCh:
			return
		}
	}
}

func cloneDefaults(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
