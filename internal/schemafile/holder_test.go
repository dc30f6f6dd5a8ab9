package schemafile_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-formstate/internal/schemafile"
)

const v1 = `fields:
  size:
    type: number
    minimum: 5
    default: 7
`

const v2 = `fields:
  size:
    type: number
    minimum: 5
  name:
    type: string
`

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestHolder_Reload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "form.yaml")
	writeFile(t, path, v1)

	h, err := schemafile.NewHolder(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("new holder: %v", err)
	}
	f, err := h.NewForm()
	if err != nil {
		t.Fatalf("new form: %v", err)
	}
	if got, _ := f.Value("size"); got != 7.0 {
		t.Fatalf("size = %v, want default 7", got)
	}

	var seen []string
	h.OnChange(func(s schemafile.Snapshot) { seen = s.Schema.Names() })

	writeFile(t, path, v2)
	if err := h.Reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if diff := cmp.Diff([]string{"name", "size"}, seen); diff != "" {
		t.Fatalf("reloaded fields mismatch (-want +got):\n%s", diff)
	}
	if f.Schema().Has("name") {
		t.Fatalf("existing forms must keep their schema")
	}

	writeFile(t, path, "fields: [")
	if err := h.Reload(); err == nil {
		t.Fatalf("expected reload error")
	}
	if !h.Get().Schema.Has("name") {
		t.Fatalf("failed reload must keep the previous schema")
	}
}

func TestHolder_Watch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "form.yaml")
	writeFile(t, path, v1)

	h, err := schemafile.NewHolder(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("new holder: %v", err)
	}
	reloaded := make(chan int, 8)
	h.OnChange(func(s schemafile.Snapshot) { reloaded <- s.Schema.Len() })
	if err := h.Watch(); err != nil {
		t.Fatalf("watch: %v", err)
	}
	defer h.Stop()

	writeFile(t, path, v2)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		select {
		case n := <-reloaded:
			if n == 2 {
				return
			}
		case <-ctx.Done():
			t.Fatalf("schema was not reloaded after the file changed")
		}
	}
}

func TestNewHolder_MissingFile(t *testing.T) {
	if _, err := schemafile.NewHolder(filepath.Join(t.TempDir(), "nope.yaml"), zerolog.Nop()); err == nil {
		t.Fatalf("expected error")
	}
}
