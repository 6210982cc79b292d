package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ragqa/internal/domain"
	"ragqa/internal/logging"
)

func write(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoad_DirectoryFiltersAndSorts(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "b.md"), "# B")
	write(t, filepath.Join(dir, "a.txt"), "A")
	write(t, filepath.Join(dir, "c.csv"), "x,y")
	write(t, filepath.Join(dir, "sub", "d.TXT"), "D")

	docs, err := Load([]string{dir})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := []string{
		filepath.Join(dir, "a.txt"),
		filepath.Join(dir, "b.md"),
		filepath.Join(dir, "sub", "d.TXT"),
	}
	if len(docs) != len(want) {
		t.Fatalf("expected %d docs, got %d", len(want), len(docs))
	}
	for i, d := range docs {
		if d.ID != want[i] || d.Path != want[i] {
			t.Fatalf("doc %d: got %s, want %s", i, d.ID, want[i])
		}
	}
	if docs[0].Text != "A" {
		t.Fatalf("unexpected text %q", docs[0].Text)
	}
}

func TestLoad_GlobDeduplicates(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "one.txt"), "1")
	write(t, filepath.Join(dir, "two.txt"), "2")
	docs, err := Load([]string{filepath.Join(dir, "*.txt"), filepath.Join(dir, "one.txt")})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 docs, got %d", len(docs))
	}
}

func TestLoad_NothingSupported(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "x.csv"), "1")
	if _, err := Load([]string{dir}); !errors.Is(err, ErrNoDocuments) {
		t.Fatalf("expected ErrNoDocuments, got %v", err)
	}
	if _, err := Load([]string{filepath.Join(dir, "missing.txt")}); err == nil {
		t.Fatalf("expected error for a missing file")
	}
}

func TestWatch_NewFiles(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "old.txt")
	write(t, existing, "old")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	got := make(chan domain.Document, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, dir, func(d domain.Document) error {
			got <- d
			return nil
		}, WithDebounce(20*time.Millisecond), WithKnown(existing), WithLogger(logging.Discard()))
	}()

	// give the watcher time to register
	time.Sleep(100 * time.Millisecond)
	write(t, existing, "old, edited")
	write(t, filepath.Join(dir, "ignored.csv"), "x")
	write(t, filepath.Join(dir, "new.txt"), "fresh text")

	select {
	case d := <-got:
		if d.ID != filepath.Join(dir, "new.txt") || d.Text != "fresh text" {
			t.Fatalf("unexpected document %+v", d)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("new document was not reported")
	}
	select {
	case d := <-got:
		t.Fatalf("unexpected second document %s", d.ID)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("watch returned %v", err)
	}
}

func TestDebouncer_Delivers(t *testing.T) {
	d := newDebouncer(10 * time.Millisecond)
	defer d.stop()
	d.touch("a.txt")
	d.touch("a.txt")
	select {
	case name := <-d.ready:
		if name != "a.txt" {
			t.Fatalf("unexpected name %q", name)
		}
		d.fired(name)
	case <-time.After(time.Second):
		t.Fatal("debounced name never delivered")
	}
	if len(d.timers) != 0 {
		t.Fatalf("timer left behind: %v", d.timers)
	}
}

func TestDebouncer_StopReleasesPendingSends(t *testing.T) {
	d := newDebouncer(time.Millisecond)
	d.touch("a.txt")
	d.touch("b.txt")
	// let both callbacks fire and block on ready, which nobody reads
	time.Sleep(30 * time.Millisecond)
	d.stop()

	released := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(released)
	}()
	select {
	case <-released:
	case <-time.After(time.Second):
		t.Fatal("timer callbacks still blocked after stop")
	}
}
