package template

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestWatchDirReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "a.yaml", "name: A\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	got := make(chan []Template, 4)
	done := make(chan error, 1)
	go func() { done <- WatchDir(ctx, dir, zaptest.NewLogger(t), func(ts []Template) { got <- ts }) }()

	// Give the watcher time to register before the first write.
	time.Sleep(100 * time.Millisecond)
	write(t, dir, "b.yaml", "name: B\n")

	deadline := time.After(5 * time.Second)
	for {
		select {
		case ts := <-got:
			if len(ts) == 2 && ts[1].ID == "b" {
				cancel()
				require.NoError(t, <-done)
				return
			}
		case <-deadline:
			t.Fatalf("no reload seen for %s", filepath.Join(dir, "b.yaml"))
		}
	}
}
