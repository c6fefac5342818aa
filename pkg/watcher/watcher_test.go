package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestNewDefaults(t *testing.T) {
	w := New("/plugin")
	assert.Equal(t, DefaultDebounce, w.debounce)
	assert.True(t, w.ignore[".git"])

	w = New("/plugin", WithDebounce(time.Second), WithIgnoreDirs("tmp"))
	assert.Equal(t, time.Second, w.debounce)
	assert.True(t, w.ignore["tmp"])
	assert.False(t, w.ignore[".git"])
}

func TestIgnored(t *testing.T) {
	w := New("/plugin")
	assert.True(t, w.ignored("/plugin/.git/HEAD"))
	assert.True(t, w.ignored("/plugin/node_modules/x/y.js"))
	assert.False(t, w.ignored("/plugin/skills/tuivision/SKILL.md"))
}

func TestWatchRerunsOnChange(t *testing.T) {
	defer goleak.VerifyNone(t)

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "scripts"), 0o755))

	var runs atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	w := New(root, WithDebounce(20*time.Millisecond))
	go func() {
		done <- w.Watch(ctx, func(context.Context) {
			runs.Add(1)
		})
	}()

	require.Eventually(t, func() bool { return runs.Load() == 1 }, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(root, "scripts", "new.sh"), []byte("#!/bin/sh\n"), 0o755))
	require.Eventually(t, func() bool { return runs.Load() >= 2 }, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancellation")
	}
}

func TestWatchMissingRoot(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "missing"))
	err := w.Watch(context.Background(), func(context.Context) {
		t.Fatal("callback must not run")
	})
	require.Error(t, err)
}
