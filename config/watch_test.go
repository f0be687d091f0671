package config

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatcherStopsOnCancel(t *testing.T) {
	path := writeTempConfig(t, "episodes: 1\n")
	w, err := NewWatcher(path, 0)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // cancel immediately
	if err := w.Run(ctx, nil, nil); err == nil {
		t.Fatalf("expected context cancellation")
	}
}

func TestWatcherTriggersOnChange(t *testing.T) {
	path := writeTempConfig(t, "episodes: 1\n")
	w, err := NewWatcher(path, 0)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	updates := make(chan SimConfig, 4)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(cfg SimConfig) {
			select {
			case updates <- cfg:
			default:
			}
		}, nil)
	}()

	require.NoError(t, os.WriteFile(path, []byte("episodes: 3\n"), 0o644))

	// 截断与写入可能产生多个事件，等到读到新内容为止
	for reloaded := false; !reloaded; {
		select {
		case cfg := <-updates:
			reloaded = cfg.Episodes == 3
		case <-ctx.Done():
			t.Fatal("timed out waiting for reload")
		}
	}
	cancel()
	<-done
}

func TestWatcherReportsInvalidConfig(t *testing.T) {
	path := writeTempConfig(t, "episodes: 1\n")
	w, err := NewWatcher(path, 0)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	errs := make(chan error, 4)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, nil, func(err error) {
			select {
			case errs <- err:
			default:
			}
		})
	}()

	require.NoError(t, os.WriteFile(path, []byte("episodes: 0\n"), 0o644))

	select {
	case err := <-errs:
		require.Error(t, err)
	case <-ctx.Done():
		t.Fatal("timed out waiting for error")
	}
	cancel()
	<-done
}
