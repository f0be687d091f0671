package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher 监听配置文件所在目录，文件写入/替换后重新加载并回调。
// 监听目录而非文件本身，编辑器"写临时文件再改名"的保存方式也能捕获。
type Watcher struct {
	path     string
	cooldown time.Duration
	watcher  *fsnotify.Watcher
	last     time.Time
}

// NewWatcher 创建并注册监听；cooldown 内的重复事件被忽略。
func NewWatcher(path string, cooldown time.Duration) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch config dir: %w", err)
	}
	return &Watcher{path: abs, cooldown: cooldown, watcher: fw}, nil
}

// Run 阻塞直到 ctx 结束；加载失败时调用 onError，旧配置保持不变。
func (w *Watcher) Run(ctx context.Context, onUpdate func(SimConfig), onError func(error)) error {
	defer w.watcher.Close()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			now := time.Now()
			if w.cooldown > 0 && now.Sub(w.last) < w.cooldown {
				continue
			}
			cfg, err := LoadWithEnvOverrides(w.path)
			if err != nil {
				if onError != nil {
					onError(err)
				}
				continue
			}
			w.last = now
			if onUpdate != nil {
				onUpdate(cfg)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			if onError != nil {
				onError(err)
			}
		}
	}
}

// Close 释放底层 watcher；Run 退出时也会调用。
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
