package artifact

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/leapstack-labs/incomecast/pkg/core"
)

// Defaults for reload behaviour.
const (
	DefaultReloadAttempts = 3
	DefaultReloadDelay    = 200 * time.Millisecond
	debounceInterval      = 100 * time.Millisecond
)

// ProviderConfig configures a Provider.
type ProviderConfig struct {
	Path        string
	ColumnsPath string
	Logger      *slog.Logger

	// ReloadAttempts bounds retries of a single reload; 0 uses the default.
	ReloadAttempts uint
	ReloadDelay    time.Duration
}

// Provider loads an artifact once and serves it to concurrent callers. A
// failed reload keeps serving the last good bundle.
type Provider struct {
	path        string
	columnsPath string
	logger      *slog.Logger
	attempts    uint
	delay       time.Duration

	once    sync.Once
	mu      sync.RWMutex
	bundle  *Bundle
	lastErr error
}

// NewProvider creates a provider. Nothing is read until the first call to
// Current or Reload.
func NewProvider(cfg ProviderConfig) *Provider {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	attempts := cfg.ReloadAttempts
	if attempts == 0 {
		attempts = DefaultReloadAttempts
	}
	delay := cfg.ReloadDelay
	if delay == 0 {
		delay = DefaultReloadDelay
	}
	return &Provider{
		path:        cfg.Path,
		columnsPath: cfg.ColumnsPath,
		logger:      logger,
		attempts:    attempts,
		delay:       delay,
	}
}

// Static returns a provider that always serves b. Useful for tests and
// embedded callers that build bundles themselves.
func Static(b *Bundle) *Provider {
	p := NewProvider(ProviderConfig{})
	p.once.Do(func() {})
	p.bundle = b
	return p
}

// Current returns the loaded bundle, loading it on first use. When no
// bundle has ever loaded the error wraps core.ErrModelUnavailable.
func (p *Provider) Current() (*Bundle, error) {
	p.once.Do(func() {
		p.store(Load(p.path, p.columnsPath))
	})

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.bundle != nil {
		return p.bundle, nil
	}
	if p.lastErr == nil {
		return nil, core.ErrModelUnavailable
	}
	return nil, fmt.Errorf("%w: %w", core.ErrModelUnavailable, p.lastErr)
}

// LastError returns the error of the most recent load attempt, if any.
func (p *Provider) LastError() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastErr
}

// Paths returns the artifact and columns paths being served.
func (p *Provider) Paths() (artifactPath, columnsPath string) {
	return p.path, p.columnsPath
}

// Reload reads the artifact again, retrying transient failures such as a
// file caught mid-write.
func (p *Provider) Reload(ctx context.Context) error {
	p.once.Do(func() {})

	var b *Bundle
	err := retry.Do(
		func() error {
			var err error
			b, err = Load(p.path, p.columnsPath)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(p.attempts),
		retry.Delay(p.delay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			p.logger.Debug("artifact reload failed, retrying", "attempt", n+1, "error", err)
		}),
	)
	p.store(b, err)
	return err
}

func (p *Provider) store(b *Bundle, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.lastErr = err
	if err != nil {
		p.logger.Error("failed to load model artifact", "path", p.path, "error", err)
		return
	}
	p.bundle = b
	p.logger.Info("model artifact loaded",
		"name", b.Meta.Name,
		"version", b.Meta.Version,
		"kind", b.Meta.Kind,
		"columns", len(b.Columns),
		"columns_source", string(b.ColumnsSource),
	)
}

// Watch reloads the artifact whenever it or the columns file changes and
// calls onChange after each reload attempt. It blocks until ctx is done and
// any reload already under way has finished.
func (p *Provider) Watch(ctx context.Context, onChange func(*Bundle, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	// Watch parent directories: editors and deploy tools replace files by
	// rename, which drops a watch on the file itself.
	targets := make(map[string]bool)
	dirs := make(map[string]bool)
	for _, path := range []string{p.path, p.columnsPath} {
		if path == "" {
			continue
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		targets[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	var (
		debounceTimer *time.Timer
		pending       sync.WaitGroup
	)
	defer func() {
		if debounceTimer != nil && debounceTimer.Stop() {
			pending.Done()
		}
		pending.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil || !targets[abs] {
				continue
			}

			if debounceTimer != nil && debounceTimer.Stop() {
				pending.Done()
			}
			pending.Add(1)
			debounceTimer = time.AfterFunc(debounceInterval, func() {
				defer pending.Done()
				if ctx.Err() != nil {
					return
				}
				p.logger.Debug("artifact changed, reloading", "file", event.Name)
				err := p.Reload(ctx)
				if onChange != nil {
					b, _ := p.Current()
					onChange(b, err)
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			p.logger.Error("watcher error", "error", err)
		}
	}
}
