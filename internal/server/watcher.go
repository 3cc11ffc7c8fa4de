package server

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/dshills/brandguard/internal/policy"
	"github.com/dshills/brandguard/internal/store"
)

// policyWatcher mirrors a directory of policy files into the store. Each
// *.yaml/*.yml/*.json file becomes a brand named after the file stem; edits
// are picked up live so operators can manage policies as files. The fsnotify
// watcher is opened in run, which owns its lifetime; a server that is
// constructed but never started holds no watch descriptor.
type policyWatcher struct {
	dir    string
	store  *store.Store
	logger *zap.Logger
}

func newPolicyWatcher(dir string, st *store.Store, logger *zap.Logger) (*policyWatcher, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("server: policy dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("server: policy dir %s is not a directory", dir)
	}
	pw := &policyWatcher{dir: dir, store: st, logger: logger}
	pw.loadAll(context.Background())
	return pw, nil
}

// loadAll imports every policy file currently in the directory.
func (pw *policyWatcher) loadAll(ctx context.Context) {
	matches, _ := filepath.Glob(filepath.Join(pw.dir, "*"))
	for _, path := range matches {
		pw.load(ctx, path)
	}
}

func (pw *policyWatcher) load(ctx context.Context, path string) {
	brand := brandFromPath(path)
	if brand == "" {
		return
	}
	p, err := policy.LoadFile(path)
	if err != nil {
		pw.logger.Warn("skipping policy file", zap.String("path", path), zap.Error(err))
		return
	}
	if err := pw.store.SavePolicy(ctx, brand, p); err != nil {
		pw.logger.Warn("failed to store policy", zap.String("brand", brand), zap.Error(err))
		return
	}
	pw.logger.Info("policy loaded", zap.String("brand", brand), zap.String("path", path))
}

// run watches the directory and processes filesystem events until the
// context is canceled. The watcher is opened and closed here.
func (pw *policyWatcher) run(ctx context.Context) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		pw.logger.Error("policy watcher unavailable", zap.Error(err))
		return
	}
	defer w.Close()
	if err := w.Add(pw.dir); err != nil {
		pw.logger.Error("policy watcher unavailable", zap.String("dir", pw.dir), zap.Error(err))
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Write) {
				pw.load(ctx, event.Name)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			pw.logger.Warn("policy watcher error", zap.Error(err))
		}
	}
}

// brandFromPath maps "policies/acme.yaml" to "acme". Non-policy extensions
// return empty.
func brandFromPath(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml", ".json":
	default:
		return ""
	}
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}
