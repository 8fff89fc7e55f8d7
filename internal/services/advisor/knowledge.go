package advisor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// KnowledgeBase concatenates the .md and .txt documents of a directory
// into the grounding context, reloading when files change on disk.
type KnowledgeBase struct {
	dir string
	log *zap.Logger

	mu      sync.RWMutex
	content string
	files   int
}

func NewKnowledgeBase(dir string, log *zap.Logger) (*KnowledgeBase, error) {
	kb := &KnowledgeBase{dir: dir, log: log}
	if err := kb.Reload(); err != nil {
		return nil, err
	}
	return kb, nil
}

func isDocFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".md" || ext == ".txt"
}

// Reload re-reads every document. Files are concatenated in name order
// so the context is deterministic.
func (kb *KnowledgeBase) Reload() error {
	entries, err := os.ReadDir(kb.dir)
	if err != nil {
		return fmt.Errorf("read knowledge dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && isDocFile(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var b strings.Builder
	loaded := 0
	for _, name := range names {
		raw, err := os.ReadFile(filepath.Join(kb.dir, name))
		if err != nil {
			kb.log.Warn("skipping unreadable document", zap.String("file", name), zap.Error(err))
			continue
		}
		b.WriteString(fmt.Sprintf("### %s\n\n", name))
		b.Write(raw)
		b.WriteString("\n\n")
		loaded++
	}

	kb.mu.Lock()
	kb.content = b.String()
	kb.files = loaded
	kb.mu.Unlock()

	kb.log.Info("knowledge base loaded", zap.Int("documents", loaded))
	return nil
}

// Context returns the current concatenated document text.
func (kb *KnowledgeBase) Context() string {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	if kb.files == 0 {
		return "No knowledge documents are currently available."
	}
	return kb.content
}

// Documents reports how many files are loaded.
func (kb *KnowledgeBase) Documents() int {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	return kb.files
}

// Watch reloads the knowledge base whenever the directory changes,
// until the context ends.
func (kb *KnowledgeBase) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(kb.dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch %s: %w", kb.dir, err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
					continue
				}
				if !isDocFile(ev.Name) {
					continue
				}
				if err := kb.Reload(); err != nil {
					kb.log.Warn("knowledge reload failed", zap.Error(err))
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				kb.log.Warn("knowledge watcher error", zap.Error(err))
			}
		}
	}()
	return nil
}
