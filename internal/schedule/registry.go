package schedule

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"hllrotate/internal/logger"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Snapshot is one immutable view of the weekly rotation document.
type Snapshot struct {
	Version  int64
	LoadedAt time.Time
	Doc      Document
}

// Registry loads the weekly rotation file (JSON or YAML) and watches it
// for edits. Each reload validates the document against the embedded
// schema and bumps the snapshot version; resolvers re-derive their cached
// schedule when the version moves.
type Registry struct {
	path string
	v    *viper.Viper

	mu       sync.RWMutex
	snapshot Snapshot
}

// NewRegistry reads the schedule file and starts watching it.
func NewRegistry(path string) (*Registry, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("schedule registry requires path")
	}
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading schedule file failed: %w", err)
	}
	r := &Registry{path: path, v: v}
	if err := r.reload(); err != nil {
		return nil, err
	}
	v.OnConfigChange(func(evt fsnotify.Event) {
		if err := r.reload(); err != nil {
			logger.Errorf("schedule reload failed, keeping previous document: %v", err)
		}
	})
	v.WatchConfig()
	return r, nil
}

// Snapshot returns the current document view.
func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot
}

func (r *Registry) reload() error {
	if err := r.v.ReadInConfig(); err != nil {
		return fmt.Errorf("reading schedule file failed: %w", err)
	}
	settings := r.v.AllSettings()
	if err := validateSettings(settings); err != nil {
		return err
	}
	doc, err := decodeDocument(settings)
	if err != nil {
		return err
	}
	if doc.Schedule == nil && len(doc.Rotations) == 0 {
		return &Error{Kind: MissingSchedule, Detail: "no schedule or rotation_* section in " + filepath.Base(r.path)}
	}
	r.mu.Lock()
	r.snapshot = Snapshot{
		Version:  r.snapshot.Version + 1,
		LoadedAt: time.Now(),
		Doc:      doc,
	}
	version := r.snapshot.Version
	r.mu.Unlock()
	logger.Infof("schedule: loaded %s (version=%d, rotations=%d)", filepath.Base(r.path), version, len(doc.Rotations))
	return nil
}
