package levels

import (
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/milk9111/ldtk/schema"
)

// Watcher reloads a project whenever its file or one of its level files
// changes on disk.
type Watcher struct {
	watcher  *fsnotify.Watcher
	loader   *Loader
	path     string
	Projects chan *schema.Project
	Errors   chan error
	closeCh  chan struct{}
	done     chan struct{}
	once     sync.Once
}

// Watch starts watching the project at path. Only loaders created with
// NewLoader can watch.
func (l *Loader) Watch(path string) (*Watcher, error) {
	if _, ok := l.fsys.(osFS); !ok {
		return nil, errors.New("levels: watching requires a loader created with NewLoader")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		_ = w.Close()
		return nil, err
	}

	watcher := &Watcher{
		watcher:  w,
		loader:   l,
		path:     path,
		Projects: make(chan *schema.Project, 1),
		Errors:   make(chan error, 1),
		closeCh:  make(chan struct{}),
		done:     make(chan struct{}),
	}
	if p, err := l.LoadProject(path); err == nil {
		watcher.addLevelDirs(p)
	}
	go watcher.run()
	return watcher, nil
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
		close(w.Projects)
		close(w.Errors)
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.done)
	last := make(map[string]time.Time)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if !w.isProjectFile(event.Name) && !isLevelFile(event.Name) {
				continue
			}
			now := time.Now()
			if t, ok := last[event.Name]; ok && now.Sub(t) < 100*time.Millisecond {
				continue
			}
			last[event.Name] = now
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.sendError(err)
		case <-w.closeCh:
			return
		}
	}
}

func (w *Watcher) reload() {
	p, err := w.loader.LoadProject(w.path)
	if err != nil {
		w.sendError(err)
		return
	}
	w.addLevelDirs(p)
	if err := w.loader.ResolveExternalLevels(p, w.path); err != nil {
		w.sendError(err)
		return
	}
	select {
	case w.Projects <- p:
	case <-w.closeCh:
	}
}

func (w *Watcher) sendError(err error) {
	select {
	case w.Errors <- err:
	case <-w.closeCh:
	}
}

// addLevelDirs watches the directories holding external level files, which
// LDtk keeps in a folder next to the project.
func (w *Watcher) addLevelDirs(p *schema.Project) {
	if !p.ExternalLevels {
		return
	}
	base := filepath.Dir(w.path)
	seen := map[string]bool{base: true}
	for _, lvl := range p.AllLevels() {
		if lvl.ExternalRelPath == nil {
			continue
		}
		dir := filepath.Dir(filepath.Join(base, filepath.FromSlash(*lvl.ExternalRelPath)))
		if seen[dir] {
			continue
		}
		seen[dir] = true
		if err := w.watcher.Add(dir); err != nil {
			w.loader.Log.WithError(err).WithField("dir", dir).Warn("cannot watch level directory")
		}
	}
}

func (w *Watcher) isProjectFile(path string) bool {
	return filepath.Clean(path) == filepath.Clean(w.path)
}

func isLevelFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".ldtkl" || ext == ".json"
}
