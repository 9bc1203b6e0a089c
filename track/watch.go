package track

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/zeebo/xxh3"
)

// Reload is a track file whose content changed on disk
type Reload struct {
	Path  string
	Track Track
}

// Watcher reloads authored track files while a scene runs. Events are only
// delivered when the decoded content actually changed.
type Watcher struct {
	watcher *fsnotify.Watcher
	Events  chan Reload
	Errors  chan error
	closeCh chan struct{}
	once    sync.Once

	seen map[string]uint64
}

func NewWatcher(dirs ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, err
		}
	}

	watcher := &Watcher{
		watcher: w,
		Events:  make(chan Reload, 16),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
		seen:    make(map[string]uint64),
	}
	go watcher.run()
	return watcher, nil
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.Events)
	defer close(w.Errors)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 || !isTrackFile(event.Name) {
				continue
			}

			data, err := os.ReadFile(event.Name)
			if err != nil {
				w.sendError(err)
				continue
			}
			if len(bytes.TrimSpace(data)) == 0 {
				// created but not written yet
				continue
			}
			reload, changed, err := w.decode(event.Name, data)
			if err != nil {
				w.sendError(err)
				continue
			}
			if !changed {
				continue
			}

			select {
			case w.Events <- reload:
			case <-w.closeCh:
				return
			}
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

// decode parses data unless it hashes the same as the last content seen at path.
// Editors often emit several writes per save; only the first carries news.
func (w *Watcher) decode(path string, data []byte) (Reload, bool, error) {
	sum := xxh3.Hash(data)
	if last, ok := w.seen[path]; ok && last == sum {
		return Reload{}, false, nil
	}

	t, err := ReadTrack(bytes.NewReader(data))
	if err != nil {
		return Reload{}, false, err
	}
	w.seen[path] = sum

	return Reload{Path: path, Track: t}, true, nil
}

func (w *Watcher) sendError(err error) {
	select {
	case w.Errors <- err:
	default:
	}
}

func isTrackFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
