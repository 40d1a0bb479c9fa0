// Package file is a config.Source backed by a single on-disk file,
// watched with fsnotify for hot reload.
package file

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/aehttpd/aehttpd/contrib/config"
)

type source struct {
	path string
}

// NewSource returns a config.Source that loads path whole, tagging the
// KeyValue's Format from the file extension (yaml/yml/json).
func NewSource(path string) config.Source {
	return &source{path: path}
}

func (s *source) Load() ([]*config.KeyValue, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	return []*config.KeyValue{{
		Key:    filepath.Base(s.path),
		Value:  data,
		Format: format(s.path),
	}}, nil
}

func (s *source) Watch() (config.Watcher, bool) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, false
	}
	dir := filepath.Dir(s.path)
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, false
	}
	return &watcher{src: s, fs: w}, true
}

type watcher struct {
	src *source
	fs  *fsnotify.Watcher
}

func (w *watcher) Next() ([]*config.KeyValue, error) {
	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil, os.ErrClosed
			}
			if filepath.Base(ev.Name) != filepath.Base(w.src.path) {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			return w.src.Load()
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil, os.ErrClosed
			}
			return nil, err
		}
	}
}

func (w *watcher) Stop() error {
	return w.fs.Close()
}

func format(path string) string {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	switch ext {
	case "yaml", "yml":
		return "yaml"
	case "json":
		return "json"
	default:
		return "yaml"
	}
}
