// Copyright 2025 The MIDIFlux Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package profileio

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/cozmopolit/midiflux"
)

// Watcher reloads a single profile file whenever it changes on disk,
// per §4.9's hot-reload requirement. It does not watch an entire
// directory of profiles; the host picks one active profile path and
// the controller swaps to whatever LoadFile returns for it.
type Watcher struct {
	path string
	log  *zap.SugaredLogger
	w    *fsnotify.Watcher
	stop chan struct{}
}

// NewWatcher opens an fsnotify watch on the directory containing path
// (fsnotify does not reliably notify on a watched file that is replaced
// by rename-and-move, a common editor/deploy pattern, so the directory
// is watched and events are filtered to this file's basename).
func NewWatcher(path string, log *zap.SugaredLogger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, err
	}
	return &Watcher{path: path, log: log, w: w, stop: make(chan struct{})}, nil
}

// Watch runs until Close is called, invoking onReload with the freshly
// loaded profile each time the watched file is written, created, or
// renamed into place. Decode errors are logged, not passed to onReload,
// so a transient partial write never swaps in a broken profile.
func (w *Watcher) Watch(onReload func(*midiflux.Profile)) {
	target := filepath.Base(w.path)
	for {
		select {
		case ev, ok := <-w.w.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != target {
				continue
			}
			if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) {
				continue
			}
			p, err := LoadFile(w.path)
			if err != nil {
				w.log.Warnw("profile reload failed, keeping previous profile", "path", w.path, "err", err)
				continue
			}
			if err := p.Validate(); err != nil {
				w.log.Warnw("reloaded profile failed validation, keeping previous profile", "path", w.path, "err", err)
				continue
			}
			onReload(p)

		case err, ok := <-w.w.Errors:
			if !ok {
				return
			}
			w.log.Warnw("profile watcher error", "err", err)

		case <-w.stop:
			return
		}
	}
}

// Close stops Watch and releases the underlying fsnotify watch.
func (w *Watcher) Close() error {
	close(w.stop)
	return w.w.Close()
}
