// Package control implements the file-based run control surface. A
// cancel file dropped into the signals directory stops an in-progress
// run, whether it came from `vantage cancel` or was created by hand.
package control

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const cancelSignal = "cancel"

// Watcher observes a signals directory for cancel requests.
type Watcher struct {
	signalsDir string

	mu       sync.RWMutex
	canceled bool
	cancelCh chan struct{}

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewWatcher ensures the signals directory exists and begins watching
// it. If the fsnotify watcher cannot be set up the Watcher still works
// through the stat fallback in Canceled.
func NewWatcher(signalsDir string) (*Watcher, error) {
	if err := os.MkdirAll(signalsDir, 0755); err != nil {
		return nil, err
	}

	w := &Watcher{
		signalsDir: signalsDir,
		cancelCh:   make(chan struct{}),
		done:       make(chan struct{}),
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		// Continue without watcher - will use polling fallback
		return w, nil
	}
	w.watcher = watcher

	if err := watcher.Add(signalsDir); err != nil {
		watcher.Close()
		w.watcher = nil
		return w, nil
	}

	go w.watchSignals()

	return w, nil
}

// watchSignals monitors the signals directory for the cancel file. An
// event is only a hint to look; the file's existence is the state, so a
// signal cleared before its event is processed stays cleared.
func (w *Watcher) watchSignals() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			base := filepath.Base(event.Name)
			if base == cancelSignal && (event.Op&fsnotify.Create != 0 || event.Op&fsnotify.Write != 0) {
				w.checkFile()
			}
		case <-w.watcher.Errors:
			// Ignore errors, keep watching
		}
	}
}

// checkFile marks the watcher canceled if the signal file exists now.
func (w *Watcher) checkFile() {
	if _, err := os.Stat(filepath.Join(w.signalsDir, cancelSignal)); err == nil {
		w.markCanceled()
	}
}

func (w *Watcher) markCanceled() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.canceled {
		return
	}
	w.canceled = true
	close(w.cancelCh)
}

// Canceled returns true if a cancel signal has been received. It also
// checks the file directly in case the watcher missed it.
func (w *Watcher) Canceled() bool {
	w.checkFile()

	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.canceled
}

// Done returns a channel that is closed once a cancel signal arrives.
// Without a working fsnotify watcher the close happens on the next
// Canceled call instead.
func (w *Watcher) Done() <-chan struct{} {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.cancelCh
}

// Dir returns the watched signals directory.
func (w *Watcher) Dir() string {
	return w.signalsDir
}

// Clear removes the signal file and resets the canceled state so the
// watcher can serve another run. The file goes first so an in-flight
// event processed mid-reset finds nothing to act on.
func (w *Watcher) Clear() {
	os.Remove(filepath.Join(w.signalsDir, cancelSignal))

	w.mu.Lock()
	if w.canceled {
		w.canceled = false
		w.cancelCh = make(chan struct{})
	}
	w.mu.Unlock()
}

// Close shuts down the watcher.
func (w *Watcher) Close() {
	close(w.done)
	if w.watcher != nil {
		w.watcher.Close()
	}
}

// SendCancel creates a cancel signal file in the given directory. Any
// process watching that directory stops its current run.
func SendCancel(signalsDir string) error {
	if err := os.MkdirAll(signalsDir, 0755); err != nil {
		return err
	}
	path := filepath.Join(signalsDir, cancelSignal)
	return os.WriteFile(path, []byte(time.Now().Format(time.RFC3339)), 0644)
}
