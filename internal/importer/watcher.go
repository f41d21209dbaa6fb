package importer

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/scrypster/docgraph/internal/extraction"
)

// DefaultSettleDelay is how long a new file must stay quiet before it is
// ingested.
const DefaultSettleDelay = 250 * time.Millisecond

// Watcher ingests .txt and .md files created in a directory after Start.
// Files already present are left alone. Each created file is ingested
// once, after writes to it have settled.
type Watcher struct {
	dir          string
	documentType string
	loader       *Loader
	callback     func(path string, sum *extraction.Summary, err error)

	// SettleDelay overrides DefaultSettleDelay when set before Start.
	SettleDelay time.Duration

	watcher *fsnotify.Watcher
	done    chan struct{}

	mu      sync.Mutex
	pending map[string]*time.Timer
	stopped bool
}

// NewWatcher creates a watcher for dir. callback runs on a timer goroutine
// after each ingestion attempt and may be nil.
func NewWatcher(dir, documentType string, loader *Loader, callback func(path string, sum *extraction.Summary, err error)) *Watcher {
	return &Watcher{
		dir:          dir,
		documentType: documentType,
		loader:       loader,
		callback:     callback,
		done:         make(chan struct{}),
		pending:      make(map[string]*time.Timer),
	}
}

// Start creates the directory if needed and begins watching. Call Stop to
// clean up.
func (w *Watcher) Start() error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return err
	}
	if w.SettleDelay <= 0 {
		w.SettleDelay = DefaultSettleDelay
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fw.Add(w.dir); err != nil {
		_ = fw.Close()
		return err
	}
	w.watcher = fw

	go w.loop()
	log.Printf("import: watching %s for new documents", w.dir)
	return nil
}

// Stop shuts down the watcher and cancels ingestions that have not started.
func (w *Watcher) Stop() {
	if w.watcher == nil {
		return
	}
	_ = w.watcher.Close()
	<-w.done

	w.mu.Lock()
	w.stopped = true
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
	w.mu.Unlock()
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case evt, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(evt)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("import: watcher error: %v", err)
		}
	}
}

func (w *Watcher) handle(evt fsnotify.Event) {
	name := filepath.Base(evt.Name)
	if strings.HasPrefix(name, ".") || !supportedExtensions[strings.ToLower(filepath.Ext(name))] {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	t, pending := w.pending[evt.Name]
	switch {
	case evt.Op&fsnotify.Create != 0 && !pending:
		path := evt.Name
		w.pending[path] = time.AfterFunc(w.SettleDelay, func() { w.ingest(path) })
	case evt.Op&fsnotify.Write != 0 && pending:
		t.Reset(w.SettleDelay)
	}
}

func (w *Watcher) ingest(path string) {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	delete(w.pending, path)
	w.mu.Unlock()

	sum, err := w.loader.LoadFile(path, w.documentType)
	if err != nil {
		log.Printf("import: skip %s: %v", filepath.Base(path), err)
	}
	if w.callback != nil {
		w.callback(path, sum, err)
	}
}
