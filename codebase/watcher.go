package codebase

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// GrammarWatcher recompiles a language whenever its grammar file is
// written. Directories are watched rather than files so that editors
// which save by renaming a temporary file are noticed too.
type GrammarWatcher struct {
	codebase *Codebase
	watcher  *fsnotify.Watcher
	grammars map[string]string
	stopCh   chan struct{}
	doneCh   chan struct{}

	// OnReload, if set, is called after every reload attempt.
	OnReload func(language string, err error)
}

func NewGrammarWatcher(c *Codebase) (*GrammarWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w := &GrammarWatcher{
		codebase: c,
		watcher:  watcher,
		grammars: make(map[string]string),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	dirs := make(map[string]bool)
	for _, lang := range c.Config().Languages {
		path := filepath.Clean(lang.Grammar)
		w.grammars[path] = lang.Name
		dirs[filepath.Dir(path)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	return w, nil
}

func (w *GrammarWatcher) Start() {
	go w.run()
}

// Stop ends watching and waits for a reload in progress to finish.
func (w *GrammarWatcher) Stop() {
	close(w.stopCh)
	<-w.doneCh
	w.watcher.Close()
}

func (w *GrammarWatcher) run() {
	defer close(w.doneCh)
	for {
		select {
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Warningf("grammar watcher: %v", err)
		}
	}
}

func (w *GrammarWatcher) handle(event fsnotify.Event) {
	name, ok := w.grammars[filepath.Clean(event.Name)]
	if !ok || !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
		return
	}

	err := w.codebase.ReloadLanguage(name)
	if err != nil {
		log.Errorf("reload %s: %v", name, err)
	} else {
		log.Infof("reloaded %s after change to %s", name, event.Name)
	}
	if w.OnReload != nil {
		w.OnReload(name, err)
	}
}
