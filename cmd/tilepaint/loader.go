package main

import (
	"errors"
	"image"
	"log"

	"github.com/milk9111/tilepaint/assets"
	"github.com/milk9111/tilepaint/editor"
	"github.com/milk9111/tilepaint/watch"
)

type decodeResult struct {
	token editor.LoadToken
	img   image.Image
	err   error
}

// loader decodes sheet payloads off the game loop. Results are handed back
// to the session from Update, so the session is only ever touched by one
// goroutine.
type loader struct {
	results chan decodeResult
	watcher *watch.Watcher
}

func newLoader() *loader {
	return &loader{results: make(chan decodeResult, 8)}
}

func (l *loader) decode(req editor.ImageRequest) {
	go func() {
		img, err := assets.Decode(req.Source)
		l.results <- decodeResult{token: req.Token, img: img, err: err}
	}()
}

// drain completes every finished decode.
func (l *loader) drain(s *editor.Session) {
	for {
		select {
		case r := <-l.results:
			err := s.CompleteImage(r.token, r.img, r.err)
			switch {
			case errors.Is(err, editor.ErrStaleLoad):
				log.Printf("Discarded stale sheet load %d", r.token)
			case err != nil:
				log.Printf("Sheet load failed: %v", err)
			}
		default:
			return
		}
	}
}

// watch replaces any previous watcher with one on path.
func (l *loader) watch(path string) {
	l.stopWatching()
	w, err := watch.NewWatcher(path)
	if err != nil {
		log.Printf("Failed to watch %s: %v", path, err)
		return
	}
	l.watcher = w
}

// changed reports whether the watched sheet was modified since the last call.
func (l *loader) changed() bool {
	if l.watcher == nil {
		return false
	}
	changed := false
	for {
		select {
		case _, ok := <-l.watcher.Events:
			if !ok {
				l.watcher = nil
				return changed
			}
			changed = true
		case err, ok := <-l.watcher.Errors:
			if !ok {
				l.watcher = nil
				return changed
			}
			log.Printf("Watch error: %v", err)
		default:
			return changed
		}
	}
}

func (l *loader) stopWatching() {
	if l.watcher == nil {
		return
	}
	if err := l.watcher.Close(); err != nil {
		log.Printf("Failed to stop watcher: %v", err)
	}
	l.watcher = nil
}
