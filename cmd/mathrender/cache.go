package main

import (
	"time"

	"github.com/cryguy/mathrender/internal/rendercache"
)

// openCache opens the render cache in dir and drops renders older than
// maxAge. It returns nil when the cache is disabled or cannot be opened.
func openCache(dir string, maxAge time.Duration) *rendercache.Cache {
	if dir == "" {
		return nil
	}
	cache, err := rendercache.Open(dir)
	if err != nil {
		tracer().Errorf("render cache disabled: %v", err)
		return nil
	}
	if _, _, err := pruneCache(cache, maxAge, time.Now()); err != nil {
		tracer().Errorf("render cache: %v", err)
	}
	return cache
}

// pruneCache removes renders created more than maxAge before now. A
// non-positive maxAge keeps everything.
func pruneCache(cache *rendercache.Cache, maxAge time.Duration, now time.Time) (removed int64, kept int, err error) {
	if maxAge > 0 {
		if removed, err = cache.Prune(now.Add(-maxAge)); err != nil {
			return 0, 0, err
		}
	}
	if kept, err = cache.Len(); err != nil {
		return removed, 0, err
	}
	tracer().Debugf("render cache holds %d renders", kept)
	return removed, kept, nil
}
