// internal/catalog/watch.go
//
// Source holds the live catalog and lets the dataset file be replaced while the
// server runs. Readers always see a complete catalog: a reload either swaps in
// a fully indexed replacement or leaves the old one in place.

package catalog

import (
	"context"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// Source is a concurrency-safe holder of the current catalog.
type Source struct {
	cur  atomic.Pointer[Catalog]
	pool atomic.Pointer[eligibleSnapshot]
}

type eligibleSnapshot struct {
	from  *Catalog
	badge string
	pool  *Catalog
}

// NewSource returns a Source serving c.
func NewSource(c *Catalog) *Source {
	s := &Source{}
	s.cur.Store(c)
	return s
}

// Current returns the catalog snapshot in effect right now.
func (s *Source) Current() *Catalog { return s.cur.Load() }

// Replace swaps in c and returns the previous catalog.
func (s *Source) Replace(c *Catalog) *Catalog { return s.cur.Swap(c) }

// Eligible returns the candidate pool of the current catalog for badge. The
// filtered pool is memoized until the catalog is replaced.
func (s *Source) Eligible(badge string) *Catalog {
	c := s.Current()
	if c == nil {
		return nil
	}
	if p := s.pool.Load(); p != nil && p.from == c && p.badge == badge {
		return p.pool
	}
	pool := c.Eligible(badge)
	s.pool.Store(&eligibleSnapshot{from: c, badge: badge, pool: pool})
	return pool
}

// Watch reloads path into s whenever the file is written or recreated, until
// ctx is done. Failed reloads are logged and keep the previous catalog.
// onReload, if non-nil, runs after every successful swap.
func (s *Source) Watch(ctx context.Context, path string, onReload func(*Catalog)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// Watch the directory: editors and deploy tools replace files by rename,
	// which drops a watch placed on the file itself.
	if err := w.Add(filepath.Dir(path)); err != nil {
		_ = w.Close()
		return err
	}
	target := filepath.Clean(path)

	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target || !ev.Has(fsnotify.Write|fsnotify.Create) {
					continue
				}
				c, err := Load(path)
				if err != nil {
					log.Warn().Err(err).Str("path", path).Msg("catalog reload failed; keeping previous")
					continue
				}
				prev := s.Replace(c)
				log.Info().Str("from", prev.Version()).Str("to", c.Version()).Msg("catalog reloaded")
				if onReload != nil {
					onReload(c)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warn().Err(err).Msg("catalog watcher")
			}
		}
	}()
	return nil
}
