// internal/daily/selector.go
//
// Selector resolves the day's target company. Results are cached per
// (day, pool snapshot), so a reload keeping its version string still
// recomputes; concurrent misses for the same key share one computation
// through singleflight.

package daily

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/robalobadob/ycdle/internal/apperr"
	"github.com/robalobadob/ycdle/internal/catalog"
)

// maxCachedDays bounds the cache; debug offsets can request arbitrary days.
const maxCachedDays = 64

// Selection is the resolved target for one (possibly offset) day.
type Selection struct {
	TargetID string `json:"yc_id"`
	Day      int64  `json:"day"`
	Index    int    `json:"index"`
	Offset   int    `json:"offset"`
	PoolSize int    `json:"poolSize"`
	DateKey  string `json:"dateKey"`
	Version  string `json:"datasetVersion"`
}

// PoolFunc returns the current candidate pool.
type PoolFunc func() *catalog.Catalog

type cacheKey struct {
	day  int64
	pool *catalog.Catalog
}

// Selector computes daily selections for a fixed seed.
type Selector struct {
	seed  string
	pool  PoolFunc
	now   func() time.Time
	group singleflight.Group

	mu    sync.Mutex
	cache map[cacheKey]Selection
}

// Option configures a Selector.
type Option func(*Selector)

// WithNow overrides the clock. Useful for tests.
func WithNow(now func() time.Time) Option {
	return func(s *Selector) { s.now = now }
}

// NewSelector builds a Selector. An empty seed is accepted here and reported
// as a configuration error on every Select, so the server can still start and
// serve unlimited games.
func NewSelector(seed string, pool PoolFunc, opts ...Option) *Selector {
	s := &Selector{
		seed:  seed,
		pool:  pool,
		now:   time.Now,
		cache: make(map[cacheKey]Selection),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Seed returns the configured secret. Only debug responses expose it.
func (s *Selector) Seed() string { return s.seed }

// Now returns the selector's clock reading.
func (s *Selector) Now() time.Time { return s.now() }

// Today resolves the selection for the current UTC day.
func (s *Selector) Today() (Selection, error) { return s.Select(0) }

// Select resolves the selection for today's day number plus offset. The
// offset is applied to the day before hashing.
func (s *Selector) Select(offset int) (Selection, error) {
	if s.seed == "" {
		return Selection{}, apperr.New("daily.select", apperr.KindConfiguration, "DAILY_SEED is not set")
	}
	pool := s.pool()
	if pool == nil || pool.Len() == 0 {
		return Selection{}, apperr.New("daily.select", apperr.KindNoCandidates, "candidate pool is empty")
	}

	day := DayNumber(s.now()) + int64(offset)
	key := cacheKey{day: day, pool: pool}

	s.mu.Lock()
	sel, ok := s.cache[key]
	s.mu.Unlock()
	if ok {
		sel.Offset = offset
		return sel, nil
	}

	v, err, _ := s.group.Do(fmt.Sprintf("%p|%d", pool, day), func() (any, error) {
		idx, err := SelectIndex(s.seed, day, pool.Len())
		if err != nil {
			return Selection{}, err
		}
		sel := Selection{
			TargetID: pool.At(idx).ID,
			Day:      day,
			Index:    idx,
			PoolSize: pool.Len(),
			DateKey:  DateKey(DayStart(day)),
			Version:  pool.Version(),
		}
		s.mu.Lock()
		if len(s.cache) >= maxCachedDays {
			s.cache = make(map[cacheKey]Selection)
		}
		s.cache[key] = sel
		s.mu.Unlock()
		return sel, nil
	})
	if err != nil {
		return Selection{}, err
	}
	sel = v.(Selection)
	sel.Offset = offset
	return sel, nil
}
