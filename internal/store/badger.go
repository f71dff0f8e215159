// internal/store/badger.go
//
// BadgerDB implementation of Store for durable game sessions.
//
// Keys expire after TTL so abandoned sessions do not accumulate; a zero TTL
// keeps them forever. Value-log garbage collection runs in the background when
// GCInterval is set.

package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/ycdle/internal/apperr"
)

// BadgerConfig configures a Badger-backed Store.
type BadgerConfig struct {
	// Path is the database directory. Ignored when InMemory is true.
	Path string
	// InMemory keeps everything in RAM. Useful for tests.
	InMemory bool
	// TTL is applied to every Set. Zero disables expiry.
	TTL time.Duration
	// GCInterval is how often value-log GC runs. Zero disables it.
	GCInterval time.Duration
}

type badgerStore struct {
	db     *badger.DB
	ttl    time.Duration
	stopGC chan struct{}
	doneGC chan struct{}
}

// badgerLogger adapts zerolog to Badger's Logger interface.
type badgerLogger struct{ l zerolog.Logger }

func (b badgerLogger) Errorf(f string, a ...any)   { b.l.Error().Msgf(f, a...) }
func (b badgerLogger) Warningf(f string, a ...any) { b.l.Warn().Msgf(f, a...) }
func (b badgerLogger) Infof(f string, a ...any)    { b.l.Debug().Msgf(f, a...) }
func (b badgerLogger) Debugf(f string, a ...any)   { b.l.Trace().Msgf(f, a...) }

// OpenBadger opens (and creates if missing) a Badger-backed Store.
func OpenBadger(cfg BadgerConfig) (Store, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, apperr.New("store.open", apperr.KindConfiguration, "badger path is required")
		}
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithLogger(badgerLogger{l: log.With().Str("component", "badger").Logger()})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, apperr.Wrap("store.open", apperr.KindStorage, err)
	}
	s := &badgerStore{db: db, ttl: cfg.TTL}
	if cfg.GCInterval > 0 && !cfg.InMemory {
		s.stopGC = make(chan struct{})
		s.doneGC = make(chan struct{})
		go s.runGC(cfg.GCInterval)
	}
	return s, nil
}

func (s *badgerStore) Get(ctx context.Context, key string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, apperr.New("store.get", apperr.KindNotFound, key)
	}
	if err != nil {
		return nil, apperr.Wrap("store.get", apperr.KindStorage, err)
	}
	return out, nil
}

func (s *badgerStore) Set(ctx context.Context, key string, val []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(key), val)
		if s.ttl > 0 {
			e = e.WithTTL(s.ttl)
		}
		return txn.SetEntry(e)
	})
	return apperr.Wrap("store.set", apperr.KindStorage, err)
}

// SetIfAbsent reads and writes key in one transaction. A concurrent writer
// makes the commit fail with ErrConflict; the retry then sees the key.
func (s *badgerStore) SetIfAbsent(ctx context.Context, key string, val []byte) (bool, error) {
	for {
		var wrote bool
		err := s.db.Update(func(txn *badger.Txn) error {
			_, err := txn.Get([]byte(key))
			if err == nil {
				return nil
			}
			if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
			e := badger.NewEntry([]byte(key), val)
			if s.ttl > 0 {
				e = e.WithTTL(s.ttl)
			}
			wrote = true
			return txn.SetEntry(e)
		})
		if errors.Is(err, badger.ErrConflict) {
			if err := ctx.Err(); err != nil {
				return false, err
			}
			continue
		}
		if err != nil {
			return false, apperr.Wrap("store.setifabsent", apperr.KindStorage, err)
		}
		return wrote, nil
	}
}

func (s *badgerStore) Delete(ctx context.Context, key string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	return apperr.Wrap("store.delete", apperr.KindStorage, err)
}

func (s *badgerStore) Close() error {
	if s.stopGC != nil {
		close(s.stopGC)
		<-s.doneGC
	}
	return s.db.Close()
}

func (s *badgerStore) runGC(every time.Duration) {
	defer close(s.doneGC)
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-s.stopGC:
			return
		case <-t.C:
			// ErrNoRewrite just means there was nothing to collect.
			if err := s.db.RunValueLogGC(0.5); err != nil && !errors.Is(err, badger.ErrNoRewrite) {
				log.Warn().Err(err).Msg("badger value log GC")
			}
		}
	}
}
