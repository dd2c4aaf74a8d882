package store

import (
	"math"
	"sync"

	"github.com/rs/zerolog/log"

	storeerrors "versionedstore/pkg/errors"
)

// unsetObservedStreamTime is the sentinel observedStreamTime holds before
// any put or delete has been observed. It sits far enough below any real
// timestamp domain that observedStreamTime - historyRetention never
// overflows and never treats pre-first-put state as having expired
// anything.
const unsetObservedStreamTime = math.MinInt64 / 2

// Store is the facade clients open and call: it holds configuration and
// the observed stream-time clock, and exposes put/delete/get/getAsOf over
// the two-tier layout implemented by the rest of this package.
type Store struct {
	mu sync.Mutex

	name             string
	historyRetention int64
	segmentInterval  int64

	engine   Engine
	segments *SegmentRegistry
	client   VersionedStoreClient
	ctx      Context

	observedStreamTime int64
	open               bool
}

// NewStore constructs a Store bound to engine, not yet open.
func NewStore(engine Engine, cfg Config) *Store {
	return &Store{
		name:               cfg.Name,
		historyRetention:   cfg.HistoryRetention,
		segmentInterval:    cfg.SegmentInterval,
		engine:             engine,
		observedStreamTime: unsetObservedStreamTime,
	}
}

// Open opens the latest-tier column and the segment registry, and
// initialises the store against ctx.
func (s *Store) Open(ctx Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.open {
		return nil
	}
	latestTier := s.engine.ColumnFamily(latestValueColumnFamily(s.name))
	s.segments = NewSegmentRegistry(s.engine, s.name, s.segmentInterval, s.historyRetention)
	s.client = newLiveClient(latestTier, s.segments)
	s.ctx = ctx
	s.open = true
	return nil
}

func (s *Store) requireOpen() error {
	if !s.open {
		return storeerrors.ErrStoreClosed
	}
	return nil
}

// Name returns the store's configured name.
func (s *Store) Name() string { return s.name }

// IsOpen reports whether the store is currently open.
func (s *Store) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// Persistent always returns true: this store is not an in-memory cache
// in the stream-processor sense, even though its default backing engine
// (MemEngine) happens not to survive a process restart.
func (s *Store) Persistent() bool { return true }

// Put inserts (key, value, timestamp), advancing observedStreamTime.
// value == nil writes a tombstone.
func (s *Store) Put(key, value []byte, timestamp int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireOpen(); err != nil {
		return err
	}
	if timestamp > s.observedStreamTime {
		s.observedStreamTime = timestamp
	}
	return doPut(s.client, s.ctx, s.observedStreamTime, s.historyRetention, key, value, timestamp)
}

// Delete is equivalent to reading the as-of value at timestamp, then
// putting a tombstone at timestamp, and returns whatever that read saw.
// The as-of read happens against observedStreamTime as it stood before
// this call, not after advancing it for the tombstone's own timestamp.
func (s *Store) Delete(key []byte, timestamp int64) (VersionedRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireOpen(); err != nil {
		return VersionedRecord{}, false, err
	}
	rec, found, err := getAsOf(s.client, s.observedStreamTime, s.historyRetention, key, timestamp)
	if err != nil {
		return VersionedRecord{}, false, err
	}
	if timestamp > s.observedStreamTime {
		s.observedStreamTime = timestamp
	}
	if err := doPut(s.client, s.ctx, s.observedStreamTime, s.historyRetention, key, nil, timestamp); err != nil {
		return VersionedRecord{}, false, err
	}
	return rec, found, nil
}

// Get returns the current value of key.
func (s *Store) Get(key []byte) (VersionedRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireOpen(); err != nil {
		return VersionedRecord{}, false, err
	}
	return getCurrent(s.client, key)
}

// GetAsOf returns the version of key valid at asOf.
func (s *Store) GetAsOf(key []byte, asOf int64) (VersionedRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireOpen(); err != nil {
		return VersionedRecord{}, false, err
	}
	return getAsOf(s.client, s.observedStreamTime, s.historyRetention, key, asOf)
}

// Flush flushes the segment registry then the latest tier, matching the
// crash-safety ordering used by the put algorithm: after a flush, if only
// segments persisted, the result is duplicated data, never lost data.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireOpen(); err != nil {
		return err
	}
	if err := s.segments.Flush(); err != nil {
		return err
	}
	return s.engine.Flush()
}

// Close marks the store closed first (so later data-path calls fail fast
// with ErrStoreClosed, since every data-path operation's first step is the
// open check), then releases the segment registry, then closes the
// engine, which holds both the latest tier and every segment column
// family.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return nil
	}
	s.open = false
	if err := s.segments.Close(); err != nil {
		log.Warn().Err(err).Str("store", s.name).Msg("error closing segment registry")
		return err
	}
	return s.engine.Close()
}
