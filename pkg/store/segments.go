package store

import (
	"fmt"

	"github.com/google/btree"
	"github.com/rs/zerolog/log"
)

// Segment is a handle to one segment's column family plus its id.
type Segment struct {
	id int64
	cf ColumnFamily
}

func (s *Segment) ID() int64 { return s.id }

func (s *Segment) Get(key []byte) ([]byte, bool, error) { return s.cf.Get(key) }
func (s *Segment) Put(key, value []byte) error           { return s.cf.Put(key, value) }
func (s *Segment) Delete(key []byte) error               { return s.cf.Delete(key) }

// segmentIDItem is a btree.Item ordering segments by id, paired with
// segmentEntry so the tree can be queried by a bare id without allocating
// a full entry.
type segmentIDItem int64

func (a segmentIDItem) Less(than btree.Item) bool {
	switch other := than.(type) {
	case segmentIDItem:
		return a < other
	case *segmentEntry:
		return a < segmentIDItem(other.id)
	default:
		panic("store: unexpected btree item type")
	}
}

type segmentEntry struct {
	id  int64
	seg *Segment
}

func (e *segmentEntry) Less(than btree.Item) bool {
	switch other := than.(type) {
	case *segmentEntry:
		return e.id < other.id
	case segmentIDItem:
		return e.id < int64(other)
	default:
		panic("store: unexpected btree item type")
	}
}

// SegmentRegistry maps timestamps to segment ids and owns the lifecycle
// (creation, reverse iteration, bulk expiry) of the segments backing one
// store's segment tier.
type SegmentRegistry struct {
	engine           Engine
	name             string
	segmentInterval  int64
	historyRetention int64
	live             *btree.BTree
}

func NewSegmentRegistry(engine Engine, name string, segmentInterval, historyRetention int64) *SegmentRegistry {
	return &SegmentRegistry{
		engine:           engine,
		name:             name,
		segmentInterval:  segmentInterval,
		historyRetention: historyRetention,
		live:             btree.New(2),
	}
}

// SegmentID returns floor(t / segmentInterval).
func (r *SegmentRegistry) SegmentID(t int64) int64 {
	return t / r.segmentInterval
}

func (r *SegmentRegistry) columnFamilyName(id int64) string {
	return fmt.Sprintf("%s.%d", segmentColumnFamilyPrefix(r.name), id)
}

// segmentEndTime is the inclusive upper bound of the range segment id owns.
func (r *SegmentRegistry) segmentEndTime(id int64) int64 {
	return (id+1)*r.segmentInterval - 1
}

// GetOrCreateSegmentIfLive ensures segment id exists and returns it,
// unless its entire time range is older than streamTime - historyRetention,
// in which case it returns (nil, false) without creating anything. Every
// call also expires any now-stale segments given the advanced streamTime.
func (r *SegmentRegistry) GetOrCreateSegmentIfLive(id int64, streamTime int64) (*Segment, bool) {
	minLiveTimestamp := streamTime - r.historyRetention
	live := r.segmentEndTime(id) >= minLiveTimestamp
	r.expireBefore(minLiveTimestamp)
	if !live {
		return nil, false
	}
	return r.getOrCreate(id), true
}

func (r *SegmentRegistry) getOrCreate(id int64) *Segment {
	if item := r.live.Get(segmentIDItem(id)); item != nil {
		return item.(*segmentEntry).seg
	}
	seg := &Segment{id: id, cf: r.engine.ColumnFamily(r.columnFamilyName(id))}
	r.live.ReplaceOrInsert(&segmentEntry{id: id, seg: seg})
	return seg
}

// expireBefore drops every live segment whose end time is older than
// minLiveTimestamp, via bulk column-family erasure rather than a per-key
// scan.
func (r *SegmentRegistry) expireBefore(minLiveTimestamp int64) {
	var stale []*segmentEntry
	r.live.Ascend(func(item btree.Item) bool {
		e := item.(*segmentEntry)
		if r.segmentEndTime(e.id) < minLiveTimestamp {
			stale = append(stale, e)
			return true
		}
		return false
	})
	for _, e := range stale {
		r.live.Delete(segmentIDItem(e.id))
		if err := r.engine.DropColumnFamily(r.columnFamilyName(e.id)); err != nil {
			log.Warn().Err(err).Int64("segmentId", e.id).Str("store", r.name).
				Msg("failed to drop expired segment column family")
			continue
		}
		log.Warn().Int64("segmentId", e.id).Str("store", r.name).
			Msg("dropped expired segment")
	}
}

// SegmentsCoveringFrom returns every live segment whose end time is at
// least fromTimestamp, newest segment id first.
func (r *SegmentRegistry) SegmentsCoveringFrom(fromTimestamp int64) []*Segment {
	var out []*Segment
	r.live.Descend(func(item btree.Item) bool {
		e := item.(*segmentEntry)
		if r.segmentEndTime(e.id) < fromTimestamp {
			return false
		}
		out = append(out, e.seg)
		return true
	})
	return out
}

// Flush persists any buffered segment writes.
func (r *SegmentRegistry) Flush() error {
	return r.engine.Flush()
}

// Close releases the registry's view of its live segments.
func (r *SegmentRegistry) Close() error {
	r.live = btree.New(2)
	return nil
}
