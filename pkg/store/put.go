package store

import (
	"fmt"

	"versionedstore/pkg/debug"
	"versionedstore/pkg/optional"
)

// doPut places (key, value, timestamp) into the correct tier/segment and
// repairs the implicit validTo of whatever version it displaces. value ==
// nil denotes a tombstone. observedStreamTime must already reflect
// timestamp (the caller advances it before calling in).
//
// foundTs tracks the smallest timestamp seen so far that is strictly
// greater than timestamp: the current best guess for the new record's
// validTo. Its absence (optional.None) means "no candidate yet — the new
// record belongs in the latest tier."
func doPut(client VersionedStoreClient, ctx Context, observedStreamTime, historyRetention int64, key, value []byte, timestamp int64) error {
	foundTs, done, err := maybePutToLatestValueStore(client, observedStreamTime, key, value, timestamp)
	if err != nil || done {
		return err
	}
	foundTs, done, err = maybePutToSegments(client, ctx, observedStreamTime, historyRetention, key, value, timestamp, foundTs)
	if err != nil || done {
		return err
	}
	return finishPut(client, ctx, observedStreamTime, key, value, timestamp, foundTs)
}

// maybePutToLatestValueStore is the first thing every put tries: compare
// timestamp against whatever is currently in the latest-value tier. An
// older timestamp only narrows the validTo candidate passed downstream; an
// equal one overwrites in place; a newer one demotes the current latest
// into a segment and takes its place.
func maybePutToLatestValueStore(client VersionedStoreClient, observedStreamTime int64, key, value []byte, timestamp int64) (optional.Option[int64], bool, error) {
	raw, ok, err := client.GetLatestValue(key)
	if err != nil {
		return optional.None[int64](), false, err
	}
	if !ok {
		return optional.None[int64](), false, nil
	}

	latestTs := decodeLatestValueTimestamp(raw)
	switch {
	case timestamp < latestTs:
		return optional.Some(latestTs), false, nil

	case timestamp == latestTs:
		if value == nil {
			if err := client.DeleteLatestValue(key); err != nil {
				return optional.None[int64](), false, err
			}
		} else {
			if err := client.PutLatestValue(key, encodeLatestValue(value, timestamp)); err != nil {
				return optional.None[int64](), false, err
			}
		}
		return optional.None[int64](), true, nil

	default: // timestamp > latestTs: demote the current latest into a segment.
		oldValue := decodeLatestValueValue(raw)
		segmentID := client.SegmentIDForTimestamp(timestamp)
		segment, live := client.GetOrCreateSegmentIfLive(segmentID, observedStreamTime)
		if live {
			segRaw, segOK, err := segment.Get(key)
			if err != nil {
				return optional.None[int64](), false, err
			}
			var sv *SegmentValue
			if !segOK {
				sv = NewSegmentValueWithRecord(oldValue, latestTs, timestamp)
			} else {
				sv = DeserializeSegmentValue(segRaw)
				sv.InsertAsLatest(latestTs, timestamp, oldValue)
			}
			// Ordering requirement: persist the segment write before the
			// latest-tier update, so a crash between the two duplicates
			// rather than loses data.
			if err := segment.Put(key, sv.Serialize()); err != nil {
				return optional.None[int64](), false, err
			}
		}

		if value != nil {
			if err := client.PutLatestValue(key, encodeLatestValue(value, timestamp)); err != nil {
				return optional.None[int64](), false, err
			}
			return optional.None[int64](), true, nil
		}
		if err := client.DeleteLatestValue(key); err != nil {
			return optional.None[int64](), false, err
		}
		return optional.None[int64](), false, nil
	}
}

// maybePutToSegments runs once the latest tier has been ruled out: scan
// segments newest-first, looking for the one timestamp actually belongs
// in, or for a narrower validTo candidate to carry further back.
func maybePutToSegments(client VersionedStoreClient, ctx Context, observedStreamTime, historyRetention int64, key, value []byte, timestamp int64, foundTs optional.Option[int64]) (optional.Option[int64], bool, error) {
	segments := client.ReverseSegmentsFrom(timestamp)
	for _, segment := range segments {
		raw, ok, err := segment.Get(key)
		if err != nil {
			return foundTs, false, err
		}
		if !ok {
			continue
		}

		nextTs := GetSegmentValueNextTimestamp(raw)
		minTs := GetSegmentValueMinTimestamp(raw)

		switch {
		case nextTs <= timestamp:
			// Case A: nothing in this or earlier segments will be displaced.
			return foundTs, false, nil

		case minTs <= timestamp && timestamp < nextTs:
			// Case B: belongs inside this segment.
			if err := putToSegment(client, observedStreamTime, segment, raw, key, value, timestamp); err != nil {
				return foundTs, false, err
			}
			return foundTs, true, nil

		case minTs > timestamp && minTs < observedStreamTime-historyRetention:
			// Case C: the incoming record is itself expired.
			ctx.RecordExpired()
			return foundTs, true, nil

		default:
			// Case D: tentatively move the validTo candidate older.
			foundTs = optional.Some(minTs)
		}
	}
	return foundTs, false, nil
}

// putToSegment places timestamp inside a segment whose overall span
// already contains it. timestamp's own segment id can still differ from
// the segment being written to, since segment boundaries don't line up
// with individual record boundaries; when that happens the record being
// split off is moved into its own segment first.
func putToSegment(client VersionedStoreClient, observedStreamTime int64, segment *Segment, raw []byte, key, value []byte, timestamp int64) error {
	sv := DeserializeSegmentValue(raw)
	wantedID := client.SegmentIDForTimestamp(timestamp)
	needMove := wantedID != segment.ID()
	sr, found := sv.Find(timestamp, needMove)

	if found && sr.ValidFrom == timestamp {
		sv.UpdateRecord(timestamp, value, sr.Index)
		return segment.Put(key, sv.Serialize())
	}

	if needMove {
		older, live := client.GetOrCreateSegmentIfLive(wantedID, observedStreamTime)
		if live {
			var olderSV *SegmentValue
			olderRaw, olderOK, err := older.Get(key)
			if err != nil {
				return err
			}
			if !olderOK {
				olderSV = NewSegmentValueWithRecord(sr.Value, sr.ValidFrom, timestamp)
			} else {
				olderSV = DeserializeSegmentValue(olderRaw)
				olderSV.InsertAsLatest(sr.ValidFrom, timestamp, sr.Value)
			}
			// Write to the older segment before the current one, for the
			// same partial-failure rationale as phase 1.
			if err := older.Put(key, olderSV.Serialize()); err != nil {
				return err
			}
		}
		sv.UpdateRecord(timestamp, value, sr.Index)
		return segment.Put(key, sv.Serialize())
	}

	sv.Insert(timestamp, value, sr.Index)
	return segment.Put(key, sv.Serialize())
}

// finishPut is reached when the new record landed in no existing segment:
// it places the record using foundTs as the validTo, creating a segment
// if needed.
func finishPut(client VersionedStoreClient, ctx Context, observedStreamTime int64, key, value []byte, timestamp int64, foundTs optional.Option[int64]) error {
	validTo, hasValidTo := foundTs.Take()
	if hasValidTo {
		debug.Assert(validTo > timestamp, func() string {
			return fmt.Sprintf("store: validTo candidate %d is not strictly after timestamp %d", validTo, timestamp)
		})
	}
	if !hasValidTo {
		if value != nil {
			return client.PutLatestValue(key, encodeLatestValue(value, timestamp))
		}
		return finishTombstoneAtLatest(client, ctx, observedStreamTime, key, timestamp)
	}

	segmentID := client.SegmentIDForTimestamp(validTo)
	segment, live := client.GetOrCreateSegmentIfLive(segmentID, observedStreamTime)
	if !live {
		ctx.RecordExpired()
		return nil
	}

	raw, ok, err := segment.Get(key)
	if err != nil {
		return err
	}
	if !ok {
		return segment.Put(key, NewSegmentValueWithRecord(value, timestamp, validTo).Serialize())
	}

	sv := DeserializeSegmentValue(raw)
	if sv.GetNextTimestamp() <= timestamp {
		sv.InsertAsLatest(timestamp, validTo, value)
	} else {
		sv.InsertAsEarliest(timestamp, value)
	}
	return segment.Put(key, sv.Serialize())
}

// finishTombstoneAtLatest handles a tombstone that has become the new
// latest version overall (no existing record was displaced and there is
// nothing left after it): it is written into the segment for its own
// timestamp rather than the latest tier, since the latest tier never
// holds a tombstone.
func finishTombstoneAtLatest(client VersionedStoreClient, ctx Context, observedStreamTime int64, key []byte, timestamp int64) error {
	segmentID := client.SegmentIDForTimestamp(timestamp)
	segment, live := client.GetOrCreateSegmentIfLive(segmentID, observedStreamTime)
	if !live {
		ctx.RecordExpired()
		return nil
	}

	raw, ok, err := segment.Get(key)
	if err != nil {
		return err
	}
	if !ok {
		return segment.Put(key, NewSegmentValueWithRecord(nil, timestamp, timestamp).Serialize())
	}

	sv := DeserializeSegmentValue(raw)
	if sv.GetNextTimestamp() == timestamp {
		return nil // already represented
	}
	sv.InsertAsLatest(sv.GetNextTimestamp(), timestamp, nil)
	return segment.Put(key, sv.Serialize())
}
