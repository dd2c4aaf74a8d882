package store

// VersionedRecord is a (value, validFrom) pair returned by a successful
// get. Tombstones are never returned: their absence is represented by a
// (nil, false) result.
type VersionedRecord struct {
	Value     []byte
	ValidFrom int64
}

// getCurrent returns the current value of key: the latest tier is always
// authoritative for "current", so a present entry there is the answer
// without ever touching a segment.
func getCurrent(client VersionedStoreClient, key []byte) (VersionedRecord, bool, error) {
	raw, ok, err := client.GetLatestValue(key)
	if err != nil || !ok {
		return VersionedRecord{}, false, err
	}
	return VersionedRecord{Value: decodeLatestValueValue(raw), ValidFrom: decodeLatestValueTimestamp(raw)}, true, nil
}

// getAsOf returns the version of key that was valid at asOf: the latest
// tier short-circuits the search when asOf is at or after its timestamp,
// otherwise segments are scanned newest-first until one's span contains
// asOf, or one ends at or before asOf (nothing older can match). An asOf
// older than history retention returns none before any read.
func getAsOf(client VersionedStoreClient, observedStreamTime, historyRetention int64, key []byte, asOf int64) (VersionedRecord, bool, error) {
	if asOf < observedStreamTime-historyRetention {
		return VersionedRecord{}, false, nil
	}

	raw, ok, err := client.GetLatestValue(key)
	if err != nil {
		return VersionedRecord{}, false, err
	}
	if ok {
		latestTs := decodeLatestValueTimestamp(raw)
		if latestTs <= asOf {
			return VersionedRecord{Value: decodeLatestValueValue(raw), ValidFrom: latestTs}, true, nil
		}
	}

	for _, segment := range client.ReverseSegmentsFrom(asOf) {
		segRaw, segOK, err := segment.Get(key)
		if err != nil {
			return VersionedRecord{}, false, err
		}
		if !segOK {
			continue
		}

		nextTs := GetSegmentValueNextTimestamp(segRaw)
		if nextTs <= asOf {
			return VersionedRecord{}, false, nil
		}
		minTs := GetSegmentValueMinTimestamp(segRaw)
		if minTs > asOf {
			continue
		}

		res, found := DeserializeSegmentValue(segRaw).Find(asOf, true)
		if !found || res.IsTombstone {
			return VersionedRecord{}, false, nil
		}
		return VersionedRecord{Value: res.Value, ValidFrom: res.ValidFrom}, true, nil
	}
	return VersionedRecord{}, false, nil
}
