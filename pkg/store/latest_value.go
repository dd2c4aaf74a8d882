package store

import "encoding/binary"

// latestValueTimestampLen is the width of the big-endian timestamp prefix
// on every latest-tier value.
const latestValueTimestampLen = 8

// encodeLatestValue packs (value, t) as an 8-byte big-endian timestamp
// followed by the raw value bytes, per the latest-tier wire format.
//
// value must not be a tombstone (nil): the latest tier holds only
// non-tombstone versions, a deletion removes the key from it instead
// (demoting the replaced value into a segment when the deletion is newer). Encoding a tombstone here is a programmer error, not a
// condition callers can recover from.
func encodeLatestValue(value []byte, t int64) []byte {
	if value == nil {
		panic("store: refusing to encode a tombstone into the latest-value tier")
	}
	buf := make([]byte, latestValueTimestampLen+len(value))
	binary.BigEndian.PutUint64(buf[:latestValueTimestampLen], uint64(t))
	copy(buf[latestValueTimestampLen:], value)
	return buf
}

// decodeLatestValueTimestamp reads the timestamp prefix of a latest-tier
// value without touching the payload.
func decodeLatestValueTimestamp(raw []byte) int64 {
	return int64(binary.BigEndian.Uint64(raw[:latestValueTimestampLen]))
}

// decodeLatestValueValue returns the payload bytes of a latest-tier value.
func decodeLatestValueValue(raw []byte) []byte {
	return raw[latestValueTimestampLen:]
}
