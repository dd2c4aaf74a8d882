package store

import (
	"encoding/binary"
	"fmt"

	"versionedstore/pkg/debug"
)

const (
	segmentHeaderLen     = 16 // nextTimestamp(8) + minTimestamp(8)
	segmentDescriptorLen = 12 // validFrom(8) + valueLength(4)
)

var tombstoneValueLength int32 = -1

// segmentRecord is one packed version of a key, held in physical
// (newest-first) order inside a SegmentValue: records[0] is always the
// version with the largest validFrom, records[len-1] the oldest.
// A nil value marks a tombstone.
type segmentRecord struct {
	validFrom int64
	value     []byte
}

// SegmentValue is the decoded, mutable form of a segment-tier record: the
// packed set of historical versions of one key whose validTo falls inside
// one segment's time range.
type SegmentValue struct {
	nextTimestamp int64
	minTimestamp  int64
	records       []segmentRecord
}

// SegmentSearchResult is the outcome of a point-in-time lookup against a
// SegmentValue.
type SegmentSearchResult struct {
	ValidFrom   int64
	ValidTo     int64
	Index       int
	Value       []byte
	IsTombstone bool
}

// GetSegmentValueNextTimestamp reads the nextTimestamp header field
// directly, without decoding the rest of the record.
func GetSegmentValueNextTimestamp(raw []byte) int64 {
	return int64(binary.BigEndian.Uint64(raw[0:8]))
}

// GetSegmentValueMinTimestamp reads the minTimestamp header field
// directly, without decoding the rest of the record.
func GetSegmentValueMinTimestamp(raw []byte) int64 {
	return int64(binary.BigEndian.Uint64(raw[8:16]))
}

// DeserializeSegmentValue decodes raw into a mutable SegmentValue. The
// descriptor table has no explicit record count: parsing walks
// descriptors forward from the header while shrinking the value heap
// cursor inward from the end of the block, and stops the moment there is
// no longer room for another descriptor between the two cursors.
func DeserializeSegmentValue(raw []byte) *SegmentValue {
	sv := &SegmentValue{
		nextTimestamp: GetSegmentValueNextTimestamp(raw),
		minTimestamp:  GetSegmentValueMinTimestamp(raw),
	}
	off := segmentHeaderLen
	heapEnd := len(raw)
	for off+segmentDescriptorLen <= heapEnd {
		validFrom := int64(binary.BigEndian.Uint64(raw[off : off+8]))
		valueLen := int32(binary.BigEndian.Uint32(raw[off+8 : off+12]))
		off += segmentDescriptorLen

		var value []byte
		if valueLen >= 0 {
			start := heapEnd - int(valueLen)
			value = raw[start:heapEnd]
			heapEnd = start
		}
		sv.records = append(sv.records, segmentRecord{validFrom: validFrom, value: value})
	}
	return sv
}

// Serialize encodes sv back into the binary layout: header, descriptor
// table in physical (newest-first) order, then the value heap laid out in
// the same newest-first order from the end of the block inward.
func (sv *SegmentValue) Serialize() []byte {
	heapSize := 0
	for _, r := range sv.records {
		if r.value != nil {
			heapSize += len(r.value)
		}
	}
	total := segmentHeaderLen + len(sv.records)*segmentDescriptorLen + heapSize
	buf := make([]byte, total)
	binary.BigEndian.PutUint64(buf[0:8], uint64(sv.nextTimestamp))
	binary.BigEndian.PutUint64(buf[8:16], uint64(sv.minTimestamp))

	heapEnd := total
	off := segmentHeaderLen
	for _, r := range sv.records {
		binary.BigEndian.PutUint64(buf[off:off+8], uint64(r.validFrom))
		if r.value == nil {
			binary.BigEndian.PutUint32(buf[off+8:off+12], uint32(int32(tombstoneValueLength)))
		} else {
			vl := len(r.value)
			binary.BigEndian.PutUint32(buf[off+8:off+12], uint32(int32(vl)))
			start := heapEnd - vl
			copy(buf[start:heapEnd], r.value)
			heapEnd = start
		}
		off += segmentDescriptorLen
	}
	return buf
}

// GetNextTimestamp returns the validTo of the newest packed record.
func (sv *SegmentValue) GetNextTimestamp() int64 { return sv.nextTimestamp }

// GetMinTimestamp returns the validFrom of the oldest packed record.
func (sv *SegmentValue) GetMinTimestamp() int64 { return sv.minTimestamp }

// validToAt returns the validTo of the record at physical index i.
func (sv *SegmentValue) validToAt(i int) int64 {
	if i == 0 {
		return sv.nextTimestamp
	}
	return sv.records[i-1].validFrom
}

// Find locates the record containing asOf: the newest record whose
// validFrom is at or before asOf. When asOf also lies before that record's
// validTo, ok is true and the result describes that record. When asOf is
// at or after nextTimestamp (including a degenerate record's zero-width
// point), ok is false and the result still describes the newest record,
// with Index 0. When asOf is older than every record's validFrom, ok is
// false and only Index is set, to len(records): the slot Insert would use
// to add a new oldest record. includeValue=false omits the payload from
// the result as a decoding-cost optimisation.
func (sv *SegmentValue) Find(asOf int64, includeValue bool) (SegmentSearchResult, bool) {
	for i, r := range sv.records {
		if r.validFrom > asOf {
			continue
		}
		validTo := sv.validToAt(i)
		res := SegmentSearchResult{
			ValidFrom:   r.validFrom,
			ValidTo:     validTo,
			Index:       i,
			IsTombstone: r.value == nil,
		}
		if includeValue {
			res.Value = r.value
		}
		return res, asOf < validTo
	}
	return SegmentSearchResult{Index: len(sv.records)}, false
}

// InsertAsLatest prepends a new newest record with validFrom prevValidTo,
// and sets nextTimestamp to newValidTo. In the common case prevValidTo
// equals the current nextTimestamp; the put algorithm also uses this to
// splice a record whose validFrom is strictly past the current
// nextTimestamp, which is how a gap left by an earlier out-of-order write
// gets absorbed into the preceding record's now-extended validTo.
func (sv *SegmentValue) InsertAsLatest(prevValidTo, newValidTo int64, value []byte) {
	sv.records = append([]segmentRecord{{validFrom: prevValidTo, value: value}}, sv.records...)
	sv.nextTimestamp = newValidTo
}

// InsertAsEarliest appends a new oldest record at the tail.
func (sv *SegmentValue) InsertAsEarliest(validFrom int64, value []byte) {
	sv.records = append(sv.records, segmentRecord{validFrom: validFrom, value: value})
	sv.minTimestamp = validFrom
}

// Insert places a new record at physical index, shifting later records
// back. The caller is responsible for choosing index so that strict
// validFrom ordering is preserved.
func (sv *SegmentValue) Insert(validFrom int64, value []byte, index int) {
	sv.records = append(sv.records, segmentRecord{})
	copy(sv.records[index+1:], sv.records[index:])
	sv.records[index] = segmentRecord{validFrom: validFrom, value: value}
	sv.minTimestamp = sv.records[len(sv.records)-1].validFrom
	sv.assertOrderedAround(index)
}

// UpdateRecord replaces the record at index. In the common case validFrom
// equals the record's current validFrom (a pure value overwrite, as in
// the same-timestamp put case). The put algorithm also uses this to
// splice a moved record's replacement in place, where validFrom is the
// new record's own validFrom rather than the old one.
func (sv *SegmentValue) UpdateRecord(validFrom int64, value []byte, index int) {
	sv.records[index] = segmentRecord{validFrom: validFrom, value: value}
	if index == len(sv.records)-1 {
		sv.minTimestamp = validFrom
	}
	sv.assertOrderedAround(index)
}

// assertOrderedAround checks that the record at index still has a
// strictly ascending validFrom relative to its physical neighbors (the
// slot before it is newer, the slot after it is older). A violation means
// a caller picked the wrong insertion index.
func (sv *SegmentValue) assertOrderedAround(index int) {
	validFrom := sv.records[index].validFrom
	if index > 0 {
		newer := sv.records[index-1].validFrom
		debug.Assert(newer > validFrom, func() string {
			return fmt.Sprintf("store: record at validFrom %d does not precede its newer neighbor at %d", validFrom, newer)
		})
	}
	if index+1 < len(sv.records) {
		older := sv.records[index+1].validFrom
		debug.Assert(validFrom > older, func() string {
			return fmt.Sprintf("store: record at validFrom %d does not follow its older neighbor at %d", validFrom, older)
		})
	}
}

// NewSegmentValueWithRecord builds a one-record SegmentValue, supporting
// the degenerate form (value is a tombstone and validFrom == validTo).
func NewSegmentValueWithRecord(value []byte, validFrom, validTo int64) *SegmentValue {
	return &SegmentValue{
		nextTimestamp: validTo,
		minTimestamp:  validFrom,
		records:       []segmentRecord{{validFrom: validFrom, value: value}},
	}
}
