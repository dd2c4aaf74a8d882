package store

// VersionedStoreClient is the narrow set of operations the put and
// get-as-of algorithms need. Driving the algorithms through this
// interface, rather than against the store's own fields, lets the same
// code run against live state or against a restore-time sandbox without
// duplication.
type VersionedStoreClient interface {
	GetLatestValue(key []byte) ([]byte, bool, error)
	PutLatestValue(key []byte, encodedValueAndTimestamp []byte) error
	DeleteLatestValue(key []byte) error
	GetOrCreateSegmentIfLive(id int64, streamTime int64) (*Segment, bool)
	ReverseSegmentsFrom(timestamp int64) []*Segment
	SegmentIDForTimestamp(t int64) int64
}

// liveClient is the VersionedStoreClient backing an open Store: the
// latest-tier column family plus the segment registry.
type liveClient struct {
	latestTier ColumnFamily
	segments   *SegmentRegistry
}

func newLiveClient(latestTier ColumnFamily, segments *SegmentRegistry) *liveClient {
	return &liveClient{latestTier: latestTier, segments: segments}
}

func (c *liveClient) GetLatestValue(key []byte) ([]byte, bool, error) {
	return c.latestTier.Get(key)
}

func (c *liveClient) PutLatestValue(key []byte, encodedValueAndTimestamp []byte) error {
	return c.latestTier.Put(key, encodedValueAndTimestamp)
}

func (c *liveClient) DeleteLatestValue(key []byte) error {
	return c.latestTier.Delete(key)
}

func (c *liveClient) GetOrCreateSegmentIfLive(id int64, streamTime int64) (*Segment, bool) {
	return c.segments.GetOrCreateSegmentIfLive(id, streamTime)
}

func (c *liveClient) ReverseSegmentsFrom(timestamp int64) []*Segment {
	return c.segments.SegmentsCoveringFrom(timestamp)
}

func (c *liveClient) SegmentIDForTimestamp(t int64) int64 {
	return c.segments.SegmentID(t)
}

var _ VersionedStoreClient = (*liveClient)(nil)
