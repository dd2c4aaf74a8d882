package store

import "testing"

func TestSegmentRegistrySegmentID(t *testing.T) {
	r := NewSegmentRegistry(NewMemEngine(), "s", 10, 100)
	cases := map[int64]int64{0: 0, 9: 0, 10: 1, 25: 2, 99: 9}
	for ts, want := range cases {
		if got := r.SegmentID(ts); got != want {
			t.Fatalf("SegmentID(%d) = %d, want %d", ts, got, want)
		}
	}
}

func TestSegmentRegistryGetOrCreateIfLive(t *testing.T) {
	r := NewSegmentRegistry(NewMemEngine(), "s", 10, 100)

	seg, ok := r.GetOrCreateSegmentIfLive(0, 50)
	if !ok || seg == nil {
		t.Fatalf("expected segment 0 to be live at streamTime=50")
	}

	// streamTime=250, H=100 -> minLiveTimestamp=150; segment 0 covers
	// [0,9], long expired.
	if _, ok := r.GetOrCreateSegmentIfLive(0, 250); ok {
		t.Fatalf("expected segment 0 to be expired at streamTime=250")
	}
}

func TestSegmentRegistryExpiryDropsColumnFamily(t *testing.T) {
	engine := NewMemEngine()
	r := NewSegmentRegistry(engine, "s", 10, 100)

	seg, ok := r.GetOrCreateSegmentIfLive(0, 50)
	if !ok {
		t.Fatalf("expected segment 0 live")
	}
	if err := seg.Put([]byte("k"), []byte("v")); err != nil {
		t.Fatalf("put: %v", err)
	}

	// Advance streamTime far enough to expire segment 0 while segment 5
	// (range [50,59]) is still live.
	if _, ok := r.GetOrCreateSegmentIfLive(5, 150); !ok {
		t.Fatalf("expected segment 5 live at streamTime=150")
	}

	fresh := engine.ColumnFamily("s.segments.0")
	if _, found, _ := fresh.Get([]byte("k")); found {
		t.Fatalf("expected segment 0's column family to have been dropped")
	}
}

func TestSegmentRegistrySegmentsCoveringFromOrder(t *testing.T) {
	r := NewSegmentRegistry(NewMemEngine(), "s", 10, 1000)

	for _, id := range []int64{0, 1, 2, 3} {
		if _, ok := r.GetOrCreateSegmentIfLive(id, id*10); !ok {
			t.Fatalf("expected segment %d to be live", id)
		}
	}

	segs := r.SegmentsCoveringFrom(15)
	if len(segs) != 3 {
		t.Fatalf("expected 3 segments covering from 15, got %d", len(segs))
	}
	wantOrder := []int64{3, 2, 1}
	for i, want := range wantOrder {
		if segs[i].ID() != want {
			t.Fatalf("expected newest-first order %v, got id %d at position %d", wantOrder, segs[i].ID(), i)
		}
	}
}
