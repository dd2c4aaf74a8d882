package store

import "testing"

func TestSegmentValueRoundTripSingleRecord(t *testing.T) {
	sv := NewSegmentValueWithRecord([]byte("v1"), 5, 15)
	raw := sv.Serialize()

	if got := GetSegmentValueNextTimestamp(raw); got != 15 {
		t.Fatalf("nextTimestamp = %d, want 15", got)
	}
	if got := GetSegmentValueMinTimestamp(raw); got != 5 {
		t.Fatalf("minTimestamp = %d, want 5", got)
	}

	back := DeserializeSegmentValue(raw)
	res, ok := back.Find(10, true)
	if !ok {
		t.Fatalf("expected find at 10 to succeed")
	}
	if res.ValidFrom != 5 || res.ValidTo != 15 || string(res.Value) != "v1" || res.IsTombstone {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestSegmentValueInsertAsLatest(t *testing.T) {
	sv := NewSegmentValueWithRecord([]byte("old"), 5, 15)
	sv.InsertAsLatest(15, 25, []byte("new"))

	if sv.GetNextTimestamp() != 25 {
		t.Fatalf("nextTimestamp = %d, want 25", sv.GetNextTimestamp())
	}
	if sv.GetMinTimestamp() != 5 {
		t.Fatalf("minTimestamp = %d, want 5", sv.GetMinTimestamp())
	}

	raw := sv.Serialize()
	back := DeserializeSegmentValue(raw)

	oldRes, ok := back.Find(10, true)
	if !ok || string(oldRes.Value) != "old" || oldRes.ValidTo != 15 {
		t.Fatalf("old record lookup wrong: %+v ok=%v", oldRes, ok)
	}
	newRes, ok := back.Find(20, true)
	if !ok || string(newRes.Value) != "new" || newRes.ValidTo != 25 {
		t.Fatalf("new record lookup wrong: %+v ok=%v", newRes, ok)
	}
}

func TestSegmentValueInsertAsEarliest(t *testing.T) {
	sv := NewSegmentValueWithRecord([]byte("mid"), 15, 25)
	sv.InsertAsEarliest(5, []byte("early"))

	if sv.GetMinTimestamp() != 5 {
		t.Fatalf("minTimestamp = %d, want 5", sv.GetMinTimestamp())
	}

	raw := sv.Serialize()
	back := DeserializeSegmentValue(raw)

	res, ok := back.Find(7, true)
	if !ok || string(res.Value) != "early" || res.ValidTo != 15 {
		t.Fatalf("earliest record lookup wrong: %+v ok=%v", res, ok)
	}
}

func TestSegmentValueInsertMiddle(t *testing.T) {
	sv := NewSegmentValueWithRecord([]byte("oldest"), 5, 15)
	sv.InsertAsLatest(15, 30, []byte("newest"))
	// physical records (newest-first): [(15,"newest"), (5,"oldest")]

	before, ok := sv.Find(8, false)
	if !ok || before.Index != 1 {
		t.Fatalf("expected oldest at physical index 1 before insert, got %+v ok=%v", before, ok)
	}

	sv.Insert(10, []byte("mid"), 1)
	// physical records now: [(15,"newest"), (10,"mid"), (5,"oldest")]

	mid, ok := sv.Find(12, true)
	if !ok || string(mid.Value) != "mid" || mid.ValidFrom != 10 || mid.ValidTo != 15 {
		t.Fatalf("mid record wrong after insert: %+v ok=%v", mid, ok)
	}
	oldest, ok := sv.Find(7, true)
	if !ok || string(oldest.Value) != "oldest" || oldest.ValidTo != 10 {
		t.Fatalf("oldest record's validTo should shrink to the inserted record's validFrom: %+v ok=%v", oldest, ok)
	}
}

func TestSegmentValueUpdateRecord(t *testing.T) {
	sv := NewSegmentValueWithRecord([]byte("v1"), 5, 15)
	sv.UpdateRecord(5, []byte("v2"), 0)

	res, ok := sv.Find(10, true)
	if !ok || string(res.Value) != "v2" {
		t.Fatalf("update did not apply: %+v ok=%v", res, ok)
	}
}

func TestSegmentValueDegenerateTombstone(t *testing.T) {
	sv := NewSegmentValueWithRecord(nil, 25, 25)
	raw := sv.Serialize()
	back := DeserializeSegmentValue(raw)

	if _, ok := back.Find(25, true); ok {
		t.Fatalf("expected no match exactly at the degenerate point (validFrom == validTo excludes it)")
	}
	res, ok := back.Find(24, true)
	// 24 is outside [25,25) too, so also expect no match; the degenerate
	// record occupies a zero-width interval.
	if ok {
		t.Fatalf("expected no match at 24 either, got %+v", res)
	}
}

func TestSegmentValueInsertAsLatestAbsorbsGap(t *testing.T) {
	// Simulates finishPut's degenerate-segment gap case: the existing
	// record's nextTimestamp (15) is <= the new record's validFrom (20),
	// so the gap [15,20) is absorbed into the older record's validTo.
	sv := NewSegmentValueWithRecord([]byte("oldest"), 5, 15)
	sv.InsertAsLatest(20, 30, []byte("newest"))

	res, ok := sv.Find(17, true)
	if !ok || string(res.Value) != "oldest" || res.ValidTo != 20 {
		t.Fatalf("expected the gap to be absorbed into oldest's validTo, got %+v ok=%v", res, ok)
	}
	if _, ok := sv.Find(5, true); !ok {
		t.Fatalf("expected match for the oldest record's validFrom")
	}
}

func TestSegmentValueMultiRecordSerializeDeserialize(t *testing.T) {
	sv := NewSegmentValueWithRecord([]byte("r1"), 5, 15)
	sv.InsertAsLatest(15, 25, []byte("r2"))
	sv.InsertAsLatest(25, 35, nil) // tombstone as newest
	sv.InsertAsEarliest(0, []byte("r0"))

	raw := sv.Serialize()
	back := DeserializeSegmentValue(raw)

	if back.GetNextTimestamp() != 35 {
		t.Fatalf("nextTimestamp = %d, want 35", back.GetNextTimestamp())
	}
	if back.GetMinTimestamp() != 0 {
		t.Fatalf("minTimestamp = %d, want 0", back.GetMinTimestamp())
	}

	cases := []struct {
		asOf        int64
		wantValue   string
		wantTomb    bool
		wantValidTo int64
	}{
		{2, "r0", false, 5},
		{10, "r1", false, 15},
		{20, "r2", false, 25},
		{30, "", true, 35},
	}
	for _, c := range cases {
		res, ok := back.Find(c.asOf, true)
		if !ok {
			t.Fatalf("asOf=%d: expected a match", c.asOf)
		}
		if res.IsTombstone != c.wantTomb {
			t.Fatalf("asOf=%d: tombstone = %v, want %v", c.asOf, res.IsTombstone, c.wantTomb)
		}
		if !c.wantTomb && string(res.Value) != c.wantValue {
			t.Fatalf("asOf=%d: value = %q, want %q", c.asOf, res.Value, c.wantValue)
		}
		if res.ValidTo != c.wantValidTo {
			t.Fatalf("asOf=%d: validTo = %d, want %d", c.asOf, res.ValidTo, c.wantValidTo)
		}
	}
}
