package storage

import "testing"

func TestDeleteOlderThan(t *testing.T) {
	db := openTestDB(t)

	const (
		oldTs    int64 = 50
		cutoffTs int64 = 100
		newTs    int64 = 150
	)

	for _, ts := range []int64{oldTs, cutoffTs, newTs} {
		err := db.InsertSnapshot(Snapshot{Timestamp: ts, Battery: "BAT0", CurrPower: 500000, TotalPower: 1000000, ChargePct: 50, Status: "not charging"})
		if err != nil {
			t.Fatalf("InsertSnapshot(ts=%d): %v", ts, err)
		}
	}

	deleted, err := db.DeleteOlderThan(cutoffTs)
	if err != nil {
		t.Fatalf("DeleteOlderThan() error = %v", err)
	}
	if deleted != 1 {
		t.Fatalf("DeleteOlderThan() deleted = %d, want 1", deleted)
	}

	remaining, err := db.SnapshotsInRange(0, 1000)
	if err != nil {
		t.Fatalf("SnapshotsInRange() error = %v", err)
	}
	if len(remaining) != 2 {
		t.Fatalf("row count after cleanup = %d, want 2 (cutoff+new)", len(remaining))
	}
	if remaining[0].Timestamp != cutoffTs || remaining[1].Timestamp != newTs {
		t.Fatalf("remaining timestamps = %d,%d, want %d,%d", remaining[0].Timestamp, remaining[1].Timestamp, cutoffTs, newTs)
	}
}
