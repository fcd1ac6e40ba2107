package storage

import (
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
	})

	return db
}

func uint16Ptr(v uint16) *uint16    { return &v }
func float64Ptr(v float64) *float64 { return &v }

func TestSnapshotRoundTrip(t *testing.T) {
	db := openTestDB(t)

	s1 := Snapshot{Timestamp: 10, Battery: "BAT0", CurrPower: 500000, TotalPower: 1000000, ChargePct: 50, Status: "charging", Cycles: uint16Ptr(42), HealthPct: float64Ptr(80)}
	s2 := Snapshot{Timestamp: 20, Battery: "BAT0", CurrPower: 510000, TotalPower: 1000000, ChargePct: 51, Status: "charging"}
	s3 := Snapshot{Timestamp: 15, Battery: "BAT1", CurrPower: 900000, TotalPower: 900000, ChargePct: 100, Status: "not charging"}
	for _, s := range []Snapshot{s1, s2, s3} {
		if err := db.InsertSnapshot(s); err != nil {
			t.Fatalf("InsertSnapshot(%s ts=%d) error = %v", s.Battery, s.Timestamp, err)
		}
	}

	latest, err := db.LatestSnapshots()
	if err != nil {
		t.Fatalf("LatestSnapshots() error = %v", err)
	}
	if len(latest) != 2 {
		t.Fatalf("LatestSnapshots() len = %d, want one row per battery", len(latest))
	}
	if latest[0].Battery != "BAT0" || latest[0].Timestamp != 20 {
		t.Fatalf("latest[0] = %#v, want BAT0 at ts=20", latest[0])
	}
	if latest[1].Battery != "BAT1" || latest[1].Timestamp != 15 {
		t.Fatalf("latest[1] = %#v, want BAT1 at ts=15", latest[1])
	}

	// s2 carries no cycles/health; the nullable columns must come back nil.
	if latest[0].Cycles != nil || latest[0].HealthPct != nil {
		t.Fatalf("latest[0] nullable fields = %v/%v, want nil/nil", latest[0].Cycles, latest[0].HealthPct)
	}

	ranged, err := db.SnapshotsInRange(10, 15)
	if err != nil {
		t.Fatalf("SnapshotsInRange() error = %v", err)
	}
	if len(ranged) != 2 {
		t.Fatalf("SnapshotsInRange() len = %d, want 2", len(ranged))
	}
	if ranged[0].Timestamp != 10 || ranged[1].Timestamp != 15 {
		t.Fatalf("SnapshotsInRange() timestamps = %d,%d, want 10,15", ranged[0].Timestamp, ranged[1].Timestamp)
	}
	if ranged[0].Cycles == nil || *ranged[0].Cycles != 42 {
		t.Fatalf("ranged[0].Cycles = %v, want 42", ranged[0].Cycles)
	}
	if ranged[0].HealthPct == nil || *ranged[0].HealthPct != 80 {
		t.Fatalf("ranged[0].HealthPct = %v, want 80", ranged[0].HealthPct)
	}
}

func TestLatestSnapshots_Empty(t *testing.T) {
	db := openTestDB(t)

	latest, err := db.LatestSnapshots()
	if err != nil {
		t.Fatalf("LatestSnapshots() error = %v", err)
	}
	if len(latest) != 0 {
		t.Fatalf("LatestSnapshots() = %#v, want empty", latest)
	}
}
