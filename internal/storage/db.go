// Package storage persists battery snapshots in SQLite.
package storage

import (
	"database/sql"
	"fmt"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/gabrielvincent/batty/internal/battery"
)

const schema = `
CREATE TABLE IF NOT EXISTS battery_snapshots (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp INTEGER NOT NULL,
	battery TEXT NOT NULL,
	curr_power INTEGER NOT NULL,
	total_power INTEGER NOT NULL,
	charge_pct REAL NOT NULL,
	status TEXT NOT NULL,
	cycles INTEGER,
	health_pct REAL
);
CREATE INDEX IF NOT EXISTS idx_snapshot_ts ON battery_snapshots(timestamp);
`

// Snapshot is one stored battery reading. CurrPower and TotalPower
// keep whatever unit the hardware reported; Cycles and HealthPct are
// nil when the hardware did not expose them.
type Snapshot struct {
	Timestamp  int64    `json:"timestamp"`
	Battery    string   `json:"battery"`
	CurrPower  uint32   `json:"curr_power"`
	TotalPower uint32   `json:"total_power"`
	ChargePct  float64  `json:"charge_pct"`
	Status     string   `json:"status"`
	Cycles     *uint16  `json:"cycles,omitempty"`
	HealthPct  *float64 `json:"health_pct,omitempty"`
}

// NewSnapshot captures a battery's current state for storage.
func NewSnapshot(ts int64, b *battery.Battery) Snapshot {
	return Snapshot{
		Timestamp:  ts,
		Battery:    filepath.Base(b.Path()),
		CurrPower:  b.CurrPower,
		TotalPower: b.TotalPower,
		ChargePct:  b.ChargePercentage(),
		Status:     b.Status.String(),
		Cycles:     b.Cycles,
		HealthPct:  b.Health,
	}
}

// DB wraps a SQLite database of battery snapshots.
type DB struct {
	db *sql.DB
}

// Open opens or creates the SQLite database at the given path.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &DB{db: db}, nil
}

// Close closes the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// InsertSnapshot inserts a battery snapshot.
func (d *DB) InsertSnapshot(s Snapshot) error {
	var cycles sql.NullInt64
	if s.Cycles != nil {
		cycles = sql.NullInt64{Int64: int64(*s.Cycles), Valid: true}
	}
	var health sql.NullFloat64
	if s.HealthPct != nil {
		health = sql.NullFloat64{Float64: *s.HealthPct, Valid: true}
	}
	_, err := d.db.Exec(
		"INSERT INTO battery_snapshots (timestamp, battery, curr_power, total_power, charge_pct, status, cycles, health_pct) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		s.Timestamp, s.Battery, s.CurrPower, s.TotalPower, s.ChargePct, s.Status, cycles, health,
	)
	return err
}

// LatestSnapshots returns the most recent snapshot per battery,
// ordered by battery name.
func (d *DB) LatestSnapshots() ([]Snapshot, error) {
	rows, err := d.db.Query(
		`SELECT timestamp, battery, curr_power, total_power, charge_pct, status, cycles, health_pct
		 FROM battery_snapshots
		 WHERE id IN (SELECT MAX(id) FROM battery_snapshots GROUP BY battery)
		 ORDER BY battery`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSnapshots(rows)
}

// SnapshotsInRange returns snapshots within the given time range,
// ordered by timestamp.
func (d *DB) SnapshotsInRange(from, to int64) ([]Snapshot, error) {
	rows, err := d.db.Query(
		"SELECT timestamp, battery, curr_power, total_power, charge_pct, status, cycles, health_pct FROM battery_snapshots WHERE timestamp >= ? AND timestamp <= ? ORDER BY timestamp",
		from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSnapshots(rows)
}

func scanSnapshots(rows *sql.Rows) ([]Snapshot, error) {
	var snapshots []Snapshot
	for rows.Next() {
		var s Snapshot
		var cycles sql.NullInt64
		var health sql.NullFloat64
		if err := rows.Scan(&s.Timestamp, &s.Battery, &s.CurrPower, &s.TotalPower, &s.ChargePct, &s.Status, &cycles, &health); err != nil {
			return nil, err
		}
		if cycles.Valid {
			c := uint16(cycles.Int64)
			s.Cycles = &c
		}
		if health.Valid {
			h := health.Float64
			s.HealthPct = &h
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}
