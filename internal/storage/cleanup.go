package storage

import "fmt"

// DeleteOlderThan deletes snapshots with a timestamp before the given
// unix epoch. Returns the number of deleted rows.
func (d *DB) DeleteOlderThan(before int64) (int64, error) {
	res, err := d.db.Exec("DELETE FROM battery_snapshots WHERE timestamp < ?", before)
	if err != nil {
		return 0, fmt.Errorf("delete old snapshots: %w", err)
	}
	return res.RowsAffected()
}
