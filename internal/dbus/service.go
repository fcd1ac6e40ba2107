// Package dbus exposes stored battery state over the session bus.
package dbus

import (
	"encoding/json"
	"fmt"

	godbus "github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	"github.com/gabrielvincent/batty/internal/storage"
)

const (
	busName   = "org.batty.Monitor"
	objPath   = "/org/batty/Monitor"
	ifaceName = "org.batty.Monitor"
)

// maxRangeSecs caps history queries at a leap year.
const maxRangeSecs = 86400 * 366

const introspectXML = `
<node>
  <interface name="` + ifaceName + `">
    <method name="GetBatteries">
      <arg direction="out" type="s" name="json"/>
    </method>
    <method name="GetHistory">
      <arg direction="in" type="x" name="from_epoch"/>
      <arg direction="in" type="x" name="to_epoch"/>
      <arg direction="out" type="s" name="json"/>
    </method>
  </interface>
` + introspect.IntrospectDataString + `
</node>`

// Service exposes the battery monitor over D-Bus.
type Service struct {
	store *storage.DB
}

// NewService creates a new D-Bus service.
func NewService(store *storage.DB) *Service {
	return &Service{store: store}
}

// Export registers the service on the session bus.
func (s *Service) Export() (*godbus.Conn, error) {
	conn, err := godbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}

	conn.Export(s, objPath, ifaceName)
	conn.Export(introspect.Introspectable(introspectXML), objPath, "org.freedesktop.DBus.Introspectable")

	reply, err := conn.RequestName(busName, godbus.NameFlagDoNotQueue)
	if err != nil {
		return nil, fmt.Errorf("request name: %w", err)
	}
	if reply != godbus.RequestNameReplyPrimaryOwner {
		return nil, fmt.Errorf("name %s already taken", busName)
	}

	return conn, nil
}

// GetBatteries returns the latest snapshot per battery as JSON.
func (s *Service) GetBatteries() (string, *godbus.Error) {
	latest, err := s.store.LatestSnapshots()
	if err != nil {
		return "", godbus.MakeFailedError(err)
	}
	return marshalSnapshots(latest)
}

// GetHistory returns battery snapshots in a time range as JSON.
func (s *Service) GetHistory(fromEpoch, toEpoch int64) (string, *godbus.Error) {
	if err := validateRange(fromEpoch, toEpoch); err != nil {
		return "", godbus.MakeFailedError(err)
	}
	snapshots, err := s.store.SnapshotsInRange(fromEpoch, toEpoch)
	if err != nil {
		return "", godbus.MakeFailedError(err)
	}
	return marshalSnapshots(snapshots)
}

func marshalSnapshots(snapshots []storage.Snapshot) (string, *godbus.Error) {
	// Keep an array in the payload even when there are no rows.
	if snapshots == nil {
		snapshots = []storage.Snapshot{}
	}
	data, err := json.Marshal(map[string]any{"batteries": snapshots})
	if err != nil {
		return "", godbus.MakeFailedError(err)
	}
	return string(data), nil
}

func validateRange(from, to int64) error {
	switch {
	case from < 0 || to < 0:
		return fmt.Errorf("epochs must be non-negative, got %d..%d", from, to)
	case to < from:
		return fmt.Errorf("to_epoch %d is before from_epoch %d", to, from)
	case to-from > maxRangeSecs:
		return fmt.Errorf("range %d..%d exceeds %d seconds", from, to, int64(maxRangeSecs))
	}
	return nil
}
