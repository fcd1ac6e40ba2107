package battery

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultPowerSupplyRoot is where the kernel exposes power supply
// devices.
const DefaultPowerSupplyRoot = "/sys/class/power_supply"

const batteryPrefix = "BAT"

// FindBatteries returns the battery device directories under root,
// identified by name prefix. Failures are absorbed: a machine with no
// batteries, or no sysfs at all, is a normal outcome rather than an
// error, so the worst case is an empty result. Order follows directory
// enumeration and is not guaranteed.
func FindBatteries(root string) []string {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil
	}

	var paths []string
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), batteryPrefix) {
			paths = append(paths, filepath.Join(root, entry.Name()))
		}
	}
	return paths
}
