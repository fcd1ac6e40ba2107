// Package battery reads battery state from the kernel's power_supply
// sysfs interface.
//
// Hardware reports either energy-based (µWh) or charge-based (µAh)
// accounting depending on the firmware's power unit, never both
// reliably. Attribute resolution falls back from energy_* to charge_*
// file names; percentage math is a ratio of same-unit readings, so
// either convention gives the same result.
package battery

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrInvalidData reports an attribute file that was readable but whose
// content could not be parsed as the expected number.
var ErrInvalidData = errors.New("invalid battery attribute value")

// Status classifies the charging state reported by the kernel.
type Status int

const (
	// StatusUnknown means the status attribute could not be read.
	StatusUnknown Status = iota
	StatusCharging
	// StatusNotCharging covers every readable status other than
	// "charging": discharging, full, not charging, and so on.
	StatusNotCharging
)

func (s Status) String() string {
	switch s {
	case StatusCharging:
		return "charging"
	case StatusNotCharging:
		return "not charging"
	default:
		return "unknown"
	}
}

// attribute enumerates the measurable quantities of a battery device.
type attribute int

const (
	attrCurrPower attribute = iota
	attrTotalPower
	attrDesignPower
	attrStatus
	attrCycles
)

// fileNames returns the candidate file names for an attribute in order
// of preference: energy-based first, charge-based second where both
// conventions exist.
func (a attribute) fileNames() []string {
	switch a {
	case attrCurrPower:
		return []string{"energy_now", "charge_now"}
	case attrTotalPower:
		return []string{"energy_full", "charge_full"}
	case attrDesignPower:
		return []string{"energy_full_design", "charge_full_design"}
	case attrStatus:
		return []string{"status"}
	case attrCycles:
		return []string{"cycle_count"}
	}
	return nil
}

func (a attribute) String() string {
	switch a {
	case attrCurrPower:
		return "current power"
	case attrTotalPower:
		return "total power"
	case attrDesignPower:
		return "design power"
	case attrStatus:
		return "status"
	case attrCycles:
		return "cycle count"
	}
	return "unknown attribute"
}

// Battery is one device's latest snapshot. CurrPower and TotalPower
// are in whichever unit the hardware reports (µWh or µAh); the unit
// itself is not stored.
type Battery struct {
	path string

	CurrPower  uint32
	TotalPower uint32
	Status     Status
	// Cycles is nil when the hardware exposes no cycle counter.
	Cycles *uint16
	// Health is total capacity as a percentage of design capacity
	// (wear), nil when design capacity is unreadable or non-positive.
	// Not charge level; see ChargePercentage.
	Health *float64
}

// New reads a battery from its sysfs directory. Current and total
// power are mandatory and fail construction when unreadable.
// Degraded-but-usable conditions (unreadable status, missing design
// capacity) come back as warning strings on a still-valid Battery.
func New(path string) (*Battery, []string, error) {
	var warnings []string
	name := filepath.Base(path)

	currPower, err := readUintAttr(path, attrCurrPower, 32)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s for %s: %w", attrCurrPower, name, err)
	}
	totalPower, err := readUintAttr(path, attrTotalPower, 32)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s for %s: %w", attrTotalPower, name, err)
	}

	b := &Battery{
		path:       path,
		CurrPower:  uint32(currPower),
		TotalPower: uint32(totalPower),
	}

	if raw, err := readStrAttr(path, attrStatus); err != nil {
		warnings = append(warnings, fmt.Sprintf("read status for %s: %v; using unknown", name, err))
		b.Status = StatusUnknown
	} else if strings.ToLower(strings.TrimSpace(raw)) == "charging" {
		b.Status = StatusCharging
	} else {
		b.Status = StatusNotCharging
	}

	// Cycle count is unsupported on a lot of hardware; absence is not
	// worth a warning.
	if cycles, err := readUintAttr(path, attrCycles, 16); err == nil {
		c := uint16(cycles)
		b.Cycles = &c
	}

	if design, err := readUintAttr(path, attrDesignPower, 32); err == nil && design > 0 {
		h := float64(totalPower) / float64(design) * 100
		b.Health = &h
	} else {
		warnings = append(warnings, fmt.Sprintf("read design power for %s failed; battery health unavailable", name))
	}

	return b, warnings, nil
}

// Path returns the sysfs directory this battery was read from.
func (b *Battery) Path() string {
	return b.path
}

// Refresh re-reads the battery from disk and returns the new read's
// warnings. The snapshot is replaced as a whole only on success; on
// error the previous values are left untouched.
func (b *Battery) Refresh() ([]string, error) {
	nb, warnings, err := New(b.path)
	if err != nil {
		return nil, err
	}
	*b = *nb
	return warnings, nil
}

// ChargePercentage is the current charge level, recomputed from the
// latest snapshot. A zero TotalPower is not guarded against; hardware
// reporting a zero total yields a non-finite value.
func (b *Battery) ChargePercentage() float64 {
	return float64(b.CurrPower) / float64(b.TotalPower) * 100
}

// HealthPercentage returns the wear value computed at the last
// successful read, or nil when design capacity was unavailable.
func (b *Battery) HealthPercentage() *float64 {
	return b.Health
}

// readStrAttr returns the full content of the first readable candidate
// file for the attribute, short-circuiting on success. With multiple
// candidates no single path is "the" cause of a failure (each hardware
// profile supports only one family), so the error names all of them;
// with exactly one candidate the underlying error is reported against
// that path.
func readStrAttr(devPath string, attr attribute) (string, error) {
	names := attr.fileNames()

	var lastPath string
	var lastErr error
	for _, name := range names {
		p := filepath.Join(devPath, name)
		data, err := os.ReadFile(p)
		if err == nil {
			return string(data), nil
		}
		lastPath, lastErr = p, err
	}

	if len(names) > 1 {
		return "", fmt.Errorf("tried %s: %w", strings.Join(names, ", "), fs.ErrNotExist)
	}
	if lastErr != nil {
		return "", fmt.Errorf("%s: %w", lastPath, lastErr)
	}
	return "", fmt.Errorf("no file names configured for %s: %w", attr, fs.ErrNotExist)
}

// readUintAttr resolves an attribute and parses its trimmed content as
// an unsigned integer of the given bit size. Parse failures are
// ErrInvalidData, distinct from resolution failures.
func readUintAttr(devPath string, attr attribute, bits int) (uint64, error) {
	raw, err := readStrAttr(devPath, attr)
	if err != nil {
		return 0, err
	}
	trimmed := strings.TrimSpace(raw)
	v, err := strconv.ParseUint(trimmed, 10, bits)
	if err != nil {
		return 0, fmt.Errorf("%w: %q (%v)", ErrInvalidData, trimmed, errors.Unwrap(err))
	}
	return v, nil
}
