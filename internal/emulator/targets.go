// Package emulator lists the emulators known to speak PINE and the slot
// each listens on by default.
package emulator

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrUnknownTarget = errors.New("emulator: unknown target")

type Target struct {
	Name        string
	DisplayName string
	DefaultSlot uint16
}

var targets = map[string]Target{
	"pcsx2":       {Name: "pcsx2", DisplayName: "PCSX2", DefaultSlot: 28011},
	"rpcs3":       {Name: "rpcs3", DisplayName: "RPCS3", DefaultSlot: 28012},
	"duckstation": {Name: "duckstation", DisplayName: "DuckStation", DefaultSlot: 28011},
}

// Lookup finds a target by case-insensitive name.
func Lookup(name string) (Target, error) {
	t, ok := targets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Target{}, fmt.Errorf("%w: %q", ErrUnknownTarget, name)
	}
	return t, nil
}

// DefaultSlot returns the default slot for name, or 0 when unknown.
func DefaultSlot(name string) uint16 {
	t, err := Lookup(name)
	if err != nil {
		return 0
	}
	return t.DefaultSlot
}

// Names returns the known target names, sorted.
func Names() []string {
	out := make([]string, 0, len(targets))
	for name := range targets {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
