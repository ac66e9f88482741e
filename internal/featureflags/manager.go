// Package featureflags evaluates runtime flags from a key=value config list.
package featureflags

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
)

// Flags the application consults. Downfame gates the downvote path during
// rollout; Signup is the registration kill-switch.
const (
	FlagDownfame = "downfame"
	FlagSignup   = "signup"
)

// Manager evaluates feature flags defined in a simple key=value list.
// Example: "downfame=on,signup=on,new_feed=25%"
type Manager struct {
	flags map[string]string
}

// NewManager creates a feature-flag manager from a comma-separated config string.
func NewManager(raw string) *Manager {
	out := make(map[string]string)

	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := normalize(parts[0])
		value := normalize(parts[1])
		if key == "" || value == "" {
			continue
		}
		out[key] = value
	}

	return &Manager{flags: out}
}

// Enabled returns whether a flag is enabled for a given user. Unset flags
// are off; use EnabledOrDefault for flags that must fail open.
// Supported values:
// - on/true/1
// - off/false/0
// - N% (deterministic user rollout, e.g. 25%)
func (m *Manager) Enabled(name string, userID uint) bool {
	enabled, _ := m.evaluate(name, userID)
	return enabled
}

// EnabledOrDefault is Enabled with a fallback for flags absent from the
// config. The signup kill-switch uses def=true so a missing flag never
// blocks registration.
func (m *Manager) EnabledOrDefault(name string, userID uint, def bool) bool {
	enabled, ok := m.evaluate(name, userID)
	if !ok {
		return def
	}
	return enabled
}

func (m *Manager) evaluate(name string, userID uint) (enabled, configured bool) {
	if m == nil {
		return false, false
	}

	value, ok := m.flags[normalize(name)]
	if !ok {
		return false, false
	}

	switch value {
	case "on", "true", "1":
		return true, true
	case "off", "false", "0":
		return false, true
	}

	if strings.HasSuffix(value, "%") {
		pct, err := strconv.Atoi(strings.TrimSuffix(value, "%"))
		if err != nil {
			return false, true
		}
		if pct <= 0 {
			return false, true
		}
		if pct >= 100 {
			return true, true
		}
		if userID == 0 {
			return false, true
		}
		return rolloutBucket(name, userID) < pct, true
	}

	return false, true
}

// Snapshot returns evaluated flag status for one user.
func (m *Manager) Snapshot(userID uint) map[string]bool {
	out := make(map[string]bool, len(m.flags))
	for name := range m.flags {
		out[name] = m.Enabled(name, userID)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func rolloutBucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(fmt.Sprintf("%s:%d", normalize(name), userID)))
	return int(h.Sum32() % 100)
}
