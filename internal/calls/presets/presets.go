// Package presets provides the tap-to-add phrases offered while closing a call.
package presets

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Presets holds the phrase lists for the questions and remark fields.
type Presets struct {
	Questions []string `yaml:"questions"`
	Remarks   []string `yaml:"remarks"`
}

// Default returns the built-in phrase lists.
func Default() Presets {
	return Presets{
		Questions: []string{
			"Pricing and packages",
			"Product comparison with current solution",
			"Delivery timeline",
			"Payment options",
			"Discount for annual plan",
			"Demo requested",
			"Technical specifications",
			"Refund policy",
			"Call back after a week",
			"Send details on WhatsApp",
		},
		Remarks: []string{
			"Customer asked to call back later",
			"Not interested – wrong timing",
			"Will think and revert",
			"Requested brochure/details on email",
			"Callback after discussion with family",
			"Already using competitor",
			"Not reachable – busy",
			"Interested – will confirm",
			"Price too high",
			"No response / switched off",
			"Requested callback on weekend",
			"Decision maker not available",
		},
	}
}

// Load reads phrase lists from a YAML file. An empty path yields Default.
// A list missing from the file keeps its default.
func Load(path string) (Presets, error) {
	defaults := Default()
	if path == "" {
		return defaults, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Presets{}, fmt.Errorf("read presets: %w", err)
	}

	var file Presets
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return Presets{}, fmt.Errorf("parse presets %s: %w", path, err)
	}

	out := defaults
	if q := clean(file.Questions); len(q) > 0 {
		out.Questions = q
	}
	if r := clean(file.Remarks); len(r) > 0 {
		out.Remarks = r
	}
	return out, nil
}

// clean trims phrases and drops blanks and duplicates, keeping order.
func clean(phrases []string) []string {
	seen := make(map[string]struct{}, len(phrases))
	out := make([]string, 0, len(phrases))
	for _, p := range phrases {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
