package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Preferences is the optional per-project configuration file,
// .proofkit.yaml, read by all three CLI binaries before applying
// command-line flags on top of it.
type Preferences struct {
	// Notation selects the default term-rendering style: "conventional",
	// "new", or "rich". Flags override this per invocation.
	Notation string `yaml:"notation"`

	// ASCIIOnly requests ASCII glyph rendering even on a terminal capable
	// of the rich Unicode notation. It is loaded from the file, but none
	// of the three CLIs reads it.
	ASCIIOnly bool `yaml:"ascii_only"`

	// Verbose turns on -v-equivalent trace output by default.
	Verbose bool `yaml:"verbose"`

	// SkipChecks trusts script files outright instead of re-verifying
	// every rule's applicability predicate.
	SkipChecks bool `yaml:"skip_checks"`

	// SearchPaths lists extra definition directories. It is loaded from
	// the file, but no command reads it: genscript's -t resolves names
	// only within the book built from its input file.
	SearchPaths []string `yaml:"search_paths"`
}

// DefaultPreferences is used when no .proofkit.yaml is present.
func DefaultPreferences() Preferences {
	return Preferences{Notation: "conventional"}
}

// Load reads and parses path as a Preferences file. A missing file is
// not an error: the caller gets DefaultPreferences back.
func Load(path string) (Preferences, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultPreferences(), nil
		}
		return Preferences{}, err
	}
	prefs := DefaultPreferences()
	if err := yaml.Unmarshal(data, &prefs); err != nil {
		return Preferences{}, err
	}
	return prefs, nil
}
