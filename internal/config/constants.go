package config

// Version is the current proofkit version.
// Set at build time by the release process via -ldflags, or by
// writing to this file directly.
var Version = "0.3.0"

const DefFileExt = ".def"
const ScriptFileExt = ".script"

// RecognizedDefExtensions are the filename suffixes HasDefExt accepts
// for a definition file.
var RecognizedDefExtensions = []string{".def", ".d2"}

// HasDefExt reports whether path ends in a recognized definition-file
// extension.
func HasDefExt(path string) bool {
	for _, ext := range RecognizedDefExtensions {
		if len(path) >= len(ext) && path[len(path)-len(ext):] == ext {
			return true
		}
	}
	return false
}

// TrimExt removes the first matching extension in exts from name,
// returning name unchanged if none match.
func TrimExt(name string, exts []string) string {
	for _, ext := range exts {
		if len(name) >= len(ext) && name[len(name)-len(ext):] == ext {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}

// IsTestMode is a process-wide test-mode flag. None of the three CLIs
// sets it, and no package reads it.
var IsTestMode = false

// ScriptEndSentinel is the line written to terminate a script file.
const ScriptEndSentinel = "-1"

// DefaultFreshOrder is the variable-name trial order used when
// picking a fresh binder, before falling back to the rest of the
// alphabet. It mirrors the preferred order inside internal/term;
// Preferences has no field for it and nothing reads this copy.
const DefaultFreshOrder = "xyzwvu"
