// Package platform classifies the host operating system.
package platform

import "runtime"

// Platform is the coarse host classification used for code generation and
// test selection.
type Platform int

const (
	Unknown Platform = iota
	Linux
	MacOS
	Windows
)

// Current returns the classification of the running host.
func Current() Platform {
	return Classify(runtime.GOOS)
}

// Classify maps a GOOS value onto a Platform.
func Classify(goos string) Platform {
	switch goos {
	case "linux":
		return Linux
	case "darwin":
		return MacOS
	case "windows":
		return Windows
	default:
		return Unknown
	}
}

func (p Platform) String() string {
	switch p {
	case Linux:
		return "linux"
	case MacOS:
		return "macOS"
	case Windows:
		return "windows"
	default:
		return "unknown"
	}
}

// ExeSuffix returns the native executable suffix, "" where binaries carry none.
func (p Platform) ExeSuffix() string {
	if p == Windows {
		return ".exe"
	}
	return ""
}
