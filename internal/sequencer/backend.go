package sequencer

import (
	"fmt"
	"strings"
)

// Backend is the native build system the generator emits.
type Backend int

const (
	Ninja Backend = iota
	Make
)

func (b Backend) String() string {
	if b == Make {
		return "make"
	}
	return "ninja"
}

// Generator returns the -G argument for the configure step.
func (b Backend) Generator() string {
	if b == Make {
		return "Unix Makefiles"
	}
	return "Ninja"
}

// ParseBackend accepts exactly "ninja" or "make", case-insensitively.
func ParseBackend(s string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ninja", "":
		return Ninja, nil
	case "make":
		return Make, nil
	default:
		return Ninja, fmt.Errorf("unknown backend %q: must be ninja or make", s)
	}
}

// UnmarshalText lets Backend be decoded from config files.
func (b *Backend) UnmarshalText(text []byte) error {
	v, err := ParseBackend(string(text))
	if err != nil {
		return err
	}
	*b = v
	return nil
}

// MarshalText is the inverse of UnmarshalText.
func (b Backend) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}
