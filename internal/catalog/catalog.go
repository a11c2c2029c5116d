// Package catalog discovers compiled test artifacts in a flat directory and
// classifies each one as runnable, non-executable or platform-excluded.
package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dkoosis/rbuild/internal/platform"
	"github.com/dkoosis/rbuild/internal/probe"
)

// CatalogError reports a test directory that is missing or not a directory.
type CatalogError struct {
	Dir string
	Err error
}

func (e *CatalogError) Error() string {
	return fmt.Sprintf("test directory %s: %v", e.Dir, e.Err)
}

func (e *CatalogError) Unwrap() error { return e.Err }

// ErrNotDirectory is wrapped by CatalogError when the path exists but is a file.
var ErrNotDirectory = errors.New("not a directory")

// TestCase is one discovered entry. It is never mutated after Build returns.
type TestCase struct {
	// Name is the display name: the base name without the native executable suffix.
	Name string
	// Path is absolute and keeps any suffix.
	Path             string
	IsExecutable     bool
	PlatformEligible bool
}

// Runnable reports whether the executor should launch the case.
func (tc TestCase) Runnable() bool {
	return tc.IsExecutable && tc.PlatformEligible
}

// Options controls platform filtering.
type Options struct {
	Platform platform.Platform
	// CrossCompile is set when the cross-compilation marker is present.
	CrossCompile bool
	// Probe overrides the executable check. Nil uses probe.IsExecutable.
	Probe func(path string) bool
}

// suffixFilter returns the suffix an entry must carry to be eligible, or ""
// when every entry is eligible.
func (o Options) suffixFilter() string {
	if o.Platform == platform.Windows || o.CrossCompile {
		return platform.Windows.ExeSuffix()
	}
	return ""
}

// MarkerPresent reports whether the cross-compilation marker exists.
func MarkerPresent(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// Build lists dir in lexicographic order and produces one TestCase per entry.
func Build(dir string, opts Options) ([]TestCase, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, &CatalogError{Dir: dir, Err: err}
	}
	if !info.IsDir() {
		return nil, &CatalogError{Dir: dir, Err: ErrNotDirectory}
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, &CatalogError{Dir: dir, Err: err}
	}

	entries, err := os.ReadDir(absDir)
	if err != nil {
		return nil, &CatalogError{Dir: dir, Err: err}
	}
	slices.SortFunc(entries, func(a, b fs.DirEntry) int {
		return strings.Compare(a.Name(), b.Name())
	})

	isExec := opts.Probe
	if isExec == nil {
		isExec = probe.IsExecutable
	}
	suffix := opts.suffixFilter()

	cases := make([]TestCase, 0, len(entries))
	for _, entry := range entries {
		path := filepath.Join(absDir, entry.Name())
		cases = append(cases, TestCase{
			Name:             displayName(entry.Name(), opts.Platform, suffix),
			Path:             path,
			IsExecutable:     isExec(path),
			PlatformEligible: suffix == "" || hasSuffixFold(entry.Name(), suffix),
		})
	}
	return cases, nil
}

// Summary counts cases by classification.
type Summary struct {
	Runnable         int
	NonExecutable    int
	PlatformExcluded int
}

// Summarize classifies cases. A case that is both non-executable and
// platform-excluded counts as platform-excluded.
func Summarize(cases []TestCase) Summary {
	var s Summary
	for _, tc := range cases {
		switch {
		case !tc.PlatformEligible:
			s.PlatformExcluded++
		case !tc.IsExecutable:
			s.NonExecutable++
		default:
			s.Runnable++
		}
	}
	return s
}

func displayName(base string, p platform.Platform, filter string) string {
	suffix := filter
	if suffix == "" {
		suffix = p.ExeSuffix()
	}
	if suffix != "" && hasSuffixFold(base, suffix) && len(base) > len(suffix) {
		return base[:len(base)-len(suffix)]
	}
	return base
}

func hasSuffixFold(s, suffix string) bool {
	return len(s) >= len(suffix) && strings.EqualFold(s[len(s)-len(suffix):], suffix)
}
