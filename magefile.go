//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"

	"github.com/dkoosis/rbuild/internal/magetasks"
)

// Default target - build the binary
var Default = Build

func init() {
	if err := magetasks.Initialize(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal: %v\n", err)
		os.Exit(1)
	}
}

// Build builds the rbuild binary
func Build() error {
	return magetasks.BuildAll()
}

// Clean removes build artifacts
func Clean() error {
	return magetasks.Clean()
}

// All builds and tests rbuild
func All() error {
	return magetasks.RunAll()
}

// QA runs linters, tests and a build
func QA() error {
	magetasks.PrintH1Header("rbuild Quality Assurance")
	return magetasks.QualityCheck()
}

// Lint namespace for linting commands
type Lint mg.Namespace

// All runs all linters
func (Lint) All() error {
	return magetasks.LintAll()
}

// Format checks code formatting
func (Lint) Format() error {
	return magetasks.LintFormat()
}

// Vet runs go vet
func (Lint) Vet() error {
	return magetasks.LintVet()
}

// Staticcheck runs staticcheck
func (Lint) Staticcheck() error {
	return magetasks.LintStaticcheck()
}

// Golangci runs golangci-lint
func (Lint) Golangci() error {
	return magetasks.LintGolangci()
}

// Fix runs golangci-lint with auto-fixes
func (Lint) Fix() error {
	return magetasks.LintGolangciFix()
}

// Test namespace for testing commands
type Test mg.Namespace

// All runs all tests
func (Test) All() error {
	return magetasks.TestAll()
}

// Coverage runs tests with coverage
func (Test) Coverage() error {
	return magetasks.TestCoverage()
}

// Race runs tests with race detector
func (Test) Race() error {
	return magetasks.TestRace()
}

// Native namespace drives a freshly built rbuild against the native project
// in $RBUILD_PROJECT (default: current directory).
type Native mg.Namespace

// Deps prints the native dependency table
func (Native) Deps() error { return magetasks.Native("deps") }

// Loc counts lines of code
func (Native) Loc() error { return magetasks.Native("loc") }

// Bindings generates the wayland protocol bindings
func (Native) Bindings() error { return magetasks.Native("bindings") }

// Configure generates the cmake build directory
func (Native) Configure() error { return magetasks.Native("configure") }

// Compile builds the native project
func (Native) Compile() error { return magetasks.Native("compile") }

// Test runs the native test binaries
func (Native) Test() error { return magetasks.Native("test") }

// All compiles and then tests the native project
func (Native) All() error { return magetasks.Native("all") }
