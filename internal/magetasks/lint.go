package magetasks

import (
	"errors"
	"fmt"

	"github.com/dkoosis/rbuild/internal/proc"
)

const golangciDisabled = "--disable=exhaustruct,varnamelen,ireturn,wrapcheck,nlreturn,gochecknoglobals,mnd,depguard,tagalign,tenv"

// linter is one lint pass over the rbuild tree. An optional linter whose
// tool is missing from PATH is skipped with an install hint.
type linter struct {
	label    string
	tool     string
	args     []string
	optional bool
	install  string
}

var (
	gofmtLinter = linter{label: "Go Format", tool: "gofmt", args: []string{"-l", "-d", "."}}
	vetLinter   = linter{label: "Go Vet", tool: "go", args: []string{"vet", "./..."}}

	staticcheckLinter = linter{
		label:    "Staticcheck",
		tool:     "staticcheck",
		args:     []string{"./..."},
		optional: true,
		install:  "honnef.co/go/tools/cmd/staticcheck@latest",
	}
	golangciLinter = linter{
		label:    "Golangci-lint",
		tool:     "golangci-lint",
		args:     []string{"run", golangciDisabled, "--timeout=5m", "./..."},
		optional: true,
		install:  "github.com/golangci/golangci-lint/cmd/golangci-lint@latest",
	}
)

func (l linter) withArgs(label string, args ...string) linter {
	l.label = label
	l.args = args
	return l
}

// run executes the linter. A missing optional tool returns nil after a
// warning; a missing required tool returns the proc.ToolNotFoundError.
func (l linter) run() error {
	err := Run(l.label, l.tool, l.args...)
	var missing *proc.ToolNotFoundError
	if errors.As(err, &missing) && l.optional {
		PrintWarning(fmt.Sprintf("%s skipped: %v (install: go install %s)", l.label, missing, l.install))
		return nil
	}
	return err
}

// LintAll runs every linter and reports all failures together.
func LintAll() error {
	var errs []error
	for _, l := range []linter{gofmtLinter, vetLinter, staticcheckLinter, golangciLinter} {
		if err := l.run(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	PrintSuccess("All linters passed")
	return nil
}

// LintFormat lists files gofmt would change.
func LintFormat() error { return gofmtLinter.run() }

// LintVet runs go vet.
func LintVet() error { return vetLinter.run() }

// LintStaticcheck runs staticcheck if installed.
func LintStaticcheck() error { return staticcheckLinter.run() }

// LintGolangci runs golangci-lint if installed.
func LintGolangci() error { return golangciLinter.run() }

// LintGolangciFix runs golangci-lint with --fix.
func LintGolangciFix() error {
	return golangciLinter.withArgs("Golangci-lint Fix", "run", "--fix", golangciDisabled, "--timeout=5m", "./...").run()
}
