package magetasks

import (
	"fmt"
	"os"
	"path/filepath"
)

// NativeProjectEnv names the native checkout the Native tasks operate on.
// Unset means the current directory.
const NativeProjectEnv = "RBUILD_PROJECT"

// NativeArgs maps task names to rbuild flags.
var NativeArgs = map[string][]string{
	"deps":      {"--get-deps"},
	"loc":       {"--print-loc"},
	"bindings":  {"--build-rnative"},
	"configure": {"--configure"},
	"compile":   {"--compile"},
	"test":      {"--run-tests"},
	"all":       {"--compile", "--run-tests"},
}

// Native builds rbuild and runs it against the native project with the
// flags registered for task.
func Native(task string) error {
	args, ok := NativeArgs[task]
	if !ok {
		return fmt.Errorf("unknown native task %q", task)
	}
	if err := BuildAll(); err != nil {
		return err
	}

	bin, err := filepath.Abs(filepath.Join(ProjectRoot, BinPath))
	if err != nil {
		return err
	}

	PrintH2Header("Native " + task)
	prev := ProjectRoot
	if dir := os.Getenv(NativeProjectEnv); dir != "" {
		ProjectRoot = dir
	}
	defer func() { ProjectRoot = prev }()
	return Run("rbuild "+task, bin, args...)
}
