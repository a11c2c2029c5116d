// Package probe answers whether a filesystem path can be launched as a program.
package probe

import "os"

// IsExecutable reports whether path names a regular file the current user may
// execute. Symlinks are followed; directories, sockets and missing paths are
// never executable.
func IsExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	return canExecute(path, info)
}
