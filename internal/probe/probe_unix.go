//go:build unix

package probe

import (
	"os"

	"golang.org/x/sys/unix"
)

// canExecute defers to access(2) so ownership, group membership and ACLs are
// honored the same way the kernel will honor them at exec time.
func canExecute(path string, info os.FileInfo) bool {
	if info.Mode().Perm()&0o111 == 0 {
		return false
	}
	return unix.Access(path, unix.X_OK) == nil
}
