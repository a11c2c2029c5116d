//go:build !unix

package probe

import (
	"os"
	"path/filepath"
	"strings"
)

// executableExts lists the extensions Windows will launch directly.
var executableExts = map[string]bool{
	".exe": true,
	".com": true,
	".bat": true,
	".cmd": true,
}

// canExecute falls back to the file extension; there is no execute bit here.
func canExecute(path string, _ os.FileInfo) bool {
	return executableExts[strings.ToLower(filepath.Ext(path))]
}
