// Package deps prints the native libraries the project needs to build.
package deps

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Requirement is one library and its version constraint.
type Requirement struct {
	Name       string
	Constraint string
}

// Required lists the build dependencies in display order.
var Required = []Requirement{
	{Name: "GLFW", Constraint: ">= 3.4"},
	{Name: "SDL", Constraint: "== 2.0"},
	{Name: "OpenGL", Constraint: ">= 1.1"},
	{Name: "GLEW", Constraint: ">= 1.5"},
	{Name: "OpenAL", Constraint: "(OpenAL-soft) any"},
	{Name: "miniz", Constraint: ">= 3.0"},
}

const (
	cmakeLists = "CMakeLists.txt"
	linkPrefix = "target_link_libraries(${PROJECT_NAME}"
)

var linkScopes = map[string]bool{"PRIVATE": true, "PUBLIC": true, "INTERFACE": true}

// Print writes the requirement table, then the libraries linked by the
// project's CMakeLists.txt in dir if one exists. A missing file is not an error.
func Print(w io.Writer, dir string) error {
	for _, r := range Required {
		fmt.Fprintf(w, "%-8s%s\n", r.Name+":", r.Constraint)
	}

	libs, err := LinkLibraries(filepath.Join(dir, cmakeLists))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(libs) > 0 {
		fmt.Fprintf(w, "\nlinked: %s\n", strings.Join(libs, " | "))
	}
	return nil
}

// LinkLibraries returns the libraries on the first single-line
// target_link_libraries(${PROJECT_NAME} ...) call in path.
func LinkLibraries(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, linkPrefix) {
			continue
		}
		return parseLinkLine(line), nil
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return nil, nil
}

func parseLinkLine(line string) []string {
	fields := strings.Fields(strings.TrimPrefix(line, linkPrefix))
	if len(fields) > 0 && linkScopes[fields[0]] {
		fields = fields[1:]
	}
	libs := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSuffix(f, ")")
		if f != "" {
			libs = append(libs, f)
		}
	}
	return libs
}
