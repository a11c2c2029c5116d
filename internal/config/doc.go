// Package config handles configuration loading and merging for rbuild.
//
// # Configuration Precedence
//
// Configuration values are resolved in the following order (highest to lowest priority):
//
//  1. CLI flags (--test-dir, --runtime-root, --build-dir, --backend, --no-color, --debug, ...)
//  2. Environment variables (RBUILD_TEST_DIR, RBUILD_RUNTIME_ROOT, RBUILD_BUILD_DIR,
//     RBUILD_BACKEND, RBUILD_NO_COLOR, NO_COLOR, RBUILD_DEBUG, CI)
//  3. YAML config file (.rbuild.yaml in the working directory or ~/.config/rbuild/.rbuild.yaml)
//  4. Hardcoded defaults
//
// When a higher-priority source sets a value, it overrides any lower-priority values.
//
// # Key Configuration Options
//
//   - test_dir: directory scanned for test binaries (bin/tests)
//   - runtime_root: working directory for every test binary (bin)
//   - build_dir: build directory whose absence triggers configure (build)
//   - backend: ninja or make
//   - invocation: per-test launch convention, direct or runtime-relative
//   - bindings: wayland-scanner program, protocol XML and output paths
//
// # CI Mode Behavior
//
// When CI is set in the environment colors are disabled unless --no-color=false is
// given explicitly.
//
// # Environment Variables
//
//   - RBUILD_NO_COLOR or NO_COLOR: Set to "true" or "1" to disable colors
//   - CI: Set to "true" or "1" to disable colors
//   - RBUILD_DEBUG: Set to any non-empty value to enable debug logging
package config
