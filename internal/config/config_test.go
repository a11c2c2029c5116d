package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/rbuild/internal/executor"
	"github.com/dkoosis/rbuild/internal/sequencer"
)

// clearEnv blanks every variable Resolve reads so host settings never leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"RBUILD_TEST_DIR", "RBUILD_RUNTIME_ROOT", "RBUILD_BUILD_DIR", "RBUILD_BACKEND",
		"RBUILD_NO_COLOR", "NO_COLOR", "RBUILD_DEBUG", "CI",
	} {
		t.Setenv(k, "")
	}
}

func TestResolve_UsesDefaults_When_NothingSet(t *testing.T) {
	clearEnv(t)

	r, err := Resolve(CliFlags{}, nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultTestDir, r.TestDir)
	assert.Equal(t, DefaultRuntimeRoot, r.RuntimeRoot)
	assert.Equal(t, DefaultBuildDir, r.BuildDir)
	assert.Equal(t, sequencer.Ninja, r.Backend)
	assert.Equal(t, DefaultCrossMarker, r.CrossMarker)
	assert.Equal(t, executor.DefaultConventions(), r.Conventions)
	assert.Equal(t, sequencer.DefaultBindings(), r.Bindings)
	assert.False(t, r.NoColor)
	assert.False(t, r.Debug)
	assert.False(t, r.Telemetry)
	assert.Equal(t, SourceDefault, r.Sources["test_dir"])
}

func TestResolve_PriorityOrder(t *testing.T) {
	tests := []struct {
		name       string
		flags      CliFlags
		env        map[string]string
		file       *AppConfig
		wantDir    string
		wantSource Source
	}{
		{
			name:       "CLI beats env and file",
			flags:      CliFlags{TestDir: "cli/tests"},
			env:        map[string]string{"RBUILD_TEST_DIR": "env/tests"},
			file:       &AppConfig{TestDir: "file/tests"},
			wantDir:    "cli/tests",
			wantSource: SourceCLI,
		},
		{
			name:       "env beats file",
			env:        map[string]string{"RBUILD_TEST_DIR": "env/tests"},
			file:       &AppConfig{TestDir: "file/tests"},
			wantDir:    "env/tests",
			wantSource: SourceEnv,
		},
		{
			name:       "file beats default",
			file:       &AppConfig{TestDir: "file/tests"},
			wantDir:    "file/tests",
			wantSource: SourceFile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			r, err := Resolve(tt.flags, tt.file)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDir, r.TestDir)
			assert.Equal(t, tt.wantSource, r.Sources["test_dir"])
		})
	}
}

func TestResolve_ReturnsError_When_BackendInvalid(t *testing.T) {
	clearEnv(t)
	t.Setenv("RBUILD_BACKEND", "bazel")

	_, err := Resolve(CliFlags{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "env")

	r, err := Resolve(CliFlags{Backend: "make"}, nil)
	require.NoError(t, err)
	assert.Equal(t, sequencer.Make, r.Backend)
}

func TestResolve_DisablesColor_When_CISet(t *testing.T) {
	clearEnv(t)
	t.Setenv("CI", "true")

	r, err := Resolve(CliFlags{}, nil)
	require.NoError(t, err)
	assert.True(t, r.NoColor)

	r, err = Resolve(CliFlags{NoColor: false, NoColorSet: true}, nil)
	require.NoError(t, err)
	assert.False(t, r.NoColor)
}

func TestResolve_HonoursNoColorEnv_When_FileSaysColor(t *testing.T) {
	clearEnv(t)
	t.Setenv("NO_COLOR", "1")

	r, err := Resolve(CliFlags{}, &AppConfig{NoColor: false})
	require.NoError(t, err)
	assert.True(t, r.NoColor)
}

func TestResolve_DisablesColor_When_NoColorHasAnyValue(t *testing.T) {
	for _, val := range []string{"1", "yes", "false"} {
		t.Run(val, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("NO_COLOR", val)

			r, err := Resolve(CliFlags{}, nil)
			require.NoError(t, err)
			assert.True(t, r.NoColor)

			noColor, ok := EnvNoColor()
			assert.True(t, ok)
			assert.True(t, noColor)
		})
	}
}

func TestEnvNoColor_PrefersRbuildVariable_When_BothSet(t *testing.T) {
	clearEnv(t)
	t.Setenv("NO_COLOR", "1")
	t.Setenv("RBUILD_NO_COLOR", "false")

	noColor, ok := EnvNoColor()
	assert.True(t, ok)
	assert.False(t, noColor)

	clearEnv(t)
	_, ok = EnvNoColor()
	assert.False(t, ok)
}

func TestResolve_EnablesDebug_When_EnvSet(t *testing.T) {
	clearEnv(t)
	t.Setenv("RBUILD_DEBUG", "yes")

	r, err := Resolve(CliFlags{}, nil)
	require.NoError(t, err)
	assert.True(t, r.Debug)

	r, err = Resolve(CliFlags{Debug: false, DebugSet: true}, nil)
	require.NoError(t, err)
	assert.False(t, r.Debug)
}

func TestResolve_MergesInvocationTable_When_FileAddsException(t *testing.T) {
	clearEnv(t)

	r, err := Resolve(CliFlags{}, &AppConfig{Invocation: map[string]string{
		"renderer_test": "runtime-relative",
		"plugin_test":   "direct",
	}})
	require.NoError(t, err)

	assert.Equal(t, executor.RuntimeRelative, r.Conventions.Lookup("renderer_test"))
	assert.Equal(t, executor.Direct, r.Conventions.Lookup("plugin_test"))
	assert.Equal(t, executor.RuntimeRelative, r.Conventions.Lookup("sound_engine_test"))
}

func TestResolve_ReturnsError_When_InvocationInvalid(t *testing.T) {
	clearEnv(t)

	_, err := Resolve(CliFlags{}, &AppConfig{Invocation: map[string]string{"x": "upside-down"}})
	assert.Error(t, err)
}

func TestLoad_ParsesLocalFile_When_Present(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	yml := `test_dir: out/tests
backend: make
telemetry: true
invocation:
  renderer_test: runtime-relative
bindings:
  scanner: /opt/wayland/bin/wayland-scanner
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(yml), 0o644))

	cfg, path, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, FileName), path)
	assert.Equal(t, "out/tests", cfg.TestDir)
	assert.Equal(t, "make", cfg.Backend)
	assert.True(t, cfg.Telemetry)
	assert.Equal(t, "runtime-relative", cfg.Invocation["renderer_test"])
	assert.Equal(t, "/opt/wayland/bin/wayland-scanner", cfg.Bindings.Scanner)
}

func TestLoad_FallsBackToUserConfig_When_NoLocalFile(t *testing.T) {
	if os.Getenv("HOME") == "" {
		t.Skip("no home directory")
	}
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	require.NoError(t, os.MkdirAll(filepath.Join(xdg, "rbuild"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(xdg, "rbuild", FileName), []byte("build_dir: out\n"), 0o644))

	cfg, path, err := Load(t.TempDir())
	require.NoError(t, err)

	if path == "" {
		t.Skip("user config dir does not honour XDG_CONFIG_HOME on this platform")
	}
	assert.Equal(t, "out", cfg.BuildDir)
}

func TestLoad_ReturnsEmpty_When_NoFileAnywhere(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, path, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Equal(t, &AppConfig{}, cfg)
}

func TestLoad_ReturnsError_When_YAMLMalformed(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("test_dir: [unterminated\n"), 0o644))

	_, path, err := Load(dir)
	require.Error(t, err)
	assert.Equal(t, filepath.Join(dir, FileName), path)
}
