package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_DropsDebug_When_NotDebugging(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(&buf, false)

	logger.Debug("hidden", "k", "v")
	logger.Warn("shown", "tool", "cmake")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "tool=cmake")
	assert.Contains(t, out, "rbuild")
}

func TestNew_EmitsDebug_When_Debugging(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	New(&buf, true).Debug("spawn", "test", "ecs_test")

	assert.Contains(t, buf.String(), "spawn")
	assert.Contains(t, buf.String(), "test=ecs_test")
}

func TestDiscard_WritesNothing(t *testing.T) {
	t.Parallel()

	Discard().Error("boom")
}
