package progress

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBar(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		completed int
		total     int
		want      int
	}{
		{name: "nothing done", completed: 0, total: 10, want: 0},
		{name: "floors a third", completed: 1, total: 3, want: 6},
		{name: "floors two thirds", completed: 2, total: 3, want: 13},
		{name: "one short", completed: 19, total: 20, want: 19},
		{name: "complete", completed: 3, total: 3, want: BarWidth},
		{name: "empty run", completed: 0, total: 0, want: BarWidth},
		{name: "clamps overshoot", completed: 5, total: 3, want: BarWidth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Bar(tt.completed, tt.total))
		})
	}
}

func TestBar_IsMonotonic_When_CompletedIncreases(t *testing.T) {
	t.Parallel()

	for total := 1; total <= 37; total++ {
		prev := -1
		for c := 0; c <= total; c++ {
			got := Bar(c, total)
			assert.GreaterOrEqual(t, got, prev, "total=%d completed=%d", total, c)
			prev = got
		}
		assert.Equal(t, BarWidth, prev)
	}
}

func TestReporter_Line_RendersFloorFilledBar_When_Monochrome(t *testing.T) {
	t.Parallel()

	r := New(&bytes.Buffer{}, Options{NoColor: true})

	assert.Equal(t, "[######--------------]  33% (1/3) plugin_test", r.Line(1, 3, "plugin_test"))
	assert.Equal(t, "[--------------------]   0% (0/4)", r.Line(0, 4, ""))
}

func TestReporter_Line_CountsFillCharacters_When_Colored(t *testing.T) {
	t.Parallel()

	r := New(&bytes.Buffer{}, Options{})
	line := r.Line(7, 10, "")

	assert.Equal(t, 14, strings.Count(line, "#"))
	assert.Equal(t, 6, strings.Count(line, "-"))
}

func TestReporter_Line_TruncatesLabel_When_TerminalNarrow(t *testing.T) {
	t.Parallel()

	r := New(&bytes.Buffer{}, Options{NoColor: true, TermWidth: 45})
	line := r.Line(1, 3, "a_really_long_test_name_that_cannot_fit")

	assert.LessOrEqual(t, len(line), 45)
	assert.True(t, strings.HasSuffix(line, "..."), line)
}

func TestReporter_AppendsLines_When_NotInteractive(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := New(&buf, Options{NoColor: true})

	r.Update(0, 2, "a")
	r.Update(1, 2, "b")
	r.Finish(1, 2)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "[--------------------]   0% (0/2) a", lines[0])
	assert.Equal(t, "[##########----------]  50% (1/2) b", lines[1])
	assert.Equal(t, "[####################] 100% passed 1/2", lines[2])
	assert.NotContains(t, buf.String(), "\033[2K")
}

func TestReporter_ErasesPreviousLine_When_Interactive(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := New(&buf, Options{NoColor: true, Interactive: true})

	r.Update(0, 1, "only")
	r.Finish(1, 1)

	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, eraseLine))
	assert.True(t, strings.HasPrefix(out, "[--------------------]"))
	assert.True(t, strings.HasSuffix(out, "[####################] 100% passed 1/1\n"))
}

func TestReporter_IgnoresCalls_When_Finished(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := New(&buf, Options{NoColor: true})

	r.Finish(0, 0)
	before := buf.String()
	r.Update(1, 1, "late")
	r.Finish(1, 1)

	assert.Equal(t, before, buf.String())
	assert.Equal(t, "[####################] 100% passed 0/0\n", before)
}

type countingFlusher struct {
	bytes.Buffer
	flushes int
}

func (c *countingFlusher) Flush() error {
	c.flushes++
	return nil
}

func TestReporter_FlushesEachRedraw_When_WriterBuffers(t *testing.T) {
	t.Parallel()

	w := &countingFlusher{}
	r := New(w, Options{NoColor: true})

	r.Update(0, 2, "a")
	r.Update(1, 2, "b")

	assert.Equal(t, 2, w.flushes)
}

func TestDetect_IsNotInteractive_When_WriterIsBuffer(t *testing.T) {
	t.Parallel()

	opts := Detect(&bytes.Buffer{}, true)

	assert.False(t, opts.Interactive)
	assert.True(t, opts.NoColor)
	assert.Zero(t, opts.TermWidth)
}
