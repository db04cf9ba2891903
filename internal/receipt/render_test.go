package receipt

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/y-maeda1116/FlowPrint/internal/model"
)

func TestRender_CompleteJob(t *testing.T) {
	now := time.Date(2024, 3, 11, 9, 30, 0, 0, time.UTC)
	done := now
	job := Render(Layout{}, []model.Task{
		{Title: "buy milk"},
		{Title: "ship package", Completed: true, CompletedAt: &done},
	}, now)

	assert.True(t, bytes.HasPrefix(job, cmdInit))
	assert.True(t, bytes.HasSuffix(job, cmdFeedCut))

	text := string(job)
	assert.Contains(t, text, DefaultTitle+"\n")
	assert.Contains(t, text, "2024/03/11 09:30\n")
	assert.Contains(t, text, checkboxOpen+" buy milk\n")
	assert.Contains(t, text, checkboxDone+" ship package\n")
	assert.Contains(t, text, "TOTAL: 2 tasks (1 done)\n")
	assert.Contains(t, text, strings.Repeat("-", DefaultWidth)+"\n")
}

func TestRender_EmptyList(t *testing.T) {
	job := Render(Layout{}, nil, time.Date(2024, 3, 11, 9, 30, 0, 0, time.UTC))
	assert.Contains(t, string(job), "TOTAL: 0 tasks (0 done)\n")
}

func TestRender_CustomTitleAndWidth(t *testing.T) {
	job := Render(Layout{Width: 16, Title: "TODAY"}, nil, time.Now())
	text := string(job)
	assert.Contains(t, text, "TODAY\n")
	assert.Contains(t, text, strings.Repeat("-", 16)+"\n")
	assert.NotContains(t, text, strings.Repeat("-", DefaultWidth))
}

func TestRender_ClipsLongTitles(t *testing.T) {
	long := strings.Repeat("あ", 40)
	job := Render(Layout{Width: 16}, []model.Task{{Title: long}}, time.Now())

	line := checkboxOpen + " " + strings.Repeat("あ", 11) + "~\n"
	assert.Contains(t, string(job), line)
}

func TestClip(t *testing.T) {
	assert.Equal(t, "short", clip("short", 10))
	assert.Equal(t, "exactly-10", clip("exactly-10", 10))
	assert.Equal(t, "too-long-~", clip("too-long-to-fit", 10))
	assert.Equal(t, "x", clip("xyz", 1))
}

func TestPrinter_WritesThroughFileSink(t *testing.T) {
	path := t.TempDir() + "/receipts.spool"
	p := NewPrinter(NewFileSink(path))

	require.NoError(t, p.Print([]byte("job-a")))
	require.NoError(t, p.Print([]byte("job-b")))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "job-ajob-b", string(b))
}

func TestPrinter_NoSink(t *testing.T) {
	p := NewPrinter(nil)
	assert.ErrorIs(t, p.Print([]byte("job")), ErrNoSink)
}
