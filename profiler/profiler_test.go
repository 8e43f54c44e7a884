package profiler

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfiler_Record(t *testing.T) {
	p := New(2)

	p.Record(StageDecode, 3*time.Millisecond)
	p.Record(StageDecode, 1*time.Millisecond)
	p.Record(StageDecode, 5*time.Millisecond) // evicts the first sample
	p.Record(StageInference, 10*time.Millisecond)

	stats := p.Snapshot()
	require.Len(t, stats, 2)

	assert.Equal(t, StageDecode, stats[0].Name)
	assert.Equal(t, int64(3), stats[0].Count)
	assert.Equal(t, 3*time.Millisecond, stats[0].Avg, "average covers the window only")
	assert.Equal(t, 1*time.Millisecond, stats[0].Min)
	assert.Equal(t, 5*time.Millisecond, stats[0].Max)

	assert.Equal(t, StageInference, stats[1].Name)
	assert.Equal(t, int64(1), stats[1].Count)
}

func TestProfiler_StartOperation(t *testing.T) {
	p := New(0)

	done := p.StartOperation(StagePreprocess)
	time.Sleep(time.Millisecond)
	done()

	stats := p.Snapshot()
	require.Len(t, stats, 1)
	assert.GreaterOrEqual(t, stats[0].Min, time.Millisecond)

	var nilProfiler *Profiler
	assert.NotPanics(t, func() { nilProfiler.StartOperation("noop")() })
}

func TestProfiler_Report(t *testing.T) {
	logger, hook := test.NewNullLogger()
	p := New(0)
	p.Record(StageDecode, time.Millisecond)

	p.Report(logrus.NewEntry(logger))

	require.Len(t, hook.AllEntries(), 2)
	assert.Equal(t, "operation timing", hook.LastEntry().Message)
	assert.Equal(t, StageDecode, hook.LastEntry().Data["operation"])
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.5 KB", formatBytes(1536))
	assert.Equal(t, "2.0 MB", formatBytes(2*1024*1024))
}
