package reembed

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lastReport returns the most recent progress line written to buf.
func lastReport(buf *bytes.Buffer) string {
	reports := strings.Split(strings.TrimSpace(buf.String()), "\r")
	return reports[len(reports)-1]
}

func TestProgressTracker_Reports(t *testing.T) {
	testCases := []struct {
		name     string
		total    int
		interval int
		steps    []int
		want     string
	}{
		{"increments reach total", 100, 10, []int{25, 25, 50}, "Progress: 100/100 (100.0%)"},
		{"increment capped at total", 100, 10, []int{150}, "Progress: 100/100 (100.0%)"},
		{"partial progress", 200, 50, []int{50}, "Progress: 50/200 (25.0%)"},
		{"interval crossed in two steps", 1000, 100, []int{60, 60}, "Progress: 120/1000 (12.0%)"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			tracker := NewProgressTracker(&buf, tc.total, tc.interval, "entries")
			tracker.Start()
			for _, step := range tc.steps {
				tracker.Increment(step)
			}

			require.NotEmpty(t, buf.String())
			assert.True(t, strings.HasPrefix(lastReport(&buf), tc.want), lastReport(&buf))
			assert.Contains(t, lastReport(&buf), "entries/s")
		})
	}
}

func TestProgressTracker_ReportInterval(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 1000, 100, "entries")
	tracker.Start()

	tracker.Update(99)
	assert.Empty(t, buf.String())

	tracker.Update(100)
	assert.Equal(t, 1, strings.Count(buf.String(), "Progress:"))

	tracker.Update(150)
	assert.Equal(t, 1, strings.Count(buf.String(), "Progress:"), "50 since last report is below the interval")

	tracker.Update(200)
	assert.Equal(t, 2, strings.Count(buf.String(), "Progress:"))
}

func TestProgressTracker_Finish(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 40, 100, "entries")
	tracker.Start()
	tracker.Update(10)
	assert.Empty(t, buf.String())

	tracker.Finish()
	assert.True(t, strings.HasSuffix(buf.String(), "\n"))
	assert.Contains(t, buf.String(), "40/40 (100.0%)")
}

func TestProgressTracker_ZeroTotal(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 0, 10, "entries")
	tracker.Start()
	tracker.Finish()

	assert.Contains(t, buf.String(), "0/0 (0.0%)")
}

func TestProgressTracker_NotStarted(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 100, 10, "entries")

	tracker.Increment(50)
	tracker.Update(80)
	tracker.Finish()

	assert.Empty(t, buf.String())
	assert.Zero(t, tracker.Elapsed())
}

func TestProgressTracker_RestartResetsCounts(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 100, 10, "entries")
	tracker.Start()
	tracker.Update(90)

	tracker.Start()
	buf.Reset()
	tracker.Increment(10)
	assert.Contains(t, lastReport(&buf), "10/100")
}

func TestProgressTracker_Defaults(t *testing.T) {
	t.Run("empty unit", func(t *testing.T) {
		var buf bytes.Buffer
		tracker := NewProgressTracker(&buf, 10, 1, "")
		tracker.Start()
		tracker.Finish()
		assert.Contains(t, buf.String(), "items/s")
	})

	t.Run("nil writer", func(t *testing.T) {
		tracker := NewProgressTracker(nil, 10, 1, "entries")
		tracker.Start()
		tracker.Update(5)
		time.Sleep(time.Millisecond)
		tracker.Finish()
		assert.Greater(t, tracker.Elapsed(), time.Duration(0))
	})
}
