package monitoring

import (
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"facebook-post-scraper/pkg/types"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestRecordRunPersists(t *testing.T) {
	file := filepath.Join(t.TempDir(), "data", "metrics.json")
	now := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

	m := NewMonitor(quietLogger(), file)
	m.now = func() time.Time { return now }

	m.RecordRun("run-hashtag-scrape", "https://m.facebook.com/hashtag/a", &types.RunResult{Extracted: 5, Saved: 4}, 2*time.Second, nil)
	m.RecordRun("run-hashtag-scrape", "https://m.facebook.com/hashtag/b", &types.RunResult{Extracted: 3, Saved: 3}, 4*time.Second, nil)
	m.RecordRun("run-page-scrape", "https://m.facebook.com/page", nil, time.Second, errors.New("target closed"))

	reloaded := NewMonitor(quietLogger(), file)
	metrics := reloaded.GetMetrics()

	assert.Equal(t, 3, metrics.Runs)
	assert.Equal(t, 1, metrics.FailedRuns)
	assert.Equal(t, 8, metrics.PostsExtracted)
	assert.Equal(t, 7, metrics.PostsSaved)
	assert.InDelta(t, 33.33, metrics.ErrorRate, 0.01)
	assert.InDelta(t, float64(7*time.Second/3), float64(metrics.AverageRunTime), float64(time.Microsecond))

	hashtag := metrics.EntryMetrics["run-hashtag-scrape"]
	assert.Equal(t, 2, hashtag.Runs)
	assert.Equal(t, 3*time.Second, hashtag.AverageRunTime)
	assert.Equal(t, "https://m.facebook.com/hashtag/b", hashtag.LastTarget)

	page := metrics.EntryMetrics["run-page-scrape"]
	assert.Equal(t, 1, page.Failures)
	assert.Equal(t, "target closed", page.LastError)

	report := reloaded.GenerateReport()
	assert.Contains(t, report, "run-hashtag-scrape")
	assert.Contains(t, report, "Last Error: target closed")
}

func TestHealthAndAlerts(t *testing.T) {
	now := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	m := NewMonitor(quietLogger(), filepath.Join(t.TempDir(), "metrics.json"))
	m.now = func() time.Time { return now }

	alerts := NewAlertManager(m, quietLogger())
	assert.Contains(t, alerts.CheckAlerts(), "ALERT: Scraper hasn't run in over 24 hours")

	m.RecordRun("run-page-scrape", "p", &types.RunResult{Extracted: 2, Saved: 2}, time.Second, nil)
	assert.Equal(t, "healthy", m.GetHealthStatus()["status"])
	assert.Empty(t, alerts.CheckAlerts())

	m.RecordRun("run-page-scrape", "p", nil, time.Second, errors.New("boom"))
	status := m.GetHealthStatus()
	assert.Equal(t, "warning", status["status"])
	assert.Equal(t, "High error rate detected", status["warning"])

	require.Len(t, alerts.CheckAlerts(), 1)
}
