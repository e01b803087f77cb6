package monitoring

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"facebook-post-scraper/pkg/types"

	"github.com/sirupsen/logrus"
)

type Metrics struct {
	Runs           int                    `json:"runs"`
	FailedRuns     int                    `json:"failed_runs"`
	PostsExtracted int                    `json:"posts_extracted"`
	PostsSaved     int                    `json:"posts_saved"`
	LastRun        time.Time              `json:"last_run"`
	AverageRunTime time.Duration          `json:"average_run_time"`
	ErrorRate      float64                `json:"error_rate"`
	EntryMetrics   map[string]EntryMetric `json:"entry_metrics"`
}

// EntryMetric aggregates the runs of one entry point.
type EntryMetric struct {
	Runs           int           `json:"runs"`
	Failures       int           `json:"failures"`
	Extracted      int           `json:"extracted"`
	Saved          int           `json:"saved"`
	LastTarget     string        `json:"last_target"`
	LastRun        time.Time     `json:"last_run"`
	LastError      string        `json:"last_error,omitempty"`
	AverageRunTime time.Duration `json:"average_run_time"`
}

// Monitor persists run metrics to a JSON file shared by all entry points.
type Monitor struct {
	metrics     *Metrics
	logger      *logrus.Logger
	metricsFile string

	now func() time.Time
}

func NewMonitor(logger *logrus.Logger, metricsFile string) *Monitor {
	monitor := &Monitor{
		metrics: &Metrics{
			EntryMetrics: make(map[string]EntryMetric),
		},
		logger:      logger,
		metricsFile: metricsFile,
		now:         time.Now,
	}

	monitor.loadMetrics()
	return monitor
}

// RecordRun adds one finished run. result may be nil when the run failed
// before producing anything.
func (m *Monitor) RecordRun(entry, target string, result *types.RunResult, duration time.Duration, runErr error) {
	now := m.now()
	var extracted, saved int
	if result != nil {
		extracted, saved = result.Extracted, result.Saved
	}

	m.metrics.Runs++
	m.metrics.PostsExtracted += extracted
	m.metrics.PostsSaved += saved
	m.metrics.LastRun = now
	m.metrics.AverageRunTime = runningMean(m.metrics.AverageRunTime, duration, m.metrics.Runs)
	if runErr != nil {
		m.metrics.FailedRuns++
	}
	m.metrics.ErrorRate = float64(m.metrics.FailedRuns) / float64(m.metrics.Runs) * 100

	em := m.metrics.EntryMetrics[entry]
	em.Runs++
	em.Extracted += extracted
	em.Saved += saved
	em.LastTarget = target
	em.LastRun = now
	em.LastError = ""
	em.AverageRunTime = runningMean(em.AverageRunTime, duration, em.Runs)
	if runErr != nil {
		em.Failures++
		em.LastError = runErr.Error()
	}
	m.metrics.EntryMetrics[entry] = em

	m.saveMetrics()

	m.logger.Infof("Recorded %s run for %s: %d extracted, %d saved, %v duration",
		entry, target, extracted, saved, duration)
}

func runningMean(avg, sample time.Duration, n int) time.Duration {
	if n <= 1 {
		return sample
	}
	return avg + (sample-avg)/time.Duration(n)
}

func (m *Monitor) GetMetrics() *Metrics {
	return m.metrics
}

func (m *Monitor) GetHealthStatus() map[string]interface{} {
	status := map[string]interface{}{
		"status":          "healthy",
		"last_run":        m.metrics.LastRun.Format(time.RFC3339),
		"total_runs":      m.metrics.Runs,
		"error_rate":      fmt.Sprintf("%.2f%%", m.metrics.ErrorRate),
		"average_runtime": m.metrics.AverageRunTime.String(),
	}

	if m.now().Sub(m.metrics.LastRun) > 24*time.Hour {
		status["status"] = "warning"
		status["warning"] = "No scraping runs in the last 24 hours"
	}

	if m.metrics.ErrorRate > 10 {
		status["status"] = "warning"
		status["warning"] = "High error rate detected"
	}

	return status
}

func (m *Monitor) GenerateReport() string {
	var b strings.Builder
	fmt.Fprintf(&b, `
Facebook Post Scraper Report
============================
Generated: %s

Overall Statistics:
- Total Runs: %d
- Failed Runs: %d
- Posts Extracted: %d
- Posts Saved: %d
- Error Rate: %.2f%%
- Average Run Time: %s
- Last Run: %s

Entry Points:
`,
		m.now().Format("2006-01-02 15:04:05"),
		m.metrics.Runs,
		m.metrics.FailedRuns,
		m.metrics.PostsExtracted,
		m.metrics.PostsSaved,
		m.metrics.ErrorRate,
		m.metrics.AverageRunTime,
		m.metrics.LastRun.Format("2006-01-02 15:04:05"),
	)

	entries := make([]string, 0, len(m.metrics.EntryMetrics))
	for entry := range m.metrics.EntryMetrics {
		entries = append(entries, entry)
	}
	sort.Strings(entries)

	for _, entry := range entries {
		em := m.metrics.EntryMetrics[entry]
		fmt.Fprintf(&b, `
- %s:
  Runs: %d (%d failed)
  Extracted: %d
  Saved: %d
  Last Target: %s
  Last Run: %s
  Average Runtime: %s
`,
			entry,
			em.Runs, em.Failures,
			em.Extracted,
			em.Saved,
			em.LastTarget,
			em.LastRun.Format("2006-01-02 15:04:05"),
			em.AverageRunTime,
		)
		if em.LastError != "" {
			fmt.Fprintf(&b, "  Last Error: %s\n", em.LastError)
		}
	}

	return b.String()
}

func (m *Monitor) loadMetrics() {
	data, err := os.ReadFile(m.metricsFile)
	if os.IsNotExist(err) {
		m.logger.Debug("No existing metrics file found, starting fresh")
		return
	}
	if err != nil {
		m.logger.Warnf("Failed to read metrics file: %v", err)
		return
	}

	if err := json.Unmarshal(data, m.metrics); err != nil {
		m.logger.Warnf("Failed to parse metrics file: %v", err)
		return
	}
	if m.metrics.EntryMetrics == nil {
		m.metrics.EntryMetrics = make(map[string]EntryMetric)
	}

	m.logger.Debug("Loaded existing metrics from file")
}

func (m *Monitor) saveMetrics() {
	data, err := json.MarshalIndent(m.metrics, "", "  ")
	if err != nil {
		m.logger.Errorf("Failed to marshal metrics: %v", err)
		return
	}

	if dir := filepath.Dir(m.metricsFile); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			m.logger.Errorf("Failed to create metrics directory: %v", err)
			return
		}
	}

	if err := os.WriteFile(m.metricsFile, data, 0644); err != nil {
		m.logger.Errorf("Failed to save metrics: %v", err)
	}
}

// AlertManager turns metrics into alert messages.
type AlertManager struct {
	monitor *Monitor
	logger  *logrus.Logger
}

func NewAlertManager(monitor *Monitor, logger *logrus.Logger) *AlertManager {
	return &AlertManager{
		monitor: monitor,
		logger:  logger,
	}
}

func (am *AlertManager) CheckAlerts() []string {
	var alerts []string
	metrics := am.monitor.GetMetrics()

	if am.monitor.now().Sub(metrics.LastRun) > 25*time.Hour {
		alerts = append(alerts, "ALERT: Scraper hasn't run in over 24 hours")
	}

	if metrics.ErrorRate > 15 {
		alerts = append(alerts, fmt.Sprintf("ALERT: High error rate: %.2f%%", metrics.ErrorRate))
	}

	if metrics.Runs > 0 && metrics.PostsSaved == 0 {
		alerts = append(alerts, "ALERT: No posts have been saved")
	}

	return alerts
}

func (am *AlertManager) SendAlerts(alerts []string) {
	for _, alert := range alerts {
		am.logger.Warn(alert)
	}
}
