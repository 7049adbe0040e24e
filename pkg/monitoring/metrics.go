/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: metrics.go
Description: Run metrics collection for marker inference. Records the miner's growth rounds
and the assembler's progress as a Reporter, samples Go runtime memory while a run is active
and raises alerts when the heap or goroutine count crosses its threshold.
*/

package monitoring

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/kleascm/akaylee-repeats/pkg/core"
	"github.com/sirupsen/logrus"
)

// ResourceSample is one snapshot of Go runtime memory
type ResourceSample struct {
	Timestamp  time.Time `json:"timestamp"`
	HeapAlloc  uint64    `json:"heap_alloc"`
	HeapInuse  uint64    `json:"heap_inuse"`
	Sys        uint64    `json:"sys"`
	GoRoutines int       `json:"go_routines"`
	NumGC      uint32    `json:"num_gc"`
}

// PerformanceAlert represents a resource threshold crossing
type PerformanceAlert struct {
	Timestamp time.Time `json:"timestamp"`
	Type      string    `json:"type"` // heap_high, goroutines_high
	Message   string    `json:"message"`
	Value     float64   `json:"value"`
	Threshold float64   `json:"threshold"`
}

// AlertThresholds defines thresholds for performance alerts
type AlertThresholds struct {
	HeapHigh       uint64 `json:"heap_high"`        // Heap usage threshold (bytes)
	GoRoutinesHigh int    `json:"go_routines_high"` // Goroutine count threshold
}

// RunMetrics is the collected view of one inference run
type RunMetrics struct {
	StartTime         time.Time           `json:"start_time"`
	Uptime            time.Duration       `json:"uptime"`
	Rounds            []core.RoundStats   `json:"rounds"`
	WordsPerSecond    float64             `json:"words_per_second"` // Growth candidates checked per second
	Assembly          *core.AssemblyStats `json:"assembly,omitempty"`
	PatternsPerSecond float64             `json:"patterns_per_second"`
	PeakHeap          uint64              `json:"peak_heap"`
	PeakGoRoutines    int                 `json:"peak_go_routines"`
	ResourceHistory   []ResourceSample    `json:"resource_history"`
	Alerts            []PerformanceAlert  `json:"alerts"`
	Metadata          map[string]string   `json:"metadata,omitempty"`
}

// MetricsCollector records run progress and samples runtime memory
// It implements core.Reporter.
type MetricsCollector struct {
	metrics *RunMetrics

	// Configuration
	collectionInterval time.Duration
	historySize        int
	alertThresholds    AlertThresholds

	// State
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex

	logger logrus.FieldLogger
}

// NewMetricsCollector creates a collector sampling every interval
// A non-positive interval defaults to one second.
func NewMetricsCollector(interval time.Duration, logger logrus.FieldLogger) *MetricsCollector {
	if interval <= 0 {
		interval = time.Second
	}
	if logger == nil {
		logger = core.DiscardLogger()
	}
	return &MetricsCollector{
		metrics: &RunMetrics{
			StartTime: time.Now(),
			Metadata:  make(map[string]string),
		},
		collectionInterval: interval,
		historySize:        1000,
		alertThresholds: AlertThresholds{
			HeapHigh:       4 << 30, // 4GB heap
			GoRoutinesHigh: 10000,
		},
		logger: logger,
	}
}

// Start begins sampling runtime memory until Stop or ctx is done
func (mc *MetricsCollector) Start(ctx context.Context) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if mc.running {
		return fmt.Errorf("metrics collector already running")
	}

	ctx, mc.cancel = context.WithCancel(ctx)
	mc.running = true

	mc.wg.Add(1)
	go mc.collectionLoop(ctx)

	mc.logger.Debug("Metrics collector started")
	return nil
}

// Stop ends sampling and takes a final sample
func (mc *MetricsCollector) Stop() error {
	mc.mu.Lock()
	if !mc.running {
		mc.mu.Unlock()
		return fmt.Errorf("metrics collector not running")
	}
	mc.running = false
	mc.cancel()
	mc.mu.Unlock()

	mc.wg.Wait()
	mc.collect()

	mc.logger.Debug("Metrics collector stopped")
	return nil
}

func (mc *MetricsCollector) collectionLoop(ctx context.Context) {
	defer mc.wg.Done()

	ticker := time.NewTicker(mc.collectionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			mc.collect()
		}
	}
}

// collect takes one runtime sample
func (mc *MetricsCollector) collect() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	sample := ResourceSample{
		Timestamp:  time.Now(),
		HeapAlloc:  m.HeapAlloc,
		HeapInuse:  m.HeapInuse,
		Sys:        m.Sys,
		GoRoutines: runtime.NumGoroutine(),
		NumGC:      m.NumGC,
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.metrics.ResourceHistory = append(mc.metrics.ResourceHistory, sample)
	if len(mc.metrics.ResourceHistory) > mc.historySize {
		mc.metrics.ResourceHistory = mc.metrics.ResourceHistory[1:]
	}
	if sample.HeapAlloc > mc.metrics.PeakHeap {
		mc.metrics.PeakHeap = sample.HeapAlloc
	}
	if sample.GoRoutines > mc.metrics.PeakGoRoutines {
		mc.metrics.PeakGoRoutines = sample.GoRoutines
	}
	mc.checkPerformanceAlerts(sample)
}

// checkPerformanceAlerts records threshold crossings; callers hold mu
func (mc *MetricsCollector) checkPerformanceAlerts(sample ResourceSample) {
	if sample.HeapAlloc > mc.alertThresholds.HeapHigh {
		mc.addAlert(PerformanceAlert{
			Timestamp: sample.Timestamp,
			Type:      "heap_high",
			Message:   fmt.Sprintf("High heap usage: %d bytes", sample.HeapAlloc),
			Value:     float64(sample.HeapAlloc),
			Threshold: float64(mc.alertThresholds.HeapHigh),
		})
	}
	if sample.GoRoutines > mc.alertThresholds.GoRoutinesHigh {
		mc.addAlert(PerformanceAlert{
			Timestamp: sample.Timestamp,
			Type:      "goroutines_high",
			Message:   fmt.Sprintf("High goroutine count: %d", sample.GoRoutines),
			Value:     float64(sample.GoRoutines),
			Threshold: float64(mc.alertThresholds.GoRoutinesHigh),
		})
	}
}

func (mc *MetricsCollector) addAlert(alert PerformanceAlert) {
	mc.metrics.Alerts = append(mc.metrics.Alerts, alert)
	mc.logger.WithFields(logrus.Fields{
		"type":      alert.Type,
		"value":     alert.Value,
		"threshold": alert.Threshold,
	}).Warn("Performance alert")
}

// OnRound records a finished growth round
func (mc *MetricsCollector) OnRound(stats core.RoundStats) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.metrics.Rounds = append(mc.metrics.Rounds, stats)
	checked := 0
	for _, r := range mc.metrics.Rounds {
		checked += r.Candidates
	}
	if secs := stats.Elapsed.Seconds(); secs > 0 {
		mc.metrics.WordsPerSecond = float64(checked) / secs
	}
}

// OnAssembly records the latest assembler progress
func (mc *MetricsCollector) OnAssembly(stats core.AssemblyStats) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.metrics.Assembly = &stats
	if secs := stats.Elapsed.Seconds(); secs > 0 {
		mc.metrics.PatternsPerSecond = float64(stats.Evaluated) / secs
	}
}

// SetMetadata attaches a key to the collected metrics
func (mc *MetricsCollector) SetMetadata(key, value string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.metrics.Metadata[key] = value
}

// SetAlertThresholds sets performance alert thresholds
func (mc *MetricsCollector) SetAlertThresholds(thresholds AlertThresholds) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.alertThresholds = thresholds
}

// Snapshot returns a copy of the metrics collected so far
func (mc *MetricsCollector) Snapshot() *RunMetrics {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	m := *mc.metrics
	m.Uptime = time.Since(m.StartTime)
	m.Rounds = append([]core.RoundStats(nil), m.Rounds...)
	m.ResourceHistory = append([]ResourceSample(nil), m.ResourceHistory...)
	m.Alerts = append([]PerformanceAlert(nil), m.Alerts...)
	if m.Assembly != nil {
		a := *m.Assembly
		m.Assembly = &a
	}
	m.Metadata = make(map[string]string, len(mc.metrics.Metadata))
	for k, v := range mc.metrics.Metadata {
		m.Metadata[k] = v
	}
	return &m
}
