package pipeline

import (
	"fmt"
	"sync"
	"time"
)

// PipelineStats tracks performance metrics for the stages of the frame loop
type PipelineStats struct {
	mu             sync.Mutex
	now            func() time.Time
	captureCount   int64
	processCount   int64
	detectionCount int64
	lastReportTime time.Time
	lastFPSUpdate  time.Time
	fpsCount       int64
	lastFPS        float64

	// Timing measurements
	readTimeTotal    time.Duration
	processTimeTotal time.Duration
}

// StatsSnapshot is one reporting window of PipelineStats.
type StatsSnapshot struct {
	CaptureFPS     float64
	ProcessFPS     float64
	AvgRead        time.Duration
	AvgProcess     time.Duration
	DetectionRatio float64 // share of processed frames with a selected object
	Window         time.Duration
}

// String formats the snapshot for the PERF log line.
func (s StatsSnapshot) String() string {
	return fmt.Sprintf("capture %.1f fps (read %v) | process %.1f fps (%v) | detections %.0f%%",
		s.CaptureFPS, s.AvgRead.Round(time.Microsecond),
		s.ProcessFPS, s.AvgProcess.Round(time.Microsecond),
		s.DetectionRatio*100)
}

// NewPipelineStats creates a new pipeline statistics tracker
func NewPipelineStats() *PipelineStats {
	return newPipelineStats(time.Now)
}

func newPipelineStats(now func() time.Time) *PipelineStats {
	t := now()
	return &PipelineStats{
		now:            now,
		lastReportTime: t,
		lastFPSUpdate:  t,
	}
}

// UpdateCapture records one successful frame read
func (ps *PipelineStats) UpdateCapture(duration time.Duration) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.captureCount++
	ps.readTimeTotal += duration
}

// UpdateProcess records one processed frame and whether an object was selected
func (ps *PipelineStats) UpdateProcess(duration time.Duration, detected bool) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.processCount++
	ps.processTimeTotal += duration
	if detected {
		ps.detectionCount++
	}
}

// UpdateFPS counts a displayed frame and returns the frame rate over the
// last full second
func (ps *PipelineStats) UpdateFPS() float64 {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	now := ps.now()
	ps.fpsCount++

	if elapsed := now.Sub(ps.lastFPSUpdate); elapsed >= time.Second {
		ps.lastFPS = float64(ps.fpsCount) / elapsed.Seconds()
		ps.fpsCount = 0
		ps.lastFPSUpdate = now
	}
	return ps.lastFPS
}

// GetStats returns current statistics and resets counters
func (ps *PipelineStats) GetStats() StatsSnapshot {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	now := ps.now()
	window := now.Sub(ps.lastReportTime)
	seconds := window.Seconds()
	if seconds <= 0 {
		seconds = 1.0 // Prevent division by zero
	}

	s := StatsSnapshot{
		CaptureFPS: float64(ps.captureCount) / seconds,
		ProcessFPS: float64(ps.processCount) / seconds,
		Window:     window,
	}
	if ps.captureCount > 0 {
		s.AvgRead = ps.readTimeTotal / time.Duration(ps.captureCount)
	}
	if ps.processCount > 0 {
		s.AvgProcess = ps.processTimeTotal / time.Duration(ps.processCount)
		s.DetectionRatio = float64(ps.detectionCount) / float64(ps.processCount)
	}

	// Reset counters but keep the FPS window
	ps.captureCount = 0
	ps.processCount = 0
	ps.detectionCount = 0
	ps.readTimeTotal = 0
	ps.processTimeTotal = 0
	ps.lastReportTime = now

	return s
}
