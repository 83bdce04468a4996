package profiler

import (
	"log"
	"runtime"
	"time"
)

// Stats is one reporting interval's worth of frame and memory statistics.
type Stats struct {
	FPS         float64
	WorstFrame  time.Duration
	HeapMB      float64
	AllocRateMB float64
	GCCount     uint32
	LastPauseUs uint64
	MaxPauseUs  uint64
	SysMB       float64
}

// Profiler tracks frame rate, frame-time spikes and memory statistics. It reports once per interval,
// to the log unless another reporter is configured.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	lastFrame      time.Time
	worstFrame     time.Duration
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	now     func() time.Time
	report  func(Stats)
	readMem bool
}

// ProfilerOption is a functional option applied to a Profiler during construction.
type ProfilerOption func(*Profiler)

// WithInterval sets how often statistics are reported. Non-positive values keep the one second default.
//
// Parameters:
//   - d: the reporting interval
//
// Returns:
//   - ProfilerOption: option function to apply
func WithInterval(d time.Duration) ProfilerOption {
	return func(p *Profiler) {
		if d > 0 {
			p.updateInterval = d
		}
	}
}

// WithReporter replaces the default log output.
//
// Parameters:
//   - fn: called with each interval's Stats
//
// Returns:
//   - ProfilerOption: option function to apply
func WithReporter(fn func(Stats)) ProfilerOption {
	return func(p *Profiler) {
		if fn != nil {
			p.report = fn
		}
	}
}

// WithClock replaces time.Now, mainly for tests.
//
// Parameters:
//   - now: the clock to read
//
// Returns:
//   - ProfilerOption: option function to apply
func WithClock(now func() time.Time) ProfilerOption {
	return func(p *Profiler) {
		if now != nil {
			p.now = now
		}
	}
}

// WithMemStats toggles runtime.ReadMemStats on each report. It stops the world briefly, so tests and very
// high frame rates may want it off. Enabled by default.
//
// Parameters:
//   - enabled: whether to collect memory statistics
//
// Returns:
//   - ProfilerOption: option function to apply
func WithMemStats(enabled bool) ProfilerOption {
	return func(p *Profiler) {
		p.readMem = enabled
	}
}

// NewProfiler creates a new Profiler. The update interval defaults to 1 second.
//
// Parameters:
//   - options: variadic list of ProfilerOption functions
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerOption) *Profiler {
	p := &Profiler{
		updateInterval: time.Second,
		now:            time.Now,
		report:         logStats,
		readMem:        true,
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.now()
	p.lastFrame = p.lastTime
	return p
}

// Tick should be called once per frame. It reports when the update interval has elapsed.
//
// Returns:
//   - bool: true if stats were reported this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.frameCount++
	currentTime := p.now()
	if frame := currentTime.Sub(p.lastFrame); frame > p.worstFrame {
		p.worstFrame = frame
	}
	p.lastFrame = currentTime

	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	stats := Stats{
		FPS:        float64(p.frameCount) / elapsed.Seconds(),
		WorstFrame: p.worstFrame,
	}
	if p.readMem {
		p.collectMem(&stats, elapsed)
	}
	p.report(stats)

	p.frameCount = 0
	p.worstFrame = 0
	p.lastTime = currentTime
	return true
}

func (p *Profiler) collectMem(stats *Stats, elapsed time.Duration) {
	runtime.ReadMemStats(&p.memStats)
	stats.HeapMB = float64(p.memStats.Alloc) / 1024 / 1024
	stats.SysMB = float64(p.memStats.Sys) / 1024 / 1024
	stats.AllocRateMB = float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds()

	// PauseNs is a circular buffer of the last 256 GC pauses.
	gcCount := p.memStats.NumGC
	stats.GCCount = gcCount
	if gcCount > 0 {
		stats.LastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000
		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			if pause := p.memStats.PauseNs[i%256] / 1000; pause > stats.MaxPauseUs {
				stats.MaxPauseUs = pause
			}
		}
	}
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
}

func logStats(s Stats) {
	log.Printf("[Profiler] FPS: %.2f | Worst frame: %.2f ms | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (last: %d µs, max: %d µs) | Sys: %.2f MB",
		s.FPS, float64(s.WorstFrame)/float64(time.Millisecond), s.HeapMB, s.AllocRateMB, s.GCCount, s.LastPauseUs, s.MaxPauseUs, s.SysMB)
}
