package system

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// Stats is a snapshot of the host and of this process.
type Stats struct {
	Elapsed       time.Duration
	Frames        int
	CPUs          int
	CPUPercent    float64 // process CPU usage since start
	RSS           uint64  // process resident memory, bytes
	HostUsed      float64 // host memory used, percent
	HostAvailable uint64  // bytes
	Goroutines    int
}

// FPS is the average render rate.
func (s Stats) FPS() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Frames) / s.Elapsed.Seconds()
}

func (s Stats) String() string {
	return fmt.Sprintf("%d frames in %s (%.1f fps) | cpu %.0f%% of %d cores | rss %.1f MiB | host mem %.0f%% used, %.1f GiB free | %d goroutines",
		s.Frames, s.Elapsed.Round(time.Millisecond), s.FPS(), s.CPUPercent, s.CPUs,
		float64(s.RSS)/(1<<20), s.HostUsed, float64(s.HostAvailable)/(1<<30), s.Goroutines)
}

// Report gathers Stats for a render of frames that started at start.
// Figures the host cannot provide are left zero.
func Report(start time.Time, frames int) (Stats, error) {
	s := Stats{
		Elapsed:    time.Since(start),
		Frames:     frames,
		Goroutines: runtime.NumGoroutine(),
	}
	if n, err := cpu.Counts(true); err == nil {
		s.CPUs = n
	}

	vm, err := mem.VirtualMemory()
	if err != nil {
		return s, fmt.Errorf("host memory: %w", err)
	}
	s.HostUsed = vm.UsedPercent
	s.HostAvailable = vm.Available

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return s, fmt.Errorf("process: %w", err)
	}
	if mi, err := p.MemoryInfo(); err == nil {
		s.RSS = mi.RSS
	}
	if pct, err := p.CPUPercent(); err == nil {
		s.CPUPercent = pct
	}
	return s, nil
}
