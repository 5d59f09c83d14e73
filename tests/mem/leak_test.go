//go:build test

package mem

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"sync"
	"testing"

	charmlog "github.com/charmbracelet/log"

	"github.com/bastiangx/logclust/internal/pipeline"
	"github.com/bastiangx/logclust/pkg/config"
)

func init() {
	charmlog.SetLevel(charmlog.ErrorLevel)
}

var logTemplates = []string{
	"Interface eth0 link down",
	"Interface eth1 link down",
	"Interface eth0 link up",
	"connection from 10.0.0.%d refused",
	"connection from 10.0.0.%d accepted",
	"user session %d expired",
	"disk usage on /dev/sda%d at 91 percent",
	"systemd started unit worker-%d.service",
}

// writeCorpus renders count lines (cycling through logTemplates, with a
// varying numeric suffix where the template has one) into a temp file and
// returns its path.
func writeCorpus(t testing.TB, dir string, count int) string {
	t.Helper()
	path := filepath.Join(dir, fmt.Sprintf("corpus-%d.log", count))
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create corpus: %v", err)
	}
	defer f.Close()

	for i := 0; i < count; i++ {
		tmpl := logTemplates[i%len(logTemplates)]
		line := tmpl
		if containsVerb(tmpl) {
			line = fmt.Sprintf(tmpl, i%50)
		}
		if _, err := f.WriteString(line + "\n"); err != nil {
			t.Fatalf("write corpus line: %v", err)
		}
	}
	return path
}

func containsVerb(s string) bool {
	for i := 0; i+1 < len(s); i++ {
		if s[i] == '%' && s[i+1] == 'd' {
			return true
		}
	}
	return false
}

func silentEngineLogger() *charmlog.Logger {
	return charmlog.NewWithOptions(io.Discard, charmlog.Options{})
}

// runOneEngine runs one independent clustering pass over path. It returns an
// error rather than failing t directly, since it also runs from worker
// goroutines in runConcurrentMemoryTest where calling t.Fatalf is unsafe.
func runOneEngine(path string) error {
	cfg := config.DefaultConfig()
	cfg.Mining.Support = 5
	cfg.Mining.WSize = 4096
	cfg.Mining.CSize = 4096
	cfg.Join.WWeight = 0.5

	e, err := pipeline.New(cfg, silentEngineLogger())
	if err != nil {
		return fmt.Errorf("pipeline.New: %w", err)
	}
	if _, err := e.Run([]string{path}); err != nil {
		return fmt.Errorf("Run: %w", err)
	}
	return nil
}

// TestMemoryLeakBasic runs repeated independent clustering passes over the
// same corpus and checks live heap and goroutine counts hold steady instead
// of climbing with iteration count, the way a long-lived batch job would be
// driven run after run.
func TestMemoryLeakBasic(t *testing.T) {
	iterations := []int{10, 25, 50}

	for _, n := range iterations {
		t.Run(fmt.Sprintf("iterations_%d", n), func(t *testing.T) {
			runBasicMemoryTest(t, n)
		})
	}
}

// TestMemoryLeakConcurrent drives several Engines over independent corpora in
// parallel goroutines; each Engine is a self-contained context object (no
// shared mutable state), so this should hold bounded memory the same way the
// sequential test does.
func TestMemoryLeakConcurrent(t *testing.T) {
	configs := []struct {
		workers             int
		iterationsPerWorker int
	}{
		{workers: 1, iterationsPerWorker: 20},
		{workers: 2, iterationsPerWorker: 10},
		{workers: 4, iterationsPerWorker: 5},
	}

	for _, cfg := range configs {
		t.Run(fmt.Sprintf("workers_%d_iter_%d", cfg.workers, cfg.iterationsPerWorker), func(t *testing.T) {
			runConcurrentMemoryTest(t, cfg.workers, cfg.iterationsPerWorker)
		})
	}
}

// TestMemoryStabilityLongRun exercises many cycles of run-and-discard Engines
// and records a heap profile, mirroring the shape of a soak test against a
// process expected to run unattended for a long batch job.
func TestMemoryStabilityLongRun(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping long-running memory stability test in short mode")
	}
	runLongRunMemoryTest(t, 30, 200)
}

func runBasicMemoryTest(t *testing.T, iterations int) {
	dir := t.TempDir()
	path := writeCorpus(t, dir, 500)

	var baseline runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&baseline)
	baselineGoroutines := runtime.NumGoroutine()

	for i := 0; i < iterations; i++ {
		if err := runOneEngine(path); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}

	var final runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&final)
	finalGoroutines := runtime.NumGoroutine()

	memDelta := int64(final.Alloc) - int64(baseline.Alloc)
	goroutineDelta := finalGoroutines - baselineGoroutines
	memPerRun := float64(memDelta) / float64(iterations)

	t.Logf("iterations=%d mem_delta=%d bytes mem_per_run=%.2f goroutine_delta=%d",
		iterations, memDelta, memPerRun, goroutineDelta)

	if memPerRun > 200_000 {
		t.Errorf("excessive retained memory per run: %.2f bytes", memPerRun)
	}
	if goroutineDelta > 2 {
		t.Errorf("goroutine leak detected: %d goroutines leaked", goroutineDelta)
	}
}

func runConcurrentMemoryTest(t *testing.T, workers, iterationsPerWorker int) {
	dir := t.TempDir()
	profPath := filepath.Join(dir, "concurrent_memory.prof")
	memFile, err := os.Create(profPath)
	if err != nil {
		t.Fatalf("profile file creation failed: %v", err)
	}
	defer memFile.Close()

	paths := make([]string, workers)
	for w := 0; w < workers; w++ {
		paths[w] = writeCorpus(t, dir, 300+w*7)
	}

	var baseline runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&baseline)
	baselineGoroutines := runtime.NumGoroutine()

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			for iter := 0; iter < iterationsPerWorker; iter++ {
				if err := runOneEngine(path); err != nil {
					t.Errorf("worker run: %v", err)
					return
				}
			}
		}(paths[w])
	}
	wg.Wait()

	var final runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&final)
	finalGoroutines := runtime.NumGoroutine()

	memDelta := int64(final.Alloc) - int64(baseline.Alloc)
	goroutineDelta := finalGoroutines - baselineGoroutines
	totalRuns := workers * iterationsPerWorker
	memPerRun := float64(memDelta) / float64(totalRuns)

	t.Logf("workers=%d iter_per_worker=%d total_runs=%d mem_delta=%d bytes mem_per_run=%.2f goroutine_delta=%d",
		workers, iterationsPerWorker, totalRuns, memDelta, memPerRun, goroutineDelta)

	if err := pprof.WriteHeapProfile(memFile); err != nil {
		t.Errorf("heap profile write failed: %v", err)
	}

	if memPerRun > 200_000 {
		t.Errorf("excessive retained memory per run: %.2f bytes", memPerRun)
	}
	if goroutineDelta > 3 {
		t.Errorf("goroutine leak detected: %d goroutines leaked", goroutineDelta)
	}
}

func runLongRunMemoryTest(t *testing.T, cycles, linesPerCycle int) {
	dir := t.TempDir()
	profPath := filepath.Join(dir, "longrun_stability.prof")
	memFile, err := os.Create(profPath)
	if err != nil {
		t.Fatalf("profile file creation failed: %v", err)
	}
	defer memFile.Close()

	var baseline runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&baseline)
	baselineGoroutines := runtime.NumGoroutine()

	maxMemDelta := int64(0)
	for cycle := 0; cycle < cycles; cycle++ {
		path := writeCorpus(t, dir, linesPerCycle)
		if err := runOneEngine(path); err != nil {
			t.Fatalf("cycle %d: %v", cycle, err)
		}
		os.Remove(path)

		if cycle%10 == 0 {
			var m runtime.MemStats
			runtime.GC()
			runtime.ReadMemStats(&m)

			memDelta := int64(m.Alloc) - int64(baseline.Alloc)
			goroutineDelta := runtime.NumGoroutine() - baselineGoroutines
			if memDelta > maxMemDelta {
				maxMemDelta = memDelta
			}
			t.Logf("cycle=%d mem_delta=%d bytes goroutine_delta=%d", cycle, memDelta, goroutineDelta)
		}
	}

	var final runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&final)
	finalGoroutineDelta := runtime.NumGoroutine() - baselineGoroutines
	finalMemDelta := int64(final.Alloc) - int64(baseline.Alloc)

	t.Logf("final_summary: cycles=%d mem_delta=%d bytes goroutine_delta=%d max_mem_delta=%d",
		cycles, finalMemDelta, finalGoroutineDelta, maxMemDelta)

	if err := pprof.WriteHeapProfile(memFile); err != nil {
		t.Errorf("heap profile write failed: %v", err)
	}

	if finalGoroutineDelta > 2 {
		t.Errorf("goroutine leak detected: %d goroutines leaked", finalGoroutineDelta)
	}
	if maxMemDelta > 10*1024*1024 {
		t.Errorf("excessive peak memory usage: %d bytes", maxMemDelta)
	}
}
