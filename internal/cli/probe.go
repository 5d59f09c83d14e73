// Package cli handles interactive command line input for DBG and testing.
package cli

import (
	"bufio"
	"os"
	"strings"
	"time"

	"github.com/bastiangx/logclust/internal/pipeline"
	"github.com/bastiangx/logclust/pkg/config"
	"github.com/charmbracelet/log"
)

// Probe runs an interactive REPL after a clustering pass completes,
// reporting which surviving cluster (if any) a typed line maps to. It
// reuses the same tokenizer and candidate lookup as the outlier pass, so a
// line it leaves unmatched is a line the run's outlier file would contain,
// except for lines the line filter drops: those are reported as unmatched
// here but are never written to the outlier file.
type Probe struct {
	engine       *pipeline.Engine
	result       *pipeline.Result
	logger       *log.Logger
	requestCount int
}

// NewProbe wires a Probe against a completed run.
func NewProbe(cfg *config.Config, engine *pipeline.Engine, result *pipeline.Result, logger *log.Logger) *Probe {
	return &Probe{engine: engine, result: result, logger: logger}
}

// Start begins the REPL loop. It continuously prompts for a line, reads it
// from stdin, and passes it to handleInput. The loop terminates when stdin
// is closed or an error occurs while reading.
func (p *Probe) Start() error {
	p.logger.Print("logclust probe [BETA]")
	reader := bufio.NewReader(os.Stdin)
	p.logger.Print("type a line and press Enter to see which cluster it matches (Ctrl+C to exit):")

	for {
		p.logger.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		line = strings.TrimRight(line, "\n")
		if line == "" {
			continue
		}
		p.handleInput(line)
	}
}

// handleInput looks up one typed line's cluster and prints the result.
func (p *Probe) handleInput(line string) {
	p.requestCount++

	start := time.Now()
	candidate, rendered, matched := p.engine.Probe(line)
	elapsed := time.Since(start)
	p.logger.Debugf("probe took [ %v ] for line %q", elapsed, line)

	if !matched {
		p.logger.Warnf("no surviving cluster matches: %q", line)
		return
	}

	p.logger.Printf("matched cluster (support %d): %s", candidate.Count, rendered)
}
