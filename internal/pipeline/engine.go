package pipeline

import (
	"bufio"
	"fmt"
	"math"
	"os"

	charmlog "github.com/charmbracelet/log"

	"github.com/bastiangx/logclust/internal/hashing"
	"github.com/bastiangx/logclust/internal/linepipe"
	"github.com/bastiangx/logclust/pkg/config"
)

// Engine is the explicit context object threading every pipeline stage
// together (§9 design note: "no hidden globals"). One Engine runs one
// end-to-end clustering job; nothing it holds is reused across jobs.
type Engine struct {
	cfg       *config.Config
	line      *linepipe.Pipeline
	seeds     hashing.Seeds
	transform *Transform
	logger    *charmlog.Logger

	vocab         *Vocabulary
	wordSketch    *Sketch
	clusterSketch *Sketch
	depMatrix     *DepMatrix
	builder       *CandidateBuilder
	aggregator    *Aggregator
	joiner        *Joiner
	emitter       *Emitter
	outlier       *OutlierPass
}

// New wires an Engine from a validated Config.
func New(cfg *config.Config, logger *charmlog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	line, err := linepipe.New(linepipe.Options{
		ByteOffset: cfg.Input.ByteOffset,
		Filter:     cfg.Input.LFilter,
		Template:   cfg.Input.Template,
		Separator:  cfg.Input.Separator,
	})
	if err != nil {
		return nil, err
	}

	var transform *Transform
	if cfg.Mining.WFilter != "" {
		transform, err = NewTransform(cfg.Mining.WFilter, cfg.Mining.WSearch, cfg.Mining.WReplace)
		if err != nil {
			return nil, err
		}
	}

	seeds := hashing.DeriveSeeds(cfg.Mining.InitSeed)
	e := &Engine{
		cfg:       cfg,
		line:      line,
		seeds:     seeds,
		transform: transform,
		logger:    logger,
		vocab:     NewVocabulary(cfg.Mining.WTableSize, seeds.WordTable),
	}
	if cfg.Mining.WSize > 0 {
		e.wordSketch = NewSketch(cfg.Mining.WSize, seeds.WordSketch)
	}
	return e, nil
}

// eachLine opens path, runs every line through the line pipeline, and
// invokes fn with the tokenized words of every line that survives
// filtering. Input-open-failed is logged and the file skipped (§7).
func (e *Engine) eachLine(path string, fn func(words []string)) {
	f, err := os.Open(path)
	if err != nil {
		e.logger.Errorf("skipping unreadable input %q: %v", path, err)
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), linepipe.MaxLineLen+1024)
	for scanner.Scan() {
		words, ok := e.line.Process(scanner.Text())
		if !ok {
			continue
		}
		fn(words)
	}
}

// eachRawLine is eachLine's counterpart that also surfaces the original raw
// line and a skip flag, for the outlier pass, which writes raw lines out.
func (e *Engine) eachRawLine(path string, fn func(raw string, words []string, ok bool)) {
	f, err := os.Open(path)
	if err != nil {
		e.logger.Errorf("skipping unreadable input %q: %v", path, err)
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), linepipe.MaxLineLen+1024)
	for scanner.Scan() {
		raw := scanner.Text()
		words, ok := e.line.Process(raw)
		fn(raw, words, ok)
	}
}

// Result holds everything an Engine run produced.
type Result struct {
	Family  *Family
	Joined  []*JoinedCandidate
	Emitter *Emitter
}

// Run executes the full pipeline over paths, in the fixed order of §2:
// Word Sketch -> Vocabulary -> Cluster Sketch -> Candidate Builder (+ Word
// Dep Matrix) -> {Prefix Trie Aggregator | Cluster Joiner} -> Emitter ->
// Outlier Pass.
func (e *Engine) Run(paths []string) (*Result, error) {
	support := e.cfg.Mining.Support

	if e.wordSketch != nil {
		lines := 0
		for _, path := range paths {
			e.eachLine(path, func(words []string) {
				ObserveWordSketch(e.wordSketch, e.transform, words)
				lines++
			})
		}
		if e.cfg.Mining.RSupport > 0 {
			support = int(math.Ceil(float64(lines) * e.cfg.Mining.RSupport / 100))
		}
		e.logger.Debugf("word sketch pass: %d lines observed, support=%d", lines, support)
	}

	for _, path := range paths {
		e.eachLine(path, func(words []string) {
			e.vocab.CountLine(e.gateSketch(words, support))
		})
	}
	f := e.vocab.Finalize(e.cfg.Mining.Support, e.cfg.Mining.RSupport)
	e.logger.Infof("vocabulary finalized: %d frequent words, support=%d", f, e.vocab.Support())

	if e.cfg.Mining.CSize > 0 {
		e.clusterSketch = NewClusterSketch(e.cfg.Mining.CSize, e.seeds.ClusterSketch)
		for _, path := range paths {
			e.eachLine(path, func(words []string) {
				ObserveClusterSketch(e.clusterSketch, e.vocab, e.transform, words)
			})
		}
	}

	if e.cfg.Join.WWeight > 0 {
		e.depMatrix = NewDepMatrix(e.vocab.F())
	}
	e.builder = NewCandidateBuilder(e.vocab, e.transform, e.clusterSketch, e.depMatrix)
	for _, path := range paths {
		e.eachLine(path, e.builder.ProcessLine)
	}

	family := e.builder.Family()
	survivors := family.Evict(e.vocab.Support())
	e.logger.Infof("candidate pass: %d surviving clusters", survivors)

	if e.cfg.Mining.AggrSup {
		e.aggregator = NewAggregator(e.vocab, e.seeds.PrefixSketch)
		e.aggregator.Aggregate(family)
	}

	var joined []*JoinedCandidate
	if e.cfg.Join.WWeight > 0 {
		e.joiner = NewJoiner(e.cfg.Join.WWeight, e.cfg.Join.WeightF, e.depMatrix, e.vocab, hashing.NewRandomSource(e.cfg.Mining.InitSeed))
		family.All(func(c *Candidate) { e.joiner.Join(c) })
		joined = e.joiner.Joined()
	}

	e.emitter = NewEmitter(e.vocab, e.cfg.Output.OutputMode, e.cfg.Output.DetailToken)

	if e.cfg.Output.Outliers != "" {
		if err := e.writeOutliers(paths); err != nil {
			return nil, fmt.Errorf("outlier file: %w", err)
		}
	}

	return &Result{Family: family, Joined: joined, Emitter: e.emitter}, nil
}

// Probe tokenizes a single raw line through the same line pipeline used
// during the run and reports the surviving candidate it maps to, if any.
// It is the lookup the probe CLI drives interactively after a run
// completes; unlike the outlier pass it works against a single line, so it
// tokenizes inline rather than scanning a file.
func (e *Engine) Probe(rawLine string) (candidate *Candidate, rendered string, matched bool) {
	words, ok := e.line.Process(rawLine)
	if !ok {
		return nil, "", false
	}
	ids := ConstantIDs(e.vocab, e.transform, words)
	if len(ids) == 0 {
		return nil, "", false
	}
	c, found := e.builder.Lookup(ids)
	if !found || c.Count < e.vocab.Support() {
		return nil, "", false
	}
	if e.emitter == nil {
		e.emitter = NewEmitter(e.vocab, e.cfg.Output.OutputMode, e.cfg.Output.DetailToken)
	}
	return c, e.emitter.RenderCandidate(c), true
}

// gateSketch returns words (and, where transform is active, their
// independently-gated synthetic forms) that pass the word sketch filter,
// or words unchanged when neither a sketch nor a transform is configured.
func (e *Engine) gateSketch(words []string, support int) []string {
	if e.wordSketch == nil && e.transform == nil {
		return words
	}
	out := make([]string, 0, len(words))
	for _, w := range words {
		if e.wordSketch == nil || e.wordSketch.PossiblyFrequent([]byte(w), support) {
			out = append(out, w)
		}
		if e.transform == nil {
			continue
		}
		if synthetic, ok := e.transform.Apply(w); ok {
			if e.wordSketch == nil || e.wordSketch.PossiblyFrequent([]byte(synthetic), support) {
				out = append(out, synthetic)
			}
		}
	}
	return out
}

// writeOutliers re-opens every input path, re-derives each line's candidate
// key, and appends every outlier's original line to the configured outlier
// file (§7: outlier-file-open-failed aborts at pass entry; §4.10 re-reads
// rather than retaining every line in memory across the whole run).
func (e *Engine) writeOutliers(paths []string) error {
	out, err := os.Create(e.cfg.Output.Outliers)
	if err != nil {
		return err
	}
	defer out.Close()

	e.outlier = NewOutlierPass(e.vocab, e.transform, e.builder)
	w := bufio.NewWriter(out)
	for _, path := range paths {
		var writeErr error
		e.eachRawLine(path, func(raw string, words []string, ok bool) {
			if writeErr != nil || !ok || !e.outlier.IsOutlier(words) {
				return
			}
			if _, err := w.WriteString(raw + "\n"); err != nil {
				writeErr = err
			}
		})
		if writeErr != nil {
			return writeErr
		}
	}
	return w.Flush()
}
