// Package linepipe implements the engine's line preprocessing contract: the
// external collaborator responsible for turning a raw input line into the
// list of words the mining pipeline sees. Regexes are compiled once with
// regexp.Compile (errors are reported, not panicked on), and the template
// is filled in with Regexp.ExpandString from the filter's match.
package linepipe

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// MaxLineLen is the longest raw line accepted (§6).
	MaxLineLen = 10240
	// MaxWords is the maximum number of words a line is split into; extra
	// tokens are truncated rather than rejected (§8 boundary behavior).
	MaxWords = 512
	// MaxWordLen is the longest word kept; longer words are truncated.
	MaxWordLen = 10248

	// DefaultSeparator is the default word-separator regex.
	DefaultSeparator = `[ ]+`
)

// Pipeline preprocesses and tokenizes raw lines according to a fixed set of
// options resolved once at startup.
type Pipeline struct {
	byteOffset int
	filter     *regexp.Regexp
	template   string
	separator  *regexp.Regexp
}

// Options configures a Pipeline. Filter and Template are optional; Separator
// defaults to DefaultSeparator when empty.
type Options struct {
	ByteOffset int
	Filter     string
	Template   string
	Separator  string
}

// New compiles the configured regexes once. Bad regexes are a
// configuration-invalid error reported before any pass runs.
func New(opts Options) (*Pipeline, error) {
	p := &Pipeline{byteOffset: opts.ByteOffset, template: opts.Template}

	if opts.Filter != "" {
		re, err := regexp.Compile(opts.Filter)
		if err != nil {
			return nil, fmt.Errorf("invalid line filter regex %q: %w", opts.Filter, err)
		}
		p.filter = re
	}

	sep := opts.Separator
	if sep == "" {
		sep = DefaultSeparator
	}
	re, err := regexp.Compile(sep)
	if err != nil {
		return nil, fmt.Errorf("invalid separator regex %q: %w", sep, err)
	}
	p.separator = re

	return p, nil
}

// Process runs one raw line through the full contract: strip the trailing
// newline, drop the first byteOffset bytes, apply the filter (skipping the
// line on no match), substitute the template from the filter's capture
// groups, then split into words. ok is false when the line should be
// skipped entirely (filtered out, or empty after offset).
func (p *Pipeline) Process(raw string) (words []string, ok bool) {
	line := strings.TrimRight(raw, "\r\n")
	if len(line) > MaxLineLen {
		line = line[:MaxLineLen]
	}

	if p.byteOffset > 0 {
		if p.byteOffset >= len(line) {
			return nil, false
		}
		line = line[p.byteOffset:]
	}

	if p.filter != nil {
		match := p.filter.FindStringSubmatchIndex(line)
		if match == nil {
			return nil, false
		}
		if p.template != "" {
			line = p.expandTemplate(line, match)
		}
	}

	return p.splitWords(line), true
}

// expandTemplate substitutes numbered ($1, $2, ...) and named ($name)
// capture-group references in the template with the filter match's
// submatches, mirroring regexp.Expand's $-syntax.
func (p *Pipeline) expandTemplate(line string, match []int) string {
	dst := p.filter.ExpandString(nil, p.template, line, match)
	return string(dst)
}

// splitWords splits the working line by the separator regex into at most
// MaxWords tokens of at most MaxWordLen bytes each.
func (p *Pipeline) splitWords(line string) []string {
	if line == "" {
		return nil
	}
	parts := p.separator.Split(line, -1)
	words := make([]string, 0, len(parts))
	for _, w := range parts {
		if w == "" {
			continue
		}
		if len(w) > MaxWordLen {
			w = w[:MaxWordLen]
		}
		words = append(words, w)
		if len(words) == MaxWords {
			break
		}
	}
	return words
}
