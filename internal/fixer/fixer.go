// Package fixer wraps unfenced declarations in Markdown/MDX text with fenced
// code blocks.
package fixer

import (
	"fmt"
	"strings"

	"github.com/ezerfernandes/mdxfix/internal/region"
)

// DefaultLang is the info string given to every injected fence.
const DefaultLang = "javascript"

// Policy tells the fixer what to do with a block whose braces never balance.
type Policy string

const (
	// PolicyWrap fences the unterminated extent like any other block.
	PolicyWrap Policy = "wrap"
	// PolicySkip leaves the declaration line alone and moves on.
	PolicySkip Policy = "skip"
)

// ParsePolicy converts a policy name. The empty string means PolicyWrap.
func ParsePolicy(name string) (Policy, error) {
	switch Policy(name) {
	case "", PolicyWrap:
		return PolicyWrap, nil
	case PolicySkip:
		return PolicySkip, nil
	default:
		return "", fmt.Errorf("unknown unterminated policy %q (want %s or %s)", name, PolicyWrap, PolicySkip)
	}
}

// Options configures a Fixer.
type Options struct {
	Lang         string
	Matcher      Matcher
	Region       *region.Marker
	MaxScan      int
	Unterminated Policy
}

// Fixer rewrites documents. It keeps no state between calls.
type Fixer struct {
	lang       string
	policy     Policy
	classifier Classifier
	extractor  Extractor
}

// New returns a Fixer for opts, filling in defaults for empty fields.
func New(opts Options) *Fixer {
	lang := opts.Lang
	if len(lang) == 0 {
		lang = DefaultLang
	}

	policy := opts.Unterminated
	if len(policy) == 0 {
		policy = PolicyWrap
	}

	classifier := Classifier{Matcher: opts.Matcher, Region: opts.Region}

	return &Fixer{
		lang:       lang,
		policy:     policy,
		classifier: classifier,
		extractor:  Extractor{MaxScan: opts.MaxScan, Boundary: classifier.Boundary},
	}
}

// Lang returns the info string used for injected fences.
func (f *Fixer) Lang() string {
	return f.lang
}

// Result is the outcome of one pass over a document.
type Result struct {
	Lines    []string
	Blocks   []Block
	Modified bool

	// OpenRegion is set when the document ended inside an ignore region.
	OpenRegion bool
}

// Bytes joins the output lines back into a document.
func (r *Result) Bytes() []byte {
	return []byte(strings.Join(r.Lines, "\n"))
}

// Injected returns the number of fences added.
func (r *Result) Injected() int {
	var n int

	for _, b := range r.Blocks {
		if b.Fenced {
			n++
		}
	}

	return n
}

// Unterminated returns the blocks whose braces never balanced.
func (r *Result) Unterminated() []Block {
	var blocks []Block

	for _, b := range r.Blocks {
		if !b.Terminated {
			blocks = append(blocks, b)
		}
	}

	return blocks
}

// Fix rewrites source, a document with '\n' line endings.
func (f *Fixer) Fix(source []byte) *Result {
	return f.FixLines(strings.Split(string(source), "\n"))
}

// FixLines makes a single pass over lines. The input slice is not modified.
func (f *Fixer) FixLines(lines []string) *Result {
	var state State

	res := &Result{Lines: make([]string, 0, len(lines))}

	for i := 0; i < len(lines); i++ {
		var kind Kind

		state, kind = f.classifier.Classify(state, lines[i])
		if kind != KindDeclaration {
			res.Lines = append(res.Lines, lines[i])

			continue
		}

		block := f.extractor.Extract(lines, i)
		if !block.Terminated && f.policy == PolicySkip {
			res.Blocks = append(res.Blocks, block)
			res.Lines = append(res.Lines, lines[i])

			continue
		}

		block.Fenced = true
		res.Blocks = append(res.Blocks, block)
		res.Lines = f.inject(res.Lines, lines[block.Start:block.End+1])
		res.Modified = true

		i = block.End
	}

	res.OpenRegion = state.Ignored

	return res
}

func (f *Fixer) inject(out []string, body []string) []string {
	out = append(out, FenceMarker+f.lang)
	out = append(out, body...)

	return append(out, FenceMarker)
}
