package fixer

import (
	"strings"

	"github.com/ezerfernandes/mdxfix/internal/region"
)

// FenceMarker opens and closes a fenced code block.
const FenceMarker = "```"

// DefaultKeywords are the line prefixes treated as the start of a declaration.
var DefaultKeywords = []string{"function ", "const ", "let ", "var ", "async function"}

// Kind is the classification of a single line.
type Kind int

const (
	KindPlain Kind = iota
	KindFence
	KindDeclaration
	KindRegion
)

func (k Kind) String() string {
	switch k {
	case KindFence:
		return "fence"
	case KindDeclaration:
		return "declaration"
	case KindRegion:
		return "region"
	default:
		return "plain"
	}
}

// State is threaded through a document one line at a time.
type State struct {
	InFence bool
	Ignored bool
}

// Matcher decides whether a line outside any fence starts a declaration.
type Matcher interface {
	Match(line string) bool
}

// PrefixMatcher matches lines starting with any of its prefixes. Matching is
// case-sensitive and leading whitespace is significant.
type PrefixMatcher []string

func (p PrefixMatcher) Match(line string) bool {
	for _, prefix := range p {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}

	return false
}

// Classifier maps (state, line) to (state, kind). The zero value uses
// DefaultKeywords and knows no ignore region.
type Classifier struct {
	Matcher Matcher
	Region  *region.Marker
}

// Classify returns the state after line together with its kind. Fence lines
// flip InFence; region markers outside fences flip Ignored.
func (c Classifier) Classify(state State, line string) (State, Kind) {
	if strings.HasPrefix(line, FenceMarker) {
		state.InFence = !state.InFence

		return state, KindFence
	}

	if state.InFence {
		return state, KindPlain
	}

	if c.Region != nil {
		if (!state.Ignored && c.Region.Begin(line)) || (state.Ignored && c.Region.End(line)) {
			state.Ignored = !state.Ignored

			return state, KindRegion
		}
	}

	if !state.Ignored && c.matcher().Match(line) {
		return state, KindDeclaration
	}

	return state, KindPlain
}

// Boundary reports whether line carries structure of its own (a fence or a
// region marker) and therefore cannot be swallowed by a block.
func (c Classifier) Boundary(line string) bool {
	if strings.HasPrefix(line, FenceMarker) {
		return true
	}

	return c.Region != nil && c.Region.Boundary(line)
}

func (c Classifier) matcher() Matcher {
	if c.Matcher == nil {
		return PrefixMatcher(DefaultKeywords)
	}

	return c.Matcher
}
