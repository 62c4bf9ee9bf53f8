package fixer

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
)

var declarationNodes = map[string]bool{
	"function_declaration":           true,
	"generator_function_declaration": true,
	"lexical_declaration":            true,
	"variable_declaration":           true,
}

var closers = map[byte]byte{'(': ')', '[': ']', '{': '}'}

// SyntaxMatcher narrows a prefix match by parsing the line with the
// JavaScript grammar. The line is completed with the brackets and quotes it
// leaves open, so the first line of a multi-line block parses as a whole
// declaration. The completed source must parse without errors and start
// with a declaration; prose such as "let me explain" is rejected.
//
// A SyntaxMatcher is not safe for concurrent use.
type SyntaxMatcher struct {
	prefix Matcher
	parser *sitter.Parser
}

// NewSyntaxMatcher wraps prefix. A nil prefix means DefaultKeywords.
func NewSyntaxMatcher(prefix Matcher) *SyntaxMatcher {
	if prefix == nil {
		prefix = PrefixMatcher(DefaultKeywords)
	}

	parser := sitter.NewParser()
	parser.SetLanguage(javascript.GetLanguage())

	return &SyntaxMatcher{prefix: prefix, parser: parser}
}

func (m *SyntaxMatcher) Match(line string) bool {
	if !m.prefix.Match(line) {
		return false
	}

	tree, err := m.parser.ParseCtx(context.Background(), nil, []byte(complete(line)))
	if err != nil {
		return false
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() || root.NamedChildCount() == 0 {
		return false
	}

	return declarationNodes[root.NamedChild(0).Type()]
}

// complete appends to line whatever closes its open string and brackets.
// Text after a line comment is ignored.
func complete(line string) string {
	var (
		stack []byte
		quote byte
	)

scan:
	for i := 0; i < len(line); i++ {
		c := line[i]

		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}

			continue
		}

		switch c {
		case '"', '\'', '`':
			quote = c
		case '(', '[', '{':
			stack = append(stack, closers[c])
		case ')', ']', '}':
			if n := len(stack); n > 0 && stack[n-1] == c {
				stack = stack[:n-1]
			}
		case '/':
			if i+1 < len(line) && line[i+1] == '/' {
				break scan
			}
		}
	}

	if quote == 0 && len(stack) == 0 {
		return line
	}

	var b strings.Builder

	b.WriteString(line)

	if quote != 0 {
		b.WriteByte(quote)
	}

	b.WriteByte('\n')

	for i := len(stack) - 1; i >= 0; i-- {
		b.WriteByte(stack[i])
	}

	return b.String()
}
