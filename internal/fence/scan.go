// Package fence reads fenced code blocks out of Markdown with goldmark.
package fence

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var reInfo = regexp.MustCompile(`\s*(\w+)\s*(.*)\s*`)

// ErrVerify is returned by [Verify] when goldmark does not see the fences
// the fixer claims to have injected.
var ErrVerify = errors.New("fence verification failed")

func walk(source []byte, fn func(fcb *ast.FencedCodeBlock) error) error {
	root := goldmark.DefaultParser().Parse(text.NewReader(source))

	return ast.Walk(root, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		node = transformCommentedCodeBlock(node, entering, source)

		fcb := asFencedCodeBlock(node, entering)
		if fcb == nil {
			return ast.WalkContinue, nil
		}

		if err := fn(fcb); err != nil {
			return ast.WalkStop, err
		}

		return ast.WalkContinue, nil
	})
}

// Scan parses a Markdown document and returns its fenced code blocks in
// document order. It fails when an info string carries malformed metadata.
func Scan(source []byte) (Blocks, error) {
	var blocks Blocks

	err := walk(source, func(fcb *ast.FencedCodeBlock) error {
		block, err := extractBlock(fcb, source)
		if err != nil {
			return err
		}

		blocks = append(blocks, block)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return blocks, nil
}

// Count returns how many fenced code blocks in source have language lang.
// Metadata is not parsed, so malformed info strings are not an error here.
func Count(source []byte, lang string) int {
	var n int

	_ = walk(source, func(fcb *ast.FencedCodeBlock) error {
		if blockLang(fcb, source) == lang {
			n++
		}

		return nil
	})

	return n
}

// Verify checks that after contains exactly injected more lang blocks than
// before, as seen by a CommonMark parser.
func Verify(before, after []byte, lang string, injected int) error {
	added := Count(after, lang) - Count(before, lang)
	if added != injected {
		return fmt.Errorf("%w: injected %d %s fence(s), parser sees %d", ErrVerify, injected, lang, added)
	}

	return nil
}

func asFencedCodeBlock(node ast.Node, entering bool) *ast.FencedCodeBlock {
	if entering || node.Kind() != ast.KindFencedCodeBlock {
		return nil
	}

	if fcb, ok := node.(*ast.FencedCodeBlock); ok {
		return fcb
	}

	return nil
}

func extractBlock(fcb *ast.FencedCodeBlock, source []byte) (*Block, error) {
	lang, meta, err := extractInfo(fcb, source)
	if err != nil {
		return nil, err
	}

	block := &Block{Lang: lang, Meta: meta, Code: extractCode(fcb, source)}
	block.StartLine, block.EndLine = extractLines(fcb, source)

	return block, nil
}

func extractLines(fcb *ast.FencedCodeBlock, source []byte) (int, int) {
	var startLine, endLine int

	lines := fcb.Lines()

	if fcb.Info != nil {
		startLine = lineAt(source, fcb.Info.Segment.Start)
	} else if lines.Len() > 0 {
		startLine = lineAt(source, lines.At(0).Start) - 1
	}

	if lines.Len() > 0 {
		endLine = lineAt(source, lines.At(lines.Len()-1).Stop)
	} else if startLine > 0 {
		endLine = startLine + 1
	}

	return startLine, endLine
}

func lineAt(source []byte, offset int) int {
	if offset > len(source) {
		offset = len(source)
	}

	return bytes.Count(source[:offset], []byte{'\n'}) + 1
}

func extractCode(fcb *ast.FencedCodeBlock, source []byte) []byte {
	var buff bytes.Buffer

	lines := fcb.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)

		buff.Write(seg.Value(source))
	}

	return buff.Bytes()
}

func blockLang(fcb *ast.FencedCodeBlock, source []byte) string {
	if fcb.Info == nil {
		return ""
	}

	all := reInfo.FindSubmatch(fcb.Info.Text(source))
	if len(all) < 2 { //nolint:gomnd
		return ""
	}

	return string(all[1])
}

func extractInfo(fcb *ast.FencedCodeBlock, source []byte) (string, Meta, error) {
	if fcb.Info == nil {
		return "", nil, nil
	}

	return parseInfo(fcb.Info.Text(source))
}

func parseInfo(text []byte) (string, Meta, error) {
	all := reInfo.FindSubmatch(text)
	if all == nil {
		return "", nil, nil
	}

	lang := string(all[1])

	if len(all) <= 2 { //nolint:gomnd
		return lang, nil, nil
	}

	meta, err := parseMeta(all[2])

	return lang, meta, err
}

var (
	reCommentedCodeBlock = regexp.MustCompile(`^\s*(<!--)?\s*<script\s*type=["']text/markdown["']\s*>\s*$`)
	reFences             = regexp.MustCompile("^\\s*```")
)

// transformCommentedCodeBlock turns a <script type="text/markdown"> HTML
// block wrapping a fence back into a fenced code block.
func transformCommentedCodeBlock(node ast.Node, entering bool, source []byte) ast.Node { //nolint:ireturn
	if entering || node.Kind() != ast.KindHTMLBlock {
		return node
	}

	html, ok := node.(*ast.HTMLBlock)
	if !ok {
		return node
	}

	const minLines = 2

	lines := html.Lines()
	if lines.Len() < minLines {
		return node
	}

	first := lines.At(0)
	if !reCommentedCodeBlock.Match(first.Value(source)) {
		return node
	}

	seg := lines.At(1)

	loc := reFences.FindIndex(seg.Value(source))
	if loc == nil {
		return node
	}

	last := lines.At(lines.Len() - 1)
	if !reFences.Match(last.Value(source)) {
		return node
	}

	info := ast.NewTextSegment(text.NewSegment(seg.Start+loc[1], seg.Stop-1))
	fcb := ast.NewFencedCodeBlock(info)

	segs := text.NewSegments()

	for i := 2; i < lines.Len()-1; i++ {
		segs.Append(lines.At(i))
	}

	fcb.SetLines(segs)

	return fcb
}
