package fixer

import "strings"

// Block is the extent of one candidate declaration, with inclusive line
// indexes. Terminated is false when the braces never balanced within the
// scanned lines. Fenced reports whether the block was wrapped.
type Block struct {
	Start      int
	End        int
	Terminated bool
	Fenced     bool
}

// Len returns the number of lines in the block.
func (b Block) Len() int {
	return b.End - b.Start + 1
}

// Extractor finds where the block opened by a declaration line closes.
type Extractor struct {
	// MaxScan limits how many lines are scanned. Zero means no limit.
	MaxScan int

	// Boundary, when set, ends the scan before a line it accepts. The start
	// line itself is never tested.
	Boundary func(line string) bool
}

// Extract scans forward from start, counting braces, and stops at the first
// line where at least one '{' was seen and the balance is back to zero. When
// no such line exists the block ends at the last scanned line and is
// reported unterminated.
func (e Extractor) Extract(lines []string, start int) Block {
	var (
		balance  int
		seenOpen bool
	)

	block := Block{Start: start, End: start}

	for j := start; j < len(lines); j++ {
		if e.MaxScan > 0 && j-start >= e.MaxScan {
			break
		}

		line := lines[j]
		if j > start && e.Boundary != nil && e.Boundary(line) {
			break
		}

		if n := strings.Count(line, "{"); n > 0 {
			balance += n
			seenOpen = true
		}

		balance -= strings.Count(line, "}")
		block.End = j

		if seenOpen && balance == 0 {
			block.Terminated = true

			return block
		}
	}

	return block
}
