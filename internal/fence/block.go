package fence

// Block is a fenced code block found in a Markdown document. Line numbers
// are 1-based and point at the opening fence and the last line of the block.
type Block struct {
	Lang      string
	Meta      Meta
	Code      []byte
	StartLine int
	EndLine   int
}

type Blocks []*Block

// Lang returns the blocks whose language is lang.
func (b Blocks) Lang(lang string) Blocks {
	var res Blocks

	for _, block := range b {
		if block.Lang == lang {
			res = append(res, block)
		}
	}

	return res
}
