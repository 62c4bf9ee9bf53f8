package files

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// ErrAbsolutePattern is returned for patterns that are not relative to the
// walker root.
var ErrAbsolutePattern = errors.New("pattern must be relative")

const separator = '/'

// Pattern is a compiled glob. "**" matches across directories and every
// "**/" also matches no directory at all, so docs/**/*.md matches docs/a.md.
// Names with a segment starting with "." only match when a pattern segment
// starting with "." matches that segment.
type Pattern struct {
	raw     string
	base    string
	globs   []glob.Glob
	dotSegs []glob.Glob
}

// CompilePattern compiles raw. A leading "./" is ignored.
func CompilePattern(raw string) (*Pattern, error) {
	clean := raw
	for strings.HasPrefix(clean, "./") {
		clean = clean[2:]
	}

	if strings.HasPrefix(clean, "/") {
		return nil, fmt.Errorf("%w: %s", ErrAbsolutePattern, raw)
	}

	pat := &Pattern{raw: raw, base: staticBase(clean)}

	for _, v := range globstarVariants(clean) {
		g, err := glob.Compile(v, separator)
		if err != nil {
			return nil, fmt.Errorf("pattern %s: %w", raw, err)
		}

		pat.globs = append(pat.globs, g)
	}

	for _, seg := range strings.Split(clean, "/") {
		if !strings.HasPrefix(seg, ".") {
			continue
		}

		g, err := glob.Compile(seg, separator)
		if err != nil {
			return nil, fmt.Errorf("pattern %s: %w", raw, err)
		}

		pat.dotSegs = append(pat.dotSegs, g)
	}

	return pat, nil
}

// globstarVariants returns pattern with every subset of its "**/" removed.
func globstarVariants(pattern string) []string {
	parts := strings.Split(pattern, "**/")
	variants := []string{parts[0]}

	for _, part := range parts[1:] {
		next := make([]string, 0, 2*len(variants))

		for _, v := range variants {
			next = append(next, v+"**/"+part, v+part)
		}

		variants = next
	}

	return variants
}

// String returns the pattern as written.
func (p *Pattern) String() string {
	return p.raw
}

// Base returns the longest directory prefix without wildcards.
func (p *Pattern) Base() string {
	return p.base
}

// Match reports whether the slash separated name matches.
func (p *Pattern) Match(name string) bool {
	for _, seg := range strings.Split(name, "/") {
		if !p.visible(seg) {
			return false
		}
	}

	for _, g := range p.globs {
		if g.Match(name) {
			return true
		}
	}

	return false
}

// visible reports whether a single path segment may appear in a match.
func (p *Pattern) visible(seg string) bool {
	if !strings.HasPrefix(seg, ".") {
		return true
	}

	for _, g := range p.dotSegs {
		if g.Match(seg) {
			return true
		}
	}

	return false
}

// descend reports whether dir can contain matches.
func (p *Pattern) descend(dir string) bool {
	if dir == "." || p.base == "." || dir == p.base {
		return true
	}

	return strings.HasPrefix(p.base, dir+"/") || strings.HasPrefix(dir, p.base+"/")
}

func staticBase(pattern string) string {
	parts := strings.Split(pattern, "/")

	var static []string

	for _, part := range parts[:len(parts)-1] {
		if strings.ContainsAny(part, `*?[]{}\!`) {
			break
		}

		static = append(static, part)
	}

	if len(static) == 0 {
		return "."
	}

	return path.Join(static...)
}

// Resolve expands patterns against fsys. Results keep pattern order, are
// sorted lexically within a pattern and contain each file once. A pattern
// matching nothing contributes nothing.
func Resolve(fsys fs.FS, patterns []string) ([]string, error) {
	var (
		names []string
		seen  = make(map[string]struct{})
	)

	for _, raw := range patterns {
		pat, err := CompilePattern(raw)
		if err != nil {
			return nil, err
		}

		var matched []string

		err = fs.WalkDir(fsys, ".", func(name string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if d.IsDir() {
				if name != "." && !pat.visible(d.Name()) {
					return fs.SkipDir
				}

				if !pat.descend(name) {
					return fs.SkipDir
				}

				return nil
			}

			if pat.Match(name) {
				matched = append(matched, name)
			}

			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", raw, err)
		}

		sort.Strings(matched)

		for _, name := range matched {
			if _, dup := seen[name]; !dup {
				seen[name] = struct{}{}
				names = append(names, name)
			}
		}
	}

	return names, nil
}
