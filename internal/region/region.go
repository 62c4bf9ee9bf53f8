// Package region recognizes named #region/#endregion marker lines, such as
// the HTML comments used to keep parts of a Markdown page away from mdxfix.
package region

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const (
	reSpec       = `[!"#$%%&'()*+,\-./:;<=>?@[\\\]^_{|}~]`
	reLineBegin  = `^[[:blank:]]*`
	reLineEnd    = `*[[:blank:]]*\r?$`
	regionFormat = reLineBegin + reSpec +
		`+[[:blank:]]*#region[[:blank:]]+%s[[:blank:]]*` +
		reSpec + reLineEnd
	endFormat = reLineBegin + reSpec +
		`+[[:blank:]]*#endregion([[:blank:]]+%s)?[[:blank:]]*` +
		reSpec + reLineEnd
)

// Marker matches the begin and end lines of one named region.
type Marker struct {
	begin *regexp.Regexp
	end   *regexp.Regexp
}

func marker(format string, name string) (*regexp.Regexp, error) {
	return regexp.Compile(fmt.Sprintf(format, regexp.QuoteMeta(name)))
}

// New compiles the marker patterns for the region called name.
func New(name string) (*Marker, error) {
	name = strings.TrimSpace(name)
	if len(name) == 0 || strings.ContainsAny(name, " \t") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	begin, err := marker(regionFormat, name)
	if err != nil {
		return nil, err
	}

	end, err := marker(endFormat, name)
	if err != nil {
		return nil, err
	}

	return &Marker{begin: begin, end: end}, nil
}

// Begin reports whether line opens the region.
func (m *Marker) Begin(line string) bool {
	return m.begin.MatchString(line)
}

// End reports whether line closes the region. Both the named form
// (#endregion NAME) and the bare form (#endregion) are accepted.
func (m *Marker) End(line string) bool {
	return m.end.MatchString(line)
}

// Boundary reports whether line is either marker.
func (m *Marker) Boundary(line string) bool {
	return m.Begin(line) || m.End(line)
}

var (
	// ErrMissingEndregion reports a #region marker with no matching
	// #endregion.
	ErrMissingEndregion = errors.New("missing #endregion")

	// ErrInvalidName is returned by [New] for empty names or names with blanks.
	ErrInvalidName = errors.New("invalid region name")
)
