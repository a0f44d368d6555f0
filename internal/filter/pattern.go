package filter

import (
	"fmt"
	"regexp"
	"strings"
)

// pattern is one compiled glob.
//
// Globs follow find -path semantics: * and ? also match /, [...] is a character
// class ([!...] negates) and \ escapes the next character. A glob without any /
// is tried against the base name as well, so "*.tmp" and "notes.txt" match at
// every depth.
type pattern struct {
	source   string
	re       *regexp.Regexp
	basename bool
}

func compilePattern(glob string) (pattern, error) {
	glob = strings.TrimPrefix(glob, "./")

	expr, err := globToRegexp(glob)
	if err != nil {
		return pattern{}, err
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return pattern{}, fmt.Errorf("compiling pattern %q: %w", glob, err)
	}

	return pattern{source: glob, re: re, basename: !strings.Contains(glob, "/")}, nil
}

func (p pattern) match(rel string) bool {
	if p.re.MatchString(rel) {
		return true
	}

	if !p.basename {
		return false
	}

	if idx := strings.LastIndexByte(rel, '/'); idx >= 0 {
		return p.re.MatchString(rel[idx+1:])
	}

	return false
}

// globToRegexp converts a glob to an anchored regular expression.
func globToRegexp(glob string) (string, error) {
	var buf strings.Builder

	buf.WriteByte('^')

	for pos := 0; pos < len(glob); pos++ {
		switch glob[pos] {
		case '*':
			buf.WriteString(".*")
		case '?':
			buf.WriteByte('.')
		case '\\':
			if pos+1 == len(glob) {
				return "", fmt.Errorf("trailing backslash in pattern %q", glob)
			}

			pos++
			buf.WriteString(regexp.QuoteMeta(glob[pos : pos+1]))
		case '[':
			end := classEnd(glob, pos)
			if end < 0 {
				return "", fmt.Errorf("unclosed character class in pattern %q", glob)
			}

			class := glob[pos+1 : end]
			if strings.HasPrefix(class, "!") {
				class = "^" + class[1:]
			}

			buf.WriteString("[" + class + "]")

			pos = end
		default:
			buf.WriteString(regexp.QuoteMeta(glob[pos : pos+1]))
		}
	}

	buf.WriteByte('$')

	return buf.String(), nil
}

// classEnd returns the index of the ] closing the class opened at pos, or -1.
// A ] right after the opening bracket (or after !) is a literal member.
func classEnd(glob string, pos int) int {
	idx := pos + 1

	if idx < len(glob) && glob[idx] == '!' {
		idx++
	}

	if idx < len(glob) && glob[idx] == ']' {
		idx++
	}

	if end := strings.IndexByte(glob[idx:], ']'); end >= 0 {
		return idx + end
	}

	return -1
}
