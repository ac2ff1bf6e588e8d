package nodepath

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Parse reads s in the syntax of t.
func Parse(t Type, s string) (*Path, error) {
	switch t {
	case JSONPointer:
		return ParsePointer(s)
	case URIReference:
		frag := strings.TrimPrefix(s, "#")
		dec, err := url.PathUnescape(frag)
		if err != nil {
			return nil, fmt.Errorf("nodepath: %w", err)
		}
		p, err := ParsePointer(dec)
		if err != nil {
			return nil, err
		}
		return p.WithType(URIReference), nil
	case JSONPath:
		return ParseJSONPath(s)
	case Legacy:
		return parseLegacy(s)
	}
	return nil, fmt.Errorf("nodepath: unknown path type %d", t)
}

// ParsePointer parses an RFC 6901 JSON Pointer. All tokens are returned as
// names, since a pointer cannot tell an index from a numeric property.
func ParsePointer(s string) (*Path, error) {
	p := New(JSONPointer)
	if s == "" {
		return p, nil
	}
	if s[0] != '/' {
		return nil, fmt.Errorf("nodepath: pointer %q must start with '/'", s)
	}
	for _, tok := range strings.Split(s[1:], "/") {
		if err := checkEscapes(tok); err != nil {
			return nil, err
		}
		p = p.Append(UnescapePointer(tok))
	}
	return p, nil
}

func checkEscapes(tok string) error {
	for i := 0; i < len(tok); i++ {
		if tok[i] != '~' {
			continue
		}
		if i+1 >= len(tok) || (tok[i+1] != '0' && tok[i+1] != '1') {
			return fmt.Errorf("nodepath: invalid escape in pointer token %q", tok)
		}
	}
	return nil
}

// ParseJSONPath parses the subset of JSONPath rendered by this package:
// "$", ".name", "['quoted']" and "[index]".
func ParseJSONPath(s string) (*Path, error) {
	if !strings.HasPrefix(s, "$") {
		return nil, fmt.Errorf("nodepath: path %q must start with '$'", s)
	}
	p := New(JSONPath)
	i := 1
	for i < len(s) {
		switch s[i] {
		case '.':
			j := i + 1
			for j < len(s) && s[j] != '.' && s[j] != '[' {
				j++
			}
			if j == i+1 {
				return nil, fmt.Errorf("nodepath: empty name at %d in %q", i, s)
			}
			p = p.Append(s[i+1 : j])
			i = j
		case '[':
			if i+1 < len(s) && s[i+1] == '\'' {
				name, next, err := readQuoted(s, i+2)
				if err != nil {
					return nil, err
				}
				p = p.Append(name)
				i = next
				continue
			}
			end := strings.IndexByte(s[i:], ']')
			if end < 0 {
				return nil, fmt.Errorf("nodepath: unterminated index in %q", s)
			}
			n, err := strconv.Atoi(s[i+1 : i+end])
			if err != nil {
				return nil, fmt.Errorf("nodepath: bad index in %q: %w", s, err)
			}
			p = p.AppendIndex(n)
			i += end + 1
		default:
			return nil, fmt.Errorf("nodepath: unexpected %q at %d in %q", s[i], i, s)
		}
	}
	return p, nil
}

// readQuoted reads a quoted name starting after the opening quote and
// returns the index just past the closing "']".
func readQuoted(s string, i int) (string, int, error) {
	var b strings.Builder
	for i < len(s) {
		c := s[i]
		switch {
		case c == '\\' && i+1 < len(s):
			b.WriteByte(s[i+1])
			i += 2
		case c == '\'':
			if i+1 >= len(s) || s[i+1] != ']' {
				return "", 0, fmt.Errorf("nodepath: expected ']' at %d in %q", i+1, s)
			}
			return b.String(), i + 2, nil
		default:
			b.WriteByte(c)
			i++
		}
	}
	return "", 0, fmt.Errorf("nodepath: unterminated quote in %q", s)
}

func parseLegacy(s string) (*Path, error) {
	p, err := ParseJSONPath(s)
	if err != nil {
		return nil, err
	}
	return p.WithType(Legacy), nil
}
