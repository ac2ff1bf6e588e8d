// Package iri resolves IRI references against base IRIs.
//
// Resolution follows the merge rules of RFC 3986 for hierarchical schemes
// (those whose remainder starts with "/", such as http, https and file).
// Schemes whose remainder is an opaque scheme-specific part (classpath:,
// urn:, mem:) are merged by plain concatenation after the last "/" of the
// base, without dot-segment removal.
package iri

import "strings"

// AbsoluteIRI is an IRI without a fragment. It is the identity of a schema
// resource.
type AbsoluteIRI string

// String returns the IRI text.
func (a AbsoluteIRI) String() string { return string(a) }

// Scheme returns the scheme without the trailing colon, or "".
func (a AbsoluteIRI) Scheme() string {
	s, _ := splitScheme(string(a))
	return s
}

// Resolve resolves ref against a and drops any fragment from the result.
func (a AbsoluteIRI) Resolve(ref string) AbsoluteIRI {
	out, _ := Split(Resolve(string(a), ref))
	return AbsoluteIRI(out)
}

// Split separates an IRI into its fragment-less part and its fragment. The
// returned fragment does not include the "#". Use HasFragment to tell an
// empty fragment from an absent one.
func Split(s string) (AbsoluteIRI, string) {
	if i := strings.IndexByte(s, '#'); i >= 0 {
		return AbsoluteIRI(s[:i]), s[i+1:]
	}
	return AbsoluteIRI(s), ""
}

// HasFragment reports whether s carries a "#".
func HasFragment(s string) bool { return strings.IndexByte(s, '#') >= 0 }

// HasScheme reports whether s begins with a scheme. Only a leading scheme
// token followed immediately by ":" counts, so a colon inside a later path
// segment ("dir/foo:bar") is not a scheme.
func HasScheme(s string) bool {
	scheme, _ := splitScheme(s)
	return scheme != ""
}

// IsHierarchical reports whether s has a scheme whose remainder starts with
// "/" (an authority or an absolute path).
func IsHierarchical(s string) bool {
	scheme, rest := splitScheme(s)
	return scheme != "" && strings.HasPrefix(rest, "/")
}

func splitScheme(s string) (string, string) {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == ':':
			if i == 0 {
				return "", s
			}
			return s[:i], s[i+1:]
		case isAlpha(c):
		case i > 0 && (isDigit(c) || c == '+' || c == '-' || c == '.'):
		default:
			return "", s
		}
	}
	return "", s
}

func isAlpha(c byte) bool { return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') }
func isDigit(c byte) bool { return '0' <= c && c <= '9' }

// parts is a decomposed IRI reference.
type parts struct {
	scheme       string
	hasAuthority bool
	authority    string
	path         string
	hasQuery     bool
	query        string
	hasFragment  bool
	fragment     string
}

func parse(s string) parts {
	var p parts
	p.scheme, s = splitScheme(s)
	if i := strings.IndexByte(s, '#'); i >= 0 {
		p.hasFragment = true
		p.fragment = s[i+1:]
		s = s[:i]
	}
	if i := strings.IndexByte(s, '?'); i >= 0 {
		p.hasQuery = true
		p.query = s[i+1:]
		s = s[:i]
	}
	if strings.HasPrefix(s, "//") {
		p.hasAuthority = true
		s = s[2:]
		if i := strings.IndexByte(s, '/'); i >= 0 {
			p.authority = s[:i]
			s = s[i:]
		} else {
			p.authority = s
			s = ""
		}
	}
	p.path = s
	return p
}

func (p parts) String() string {
	var b strings.Builder
	if p.scheme != "" {
		b.WriteString(p.scheme)
		b.WriteByte(':')
	}
	if p.hasAuthority {
		b.WriteString("//")
		b.WriteString(p.authority)
	}
	b.WriteString(p.path)
	if p.hasQuery {
		b.WriteByte('?')
		b.WriteString(p.query)
	}
	if p.hasFragment {
		b.WriteByte('#')
		b.WriteString(p.fragment)
	}
	return b.String()
}

// Resolve resolves reference against base. An empty base degrades to the
// reference itself; a reference carrying a scheme is returned verbatim.
// Query and fragment of the reference always replace those of the base.
func Resolve(base, reference string) string {
	if base == "" || HasScheme(reference) {
		return reference
	}
	b := parse(base)
	if reference == "" {
		b.hasFragment, b.fragment = false, ""
		return b.String()
	}
	r := parse(reference)
	out := parts{scheme: b.scheme, hasFragment: r.hasFragment, fragment: r.fragment}
	hierarchical := b.hasAuthority || strings.HasPrefix(b.path, "/") || b.scheme == ""

	switch {
	case r.hasAuthority:
		out.hasAuthority, out.authority = true, r.authority
		out.path = removeDotSegments(r.path)
		out.hasQuery, out.query = r.hasQuery, r.query
	case r.path == "":
		out.hasAuthority, out.authority = b.hasAuthority, b.authority
		out.path = b.path
		if r.hasQuery {
			out.hasQuery, out.query = true, r.query
		} else {
			out.hasQuery, out.query = b.hasQuery, b.query
		}
	case strings.HasPrefix(r.path, "/"):
		out.hasAuthority, out.authority = b.hasAuthority, b.authority
		if hierarchical {
			out.path = removeDotSegments(r.path)
		} else {
			out.path = r.path
		}
		out.hasQuery, out.query = r.hasQuery, r.query
	default:
		out.hasAuthority, out.authority = b.hasAuthority, b.authority
		out.hasQuery, out.query = r.hasQuery, r.query
		if hierarchical {
			out.path = removeDotSegments(merge(b, r.path))
		} else {
			out.path = mergeOpaque(b.path, r.path)
		}
	}
	return out.String()
}

func merge(b parts, ref string) string {
	if b.hasAuthority && b.path == "" {
		return "/" + ref
	}
	if i := strings.LastIndexByte(b.path, '/'); i >= 0 {
		return b.path[:i+1] + ref
	}
	return ref
}

// mergeOpaque concatenates onto an opaque scheme-specific part: everything
// after the last "/" of the base is replaced, or the whole part when it has
// no "/" ("classpath:resource" + "test.json" = "classpath:test.json").
func mergeOpaque(base, ref string) string {
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		return base[:i+1] + ref
	}
	return ref
}

// removeDotSegments implements RFC 3986 section 5.2.4.
func removeDotSegments(path string) string {
	if !strings.Contains(path, ".") {
		return path
	}
	in := path
	var out []string
	for in != "" {
		switch {
		case strings.HasPrefix(in, "../"):
			in = in[3:]
		case strings.HasPrefix(in, "./"):
			in = in[2:]
		case strings.HasPrefix(in, "/./"):
			in = in[2:]
		case in == "/.":
			in = "/"
		case strings.HasPrefix(in, "/../"):
			in = in[3:]
			out = popSegment(out)
		case in == "/..":
			in = "/"
			out = popSegment(out)
		case in == "." || in == "..":
			in = ""
		default:
			start := 0
			if in[0] == '/' {
				start = 1
			}
			end := strings.IndexByte(in[start:], '/')
			if end < 0 {
				out = append(out, in)
				in = ""
			} else {
				out = append(out, in[:start+end])
				in = in[start+end:]
			}
		}
	}
	res := strings.Join(out, "")
	if path[0] != '/' {
		res = strings.TrimPrefix(res, "/")
	}
	return res
}

func popSegment(out []string) []string {
	if n := len(out); n > 0 {
		return out[:n-1]
	}
	return out
}
