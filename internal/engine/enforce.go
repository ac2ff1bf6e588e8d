package engine

import (
	"strconv"
	"strings"
)

// EnforceOptions controls runtime enforcement behavior.
type EnforceOptions struct {
	// RejectDuplicates fails on the second occurrence of a key in one object.
	RejectDuplicates bool
	MaxDepth         int
	MaxBytes         int64
}

// DecodeError reports an enforcement violation with the JSON Pointer of the
// offending token.
type DecodeError struct {
	Code    string // duplicate_key, max_depth, truncated
	Path    string
	Message string
}

func (e *DecodeError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return e.Message + " at " + e.Path
}

// WrapWithEnforcement returns a TokenSource that enforces the duplicate key
// policy, maximum nesting depth and maximum consumed bytes.
func WrapWithEnforcement(inner TokenSource, opt EnforceOptions) TokenSource {
	return &enforcingTokenSource{inner: inner, opt: opt}
}

type enforceFrame struct {
	object     bool
	keys       map[string]struct{}
	path       string
	nextIndex  int
	pendingKey string
	haveKey    bool
}

type enforcingTokenSource struct {
	inner TokenSource
	opt   EnforceOptions
	stack []enforceFrame
}

func (e *enforcingTokenSource) NextToken() (Token, error) {
	tok, err := e.inner.NextToken()
	if err != nil {
		return Token{}, err
	}
	path := e.pathForToken(tok)

	switch tok.Kind {
	case KindBeginObject, KindBeginArray:
		f := enforceFrame{object: tok.Kind == KindBeginObject, path: path}
		if f.object && e.opt.RejectDuplicates {
			f.keys = make(map[string]struct{})
		}
		e.stack = append(e.stack, f)
		if e.opt.MaxDepth > 0 && len(e.stack) > e.opt.MaxDepth {
			return Token{}, &DecodeError{Code: "max_depth", Path: path, Message: "max depth exceeded"}
		}
	case KindEndObject, KindEndArray:
		if n := len(e.stack); n > 0 {
			e.stack = e.stack[:n-1]
		}
		e.memberDone()
	case KindKey:
		if n := len(e.stack); n > 0 {
			top := &e.stack[n-1]
			if top.keys != nil {
				if _, dup := top.keys[tok.String]; dup {
					return Token{}, &DecodeError{Code: "duplicate_key", Path: path, Message: "key '" + tok.String + "' duplicated"}
				}
				top.keys[tok.String] = struct{}{}
			}
			top.pendingKey, top.haveKey = tok.String, true
		}
	default:
		e.memberDone()
	}

	if e.opt.MaxBytes > 0 {
		if off := e.Location(); off >= 0 && off > e.opt.MaxBytes {
			return Token{}, &DecodeError{Code: "truncated", Path: path, Message: "max bytes exceeded"}
		}
	}
	return tok, nil
}

func (e *enforcingTokenSource) memberDone() {
	if n := len(e.stack); n > 0 {
		top := &e.stack[n-1]
		if top.object {
			top.haveKey = false
		}
	}
}

func (e *enforcingTokenSource) pathForToken(tok Token) string {
	if len(e.stack) == 0 {
		return ""
	}
	top := &e.stack[len(e.stack)-1]
	switch tok.Kind {
	case KindEndObject, KindEndArray:
		return top.path
	case KindKey:
		return joinPointer(top.path, tok.String)
	}
	if !top.object {
		p := joinPointer(top.path, strconv.Itoa(top.nextIndex))
		top.nextIndex++
		return p
	}
	if top.haveKey {
		return joinPointer(top.path, top.pendingKey)
	}
	return top.path
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func joinPointer(base, token string) string {
	return base + "/" + pointerEscaper.Replace(token)
}

func (e *enforcingTokenSource) Location() int64 { return e.inner.Location() }
