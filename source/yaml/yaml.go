// Package yaml decodes YAML documents into JSON-compatible value trees.
//
// Mappings become map[string]any, sequences []any and numbers json.Number,
// matching the trees produced by the JSON drivers. Duplicate mapping keys
// are always rejected.
package yaml

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DuplicateKeyError reports a duplicate key found in a YAML mapping with both
// the first occurrence position and the duplicate occurrence position.
type DuplicateKeyError struct {
	Key       string
	FirstLine int
	FirstCol  int
	Line      int
	Col       int
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate YAML key %q at %d:%d (first at %d:%d)", e.Key, e.Line, e.Col, e.FirstLine, e.FirstCol)
}

// Reader decodes a multi-document YAML stream.
type Reader struct {
	dec *yaml.Decoder
}

// NewReader constructs a Reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{dec: yaml.NewDecoder(r)}
}

// Next returns the next document. It returns (nil, io.EOF) when the stream
// is exhausted.
func (s *Reader) Next() (any, error) {
	var root yaml.Node
	if err := s.dec.Decode(&root); err != nil {
		return nil, err
	}
	return Convert(&root)
}

// ReadAll reads all documents from the stream.
func (s *Reader) ReadAll() ([]any, error) {
	var out []any
	for {
		v, err := s.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return nil, err
		}
		out = append(out, v)
	}
}

// Decode decodes the first document in data.
func Decode(data []byte) (any, error) {
	v, err := NewReader(bytes.NewReader(data)).Next()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	return v, err
}

// Convert turns a parsed node into a value tree.
func Convert(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return Convert(n.Content[0])
	case yaml.AliasNode:
		return Convert(n.Alias)
	case yaml.MappingNode:
		m := make(map[string]any, len(n.Content)/2)
		first := make(map[string][2]int, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			if k.Tag == "!!merge" {
				if err := mergeInto(m, v); err != nil {
					return nil, err
				}
				continue
			}
			key := k.Value
			if pos, dup := first[key]; dup {
				return nil, &DuplicateKeyError{Key: key, FirstLine: pos[0], FirstCol: pos[1], Line: k.Line, Col: k.Column}
			}
			first[key] = [2]int{k.Line, k.Column}
			val, err := Convert(v)
			if err != nil {
				return nil, err
			}
			m[key] = val
		}
		return m, nil
	case yaml.SequenceNode:
		arr := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := Convert(c)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	case yaml.ScalarNode:
		return scalar(n), nil
	}
	return nil, nil
}

func mergeInto(m map[string]any, v *yaml.Node) error {
	src, err := Convert(v)
	if err != nil {
		return err
	}
	switch t := src.(type) {
	case map[string]any:
		for k, val := range t {
			if _, ok := m[k]; !ok {
				m[k] = val
			}
		}
	case []any:
		for _, e := range t {
			if mm, ok := e.(map[string]any); ok {
				for k, val := range mm {
					if _, ok := m[k]; !ok {
						m[k] = val
					}
				}
			}
		}
	}
	return nil
}

func scalar(n *yaml.Node) any {
	switch n.ShortTag() {
	case "!!null":
		return nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err == nil {
			return b
		}
		return n.Value
	case "!!int":
		s := strings.ReplaceAll(n.Value, "_", "")
		if i, ok := new(big.Int).SetString(s, 0); ok {
			return json.Number(i.String())
		}
		return n.Value
	case "!!float":
		s := strings.ReplaceAll(n.Value, "_", "")
		if _, err := strconv.ParseFloat(s, 64); err == nil && !strings.ContainsAny(s, "nN") {
			return json.Number(strings.TrimPrefix(s, "+"))
		}
		var f float64
		if err := n.Decode(&f); err == nil {
			return f
		}
		return n.Value
	default:
		return n.Value
	}
}
