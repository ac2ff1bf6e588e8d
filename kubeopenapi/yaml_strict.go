package kubeopenapi

import (
	"errors"
	"io"

	skyaml "github.com/reoring/skema/source/yaml"
)

// DuplicateKeyError reports a duplicate key found in a YAML mapping with both
// the first occurrence position and the duplicate occurrence position.
type DuplicateKeyError = skyaml.DuplicateKeyError

// StrictYAMLReader decodes a multi-document YAML stream, rejecting duplicate
// keys. Documents come back as JSON-like Go values (map[string]any, []any,
// json.Number and other primitives).
type StrictYAMLReader struct {
	r *skyaml.Reader
}

// NewStrictYAMLReader constructs a StrictYAMLReader.
func NewStrictYAMLReader(r io.Reader) *StrictYAMLReader {
	return &StrictYAMLReader{r: skyaml.NewReader(r)}
}

// Next returns the next document. It returns (nil, io.EOF) when the stream
// is exhausted.
func (s *StrictYAMLReader) Next() (any, error) {
	return s.r.Next()
}

// ReadAll reads all documents from the YAML stream.
func (s *StrictYAMLReader) ReadAll() ([]any, error) {
	return s.r.ReadAll()
}

// each calls fn with every mapping document of the stream until fn
// reports done.
func (s *StrictYAMLReader) each(fn func(m map[string]any) (done bool, err error)) error {
	for {
		v, err := s.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		m, ok := v.(map[string]any)
		if !ok {
			continue
		}
		done, err := fn(m)
		if done || err != nil {
			return err
		}
	}
}
