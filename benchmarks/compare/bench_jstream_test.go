//go:build jstream

package compare_test

import (
	"bytes"
	"errors"
	"io"

	"github.com/bcicen/jstream"
)

// jstream emits the root value at depth 0 as a map/slice tree, so it joins
// both the parse and the validation comparisons.
func init() {
	decoders = append(decoders, decoder{name: "jstream", tree: true, decode: func(data []byte) (any, error) {
		dec := jstream.NewDecoder(bytes.NewReader(data), 0)
		var root any
		for mv := range dec.Stream() {
			root = mv.Value
		}
		if err := dec.Err(); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		return root, nil
	}})
}
