//go:build jscan

package compare_test

import (
	"errors"

	"github.com/romshark/jscan"
)

// jscan only checks syntax; it has no value tree to validate.
func init() {
	decoders = append(decoders, decoder{name: "jscan", decode: func(data []byte) (any, error) {
		if !jscan.Valid(string(data)) {
			return nil, errors.New("jscan: invalid JSON")
		}
		return nil, nil
	}})
}
