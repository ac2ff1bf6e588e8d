package skema

import (
	"bytes"
	"io"
	"strings"
	"sync"

	eng "github.com/reoring/skema/internal/engine"
	"github.com/reoring/skema/source/gojson"
	skyaml "github.com/reoring/skema/source/yaml"
)

// JSONDriver converts JSON input into a token stream. The default is backed
// by goccy/go-json; source/json provides an encoding/json driver.
type JSONDriver = eng.Driver

var (
	jsonDriverMu      sync.RWMutex
	currentJSONDriver JSONDriver = gojson.Driver()
)

// SetJSONDriver replaces the global JSON driver; nil values are ignored.
func SetJSONDriver(d JSONDriver) {
	if d == nil {
		return
	}
	jsonDriverMu.Lock()
	currentJSONDriver = d
	jsonDriverMu.Unlock()
}

// GetJSONDriver returns the current JSON driver.
func GetJSONDriver() JSONDriver {
	jsonDriverMu.RLock()
	defer jsonDriverMu.RUnlock()
	return currentJSONDriver
}

// DecodeOptions bounds JSON decoding.
type DecodeOptions struct {
	// RejectDuplicates fails on repeated object keys.
	RejectDuplicates bool
	MaxDepth         int
	MaxBytes         int64
}

// DecodeJSON decodes one JSON value with exact numbers (json.Number).
func DecodeJSON(data []byte) (any, error) {
	return DecodeJSONReader(bytes.NewReader(data), DecodeOptions{})
}

// DecodeJSONReader decodes one JSON value from r.
func DecodeJSONReader(r io.Reader, opt DecodeOptions) (any, error) {
	src := GetJSONDriver().NewReader(r)
	if opt.RejectDuplicates || opt.MaxDepth > 0 || opt.MaxBytes > 0 {
		src = eng.WrapWithEnforcement(src, eng.EnforceOptions{
			RejectDuplicates: opt.RejectDuplicates,
			MaxDepth:         opt.MaxDepth,
			MaxBytes:         opt.MaxBytes,
		})
	}
	return eng.Decode(src)
}

// DecodeYAML decodes the first YAML document. Duplicate keys are rejected.
func DecodeYAML(data []byte) (any, error) {
	return skyaml.Decode(data)
}

// decodeDocument picks YAML for .yaml/.yml names and JSON otherwise.
func decodeDocument(name string, data []byte, rejectDuplicates bool) (any, error) {
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") {
		return skyaml.Decode(data)
	}
	return DecodeJSONReader(bytes.NewReader(data), DecodeOptions{RejectDuplicates: rejectDuplicates})
}
