//go:build stdjson

package compare_test

import (
	skema "github.com/reoring/skema"
	drv "github.com/reoring/skema/source/json"
)

func init() { skema.SetJSONDriver(drv.Driver()) }
