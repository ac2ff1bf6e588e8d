// Package debug holds environment-controlled trace switches.
package debug

import (
	"fmt"
	"io"
	"os"
	"strconv"

	json "github.com/goccy/go-json"
)

type debug struct {
	Load    bool
	Compile bool
	Eval    bool
}

var d *debug

// Output receives trace lines.
var Output io.Writer = os.Stderr

func init() {
	d = &debug{}
	d.Load = boolEnv("SKEMA_DEBUG_LOAD")
	d.Compile = boolEnv("SKEMA_DEBUG_COMPILE")
	d.Eval = boolEnv("SKEMA_DEBUG_EVAL")
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}

func Load() bool {
	return d.Load
}
func Compile() bool {
	return d.Compile
}
func Eval() bool {
	return d.Eval
}

// Enable switches traces on or off at runtime; the CLI uses it for -v.
func Enable(load, compile, eval bool) {
	d = &debug{Load: load, Compile: compile, Eval: eval}
}

// Logf writes a trace line. Value trees are rendered as compact JSON.
func Logf(msg string, args ...any) {
	for i := range args {
		switch args[i].(type) {
		case map[string]any, []any:
			b, err := json.Marshal(args[i])
			if err != nil {
				continue
			}
			args[i] = string(b)
		}
	}
	fmt.Fprintf(Output, msg, args...)
}
