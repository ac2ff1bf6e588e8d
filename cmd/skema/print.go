package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	gojson "github.com/goccy/go-json"
	goyaml "github.com/goccy/go-yaml"
	"github.com/mattn/go-isatty"

	skema "github.com/reoring/skema"
)

type printer struct {
	w    io.Writer
	yaml bool
	ok   *color.Color
	bad  *color.Color
	loc  *color.Color
}

func newPrinter(cfg *MainConfig, w io.Writer, y bool) *printer {
	p := &printer{
		w:    w,
		yaml: y,
		ok:   color.New(color.FgGreen),
		bad:  color.New(color.FgRed, color.Bold),
		loc:  color.New(color.FgCyan),
	}
	colored := cfg.Color
	if !cfg.Color && !cfg.NoColor {
		if f, isFile := w.(*os.File); isFile {
			colored = isatty.IsTerminal(f.Fd())
		}
	}
	for _, c := range []*color.Color{p.ok, p.bad, p.loc} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// value prints v as indented JSON, or YAML when requested.
func (p *printer) value(v any) error {
	var (
		d   []byte
		err error
	)
	if p.yaml {
		d, err = goyaml.Marshal(v)
	} else {
		d, err = gojson.MarshalIndent(v, "", "  ")
		d = append(d, '\n')
	}
	if err != nil {
		return fmt.Errorf("error encoding result: %w", err)
	}
	_, err = p.w.Write(d)
	return err
}

// summary prints one status line per document followed by its errors.
func (p *printer) summary(name string, errs skema.Errors) {
	if len(errs) == 0 {
		fmt.Fprintf(p.w, "%s: %s\n", name, p.ok.Sprint("ok"))
		return
	}
	noun := "errors"
	if len(errs) == 1 {
		noun = "error"
	}
	fmt.Fprintf(p.w, "%s: %s\n", name, p.bad.Sprintf("%d %s", len(errs), noun))
	for _, e := range errs {
		fmt.Fprintf(p.w, "  %s %s (%s)\n", p.loc.Sprint(e.InstanceLocation.Pointer()), e.Message, e.Keyword)
	}
}
