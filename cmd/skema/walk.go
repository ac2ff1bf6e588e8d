package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/scott-cotton/cli"

	skema "github.com/reoring/skema"
)

func walk(cfg *WalkConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Walk.Parse(cc, args)
	if err != nil {
		return err
	}
	strategy, err := skema.NewApplyDefaultsStrategy(cfg.Defaults || cfg.IfNull, cfg.IfNull, cfg.Defaults)
	if err != nil {
		return fmt.Errorf("%w: %w", cli.ErrUsage, err)
	}
	s, err := cfg.source().load(cfg.ctx)
	if err != nil {
		return err
	}
	yamlOut := newPrinter(cfg.MainConfig, cc.Out, true)
	errOut := newPrinter(cfg.MainConfig, os.Stderr, false)
	invalid := false
	err = eachDoc(cc.In, args, func(name string, data []byte, doc any) error {
		res, err := s.Walk(cfg.ctx, doc, skema.WalkConfig{ApplyDefaults: strategy, Validate: cfg.Check})
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if cfg.Check {
			invalid = invalid || len(res.Errors) > 0
			errOut.summary(name, res.Errors)
		}
		if cfg.Y || isYAML(name) {
			return yamlOut.value(res.Instance)
		}
		// JSON input is patched as bytes so numbers stay as written.
		patched, err := res.ApplyDefaults(data)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		_, err = fmt.Fprintf(cc.Out, "%s\n", bytes.TrimSpace(patched))
		return err
	})
	if err != nil {
		return err
	}
	if invalid {
		return cli.ExitCodeErr(1)
	}
	return nil
}
