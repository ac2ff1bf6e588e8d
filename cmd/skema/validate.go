package main

import (
	"errors"
	"fmt"

	"github.com/scott-cotton/cli"

	skema "github.com/reoring/skema"
)

func validate(cfg *ValidateConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Validate.Parse(cc, args)
	if err != nil {
		return err
	}
	structured := cfg.Output != ""
	format, err := skema.ParseOutputFormat(cfg.Output)
	if err != nil {
		return fmt.Errorf("%w: %w", cli.ErrUsage, err)
	}
	s, err := cfg.source().load(cfg.ctx)
	if err != nil {
		return err
	}
	exec := skema.ExecutionConfig{FailFast: cfg.FailFast}
	if cfg.Formats {
		exec.FormatAssertions = skema.On
	}
	p := newPrinter(cfg.MainConfig, cc.Out, cfg.Y)
	invalid := false
	err = eachDoc(cc.In, args, func(name string, _ []byte, doc any) error {
		if structured {
			out, err := s.ValidateOutput(cfg.ctx, doc, format, exec)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			invalid = invalid || !out.Valid
			return p.value(out)
		}
		errs, err := s.Validate(cfg.ctx, doc, exec)
		if err != nil {
			var ff *skema.FailFastError
			if !errors.As(err, &ff) {
				return fmt.Errorf("%s: %w", name, err)
			}
			errs = skema.Errors{ff.Err}
		}
		invalid = invalid || len(errs) > 0
		p.summary(name, errs)
		return nil
	})
	if err != nil {
		return err
	}
	if invalid {
		return cli.ExitCodeErr(1)
	}
	return nil
}
