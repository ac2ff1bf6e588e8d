package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/scott-cotton/cli"
)

func MainCommand(ctx context.Context) *cli.Command {
	cfg := &MainConfig{ctx: ctx}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Main, "skema").
		WithSynopsis("skema [opts] command [opts]").
		WithDescription("skema validates JSON and YAML documents against JSON Schemas.").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return skemaMain(cfg, cc, args)
		}).
		WithSubs(
			ValidateCommand(cfg),
			WalkCommand(cfg),
			DialectsCommand(cfg))
}

func skemaMain(cfg *MainConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Main.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return cli.ErrNoCommandProvided
	}
	sub := cfg.Main.FindSub(cc, args[0])
	if sub == nil {
		return fmt.Errorf("%w: %q not found", cli.ErrNoSuchCommand, args[0])
	}
	err = sub.Run(cc, args[1:])
	if errors.Is(err, cli.ErrUsage) {
		sub.Usage(cc, err)
		os.Exit(sub.Exit(cc, err))
	}
	return err
}

func ValidateCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ValidateConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Validate, "validate").
		WithAliases("v", "val").
		WithSynopsis("validate -s schema [-o flag|list|hierarchical] [-y] [files]").
		WithDescription("validate documents (stdin when no files are given) against a schema").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return validate(cfg, cc, args)
		})
}

func WalkCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &WalkConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Walk, "walk").
		WithAliases("w").
		WithSynopsis("walk -s schema [-defaults] [files]").
		WithDescription("walk documents with a schema and print them with defaults applied").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return walk(cfg, cc, args)
		})
}

func DialectsCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &DialectsConfig{MainConfig: mainCfg}
	return cli.NewCommandAt(&cfg.Dialects, "dialects").
		WithSynopsis("dialects").
		WithDescription("list known dialect IRIs").
		WithRun(func(cc *cli.Context, args []string) error {
			return dialects(cfg, cc, args)
		})
}
