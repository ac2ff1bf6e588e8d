package main

import (
	"fmt"

	"github.com/scott-cotton/cli"

	skema "github.com/reoring/skema"
	"github.com/reoring/skema/kubeopenapi"
)

func dialects(cfg *DialectsConfig, cc *cli.Context, args []string) error {
	if _, err := cfg.Dialects.Parse(cc, args); err != nil {
		return err
	}
	reg := skema.NewRegistry(skema.Config{
		DefaultDialect: skema.Draft202012,
		Dialects:       []*skema.Dialect{kubeopenapi.Dialect()},
	})
	for _, id := range reg.Dialects().IDs() {
		fmt.Fprintln(cc.Out, id)
	}
	return nil
}
