package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/scott-cotton/cli"

	skema "github.com/reoring/skema"
)

type MainConfig struct {
	Color   bool `cli:"name=color desc='force colored output'"`
	NoColor bool `cli:"name=no-color desc='disable colored output'"`

	Main *cli.Command
	ctx  context.Context
}

type ValidateConfig struct {
	*MainConfig

	Schema        string `cli:"name=s aliases=schema desc='schema file or absolute IRI'"`
	Output        string `cli:"name=o desc='structured output: flag, list or hierarchical'"`
	Y             bool   `cli:"name=y aliases=yaml desc='print structured output as YAML'"`
	ConfigFile    string `cli:"name=config desc='registry configuration file'"`
	StrictFormats bool   `cli:"name=strict-formats desc='fail on unknown formats'"`
	Formats       bool   `cli:"name=formats desc='assert format keywords in every dialect'"`
	FailFast      bool   `cli:"name=fail-fast desc='stop at the first error'"`
	Remote        bool   `cli:"name=remote desc='fetch http(s) references'"`

	Validate *cli.Command
}

func (cfg *ValidateConfig) source() schemaSource {
	return schemaSource{
		schema:        cfg.Schema,
		configFile:    cfg.ConfigFile,
		strictFormats: cfg.StrictFormats,
		remote:        cfg.Remote,
	}
}

type WalkConfig struct {
	*MainConfig

	Schema     string `cli:"name=s aliases=schema desc='schema file or absolute IRI'"`
	Defaults   bool   `cli:"name=defaults desc='apply property and item defaults'"`
	IfNull     bool   `cli:"name=if-null desc='also replace null properties with defaults'"`
	Check      bool   `cli:"name=validate desc='validate the walked documents'"`
	Y          bool   `cli:"name=y aliases=yaml desc='print documents as YAML'"`
	ConfigFile string `cli:"name=config desc='registry configuration file'"`
	Remote     bool   `cli:"name=remote desc='fetch http(s) references'"`

	Walk *cli.Command
}

func (cfg *WalkConfig) source() schemaSource {
	return schemaSource{schema: cfg.Schema, configFile: cfg.ConfigFile, remote: cfg.Remote}
}

type DialectsConfig struct {
	*MainConfig

	Dialects *cli.Command
}

// schemaSource locates the schema and builds the registry it compiles in.
type schemaSource struct {
	schema        string
	configFile    string
	strictFormats bool
	remote        bool
}

func (src schemaSource) registry() (*skema.Registry, error) {
	cfg := skema.Config{}
	if src.configFile != "" {
		f, err := os.Open(src.configFile)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		if cfg, err = skema.LoadConfigFile(f); err != nil {
			return nil, fmt.Errorf("%s: %w", src.configFile, err)
		}
	}
	if cfg.DefaultDialect == "" {
		cfg.DefaultDialect = skema.Draft202012
	}
	cfg.StrictFormats = cfg.StrictFormats || src.strictFormats
	cfg.Loaders = append(cfg.Loaders, skema.FileLoader{})
	if src.remote {
		cfg.Loaders = append(cfg.Loaders, skema.NewHTTPLoader(30*time.Second))
	}
	return skema.NewRegistry(cfg), nil
}

// iri maps a file path to a file:// IRI; absolute IRIs pass through.
func (src schemaSource) iri() (string, error) {
	if strings.Contains(src.schema, "://") || strings.HasPrefix(src.schema, "urn:") {
		return src.schema, nil
	}
	abs, err := filepath.Abs(src.schema)
	if err != nil {
		return "", err
	}
	return "file://" + filepath.ToSlash(abs), nil
}

func (src schemaSource) load(ctx context.Context) (*skema.Schema, error) {
	if src.schema == "" {
		return nil, fmt.Errorf("%w: -s is required", cli.ErrUsage)
	}
	reg, err := src.registry()
	if err != nil {
		return nil, err
	}
	id, err := src.iri()
	if err != nil {
		return nil, err
	}
	return reg.GetSchema(ctx, id)
}
