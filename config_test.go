package skema_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	skema "github.com/reoring/skema"
)

func TestLoadConfigFile(t *testing.T) {
	cfg, err := skema.LoadConfigFile(strings.NewReader(`
default_dialect: https://json-schema.org/draft/2019-09/schema
unknown_keywords: fail
strict_formats: true
discriminator: true
mappings:
  https://example.com/schemas/: https://mirror.example.com/
directories:
  https://example.com/local/: testdata
`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DefaultDialect != skema.Draft201909 || cfg.UnknownKeywords != skema.UnknownFail || !cfg.StrictFormats || !cfg.Discriminator {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if diff := cmp.Diff(skema.Mappings{{Prefix: "https://example.com/schemas/", Replacement: "https://mirror.example.com/"}}, cfg.Mappings); diff != "" {
		t.Fatalf("mappings (-want +got):\n%s", diff)
	}
	if got := cfg.Mappings.Map("https://example.com/schemas/a.json"); got != "https://mirror.example.com/a.json" {
		t.Fatalf("mapped: %s", got)
	}
	if len(cfg.Loaders) != 1 {
		t.Fatalf("loaders: %d", len(cfg.Loaders))
	}
}

func TestLoadConfigFile_Rejects(t *testing.T) {
	for name, doc := range map[string]string{
		"unknown field":  "default_dialiect: x\n",
		"unknown policy": "unknown_keywords: explode\n",
	} {
		if _, err := skema.LoadConfigFile(strings.NewReader(doc)); err == nil {
			t.Fatalf("%s: accepted", name)
		}
	}
}

func TestLoadConfigFile_Empty(t *testing.T) {
	cfg, err := skema.LoadConfigFile(strings.NewReader(""))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.UnknownKeywords != skema.UnknownIgnore || len(cfg.Loaders) != 0 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}
