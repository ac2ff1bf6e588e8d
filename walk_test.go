package skema_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	skema "github.com/reoring/skema"
)

const walkSchema = `{
	"type": "object",
	"properties": {
		"name": {"type": "string", "default": "anon"},
		"nested": {
			"type": "object",
			"default": {},
			"properties": {"a": {"type": "integer", "default": 1}}
		},
		"tags": {"type": "array", "items": {"type": "string", "default": "x"}}
	}
}`

func allDefaults() skema.WalkConfig {
	return skema.WalkConfig{ApplyDefaults: skema.ApplyDefaultsStrategy{Properties: true, PropertiesIfNull: true, Items: true}}
}

func TestWalk_AppliesDefaults(t *testing.T) {
	s := compile(t, newRegistry(), walkSchema)
	in := decode(t, `{"tags": [null, "y"]}`)
	res, err := s.Walk(context.Background(), in, allDefaults())
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	want := decode(t, `{"name": "anon", "nested": {"a": 1}, "tags": ["x", "y"]}`)
	if diff := cmp.Diff(want, res.Instance); diff != "" {
		t.Fatalf("instance (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(decode(t, `{"tags": [null, "y"]}`), in); diff != "" {
		t.Fatalf("caller's instance modified (-want +got):\n%s", diff)
	}
	var locs []string
	var replaced []bool
	for _, d := range res.Defaults {
		locs = append(locs, d.InstanceLocation.Pointer())
		replaced = append(replaced, d.Replaced)
	}
	if diff := cmp.Diff([]string{"/name", "/nested", "/nested/a", "/tags/0"}, locs); diff != "" {
		t.Fatalf("defaults (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]bool{false, false, false, true}, replaced); diff != "" {
		t.Fatalf("replaced (-want +got):\n%s", diff)
	}
}

func TestWalk_PropertiesIfNull(t *testing.T) {
	s := compile(t, newRegistry(), walkSchema)
	cfg := skema.WalkConfig{ApplyDefaults: skema.ApplyDefaultsStrategy{Properties: true}}
	res, err := s.Walk(context.Background(), decode(t, `{"name": null, "nested": {}}`), cfg)
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	want := decode(t, `{"name": null, "nested": {"a": 1}}`)
	if diff := cmp.Diff(want, res.Instance); diff != "" {
		t.Fatalf("null kept without PropertiesIfNull (-want +got):\n%s", diff)
	}

	cfg.ApplyDefaults.PropertiesIfNull = true
	res, err = s.Walk(context.Background(), decode(t, `{"name": null, "nested": {}}`), cfg)
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	want = decode(t, `{"name": "anon", "nested": {"a": 1}}`)
	if diff := cmp.Diff(want, res.Instance); diff != "" {
		t.Fatalf("instance (-want +got):\n%s", diff)
	}
	if len(res.Defaults) != 2 || !res.Defaults[0].Replaced {
		t.Fatalf("defaults: %+v", res.Defaults)
	}
}

func TestWalk_PatchAppliesToDocument(t *testing.T) {
	s := compile(t, newRegistry(), walkSchema)
	doc := `{"tags": [null, "y"]}`
	res, err := s.Walk(context.Background(), decode(t, doc), allDefaults())
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	out, err := res.ApplyDefaults([]byte(doc))
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if diff := cmp.Diff(res.Instance, decode(t, string(out))); diff != "" {
		t.Fatalf("patched document (-want +got):\n%s", diff)
	}
}

func TestWalk_InvalidStrategy(t *testing.T) {
	if _, err := skema.NewApplyDefaultsStrategy(false, true, false); !errors.Is(err, skema.ErrInvalidDefaultsStrategy) {
		t.Fatalf("got %v", err)
	}
	s := compile(t, newRegistry(), walkSchema)
	cfg := skema.WalkConfig{ApplyDefaults: skema.ApplyDefaultsStrategy{PropertiesIfNull: true}}
	if _, err := s.Walk(context.Background(), decode(t, `{}`), cfg); !errors.Is(err, skema.ErrInvalidDefaultsStrategy) {
		t.Fatalf("got %v", err)
	}
}

func TestWalk_KeywordListenerSkips(t *testing.T) {
	s := compile(t, newRegistry(), walkSchema)
	var starts, ends int
	cfg := allDefaults()
	cfg.KeywordListeners = map[string][]skema.WalkListener{
		"properties": {skema.WalkListenerFuncs{
			Start: func(ev *skema.WalkEvent) skema.WalkFlow {
				starts++
				if ev.EvaluationPath.Pointer() != "/properties" {
					t.Errorf("evaluation path: %s", ev.EvaluationPath.Pointer())
				}
				return skema.WalkSkip
			},
			End: func(*skema.WalkEvent) { ends++ },
		}},
	}
	res, err := s.Walk(context.Background(), decode(t, `{}`), cfg)
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	if starts != 1 || ends != 1 {
		t.Fatalf("starts=%d ends=%d", starts, ends)
	}
	if len(res.Defaults) != 0 {
		t.Fatalf("skipped keyword applied defaults: %+v", res.Defaults)
	}
}

func TestWalk_PropertyListeners(t *testing.T) {
	s := compile(t, newRegistry(), walkSchema)
	var seen []string
	cfg := skema.WalkConfig{
		PropertyListeners: []skema.WalkListener{skema.WalkListenerFuncs{
			Start: func(ev *skema.WalkEvent) skema.WalkFlow {
				seen = append(seen, ev.InstanceLocation.Pointer())
				if ev.InstanceLocation.Pointer() == "/nested" {
					return skema.WalkSkip
				}
				return skema.WalkContinue
			},
		}},
		ApplyDefaults: skema.ApplyDefaultsStrategy{Properties: true},
	}
	res, err := s.Walk(context.Background(), decode(t, `{"name": "n", "nested": {}}`), cfg)
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	if diff := cmp.Diff([]string{"/name", "/nested"}, seen); diff != "" {
		t.Fatalf("visited (-want +got):\n%s", diff)
	}
	if len(res.Defaults) != 0 {
		t.Fatalf("skipped member applied defaults: %+v", res.Defaults)
	}
}

func TestWalk_Validate(t *testing.T) {
	s := compile(t, newRegistry(), `{
		"type": "object",
		"required": ["name"],
		"properties": {"name": {"type": "string", "default": "anon"}, "age": {"type": "integer"}}
	}`)
	cfg := allDefaults()
	cfg.Validate = true
	res, err := s.Walk(context.Background(), decode(t, `{"age": "x"}`), cfg)
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	if len(res.Errors) != 1 || res.Errors[0].Keyword != "type" {
		t.Fatalf("errors: %v", res.Errors)
	}
}
