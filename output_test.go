package skema_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	skema "github.com/reoring/skema"
)

var ignoreSchemaLocation = cmpopts.IgnoreFields(skema.OutputUnit{}, "SchemaLocation")

func TestOutput_ListDropsAnnotationsOfInvalidNodes(t *testing.T) {
	s := compile(t, newRegistry(), `{
		"properties": {"foo": {"title": "Foo"}},
		"unevaluatedProperties": false
	}`)
	out, err := s.ValidateOutput(context.Background(), decode(t, `{"foo": 1, "bar": 2}`), skema.OutputList)
	if err != nil {
		t.Fatalf("output: %v", err)
	}
	want := &skema.OutputUnit{
		Valid: false,
		Details: []*skema.OutputUnit{
			{
				Valid:  false,
				Errors: map[string]string{"unevaluatedProperties": "property 'bar' is not evaluated and the schema does not allow unevaluated properties"},
				DroppedAnnotations: map[string]any{
					"properties":            []string{"foo"},
					"unevaluatedProperties": []string{"bar"},
				},
			},
			{
				Valid:              true,
				EvaluationPath:     "/properties/foo",
				InstanceLocation:   "/foo",
				DroppedAnnotations: map[string]any{"title": "Foo"},
			},
		},
	}
	if diff := cmp.Diff(want, out, ignoreSchemaLocation); diff != "" {
		t.Fatalf("output (-want +got):\n%s", diff)
	}
}

func TestOutput_ListKeepsAnnotationsOfValidNodes(t *testing.T) {
	s := compile(t, newRegistry(), `{"properties": {"foo": {"title": "Foo"}}}`)
	out, err := s.ValidateOutput(context.Background(), decode(t, `{"foo": 1}`), skema.OutputList)
	if err != nil {
		t.Fatalf("output: %v", err)
	}
	if !out.Valid || len(out.Details) != 2 {
		t.Fatalf("unexpected output: %+v", out)
	}
	if diff := cmp.Diff(map[string]any{"title": "Foo"}, out.Details[1].Annotations); diff != "" {
		t.Fatalf("annotations (-want +got):\n%s", diff)
	}
	for _, u := range out.Details {
		if len(u.Details) != 0 {
			t.Fatalf("list output nests details: %+v", u)
		}
	}
}

func TestOutput_AnnotationFilter(t *testing.T) {
	s := compile(t, newRegistry(), `{"title": "Root", "description": "d"}`)
	out, err := s.ValidateOutput(context.Background(), "x", skema.OutputList, skema.ExecutionConfig{
		AnnotationFilter: func(k string) bool { return k == "title" },
	})
	if err != nil {
		t.Fatalf("output: %v", err)
	}
	if len(out.Details) != 1 {
		t.Fatalf("unexpected output: %+v", out)
	}
	if diff := cmp.Diff(map[string]any{"title": "Root"}, out.Details[0].Annotations); diff != "" {
		t.Fatalf("annotations (-want +got):\n%s", diff)
	}
}

func TestOutput_HierarchicalSkipsEmptyNodes(t *testing.T) {
	s := compile(t, newRegistry(), `{"properties": {"a": {"allOf": [{"type": "string"}]}}}`)
	out, err := s.ValidateOutput(context.Background(), decode(t, `{"a": 1}`), skema.OutputHierarchical)
	if err != nil {
		t.Fatalf("output: %v", err)
	}
	want := &skema.OutputUnit{
		Valid:              false,
		DroppedAnnotations: map[string]any{"properties": []string{"a"}},
		Details: []*skema.OutputUnit{
			{
				Valid:            false,
				EvaluationPath:   "/properties/a/allOf/0",
				InstanceLocation: "/a",
				Errors:           map[string]string{"type": "/a: integer is not of type string"},
			},
		},
	}
	if diff := cmp.Diff(want, out, ignoreSchemaLocation); diff != "" {
		t.Fatalf("output (-want +got):\n%s", diff)
	}
}

func TestOutput_FailedBranchAnnotationsAreDropped(t *testing.T) {
	s := compile(t, newRegistry(), `{
		"anyOf": [
			{"title": "A", "required": ["zzz"]},
			{"title": "B"}
		]
	}`)
	instance := decode(t, `{}`)
	failed := &skema.OutputUnit{
		Valid:              false,
		EvaluationPath:     "/anyOf/0",
		DroppedAnnotations: map[string]any{"title": "A"},
	}
	passed := &skema.OutputUnit{
		Valid:          true,
		EvaluationPath: "/anyOf/1",
		Annotations:    map[string]any{"title": "B"},
	}

	list, err := s.ValidateOutput(context.Background(), instance, skema.OutputList)
	if err != nil {
		t.Fatalf("output: %v", err)
	}
	want := &skema.OutputUnit{Valid: true, Details: []*skema.OutputUnit{failed, passed}}
	if diff := cmp.Diff(want, list, ignoreSchemaLocation); diff != "" {
		t.Fatalf("list (-want +got):\n%s", diff)
	}

	tree, err := s.ValidateOutput(context.Background(), instance, skema.OutputHierarchical)
	if err != nil {
		t.Fatalf("output: %v", err)
	}
	if diff := cmp.Diff(want, tree, ignoreSchemaLocation); diff != "" {
		t.Fatalf("hierarchical (-want +got):\n%s", diff)
	}
}

func TestOutput_HierarchicalRootAlwaysPresent(t *testing.T) {
	s := compile(t, newRegistry(), `{"type": "string"}`)
	out, err := s.ValidateOutput(context.Background(), "x", skema.OutputHierarchical)
	if err != nil {
		t.Fatalf("output: %v", err)
	}
	if !out.Valid || len(out.Details) != 0 || out.SchemaLocation == "" {
		t.Fatalf("unexpected output: %+v", out)
	}
}

func TestOutput_Flag(t *testing.T) {
	s := compile(t, newRegistry(), `{"required": ["a", "b"]}`)
	out, err := s.ValidateOutput(context.Background(), decode(t, `{}`), skema.OutputFlag)
	if err != nil {
		t.Fatalf("output: %v", err)
	}
	if diff := cmp.Diff(&skema.OutputUnit{Valid: false}, out); diff != "" {
		t.Fatalf("output (-want +got):\n%s", diff)
	}
}

func TestOutput_ParseFormat(t *testing.T) {
	for in, want := range map[string]skema.OutputFormat{
		"flag":         skema.OutputFlag,
		"list":         skema.OutputList,
		"hierarchical": skema.OutputHierarchical,
	} {
		got, err := skema.ParseOutputFormat(in)
		if err != nil || got != want {
			t.Fatalf("%s: %v %v", in, got, err)
		}
	}
	if _, err := skema.ParseOutputFormat("xml"); err == nil {
		t.Fatalf("unknown format accepted")
	}
}
