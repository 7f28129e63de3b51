package tools

import (
	"strings"
	"testing"
)

func TestCatalogContents(t *testing.T) {
	r := NewRegistry(true)

	expected := []string{
		GetScheduleItems, CreateScheduleItem, UpdateScheduleItem, DeleteScheduleItem,
		GetIdeas, CreateIdea, UpdateIdea, DeleteIdea,
		GetGoals, CreateGoal, UpdateGoal, DeleteGoal,
		GetResources, CreateResource, UpdateResource, DeleteResource,
		GetUserBio, UpdateUserBio,
		SearchWebResources,
	}
	if r.Count() != len(expected) {
		t.Errorf("catalog size = %d, want %d", r.Count(), len(expected))
	}
	for _, name := range expected {
		if !r.Has(name) {
			t.Errorf("catalog missing %s", name)
		}
	}
}

func TestSearchToolGatedByConfig(t *testing.T) {
	r := NewRegistry(false)
	if r.Has(SearchWebResources) {
		t.Error("search_web_resources must not be advertised without a search backend")
	}
	if r.Count() != NewRegistry(true).Count()-1 {
		t.Error("disabling search should remove exactly one tool")
	}
}

func TestDefinitionsShape(t *testing.T) {
	r := NewRegistry(true)
	defs := r.Definitions()
	if len(defs) != r.Count() {
		t.Fatalf("definitions = %d, want %d", len(defs), r.Count())
	}
	for _, def := range defs {
		if def["type"] != "function" {
			t.Errorf("definition type = %v, want function", def["type"])
		}
		fn, ok := def["function"].(map[string]interface{})
		if !ok {
			t.Fatal("definition missing function block")
		}
		if fn["name"] == "" || fn["description"] == "" {
			t.Errorf("definition %v missing name or description", fn["name"])
		}
		params, ok := fn["parameters"].(map[string]interface{})
		if !ok || params["type"] != "object" {
			t.Errorf("tool %v parameters must be an object schema", fn["name"])
		}
	}
}

func TestValidateArgs(t *testing.T) {
	r := NewRegistry(true)

	if err := r.ValidateArgs(CreateIdea, map[string]interface{}{"content": "build a birdhouse"}); err != nil {
		t.Errorf("valid args rejected: %v", err)
	}

	err := r.ValidateArgs(CreateIdea, map[string]interface{}{"title": "x"})
	if err == nil {
		t.Fatal("missing required content must fail")
	}
	if !strings.Contains(err.Error(), "content") {
		t.Errorf("error should name the missing parameter, got %v", err)
	}

	if err := r.ValidateArgs(CreateResource, map[string]interface{}{"title": "Go tour", "url": ""}); err == nil {
		t.Error("empty required string must fail")
	}

	if err := r.ValidateArgs("rm_rf", nil); err == nil {
		t.Error("unknown tool must fail validation")
	}
}

func TestGetToolsHaveNoRequiredParams(t *testing.T) {
	r := NewRegistry(true)
	for _, name := range []string{GetScheduleItems, GetIdeas, GetGoals, GetResources, GetUserBio} {
		tool, ok := r.Get(name)
		if !ok {
			t.Fatalf("missing %s", name)
		}
		if len(tool.Required) != 0 {
			t.Errorf("%s should take no required params", name)
		}
	}
}
