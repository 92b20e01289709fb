package provider

import "testing"

func testDefinition() Definition {
	return Definition{
		ID:      "test-provider",
		Command: "test-cli",
		Args:    []string{"-p", "--model", "%MODEL%"},
		Env:     map[string]string{"FOO": "bar"},
		Models: []Model{
			{ID: "m-fast", Tier: TierFast},
			{ID: "m-balanced", Tier: TierBalanced},
			{ID: "m-thorough", Tier: TierThorough, Default: true},
		},
	}
}

func TestRegisterAndDefinitions(t *testing.T) {
	Register(testDefinition(), NewCommandAdapter)
	defer Unregister("test-provider")

	def, ok := Definitions("test-provider")
	if !ok {
		t.Fatal("expected provider to be registered")
	}
	if def.Command != "test-cli" {
		t.Errorf("expected command test-cli, got %s", def.Command)
	}
}

func TestDefinition_DefaultModel_PrefersFlaggedDefault(t *testing.T) {
	def := testDefinition()
	dm := def.DefaultModel()
	if dm == nil || dm.ID != "m-thorough" {
		t.Errorf("expected m-thorough (flagged default), got %+v", dm)
	}
}

func TestDefinition_DefaultModel_FallsBackToBalanced(t *testing.T) {
	def := testDefinition()
	def.Models[2].Default = false
	dm := def.DefaultModel()
	if dm == nil || dm.ID != "m-balanced" {
		t.Errorf("expected m-balanced (first balanced), got %+v", dm)
	}
}

func TestDefinition_DefaultModel_FallsBackToFirst(t *testing.T) {
	def := Definition{Models: []Model{{ID: "only", Tier: TierFast}}}
	dm := def.DefaultModel()
	if dm == nil || dm.ID != "only" {
		t.Errorf("expected the only model, got %+v", dm)
	}
}

func TestDefinition_DefaultModel_NilWhenEmpty(t *testing.T) {
	def := Definition{}
	if dm := def.DefaultModel(); dm != nil {
		t.Errorf("expected nil default model for empty provider, got %+v", dm)
	}
}

func TestNormalizeTier(t *testing.T) {
	cases := map[string]Tier{
		"premium":  TierThorough,
		"free":     TierFast,
		"balanced": TierBalanced,
		"fast":     TierFast,
	}
	for in, want := range cases {
		if got := NormalizeTier(in); got != want {
			t.Errorf("NormalizeTier(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMerge_ModelsByID(t *testing.T) {
	base := Definition{
		Command: "base-cli",
		Models: []Model{
			{ID: "a", Tier: TierFast, Name: "A"},
			{ID: "b", Tier: TierBalanced, Name: "B"},
		},
	}
	override := Definition{
		Models: []Model{
			{ID: "a", Tier: TierThorough, Name: "A overridden"},
			{ID: "c", Tier: TierFast, Name: "C new"},
		},
	}

	merged := Merge(base, override)
	if len(merged.Models) != 3 {
		t.Fatalf("expected 3 models after merge, got %d", len(merged.Models))
	}
	byID := map[string]Model{}
	for _, m := range merged.Models {
		byID[m.ID] = m
	}
	if byID["a"].Tier != TierThorough || byID["a"].Name != "A overridden" {
		t.Errorf("expected model a to be replaced by override, got %+v", byID["a"])
	}
	if byID["b"].Name != "B" {
		t.Errorf("expected model b to survive unmodified, got %+v", byID["b"])
	}
	if _, ok := byID["c"]; !ok {
		t.Errorf("expected new model c to be appended")
	}
}

func TestMerge_EmptyOverrideArraysAreNoop(t *testing.T) {
	base := testDefinition()
	merged := Merge(base, Definition{})
	if len(merged.Models) != len(base.Models) {
		t.Errorf("expected empty override models to leave base untouched, got %d models", len(merged.Models))
	}
	if merged.Command != base.Command {
		t.Errorf("expected empty override command to leave base untouched")
	}
}

func TestMerge_EnvMergesRatherThanReplaces(t *testing.T) {
	base := Definition{Env: map[string]string{"A": "1"}}
	override := Definition{Env: map[string]string{"B": "2"}}
	merged := Merge(base, override)
	if merged.Env["A"] != "1" || merged.Env["B"] != "2" {
		t.Errorf("expected merged env to contain both keys, got %+v", merged.Env)
	}
}

func TestNew_UnregisteredProvider(t *testing.T) {
	if _, err := New("does-not-exist", nil); err == nil {
		t.Error("expected an error for an unregistered provider")
	}
}

func TestList_IncludesRegistered(t *testing.T) {
	Register(testDefinition(), NewCommandAdapter)
	defer Unregister("test-provider")

	found := false
	for _, def := range List() {
		if def.ID == "test-provider" {
			found = true
		}
	}
	if !found {
		t.Error("expected List() to include the registered test provider")
	}
}
