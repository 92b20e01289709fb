package handler

import (
	"net/http/httptest"
	"testing"

	"github.com/pairreview/pairreview/internal/model"
	"github.com/pairreview/pairreview/internal/store"
)

func TestSingleVoicePlan_BuildsOneLevel(t *testing.T) {
	plan := singleVoicePlan(analyzeRequest{Provider: "claude", Model: "sonnet", Tier: "balanced"})
	if plan.Type != model.RunConfigTypeSingle {
		t.Errorf("expected single config type, got %v", plan.Type)
	}
	if len(plan.Levels) != 1 || len(plan.Levels[0].Voices) != 1 {
		t.Fatalf("expected exactly one level with one voice, got %+v", plan.Levels)
	}
	voice := plan.Levels[0].Voices[0]
	if voice.Provider != "claude" || voice.Model != "sonnet" || voice.Tier != "balanced" {
		t.Errorf("voice fields mismatch: %+v", voice)
	}
}

func TestCouncilPlanFromConfig_ParsesLevelsAndOrchestration(t *testing.T) {
	config := model.JSONMap{
		"levels": map[string]interface{}{
			"1": map[string]interface{}{
				"enabled": true,
				"voices": []interface{}{
					map[string]interface{}{"provider": "claude", "model": "sonnet", "tier": "balanced"},
					map[string]interface{}{"provider": "gemini", "model": "pro", "tier": "balanced"},
				},
			},
			"2": map[string]interface{}{
				"enabled": false,
			},
		},
		"orchestration": map[string]interface{}{"provider": "claude", "model": "opus"},
	}

	plan, err := councilPlanFromConfig(model.RunConfigTypeCouncil, config, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan.Levels) != 1 {
		t.Fatalf("expected one enabled level, got %d", len(plan.Levels))
	}
	if len(plan.Levels[0].Voices) != 2 {
		t.Fatalf("expected two voices in level 1, got %d", len(plan.Levels[0].Voices))
	}
	if !plan.HasOrchestration() {
		t.Error("expected an orchestration voice to be set")
	}
}

func TestCouncilPlanFromConfig_CouncilRequiresOrchestration(t *testing.T) {
	config := model.JSONMap{
		"levels": map[string]interface{}{
			"1": map[string]interface{}{
				"enabled": true,
				"voices": []interface{}{
					map[string]interface{}{"provider": "claude", "model": "sonnet"},
				},
			},
		},
	}
	_, err := councilPlanFromConfig(model.RunConfigTypeCouncil, config, nil)
	if err == nil {
		t.Fatal("expected an error when a council config has no orchestration voice")
	}
}

func TestAnalyzeHandler_Analyze_RejectsMissingFields(t *testing.T) {
	st, cleanup := store.SetupTestDB(t)
	defer cleanup()
	review := store.CreateTestLocalReview(t, st)

	h := NewAnalyzeHandler(st, nil)
	r := SetupTestRouter()
	r.POST("/api/local/:reviewId/analyze", h.Analyze)

	req := CreateTestRequest("POST", "/api/local/"+idStr(review.ID)+"/analyze", map[string]interface{}{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	AssertErrorResponse(t, w, 400)
}

func TestAnalyzeHandler_AnalyzeCouncil_RequiresConfigOrID(t *testing.T) {
	st, cleanup := store.SetupTestDB(t)
	defer cleanup()
	review := store.CreateTestLocalReview(t, st)

	h := NewAnalyzeHandler(st, nil)
	r := SetupTestRouter()
	r.POST("/api/local/:reviewId/analyze/council", h.AnalyzeCouncil)

	req := CreateTestRequest("POST", "/api/local/"+idStr(review.ID)+"/analyze/council", map[string]interface{}{
		"configType": "council",
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	AssertErrorResponse(t, w, 400)
}
