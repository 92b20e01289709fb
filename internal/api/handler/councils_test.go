package handler

import (
	"net/http/httptest"
	"testing"

	"github.com/pairreview/pairreview/internal/model"
	"github.com/pairreview/pairreview/internal/store"
)

func TestCouncilHandler_CreateThenList(t *testing.T) {
	st, cleanup := store.SetupTestDB(t)
	defer cleanup()

	h := NewCouncilHandler(st)
	r := SetupTestRouter()
	r.POST("/api/councils", h.Create)
	r.GET("/api/councils", h.List)

	req := CreateTestRequest("POST", "/api/councils", map[string]interface{}{
		"name": "balanced trio",
		"type": "council",
		"config": map[string]interface{}{
			"levels": map[string]interface{}{
				"1": map[string]interface{}{
					"enabled": true,
					"voices": []map[string]interface{}{
						{"provider": "claude", "model": "sonnet", "tier": "balanced"},
					},
				},
			},
			"orchestration": map[string]interface{}{"provider": "claude", "model": "opus"},
		},
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d (body: %s)", w.Code, w.Body.String())
	}

	listReq := CreateTestRequest("GET", "/api/councils", nil)
	listW := httptest.NewRecorder()
	r.ServeHTTP(listW, listReq)

	var resp struct {
		Councils []model.Council `json:"councils"`
	}
	DecodeJSON(t, listW, &resp)
	if len(resp.Councils) != 1 {
		t.Fatalf("expected 1 council, got %d", len(resp.Councils))
	}
	if resp.Councils[0].Name != "balanced trio" {
		t.Errorf("name mismatch: got %q", resp.Councils[0].Name)
	}
}

func TestCouncilHandler_Delete(t *testing.T) {
	st, cleanup := store.SetupTestDB(t)
	defer cleanup()

	council := &model.Council{ID: "c1", Name: "solo", Type: model.CouncilTypeAdvanced, Config: model.JSONMap{}}
	if err := st.Council().Create(council); err != nil {
		t.Fatalf("failed to seed council: %v", err)
	}

	h := NewCouncilHandler(st)
	r := SetupTestRouter()
	r.DELETE("/api/councils/:id", h.Delete)

	req := CreateTestRequest("DELETE", "/api/councils/c1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d (body: %s)", w.Code, w.Body.String())
	}
}
