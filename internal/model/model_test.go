// Package model defines the data models for the application.
// This file contains unit tests for model types.
package model

import (
	"encoding/json"
	"testing"
)

// TestStringArrayValue tests StringArray.Value() method
func TestStringArrayValue(t *testing.T) {
	tests := []struct {
		name    string
		input   StringArray
		want    string
		wantErr bool
	}{
		{
			name:  "empty array",
			input: StringArray{},
			want:  "[]",
		},
		{
			name:  "nil array",
			input: nil,
			want:  "[]",
		},
		{
			name:  "single element",
			input: StringArray{"hello"},
			want:  `["hello"]`,
		},
		{
			name:  "multiple elements",
			input: StringArray{"a", "b", "c"},
			want:  `["a","b","c"]`,
		},
		{
			name:  "elements with special characters",
			input: StringArray{"hello world", "foo\"bar", "test\nline"},
			want:  `["hello world","foo\"bar","test\nline"]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.input.Value()
			if (err != nil) != tt.wantErr {
				t.Errorf("StringArray.Value() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("StringArray.Value() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestStringArrayScan tests StringArray.Scan() method
func TestStringArrayScan(t *testing.T) {
	tests := []struct {
		name    string
		input   interface{}
		want    StringArray
		wantErr bool
	}{
		{
			name:  "nil value",
			input: nil,
			want:  StringArray{},
		},
		{
			name:  "empty array as string",
			input: "[]",
			want:  StringArray{},
		},
		{
			name:  "empty array as bytes",
			input: []byte("[]"),
			want:  StringArray{},
		},
		{
			name:  "single element as string",
			input: `["hello"]`,
			want:  StringArray{"hello"},
		},
		{
			name:  "multiple elements as string",
			input: `["a","b","c"]`,
			want:  StringArray{"a", "b", "c"},
		},
		{
			name:  "multiple elements as bytes",
			input: []byte(`["a","b","c"]`),
			want:  StringArray{"a", "b", "c"},
		},
		{
			name:    "invalid JSON",
			input:   "not json",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s StringArray
			err := s.Scan(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("StringArray.Scan() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && len(s) != len(tt.want) {
				t.Errorf("StringArray.Scan() length = %d, want %d", len(s), len(tt.want))
				return
			}
			for i := range tt.want {
				if s[i] != tt.want[i] {
					t.Errorf("StringArray.Scan()[%d] = %v, want %v", i, s[i], tt.want[i])
				}
			}
		})
	}
}

// TestJSONMapValue tests JSONMap.Value() method
func TestJSONMapValue(t *testing.T) {
	tests := []struct {
		name    string
		input   JSONMap
		wantErr bool
	}{
		{
			name:  "nil map",
			input: nil,
		},
		{
			name:  "empty map",
			input: JSONMap{},
		},
		{
			name: "simple map",
			input: JSONMap{
				"key": "value",
			},
		},
		{
			name: "nested map",
			input: JSONMap{
				"key1": "value1",
				"key2": 42,
				"key3": true,
				"nested": map[string]interface{}{
					"inner": "value",
				},
			},
		},
		{
			name: "map with array",
			input: JSONMap{
				"items": []interface{}{"a", "b", "c"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.input.Value()
			if (err != nil) != tt.wantErr {
				t.Errorf("JSONMap.Value() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			// Value should be a valid JSON string
			if got != nil {
				if str, ok := got.(string); ok {
					var m map[string]interface{}
					if err := json.Unmarshal([]byte(str), &m); err != nil {
						t.Errorf("JSONMap.Value() returned invalid JSON: %v", err)
					}
				}
			}
		})
	}
}

// TestJSONMapScan tests JSONMap.Scan() method
func TestJSONMapScan(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		wantKeys []string
		wantErr  bool
	}{
		{
			name:     "nil value",
			input:    nil,
			wantKeys: []string{},
		},
		{
			name:     "empty object as string",
			input:    "{}",
			wantKeys: []string{},
		},
		{
			name:     "empty object as bytes",
			input:    []byte("{}"),
			wantKeys: []string{},
		},
		{
			name:     "simple object as string",
			input:    `{"key":"value"}`,
			wantKeys: []string{"key"},
		},
		{
			name:     "simple object as bytes",
			input:    []byte(`{"key":"value"}`),
			wantKeys: []string{"key"},
		},
		{
			name:     "nested object",
			input:    `{"key1":"value1","nested":{"inner":"value"}}`,
			wantKeys: []string{"key1", "nested"},
		},
		{
			name:    "invalid JSON",
			input:   "not json",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m JSONMap
			err := m.Scan(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("JSONMap.Scan() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr {
				for _, key := range tt.wantKeys {
					if _, ok := m[key]; !ok {
						t.Errorf("JSONMap.Scan() missing key: %s", key)
					}
				}
			}
		})
	}
}

// TestReviewStatus tests ReviewStatus constants
func TestReviewStatus(t *testing.T) {
	statuses := []ReviewStatus{
		ReviewStatusDraft,
		ReviewStatusPending,
		ReviewStatusSubmitted,
	}

	expectedValues := []string{
		"draft",
		"pending",
		"submitted",
	}

	for i, status := range statuses {
		if string(status) != expectedValues[i] {
			t.Errorf("ReviewStatus = %s, want %s", status, expectedValues[i])
		}
	}
}

// TestRunStatus tests RunStatus constants
func TestRunStatus(t *testing.T) {
	statuses := []RunStatus{
		RunStatusRunning,
		RunStatusCompleted,
		RunStatusFailed,
		RunStatusCancelled,
	}

	expectedValues := []string{
		"running",
		"completed",
		"failed",
		"cancelled",
	}

	for i, status := range statuses {
		if string(status) != expectedValues[i] {
			t.Errorf("RunStatus = %s, want %s", status, expectedValues[i])
		}
	}
}

// TestCommentStatus tests CommentStatus constants
func TestCommentStatus(t *testing.T) {
	statuses := []CommentStatus{
		CommentStatusActive,
		CommentStatusDismissed,
		CommentStatusAdopted,
		CommentStatusSubmitted,
		CommentStatusDraft,
		CommentStatusInactive,
	}

	expectedValues := []string{
		"active",
		"dismissed",
		"adopted",
		"submitted",
		"draft",
		"inactive",
	}

	for i, status := range statuses {
		if string(status) != expectedValues[i] {
			t.Errorf("CommentStatus = %s, want %s", status, expectedValues[i])
		}
	}
}

// TestCommentInvariants exercises the file-level vs line-range invariant from
// the Comment model.
func TestCommentInvariants(t *testing.T) {
	fileLevel := Comment{IsFileLevel: true}
	if fileLevel.LineStart != nil || fileLevel.LineEnd != nil {
		t.Error("file-level comment should have nil line bounds")
	}

	start, end := 10, 20
	lineLevel := Comment{LineStart: &start, LineEnd: &end}
	if lineLevel.LineStart == nil || lineLevel.LineEnd == nil {
		t.Error("line-level comment should have non-nil line bounds")
	}
	if *lineLevel.LineStart > *lineLevel.LineEnd {
		t.Error("line_start must not exceed line_end")
	}
}

// TestAllModels tests the AllModels function
func TestAllModels(t *testing.T) {
	models := AllModels()
	if len(models) == 0 {
		t.Error("AllModels() returned empty slice")
	}

	hasReview := false
	hasAnalysisRun := false
	hasComment := false
	hasLocalDiff := false
	hasCouncil := false
	hasContextFile := false
	hasChatSession := false
	hasChatMessage := false
	hasRunLog := false
	hasRepoInstructions := false

	for _, m := range models {
		switch m.(type) {
		case *Review:
			hasReview = true
		case *AnalysisRun:
			hasAnalysisRun = true
		case *Comment:
			hasComment = true
		case *LocalDiffSnapshot:
			hasLocalDiff = true
		case *Council:
			hasCouncil = true
		case *ContextFile:
			hasContextFile = true
		case *ChatSession:
			hasChatSession = true
		case *ChatMessage:
			hasChatMessage = true
		case *RunLog:
			hasRunLog = true
		case *RepoInstructions:
			hasRepoInstructions = true
		}
	}

	if !hasReview {
		t.Error("AllModels() missing Review")
	}
	if !hasAnalysisRun {
		t.Error("AllModels() missing AnalysisRun")
	}
	if !hasComment {
		t.Error("AllModels() missing Comment")
	}
	if !hasLocalDiff {
		t.Error("AllModels() missing LocalDiffSnapshot")
	}
	if !hasCouncil {
		t.Error("AllModels() missing Council")
	}
	if !hasContextFile {
		t.Error("AllModels() missing ContextFile")
	}
	if !hasChatSession {
		t.Error("AllModels() missing ChatSession")
	}
	if !hasChatMessage {
		t.Error("AllModels() missing ChatMessage")
	}
	if !hasRunLog {
		t.Error("AllModels() missing RunLog")
	}
	if !hasRepoInstructions {
		t.Error("AllModels() missing RepoInstructions")
	}
}

// TestStringArrayRoundTrip tests saving and loading StringArray
func TestStringArrayRoundTrip(t *testing.T) {
	original := StringArray{"hello", "world", "test"}

	// Convert to driver.Value
	value, err := original.Value()
	if err != nil {
		t.Fatalf("Value() error: %v", err)
	}

	// Scan back
	var restored StringArray
	if err := restored.Scan(value); err != nil {
		t.Fatalf("Scan() error: %v", err)
	}

	// Compare
	if len(restored) != len(original) {
		t.Fatalf("Restored length = %d, want %d", len(restored), len(original))
	}
	for i := range original {
		if restored[i] != original[i] {
			t.Errorf("Restored[%d] = %s, want %s", i, restored[i], original[i])
		}
	}
}

// TestJSONMapRoundTrip tests saving and loading JSONMap
func TestJSONMapRoundTrip(t *testing.T) {
	original := JSONMap{
		"string": "value",
		"number": float64(42),
		"bool":   true,
		"nested": map[string]interface{}{
			"inner": "value",
		},
	}

	// Convert to driver.Value
	value, err := original.Value()
	if err != nil {
		t.Fatalf("Value() error: %v", err)
	}

	// Scan back
	var restored JSONMap
	if err := restored.Scan(value); err != nil {
		t.Fatalf("Scan() error: %v", err)
	}

	// Compare string value
	if restored["string"] != original["string"] {
		t.Errorf("Restored[string] = %v, want %v", restored["string"], original["string"])
	}

	// Compare number value
	if restored["number"] != original["number"] {
		t.Errorf("Restored[number] = %v, want %v", restored["number"], original["number"])
	}

	// Compare bool value
	if restored["bool"] != original["bool"] {
		t.Errorf("Restored[bool] = %v, want %v", restored["bool"], original["bool"])
	}
}
