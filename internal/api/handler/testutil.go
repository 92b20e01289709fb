// Package handler provides HTTP handlers for the API.
package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

// SetupTestRouter creates a Gin router for testing.
// It sets Gin to test mode and applies basic middleware.
func SetupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())
	return r
}

// CreateTestRequest creates an HTTP request for testing.
func CreateTestRequest(method, url string, body interface{}) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req, _ = http.NewRequest(method, url, bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, _ = http.NewRequest(method, url, nil)
	}
	return req
}

// DecodeJSON unmarshals a test recorder's body into v, failing the test on
// invalid JSON.
func DecodeJSON(t *testing.T, recorder *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), v); err != nil {
		t.Fatalf("response should be valid JSON: %v (body: %s)", err, recorder.Body.String())
	}
}

// AssertErrorResponse asserts that the response is an error response in the
// standard {code, message} shape with the expected status.
func AssertErrorResponse(t *testing.T, recorder *httptest.ResponseRecorder, expectedStatus int) {
	t.Helper()
	if recorder.Code != expectedStatus {
		t.Errorf("status code mismatch: got %d, want %d (body: %s)", recorder.Code, expectedStatus, recorder.Body.String())
	}

	var response map[string]interface{}
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("response should be valid JSON: %v", err)
	}

	_, hasCode := response["code"]
	_, hasMessage := response["message"]
	_, hasError := response["error"]
	if !hasError && !(hasCode && hasMessage) {
		t.Error("error response should contain either 'error' field or 'code' and 'message' fields")
	}
}
