// Package store provides test utilities for database testing.
package store

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/pairreview/pairreview/internal/database"
	"github.com/pairreview/pairreview/internal/model"
)

// SetupTestDB creates a temporary SQLite database for testing and returns a
// Store instance plus a cleanup function. The cleanup function should be
// called with defer in tests.
func SetupTestDB(t *testing.T) (Store, func()) {
	database.ResetForTesting()

	tmpFile, err := os.CreateTemp("", "pairreview_test_*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpPath := tmpFile.Name()
	tmpFile.Close()

	if err := database.InitWithPath(tmpPath); err != nil {
		os.Remove(tmpPath)
		t.Fatalf("failed to initialize test database: %v", err)
	}

	db := database.Get()
	st := NewStore(db)

	cleanup := func() {
		database.Close()
		database.ResetForTesting()
		os.Remove(tmpPath)
	}

	return st, cleanup
}

// CreateTestPRReview creates a test PR-backed Review with default values.
// Fields can be overridden by passing a function that modifies the review.
func CreateTestPRReview(t *testing.T, st Store, overrides ...func(*model.Review)) *model.Review {
	unique := fmt.Sprintf("%s-%d", t.Name(), time.Now().UnixNano())
	prNumber := 1

	review := &model.Review{
		ReviewType: model.ReviewTypePR,
		Status:     model.ReviewStatusPending,
		Repository: "github.com/test/" + unique,
		PRNumber:   &prNumber,
	}

	for _, override := range overrides {
		override(review)
	}

	if err := st.Review().CreatePR(review); err != nil {
		t.Fatalf("failed to create test PR review: %v", err)
	}

	return review
}

// CreateTestLocalReview creates a test local-diff Review with default values.
func CreateTestLocalReview(t *testing.T, st Store, overrides ...func(*model.Review)) *model.Review {
	unique := fmt.Sprintf("%s-%d", t.Name(), time.Now().UnixNano())

	review := &model.Review{
		ReviewType:   model.ReviewTypeLocal,
		Status:       model.ReviewStatusDraft,
		LocalPath:    "/tmp/" + unique,
		LocalHeadSHA: fmt.Sprintf("%040x", len(unique)),
	}

	for _, override := range overrides {
		override(review)
	}

	if err := st.Review().CreateLocal(review); err != nil {
		t.Fatalf("failed to create test local review: %v", err)
	}

	return review
}
