package store

import (
	"testing"

	"github.com/pairreview/pairreview/internal/model"
	"github.com/pairreview/pairreview/pkg/idgen"
)

func TestCouncilStore_CreateAndGetByID(t *testing.T) {
	st, cleanup := SetupTestDB(t)
	defer cleanup()

	council := &model.Council{
		ID:   idgen.NewID(),
		Name: "security council",
		Type: model.CouncilTypeCouncil,
		Config: model.JSONMap{
			"1": []interface{}{map[string]interface{}{"provider": "claude", "model": "sonnet"}},
		},
	}

	if err := st.Council().Create(council); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	found, err := st.Council().GetByID(council.ID)
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if found.Name != "security council" {
		t.Errorf("expected name to match, got %s", found.Name)
	}
}

func TestCouncilStore_Create_RequiresName(t *testing.T) {
	st, cleanup := SetupTestDB(t)
	defer cleanup()

	err := st.Council().Create(&model.Council{ID: idgen.NewID()})
	if err == nil {
		t.Fatal("expected error for missing name")
	}
}

func TestCouncilStore_List_OrdersByMostRecentlyUsed(t *testing.T) {
	st, cleanup := SetupTestDB(t)
	defer cleanup()

	older := &model.Council{ID: idgen.NewID(), Name: "older", Type: model.CouncilTypeAdvanced}
	newer := &model.Council{ID: idgen.NewID(), Name: "newer", Type: model.CouncilTypeAdvanced}
	if err := st.Council().Create(older); err != nil {
		t.Fatalf("Create() older failed: %v", err)
	}
	if err := st.Council().Create(newer); err != nil {
		t.Fatalf("Create() newer failed: %v", err)
	}

	if err := st.Council().TouchLastUsed(older.ID); err != nil {
		t.Fatalf("TouchLastUsed() failed: %v", err)
	}

	councils, err := st.Council().List()
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(councils) != 2 {
		t.Fatalf("expected 2 councils, got %d", len(councils))
	}
	if councils[0].ID != older.ID {
		t.Errorf("expected touched council first, got %s", councils[0].ID)
	}
}

func TestCouncilStore_Update(t *testing.T) {
	st, cleanup := SetupTestDB(t)
	defer cleanup()

	council := &model.Council{ID: idgen.NewID(), Name: "draft", Type: model.CouncilTypeAdvanced}
	if err := st.Council().Create(council); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	council.Name = "finalized"
	if err := st.Council().Update(council); err != nil {
		t.Fatalf("Update() failed: %v", err)
	}

	found, err := st.Council().GetByID(council.ID)
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if found.Name != "finalized" {
		t.Errorf("expected updated name, got %s", found.Name)
	}
}

func TestCouncilStore_Delete(t *testing.T) {
	st, cleanup := SetupTestDB(t)
	defer cleanup()

	council := &model.Council{ID: idgen.NewID(), Name: "temp", Type: model.CouncilTypeAdvanced}
	if err := st.Council().Create(council); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	if err := st.Council().Delete(council.ID); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err := st.Council().GetByID(council.ID); err == nil {
		t.Error("expected error loading deleted council")
	}
}
