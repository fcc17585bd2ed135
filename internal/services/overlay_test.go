package services

import (
	"encoding/json"
	"testing"

	"gorm.io/datatypes"

	"github.com/yungbote/labelsense-backend/internal/types"
)

func TestOverlayLiveFieldsInjects(t *testing.T) {
	score := 4.2
	note := "verified by curation team"
	product := &types.Product{CommunityScore: &score, CuratorNote: &note}
	stored := datatypes.JSON(`{"summary":"low sugar","ingredients":["water"]}`)

	merged, err := OverlayLiveFields(stored, product)
	if err != nil {
		t.Fatalf("OverlayLiveFields failed: %v", err)
	}

	var got map[string]interface{}
	if err := json.Unmarshal(merged, &got); err != nil {
		t.Fatalf("merged payload not valid JSON: %v", err)
	}
	if got["summary"] != "low sugar" {
		t.Fatalf("generated field lost: %v", got["summary"])
	}
	if got["community_score"] != 4.2 {
		t.Fatalf("community_score=%v, want 4.2", got["community_score"])
	}
	if got["curator_note"] != note {
		t.Fatalf("curator_note=%v, want %q", got["curator_note"], note)
	}
}

func TestOverlayLiveFieldsOverwritesStaleCopies(t *testing.T) {
	score := 1.5
	product := &types.Product{CommunityScore: &score}
	stored := datatypes.JSON(`{"summary":"ok","community_score":9.9}`)

	merged, err := OverlayLiveFields(stored, product)
	if err != nil {
		t.Fatalf("OverlayLiveFields failed: %v", err)
	}
	var got map[string]interface{}
	if err := json.Unmarshal(merged, &got); err != nil {
		t.Fatalf("merged payload not valid JSON: %v", err)
	}
	if got["community_score"] != 1.5 {
		t.Fatalf("live field not overwritten: %v", got["community_score"])
	}
}

func TestOverlayLiveFieldsSkipsUnsetFields(t *testing.T) {
	stored := datatypes.JSON(`{"summary":"ok"}`)

	merged, err := OverlayLiveFields(stored, &types.Product{})
	if err != nil {
		t.Fatalf("OverlayLiveFields failed: %v", err)
	}
	var got map[string]interface{}
	if err := json.Unmarshal(merged, &got); err != nil {
		t.Fatalf("merged payload not valid JSON: %v", err)
	}
	if _, ok := got["community_score"]; ok {
		t.Fatal("unset community_score was injected")
	}
	if _, ok := got["curator_note"]; ok {
		t.Fatal("unset curator_note was injected")
	}
}

func TestOverlayLiveFieldsDoesNotMutateStored(t *testing.T) {
	score := 3.0
	stored := datatypes.JSON(`{"summary":"ok"}`)
	before := string(stored)

	if _, err := OverlayLiveFields(stored, &types.Product{CommunityScore: &score}); err != nil {
		t.Fatalf("OverlayLiveFields failed: %v", err)
	}
	if string(stored) != before {
		t.Fatalf("stored analysis mutated: %q", string(stored))
	}
}

func TestOverlayLiveFieldsRejectsCorruptBlob(t *testing.T) {
	if _, err := OverlayLiveFields(datatypes.JSON(`{not json`), &types.Product{}); err == nil {
		t.Fatal("expected error for corrupt cached analysis")
	}
}
