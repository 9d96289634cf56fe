package types

import (
	"encoding/json"
	"testing"
)

func TestNullableUUIDDistinguishesNullFromAbsent(t *testing.T) {
	type payload struct {
		CategoryID NullableUUID `json:"category_id"`
	}

	var got payload
	if err := json.Unmarshal([]byte(`{"category_id": "00000000-0000-0000-0000-000000000001"}`), &got); err != nil {
		t.Fatalf("unmarshal value: %v", err)
	}
	if !got.CategoryID.Valid || got.CategoryID.Value == nil {
		t.Fatalf("expected valid uuid, got %+v", got.CategoryID)
	}
	if got.CategoryID.Value.String() != "00000000-0000-0000-0000-000000000001" {
		t.Fatalf("unexpected uuid %s", got.CategoryID.Value)
	}

	got = payload{}
	if err := json.Unmarshal([]byte(`{"category_id": null}`), &got); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if !got.CategoryID.Valid || got.CategoryID.Value != nil {
		t.Fatalf("explicit null should clear the value, got %+v", got.CategoryID)
	}

	got = payload{}
	if err := json.Unmarshal([]byte(`{}`), &got); err != nil {
		t.Fatalf("unmarshal missing: %v", err)
	}
	if got.CategoryID.Valid {
		t.Fatalf("missing key must not count as set, got %+v", got.CategoryID)
	}
}

func TestNullableUUIDCloneCopiesValue(t *testing.T) {
	var src NullableUUID
	if err := json.Unmarshal([]byte(`"00000000-0000-0000-0000-000000000002"`), &src); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	dup := src.Clone()
	if dup.Value == src.Value {
		t.Fatal("clone shares the pointer with the source")
	}
	if *dup.Value != *src.Value {
		t.Fatalf("clone changed the value: %s vs %s", dup.Value, src.Value)
	}
}
