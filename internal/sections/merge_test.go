package sections

import "testing"

func threeDefaults() []map[string]any {
	return []map[string]any{
		{"id": "a", "title": "Default A", "description": "Desc A"},
		{"id": "b", "title": "Default B", "description": "Desc B"},
		{"id": "c", "title": "Default C", "description": "Desc C"},
	}
}

func TestMergeList_MissingListUsesDefaults(t *testing.T) {
	got := MergeList(nil, threeDefaults())
	if len(got) != 3 {
		t.Fatalf("expected 3 items, got %d", len(got))
	}
	for idx, want := range []string{"Default A", "Default B", "Default C"} {
		if got[idx]["title"] != want {
			t.Fatalf("expected item %d title %q, got %v", idx, want, got[idx]["title"])
		}
	}
}

func TestMergeList_ShorterListFillsFromDefaultsByIndex(t *testing.T) {
	provided := []map[string]any{
		{"title": "Custom 1", "description": "Custom desc 1"},
	}
	got := MergeList(provided, threeDefaults())
	if len(got) != 3 {
		t.Fatalf("expected merged length 3, got %d", len(got))
	}
	if got[0]["title"] != "Custom 1" || got[0]["description"] != "Custom desc 1" {
		t.Fatalf("expected provided item at index 0, got %v", got[0])
	}
	if got[1]["title"] != "Default B" || got[2]["title"] != "Default C" {
		t.Fatalf("expected defaults for remaining slots, got %v / %v", got[1], got[2])
	}
}

func TestMergeList_MissingSubFieldFromSameIndex(t *testing.T) {
	provided := []map[string]any{
		{"title": "Custom 1"},
		{"description": "Custom desc 2", "title": ""},
	}
	got := MergeList(provided, threeDefaults())
	if got[0]["title"] != "Custom 1" || got[0]["description"] != "Desc A" {
		t.Fatalf("expected title kept and description from default 0, got %v", got[0])
	}
	if got[1]["title"] != "Default B" || got[1]["description"] != "Custom desc 2" {
		t.Fatalf("expected blank title from default 1, got %v", got[1])
	}
}

func TestMergeList_ReorderWithoutIDsInheritsPositionally(t *testing.T) {
	provided := []map[string]any{
		{"title": "Was C"},
		{"title": "Was A"},
	}
	got := MergeList(provided, threeDefaults())
	if got[0]["description"] != "Desc A" || got[1]["description"] != "Desc B" {
		t.Fatalf("expected positional inheritance, got %v / %v", got[0], got[1])
	}
}

func TestMergeList_IDsDoNotChangeIndexing(t *testing.T) {
	got := MergeList([]map[string]any{{"id": "x"}, {"id": "a"}}, threeDefaults())
	if len(got) != 3 {
		t.Fatalf("expected merged length 3, got %d", len(got))
	}
	for idx, want := range []string{"Default A", "Default B", "Default C"} {
		if got[idx]["title"] != want {
			t.Fatalf("expected item %d title %q, got %v", idx, want, got[idx])
		}
	}

	got = MergeList([]map[string]any{{"id": "c", "title": "Custom"}}, threeDefaults())
	if got[0]["title"] != "Custom" || got[0]["description"] != "Desc A" {
		t.Fatalf("expected item 0 to inherit from default 0, got %v", got[0])
	}
	if got[1]["title"] != "Default B" || got[2]["title"] != "Default C" {
		t.Fatalf("expected remaining defaults in order, got %v / %v", got[1], got[2])
	}
}

func TestMergeList_LongerListKeepsExtraItems(t *testing.T) {
	provided := []map[string]any{{}, {}, {}, {"title": "Extra"}}
	got := MergeList(provided, threeDefaults())
	if len(got) != 4 {
		t.Fatalf("expected 4 items, got %d", len(got))
	}
	if got[3]["title"] != "Extra" {
		t.Fatalf("expected extra item kept, got %v", got[3])
	}
	if _, ok := got[3]["description"]; ok {
		t.Fatalf("expected extra item without default description, got %v", got[3])
	}
}

func TestMergeItem_NestedObjects(t *testing.T) {
	got := MergeItem(
		map[string]any{"promo": map[string]any{"title": "Custom"}},
		map[string]any{"promo": map[string]any{"title": "Default", "description": "Default desc"}},
	)
	promo, ok := got["promo"].(map[string]any)
	if !ok {
		t.Fatalf("expected promo object, got %T", got["promo"])
	}
	if promo["title"] != "Custom" || promo["description"] != "Default desc" {
		t.Fatalf("expected nested merge, got %v", promo)
	}
}

func TestMergeList_DoesNotMutateDefaults(t *testing.T) {
	defaults := threeDefaults()
	got := MergeList([]map[string]any{{"title": "Changed"}}, defaults)
	got[1]["title"] = "mutated"
	if defaults[0]["title"] != "Default A" || defaults[1]["title"] != "Default B" {
		t.Fatalf("expected defaults untouched, got %v", defaults)
	}
}
