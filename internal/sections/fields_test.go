package sections

import "testing"

func TestDecode_Tolerant(t *testing.T) {
	if got := Decode(nil); len(got) != 0 {
		t.Fatalf("expected empty map for nil, got %v", got)
	}
	if got := Decode([]byte(`[1,2]`)); len(got) != 0 {
		t.Fatalf("expected empty map for array, got %v", got)
	}
	if got := Decode([]byte(`{broken`)); len(got) != 0 {
		t.Fatalf("expected empty map for invalid json, got %v", got)
	}
	if got := Decode([]byte(`{"title":"x"}`)); got["title"] != "x" {
		t.Fatalf("expected title x, got %v", got)
	}
}

func TestFieldAccessors(t *testing.T) {
	fields := Decode([]byte(`{
		"title": "  Hello ",
		"empty": "",
		"count": 4,
		"count_text": "7",
		"promo": {"title": "Promo"},
		"cards": [{"title": "one"}, "oops", null],
		"features": ["a", "", 3, "b"],
		"not_list": "x"
	}`))

	if got := String(fields, "title", "def"); got != "Hello" {
		t.Fatalf("expected trimmed title, got %q", got)
	}
	if got := String(fields, "empty", "def"); got != "def" {
		t.Fatalf("expected default for empty string, got %q", got)
	}
	if got := String(fields, "count", "def"); got != "def" {
		t.Fatalf("expected default for non-string, got %q", got)
	}
	if got := String(fields, "promo.title", "def"); got != "Promo" {
		t.Fatalf("expected nested lookup, got %q", got)
	}
	if got := String(fields, "title.deeper", "def"); got != "def" {
		t.Fatalf("expected default for path through string, got %q", got)
	}
	if got := Int(fields, "count", 0); got != 4 {
		t.Fatalf("expected 4, got %d", got)
	}
	if got := Int(fields, "count_text", 0); got != 7 {
		t.Fatalf("expected 7, got %d", got)
	}
	cards := List(fields, "cards")
	if len(cards) != 3 {
		t.Fatalf("expected 3 positions preserved, got %d", len(cards))
	}
	if len(cards[1]) != 0 || len(cards[2]) != 0 {
		t.Fatalf("expected non-object entries as empty objects, got %v", cards)
	}
	if got := List(fields, "not_list"); got != nil {
		t.Fatalf("expected nil for non-list, got %v", got)
	}
	features := StringList(fields, "features", nil)
	if len(features) != 2 || features[0] != "a" || features[1] != "b" {
		t.Fatalf("expected [a b], got %v", features)
	}
	if got := StringList(fields, "missing", []string{"d"}); len(got) != 1 || got[0] != "d" {
		t.Fatalf("expected default list, got %v", got)
	}
}
