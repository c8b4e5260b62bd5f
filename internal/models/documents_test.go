package models

import "testing"

func TestLookup(t *testing.T) {
	doc := defaultCivilization()

	if _, ok := Lookup(doc, "resources", "food"); !ok {
		t.Error("expected resources.food to exist")
	}
	if _, ok := Lookup(doc, "resources", "mana"); ok {
		t.Error("did not expect resources.mana to exist")
	}
	if _, ok := Lookup(doc, "population", "subkey"); ok {
		t.Error("scalar must not act as a record")
	}
}

func TestIntAt(t *testing.T) {
	doc := Document{
		"a": 1,
		"b": int64(2),
		"c": 3.0,
		"d": "four",
	}
	if got := IntAt(doc, "a"); got != 1 {
		t.Errorf("IntAt(a) = %d, want 1", got)
	}
	if got := IntAt(doc, "b"); got != 2 {
		t.Errorf("IntAt(b) = %d, want 2", got)
	}
	if got := IntAt(doc, "c"); got != 3 {
		t.Errorf("IntAt(c) = %d, want 3", got)
	}
	if got := IntAt(doc, "d"); got != 0 {
		t.Errorf("IntAt(d) = %d, want 0", got)
	}
	if got := IntAt(doc, "missing"); got != 0 {
		t.Errorf("IntAt(missing) = %d, want 0", got)
	}
}

func TestStringsAt(t *testing.T) {
	doc := Document{"seq": []any{"a", 1, "b"}}
	got := StringsAt(doc, "seq")
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("StringsAt = %v, want [a b]", got)
	}
	if StringsAt(doc, "missing") != nil {
		t.Error("expected nil for missing key")
	}
}
