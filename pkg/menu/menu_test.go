package menu

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFind(t *testing.T) {
	c := Default()

	tests := []struct {
		name   string
		query  string
		wantID string
		found  bool
	}{
		{"exact name", "Margherita", "pizza-margherita", true},
		{"case insensitive", "mArGhErItA", "pizza-margherita", true},
		{"leading whitespace", "  Margherita ", "pizza-margherita", true},
		{"alias", "coke", "drink-cola", true},
		{"alias case insensitive", "Cheese Pizza", "pizza-margherita", true},
		{"unknown item", "Calzone", "", false},
		{"empty name", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, ok := c.Find(tt.query)
			if ok != tt.found {
				t.Fatalf("Find(%q) found = %v, want %v", tt.query, ok, tt.found)
			}
			if ok && item.ID != tt.wantID {
				t.Errorf("Find(%q) = %s, want %s", tt.query, item.ID, tt.wantID)
			}
		})
	}
}

func TestSizeMultiplier(t *testing.T) {
	c := Default()

	if m, ok := c.SizeMultiplier("large"); !ok || m != 1.5 {
		t.Errorf("SizeMultiplier(large) = %v, %v; want 1.5, true", m, ok)
	}
	if _, ok := c.SizeMultiplier("Gigantic"); ok {
		t.Error("unknown size should not match")
	}
}

func TestToppingPrice(t *testing.T) {
	c := Default()

	if p, ok := c.ToppingPrice("extra cheese"); !ok || p != 1.50 {
		t.Errorf("ToppingPrice(extra cheese) = %v, %v; want 1.50, true", p, ok)
	}
	if _, ok := c.ToppingPrice("gold leaf"); ok {
		t.Error("unknown topping should not match")
	}
}

func TestByCategory(t *testing.T) {
	c := Default()

	pizzas := c.ByCategory(CategoryPizza)
	if len(pizzas) == 0 {
		t.Fatal("no pizzas in default catalog")
	}
	for _, p := range pizzas {
		if p.Category != CategoryPizza {
			t.Errorf("item %s has category %s", p.ID, p.Category)
		}
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "menu.json")

	data := `{
		"name": "Test Pizza",
		"items": [
			{"id": "p1", "name": "Plain", "category": "pizza", "price": 8.5}
		],
		"sizes": [{"name": "Large", "multiplier": 1.5}],
		"toppings": [{"name": "Basil", "price": 0.5}],
		"aliases": {"CHEESE": "p1"}
	}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if _, ok := c.Find("plain"); !ok {
		t.Error("item from file not found")
	}

	// Alias keys are normalized to lowercase on load.
	if item, ok := c.Find("cheese"); !ok || item.ID != "p1" {
		t.Error("alias from file not resolved")
	}
}

func TestLoadFileErrors(t *testing.T) {
	if _, err := LoadFile("/nonexistent/menu.json"); err == nil {
		t.Error("expected error for missing file")
	}

	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.json")
	os.WriteFile(empty, []byte(`{"name":"x","items":[]}`), 0o644)
	if _, err := LoadFile(empty); err == nil {
		t.Error("expected error for catalog with no items")
	}
}
