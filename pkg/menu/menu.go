// Package menu provides the read-only restaurant catalog: items, prices,
// size factors, topping surcharges, and the alias table used to tolerate
// noisy voice transcriptions.
package menu

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Category classifies a menu item.
type Category string

const (
	CategoryPizza   Category = "pizza"
	CategorySide    Category = "side"
	CategoryDrink   Category = "drink"
	CategoryDessert Category = "dessert"
)

// Item is a single orderable menu entry. Items are immutable catalog data.
type Item struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Category    Category `json:"category"`
	Price       float64  `json:"price"`
	Description string   `json:"description,omitempty"`
}

// Size is a named price multiplier (e.g. Large = 1.5x base price).
type Size struct {
	Name       string  `json:"name"`
	Multiplier float64 `json:"multiplier"`
}

// Topping is a named customization surcharge.
type Topping struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Delivery holds the restaurant's delivery terms, used only for the
// agent instruction text.
type Delivery struct {
	Minimum       float64 `json:"minimum"`
	Fee           float64 `json:"fee"`
	EstimatedTime string  `json:"estimated_time"`
	RadiusMiles   float64 `json:"radius_miles"`
}

// Catalog is the full restaurant menu. It is loaded once at startup and
// never mutated afterward, so lookups need no locking.
type Catalog struct {
	Name     string            `json:"name"`
	Items    []Item            `json:"items"`
	Sizes    []Size            `json:"sizes"`
	Toppings []Topping         `json:"toppings"`
	Aliases  map[string]string `json:"aliases,omitempty"` // alias -> item id
	Delivery Delivery          `json:"delivery"`
}

// Find looks up an item by exact case-insensitive name, then by alias.
// Returns false if nothing matches.
func (c *Catalog) Find(name string) (Item, bool) {
	search := strings.ToLower(strings.TrimSpace(name))
	if search == "" {
		return Item{}, false
	}

	for _, it := range c.Items {
		if strings.ToLower(it.Name) == search {
			return it, true
		}
	}

	if id, ok := c.Aliases[search]; ok {
		for _, it := range c.Items {
			if it.ID == id {
				return it, true
			}
		}
	}

	return Item{}, false
}

// SizeMultiplier returns the price multiplier for a size name,
// case-insensitive. Returns false for unknown sizes.
func (c *Catalog) SizeMultiplier(name string) (float64, bool) {
	search := strings.ToLower(name)
	for _, s := range c.Sizes {
		if strings.ToLower(s.Name) == search {
			return s.Multiplier, true
		}
	}
	return 0, false
}

// ToppingPrice returns the surcharge for a topping name, case-insensitive.
// Returns false for unknown toppings.
func (c *Catalog) ToppingPrice(name string) (float64, bool) {
	search := strings.ToLower(name)
	for _, t := range c.Toppings {
		if strings.ToLower(t.Name) == search {
			return t.Price, true
		}
	}
	return 0, false
}

// ByCategory returns all items in a category, in catalog order.
func (c *Catalog) ByCategory(cat Category) []Item {
	var items []Item
	for _, it := range c.Items {
		if it.Category == cat {
			items = append(items, it)
		}
	}
	return items
}

// LoadFile reads a catalog from a JSON file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("menu: read catalog: %w", err)
	}

	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("menu: parse catalog: %w", err)
	}

	if len(c.Items) == 0 {
		return nil, fmt.Errorf("menu: catalog %s has no items", path)
	}

	// Normalize alias keys once so Find can do a plain map lookup.
	if c.Aliases != nil {
		normalized := make(map[string]string, len(c.Aliases))
		for alias, id := range c.Aliases {
			normalized[strings.ToLower(alias)] = id
		}
		c.Aliases = normalized
	}

	return &c, nil
}
