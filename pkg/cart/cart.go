// Package cart implements the shopping cart for a voice ordering session:
// line items, incremental total maintenance, and price computation against
// the restaurant catalog.
package cart

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sliceline/voiceorder/pkg/menu"
)

// ErrItemNotFound is returned when a name matches neither the catalog
// (for Add) nor any cart line item (for Modify/Remove).
var ErrItemNotFound = errors.New("cart: item not found")

// LineItem is one entry in the cart. The ID is generated at creation and
// stable for the item's lifetime. TotalPrice is derived and recomputed on
// every mutation.
type LineItem struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	BasePrice      float64  `json:"base_price"`
	Quantity       int      `json:"quantity"`
	Size           string   `json:"size,omitempty"`
	Customizations []string `json:"customizations,omitempty"`
	TotalPrice     float64  `json:"total_price"`
}

// Changes describes a partial update for Modify. Nil fields are left
// untouched.
type Changes struct {
	Quantity       *int      `json:"quantity,omitempty"`
	Size           *string   `json:"size,omitempty"`
	Customizations *[]string `json:"customizations,omitempty"`
}

// State is a read-only snapshot of the cart for rendering and checkout.
type State struct {
	Items []LineItem `json:"items"`
	Total float64    `json:"total"`
}

// Store owns the cart line items and running total for one session.
// It is not safe for concurrent use; the owning session serializes access.
type Store struct {
	catalog *menu.Catalog
	pricer  *Pricer
	items   []LineItem
	total   float64
}

// NewStore creates an empty cart backed by the given catalog.
func NewStore(catalog *menu.Catalog) *Store {
	return &Store{
		catalog: catalog,
		pricer:  NewPricer(catalog),
	}
}

// Add resolves name against the catalog and appends a new line item.
// Quantity below 1 is treated as 1. Returns ErrItemNotFound on a catalog
// miss, leaving the cart unchanged.
func (s *Store) Add(name string, quantity int, size string, customizations []string) (LineItem, error) {
	menuItem, ok := s.catalog.Find(name)
	if !ok {
		return LineItem{}, ErrItemNotFound
	}

	if quantity < 1 {
		quantity = 1
	}

	item := LineItem{
		ID:             uuid.NewString(),
		Name:           menuItem.Name,
		BasePrice:      menuItem.Price,
		Quantity:       quantity,
		Size:           size,
		Customizations: append([]string(nil), customizations...),
	}
	item.TotalPrice = s.pricer.Compute(item)

	s.items = append(s.items, item)
	s.total = roundCents(s.total + item.TotalPrice)

	return item, nil
}

// Modify applies a partial update to the first line item whose name matches
// case-insensitively, recomputes its price, and adjusts the running total
// by the delta. When several items share a name only the first is touched.
func (s *Store) Modify(name string, changes Changes) (LineItem, error) {
	idx := s.indexByName(name)
	if idx < 0 {
		return LineItem{}, ErrItemNotFound
	}

	item := &s.items[idx]
	oldTotal := item.TotalPrice

	if changes.Quantity != nil {
		q := *changes.Quantity
		if q < 1 {
			q = 1
		}
		item.Quantity = q
	}
	if changes.Size != nil {
		item.Size = *changes.Size
	}
	if changes.Customizations != nil {
		item.Customizations = append([]string(nil), (*changes.Customizations)...)
	}

	item.TotalPrice = s.pricer.Compute(*item)
	s.total = roundCents(s.total - oldTotal + item.TotalPrice)

	return *item, nil
}

// Remove deletes the first line item whose name matches case-insensitively
// and decrements the running total by its price.
func (s *Store) Remove(name string) (LineItem, error) {
	idx := s.indexByName(name)
	if idx < 0 {
		return LineItem{}, ErrItemNotFound
	}

	removed := s.items[idx]
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	s.total = roundCents(s.total - removed.TotalPrice)

	return removed, nil
}

// Clear empties the cart and returns how many items were removed.
// Clearing an empty cart is a valid no-op.
func (s *Store) Clear() int {
	n := len(s.items)
	s.items = nil
	s.total = 0
	return n
}

// Len returns the number of line items.
func (s *Store) Len() int {
	return len(s.items)
}

// Total returns the running total.
func (s *Store) Total() float64 {
	return s.total
}

// Snapshot returns a copy of the cart state. Mutating the snapshot does
// not affect the store.
func (s *Store) Snapshot() State {
	items := make([]LineItem, len(s.items))
	copy(items, s.items)
	for i := range items {
		items[i].Customizations = append([]string(nil), items[i].Customizations...)
	}
	return State{Items: items, Total: s.total}
}

func (s *Store) indexByName(name string) int {
	search := strings.ToLower(strings.TrimSpace(name))
	if search == "" {
		return -1
	}
	for i, item := range s.items {
		if strings.ToLower(item.Name) == search {
			return i
		}
	}
	return -1
}
