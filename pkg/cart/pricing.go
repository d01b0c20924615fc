package cart

import (
	"math"

	"github.com/sliceline/voiceorder/pkg/menu"
)

// Pricer computes line item totals from catalog size factors and topping
// surcharges. It is a pure function over its inputs and holds no state
// beyond the immutable catalog.
type Pricer struct {
	catalog *menu.Catalog
}

// NewPricer creates a Pricer backed by the given catalog.
func NewPricer(catalog *menu.Catalog) *Pricer {
	return &Pricer{catalog: catalog}
}

// Compute returns the total price for a line item:
// (base price x size multiplier + topping surcharges) x quantity,
// rounded to cents. Unknown size or topping names contribute nothing
// rather than failing, since voice transcription is noisy.
func (p *Pricer) Compute(item LineItem) float64 {
	unit := item.BasePrice
	if item.Size != "" {
		if mult, ok := p.catalog.SizeMultiplier(item.Size); ok {
			unit = item.BasePrice * mult
		}
	}

	var surcharge float64
	for _, name := range item.Customizations {
		if price, ok := p.catalog.ToppingPrice(name); ok {
			surcharge += price
		}
	}

	qty := item.Quantity
	if qty < 1 {
		qty = 1
	}

	return roundCents((unit + surcharge) * float64(qty))
}

// roundCents rounds to two decimal places. All cart money passes through
// here so the running total never accumulates sub-cent drift.
func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
