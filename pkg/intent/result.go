package intent

import (
	"encoding/json"

	"github.com/sliceline/voiceorder/pkg/cart"
)

// Error codes reported in results. These flow back to the speech model,
// which narrates them to the customer, so none of them are fatal.
const (
	ErrItemNotFound        = "ItemNotFound"
	ErrInvalidArguments    = "InvalidArguments"
	ErrUnknownFunction     = "UnknownFunction"
	ErrEmptyCart           = "EmptyCart"
	ErrMissingCustomerInfo = "MissingCustomerInfo"
)

// Result is the outcome of dispatching one intent. It is the contract
// surface the speech model consumes to phrase its reply, so successful
// results carry the mutated item, the cart, and the running total rather
// than a bare boolean.
type Result struct {
	Success      bool            `json:"success"`
	Error        string          `json:"error,omitempty"`
	Message      string          `json:"message,omitempty"`
	Item         *cart.LineItem  `json:"item,omitempty"`
	Cart         []cart.LineItem `json:"cart,omitempty"`
	Total        *float64        `json:"total,omitempty"`
	ItemsRemoved *int            `json:"items_removed,omitempty"`
	Delivery     *bool           `json:"delivery,omitempty"`
	Customer     *cart.Profile   `json:"customer,omitempty"`
	Warning      string          `json:"warning,omitempty"`
}

// JSON returns the result encoded for the model. Encoding a Result cannot
// fail, so errors are swallowed into an empty object.
func (r Result) JSON() string {
	data, err := json.Marshal(r)
	if err != nil {
		return "{}"
	}
	return string(data)
}

func failure(code, message string) Result {
	return Result{Success: false, Error: code, Message: message}
}

func totalPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }
