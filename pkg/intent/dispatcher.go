// Package intent maps function-call intents from the voice model onto
// cart and customer-profile mutations, and defines the tool schemas and
// instruction prompt advertised to the model.
package intent

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sliceline/voiceorder/pkg/cart"
)

// Intent names understood by the dispatcher.
const (
	AddToCart           = "add_to_cart"
	ModifyCartItem      = "modify_cart_item"
	RemoveFromCart      = "remove_from_cart"
	ClearCart           = "clear_cart"
	Checkout            = "checkout"
	UpdateCustomerName  = "update_customer_name"
	UpdateCustomerPhone = "update_customer_phone_number"
	UpdateCustomerAddr  = "update_customer_address"
)

// Dispatcher routes named intents to cart and profile mutations.
// It is not safe for concurrent use; the owning session serializes access.
type Dispatcher struct {
	cart    *cart.Store
	profile *cart.Profile

	// OnCheckout, when set, is invoked after a successful checkout intent
	// so the UI collaborator can start its confirmation flow. Checkout
	// never clears the cart itself; that happens only when a human
	// confirms in the UI.
	OnCheckout func(state cart.State, profile cart.Profile)
}

// NewDispatcher creates a dispatcher over the given cart and profile.
func NewDispatcher(store *cart.Store, profile *cart.Profile) *Dispatcher {
	return &Dispatcher{cart: store, profile: profile}
}

// Dispatch parses rawArgs and routes the named intent. Parse failures and
// unknown intents are reported in the result without touching any state.
func (d *Dispatcher) Dispatch(name, rawArgs string) Result {
	if rawArgs == "" {
		rawArgs = "{}"
	}

	switch name {
	case AddToCart:
		var args struct {
			Item           string   `json:"item"`
			Quantity       int      `json:"quantity"`
			Size           string   `json:"size"`
			Customizations []string `json:"customizations"`
		}
		if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
			return failure(ErrInvalidArguments, "could not parse add_to_cart arguments")
		}
		return d.add(args.Item, args.Quantity, args.Size, args.Customizations)

	case ModifyCartItem:
		var args struct {
			Item    string       `json:"item"`
			Changes cart.Changes `json:"changes"`
		}
		if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
			return failure(ErrInvalidArguments, "could not parse modify_cart_item arguments")
		}
		return d.modify(args.Item, args.Changes)

	case RemoveFromCart:
		var args struct {
			Item string `json:"item"`
		}
		if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
			return failure(ErrInvalidArguments, "could not parse remove_from_cart arguments")
		}
		return d.remove(args.Item)

	case ClearCart:
		n := d.cart.Clear()
		return Result{
			Success:      true,
			Message:      "cart cleared",
			ItemsRemoved: intPtr(n),
			Total:        totalPtr(0),
		}

	case Checkout:
		var args struct {
			Delivery *bool  `json:"delivery"`
			Address  string `json:"address"`
			Phone    string `json:"phone"`
		}
		if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
			return failure(ErrInvalidArguments, "could not parse checkout arguments")
		}
		return d.checkout(args.Delivery, args.Address, args.Phone)

	case UpdateCustomerName:
		var args struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
			return failure(ErrInvalidArguments, "could not parse customer name arguments")
		}
		d.profile.Name = args.Name
		return Result{Success: true, Message: "customer name updated", Customer: d.profile}

	case UpdateCustomerPhone, "update_customer_phone":
		var args struct {
			Phone string `json:"phone"`
		}
		if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
			return failure(ErrInvalidArguments, "could not parse customer phone arguments")
		}
		d.profile.Phone = args.Phone
		return Result{Success: true, Message: "customer phone updated", Customer: d.profile}

	case UpdateCustomerAddr:
		var args struct {
			Address string `json:"address"`
		}
		if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
			return failure(ErrInvalidArguments, "could not parse customer address arguments")
		}
		d.profile.Address = args.Address
		return Result{Success: true, Message: "customer address updated", Customer: d.profile}

	default:
		return failure(ErrUnknownFunction, fmt.Sprintf("unknown function %q", name))
	}
}

func (d *Dispatcher) add(name string, quantity int, size string, customizations []string) Result {
	item, err := d.cart.Add(name, quantity, size, customizations)
	if err != nil {
		return failure(ErrItemNotFound, fmt.Sprintf("item %q not found on the menu", name))
	}
	return Result{
		Success: true,
		Message: fmt.Sprintf("added %dx %s", item.Quantity, item.Name),
		Item:    &item,
		Total:   totalPtr(d.cart.Total()),
	}
}

func (d *Dispatcher) modify(name string, changes cart.Changes) Result {
	item, err := d.cart.Modify(name, changes)
	if err != nil {
		return failure(ErrItemNotFound, fmt.Sprintf("item %q not found in the cart", name))
	}
	return Result{
		Success: true,
		Message: fmt.Sprintf("updated %s", item.Name),
		Item:    &item,
		Total:   totalPtr(d.cart.Total()),
	}
}

func (d *Dispatcher) remove(name string) Result {
	item, err := d.cart.Remove(name)
	if err != nil {
		return failure(ErrItemNotFound, fmt.Sprintf("item %q not found in the cart", name))
	}
	return Result{
		Success: true,
		Message: fmt.Sprintf("removed %s", item.Name),
		Item:    &item,
		Total:   totalPtr(d.cart.Total()),
	}
}

func (d *Dispatcher) checkout(delivery *bool, address, phone string) Result {
	if d.cart.Len() == 0 {
		return failure(ErrEmptyCart, "the cart is empty")
	}

	// The model sometimes repeats contact details in the checkout call;
	// fold them into the profile rather than dropping them.
	if address != "" {
		d.profile.Address = address
	}
	if phone != "" {
		d.profile.Phone = phone
	}

	forDelivery := delivery != nil && *delivery
	if forDelivery && !d.profile.Complete() {
		return failure(ErrMissingCustomerInfo,
			"delivery needs "+strings.Join(d.missingDetails(), " and "))
	}

	state := d.cart.Snapshot()
	if d.OnCheckout != nil {
		d.OnCheckout(state, *d.profile)
	}

	message := "checkout started, awaiting confirmation"
	if delivery != nil {
		if forDelivery {
			message = "checkout started for delivery, awaiting confirmation"
		} else {
			message = "checkout started for pickup, awaiting confirmation"
		}
	}

	return Result{
		Success:  true,
		Message:  message,
		Cart:     state.Items,
		Total:    totalPtr(state.Total),
		Delivery: delivery,
		Customer: d.profile,
	}
}

// missingDetails lists the profile fields still needed for delivery, in
// words the model can relay to the customer.
func (d *Dispatcher) missingDetails() []string {
	var missing []string
	if d.profile.Name == "" {
		missing = append(missing, "a name")
	}
	if d.profile.Phone == "" {
		missing = append(missing, "a phone number")
	}
	if d.profile.Address == "" {
		missing = append(missing, "a delivery address")
	}
	return missing
}
