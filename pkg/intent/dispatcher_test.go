package intent

import (
	"strings"
	"testing"

	"github.com/sliceline/voiceorder/pkg/cart"
	"github.com/sliceline/voiceorder/pkg/menu"
)

func newDispatcher() *Dispatcher {
	store := cart.NewStore(menu.Default())
	var profile cart.Profile
	return NewDispatcher(store, &profile)
}

func TestDispatchAdd(t *testing.T) {
	d := newDispatcher()

	res := d.Dispatch(AddToCart, `{"item":"Margherita","quantity":2}`)
	if !res.Success {
		t.Fatalf("add failed: %+v", res)
	}
	if res.Item == nil || res.Item.TotalPrice != 20.00 {
		t.Errorf("item = %+v, want total 20.00", res.Item)
	}
	if res.Total == nil || *res.Total != 20.00 {
		t.Errorf("total = %v, want 20.00", res.Total)
	}
}

func TestDispatchAddUnknownItem(t *testing.T) {
	d := newDispatcher()

	res := d.Dispatch(AddToCart, `{"item":"Lasagna"}`)
	if res.Success {
		t.Fatal("expected failure for unknown item")
	}
	if res.Error != ErrItemNotFound {
		t.Errorf("error = %s, want %s", res.Error, ErrItemNotFound)
	}
	if d.cart.Len() != 0 {
		t.Error("cart must be unchanged after a failed add")
	}
}

func TestDispatchParseFailure(t *testing.T) {
	d := newDispatcher()

	res := d.Dispatch(AddToCart, `{not json`)
	if res.Success || res.Error != ErrInvalidArguments {
		t.Errorf("result = %+v, want InvalidArguments failure", res)
	}
	if d.cart.Len() != 0 {
		t.Error("cart must be untouched on parse failure")
	}
}

func TestDispatchUnknownFunction(t *testing.T) {
	d := newDispatcher()

	res := d.Dispatch("order_sushi", `{}`)
	if res.Success || res.Error != ErrUnknownFunction {
		t.Errorf("result = %+v, want UnknownFunction failure", res)
	}
	if !strings.Contains(res.Message, "order_sushi") {
		t.Error("unknown-function message should name the function")
	}
}

func TestDispatchModify(t *testing.T) {
	d := newDispatcher()
	d.Dispatch(AddToCart, `{"item":"Margherita"}`)

	res := d.Dispatch(ModifyCartItem, `{"item":"margherita","changes":{"size":"Large"}}`)
	if !res.Success {
		t.Fatalf("modify failed: %+v", res)
	}
	if res.Item.TotalPrice != 15.00 {
		t.Errorf("modified total = %v, want 15.00", res.Item.TotalPrice)
	}
}

func TestDispatchRemove(t *testing.T) {
	d := newDispatcher()
	d.Dispatch(AddToCart, `{"item":"Cola"}`)

	res := d.Dispatch(RemoveFromCart, `{"item":"cola"}`)
	if !res.Success {
		t.Fatalf("remove failed: %+v", res)
	}
	if res.Total == nil || *res.Total != 0 {
		t.Errorf("total after remove = %v, want 0", res.Total)
	}

	res = d.Dispatch(RemoveFromCart, `{"item":"cola"}`)
	if res.Success || res.Error != ErrItemNotFound {
		t.Error("removing a missing item should fail with ItemNotFound")
	}
}

func TestDispatchClear(t *testing.T) {
	d := newDispatcher()

	res := d.Dispatch(ClearCart, "")
	if !res.Success || res.ItemsRemoved == nil || *res.ItemsRemoved != 0 {
		t.Errorf("clear on empty cart = %+v, want success with 0 removed", res)
	}

	d.Dispatch(AddToCart, `{"item":"Margherita"}`)
	d.Dispatch(AddToCart, `{"item":"Cola"}`)

	res = d.Dispatch(ClearCart, "{}")
	if *res.ItemsRemoved != 2 {
		t.Errorf("items removed = %d, want 2", *res.ItemsRemoved)
	}
}

func TestDispatchCheckout(t *testing.T) {
	t.Run("empty cart rejected", func(t *testing.T) {
		d := newDispatcher()
		res := d.Dispatch(Checkout, `{}`)
		if res.Success || res.Error != ErrEmptyCart {
			t.Errorf("result = %+v, want EmptyCart failure", res)
		}
	})

	t.Run("returns cart and signals UI", func(t *testing.T) {
		d := newDispatcher()
		d.Dispatch(AddToCart, `{"item":"Margherita","quantity":2}`)
		d.Dispatch(UpdateCustomerName, `{"name":"Ada"}`)
		d.Dispatch(UpdateCustomerAddr, `{"address":"1 Main St"}`)

		var signaled bool
		d.OnCheckout = func(state cart.State, profile cart.Profile) {
			signaled = true
			if state.Total != 20.00 {
				t.Errorf("checkout state total = %v, want 20.00", state.Total)
			}
		}

		res := d.Dispatch(Checkout, `{"delivery":true,"phone":"5550001111"}`)
		if !res.Success {
			t.Fatalf("checkout failed: %+v", res)
		}
		if !signaled {
			t.Error("checkout should invoke the UI callback")
		}
		if len(res.Cart) != 1 || *res.Total != 20.00 {
			t.Errorf("result cart = %+v total = %v", res.Cart, res.Total)
		}
		if d.profile.Phone != "5550001111" {
			t.Error("checkout phone should fold into the profile")
		}
		if res.Delivery == nil || !*res.Delivery {
			t.Error("result should surface the delivery choice")
		}
		if !strings.Contains(res.Message, "delivery") {
			t.Errorf("message = %q, want delivery mentioned", res.Message)
		}
		// Checkout must not clear the cart; only a confirmed order does.
		if d.cart.Len() != 1 {
			t.Error("cart must survive checkout")
		}
	})

	t.Run("delivery requires complete customer details", func(t *testing.T) {
		d := newDispatcher()
		d.Dispatch(AddToCart, `{"item":"Margherita"}`)

		res := d.Dispatch(Checkout, `{"delivery":true,"phone":"5550001111"}`)
		if res.Success || res.Error != ErrMissingCustomerInfo {
			t.Fatalf("result = %+v, want MissingCustomerInfo failure", res)
		}
		if !strings.Contains(res.Message, "a name") || !strings.Contains(res.Message, "a delivery address") {
			t.Errorf("message = %q, want the missing fields named", res.Message)
		}
		if d.cart.Len() != 1 {
			t.Error("a rejected checkout must not touch the cart")
		}
	})

	t.Run("pickup needs no address", func(t *testing.T) {
		d := newDispatcher()
		d.Dispatch(AddToCart, `{"item":"Margherita"}`)

		res := d.Dispatch(Checkout, `{"delivery":false}`)
		if !res.Success {
			t.Fatalf("pickup checkout failed: %+v", res)
		}
		if res.Delivery == nil || *res.Delivery {
			t.Error("result should surface the pickup choice")
		}
		if !strings.Contains(res.Message, "pickup") {
			t.Errorf("message = %q, want pickup mentioned", res.Message)
		}
	})
}

func TestDispatchCustomerUpdates(t *testing.T) {
	d := newDispatcher()

	d.Dispatch(UpdateCustomerName, `{"name":"Ada"}`)
	d.Dispatch(UpdateCustomerPhone, `{"phone":"5551234567"}`)
	d.Dispatch(UpdateCustomerAddr, `{"address":"1 Main St"}`)

	if d.profile.Name != "Ada" || d.profile.Phone != "5551234567" || d.profile.Address != "1 Main St" {
		t.Errorf("profile = %+v", d.profile)
	}

	// Short alias used by some model variants.
	res := d.Dispatch("update_customer_phone", `{"phone":"5559998888"}`)
	if !res.Success || d.profile.Phone != "5559998888" {
		t.Error("update_customer_phone alias should work")
	}

	// Profile persists across cart clears.
	d.Dispatch(AddToCart, `{"item":"Cola"}`)
	d.Dispatch(ClearCart, "")
	if d.profile.Name != "Ada" {
		t.Error("profile must survive clear_cart")
	}
}

func TestToolsCoverAllIntents(t *testing.T) {
	tools := Tools()
	byName := make(map[string]Tool, len(tools))
	for _, tool := range tools {
		byName[tool.Name] = tool
	}

	for _, name := range []string{
		AddToCart, ModifyCartItem, RemoveFromCart, ClearCart,
		Checkout, UpdateCustomerName, UpdateCustomerPhone, UpdateCustomerAddr,
	} {
		tool, ok := byName[name]
		if !ok {
			t.Errorf("no tool schema for intent %s", name)
			continue
		}
		if tool.Description == "" || tool.Parameters == nil {
			t.Errorf("tool %s missing description or parameters", name)
		}
	}
}

func TestInstructions(t *testing.T) {
	text := Instructions(menu.Default())

	for _, want := range []string{
		"Sliceline Pizza", "Margherita", "add_to_cart", "checkout",
		"PIZZAS", "Toppings",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("instructions missing %q", want)
		}
	}
}
