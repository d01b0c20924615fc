package intent

import (
	"fmt"
	"strings"

	"github.com/sliceline/voiceorder/pkg/menu"
)

// Instructions builds the system prompt for the voice model from the
// catalog: the menu, customization options, delivery terms, and the rules
// for when to call each cart function.
func Instructions(c *menu.Catalog) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are a voice assistant for %s, a pizza restaurant. ", c.Name)
	b.WriteString("Your job is to help customers place orders by having a natural conversation and using functions to manage their cart.\n\n")

	b.WriteString("THE MENU:\n")
	writeCategory(&b, "PIZZAS", c.ByCategory(menu.CategoryPizza))
	writeCategory(&b, "SIDES", c.ByCategory(menu.CategorySide))
	writeCategory(&b, "DRINKS", c.ByCategory(menu.CategoryDrink))
	writeCategory(&b, "DESSERTS", c.ByCategory(menu.CategoryDessert))

	b.WriteString("\nCUSTOMIZATION OPTIONS:\n")
	b.WriteString("Sizes: ")
	for i, s := range c.Sizes {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(s.Name)
	}
	b.WriteString("\nToppings: ")
	for i, t := range c.Toppings {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s ($%.2f)", t.Name, t.Price)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "\nDELIVERY INFORMATION:\nMinimum Order: $%.2f\nDelivery Fee: $%.2f\nEstimated Time: %s\nDelivery Radius: %.0f miles\n",
		c.Delivery.Minimum, c.Delivery.Fee, c.Delivery.EstimatedTime, c.Delivery.RadiusMiles)

	b.WriteString(`
INSTRUCTIONS FOR CART MANAGEMENT:
1. When a customer wants to add an item to their cart, use the add_to_cart function.
2. When a customer wants to modify an item, use the modify_cart_item function.
3. When a customer wants to remove an item, use the remove_from_cart function.
4. When a customer wants to clear their entire cart, use the clear_cart function.
5. When a customer is ready to check out, use the checkout function.
6. When the customer shares their phone number, use the update_customer_phone_number function.
7. When the customer shares their address, use the update_customer_address function.
8. When the customer shares their name, use the update_customer_name function.

CONVERSATIONAL GUIDELINES:
1. Be friendly, helpful, and conversational.
2. Ask clarifying questions when needed (e.g., "What size would you like?").
3. Confirm orders before adding them to the cart.
4. Always acknowledge function results in your responses.
5. If a customer interrupts you, stop talking and listen to their request.
6. Do not use markdown formatting; your replies are spoken aloud.
7. Always ask whether the order is delivery or pickup, and collect the
customer's name, phone number, and address (address only for delivery)
before checking out.
8. After calling checkout, summarize the order with the total cost and
estimated delivery time.
`)

	return b.String()
}

func writeCategory(b *strings.Builder, heading string, items []menu.Item) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "%s:\n", heading)
	for _, it := range items {
		fmt.Fprintf(b, "- %s: $%.2f - %s\n", it.Name, it.Price, it.Description)
	}
}
