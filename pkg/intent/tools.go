package intent

// Tool describes one function the voice model may call, as a JSON schema
// in the shape the Realtime API expects.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Tools returns the function definitions advertised to the model. Every
// intent the dispatcher routes has a schema here.
func Tools() []Tool {
	sizeEnum := []string{"Small", "Medium", "Large", "X-Large"}

	return []Tool{
		{
			Name:        AddToCart,
			Description: "Add an item to the customer's cart",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"item": map[string]any{
						"type":        "string",
						"description": "The name of the menu item to add",
					},
					"quantity": map[string]any{
						"type":        "integer",
						"description": "The quantity of the item to add",
						"default":     1,
					},
					"size": map[string]any{
						"type":        "string",
						"description": "The size of the item",
						"enum":        sizeEnum,
						"default":     "Medium",
					},
					"customizations": map[string]any{
						"type":        "array",
						"items":       map[string]any{"type": "string"},
						"description": "Any customizations for the item (extra toppings, etc.)",
					},
				},
				"required": []string{"item"},
			},
		},
		{
			Name:        ModifyCartItem,
			Description: "Modify an existing item in the customer's cart",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"item": map[string]any{
						"type":        "string",
						"description": "The name of the menu item to modify",
					},
					"changes": map[string]any{
						"type":        "object",
						"description": "Changes to make to the item",
						"properties": map[string]any{
							"quantity": map[string]any{
								"type":        "integer",
								"description": "The new quantity of the item",
							},
							"size": map[string]any{
								"type":        "string",
								"description": "The new size of the item",
								"enum":        sizeEnum,
							},
							"customizations": map[string]any{
								"type":        "array",
								"items":       map[string]any{"type": "string"},
								"description": "The new customizations for the item",
							},
						},
					},
				},
				"required": []string{"item", "changes"},
			},
		},
		{
			Name:        RemoveFromCart,
			Description: "Remove an item from the customer's cart",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"item": map[string]any{
						"type":        "string",
						"description": "The name of the menu item to remove",
					},
				},
				"required": []string{"item"},
			},
		},
		{
			Name:        ClearCart,
			Description: "Clear all items from the customer's cart",
			Parameters: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},
		{
			Name:        Checkout,
			Description: "Process the customer's order for checkout",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"delivery": map[string]any{
						"type":        "boolean",
						"description": "Whether the customer wants delivery or pickup",
						"default":     true,
					},
					"address": map[string]any{
						"type":        "string",
						"description": "Delivery address if applicable",
					},
					"phone": map[string]any{
						"type":        "string",
						"description": "Customer's phone number",
					},
				},
			},
		},
		{
			Name:        UpdateCustomerName,
			Description: "Update the customer's name for the order",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"name": map[string]any{
						"type":        "string",
						"description": "The customer's name",
					},
				},
				"required": []string{"name"},
			},
		},
		{
			Name:        UpdateCustomerPhone,
			Description: "Update the customer's phone number for the order",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"phone": map[string]any{
						"type":        "string",
						"description": "The customer's phone number",
					},
				},
				"required": []string{"phone"},
			},
		},
		{
			Name:        UpdateCustomerAddr,
			Description: "Update the customer's address for delivery",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"address": map[string]any{
						"type":        "string",
						"description": "The customer's delivery address",
					},
				},
				"required": []string{"address"},
			},
		},
	}
}
