package menu

// Default returns the compiled-in catalog for Sliceline Pizza.
// Used when no MENU_PATH override is configured.
func Default() *Catalog {
	return &Catalog{
		Name: "Sliceline Pizza",
		Items: []Item{
			{ID: "pizza-margherita", Name: "Margherita", Category: CategoryPizza, Price: 10.00,
				Description: "Fresh mozzarella, tomato sauce, and basil"},
			{ID: "pizza-pepperoni", Name: "Pepperoni", Category: CategoryPizza, Price: 12.00,
				Description: "Classic pepperoni with mozzarella"},
			{ID: "pizza-bbq-chicken", Name: "BBQ Chicken", Category: CategoryPizza, Price: 14.50,
				Description: "Grilled chicken, BBQ sauce, and red onions"},
			{ID: "pizza-veggie", Name: "Veggie Supreme", Category: CategoryPizza, Price: 13.00,
				Description: "Peppers, mushrooms, onions, and olives"},
			{ID: "pizza-hawaiian", Name: "Hawaiian", Category: CategoryPizza, Price: 12.50,
				Description: "Ham and pineapple"},
			{ID: "side-garlic-bread", Name: "Garlic Bread", Category: CategorySide, Price: 4.50,
				Description: "Toasted baguette with garlic butter"},
			{ID: "side-wings", Name: "Chicken Wings", Category: CategorySide, Price: 8.00,
				Description: "Eight wings with choice of sauce"},
			{ID: "side-mozzarella-sticks", Name: "Mozzarella Sticks", Category: CategorySide, Price: 6.00,
				Description: "Six sticks with marinara"},
			{ID: "drink-cola", Name: "Cola", Category: CategoryDrink, Price: 2.00,
				Description: "Two-liter bottle"},
			{ID: "drink-lemonade", Name: "Lemonade", Category: CategoryDrink, Price: 2.50,
				Description: "Fresh-squeezed"},
			{ID: "drink-water", Name: "Bottled Water", Category: CategoryDrink, Price: 1.00,
				Description: "Still water"},
			{ID: "dessert-brownie", Name: "Chocolate Brownie", Category: CategoryDessert, Price: 5.00,
				Description: "Warm fudge brownie"},
			{ID: "dessert-cinnamon-twists", Name: "Cinnamon Twists", Category: CategoryDessert, Price: 4.00,
				Description: "With icing dip"},
		},
		Sizes: []Size{
			{Name: "Small", Multiplier: 0.75},
			{Name: "Medium", Multiplier: 1.0},
			{Name: "Large", Multiplier: 1.5},
			{Name: "X-Large", Multiplier: 2.0},
		},
		Toppings: []Topping{
			{Name: "Extra Cheese", Price: 1.50},
			{Name: "Pepperoni", Price: 1.50},
			{Name: "Mushrooms", Price: 1.00},
			{Name: "Onions", Price: 0.75},
			{Name: "Olives", Price: 1.00},
			{Name: "Jalapenos", Price: 0.75},
			{Name: "Bacon", Price: 2.00},
			{Name: "Pineapple", Price: 1.00},
		},
		Aliases: map[string]string{
			"margarita":        "pizza-margherita",
			"cheese pizza":     "pizza-margherita",
			"pepperoni pizza":  "pizza-pepperoni",
			"barbecue chicken": "pizza-bbq-chicken",
			"veggie":           "pizza-veggie",
			"vegetarian pizza": "pizza-veggie",
			"wings":            "side-wings",
			"coke":             "drink-cola",
			"soda":             "drink-cola",
			"water":            "drink-water",
			"brownie":          "dessert-brownie",
		},
		Delivery: Delivery{
			Minimum:       15.00,
			Fee:           3.00,
			EstimatedTime: "30-45 minutes",
			RadiusMiles:   5,
		},
	}
}
