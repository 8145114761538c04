package entity

// Category groups menu items on the staff screen.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// MenuItem is reference data owned by the catalog service. Ingredients lists
// the names of the base ingredients, each of which a customer may remove.
type MenuItem struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Price       float64  `json:"price"`
	CategoryID  string   `json:"category_id"`
	Ingredients []string `json:"ingredients"`
}

// Ingredient is reference data used for add-ons. Price applies once per unit
// when the ingredient is added on top of a base item; base ingredients carry
// no price delta.
type Ingredient struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
}
