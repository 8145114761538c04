package entity

import "math"

// OrderType indicates how the order will be served.
type OrderType string

const (
	OrderTypeDineIn   OrderType = "dine_in"
	OrderTypeTakeAway OrderType = "take_away"
	OrderTypeDelivery OrderType = "delivery"
)

// String returns the string representation of the order type.
func (t OrderType) String() string {
	return string(t)
}

// PaymentMethod is the settlement channel chosen at checkout.
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentCard     PaymentMethod = "card"
	PaymentMobile   PaymentMethod = "mobile"
	PaymentPayLater PaymentMethod = "pay_later"
)

func (m PaymentMethod) String() string {
	return string(m)
}

// CartLine is one configured product instance inside an order: a menu item
// plus ingredient removals, priced add-ons, a kitchen note and flags.
type CartLine struct {
	ItemID    string  `json:"item_id"`
	ItemName  string  `json:"item_name"`
	BasePrice float64 `json:"base_price"`
	// Removals are kitchen instructions only and never change the price.
	Removals []string     `json:"removals,omitempty"`
	AddOns   []Ingredient `json:"add_ons,omitempty"`
	Quantity int          `json:"quantity"`
	Note     string       `json:"note,omitempty"`
	// OnTheHouse zeroes the unit price while keeping the line itemized.
	OnTheHouse bool `json:"on_the_house"`
	// ExistingItem marks a line already submitted in a prior order revision.
	// Such lines are quantity-immutable and need manager authorization to
	// remove.
	ExistingItem bool `json:"existing_item"`
}

// UnitPrice is the base item price plus every add-on price, or zero for an
// on-the-house line.
func (l *CartLine) UnitPrice() float64 {
	if l.OnTheHouse {
		return 0
	}
	price := l.BasePrice
	for _, a := range l.AddOns {
		price += a.Price
	}
	return price
}

// Subtotal is quantity times unit price.
func (l *CartLine) Subtotal() float64 {
	return float64(l.Quantity) * l.UnitPrice()
}

// Order is a single customer order owned by one terminal session. The order
// number is assigned by the submission service on finalization.
type Order struct {
	OrderNumber     string        `json:"order_number,omitempty"`
	Type            OrderType     `json:"type"`
	TableNumber     string        `json:"table_number"`
	Lines           []CartLine    `json:"lines"`
	DiscountPercent float64       `json:"discount_percent"`
	PaymentMethod   PaymentMethod `json:"payment_method,omitempty"`
	Note            string        `json:"note,omitempty"`
}

// RawTotal sums quantity times unit price over all lines, before discount.
func (o *Order) RawTotal() float64 {
	total := 0.0
	for i := range o.Lines {
		total += o.Lines[i].Subtotal()
	}
	return total
}

// Total applies the discount percentage to the raw total, rounded to two
// decimals.
func (o *Order) Total() float64 {
	return Round2(o.RawTotal() * (1 - o.DiscountPercent/100))
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
