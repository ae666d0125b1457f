package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrDuplicateEntry = errors.New("duplicate cart entry")
	ErrInvalidAmount  = errors.New("cart entry amount must be at least 1")
)

type CartEntry struct {
	Product
	Amount int `json:"amount"`
}

// cartEntryFields is the flat JSON shape of an entry without its catalog
// extras.
type cartEntryFields struct {
	productFields
	Amount int `json:"amount"`
}

// MarshalJSON writes the product attributes and amount as one flat object.
func (e CartEntry) MarshalJSON() ([]byte, error) {
	return marshalFlat(cartEntryFields{productFields(e.Product), e.Amount}, e.Attributes)
}

func (e *CartEntry) UnmarshalJSON(data []byte) error {
	var f cartEntryFields
	extra, err := unmarshalFlat(data, &f, append(productKeys, "amount")...)
	if err != nil {
		return err
	}
	e.Product = Product(f.productFields)
	e.Product.Attributes = extra
	e.Amount = f.Amount
	return nil
}

// WithAmount returns a copy of the entry carrying the given amount.
func (e CartEntry) WithAmount(amount int) CartEntry {
	e.Amount = amount
	return e
}

// Subtotal is price times amount.
func (e CartEntry) Subtotal() float64 {
	return e.Price * float64(e.Amount)
}

// Cart is an ordered list of entries, unique by product ID.
// Methods never modify the receiver; they return a new slice.
type Cart []CartEntry

// Find returns the index of the entry for productID and whether it exists.
func (c Cart) Find(productID int64) (int, bool) {
	for i, e := range c {
		if e.ID == productID {
			return i, true
		}
	}
	return -1, false
}

func (c Cart) Clone() Cart {
	out := make(Cart, len(c))
	copy(out, c)
	return out
}

// Append returns a cart with entry added at the end.
func (c Cart) Append(entry CartEntry) Cart {
	out := make(Cart, 0, len(c)+1)
	out = append(out, c...)
	return append(out, entry)
}

// Without returns a cart with the entry at index spliced out.
func (c Cart) Without(index int) Cart {
	out := make(Cart, 0, len(c)-1)
	out = append(out, c[:index]...)
	return append(out, c[index+1:]...)
}

// Replace returns a cart with the entry at index swapped for entry.
func (c Cart) Replace(index int, entry CartEntry) Cart {
	out := c.Clone()
	out[index] = entry
	return out
}

// Validate checks that product IDs are unique and every amount is positive.
func (c Cart) Validate() error {
	seen := make(map[int64]struct{}, len(c))
	for _, e := range c {
		if _, ok := seen[e.ID]; ok {
			return fmt.Errorf("product %d: %w", e.ID, ErrDuplicateEntry)
		}
		seen[e.ID] = struct{}{}
		if e.Amount < 1 {
			return fmt.Errorf("product %d: %w", e.ID, ErrInvalidAmount)
		}
	}
	return nil
}

// Total sums the subtotal of every entry.
func (c Cart) Total() float64 {
	var total float64
	for _, e := range c {
		total += e.Subtotal()
	}
	return total
}

// Count sums the amounts of every entry.
func (c Cart) Count() int {
	n := 0
	for _, e := range c {
		n += e.Amount
	}
	return n
}

// EncodeCart serializes the cart as a JSON array. A nil cart encodes as [].
func EncodeCart(c Cart) ([]byte, error) {
	if c == nil {
		c = Cart{}
	}
	return json.Marshal(c)
}

func DecodeCart(data []byte) (Cart, error) {
	var c Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	if c == nil {
		c = Cart{}
	}
	return c, nil
}
