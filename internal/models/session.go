package models

import "time"

// Cart maps product IDs to positive quantities.
type Cart map[string]int

// Add increases the quantity of productID by quantity, inserting it when absent.
// quantity must be positive; callers validate it before calling.
func (c Cart) Add(productID string, quantity int) {
	c[productID] += quantity
}

// SetQuantity overwrites the quantity of productID. A non-positive quantity
// removes the entry so the cart never holds zero or negative lines.
func (c Cart) SetQuantity(productID string, quantity int) {
	if quantity <= 0 {
		delete(c, productID)
		return
	}
	c[productID] = quantity
}

// Remove deletes productID from the cart; missing entries are ignored.
func (c Cart) Remove(productID string) {
	delete(c, productID)
}

// Quantity returns the quantity held for productID, or 0.
func (c Cart) Quantity(productID string) int {
	return c[productID]
}

// IsEmpty reports whether the cart has no entries.
func (c Cart) IsEmpty() bool {
	return len(c) == 0
}

// Session is server-side state keyed by an opaque cookie value. UserID is
// empty for anonymous sessions that only carry a cart.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id,omitempty"`
	Cart      Cart      `json:"cart"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Authenticated reports whether a user is bound to the session.
func (s *Session) Authenticated() bool {
	return s.UserID != ""
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
