package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartLine is a menu item snapshot taken when it was added to the cart.
type CartLine struct {
	ItemID    primitive.ObjectID `bson:"itemId" json:"itemId"`
	Title     string             `bson:"title" json:"title"`
	UnitPrice int64              `bson:"unitPrice" json:"unitPrice"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	ImageURL  *string            `bson:"imageUrl" json:"imageUrl"`
}

// MaxLineQuantity caps the quantity of a single cart line.
const MaxLineQuantity = 99

// Cart is a guest cart addressed by an opaque token.
type Cart struct {
	ID        string     `bson:"_id" json:"id"`
	Lines     []CartLine `bson:"lines" json:"lines"`
	CreatedAt time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time  `bson:"updatedAt" json:"updatedAt"`
}

func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

func (c *Cart) TotalItems() int {
	n := 0
	for _, line := range c.Lines {
		n += line.Quantity
	}
	return n
}

// Add merges line into the cart. An existing line for the same item keeps its
// price snapshot and only grows in quantity, up to MaxLineQuantity.
func (c *Cart) Add(line CartLine) {
	line.Quantity = clampQuantity(line.Quantity)
	for i := range c.Lines {
		if c.Lines[i].ItemID == line.ItemID {
			c.Lines[i].Quantity = clampQuantity(c.Lines[i].Quantity + line.Quantity)
			return
		}
	}
	c.Lines = append(c.Lines, line)
}

func clampQuantity(n int) int {
	switch {
	case n < 1:
		return 1
	case n > MaxLineQuantity:
		return MaxLineQuantity
	}
	return n
}

// SetQuantity updates a line; a quantity below one removes it. Returns false
// when the item is not in the cart.
func (c *Cart) SetQuantity(itemID primitive.ObjectID, quantity int) bool {
	for i := range c.Lines {
		if c.Lines[i].ItemID != itemID {
			continue
		}
		if quantity < 1 {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
		} else {
			c.Lines[i].Quantity = clampQuantity(quantity)
		}
		return true
	}
	return false
}

func (c *Cart) Remove(itemID primitive.ObjectID) bool {
	return c.SetQuantity(itemID, 0)
}

func (c *Cart) Clear() {
	c.Lines = []CartLine{}
}

// Snapshot returns a copy of the lines that is safe to keep after the cart changes.
func (c *Cart) Snapshot() []CartLine {
	out := make([]CartLine, len(c.Lines))
	copy(out, c.Lines)
	return out
}
