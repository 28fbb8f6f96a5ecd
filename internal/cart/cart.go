package cart

import (
	"slices"

	"github.com/google/uuid"

	"github.com/dukerupert/shippor/internal/domain"
)

// Cart is an ordered list of draft snapshots. It is not safe for
// concurrent use; callers serialize access.
type Cart struct {
	items []domain.CartItem
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{}
}

// Add snapshots draft into the cart. Later edits to draft do not reach the
// stored copy.
func (c *Cart) Add(draft domain.ShipmentDraft) domain.CartItem {
	var price float64
	if draft.SelectedMethod != nil {
		price = draft.SelectedMethod.Price
	}
	item := domain.CartItem{
		ID:    uuid.NewString(),
		Title: draft.RouteTitle(),
		Price: price,
		Draft: draft.Clone(),
		State: domain.CartItemAdded,
	}
	c.items = append(c.items, item)
	return cloneItem(item)
}

func (c *Cart) index(id string) int {
	return slices.IndexFunc(c.items, func(it domain.CartItem) bool { return it.ID == id })
}

// Get returns a copy of the item with id.
func (c *Cart) Get(id string) (domain.CartItem, bool) {
	i := c.index(id)
	if i < 0 {
		return domain.CartItem{}, false
	}
	return cloneItem(c.items[i]), true
}

// Remove deletes the item with id and reports whether it existed.
func (c *Cart) Remove(id string) bool {
	i := c.index(id)
	if i < 0 {
		return false
	}
	c.items = slices.Delete(c.items, i, i+1)
	return true
}

// Retry takes an item back out of the cart so its draft can be edited again.
func (c *Cart) Retry(id string) (domain.ShipmentDraft, bool) {
	i := c.index(id)
	if i < 0 {
		return domain.ShipmentDraft{}, false
	}
	draft := c.items[i].Draft.Clone()
	c.items = slices.Delete(c.items, i, i+1)
	return draft, true
}

// SetState moves an item to state and reports whether it existed.
func (c *Cart) SetState(id string, state domain.CartItemState) bool {
	i := c.index(id)
	if i < 0 {
		return false
	}
	c.items[i].State = state
	return true
}

// Items returns deep copies of the items in insertion order.
func (c *Cart) Items() []domain.CartItem {
	out := make([]domain.CartItem, len(c.items))
	for i, it := range c.items {
		out[i] = cloneItem(it)
	}
	return out
}

// Lines returns the priced view of every item.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.items))
	for i, it := range c.items {
		out[i] = Line{ID: it.ID, Title: it.Title, Price: it.Price}
	}
	return out
}

func (c *Cart) Len() int { return len(c.items) }

func (c *Cart) Clear() { c.items = nil }

func cloneItem(it domain.CartItem) domain.CartItem {
	it.Draft = it.Draft.Clone()
	return it
}
