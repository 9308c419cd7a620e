// Package cart holds the set of products a shopper intends to buy.
//
// The cart is keyed by product id: adding a product twice keeps one entry.
// Item indexes are 1-based and always form the contiguous sequence 1..N in
// insertion order. Priceless products are not purchasable and are ignored by
// AddItem. Invalid input never produces an error; it is a no-op.
package cart

import (
	"context"

	"storefront/internal/domain"
	"storefront/internal/events"
)

type Model struct {
	bus   *events.Bus
	items []domain.CartItem
	pos   map[string]int
}

func New(bus *events.Bus) *Model {
	return &Model{bus: bus, pos: map[string]int{}}
}

// AddItem appends product and emits CartItemAdded. It reports whether the
// cart changed.
func (m *Model) AddItem(ctx context.Context, product domain.Product) bool {
	if product.ID == "" || product.Priceless() {
		return false
	}
	if _, ok := m.pos[product.ID]; ok {
		return false
	}

	item := domain.CartItem{
		ID:    product.ID,
		Title: product.Title,
		Price: product.PriceValue(),
		Index: len(m.items) + 1,
	}
	m.items = append(m.items, item)
	m.pos[item.ID] = len(m.items) - 1

	m.bus.Emit(ctx, events.CartItemAdded, events.CartEvent{Item: item, Product: &product})
	return true
}

// RemoveItem drops the item with id and renumbers the rest.
func (m *Model) RemoveItem(ctx context.Context, id string) bool {
	i, ok := m.pos[id]
	if !ok {
		return false
	}

	removed := m.items[i]
	m.items = append(m.items[:i], m.items[i+1:]...)
	m.reindex()

	m.bus.Emit(ctx, events.CartItemRemoved, events.CartEvent{Item: removed})
	return true
}

// Clear empties the cart with a single CartCleared notification.
func (m *Model) Clear(ctx context.Context) {
	m.items = nil
	m.pos = map[string]int{}
	m.bus.Emit(ctx, events.CartCleared, nil)
}

func (m *Model) reindex() {
	m.pos = make(map[string]int, len(m.items))
	for i := range m.items {
		m.items[i].Index = i + 1
		m.pos[m.items[i].ID] = i
	}
}

func (m *Model) Total() int64 {
	var total int64
	for _, it := range m.items {
		total += it.Price
	}
	return total
}

func (m *Model) IsInCart(id string) bool {
	_, ok := m.pos[id]
	return ok
}

func (m *Model) Items() []domain.CartItem {
	return append([]domain.CartItem(nil), m.items...)
}

// IDs returns the product ids in cart order.
func (m *Model) IDs() []string {
	ids := make([]string, 0, len(m.items))
	for _, it := range m.items {
		ids = append(ids, it.ID)
	}
	return ids
}

func (m *Model) Len() int {
	return len(m.items)
}

func (m *Model) Empty() bool {
	return len(m.items) == 0
}
