package catalog

import (
	"context"

	"storefront/internal/domain"
	"storefront/internal/events"
)

// Model holds the products fetched from the store collaborator. The list is
// replaced wholesale on every load and never mutated in place.
type Model struct {
	bus   *events.Bus
	items []domain.Product
	byID  map[string]int
}

func New(bus *events.Bus) *Model {
	return &Model{bus: bus, byID: map[string]int{}}
}

func (m *Model) SetItems(ctx context.Context, items []domain.Product) {
	m.items = append([]domain.Product(nil), items...)
	m.byID = make(map[string]int, len(items))
	for i, p := range m.items {
		m.byID[p.ID] = i
	}
	m.bus.Emit(ctx, events.ProductsChanged, events.ProductsEvent{Items: m.Items()})
}

func (m *Model) ProductByID(id string) (domain.Product, bool) {
	i, ok := m.byID[id]
	if !ok {
		return domain.Product{}, false
	}
	return m.items[i], true
}

func (m *Model) Items() []domain.Product {
	return append([]domain.Product(nil), m.items...)
}

func (m *Model) Len() int {
	return len(m.items)
}
