package catalog

import (
	"context"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModel_SetItems(t *testing.T) {
	bus := events.NewBus(nil)
	m := New(bus)

	var emitted []domain.Product
	bus.On(events.ProductsChanged, func(ctx context.Context, name events.Name, payload any) {
		emitted = payload.(events.ProductsEvent).Items
	})

	m.SetItems(context.Background(), []domain.Product{
		{ID: "a", Title: "Alpha", Price: domain.Price(100)},
		{ID: "b", Title: "Beta"},
	})

	assert.Equal(t, 2, m.Len())
	assert.Len(t, emitted, 2)

	p, ok := m.ProductByID("b")
	require.True(t, ok)
	assert.True(t, p.Priceless())

	_, ok = m.ProductByID("missing")
	assert.False(t, ok)
}

func TestModel_ReplacedWholesale(t *testing.T) {
	m := New(events.NewBus(nil))
	m.SetItems(context.Background(), []domain.Product{{ID: "a"}, {ID: "b"}})
	m.SetItems(context.Background(), []domain.Product{{ID: "c"}})

	_, ok := m.ProductByID("a")
	assert.False(t, ok)
	assert.Equal(t, 1, m.Len())
}

func TestModel_ItemsIsCopy(t *testing.T) {
	m := New(events.NewBus(nil))
	m.SetItems(context.Background(), []domain.Product{{ID: "a", Title: "Alpha"}})

	items := m.Items()
	items[0].Title = "changed"

	p, _ := m.ProductByID("a")
	assert.Equal(t, "Alpha", p.Title)
}
