package services

import (
	"testing"
	"time"

	"storefront/internal/domain"
	"storefront/internal/mocks"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

const (
	TestCDN       = "https://cdn.example.com/content"
	TestProductID = "854cef69-976d-4c2a-a18c-2aa45046c390"
	TestOrderID   = "28c57cb4-3002-4445-8aa1-2a06a5055ae5"
)

func testCatalog() *domain.ProductList {
	return &domain.ProductList{
		Total: 2,
		Items: []domain.Product{
			{ID: TestProductID, Title: "+1 hour to the day", Image: "/5_Dots.svg", Category: domain.CategorySoftSkill, Price: domain.Price(750)},
			{ID: "b06cde61-912f-4663-9751-09956c0eed67", Title: "Mythical mug", Image: "/Asterisk_2.svg", Category: domain.CategoryOther},
		},
	}
}

type fixture struct {
	repo  *mocks.MockReceiptRepository
	store *mocks.MockStoreClient
	pub   *mocks.MockPublisher
	svc   *StorefrontService
	now   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:  new(mocks.MockReceiptRepository),
		store: new(mocks.MockStoreClient),
		pub:   new(mocks.MockPublisher),
		now:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	f.svc = NewStorefrontService(f.repo, f.store, f.pub, nil, Options{
		CDNURL:         TestCDN,
		StrictContacts: true,
		CatalogTTL:     time.Minute,
		Now:            func() time.Time { return f.now },
	})
	return f
}

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}
