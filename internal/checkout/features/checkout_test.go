package features

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/checkout"
	"storefront/internal/domain"
	"storefront/internal/events"
	"storefront/internal/orderform"

	"github.com/cucumber/godog"
)

type staticCatalog struct {
	products []domain.Product
}

func (s *staticCatalog) Products(ctx context.Context) ([]domain.Product, error) {
	return s.products, nil
}

type fakeStore struct {
	fail     error
	received []domain.OrderRequest
}

func (f *fakeStore) CreateOrder(ctx context.Context, req domain.OrderRequest) (*domain.OrderResult, error) {
	f.received = append(f.received, req)
	if f.fail != nil {
		return nil, f.fail
	}
	return &domain.OrderResult{Total: req.Total, Items: req.Items}, nil
}

type checkoutTestContext struct {
	bus     *events.Bus
	cart    *cart.Model
	form    *orderform.Model
	catalog *staticCatalog
	store   *fakeStore
	orch    *checkout.Orchestrator
}

func (c *checkoutTestContext) reset() {
	c.bus = events.NewBus(nil)
	c.cart = cart.New(c.bus)
	c.form = orderform.New(c.bus)
	c.catalog = &staticCatalog{}
	c.store = &fakeStore{}
	c.orch = checkout.New(checkout.Deps{
		Bus:       c.bus,
		Catalog:   catalog.New(c.bus),
		Cart:      c.cart,
		Form:      c.form,
		Source:    c.catalog,
		Submitter: c.store,
	})
}

func (c *checkoutTestContext) aCatalogWithProducts(table *godog.Table) error {
	for i, row := range table.Rows {
		if i == 0 {
			continue
		}
		p := domain.Product{ID: row.Cells[0].Value, Title: row.Cells[1].Value}
		if v := strings.TrimSpace(row.Cells[2].Value); v != "" {
			price, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return err
			}
			p.Price = domain.Price(price)
		}
		c.catalog.products = append(c.catalog.products, p)
	}
	return c.orch.LoadCatalog(context.Background())
}

func (c *checkoutTestContext) emit(name events.Name, payload any) {
	c.bus.Emit(context.Background(), name, payload)
}

func (c *checkoutTestContext) iSelectProduct(id string) error {
	c.emit(events.ProductSelected, events.ProductIntent{ProductID: id})
	return nil
}

func (c *checkoutTestContext) theStoreAcceptsOrders() error {
	c.store.fail = nil
	return nil
}

func (c *checkoutTestContext) theStoreRejectsOrdersWith(msg string) error {
	c.store.fail = errors.New(msg)
	return nil
}

func (c *checkoutTestContext) iRequestCheckout() error {
	c.emit(events.BasketCheckout, nil)
	return nil
}

func (c *checkoutTestContext) iSubmitPaymentWithAddress(payment, address string) error {
	c.emit(events.PaymentNext, events.PaymentIntent{Payment: domain.PaymentMethod(payment), Address: address})
	return nil
}

func (c *checkoutTestContext) iSubmitContactsWithEmailAndPhone(email, phone string) error {
	c.emit(events.ContactsSubmit, events.ContactsIntent{Email: email, Phone: phone})
	return nil
}

func (c *checkoutTestContext) theCheckoutStateIs(want string) error {
	if got := c.orch.State().String(); got != want {
		return fmt.Errorf("expected state %q, got %q", want, got)
	}
	return nil
}

func (c *checkoutTestContext) theOpenModalIs(want string) error {
	if got := string(c.orch.Modal()); got != want {
		return fmt.Errorf("expected modal %q, got %q", want, got)
	}
	return nil
}

func (c *checkoutTestContext) theCartTotalIs(want int) error {
	if got := c.cart.Total(); got != int64(want) {
		return fmt.Errorf("expected total %d, got %d", want, got)
	}
	return nil
}

func (c *checkoutTestContext) theCartHasItems(want int) error {
	if got := c.cart.Len(); got != want {
		return fmt.Errorf("expected %d cart items, got %d", want, got)
	}
	return nil
}

func (c *checkoutTestContext) theStoreReceivedAnOrderWithTotalAndItems(total int, items string) error {
	if len(c.store.received) != 1 {
		return fmt.Errorf("expected one order, got %d", len(c.store.received))
	}
	req := c.store.received[0]
	if req.Total != int64(total) {
		return fmt.Errorf("expected total %d, got %d", total, req.Total)
	}
	if got := strings.Join(req.Items, ","); got != items {
		return fmt.Errorf("expected items %q, got %q", items, got)
	}
	return nil
}

func (c *checkoutTestContext) theOrderFormIsEmpty() error {
	if !c.form.Form().Empty() {
		return fmt.Errorf("expected empty form, got %+v", c.form.Form())
	}
	return nil
}

func (c *checkoutTestContext) theOrderFormHasEmailAndPhone(email, phone string) error {
	f := c.form.Form()
	if f.Email != email || f.Phone != phone {
		return fmt.Errorf("expected %s / %s, got %s / %s", email, phone, f.Email, f.Phone)
	}
	return nil
}

func (c *checkoutTestContext) theFormShowsTheError(msg string) error {
	for _, e := range c.orch.Snapshot().Errors {
		if e == msg {
			return nil
		}
	}
	return fmt.Errorf("error %q not surfaced", msg)
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &checkoutTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^a catalog with products:$`, tc.aCatalogWithProducts)
	ctx.Step(`^the store accepts orders$`, tc.theStoreAcceptsOrders)
	ctx.Step(`^the store rejects orders with "([^"]*)"$`, tc.theStoreRejectsOrdersWith)

	// When steps
	ctx.Step(`^I select product "([^"]*)"$`, tc.iSelectProduct)
	ctx.Step(`^I request checkout$`, tc.iRequestCheckout)
	ctx.Step(`^I submit payment "([^"]*)" with address "([^"]*)"$`, tc.iSubmitPaymentWithAddress)
	ctx.Step(`^I submit contacts with email "([^"]*)" and phone "([^"]*)"$`, tc.iSubmitContactsWithEmailAndPhone)

	// Then steps
	ctx.Step(`^the checkout state is "([^"]*)"$`, tc.theCheckoutStateIs)
	ctx.Step(`^the open modal is "([^"]*)"$`, tc.theOpenModalIs)
	ctx.Step(`^the cart total is (\d+)$`, tc.theCartTotalIs)
	ctx.Step(`^the cart has (\d+) items$`, tc.theCartHasItems)
	ctx.Step(`^the store received an order with total (\d+) and items "([^"]*)"$`, tc.theStoreReceivedAnOrderWithTotalAndItems)
	ctx.Step(`^the order form is empty$`, tc.theOrderFormIsEmpty)
	ctx.Step(`^the order form has email "([^"]*)" and phone "([^"]*)"$`, tc.theOrderFormHasEmailAndPhone)
	ctx.Step(`^the form shows the error "([^"]*)"$`, tc.theFormShowsTheError)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"checkout.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
