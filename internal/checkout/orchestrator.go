// Package checkout sequences the storefront: it reacts to view intents on the
// event bus, drives the cart, catalog and order form models, and walks the
// checkout state machine
//
//	Idle -> PaymentStep -> ContactsStep -> Submitting -> Success -> Idle
//
// Views are a projection of model state computed in Snapshot; the
// orchestrator never keeps rendered output around.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/domain"
	"storefront/internal/events"
	"storefront/internal/orderform"
	"storefront/internal/view"

	"go.uber.org/zap"
)

var (
	ErrSubmissionInProgress = errors.New("order submission in progress")
	ErrStepInactive         = errors.New("checkout step is not active")
	ErrBadPayload           = errors.New("unexpected intent payload")
	ErrNoCatalogSource      = errors.New("catalog source is not configured")
)

const catalogUnavailable = "Catalog is temporarily unavailable"

type Submitter interface {
	CreateOrder(ctx context.Context, req domain.OrderRequest) (*domain.OrderResult, error)
}

type CatalogSource interface {
	Products(ctx context.Context) ([]domain.Product, error)
}

type Deps struct {
	Bus       *events.Bus
	Catalog   *catalog.Model
	Cart      *cart.Model
	Form      *orderform.Model
	Source    CatalogSource
	Submitter Submitter
	Logger    *zap.Logger
}

// Orchestrator owns the checkout state of one storefront session.
//
// Intents are serialized by mu. The lock is released only while the order
// submission call is in flight; the Submitting state rejects every mutating
// intent meanwhile. Model notifications are dispatched with mu held, so bus
// handlers must not call back into the Orchestrator.
type Orchestrator struct {
	mu sync.Mutex

	bus       *events.Bus
	catalog   *catalog.Model
	cart      *cart.Model
	form      *orderform.Model
	source    CatalogSource
	submitter Submitter
	log       *zap.Logger

	state      State
	modal      view.ModalKind
	previewID  string
	surfaced   orderform.Errors
	submitErr  string
	catalogErr string
	paidTotal  int64
	revision   uint64

	subs []func()
}

func New(d Deps) *Orchestrator {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}
	o := &Orchestrator{
		bus:       d.Bus,
		catalog:   d.Catalog,
		cart:      d.Cart,
		form:      d.Form,
		source:    d.Source,
		submitter: d.Submitter,
		log:       log,
		state:     Idle,
		modal:     view.ModalNone,
	}
	o.subscribe()
	return o
}

func (o *Orchestrator) subscribe() {
	o.handle(events.ProductSelected, func(ctx context.Context, payload any) error {
		in, ok := payload.(events.ProductIntent)
		if !ok {
			return ErrBadPayload
		}
		return o.SelectProduct(ctx, in.ProductID)
	})
	o.handle(events.ProductPreview, func(ctx context.Context, payload any) error {
		in, ok := payload.(events.ProductIntent)
		if !ok {
			return ErrBadPayload
		}
		return o.PreviewProduct(ctx, in.ProductID)
	})
	o.handle(events.CartOpened, func(ctx context.Context, _ any) error {
		return o.OpenBasket(ctx)
	})
	o.handle(events.BasketRemove, func(ctx context.Context, payload any) error {
		in, ok := payload.(events.ProductIntent)
		if !ok {
			return ErrBadPayload
		}
		return o.RemoveFromBasket(ctx, in.ProductID)
	})
	o.handle(events.BasketCheckout, func(ctx context.Context, _ any) error {
		return o.RequestCheckout(ctx)
	})
	o.handle(events.PaymentMethodSelected, func(ctx context.Context, payload any) error {
		in, ok := payload.(events.PaymentIntent)
		if !ok {
			return ErrBadPayload
		}
		return o.SelectPayment(ctx, in.Payment)
	})
	o.handle(events.PaymentNext, func(ctx context.Context, payload any) error {
		in, ok := payload.(events.PaymentIntent)
		if !ok {
			return ErrBadPayload
		}
		return o.SubmitPayment(ctx, in.Payment, in.Address)
	})
	o.handle(events.ContactsSubmit, func(ctx context.Context, payload any) error {
		in, ok := payload.(events.ContactsIntent)
		if !ok {
			return ErrBadPayload
		}
		return o.SubmitContacts(ctx, in.Email, in.Phone)
	})
	o.handle(events.ModalClose, func(ctx context.Context, _ any) error {
		return o.CloseModal(ctx)
	})
	o.handle(events.CatalogReload, func(ctx context.Context, _ any) error {
		return o.LoadCatalog(ctx)
	})

	for _, name := range []events.Name{
		events.ProductsChanged,
		events.CartItemAdded,
		events.CartItemRemoved,
		events.CartCleared,
		events.OrderPaymentChanged,
		events.OrderAddressChanged,
		events.OrderEmailChanged,
		events.OrderPhoneChanged,
		events.OrderFormReset,
	} {
		o.subs = append(o.subs, o.bus.On(name, o.onModelChanged))
	}
}

func (o *Orchestrator) handle(name events.Name, fn func(ctx context.Context, payload any) error) {
	o.subs = append(o.subs, o.bus.On(name, func(ctx context.Context, n events.Name, payload any) {
		if err := fn(ctx, payload); err != nil {
			o.log.Warn("intent not applied", zap.String("intent", string(n)), zap.Error(err))
		}
	}))
}

// onModelChanged runs inside a mutator call, with mu already held.
func (o *Orchestrator) onModelChanged(_ context.Context, name events.Name, _ any) {
	o.revision++
	o.log.Debug("model changed", zap.String("event", string(name)), zap.Uint64("revision", o.revision))
}

// Close detaches the orchestrator from the bus.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, off := range o.subs {
		off()
	}
	o.subs = nil
}

func (o *Orchestrator) lock() error {
	o.mu.Lock()
	if o.state == Submitting {
		o.mu.Unlock()
		return ErrSubmissionInProgress
	}
	return nil
}

func (o *Orchestrator) openModal(ctx context.Context, kind view.ModalKind) {
	o.modal = kind
	o.bus.Emit(ctx, events.ModalOpened, events.ModalEvent{Kind: string(kind)})
}

// LoadCatalog fetches products from the source and replaces the catalog. On
// failure the current catalog is kept and the error is surfaced in the
// snapshot.
func (o *Orchestrator) LoadCatalog(ctx context.Context) error {
	if o.source == nil {
		return ErrNoCatalogSource
	}

	products, err := o.source.Products(ctx)

	o.mu.Lock()
	defer o.mu.Unlock()

	if err != nil {
		o.catalogErr = catalogUnavailable
		o.revision++
		o.log.Error("failed to load products", zap.Error(err))
		return fmt.Errorf("load catalog: %w", err)
	}

	o.catalogErr = ""
	o.catalog.SetItems(ctx, products)
	o.log.Info("catalog loaded", zap.Int("products", len(products)))
	return nil
}

// SelectProduct toggles product id in the cart.
func (o *Orchestrator) SelectProduct(ctx context.Context, id string) error {
	if err := o.lock(); err != nil {
		return err
	}
	defer o.mu.Unlock()

	product, ok := o.catalog.ProductByID(id)
	if !ok {
		o.log.Debug("unknown product selected", zap.String("product_id", id))
		return nil
	}

	if o.cart.IsInCart(id) {
		o.cart.RemoveItem(ctx, id)
		o.afterRemoval(ctx)
		return nil
	}

	if !o.cart.AddItem(ctx, product) {
		o.log.Debug("product not purchasable", zap.String("product_id", id))
	}
	return nil
}

func (o *Orchestrator) PreviewProduct(ctx context.Context, id string) error {
	if err := o.lock(); err != nil {
		return err
	}
	defer o.mu.Unlock()

	if _, ok := o.catalog.ProductByID(id); !ok {
		o.log.Debug("unknown product previewed", zap.String("product_id", id))
		return nil
	}
	o.state = Idle
	o.previewID = id
	o.openModal(ctx, view.ModalPreview)
	return nil
}

// OpenBasket shows the basket. A checkout in progress is suspended, the form
// keeps its values.
func (o *Orchestrator) OpenBasket(ctx context.Context) error {
	if err := o.lock(); err != nil {
		return err
	}
	defer o.mu.Unlock()

	o.state = Idle
	o.previewID = ""
	o.surfaced = nil
	o.openModal(ctx, view.ModalBasket)
	return nil
}

func (o *Orchestrator) RemoveFromBasket(ctx context.Context, id string) error {
	if err := o.lock(); err != nil {
		return err
	}
	defer o.mu.Unlock()

	if o.cart.RemoveItem(ctx, id) {
		o.afterRemoval(ctx)
	}
	return nil
}

// afterRemoval treats an emptied cart as an abandoned checkout.
func (o *Orchestrator) afterRemoval(ctx context.Context) {
	if !o.cart.Empty() {
		return
	}
	if !o.form.Form().Empty() {
		o.form.Reset(ctx)
	}
	o.surfaced = nil
	o.submitErr = ""
	if o.state.InCheckout() {
		o.state = Idle
		o.modal = view.ModalNone
	}
}

// RequestCheckout opens the payment step. With an empty cart it does nothing.
func (o *Orchestrator) RequestCheckout(ctx context.Context) error {
	if err := o.lock(); err != nil {
		return err
	}
	defer o.mu.Unlock()

	if o.cart.Empty() {
		o.log.Debug("checkout requested with empty cart")
		return nil
	}

	o.state = PaymentStep
	o.previewID = ""
	o.surfaced = nil
	o.submitErr = ""
	o.openModal(ctx, view.ModalPayment)
	return nil
}

func (o *Orchestrator) SelectPayment(ctx context.Context, p domain.PaymentMethod) error {
	if err := o.lock(); err != nil {
		return err
	}
	defer o.mu.Unlock()

	if o.state != PaymentStep {
		return ErrStepInactive
	}
	o.form.SetPayment(ctx, p)
	if len(o.surfaced) > 0 {
		o.surfaced = o.form.StepErrors(orderform.FieldPayment, orderform.FieldAddress)
	}
	return nil
}

// SubmitPayment records the payment step and advances to contacts when the
// step is valid. An invalid step stays put with its errors surfaced.
func (o *Orchestrator) SubmitPayment(ctx context.Context, p domain.PaymentMethod, address string) error {
	if err := o.lock(); err != nil {
		return err
	}
	defer o.mu.Unlock()

	if o.state != PaymentStep {
		return ErrStepInactive
	}
	if p != "" {
		o.form.SetPayment(ctx, p)
	}
	o.form.SetAddress(ctx, address)

	if errs := o.form.StepErrors(orderform.FieldPayment, orderform.FieldAddress); len(errs) > 0 {
		o.surface(ctx, errs)
		return nil
	}

	o.state = ContactsStep
	o.surfaced = nil
	o.openModal(ctx, view.ModalContacts)
	return nil
}

func (o *Orchestrator) surface(ctx context.Context, errs orderform.Errors) {
	o.surfaced = errs
	o.bus.Emit(ctx, events.FormErrors, events.FormEvent{Form: o.form.Form(), Errors: errs})
}

// SubmitContacts records the contacts step and, when the whole form is valid,
// sends the order. A failed submission returns to the contacts step with the
// entered data kept.
func (o *Orchestrator) SubmitContacts(ctx context.Context, email, phone string) error {
	if err := o.lock(); err != nil {
		return err
	}

	if o.state != ContactsStep {
		o.mu.Unlock()
		return ErrStepInactive
	}
	o.form.SetEmail(ctx, email)
	o.form.SetPhone(ctx, phone)

	if errs := o.form.Validate(); len(errs) > 0 {
		o.surface(ctx, errs)
		o.mu.Unlock()
		return nil
	}

	req := domain.NewOrderRequest(o.cart.Total(), o.cart.IDs(), o.form.Form())
	o.state = Submitting
	o.surfaced = nil
	o.submitErr = ""
	o.bus.Emit(ctx, events.OrderSubmitted, events.OrderEvent{Request: req})
	o.mu.Unlock()

	o.log.Info("submitting order", zap.Int64("total", req.Total), zap.Int("items", len(req.Items)))
	res, err := o.submitter.CreateOrder(ctx, req)

	o.mu.Lock()
	defer o.mu.Unlock()

	if err != nil {
		o.state = ContactsStep
		o.modal = view.ModalContacts
		o.submitErr = err.Error()
		o.revision++
		o.log.Error("failed to submit order", zap.Error(err))
		o.bus.Emit(ctx, events.OrderFailed, events.OrderEvent{Request: req, Err: err})
		return fmt.Errorf("submit order: %w", err)
	}

	if res.Total != req.Total {
		o.log.Warn("order total differs from cart total",
			zap.Int64("cart_total", req.Total),
			zap.Int64("order_total", res.Total),
		)
	}

	o.cart.Clear(ctx)
	o.form.Reset(ctx)
	o.paidTotal = res.Total
	o.state = Success
	o.openModal(ctx, view.ModalSuccess)
	o.log.Info("order placed", zap.String("order_id", res.ID), zap.Int64("total", res.Total))
	o.bus.Emit(ctx, events.OrderSuccess, events.OrderEvent{Request: req, Result: res})
	return nil
}

// CloseModal returns to Idle from any step except Submitting. The cart is
// untouched and the form keeps its values for a later checkout.
func (o *Orchestrator) CloseModal(ctx context.Context) error {
	if err := o.lock(); err != nil {
		return err
	}
	defer o.mu.Unlock()

	if o.modal == view.ModalNone {
		return nil
	}
	o.state = Idle
	o.modal = view.ModalNone
	o.previewID = ""
	o.surfaced = nil
	o.submitErr = ""
	o.paidTotal = 0
	o.bus.Emit(ctx, events.ModalClosed, nil)
	return nil
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) Modal() view.ModalKind {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.modal
}
