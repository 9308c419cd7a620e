package checkout

import (
	"storefront/internal/domain"
	"storefront/internal/orderform"
	"storefront/internal/view"
)

type Snapshot struct {
	State        State             `json:"state"`
	Revision     uint64            `json:"revision"`
	CartItems    []domain.CartItem `json:"cartItems"`
	CartTotal    int64             `json:"cartTotal"`
	Form         domain.OrderForm  `json:"form"`
	Errors       orderform.Errors  `json:"errors,omitempty"`
	SubmitError  string            `json:"submitError,omitempty"`
	CatalogError string            `json:"catalogError,omitempty"`
	Page         view.Page         `json:"page"`
}

// Snapshot renders the whole page from current model state.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()

	form := o.form.Form()
	items := o.cart.Items()
	total := o.cart.Total()

	s := Snapshot{
		State:        o.state,
		Revision:     o.revision,
		CartItems:    items,
		CartTotal:    total,
		Form:         form,
		Errors:       o.surfaced,
		SubmitError:  o.submitErr,
		CatalogError: o.catalogErr,
		Page: view.Page{
			Header:  view.Header(len(items)),
			Gallery: view.Gallery(o.catalog.Items(), o.cart.IsInCart),
			Modal:   o.renderModal(form, items, total),
		},
	}
	if s.CartItems == nil {
		s.CartItems = []domain.CartItem{}
	}
	return s
}

func (o *Orchestrator) renderModal(form domain.OrderForm, items []domain.CartItem, total int64) view.ModalView {
	m := view.ModalView{Kind: o.modal}

	switch o.modal {
	case view.ModalBasket:
		b := view.Basket(items, total)
		m.Basket = &b
	case view.ModalPreview:
		p, ok := o.catalog.ProductByID(o.previewID)
		if !ok {
			m.Kind = view.ModalNone
			break
		}
		pv := view.Preview(p, o.cart.IsInCart(p.ID))
		m.Preview = &pv
	case view.ModalPayment:
		pv := view.Payment(form, o.surfaced.Messages())
		m.Payment = &pv
	case view.ModalContacts:
		cv := view.Contacts(form, o.surfaced.Messages(), o.submitErr)
		m.Contacts = &cv
	case view.ModalSuccess:
		sv := view.Success(o.paidTotal)
		m.Success = &sv
	}
	return m
}
