// Package view renders plain state snapshots into the projections the client
// displays. Every function here is pure: views never hold state of their own
// and never mutate models. The actions listed on a view are the intents the
// client may fire through an Emitter.
package view

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/events"
)

// Emitter is the capability views use to report user intents.
type Emitter interface {
	Emit(ctx context.Context, name events.Name, payload any)
}

var _ Emitter = (*events.Bus)(nil)

type ModalKind string

const (
	ModalNone     ModalKind = "none"
	ModalBasket   ModalKind = "basket"
	ModalPayment  ModalKind = "payment"
	ModalContacts ModalKind = "contacts"
	ModalSuccess  ModalKind = "success"
	ModalPreview  ModalKind = "preview"
)

const (
	currency       = "synapses"
	pricelessLabel = "Priceless"

	labelBuy         = "Buy"
	labelRemove      = "Remove from cart"
	labelUnavailable = "Unavailable"
)

func FormatPrice(price *int64) string {
	if price == nil {
		return pricelessLabel
	}
	return FormatAmount(*price)
}

func FormatAmount(v int64) string {
	return fmt.Sprintf("%d %s", v, currency)
}

var categoryModifiers = map[domain.Category]string{
	domain.CategorySoftSkill:  "soft",
	domain.CategoryHardSkill:  "hard",
	domain.CategoryOther:      "other",
	domain.CategoryAdditional: "additional",
	domain.CategoryButton:     "button",
}

func CategoryModifier(c domain.Category) string {
	if mod, ok := categoryModifiers[c]; ok {
		return mod
	}
	return "other"
}

type CardView struct {
	ID               string        `json:"id"`
	Title            string        `json:"title"`
	Category         string        `json:"category"`
	CategoryModifier string        `json:"categoryModifier"`
	Image            string        `json:"image"`
	Price            string        `json:"price"`
	Purchasable      bool          `json:"purchasable"`
	InCart           bool          `json:"inCart"`
	ButtonLabel      string        `json:"buttonLabel"`
	Actions          []events.Name `json:"actions"`
}

func Card(p domain.Product, inCart bool) CardView {
	v := CardView{
		ID:               p.ID,
		Title:            p.Title,
		Category:         string(p.Category),
		CategoryModifier: CategoryModifier(p.Category),
		Image:            p.Image,
		Price:            FormatPrice(p.Price),
		Purchasable:      !p.Priceless(),
		InCart:           inCart,
		Actions:          []events.Name{events.ProductPreview},
	}
	switch {
	case p.Priceless():
		v.ButtonLabel = labelUnavailable
	case inCart:
		v.ButtonLabel = labelRemove
		v.Actions = append(v.Actions, events.ProductSelected)
	default:
		v.ButtonLabel = labelBuy
		v.Actions = append(v.Actions, events.ProductSelected)
	}
	return v
}

type PreviewView struct {
	CardView
	Description string `json:"description"`
}

func Preview(p domain.Product, inCart bool) PreviewView {
	return PreviewView{CardView: Card(p, inCart), Description: p.Description}
}

type GalleryView struct {
	Cards []CardView `json:"cards"`
}

func Gallery(products []domain.Product, inCart func(id string) bool) GalleryView {
	cards := make([]CardView, 0, len(products))
	for _, p := range products {
		cards = append(cards, Card(p, inCart(p.ID)))
	}
	return GalleryView{Cards: cards}
}

type HeaderView struct {
	Counter int           `json:"counter"`
	Actions []events.Name `json:"actions"`
}

func Header(count int) HeaderView {
	return HeaderView{Counter: count, Actions: []events.Name{events.CartOpened}}
}

type BasketItemView struct {
	Index int    `json:"index"`
	ID    string `json:"id"`
	Title string `json:"title"`
	Price string `json:"price"`
}

type BasketView struct {
	Items           []BasketItemView `json:"items"`
	Empty           bool             `json:"empty"`
	Total           string           `json:"total"`
	TotalValue      int64            `json:"totalValue"`
	CheckoutEnabled bool             `json:"checkoutEnabled"`
	Actions         []events.Name    `json:"actions"`
}

func Basket(items []domain.CartItem, total int64) BasketView {
	v := BasketView{
		Items:      make([]BasketItemView, 0, len(items)),
		Empty:      len(items) == 0,
		Total:      FormatAmount(total),
		TotalValue: total,
		Actions:    []events.Name{events.ModalClose},
	}
	for _, it := range items {
		v.Items = append(v.Items, BasketItemView{
			Index: it.Index,
			ID:    it.ID,
			Title: it.Title,
			Price: FormatAmount(it.Price),
		})
	}
	if !v.Empty {
		v.CheckoutEnabled = true
		v.Actions = append(v.Actions, events.BasketRemove, events.BasketCheckout)
	}
	return v
}

type PaymentView struct {
	Payment     domain.PaymentMethod `json:"payment,omitempty"`
	Address     string               `json:"address"`
	Errors      []string             `json:"errors"`
	NextEnabled bool                 `json:"nextEnabled"`
	Actions     []events.Name        `json:"actions"`
}

func Payment(form domain.OrderForm, errs []string) PaymentView {
	return PaymentView{
		Payment:     form.Payment,
		Address:     form.Address,
		Errors:      nonNil(errs),
		NextEnabled: form.Payment.Valid() && strings.TrimSpace(form.Address) != "",
		Actions:     []events.Name{events.PaymentMethodSelected, events.PaymentNext, events.ModalClose},
	}
}

type ContactsView struct {
	Email         string        `json:"email"`
	Phone         string        `json:"phone"`
	Errors        []string      `json:"errors"`
	SubmitEnabled bool          `json:"submitEnabled"`
	SubmitError   string        `json:"submitError,omitempty"`
	Actions       []events.Name `json:"actions"`
}

func Contacts(form domain.OrderForm, errs []string, submitErr string) ContactsView {
	return ContactsView{
		Email:         form.Email,
		Phone:         form.Phone,
		Errors:        nonNil(errs),
		SubmitEnabled: form.Email != "" && form.Phone != "",
		SubmitError:   submitErr,
		Actions:       []events.Name{events.ContactsSubmit, events.ModalClose},
	}
}

type SuccessView struct {
	Total       int64         `json:"total"`
	Description string        `json:"description"`
	Actions     []events.Name `json:"actions"`
}

func Success(total int64) SuccessView {
	return SuccessView{
		Total:       total,
		Description: "Charged " + FormatAmount(total),
		Actions:     []events.Name{events.ModalClose},
	}
}

// ModalView carries exactly one populated content field matching Kind.
type ModalView struct {
	Kind     ModalKind     `json:"kind"`
	Basket   *BasketView   `json:"basket,omitempty"`
	Preview  *PreviewView  `json:"preview,omitempty"`
	Payment  *PaymentView  `json:"payment,omitempty"`
	Contacts *ContactsView `json:"contacts,omitempty"`
	Success  *SuccessView  `json:"success,omitempty"`
}

type Page struct {
	Header  HeaderView  `json:"header"`
	Gallery GalleryView `json:"gallery"`
	Modal   ModalView   `json:"modal"`
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
