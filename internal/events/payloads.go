package events

import "storefront/internal/domain"

type ProductsEvent struct {
	Items []domain.Product
}

type CartEvent struct {
	Item    domain.CartItem
	Product *domain.Product
}

type FormEvent struct {
	Form   domain.OrderForm
	Errors map[string]string
}

type ModalEvent struct {
	Kind string
}

type OrderEvent struct {
	Request domain.OrderRequest
	Result  *domain.OrderResult
	Err     error
}

type ProductIntent struct {
	ProductID string
}

type PaymentIntent struct {
	Payment domain.PaymentMethod
	Address string
}

type ContactsIntent struct {
	Email string
	Phone string
}
