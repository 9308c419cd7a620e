package http

import (
	"storefront/internal/checkout"
	"storefront/internal/domain"
)

type PaymentMethodRequest struct {
	Payment domain.PaymentMethod `json:"payment" binding:"required,oneof=card cash"`
}

// PaymentRequest fields are checked by the order form, which reports
// problems in the snapshot rather than as a 400.
type PaymentRequest struct {
	Payment domain.PaymentMethod `json:"payment"`
	Address string               `json:"address"`
}

type ContactsRequest struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type SessionResponse struct {
	ID       string            `json:"id"`
	Snapshot checkout.Snapshot `json:"snapshot"`
}

type ErrorResponse struct {
	Error    string             `json:"error"`
	Snapshot *checkout.Snapshot `json:"snapshot,omitempty"`
}
