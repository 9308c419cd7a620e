package domain

import "time"

type OrderCreatedEvent struct {
	OrderID   string    `json:"orderId,omitempty"`
	Total     int64     `json:"total"`
	Items     []string  `json:"items"`
	Payment   string    `json:"payment"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewOrderCreatedEvent(req OrderRequest, res *OrderResult, at time.Time) OrderCreatedEvent {
	evt := OrderCreatedEvent{
		Total:     req.Total,
		Items:     req.Items,
		Payment:   string(req.Payment),
		CreatedAt: at,
	}
	if res != nil {
		evt.OrderID = res.ID
	}
	return evt
}
