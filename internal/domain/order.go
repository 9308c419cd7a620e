package domain

type PaymentMethod string

const (
	PaymentCard PaymentMethod = "card"
	PaymentCash PaymentMethod = "cash"
)

func (p PaymentMethod) Valid() bool {
	return p == PaymentCard || p == PaymentCash
}

type OrderForm struct {
	Payment PaymentMethod `json:"payment,omitempty"`
	Address string        `json:"address,omitempty"`
	Email   string        `json:"email,omitempty"`
	Phone   string        `json:"phone,omitempty"`
}

func (f OrderForm) Empty() bool {
	return f == OrderForm{}
}

// OrderRequest is the body of POST /order: the cart projection merged with
// the order form.
type OrderRequest struct {
	Total   int64         `json:"total"`
	Items   []string      `json:"items"`
	Payment PaymentMethod `json:"payment"`
	Address string        `json:"address"`
	Email   string        `json:"email"`
	Phone   string        `json:"phone"`
}

func NewOrderRequest(total int64, items []string, form OrderForm) OrderRequest {
	return OrderRequest{
		Total:   total,
		Items:   items,
		Payment: form.Payment,
		Address: form.Address,
		Email:   form.Email,
		Phone:   form.Phone,
	}
}

type OrderResult struct {
	ID    string   `json:"id,omitempty"`
	Total int64    `json:"total"`
	Items []string `json:"items"`
}
