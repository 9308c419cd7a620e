package domain

import "time"

type Receipt struct {
	ID         uint64        `json:"id" gorm:"primaryKey;autoIncrement"`
	ExternalID string        `json:"externalId" gorm:"size:64;index"`
	Total      int64         `json:"total" gorm:"not null"`
	Payment    PaymentMethod `json:"payment" gorm:"type:enum('card','cash');not null"`
	Address    string        `json:"address" gorm:"not null"`
	Email      string        `json:"email" gorm:"not null"`
	Phone      string        `json:"phone" gorm:"not null"`
	Items      []ReceiptItem `json:"items" gorm:"foreignKey:ReceiptID"`
	CreatedAt  time.Time     `json:"createdAt" gorm:"autoCreateTime"`
}

type ReceiptItem struct {
	ID        uint64 `json:"-" gorm:"primaryKey;autoIncrement"`
	ReceiptID uint64 `json:"-" gorm:"not null;index"`
	ProductID string `json:"productId" gorm:"size:64;not null;index"`
}

func NewReceipt(req OrderRequest, res *OrderResult) *Receipt {
	r := &Receipt{
		Total:   req.Total,
		Payment: req.Payment,
		Address: req.Address,
		Email:   req.Email,
		Phone:   req.Phone,
	}
	if res != nil {
		r.ExternalID = res.ID
	}
	for _, id := range req.Items {
		r.Items = append(r.Items, ReceiptItem{ProductID: id})
	}
	return r
}

func (r Receipt) ProductIDs() []string {
	ids := make([]string, 0, len(r.Items))
	for _, it := range r.Items {
		ids = append(ids, it.ProductID)
	}
	return ids
}
