package domain

type Category string

const (
	CategorySoftSkill  Category = "софт-скил"
	CategoryHardSkill  Category = "хард-скил"
	CategoryOther      Category = "другое"
	CategoryAdditional Category = "дополнительное"
	CategoryButton     Category = "кнопка"
)

func (c Category) Valid() bool {
	switch c {
	case CategorySoftSkill, CategoryHardSkill, CategoryOther, CategoryAdditional, CategoryButton:
		return true
	}
	return false
}

// Product is a catalog entry. A nil Price marks a priceless product that
// cannot be bought.
type Product struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Image       string   `json:"image"`
	Category    Category `json:"category"`
	Price       *int64   `json:"price"`
}

func (p Product) Priceless() bool {
	return p.Price == nil
}

func (p Product) PriceValue() int64 {
	if p.Price == nil {
		return 0
	}
	return *p.Price
}

type ProductList struct {
	Total int       `json:"total"`
	Items []Product `json:"items"`
}

func Price(v int64) *int64 {
	return &v
}
