package domain

type CartItem struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Price int64  `json:"price"`
	Index int    `json:"index"`
}
