package models

import "time"

type Product struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	Condition   string    `json:"condition"`
	ImageURL    *string   `json:"image_url"`
	SellerID    int64     `json:"seller_id"`
	SellerName  string    `json:"seller_name,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

type ProductFilter struct {
	Category  string
	Condition string
	MinPrice  *float64
	MaxPrice  *float64
	Search    string
}
